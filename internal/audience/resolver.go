// Package audience turns an AudienceTarget into the concrete recipient
// list for a delivery cycle.
package audience

import (
	"context"
	"fmt"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

type ContactLister interface {
	ListActive(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error)
}

type RegistrationLister interface {
	ListContacts(ctx context.Context, eventID int64) ([]*model.Contact, error)
}

type Resolver struct {
	contacts      ContactLister
	registrations RegistrationLister
}

func NewResolver(contacts ContactLister, registrations RegistrationLister) *Resolver {
	return &Resolver{
		contacts:      contacts,
		registrations: registrations,
	}
}

// Resolve returns the recipients for a target. Per-channel opt-outs are
// not applied here; the delivery engine checks them per send. A
// categories target with no IDs matches every active contact, same as
// an all target.
func (r *Resolver) Resolve(ctx context.Context, target model.AudienceTarget) ([]*model.Contact, error) {
	switch target.Type {
	case model.AudienceAll:
		return r.contacts.ListActive(ctx, model.ContactFilter{})
	case model.AudienceCategories:
		return r.contacts.ListActive(ctx, model.ContactFilter{CategoryIDs: target.CategoryIDs})
	case model.AudienceEventRegistered:
		return r.registrations.ListContacts(ctx, target.EventID)
	default:
		return nil, fmt.Errorf("unknown audience type %q", target.Type)
	}
}
