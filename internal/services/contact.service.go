package services

import (
	"context"
	"errors"
	"strings"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
)

var ErrContactUnreachable = errors.New("contact needs at least a phone or an email")

type ContactRepository interface {
	Create(ctx context.Context, c *model.Contact) (*model.Contact, error)
	ListActive(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error)
}

type ContactService struct {
	contacts ContactRepository
}

func NewContactService(contacts ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

func (s *ContactService) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	if c.Name == "" {
		return nil, errors.New("contact name cannot be empty")
	}
	if c.Phone == "" && c.Email == "" {
		return nil, ErrContactUnreachable
	}
	if c.Status == "" {
		c.Status = model.ContactStatusActive
	}
	return s.contacts.Create(ctx, c)
}

func (s *ContactService) ListActive(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error) {
	return s.contacts.ListActive(ctx, f)
}
