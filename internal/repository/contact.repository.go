package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/SoHOSolatube/PD-App-sub000/internal/model"
	"github.com/SoHOSolatube/PD-App-sub000/pkg/pg"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")
)

type ContactRepository struct {
	*pg.DB
}

func NewContactRepository(db *pg.DB) *ContactRepository {
	return &ContactRepository{db}
}

func (r *ContactRepository) Create(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	entity := toContactEntity(c)

	if err := r.Write(ctx).Create(entity).Error; err != nil {
		return nil, err
	}

	return toContactModel(entity), nil
}

func (r *ContactRepository) Get(ctx context.Context, id int64) (*model.Contact, error) {
	var entity ContactEntity
	err := r.Read(ctx).First(&entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toContactModel(&entity), nil
}

// ListActive returns active contacts, optionally narrowed to those whose
// category set intersects filter.CategoryIDs. Categories live in a JSON
// column, so the intersection is applied after the status scan; the
// portal's contact book is small enough that this stays cheap.
func (r *ContactRepository) ListActive(ctx context.Context, f model.ContactFilter) ([]*model.Contact, error) {
	q := r.Read(ctx).
		Model(&ContactEntity{}).
		Where("status = ?", string(model.ContactStatusActive)).
		Order("id ASC")

	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var entities []*ContactEntity
	if err := q.Find(&entities).Error; err != nil {
		return nil, err
	}

	if len(f.CategoryIDs) == 0 {
		return toContactModels(entities), nil
	}

	wanted := make(map[int64]struct{}, len(f.CategoryIDs))
	for _, id := range f.CategoryIDs {
		wanted[id] = struct{}{}
	}

	matched := make([]*ContactEntity, 0, len(entities))
	for _, e := range entities {
		for _, cat := range e.Categories {
			if _, ok := wanted[cat]; ok {
				matched = append(matched, e)
				break
			}
		}
	}

	return toContactModels(matched), nil
}
