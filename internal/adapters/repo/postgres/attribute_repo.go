package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/phenrril/productattr/internal/domain"
)

type AttributeRepo struct{ db *gorm.DB }

func NewAttributeRepo(db *gorm.DB) *AttributeRepo { return &AttributeRepo{db: db} }

// values keep insertion order; callers that need priority order sort themselves
func preloadValues(db *gorm.DB) *gorm.DB {
	return db.Order("created_at asc, id asc")
}

func (r *AttributeRepo) FindByID(ctx context.Context, id string) (*domain.Attribute, error) {
	var a domain.Attribute
	if err := r.db.WithContext(ctx).Preload("Values", preloadValues).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AttributeRepo) FindByCode(ctx context.Context, code string) (*domain.Attribute, error) {
	var a domain.Attribute
	if err := r.db.WithContext(ctx).Preload("Values", preloadValues).First(&a, "code = ?", code).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AttributeRepo) Find(ctx context.Context, q domain.AttributeQuery) ([]domain.Attribute, error) {
	list := []domain.Attribute{}
	tx := r.db.WithContext(ctx).Model(&domain.Attribute{})
	for _, p := range attributePredicates(q) {
		tx = tx.Where(p.query, p.args...)
	}
	if q.WithValues {
		tx = tx.Preload("Values", preloadValues)
	}
	if err := tx.Order("sort_order asc, created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AttributeRepo) Save(ctx context.Context, a *domain.Attribute) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return saveAttribute(tx, a)
	})
}

func (r *AttributeRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteAttribute(tx, id)
	})
}

// saveAttribute writes a and its values, then deletes stored values that are no
// longer part of a.Values.
func saveAttribute(tx *gorm.DB, a *domain.Attribute) error {
	if err := tx.Omit(clause.Associations).Save(a).Error; err != nil {
		return translate(err)
	}
	keep := make([]string, 0, len(a.Values))
	for i := range a.Values {
		a.Values[i].AttributeID = a.ID
		if err := tx.Save(&a.Values[i]).Error; err != nil {
			return translate(err)
		}
		keep = append(keep, a.Values[i].ID)
	}
	q := tx.Where("attribute_id = ?", a.ID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	return q.Delete(&domain.AttributeValue{}).Error
}

func deleteAttribute(tx *gorm.DB, id string) error {
	if err := tx.Where("attribute_id = ?", id).Delete(&domain.AttributeValue{}).Error; err != nil {
		return err
	}
	res := tx.Delete(&domain.Attribute{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func translate(err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return domain.ErrConflict
	}
	return err
}

type predicate struct {
	query string
	args  []any
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// attributePredicates turns each non-empty field of q into one SQL clause.
func attributePredicates(q domain.AttributeQuery) []predicate {
	var ps []predicate
	if q.Search != "" {
		like := "%" + likeEscaper.Replace(q.Search) + "%"
		ps = append(ps, predicate{query: "(code LIKE ? OR name LIKE ?)", args: []any{like, like}})
	}
	if q.Type != "" {
		ps = append(ps, predicate{query: "type = ?", args: []any{string(q.Type)}})
	}
	if q.Status != "" {
		ps = append(ps, predicate{query: "status = ?", args: []any{string(q.Status)}})
	}
	return ps
}
