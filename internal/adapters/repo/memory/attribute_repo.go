package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/phenrril/productattr/internal/domain"
)

type AttributeRepo struct{ s *Store }

func NewAttributeRepo(s *Store) *AttributeRepo { return &AttributeRepo{s: s} }

func (r *AttributeRepo) FindByID(ctx context.Context, id string) (*domain.Attribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.attributes {
		if a.ID == id {
			return cloneAttribute(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AttributeRepo) FindByCode(ctx context.Context, code string) (*domain.Attribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.attributes {
		if a.Code == code {
			return cloneAttribute(a), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AttributeRepo) Find(ctx context.Context, q domain.AttributeQuery) ([]domain.Attribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []domain.Attribute{}
	for _, a := range r.s.attributes {
		if q.Matches(a) {
			cp := cloneAttribute(a)
			if !q.WithValues {
				cp.Values = nil
			}
			list = append(list, *cp)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].SortOrder < list[j].SortOrder })
	return list, nil
}

func (r *AttributeRepo) Save(ctx context.Context, a *domain.Attribute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.saveAttributeLocked(a)
}

func (r *AttributeRepo) Delete(ctx context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deleteAttributeLocked(id)
}

func (s *Store) saveAttributeLocked(a *domain.Attribute) error {
	for _, other := range s.attributes {
		if other.Code == a.Code && other.ID != a.ID {
			return domain.ErrConflict
		}
	}
	now := s.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	for i := range a.Values {
		v := &a.Values[i]
		if v.ID == "" {
			v.ID = uuid.NewString()
		}
		v.AttributeID = a.ID
		if v.CreatedAt.IsZero() {
			v.CreatedAt = now
		}
		v.UpdatedAt = now
	}
	stored := cloneAttribute(a)
	for i, existing := range s.attributes {
		if existing.ID == a.ID {
			s.attributes[i] = stored
			return nil
		}
	}
	s.attributes = append(s.attributes, stored)
	return nil
}

func (s *Store) deleteAttributeLocked(id string) error {
	for i, a := range s.attributes {
		if a.ID == id {
			s.attributes = append(s.attributes[:i:i], s.attributes[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}
