package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/phenrril/productattr/internal/domain"
)

type AssignmentRepo struct{ s *Store }

func NewAssignmentRepo(s *Store) *AssignmentRepo { return &AssignmentRepo{s: s} }

func (r *AssignmentRepo) FindSpuAttribute(ctx context.Context, spuID, name string) (*domain.SpuAttribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.spuAttrs {
		if a.SpuID == spuID && a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AssignmentRepo) FindSpuAttributeByID(ctx context.Context, id string) (*domain.SpuAttribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.spuAttrs {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AssignmentRepo) ListSpuAttributes(ctx context.Context, spuID string) ([]domain.SpuAttribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []domain.SpuAttribute{}
	for _, a := range r.s.spuAttrs {
		if a.SpuID == spuID {
			list = append(list, *a)
		}
	}
	return list, nil
}

func (r *AssignmentRepo) FindSkuAttribute(ctx context.Context, skuID, name string) (*domain.SkuAttribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.skuAttrs {
		if a.SkuID == skuID && a.Name == name {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AssignmentRepo) FindSkuAttributeByID(ctx context.Context, id string) (*domain.SkuAttribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.skuAttrs {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *AssignmentRepo) ListSkuAttributes(ctx context.Context, skuID string) ([]domain.SkuAttribute, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	list := []domain.SkuAttribute{}
	for _, a := range r.s.skuAttrs {
		if a.SkuID == skuID {
			list = append(list, *a)
		}
	}
	return list, nil
}

type ProductRepo struct{ s *Store }

func NewProductRepo(s *Store) *ProductRepo { return &ProductRepo{s: s} }

func (r *ProductRepo) FindSpu(ctx context.Context, id string) (*domain.Spu, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.spus[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *ProductRepo) FindSku(ctx context.Context, id string) (*domain.Sku, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	k, ok := r.s.skus[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *k
	return &cp, nil
}

func (s *Store) saveSpuAttributeLocked(a *domain.SpuAttribute) {
	now := s.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	cp := *a
	for i, existing := range s.spuAttrs {
		if existing.ID == a.ID {
			s.spuAttrs[i] = &cp
			return
		}
	}
	s.spuAttrs = append(s.spuAttrs, &cp)
}

func (s *Store) deleteSpuAttributeLocked(id string) {
	for i, a := range s.spuAttrs {
		if a.ID == id {
			s.spuAttrs = append(s.spuAttrs[:i:i], s.spuAttrs[i+1:]...)
			return
		}
	}
}

func (s *Store) saveSkuAttributeLocked(a *domain.SkuAttribute) {
	now := s.now()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	cp := *a
	for i, existing := range s.skuAttrs {
		if existing.ID == a.ID {
			s.skuAttrs[i] = &cp
			return
		}
	}
	s.skuAttrs = append(s.skuAttrs, &cp)
}

func (s *Store) deleteSkuAttributeLocked(id string) {
	for i, a := range s.skuAttrs {
		if a.ID == id {
			s.skuAttrs = append(s.skuAttrs[:i:i], s.skuAttrs[i+1:]...)
			return
		}
	}
}
