// Package memory keeps the catalog in process memory. It backs STORAGE_DRIVER=memory
// and the usecase/HTTP tests. Entities are copied on the way in and out so callers
// never share state with the store, like rows loaded from a database.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/phenrril/productattr/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	attributes []*domain.Attribute
	spuAttrs   []*domain.SpuAttribute
	skuAttrs   []*domain.SkuAttribute
	spus       map[string]*domain.Spu
	skus       map[string]*domain.Sku
	now        func() time.Time
}

func NewStore() *Store {
	return &Store{
		spus: map[string]*domain.Spu{},
		skus: map[string]*domain.Sku{},
		now:  time.Now,
	}
}

// AddSpu registers a product so assignments can be made against it.
func (s *Store) AddSpu(p *domain.Spu) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	cp.Attributes = nil
	cp.Skus = nil
	s.spus[p.ID] = &cp
}

func (s *Store) AddSku(k *domain.Sku) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	cp := *k
	cp.Attributes = nil
	s.skus[k.ID] = &cp
}

// DeleteSpu removes the product together with its assignments and its skus.
func (s *Store) DeleteSpu(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.spus, id)
	kept := s.spuAttrs[:0]
	for _, a := range s.spuAttrs {
		if a.SpuID != id {
			kept = append(kept, a)
		}
	}
	s.spuAttrs = kept
	for skuID, k := range s.skus {
		if k.SpuID == id {
			s.deleteSkuLocked(skuID)
		}
	}
}

func (s *Store) DeleteSku(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSkuLocked(id)
}

func (s *Store) deleteSkuLocked(id string) {
	delete(s.skus, id)
	kept := s.skuAttrs[:0]
	for _, a := range s.skuAttrs {
		if a.SkuID != id {
			kept = append(kept, a)
		}
	}
	s.skuAttrs = kept
}

type snapshot struct {
	attributes []*domain.Attribute
	spuAttrs   []*domain.SpuAttribute
	skuAttrs   []*domain.SkuAttribute
}

func (s *Store) snapshotLocked() snapshot {
	return snapshot{
		attributes: append([]*domain.Attribute(nil), s.attributes...),
		spuAttrs:   append([]*domain.SpuAttribute(nil), s.spuAttrs...),
		skuAttrs:   append([]*domain.SkuAttribute(nil), s.skuAttrs...),
	}
}

func (s *Store) restoreLocked(snap snapshot) {
	s.attributes = snap.attributes
	s.spuAttrs = snap.spuAttrs
	s.skuAttrs = snap.skuAttrs
}

func cloneAttribute(a *domain.Attribute) *domain.Attribute {
	cp := *a
	if a.Values != nil {
		cp.Values = append([]domain.AttributeValue(nil), a.Values...)
	}
	if a.Config != nil {
		cp.Config = append([]byte(nil), a.Config...)
	}
	if a.ValidationRules != nil {
		cp.ValidationRules = append([]byte(nil), a.ValidationRules...)
	}
	return &cp
}
