package memory

import (
	"context"
	"fmt"

	"github.com/phenrril/productattr/internal/domain"
)

type opKind int

const (
	opPersist opKind = iota
	opRemove
)

type op struct {
	kind   opKind
	entity any
}

// EntityManager is a unit of work over a Store. A failed Flush leaves the store
// as it was before the call.
type EntityManager struct {
	s   *Store
	ops []op
}

func NewEntityManager(s *Store) *EntityManager { return &EntityManager{s: s} }

func (m *EntityManager) Persist(entity any) { m.stage(opPersist, entity) }

func (m *EntityManager) Remove(entity any) { m.stage(opRemove, entity) }

func (m *EntityManager) stage(kind opKind, entity any) {
	for i := range m.ops {
		if m.ops[i].entity == entity {
			m.ops[i].kind = kind
			return
		}
	}
	m.ops = append(m.ops, op{kind: kind, entity: entity})
}

func (m *EntityManager) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	snap := m.s.snapshotLocked()
	for _, o := range m.ops {
		if err := m.apply(o); err != nil {
			m.s.restoreLocked(snap)
			return err
		}
	}
	m.ops = nil
	return nil
}

func (m *EntityManager) apply(o op) error {
	switch e := o.entity.(type) {
	case *domain.Attribute:
		if o.kind == opRemove {
			if err := m.s.deleteAttributeLocked(e.ID); err != nil && err != domain.ErrNotFound {
				return err
			}
			return nil
		}
		return m.s.saveAttributeLocked(e)
	case *domain.SpuAttribute:
		if o.kind == opRemove {
			m.s.deleteSpuAttributeLocked(e.ID)
			return nil
		}
		m.s.saveSpuAttributeLocked(e)
		return nil
	case *domain.SkuAttribute:
		if o.kind == opRemove {
			m.s.deleteSkuAttributeLocked(e.ID)
			return nil
		}
		m.s.saveSkuAttributeLocked(e)
		return nil
	}
	return fmt.Errorf("%w: unsupported entity %T", domain.ErrInvalid, o.entity)
}

func (m *EntityManager) Clear() { m.ops = nil }
