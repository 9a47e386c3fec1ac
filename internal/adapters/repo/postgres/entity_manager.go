package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

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

// EntityManager collects writes and runs them in a single transaction on Flush.
// It is meant to live for one request.
type EntityManager struct {
	db  *gorm.DB
	ops []op
}

func NewEntityManager(db *gorm.DB) *EntityManager { return &EntityManager{db: db} }

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
	if len(m.ops) == 0 {
		return nil
	}
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, o := range m.ops {
			if err := apply(tx, o); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	m.ops = nil
	return nil
}

func apply(tx *gorm.DB, o op) error {
	switch e := o.entity.(type) {
	case *domain.Attribute:
		if o.kind == opRemove {
			if err := deleteAttribute(tx, e.ID); err != nil && err != domain.ErrNotFound {
				return err
			}
			return nil
		}
		return saveAttribute(tx, e)
	case *domain.SpuAttribute:
		if o.kind == opRemove {
			return tx.Delete(&domain.SpuAttribute{}, "id = ?", e.ID).Error
		}
		return translate(tx.Save(e).Error)
	case *domain.SkuAttribute:
		if o.kind == opRemove {
			return tx.Delete(&domain.SkuAttribute{}, "id = ?", e.ID).Error
		}
		return translate(tx.Save(e).Error)
	}
	return fmt.Errorf("%w: unsupported entity %T", domain.ErrInvalid, o.entity)
}

func (m *EntityManager) Clear() { m.ops = nil }
