package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/phenrril/productattr/internal/domain"
)

// AttributeManager writes free-form name/value assignments on spus and skus.
// Assign* is find-or-create: an existing row for (owner, name) is updated,
// otherwise a new one is staged. Nothing reaches storage until Flush.
//
// Rows staged by this manager are remembered, so assigning the same name twice
// before a flush still yields one row. Two managers working on the same
// (owner, name) concurrently can both miss the lookup and insert twice, or
// lose one of the updates; storage has no unique constraint on the pair.
//
// A manager is not safe for concurrent use; create one per request.
type AttributeManager struct {
	Entities    domain.EntityManager
	Assignments domain.AssignmentRepo

	spuStaged map[string]*domain.SpuAttribute
	skuStaged map[string]*domain.SkuAttribute
}

func NewAttributeManager(em domain.EntityManager, repo domain.AssignmentRepo) *AttributeManager {
	return &AttributeManager{
		Entities:    em,
		Assignments: repo,
		spuStaged:   map[string]*domain.SpuAttribute{},
		skuStaged:   map[string]*domain.SkuAttribute{},
	}
}

func stageKey(ownerID, name string) string { return ownerID + "\x00" + name }

func (m *AttributeManager) AssignSpuAttributeValue(ctx context.Context, spu *domain.Spu, name, value string) (*domain.SpuAttribute, error) {
	key := stageKey(spu.ID, name)
	row, ok := m.spuStaged[key]
	if !ok {
		found, err := m.Assignments.FindSpuAttribute(ctx, spu.ID, name)
		switch {
		case err == nil:
			row = found
		case errors.Is(err, domain.ErrNotFound):
			row = &domain.SpuAttribute{Name: name}
			row.SetSpu(spu)
		default:
			return nil, fmt.Errorf("find spu attribute %q: %w", name, err)
		}
		m.spuStaged[key] = row
	}
	row.Value = value
	m.Entities.Persist(row)
	return row, nil
}

// BatchSetSpuAttributes assigns every pair in order and flushes once.
func (m *AttributeManager) BatchSetSpuAttributes(ctx context.Context, spu *domain.Spu, pairs []domain.AttributePair) ([]*domain.SpuAttribute, error) {
	out := make([]*domain.SpuAttribute, 0, len(pairs))
	for _, p := range pairs {
		row, err := m.AssignSpuAttributeValue(ctx, spu, p.Name, p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := m.Flush(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *AttributeManager) GetSpuAttributes(ctx context.Context, spu *domain.Spu) ([]domain.SpuAttribute, error) {
	return m.Assignments.ListSpuAttributes(ctx, spu.ID)
}

// RemoveSpuAttribute deletes the row and flushes immediately.
func (m *AttributeManager) RemoveSpuAttribute(ctx context.Context, row *domain.SpuAttribute) error {
	if staged, ok := m.spuStaged[stageKey(row.SpuID, row.Name)]; ok && (staged == row || staged.ID == row.ID) {
		delete(m.spuStaged, stageKey(row.SpuID, row.Name))
	}
	m.Entities.Remove(row)
	return m.Flush(ctx)
}

func (m *AttributeManager) AssignSkuAttributeValue(ctx context.Context, sku *domain.Sku, name, value string) (*domain.SkuAttribute, error) {
	key := stageKey(sku.ID, name)
	row, ok := m.skuStaged[key]
	if !ok {
		found, err := m.Assignments.FindSkuAttribute(ctx, sku.ID, name)
		switch {
		case err == nil:
			row = found
		case errors.Is(err, domain.ErrNotFound):
			row = &domain.SkuAttribute{Name: name}
			row.SetSku(sku)
		default:
			return nil, fmt.Errorf("find sku attribute %q: %w", name, err)
		}
		m.skuStaged[key] = row
	}
	row.Value = value
	m.Entities.Persist(row)
	return row, nil
}

func (m *AttributeManager) BatchSetSkuAttributes(ctx context.Context, sku *domain.Sku, pairs []domain.AttributePair) ([]*domain.SkuAttribute, error) {
	out := make([]*domain.SkuAttribute, 0, len(pairs))
	for _, p := range pairs {
		row, err := m.AssignSkuAttributeValue(ctx, sku, p.Name, p.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := m.Flush(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *AttributeManager) GetSkuAttributes(ctx context.Context, sku *domain.Sku) ([]domain.SkuAttribute, error) {
	return m.Assignments.ListSkuAttributes(ctx, sku.ID)
}

func (m *AttributeManager) RemoveSkuAttribute(ctx context.Context, row *domain.SkuAttribute) error {
	if staged, ok := m.skuStaged[stageKey(row.SkuID, row.Name)]; ok && (staged == row || staged.ID == row.ID) {
		delete(m.skuStaged, stageKey(row.SkuID, row.Name))
	}
	m.Entities.Remove(row)
	return m.Flush(ctx)
}

func (m *AttributeManager) Flush(ctx context.Context) error {
	if err := m.Entities.Flush(ctx); err != nil {
		return fmt.Errorf("flush attributes: %w", err)
	}
	return nil
}

// Clear drops staged writes and forgets staged rows.
func (m *AttributeManager) Clear() {
	m.Entities.Clear()
	m.spuStaged = map[string]*domain.SpuAttribute{}
	m.skuStaged = map[string]*domain.SkuAttribute{}
}
