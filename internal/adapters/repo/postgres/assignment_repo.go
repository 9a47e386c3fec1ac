package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/phenrril/productattr/internal/domain"
)

type AssignmentRepo struct{ db *gorm.DB }

func NewAssignmentRepo(db *gorm.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

func (r *AssignmentRepo) FindSpuAttribute(ctx context.Context, spuID, name string) (*domain.SpuAttribute, error) {
	var a domain.SpuAttribute
	if err := r.db.WithContext(ctx).Order("created_at asc").First(&a, "spu_id = ? AND name = ?", spuID, name).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AssignmentRepo) FindSpuAttributeByID(ctx context.Context, id string) (*domain.SpuAttribute, error) {
	var a domain.SpuAttribute
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AssignmentRepo) ListSpuAttributes(ctx context.Context, spuID string) ([]domain.SpuAttribute, error) {
	list := []domain.SpuAttribute{}
	if err := r.db.WithContext(ctx).Where("spu_id = ?", spuID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AssignmentRepo) FindSkuAttribute(ctx context.Context, skuID, name string) (*domain.SkuAttribute, error) {
	var a domain.SkuAttribute
	if err := r.db.WithContext(ctx).Order("created_at asc").First(&a, "sku_id = ? AND name = ?", skuID, name).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AssignmentRepo) FindSkuAttributeByID(ctx context.Context, id string) (*domain.SkuAttribute, error) {
	var a domain.SkuAttribute
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &a, nil
}

func (r *AssignmentRepo) ListSkuAttributes(ctx context.Context, skuID string) ([]domain.SkuAttribute, error) {
	list := []domain.SkuAttribute{}
	if err := r.db.WithContext(ctx).Where("sku_id = ?", skuID).Order("created_at asc").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

type ProductRepo struct{ db *gorm.DB }

func NewProductRepo(db *gorm.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) FindSpu(ctx context.Context, id string) (*domain.Spu, error) {
	var s domain.Spu
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *ProductRepo) FindSku(ctx context.Context, id string) (*domain.Sku, error) {
	var s domain.Sku
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}
