package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Spu and Sku belong to the product catalog. Only their identity is used here.
type Spu struct {
	ID         string         `gorm:"type:varchar(36);primaryKey"`
	Title      string         `gorm:"size:180"`
	Attributes []SpuAttribute `gorm:"constraint:OnDelete:CASCADE"`
	Skus       []Sku          `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *Spu) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

type Sku struct {
	ID         string         `gorm:"type:varchar(36);primaryKey"`
	SpuID      string         `gorm:"type:varchar(36);index"`
	Code       string         `gorm:"size:100;index"`
	Attributes []SkuAttribute `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (s *Sku) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// SpuAttribute is a free-form name/value pair on one Spu. It is not linked to
// the Attribute catalog. At most one row per (SpuID, Name) is kept by the
// assignment manager, not by a storage constraint.
type SpuAttribute struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	SpuID     string `gorm:"type:varchar(36);index;not null"`
	Name      string `gorm:"size:120;not null"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *SpuAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *SpuAttribute) SetSpu(s *Spu) { a.SpuID = s.ID }

type SkuAttribute struct {
	ID        string `gorm:"type:varchar(36);primaryKey"`
	SkuID     string `gorm:"type:varchar(36);index;not null"`
	Name      string `gorm:"size:120;not null"`
	Value     string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *SkuAttribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *SkuAttribute) SetSku(s *Sku) { a.SkuID = s.ID }

// AttributePair is one entry of a batch assignment.
type AttributePair struct {
	Name  string `json:"name" validate:"required,max=120"`
	Value string `json:"value"`
}

type AssignmentRepo interface {
	FindSpuAttribute(ctx context.Context, spuID, name string) (*SpuAttribute, error)
	FindSpuAttributeByID(ctx context.Context, id string) (*SpuAttribute, error)
	ListSpuAttributes(ctx context.Context, spuID string) ([]SpuAttribute, error)

	FindSkuAttribute(ctx context.Context, skuID, name string) (*SkuAttribute, error)
	FindSkuAttributeByID(ctx context.Context, id string) (*SkuAttribute, error)
	ListSkuAttributes(ctx context.Context, skuID string) ([]SkuAttribute, error)
}

type ProductRepo interface {
	FindSpu(ctx context.Context, id string) (*Spu, error)
	FindSku(ctx context.Context, id string) (*Sku, error)
}

// EntityManager stages writes and applies them on Flush, in staging order and
// in one transaction. Accepted entities: *Attribute, *SpuAttribute, *SkuAttribute.
type EntityManager interface {
	Persist(entity any)
	Remove(entity any)
	Flush(ctx context.Context) error
	Clear()
}
