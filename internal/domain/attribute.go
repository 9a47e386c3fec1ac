package domain

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type AttributeType string

const (
	AttributeTypeSales    AttributeType = "sales"
	AttributeTypeNonSales AttributeType = "non_sales"
	AttributeTypeCustom   AttributeType = "custom"
)

func (t AttributeType) Valid() bool {
	switch t {
	case AttributeTypeSales, AttributeTypeNonSales, AttributeTypeCustom:
		return true
	}
	return false
}

type AttributeValueType string

const (
	ValueTypeSingle   AttributeValueType = "single"
	ValueTypeMultiple AttributeValueType = "multiple"
	ValueTypeText     AttributeValueType = "text"
	ValueTypeNumber   AttributeValueType = "number"
	ValueTypeBoolean  AttributeValueType = "boolean"
	ValueTypeDate     AttributeValueType = "date"
)

func (t AttributeValueType) Valid() bool {
	switch t {
	case ValueTypeSingle, ValueTypeMultiple, ValueTypeText, ValueTypeNumber, ValueTypeBoolean, ValueTypeDate:
		return true
	}
	return false
}

type AttributeInputType string

const (
	InputTypeSelect      AttributeInputType = "select"
	InputTypeMultiSelect AttributeInputType = "multi_select"
	InputTypeInput       AttributeInputType = "input"
	InputTypeTextarea    AttributeInputType = "textarea"
	InputTypeRadio       AttributeInputType = "radio"
	InputTypeCheckbox    AttributeInputType = "checkbox"
	InputTypeNumber      AttributeInputType = "number"
	InputTypeDate        AttributeInputType = "date"
	InputTypeColor       AttributeInputType = "color"
	InputTypeImage       AttributeInputType = "image"
)

func (t AttributeInputType) Valid() bool {
	switch t {
	case InputTypeSelect, InputTypeMultiSelect, InputTypeInput, InputTypeTextarea, InputTypeRadio,
		InputTypeCheckbox, InputTypeNumber, InputTypeDate, InputTypeColor, InputTypeImage:
		return true
	}
	return false
}

type AttributeStatus string

const (
	StatusActive   AttributeStatus = "active"
	StatusInactive AttributeStatus = "inactive"
)

func (s AttributeStatus) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Attribute is a catalog-wide attribute definition. It owns its Values: they are
// saved and deleted together with it.
type Attribute struct {
	ID              string             `gorm:"type:varchar(36);primaryKey"`
	Code            string             `gorm:"size:64;uniqueIndex;not null"`
	Name            string             `gorm:"size:120;not null"`
	Description     *string            `gorm:"type:text"`
	Type            AttributeType      `gorm:"type:varchar(20);index;not null"`
	ValueType       AttributeValueType `gorm:"type:varchar(20);not null"`
	InputType       AttributeInputType `gorm:"type:varchar(20);not null"`
	Unit            *string            `gorm:"size:20"`
	IsRequired      bool               `gorm:"not null;default:false"`
	IsSearchable    bool               `gorm:"not null;default:false"`
	IsFilterable    bool               `gorm:"not null;default:false"`
	IsMultiple      bool               `gorm:"not null;default:false"`
	SortOrder       int                `gorm:"not null;default:0;index"`
	Config          datatypes.JSON     `gorm:"type:jsonb"`
	ValidationRules datatypes.JSON     `gorm:"type:jsonb"`
	Status          AttributeStatus    `gorm:"type:varchar(20);index;not null;default:'active'"`
	Values          []AttributeValue   `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *Attribute) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (a *Attribute) IsSalesAttribute() bool    { return a.Type == AttributeTypeSales }
func (a *Attribute) IsNonSalesAttribute() bool { return a.Type == AttributeTypeNonSales }
func (a *Attribute) IsCustomAttribute() bool   { return a.Type == AttributeTypeCustom }
func (a *Attribute) IsActive() bool            { return a.Status == StatusActive }

// AddValue appends v to the collection and points it back at a. A value with the
// same non-empty ID already in the collection is replaced in place.
func (a *Attribute) AddValue(v AttributeValue) *AttributeValue {
	v.AttributeID = a.ID
	if v.ID != "" {
		for i := range a.Values {
			if a.Values[i].ID == v.ID {
				a.Values[i] = v
				return &a.Values[i]
			}
		}
	}
	a.Values = append(a.Values, v)
	return &a.Values[len(a.Values)-1]
}

// RemoveValue drops the value with the given id. Reports whether it was present.
func (a *Attribute) RemoveValue(id string) bool {
	for i := range a.Values {
		if a.Values[i].ID == id {
			a.Values = append(a.Values[:i], a.Values[i+1:]...)
			return true
		}
	}
	return false
}

func (a *Attribute) HasValue(id string) bool {
	for i := range a.Values {
		if a.Values[i].ID == id {
			return true
		}
	}
	return false
}

// ActiveValuesByPriority returns the active values, highest SortOrder first.
// Values sharing a SortOrder keep their collection order.
func (a *Attribute) ActiveValuesByPriority() []AttributeValue {
	out := make([]AttributeValue, 0, len(a.Values))
	for _, v := range a.Values {
		if v.IsActive() {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder > out[j].SortOrder })
	return out
}

type AttributeValue struct {
	ID          string          `gorm:"type:varchar(36);primaryKey"`
	AttributeID string          `gorm:"type:varchar(36);index;not null"`
	Code        string          `gorm:"size:64"`
	Value       string          `gorm:"size:255"`
	Label       string          `gorm:"size:255"`
	SortOrder   int             `gorm:"not null;default:0"`
	Status      AttributeStatus `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (v *AttributeValue) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (v *AttributeValue) IsActive() bool { return v.Status == StatusActive }

// AttributeQuery selects attributes. Every non-empty field is one predicate and
// predicates are ANDed. Search matches Code or Name by case-sensitive substring.
// WithValues loads each attribute's values along with it.
type AttributeQuery struct {
	Type       AttributeType
	Status     AttributeStatus
	Search     string
	WithValues bool
}

func (q AttributeQuery) Matches(a *Attribute) bool {
	if q.Type != "" && a.Type != q.Type {
		return false
	}
	if q.Status != "" && a.Status != q.Status {
		return false
	}
	if q.Search != "" && !strings.Contains(a.Code, q.Search) && !strings.Contains(a.Name, q.Search) {
		return false
	}
	return true
}

// AttributeRepo is the Attribute Store. Find results are ordered by SortOrder
// ascending. Missing rows yield ErrNotFound, duplicate codes ErrConflict.
type AttributeRepo interface {
	FindByID(ctx context.Context, id string) (*Attribute, error)
	FindByCode(ctx context.Context, code string) (*Attribute, error)
	Find(ctx context.Context, q AttributeQuery) ([]Attribute, error)
	Save(ctx context.Context, a *Attribute) error
	Delete(ctx context.Context, id string) error
}
