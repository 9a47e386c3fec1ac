package usecase

import (
	"gorm.io/datatypes"

	"github.com/phenrril/productattr/internal/domain"
)

// AttributeView is the list projection of an Attribute.
type AttributeView struct {
	ID           string  `json:"id"`
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Type         string  `json:"type"`
	ValueType    string  `json:"valueType"`
	InputType    string  `json:"inputType"`
	Unit         *string `json:"unit"`
	IsRequired   bool    `json:"isRequired"`
	IsSearchable bool    `json:"isSearchable"`
	IsFilterable bool    `json:"isFilterable"`
	IsMultiple   bool    `json:"isMultiple"`
	SortOrder    int     `json:"sortOrder"`
	Status       string  `json:"status"`
}

type AttributeBrief struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type AttributeValueView struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Value     string `json:"value"`
	Label     string `json:"label"`
	SortOrder int    `json:"sortOrder"`
	Status    string `json:"status"`
}

type AttributeDetail struct {
	ID              string               `json:"id"`
	Code            string               `json:"code"`
	Name            string               `json:"name"`
	Description     *string              `json:"description"`
	Type            string               `json:"type"`
	ValueType       string               `json:"valueType"`
	InputType       string               `json:"inputType"`
	Unit            *string              `json:"unit"`
	IsRequired      bool                 `json:"isRequired"`
	IsSearchable    bool                 `json:"isSearchable"`
	IsFilterable    bool                 `json:"isFilterable"`
	IsMultiple      bool                 `json:"isMultiple"`
	SortOrder       int                  `json:"sortOrder"`
	Config          datatypes.JSON       `json:"config"`
	ValidationRules datatypes.JSON       `json:"validationRules"`
	Status          string               `json:"status"`
	Values          []AttributeValueView `json:"values"`
}

type Pagination struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

type AttributeList struct {
	Data       []AttributeView `json:"data"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

type SpuAttributeView struct {
	ID    string `json:"id"`
	SpuID string `json:"spuId"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

type SkuAttributeView struct {
	ID    string `json:"id"`
	SkuID string `json:"skuId"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

func NewAttributeView(a *domain.Attribute) AttributeView {
	return AttributeView{
		ID:           a.ID,
		Code:         a.Code,
		Name:         a.Name,
		Type:         string(a.Type),
		ValueType:    string(a.ValueType),
		InputType:    string(a.InputType),
		Unit:         a.Unit,
		IsRequired:   a.IsRequired,
		IsSearchable: a.IsSearchable,
		IsFilterable: a.IsFilterable,
		IsMultiple:   a.IsMultiple,
		SortOrder:    a.SortOrder,
		Status:       string(a.Status),
	}
}

func NewAttributeBrief(a *domain.Attribute) AttributeBrief {
	return AttributeBrief{ID: a.ID, Code: a.Code, Name: a.Name, Type: string(a.Type)}
}

func NewAttributeValueView(v *domain.AttributeValue) AttributeValueView {
	return AttributeValueView{
		ID:        v.ID,
		Code:      v.Code,
		Value:     v.Value,
		Label:     v.Label,
		SortOrder: v.SortOrder,
		Status:    string(v.Status),
	}
}

func NewAttributeDetail(a *domain.Attribute) AttributeDetail {
	values := make([]AttributeValueView, 0, len(a.Values))
	for i := range a.Values {
		values = append(values, NewAttributeValueView(&a.Values[i]))
	}
	return AttributeDetail{
		ID:              a.ID,
		Code:            a.Code,
		Name:            a.Name,
		Description:     a.Description,
		Type:            string(a.Type),
		ValueType:       string(a.ValueType),
		InputType:       string(a.InputType),
		Unit:            a.Unit,
		IsRequired:      a.IsRequired,
		IsSearchable:    a.IsSearchable,
		IsFilterable:    a.IsFilterable,
		IsMultiple:      a.IsMultiple,
		SortOrder:       a.SortOrder,
		Config:          a.Config,
		ValidationRules: a.ValidationRules,
		Status:          string(a.Status),
		Values:          values,
	}
}

func NewSpuAttributeView(a *domain.SpuAttribute) SpuAttributeView {
	return SpuAttributeView{ID: a.ID, SpuID: a.SpuID, Name: a.Name, Value: a.Value}
}

func NewSkuAttributeView(a *domain.SkuAttribute) SkuAttributeView {
	return SkuAttributeView{ID: a.ID, SkuID: a.SkuID, Name: a.Name, Value: a.Value}
}
