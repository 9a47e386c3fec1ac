package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"gorm.io/datatypes"

	"github.com/phenrril/productattr/internal/adapters/adminmenu"
	"github.com/phenrril/productattr/internal/adapters/export"
	"github.com/phenrril/productattr/internal/domain"
	"github.com/phenrril/productattr/internal/usecase"
)

const msgValueNotFound = "Attribute value not found"

type attributeValueRequest struct {
	Code      string `json:"code" validate:"required,max=64"`
	Value     string `json:"value" validate:"required,max=255"`
	Label     string `json:"label" validate:"max=255"`
	SortOrder int    `json:"sortOrder"`
	Status    string `json:"status" validate:"omitempty,oneof=active inactive"`
}

type attributeRequest struct {
	Code            string                  `json:"code" validate:"required,max=64"`
	Name            string                  `json:"name" validate:"required,max=120"`
	Description     *string                 `json:"description"`
	Type            string                  `json:"type" validate:"required,oneof=sales non_sales custom"`
	ValueType       string                  `json:"valueType" validate:"required,oneof=single multiple text number boolean date"`
	InputType       string                  `json:"inputType" validate:"required,oneof=select multi_select input textarea radio checkbox number date color image"`
	Unit            *string                 `json:"unit" validate:"omitempty,max=20"`
	IsRequired      bool                    `json:"isRequired"`
	IsSearchable    bool                    `json:"isSearchable"`
	IsFilterable    bool                    `json:"isFilterable"`
	IsMultiple      bool                    `json:"isMultiple"`
	SortOrder       int                     `json:"sortOrder"`
	Config          json.RawMessage         `json:"config"`
	ValidationRules json.RawMessage         `json:"validationRules"`
	Status          string                  `json:"status" validate:"omitempty,oneof=active inactive"`
	Values          []attributeValueRequest `json:"values" validate:"dive"`
}

func (req *attributeRequest) toDomain() *domain.Attribute {
	a := &domain.Attribute{
		Code:         req.Code,
		Name:         req.Name,
		Description:  req.Description,
		Type:         domain.AttributeType(req.Type),
		ValueType:    domain.AttributeValueType(req.ValueType),
		InputType:    domain.AttributeInputType(req.InputType),
		Unit:         req.Unit,
		IsRequired:   req.IsRequired,
		IsSearchable: req.IsSearchable,
		IsFilterable: req.IsFilterable,
		IsMultiple:   req.IsMultiple,
		SortOrder:    req.SortOrder,
		Status:       domain.AttributeStatus(req.Status),
	}
	if len(req.Config) > 0 && string(req.Config) != "null" {
		a.Config = datatypes.JSON(req.Config)
	}
	if len(req.ValidationRules) > 0 && string(req.ValidationRules) != "null" {
		a.ValidationRules = datatypes.JSON(req.ValidationRules)
	}
	for _, v := range req.Values {
		a.AddValue(domain.AttributeValue{
			Code:      v.Code,
			Value:     v.Value,
			Label:     v.Label,
			SortOrder: v.SortOrder,
			Status:    domain.AttributeStatus(v.Status),
		})
	}
	return a
}

func (s *Server) apiAdminAttributeCreate(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	var req attributeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	a := req.toDomain()
	if err := s.attributes.Create(r.Context(), a); err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": usecase.NewAttributeDetail(a)})
}

func (s *Server) apiAdminAttributeDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	if err := s.attributes.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiAdminAttributeValueDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	id := r.PathValue("id")
	if _, err := s.attributes.Show(r.Context(), id); err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	if err := s.attributes.RemoveValue(r.Context(), id, r.PathValue("valueId")); err != nil {
		writeError(w, r, err, msgValueNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiAdminAttributesExport(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	list, err := s.attributes.Catalog(r.Context())
	if err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteCatalog(&buf, list); err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	name := "attributes-" + time.Now().Format("20060102") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (s *Server) apiAdminMenu(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	root := adminmenu.NewItem("root")
	if s.menu != nil {
		s.menu.Contribute(root)
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": root})
}
