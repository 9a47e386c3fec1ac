package httpserver

import (
	"fmt"
	"net/http"

	"github.com/phenrril/productattr/internal/domain"
	"github.com/phenrril/productattr/internal/usecase"
)

const (
	msgSpuNotFound        = "Spu not found"
	msgSkuNotFound        = "Sku not found"
	msgAssignmentNotFound = "Assignment not found"
)

// decodePairs reads a JSON array of {name, value} and validates every entry.
func (s *Server) decodePairs(w http.ResponseWriter, r *http.Request) ([]domain.AttributePair, error) {
	var pairs []domain.AttributePair
	if err := decodeJSON(w, r, &pairs); err != nil {
		return nil, err
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("%w: no attributes given", domain.ErrInvalid)
	}
	for i := range pairs {
		if err := s.validate.Struct(&pairs[i]); err != nil {
			return nil, err
		}
	}
	return pairs, nil
}

func (s *Server) apiSpuAttributesList(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	spu, err := s.products.FindSpu(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgSpuNotFound)
		return
	}
	rows, err := s.managers().GetSpuAttributes(r.Context(), spu)
	if err != nil {
		writeError(w, r, err, msgSpuNotFound)
		return
	}
	out := make([]usecase.SpuAttributeView, 0, len(rows))
	for i := range rows {
		out = append(out, usecase.NewSpuAttributeView(&rows[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) apiSpuAttributesSet(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	spu, err := s.products.FindSpu(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgSpuNotFound)
		return
	}
	pairs, err := s.decodePairs(w, r)
	if err != nil {
		writeError(w, r, err, msgSpuNotFound)
		return
	}
	rows, err := s.managers().BatchSetSpuAttributes(r.Context(), spu, pairs)
	if err != nil {
		writeError(w, r, err, msgSpuNotFound)
		return
	}
	out := make([]usecase.SpuAttributeView, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.NewSpuAttributeView(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) apiSpuAttributeDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	m := s.managers()
	row, err := m.Assignments.FindSpuAttributeByID(r.Context(), r.PathValue("attrId"))
	if err == nil && row.SpuID != r.PathValue("id") {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeError(w, r, err, msgAssignmentNotFound)
		return
	}
	if err := m.RemoveSpuAttribute(r.Context(), row); err != nil {
		writeError(w, r, err, msgAssignmentNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiSkuAttributesList(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	sku, err := s.products.FindSku(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgSkuNotFound)
		return
	}
	rows, err := s.managers().GetSkuAttributes(r.Context(), sku)
	if err != nil {
		writeError(w, r, err, msgSkuNotFound)
		return
	}
	out := make([]usecase.SkuAttributeView, 0, len(rows))
	for i := range rows {
		out = append(out, usecase.NewSkuAttributeView(&rows[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) apiSkuAttributesSet(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	sku, err := s.products.FindSku(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgSkuNotFound)
		return
	}
	pairs, err := s.decodePairs(w, r)
	if err != nil {
		writeError(w, r, err, msgSkuNotFound)
		return
	}
	rows, err := s.managers().BatchSetSkuAttributes(r.Context(), sku, pairs)
	if err != nil {
		writeError(w, r, err, msgSkuNotFound)
		return
	}
	out := make([]usecase.SkuAttributeView, 0, len(rows))
	for _, row := range rows {
		out = append(out, usecase.NewSkuAttributeView(row))
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": out})
}

func (s *Server) apiSkuAttributeDelete(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireAdmin(w, r); !ok {
		return
	}
	m := s.managers()
	row, err := m.Assignments.FindSkuAttributeByID(r.Context(), r.PathValue("attrId"))
	if err == nil && row.SkuID != r.PathValue("id") {
		err = domain.ErrNotFound
	}
	if err != nil {
		writeError(w, r, err, msgAssignmentNotFound)
		return
	}
	if err := m.RemoveSkuAttribute(r.Context(), row); err != nil {
		writeError(w, r, err, msgAssignmentNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
