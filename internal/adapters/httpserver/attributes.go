package httpserver

import (
	"net/http"

	"github.com/phenrril/productattr/internal/usecase"
)

const msgAttributeNotFound = "Attribute not found"

func (s *Server) apiAttributesList(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	q := r.URL.Query()
	res, err := s.attributes.List(r.Context(), usecase.ListParams{
		Type:   q.Get("type"),
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	})
	if err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) apiAttributesSearch(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	q := r.URL.Query()
	list, err := s.attributes.Search(r.Context(), q.Get("q"), q.Get("type"))
	if err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": list})
}

func (s *Server) apiAttributesShow(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	d, err := s.attributes.Show(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": d})
}

func (s *Server) apiAttributesValues(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireUser(w, r); !ok {
		return
	}
	vals, err := s.attributes.Values(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, msgAttributeNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": vals})
}
