package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/productattr/internal/adapters/adminmenu"
	"github.com/phenrril/productattr/internal/domain"
	"github.com/phenrril/productattr/internal/usecase"
)

const Prefix = "/api/product-attribute"

const maxBodyBytes = 1 << 20

type Options struct {
	Attributes *usecase.AttributeUC
	// Managers returns a fresh AttributeManager; one is used per request.
	Managers func() *usecase.AttributeManager
	Products domain.ProductRepo
	Menu     *adminmenu.Provider

	JWTSecret   string
	AdminAPIKey string
	AdminEmails []string
	CORSOrigins []string
}

type Server struct {
	mux        *http.ServeMux
	attributes *usecase.AttributeUC
	managers   func() *usecase.AttributeManager
	products   domain.ProductRepo
	menu       *adminmenu.Provider
	auth       *Auth
	validate   *validator.Validate
}

func New(o Options) http.Handler {
	s := &Server{
		mux:        http.NewServeMux(),
		attributes: o.Attributes,
		managers:   o.Managers,
		products:   o.Products,
		menu:       o.Menu,
		auth:       NewAuth(o.JWTSecret, o.AdminAPIKey, o.AdminEmails),
		validate:   validator.New(),
	}
	s.Register(s.mux)
	return Chain(s.mux,
		CORS(o.CORSOrigins),
		RequestID,
		Recovery,
		Logging,
	)
}

// Route is one entry of the table advertised to a host router.
type Route struct {
	Name    string
	Method  string
	Pattern string
}

type binding struct {
	Route
	handler http.HandlerFunc
}

func (s *Server) table() []binding {
	return []binding{
		{Route{"api_attributes_list", http.MethodGet, Prefix + "/attributes"}, s.apiAttributesList},
		{Route{"api_attributes_search", http.MethodGet, Prefix + "/attributes/search"}, s.apiAttributesSearch},
		{Route{"api_attributes_show", http.MethodGet, Prefix + "/attributes/{id}"}, s.apiAttributesShow},
		{Route{"api_attributes_values", http.MethodGet, Prefix + "/attributes/{id}/values"}, s.apiAttributesValues},

		{Route{"api_admin_attributes_create", http.MethodPost, Prefix + "/admin/attributes"}, s.apiAdminAttributeCreate},
		{Route{"api_admin_attributes_delete", http.MethodDelete, Prefix + "/admin/attributes/{id}"}, s.apiAdminAttributeDelete},
		{Route{"api_admin_attribute_values_delete", http.MethodDelete, Prefix + "/admin/attributes/{id}/values/{valueId}"}, s.apiAdminAttributeValueDelete},
		{Route{"api_admin_attributes_export", http.MethodGet, Prefix + "/admin/attributes/export"}, s.apiAdminAttributesExport},
		{Route{"api_admin_menu", http.MethodGet, Prefix + "/admin/menu"}, s.apiAdminMenu},

		{Route{"api_spu_attributes_list", http.MethodGet, Prefix + "/spus/{id}/attributes"}, s.apiSpuAttributesList},
		{Route{"api_spu_attributes_set", http.MethodPut, Prefix + "/spus/{id}/attributes"}, s.apiSpuAttributesSet},
		{Route{"api_spu_attributes_delete", http.MethodDelete, Prefix + "/spus/{id}/attributes/{attrId}"}, s.apiSpuAttributeDelete},
		{Route{"api_sku_attributes_list", http.MethodGet, Prefix + "/skus/{id}/attributes"}, s.apiSkuAttributesList},
		{Route{"api_sku_attributes_set", http.MethodPut, Prefix + "/skus/{id}/attributes"}, s.apiSkuAttributesSet},
		{Route{"api_sku_attributes_delete", http.MethodDelete, Prefix + "/skus/{id}/attributes/{attrId}"}, s.apiSkuAttributeDelete},

		{Route{"api_auth_token", http.MethodPost, Prefix + "/auth/token"}, s.apiAuthToken},
	}
}

// Routes lists every route this package serves.
func Routes() []Route {
	var s *Server
	out := []Route{}
	for _, b := range s.table() {
		out = append(out, b.Route)
	}
	return out
}

// Register binds the route table on mux. Other methods on a bound path get 405.
func (s *Server) Register(mux *http.ServeMux) {
	for _, b := range s.table() {
		mux.HandleFunc(b.Method+" "+b.Pattern, b.handler)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeError maps domain errors to a status; notFound is the 404 message.
func writeError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeMessage(w, http.StatusNotFound, notFound)
	case errors.Is(err, domain.ErrConflict):
		writeMessage(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalid), errors.As(err, &verrs):
		writeMessage(w, http.StatusBadRequest, err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Str("request_id", w.Header().Get(HeaderRequestID)).Msg("request failed")
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.Join(domain.ErrInvalid, err)
	}
	return nil
}

// queryInt reads an integer query parameter. Missing or non-numeric values are 0.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
