package httpserver

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/phenrril/productattr/internal/adapters/adminmenu"
	"github.com/phenrril/productattr/internal/adapters/repo/memory"
	"github.com/phenrril/productattr/internal/domain"
	"github.com/phenrril/productattr/internal/testutil"
	"github.com/phenrril/productattr/internal/usecase"
)

const (
	base     = Prefix
	adminKey = "test-admin-key"
)

type env struct {
	h     http.Handler
	store *memory.Store
	attrs *memory.AttributeRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := memory.NewStore()
	attrs := memory.NewAttributeRepo(store)
	assignments := memory.NewAssignmentRepo(store)
	h := New(Options{
		Attributes: &usecase.AttributeUC{Attributes: attrs},
		Managers: func() *usecase.AttributeManager {
			return usecase.NewAttributeManager(memory.NewEntityManager(store), assignments)
		},
		Products:    memory.NewProductRepo(store),
		Menu:        &adminmenu.Provider{Links: adminmenu.PathLinks{Base: "/admin/crud"}},
		JWTSecret:   testutil.JWTSecret,
		AdminAPIKey: adminKey,
		AdminEmails: []string{"admin@test.com"},
	})
	return &env{h: h, store: store, attrs: attrs}
}

func (e *env) seed(t *testing.T, a *domain.Attribute) *domain.Attribute {
	t.Helper()
	if a.Name == "" {
		a.Name = a.Code
	}
	if a.Type == "" {
		a.Type = domain.AttributeTypeSales
	}
	if a.ValueType == "" {
		a.ValueType = domain.ValueTypeSingle
	}
	if a.InputType == "" {
		a.InputType = domain.InputTypeSelect
	}
	if a.Status == "" {
		a.Status = domain.StatusActive
	}
	require.NoError(t, e.attrs.Save(context.Background(), a))
	return a
}

func dataList(t *testing.T, body map[string]any) []any {
	t.Helper()
	list, ok := body["data"].([]any)
	require.True(t, ok, "data is not a list: %v", body)
	return list
}

func TestReadRoutesRequireToken(t *testing.T) {
	e := newEnv(t)
	for _, path := range []string{"/attributes", "/attributes/search?q=x", "/attributes/abc", "/attributes/abc/values"} {
		w := testutil.DoRequest(e.h, http.MethodGet, base+path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnsupportedMethod(t *testing.T) {
	e := newEnv(t)
	w := testutil.DoRequest(e.h, http.MethodPost, base+"/attributes", nil, testutil.ViewerToken())
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestListEndpoint(t *testing.T) {
	e := newEnv(t)
	e.seed(t, &domain.Attribute{Code: "color", SortOrder: 2})
	e.seed(t, &domain.Attribute{Code: "size", SortOrder: 1})
	e.seed(t, &domain.Attribute{Code: "legacy", Status: domain.StatusInactive})

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get(HeaderRequestID))

	body := testutil.ParseResponse(w)
	list := dataList(t, body)
	require.Len(t, list, 2)
	first := list[0].(map[string]any)
	assert.Equal(t, "size", first["code"])
	assert.Equal(t, "sales", first["type"])
	assert.Contains(t, first, "valueType")
	assert.Contains(t, first, "unit")
	assert.NotContains(t, body, "pagination")
}

func TestListEndpointPagination(t *testing.T) {
	e := newEnv(t)
	for i := 0; i < 25; i++ {
		e.seed(t, &domain.Attribute{Code: fmt.Sprintf("attr_%02d", i), SortOrder: i})
	}

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes?page=1&limit=10", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.ParseResponse(w)
	assert.Len(t, dataList(t, body), 10)
	p, ok := body["pagination"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), p["current_page"])
	assert.Equal(t, float64(10), p["per_page"])
	assert.Equal(t, float64(25), p["total"])
	assert.Equal(t, float64(3), p["last_page"])

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/attributes?page=abc&limit=x", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	body = testutil.ParseResponse(w)
	assert.Len(t, dataList(t, body), 20)
	assert.Contains(t, body, "pagination")

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/attributes?page=2&limit=9223372036854775807", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, testutil.ParseResponse(w)))

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/attributes?page=922337203685477580&limit=20", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, dataList(t, testutil.ParseResponse(w)))
}

func TestSearchEndpoint(t *testing.T) {
	e := newEnv(t)
	e.seed(t, &domain.Attribute{Code: "color", Name: "Color"})
	e.seed(t, &domain.Attribute{Code: "old_color", Name: "Old color", Status: domain.StatusInactive})

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes/search", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/attributes/search?q=color", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, testutil.ParseResponse(w))
	require.Len(t, list, 2)
	item := list[0].(map[string]any)
	assert.Len(t, item, 4)
	assert.ElementsMatch(t, []string{"id", "code", "name", "type"}, keys(item))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

func TestShowEndpoint(t *testing.T) {
	e := newEnv(t)
	a := &domain.Attribute{Code: "color"}
	a.AddValue(domain.AttributeValue{Code: "red", Value: "#f00", Label: "Red", SortOrder: 1, Status: domain.StatusActive})
	e.seed(t, a)

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes/"+a.ID, nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	data := testutil.ParseResponse(w)["data"].(map[string]any)
	assert.Equal(t, a.ID, data["id"])
	assert.Contains(t, data, "config")
	assert.Contains(t, data, "validationRules")
	assert.Len(t, data["values"], 1)

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/attributes/missing", nil, testutil.ViewerToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"Attribute not found"}`, w.Body.String())
}

func TestValuesEndpoint(t *testing.T) {
	e := newEnv(t)
	a := &domain.Attribute{Code: "size"}
	a.AddValue(domain.AttributeValue{Code: "s", SortOrder: 10, Status: domain.StatusActive})
	a.AddValue(domain.AttributeValue{Code: "m", SortOrder: 20, Status: domain.StatusActive})
	a.AddValue(domain.AttributeValue{Code: "l", SortOrder: 30, Status: domain.StatusInactive})
	e.seed(t, a)

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes/"+a.ID+"/values", nil, testutil.ViewerToken())
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, testutil.ParseResponse(w))
	require.Len(t, list, 2)
	assert.Equal(t, float64(20), list[0].(map[string]any)["sortOrder"])
	assert.Equal(t, float64(10), list[1].(map[string]any)["sortOrder"])

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/attributes/missing/values", nil, testutil.ViewerToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotContains(t, testutil.ParseResponse(w), "data")
}

func TestAdminRoutesNeedAdminRole(t *testing.T) {
	e := newEnv(t)
	w := testutil.DoRequest(e.h, http.MethodGet, base+"/admin/menu", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/admin/menu", nil, testutil.ViewerToken())
	assert.Equal(t, http.StatusForbidden, w.Code)

	// admin role but email not allowed
	w = testutil.DoRequest(e.h, http.MethodGet, base+"/admin/menu", nil, testutil.GenerateTestToken("other@test.com", RoleAdmin))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminCreateAndDelete(t *testing.T) {
	e := newEnv(t)
	body := map[string]any{
		"code":      "color",
		"name":      "Color",
		"type":      "sales",
		"valueType": "single",
		"inputType": "color",
		"config":    map[string]any{"swatch": true},
		"values": []map[string]any{
			{"code": "red", "value": "#f00", "label": "Red", "sortOrder": 1},
			{"code": "blue", "value": "#00f", "label": "Blue", "sortOrder": 2},
		},
	}
	w := testutil.DoRequest(e.h, http.MethodPost, base+"/admin/attributes", body, testutil.AdminToken())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := testutil.ParseResponse(w)["data"].(map[string]any)
	id := data["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "active", data["status"])
	assert.Equal(t, map[string]any{"swatch": true}, data["config"])
	values := data["values"].([]any)
	require.Len(t, values, 2)
	redID := values[0].(map[string]any)["id"].(string)

	w = testutil.DoRequest(e.h, http.MethodPost, base+"/admin/attributes", body, testutil.AdminToken())
	assert.Equal(t, http.StatusConflict, w.Code)

	w = testutil.DoRequest(e.h, http.MethodDelete, base+"/admin/attributes/"+id+"/values/"+redID, nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoRequest(e.h, http.MethodDelete, base+"/admin/attributes/"+id+"/values/"+redID, nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Attribute value not found"}`, w.Body.String())

	got, err := e.attrs.FindByID(context.Background(), id)
	require.NoError(t, err)
	require.Len(t, got.Values, 1)
	assert.Equal(t, "blue", got.Values[0].Code)

	w = testutil.DoRequest(e.h, http.MethodDelete, base+"/admin/attributes/"+id, nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoRequest(e.h, http.MethodDelete, base+"/admin/attributes/"+id, nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminCreateValidation(t *testing.T) {
	e := newEnv(t)
	cases := map[string]map[string]any{
		"missing code": {"name": "Color", "type": "sales", "valueType": "single", "inputType": "select"},
		"bad type":     {"code": "c", "name": "Color", "type": "SALES", "valueType": "single", "inputType": "select"},
		"bad value":    {"code": "c", "name": "Color", "type": "sales", "valueType": "single", "inputType": "select", "values": []map[string]any{{"code": ""}}},
	}
	for name, body := range cases {
		w := testutil.DoRequest(e.h, http.MethodPost, base+"/admin/attributes", body, testutil.AdminToken())
		assert.Equal(t, http.StatusBadRequest, w.Code, name)
	}

	req := httptest.NewRequest(http.MethodPost, base+"/admin/attributes", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+testutil.AdminToken())
	w := httptest.NewRecorder()
	e.h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminExport(t *testing.T) {
	e := newEnv(t)
	a := &domain.Attribute{Code: "color"}
	a.AddValue(domain.AttributeValue{Code: "red", Status: domain.StatusActive})
	e.seed(t, a)

	w := testutil.DoRequest(e.h, http.MethodGet, base+"/admin/attributes/export", nil, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Attributes")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "color", rows[1][1])
}

func TestAdminMenu(t *testing.T) {
	e := newEnv(t)
	w := testutil.DoRequest(e.h, http.MethodGet, base+"/admin/menu", nil, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)
	root := testutil.ParseResponse(w)["data"].(map[string]any)
	product := root["children"].([]any)[0].(map[string]any)
	assert.Equal(t, adminmenu.ProductManagement, product["name"])
	attrs := product["children"].([]any)[0].(map[string]any)
	assert.Len(t, attrs["children"], 4)
}

func TestSpuAttributesEndpoints(t *testing.T) {
	e := newEnv(t)
	spu := &domain.Spu{Title: "T-Shirt"}
	e.store.AddSpu(spu)
	path := base + "/spus/" + spu.ID + "/attributes"

	pairs := []map[string]string{{"name": "brand", "value": "Acme"}, {"name": "material", "value": "cotton"}}
	w := testutil.DoRequest(e.h, http.MethodPut, path, pairs, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, dataList(t, testutil.ParseResponse(w)), 2)

	pairs[0]["value"] = "Globex"
	w = testutil.DoRequest(e.h, http.MethodPut, path, pairs, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.DoRequest(e.h, http.MethodGet, path, nil, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)
	list := dataList(t, testutil.ParseResponse(w))
	require.Len(t, list, 2)
	brand := list[0].(map[string]any)
	assert.Equal(t, "Globex", brand["value"])
	assert.Equal(t, spu.ID, brand["spuId"])

	w = testutil.DoRequest(e.h, http.MethodDelete, path+"/"+brand["id"].(string), nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = testutil.DoRequest(e.h, http.MethodDelete, path+"/"+brand["id"].(string), nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoRequest(e.h, http.MethodGet, path, nil, testutil.AdminToken())
	assert.Len(t, dataList(t, testutil.ParseResponse(w)), 1)

	w = testutil.DoRequest(e.h, http.MethodGet, base+"/spus/missing/attributes", nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Spu not found"}`, w.Body.String())

	w = testutil.DoRequest(e.h, http.MethodPut, path, []map[string]string{}, testutil.AdminToken())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = testutil.DoRequest(e.h, http.MethodPut, path, []map[string]string{{"value": "x"}}, testutil.AdminToken())
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSkuAttributesEndpoints(t *testing.T) {
	e := newEnv(t)
	spu := &domain.Spu{Title: "T-Shirt"}
	e.store.AddSpu(spu)
	sku := &domain.Sku{SpuID: spu.ID, Code: "TS-M"}
	e.store.AddSku(sku)
	other := &domain.Sku{SpuID: spu.ID, Code: "TS-L"}
	e.store.AddSku(other)
	path := base + "/skus/" + sku.ID + "/attributes"

	w := testutil.DoRequest(e.h, http.MethodPut, path, []map[string]string{{"name": "size", "value": "M"}}, testutil.AdminToken())
	require.Equal(t, http.StatusOK, w.Code)
	row := dataList(t, testutil.ParseResponse(w))[0].(map[string]any)
	assert.Equal(t, sku.ID, row["skuId"])

	// assignment belongs to another sku
	w = testutil.DoRequest(e.h, http.MethodDelete, base+"/skus/"+other.ID+"/attributes/"+row["id"].(string), nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.DoRequest(e.h, http.MethodDelete, path+"/"+row["id"].(string), nil, testutil.AdminToken())
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func tokenRequest(t *testing.T, h http.Handler, key, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, base+"/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if key != "" {
		req.Header.Set("X-Admin-Key", key)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAuthToken(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusUnauthorized, tokenRequest(t, e.h, "", `{"email":"admin@test.com"}`).Code)
	assert.Equal(t, http.StatusUnauthorized, tokenRequest(t, e.h, "wrong", `{"email":"admin@test.com"}`).Code)
	assert.Equal(t, http.StatusForbidden, tokenRequest(t, e.h, adminKey, `{"email":"intruder@test.com"}`).Code)

	// single allowed email is used when none is given
	w := tokenRequest(t, e.h, adminKey, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := testutil.ParseResponse(w)
	assert.Equal(t, "admin@test.com", body["email"])
	assert.Equal(t, RoleAdmin, body["role"])

	tok := body["token"].(string)
	w = testutil.DoRequest(e.h, http.MethodGet, base+"/admin/menu", nil, tok)
	assert.Equal(t, http.StatusOK, w.Code)

	w = tokenRequest(t, e.h, adminKey, `{"email":"Reader@Test.com","role":"viewer"}`)
	require.Equal(t, http.StatusOK, w.Code)
	viewer := testutil.ParseResponse(w)["token"].(string)
	assert.Equal(t, http.StatusOK, testutil.DoRequest(e.h, http.MethodGet, base+"/attributes", nil, viewer).Code)
	assert.Equal(t, http.StatusForbidden, testutil.DoRequest(e.h, http.MethodGet, base+"/admin/menu", nil, viewer).Code)
}

func TestAuthRejectsForeignSignature(t *testing.T) {
	a := NewAuth("other-secret", "", nil)
	tok, _, err := a.Issue("admin@test.com", RoleAdmin, tokenTTL)
	require.NoError(t, err)

	e := newEnv(t)
	w := testutil.DoRequest(e.h, http.MethodGet, base+"/attributes", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesTable(t *testing.T) {
	routes := Routes()
	require.Len(t, routes, 16)
	names := map[string]Route{}
	for _, r := range routes {
		names[r.Name] = r
	}
	for _, n := range []string{"api_attributes_list", "api_attributes_search", "api_attributes_show", "api_attributes_values"} {
		r, ok := names[n]
		require.True(t, ok, n)
		assert.Equal(t, http.MethodGet, r.Method)
	}
	assert.Equal(t, Prefix+"/attributes/{id}/values", names["api_attributes_values"].Pattern)
}

func TestRecoveryAndRequestID(t *testing.T) {
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}), RequestID, Recovery, Logging)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
}
