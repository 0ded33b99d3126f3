package adminapi

import (
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecomkit/storefront/config"
	"github.com/ecomkit/storefront/internal/app"
	"github.com/ecomkit/storefront/internal/domain"
	"github.com/ecomkit/storefront/internal/testutil"
	"github.com/ecomkit/storefront/internal/userapi"
	"github.com/ecomkit/storefront/internal/webserver"
	jsoniter "github.com/json-iterator/go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type fixture struct {
	srv   *webserver.Server
	app   *app.Application
	admin string
	user  string
}

func newFixture(t *testing.T) *fixture {
	cfg := *config.DefaultAppConfig
	cfg.Auth.BcryptCost = bcrypt.MinCost
	application := app.NewApplication(&cfg)
	application.OverrideDB(testutil.NewTestDB(t))
	srv := webserver.NewServer(application)
	userapi.Register(srv)
	Register(srv)

	f := &fixture{srv: srv, app: application}
	f.admin = f.session(t, "admin@example.com", domain.RoleAdmin)
	f.user = f.session(t, "user@example.com", domain.RoleUser)
	return f
}

func (f *fixture) session(t *testing.T, email string, role domain.Role) string {
	user := testutil.CreateUser(t, f.app.DB(), email, role)
	s, err := f.app.Sessions().CreateSession(context.Background(), user.ID)
	require.NoError(t, err)
	return s.Token
}

type reply struct {
	code int
	raw  *httptest.ResponseRecorder
	body map[string]interface{}
}

func (r reply) data() map[string]interface{} {
	d, _ := r.body["data"].(map[string]interface{})
	return d
}

func (f *fixture) do(method, path, body, token string) reply {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.srv.Echo().ServeHTTP(rec, req)
	out := reply{code: rec.Code, raw: rec}
	_ = json.Unmarshal(rec.Body.Bytes(), &out.body)
	return out
}

func TestAdminGate(t *testing.T) {
	f := newFixture(t)

	r := f.do(http.MethodGet, "/admin/check", "", "")
	assert.Equal(t, http.StatusUnauthorized, r.code)

	r = f.do(http.MethodGet, "/admin/check", "", f.user)
	assert.Equal(t, http.StatusUnauthorized, r.code)
	assert.Equal(t, false, r.body["success"])

	r = f.do(http.MethodGet, "/admin/check", "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	admin := r.data()["admin"].(map[string]interface{})
	assert.Equal(t, "ADMIN", admin["type"])
}

func TestPenScenario(t *testing.T) {
	f := newFixture(t)

	r := f.do(http.MethodPost, "/admin/product/new", `{"name":"Pen","originalPrice":10}`, f.admin)
	require.Equal(t, http.StatusCreated, r.code, r.body)
	assert.Equal(t, "Product created successfully", r.body["message"])
	product := r.data()["product"].(map[string]interface{})
	assert.Equal(t, false, product["active"])
	assert.EqualValues(t, 0, product["stock"])
	assert.EqualValues(t, 10, product["originalPrice"])
	assert.Nil(t, product["price"])
	assert.Equal(t, []interface{}{}, product["tags"])
	id := jsonNumber(product["id"])

	r = f.do(http.MethodGet, "/admin/product/all", "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	assert.Len(t, r.data()["products"], 1)

	// the public list hides inactive products
	r = f.do(http.MethodGet, "/user/product/all", "", "")
	require.Equal(t, http.StatusOK, r.code)
	assert.Len(t, r.data()["products"], 0)

	r = f.do(http.MethodPost, "/user/product/add", `{"productId":`+id+`}`, f.user)
	require.Equal(t, http.StatusCreated, r.code, r.body)
	assert.NotNil(t, r.data()["item"])
	assert.Len(t, r.data()["cartItems"], 0)

	r = f.do(http.MethodGet, "/user/cart", "", f.user)
	require.Equal(t, http.StatusOK, r.code)
	assert.Len(t, r.data()["cartItems"], 0)
}

func TestProductLifecycle(t *testing.T) {
	f := newFixture(t)

	r := f.do(http.MethodPost, "/admin/product/new",
		`{"name":"Notebook","originalPrice":"12.5","price":9,"stock":"4","tags":"paper, office","active":true}`, f.admin)
	require.Equal(t, http.StatusCreated, r.code, r.body)
	id := jsonNumber(r.data()["product"].(map[string]interface{})["id"])

	r = f.do(http.MethodGet, "/admin/product/get/"+id, "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	product := r.data()["product"].(map[string]interface{})
	assert.EqualValues(t, 4, product["stock"])
	assert.Equal(t, []interface{}{"paper", "office"}, product["tags"])

	r = f.do(http.MethodPut, "/admin/product/edit/"+id, `{"name":"Notebook A5","originalPrice":11}`, f.admin)
	require.Equal(t, http.StatusOK, r.code, r.body)
	product = r.data()["product"].(map[string]interface{})
	assert.Equal(t, "Notebook A5", product["name"])
	assert.Nil(t, product["price"])
	assert.Equal(t, false, product["active"])

	r = f.do(http.MethodPut, "/admin/product/edit/"+id, `{"name":"Notebook"}`, f.admin)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "Invalid Inputs for Update Product", r.body["message"])

	r = f.do(http.MethodDelete, "/admin/product/delete/"+id, "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	assert.NotNil(t, r.data()["deletedProduct"].(map[string]interface{})["deletedAt"])

	r = f.do(http.MethodDelete, "/admin/product/delete/"+id, "", f.admin)
	assert.Equal(t, http.StatusNotFound, r.code)
	r = f.do(http.MethodGet, "/admin/product/get/"+id, "", f.admin)
	assert.Equal(t, http.StatusNotFound, r.code)
	r = f.do(http.MethodPut, "/admin/product/edit/"+id, `{"name":"Notebook","originalPrice":11}`, f.admin)
	assert.Equal(t, http.StatusNotFound, r.code)

	r = f.do(http.MethodGet, "/admin/product/get/abc", "", f.admin)
	assert.Equal(t, http.StatusBadRequest, r.code)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t)

	r := f.do(http.MethodPost, "/admin/product/new", `{"name":"Pen"}`, f.admin)
	assert.Equal(t, http.StatusBadRequest, r.code)
	assert.Equal(t, "Invalid Inputs for Creating Product", r.body["message"])
	assert.NotEmpty(t, r.body["error"])

	r = f.do(http.MethodPost, "/admin/product/new", `{"name":"Pen","originalPrice":10,"stock":-1}`, f.admin)
	assert.Equal(t, http.StatusBadRequest, r.code)

	r = f.do(http.MethodPost, "/admin/product/new", `{"name":"Pen","originalPrice":10}`, f.user)
	assert.Equal(t, http.StatusUnauthorized, r.code)
}

func TestAdminListFilters(t *testing.T) {
	f := newFixture(t)
	db := f.app.DB()
	testutil.CreateProduct(t, db, domain.Product{Name: "Lamp", Price: testutil.Float(40), Active: true})
	testutil.CreateProduct(t, db, domain.Product{Name: "Desk", Price: testutil.Float(120), Active: false})
	testutil.CreateProduct(t, db, domain.Product{Name: "Chair", Price: testutil.Float(80), Active: true})

	r := f.do(http.MethodPost, "/admin/product/all", `{"active":false}`, f.admin)
	require.Equal(t, http.StatusOK, r.code, r.body)
	products := r.data()["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Desk", products[0].(map[string]interface{})["name"])

	r = f.do(http.MethodGet, "/admin/product/all?minPrice=50&priceSort=DESC&limit=1", "", f.admin)
	require.Equal(t, http.StatusOK, r.code, r.body)
	products = r.data()["products"].([]interface{})
	require.Len(t, products, 1)
	assert.Equal(t, "Desk", products[0].(map[string]interface{})["name"])
	pagination := r.data()["pagination"].(map[string]interface{})
	assert.EqualValues(t, 2, pagination["total"])
	assert.EqualValues(t, 2, pagination["pages"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, false, pagination["hasPrev"])
}

func TestExportProducts(t *testing.T) {
	f := newFixture(t)
	db := f.app.DB()
	testutil.CreateProduct(t, db, domain.Product{Name: "Lamp", OriginalPrice: testutil.Float(40), Tags: domain.StringList{"home", "light"}})
	gone := testutil.CreateProduct(t, db, domain.Product{Name: "Gone"})
	require.NoError(t, db.Model(gone).Update("deleted_at", gone.CreatedAt).Error)

	r := f.do(http.MethodGet, "/admin/product/export", "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	assert.Contains(t, r.raw.Header().Get(echo.HeaderContentType), "text/csv")
	assert.Contains(t, r.raw.Header().Get(echo.HeaderContentDisposition), "attachment")

	records, err := csv.NewReader(strings.NewReader(r.raw.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "id", records[0][0])
	assert.Equal(t, "Lamp", records[1][1])
	assert.Equal(t, "40", records[1][4])
	assert.Equal(t, "home|light", records[1][7])
}

func TestOperationLog(t *testing.T) {
	f := newFixture(t)

	r := f.do(http.MethodPost, "/admin/product/new", `{"name":"Pen","originalPrice":10}`, f.admin)
	require.Equal(t, http.StatusCreated, r.code, r.body)
	id := jsonNumber(r.data()["product"].(map[string]interface{})["id"])
	r = f.do(http.MethodDelete, "/admin/product/delete/"+id, "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	f.app.Events().Wait()

	r = f.do(http.MethodGet, "/admin/oprlog/all", "", f.admin)
	require.Equal(t, http.StatusOK, r.code, r.body)
	logs := r.data()["logs"].([]interface{})
	require.Len(t, logs, 2)
	actions := []interface{}{
		logs[0].(map[string]interface{})["opt_action"],
		logs[1].(map[string]interface{})["opt_action"],
	}
	assert.ElementsMatch(t, []interface{}{"product.create", "product.delete"}, actions)
	assert.Equal(t, "admin@example.com", logs[0].(map[string]interface{})["opr_name"])

	r = f.do(http.MethodGet, "/admin/oprlog/all?keyword=delete", "", f.admin)
	require.Equal(t, http.StatusOK, r.code)
	assert.Len(t, r.data()["logs"], 1)
}

func jsonNumber(v interface{}) string {
	b, _ := json.Marshal(v)
	return string(b)
}
