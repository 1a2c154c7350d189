package adminapi

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alchepastry/pastryadmin/config"
	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/internal/dashboard"
	"github.com/alchepastry/pastryadmin/internal/domain"
	"github.com/alchepastry/pastryadmin/internal/imaging"
	"github.com/alchepastry/pastryadmin/internal/webserver"
	"github.com/alchepastry/pastryadmin/pkg/metrics"
)

const pngBase64 = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

type testAppContext struct {
	cfg      *config.AppConfig
	store    *catalog.Store
	sessions *dashboard.Registry
	rec      *metrics.Recorder
}

func (a *testAppContext) Config() *config.AppConfig     { return a.cfg }
func (a *testAppContext) Catalog() *catalog.Store       { return a.store }
func (a *testAppContext) Sessions() *dashboard.Registry { return a.sessions }
func (a *testAppContext) Scheduler() *cron.Cron         { return nil }
func (a *testAppContext) Metrics() *metrics.Recorder    { return a.rec }

func newTestAPI(t *testing.T) (*webserver.AdminServer, *testAppContext) {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)

	dec, err := imaging.NewDecoder(2, cfg.ImageMaxBytes())
	require.NoError(t, err)
	t.Cleanup(dec.Release)

	rec, err := metrics.New(time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })

	store := catalog.NewStore(catalog.WithProducts(catalog.SeedProducts(catalog.DefaultCurrency)))
	appCtx := &testAppContext{
		cfg:   cfg,
		store: store,
		rec:   rec,
		sessions: dashboard.NewRegistry(func() *dashboard.Controller {
			return dashboard.NewController(store, dec, dashboard.Account{User: "Admin", Email: "admin@example.com"})
		}),
	}
	srv := webserver.NewAdminServer(cfg)
	Init(srv, appCtx)
	return srv, appCtx
}

// client is one browser: it keeps the session cookie between requests.
type client struct {
	t       *testing.T
	srv     *webserver.AdminServer
	cookies []*http.Cookie
}

type envelope struct {
	Success bool            `json:"success"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Meta    *PageMeta       `json:"meta"`
}

type actionJSON struct {
	Applied bool            `json:"applied"`
	Product *domain.Product `json:"product"`
	View    dashboard.View  `json:"view"`
}

func (cl *client) send(req *http.Request) *httptest.ResponseRecorder {
	for _, ck := range cl.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	cl.srv.Echo().ServeHTTP(rec, req)
	if cks := rec.Result().Cookies(); len(cks) > 0 {
		cl.cookies = cks
	}
	return rec
}

func (cl *client) do(method, path string, body interface{}) (int, envelope) {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(cl.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := cl.send(req)
	var env envelope
	require.NoError(cl.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (cl *client) action(method, path string, body interface{}) actionJSON {
	cl.t.Helper()
	code, env := cl.do(method, path, body)
	require.Equal(cl.t, http.StatusOK, code, string(env.Data))
	var res actionJSON
	require.NoError(cl.t, json.Unmarshal(env.Data, &res))
	return res
}

func (cl *client) view() dashboard.View {
	cl.t.Helper()
	code, env := cl.do(http.MethodGet, "/api/v1/dashboard", nil)
	require.Equal(cl.t, http.StatusOK, code)
	var v dashboard.View
	require.NoError(cl.t, json.Unmarshal(env.Data, &v))
	return v
}

func newClient(t *testing.T, srv *webserver.AdminServer) *client {
	return &client{t: t, srv: srv}
}

func TestListProducts(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)

	code, env := cl.do(http.MethodGet, "/api/v1/catalog/products", nil)
	require.Equal(t, http.StatusOK, code)
	var rows []domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	assert.Len(t, rows, 4)
	require.NotNil(t, env.Meta)
	assert.Equal(t, int64(4), env.Meta.Total)

	code, env = cl.do(http.MethodGet, "/api/v1/catalog/products?category=Cookie&q=oat", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "Oatmeal Cookie", rows[0].Name)

	code, env = cl.do(http.MethodGet, "/api/v1/catalog/products?page=2&perPage=3", nil)
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].ID)

	code, env = cl.do(http.MethodGet, "/api/v1/catalog/products?category=Pie", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_CATEGORY", env.Code)
}

func TestGetProduct(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)

	code, env := cl.do(http.MethodGet, "/api/v1/catalog/products/2", nil)
	require.Equal(t, http.StatusOK, code)
	var p domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "Sugar Cookie", p.Name)

	code, env = cl.do(http.MethodGet, "/api/v1/catalog/products/99", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.False(t, env.Success)

	code, _ = cl.do(http.MethodGet, "/api/v1/catalog/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestExports(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)

	rec := cl.send(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/export.csv", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 5)

	rec = cl.send(httptest.NewRequest(http.MethodGet, "/api/v1/catalog/export.xlsx", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestStatsAndHealth(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)

	code, env := cl.do(http.MethodGet, "/api/v1/catalog/stats", nil)
	require.Equal(t, http.StatusOK, code)
	var sum catalog.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, 4, sum.Count)
	assert.Equal(t, 75, sum.StockTotal)

	code, env = cl.do(http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)
}

func TestAddProductThroughForm(t *testing.T) {
	srv, appCtx := newTestAPI(t)
	cl := newClient(t, srv)

	res := cl.action(http.MethodPost, "/api/v1/dashboard/addform", nil)
	require.NotNil(t, res.View.AddForm)
	assert.Equal(t, domain.CategoryCake, res.View.AddForm.Draft.Category)

	cl.action(http.MethodPatch, "/api/v1/dashboard/addform", map[string]string{
		"name": "Brownie", "description": "Fudgy", "category": "Cookie",
	})
	res = cl.action(http.MethodPut, "/api/v1/dashboard/addform/price", map[string]string{"value": "3a"})
	assert.Equal(t, "3", res.View.AddForm.Draft.Price)
	res = cl.action(http.MethodPost, "/api/v1/dashboard/addform/price/blur", nil)
	assert.Equal(t, "3.00", res.View.AddForm.Draft.Price)

	res = cl.action(http.MethodPost, "/api/v1/dashboard/addform/commit", nil)
	assert.False(t, res.Applied, "commit needs the confirmation popup")
	assert.Equal(t, 4, appCtx.store.Len())

	res = cl.action(http.MethodPost, "/api/v1/dashboard/addform/confirm", nil)
	assert.True(t, res.View.AddForm.ConfirmOpen)
	res = cl.action(http.MethodPost, "/api/v1/dashboard/addform/commit", nil)
	require.True(t, res.Applied)
	require.NotNil(t, res.Product)
	assert.Equal(t, int64(5), res.Product.ID)
	assert.Equal(t, "₱3.00", res.Product.Price)
	assert.Equal(t, domain.CategoryCookie, res.Product.Category)
	assert.Equal(t, catalog.DefaultFallbackImage, res.Product.Image)
	assert.Nil(t, res.View.AddForm)
	assert.Len(t, res.View.Products, 5)
}

func TestAddFormNoOpsWhenClosed(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)

	res := cl.action(http.MethodPut, "/api/v1/dashboard/addform/price", map[string]string{"value": "3"})
	assert.False(t, res.Applied)
	res = cl.action(http.MethodPost, "/api/v1/dashboard/addform/commit", nil)
	assert.False(t, res.Applied)

	code, env := cl.do(http.MethodPatch, "/api/v1/dashboard/addform", map[string]string{"category": "Pie"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_CATEGORY", env.Code)
}

func TestUploadImage(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)
	cl.action(http.MethodPost, "/api/v1/dashboard/addform", nil)

	png, err := base64.StdEncoding.DecodeString(pngBase64)
	require.NoError(t, err)
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "cake.png")
	require.NoError(t, err)
	_, err = fw.Write(png)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/addform/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := cl.send(req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Eventually(t, func() bool {
		v := cl.view()
		return v.AddForm != nil && strings.HasPrefix(v.AddForm.Draft.Image, "data:image/png;base64,")
	}, 2*time.Second, 10*time.Millisecond)

	// no file chosen
	var empty bytes.Buffer
	mw = multipart.NewWriter(&empty)
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPost, "/api/v1/dashboard/addform/image", &empty)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec = cl.send(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"applied":false`)
}

func TestEditFlow(t *testing.T) {
	srv, appCtx := newTestAPI(t)
	cl := newClient(t, srv)

	res := cl.action(http.MethodPost, "/api/v1/dashboard/edit", nil)
	assert.False(t, res.Applied, "nothing selected")

	res = cl.action(http.MethodPut, "/api/v1/dashboard/selection", map[string]int64{"id": 2})
	require.True(t, res.Applied)
	require.NotNil(t, res.View.Selected)
	assert.Empty(t, res.View.Products)

	res = cl.action(http.MethodPost, "/api/v1/dashboard/edit", nil)
	require.True(t, res.Applied)
	assert.Equal(t, "5.00", res.View.Edit.Price)

	res = cl.action(http.MethodPatch, "/api/v1/dashboard/edit", map[string]interface{}{"price": "7", "stock": -3})
	require.True(t, res.Applied)
	assert.Equal(t, 0, res.View.Edit.Stock)

	res = cl.action(http.MethodPost, "/api/v1/dashboard/edit/commit", nil)
	assert.False(t, res.Applied, "commit needs the confirmation popup")

	cl.action(http.MethodPost, "/api/v1/dashboard/edit/confirm", nil)
	res = cl.action(http.MethodPost, "/api/v1/dashboard/edit/commit", nil)
	require.True(t, res.Applied)
	assert.Nil(t, res.View.Edit)

	p, _ := appCtx.store.Get(2)
	assert.Equal(t, "₱7.00", p.Price)
	assert.Equal(t, 0, p.Stock)

	code, env := cl.do(http.MethodPatch, "/api/v1/dashboard/edit", map[string]interface{}{"colour": "red"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_FIELD", env.Code)
}

func TestDeleteClearsSelection(t *testing.T) {
	srv, appCtx := newTestAPI(t)
	cl := newClient(t, srv)

	cl.action(http.MethodPut, "/api/v1/dashboard/selection", map[string]int64{"id": 3})
	res := cl.action(http.MethodDelete, "/api/v1/dashboard/products/3", nil)
	require.True(t, res.Applied)
	assert.Nil(t, res.View.Selected)
	assert.Len(t, res.View.Products, 3)
	assert.Equal(t, 3, appCtx.store.Len())

	res = cl.action(http.MethodDelete, "/api/v1/dashboard/products/3", nil)
	assert.False(t, res.Applied)

	code, _ := cl.do(http.MethodDelete, "/api/v1/dashboard/products/x", nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestSetStock(t *testing.T) {
	srv, appCtx := newTestAPI(t)
	cl := newClient(t, srv)

	res := cl.action(http.MethodPut, "/api/v1/dashboard/products/1/stock", map[string]int{"stock": 12})
	require.True(t, res.Applied)
	p, _ := appCtx.store.Get(1)
	assert.Equal(t, 12, p.Stock)

	cl.action(http.MethodPut, "/api/v1/dashboard/products/1/stock", map[string]int{"stock": -4})
	p, _ = appCtx.store.Get(1)
	assert.Equal(t, 0, p.Stock)

	code, env := cl.do(http.MethodPut, "/api/v1/dashboard/products/1/stock", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Code)
}

func TestTabsFilterAndHome(t *testing.T) {
	srv, _ := newTestAPI(t)
	cl := newClient(t, srv)

	res := cl.action(http.MethodPut, "/api/v1/dashboard/filter", map[string]string{"category": "Cake", "q": "choc"})
	require.Len(t, res.View.Products, 1)
	assert.Equal(t, "Chocolate Cake", res.View.Products[0].Name)

	res = cl.action(http.MethodPut, "/api/v1/dashboard/tab", map[string]string{"tab": "Orders"})
	assert.Equal(t, domain.TabOrders, res.View.Tab)
	require.NotNil(t, res.View.Section)
	assert.Equal(t, "Manage Orders", res.View.Section.Title)
	assert.Empty(t, res.View.Products)

	code, env := cl.do(http.MethodPut, "/api/v1/dashboard/tab", map[string]string{"tab": "Kitchen"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_TAB", env.Code)

	cl.action(http.MethodPut, "/api/v1/dashboard/selection", map[string]int64{"id": 1})
	res = cl.action(http.MethodPost, "/api/v1/dashboard/home", nil)
	assert.Equal(t, domain.TabProduct, res.View.Tab)
	assert.Nil(t, res.View.Selected)
	assert.Equal(t, "Product List", res.View.Title)

	res = cl.action(http.MethodPost, "/api/v1/dashboard/account/toggle", nil)
	require.NotNil(t, res.View.Account)
	assert.Equal(t, "Admin", res.View.Account.User)
}

func TestSessionsAreIsolated(t *testing.T) {
	srv, appCtx := newTestAPI(t)
	alice := newClient(t, srv)
	bob := newClient(t, srv)

	alice.action(http.MethodPut, "/api/v1/dashboard/selection", map[string]int64{"id": 1})
	assert.NotNil(t, alice.view().Selected)
	assert.Nil(t, bob.view().Selected)
	assert.Equal(t, 2, appCtx.sessions.Len())
}

func TestMetricSeries(t *testing.T) {
	srv, appCtx := newTestAPI(t)
	cl := newClient(t, srv)
	appCtx.rec.SetGauge(metrics.CatalogProducts, 4)

	code, env := cl.do(http.MethodGet, "/api/v1/metrics/"+metrics.CatalogProducts+"?since=10m", nil)
	require.Equal(t, http.StatusOK, code)
	var out struct {
		Points []metrics.Point `json:"points"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.Len(t, out.Points, 1)
	assert.Equal(t, float64(4), out.Points[0].Value)

	code, _ = cl.do(http.MethodGet, "/api/v1/metrics/x?since=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	appCtx.rec = nil
	code, env = cl.do(http.MethodGet, "/api/v1/metrics/x", nil)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "METRICS_DISABLED", env.Code)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.Local)

	got, err := parseSince("", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-time.Hour), got)

	got, err = parseSince("15m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-15*time.Minute), got)

	got, err = parseSince("2024-05-01 11:30:00", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-30*time.Minute), got)

	_, err = parseSince("-5m", now)
	assert.Error(t, err)
	_, err = parseSince("yesterday", now)
	assert.Error(t, err)
}
