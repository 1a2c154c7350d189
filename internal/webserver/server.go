package webserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/config"
)

const apiPrefix = "/api/v1"

// AdminServer hosts the dashboard API.
type AdminServer struct {
	root *echo.Echo
	api  *echo.Group
	addr string
}

// NewAdminServer builds the echo instance with logging, recovery, sessions,
// validation and JSON serialization installed.
func NewAdminServer(cfg *config.AppConfig) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.Validator = NewValidator()
	e.JSONSerializer = JSONIterSerializer{}

	e.Use(middleware.Recover())
	e.Use(ZapRequestLogger())

	store := sessions.NewCookieStore([]byte(cfg.Web.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Dashboard.SessionIdle / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))

	s := &AdminServer{
		root: e,
		addr: fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
	}
	s.api = e.Group(apiPrefix, DashboardSession(cfg.Web.SessionName))
	return s
}

// Echo exposes the underlying instance, mostly for tests.
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

// Use adds middleware to the API group.
func (s *AdminServer) Use(m ...echo.MiddlewareFunc) {
	s.api.Use(m...)
}

func (s *AdminServer) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.GET(path, h, m...)
}

func (s *AdminServer) ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.GET(path, h, m...)
}

func (s *AdminServer) ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.POST(path, h, m...)
}

func (s *AdminServer) ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PUT(path, h, m...)
}

func (s *AdminServer) ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.PATCH(path, h, m...)
}

func (s *AdminServer) ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.api.DELETE(path, h, m...)
}

// Start blocks serving HTTP until Shutdown. It returns http.ErrServerClosed
// after a clean shutdown.
func (s *AdminServer) Start() error {
	zap.S().Infof("admin server listening on %s", s.addr)
	return s.root.Start(s.addr)
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}
