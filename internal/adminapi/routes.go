package adminapi

import (
	"github.com/alchepastry/pastryadmin/internal/app"
	"github.com/alchepastry/pastryadmin/internal/webserver"
)

// Init registers every API route on srv.
func Init(srv *webserver.AdminServer, appCtx app.AppContext) {
	srv.Use(appContextMiddleware(appCtx))
	srv.GET("/healthz", healthz, appContextMiddleware(appCtx))

	registerCatalogRoutes(srv)
	registerDashboardRoutes(srv)
	registerAddFormRoutes(srv)
	registerMetricsRoutes(srv)
}
