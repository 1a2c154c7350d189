package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/internal/catalog"
	"github.com/alchepastry/pastryadmin/internal/domain"
	"github.com/alchepastry/pastryadmin/internal/webserver"
)

// registerCatalogRoutes registers read-only catalog endpoints
func registerCatalogRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/catalog/products", listProducts)
	srv.ApiGET("/catalog/products/:id", getProduct)
	srv.ApiGET("/catalog/export.csv", exportProductsCSV)
	srv.ApiGET("/catalog/export.xlsx", exportProductsXLSX)
	srv.ApiGET("/catalog/stats", catalogStats)
}

func listProducts(c echo.Context) error {
	filter, valid := domain.ParseCategoryFilter(c.QueryParam("category"))
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown category", c.QueryParam("category"))
	}
	page, pageSize := parsePagination(c)

	rows := GetAppContext(c).Catalog().Filter(filter, c.QueryParam("q"))
	total := int64(len(rows))
	start := (page - 1) * pageSize
	if start > len(rows) {
		start = len(rows)
	}
	end := start + pageSize
	if end > len(rows) {
		end = len(rows)
	}
	return paged(c, rows[start:end], total, page, pageSize)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, found := GetAppContext(c).Catalog().Get(id)
	if !found {
		return fail(c, http.StatusNotFound, "PRODUCT_NOT_FOUND", "Product not found", nil)
	}
	return ok(c, p)
}

func exportFilename(ext string) string {
	return fmt.Sprintf("products-%s.%s", time.Now().Format("20060102-150405"), ext)
}

func exportProductsCSV(c echo.Context) error {
	products := GetAppContext(c).Catalog().List()
	c.Response().Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename("csv")))
	c.Response().WriteHeader(http.StatusOK)
	if err := catalog.WriteCSV(c.Response(), products); err != nil {
		zap.L().Error("csv export failed", zap.Error(err))
		return err
	}
	return nil
}

func exportProductsXLSX(c echo.Context) error {
	products := GetAppContext(c).Catalog().List()
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", exportFilename("xlsx")))
	c.Response().WriteHeader(http.StatusOK)
	if err := catalog.WriteXLSX(c.Response(), products); err != nil {
		zap.L().Error("xlsx export failed", zap.Error(err))
		return err
	}
	return nil
}

func catalogStats(c echo.Context) error {
	return ok(c, GetAppContext(c).Catalog().Summary())
}

func healthz(c echo.Context) error {
	return ok(c, map[string]interface{}{
		"status":   "ok",
		"products": GetAppContext(c).Catalog().Len(),
		"sessions": GetAppContext(c).Sessions().Len(),
	})
}
