package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/alchepastry/pastryadmin/internal/dashboard"
	"github.com/alchepastry/pastryadmin/internal/domain"
	"github.com/alchepastry/pastryadmin/internal/webserver"
)

type tabPayload struct {
	Tab string `json:"tab" validate:"required"`
}

type filterPayload struct {
	Category *string `json:"category"`
	Query    *string `json:"q" validate:"omitempty,max=200"`
}

type selectionPayload struct {
	ID int64 `json:"id" validate:"required,gt=0"`
}

type stockPayload struct {
	Stock *int `json:"stock" validate:"required"`
}

// actionResult answers every dashboard intent. Applied is false when the
// intent was a no-op in the current state.
type actionResult struct {
	Applied bool            `json:"applied"`
	Product *domain.Product `json:"product,omitempty"`
	View    dashboard.View  `json:"view"`
}

// registerDashboardRoutes registers the per-session dashboard endpoints
func registerDashboardRoutes(srv *webserver.AdminServer) {
	srv.ApiGET("/dashboard", getDashboard)
	srv.ApiPOST("/dashboard/home", goHome)
	srv.ApiPUT("/dashboard/tab", switchTab)
	srv.ApiPUT("/dashboard/filter", setFilter)
	srv.ApiPOST("/dashboard/account/toggle", toggleAccount)

	srv.ApiPUT("/dashboard/selection", selectProduct)
	srv.ApiDELETE("/dashboard/selection", clearSelection)

	srv.ApiPOST("/dashboard/edit", beginEdit)
	srv.ApiPATCH("/dashboard/edit", patchEdit)
	srv.ApiDELETE("/dashboard/edit", cancelEdit)
	srv.ApiPOST("/dashboard/edit/confirm", requestEditConfirm)
	srv.ApiDELETE("/dashboard/edit/confirm", cancelEditConfirm)
	srv.ApiPOST("/dashboard/edit/commit", commitEdit)

	srv.ApiDELETE("/dashboard/products/:id", deleteProduct)
	srv.ApiPUT("/dashboard/products/:id/stock", setStock)
}

// sessionController returns the dashboard controller of the calling session.
func sessionController(c echo.Context) *dashboard.Controller {
	return GetAppContext(c).Sessions().Get(webserver.SessionID(c))
}

func applied(c echo.Context, ctrl *dashboard.Controller, done bool) error {
	return ok(c, actionResult{Applied: done, View: ctrl.View()})
}

func getDashboard(c echo.Context) error {
	return ok(c, sessionController(c).View())
}

func goHome(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.GoHome()
	return applied(c, ctrl, true)
}

func switchTab(c echo.Context) error {
	var payload tabPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	tab, valid := domain.ParseTab(payload.Tab)
	if !valid {
		return fail(c, http.StatusBadRequest, "INVALID_TAB", "Unknown tab", payload.Tab)
	}
	ctrl := sessionController(c)
	ctrl.SwitchTab(tab)
	return applied(c, ctrl, true)
}

func setFilter(c echo.Context) error {
	var payload filterPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	var filter domain.CategoryFilter
	if payload.Category != nil {
		var valid bool
		if filter, valid = domain.ParseCategoryFilter(*payload.Category); !valid {
			return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown category", *payload.Category)
		}
	}
	ctrl := sessionController(c)
	if payload.Category != nil {
		ctrl.SetCategoryFilter(filter)
	}
	if payload.Query != nil {
		ctrl.SetSearchQuery(*payload.Query)
	}
	return applied(c, ctrl, payload.Category != nil || payload.Query != nil)
}

func toggleAccount(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.ToggleAccountPanel()
	return applied(c, ctrl, true)
}

func selectProduct(c echo.Context) error {
	var payload selectionPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	ctrl := sessionController(c)
	return applied(c, ctrl, ctrl.Select(payload.ID))
}

func clearSelection(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.Back()
	return applied(c, ctrl, true)
}

func beginEdit(c echo.Context) error {
	ctrl := sessionController(c)
	return applied(c, ctrl, ctrl.BeginEdit())
}

func patchEdit(c echo.Context) error {
	fields := map[string]interface{}{}
	if err := c.Bind(&fields); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	ctrl := sessionController(c)
	done, err := ctrl.PatchEdit(fields)
	if errors.Is(err, dashboard.ErrInvalidField) {
		return fail(c, http.StatusBadRequest, "INVALID_FIELD", "Invalid edit field", err.Error())
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "EDIT_FAILED", "Failed to apply edit", err.Error())
	}
	return applied(c, ctrl, done)
}

func cancelEdit(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.CancelEdit()
	return applied(c, ctrl, true)
}

func requestEditConfirm(c echo.Context) error {
	ctrl := sessionController(c)
	return applied(c, ctrl, ctrl.RequestEditConfirm())
}

func cancelEditConfirm(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.CancelEditConfirm()
	return applied(c, ctrl, true)
}

func commitEdit(c echo.Context) error {
	ctrl := sessionController(c)
	return applied(c, ctrl, ctrl.ConfirmEdit())
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	ctrl := sessionController(c)
	return applied(c, ctrl, ctrl.Delete(id))
}

func setStock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload stockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	ctrl := sessionController(c)
	return applied(c, ctrl, ctrl.SetStock(id, *payload.Stock))
}
