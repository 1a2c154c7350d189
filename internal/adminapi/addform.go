package adminapi

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/alchepastry/pastryadmin/internal/addform"
	"github.com/alchepastry/pastryadmin/internal/domain"
	"github.com/alchepastry/pastryadmin/internal/webserver"
)

type addFormPayload struct {
	Name        *string `json:"name" validate:"omitempty,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Category    *string `json:"category"`
}

type pricePayload struct {
	Value string `json:"value" validate:"max=64"`
}

// registerAddFormRoutes registers the add product form endpoints
func registerAddFormRoutes(srv *webserver.AdminServer) {
	srv.ApiPOST("/dashboard/addform", openAddForm)
	srv.ApiDELETE("/dashboard/addform", dismissAddForm)
	srv.ApiPATCH("/dashboard/addform", patchAddForm)
	srv.ApiPUT("/dashboard/addform/price", inputAddFormPrice)
	srv.ApiPOST("/dashboard/addform/price/blur", blurAddFormPrice)
	srv.ApiPOST("/dashboard/addform/image", uploadAddFormImage)
	srv.ApiPOST("/dashboard/addform/confirm", requestAddConfirm)
	srv.ApiDELETE("/dashboard/addform/confirm", cancelAddConfirm)
	srv.ApiPOST("/dashboard/addform/commit", commitAddForm)
}

func openAddForm(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.OpenAddForm()
	return applied(c, ctrl, true)
}

func dismissAddForm(c echo.Context) error {
	ctrl := sessionController(c)
	ctrl.DismissAddForm()
	return applied(c, ctrl, true)
}

func patchAddForm(c echo.Context) error {
	var payload addFormPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	var category domain.Category
	if payload.Category != nil {
		var valid bool
		if category, valid = domain.ParseCategory(*payload.Category); !valid {
			return fail(c, http.StatusBadRequest, "INVALID_CATEGORY", "Unknown category", *payload.Category)
		}
	}

	ctrl := sessionController(c)
	form, open := ctrl.AddForm()
	if !open {
		return applied(c, ctrl, false)
	}
	if payload.Name != nil {
		form.SetName(*payload.Name)
	}
	if payload.Description != nil {
		form.SetDescription(*payload.Description)
	}
	if payload.Category != nil {
		form.SetCategory(category)
	}
	return applied(c, ctrl, true)
}

func inputAddFormPrice(c echo.Context) error {
	var payload pricePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	return withAddForm(c, func(form *addform.Form) bool {
		form.InputPrice(payload.Value)
		return true
	})
}

func blurAddFormPrice(c echo.Context) error {
	return withAddForm(c, func(form *addform.Form) bool {
		form.BlurPrice()
		return true
	})
}

// uploadAddFormImage reads the multipart "file" field into the draft image.
// A request without a file is the empty selection and changes nothing.
func uploadAddFormImage(c echo.Context) error {
	ctrl := sessionController(c)
	form, open := ctrl.AddForm()
	if !open {
		return applied(c, ctrl, false)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return applied(c, ctrl, false)
	}
	limit := GetAppContext(c).Config().ImageMaxBytes()
	if limit > 0 && fh.Size > limit {
		return fail(c, http.StatusRequestEntityTooLarge, "IMAGE_TOO_LARGE", "Image exceeds size limit", fh.Size)
	}
	src, err := fh.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to read upload", err.Error())
	}
	defer src.Close()
	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_FILE", "Unable to read upload", err.Error())
	}
	if len(data) == 0 {
		return applied(c, ctrl, false)
	}

	if err := form.SelectImage(data); err != nil {
		zap.L().Error("image decode submit failed", zap.Error(err))
		return fail(c, http.StatusServiceUnavailable, "IMAGE_DECODE_UNAVAILABLE", "Unable to process image", err.Error())
	}
	return applied(c, ctrl, true)
}

func requestAddConfirm(c echo.Context) error {
	return withAddForm(c, func(form *addform.Form) bool {
		form.RequestConfirm()
		return true
	})
}

func cancelAddConfirm(c echo.Context) error {
	return withAddForm(c, func(form *addform.Form) bool {
		form.CancelConfirm()
		return true
	})
}

func commitAddForm(c echo.Context) error {
	ctrl := sessionController(c)
	p, done := ctrl.SubmitAdd()
	res := actionResult{Applied: done, View: ctrl.View()}
	if done {
		res.Product = &p
	}
	return ok(c, res)
}

func withAddForm(c echo.Context, fn func(form *addform.Form) bool) error {
	ctrl := sessionController(c)
	form, open := ctrl.AddForm()
	if !open {
		return applied(c, ctrl, false)
	}
	return applied(c, ctrl, fn(form))
}
