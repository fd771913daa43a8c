package handler

import (
	"errors"
	"net/http"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/apierror"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/scan"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps the failure taxonomy onto HTTP statuses with a
// machine-readable kind. Everything is recoverable from the client's
// perspective; nothing here ever drops the connection or the camera.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		c.JSON(http.StatusNotFound, apierror.NewKind("product_not_found", err.Error()))
	case errors.Is(err, service.ErrBarcodeTaken):
		c.JSON(http.StatusConflict, apierror.NewKind("barcode_taken", err.Error()))
	case errors.Is(err, service.ErrInsufficientStock):
		c.JSON(http.StatusUnprocessableEntity, apierror.NewKind("insufficient_stock", err.Error()))
	case errors.Is(err, service.ErrConcurrentModification):
		c.JSON(http.StatusConflict, apierror.NewKind("concurrent_modification", err.Error()))
	case errors.Is(err, service.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, apierror.NewKind("store_unavailable", err.Error()))
	case errors.Is(err, service.ErrUnresolvedProduct):
		c.JSON(http.StatusConflict, apierror.NewKind("unresolved_product", err.Error()))
	case errors.Is(err, service.ErrNoResolvedProduct):
		c.JSON(http.StatusConflict, apierror.NewKind("no_resolved_product", err.Error()))
	case errors.Is(err, scan.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, apierror.NewKind("session_not_found", err.Error()))
	case errors.Is(err, scan.ErrSessionClosed):
		c.JSON(http.StatusGone, apierror.NewKind("session_closed", err.Error()))
	case errors.Is(err, scan.ErrDecoderUnavailable):
		c.JSON(http.StatusConflict, apierror.NewKind("capability_unavailable", err.Error()))
	case errors.Is(err, scan.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, apierror.NewKind("permission_denied", err.Error()))
	case errors.Is(err, scan.ErrNoCamera):
		c.JSON(http.StatusConflict, apierror.NewKind("capability_unavailable", err.Error()))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}
