package handler

import (
	"net/http"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/apierror"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/service"

	"github.com/gin-gonic/gin"
)

type ChangesHandler struct{ svc service.ChangeService }

func NewChangesHandler(svc service.ChangeService) *ChangesHandler {
	return &ChangesHandler{svc: svc}
}

func (h *ChangesHandler) List(c *gin.Context) {
	var filter dto.ChangeFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
