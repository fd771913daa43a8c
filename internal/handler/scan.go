package handler

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/apierror"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/dto"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/middleware"
	"github.com/ZeckRoom/beverage-warehouse-mvp/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ScanHandler struct{ svc service.ScanService }

func NewScanHandler(svc service.ScanService) *ScanHandler {
	return &ScanHandler{svc: svc}
}

func (h *ScanHandler) Start(c *gin.Context) {
	var req dto.StartScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Start(c.Request.Context(), req.Mode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ScanHandler) Get(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScanHandler) ManualCode(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.ManualCodeRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.ManualCode(c.Request.Context(), id, req.Barcode)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScanHandler) Quantity(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if req.Op == "set" && req.Value < 1 {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("quantity must be at least 1"))
		return
	}
	resp, err := h.svc.Quantity(id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScanHandler) Commit(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	var req dto.CommitScanRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Commit(c.Request.Context(), id, req, middleware.GetOperator(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ScanHandler) Close(c *gin.Context) {
	id, ok := sessionID(c)
	if !ok {
		return
	}
	if err := h.svc.CloseSession(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DetectStill decodes a barcode from an uploaded image (multipart field
// "image") — the one-shot scan path for devices without a usable camera feed.
func (h *ScanHandler) DetectStill(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("missing image upload"))
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unreadable image upload"))
		return
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("unsupported image format"))
		return
	}

	codes, err := h.svc.DetectStill(c.Request.Context(), img)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"codes": codes})
}

func sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid session id"))
		return uuid.Nil, false
	}
	return id, true
}
