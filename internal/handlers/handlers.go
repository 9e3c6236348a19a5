package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/plantdx-api/internal/apperr"
	"github.com/Brownie44l1/plantdx-api/internal/disease"
	"github.com/Brownie44l1/plantdx-api/internal/logger"
	"github.com/Brownie44l1/plantdx-api/internal/model"
)

type Handler struct {
	service        *disease.Service
	loader         *model.Loader
	log            logger.Logger
	maxUploadBytes int64
}

func NewHandler(service *disease.Service, loader *model.Loader, log logger.Logger, maxUploadBytes int64) *Handler {
	return &Handler{
		service:        service,
		loader:         loader,
		log:            log,
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) Health(c *gin.Context) {
	success(c, gin.H{
		"status": "healthy",
		"mode":   h.service.Mode(),
		"model":  h.loader.Source(),
	})
}

// Diagnose accepts a multipart upload with the image in the "image" field.
func (h *Handler) Diagnose(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, apperr.TooLarge(fmt.Sprintf("image exceeds %d bytes", h.maxUploadBytes)))
			return
		}
		fail(c, apperr.BadRequest("No image file provided. Use 'image' as the form field name"))
		return
	}

	file, err := header.Open()
	if err != nil {
		fail(c, apperr.BadRequest("Failed to open uploaded file"))
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	h.log.Infof(ctx, "Received file: %s, size: %d bytes", header.Filename, header.Size)

	diagnosis := h.service.Diagnose(ctx, disease.FileSource{Filename: header.Filename, Reader: file})
	success(c, diagnosis)
}

// Predict runs a preprocessed input tensor through the model.
func (h *Handler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, apperr.BadRequest("Invalid JSON"))
		return
	}

	ctx := c.Request.Context()
	if !h.service.InitModel(ctx) {
		fail(c, apperr.Unavailable("Model is not available, service runs in simulation mode"))
		return
	}

	result, err := h.loader.PredictTensor(req.Image)
	if err != nil {
		if errors.Is(err, model.ErrInputSize) {
			fail(c, apperr.BadRequest(err.Error()))
			return
		}
		h.log.Errorf(ctx, "Prediction error: %v", err)
		fail(c, apperr.Internal("Prediction failed", err.Error()))
		return
	}

	success(c, result)
}

func (h *Handler) Diseases(c *gin.Context) {
	success(c, h.service.Catalog().Entries())
}

type classMapping struct {
	Index             int    `json:"index"`
	OriginalClassName string `json:"original_class_name"`
	ClassName         string `json:"class_name"`
}

// Classes lists the label mapping of the active model, or the built-in one before loading.
func (h *Handler) Classes(c *gin.Context) {
	classes := model.OriginalClasses
	if h.loader.Loaded() {
		classes = h.loader.Description().Classes
	}

	out := make([]classMapping, len(classes))
	for i, original := range classes {
		out[i] = classMapping{Index: i, OriginalClassName: original, ClassName: model.DisplayName(original)}
	}
	success(c, out)
}
