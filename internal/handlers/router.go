package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/plantdx-api/internal/logger"
)

func NewRouter(h *Handler, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(CORS())
	r.Use(RequestID())
	r.Use(AccessLog(log))

	r.GET("/health", h.Health)

	v1 := r.Group("/api/v1")
	{
		v1.POST("/diagnose", h.Diagnose)
		v1.POST("/predict", h.Predict)
		v1.GET("/diseases", h.Diseases)
		v1.GET("/classes", h.Classes)
	}

	return r
}
