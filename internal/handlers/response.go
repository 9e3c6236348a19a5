package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Brownie44l1/plantdx-api/internal/apperr"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Meta Meta        `json:"meta"`
	Data interface{} `json:"data,omitempty"`
}

type Meta struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Meta: Meta{Code: http.StatusOK, Message: "OK", RequestID: c.GetString(requestIDKey)},
		Data: data,
	})
}

func fail(c *gin.Context, err error) {
	e := apperr.Wrap(err)
	c.JSON(e.Code, Response{
		Meta: Meta{Code: e.Code, Message: e.Message, RequestID: c.GetString(requestIDKey)},
	})
}
