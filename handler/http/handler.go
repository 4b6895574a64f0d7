package http

import (
	"github.com/gin-gonic/gin"

	"gemrag/src/core/filesearch"
)

// Stager holds uploaded bytes on local disk for the duration of a request
type Stager interface {
	Put(filename string, data []byte) (string, error)
	Release(path string) error
}

type Handler struct {
	service filesearch.Service
	staging Stager
}

func NewHandler(service filesearch.Service, staging Stager) *Handler {
	return &Handler{
		service: service,
		staging: staging,
	}
}

// RegisterRoutes registers the gateway routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.CheckHealth)

	rag := r.Group("/rag")
	rag.POST("/upload-files", h.UploadFile)
	rag.POST("/chat", h.Chat)
}

// ErrorResponse is the body of every handled error
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func sendError(c *gin.Context, status int, err error) {
	c.JSON(status, ErrorResponse{
		Detail: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
