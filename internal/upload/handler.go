package upload

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/cors"
	"github.com/abduss/filemeta/internal/logger"
)

const maxBodyBytes = 64 << 10

// Authorizer issues upload authorizations.
type Authorizer interface {
	Authorize(ctx context.Context, objectName string) (Authorization, error)
}

type Handler struct {
	service Authorizer
	log     *zap.Logger
}

func NewHandler(service Authorizer, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/upload-url", cors.Middleware(cors.UploadMethods))
	group.POST("/*filename", h.GenerateUploadURL)
	group.OPTIONS("/*filename", cors.Preflight)
}

func (h *Handler) GenerateUploadURL(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
		return
	}

	name := ResolveObjectName(c.Param("filename"), c.Query("filename"), body)

	auth, err := h.service.Authorize(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, ErrObjectNameTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		logger.FromContext(c, h.log).Error("generate upload url", zap.String("object_name", name), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, auth)
}
