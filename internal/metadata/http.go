package metadata

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abduss/filemeta/internal/cors"
	"github.com/abduss/filemeta/internal/logger"
)

// Lister is the read side used by the HTTP handlers.
type Lister interface {
	ListAll(ctx context.Context) (RecordSet, error)
}

// Processor is the write side used by the HTTP handlers.
type Processor interface {
	Process(ctx context.Context, n Notification) (ProcessingResult, error)
}

// RegisterRoutes mounts metadata listing and notification ingest under the group.
// Either side may be nil to leave its routes out.
func RegisterRoutes(group *gin.RouterGroup, reader Lister, writer Processor, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	handler := &httpHandler{reader: reader, writer: writer, log: log}

	if reader != nil {
		read := group.Group("/metadata", cors.Middleware(cors.ReadMethods))
		read.GET("", handler.listMetadata)
		read.OPTIONS("", cors.Preflight)
	}
	if writer != nil {
		group.POST("/events", handler.ingestEvents)
	}
}

type httpHandler struct {
	reader Lister
	writer Processor
	log    *zap.Logger
}

func (h *httpHandler) listMetadata(c *gin.Context) {
	set, err := h.reader.ListAll(c.Request.Context())
	if err != nil {
		logger.FromContext(c, h.log).Error("retrieve metadata", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, set)
}

// ingestEvents accepts S3-style notifications, such as MinIO webhook deliveries.
// Failures answer 500 so that the sender redelivers the whole notification.
func (h *httpHandler) ingestEvents(c *gin.Context) {
	var evt events.S3Event
	if err := c.ShouldBindJSON(&evt); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification payload"})
		return
	}

	result, err := h.writer.Process(c.Request.Context(), FromS3Event(evt))
	if err != nil {
		logger.FromContext(c, h.log).Error("process notification", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
