package web

import (
	"bytes"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tyemirov/eventmetrics/internal/eventmetrics"
	"go.uber.org/zap"
)

// Exporter renders the current counter values in the text exposition format.
type Exporter interface {
	Export(sink io.Writer) error
}

// HandleMetrics serves the exposition document. The body is rendered fully before any byte is sent.
func HandleMetrics(exporter Exporter, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(contextGin *gin.Context) {
		var buffer bytes.Buffer
		if err := exporter.Export(&buffer); err != nil {
			logger.Error("metrics export failed",
				zap.String("code", "web.metrics.export_failed"),
				zap.Error(err))
			contextGin.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "export_failed"})
			return
		}
		contextGin.Header("Cache-Control", "no-store")
		contextGin.Data(http.StatusOK, eventmetrics.ContentType, buffer.Bytes())
	}
}
