package ingest

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxEventBodyBytes = 64 << 10

// MountEventRoutes registers POST /events and POST /admin-events.
func MountEventRoutes(router gin.IRouter, listener *Listener, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	router.POST("/events", func(contextGin *gin.Context) {
		payload, readErr := readEventBody(contextGin)
		if readErr != nil {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		event, decodeErr := DecodeUserEvent(payload)
		if decodeErr != nil {
			logger.Warn("rejected user event",
				zap.String("code", "ingest.http.invalid_user_event"),
				zap.Error(decodeErr))
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		listener.OnEvent(event)
		contextGin.Status(http.StatusAccepted)
	})

	router.POST("/admin-events", func(contextGin *gin.Context) {
		payload, readErr := readEventBody(contextGin)
		if readErr != nil {
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		event, decodeErr := DecodeAdminEvent(payload)
		if decodeErr != nil {
			logger.Warn("rejected admin event",
				zap.String("code", "ingest.http.invalid_admin_event"),
				zap.Error(decodeErr))
			contextGin.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid_json"})
			return
		}
		listener.OnAdminEvent(event)
		contextGin.Status(http.StatusAccepted)
	})
}

func readEventBody(contextGin *gin.Context) ([]byte, error) {
	return io.ReadAll(http.MaxBytesReader(contextGin.Writer, contextGin.Request.Body, maxEventBodyBytes))
}
