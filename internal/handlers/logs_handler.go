package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mentormatch/mentormatch-api/internal/middleware"
	"github.com/mentormatch/mentormatch-api/pkg/logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ClientLogEntry is one log line reported by a client application
type ClientLogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level" binding:"required,oneof=debug info warn error"`
	Message   string         `json:"message" binding:"required,max=2000"`
	Route     string         `json:"route" binding:"max=255"`
	Context   map[string]any `json:"context,omitempty"`
}

type ClientLogBatchRequest struct {
	Logs []ClientLogEntry `json:"logs" binding:"required,max=100,dive"`
}

// LogsHandler forwards client logs into the service log, tagged with their source
type LogsHandler struct {
	source string
}

func NewLogsHandler(source string) *LogsHandler {
	return &LogsHandler{source: source}
}

// ReceiveClientLogs handles POST /api/v1/logs
func (h *LogsHandler) ReceiveClientLogs(c *gin.Context) {
	var req ClientLogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	if len(req.Logs) == 0 {
		respondError(c, http.StatusBadRequest, "No logs provided", nil)
		return
	}

	var userID string
	if identity := middleware.GetIdentity(c); identity != nil {
		userID = identity.UserID
	}

	for _, entry := range req.Logs {
		fields := []zap.Field{
			zap.String("source", h.source),
			zap.String("client_ts", entry.Timestamp),
			zap.String("route", entry.Route),
		}
		if userID != "" {
			fields = append(fields, zap.String("user_id", userID))
		}
		if len(entry.Context) > 0 {
			fields = append(fields, zap.Any("context", entry.Context))
		}
		if ce := logger.Log.Check(clientLevel(entry.Level), entry.Message); ce != nil {
			ce.Write(fields...)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func clientLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
