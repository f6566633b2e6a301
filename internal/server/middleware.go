package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jeremyapple/netsapiens-dialbyname-directory/internal/respdoc"
	"github.com/jeremyapple/netsapiens-dialbyname-directory/pkg/logging"
)

// TraceIDKey はgin.Contextに格納するトレースIDのキー
const TraceIDKey = "trace_id"

const traceIDHeader = "X-Trace-ID"

// TraceIDFrom はコンテキストからトレースIDを取り出す。
func TraceIDFrom(c *gin.Context) string {
	if v, ok := c.Get(TraceIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "no-trace-id"
}

// TraceIDMiddleware はX-Trace-IDヘッダからトレースIDを取得する。
// PBXはヘッダを付けないため、未指定時は採番する。
func TraceIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(traceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}
		c.Set(TraceIDKey, traceID)
		c.Next()
	}
}

// LoggingMiddleware はリクエストログを出力する。
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)

		slog.Info("request completed",
			logging.WithTraceID(TraceIDFrom(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			logging.WithHTTPStatus(c.Writer.Status()),
			logging.WithLatency(latency.Milliseconds()),
		)
	}
}

// RecoveryMiddleware はパニックからの復旧を行う。
// 通話中のPBXにはJSONエラーではなく謝罪して切断する制御
// ドキュメントを返す。
func RecoveryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("panic recovered",
					logging.WithTraceID(TraceIDFrom(c)),
					"error", err,
				)
				docs := respdoc.NewBuilder(respdoc.NewVoice("", ""))
				c.Data(http.StatusOK, respdoc.ContentTypeXML,
					[]byte(docs.Hangup("An error occurred. Please try again later.")))
				c.Abort()
			}
		}()
		c.Next()
	}
}
