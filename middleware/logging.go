package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Habib-0007/habsblog-api/utils"
)

// RequestLogger emits one structured log line per request.
func RequestLogger() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		query := ctx.Request.URL.RawQuery

		ctx.Next()

		if utils.Logger == nil {
			return
		}
		fields := []zap.Field{
			zap.Int("status", ctx.Writer.Status()),
			zap.String("method", ctx.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", ctx.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(ctx.Errors) > 0 {
			fields = append(fields, zap.String("errors", ctx.Errors.String()))
		}
		utils.Logger.Info("request", fields...)
	}
}

// Recovery converts panics into a 500 response instead of dropping the
// connection.
func Recovery() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				if utils.Logger != nil {
					utils.Logger.Error("panic recovered",
						zap.Any("error", r),
						zap.String("path", ctx.Request.URL.Path),
						zap.Stack("stack"),
					)
				}
				utils.Fail(ctx, http.StatusInternalServerError, "internal server error")
				ctx.Abort()
			}
		}()
		ctx.Next()
	}
}
