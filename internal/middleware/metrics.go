package middleware

import (
	"fmt"
	"strings"
	"time"

	"nutristat-api/internal/ctx"
	"nutristat-api/internal/metrics"
	"nutristat-api/internal/shared"

	"github.com/aidarkhanov/nanoid"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	emw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

// requestID honours a caller supplied UUID and otherwise generates one.
func requestID(header string) string {
	if id, err := uuid.Parse(header); err == nil {
		return id.String()
	}
	reqID, _ := nanoid.Generate(shared.RequestIDAlphabet, shared.RequestIDLength)
	return "req_" + reqID
}

func NewTrackMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			externalID := c.Request().Header.Get(echo.HeaderXRequestID)
			reqID := requestID(externalID)
			logger := log.With("request_id", reqID)

			values := &ctx.ContextLogValues{
				RequestID:  reqID,
				ExternalID: externalID,
				StartTime:  time.Now(),
				Path:       c.Path(),
				RemoteIP:   c.RealIP(),
			}
			cc := &ctx.Context{Context: c, Log: logger, Reqid: reqID, LogValues: values}
			cc.Response().Header().Set(echo.HeaderXRequestID, reqID)

			err := next(cc)
			if err != nil {
				// let echo render the error so the status below is final
				values.AddError(err)
				cc.Error(err)
			}

			values.RequestDuration = time.Since(values.StartTime)
			values.StatusCode = cc.Response().Status
			logEnd(log, values)

			status := fmt.Sprintf("%d", values.StatusCode)
			metrics.ResponseCodes.WithLabelValues(cc.Path(), status).Inc()
			metrics.RequestDuration.WithLabelValues(cc.Path()).Observe(values.RequestDuration.Seconds())
			return nil
		}
	}
}

func logEnd(log *zap.SugaredLogger, values *ctx.ContextLogValues) {
	level := strings.ToUpper(values.LogLevel)
	if level == "" {
		switch {
		case values.StatusCode >= 500:
			level = "ERROR"
		case values.StatusCode >= 400:
			level = "WARN"
		default:
			level = "INFO"
		}
	}
	fields := []any{zap.Object("request", values)}
	switch level {
	case "ERROR":
		log.Errorw("end_of_request", fields...)
	case "WARN":
		log.Warnw("end_of_request", fields...)
	case "DEBUG":
		log.Debugw("end_of_request", fields...)
	default:
		log.Infow("end_of_request", fields...)
	}
}

func NewRecoverMiddleware(log *zap.SugaredLogger) echo.MiddlewareFunc {
	return emw.RecoverWithConfig(emw.RecoverConfig{
		StackSize: 1 << 10, // 1 KB
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			defer func() {
				_ = log.Sync()
			}()
			log.Errorw("Api Panic", "error", err.Error(), "stack", string(stack))
			return c.JSON(500, map[string]string{"error": shared.ErrInternalServerError.Err.Error()})
		},
	})
}
