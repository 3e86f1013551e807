// Package routers
package routers

import (
	"errors"
	"io"
	"net/http"

	"nutristat-api/internal/ctx"
	"nutristat-api/internal/metrics"
	"nutristat-api/internal/shared"
)

func readRequestBody(c *ctx.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.Log.Errorw("Failed to read request body", "error", err.Error())
		return nil, err
	}
	return body, nil
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind shared.ErrorKind) int {
	switch kind {
	case shared.KindValidation:
		return http.StatusBadRequest
	case shared.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorBody renders the error, message and missing_keys fields that are set.
func errorBody(rerr *shared.RequestError) map[string]any {
	body := map[string]any{}
	if rerr.Err != nil {
		body["error"] = rerr.Err.Error()
	}
	if rerr.Message != "" {
		body["message"] = rerr.Message
	}
	if len(rerr.MissingKeys) > 0 {
		body["missing_keys"] = rerr.MissingKeys
	}
	return body
}

// classifyError returns the status and body for any handler error.
func classifyError(err error) (int, map[string]any) {
	var rerr *shared.RequestError
	if errors.As(err, &rerr) {
		return statusFor(rerr.Kind), errorBody(rerr)
	}
	return http.StatusInternalServerError, errorBody(shared.ErrInternalServerError)
}

// writeError records err on the request log values and renders it.
func writeError(c *ctx.Context, endpoint string, err error) error {
	c.LogValues.AddError(err)
	status, body := classifyError(err)

	kind := shared.KindInternal
	var rerr *shared.RequestError
	if errors.As(err, &rerr) {
		kind = rerr.Kind
	}
	metrics.ErrorCount.WithLabelValues(endpoint, kind.String()).Inc()
	return c.JSON(status, body)
}
