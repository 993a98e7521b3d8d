package restapi

import (
	"errors"
	"fmt"
	"net/http"

	"wallet_dashboard/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	unexpectedErrorMessage = "An unexpected error occurred"
	upstreamErrorMessage   = "Upstream request failed"
)

// ErrorResponse is the body of every failed API request.
type ErrorResponse struct {
	Error        bool   `json:"error"`
	ErrorMessage string `json:"error_message"`
	ErrorDetails any    `json:"error_details,omitempty"`
}

// abortWithError attaches err to the context for ErrorHandler to render.
func abortWithError(c *gin.Context, err error, operation string, params map[string]any) {
	_ = c.Error(entity.FromError(err, operation, params))
	c.Abort()
}

// ErrorHandler renders errors attached with c.Error as the JSON error envelope.
// In production error_details is omitted and unexpected errors keep a generic message.
func ErrorHandler(production bool, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		apiErr := entity.FromError(err, c.FullPath(), nil)
		writeError(c, apiErr, production, log)
	}
}

func writeError(c *gin.Context, apiErr *entity.APIError, production bool, log *zap.Logger) {
	resp := ErrorResponse{Error: true, ErrorMessage: apiErr.Message}
	if !production {
		resp.ErrorDetails = apiErr
	}

	switch {
	case apiErr.Kind == entity.KindUnexpected && apiErr.StatusCode >= http.StatusInternalServerError:
		log.Error("Unhandled error",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(apiErr.Unwrap()),
			zap.String("message", apiErr.Message))
	case apiErr.StatusCode >= http.StatusInternalServerError:
		log.Warn("Request failed", zap.String("path", c.Request.URL.Path), zap.String("message", apiErr.Message))
	}

	// Upstream error text carries response bodies; production only sends generic wording.
	if production {
		switch {
		case apiErr.StatusCode >= http.StatusInternalServerError:
			resp.ErrorMessage = unexpectedErrorMessage
		case apiErr.Kind == entity.KindUpstream:
			resp.ErrorMessage = entity.FriendlyMessage(apiErr.StatusCode, upstreamErrorMessage)
		}
	}

	c.AbortWithStatusJSON(apiErr.StatusCode, resp)
}

// Recovery turns a panic into a 500 error envelope.
func Recovery(production bool, log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}
		log.Error("Recovered from panic", zap.String("path", c.Request.URL.Path), zap.Any("panic", recovered), zap.Stack("stack"))
		apiErr := entity.NewAPIError(err.Error(), http.StatusInternalServerError, entity.KindUnexpected, nil)
		writeError(c, apiErr, production, log)
	})
}

// NoRoute answers unknown paths with a 404 envelope.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:        true,
		ErrorMessage: fmt.Sprintf("Route not found: %s %s", c.Request.Method, c.Request.URL.RequestURI()),
	})
}

func isNotAuthenticated(err error) bool {
	return errors.Is(err, entity.ErrNotAuthenticated)
}
