// Package handlers holds the Gin handlers behind the screening and history
// routes.
//
// Every JSON error carries the same envelope:
//
//	HTTP/1.1 400 Bad Request
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "missing_address",
//	  "message": "address is required"
//	}
//
// Upstream failures on the entity routes are the exception: they answer with
// a bare text/plain "Internal Server Error" via failPlain. Successful relays
// go out through raw so the provider's bytes reach the client unchanged.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-risk-gateway/internal/http/middleware"
)

// ErrorResponse is the error envelope returned by every JSON endpoint.
type ErrorResponse struct {
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Code is one of the ErrCode* constants.
	Code    string `json:"code" example:"missing_address"`
	Message string `json:"message" example:"address is required"`
}

// MessageResponse is the acknowledgement body of write endpoints.
type MessageResponse struct {
	Message string `json:"message" example:"Data stored in database"`
}

// fail aborts with the error envelope. 5xx responses are also logged on the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	reqID := middleware.RequestIDFrom(c)
	if reqID == "" {
		reqID = c.Writer.Header().Get("X-Request-ID")
	}
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{RequestID: reqID, Code: code, Message: msg})
}

// Fail lets the router answer NoRoute, NoMethod and readiness with the same
// envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failPlain aborts with 500 and a text/plain body. err is logged with the
// request-scoped logger together with any extra fields from with.
func failPlain(c *gin.Context, err error, with func(*zerolog.Event) *zerolog.Event) {
	lg := middleware.LoggerFrom(c)
	ev := lg.Error().Err(err).Int("status", http.StatusInternalServerError)
	if with != nil {
		ev = with(ev)
	}
	ev.Msg("api error")

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.AbortWithStatus(http.StatusInternalServerError)
	_, _ = c.Writer.WriteString(msgInternalPlain)
}

// raw writes body unchanged with a JSON content type.
func raw(c *gin.Context, status int, body []byte) {
	c.Data(status, "application/json; charset=utf-8", body)
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}
