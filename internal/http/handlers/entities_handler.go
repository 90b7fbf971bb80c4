// Entity HTTP handlers.
//
// This file exposes the endpoints that proxy the risk provider:
//   - POST /entities            (register an address)
//   - GET  /entities/{address}  (fetch the verdict)
//
// Successful upstream bodies are relayed byte-for-byte. Any upstream failure
// is logged with its kind and status and answered with a plain-text 500.
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/tbourn/go-risk-gateway/internal/services"
	"github.com/tbourn/go-risk-gateway/internal/upstream"
)

// RegisterEntityRequest is the JSON payload for registering an address.
type RegisterEntityRequest struct {
	// Address is forwarded to the provider unchanged (after trimming).
	Address string `json:"address" example:"0x52908400098527886E0F7030069857D2E4169EE7"`
}

// RegisterEntity godoc
// @ID          registerEntity
// @Summary     Register an address with the risk provider
// @Description Forwards the address to the provider and relays its response verbatim. Every call is forwarded.
// @Tags        Entities
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.RegisterEntityRequest  true  "Address to register"
//
// @Success     200  {object} object "Provider response, unmodified"
// @Failure     400  {object} handlers.ErrorResponse "Missing or invalid address"
// @Failure     500  {string} string "Internal Server Error"
// @Router      /entities [post]
func (h *Handlers) RegisterEntity(c *gin.Context) {
	var req RegisterEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	res, err := h.screenSvc.Register(c.Request.Context(), req.Address)
	if err != nil {
		h.entityError(c, err, req.Address)
		return
	}
	raw(c, http.StatusOK, res.Body)
}

// ScreenEntity godoc
// @ID          screenEntity
// @Summary     Fetch the risk verdict for an address
// @Description Returns the provider's current verdict verbatim.
// @Tags        Entities
// @Produce     json
//
// @Param       address  path  string  true  "Address to screen"  example(0x52908400098527886E0F7030069857D2E4169EE7)
//
// @Success     200  {object} object "Provider verdict, unmodified"
// @Failure     500  {string} string "Internal Server Error"
// @Router      /entities/{address} [get]
func (h *Handlers) ScreenEntity(c *gin.Context) {
	address := c.Param("address")

	res, err := h.screenSvc.Screen(c.Request.Context(), address)
	if err != nil {
		h.entityError(c, err, address)
		return
	}
	raw(c, http.StatusOK, res.Body)
}

// entityError maps a screening failure: validation → 400 envelope, anything
// else → plain-text 500.
func (h *Handlers) entityError(c *gin.Context, err error, address string) {
	if ve, ok := services.IsValidation(err); ok {
		fail(c, http.StatusBadRequest, string(ve.Kind), ve.Error())
		return
	}
	failPlain(c, err, func(e *zerolog.Event) *zerolog.Event {
		e = e.Str("address", address)
		var ue *upstream.Error
		if errors.As(err, &ue) {
			e = e.Str("upstream_op", ue.Op).Str("upstream_kind", string(ue.Kind))
			if ue.Status != 0 {
				e = e.Int("upstream_status", ue.Status)
			}
		}
		return e
	})
}
