// Assessment HTTP handlers.
//
// This file exposes the history endpoints:
//   - POST /insert        (record a verdict)
//   - GET  /fetchLatest   (most recent verdicts, newest first; ETag support)
//
// GET /fetch-last-five is routed to LatestAssessments as well.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-risk-gateway/internal/config"
	"github.com/tbourn/go-risk-gateway/internal/domain"
	"github.com/tbourn/go-risk-gateway/internal/http/middleware"
	"github.com/tbourn/go-risk-gateway/internal/services"
	"github.com/tbourn/go-risk-gateway/internal/utils"
)

// InsertAssessmentRequest documents the insert body. Unknown fields are kept:
// when Data is absent the whole body is stored.
type InsertAssessmentRequest struct {
	Address string          `json:"address" example:"0x52908400098527886E0F7030069857D2E4169EE7"`
	Risk    string          `json:"risk" example:"Low"`
	Data    json.RawMessage `json:"data,omitempty" swaggertype:"object"`
}

// InsertAssessment godoc
// @ID          insertAssessment
// @Summary     Record a risk verdict
// @Description Stores address, risk and the raw payload. The payload is `data` when present, otherwise the whole body.
// @Tags        History
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.InsertAssessmentRequest  true  "Verdict to store"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Validation failed"
// @Failure     413  {object} handlers.ErrorResponse "Body larger than 1 MiB"
// @Failure     500  {object} handlers.ErrorResponse "Internal server error"
// @Router      /insert [post]
func (h *Handlers) InsertAssessment(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
			return
		}
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "could not read request body")
		return
	}

	in, err := parseInsert(body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	rec, err := h.assessSvc.Record(c.Request.Context(), in)
	if err != nil {
		if ve, ok := services.IsValidation(err); ok {
			fail(c, http.StatusBadRequest, string(ve.Kind), ve.Error())
			return
		}
		middleware.LoggerFrom(c).Error().Err(err).Str("address", in.Address).Msg("store verdict")
		fail(c, http.StatusInternalServerError, ErrCodeStoreFailed, msgStoreFailed)
		return
	}

	middleware.LoggerFrom(c).Debug().Uint64("id", rec.ID).Str("address", rec.Address).Msg("verdict stored")
	ok(c, http.StatusOK, MessageResponse{Message: msgStored})
}

// LatestAssessments godoc
// @ID          latestAssessments
// @Summary     Most recent verdicts
// @Description Returns at most five records ordered by id descending. Supports weak ETag via If-None-Match and may return 304.
// @Tags        History
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"history:5:12:12\")
// @Param       limit          query   int     false "Number of records"           minimum(1) maximum(5) default(5)
//
// @Success     200  {array}  domain.RiskAssessment
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "DB Fetch error"
// @Router      /fetchLatest [get]
func (h *Handlers) LatestAssessments(c *gin.Context) {
	ctx := c.Request.Context()
	limit := utils.Clamp(utils.AtoiDefault(c.Query("limit"), config.MaxHistoryLimit), 1, config.MaxHistoryLimit)
	if hl, ok := h.assessSvc.(historyLimiter); ok {
		limit = hl.EffectiveLimit(limit)
	}

	// ETag pre-check (best effort).
	if st, ok := h.assessSvc.(historyStats); ok {
		if count, maxID, err := st.Stats(ctx); err == nil {
			etag := fmt.Sprintf(`W/"history:%d:%d:%d"`, limit, count, maxID)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.assessSvc.Latest(ctx, limit)
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("fetch latest verdicts")
		fail(c, http.StatusInternalServerError, ErrCodeFetchFailed, msgFetchFailed)
		return
	}
	ok(c, http.StatusOK, items)
}

// parseInsert builds the service input from an insert body. Only a body that
// is not a JSON object at all is an error here; field rules belong to the
// service.
func parseInsert(body []byte) (services.RecordInput, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return services.RecordInput{}, nil
	}
	var req InsertAssessmentRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return services.RecordInput{}, err
	}

	payload := domain.Payload(body)
	if len(req.Data) > 0 && !bytes.Equal(bytes.TrimSpace(req.Data), []byte("null")) {
		payload = domain.Payload(req.Data)
	}
	return services.RecordInput{Address: req.Address, Risk: req.Risk, Payload: payload}, nil
}
