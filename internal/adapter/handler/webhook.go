package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/meeting-agent/errors"
	"github.com/johnquangdev/meeting-agent/internal/adapter/dto/common"
	"github.com/johnquangdev/meeting-agent/internal/usecase/lifecycle"
	"github.com/johnquangdev/meeting-agent/pkg/metrics"
	"github.com/johnquangdev/meeting-agent/pkg/signature"
)

// Webhook headers sent by the call provider
const (
	HeaderSignature = "x-signature"
	HeaderAPIKey    = "x-api-key"
)

// maxWebhookBody bounds the webhook payload
const maxWebhookBody = 1 << 20

// WebhookHandler handles call provider webhook events
type WebhookHandler struct {
	verifier *signature.Verifier
	parser   *lifecycle.EventParser
	service  lifecycle.Service
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(verifier *signature.Verifier, parser *lifecycle.EventParser, service lifecycle.Service, m *metrics.Metrics, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: verifier,
		parser:   parser,
		service:  service,
		metrics:  m,
		logger:   logger,
	}
}

// HandleCallWebhook verifies, decodes and applies one provider event
// @Summary      Call provider webhook
// @Description  Receives call lifecycle events. The body is authenticated with an HMAC-SHA256 signature before it is parsed.
// @Tags         Webhooks
// @Accept       json
// @Produce      json
// @Param        x-signature  header    string  true  "Hex HMAC-SHA256 of the raw body"
// @Param        x-api-key    header    string  true  "Provider API key"
// @Success      200  {object}  common.StatusResponse
// @Failure      400  {object}  common.ErrorResponse  "Missing headers, malformed payload or missing meeting id"
// @Failure      401  {object}  common.ErrorResponse  "Invalid signature or API key"
// @Failure      404  {object}  common.ErrorResponse  "Meeting or agent not found"
// @Failure      413  {object}  common.ErrorResponse  "Body larger than 1 MiB"
// @Router       /webhooks/call [post]
func (h *WebhookHandler) HandleCallWebhook(c echo.Context) error {
	sig := c.Request().Header.Get(HeaderSignature)
	apiKey := c.Request().Header.Get(HeaderAPIKey)
	if sig == "" || apiKey == "" {
		h.metrics.ObserveWebhook("unverified", "missing_headers")
		return HandleError(h.logger, c, errors.ErrMissingWebhookHeaders())
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody+1))
	if err != nil {
		e := errors.ErrInvalidPayload()
		e.Raw = err
		return HandleError(h.logger, c, e)
	}
	if len(body) > maxWebhookBody {
		h.metrics.ObserveWebhook("unverified", "too_large")
		return HandleError(h.logger, c, errors.ErrPayloadTooLarge(maxWebhookBody))
	}

	if !h.verifier.MatchesAPIKey(apiKey) || !h.verifier.Verify(body, sig) {
		h.metrics.ObserveWebhook("unverified", "invalid_signature")
		return HandleError(h.logger, c, errors.ErrInvalidSignature())
	}

	event, err := h.parser.Parse(body)
	if err != nil {
		h.metrics.ObserveWebhook("unparsed", "invalid_payload")
		return HandleError(h.logger, c, toAppError(err, ""))
	}

	eventType := string(event.Type())
	if _, unknown := event.(*lifecycle.Unknown); unknown {
		eventType = "unknown"
	}

	if err := h.service.Dispatch(c.Request().Context(), event); err != nil {
		h.metrics.ObserveWebhook(eventType, "rejected")
		return HandleError(h.logger, c, toAppError(err, event.MeetingID()))
	}

	h.metrics.ObserveWebhook(eventType, "ok")
	if h.logger != nil {
		h.logger.Info("webhook.event.applied",
			zap.String("request_id", getRequestID(c)),
			zap.String("type", string(event.Type())),
			zap.String("meeting_id", event.MeetingID()),
		)
	}

	return c.JSON(200, common.StatusResponse{Status: "ok"})
}
