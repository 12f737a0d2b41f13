package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/billing"
	apperrors "github.com/spec-kit/directory-gatekeeper/pkg/util"
)

// WebhookHandler receives billing-provider events. Signature verification is
// the authentication mechanism for this endpoint: anything that does not
// verify is rejected with a client error before any processing happens.
type WebhookHandler struct {
	verifier *billing.Verifier
	billing  *billing.Handler
	logger   *zap.Logger
}

// NewWebhookHandler returns a new handler instance.
func NewWebhookHandler(verifier *billing.Verifier, billingHandler *billing.Handler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{verifier: verifier, billing: billingHandler, logger: logger}
}

// HandleStripe processes one delivery. Responses drive provider retries:
// 200 for processed-or-ignored, 400 for verification failures (retrying an
// unverifiable payload is pointless), 500 for transient failures after
// verification so the provider redelivers against the idempotent store.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	// c.Body() is the raw payload; it must never be re-serialized before
	// verification.
	payload := c.Body()
	sigHeader := c.Get(billing.SignatureHeader)

	event, err := h.verifier.Verify(payload, sigHeader)
	if err != nil {
		if errors.Is(err, billing.ErrMissingSignature) {
			return apperrors.NewBadRequest("missing signature header", nil)
		}
		h.logger.Warn("webhook signature verification failed", zap.Error(err))
		return apperrors.NewInvalidSignature(err)
	}

	if err := h.billing.Process(c.UserContext(), event); err != nil {
		h.logger.Error("webhook processing failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))
		return apperrors.NewInternalError(err)
	}

	return c.JSON(fiber.Map{"received": true})
}
