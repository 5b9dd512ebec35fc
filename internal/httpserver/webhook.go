package httpserver

import (
	"io"
	"net/http"

	"pizzeria-storefront/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v84/webhook"
)

const maxWebhookBody = 1 << 20

// stripeWebhook verifies the signature, drops duplicate deliveries and hands the
// event to order reconciliation. A failed event is unmarked so it can be redelivered.
func (h *handlers) stripeWebhook(c *gin.Context) {
	if h.deps.Stripe == nil || h.deps.WebhookGuard == nil {
		h.fail(c, apperr.New(apperr.CodeInternal, "stripe webhook not configured"))
		return
	}
	ctx := c.Request.Context()

	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.CodeValidation, err, "read request body"))
		return
	}
	sigHeader := c.GetHeader("Stripe-Signature")
	if sigHeader == "" {
		h.fail(c, badRequest("stripe signature missing"))
		return
	}

	event, err := webhook.ConstructEvent(payload, sigHeader, h.deps.Stripe.SigningSecret())
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.CodeValidation, err, "invalid stripe signature"))
		return
	}

	seen, err := h.deps.WebhookGuard.CheckAndMark(ctx, event.ID)
	if err != nil {
		h.fail(c, apperr.Wrap(apperr.CodeDependency, err, "check idempotency"))
		return
	}
	if seen {
		c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": true})
		return
	}

	if err := h.deps.OrderSvc.HandleEvent(ctx, &event); err != nil {
		if delErr := h.deps.WebhookGuard.Delete(ctx, event.ID); delErr != nil {
			h.logger.Error().Err(delErr).Str("event_id", event.ID).Msg("unmark stripe event")
		}
		h.fail(c, err)
		return
	}

	h.logger.Info().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("stripe event processed")
	c.JSON(http.StatusOK, gin.H{"received": true})
}
