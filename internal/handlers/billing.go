package handlers

import (
  "errors"
  "io"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/edpsychconnect/backend/internal/apierr"
  "github.com/edpsychconnect/backend/internal/logger"
  "github.com/edpsychconnect/backend/internal/services"
  "github.com/edpsychconnect/backend/internal/validation"
)

const maxWebhookBody = 1 << 20

type BillingHandler struct {
  log            *logger.Logger
  billingService services.BillingService
}

func NewBillingHandler(log *logger.Logger, billingService services.BillingService) *BillingHandler {
  return &BillingHandler{
    log:            log.With("handler", "BillingHandler"),
    billingService: billingService,
  }
}

func (h *BillingHandler) GetSubscription(c *gin.Context) {
  sub, err := h.billingService.GetSubscription(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"subscription": sub})
}

func (h *BillingHandler) Checkout(c *gin.Context) {
  var input services.CheckoutInput
  if err := c.ShouldBindJSON(&input); err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_json", errors.New("malformed request body"))
    return
  }
  if violations := validation.Check(input); len(violations) > 0 {
    RespondServiceError(c, apierr.Validation(violations, errors.New("validation failed")))
    return
  }

  url, err := h.billingService.Checkout(c.Request.Context(), input)
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"checkout_url": url})
}

func (h *BillingHandler) Portal(c *gin.Context) {
  url, err := h.billingService.Portal(c.Request.Context())
  if err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"portal_url": url})
}

// Webhook is the one unauthenticated mutation endpoint; the provider
// signature inside the payload is the authentication.
func (h *BillingHandler) Webhook(c *gin.Context) {
  payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
  if err != nil {
    RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("unreadable payload"))
    return
  }
  if err := h.billingService.HandleWebhook(c.Request.Context(), payload, c.Request.Header); err != nil {
    RespondServiceError(c, err)
    return
  }
  RespondOK(c, gin.H{"received": true})
}
