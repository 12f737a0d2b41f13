package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/directory-gatekeeper/internal/domain"
	"github.com/spec-kit/directory-gatekeeper/internal/repository"
	apperrors "github.com/spec-kit/directory-gatekeeper/pkg/util"
)

// SubscriptionsHandler exposes stored subscription state to the directory
// application, which gates features by plan.
type SubscriptionsHandler struct {
	store repository.SubscriptionRepository
}

// NewSubscriptionsHandler returns a new handler instance.
func NewSubscriptionsHandler(store repository.SubscriptionRepository) *SubscriptionsHandler {
	return &SubscriptionsHandler{store: store}
}

type subscriptionResponse struct {
	BusinessID        string     `json:"business_id"`
	Plan              string     `json:"plan"`
	Status            string     `json:"status"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
	EndsAt            *time.Time `json:"ends_at,omitempty"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// GetByBusiness returns the subscription record for one business.
func (h *SubscriptionsHandler) GetByBusiness(c *fiber.Ctx) error {
	businessID := c.Params("businessID")
	if businessID == "" {
		return apperrors.NewBadRequest("businessID is required", nil)
	}

	rec, err := h.store.GetByBusinessID(c.UserContext(), businessID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("subscription", map[string]any{"business_id": businessID})
		}
		return apperrors.MapError(err)
	}

	return c.JSON(toResponse(rec))
}

func toResponse(rec *domain.SubscriptionRecord) subscriptionResponse {
	return subscriptionResponse{
		BusinessID:        rec.BusinessID,
		Plan:              string(rec.Plan),
		Status:            rec.Status,
		CurrentPeriodEnd:  rec.CurrentPeriodEnd,
		CancelAtPeriodEnd: rec.CancelAtPeriodEnd,
		EndsAt:            rec.EndsAt,
		UpdatedAt:         rec.UpdatedAt,
	}
}
