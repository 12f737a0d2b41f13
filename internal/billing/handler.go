package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	stripe "github.com/stripe/stripe-go/v82"
	"go.uber.org/zap"

	"github.com/spec-kit/directory-gatekeeper/internal/audit"
	"github.com/spec-kit/directory-gatekeeper/internal/domain"
	"github.com/spec-kit/directory-gatekeeper/internal/observability"
	"github.com/spec-kit/directory-gatekeeper/internal/repository"
)

const (
	eventCheckoutCompleted  = "checkout.session.completed"
	eventSubscriptionUpdate = "customer.subscription.updated"
	eventSubscriptionDelete = "customer.subscription.deleted"

	metadataBusinessID = "business_id"
)

// Handler reconciles a business's subscription record from verified provider
// events. Every write path is idempotent: the provider delivers at least
// once and may interleave events for the same subscription, convergence is
// enforced by the store's conflict target. A returned error means the caller
// should answer 5xx so the provider retries; business-logic gaps (unknown
// business, unmapped price) are acknowledged and logged because a retry
// cannot fix them.
type Handler struct {
	store    repository.SubscriptionRepository
	resolver SubscriptionResolver
	plans    *PlanMapper
	deduper  *EventDeduper
	auditor  *audit.Recorder
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewHandler constructs the event handler.
func NewHandler(store repository.SubscriptionRepository, resolver SubscriptionResolver, plans *PlanMapper, deduper *EventDeduper, auditor *audit.Recorder, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	return &Handler{
		store:    store,
		resolver: resolver,
		plans:    plans,
		deduper:  deduper,
		auditor:  auditor,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Process dedupes and routes one verified event.
func (h *Handler) Process(ctx context.Context, event stripe.Event) error {
	eventType := string(event.Type)

	if h.deduper.Seen(ctx, event.ID) {
		h.logger.Info("duplicate event acknowledged",
			zap.String("event_id", event.ID),
			zap.String("type", eventType))
		h.metrics.RecordWebhookEvent(eventType, "duplicate")
		return nil
	}

	if err := h.route(ctx, event); err != nil {
		h.metrics.RecordWebhookEvent(eventType, "failed")
		return err
	}

	h.deduper.MarkProcessed(ctx, event.ID)
	h.metrics.RecordWebhookEvent(eventType, "processed")
	return nil
}

func (h *Handler) route(ctx context.Context, event stripe.Event) error {
	switch string(event.Type) {
	case eventCheckoutCompleted:
		var session checkoutSessionPayload
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return h.handleCheckoutCompleted(ctx, session)
	case eventSubscriptionUpdate:
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return h.handleSubscriptionUpdated(ctx, sub)
	case eventSubscriptionDelete:
		var sub subscriptionPayload
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return h.handleSubscriptionDeleted(ctx, sub)
	default:
		h.logger.Info("event ignored (unhandled type)",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
		return nil
	}
}

func (h *Handler) handleCheckoutCompleted(ctx context.Context, session checkoutSessionPayload) error {
	if session.Mode != "subscription" {
		h.logger.Info("checkout ignored (not subscription mode)",
			zap.String("session_id", session.ID),
			zap.String("mode", session.Mode))
		return nil
	}

	businessID := session.Metadata[metadataBusinessID]
	if businessID == "" {
		businessID = session.ClientReference
	}
	if businessID == "" {
		// Retrying cannot create the missing linkage; acknowledge.
		h.logger.Warn("checkout completed without business linkage",
			zap.String("session_id", session.ID),
			zap.String("customer_id", session.Customer))
		return nil
	}
	if session.Subscription == "" {
		h.logger.Warn("checkout completed without subscription reference",
			zap.String("session_id", session.ID),
			zap.String("business_id", businessID))
		return nil
	}

	// The session payload carries no price; the live subscription object is
	// authoritative for price and status.
	resolved, err := h.resolver.Resolve(ctx, session.Subscription)
	if err != nil {
		return fmt.Errorf("resolve subscription %s: %w", session.Subscription, err)
	}

	plan, ok := h.plans.PlanForPrice(resolved.PriceID)
	if !ok {
		h.logger.Warn("checkout completed with unmapped price",
			zap.String("price_id", resolved.PriceID),
			zap.String("business_id", businessID))
		return nil
	}

	customerID := resolved.CustomerID
	if customerID == "" {
		customerID = session.Customer
	}

	rec := &domain.SubscriptionRecord{
		BusinessID:             businessID,
		Plan:                   plan,
		Status:                 resolved.Status,
		ProviderCustomerID:     customerID,
		ProviderSubscriptionID: resolved.ID,
		CurrentPeriodEnd:       unixTime(resolved.CurrentPeriodEnd),
		CancelAtPeriodEnd:      resolved.CancelAtPeriodEnd,
	}
	if err := h.store.Upsert(ctx, rec); err != nil {
		return fmt.Errorf("upsert subscription for %s: %w", businessID, err)
	}

	h.auditor.Record("billing-webhook", "subscription_upserted", businessID, map[string]any{
		"plan":                     string(plan),
		"status":                   resolved.Status,
		"provider_subscription_id": resolved.ID,
	})
	h.logger.Info("subscription reconciled from checkout",
		zap.String("business_id", businessID),
		zap.String("plan", string(plan)),
		zap.String("status", resolved.Status))
	return nil
}

func (h *Handler) handleSubscriptionUpdated(ctx context.Context, sub subscriptionPayload) error {
	patch := domain.SubscriptionPatch{
		Status:            &sub.Status,
		CurrentPeriodEnd:  unixTime(sub.periodEnd()),
		CancelAtPeriodEnd: &sub.CancelAtPeriodEnd,
	}
	if plan, ok := h.plans.PlanForPrice(sub.priceID()); ok {
		patch.Plan = &plan
	}

	err := h.store.UpdateByProviderSubscriptionID(ctx, sub.ID, patch)
	if errors.Is(err, pgx.ErrNoRows) {
		// Update arrived before the checkout upsert. The later upsert
		// writes authoritative state, so this is loggable, not fatal.
		h.logger.Warn("subscription update for unknown record (ordering anomaly)",
			zap.String("provider_subscription_id", sub.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("update subscription %s: %w", sub.ID, err)
	}

	h.auditor.Record("billing-webhook", "subscription_updated", sub.ID, map[string]any{
		"status": sub.Status,
	})
	return nil
}

func (h *Handler) handleSubscriptionDeleted(ctx context.Context, sub subscriptionPayload) error {
	endsAt := unixTime(sub.EndedAt)
	if endsAt == nil {
		now := h.now().UTC()
		endsAt = &now
	}

	err := h.store.Cancel(ctx, sub.ID, endsAt)
	if errors.Is(err, pgx.ErrNoRows) {
		h.logger.Warn("subscription delete for unknown record",
			zap.String("provider_subscription_id", sub.ID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("cancel subscription %s: %w", sub.ID, err)
	}

	h.auditor.Record("billing-webhook", "subscription_canceled", sub.ID, map[string]any{
		"ends_at": endsAt.Format(time.RFC3339),
	})
	return nil
}

func unixTime(ts int64) *time.Time {
	if ts <= 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
