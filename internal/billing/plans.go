package billing

import (
	"github.com/spec-kit/directory-gatekeeper/internal/config"
	"github.com/spec-kit/directory-gatekeeper/internal/domain"
)

// PlanMapper maps provider price identifiers to internal plan tiers. The
// table comes from configuration, one price per paid tier.
type PlanMapper struct {
	byPrice map[string]domain.PlanTier
}

// NewPlanMapper builds the mapper from the configured price table. Tiers
// without a configured price are simply unreachable from webhooks.
func NewPlanMapper(cfg config.StripeConfig) *PlanMapper {
	byPrice := make(map[string]domain.PlanTier, 3)
	for priceID, tier := range map[string]domain.PlanTier{
		cfg.PriceStarter: domain.PlanStarter,
		cfg.PricePro:     domain.PlanPro,
		cfg.PriceElite:   domain.PlanElite,
	} {
		if priceID != "" {
			byPrice[priceID] = tier
		}
	}
	return &PlanMapper{byPrice: byPrice}
}

// PlanForPrice resolves a price id; ok is false for unknown prices.
func (m *PlanMapper) PlanForPrice(priceID string) (domain.PlanTier, bool) {
	tier, ok := m.byPrice[priceID]
	return tier, ok
}
