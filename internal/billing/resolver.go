package billing

import (
	"context"
	"errors"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/subscription"
)

// ProviderSubscription is the authoritative slice of provider state the
// handler needs after a checkout completes.
type ProviderSubscription struct {
	ID                string
	CustomerID        string
	Status            string
	PriceID           string
	CurrentPeriodEnd  int64
	CancelAtPeriodEnd bool
}

// SubscriptionResolver fetches the current subscription object from the
// provider; checkout events only reference it, the price and status on the
// live object are what gets stored.
type SubscriptionResolver interface {
	Resolve(ctx context.Context, subscriptionID string) (*ProviderSubscription, error)
}

type stripeResolver struct{}

// NewStripeResolver returns the API-backed resolver. stripe.Key must be set
// before use.
func NewStripeResolver() SubscriptionResolver {
	return stripeResolver{}
}

func (stripeResolver) Resolve(ctx context.Context, subscriptionID string) (*ProviderSubscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price")

	sub, err := subscription.Get(subscriptionID, params)
	if err != nil {
		return nil, err
	}
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, errors.New("subscription has no line items")
	}

	item := sub.Items.Data[0]
	resolved := &ProviderSubscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CurrentPeriodEnd:  item.CurrentPeriodEnd,
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		resolved.CustomerID = sub.Customer.ID
	}
	if item.Price != nil {
		resolved.PriceID = item.Price.ID
	}
	return resolved, nil
}
