package billing

// Local shapes for the webhook payloads this service consumes. Decoding
// event.Data.Raw into these keeps the handler stable across provider API
// version drift in the SDK structs; only the fields we act on are listed.

type checkoutSessionPayload struct {
	ID              string            `json:"id"`
	Mode            string            `json:"mode"`
	Customer        string            `json:"customer"`
	Subscription    string            `json:"subscription"`
	ClientReference string            `json:"client_reference_id"`
	Metadata        map[string]string `json:"metadata"`
}

type subscriptionPayload struct {
	ID                string `json:"id"`
	Customer          string `json:"customer"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	CurrentPeriodEnd  int64  `json:"current_period_end"`
	EndedAt           int64  `json:"ended_at"`
	Items             struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
	Metadata map[string]string `json:"metadata"`
}

// priceID returns the first line item's price id, if any.
func (p subscriptionPayload) priceID() string {
	if len(p.Items.Data) == 0 {
		return ""
	}
	return p.Items.Data[0].Price.ID
}

// periodEnd prefers the item-level period end (newer provider API versions
// carry it there) and falls back to the subscription-level field.
func (p subscriptionPayload) periodEnd() int64 {
	if len(p.Items.Data) > 0 && p.Items.Data[0].CurrentPeriodEnd > 0 {
		return p.Items.Data[0].CurrentPeriodEnd
	}
	return p.CurrentPeriodEnd
}
