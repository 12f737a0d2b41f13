package billing

import (
	"errors"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// SignatureHeader is the provider's signature header name.
const SignatureHeader = "Stripe-Signature"

// ErrMissingSignature is returned when the header is absent entirely.
var ErrMissingSignature = errors.New("missing signature header")

// Verifier validates inbound webhook envelopes against the shared secret.
// Verification runs over the raw, unparsed body: re-serializing JSON first
// would break the signature.
type Verifier struct {
	secret string
}

// NewVerifier constructs a verifier for the given signing secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: secret}
}

// Verify checks the signature and returns the parsed event.
func (v *Verifier) Verify(payload []byte, sigHeader string) (stripe.Event, error) {
	if sigHeader == "" {
		return stripe.Event{}, ErrMissingSignature
	}
	return webhook.ConstructEventWithOptions(payload, sigHeader, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}
