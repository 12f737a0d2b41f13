package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const signingSecret = "whsec_test_secret"

// signPayload builds a Stripe-Signature header for the raw payload:
// t=<unix>,v1=<hex hmac-sha256(secret, "<t>.<payload>")>.
func signPayload(payload []byte, secret string, at time.Time) string {
	ts := fmt.Sprintf("%d", at.Unix())
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func TestVerifyValidSignature(t *testing.T) {
	verifier := NewVerifier(signingSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"id":"cs_1"}}}`)

	event, err := verifier.Verify(payload, signPayload(payload, signingSecret, time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", event.ID)
	assert.Equal(t, "checkout.session.completed", string(event.Type))
}

func TestVerifyTamperedPayload(t *testing.T) {
	verifier := NewVerifier(signingSecret)
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{}}}`)
	header := signPayload(payload, signingSecret, time.Now())

	// flip one byte after signing
	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] = 'X'

	_, err := verifier.Verify(tampered, header)
	assert.Error(t, err)
}

func TestVerifyWrongSecret(t *testing.T) {
	verifier := NewVerifier(signingSecret)
	payload := []byte(`{"id":"evt_1"}`)

	_, err := verifier.Verify(payload, signPayload(payload, "whsec_other", time.Now()))
	assert.Error(t, err)
}

func TestVerifyStaleTimestamp(t *testing.T) {
	verifier := NewVerifier(signingSecret)
	payload := []byte(`{"id":"evt_1"}`)

	_, err := verifier.Verify(payload, signPayload(payload, signingSecret, time.Now().Add(-time.Hour)))
	assert.Error(t, err)
}

func TestVerifyMissingHeader(t *testing.T) {
	verifier := NewVerifier(signingSecret)
	_, err := verifier.Verify([]byte(`{}`), "")
	assert.ErrorIs(t, err, ErrMissingSignature)
}

func TestVerifyGarbageHeader(t *testing.T) {
	verifier := NewVerifier(signingSecret)
	_, err := verifier.Verify([]byte(`{}`), "not-a-signature")
	assert.Error(t, err)
}
