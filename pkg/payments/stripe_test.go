package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

func signPayload(payload []byte, secret string, at time.Time) string {
	timestamp := at.Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", timestamp, payload)))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}

func newTestGateway(t *testing.T) *StripeGateway {
	t.Helper()
	gateway, err := NewStripeGateway(StripeConfig{SecretKey: "sk_test_123", WebhookSecret: testWebhookSecret}, zerolog.Nop())
	require.NoError(t, err)
	return gateway
}

func TestNewStripeGatewayRequiresKey(t *testing.T) {
	_, err := NewStripeGateway(StripeConfig{}, zerolog.Nop())
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestParseWebhookCheckoutCompleted(t *testing.T) {
	gateway := newTestGateway(t)
	payload := []byte(`{"id":"evt_1","object":"event","api_version":"2020-08-27","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1","object":"checkout.session","client_reference_id":"42","metadata":{"orderId":"42"}}}}`)

	event, err := gateway.ParseWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	require.Equal(t, EventCheckoutCompleted, event.Type)
	require.Equal(t, "cs_test_1", event.SessionID)
	require.Equal(t, "42", event.OrderID)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	gateway := newTestGateway(t)
	payload := []byte(`{"id":"evt_1","object":"event","type":"checkout.session.completed","data":{"object":{"id":"cs_test_1"}}}`)

	_, err := gateway.ParseWebhook(payload, signPayload(payload, "whsec_other", time.Now()))
	require.ErrorIs(t, err, ErrInvalidSignature)

	_, err = gateway.ParseWebhook(payload, "")
	require.ErrorIs(t, err, ErrInvalidSignature)
}

func TestParseWebhookIgnoresOtherEventData(t *testing.T) {
	gateway := newTestGateway(t)
	payload := []byte(`{"id":"evt_2","object":"event","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)

	event, err := gateway.ParseWebhook(payload, signPayload(payload, testWebhookSecret, time.Now()))
	require.NoError(t, err)
	require.Equal(t, "customer.created", event.Type)
	require.Empty(t, event.SessionID)
}

func TestParseWebhookWithoutSecret(t *testing.T) {
	gateway, err := NewStripeGateway(StripeConfig{SecretKey: "sk_test_123"}, zerolog.Nop())
	require.NoError(t, err)

	_, err = gateway.ParseWebhook([]byte(`{}`), "t=1,v1=abc")
	require.ErrorIs(t, err, ErrNotConfigured)
}
