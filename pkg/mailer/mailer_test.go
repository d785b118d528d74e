package mailer

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestOrderConfirmationRendersLines(t *testing.T) {
	msg, err := OrderConfirmation("buyer@example.com", OrderConfirmationData{
		Name:     "Ada <script>",
		OrderID:  42,
		PaidAt:   time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC),
		Currency: "eur",
		Total:    6250,
		Lines: []OrderLine{
			{Title: "Blue Harbour", Quantity: 1, UnitPrice: 5000},
			{Title: "Opening night", Quantity: 1, UnitPrice: 1250},
		},
	})
	require.NoError(t, err)

	require.Equal(t, []string{"buyer@example.com"}, msg.To)
	require.Equal(t, "Your Nemesis order #42", msg.Subject)
	require.Contains(t, msg.HTML, "Blue Harbour")
	require.Contains(t, msg.HTML, "62.50 EUR")
	require.Contains(t, msg.HTML, "1 May 2024")
	require.NotContains(t, msg.HTML, "<script>")
}

func TestFormatAmount(t *testing.T) {
	require.Equal(t, "12.50 EUR", FormatAmount(1250, "eur"))
	require.Equal(t, "0.05 USD", FormatAmount(5, "usd"))
	require.Equal(t, "-1.00 EUR", FormatAmount(-100, "EUR"))
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	sender := NewLogSender(zerolog.New(&buf))

	msg, err := Welcome("new@example.com", WelcomeData{Name: "New"})
	require.NoError(t, err)
	require.NoError(t, sender.Send(context.Background(), msg))
	require.Contains(t, buf.String(), "n***w@example.com")
	require.NotContains(t, buf.String(), "new@example.com")

	require.ErrorIs(t, sender.Send(context.Background(), Message{Subject: "x"}), ErrNoRecipients)
}

func TestNewResendSenderValidatesConfig(t *testing.T) {
	_, err := NewResendSender("", "noreply@example.com", zerolog.Nop())
	require.Error(t, err)
	_, err = NewResendSender("re_123", "", zerolog.Nop())
	require.Error(t, err)

	sender, err := NewResendSender("re_123", "Nemesis <noreply@example.com>", zerolog.Nop())
	require.NoError(t, err)
	require.ErrorIs(t, sender.Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestMaskAddress(t *testing.T) {
	require.Equal(t, "a***e@example.com", MaskAddress("Alice@Example.com"))
	require.Equal(t, "b***@example.com", MaskAddress("bo@example.com"))
	require.Equal(t, "***", MaskAddress("not-an-address"))
	require.Equal(t, "", MaskAddress("  "))
}
