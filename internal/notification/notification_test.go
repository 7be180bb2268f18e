package notification

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mepworks/invoicing/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNormalizeLocalNumber(t *testing.T) {
	got, err := Normalize("0771234567", "LK")
	require.NoError(t, err)
	assert.Equal(t, "+94771234567", got)
}

func TestNormalizeInternationalNumberUnchanged(t *testing.T) {
	got, err := Normalize("+94771234567", "LK")
	require.NoError(t, err)
	assert.Equal(t, "+94771234567", got)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "abc", "12"} {
		if _, err := Normalize(raw, "LK"); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestLogSenderSend(t *testing.T) {
	sender := NewLogSender(config.Config{SMSSenderName: "MEP"}, zap.NewNop())
	err := sender.Send(context.Background(), Message{
		Ref:  uuid.New(),
		To:   "+94771234567",
		Body: "Your order MEP-000001 has been dispatched.",
	})
	require.NoError(t, err)
}
