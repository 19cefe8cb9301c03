package service

import (
	"context"
	"errors"
	"testing"

	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_Deliver(t *testing.T) {
	ctx := context.Background()

	t.Run("Disabled Without API Key", func(t *testing.T) {
		svc := NewEmailService("", "no-reply@example.com", "UGC")
		assert.NoError(t, svc.SendInvite(ctx, "ana@example.com", "Ana", "Marca", "Verão"))
	})

	t.Run("Builds Message", func(t *testing.T) {
		var sent *mail.SGMailV3
		svc := &emailService{fromAddress: "no-reply@example.com", fromName: "UGC",
			send: func(ctx context.Context, msg *mail.SGMailV3) (int, string, error) {
				sent = msg
				return 202, "", nil
			}}

		require.NoError(t, svc.SendApplicationDecision(ctx, "ana@example.com", "Ana", "Verão", true))
		require.NotNil(t, sent)
		assert.Equal(t, "no-reply@example.com", sent.From.Address)
		assert.Contains(t, sent.Subject, "aprovada")
		require.Len(t, sent.Personalizations, 1)
		assert.Equal(t, "ana@example.com", sent.Personalizations[0].To[0].Address)
	})

	t.Run("Rejected By Provider", func(t *testing.T) {
		svc := &emailService{send: func(ctx context.Context, msg *mail.SGMailV3) (int, string, error) {
			return 401, `{"errors":[{"message":"bad key"}]}`, nil
		}}
		err := svc.SendTierUpgrade(ctx, "ana@example.com", "Ana", "Marca", "Ouro")
		assert.ErrorContains(t, err, "status 401")
	})

	t.Run("Transport Error", func(t *testing.T) {
		svc := &emailService{send: func(ctx context.Context, msg *mail.SGMailV3) (int, string, error) {
			return 0, "", errors.New("connection reset")
		}}
		assert.Error(t, svc.SendApplicationDigest(ctx, "dono@example.com", "Dono", "Marca", 3))
	})
}
