package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

const webhookBody = `{
  "object": "instagram",
  "entry": [{
    "id": "1784001",
    "time": 1767225600,
    "messaging": [
      {"sender": {"id": "555"}, "recipient": {"id": "1784001"}, "timestamp": 1767225600000,
       "message": {"mid": "m-1", "text": "Oi, tenho interesse"}},
      {"sender": {"id": "1784001"}, "recipient": {"id": "555"}, "timestamp": 1767225660000,
       "message": {"mid": "m-2", "text": "Olá!", "is_echo": true}},
      {"sender": {"id": "555"}, "recipient": {"id": "1784001"}, "timestamp": 1767225700000,
       "message": {"mid": "m-1", "text": "Oi, tenho interesse"}}
    ]
  }, {
    "id": "unknown",
    "messaging": [{"sender": {"id": "1"}, "recipient": {"id": "2"}, "message": {"mid": "x"}}]
  }]
}`

func TestInboxService_HandleWebhook(t *testing.T) {
	inbox, companies, publisher := new(MockInboxRepo), new(MockCompanyRepo), new(MockPublisher)
	svc := service.NewInboxService(inbox, companies, nil, publisher, "verify-me")

	var payload service.WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(webhookBody), &payload))

	companies.On("ListWithInstagram", mock.Anything).Return([]domain.Company{{ID: 3, InstagramBusinessID: "1784001"}}, nil)
	companies.On("ListMembers", mock.Anything, int32(3)).Return([]domain.CompanyMember{{UserID: 2}, {UserID: 4}}, nil)
	inbox.On("UpsertConversation", mock.Anything, mock.MatchedBy(func(c *domain.InstagramConversation) bool {
		return c.CompanyID == 3 && c.ParticipantID == "555"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*domain.InstagramConversation).ID = 40
	}).Return(nil)
	inbox.On("InsertMessage", mock.Anything, mock.MatchedBy(func(m *domain.InstagramMessage) bool { return m.ExternalID == "m-1" })).Return(true, nil).Once()
	inbox.On("InsertMessage", mock.Anything, mock.MatchedBy(func(m *domain.InstagramMessage) bool { return m.ExternalID == "m-2" })).Return(true, nil).Once()
	inbox.On("InsertMessage", mock.Anything, mock.MatchedBy(func(m *domain.InstagramMessage) bool { return m.ExternalID == "m-1" })).Return(false, nil).Once()
	inbox.On("TouchConversation", mock.Anything, int32(40), "Oi, tenho interesse", mock.Anything, true).Return(nil)
	inbox.On("TouchConversation", mock.Anything, int32(40), "Olá!", mock.Anything, false).Return(nil)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(env domain.Envelope) bool {
		return env.Type == domain.EventInstagramDM
	})).Return(1)

	stored, err := svc.HandleWebhook(context.Background(), &payload)
	require.NoError(t, err)
	assert.Equal(t, 2, stored)

	// only the inbound message is broadcast, once per company member
	publisher.AssertNumberOfCalls(t, "Publish", 2)
	publisher.AssertCalled(t, "Publish", int32(2), mock.Anything)
	publisher.AssertCalled(t, "Publish", int32(4), mock.Anything)
}

func TestInboxService_HandleWebhookRejectsOtherObjects(t *testing.T) {
	svc := service.NewInboxService(new(MockInboxRepo), new(MockCompanyRepo), nil, nil, "verify-me")

	_, err := svc.HandleWebhook(context.Background(), &service.WebhookPayload{Object: "page"})
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestInboxService_VerifyWebhook(t *testing.T) {
	svc := service.NewInboxService(nil, nil, nil, nil, "verify-me")

	challenge, err := svc.VerifyWebhook("subscribe", "verify-me", "12345")
	require.NoError(t, err)
	assert.Equal(t, "12345", challenge)

	_, err = svc.VerifyWebhook("subscribe", "wrong", "12345")
	assert.ErrorIs(t, err, service.ErrForbidden)

	_, err = svc.VerifyWebhook("unsubscribe", "verify-me", "12345")
	assert.ErrorIs(t, err, service.ErrForbidden)
}
