package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/clients"
	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

// WebhookPayload is the Instagram messaging webhook body
type WebhookPayload struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string             `json:"id"` // Instagram business account id
	Time      int64              `json:"time"`
	Messaging []WebhookMessaging `json:"messaging"`
}

type WebhookMessaging struct {
	Sender    struct{ ID string } `json:"sender"`
	Recipient struct{ ID string } `json:"recipient"`
	Timestamp int64               `json:"timestamp"` // milliseconds
	Message   *struct {
		MID    string `json:"mid"`
		Text   string `json:"text"`
		IsEcho bool   `json:"is_echo"`
	} `json:"message"`
}

type inboxService struct {
	inboxRepo   repository.InboxRepository
	companyRepo repository.CompanyRepository
	instagram   InstagramAPI
	publisher   Publisher
	verifyToken string
	now         func() time.Time
}

func NewInboxService(inboxRepo repository.InboxRepository, companyRepo repository.CompanyRepository, instagram InstagramAPI,
	publisher Publisher, verifyToken string) InboxService {
	return &inboxService{
		inboxRepo:   inboxRepo,
		companyRepo: companyRepo,
		instagram:   instagram,
		publisher:   publisher,
		verifyToken: verifyToken,
		now:         time.Now,
	}
}

func (s *inboxService) ListConversations(ctx context.Context, userID, companyID int32) ([]domain.InstagramConversation, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	return s.inboxRepo.ListConversations(ctx, companyID)
}

// ListMessages returns the thread oldest first and clears its unread counter.
func (s *inboxService) ListMessages(ctx context.Context, userID, conversationID int32) ([]domain.InstagramMessage, error) {
	conv, err := s.conversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.inboxRepo.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	if conv.UnreadCount > 0 {
		if err := s.inboxRepo.MarkRead(ctx, conv.ID); err != nil {
			logger.Warn("Failed to mark conversation read", "conversationID", conv.ID, "error", err)
		}
	}
	return msgs, nil
}

func (s *inboxService) SendMessage(ctx context.Context, userID, conversationID int32, text string) (*domain.InstagramMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationError("message text is required")
	}
	conv, err := s.conversation(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	company, err := s.instagramCompany(ctx, conv.CompanyID)
	if err != nil {
		return nil, err
	}

	mid, err := s.instagram.SendMessage(ctx, company.InstagramBusinessID, company.InstagramAccessToken, conv.ParticipantID, text)
	if err != nil {
		return nil, providerError(err)
	}
	msg := &domain.InstagramMessage{
		ConversationID: conv.ID,
		ExternalID:     mid,
		Direction:      domain.MessageOutbound,
		Body:           text,
		SentAt:         s.now().UTC(),
	}
	if _, err := s.inboxRepo.InsertMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	if err := s.inboxRepo.TouchConversation(ctx, conv.ID, text, msg.SentAt, false); err != nil {
		logger.Warn("Failed to update conversation", "conversationID", conv.ID, "error", err)
	}
	return msg, nil
}

// VerifyWebhook answers the subscription handshake with the challenge when the token matches.
func (s *inboxService) VerifyWebhook(mode, token, challenge string) (string, error) {
	if mode != "subscribe" || s.verifyToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(s.verifyToken)) != 1 {
		return "", fmt.Errorf("%w: webhook verification failed", ErrForbidden)
	}
	return challenge, nil
}

// HandleWebhook stores new messages and pushes an instagram_dm event to every member of the owning company.
// It returns the number of messages stored; redelivered messages are skipped.
func (s *inboxService) HandleWebhook(ctx context.Context, payload *WebhookPayload) (int, error) {
	if payload == nil || payload.Object != "instagram" {
		return 0, validationError("unsupported webhook object")
	}
	companies, err := s.companyRepo.ListWithInstagram(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list instagram companies: %w", err)
	}
	byBusinessID := make(map[string]domain.Company, len(companies))
	for _, c := range companies {
		byBusinessID[c.InstagramBusinessID] = c
	}

	stored := 0
	for _, entry := range payload.Entry {
		company, ok := byBusinessID[entry.ID]
		if !ok {
			logger.Warn("Webhook for unknown instagram account", "businessID", entry.ID)
			continue
		}
		for _, ev := range entry.Messaging {
			if ev.Message == nil || ev.Message.MID == "" {
				continue
			}
			direction, participant := domain.MessageInbound, ev.Sender.ID
			if ev.Message.IsEcho || ev.Sender.ID == company.InstagramBusinessID {
				direction, participant = domain.MessageOutbound, ev.Recipient.ID
			}
			sentAt := time.UnixMilli(ev.Timestamp).UTC()
			if ev.Timestamp == 0 {
				sentAt = s.now().UTC()
			}

			conv := &domain.InstagramConversation{
				CompanyID:     company.ID,
				ExternalID:    participant,
				ParticipantID: participant,
				LastMessageAt: &sentAt,
			}
			msg := &domain.InstagramMessage{ExternalID: ev.Message.MID, Direction: direction, Body: ev.Message.Text, SentAt: sentAt}
			inserted, err := s.storeMessage(ctx, conv, msg)
			if err != nil {
				return stored, err
			}
			if !inserted {
				continue
			}
			stored++
			if direction == domain.MessageInbound {
				s.broadcast(ctx, company.ID, domain.Envelope{Type: domain.EventInstagramDM, Data: map[string]any{
					"conversation_id": conv.ID,
					"company_id":      company.ID,
					"message":         msg,
				}})
			}
		}
	}
	return stored, nil
}

// SyncConversations pulls the Graph inbox for one company, publishing progress after each thread.
func (s *inboxService) SyncConversations(ctx context.Context, companyID int32) (*domain.SyncProgress, error) {
	company, err := s.instagramCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	threads, err := s.instagram.ListConversations(ctx, company.InstagramBusinessID, company.InstagramAccessToken)
	if err != nil {
		return nil, providerError(err)
	}

	progress := &domain.SyncProgress{CompanyID: companyID, Total: len(threads)}
	s.broadcast(ctx, companyID, domain.Envelope{Type: domain.EventDMSyncProgress, Data: *progress})
	for _, thread := range threads {
		if err := ctx.Err(); err != nil {
			return progress, err
		}
		if err := s.syncThread(ctx, company, thread); err != nil {
			return progress, err
		}
		progress.Processed++
		progress.Done = progress.Processed == progress.Total
		s.broadcast(ctx, companyID, domain.Envelope{Type: domain.EventDMSyncProgress, Data: *progress})
	}
	if !progress.Done {
		progress.Done = true
		s.broadcast(ctx, companyID, domain.Envelope{Type: domain.EventDMSyncProgress, Data: *progress})
	}
	logger.Info("Instagram inbox synced", "companyID", companyID, "conversations", progress.Total)
	return progress, nil
}

func (s *inboxService) syncThread(ctx context.Context, company *domain.Company, thread clients.GraphConversation) error {
	conv := &domain.InstagramConversation{CompanyID: company.ID}
	for _, p := range thread.Participants {
		if p.ID != company.InstagramBusinessID {
			conv.ExternalID, conv.ParticipantID = p.ID, p.ID
			conv.ParticipantHandle, conv.ParticipantName = p.Username, p.Name
		}
	}
	if conv.ExternalID == "" {
		return nil
	}
	if !thread.UpdatedAt.IsZero() {
		updated := thread.UpdatedAt.UTC()
		conv.LastMessageAt = &updated
	}
	if err := s.inboxRepo.UpsertConversation(ctx, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	// Graph returns newest first; store oldest first so the conversation ends on the latest message.
	for i := len(thread.Messages) - 1; i >= 0; i-- {
		m := thread.Messages[i]
		direction := domain.MessageInbound
		if m.FromID == company.InstagramBusinessID {
			direction = domain.MessageOutbound
		}
		msg := &domain.InstagramMessage{
			ConversationID: conv.ID,
			ExternalID:     m.ID,
			Direction:      direction,
			Body:           m.Text,
			SentAt:         m.CreatedAt.UTC(),
		}
		inserted, err := s.inboxRepo.InsertMessage(ctx, msg)
		if err != nil {
			return fmt.Errorf("failed to store message: %w", err)
		}
		if inserted {
			if err := s.inboxRepo.TouchConversation(ctx, conv.ID, m.Text, msg.SentAt, direction == domain.MessageInbound); err != nil {
				return fmt.Errorf("failed to update conversation: %w", err)
			}
		}
	}
	return nil
}

func (s *inboxService) SyncAll(ctx context.Context) (int, error) {
	companies, err := s.companyRepo.ListWithInstagram(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list instagram companies: %w", err)
	}
	synced := 0
	for _, c := range companies {
		if _, err := s.SyncConversations(ctx, c.ID); err != nil {
			logger.Error("Instagram inbox sync failed", "companyID", c.ID, "error", err)
			continue
		}
		synced++
	}
	return synced, nil
}

func (s *inboxService) storeMessage(ctx context.Context, conv *domain.InstagramConversation, msg *domain.InstagramMessage) (bool, error) {
	if err := s.inboxRepo.UpsertConversation(ctx, conv); err != nil {
		return false, fmt.Errorf("failed to save conversation: %w", err)
	}
	msg.ConversationID = conv.ID
	inserted, err := s.inboxRepo.InsertMessage(ctx, msg)
	if err != nil {
		return false, fmt.Errorf("failed to store message: %w", err)
	}
	if inserted {
		if err := s.inboxRepo.TouchConversation(ctx, conv.ID, msg.Body, msg.SentAt, msg.Direction == domain.MessageInbound); err != nil {
			return true, fmt.Errorf("failed to update conversation: %w", err)
		}
	}
	return inserted, nil
}

func (s *inboxService) broadcast(ctx context.Context, companyID int32, env domain.Envelope) {
	if s.publisher == nil {
		return
	}
	members, err := s.companyRepo.ListMembers(ctx, companyID)
	if err != nil {
		logger.Warn("Failed to list company members for broadcast", "companyID", companyID, "error", err)
		return
	}
	for _, m := range members {
		s.publisher.Publish(m.UserID, env)
	}
}

func (s *inboxService) conversation(ctx context.Context, userID, conversationID int32) (*domain.InstagramConversation, error) {
	conv, err := s.inboxRepo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, notFound(err, "conversation")
	}
	if _, err := requireMember(ctx, s.companyRepo, conv.CompanyID, userID); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *inboxService) instagramCompany(ctx context.Context, companyID int32) (*domain.Company, error) {
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company")
	}
	if company.InstagramBusinessID == "" || company.InstagramAccessToken == "" {
		return nil, validationError("company has no instagram account connected")
	}
	return company, nil
}
