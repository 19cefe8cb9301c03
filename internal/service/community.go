package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

const (
	defaultLeaderboardSize = 10
	maxLeaderboardSize     = 100
)

type communityService struct {
	communityRepo repository.CommunityRepository
	companyRepo   repository.CompanyRepository
	userRepo      repository.UserRepository
	email         EmailService
	messenger     *messenger
	now           func() time.Time
}

func NewCommunityService(communityRepo repository.CommunityRepository, companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository, notes NotificationService, email EmailService, push PushService) CommunityService {
	return &communityService{
		communityRepo: communityRepo,
		companyRepo:   companyRepo,
		userRepo:      userRepo,
		email:         email,
		messenger:     newMessenger(notes, push),
		now:           time.Now,
	}
}

// Join adds a creator to a brand community. An expired membership is reactivated with its points;
// a revoked one stays revoked.
func (s *communityService) Join(ctx context.Context, creatorID, companyID int32) (*domain.CommunityMembership, error) {
	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if creator.Role != domain.UserRoleCreator {
		return nil, fmt.Errorf("%w: only creators can join communities", ErrForbidden)
	}
	if _, err := s.companyRepo.GetByID(ctx, companyID); err != nil {
		return nil, notFound(err, "company")
	}
	tiers, err := s.communityRepo.ListTiers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}

	now := s.now().UTC()
	expires := now.Add(domain.MembershipTTL)

	m, err := s.communityRepo.GetMembership(ctx, companyID, creatorID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		m = &domain.CommunityMembership{
			CompanyID: companyID,
			CreatorID: creatorID,
			Status:    domain.MembershipStatusActive,
			JoinedAt:  now,
			ExpiresAt: &expires,
		}
		if tier := TierFor(tiers, 0); tier != nil {
			m.TierID = &tier.ID
			m.Tier = tier
		}
		if err := s.communityRepo.CreateMembership(ctx, m); err != nil {
			if isUniqueViolation(err) {
				return nil, fmt.Errorf("%w: already a member", ErrConflict)
			}
			return nil, fmt.Errorf("failed to create membership: %w", err)
		}
		logger.Info("Creator joined community", "creatorID", creatorID, "companyID", companyID)
		return m, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	switch m.Status {
	case domain.MembershipStatusActive:
		return m, nil
	case domain.MembershipStatusRevoked:
		return nil, fmt.Errorf("%w: membership was revoked by the brand", ErrForbidden)
	}
	m.Status = domain.MembershipStatusActive
	m.ExpiresAt = &expires
	if tier := TierFor(tiers, m.Points); tier != nil {
		m.TierID = &tier.ID
		m.Tier = tier
	}
	if err := s.communityRepo.UpdateMembership(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to reactivate membership: %w", err)
	}
	return m, nil
}

// Leave lets the creator out; the membership expires so a later Join can reactivate it.
func (s *communityService) Leave(ctx context.Context, creatorID, companyID int32) error {
	m, err := s.communityRepo.GetMembership(ctx, companyID, creatorID)
	if err != nil {
		return notFound(err, "membership")
	}
	if m.Status != domain.MembershipStatusActive {
		return nil
	}
	now := s.now().UTC()
	m.Status = domain.MembershipStatusExpired
	m.ExpiresAt = &now
	return s.communityRepo.UpdateMembership(ctx, m)
}

func (s *communityService) Revoke(ctx context.Context, userID, companyID, creatorID int32) error {
	if _, err := requireManager(ctx, s.companyRepo, companyID, userID); err != nil {
		return err
	}
	m, err := s.communityRepo.GetMembership(ctx, companyID, creatorID)
	if err != nil {
		return notFound(err, "membership")
	}
	m.Status = domain.MembershipStatusRevoked
	return s.communityRepo.UpdateMembership(ctx, m)
}

func (s *communityService) ListMembers(ctx context.Context, userID, companyID int32) ([]domain.CommunityMembership, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	return s.communityRepo.ListMembers(ctx, companyID)
}

func (s *communityService) ListMine(ctx context.Context, creatorID int32) ([]domain.CommunityMembership, error) {
	return s.communityRepo.ListByCreator(ctx, creatorID)
}

// AwardPoints adds a strictly positive delta and moves the member to the tier matching the new total.
func (s *communityService) AwardPoints(ctx context.Context, userID, companyID, creatorID int32, delta int64, reason, reference string) (*domain.CommunityMembership, error) {
	if delta <= 0 {
		return nil, validationError("points delta must be positive")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, validationError("reason is required")
	}
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}

	m, err := s.communityRepo.GetMembership(ctx, companyID, creatorID)
	if err != nil {
		return nil, notFound(err, "membership")
	}
	if m.Status != domain.MembershipStatusActive {
		return nil, fmt.Errorf("%w: membership is %s", ErrConflict, m.Status)
	}

	total, err := s.communityRepo.AddPoints(ctx, &domain.PointsEvent{
		MembershipID: m.ID,
		Delta:        delta,
		Reason:       reason,
		Reference:    reference,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add points: %w", err)
	}
	m.Points = total

	tiers, err := s.communityRepo.ListTiers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tiers: %w", err)
	}
	tier := TierFor(tiers, total)
	if sameTier(m.TierID, tier) {
		return m, nil
	}

	var tierID *int32
	if tier != nil {
		tierID = &tier.ID
	}
	if err := s.communityRepo.SetTier(ctx, m.ID, tierID); err != nil {
		return nil, fmt.Errorf("failed to set tier: %w", err)
	}
	upgraded := tier != nil && (m.TierID == nil || tierRank(tiers, *m.TierID) < tier.MinPoints)
	m.TierID = tierID
	m.Tier = tier
	if upgraded {
		s.announceUpgrade(ctx, m, tier)
	}
	return m, nil
}

func (s *communityService) announceUpgrade(ctx context.Context, m *domain.CommunityMembership, tier *domain.Tier) {
	companyName := ""
	if company, err := s.companyRepo.GetByID(ctx, m.CompanyID); err == nil {
		companyName = company.TradeName
	}
	s.messenger.send(ctx, m.CreatorID, &m.CompanyID, "Novo nível na comunidade",
		fmt.Sprintf("Você alcançou o nível %s na comunidade %s", tier.Name, companyName),
		map[string]string{"tier_id": fmt.Sprint(tier.ID), "points": fmt.Sprint(m.Points)})
	creator, err := s.userRepo.GetByID(ctx, m.CreatorID)
	if err != nil {
		return
	}
	if err := s.email.SendTierUpgrade(ctx, creator.Email, creator.Name, companyName, tier.Name); err != nil {
		logger.Warn("Failed to send tier upgrade email", "membershipID", m.ID, "error", err)
	}
}

func (s *communityService) Leaderboard(ctx context.Context, companyID, limit int32) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	if limit > maxLeaderboardSize {
		limit = maxLeaderboardSize
	}
	return s.communityRepo.Leaderboard(ctx, companyID, limit)
}

func (s *communityService) ListTiers(ctx context.Context, companyID int32) ([]domain.Tier, error) {
	return s.communityRepo.ListTiers(ctx, companyID)
}

// SaveTiers replaces the tier table and re-evaluates every member against the new thresholds.
func (s *communityService) SaveTiers(ctx context.Context, userID, companyID int32, tiers []domain.Tier) ([]domain.Tier, error) {
	if _, err := requireManager(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}
	for i := range tiers {
		tiers[i].CompanyID = companyID
		tiers[i].Name = strings.TrimSpace(tiers[i].Name)
	}

	saved, err := s.communityRepo.ReplaceTiers(ctx, companyID, tiers)
	if err != nil {
		return nil, fmt.Errorf("failed to save tiers: %w", err)
	}

	members, err := s.communityRepo.ListMembers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	for _, m := range members {
		var tierID *int32
		if tier := TierFor(saved, m.Points); tier != nil {
			tierID = &tier.ID
		}
		if err := s.communityRepo.SetTier(ctx, m.ID, tierID); err != nil {
			return nil, fmt.Errorf("failed to recompute tier for membership %d: %w", m.ID, err)
		}
	}
	logger.Info("Community tiers saved", "companyID", companyID, "tiers", len(saved), "members", len(members))
	return saved, nil
}

func (s *communityService) ExpireMemberships(ctx context.Context) (int64, error) {
	n, err := s.communityRepo.ExpireMemberships(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to expire memberships: %w", err)
	}
	return n, nil
}

// ValidateTiers requires named tiers with unique, non-negative thresholds.
func ValidateTiers(tiers []domain.Tier) error {
	seen := make(map[int64]bool, len(tiers))
	for _, t := range tiers {
		if strings.TrimSpace(t.Name) == "" {
			return validationError("tier name is required")
		}
		if t.MinPoints < 0 {
			return validationError("tier %q has a negative threshold", t.Name)
		}
		if seen[t.MinPoints] {
			return validationError("duplicate tier threshold %d", t.MinPoints)
		}
		seen[t.MinPoints] = true
	}
	return nil
}

// TierFor returns the tier with the highest threshold not above points, or nil.
func TierFor(tiers []domain.Tier, points int64) *domain.Tier {
	sorted := make([]domain.Tier, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinPoints < sorted[j].MinPoints })

	var best *domain.Tier
	for i := range sorted {
		if sorted[i].MinPoints > points {
			break
		}
		best = &sorted[i]
	}
	return best
}

func sameTier(current *int32, tier *domain.Tier) bool {
	if current == nil || tier == nil {
		return current == nil && tier == nil
	}
	return *current == tier.ID
}

// tierRank is the threshold of tier id, or -1 when the id is no longer defined.
func tierRank(tiers []domain.Tier, id int32) int64 {
	for _, t := range tiers {
		if t.ID == id {
			return t.MinPoints
		}
	}
	return -1
}
