package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type communityRepository struct {
	db *sql.DB
}

func NewCommunityRepository(db *sql.DB) repository.CommunityRepository {
	return &communityRepository{db: db}
}

func (r *communityRepository) ListTiers(ctx context.Context, companyID int32) ([]domain.Tier, error) {
	query := `SELECT id, company_id, name, min_points, benefits FROM community_tiers WHERE company_id = $1 ORDER BY min_points`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tiers []domain.Tier
	for rows.Next() {
		var t domain.Tier
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.Name, &t.MinPoints, &t.Benefits); err != nil {
			return nil, err
		}
		tiers = append(tiers, t)
	}
	return tiers, rows.Err()
}

// ReplaceTiers swaps the whole tier table of a company in one transaction.
func (r *communityRepository) ReplaceTiers(ctx context.Context, companyID int32, tiers []domain.Tier) ([]domain.Tier, error) {
	logger.DatabaseCall("REPLACE", "community_tiers", "companyID", companyID, "count", len(tiers))
	saved := make([]domain.Tier, 0, len(tiers))
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM community_tiers WHERE company_id = $1`, companyID); err != nil {
			return err
		}
		for _, t := range tiers {
			t.CompanyID = companyID
			err := tx.QueryRowContext(ctx,
				`INSERT INTO community_tiers (company_id, name, min_points, benefits) VALUES ($1, $2, $3, $4) RETURNING id`,
				companyID, t.Name, t.MinPoints, t.Benefits).Scan(&t.ID)
			if err != nil {
				return err
			}
			saved = append(saved, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

const membershipColumns = `m.id, m.company_id, m.creator_id, m.points, m.tier_id, m.status, m.joined_at, m.expires_at`

func scanMembership(row interface{ Scan(...any) error }, extra ...any) (*domain.CommunityMembership, error) {
	m := &domain.CommunityMembership{}
	var tierID sql.NullInt32
	var expires sql.NullTime
	dest := []any{&m.ID, &m.CompanyID, &m.CreatorID, &m.Points, &tierID, &m.Status, &m.JoinedAt, &expires}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if tierID.Valid {
		id := tierID.Int32
		m.TierID = &id
	}
	if expires.Valid {
		t := expires.Time
		m.ExpiresAt = &t
	}
	return m, nil
}

func (r *communityRepository) CreateMembership(ctx context.Context, m *domain.CommunityMembership) error {
	query := `INSERT INTO community_memberships (company_id, creator_id, points, tier_id, status, joined_at, expires_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	logger.DatabaseCall("INSERT", "community_memberships", "companyID", m.CompanyID, "creatorID", m.CreatorID)
	return r.db.QueryRowContext(ctx, query, m.CompanyID, m.CreatorID, m.Points, m.TierID, m.Status, m.JoinedAt, m.ExpiresAt).Scan(&m.ID)
}

func (r *communityRepository) GetMembership(ctx context.Context, companyID, creatorID int32) (*domain.CommunityMembership, error) {
	query := `SELECT ` + membershipColumns + ` FROM community_memberships m WHERE m.company_id = $1 AND m.creator_id = $2`
	return scanMembership(r.db.QueryRowContext(ctx, query, companyID, creatorID))
}

func (r *communityRepository) UpdateMembership(ctx context.Context, m *domain.CommunityMembership) error {
	query := `UPDATE community_memberships SET tier_id=$1, status=$2, joined_at=$3, expires_at=$4 WHERE id=$5`
	return execOne(ctx, r.db, query, m.TierID, m.Status, m.JoinedAt, m.ExpiresAt, m.ID)
}

func (r *communityRepository) ListMembers(ctx context.Context, companyID int32) ([]domain.CommunityMembership, error) {
	query := `SELECT ` + membershipColumns + `, u.name, u.avatar_url, COALESCE(t.name, '')
	          FROM community_memberships m
	          JOIN users u ON u.id = m.creator_id
	          LEFT JOIN community_tiers t ON t.id = m.tier_id
	          WHERE m.company_id = $1 ORDER BY m.joined_at`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.CommunityMembership
	for rows.Next() {
		u := &domain.User{}
		var tierName string
		m, err := scanMembership(rows, &u.Name, &u.AvatarURL, &tierName)
		if err != nil {
			return nil, err
		}
		u.ID = m.CreatorID
		m.Creator = u
		if m.TierID != nil {
			m.Tier = &domain.Tier{ID: *m.TierID, CompanyID: m.CompanyID, Name: tierName}
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}

func (r *communityRepository) ListByCreator(ctx context.Context, creatorID int32) ([]domain.CommunityMembership, error) {
	query := `SELECT ` + membershipColumns + `, c.trade_name, c.community_slug, COALESCE(t.name, '')
	          FROM community_memberships m
	          JOIN companies c ON c.id = m.company_id
	          LEFT JOIN community_tiers t ON t.id = m.tier_id
	          WHERE m.creator_id = $1 ORDER BY m.joined_at DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []domain.CommunityMembership
	for rows.Next() {
		c := &domain.Company{}
		var tierName string
		m, err := scanMembership(rows, &c.TradeName, &c.CommunitySlug, &tierName)
		if err != nil {
			return nil, err
		}
		c.ID = m.CompanyID
		m.Company = c
		if m.TierID != nil {
			m.Tier = &domain.Tier{ID: *m.TierID, CompanyID: m.CompanyID, Name: tierName}
		}
		memberships = append(memberships, *m)
	}
	return memberships, rows.Err()
}

func (r *communityRepository) AddPoints(ctx context.Context, e *domain.PointsEvent) (int64, error) {
	logger.DatabaseCall("INSERT", "points_events", "membershipID", e.MembershipID, "delta", e.Delta)
	var total int64
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		e.CreatedOn = time.Now().UTC()
		err := tx.QueryRowContext(ctx,
			`INSERT INTO points_events (membership_id, delta, reason, reference, created_on) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
			e.MembershipID, e.Delta, e.Reason, e.Reference, e.CreatedOn).Scan(&e.ID)
		if err != nil {
			return err
		}
		return tx.QueryRowContext(ctx,
			`UPDATE community_memberships SET points = points + $1 WHERE id = $2 RETURNING points`,
			e.Delta, e.MembershipID).Scan(&total)
	})
	logger.DatabaseResult("INSERT", 1, err, "total", total)
	return total, err
}

func (r *communityRepository) SetTier(ctx context.Context, membershipID int32, tierID *int32) error {
	_, err := r.db.ExecContext(ctx, `UPDATE community_memberships SET tier_id = $1 WHERE id = $2`, tierID, membershipID)
	return err
}

func (r *communityRepository) Leaderboard(ctx context.Context, companyID int32, limit int32) ([]domain.LeaderboardEntry, error) {
	query := `SELECT m.creator_id, u.name, u.avatar_url, m.points, COALESCE(t.name, ''), m.joined_at
	          FROM community_memberships m
	          JOIN users u ON u.id = m.creator_id
	          LEFT JOIN community_tiers t ON t.id = m.tier_id
	          WHERE m.company_id = $1 AND m.status = 'active'
	          ORDER BY m.points DESC, m.joined_at ASC
	          LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, companyID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.LeaderboardEntry
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.CreatorID, &e.Name, &e.AvatarURL, &e.Points, &e.TierName, &e.JoinedAt); err != nil {
			return nil, err
		}
		e.Rank = int32(len(entries) + 1)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *communityRepository) ExpireMemberships(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE community_memberships SET status = 'expired' WHERE status = 'active' AND expires_at IS NOT NULL AND expires_at <= $1`
	logger.DatabaseCall("UPDATE", "community_memberships", "operation", "expire")
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
