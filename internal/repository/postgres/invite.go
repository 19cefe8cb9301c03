package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type inviteRepository struct {
	db *sql.DB
}

func NewInviteRepository(db *sql.DB) repository.InviteRepository {
	return &inviteRepository{db: db}
}

const inviteColumns = `i.id, i.campaign_id, i.company_id, i.creator_id, i.message, i.status, i.sent_by, i.expires_at, i.created_on, i.responded_on`

func scanInvite(row interface{ Scan(...any) error }, extra ...any) (*domain.CampaignInvite, error) {
	i := &domain.CampaignInvite{}
	var responded sql.NullTime
	dest := []any{&i.ID, &i.CampaignID, &i.CompanyID, &i.CreatorID, &i.Message, &i.Status, &i.SentBy, &i.ExpiresAt, &i.CreatedOn, &responded}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if responded.Valid {
		t := responded.Time
		i.RespondedOn = &t
	}
	return i, nil
}

func (r *inviteRepository) Create(ctx context.Context, i *domain.CampaignInvite) error {
	query := `INSERT INTO campaign_invites (campaign_id, company_id, creator_id, message, status, sent_by, expires_at, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	i.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "campaign_invites", "campaignID", i.CampaignID, "creatorID", i.CreatorID)
	return r.db.QueryRowContext(ctx, query, i.CampaignID, i.CompanyID, i.CreatorID, i.Message, i.Status, i.SentBy, i.ExpiresAt, i.CreatedOn).Scan(&i.ID)
}

func (r *inviteRepository) GetByID(ctx context.Context, id int32) (*domain.CampaignInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM campaign_invites i WHERE i.id = $1`
	return scanInvite(r.db.QueryRowContext(ctx, query, id))
}

func (r *inviteRepository) GetPending(ctx context.Context, campaignID, creatorID int32) (*domain.CampaignInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM campaign_invites i WHERE i.campaign_id = $1 AND i.creator_id = $2 AND i.status = 'pending'`
	return scanInvite(r.db.QueryRowContext(ctx, query, campaignID, creatorID))
}

func (r *inviteRepository) UpdateStatus(ctx context.Context, id int32, status domain.InviteStatus) error {
	query := `UPDATE campaign_invites SET status=$1, responded_on=$2 WHERE id=$3 AND status='pending'`
	return execOne(ctx, r.db, query, status, time.Now().UTC(), id)
}

func (r *inviteRepository) Accept(ctx context.Context, inviteID int32, app *domain.Application) error {
	logger.DatabaseCall("UPDATE", "campaign_invites", "inviteID", inviteID, "applicationID", app.ID)
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `UPDATE campaign_invites SET status='accepted', responded_on=$1 WHERE id=$2 AND status='pending'`
		if err := execOne(ctx, tx, query, time.Now().UTC(), inviteID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return repository.ErrInviteNotPending
			}
			return err
		}
		switch {
		case app.ID == 0:
			if err := lockSlots(ctx, tx, app.CampaignID); err != nil {
				return err
			}
			return insertApplication(ctx, tx, app)
		case app.Status == domain.ApplicationStatusPending:
			if err := lockSlots(ctx, tx, app.CampaignID); err != nil {
				return err
			}
			return moveApplication(ctx, tx, app.ID, domain.ApplicationStatusPending, domain.ApplicationStatusAccepted, app.DecidedBy)
		}
		return nil
	})
}

func (r *inviteRepository) ListPendingByCreator(ctx context.Context, creatorID int32, now time.Time) ([]domain.CampaignInvite, error) {
	query := `SELECT ` + inviteColumns + `, c.title, c.description, c.creator_payment_cents, c.status
	          FROM campaign_invites i JOIN campaigns c ON c.id = i.campaign_id
	          WHERE i.creator_id = $1 AND i.status = 'pending' AND i.expires_at > $2
	          ORDER BY i.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.CampaignInvite
	for rows.Next() {
		c := &domain.Campaign{}
		i, err := scanInvite(rows, &c.Title, &c.Description, &c.CreatorPaymentCents, &c.Status)
		if err != nil {
			return nil, err
		}
		c.ID = i.CampaignID
		c.CompanyID = i.CompanyID
		i.Campaign = c
		invites = append(invites, *i)
	}
	return invites, rows.Err()
}

func (r *inviteRepository) ListByCampaign(ctx context.Context, campaignID int32) ([]domain.CampaignInvite, error) {
	query := `SELECT ` + inviteColumns + ` FROM campaign_invites i WHERE i.campaign_id = $1 ORDER BY i.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.CampaignInvite
	for rows.Next() {
		i, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *i)
	}
	return invites, rows.Err()
}

func (r *inviteRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE campaign_invites SET status='expired', responded_on=$1 WHERE status='pending' AND expires_at <= $1`
	logger.DatabaseCall("UPDATE", "campaign_invites", "operation", "expire_stale")
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return 0, err
	}
	n, err := result.RowsAffected()
	logger.DatabaseResult("UPDATE", n, err)
	return n, err
}
