package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type applicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) repository.ApplicationRepository {
	return &applicationRepository{db: db}
}

const applicationColumns = `a.id, a.campaign_id, a.creator_id, a.pitch, a.proposed_cents, a.invite_id, a.status, a.decided_by, a.created_on, a.updated_on`

func scanApplication(row interface{ Scan(...any) error }, extra ...any) (*domain.Application, error) {
	a := &domain.Application{}
	var inviteID, decidedBy sql.NullInt32
	dest := []any{&a.ID, &a.CampaignID, &a.CreatorID, &a.Pitch, &a.ProposedCents, &inviteID, &a.Status, &decidedBy, &a.CreatedOn, &a.UpdatedOn}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if inviteID.Valid {
		id := inviteID.Int32
		a.InviteID = &id
	}
	if decidedBy.Valid {
		id := decidedBy.Int32
		a.DecidedBy = &id
	}
	return a, nil
}

func (r *applicationRepository) Create(ctx context.Context, a *domain.Application) error {
	return insertApplication(ctx, r.db, a)
}

func insertApplication(ctx context.Context, db dbtx, a *domain.Application) error {
	query := `INSERT INTO applications (campaign_id, creator_id, pitch, proposed_cents, invite_id, status, decided_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8) RETURNING id`
	now := time.Now().UTC()
	a.CreatedOn = now
	a.UpdatedOn = now
	logger.DatabaseCall("INSERT", "applications", "campaignID", a.CampaignID, "creatorID", a.CreatorID)
	err := db.QueryRowContext(ctx, query, a.CampaignID, a.CreatorID, a.Pitch, a.ProposedCents, a.InviteID, a.Status, a.DecidedBy, now).Scan(&a.ID)
	logger.DatabaseResult("INSERT", 1, err, "applicationID", a.ID)
	return err
}

func (r *applicationRepository) GetByID(ctx context.Context, id int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.id = $1`
	return scanApplication(r.db.QueryRowContext(ctx, query, id))
}

func (r *applicationRepository) GetByCampaignAndCreator(ctx context.Context, campaignID, creatorID int32) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.campaign_id = $1 AND a.creator_id = $2`
	return scanApplication(r.db.QueryRowContext(ctx, query, campaignID, creatorID))
}

func (r *applicationRepository) UpdateStatus(ctx context.Context, id int32, from, to domain.ApplicationStatus, decidedBy *int32) error {
	return moveApplication(ctx, r.db, id, from, to, decidedBy)
}

func moveApplication(ctx context.Context, db dbtx, id int32, from, to domain.ApplicationStatus, decidedBy *int32) error {
	query := `UPDATE applications SET status=$1, decided_by=COALESCE($2, decided_by), updated_on=$3 WHERE id=$4 AND status=$5`
	logger.DatabaseCall("UPDATE", "applications", "applicationID", id, "from", from, "to", to)
	return execOne(ctx, db, query, to, decidedBy, time.Now().UTC(), id, from)
}

// lockSlots locks the campaign row for the rest of the transaction and reports ErrNoFreeSlot
// when accepted plus completed applications already fill its slots. Zero slots means unlimited.
func lockSlots(ctx context.Context, tx *sql.Tx, campaignID int32) error {
	var slots int32
	if err := tx.QueryRowContext(ctx, `SELECT slots FROM campaigns WHERE id = $1 FOR UPDATE`, campaignID).Scan(&slots); err != nil {
		return err
	}
	if slots <= 0 {
		return nil
	}
	var taken int32
	query := `SELECT count(*) FROM applications WHERE campaign_id = $1 AND status IN ('accepted', 'completed')`
	if err := tx.QueryRowContext(ctx, query, campaignID).Scan(&taken); err != nil {
		return err
	}
	if taken >= slots {
		return repository.ErrNoFreeSlot
	}
	return nil
}

func (r *applicationRepository) Accept(ctx context.Context, a *domain.Application, decidedBy int32) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := lockSlots(ctx, tx, a.CampaignID); err != nil {
			return err
		}
		return moveApplication(ctx, tx, a.ID, domain.ApplicationStatusPending, domain.ApplicationStatusAccepted, &decidedBy)
	})
}

func (r *applicationRepository) Complete(ctx context.Context, id, decidedBy int32, commission *domain.Commission, credit *domain.WalletTransaction) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := moveApplication(ctx, tx, id, domain.ApplicationStatusAccepted, domain.ApplicationStatusCompleted, &decidedBy); err != nil {
			return err
		}
		if commission == nil {
			return nil
		}
		if err := insertCommission(ctx, tx, commission); err != nil {
			return err
		}
		credit.CommissionID = &commission.ID
		return insertTransaction(ctx, tx, credit)
	})
}

func (r *applicationRepository) ListByCreator(ctx context.Context, creatorID int32, status string) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + `, c.title, c.company_id, c.status, c.creator_payment_cents
	          FROM applications a JOIN campaigns c ON c.id = a.campaign_id
	          WHERE a.creator_id = $1 AND ($2 = '' OR a.status = $2) ORDER BY a.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		c := &domain.Campaign{}
		a, err := scanApplication(rows, &c.Title, &c.CompanyID, &c.Status, &c.CreatorPaymentCents)
		if err != nil {
			return nil, err
		}
		c.ID = a.CampaignID
		a.Campaign = c
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) ListByCampaign(ctx context.Context, campaignID int32, status string) ([]domain.Application, error) {
	query := `SELECT ` + applicationColumns + `, u.name, u.email, u.city, u.state, u.avatar_url
	          FROM applications a JOIN users u ON u.id = a.creator_id
	          WHERE a.campaign_id = $1 AND ($2 = '' OR a.status = $2) ORDER BY a.created_on`
	rows, err := r.db.QueryContext(ctx, query, campaignID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []domain.Application
	for rows.Next() {
		u := &domain.User{}
		a, err := scanApplication(rows, &u.Name, &u.Email, &u.City, &u.State, &u.AvatarURL)
		if err != nil {
			return nil, err
		}
		u.ID = a.CreatorID
		a.Creator = u
		apps = append(apps, *a)
	}
	return apps, rows.Err()
}

func (r *applicationRepository) CountByStatus(ctx context.Context, campaignID int32) (map[domain.ApplicationStatus]int32, error) {
	query := `SELECT status, count(*) FROM applications WHERE campaign_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ApplicationStatus]int32)
	for rows.Next() {
		var status domain.ApplicationStatus
		var n int32
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func (r *applicationRepository) CountPendingByCompany(ctx context.Context, companyID int32) (int32, error) {
	query := `SELECT count(*) FROM applications a JOIN campaigns c ON c.id = a.campaign_id
	          WHERE c.company_id = $1 AND a.status = 'pending'`
	var n int32
	err := r.db.QueryRowContext(ctx, query, companyID).Scan(&n)
	return n, err
}
