package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type walletRepository struct {
	db *sql.DB
}

func NewWalletRepository(db *sql.DB) repository.WalletRepository {
	return &walletRepository{db: db}
}

const commissionColumns = `id, creator_id, company_id, campaign_id, application_id, amount_cents, status, created_on, paid_on`

func scanCommission(row interface{ Scan(...any) error }) (*domain.Commission, error) {
	c := &domain.Commission{}
	var paid sql.NullTime
	if err := row.Scan(&c.ID, &c.CreatorID, &c.CompanyID, &c.CampaignID, &c.ApplicationID, &c.AmountCents, &c.Status, &c.CreatedOn, &paid); err != nil {
		return nil, err
	}
	if paid.Valid {
		t := paid.Time
		c.PaidOn = &t
	}
	return c, nil
}

func insertCommission(ctx context.Context, db dbtx, c *domain.Commission) error {
	query := `INSERT INTO commissions (creator_id, company_id, campaign_id, application_id, amount_cents, status, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	c.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "commissions", "creatorID", c.CreatorID, "applicationID", c.ApplicationID, "amount", c.AmountCents)
	return db.QueryRowContext(ctx, query, c.CreatorID, c.CompanyID, c.CampaignID, c.ApplicationID, c.AmountCents, c.Status, c.CreatedOn).Scan(&c.ID)
}

func (r *walletRepository) GetCommission(ctx context.Context, id int32) (*domain.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE id = $1`
	return scanCommission(r.db.QueryRowContext(ctx, query, id))
}

func (r *walletRepository) ListCommissions(ctx context.Context, creatorID int32, status string) ([]domain.Commission, error) {
	query := `SELECT ` + commissionColumns + ` FROM commissions WHERE creator_id = $1 AND ($2 = '' OR status = $2) ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, creatorID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commissions []domain.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		commissions = append(commissions, *c)
	}
	return commissions, rows.Err()
}

func (r *walletRepository) UpdateCommissionStatus(ctx context.Context, id int32, status domain.CommissionStatus) error {
	var paidOn *time.Time
	if status == domain.CommissionStatusPaid {
		now := time.Now().UTC()
		paidOn = &now
	}
	query := `UPDATE commissions SET status = $1, paid_on = COALESCE($2, paid_on) WHERE id = $3`
	return execOne(ctx, r.db, query, status, paidOn, id)
}

func insertTransaction(ctx context.Context, db dbtx, t *domain.WalletTransaction) error {
	query := `INSERT INTO wallet_transactions (user_id, amount_cents, type, commission_id, description, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	t.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "wallet_transactions", "userID", t.UserID, "amount", t.AmountCents, "type", t.Type)
	return db.QueryRowContext(ctx, query, t.UserID, t.AmountCents, t.Type, t.CommissionID, t.Description, t.CreatedOn).Scan(&t.ID)
}

// Withdraw serializes debits per user with a transaction-scoped advisory lock.
func (r *walletRepository) Withdraw(ctx context.Context, t *domain.WalletTransaction) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(t.UserID)); err != nil {
			return err
		}
		var balance int64
		if err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM wallet_transactions WHERE user_id = $1`, t.UserID).Scan(&balance); err != nil {
			return err
		}
		if balance+t.AmountCents < 0 {
			return repository.ErrInsufficientBalance
		}
		return insertTransaction(ctx, tx, t)
	})
}

func (r *walletRepository) GetBalance(ctx context.Context, userID int32) (int64, error) {
	var balance int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount_cents), 0) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&balance)
	return balance, err
}

func (r *walletRepository) ListTransactions(ctx context.Context, userID int32, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	var total int32
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM wallet_transactions WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, user_id, amount_cents, type, commission_id, description, created_on
	          FROM wallet_transactions WHERE user_id = $1 ORDER BY created_on DESC, id DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, userID, pageSize, offset(page, pageSize))
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var txs []domain.WalletTransaction
	for rows.Next() {
		var t domain.WalletTransaction
		var commissionID sql.NullInt32
		if err := rows.Scan(&t.ID, &t.UserID, &t.AmountCents, &t.Type, &commissionID, &t.Description, &t.CreatedOn); err != nil {
			return nil, 0, err
		}
		if commissionID.Valid {
			id := commissionID.Int32
			t.CommissionID = &id
		}
		txs = append(txs, t)
	}
	return txs, total, rows.Err()
}

func (r *walletRepository) GetSummary(ctx context.Context, userID int32) (*domain.WalletSummary, error) {
	s := &domain.WalletSummary{UserID: userID}
	query := `SELECT
	            COALESCE(SUM(amount_cents), 0),
	            COALESCE(SUM(amount_cents) FILTER (WHERE amount_cents > 0), 0),
	            COALESCE(-SUM(amount_cents) FILTER (WHERE type = 'withdrawal'), 0)
	          FROM wallet_transactions WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&s.BalanceCents, &s.TotalEarnedCents, &s.TotalWithdrawnCents); err != nil {
		return nil, err
	}
	pendingQuery := `SELECT COALESCE(SUM(amount_cents), 0) FROM commissions WHERE creator_id = $1 AND status = 'pending'`
	if err := r.db.QueryRowContext(ctx, pendingQuery, userID).Scan(&s.PendingCents); err != nil {
		return nil, err
	}
	return s, nil
}
