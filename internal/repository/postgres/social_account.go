package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/repository"
)

type socialAccountRepository struct {
	db *sql.DB
}

func NewSocialAccountRepository(db *sql.DB) repository.SocialAccountRepository {
	return &socialAccountRepository{db: db}
}

const socialAccountColumns = `id, user_id, provider, handle, external_id, followers, access_token, status, created_on, updated_on`

func scanSocialAccount(row interface{ Scan(...any) error }) (*domain.SocialAccount, error) {
	a := &domain.SocialAccount{}
	err := row.Scan(&a.ID, &a.UserID, &a.Provider, &a.Handle, &a.ExternalID, &a.Followers, &a.AccessToken, &a.Status, &a.CreatedOn, &a.UpdatedOn)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Upsert links an account; relinking the same provider replaces the previous handle.
func (r *socialAccountRepository) Upsert(ctx context.Context, a *domain.SocialAccount) error {
	query := `INSERT INTO social_accounts (user_id, provider, handle, external_id, followers, access_token, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	          ON CONFLICT (user_id, provider) DO UPDATE
	          SET handle = EXCLUDED.handle, external_id = EXCLUDED.external_id, followers = EXCLUDED.followers,
	              access_token = EXCLUDED.access_token, status = EXCLUDED.status, updated_on = EXCLUDED.updated_on
	          RETURNING id, created_on`
	now := time.Now().UTC()
	a.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, a.UserID, a.Provider, a.Handle, a.ExternalID, a.Followers, a.AccessToken, a.Status, now).
		Scan(&a.ID, &a.CreatedOn)
}

func (r *socialAccountRepository) GetByID(ctx context.Context, id int32) (*domain.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE id = $1`
	return scanSocialAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *socialAccountRepository) ListByUser(ctx context.Context, userID int32) ([]domain.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE user_id = $1 ORDER BY provider`
	return r.list(ctx, query, userID)
}

func (r *socialAccountRepository) ListActive(ctx context.Context) ([]domain.SocialAccount, error) {
	query := `SELECT ` + socialAccountColumns + ` FROM social_accounts WHERE status = 'active' ORDER BY id`
	return r.list(ctx, query)
}

func (r *socialAccountRepository) list(ctx context.Context, query string, args ...any) ([]domain.SocialAccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []domain.SocialAccount
	for rows.Next() {
		a, err := scanSocialAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

func (r *socialAccountRepository) UpdateStatus(ctx context.Context, id int32, status domain.SocialAccountStatus) error {
	query := `UPDATE social_accounts SET status = $1, updated_on = $2 WHERE id = $3`
	return execOne(ctx, r.db, query, status, time.Now().UTC(), id)
}

func (r *socialAccountRepository) UpdateStats(ctx context.Context, id int32, followers int64, externalID string) error {
	query := `UPDATE social_accounts SET followers = $1, external_id = COALESCE(NULLIF($2, ''), external_id), updated_on = $3 WHERE id = $4`
	_, err := r.db.ExecContext(ctx, query, followers, externalID, time.Now().UTC(), id)
	return err
}
