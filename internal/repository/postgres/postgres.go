package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.SocialAccountRepository
	repository.CompanyRepository
	repository.CampaignRepository
	repository.ApplicationRepository
	repository.InviteRepository
	repository.CommunityRepository
	repository.WalletRepository
	repository.NotificationRepository
	repository.InboxRepository
	repository.MetaAdsRepository
	repository.AnalyticsRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                      db,
		UserRepository:          NewUserRepository(db),
		SocialAccountRepository: NewSocialAccountRepository(db),
		CompanyRepository:       NewCompanyRepository(db),
		CampaignRepository:      NewCampaignRepository(db),
		ApplicationRepository:   NewApplicationRepository(db),
		InviteRepository:        NewInviteRepository(db),
		CommunityRepository:     NewCommunityRepository(db),
		WalletRepository:        NewWalletRepository(db),
		NotificationRepository:  NewNotificationRepository(db),
		InboxRepository:         NewInboxRepository(db),
		MetaAdsRepository:       NewMetaAdsRepository(db),
		AnalyticsRepository:     NewAnalyticsRepository(db),
	}
}

// Open connects to PostgreSQL and verifies the connection
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execOne runs an UPDATE that must touch exactly one row; zero rows yields sql.ErrNoRows.
func execOne(ctx context.Context, db dbtx, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("Failed to rollback transaction", "error", rbErr)
			}
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

func offset(page, pageSize int32) int32 {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

// textArray keeps NOT NULL array columns from receiving NULL for nil slices.
func textArray(s []string) any {
	if s == nil {
		s = []string{}
	}
	return pq.Array(s)
}
