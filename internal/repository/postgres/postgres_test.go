package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/repository/postgres"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var userCols = []string{"id", "email", "password_hash", "name", "role", "phone", "bio", "city", "state", "niches", "avatar_url", "active_company_id", "created_on", "updated_on"}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows(userCols).
			AddRow(1, "ana@example.com", "hash", "Ana", "creator", "", "", "Recife", "PE", "{moda,beleza}", "", 7, time.Now(), time.Now())
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(int32(1)).
			WillReturnRows(rows)

		user, err := repo.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(1), user.ID)
		assert.Equal(t, domain.UserRoleCreator, user.Role)
		assert.Equal(t, []string{"moda", "beleza"}, user.Niches)
		require.NotNil(t, user.ActiveCompanyID)
		assert.Equal(t, int32(7), *user.ActiveCompanyID)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM users WHERE id = \\$1").
			WithArgs(int32(2)).
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByID(ctx, 2)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, user)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewUserRepository(db)

	u := &domain.User{Email: "new@example.com", PasswordHash: "hash", Name: "New", Role: domain.UserRoleCompany}
	mock.ExpectQuery("INSERT INTO users").
		WithArgs(u.Email, u.PasswordHash, u.Name, u.Role, "", "", "", "", sqlmock.AnyArg(), "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, int32(11), u.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_UpdateStatus_Stale(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewApplicationRepository(db)

	mock.ExpectExec("UPDATE applications SET status").
		WithArgs(domain.ApplicationStatusAccepted, sqlmock.AnyArg(), sqlmock.AnyArg(), int32(3), domain.ApplicationStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 0))

	decider := int32(9)
	err := repo.UpdateStatus(context.Background(), 3, domain.ApplicationStatusPending, domain.ApplicationStatusAccepted, &decider)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepository_Accept(t *testing.T) {
	lock := regexp.QuoteMeta("SELECT slots FROM campaigns WHERE id = $1 FOR UPDATE")
	count := regexp.QuoteMeta("SELECT count(*) FROM applications WHERE campaign_id = $1")
	app := &domain.Application{ID: 3, CampaignID: 8, Status: domain.ApplicationStatusPending}

	t.Run("NoFreeSlot", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"slots"}).AddRow(2))
		mock.ExpectQuery(count).WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
		mock.ExpectRollback()

		err := repo.Accept(context.Background(), app, 9)
		assert.ErrorIs(t, err, repository.ErrNoFreeSlot)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"slots"}).AddRow(2))
		mock.ExpectQuery(count).WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectExec("UPDATE applications SET status").
			WithArgs(domain.ApplicationStatusAccepted, sqlmock.AnyArg(), sqlmock.AnyArg(), int32(3), domain.ApplicationStatusPending).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Accept(context.Background(), app, 9))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnlimitedSlotsSkipsCount", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(lock).WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"slots"}).AddRow(0))
		mock.ExpectExec("UPDATE applications SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Accept(context.Background(), app, 9))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestApplicationRepository_Complete(t *testing.T) {
	newCommission := func() *domain.Commission {
		return &domain.Commission{CreatorID: 11, CompanyID: 3, CampaignID: 8, ApplicationID: 4, AmountCents: 25000, Status: domain.CommissionStatusPending}
	}

	t.Run("CommissionFailureRollsBack", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE applications SET status").
			WithArgs(domain.ApplicationStatusCompleted, sqlmock.AnyArg(), sqlmock.AnyArg(), int32(4), domain.ApplicationStatusAccepted).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO commissions").WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		credit := &domain.WalletTransaction{UserID: 11, AmountCents: 25000, Type: domain.WalletTxCommission}
		err := repo.Complete(context.Background(), 4, 2, newCommission(), credit)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreditLinksCommission", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE applications SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO commissions").
			WithArgs(int32(11), int32(3), int32(8), int32(4), int64(25000), domain.CommissionStatusPending, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(61))
		mock.ExpectQuery("INSERT INTO wallet_transactions").
			WithArgs(int32(11), int64(25000), domain.WalletTxCommission, sqlmock.AnyArg(), "", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(62))
		mock.ExpectCommit()

		credit := &domain.WalletTransaction{UserID: 11, AmountCents: 25000, Type: domain.WalletTxCommission}
		require.NoError(t, repo.Complete(context.Background(), 4, 2, newCommission(), credit))
		require.NotNil(t, credit.CommissionID)
		assert.Equal(t, int32(61), *credit.CommissionID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("StaleStatus", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewApplicationRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE applications SET status").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Complete(context.Background(), 4, 2, nil, nil)
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInviteRepository_Accept(t *testing.T) {
	closeInvite := regexp.QuoteMeta("UPDATE campaign_invites SET status='accepted'")

	t.Run("NotPending", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewInviteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(closeInvite).WithArgs(sqlmock.AnyArg(), int32(6)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.Accept(context.Background(), 6, &domain.Application{CampaignID: 8})
		assert.ErrorIs(t, err, repository.ErrInviteNotPending)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FullCampaignKeepsInvitePending", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewInviteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(closeInvite).WithArgs(sqlmock.AnyArg(), int32(6)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT slots FROM campaigns").WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"slots"}).AddRow(1))
		mock.ExpectQuery("SELECT count").WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectRollback()

		err := repo.Accept(context.Background(), 6, &domain.Application{CampaignID: 8})
		assert.ErrorIs(t, err, repository.ErrNoFreeSlot)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreatesAcceptedApplication", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewInviteRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(closeInvite).WithArgs(sqlmock.AnyArg(), int32(6)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT slots FROM campaigns").WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"slots"}).AddRow(3))
		mock.ExpectQuery("SELECT count").WithArgs(int32(8)).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("INSERT INTO applications").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))
		mock.ExpectCommit()

		inviteID := int32(6)
		app := &domain.Application{CampaignID: 8, CreatorID: 11, InviteID: &inviteID, Status: domain.ApplicationStatusAccepted}
		require.NoError(t, repo.Accept(context.Background(), 6, app))
		assert.Equal(t, int32(21), app.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCompanyRepository_CreateWithOwner(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewCompanyRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO companies").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectExec("INSERT INTO company_members").
			WithArgs(int32(3), int32(2), domain.CompanyRoleOwner, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active_company_id=$1")).
			WithArgs(int32(3), sqlmock.AnyArg(), int32(2)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		c := &domain.Company{LegalName: "Loja Ltda", CNPJ: "11222333000181", CommunitySlug: "loja"}
		require.NoError(t, repo.CreateWithOwner(context.Background(), c, 2))
		assert.Equal(t, int32(3), c.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MemberFailureRollsBack", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewCompanyRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("INSERT INTO companies").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
		mock.ExpectExec("INSERT INTO company_members").WillReturnError(sql.ErrConnDone)
		mock.ExpectRollback()

		err := repo.CreateWithOwner(context.Background(), &domain.Company{CNPJ: "11222333000181"}, 2)
		assert.ErrorIs(t, err, sql.ErrConnDone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWalletRepository_Withdraw(t *testing.T) {
	lock := regexp.QuoteMeta("SELECT pg_advisory_xact_lock($1)")
	sum := regexp.QuoteMeta("SELECT COALESCE(SUM(amount_cents), 0) FROM wallet_transactions")

	t.Run("InsufficientBalance", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(lock).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(sum).WithArgs(int32(5)).WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(500))
		mock.ExpectRollback()

		tx := &domain.WalletTransaction{UserID: 5, AmountCents: -1500, Type: domain.WalletTxWithdrawal}
		err := repo.Withdraw(context.Background(), tx)
		assert.ErrorIs(t, err, repository.ErrInsufficientBalance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Success", func(t *testing.T) {
		db, mock := newMock(t)
		repo := postgres.NewWalletRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(lock).WithArgs(int64(5)).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(sum).WithArgs(int32(5)).WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(5000))
		mock.ExpectQuery("INSERT INTO wallet_transactions").
			WithArgs(int32(5), int64(-1500), domain.WalletTxWithdrawal, sqlmock.AnyArg(), "saque", sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))
		mock.ExpectCommit()

		tx := &domain.WalletTransaction{UserID: 5, AmountCents: -1500, Type: domain.WalletTxWithdrawal, Description: "saque"}
		require.NoError(t, repo.Withdraw(context.Background(), tx))
		assert.Equal(t, int32(44), tx.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCommunityRepository_AddPoints(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCommunityRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO points_events").
		WithArgs(int32(3), int64(40), "campaign_completed", "application:8", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("UPDATE community_memberships SET points = points \\+ \\$1").
		WithArgs(int64(40), int32(3)).
		WillReturnRows(sqlmock.NewRows([]string{"points"}).AddRow(140))
	mock.ExpectCommit()

	total, err := repo.AddPoints(context.Background(), &domain.PointsEvent{MembershipID: 3, Delta: 40, Reason: "campaign_completed", Reference: "application:8"})
	require.NoError(t, err)
	assert.Equal(t, int64(140), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCommunityRepository_Leaderboard(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCommunityRepository(db)

	joined := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"creator_id", "name", "avatar_url", "points", "tier", "joined_at"}).
		AddRow(4, "Bia", "", 300, "Ouro", joined).
		AddRow(2, "Caio", "", 120, "Prata", joined)
	mock.ExpectQuery("ORDER BY m.points DESC, m.joined_at ASC").
		WithArgs(int32(1), int32(10)).
		WillReturnRows(rows)

	entries, err := repo.Leaderboard(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int32(1), entries[0].Rank)
	assert.Equal(t, int32(4), entries[0].CreatorID)
	assert.Equal(t, int32(2), entries[1].Rank)
}

func TestInviteRepository_ExpireStale(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewInviteRepository(db)

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE campaign_invites SET status='expired'").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.ExpireStale(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestInboxRepository_InsertMessage_Duplicate(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewInboxRepository(db)

	msg := &domain.InstagramMessage{ConversationID: 1, ExternalID: "mid.1", Direction: domain.MessageInbound, Body: "oi", SentAt: time.Now()}
	mock.ExpectQuery("INSERT INTO instagram_messages").
		WithArgs(msg.ConversationID, msg.ExternalID, msg.Direction, msg.Body, msg.SentAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	inserted, err := repo.InsertMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, inserted)
}

func TestCampaignRepository_ListOpen(t *testing.T) {
	db, mock := newMock(t)
	repo := postgres.NewCampaignRepository(db)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM campaigns c WHERE").
		WithArgs("moda", "instagram").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	cols := []string{"id", "company_id", "title", "description", "niches", "platforms", "deliverables", "budget_cents",
		"creator_payment_cents", "slots", "deadline", "visibility", "status", "created_by", "created_on", "updated_on",
		"trade_name", "community_slug"}
	mock.ExpectQuery("JOIN companies co ON co.id = c.company_id").
		WithArgs("moda", "instagram", int32(20), int32(20)).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(5, 2, "Verão", "", "{moda}", "{instagram}", "1 reel", 100000, 50000, 3, nil,
			"public", "active", 1, time.Now(), time.Now(), "Loja Sol", "loja-sol"))

	campaigns, total, err := repo.ListOpen(context.Background(), domain.CampaignFilter{Niche: "moda", Platform: "instagram", Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Equal(t, int32(1), total)
	require.Len(t, campaigns, 1)
	assert.Equal(t, "loja-sol", campaigns[0].Company.CommunitySlug)
	assert.Nil(t, campaigns[0].Deadline)
	assert.NoError(t, mock.ExpectationsWereMet())
}
