package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ugc-marketplace-backend/internal/config"
	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/service"
)

type mockEmail struct {
	mock.Mock
	service.EmailService
}

func (m *mockEmail) SendApplicationDigest(ctx context.Context, to, toName, companyName string, pending int32) error {
	return m.Called(ctx, to, toName, companyName, pending).Error(0)
}

type mockCommunity struct {
	mock.Mock
	service.CommunityService
}

func (m *mockCommunity) ExpireMemberships(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockInvite struct {
	mock.Mock
	service.InviteService
}

func (m *mockInvite) ExpireStale(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockAnalytics struct {
	mock.Mock
	service.AnalyticsService
}

func (m *mockAnalytics) RefreshAccount(ctx context.Context, account domain.SocialAccount) (*domain.AnalyticsSnapshot, error) {
	args := m.Called(ctx, account.ID)
	s, _ := args.Get(0).(*domain.AnalyticsSnapshot)
	return s, args.Error(1)
}

type mockInbox struct {
	mock.Mock
	service.InboxService
}

func (m *mockInbox) SyncAll(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockAccounts struct {
	mock.Mock
	repository.SocialAccountRepository
}

func (m *mockAccounts) ListActive(ctx context.Context) ([]domain.SocialAccount, error) {
	args := m.Called(ctx)
	a, _ := args.Get(0).([]domain.SocialAccount)
	return a, args.Error(1)
}

type runnerFixture struct {
	sqlMock   sqlmock.Sqlmock
	email     *mockEmail
	community *mockCommunity
	invite    *mockInvite
	analytics *mockAnalytics
	inbox     *mockInbox
	accounts  *mockAccounts
	runner    *JobRunner
}

func newRunner(t *testing.T) *runnerFixture {
	t.Helper()
	db, sm, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &runnerFixture{
		sqlMock:   sm,
		email:     new(mockEmail),
		community: new(mockCommunity),
		invite:    new(mockInvite),
		analytics: new(mockAnalytics),
		inbox:     new(mockInbox),
		accounts:  new(mockAccounts),
	}
	f.runner = NewJobRunner(db, f.accounts, &Services{
		Email:     f.email,
		Community: f.community,
		Invite:    f.invite,
		Analytics: f.analytics,
		Inbox:     f.inbox,
	}, &config.Config{})
	return f
}

func TestSendApplicationDigest(t *testing.T) {
	f := newRunner(t)
	rows := sqlmock.NewRows([]string{"id", "trade_name", "email", "name", "pending"}).
		AddRow(1, "Café Aroma", "dona@aroma.com.br", "Dona", 3).
		AddRow(2, "Loja Sol", "sol@loja.com.br", "Sol", 1)
	f.sqlMock.ExpectQuery("SELECT co.id, co.trade_name").WillReturnRows(rows)

	f.email.On("SendApplicationDigest", mock.Anything, "dona@aroma.com.br", "Dona", "Café Aroma", int32(3)).Return(nil)
	f.email.On("SendApplicationDigest", mock.Anything, "sol@loja.com.br", "Sol", "Loja Sol", int32(1)).Return(errors.New("smtp down"))

	f.runner.SendApplicationDigest()

	f.email.AssertNumberOfCalls(t, "SendApplicationDigest", 2)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestSendApplicationDigest_QueryFailure(t *testing.T) {
	f := newRunner(t)
	f.sqlMock.ExpectQuery("SELECT co.id, co.trade_name").WillReturnError(errors.New("connection reset"))

	f.runner.SendApplicationDigest()

	f.email.AssertNotCalled(t, "SendApplicationDigest", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.NoError(t, f.sqlMock.ExpectationsWereMet())
}

func TestRefreshAnalytics_StopsOnRateLimit(t *testing.T) {
	f := newRunner(t)
	f.accounts.On("ListActive", mock.Anything).Return([]domain.SocialAccount{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}, nil)
	f.analytics.On("RefreshAccount", mock.Anything, int32(1)).Return(&domain.AnalyticsSnapshot{}, nil)
	f.analytics.On("RefreshAccount", mock.Anything, int32(2)).Return(nil, service.ErrUpstream)
	f.analytics.On("RefreshAccount", mock.Anything, int32(3)).Return(nil, service.ErrRateLimited)

	f.runner.RefreshAnalytics()

	f.analytics.AssertNumberOfCalls(t, "RefreshAccount", 3)
	f.analytics.AssertNotCalled(t, "RefreshAccount", mock.Anything, int32(4))
}

func TestRunByName(t *testing.T) {
	f := newRunner(t)
	f.community.On("ExpireMemberships", mock.Anything).Return(int64(2), nil)
	f.invite.On("ExpireStale", mock.Anything).Return(int64(0), errors.New("db down"))
	f.inbox.On("SyncAll", mock.Anything).Return(3, nil)

	assert.True(t, f.runner.RunByName("expire-memberships"))
	assert.True(t, f.runner.RunByName("expire-invites"))
	assert.True(t, f.runner.RunByName("sync-instagram-inboxes"))
	assert.False(t, f.runner.RunByName("perform-bill-splitting"))

	f.community.AssertExpectations(t)
	f.invite.AssertExpectations(t)
	f.inbox.AssertExpectations(t)
}

func TestRunWithRecovery_SwallowsPanics(t *testing.T) {
	f := newRunner(t)
	assert.NotPanics(t, func() {
		f.runner.runWithRecovery("boom", func(ctx context.Context) { panic("boom") })
	})
}
