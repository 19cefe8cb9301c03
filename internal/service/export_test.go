package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ugc-marketplace-backend/internal/cache"
	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/service"
)

func TestExportService_CampaignApplications(t *testing.T) {
	campaigns, apps, companies := new(MockCampaignRepo), new(MockApplicationRepo), new(MockCompanyRepo)
	svc := service.NewExportService(campaigns, apps, companies, nil)

	campaigns.On("GetByID", mock.Anything, int32(5)).Return(&domain.Campaign{ID: 5, CompanyID: 3, Title: "Coleção Verão"}, nil)
	companies.On("GetMember", mock.Anything, int32(3), int32(2)).Return(&domain.CompanyMember{Role: domain.CompanyRoleMember}, nil)
	apps.On("ListByCampaign", mock.Anything, int32(5), "").Return([]domain.Application{
		{ID: 11, Status: domain.ApplicationStatusPending, ProposedCents: 150000, Pitch: "Reels", CreatedOn: time.Now(),
			Creator: &domain.User{Name: "Ana", Email: "ana@example.com", City: "Recife", State: "PE"}},
		{ID: 12, Status: domain.ApplicationStatusAccepted, CreatedOn: time.Now()},
	}, nil)

	data, name, err := svc.CampaignApplications(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Regexp(t, `^candidaturas-colecao-verao-\d{8}\.xlsx$`, name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Candidaturas"}, f.GetSheetList())
	rows, err := f.GetRows("Candidaturas")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Criador", rows[0][1])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, "pending", rows[1][5])
}

func TestExportService_CampaignApplicationsRequiresMembership(t *testing.T) {
	campaigns, companies := new(MockCampaignRepo), new(MockCompanyRepo)
	svc := service.NewExportService(campaigns, new(MockApplicationRepo), companies, nil)

	campaigns.On("GetByID", mock.Anything, int32(5)).Return(&domain.Campaign{ID: 5, CompanyID: 3}, nil)
	companies.On("GetMember", mock.Anything, int32(3), int32(9)).Return(nil, assert.AnError)

	_, _, err := svc.CampaignApplications(context.Background(), 9, 5)
	assert.Error(t, err)
}

func TestExportService_Creators(t *testing.T) {
	repo := new(MockAnalyticsRepo)
	discovery := service.NewDiscoveryService(repo, cache.NewMemory())
	svc := service.NewExportService(nil, nil, nil, discovery)

	page := func(n int) []domain.CreatorSearchResult {
		out := make([]domain.CreatorSearchResult, n)
		for i := range out {
			out[i] = domain.CreatorSearchResult{Name: "Criador", Platform: "instagram", Handle: "c", Followers: 1000, EngagementRate: 3.5}
		}
		return out
	}
	repo.On("SearchCreators", mock.Anything, mock.MatchedBy(func(f domain.CreatorSearchFilter) bool { return f.Page == 1 })).Return(page(100), int32(130), nil)
	repo.On("SearchCreators", mock.Anything, mock.MatchedBy(func(f domain.CreatorSearchFilter) bool { return f.Page == 2 })).Return(page(30), int32(130), nil)

	data, name, err := svc.Creators(context.Background(), domain.CreatorSearchFilter{Niche: "moda"})
	require.NoError(t, err)
	assert.Contains(t, name, "criadores-")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Criadores")
	require.NoError(t, err)
	assert.Len(t, rows, 131)
	repo.AssertNumberOfCalls(t, "SearchCreators", 2)
}
