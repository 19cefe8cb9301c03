package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/xuri/excelize/v2"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/utils"
)

// maxExportRows caps a creator export; discovery pages are fetched until this many rows.
const maxExportRows = 5000

type exportService struct {
	campaignRepo repository.CampaignRepository
	appRepo      repository.ApplicationRepository
	companyRepo  repository.CompanyRepository
	discovery    DiscoveryService
	now          func() time.Time
}

func NewExportService(campaignRepo repository.CampaignRepository, appRepo repository.ApplicationRepository,
	companyRepo repository.CompanyRepository, discovery DiscoveryService) ExportService {
	return &exportService{
		campaignRepo: campaignRepo,
		appRepo:      appRepo,
		companyRepo:  companyRepo,
		discovery:    discovery,
		now:          time.Now,
	}
}

// CampaignApplications renders every application of a campaign as an .xlsx workbook
func (s *exportService) CampaignApplications(ctx context.Context, userID, campaignID int32) ([]byte, string, error) {
	logger.EnterMethod("exportService.CampaignApplications", "userID", userID, "campaignID", campaignID)

	c, err := loadOwnedCampaign(ctx, s.campaignRepo, s.companyRepo, userID, campaignID)
	if err != nil {
		return nil, "", err
	}
	apps, err := s.appRepo.ListByCampaign(ctx, campaignID, "")
	if err != nil {
		return nil, "", fmt.Errorf("failed to list applications: %w", err)
	}

	headers := []string{"ID", "Criador", "E-mail", "Cidade", "UF", "Status", "Proposta", "Pitch", "Data"}
	rows := make([][]any, 0, len(apps))
	for _, a := range apps {
		var name, email, city, state string
		if a.Creator != nil {
			name, email, city, state = a.Creator.Name, a.Creator.Email, a.Creator.City, a.Creator.State
		}
		rows = append(rows, []any{a.ID, name, email, city, state, string(a.Status),
			utils.FormatBRL(a.ProposedCents), a.Pitch, a.CreatedOn.Format("02/01/2006 15:04")})
	}

	data, err := renderSheet("Candidaturas", headers, rows, []float64{8, 28, 32, 20, 6, 12, 14, 60, 18})
	if err != nil {
		return nil, "", err
	}
	name := fmt.Sprintf("candidaturas-%s-%s.xlsx", slug.Make(c.Title), s.now().Format("20060102"))
	logger.ExitMethod("exportService.CampaignApplications", "rows", len(rows), "bytes", len(data))
	return data, name, nil
}

// Creators renders a creator discovery search as an .xlsx workbook
func (s *exportService) Creators(ctx context.Context, filter domain.CreatorSearchFilter) ([]byte, string, error) {
	logger.EnterMethod("exportService.Creators", "query", filter.Query, "niche", filter.Niche)

	filter.PageSize = maxPageSize
	var results []domain.CreatorSearchResult
	for page := int32(1); len(results) < maxExportRows; page++ {
		filter.Page = page
		batch, total, err := s.discovery.SearchCreators(ctx, filter)
		if err != nil {
			return nil, "", err
		}
		results = append(results, batch...)
		if len(batch) == 0 || int32(len(results)) >= total {
			break
		}
	}
	if len(results) > maxExportRows {
		results = results[:maxExportRows]
	}

	headers := []string{"Nome", "Plataforma", "Perfil", "Seguidores", "Engajamento", "Cidade", "UF", "Nichos"}
	rows := make([][]any, 0, len(results))
	for _, r := range results {
		rows = append(rows, []any{r.Name, r.Platform, "@" + r.Handle, r.Followers,
			utils.FormatPercent(r.EngagementRate), r.City, r.State, strings.Join(r.Niches, ", ")})
	}

	data, err := renderSheet("Criadores", headers, rows, []float64{28, 12, 24, 12, 12, 20, 6, 40})
	if err != nil {
		return nil, "", err
	}
	logger.ExitMethod("exportService.Creators", "rows", len(rows))
	return data, fmt.Sprintf("criadores-%s.xlsx", s.now().Format("20060102")), nil
}

// renderSheet writes a single styled sheet with a frozen header row.
func renderSheet(sheet string, headers []string, rows [][]any, widths []float64) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"7C3AED"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue(sheet, cell, v)
		}
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
