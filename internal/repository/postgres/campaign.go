package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type campaignRepository struct {
	db *sql.DB
}

func NewCampaignRepository(db *sql.DB) repository.CampaignRepository {
	return &campaignRepository{db: db}
}

const campaignColumns = `c.id, c.company_id, c.title, c.description, c.niches, c.platforms, c.deliverables, c.budget_cents,
	c.creator_payment_cents, c.slots, c.deadline, c.visibility, c.status, c.created_by, c.created_on, c.updated_on`

func scanCampaign(row interface{ Scan(...any) error }, extra ...any) (*domain.Campaign, error) {
	c := &domain.Campaign{}
	var niches, platforms pq.StringArray
	var deadline sql.NullTime
	dest := []any{&c.ID, &c.CompanyID, &c.Title, &c.Description, &niches, &platforms, &c.Deliverables, &c.BudgetCents,
		&c.CreatorPaymentCents, &c.Slots, &deadline, &c.Visibility, &c.Status, &c.CreatedBy, &c.CreatedOn, &c.UpdatedOn}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Niches = []string(niches)
	c.Platforms = []string(platforms)
	if deadline.Valid {
		t := deadline.Time
		c.Deadline = &t
	}
	return c, nil
}

func (r *campaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	query := `INSERT INTO campaigns (company_id, title, description, niches, platforms, deliverables, budget_cents,
	          creator_payment_cents, slots, deadline, visibility, status, created_by, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14) RETURNING id`
	now := time.Now().UTC()
	c.CreatedOn = now
	c.UpdatedOn = now
	logger.DatabaseCall("INSERT", "campaigns", "companyID", c.CompanyID, "title", c.Title)
	err := r.db.QueryRowContext(ctx, query, c.CompanyID, c.Title, c.Description, textArray(c.Niches), textArray(c.Platforms),
		c.Deliverables, c.BudgetCents, c.CreatorPaymentCents, c.Slots, c.Deadline, c.Visibility, c.Status, c.CreatedBy, now).Scan(&c.ID)
	logger.DatabaseResult("INSERT", 1, err, "campaignID", c.ID)
	return err
}

func (r *campaignRepository) GetByID(ctx context.Context, id int32) (*domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns c WHERE c.id = $1`
	return scanCampaign(r.db.QueryRowContext(ctx, query, id))
}

func (r *campaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	query := `UPDATE campaigns SET title=$1, description=$2, niches=$3, platforms=$4, deliverables=$5, budget_cents=$6,
	          creator_payment_cents=$7, slots=$8, deadline=$9, visibility=$10, updated_on=$11 WHERE id=$12`
	c.UpdatedOn = time.Now().UTC()
	return execOne(ctx, r.db, query, c.Title, c.Description, textArray(c.Niches), textArray(c.Platforms), c.Deliverables,
		c.BudgetCents, c.CreatorPaymentCents, c.Slots, c.Deadline, c.Visibility, c.UpdatedOn, c.ID)
}

func (r *campaignRepository) UpdateStatus(ctx context.Context, id int32, status domain.CampaignStatus) error {
	query := `UPDATE campaigns SET status=$1, updated_on=$2 WHERE id=$3`
	return execOne(ctx, r.db, query, status, time.Now().UTC(), id)
}

func (r *campaignRepository) ListByCompany(ctx context.Context, companyID int32, status string) ([]domain.Campaign, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns c WHERE c.company_id = $1 AND ($2 = '' OR c.status = $2)
	          ORDER BY c.created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		c, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}

func (r *campaignRepository) ListOpen(ctx context.Context, f domain.CampaignFilter) ([]domain.Campaign, int32, error) {
	where := []string{"c.status = 'active'", "c.visibility = 'public'"}
	var args []any
	if f.Niche != "" {
		args = append(args, f.Niche)
		where = append(where, fmt.Sprintf("$%d = ANY(c.niches)", len(args)))
	}
	if f.Platform != "" {
		args = append(args, f.Platform)
		where = append(where, fmt.Sprintf("$%d = ANY(c.platforms)", len(args)))
	}
	cond := strings.Join(where, " AND ")

	var total int32
	countQuery := `SELECT count(*) FROM campaigns c WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`SELECT %s, co.trade_name, co.community_slug FROM campaigns c
	          JOIN companies co ON co.id = c.company_id
	          WHERE %s ORDER BY c.created_on DESC LIMIT $%d OFFSET $%d`,
		campaignColumns, cond, len(args)+1, len(args)+2)
	args = append(args, f.PageSize, offset(f.Page, f.PageSize))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var campaigns []domain.Campaign
	for rows.Next() {
		co := &domain.Company{}
		c, err := scanCampaign(rows, &co.TradeName, &co.CommunitySlug)
		if err != nil {
			return nil, 0, err
		}
		co.ID = c.CompanyID
		c.Company = co
		campaigns = append(campaigns, *c)
	}
	return campaigns, total, rows.Err()
}
