package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/repository"
)

type metaAdsRepository struct {
	db *sql.DB
}

func NewMetaAdsRepository(db *sql.DB) repository.MetaAdsRepository {
	return &metaAdsRepository{db: db}
}

const partnerColumns = `id, company_id, creator_id, instagram_handle, meta_permission_id, status, created_on, updated_on`

func scanPartner(row interface{ Scan(...any) error }) (*domain.MetaCreatorPartner, error) {
	p := &domain.MetaCreatorPartner{}
	if err := row.Scan(&p.ID, &p.CompanyID, &p.CreatorID, &p.InstagramHandle, &p.MetaPermissionID, &p.Status, &p.CreatedOn, &p.UpdatedOn); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *metaAdsRepository) CreatePartner(ctx context.Context, p *domain.MetaCreatorPartner) error {
	query := `INSERT INTO meta_creator_partners (company_id, creator_id, instagram_handle, meta_permission_id, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`
	now := time.Now().UTC()
	p.CreatedOn = now
	p.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, p.CompanyID, p.CreatorID, p.InstagramHandle, p.MetaPermissionID, p.Status, now).Scan(&p.ID)
}

func (r *metaAdsRepository) GetPartner(ctx context.Context, id int32) (*domain.MetaCreatorPartner, error) {
	return scanPartner(r.db.QueryRowContext(ctx, `SELECT `+partnerColumns+` FROM meta_creator_partners WHERE id = $1`, id))
}

func (r *metaAdsRepository) GetPartnerByCreator(ctx context.Context, companyID, creatorID int32) (*domain.MetaCreatorPartner, error) {
	query := `SELECT ` + partnerColumns + ` FROM meta_creator_partners WHERE company_id = $1 AND creator_id = $2`
	return scanPartner(r.db.QueryRowContext(ctx, query, companyID, creatorID))
}

func (r *metaAdsRepository) UpdatePartner(ctx context.Context, p *domain.MetaCreatorPartner) error {
	query := `UPDATE meta_creator_partners SET instagram_handle=$1, meta_permission_id=$2, status=$3, updated_on=$4 WHERE id=$5`
	p.UpdatedOn = time.Now().UTC()
	return execOne(ctx, r.db, query, p.InstagramHandle, p.MetaPermissionID, p.Status, p.UpdatedOn, p.ID)
}

func (r *metaAdsRepository) ListPartners(ctx context.Context, companyID int32) ([]domain.MetaCreatorPartner, error) {
	return r.listPartners(ctx, `SELECT `+partnerColumns+` FROM meta_creator_partners WHERE company_id = $1 ORDER BY created_on DESC`, companyID)
}

func (r *metaAdsRepository) ListPartnersByCreator(ctx context.Context, creatorID int32) ([]domain.MetaCreatorPartner, error) {
	return r.listPartners(ctx, `SELECT `+partnerColumns+` FROM meta_creator_partners WHERE creator_id = $1 ORDER BY created_on DESC`, creatorID)
}

func (r *metaAdsRepository) listPartners(ctx context.Context, query string, id int32) ([]domain.MetaCreatorPartner, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var partners []domain.MetaCreatorPartner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, *p)
	}
	return partners, rows.Err()
}

const adCampaignColumns = `id, company_id, partner_id, name, objective, daily_budget_cents, meta_campaign_id, status, starts_at, ends_at, created_on, updated_on`

func scanAdCampaign(row interface{ Scan(...any) error }) (*domain.MetaAdCampaign, error) {
	c := &domain.MetaAdCampaign{}
	var starts, ends sql.NullTime
	if err := row.Scan(&c.ID, &c.CompanyID, &c.PartnerID, &c.Name, &c.Objective, &c.DailyBudgetCents, &c.MetaCampaignID,
		&c.Status, &starts, &ends, &c.CreatedOn, &c.UpdatedOn); err != nil {
		return nil, err
	}
	if starts.Valid {
		t := starts.Time
		c.StartsAt = &t
	}
	if ends.Valid {
		t := ends.Time
		c.EndsAt = &t
	}
	return c, nil
}

func (r *metaAdsRepository) CreateCampaign(ctx context.Context, c *domain.MetaAdCampaign) error {
	query := `INSERT INTO meta_ad_campaigns (company_id, partner_id, name, objective, daily_budget_cents, meta_campaign_id, status, starts_at, ends_at, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id`
	now := time.Now().UTC()
	c.CreatedOn = now
	c.UpdatedOn = now
	return r.db.QueryRowContext(ctx, query, c.CompanyID, c.PartnerID, c.Name, c.Objective, c.DailyBudgetCents, c.MetaCampaignID,
		c.Status, c.StartsAt, c.EndsAt, now).Scan(&c.ID)
}

func (r *metaAdsRepository) GetCampaign(ctx context.Context, id int32) (*domain.MetaAdCampaign, error) {
	return scanAdCampaign(r.db.QueryRowContext(ctx, `SELECT `+adCampaignColumns+` FROM meta_ad_campaigns WHERE id = $1`, id))
}

func (r *metaAdsRepository) UpdateCampaign(ctx context.Context, c *domain.MetaAdCampaign) error {
	query := `UPDATE meta_ad_campaigns SET partner_id=$1, name=$2, objective=$3, daily_budget_cents=$4, meta_campaign_id=$5,
	          status=$6, starts_at=$7, ends_at=$8, updated_on=$9 WHERE id=$10`
	c.UpdatedOn = time.Now().UTC()
	return execOne(ctx, r.db, query, c.PartnerID, c.Name, c.Objective, c.DailyBudgetCents, c.MetaCampaignID,
		c.Status, c.StartsAt, c.EndsAt, c.UpdatedOn, c.ID)
}

func (r *metaAdsRepository) ListCampaigns(ctx context.Context, companyID int32) ([]domain.MetaAdCampaign, error) {
	query := `SELECT ` + adCampaignColumns + ` FROM meta_ad_campaigns WHERE company_id = $1 AND status <> 'archived' ORDER BY created_on DESC`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var campaigns []domain.MetaAdCampaign
	for rows.Next() {
		c, err := scanAdCampaign(rows)
		if err != nil {
			return nil, err
		}
		campaigns = append(campaigns, *c)
	}
	return campaigns, rows.Err()
}
