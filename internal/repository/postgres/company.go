package postgres

import (
	"context"
	"database/sql"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type companyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) repository.CompanyRepository {
	return &companyRepository{db: db}
}

const companyColumns = `id, legal_name, trade_name, cnpj, email, phone, cep, street, city, state, website,
	instagram_handle, instagram_business_id, instagram_access_token, community_slug, created_on`

func scanCompany(row interface{ Scan(...any) error }) (*domain.Company, error) {
	c := &domain.Company{}
	err := row.Scan(&c.ID, &c.LegalName, &c.TradeName, &c.CNPJ, &c.Email, &c.Phone, &c.CEP, &c.Street, &c.City, &c.State,
		&c.Website, &c.InstagramHandle, &c.InstagramBusinessID, &c.InstagramAccessToken, &c.CommunitySlug, &c.CreatedOn)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// CreateWithOwner inserts the company, makes ownerID its owner and switches the owner's active company.
func (r *companyRepository) CreateWithOwner(ctx context.Context, c *domain.Company, ownerID int32) error {
	logger.EnterMethod("companyRepository.CreateWithOwner", "cnpj", c.CNPJ, "slug", c.CommunitySlug, "ownerID", ownerID)
	query := `INSERT INTO companies (legal_name, trade_name, cnpj, email, phone, cep, street, city, state, website,
	          instagram_handle, instagram_business_id, instagram_access_token, community_slug, created_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15) RETURNING id`
	c.CreatedOn = time.Now().UTC()
	logger.DatabaseCall("INSERT", "companies", "cnpj", c.CNPJ)
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, query, c.LegalName, c.TradeName, c.CNPJ, c.Email, c.Phone, c.CEP, c.Street, c.City, c.State,
			c.Website, c.InstagramHandle, c.InstagramBusinessID, c.InstagramAccessToken, c.CommunitySlug, c.CreatedOn).Scan(&c.ID)
		if err != nil {
			return err
		}
		owner := &domain.CompanyMember{CompanyID: c.ID, UserID: ownerID, Role: domain.CompanyRoleOwner}
		if err := insertMember(ctx, tx, owner); err != nil {
			return err
		}
		return execOne(ctx, tx, `UPDATE users SET active_company_id=$1, updated_on=$2 WHERE id=$3`, c.ID, c.CreatedOn, ownerID)
	})
	logger.DatabaseResult("INSERT", 1, err, "companyID", c.ID)
	if err != nil {
		logger.ExitMethodWithError("companyRepository.CreateWithOwner", err)
		return err
	}
	logger.ExitMethod("companyRepository.CreateWithOwner", "companyID", c.ID)
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, id int32) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE id = $1`
	return scanCompany(r.db.QueryRowContext(ctx, query, id))
}

func (r *companyRepository) GetByCNPJ(ctx context.Context, cnpj string) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE cnpj = $1`
	return scanCompany(r.db.QueryRowContext(ctx, query, cnpj))
}

func (r *companyRepository) Update(ctx context.Context, c *domain.Company) error {
	query := `UPDATE companies SET legal_name=$1, trade_name=$2, email=$3, phone=$4, cep=$5, street=$6, city=$7, state=$8,
	          website=$9, instagram_handle=$10, instagram_business_id=$11, instagram_access_token=$12 WHERE id=$13`
	return execOne(ctx, r.db, query, c.LegalName, c.TradeName, c.Email, c.Phone, c.CEP, c.Street, c.City, c.State,
		c.Website, c.InstagramHandle, c.InstagramBusinessID, c.InstagramAccessToken, c.ID)
}

func (r *companyRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM companies WHERE community_slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *companyRepository) ListByUser(ctx context.Context, userID int32) ([]domain.Company, error) {
	query := `SELECT c.id, c.legal_name, c.trade_name, c.cnpj, c.email, c.phone, c.cep, c.street, c.city, c.state, c.website,
	          c.instagram_handle, c.instagram_business_id, c.instagram_access_token, c.community_slug, c.created_on
	          FROM companies c JOIN company_members m ON m.company_id = c.id
	          WHERE m.user_id = $1 ORDER BY c.trade_name`
	return r.list(ctx, query, userID)
}

func (r *companyRepository) ListWithInstagram(ctx context.Context) ([]domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies
	          WHERE instagram_business_id <> '' AND instagram_access_token <> '' ORDER BY id`
	return r.list(ctx, query)
}

func (r *companyRepository) list(ctx context.Context, query string, args ...any) ([]domain.Company, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, *c)
	}
	return companies, rows.Err()
}

func (r *companyRepository) AddMember(ctx context.Context, m *domain.CompanyMember) error {
	return insertMember(ctx, r.db, m)
}

func insertMember(ctx context.Context, db dbtx, m *domain.CompanyMember) error {
	query := `INSERT INTO company_members (company_id, user_id, role, joined_on) VALUES ($1, $2, $3, $4)`
	m.JoinedOn = time.Now().UTC()
	_, err := db.ExecContext(ctx, query, m.CompanyID, m.UserID, m.Role, m.JoinedOn)
	return err
}

func (r *companyRepository) GetMember(ctx context.Context, companyID, userID int32) (*domain.CompanyMember, error) {
	m := &domain.CompanyMember{}
	query := `SELECT company_id, user_id, role, joined_on FROM company_members WHERE company_id = $1 AND user_id = $2`
	err := r.db.QueryRowContext(ctx, query, companyID, userID).Scan(&m.CompanyID, &m.UserID, &m.Role, &m.JoinedOn)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *companyRepository) ListMembers(ctx context.Context, companyID int32) ([]domain.CompanyMember, error) {
	query := `SELECT m.company_id, m.user_id, m.role, m.joined_on, u.email, u.name, u.avatar_url
	          FROM company_members m JOIN users u ON u.id = m.user_id
	          WHERE m.company_id = $1 ORDER BY m.joined_on`
	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.CompanyMember
	for rows.Next() {
		var m domain.CompanyMember
		u := &domain.User{}
		if err := rows.Scan(&m.CompanyID, &m.UserID, &m.Role, &m.JoinedOn, &u.Email, &u.Name, &u.AvatarURL); err != nil {
			return nil, err
		}
		u.ID = m.UserID
		m.User = u
		members = append(members, m)
	}
	return members, rows.Err()
}
