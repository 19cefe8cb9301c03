package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, password_hash, name, role, phone, bio, city, state, niches, avatar_url, active_company_id, created_on, updated_on`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	u := &domain.User{}
	var activeCompany sql.NullInt32
	var niches pq.StringArray
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Role, &u.Phone, &u.Bio, &u.City, &u.State,
		&niches, &u.AvatarURL, &activeCompany, &u.CreatedOn, &u.UpdatedOn)
	if err != nil {
		return nil, err
	}
	u.Niches = []string(niches)
	if activeCompany.Valid {
		id := activeCompany.Int32
		u.ActiveCompanyID = &id
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (email, password_hash, name, role, phone, bio, city, state, niches, avatar_url, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	now := time.Now().UTC()
	u.CreatedOn = now
	u.UpdatedOn = now
	logger.DatabaseCall("INSERT", "users", "email", u.Email, "role", u.Role)
	err := r.db.QueryRowContext(ctx, query, u.Email, u.PasswordHash, u.Name, u.Role, u.Phone, u.Bio, u.City, u.State,
		textArray(u.Niches), u.AvatarURL, u.CreatedOn, u.UpdatedOn).Scan(&u.ID)
	logger.DatabaseResult("INSERT", 1, err, "userID", u.ID)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int32) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *userRepository) Update(ctx context.Context, u *domain.User) error {
	query := `UPDATE users SET email=$1, name=$2, phone=$3, bio=$4, city=$5, state=$6, niches=$7, avatar_url=$8, updated_on=$9 WHERE id=$10`
	u.UpdatedOn = time.Now().UTC()
	logger.DatabaseCall("UPDATE", "users", "userID", u.ID)
	_, err := r.db.ExecContext(ctx, query, u.Email, u.Name, u.Phone, u.Bio, u.City, u.State, textArray(u.Niches), u.AvatarURL, u.UpdatedOn, u.ID)
	return err
}

func (r *userRepository) SetActiveCompany(ctx context.Context, userID int32, companyID *int32) error {
	query := `UPDATE users SET active_company_id=$1, updated_on=$2 WHERE id=$3`
	_, err := r.db.ExecContext(ctx, query, companyID, time.Now().UTC(), userID)
	return err
}
