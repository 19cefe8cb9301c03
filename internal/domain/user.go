package domain

import "time"

type UserRole string

const (
	UserRoleCreator UserRole = "creator"
	UserRoleCompany UserRole = "company"
)

func (r UserRole) Valid() bool {
	return r == UserRoleCreator || r == UserRoleCompany
}

type User struct {
	ID              int32           `json:"id"`
	Email           string          `json:"email"`
	PasswordHash    string          `json:"-"`
	Name            string          `json:"name"`
	Role            UserRole        `json:"role"`
	Phone           string          `json:"phone"`
	Bio             string          `json:"bio"`
	City            string          `json:"city"`
	State           string          `json:"state"`
	Niches          []string        `json:"niches"`
	AvatarURL       string          `json:"avatar_url"`
	ActiveCompanyID *int32          `json:"active_company_id,omitempty"`
	SocialAccounts  []SocialAccount `json:"social_accounts,omitempty"` // Populated when needed
	Companies       []Company       `json:"companies,omitempty"`       // Populated when needed
	CreatedOn       time.Time       `json:"created_on"`
	UpdatedOn       time.Time       `json:"updated_on"`
}

// ProfileUpdate carries the editable profile fields
type ProfileUpdate struct {
	Name   string   `json:"name"`
	Email  string   `json:"email"`
	Phone  string   `json:"phone"`
	Bio    string   `json:"bio"`
	City   string   `json:"city"`
	State  string   `json:"state"`
	Niches []string `json:"niches"`
}
