package domain

import "time"

type Company struct {
	ID                   int32     `json:"id"`
	LegalName            string    `json:"legal_name"`
	TradeName            string    `json:"trade_name"`
	CNPJ                 string    `json:"cnpj"`
	Email                string    `json:"email"`
	Phone                string    `json:"phone"`
	CEP                  string    `json:"cep"`
	Street               string    `json:"street"`
	City                 string    `json:"city"`
	State                string    `json:"state"`
	Website              string    `json:"website"`
	InstagramHandle      string    `json:"instagram_handle"`
	InstagramBusinessID  string    `json:"instagram_business_id"`
	InstagramAccessToken string    `json:"-"`
	CommunitySlug        string    `json:"community_slug"`
	CreatedOn            time.Time `json:"created_on"`
}

type CompanyMemberRole string

const (
	CompanyRoleOwner  CompanyMemberRole = "owner"
	CompanyRoleAdmin  CompanyMemberRole = "admin"
	CompanyRoleMember CompanyMemberRole = "member"
)

func (r CompanyMemberRole) Valid() bool {
	switch r {
	case CompanyRoleOwner, CompanyRoleAdmin, CompanyRoleMember:
		return true
	}
	return false
}

// CanManage reports whether the role may change company settings and members
func (r CompanyMemberRole) CanManage() bool {
	return r == CompanyRoleOwner || r == CompanyRoleAdmin
}

type CompanyMember struct {
	CompanyID int32             `json:"company_id"`
	UserID    int32             `json:"user_id"`
	Role      CompanyMemberRole `json:"role"`
	JoinedOn  time.Time         `json:"joined_on"`
	User      *User             `json:"user,omitempty"` // Populated in ListMembers
}

// OnboardingInput is what a company user submits to register a brand
type OnboardingInput struct {
	LegalName            string `json:"legal_name"`
	TradeName            string `json:"trade_name"`
	CNPJ                 string `json:"cnpj"`
	Email                string `json:"email"`
	Phone                string `json:"phone"`
	CEP                  string `json:"cep"`
	Street               string `json:"street"`
	City                 string `json:"city"`
	State                string `json:"state"`
	Website              string `json:"website"`
	InstagramHandle      string `json:"instagram_handle"`
	InstagramBusinessID  string `json:"instagram_business_id"`
	InstagramAccessToken string `json:"instagram_access_token"`
}
