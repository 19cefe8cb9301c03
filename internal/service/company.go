package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/utils"
)

type companyService struct {
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	cnpj        CNPJProvider
}

func NewCompanyService(companyRepo repository.CompanyRepository, userRepo repository.UserRepository, cnpj CNPJProvider) CompanyService {
	return &companyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		cnpj:        cnpj,
	}
}

// Onboard registers a brand for a company user, who becomes its owner and starts acting as it.
func (s *companyService) Onboard(ctx context.Context, userID int32, in domain.OnboardingInput) (*domain.Company, error) {
	logger.EnterMethod("companyService.Onboard", "userID", userID)

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.Role != domain.UserRoleCompany {
		return nil, fmt.Errorf("%w: only company accounts can register a brand", ErrForbidden)
	}

	company, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}

	if _, err := s.companyRepo.GetByCNPJ(ctx, company.CNPJ); err == nil {
		return nil, ErrCNPJTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check cnpj: %w", err)
	}

	if company.LegalName == "" || company.TradeName == "" {
		s.fillFromRegistry(ctx, company)
	}
	if company.TradeName == "" {
		company.TradeName = company.LegalName
	}
	if company.TradeName == "" {
		return nil, validationError("trade name is required")
	}
	if company.LegalName == "" {
		company.LegalName = company.TradeName
	}

	if company.CommunitySlug, err = s.uniqueSlug(ctx, company.TradeName); err != nil {
		return nil, err
	}

	if err := s.companyRepo.CreateWithOwner(ctx, company, userID); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCNPJTaken
		}
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	logger.ExitMethod("companyService.Onboard", "companyID", company.ID, "slug", company.CommunitySlug)
	return company, nil
}

func (s *companyService) validateInput(in domain.OnboardingInput) (*domain.Company, error) {
	if err := utils.ValidateCNPJ(in.CNPJ); err != nil {
		return nil, validationError("%v", err)
	}
	c := &domain.Company{
		LegalName:            strings.TrimSpace(in.LegalName),
		TradeName:            strings.TrimSpace(in.TradeName),
		CNPJ:                 utils.OnlyDigits(in.CNPJ),
		Email:                strings.TrimSpace(in.Email),
		Phone:                utils.OnlyDigits(in.Phone),
		Street:               strings.TrimSpace(in.Street),
		City:                 strings.TrimSpace(in.City),
		State:                strings.ToUpper(strings.TrimSpace(in.State)),
		Website:              strings.TrimSpace(in.Website),
		InstagramHandle:      domain.NormalizeHandle(in.InstagramHandle),
		InstagramBusinessID:  strings.TrimSpace(in.InstagramBusinessID),
		InstagramAccessToken: strings.TrimSpace(in.InstagramAccessToken),
	}
	if in.CEP != "" {
		if err := utils.ValidateCEP(in.CEP); err != nil {
			return nil, validationError("%v", err)
		}
		c.CEP = utils.OnlyDigits(in.CEP)
	}
	if c.State != "" {
		if err := utils.ValidateUF(c.State); err != nil {
			return nil, validationError("%v", err)
		}
	}
	if c.Email != "" {
		if err := utils.ValidateEmail(c.Email); err != nil {
			return nil, validationError("%v", err)
		}
	}
	return c, nil
}

// fillFromRegistry completes empty fields from BrasilAPI; lookup failures are not fatal.
func (s *companyService) fillFromRegistry(ctx context.Context, c *domain.Company) {
	if s.cnpj == nil {
		return
	}
	info, err := s.cnpj.LookupCNPJ(ctx, c.CNPJ)
	if err != nil {
		logger.Warn("CNPJ lookup failed during onboarding", "cnpj", c.CNPJ, "error", err)
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&c.LegalName, info.LegalName)
	fill(&c.TradeName, info.TradeName)
	fill(&c.CEP, info.CEP)
	fill(&c.Street, strings.TrimSpace(info.Street+" "+info.Number))
	fill(&c.City, info.City)
	fill(&c.State, info.State)
	fill(&c.Phone, utils.OnlyDigits(info.Phone))
	fill(&c.Email, info.Email)
}

func (s *companyService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		base = "marca"
	}
	candidate := base
	for i := 2; ; i++ {
		exists, err := s.companyRepo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *companyService) Get(ctx context.Context, userID, companyID int32) (*domain.Company, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return company, nil
}

// Update changes contact and Instagram settings; the CNPJ and slug are fixed after onboarding.
func (s *companyService) Update(ctx context.Context, userID, companyID int32, in domain.OnboardingInput) (*domain.Company, error) {
	if _, err := requireManager(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company")
	}

	in.CNPJ = company.CNPJ
	updated, err := s.validateInput(in)
	if err != nil {
		return nil, err
	}
	if updated.TradeName == "" {
		return nil, validationError("trade name is required")
	}
	updated.ID = company.ID
	updated.CommunitySlug = company.CommunitySlug
	updated.CreatedOn = company.CreatedOn
	if updated.LegalName == "" {
		updated.LegalName = company.LegalName
	}
	if updated.InstagramAccessToken == "" {
		updated.InstagramAccessToken = company.InstagramAccessToken
	}
	if err := s.companyRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to update company: %w", err)
	}
	return updated, nil
}

func (s *companyService) ListMine(ctx context.Context, userID int32) ([]domain.Company, error) {
	return s.companyRepo.ListByUser(ctx, userID)
}

func (s *companyService) GetActive(ctx context.Context, userID int32) (*domain.Company, error) {
	id, err := s.ActiveCompanyID(ctx, userID)
	if err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "company")
	}
	return company, nil
}

func (s *companyService) SetActive(ctx context.Context, userID, companyID int32) (*domain.Company, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, notFound(err, "company")
	}
	if err := s.userRepo.SetActiveCompany(ctx, userID, &companyID); err != nil {
		return nil, fmt.Errorf("failed to set active company: %w", err)
	}
	return company, nil
}

// ActiveCompanyID returns the company the user is acting as, verifying the membership still exists.
func (s *companyService) ActiveCompanyID(ctx context.Context, userID int32) (int32, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, notFound(err, "user")
	}
	if user.ActiveCompanyID == nil {
		return 0, ErrNoActiveCompany
	}
	if _, err := requireMember(ctx, s.companyRepo, *user.ActiveCompanyID, userID); err != nil {
		return 0, err
	}
	return *user.ActiveCompanyID, nil
}

func (s *companyService) ListMembers(ctx context.Context, userID, companyID int32) ([]domain.CompanyMember, error) {
	if _, err := requireMember(ctx, s.companyRepo, companyID, userID); err != nil {
		return nil, err
	}
	return s.companyRepo.ListMembers(ctx, companyID)
}

func (s *companyService) AddMember(ctx context.Context, userID, companyID int32, email string, role domain.CompanyMemberRole) (*domain.CompanyMember, error) {
	actor, err := requireManager(ctx, s.companyRepo, companyID, userID)
	if err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, validationError("invalid member role %q", role)
	}
	if role == domain.CompanyRoleOwner && actor.Role != domain.CompanyRoleOwner {
		return nil, fmt.Errorf("%w: only owners can add owners", ErrForbidden)
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, notFound(err, "user")
	}
	if user.Role != domain.UserRoleCompany {
		return nil, validationError("only company accounts can join a company")
	}
	if _, err := s.companyRepo.GetMember(ctx, companyID, user.ID); err == nil {
		return nil, fmt.Errorf("%w: user is already a member", ErrConflict)
	}

	member := &domain.CompanyMember{CompanyID: companyID, UserID: user.ID, Role: role, JoinedOn: time.Now().UTC(), User: user}
	if err := s.companyRepo.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}
	if user.ActiveCompanyID == nil {
		_ = s.userRepo.SetActiveCompany(ctx, user.ID, &companyID)
	}
	return member, nil
}

// requireMember returns ErrForbidden unless userID belongs to companyID.
func requireMember(ctx context.Context, companies repository.CompanyRepository, companyID, userID int32) (*domain.CompanyMember, error) {
	member, err := companies.GetMember(ctx, companyID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: not a member of this company", ErrForbidden)
		}
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	return member, nil
}

func requireManager(ctx context.Context, companies repository.CompanyRepository, companyID, userID int32) (*domain.CompanyMember, error) {
	member, err := requireMember(ctx, companies, companyID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Role.CanManage() {
		return nil, fmt.Errorf("%w: requires owner or admin role", ErrForbidden)
	}
	return member, nil
}
