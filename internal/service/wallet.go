package service

import (
	"context"
	"fmt"
	"time"

	"ugc-marketplace-backend/internal/domain"
	"ugc-marketplace-backend/internal/logger"
	"ugc-marketplace-backend/internal/repository"
	"ugc-marketplace-backend/internal/utils"
)

type walletService struct {
	walletRepo  repository.WalletRepository
	companyRepo repository.CompanyRepository
}

func NewWalletService(walletRepo repository.WalletRepository, companyRepo repository.CompanyRepository) WalletService {
	return &walletService{walletRepo: walletRepo, companyRepo: companyRepo}
}

func (s *walletService) GetWallet(ctx context.Context, userID int32) (*domain.WalletSummary, error) {
	summary, err := s.walletRepo.GetSummary(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return summary, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID, page, pageSize int32) ([]domain.WalletTransaction, int32, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.walletRepo.ListTransactions(ctx, userID, page, pageSize)
}

func (s *walletService) ListCommissions(ctx context.Context, userID int32, status string) ([]domain.Commission, error) {
	return s.walletRepo.ListCommissions(ctx, userID, status)
}

// RequestWithdrawal debits the wallet; the repository serializes withdrawals per user so the balance never goes negative.
func (s *walletService) RequestWithdrawal(ctx context.Context, userID int32, amountCents int64) (*domain.WalletTransaction, error) {
	if amountCents < domain.MinWithdrawalCents {
		return nil, validationError("minimum withdrawal is %s", utils.FormatBRL(domain.MinWithdrawalCents))
	}
	tx := &domain.WalletTransaction{
		UserID:      userID,
		AmountCents: -amountCents,
		Type:        domain.WalletTxWithdrawal,
		Description: fmt.Sprintf("Saque de %s", utils.FormatBRL(amountCents)),
		CreatedOn:   time.Now().UTC(),
	}
	if err := s.walletRepo.Withdraw(ctx, tx); err != nil {
		if isInsufficientBalance(err) {
			return nil, ErrInsufficientBalance
		}
		return nil, fmt.Errorf("failed to withdraw: %w", err)
	}
	logger.Info("Withdrawal requested", "userID", userID, "amountCents", amountCents, "transactionID", tx.ID)
	return tx, nil
}

// MarkCommissionPaid records that the brand paid an approved commission out of band.
func (s *walletService) MarkCommissionPaid(ctx context.Context, userID, commissionID int32) (*domain.Commission, error) {
	c, err := s.walletRepo.GetCommission(ctx, commissionID)
	if err != nil {
		return nil, notFound(err, "commission")
	}
	if _, err := requireManager(ctx, s.companyRepo, c.CompanyID, userID); err != nil {
		return nil, err
	}
	if c.Status != domain.CommissionStatusApproved {
		return nil, fmt.Errorf("%w: commission is %s", ErrInvalidTransition, c.Status)
	}
	if err := s.walletRepo.UpdateCommissionStatus(ctx, c.ID, domain.CommissionStatusPaid); err != nil {
		return nil, notFound(err, "commission")
	}
	now := time.Now().UTC()
	c.Status = domain.CommissionStatusPaid
	c.PaidOn = &now
	return c, nil
}
