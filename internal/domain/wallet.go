package domain

import "time"

type CommissionStatus string

const (
	CommissionStatusPending   CommissionStatus = "pending"
	CommissionStatusApproved  CommissionStatus = "approved"
	CommissionStatusPaid      CommissionStatus = "paid"
	CommissionStatusCancelled CommissionStatus = "cancelled"
)

type Commission struct {
	ID            int32            `json:"id"`
	CreatorID     int32            `json:"creator_id"`
	CompanyID     int32            `json:"company_id"`
	CampaignID    int32            `json:"campaign_id"`
	ApplicationID int32            `json:"application_id"`
	AmountCents   int64            `json:"amount_cents"`
	Status        CommissionStatus `json:"status"`
	CreatedOn     time.Time        `json:"created_on"`
	PaidOn        *time.Time       `json:"paid_on,omitempty"`
}

type WalletTransactionType string

const (
	WalletTxCommission WalletTransactionType = "commission"
	WalletTxWithdrawal WalletTransactionType = "withdrawal"
	WalletTxAdjustment WalletTransactionType = "adjustment"
)

// MinWithdrawalCents is the smallest amount a creator may withdraw (R$ 10,00)
const MinWithdrawalCents int64 = 1000

type WalletTransaction struct {
	ID           int32                 `json:"id"`
	UserID       int32                 `json:"user_id"`
	AmountCents  int64                 `json:"amount_cents"` // positive for credit, negative for debit
	Type         WalletTransactionType `json:"type"`
	CommissionID *int32                `json:"commission_id,omitempty"`
	Description  string                `json:"description"`
	CreatedOn    time.Time             `json:"created_on"`
}

type WalletSummary struct {
	UserID              int32 `json:"user_id"`
	BalanceCents        int64 `json:"balance_cents"`
	PendingCents        int64 `json:"pending_cents"`
	TotalEarnedCents    int64 `json:"total_earned_cents"`
	TotalWithdrawnCents int64 `json:"total_withdrawn_cents"`
}
