package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeVoteReward         TransactionType = "vote_reward"
	TransactionTypeAdminSet           TransactionType = "admin_set"
	TransactionTypeAdminAdjust        TransactionType = "admin_adjust"
	TransactionTypeTransfer           TransactionType = "transfer"
	TransactionTypeRealEstatePurchase TransactionType = "real_estate_purchase"
	TransactionTypeRealEstateSale     TransactionType = "real_estate_sale"
	TransactionTypeSubscriptionCharge TransactionType = "subscription_charge"
)

// BalanceHistory represents a historical balance change.
// Amounts are stored as half units so spare change survives the round trip.
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	UserID              int64           `db:"user_id"`
	GuildID             int64           `db:"guild_id"`
	BalanceBefore       Bobux           `db:"balance_before_halves"`
	BalanceAfter        Bobux           `db:"balance_after_halves"`
	ChangeAmount        Bobux           `db:"change_halves"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	CreatedAt           time.Time       `db:"created_at"`
}

// Transaction describes a transfer between zero, one or two accounts.
// A nil Source mints the amount and a nil Destination burns it.
type Transaction struct {
	Source         *Account
	Destination    *Account
	Amount         Bobux
	AllowOverdraft bool
	Type           TransactionType
	Metadata       map[string]any
}
