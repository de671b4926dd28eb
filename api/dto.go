package api

import (
	"strconv"
	"time"

	"github.com/arm32x/bobux-economy/models"
	"github.com/shopspring/decimal"
)

// AmountDTO is a bobux amount. Amount is exact, e.g. "-5.5".
type AmountDTO struct {
	Amount      string `json:"amount"`
	Units       int64  `json:"units"`
	SpareChange bool   `json:"spare_change"`
}

// BalanceDTO is a member's balance. Snowflakes are strings so JavaScript clients keep precision.
type BalanceDTO struct {
	GuildID string    `json:"guild_id"`
	UserID  string    `json:"user_id"`
	Balance AmountDTO `json:"balance"`
}

// SubscriptionDTO is a role members can pay for weekly
type SubscriptionDTO struct {
	RoleID       string    `json:"role_id"`
	PricePerWeek AmountDTO `json:"price_per_week"`
}

// ErrorDTO is the body of every failed request
type ErrorDTO struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"http_status"`
}

// HealthDTO is returned by the health check
type HealthDTO struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

func toAmountDTO(b models.Bobux) AmountDTO {
	return AmountDTO{
		Amount:      decimal.New(b.HalfUnits()*5, -1).String(),
		Units:       b.Units,
		SpareChange: b.Half,
	}
}

func toBalanceDTO(guildID, userID int64, balance models.Bobux) BalanceDTO {
	return BalanceDTO{
		GuildID: strconv.FormatInt(guildID, 10),
		UserID:  strconv.FormatInt(userID, 10),
		Balance: toAmountDTO(balance),
	}
}

func toSubscriptionDTO(s *models.SubscriptionListing) SubscriptionDTO {
	return SubscriptionDTO{
		RoleID:       strconv.FormatInt(s.RoleID, 10),
		PricePerWeek: toAmountDTO(s.PricePerWeek),
	}
}
