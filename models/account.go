package models

import "fmt"

// Account identifies a per-guild balance row
type Account struct {
	UserID  int64 `json:"user_id"`
	GuildID int64 `json:"guild_id"`
}

// NewAccount creates an account key for a user in a guild
func NewAccount(userID, guildID int64) Account {
	return Account{UserID: userID, GuildID: guildID}
}

func (a Account) String() string {
	return fmt.Sprintf("user %d in guild %d", a.UserID, a.GuildID)
}

// MemberBalance is a balance row as stored in the members table
type MemberBalance struct {
	UserID  int64 `db:"id"`
	GuildID int64 `db:"guild_id"`
	Balance Bobux
}
