package models

import "time"

// ChannelKind is the kind of real estate channel
type ChannelKind string

const (
	ChannelKindText  ChannelKind = "text"
	ChannelKindVoice ChannelKind = "voice"
)

// PurchasedChannel is a real estate channel owned by a member
type PurchasedChannel struct {
	ChannelID    int64       `db:"id"`
	OwnerID      int64       `db:"owner_id"`
	GuildID      int64       `db:"guild_id"`
	Kind         ChannelKind `db:"kind"`
	PurchaseTime time.Time   `db:"purchase_time"`
}
