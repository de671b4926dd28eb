package models

// GuildSettings represents per-guild configuration settings
type GuildSettings struct {
	GuildID            int64  `db:"id"`
	AdminRoleID        *int64 `db:"admin_role"`           // Nullable - falls back to Manage Server
	MemesChannelID     *int64 `db:"memes_channel"`        // Nullable - vote reactions disabled
	RealEstateCategory *int64 `db:"real_estate_category"` // Nullable - real estate disabled
	LastMemesMessageID *int64 `db:"last_memes_message"`   // Nullable - last message seen in the memes channel
}

// SyncTarget is a memes channel with a known last message, as read by reconciliation
type SyncTarget struct {
	GuildID            int64
	MemesChannelID     int64
	LastMemesMessageID int64
}
