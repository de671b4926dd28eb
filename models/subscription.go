package models

import "time"

// Subscription is a role that members can pay for weekly
type Subscription struct {
	RoleID       int64 `db:"role_id"`
	GuildID      int64 `db:"guild_id"`
	PricePerWeek Bobux
}

// MemberSubscription is a member's active subscription to a role
type MemberSubscription struct {
	MemberID        int64     `db:"member_id"`
	RoleID          int64     `db:"role_id"`
	GuildID         int64     `db:"guild_id"`
	PricePerWeek    Bobux
	SubscribedSince time.Time `db:"subscribed_since"`
}

// SubscriptionListing is an available subscription annotated for one member
type SubscriptionListing struct {
	Subscription
	SubscribedSince *time.Time
}
