package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/jackc/pgx/v5"
)

// SubscriptionRepository stores role subscriptions for one guild
type SubscriptionRepository struct {
	q       queryable
	guildID int64
}

// NewSubscriptionRepository creates a subscription repository on the pool
func NewSubscriptionRepository(db *database.DB, guildID int64) *SubscriptionRepository {
	return &SubscriptionRepository{q: db.Pool, guildID: guildID}
}

func newSubscriptionRepository(tx queryable, guildID int64) *SubscriptionRepository {
	return &SubscriptionRepository{q: tx, guildID: guildID}
}

// Create makes a role available for subscription. Returns ErrDuplicate if the role already has one.
func (r *SubscriptionRepository) Create(ctx context.Context, subscription *models.Subscription) error {
	if err := ensureGuild(ctx, r.q, r.guildID); err != nil {
		return err
	}

	query := `
		INSERT INTO available_subscriptions (role_id, guild_id, price, spare_change)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.q.Exec(ctx, query, subscription.RoleID, r.guildID, subscription.PricePerWeek.Units, subscription.PricePerWeek.Half)
	if isUniqueViolation(err) {
		return fmt.Errorf("subscription for role %d exists: %w", subscription.RoleID, service.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to create subscription for role %d: %w", subscription.RoleID, err)
	}

	subscription.GuildID = r.guildID
	return nil
}

// Get returns the subscription for a role, or nil if there is none
func (r *SubscriptionRepository) Get(ctx context.Context, roleID int64) (*models.Subscription, error) {
	query := `
		SELECT role_id, guild_id, price, spare_change
		FROM available_subscriptions
		WHERE role_id = $1 AND guild_id = $2
	`

	var s models.Subscription
	err := r.q.QueryRow(ctx, query, roleID, r.guildID).Scan(&s.RoleID, &s.GuildID, &s.PricePerWeek.Units, &s.PricePerWeek.Half)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription for role %d: %w", roleID, err)
	}

	return &s, nil
}

// Delete removes a subscription and every member subscription to it
func (r *SubscriptionRepository) Delete(ctx context.Context, roleID int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM available_subscriptions WHERE role_id = $1 AND guild_id = $2`, roleID, r.guildID)
	if err != nil {
		return false, fmt.Errorf("failed to delete subscription for role %d: %w", roleID, err)
	}
	return result.RowsAffected() > 0, nil
}

// ListAvailable returns every subscription in the guild, cheapest first
func (r *SubscriptionRepository) ListAvailable(ctx context.Context) ([]*models.Subscription, error) {
	query := `
		SELECT role_id, guild_id, price, spare_change
		FROM available_subscriptions
		WHERE guild_id = $1
		ORDER BY price, spare_change, role_id
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []*models.Subscription
	for rows.Next() {
		var s models.Subscription
		if err := rows.Scan(&s.RoleID, &s.GuildID, &s.PricePerWeek.Units, &s.PricePerWeek.Half); err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscriptions: %w", err)
	}

	return subscriptions, nil
}

// ListForMember returns every subscription in the guild with the member's subscription date, if any
func (r *SubscriptionRepository) ListForMember(ctx context.Context, memberID int64) ([]*models.SubscriptionListing, error) {
	query := `
		SELECT a.role_id, a.guild_id, a.price, a.spare_change, ms.subscribed_since
		FROM available_subscriptions a
		LEFT JOIN member_subscriptions ms ON ms.role_id = a.role_id AND ms.member_id = $2
		WHERE a.guild_id = $1
		ORDER BY a.price, a.spare_change, a.role_id
	`

	rows, err := r.q.Query(ctx, query, r.guildID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions for member %d: %w", memberID, err)
	}
	defer rows.Close()

	var listings []*models.SubscriptionListing
	for rows.Next() {
		var l models.SubscriptionListing
		if err := rows.Scan(&l.RoleID, &l.GuildID, &l.PricePerWeek.Units, &l.PricePerWeek.Half, &l.SubscribedSince); err != nil {
			return nil, fmt.Errorf("failed to scan subscription listing: %w", err)
		}
		listings = append(listings, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate subscription listings: %w", err)
	}

	return listings, nil
}

// GetMemberSubscription returns a member's subscription to a role, or nil
func (r *SubscriptionRepository) GetMemberSubscription(ctx context.Context, memberID, roleID int64) (*models.MemberSubscription, error) {
	query := `
		SELECT ms.member_id, ms.role_id, a.guild_id, a.price, a.spare_change, ms.subscribed_since
		FROM member_subscriptions ms
		JOIN available_subscriptions a ON a.role_id = ms.role_id
		WHERE ms.member_id = $1 AND ms.role_id = $2 AND a.guild_id = $3
	`

	var ms models.MemberSubscription
	err := r.q.QueryRow(ctx, query, memberID, roleID, r.guildID).Scan(
		&ms.MemberID,
		&ms.RoleID,
		&ms.GuildID,
		&ms.PricePerWeek.Units,
		&ms.PricePerWeek.Half,
		&ms.SubscribedSince,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription of member %d to role %d: %w", memberID, roleID, err)
	}

	return &ms, nil
}

// AddMemberSubscription subscribes a member to a role. Returns ErrDuplicate if already subscribed.
func (r *SubscriptionRepository) AddMemberSubscription(ctx context.Context, memberID, roleID int64, since time.Time) error {
	query := `
		INSERT INTO member_subscriptions (member_id, role_id, subscribed_since)
		VALUES ($1, $2, $3)
	`

	_, err := r.q.Exec(ctx, query, memberID, roleID, since)
	if isUniqueViolation(err) {
		return fmt.Errorf("member %d already subscribed to role %d: %w", memberID, roleID, service.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to subscribe member %d to role %d: %w", memberID, roleID, err)
	}
	return nil
}

// RemoveMemberSubscription unsubscribes a member from a role
func (r *SubscriptionRepository) RemoveMemberSubscription(ctx context.Context, memberID, roleID int64) (bool, error) {
	query := `
		DELETE FROM member_subscriptions ms
		USING available_subscriptions a
		WHERE a.role_id = ms.role_id
		  AND ms.member_id = $1 AND ms.role_id = $2 AND a.guild_id = $3
	`

	result, err := r.q.Exec(ctx, query, memberID, roleID, r.guildID)
	if err != nil {
		return false, fmt.Errorf("failed to unsubscribe member %d from role %d: %w", memberID, roleID, err)
	}
	return result.RowsAffected() > 0, nil
}

// ListMemberSubscriptions returns every active member subscription in the guild
func (r *SubscriptionRepository) ListMemberSubscriptions(ctx context.Context) ([]*models.MemberSubscription, error) {
	query := `
		SELECT ms.member_id, ms.role_id, a.guild_id, a.price, a.spare_change, ms.subscribed_since
		FROM member_subscriptions ms
		JOIN available_subscriptions a ON a.role_id = ms.role_id
		WHERE a.guild_id = $1
		ORDER BY ms.subscribed_since, ms.member_id, ms.role_id
	`

	rows, err := r.q.Query(ctx, query, r.guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list member subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []*models.MemberSubscription
	for rows.Next() {
		var ms models.MemberSubscription
		if err := rows.Scan(&ms.MemberID, &ms.RoleID, &ms.GuildID, &ms.PricePerWeek.Units, &ms.PricePerWeek.Half, &ms.SubscribedSince); err != nil {
			return nil, fmt.Errorf("failed to scan member subscription: %w", err)
		}
		subscriptions = append(subscriptions, &ms)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate member subscriptions: %w", err)
	}

	return subscriptions, nil
}
