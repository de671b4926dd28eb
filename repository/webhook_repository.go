package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/arm32x/bobux-economy/database"
	"github.com/arm32x/bobux-economy/service"
	"github.com/jackc/pgx/v5"
)

// WebhookRepository maps relocation webhooks to the members they impersonate
type WebhookRepository struct {
	q queryable
}

// NewWebhookRepository creates a webhook repository on the pool
func NewWebhookRepository(db *database.DB) *WebhookRepository {
	return &WebhookRepository{q: db.Pool}
}

func newWebhookRepository(tx queryable) *WebhookRepository {
	return &WebhookRepository{q: tx}
}

// GetMemberID returns the impersonated member, or nil if the webhook is unknown
func (r *WebhookRepository) GetMemberID(ctx context.Context, webhookID int64) (*int64, error) {
	var memberID int64
	err := r.q.QueryRow(ctx, `SELECT member_id FROM webhooks WHERE webhook_id = $1`, webhookID).Scan(&memberID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member for webhook %d: %w", webhookID, err)
	}
	return &memberID, nil
}

// RecordPuppet stores a webhook to member mapping
func (r *WebhookRepository) RecordPuppet(ctx context.Context, webhookID, memberID int64) error {
	_, err := r.q.Exec(ctx, `INSERT INTO webhooks (webhook_id, member_id) VALUES ($1, $2)`, webhookID, memberID)
	if isUniqueViolation(err) {
		return fmt.Errorf("webhook %d already recorded: %w", webhookID, service.ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("failed to record webhook %d: %w", webhookID, err)
	}
	return nil
}
