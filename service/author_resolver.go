package service

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// AuthorResolver finds the member a message should be credited to. Relocated messages are
// posted by a webhook, so the raw author is not always the poster.
type AuthorResolver struct {
	members  MemberResolver
	webhooks WebhookRepository
}

// NewAuthorResolver creates an author resolver. webhooks is read outside any unit of work.
func NewAuthorResolver(members MemberResolver, webhooks WebhookRepository) *AuthorResolver {
	return &AuthorResolver{
		members:  members,
		webhooks: webhooks,
	}
}

// ResolveOriginalAuthor returns the poster of msg, or nil if nobody can be found
func (r *AuthorResolver) ResolveOriginalAuthor(ctx context.Context, msg *models.Message) (*models.Member, error) {
	if msg.AuthorMember != nil {
		return msg.AuthorMember, nil
	}

	member, err := r.members.ResolveMember(ctx, msg.GuildID, msg.AuthorID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author %d: %w", msg.AuthorID, err)
	}
	if member != nil {
		return member, nil
	}

	if msg.WebhookID == 0 {
		return nil, nil
	}

	memberID, err := r.webhooks.GetMemberID(ctx, msg.WebhookID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up webhook %d: %w", msg.WebhookID, err)
	}
	if memberID == nil {
		return nil, nil
	}

	member, err = r.members.ResolveMember(ctx, msg.GuildID, *memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve puppeted member %d: %w", *memberID, err)
	}
	if member == nil {
		log.WithFields(log.Fields{
			"guildID":   msg.GuildID,
			"webhookID": msg.WebhookID,
			"memberID":  *memberID,
		}).Debug("Puppeted member has left the guild")
	}
	return member, nil
}
