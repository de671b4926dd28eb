package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/arm32x/bobux-economy/models"
	log "github.com/sirupsen/logrus"
)

// StripSpeechBubbles removes a leading 💬 or 🗨️ and the whitespace after it
func StripSpeechBubbles(content string) string {
	for _, marker := range RelocatedMarkers {
		if rest, ok := strings.CutPrefix(content, marker); ok {
			return strings.TrimLeftFunc(rest, unicode.IsSpace)
		}
	}
	return content
}

type relocateService struct {
	uowFactory UnitOfWorkFactory
	relocator  MessageRelocator
	authors    *AuthorResolver
}

// NewRelocateService creates a new relocate service
func NewRelocateService(uowFactory UnitOfWorkFactory, relocator MessageRelocator, authors *AuthorResolver) RelocateService {
	return &relocateService{
		uowFactory: uowFactory,
		relocator:  relocator,
		authors:    authors,
	}
}

// Relocate reposts msg in the destination channel through a webhook that looks like its
// poster, deletes the original and remembers who the webhook stood for.
func (s *relocateService) Relocate(ctx context.Context, msg *models.Message, destinationChannelID int64, stripSpeechBubbles bool) error {
	if msg.ChannelID == destinationChannelID {
		return NewUserError("Message already in <#%d>", destinationChannelID)
	}

	// A relocated message keeps crediting the member it was first posted by
	author, err := s.authors.ResolveOriginalAuthor(ctx, msg)
	if err != nil {
		return err
	}
	if author == nil {
		return NewUserError("The author of this message is no longer in this server.")
	}

	webhook, err := s.relocator.CreateWebhook(ctx, destinationChannelID, author.DisplayName)
	if errors.Is(err, ErrForbidden) {
		return NewBotPermissionError("The bot needs the Manage Webhooks permission in <#%d>.", destinationChannelID)
	}
	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}
	defer func() {
		if err := s.relocator.DeleteWebhook(ctx, webhook.ID); err != nil {
			log.WithError(err).WithField("webhookID", webhook.ID).Warn("Failed to delete relocation webhook")
		}
	}()

	content := msg.Content
	if stripSpeechBubbles {
		content = StripSpeechBubbles(content)
	}

	if err := s.relocator.ExecuteWebhook(ctx, webhook, &Repost{
		Content:        content,
		Username:       author.DisplayName,
		AvatarURL:      author.AvatarURL,
		AttachmentURLs: msg.AttachmentURLs,
	}); err != nil {
		return fmt.Errorf("failed to repost message: %w", err)
	}

	if err := s.relocator.DeleteMessage(ctx, msg.ChannelID, msg.ID); err != nil {
		return fmt.Errorf("failed to delete original message: %w", err)
	}

	uow := s.uowFactory.CreateForGuild(msg.GuildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	err = uow.WebhookRepository().RecordPuppet(ctx, webhook.ID, author.UserID)
	if err != nil && !errors.Is(err, ErrDuplicate) {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"guildID":     msg.GuildID,
		"messageID":   msg.ID,
		"destination": destinationChannelID,
		"authorID":    author.UserID,
		"webhookID":   webhook.ID,
	}).Info("Message relocated")

	return nil
}
