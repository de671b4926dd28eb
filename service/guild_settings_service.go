package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/arm32x/bobux-economy/models"
)

// PermissionManageGuild is the Manage Server permission bit
const PermissionManageGuild int64 = 1 << 5

// RelocatedMarkers prefix messages that were already moved out of the memes channel.
// Longer forms come first so stripping removes the whole glyph.
var RelocatedMarkers = []string{"💬", "🗨️", "🗨"}

// guildSettingsService implements the GuildSettingsService interface
type guildSettingsService struct {
	uowFactory UnitOfWorkFactory
}

// NewGuildSettingsService creates a new guild settings service
func NewGuildSettingsService(uowFactory UnitOfWorkFactory) GuildSettingsService {
	return &guildSettingsService{
		uowFactory: uowFactory,
	}
}

// GetOrCreateSettings retrieves guild settings or creates default ones if not found
func (s *guildSettingsService) GetOrCreateSettings(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create guild settings: %w", err)
	}

	// Commit in case new settings were created
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return settings, nil
}

// UpdateAdminRole sets or clears the role allowed to run admin commands
func (s *guildSettingsService) UpdateAdminRole(ctx context.Context, guildID int64, roleID *int64) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		settings.AdminRoleID = roleID
	})
}

// UpdateMemesChannel sets or clears the channel where votes are counted
func (s *guildSettingsService) UpdateMemesChannel(ctx context.Context, guildID int64, channelID *int64) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		if !sameID(settings.MemesChannelID, channelID) {
			// History of the old channel says nothing about the new one
			settings.LastMemesMessageID = nil
		}
		settings.MemesChannelID = channelID
	})
}

// UpdateRealEstateCategory sets or clears the category purchased channels are created in
func (s *guildSettingsService) UpdateRealEstateCategory(ctx context.Context, guildID int64, categoryID *int64) error {
	return s.update(ctx, guildID, func(settings *models.GuildSettings) {
		settings.RealEstateCategory = categoryID
	})
}

func (s *guildSettingsService) update(ctx context.Context, guildID int64, apply func(*models.GuildSettings)) error {
	uow := s.uowFactory.CreateForGuild(guildID)
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	settings, err := uow.GuildSettingsRepository().GetOrCreateGuildSettings(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to get guild settings: %w", err)
	}

	apply(settings)

	if err := uow.GuildSettingsRepository().UpdateGuildSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to update guild settings: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// CheckAdmin returns a permission error unless member may run admin commands.
// The configured admin role is required when set, Manage Server otherwise.
func CheckAdmin(settings *models.GuildSettings, member *models.Member) error {
	if member == nil {
		return NewPermissionError("This command can only be used in a server.")
	}
	if settings != nil && settings.AdminRoleID != nil {
		if member.HasRole(*settings.AdminRoleID) {
			return nil
		}
		return NewPermissionError("You are missing <@&%d> role to run this command.", *settings.AdminRoleID)
	}
	if member.Permissions&PermissionManageGuild != 0 {
		return nil
	}
	return NewPermissionError("You are missing Manage Server permission to run this command.")
}

// IsEligible reports whether votes on msg earn rewards
func IsEligible(settings *models.GuildSettings, msg *models.Message) bool {
	if settings == nil || settings.MemesChannelID == nil || msg == nil {
		return false
	}
	if msg.ChannelID != *settings.MemesChannelID {
		return false
	}
	return !HasRelocatedMarker(msg.Content)
}

// HasRelocatedMarker reports whether content starts with a speech bubble
func HasRelocatedMarker(content string) bool {
	for _, marker := range RelocatedMarkers {
		if strings.HasPrefix(content, marker) {
			return true
		}
	}
	return false
}
