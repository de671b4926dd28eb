package common

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/service"
)

// RequireAdmin fails with a permission error unless the invoker may run admin commands
func RequireAdmin(ctx context.Context, settings service.GuildSettingsService, inv *Invocation) error {
	gs, err := settings.GetOrCreateSettings(ctx, inv.GuildID)
	if err != nil {
		return fmt.Errorf("failed to load guild settings: %w", err)
	}
	return service.CheckAdmin(gs, inv.Member)
}

// RequirePermission fails with a permission error unless the invoker holds permission
func RequirePermission(inv *Invocation, permission int64, name string) error {
	if inv.Member == nil || inv.Member.Permissions&permission == 0 {
		return service.NewPermissionError("You are missing %s permission to run this command.", name)
	}
	return nil
}
