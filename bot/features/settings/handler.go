package settings

import (
	"context"
	"fmt"
	"strings"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
)

// setting describes how one guild setting is read, written and worded
type setting struct {
	label   string
	option  string
	mention func(int64) string
	get     func(*models.GuildSettings) *int64
	update  func(ctx context.Context, guildID int64, id *int64) error
	unset   string
}

func (f *Feature) setting(name string) (setting, bool) {
	switch name {
	case "admin_role":
		return setting{
			label:   "admin role",
			option:  "role",
			mention: common.MentionRole,
			get:     func(gs *models.GuildSettings) *int64 { return gs.AdminRoleID },
			update:  f.settings.UpdateAdminRole,
			unset:   "Unset admin role; falling back to Manage Server permissions",
		}, true
	case "memes_channel":
		return setting{
			label:   "memes channel",
			option:  "channel",
			mention: common.MentionChannel,
			get:     func(gs *models.GuildSettings) *int64 { return gs.MemesChannelID },
			update:  f.settings.UpdateMemesChannel,
			unset:   "Unset memes channel",
		}, true
	case "real_estate_category":
		return setting{
			label:   "real estate category",
			option:  "category",
			mention: common.MentionChannel,
			get:     func(gs *models.GuildSettings) *int64 { return gs.RealEstateCategory },
			update:  f.settings.UpdateRealEstateCategory,
			unset:   "Unset real estate category",
		}, true
	}
	return setting{}, false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func (f *Feature) handleConfig(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	if len(inv.Path) != 2 {
		return nil, fmt.Errorf("unknown subcommand %q", inv.Subcommand())
	}
	s, ok := f.setting(inv.Path[0])
	if !ok {
		return nil, fmt.Errorf("unknown setting %q", inv.Path[0])
	}

	switch inv.Path[1] {
	case "get":
		gs, err := f.settings.GetOrCreateSettings(ctx, inv.GuildID)
		if err != nil {
			return nil, err
		}
		return common.Private(fmt.Sprintf("%s is currently %s", capitalize(s.label), common.MentionOrUnset(s.get(gs), s.mention))), nil

	case "set":
		if err := common.RequirePermission(inv, service.PermissionManageGuild, "Manage Server"); err != nil {
			return nil, err
		}
		id, err := inv.Snowflake(s.option)
		if err != nil {
			return nil, err
		}
		if err := s.update(ctx, inv.GuildID, &id); err != nil {
			return nil, err
		}
		return common.Reply(fmt.Sprintf("Set %s to %s", s.label, s.mention(id))), nil

	case "unset":
		if err := common.RequirePermission(inv, service.PermissionManageGuild, "Manage Server"); err != nil {
			return nil, err
		}
		if err := s.update(ctx, inv.GuildID, nil); err != nil {
			return nil, err
		}
		return common.Reply(s.unset), nil
	}

	return nil, fmt.Errorf("unknown subcommand %q", inv.Subcommand())
}
