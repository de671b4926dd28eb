package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arm32x/bobux-economy/models"
	"github.com/bwmarrin/discordgo"
)

// Invocation is an application command with its subcommand path flattened and its
// options keyed by name
type Invocation struct {
	GuildID   int64
	ChannelID int64
	Member    *models.Member
	Command   string
	Path      []string
	Options   map[string]*discordgo.ApplicationCommandInteractionDataOption
	Resolved  *discordgo.ApplicationCommandInteractionDataResolved

	// TargetID is the user or message a context menu command was run on
	TargetID int64
}

// ParseInvocation reads an application command interaction
func ParseInvocation(i *discordgo.InteractionCreate) (*Invocation, error) {
	data := i.ApplicationCommandData()

	inv := &Invocation{
		Command:  data.Name,
		Options:  make(map[string]*discordgo.ApplicationCommandInteractionDataOption),
		Resolved: data.Resolved,
	}

	var err error
	if i.GuildID != "" {
		if inv.GuildID, err = strconv.ParseInt(i.GuildID, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid guild ID %q: %w", i.GuildID, err)
		}
	}
	if i.ChannelID != "" {
		if inv.ChannelID, err = strconv.ParseInt(i.ChannelID, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid channel ID %q: %w", i.ChannelID, err)
		}
	}
	if data.TargetID != "" {
		if inv.TargetID, err = strconv.ParseInt(data.TargetID, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid target ID %q: %w", data.TargetID, err)
		}
	}
	if i.Member != nil && inv.GuildID != 0 {
		if inv.Member, err = ToMember(i.Member, inv.GuildID); err != nil {
			return nil, err
		}
	}

	options := data.Options
	for len(options) == 1 && isSubcommand(options[0].Type) {
		inv.Path = append(inv.Path, options[0].Name)
		options = options[0].Options
	}
	for _, opt := range options {
		inv.Options[opt.Name] = opt
	}

	return inv, nil
}

func isSubcommand(t discordgo.ApplicationCommandOptionType) bool {
	return t == discordgo.ApplicationCommandOptionSubCommand ||
		t == discordgo.ApplicationCommandOptionSubCommandGroup
}

// Subcommand is the subcommand path joined by spaces, e.g. "check user"
func (inv *Invocation) Subcommand() string {
	return strings.Join(inv.Path, " ")
}

// CallerID is the invoking member's user id
func (inv *Invocation) CallerID() int64 {
	if inv.Member == nil {
		return 0
	}
	return inv.Member.UserID
}

// Snowflake returns a user, role, channel or string option as an id
func (inv *Invocation) Snowflake(name string) (int64, error) {
	opt, ok := inv.Options[name]
	if !ok {
		return 0, fmt.Errorf("missing option %q", name)
	}
	raw, ok := opt.Value.(string)
	if !ok {
		return 0, fmt.Errorf("option %q is not a snowflake", name)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("option %q is not a snowflake: %w", name, err)
	}
	return id, nil
}

// Number returns a number option
func (inv *Invocation) Number(name string) (float64, error) {
	opt, ok := inv.Options[name]
	if !ok {
		return 0, fmt.Errorf("missing option %q", name)
	}
	value, ok := opt.Value.(float64)
	if !ok {
		return 0, fmt.Errorf("option %q is not a number", name)
	}
	return value, nil
}

// String returns a string option, or "" when absent
func (inv *Invocation) String(name string) string {
	if opt, ok := inv.Options[name]; ok {
		if value, ok := opt.Value.(string); ok {
			return value
		}
	}
	return ""
}

// Bool returns a boolean option, or fallback when absent
func (inv *Invocation) Bool(name string, fallback bool) bool {
	if opt, ok := inv.Options[name]; ok {
		if value, ok := opt.Value.(bool); ok {
			return value
		}
	}
	return fallback
}

// ResolvedMessage returns the message a message command targets
func (inv *Invocation) ResolvedMessage() (*models.Message, error) {
	if inv.Resolved == nil {
		return nil, fmt.Errorf("no resolved messages")
	}
	m, ok := inv.Resolved.Messages[strconv.FormatInt(inv.TargetID, 10)]
	if !ok {
		return nil, fmt.Errorf("message %d not resolved", inv.TargetID)
	}
	msg, err := ToMessage(m)
	if err != nil {
		return nil, err
	}
	if msg.GuildID == 0 {
		msg.GuildID = inv.GuildID
	}
	return msg, nil
}
