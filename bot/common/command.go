package common

import (
	"context"

	"github.com/bwmarrin/discordgo"
)

// Handler runs a parsed command and returns its reply. A returned error is rendered with
// ErrorMessage as an ephemeral reply.
type Handler func(ctx context.Context, inv *Invocation) (*Response, error)

// Command binds a registered application command to its handler
type Command struct {
	Definition *discordgo.ApplicationCommand
	Handle     Handler

	// Deferred commands acknowledge first and reply ephemerally once done
	Deferred bool
}

// Name is the command name Discord routes by
func (c Command) Name() string {
	return c.Definition.Name
}

// GuildOnly is the DM permission of every economy command
func GuildOnly() *bool {
	dm := false
	return &dm
}

// Static replies privately with fixed content
func Static(content string) Handler {
	return func(context.Context, *Invocation) (*Response, error) {
		return Private(content), nil
	}
}
