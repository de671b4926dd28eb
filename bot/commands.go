package bot

import (
	"context"
	"fmt"

	"github.com/arm32x/bobux-economy/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

type commandProvider interface {
	Commands() []common.Command
}

// collectCommands indexes every feature command by name
func collectCommands(features ...commandProvider) (map[string]common.Command, error) {
	commands := make(map[string]common.Command)
	for _, feature := range features {
		for _, cmd := range feature.Commands() {
			if _, exists := commands[cmd.Name()]; exists {
				return nil, fmt.Errorf("duplicate command %q", cmd.Name())
			}
			commands[cmd.Name()] = cmd
		}
	}
	return commands, nil
}

func (b *Bot) definitions() []*discordgo.ApplicationCommand {
	defs := make([]*discordgo.ApplicationCommand, 0, len(b.commands))
	for _, cmd := range b.commands {
		defs = append(defs, cmd.Definition)
	}
	return defs
}

// registerCommands replaces every registered command with the current set
func (b *Bot) registerCommands() error {
	registered, err := b.session.ApplicationCommandBulkOverwrite(b.session.State.User.ID, b.config.GuildID, b.definitions())
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"count":   len(registered),
		"guildID": b.config.GuildID,
	}).Info("Registered application commands")
	return nil
}

// handleCommands routes application commands to their feature
func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	cmd, ok := b.commands[i.ApplicationCommandData().Name]
	if !ok {
		log.Warnf("Received unknown command %q", i.ApplicationCommandData().Name)
		return
	}

	if cmd.Deferred {
		if err := common.DeferResponse(s, i, true); err != nil {
			log.Errorf("Error deferring response to %q: %v", cmd.Name(), err)
			return
		}
	}

	resp := runCommand(context.Background(), cmd, i)

	if cmd.Deferred {
		common.FollowUp(s, i, resp)
	} else {
		common.Respond(s, i, resp)
	}
}

// runCommand parses and runs an interaction. Errors become ephemeral replies.
func runCommand(ctx context.Context, cmd common.Command, i *discordgo.InteractionCreate) *common.Response {
	fields := log.Fields{
		"command": cmd.Name(),
		"guildID": i.GuildID,
	}
	if i.Member != nil && i.Member.User != nil {
		fields["userID"] = i.Member.User.ID
	}

	inv, err := common.ParseInvocation(i)
	if err != nil {
		return common.Private(common.ErrorMessage(err, fields))
	}
	fields["subcommand"] = inv.Subcommand()

	resp, err := cmd.Handle(ctx, inv)
	if err != nil {
		return common.Private(common.ErrorMessage(err, fields))
	}
	return resp
}
