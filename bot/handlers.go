package bot

import (
	"context"
	"errors"
	"time"

	"github.com/arm32x/bobux-economy/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// eventTimeout bounds a single gateway event. Vote handlers may wait on the first sync.
const eventTimeout = 2 * time.Minute

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	log.WithFields(log.Fields{
		"user":   r.User.Username,
		"guilds": len(r.Guilds),
	}).Info("Connected to Discord")

	// Later Ready events follow a reconnect, when live handlers are already running
	ran := false
	b.startupSync.Do(func() {
		ran = true
		go func() {
			if err := b.services.Sync.SyncVotes(context.Background()); err != nil {
				log.Errorf("Error syncing votes: %v", err)
			}
		}()
	})
	if !ran {
		log.Info("Reconnected, skipping vote sync")
	}
}

func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	guildID, err := common.ParseSnowflake(g.ID)
	if err != nil {
		log.Errorf("Failed to parse guild ID %s: %v", g.ID, err)
		return
	}

	settings, err := b.services.Settings.GetOrCreateSettings(ctx, guildID)
	if err != nil {
		log.Errorf("Failed to track guild %s (%s): %v", g.Name, g.ID, err)
		return
	}

	log.WithFields(log.Fields{
		"guildID":      settings.GuildID,
		"name":         g.Name,
		"adminRole":    common.MentionOrUnset(settings.AdminRoleID, common.MentionRole),
		"memesChannel": common.MentionOrUnset(settings.MemesChannelID, common.MentionChannel),
	}).Info("Guild available")
}

func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	// Skip DMs
	if m.GuildID == "" {
		return
	}

	msg, err := common.ToMessage(m.Message)
	if err != nil {
		log.Errorf("Failed to convert message %s: %v", m.ID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if err := b.services.Voting.HandleMessagePosted(ctx, msg); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"guildID":   m.GuildID,
			"channelID": m.ChannelID,
			"messageID": m.ID,
		}).Error("Failed to handle posted message")
	}
}

func (b *Bot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	b.handleReaction(r.MessageReaction, true)
}

func (b *Bot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	b.handleReaction(r.MessageReaction, false)
}

func (b *Bot) handleReaction(r *discordgo.MessageReaction, added bool) {
	if r.GuildID == "" {
		return
	}

	event, err := common.ToReactionEvent(r)
	if err != nil {
		log.Errorf("Failed to convert reaction on message %s: %v", r.MessageID, err)
		return
	}

	// The deadline starts once the startup sync let the event through
	if b.services.SyncGate != nil {
		_ = b.services.SyncGate.Wait(context.Background())
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	if added {
		err = b.services.Voting.HandleReactionAdded(ctx, event)
	} else {
		err = b.services.Voting.HandleReactionRemoved(ctx, event)
	}
	if err != nil {
		entry := log.WithError(err).WithFields(log.Fields{
			"guildID":   r.GuildID,
			"channelID": r.ChannelID,
			"messageID": r.MessageID,
			"userID":    r.UserID,
			"emoji":     event.Emoji,
			"added":     added,
		})
		if errors.Is(err, context.DeadlineExceeded) {
			entry.Warn("Reaction timed out, vote not applied until the next sync")
			return
		}
		entry.Error("Failed to handle reaction")
	}
}

// Member changes invalidate the resolver cache
func (b *Bot) handleMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	b.forgetMember(m.GuildID, m.User)
}

func (b *Bot) handleMemberRemove(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
	b.forgetMember(m.GuildID, m.User)
}

func (b *Bot) forgetMember(guild string, user *discordgo.User) {
	if user == nil {
		return
	}
	guildID, err := common.ParseSnowflake(guild)
	if err != nil {
		return
	}
	userID, err := common.ParseSnowflake(user.ID)
	if err != nil {
		return
	}
	b.resolver.Forget(guildID, userID)
}
