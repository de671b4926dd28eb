package common

import (
	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// Response is the reply to a command
type Response struct {
	Content   string
	Ephemeral bool
}

// Reply creates a public response
func Reply(content string) *Response {
	return &Response{Content: content}
}

// Private creates an ephemeral response
func Private(content string) *Response {
	return &Response{Content: content, Ephemeral: true}
}

// noMentions keeps replies from pinging the members and roles they mention
func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

func flags(ephemeral bool) discordgo.MessageFlags {
	if ephemeral {
		return discordgo.MessageFlagsEphemeral
	}
	return 0
}

// DeferResponse sends a deferred response to give more time for processing
func DeferResponse(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: flags(ephemeral),
		},
	})
}

// Respond sends resp as the interaction response
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, resp *Response) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content:         resp.Content,
			AllowedMentions: noMentions(),
			Flags:           flags(resp.Ephemeral),
		},
	})
	if err != nil {
		log.Errorf("Error responding to interaction: %v", err)
	}
}

// FollowUp sends resp as a follow-up to a deferred interaction
func FollowUp(s *discordgo.Session, i *discordgo.InteractionCreate, resp *Response) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content:         resp.Content,
		AllowedMentions: noMentions(),
		Flags:           flags(resp.Ephemeral),
	})
	if err != nil {
		log.Errorf("Error sending follow-up message: %v", err)
	}
}
