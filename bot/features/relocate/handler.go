package relocate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/arm32x/bobux-economy/models"
	"github.com/arm32x/bobux-economy/service"
	"github.com/bwmarrin/discordgo"
)

func (f *Feature) handleRelocate(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	if err := common.RequirePermission(inv, PermissionManageMessages, "Manage Messages"); err != nil {
		return nil, err
	}

	messageID, err := strconv.ParseInt(strings.TrimSpace(inv.String("message_id")), 10, 64)
	if err != nil {
		return nil, service.NewUserError("Input a valid integer.")
	}
	destination, err := inv.Snowflake("destination")
	if err != nil {
		return nil, err
	}

	msg, err := f.messages.FetchMessage(ctx, inv.ChannelID, messageID)
	if err != nil {
		return nil, fetchError(err, messageID)
	}

	return f.move(ctx, msg, destination, inv.Bool("remove_speech_bubbles", false))
}

func (f *Feature) handleSendToMemes(ctx context.Context, inv *common.Invocation) (*common.Response, error) {
	if err := common.RequirePermission(inv, PermissionManageMessages, "Manage Messages"); err != nil {
		return nil, err
	}

	gs, err := f.settings.GetOrCreateSettings(ctx, inv.GuildID)
	if err != nil {
		return nil, err
	}
	if gs.MemesChannelID == nil {
		return nil, service.NewNotConfiguredError("No memes channel is configured on this server.")
	}

	msg, err := inv.ResolvedMessage()
	if err != nil {
		return nil, err
	}

	return f.move(ctx, msg, *gs.MemesChannelID, true)
}

func (f *Feature) move(ctx context.Context, msg *models.Message, destination int64, stripSpeechBubbles bool) (*common.Response, error) {
	if err := f.relocate.Relocate(ctx, msg, destination, stripSpeechBubbles); err != nil {
		return nil, err
	}
	return common.Private(fmt.Sprintf("Relocated message to %s", common.MentionChannel(destination))), nil
}

func fetchError(err error, messageID int64) error {
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return service.NewUserError("Message %d was not found in this channel.", messageID)
	}
	if errors.Is(err, service.ErrForbidden) {
		return service.NewBotPermissionError("The bot cannot read messages in this channel.")
	}
	return fmt.Errorf("failed to fetch message %d: %w", messageID, err)
}
