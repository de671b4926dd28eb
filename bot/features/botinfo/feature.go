package botinfo

import (
	_ "embed"
	"strings"

	"github.com/arm32x/bobux-economy/bot/common"
	"github.com/bwmarrin/discordgo"
)

//go:embed changelog.txt
var changelog string

// ChangelogURL links the full changelog from /changelog
const ChangelogURL = "https://github.com/arm32x/bobux-economy/blob/master/bot/features/botinfo/changelog.txt"

// changelogPageSize keeps the /changelog reply under Discord's message limit
const changelogPageSize = 1900

type Feature struct {
	changelog string
}

func New() *Feature {
	return &Feature{changelog: changelog}
}

// Commands returns /version and /changelog
func (f *Feature) Commands() []common.Command {
	return []common.Command{
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "version",
				Description: "Check the version of the bot",
			},
			Handle: common.Static(f.Version()),
		},
		{
			Definition: &discordgo.ApplicationCommand{
				Name:        "changelog",
				Description: "Show the changelog of the bot",
			},
			Handle: common.Static(f.Changelog()),
		},
	}
}

// Version is the first line of the changelog
func (f *Feature) Version() string {
	first, _, _ := strings.Cut(strings.TrimSpace(f.changelog), "\n")
	return strings.TrimSpace(first)
}

// Changelog is as many whole entries as fit in one message
func (f *Feature) Changelog() string {
	var page strings.Builder
	for _, entry := range strings.Split(strings.TrimSpace(f.changelog), "\n\n") {
		if page.Len()+len(entry)+8 > changelogPageSize {
			break
		}
		page.WriteString("\n\n")
		page.WriteString(entry)
	}
	return "```" + page.String() + "```\nFull changelog at <" + ChangelogURL + ">"
}
