package bot

import (
	"slices"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/webhook"
)

// IsBotMentioned reports whether a text message mentions the bot.
// It iterates through all mentionees and checks if any is a UserMentionee with IsSelf == true.
// Returns false if the message has no mentions or the bot is not mentioned.
func IsBotMentioned(textMsg webhook.TextMessageContent) bool {
	if textMsg.Mention == nil || len(textMsg.Mention.Mentionees) == 0 {
		return false
	}

	for _, mentionee := range textMsg.Mention.Mentionees {
		if userMentionee, ok := mentionee.(webhook.UserMentionee); ok {
			if userMentionee.IsSelf {
				return true
			}
		}
	}

	return false
}

// mentionInfo holds the index and length of a mention to be removed.
type mentionInfo struct {
	index  int32
	length int32
}

// RemoveBotMentions removes all bot mentions from the text.
// It uses the Index and Length fields from UserMentionee where IsSelf == true.
// Mentions are removed from back to front to preserve index validity.
// Spaces on each line are normalized; line breaks are kept.
func RemoveBotMentions(text string, mention *webhook.Mention) string {
	if mention == nil || len(mention.Mentionees) == 0 {
		return text
	}

	var botMentions []mentionInfo
	for _, mentionee := range mention.Mentionees {
		if userMentionee, ok := mentionee.(webhook.UserMentionee); ok {
			if userMentionee.IsSelf {
				botMentions = append(botMentions, mentionInfo{
					index:  userMentionee.Index,
					length: userMentionee.Length,
				})
			}
		}
	}

	if len(botMentions) == 0 {
		return text
	}

	// Sort by index descending to remove from back to front
	slices.SortFunc(botMentions, func(a, b mentionInfo) int {
		return int(b.index - a.index)
	})

	// LINE mention indexes count characters, not bytes.
	runes := []rune(text)

	for _, m := range botMentions {
		startIdx := int(m.index)
		endIdx := int(m.index + m.length)

		if startIdx < 0 {
			startIdx = 0
		}
		if endIdx > len(runes) {
			endIdx = len(runes)
		}
		if startIdx >= endIdx || startIdx >= len(runes) {
			continue
		}

		runes = append(runes[:startIdx], runes[endIdx:]...)
	}

	// Line breaks separate a command header from its body, so only spaces
	// around the removed mention are collapsed.
	lines := strings.Split(string(runes), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
