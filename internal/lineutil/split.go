package lineutil

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// TruncatedNote closes the last message when output did not fit in one reply.
const TruncatedNote = "… (kết quả quá dài, đã rút gọn)"

// SplitText cuts text into chunks of at most maxRunes runes, breaking on line
// boundaries. A single line longer than maxRunes is cut mid-line.
func SplitText(text string, maxRunes int) []string {
	if text == "" {
		return nil
	}
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
	)
	flush := func() {
		if curLen > 0 {
			chunks = append(chunks, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for line := range strings.SplitSeq(text, "\n") {
		for utf8.RuneCountInString(line) > maxRunes {
			flush()
			runes := []rune(line)
			chunks = append(chunks, string(runes[:maxRunes]))
			line = string(runes[maxRunes:])
		}

		n := utf8.RuneCountInString(line)
		sep := 0
		if curLen > 0 {
			sep = 1
		}
		if curLen+sep+n > maxRunes {
			flush()
			sep = 0
		}
		if sep == 1 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
		curLen += sep + n
	}
	flush()

	return chunks
}

// NewTextMessages splits text across at most maxMessages text messages. When the
// text does not fit, the last message ends with TruncatedNote.
func NewTextMessages(text string, sender *messaging_api.Sender, maxMessages int) []messaging_api.MessageInterface {
	if maxMessages <= 0 || maxMessages > MaxMessagesPerReply {
		maxMessages = MaxMessagesPerReply
	}

	chunks := SplitText(text, TextSafeBuffer)
	if len(chunks) > maxMessages {
		chunks = chunks[:maxMessages]
		chunks[maxMessages-1] += "\n" + TruncatedNote
	}

	messages := make([]messaging_api.MessageInterface, 0, len(chunks))
	for _, chunk := range chunks {
		messages = append(messages, NewTextMessageWithConsistentSender(chunk, sender))
	}
	return messages
}

// HiddenNote tells the user how many results were left out of a capped list.
func HiddenNote(hidden int) string {
	return fmt.Sprintf("… và %d kết quả khác không hiển thị", hidden)
}
