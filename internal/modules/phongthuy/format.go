package phongthuy

import (
	"fmt"
	"strings"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"

	"github.com/garyellow/xoso-linebot-go/internal/canchi"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/lotto"
)

// Disclaimer closes every chốt số reply.
const Disclaimer = "⚠️ Chỉ mang tính tham khảo, không phải khuyến nghị tài chính."

// pairsPerRow lays the lucky pairs out four to a row on the card.
const pairsPerRow = 4

// FormatReading renders a reading as plain text.
//
//	🔮 Phong thủy ngày 25-07-2024 (Thứ năm)
//	Can chi: Canh Dần (27/60)
//	Ngũ hành: Kim, được Thổ sinh
//	Số hạp: 0, 4, 5, 9
//	Cặp số hạp: 00, 04, ...
//	Số chi: 02
func FormatReading(r canchi.Reading) string {
	var sb strings.Builder
	sb.WriteString(readingTitle(r))
	fmt.Fprintf(&sb, "\nCan chi: %s (%d/60)", r.CanChi, r.CanChi.CycleIndex()+1)
	fmt.Fprintf(&sb, "\nNgũ hành: %s, được %s sinh", r.Element, r.Supporting)
	sb.WriteString("\nSố hạp: " + strings.Join(r.LuckyDigits, ", "))
	sb.WriteString("\nCặp số hạp: " + lotto.FormatChunks(r.LuckyPairs, 0))
	sb.WriteString("\nSố chi: " + r.BranchNo)
	return sb.String()
}

// FormatDailyPick renders the day's suggestion as plain text.
func FormatDailyPick(p canchi.DailyPick) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📌 Chốt số ngày %s (%s)", lineutil.FormatDate(p.Date), lineutil.WeekdayName(p.Date))
	fmt.Fprintf(&sb, "\nCan chi: %s, hành %s", p.CanChi, p.Element)
	sb.WriteString("\nBạch thủ: " + p.Primary)
	sb.WriteString("\nSong thủ: " + p.Pair[0] + " - " + p.Pair[1])
	sb.WriteString("\nDàn số hạp: " + lotto.FormatChunks(p.LuckyPairs, 0))
	sb.WriteString("\n" + Disclaimer)
	return sb.String()
}

func readingTitle(r canchi.Reading) string {
	if r.Date.IsZero() {
		return "🔮 Phong thủy can chi " + r.CanChi.String()
	}
	return fmt.Sprintf("🔮 Phong thủy ngày %s (%s)", lineutil.FormatDate(r.Date), lineutil.WeekdayName(r.Date))
}

// buildReadingBubble lays a reading out as a card; the plain text doubles as
// alt text.
func buildReadingBubble(r canchi.Reading) *lineutil.FlexBubble {
	subtitle := ""
	if !r.Date.IsZero() {
		subtitle = lineutil.FormatDateLong(r.Date)
	}
	hero := lineutil.NewHeroBox("🔮 "+r.CanChi.String(), subtitle)

	body := lineutil.NewBodyContentBuilder().
		AddInfoRow("☯️", "Ngũ hành", fmt.Sprintf("%s, được %s sinh", r.Element, r.Supporting), lineutil.DefaultInfoRowStyle()).
		AddInfoRow("🔢", "Số hạp", strings.Join(r.LuckyDigits, "  "), lineutil.BoldInfoRowStyle()).
		AddComponent(lineutil.NewFlexBox("vertical",
			lineutil.NewHeaderBadge("🎯", "Cặp số hạp").FlexBox,
			lineutil.NewNumberGrid(r.LuckyPairs, pairsPerRow, lineutil.BoldInfoRowStyle()).WithMargin("sm").FlexBox,
		).FlexBox).
		AddInfoRow("🐉", "Số chi", r.BranchNo, lineutil.DefaultInfoRowStyle())

	footer := lineutil.NewButtonFooter(
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewClipboardAction("📋 Sao chép cặp số", strings.Join(r.LuckyPairs, " "))).
				WithStyle("primary").WithColor(lineutil.ColorButtonPrimary).WithHeight("sm"),
		},
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("🔮 Tra ngày khác", "Phong thủy số", lineutil.PostbackPhongThuy)).
				WithStyle("secondary").WithHeight("sm"),
		},
	)

	return lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), footer)
}

func buildDailyPickBubble(p canchi.DailyPick) *lineutil.FlexBubble {
	hero := lineutil.NewHeroBox("📌 Chốt số hôm nay", lineutil.FormatDateLong(p.Date)+" · "+p.CanChi.String())

	special := lineutil.BoldInfoRowStyle()
	special.ValueColor = lineutil.ColorSpecial

	body := lineutil.NewBodyContentBuilder().
		AddInfoRow("🥇", "Bạch thủ", p.Primary, special).
		AddInfoRow("🥈", "Song thủ", p.Pair[0]+" - "+p.Pair[1], lineutil.BoldInfoRowStyle()).
		AddComponent(lineutil.NewFlexBox("vertical",
			lineutil.NewHeaderBadge("🎯", "Dàn số hạp").FlexBox,
			lineutil.NewNumberGrid(p.LuckyPairs, pairsPerRow, lineutil.DefaultInfoRowStyle()).WithMargin("sm").FlexBox,
		).FlexBox).
		AddComponent(lineutil.NewFlexText(Disclaimer).WithSize("xxs").WithColor(lineutil.ColorSubtext).WithWrap(true).FlexText)

	footer := lineutil.NewButtonFooter([]*lineutil.FlexButton{
		lineutil.NewFlexButton(lineutil.NewClipboardAction("📋 Sao chép", p.Pair[0]+" "+p.Pair[1])).
			WithStyle("primary").WithColor(lineutil.ColorButtonPrimary).WithHeight("sm"),
	})

	return lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), footer)
}

func newCardMessage(altText string, bubble *lineutil.FlexBubble, sender *messaging_api.Sender, items ...lineutil.QuickReplyItem) messaging_api.MessageInterface {
	return lineutil.NewFlexMessageWithQuickReply(altText, bubble.FlexBubble, sender, items...)
}
