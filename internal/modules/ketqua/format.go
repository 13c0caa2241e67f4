package ketqua

import (
	"fmt"
	"strings"

	"github.com/garyellow/xoso-linebot-go/internal/bot"
	"github.com/garyellow/xoso-linebot-go/internal/lineutil"
	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

// prizeTier describes one row of the XSMB board.
type prizeTier struct {
	key    string
	label  string
	perRow int
}

// Tiers in board order. G1 is a single number; G7 has four two-digit numbers.
var prizeTiers = []prizeTier{
	{"G1", "Giải nhất", 1},
	{"G2", "Giải nhì", 2},
	{"G3", "Giải ba", 3},
	{"G4", "Giải tư", 4},
	{"G5", "Giải năm", 3},
	{"G6", "Giải sáu", 3},
	{"G7", "Giải bảy", 4},
}

// FormatResult renders a draw as plain text.
//
//	🎰 KQ XSMB 25-07-2024 (Thứ năm)
//	ĐB: 12345
//	G1: 54321
//	G2: 11111 - 22222
func FormatResult(r *storage.DrawResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🎰 KQ XSMB %s (%s)", lineutil.FormatDate(r.Date), lineutil.WeekdayName(r.Date))
	sb.WriteString("\nĐB: " + r.Special)
	for _, t := range prizeTiers {
		if nums := r.Prizes[t.key]; len(nums) > 0 {
			sb.WriteString("\n" + t.key + ": " + strings.Join(nums, " - "))
		}
	}
	return sb.String()
}

func buildResultBubble(r *storage.DrawResult) *lineutil.FlexBubble {
	hero := lineutil.NewHeroBox("🎰 XSMB "+lineutil.FormatDate(r.Date), lineutil.FormatDateLong(r.Date))

	special := lineutil.BoldInfoRowStyle()
	special.ValueSize = "xl"
	special.ValueColor = lineutil.ColorSpecial

	body := lineutil.NewBodyContentBuilder().
		AddInfoRow("🏆", "Giải đặc biệt", r.Special, special)
	for _, t := range prizeTiers {
		nums := r.Prizes[t.key]
		if len(nums) == 0 {
			continue
		}
		body.AddComponent(lineutil.NewFlexBox("vertical",
			lineutil.NewFlexText(t.label).WithSize("xs").WithColor(lineutil.ColorLabel).FlexText,
			lineutil.NewNumberGrid(nums, t.perRow, lineutil.BoldInfoRowStyle()).WithMargin("xs").FlexBox,
		).FlexBox)
	}

	prev := &bot.PostbackData{Module: ModuleName, Action: "date", Params: []string{r.Date.AddDate(0, 0, -1).Format(storage.DateLayout)}}
	footer := lineutil.NewButtonFooter(
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewClipboardAction("📋 Sao chép ĐB", r.Special)).
				WithStyle("primary").WithColor(lineutil.ColorButtonPrimary).WithHeight("sm"),
		},
		[]*lineutil.FlexButton{
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("◀ Ngày trước", "Kết quả ngày trước", prev.String())).
				WithStyle("secondary").WithHeight("sm"),
			lineutil.NewFlexButton(lineutil.NewPostbackActionWithDisplayText("📅 Chọn ngày", "Kết quả theo ngày", postbackPrefix+"date")).
				WithStyle("secondary").WithHeight("sm"),
		},
	)

	return lineutil.NewFlexBubble(nil, hero.FlexBox, body.Build(), footer)
}
