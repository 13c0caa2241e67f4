package lineutil

import (
	"slices"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
)

// FlexBubble wraps messaging_api.FlexBubble.
type FlexBubble struct {
	*messaging_api.FlexBubble
}

// NewFlexBubble assembles a bubble. Any of the parts may be nil.
func NewFlexBubble(header *FlexBox, hero messaging_api.FlexComponentInterface, body *FlexBox, footer *FlexBox) *FlexBubble {
	b := &messaging_api.FlexBubble{Hero: hero}
	if header != nil {
		b.Header = header.FlexBox
	}
	if body != nil {
		b.Body = body.FlexBox
	}
	if footer != nil {
		b.Footer = footer.FlexBox
	}
	return &FlexBubble{b}
}

// FlexBox wraps messaging_api.FlexBox with chainable setters.
type FlexBox struct {
	*messaging_api.FlexBox
}

// NewFlexBox returns a box with the given layout ("vertical", "horizontal", "baseline").
func NewFlexBox(layout string, contents ...messaging_api.FlexComponentInterface) *FlexBox {
	if contents == nil {
		// LINE wants "contents": [] even for filler boxes.
		contents = []messaging_api.FlexComponentInterface{}
	}
	return &FlexBox{&messaging_api.FlexBox{
		Layout:   messaging_api.FlexBoxLAYOUT(layout),
		Contents: contents,
	}}
}

// WithSpacing sets the gap between children.
func (b *FlexBox) WithSpacing(spacing string) *FlexBox {
	b.Spacing = spacing
	return b
}

// WithMargin sets the space before the component.
func (b *FlexBox) WithMargin(margin string) *FlexBox {
	b.Margin = margin
	return b
}

// WithBackgroundColor sets the box fill.
func (b *FlexBox) WithBackgroundColor(c string) *FlexBox {
	b.BackgroundColor = c
	return b
}

// WithCornerRadius rounds the box corners.
func (b *FlexBox) WithCornerRadius(r string) *FlexBox {
	b.CornerRadius = r
	return b
}

// grow makes the box share free space equally with its siblings.
func (b *FlexBox) grow() *FlexBox {
	b.Flex = 1
	return b
}

// FlexText wraps messaging_api.FlexText with chainable setters.
type FlexText struct {
	*messaging_api.FlexText
}

// NewFlexText returns a text component. LINE rejects empty text.
func NewFlexText(text string) *FlexText {
	return &FlexText{&messaging_api.FlexText{Text: text}}
}

// WithWeight sets "regular" or "bold".
func (t *FlexText) WithWeight(w string) *FlexText {
	t.Weight = messaging_api.FlexTextWEIGHT(w)
	return t
}

// WithSize sets the font size keyword.
func (t *FlexText) WithSize(size string) *FlexText {
	t.Size = size
	return t
}

// WithColor sets the foreground color.
func (t *FlexText) WithColor(color string) *FlexText {
	t.Color = color
	return t
}

// WithWrap lets long text wrap.
func (t *FlexText) WithWrap(wrap bool) *FlexText {
	t.Wrap = wrap
	return t
}

// WithAlign sets "start", "center" or "end".
func (t *FlexText) WithAlign(a string) *FlexText {
	t.Align = messaging_api.FlexTextALIGN(a)
	return t
}

// WithMargin sets the space before the component.
func (t *FlexText) WithMargin(margin string) *FlexText {
	t.Margin = margin
	return t
}

// WithLineSpacing sets the line height.
func (t *FlexText) WithLineSpacing(s string) *FlexText {
	t.LineSpacing = s
	return t
}

// WithFlex sets the flex factor; only 0 (natural width) and 1 (equal share) are used.
func (t *FlexText) WithFlex(flex int32) *FlexText {
	t.Flex = max(flex, 0)
	return t
}

// FlexButton wraps messaging_api.FlexButton with chainable setters.
type FlexButton struct {
	*messaging_api.FlexButton
}

// NewFlexButton returns a button for action.
func NewFlexButton(action messaging_api.ActionInterface) *FlexButton {
	return &FlexButton{&messaging_api.FlexButton{Action: action}}
}

// WithStyle sets "primary", "secondary" or "link".
func (b *FlexButton) WithStyle(s string) *FlexButton {
	b.Style = messaging_api.FlexButtonSTYLE(s)
	return b
}

func (b *FlexButton) WithColor(color string) *FlexButton {
	b.Color = color
	return b
}

// WithHeight sets "sm" or "md".
func (b *FlexButton) WithHeight(h string) *FlexButton {
	b.Height = messaging_api.FlexButtonHEIGHT(h)
	return b
}

func (b *FlexButton) WithMargin(m string) *FlexButton {
	b.Margin = m
	return b
}

func separator() *messaging_api.FlexSeparator {
	return &messaging_api.FlexSeparator{Margin: "sm"}
}

// TruncateRunes cuts text to maxRunes runes, ending in "..." when there is room.
func TruncateRunes(text string, maxRunes int) string {
	runes := []rune(text)
	switch {
	case len(runes) <= maxRunes:
		return text
	case maxRunes <= 3:
		return string(runes[:maxRunes])
	default:
		return string(runes[:maxRunes-3]) + "..."
	}
}

// NewHeroBox is the red title block on top of every card. An empty subtitle
// is left out.
func NewHeroBox(title, subtitle string) *FlexBox {
	box := NewFlexBox("vertical",
		NewFlexText(title).WithWeight("bold").WithSize("xl").WithColor(ColorHeroText).
			WithWrap(true).WithLineSpacing(LineSpacingLarge).FlexText,
	)
	if subtitle != "" {
		box.Contents = append(box.Contents,
			NewFlexText(subtitle).WithSize("xs").WithColor(ColorHeroText).WithMargin("md").WithWrap(true).FlexText)
	}
	box.BackgroundColor = ColorHeroBg
	box.PaddingAll = SpacingXXL
	box.PaddingBottom = SpacingXL
	return box
}

// NewHeaderBadge renders "emoji label" as a small section heading.
func NewHeaderBadge(emoji, label string) *FlexBox {
	return NewFlexBox("vertical",
		NewFlexBox("baseline",
			NewFlexText(emoji).WithSize("lg").FlexText,
			NewFlexText(label).WithWeight("bold").WithColor(ColorPrimary).WithSize("sm").WithMargin("sm").FlexText,
		).FlexBox,
	)
}

// InfoRowStyle controls how the value of an info row or number grid is drawn.
type InfoRowStyle struct {
	ValueSize   string
	ValueWeight string
	ValueColor  string
	Wrap        bool
}

// DefaultInfoRowStyle is small regular text that wraps.
func DefaultInfoRowStyle() InfoRowStyle {
	return InfoRowStyle{ValueSize: "sm", ValueWeight: "regular", ValueColor: ColorText, Wrap: true}
}

// BoldInfoRowStyle is used for prize numbers.
func BoldInfoRowStyle() InfoRowStyle {
	return InfoRowStyle{ValueSize: "md", ValueWeight: "bold", ValueColor: ColorText}
}

func (s InfoRowStyle) text(value string) *FlexText {
	t := NewFlexText(value).WithSize(s.ValueSize).WithColor(s.ValueColor)
	if s.ValueWeight == "bold" {
		t.WithWeight("bold")
	}
	return t
}

// infoRow stacks "emoji label" over the value:
//
//	🏆 Giải đặc biệt
//	12345
func infoRow(emoji, label, value string, style InfoRowStyle) *FlexBox {
	v := style.text(value).WithMargin("sm")
	if style.Wrap {
		v.WithWrap(true).WithLineSpacing(SpacingXS)
	}
	return NewFlexBox("vertical",
		NewFlexBox("horizontal",
			NewFlexText(emoji).WithSize("sm").WithFlex(0).FlexText,
			NewFlexText(label).WithColor(ColorLabel).WithSize("xs").WithFlex(0).WithMargin("sm").FlexText,
		).WithSpacing("sm").FlexBox,
		v.FlexText,
	).WithMargin("sm")
}

// NewButtonFooter stacks rows of equal-width buttons. Nil buttons are
// skipped and rows left empty are dropped.
func NewButtonFooter(rows ...[]*FlexButton) *FlexBox {
	footer := NewFlexBox("vertical").WithSpacing("sm")
	for _, row := range rows {
		var cells []messaging_api.FlexComponentInterface
		for _, btn := range row {
			if btn != nil {
				cells = append(cells, NewFlexBox("vertical", btn.FlexButton).grow().FlexBox)
			}
		}
		if len(cells) > 0 {
			footer.Contents = append(footer.Contents, NewFlexBox("horizontal", cells...).WithSpacing("sm").FlexBox)
		}
	}
	return footer
}

// BodyContentBuilder collects body components, putting a separator between
// consecutive ones.
type BodyContentBuilder struct {
	contents []messaging_api.FlexComponentInterface
}

// NewBodyContentBuilder returns an empty builder.
func NewBodyContentBuilder() *BodyContentBuilder {
	return &BodyContentBuilder{}
}

// AddInfoRow appends an "emoji label / value" row.
func (b *BodyContentBuilder) AddInfoRow(emoji, label, value string, style InfoRowStyle) *BodyContentBuilder {
	return b.AddComponent(infoRow(emoji, label, value, style).FlexBox)
}

// AddComponent appends any component.
func (b *BodyContentBuilder) AddComponent(component messaging_api.FlexComponentInterface) *BodyContentBuilder {
	if len(b.contents) > 0 {
		b.contents = append(b.contents, separator())
	}
	b.contents = append(b.contents, component)
	return b
}

// Build wraps the collected components in a vertical box.
func (b *BodyContentBuilder) Build() *FlexBox {
	return NewFlexBox("vertical", b.contents...).WithSpacing("sm")
}

// Contents returns the collected components.
func (b *BodyContentBuilder) Contents() []messaging_api.FlexComponentInterface {
	return b.contents
}

// NewNumberGrid lays numbers out in rows of perRow equal-width cells. The
// last row is padded with empty boxes so the columns line up.
func NewNumberGrid(numbers []string, perRow int, style InfoRowStyle) *FlexBox {
	perRow = max(perRow, 1)
	grid := NewFlexBox("vertical").WithSpacing("xs")
	for row := range slices.Chunk(numbers, perRow) {
		cells := make([]messaging_api.FlexComponentInterface, 0, perRow)
		for _, n := range row {
			cells = append(cells, style.text(n).WithAlign("center").WithFlex(1).FlexText)
		}
		for range perRow - len(row) {
			cells = append(cells, NewFlexBox("vertical").grow().FlexBox)
		}
		grid.Contents = append(grid.Contents, NewFlexBox("horizontal", cells...).WithSpacing("sm").FlexBox)
	}
	return grid
}
