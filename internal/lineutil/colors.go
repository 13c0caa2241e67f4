// Package lineutil provides LINE message building utilities.
package lineutil

// Spacing on a 4px grid.
const (
	SpacingNone = "none"
	SpacingXS   = "4px"
	SpacingS    = "8px"
	SpacingM    = "12px"
	SpacingL    = "16px"
	SpacingXL   = "20px"
	SpacingXXL  = "24px"

	LineSpacingNormal = "6px"
	LineSpacingLarge  = "8px"
)

// Palette. The hero uses the lottery-ticket red, the special prize is gold.
const (
	ColorLineGreen = "#06C755"
	ColorRed600    = "#D0021B"
	ColorRed400    = "#FF334B"
	ColorGold500   = "#C99A06"
	ColorWhite     = "#FFFFFF"
	ColorGray300   = "#DFDFDF"
	ColorGray600   = "#777777"
	ColorGray900   = "#111111"

	ColorPrimary   = ColorRed600
	ColorSecondary = ColorLineGreen
	ColorDanger    = ColorRed400

	ColorText    = ColorGray900
	ColorLabel   = "#666666" // 5.7:1 on white
	ColorSubtext = ColorGray600
	ColorSpecial = ColorGold500

	ColorHeroBg          = ColorPrimary
	ColorHeroText        = ColorWhite
	ColorSeparator       = ColorGray300
	ColorButtonPrimary   = ColorPrimary
	ColorButtonSecondary = ColorSecondary
)
