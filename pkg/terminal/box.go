package terminal

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Heavy box drawing characters.
const (
	BoxHeavyHorizontal  = "━"
	BoxHeavyVertical    = "┃"
	BoxHeavyTopLeft     = "┏"
	BoxHeavyTopRight    = "┓"
	BoxHeavyBottomLeft  = "┗"
	BoxHeavyBottomRight = "┛"
)

// HeaderPadding is the space around header content.
const HeaderPadding = 1

// DrawHeader draws a heavy-bordered banner with title on the left and
// rightText on the right. The banner grows when width is too small.
//
//	┏━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┓
//	┃ TITLE                      rightText ┃
//	┗━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━┛
func DrawHeader(title, rightText string, width int) string {
	titleWidth := runewidth.StringWidth(title)
	rightWidth := runewidth.StringWidth(rightText)

	width = max(width, titleWidth+rightWidth+4+HeaderPadding*2)
	inner := width - 2
	contentWidth := inner - HeaderPadding*2

	content := PadRight(title, contentWidth)
	if rightText != "" {
		gap := max(contentWidth-titleWidth-rightWidth, 1)
		content = title + strings.Repeat(" ", gap) + rightText
	}

	pad := strings.Repeat(" ", HeaderPadding)

	return BoxHeavyTopLeft + strings.Repeat(BoxHeavyHorizontal, inner) + BoxHeavyTopRight + "\n" +
		BoxHeavyVertical + pad + content + pad + BoxHeavyVertical + "\n" +
		BoxHeavyBottomLeft + strings.Repeat(BoxHeavyHorizontal, inner) + BoxHeavyBottomRight
}
