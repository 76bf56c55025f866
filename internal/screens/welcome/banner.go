package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/toeicpractice/toeic/internal/ui/theme"
)

const bannerArt = `
 ████████╗ ██████╗ ███████╗██╗ ██████╗
 ╚══██╔══╝██╔═══██╗██╔════╝██║██╔════╝
    ██║   ██║   ██║█████╗  ██║██║
    ██║   ██║   ██║██╔══╝  ██║██║
    ██║   ╚██████╔╝███████╗██║╚██████╗
    ╚═╝    ╚═════╝ ╚══════╝╚═╝ ╚═════╝`

const bannerCompact = "T O E I C"

// RenderBanner returns the TOEIC banner in the brand color. Terminals
// narrower than 42 columns get a compact fallback.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < 42 {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
