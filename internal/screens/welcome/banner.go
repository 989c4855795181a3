package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/neuroveil/internal/ui/theme"
)

const bannerArt = `███╗   ██╗███████╗██╗   ██╗██████╗  ██████╗ ██╗   ██╗███████╗██╗██╗
████╗  ██║██╔════╝██║   ██║██╔══██╗██╔═══██╗██║   ██║██╔════╝██║██║
██╔██╗ ██║█████╗  ██║   ██║██████╔╝██║   ██║██║   ██║█████╗  ██║██║
██║╚██╗██║██╔══╝  ██║   ██║██╔══██╗██║   ██║╚██╗ ██╔╝██╔══╝  ██║██║
██║ ╚████║███████╗╚██████╔╝██║  ██║╚██████╔╝ ╚████╔╝ ███████╗██║███████╗
╚═╝  ╚═══╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝ ╚═════╝   ╚═══╝  ╚══════╝╚═╝╚══════╝`

const bannerCompact = "N E U R O V E I L"

// bannerMinWidth is the narrowest terminal that fits the block banner.
const bannerMinWidth = 80

// RenderBanner returns the NEUROVEIL banner in glyph teal. Terminals
// narrower than bannerMinWidth get the spaced-letter form.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
