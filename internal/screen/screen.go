// Package screen is the contract between the router and each view.
package screen

import (
	tea "charm.land/bubbletea/v2"

	"github.com/toeicpractice/toeic/internal/ui/layout"
)

// Screen is one view on the router's stack.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the body between the header and the footer.
	View(width, height int) string

	// Title is shown in the header. Empty hides it.
	Title() string
}

// KeyHintProvider replaces the default footer hints.
type KeyHintProvider interface {
	KeyHints() []layout.KeyHint
}

// Busy is implemented by screens that wait on the practice API. The header
// carries a loading marker while Busy reports true.
type Busy interface {
	Busy() bool
}

// IsBusy reports whether s implements Busy and is waiting.
func IsBusy(s Screen) bool {
	b, ok := s.(Busy)
	return ok && b.Busy()
}
