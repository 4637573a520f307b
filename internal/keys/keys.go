// Package keys defines the key bindings of the range selector host.
package keys

import "github.com/charmbracelet/bubbles/key"

// HostKeys are the bindings handled by the host program. The range itself
// is edited with the mouse only.
type HostKeys struct {
	Quit key.Binding
}

// Host is the binding set used by the range selector program.
var Host = HostKeys{
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c", "esc"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp returns the bindings shown in the footer.
func (k HostKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}
