// Package slider implements the dual-handle range slider: a track with a
// filled segment between two draggable handles and a value label row.
package slider

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/rangeslider/internal/formatter"
	"github.com/zjrosen/rangeslider/internal/rangemap"
	"github.com/zjrosen/rangeslider/internal/theme"
)

// Height is the number of rows the slider occupies: the track and the labels.
const Height = 2

const (
	trackGlyph  = "─"
	fillGlyph   = "━"
	handleGlyph = "●"
)

// Handle identifies one of the two slider handles.
type Handle int

const (
	HandleNone Handle = iota
	HandleStart
	HandleEnd
)

// String returns the handle name.
func (h Handle) String() string {
	switch h {
	case HandleStart:
		return "start"
	case HandleEnd:
		return "end"
	default:
		return "none"
	}
}

// Props is the per-render snapshot supplied by the owner.
type Props struct {
	Domain    rangemap.Domain
	Selection rangemap.Selection
	Styles    theme.Styles
	Format    func(float64) string

	// OnChange receives the full proposed pair on every drag motion. The
	// handle that is not being dragged keeps its current value.
	OnChange func(start, end float64)
}

// dragGuard scopes a handle drag from press to release. Every way out of a
// drag goes through release, which is safe to call repeatedly.
type dragGuard struct {
	handle Handle
}

func (g *dragGuard) acquire(h Handle) bool {
	if g.handle != HandleNone || h == HandleNone {
		return false
	}
	g.handle = h
	return true
}

func (g *dragGuard) release() {
	g.handle = HandleNone
}

func (g dragGuard) held() Handle {
	return g.handle
}

// Model holds the interaction state of the slider.
type Model struct {
	props Props

	x, y  int
	width int

	guard   dragGuard
	hovered Handle
}

// New creates a slider with no handle held.
func New() Model {
	return Model{}
}

// SetProps replaces the render snapshot.
func (m Model) SetProps(p Props) Model {
	m.props = p
	return m
}

// SetBounds places the slider on screen. The track spans width columns.
func (m Model) SetBounds(x, y, width int) Model {
	m.x, m.y = x, y
	m.width = width
	return m
}

// Dragging returns the handle currently held, if any.
func (m Model) Dragging() (Handle, bool) {
	h := m.guard.held()
	return h, h != HandleNone
}

// Hovered returns the handle under the pointer.
func (m Model) Hovered() Handle {
	return m.hovered
}

// Unmount releases any held drag and clears hover.
func (m Model) Unmount() Model {
	m.guard.release()
	m.hovered = HandleNone
	return m
}

// Contains reports whether the screen cell (x, y) is inside the slider.
func (m Model) Contains(x, y int) bool {
	return x >= m.x && x < m.x+m.trackWidth() &&
		y >= m.y && y < m.y+Height
}

// Update handles mouse input. Every mouse message should be forwarded so
// that leaving the slider releases the drag.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok {
		return m, nil
	}
	onTrack := mouse.Y == m.y && mouse.X >= m.x && mouse.X < m.x+m.trackWidth()

	switch mouse.Action {
	case tea.MouseActionPress:
		if mouse.Button != tea.MouseButtonLeft || !onTrack {
			return m, nil
		}
		if h := m.handleAt(mouse.X); m.guard.acquire(h) {
			m.hovered = h
		}

	case tea.MouseActionMotion:
		if !m.Contains(mouse.X, mouse.Y) {
			return m.Unmount(), nil
		}
		if h := m.guard.held(); h != HandleNone {
			m.drag(h, mouse.X)
			return m, nil
		}
		m.hovered = HandleNone
		if onTrack {
			m.hovered = m.handleAt(mouse.X)
		}

	case tea.MouseActionRelease:
		m.guard.release()
	}

	return m, nil
}

// drag proposes a new pair for handle h with the pointer at screen column x.
// Nothing is reported when the pair is unchanged.
func (m Model) drag(h Handle, x int) {
	if m.props.OnChange == nil {
		return
	}
	d := m.props.Domain
	sel := m.props.Selection
	pct := rangemap.PercentFromOffset(float64(x-m.x), float64(m.trackWidth()-1))
	v := d.PercentToValue(pct)

	next := sel
	switch h {
	case HandleStart:
		next.Start = d.DragStart(v, sel.End)
	case HandleEnd:
		next.End = d.DragEnd(v, sel.Start)
	default:
		return
	}
	if next == sel {
		return
	}
	m.props.OnChange(next.Start, next.End)
}

func (m Model) trackWidth() int {
	return max(m.width, 2)
}

// column maps a value to its track column.
func (m Model) column(v float64) int {
	p := math.Max(0, math.Min(100, m.props.Domain.ValueToPercent(v)))
	return int(math.Round(p / 100 * float64(m.trackWidth()-1)))
}

// handleAt returns the handle drawn at screen column x. When both handles
// share a column the one that can still move inward wins.
func (m Model) handleAt(x int) Handle {
	col := x - m.x
	s, e := m.column(m.props.Selection.Start), m.column(m.props.Selection.End)
	switch {
	case col == s && col == e:
		if e >= m.trackWidth()-1 {
			return HandleStart
		}
		return HandleEnd
	case col == s:
		return HandleStart
	case col == e:
		return HandleEnd
	}
	return HandleNone
}

// View draws the track row and the value label row.
func (m Model) View() string {
	return m.trackView() + "\n" + m.labelView()
}

func (m Model) trackView() string {
	st := m.props.Styles
	w := m.trackWidth()
	s, e := m.column(m.props.Selection.Start), m.column(m.props.Selection.End)

	handle := func(h Handle) string {
		if held, _ := m.Dragging(); held == h || m.hovered == h {
			return st.HandleActive.Render(handleGlyph)
		}
		return st.Handle.Render(handleGlyph)
	}
	repeat := func(style lipgloss.Style, glyph string, n int) string {
		if n <= 0 {
			return ""
		}
		return style.Render(strings.Repeat(glyph, n))
	}

	var b strings.Builder
	b.WriteString(repeat(st.Track, trackGlyph, s))
	if s == e {
		b.WriteString(handle(m.handleAt(m.x + s)))
	} else {
		b.WriteString(handle(HandleStart))
		b.WriteString(repeat(st.Fill, fillGlyph, e-s-1))
		b.WriteString(handle(HandleEnd))
	}
	b.WriteString(repeat(st.Track, trackGlyph, w-1-e))
	return b.String()
}

func (m Model) labelView() string {
	format := m.props.Format
	if format == nil {
		format = formatter.Default
	}
	st := m.props.Styles
	left := st.Value.Render(format(m.props.Selection.Start))
	right := st.Value.Render(format(m.props.Selection.End))
	pad := max(1, m.trackWidth()-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", pad) + right
}
