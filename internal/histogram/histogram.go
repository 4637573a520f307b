// Package histogram renders the bucket distribution behind the range slider
// and lets the user select a range by sweeping across bars.
//
// The model is a value type in the Bubble Tea style. It receives a Props
// snapshot from the composition root and reports proposed selections through
// Props.OnSelect; it never owns the selection itself.
package histogram

import (
	"math"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/rangeslider/internal/bucket"
	"github.com/zjrosen/rangeslider/internal/formatter"
	"github.com/zjrosen/rangeslider/internal/rangemap"
	"github.com/zjrosen/rangeslider/internal/theme"
)

// none marks an absent hover or anchor.
const none = -1

var (
	lowerBlocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	zeroGlyph   = '▁'
)

// Props is the per-render snapshot supplied by the owner.
type Props struct {
	Buckets      []bucket.Bucket
	Selection    rangemap.Selection
	Scale        Scale
	ShowNegative bool
	Min          float64
	Max          float64
	Styles       theme.Styles
	Format       func(float64) string

	// OnSelect receives [start, end] every time a sweep crosses a bar.
	OnSelect func(start, end float64)
}

// Model holds the interaction state of the histogram.
type Model struct {
	props Props

	// Screen bounds of the bar area
	x, y          int
	width, height int

	hovered  int // position in props.Buckets
	anchor   int // bucket index where the sweep began
	dragging bool
}

// New creates an empty histogram.
func New() Model {
	return Model{hovered: none, anchor: none}
}

// SetProps replaces the render snapshot.
func (m Model) SetProps(p Props) Model {
	m.props = p
	if m.hovered >= len(p.Buckets) {
		m.hovered = none
	}
	return m
}

// SetBounds places the bar area on screen.
func (m Model) SetBounds(x, y, width, height int) Model {
	m.x, m.y = x, y
	m.width, m.height = width, height
	return m
}

// Empty reports whether there is nothing to draw.
func (m Model) Empty() bool {
	return len(m.props.Buckets) == 0
}

// Bars returns the computed layout for the current props.
func (m Model) Bars() []Bar {
	return Layout(m.props)
}

// Hovered returns the position of the bar under the pointer.
func (m Model) Hovered() (int, bool) {
	return m.hovered, m.hovered != none
}

// Anchor returns the bucket index where the current sweep started.
func (m Model) Anchor() (int, bool) {
	return m.anchor, m.anchor != none
}

// Dragging reports whether a sweep is in progress.
func (m Model) Dragging() bool {
	return m.dragging
}

// Contains reports whether the screen cell (x, y) is inside the bar area.
func (m Model) Contains(x, y int) bool {
	return !m.Empty() &&
		x >= m.x && x < m.x+m.columns() &&
		y >= m.y && y < m.y+m.height
}

// Update handles mouse input. Every mouse message should be forwarded, not
// only those inside the bounds, so that leaving the area ends a sweep.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mouse, ok := msg.(tea.MouseMsg)
	if !ok || m.Empty() {
		return m, nil
	}

	inside := m.Contains(mouse.X, mouse.Y)

	switch mouse.Action {
	case tea.MouseActionPress:
		if mouse.Button != tea.MouseButtonLeft || !inside {
			return m, nil
		}
		i := m.barAt(mouse.X)
		m.hovered = i
		m.anchor = m.props.Buckets[i].Index
		m.dragging = true

	case tea.MouseActionMotion:
		if !inside {
			return m.leave(), nil
		}
		if i := m.barAt(mouse.X); i != m.hovered {
			m.hovered = i
			if m.dragging {
				m.sweep(i)
			}
		}

	case tea.MouseActionRelease:
		if inside {
			i := m.barAt(mouse.X)
			m.hovered = i
			if m.dragging {
				m.sweep(i)
			}
		}
		m.dragging = false
		m.anchor = none
	}

	return m, nil
}

// leave clears hover and abandons any sweep without reporting.
func (m Model) leave() Model {
	m.hovered = none
	m.dragging = false
	m.anchor = none
	return m
}

// sweep reports the range from the anchor bucket to the bucket at position i.
func (m Model) sweep(i int) {
	if m.anchor == none || m.props.OnSelect == nil {
		return
	}
	data := m.props.Buckets
	target := data[i].Index
	lo, hi := min(m.anchor, target), max(m.anchor, target)
	if lo < 0 || hi >= len(data) {
		return
	}
	m.props.OnSelect(data[lo].Min, data[hi].Max)
}

// columns is the drawn width. Each bar gets at least one column.
func (m Model) columns() int {
	return max(m.width, len(m.props.Buckets))
}

// span returns the column range [start, end) for the bar at position i.
func (m Model) span(i int) (int, int) {
	n, cols := len(m.props.Buckets), m.columns()
	return i * cols / n, (i + 1) * cols / n
}

// barAt maps a screen column to a bar position.
func (m Model) barAt(x int) int {
	n, cols := len(m.props.Buckets), m.columns()
	col := min(max(x-m.x, 0), cols-1)
	i := col * n / cols
	for i+1 < n {
		if start, _ := m.span(i + 1); start > col {
			break
		}
		i++
	}
	for i > 0 {
		if start, _ := m.span(i); start <= col {
			break
		}
		i--
	}
	return i
}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellBar
	cellBarDimmed
	cellZero
	cellTooltip
)

type cell struct {
	r    rune
	kind cellKind
}

// View draws the bars, the zero line and the hover tooltip.
func (m Model) View() string {
	if m.Empty() || m.height <= 0 {
		return ""
	}

	rows, cols := m.height, m.columns()
	grid := make([][]cell, rows)
	for r := range grid {
		grid[r] = make([]cell, cols)
		for c := range grid[r] {
			grid[r][c] = cell{r: ' '}
		}
	}

	bars := m.Bars()
	baseline := ZeroBaseline(m.props.ShowNegative, m.props.Min, m.props.Max)
	base := int(math.Round(baseline / 100 * float64(rows)))

	for i, bar := range bars {
		c0, c1 := m.span(i)
		if c1-c0 >= 3 {
			c1-- // gap between wide bars
		}
		kind := cellBar
		if bar.Opacity < OpacityActive {
			kind = cellBarDimmed
		}
		glyphs := column(bar, base, rows)
		for level, g := range glyphs {
			if g == ' ' {
				continue
			}
			row := rows - 1 - level
			for c := c0; c < c1; c++ {
				grid[row][c] = cell{r: g, kind: kind}
			}
		}
	}

	if baseline > 0 && baseline < 100 && base > 0 && base < rows {
		row := rows - 1 - base
		for c := range grid[row] {
			if grid[row][c].kind == cellEmpty {
				grid[row][c] = cell{r: zeroGlyph, kind: cellZero}
			}
		}
	}

	if i, ok := m.Hovered(); ok {
		m.overlayTooltip(grid, bars[i], i)
	}

	return m.render(grid)
}

// column returns one glyph per row level (0 = bottom) for a bar.
func column(bar Bar, base, rows int) []rune {
	out := make([]rune, rows)
	for i := range out {
		out[i] = ' '
	}
	extent := bar.Geometry.Height / 100 * float64(rows)
	if extent <= 0 && bar.Bucket.Count <= 0 {
		return out
	}
	full := int(extent)
	eighths := int(math.Round((extent - float64(full)) * 8))
	if eighths == 8 {
		full++
		eighths = 0
	}

	if bar.Geometry.Downward {
		for k := 0; k < full && base-1-k >= 0; k++ {
			out[base-1-k] = '█'
		}
		if level := base - 1 - full; level >= 0 {
			switch {
			case eighths > 0:
				out[level] = upperBlock(eighths)
			case full == 0 && bar.Bucket.Count > 0:
				out[level] = '▔'
			}
		}
		return out
	}

	bottom := 0
	if bar.Geometry.Bottom > 0 {
		bottom = base
	}
	for k := 0; k < full && bottom+k < rows; k++ {
		out[bottom+k] = '█'
	}
	if level := bottom + full; level < rows {
		switch {
		case eighths > 0:
			out[level] = lowerBlocks[eighths]
		case full == 0 && bar.Bucket.Count > 0:
			// Keep non-empty buckets visible
			out[level] = lowerBlocks[1]
		}
	}
	return out
}

// upperBlock approximates a partial cell filled from the top.
func upperBlock(eighths int) rune {
	switch {
	case eighths >= 6:
		return '█'
	case eighths >= 3:
		return '▀'
	default:
		return '▔'
	}
}

// overlayTooltip writes the tooltip for bar at position i into grid.
func (m Model) overlayTooltip(grid [][]cell, bar Bar, i int) {
	rows, cols := len(grid), len(grid[0])
	format := m.props.Format
	if format == nil {
		format = formatter.Default
	}

	lines := []string{
		"Count: " + formatter.Default(bar.Bucket.Count),
		format(bar.Bucket.Min) + " - " + format(bar.Bucket.Max),
	}
	boxW := 0
	for k, l := range lines {
		lines[k] = " " + l + " "
		boxW = max(boxW, len([]rune(lines[k])))
	}
	for k, l := range lines {
		lines[k] = l + strings.Repeat(" ", boxW-len([]rune(l)))
	}

	place := PlaceTooltip(i, len(m.props.Buckets), bar.Height)
	anchor := int(math.Round(place.Left / 100 * float64(cols)))
	left := anchor
	switch place.Align {
	case AlignCenter:
		left = anchor - boxW/2
	case AlignRight:
		left = anchor - boxW
	}
	left = max(0, min(left, cols-boxW))

	barTop := rows - int(math.Round(bar.Height/100*float64(rows)))
	top := barTop - len(lines)
	if place.Below {
		top = barTop
	}
	top = max(0, min(top, rows-len(lines)))

	for k, l := range lines {
		row := top + k
		if row < 0 || row >= rows {
			continue
		}
		for j, r := range []rune(l) {
			if c := left + j; c >= 0 && c < cols {
				grid[row][c] = cell{r: r, kind: cellTooltip}
			}
		}
	}
}

func (m Model) render(grid [][]cell) string {
	s := m.props.Styles
	styleFor := func(k cellKind) (lipgloss.Style, bool) {
		switch k {
		case cellBar:
			return s.Bar, true
		case cellBarDimmed:
			return s.BarDimmed, true
		case cellZero:
			return s.ZeroLine, true
		case cellTooltip:
			return s.Tooltip, true
		default:
			return lipgloss.Style{}, false
		}
	}

	var out strings.Builder
	for r, row := range grid {
		if r > 0 {
			out.WriteByte('\n')
		}
		// Render runs of same-kind cells with one style call
		var run []rune
		kind := cellEmpty
		flush := func() {
			if len(run) == 0 {
				return
			}
			if style, ok := styleFor(kind); ok {
				out.WriteString(style.Render(string(run)))
			} else {
				out.WriteString(string(run))
			}
			run = run[:0]
		}
		for _, c := range row {
			if c.kind != kind {
				flush()
				kind = c.kind
			}
			run = append(run, c.r)
		}
		flush()
	}
	return out.String()
}
