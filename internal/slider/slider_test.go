package slider

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/rangeslider/internal/rangemap"
	"github.com/zjrosen/rangeslider/internal/theme"
)

type change struct{ start, end float64 }

// newTestModel maps domain [0,100] onto 101 columns so column == value.
func newTestModel(sel rangemap.Selection, changes *[]change) Model {
	return New().
		SetProps(Props{
			Domain:    rangemap.Domain{Min: 0, Max: 100, Step: 1},
			Selection: sel,
			OnChange: func(start, end float64) {
				*changes = append(*changes, change{start, end})
			},
		}).
		SetBounds(0, 0, 101)
}

func press(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

func motion(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft}
}

func release(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft}
}

func send(m Model, msgs ...tea.Msg) Model {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m
}

func TestDragStart_ClampsOneStepBelowEnd(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, press(25, 0))
	h, ok := m.Dragging()
	require.True(t, ok)
	require.Equal(t, HandleStart, h)

	send(m, motion(80, 0))
	require.Equal(t, []change{{74, 75}}, changes)
}

func TestDragStart_FollowsPointer(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	send(m, press(25, 0), motion(40, 0), motion(10, 0))
	require.Equal(t, []change{{40, 75}, {10, 75}}, changes)
}

func TestDrag_UnchangedPairNotReported(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	// Same column on both rows, then a real move
	send(m, press(25, 0), motion(25, 1), motion(25, 0), motion(30, 0))
	require.Equal(t, []change{{30, 75}}, changes)
}

func TestDragEnd_ClampsOneStepAboveStart(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	send(m, press(75, 0), motion(10, 0))
	require.Equal(t, []change{{25, 26}}, changes)
}

func TestDrag_RespectsBoundsOffset(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes).SetBounds(10, 3, 101)

	send(m, press(35, 3), motion(90, 3))
	require.Equal(t, []change{{74, 75}}, changes)
}

func TestPress_OnTrackPicksNothing(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, press(50, 0), motion(60, 0))
	_, ok := m.Dragging()
	require.False(t, ok)
	require.Empty(t, changes)
}

func TestPress_OnLabelRowPicksNothing(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, press(25, 1))
	_, ok := m.Dragging()
	require.False(t, ok)
}

func TestRelease_EndsDragAndIsIdempotent(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, press(25, 0), release(25, 0), release(25, 0))
	_, ok := m.Dragging()
	require.False(t, ok)

	send(m, motion(40, 0))
	require.Empty(t, changes)
}

func TestLeave_ReleasesDrag(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, press(25, 0), motion(30, 5))
	_, ok := m.Dragging()
	require.False(t, ok)

	send(m, motion(30, 0))
	require.Empty(t, changes)
}

func TestUnmount_ReleasesDrag(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, press(75, 0)).Unmount()
	_, ok := m.Dragging()
	require.False(t, ok)
	require.Equal(t, HandleNone, m.Hovered())

	m = m.Unmount()
	send(m, motion(90, 0))
	require.Empty(t, changes)
}

func TestDragGuard(t *testing.T) {
	var g dragGuard
	require.False(t, g.acquire(HandleNone))
	require.True(t, g.acquire(HandleStart))
	require.False(t, g.acquire(HandleEnd), "only one handle at a time")
	require.Equal(t, HandleStart, g.held())
	g.release()
	g.release()
	require.Equal(t, HandleNone, g.held())
	require.True(t, g.acquire(HandleEnd))
}

func TestHover_HighlightsHandle(t *testing.T) {
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)

	m = send(m, tea.MouseMsg{X: 75, Y: 0, Action: tea.MouseActionMotion})
	require.Equal(t, HandleEnd, m.Hovered())

	m = send(m, tea.MouseMsg{X: 50, Y: 0, Action: tea.MouseActionMotion})
	require.Equal(t, HandleNone, m.Hovered())
	require.Empty(t, changes)
}

func TestHandleAt_Overlap(t *testing.T) {
	var changes []change
	mid := newTestModel(rangemap.Selection{Start: 50, End: 50}, &changes)
	require.Equal(t, HandleEnd, mid.handleAt(50))

	right := newTestModel(rangemap.Selection{Start: 100, End: 100}, &changes)
	require.Equal(t, HandleStart, right.handleAt(100))
}

func TestProperty_HandlesNeverCross(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lo := rapid.Float64Range(-1000, 1000).Draw(t, "min")
		span := rapid.Float64Range(1, 1000).Draw(t, "span")
		step := rapid.SampledFrom([]float64{0, 0.5, 1, 5}).Draw(t, "step")
		d := rangemap.Domain{Min: lo, Max: lo + span, Step: step}
		start := rapid.Float64Range(d.Min, d.Max).Draw(t, "start")
		end := rapid.Float64Range(start, d.Max).Draw(t, "end")
		width := rapid.IntRange(2, 200).Draw(t, "width")
		target := rapid.IntRange(0, width-1).Draw(t, "target")

		var got []change
		m := New().SetProps(Props{
			Domain:    d,
			Selection: rangemap.Selection{Start: start, End: end},
			OnChange:  func(s, e float64) { got = append(got, change{s, e}) },
		}).SetBounds(0, 0, width)

		col := m.column(start)
		if rapid.Bool().Draw(t, "dragEnd") {
			col = m.column(end)
		}
		send(m, press(col, 0), motion(target, 0))

		for _, c := range got {
			if c.start > c.end {
				t.Fatalf("handles crossed: %+v", c)
			}
			if c.start < d.Min || c.end > d.Max {
				t.Fatalf("outside domain %+v: %+v", d, c)
			}
		}
	})
}

func TestView_PlainTrack(t *testing.T) {
	m := New().SetProps(Props{
		Domain:    rangemap.Domain{Min: 0, Max: 10, Step: 1},
		Selection: rangemap.Selection{Start: 2, End: 8},
	}).SetBounds(0, 0, 11)

	lines := strings.Split(m.View(), "\n")
	require.Len(t, lines, Height)
	require.Equal(t, "──●━━━━━●──", lines[0])
	require.Equal(t, "2         8", lines[1])
}

func TestView_CollapsedSelectionDrawsOneHandle(t *testing.T) {
	m := New().SetProps(Props{
		Domain:    rangemap.Domain{Min: 0, Max: 10, Step: 1},
		Selection: rangemap.Selection{Start: 5, End: 5},
	}).SetBounds(0, 0, 11)

	require.Equal(t, "─────●─────", strings.Split(m.View(), "\n")[0])
}

func TestView_UsesFormatter(t *testing.T) {
	m := New().SetProps(Props{
		Domain:    rangemap.Domain{Min: 0, Max: 10, Step: 1},
		Selection: rangemap.Selection{Start: 2, End: 8},
		Format:    func(v float64) string { return "<" + strings.Repeat("|", int(v)) + ">" },
	}).SetBounds(0, 0, 20)

	labels := strings.Split(m.View(), "\n")[1]
	require.True(t, strings.HasPrefix(labels, "<||>"))
	require.True(t, strings.HasSuffix(labels, "<||||||||>"))
}

func TestView_ActiveHandleStyled(t *testing.T) {
	lipgloss.SetColorProfile(termenv.ANSI256)
	t.Cleanup(func() { lipgloss.SetColorProfile(termenv.Ascii) })

	styles := theme.NewStyles(theme.Defaults())
	var changes []change
	m := newTestModel(rangemap.Selection{Start: 25, End: 75}, &changes)
	m = m.SetProps(Props{
		Domain:    rangemap.Domain{Min: 0, Max: 100, Step: 1},
		Selection: rangemap.Selection{Start: 25, End: 75},
		Styles:    styles,
	})

	idle := m.View()
	active := send(m, press(25, 0)).View()
	require.Contains(t, idle, "\x1b[")
	require.Contains(t, active, styles.HandleActive.Render(handleGlyph))
}
