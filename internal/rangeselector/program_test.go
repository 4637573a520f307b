package rangeselector

import (
	"bytes"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/rangeslider/internal/rangemap"
)

func TestProgram_DragThenQuit(t *testing.T) {
	out := &mockOutput{}
	notifier := &mockNotifier{}
	out.On("SetSelectedRange", mock.Anything).Return()
	notifier.On("RangeChanged", mock.Anything).Return()

	p := baseProps()
	p.Label = "Price"
	m := New(p, WithOutput(out), WithNotifier(notifier))

	// 101 columns map value to column; label row 0, slider track row 1
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(101, 3))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("25 - 75"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.MouseMsg{X: 25, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	tm.Send(tea.MouseMsg{X: 80, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	tm.Send(tea.MouseMsg{X: 80, Y: 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(*Model)
	require.True(t, ok)

	want := rangemap.Selection{Start: 74, End: 75}
	require.Equal(t, want, final.Selection())
	out.AssertCalled(t, "SetSelectedRange", want)
	notifier.AssertCalled(t, "RangeChanged", want)
}

func TestProgram_PropsMsgReseeds(t *testing.T) {
	m := New(baseProps())
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(101, 4))

	p := baseProps()
	p.DefaultStart = 5
	p.Label = "Updated"
	tm.Send(PropsMsg{Props: p})

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Updated"))
	}, teatest.WithDuration(2*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
	final := tm.FinalModel(t, teatest.WithFinalTimeout(2*time.Second)).(*Model)
	require.Equal(t, rangemap.Selection{Start: 5, End: 75}, final.Selection())
}
