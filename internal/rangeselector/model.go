// Package rangeselector is the composition root of the range selector. It
// owns the committed selection, derives the theme, formatter and buckets from
// host props, and wires the histogram and slider callbacks to a single
// commit path that writes the output and fires the change notification.
package rangeselector

import (
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/rangeslider/internal/bucket"
	"github.com/zjrosen/rangeslider/internal/formatter"
	"github.com/zjrosen/rangeslider/internal/histogram"
	"github.com/zjrosen/rangeslider/internal/keys"
	"github.com/zjrosen/rangeslider/internal/log"
	"github.com/zjrosen/rangeslider/internal/rangemap"
	"github.com/zjrosen/rangeslider/internal/slider"
	"github.com/zjrosen/rangeslider/internal/theme"
)

// Size used until the first WindowSizeMsg arrives.
const (
	defaultWidth  = 80
	defaultHeight = 12
)

// Props is the host configuration of one range selector instance.
type Props struct {
	Min          float64
	Max          float64
	Step         float64
	DefaultStart float64
	DefaultEnd   float64
	Label        string

	DistributionData  any
	FormatterFunction string

	ThemePreset string
	Colors      theme.ColorConfig

	HistogramScale     string
	ShowNegativeValues bool
}

// PropsMsg delivers new host props into a running program.
type PropsMsg struct {
	Props Props
}

// Output persists the selected range for the host.
type Output interface {
	SetSelectedRange(sel rangemap.Selection)
}

// Notifier is told about every committed range change.
type Notifier interface {
	RangeChanged(sel rangemap.Selection)
}

// Formatter turns a value into display text.
type Formatter interface {
	Format(value float64) string
}

// CompileFunc builds a Formatter from a user expression. A returned
// Formatter that also implements io.Closer is closed when replaced.
type CompileFunc func(expr string) Formatter

// Option configures a Model.
type Option func(*Model)

// WithOutput sets the selected-range sink.
func WithOutput(o Output) Option {
	return func(m *Model) { m.output = o }
}

// WithNotifier sets the range-changed listener.
func WithNotifier(n Notifier) Option {
	return func(m *Model) { m.notifier = n }
}

// WithCompiler replaces the formatter compiler.
func WithCompiler(c CompileFunc) Option {
	return func(m *Model) { m.compile = c }
}

// Model is the range selector program model.
type Model struct {
	props     Props
	selection rangemap.Selection

	buckets      []bucket.Bucket
	colors       theme.ColorConfig
	styles       theme.Styles
	format       Formatter
	showNegative bool

	hist   histogram.Model
	slider slider.Model

	output   Output
	notifier Notifier
	compile  CompileFunc

	width, height int
	histY, histH  int
	sliderY       int
}

// New creates a model seeded from p.
func New(p Props, opts ...Option) *Model {
	m := &Model{
		hist:   histogram.New(),
		slider: slider.New(),
		compile: func(expr string) Formatter {
			return formatter.Compile(expr)
		},
		width:  defaultWidth,
		height: defaultHeight,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.props = p
	m.selection = rangemap.Selection{Start: p.DefaultStart, End: p.DefaultEnd}
	m.format = m.compile(p.FormatterFunction)
	m.derive()
	return m
}

// SetProps applies new host props. The selection is re-seeded only for the
// defaults that changed, and the formatter is recompiled only when its
// expression changed.
func (m *Model) SetProps(p Props) {
	prev := m.props
	m.props = p

	if !sameFloat(p.DefaultStart, prev.DefaultStart) {
		m.selection.Start = p.DefaultStart
	}
	if !sameFloat(p.DefaultEnd, prev.DefaultEnd) {
		m.selection.End = p.DefaultEnd
	}
	if p.FormatterFunction != prev.FormatterFunction {
		if c, ok := m.format.(io.Closer); ok {
			_ = c.Close()
		}
		m.format = m.compile(p.FormatterFunction)
	}
	m.derive()
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}

// derive recomputes everything that depends only on props.
func (m *Model) derive() {
	p := m.props

	colors, err := theme.Resolve(p.ThemePreset, p.Colors)
	if err != nil {
		log.Warn(log.CatUI, "theme preset not found, using defaults", "preset", p.ThemePreset)
	}
	m.colors = colors
	m.styles = theme.NewStyles(colors)

	m.buckets = bucket.Normalize(p.DistributionData)
	if shape := bucket.Detect(p.DistributionData); shape == bucket.ShapeUnrecognized {
		log.Warn(log.CatUI, "distribution data not recognized", "shape", shape.String())
	}

	m.showNegative = p.ShowNegativeValues && (p.Min < 0 || p.Max < 0)
	m.layout()
}

// Domain returns the slider domain.
func (m *Model) Domain() rangemap.Domain {
	return rangemap.Domain{Min: m.props.Min, Max: m.props.Max, Step: m.props.Step}
}

// Selection returns the committed selection.
func (m *Model) Selection() rangemap.Selection {
	return m.selection
}

// Buckets returns the normalized distribution.
func (m *Model) Buckets() []bucket.Bucket {
	return m.buckets
}

// Colors returns the resolved color config.
func (m *Model) Colors() theme.ColorConfig {
	return m.colors
}

// ShowNegative reports whether negative display is in effect.
func (m *Model) ShowNegative() bool {
	return m.showNegative
}

// Format renders v with the current formatter.
func (m *Model) Format(v float64) string {
	if m.format == nil {
		return formatter.Default(v)
	}
	return m.format.Format(v)
}

// commit is the single path through which the selection changes.
func (m *Model) commit(sel rangemap.Selection) {
	m.selection = sel
	log.Debug(log.CatUI, "range committed", "start", sel.Start, "end", sel.End)
	if m.output != nil {
		m.output.SetSelectedRange(sel)
	}
	if m.notifier != nil {
		m.notifier.RangeChanged(sel)
	}
	m.sync()
}

// onHistogramSelect clamps a bar sweep into the domain before committing.
func (m *Model) onHistogramSelect(start, end float64) {
	m.commit(m.Domain().ClampSelection(rangemap.Selection{Start: start, End: end}))
}

// onSliderChange commits as given; the slider clamps its own drags.
func (m *Model) onSliderChange(start, end float64) {
	m.commit(rangemap.Selection{Start: start, End: end})
}

func (m *Model) labelRows() int {
	if m.props.Label == "" {
		return 0
	}
	return 1
}

// layout assigns rows: label, histogram (when there are buckets), slider.
func (m *Model) layout() {
	y := m.labelRows()
	m.histY, m.histH = y, 0
	if len(m.buckets) > 0 {
		m.histH = max(1, m.height-y-slider.Height)
	}
	m.sliderY = y + m.histH
	m.sync()
}

// sync pushes the current snapshot into both views.
func (m *Model) sync() {
	d := m.Domain()
	m.hist = m.hist.
		SetProps(histogram.Props{
			Buckets:      m.buckets,
			Selection:    m.selection,
			Scale:        histogram.ParseScale(m.props.HistogramScale),
			ShowNegative: m.showNegative,
			Min:          d.Min,
			Max:          d.Max,
			Styles:       m.styles,
			Format:       m.Format,
			OnSelect:     m.onHistogramSelect,
		}).
		SetBounds(0, m.histY, m.width, m.histH)
	m.slider = m.slider.
		SetProps(slider.Props{
			Domain:    d,
			Selection: m.selection,
			Styles:    m.styles,
			Format:    m.Format,
			OnChange:  m.onSliderChange,
		}).
		SetBounds(0, m.sliderY, m.width)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()

	case PropsMsg:
		m.SetProps(msg.Props)

	case tea.KeyMsg:
		if key.Matches(msg, keys.Host.Quit) {
			m.Unmount()
			return m, tea.Quit
		}

	case tea.MouseMsg:
		// Both views see every event so each can detect the pointer leaving.
		// Callbacks may commit during either Update, so sync afterwards.
		if len(m.buckets) > 0 {
			m.hist, _ = m.hist.Update(msg)
		}
		m.slider, _ = m.slider.Update(msg)
		m.sync()
	}
	return m, nil
}

// Unmount releases any drag in progress.
func (m *Model) Unmount() {
	m.slider = m.slider.Unmount()
}

// View implements tea.Model.
func (m *Model) View() string {
	var rows []string
	if m.props.Label != "" {
		rows = append(rows, m.labelView())
	}
	if len(m.buckets) > 0 {
		rows = append(rows, m.hist.View())
	}
	rows = append(rows, m.slider.View())
	return strings.Join(rows, "\n")
}

func (m *Model) labelView() string {
	s := m.styles
	return s.Label.Render(m.props.Label) + "  " +
		s.Value.Render(m.Format(m.selection.Start)+" - "+m.Format(m.selection.End))
}
