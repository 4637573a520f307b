package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/zjrosen/rangeslider/internal/config"
	"github.com/zjrosen/rangeslider/internal/log"
	"github.com/zjrosen/rangeslider/internal/pubsub"
	"github.com/zjrosen/rangeslider/internal/rangemap"
)

// newTestCommand returns a command with the root flags so flag binding can be
// exercised without touching the global rootCmd.
func newTestCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	c.Flags().StringP("output", "o", "", "")
	c.Flags().String("scale", "", "")
	var out bytes.Buffer
	c.SetOut(&out)
	return c, &out
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, config.ProjectDir, config.FileName)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "histogram_scale: sqrt\nlabel: Price\n")
	c, _ := newTestCommand(t)
	require.NoError(t, c.Flags().Set("scale", "logarithmic"))

	cfg, err := loadConfig(c, path)
	require.NoError(t, err)
	require.Equal(t, "logarithmic", cfg.HistogramScale)
	require.Equal(t, "Price", cfg.Label)
}

func TestLoadConfig_FileValueWithoutFlag(t *testing.T) {
	path := writeConfig(t, "histogram_scale: sqrt\n")
	c, _ := newTestCommand(t)

	cfg, err := loadConfig(c, path)
	require.NoError(t, err)
	require.Equal(t, "sqrt", cfg.HistogramScale)
}

func TestPropsFromConfig(t *testing.T) {
	path := writeConfig(t, `
min: -10
max: 10
step: 0.5
default_start: -2
default_end: 3
label: Delta
show_negative_values: true
formatter:
  function: 'value .. "%"'
theme:
  preset: forest
distribution_data:
  - {bucket_index: 0, bucket_min: -10, bucket_max: 0, count: 2}
`)
	c, _ := newTestCommand(t)
	cfg, err := loadConfig(c, path)
	require.NoError(t, err)

	p := propsFromConfig(cfg, path)
	require.Equal(t, -10.0, p.Min)
	require.Equal(t, 10.0, p.Max)
	require.Equal(t, 0.5, p.Step)
	require.Equal(t, -2.0, p.DefaultStart)
	require.Equal(t, 3.0, p.DefaultEnd)
	require.Equal(t, "Delta", p.Label)
	require.True(t, p.ShowNegativeValues)
	require.Equal(t, `value .. "%"`, p.FormatterFunction)
	require.Equal(t, "forest", p.ThemePreset)
	require.NotNil(t, p.DistributionData)
}

func TestPropsFromConfig_MissingDistributionFile(t *testing.T) {
	path := writeConfig(t, "distribution_file: nope.json\n")
	c, _ := newTestCommand(t)
	cfg, err := loadConfig(c, path)
	require.NoError(t, err)

	p := propsFromConfig(cfg, path)
	require.Nil(t, p.DistributionData)
}

func TestHost_OutputNextToProjectConfig(t *testing.T) {
	path := writeConfig(t, "min: 0\n")
	c, _ := newTestCommand(t)
	cfg, err := loadConfig(c, path)
	require.NoError(t, err)

	h := newHost(c, path, cfg)
	require.Equal(t, filepath.Join(filepath.Dir(path), "selected_range.json"), h.outputPath)
	require.NotEmpty(t, h.id)

	h.SetSelectedRange(rangemap.Selection{Start: 5, End: 15})
	data, err := os.ReadFile(h.outputPath)
	require.NoError(t, err)
	require.Equal(t, 5.0, gjson.GetBytes(data, "selectedRange.start").Float())
	require.Equal(t, 15.0, gjson.GetBytes(data, "selectedRange.end").Float())
	require.Equal(t, h.id, gjson.GetBytes(data, "instanceId").String())
}

func TestHost_OutputFlag(t *testing.T) {
	path := writeConfig(t, "min: 0\n")
	c, _ := newTestCommand(t)
	custom := filepath.Join(t.TempDir(), "range.json")
	require.NoError(t, c.Flags().Set("output", custom))

	cfg, err := loadConfig(c, path)
	require.NoError(t, err)
	require.Equal(t, custom, newHost(c, path, cfg).outputPath)
}

func TestHost_RangeChangedPublishes(t *testing.T) {
	c, _ := newTestCommand(t)
	h := newHost(c, "", config.Defaults())
	defer h.changes.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	sub := h.changes.Subscribe(ctx)

	h.RangeChanged(rangemap.Selection{Start: 1, End: 2})
	select {
	case evt := <-sub:
		require.Equal(t, rangemap.Selection{Start: 1, End: 2}, evt.Payload)
	case <-ctx.Done():
		require.Fail(t, "no range-changed event")
	}
}

func TestLogRangeChanges_SeededThenChanged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	log.SetLevel(log.LevelInfo)
	t.Cleanup(func() { log.SetOutput(io.Discard) })

	b := pubsub.NewBroker[rangemap.Selection]()
	sub := b.Subscribe(context.Background())
	b.Publish(pubsub.CreatedEvent, rangemap.Selection{Start: 25, End: 75})
	b.Publish(pubsub.UpdatedEvent, rangemap.Selection{Start: 30, End: 75})
	b.Close()

	logRangeChanges(sub, "abc")

	out := buf.String()
	seeded := strings.Index(out, "range seeded")
	changed := strings.Index(out, "range changed")
	require.GreaterOrEqual(t, seeded, 0)
	require.Greater(t, changed, seeded)
	require.Contains(t, out, "abc")
}

func TestHost_CompilerHonorsDateTime(t *testing.T) {
	c, _ := newTestCommand(t)
	cfg := config.Defaults()
	cfg.Formatter.DateTime = true
	h := newHost(c, "", cfg)

	f := h.compiler()(`datetime.format(value * 1000, "2006")`)
	require.Equal(t, "1970", f.Format(15724800), "mid-1970 in any time zone")

	plain := newHost(c, "", config.Defaults()).compiler()(`datetime.format(value, "2006")`)
	require.Equal(t, "0", plain.Format(0), "datetime is not exposed by default")
}

func TestRunThemes_ListsPresets(t *testing.T) {
	c, out := newTestCommand(t)
	runThemes(c, nil)

	for _, name := range []string{"default", "ocean", "forest", "dracula"} {
		require.Contains(t, out.String(), name)
	}
}

func TestRunScales_ListsScales(t *testing.T) {
	c, out := newTestCommand(t)
	runScales(c, nil)

	require.Contains(t, out.String(), "linear")
	require.Contains(t, out.String(), "logarithmic")
	require.Contains(t, out.String(), "sqrt")
}

func TestRunInit_CreatesAndRefuses(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, out := newTestCommand(t)
	require.NoError(t, runInit(c, nil))
	require.Contains(t, out.String(), filepath.Join(config.ProjectDir, config.FileName))
	_, err = os.Stat(filepath.Join(dir, config.ProjectDir, config.FileName))
	require.NoError(t, err)

	require.ErrorIs(t, runInit(c, nil), config.ErrConfigExists)
}

func TestSetupLogging_DisabledByDefault(t *testing.T) {
	cleanup, err := setupLogging(config.Defaults())
	require.NoError(t, err)
	cleanup()
}

func TestSetupLogging_LogFile(t *testing.T) {
	cfg := config.Defaults()
	cfg.LogFile = filepath.Join(t.TempDir(), "logs", "rangeslider.log")

	cleanup, err := setupLogging(cfg)
	require.NoError(t, err)
	cleanup()

	_, err = os.Stat(cfg.LogFile)
	require.NoError(t, err)
}
