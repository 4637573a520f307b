package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/zjrosen/rangeslider/internal/config"
	"github.com/zjrosen/rangeslider/internal/formatter"
	"github.com/zjrosen/rangeslider/internal/log"
	"github.com/zjrosen/rangeslider/internal/pubsub"
	"github.com/zjrosen/rangeslider/internal/rangemap"
	"github.com/zjrosen/rangeslider/internal/rangeselector"
	"github.com/zjrosen/rangeslider/internal/watcher"
)

// host plays the dashboard side of the component: it persists the selected
// range, publishes change notifications and feeds config reloads back in.
type host struct {
	cmd        *cobra.Command
	id         string
	configPath string
	cfg        config.Config
	outputPath string
	changes    *pubsub.Broker[rangemap.Selection]
}

func newHost(cmd *cobra.Command, configPath string, cfg config.Config) *host {
	out := cfg.Output
	if out == "" {
		out = config.OutputPath(configPath)
	}
	return &host{
		cmd:        cmd,
		id:         uuid.NewString(),
		configPath: configPath,
		cfg:        cfg,
		outputPath: out,
		changes:    pubsub.NewBroker[rangemap.Selection](),
	}
}

// SetSelectedRange implements rangeselector.Output.
func (h *host) SetSelectedRange(sel rangemap.Selection) {
	if err := config.WriteSelectedRange(h.outputPath, sel, h.id); err != nil {
		log.Error(log.CatHost, "writing selected range", "path", h.outputPath, "error", err)
	}
}

// RangeChanged implements rangeselector.Notifier.
func (h *host) RangeChanged(sel rangemap.Selection) {
	h.changes.Publish(pubsub.UpdatedEvent, sel)
}

// compiler returns the formatter compiler for the startup config.
func (h *host) compiler() rangeselector.CompileFunc {
	var opts []formatter.Option
	if h.cfg.Formatter.DateTime {
		opts = append(opts, formatter.WithDateTime(time.Local))
	}
	return func(expr string) rangeselector.Formatter {
		return formatter.Compile(expr, opts...)
	}
}

// propsFromConfig maps the host config onto component props.
func propsFromConfig(cfg config.Config, configPath string) rangeselector.Props {
	raw, err := cfg.Distribution(configPath)
	if err != nil {
		log.Warn(log.CatConfig, "distribution unavailable", "error", err)
	}
	return rangeselector.Props{
		Min:                cfg.Min,
		Max:                cfg.Max,
		Step:               cfg.Step,
		DefaultStart:       cfg.DefaultStart,
		DefaultEnd:         cfg.DefaultEnd,
		Label:              cfg.Label,
		DistributionData:   raw,
		FormatterFunction:  cfg.Formatter.Function,
		ThemePreset:        cfg.Theme.Preset,
		Colors:             cfg.Theme.Colors,
		HistogramScale:     cfg.HistogramScale,
		ShowNegativeValues: cfg.ShowNegativeValues,
	}
}

func (h *host) run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer h.changes.Close()

	go logRangeChanges(h.changes.Subscribe(ctx), h.id)

	model := rangeselector.New(
		propsFromConfig(h.cfg, h.configPath),
		rangeselector.WithOutput(h),
		rangeselector.WithNotifier(h),
		rangeselector.WithCompiler(h.compiler()),
	)
	h.changes.Publish(pubsub.CreatedEvent, model.Selection())
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	)

	if h.configPath != "" {
		stop, err := h.watch(ctx, p)
		if err != nil {
			log.Warn(log.CatWatcher, "live reload disabled", "error", err)
		} else {
			defer stop()
		}
	}

	log.Info(log.CatHost, "starting", "instance", h.id, "output", h.outputPath)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// watch reloads the config and distribution file on change and sends the
// new props into the program.
func (h *host) watch(ctx context.Context, p *tea.Program) (func(), error) {
	w, err := watcher.New(watcher.DefaultConfig(h.configPath, h.cfg.DistributionPath(h.configPath)))
	if err != nil {
		return nil, err
	}
	sub := w.Broker().Subscribe(ctx)
	if err := w.Start(); err != nil {
		_ = w.Stop()
		return nil, err
	}

	go func() {
		for evt := range sub {
			if evt.Payload.Type != watcher.FileChanged {
				continue
			}
			cfg, err := loadConfig(h.cmd, h.configPath)
			if err != nil {
				log.Warn(log.CatConfig, "reload failed, keeping current config", "error", err)
				continue
			}
			log.Info(log.CatConfig, "config reloaded", "path", evt.Payload.Path)
			p.Send(rangeselector.PropsMsg{Props: propsFromConfig(cfg, h.configPath)})
		}
	}()

	return func() { _ = w.Stop() }, nil
}

// logRangeChanges logs the seeded range and every committed change until sub
// is closed.
func logRangeChanges(sub <-chan pubsub.Event[rangemap.Selection], instanceID string) {
	for evt := range sub {
		msg := "range changed"
		if evt.Type == pubsub.CreatedEvent {
			msg = "range seeded"
		}
		log.Info(log.CatHost, msg,
			"instance", instanceID,
			"start", evt.Payload.Start,
			"end", evt.Payload.End)
	}
}
