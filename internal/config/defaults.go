package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/rangeslider/internal/theme"
)

// WriteDefaultConfig writes a commented config file with the default values.
// It refuses to overwrite an existing file.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(defaultDocument())
	if err != nil {
		return fmt.Errorf("encoding default config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func defaultDocument() *yaml.Node {
	d := Defaults()
	colors := theme.Defaults()

	doc := mapping(
		pair("min", number(d.Min), "Slider domain"),
		pair("max", number(d.Max), ""),
		pair("step", number(d.Step), "Handles snap to multiples of step"),
		pair("default_start", number(d.DefaultStart), "Initial selection. Changing these re-seeds the selection."),
		pair("default_end", number(d.DefaultEnd), ""),
		pair("label", scalar(d.Label), ""),
		pair("histogram_scale", scalar(d.HistogramScale), "linear, logarithmic or sqrt"),
		pair("show_negative_values", boolean(d.ShowNegativeValues), "Draw negative buckets below a zero line"),
		pair("distribution_data", &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle},
			"Histogram input: rows of {bucket_index, bucket_min, bucket_max, count}\n"+
				"or an object of four parallel arrays. distribution_file takes a JSON path instead."),
		pair("formatter", mapping(
			pair("function", scalar(""), "Lua expression, e.g. function(value) return string.format(\"$%.2f\", value) end"),
			pair("datetime", boolean(false), "Expose the datetime table to the expression"),
		), ""),
		pair("theme", mapping(
			pair("preset", scalar(""), "See `rangeslider themes`"),
			pair("colors", mapping(
				pair("primary", scalar(colors.Primary), ""),
				pair("primary_light", scalar(colors.PrimaryLight), ""),
				pair("secondary", scalar(colors.Secondary), ""),
				pair("background", scalar(colors.Background), ""),
				pair("text", scalar(colors.Text), ""),
				pair("tooltip", scalar(colors.Tooltip), ""),
			), ""),
		), ""),
	)
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{doc}}
}

type kv struct {
	key, value *yaml.Node
}

func pair(key string, value *yaml.Node, comment string) kv {
	return kv{
		key:   &yaml.Node{Kind: yaml.ScalarNode, Value: key, HeadComment: comment},
		value: value,
	}
}

func mapping(pairs ...kv) *yaml.Node {
	n := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range pairs {
		n.Content = append(n.Content, p.key, p.value)
	}
	return n
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func number(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func boolean(b bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(b)}
}
