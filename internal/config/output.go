package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/zjrosen/rangeslider/internal/rangemap"
)

const outputFile = "selected_range.json"

// OutputPath returns the selected-range document path based on the config
// location. A project-local config (.rangeslider/config.yaml) keeps the
// document alongside it. Otherwise ~/.config/rangeslider/selected_range.json.
func OutputPath(configPath string) string {
	home, _ := os.UserHomeDir()
	fallback := filepath.Join(home, ".config", "rangeslider", outputFile)
	if configPath == "" {
		return fallback
	}

	clean := filepath.Clean(configPath)
	suffix := filepath.Join(ProjectDir, FileName)
	if strings.HasSuffix(clean, suffix) {
		return filepath.Join(filepath.Dir(clean), outputFile)
	}

	return fallback
}

// jsonNumber maps values JSON cannot represent to null.
func jsonNumber(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// WriteSelectedRange stores sel and the instance id in the JSON document at
// path. Other keys of an existing JSON object are preserved; anything else
// is replaced. The file is swapped in atomically.
func WriteSelectedRange(path string, sel rangemap.Selection, instanceID string) error {
	doc, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading output document: %w", err)
	}
	if !gjson.ValidBytes(doc) || !gjson.ParseBytes(doc).IsObject() {
		doc = []byte("{}")
	}

	for _, set := range []struct {
		path  string
		value any
	}{
		{"selectedRange.start", jsonNumber(sel.Start)},
		{"selectedRange.end", jsonNumber(sel.End)},
		{"instanceId", instanceID},
	} {
		doc, err = sjson.SetBytes(doc, set.path, set.value)
		if err != nil {
			return fmt.Errorf("setting %s: %w", set.path, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".selected_range-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing output document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing output document: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing output document: %w", err)
	}
	return nil
}
