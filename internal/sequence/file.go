// Package sequence reads and writes acquisition sequence files and builds
// simple time-lapse sequences from a channel preset. Files are JSON or YAML,
// selected by filename suffix; napari-micromanager `.useq.json` exports load
// unchanged.
package sequence

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmctools/timelapse-launcher/internal/model"
)

// Defaults for a simple interval×loops time-lapse.
const (
	DefaultIntervalSec = 5.0
	DefaultLoops       = 60
)

// Extensions lists the file suffixes the loader accepts, most specific first.
var Extensions = []string{".useq.json", ".useq.yaml", ".useq.yml", ".json", ".yaml", ".yml"}

// IsSequenceFile reports whether the filename carries a supported suffix.
func IsSequenceFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func isYAML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}

// Load reads a sequence file. The format is chosen by suffix: .yaml/.yml
// parse as YAML, everything else as JSON.
func Load(path string) (*model.Sequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sequence file: %w", err)
	}

	var seq model.Sequence
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &seq); err != nil {
			return nil, fmt.Errorf("parse YAML sequence %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &seq); err != nil {
			return nil, fmt.Errorf("parse JSON sequence %s: %w", path, err)
		}
	}
	return &seq, nil
}

// Save writes a sequence file, choosing the format by suffix the same way
// Load does. JSON output is indented to stay diffable next to napari
// exports.
func Save(path string, seq *model.Sequence) error {
	var data []byte
	var err error
	if isYAML(path) {
		data, err = yaml.Marshal(seq)
	} else {
		data, err = json.MarshalIndent(seq, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode sequence: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sequence file: %w", err)
	}
	return nil
}

// BuildSimpleTimelapse creates the default interval×loops time-lapse on a
// single channel, the quick path for operators without an exported file.
func BuildSimpleTimelapse(channel string, exposureMS float64) *model.Sequence {
	return &model.Sequence{
		TimePlan: &model.TimePlan{IntervalSec: DefaultIntervalSec, Loops: DefaultLoops},
		Channels: []model.Channel{{Config: channel, ExposureMS: exposureMS}},
	}
}
