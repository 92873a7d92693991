package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Config represents the full inkwell configuration document.
type Config struct {
	Version   string          `yaml:"version" validate:"required,semver"`
	Log       LogConfig       `yaml:"log"`
	Settings  Settings        `yaml:"settings"`
	Evaluator EvaluatorConfig `yaml:"evaluator"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level         string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	HumanReadable bool   `yaml:"human_readable"`
}

// Settings holds pipeline and document acceptance parameters.
type Settings struct {
	// StageTimeout is in seconds; zero disables the limit.
	StageTimeout       int      `yaml:"stage_timeout" validate:"min=0,max=3600"`
	MaxFileSize        ByteSize `yaml:"max_file_size" validate:"min=0"`
	AcceptedExtensions []string `yaml:"accepted_extensions" validate:"omitempty,dive,file_ext"`
}

// StageTimeoutDuration converts StageTimeout to a time.Duration.
func (s Settings) StageTimeoutDuration() time.Duration {
	return time.Duration(s.StageTimeout) * time.Second
}

// Extensions returns the accepted extensions lower-cased with a leading dot.
func (s Settings) Extensions() []string {
	out := make([]string, 0, len(s.AcceptedExtensions))
	for _, ext := range s.AcceptedExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

// EvaluatorConfig selects and tunes the evaluation backend.
type EvaluatorConfig struct {
	Provider  string          `yaml:"provider" validate:"required,provider_name"`
	Retries   int             `yaml:"retries" validate:"min=0,max=10"`
	Simulated SimulatedConfig `yaml:"simulated"`
	Command   CommandConfig   `yaml:"command"`
}

// SimulatedConfig tunes the built-in simulated evaluator.
type SimulatedConfig struct {
	MinDelayMS  int     `yaml:"min_delay_ms" validate:"min=0"`
	MaxDelayMS  int     `yaml:"max_delay_ms" validate:"min=0,gtefield=MinDelayMS"`
	MinScore    int     `yaml:"min_score" validate:"min=0,max=10"`
	MaxScore    int     `yaml:"max_score" validate:"min=0,max=10,gtefield=MinScore"`
	FailureRate float64 `yaml:"failure_rate" validate:"min=0,max=1"`
	Seed        uint64  `yaml:"seed"`
}

// CommandConfig describes an external program invoked once per stage.
type CommandConfig struct {
	Run     string            `yaml:"run"`
	Shell   string            `yaml:"shell,omitempty"`
	WorkDir string            `yaml:"work_dir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
}

// ByteSize is a size in bytes that reads and writes human units ("10MB").
type ByteSize int64

// UnmarshalYAML accepts plain integers or humanized strings.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		*b = 0
		return nil
	}
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid byte size %q: %w", value.Line, raw, err)
	}
	*b = ByteSize(n)
	return nil
}

// MarshalYAML renders the size in SI units.
func (b ByteSize) MarshalYAML() (interface{}, error) {
	return b.String(), nil
}

// String renders the size in SI units, e.g. "10 MB".
func (b ByteSize) String() string {
	if b < 0 {
		return "0 B"
	}
	return humanize.Bytes(uint64(b))
}
