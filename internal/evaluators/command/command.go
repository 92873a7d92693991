// Package command evaluates stages by running an external program once per
// (document, stage) pair and reading a scored payload from its stdout.
//
// The program receives the document and stage through the environment:
//
//	INKWELL_DOCUMENT           absolute path of the manuscript
//	INKWELL_DOCUMENT_NAME      file name as selected by the user
//	INKWELL_STAGE_ID           stable stage identifier, e.g. plot-evaluation
//	INKWELL_STAGE_NAME         display name of the stage
//	INKWELL_STAGE_DESCRIPTION  what the stage assesses
//
// It must print YAML or JSON with a numeric score and optional content:
//
//	{"score": 7.5, "content": "Pacing drags in the middle act."}
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"gopkg.in/yaml.v3"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/evaluators/internalexec"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

// waitDelay bounds how long output pipes may stay open after ctx kills the
// shell, e.g. when a grandchild process inherited them.
const waitDelay = time.Second

// Config describes the program to run.
type Config struct {
	Run     string
	Shell   string
	WorkDir string
	Env     map[string]string
}

// Evaluator implements ports.Evaluator by shelling out.
type Evaluator struct {
	cfg       Config
	shell     string
	shellArgs []string
	logger    ports.Logger
}

// New validates cfg and resolves the shell once.
func New(cfg Config, logger ports.Logger) (*Evaluator, error) {
	if strings.TrimSpace(cfg.Run) == "" {
		return nil, inkerrors.NewValidationError("evaluator.command.run", "command is required", nil)
	}
	shell, shellArgs, err := determineShell(cfg.Shell)
	if err != nil {
		return nil, err
	}
	return &Evaluator{cfg: cfg, shell: shell, shellArgs: shellArgs, logger: logger}, nil
}

// Evaluate runs the configured command for one stage.
func (e *Evaluator) Evaluate(ctx context.Context, doc evaluation.Document, stage evaluation.Stage) (ports.Payload, error) {
	path, cleanup, err := materialise(doc)
	if err != nil {
		return ports.Payload{}, backoff.Permanent(inkerrors.NewExecutionError(stage.ID, err))
	}
	defer cleanup()

	args := append(append([]string(nil), e.shellArgs...), e.cfg.Run)
	cmd := exec.CommandContext(ctx, e.shell, args...)
	cmd.Env = buildEnv(e.cfg.Env, doc, path, stage)
	cmd.WaitDelay = waitDelay
	if e.cfg.WorkDir != "" {
		cmd.Dir = e.cfg.WorkDir
	}

	if e.logger != nil {
		e.logger.Debug(ctx, "running evaluator command", "stage_id", stage.ID, "command", e.cfg.Run)
	}

	result, err := internalexec.Run(cmd)
	if e.logger != nil {
		e.logger.Debug(ctx, "evaluator command finished",
			"stage_id", stage.ID,
			"exit_code", result.ExitCode,
			"duration_ms", result.Duration.Milliseconds(),
			"truncated", result.Truncated,
		)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ports.Payload{}, ctxErr
		}
		if out := result.Diagnostic(); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		return ports.Payload{}, inkerrors.NewExecutionError(stage.ID, err)
	}
	if result.Truncated {
		return ports.Payload{}, backoff.Permanent(inkerrors.NewExecutionError(stage.ID,
			fmt.Errorf("evaluator output exceeded %d bytes", internalexec.DefaultLimit)))
	}

	payload, err := ParsePayload([]byte(result.Stdout))
	if err != nil {
		return ports.Payload{}, backoff.Permanent(inkerrors.NewExecutionError(stage.ID, err))
	}
	return payload, nil
}

type rawPayload struct {
	Content string   `yaml:"content"`
	Score   *float64 `yaml:"score"`
}

// ParsePayload decodes YAML or JSON output into a Payload. A score is required.
func ParsePayload(data []byte) (ports.Payload, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return ports.Payload{}, errors.New("evaluator printed nothing")
	}
	var raw rawPayload
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ports.Payload{}, fmt.Errorf("decode evaluator output: %w", err)
	}
	if raw.Score == nil {
		return ports.Payload{}, errors.New("evaluator output has no score")
	}
	return ports.Payload{Content: strings.TrimSpace(raw.Content), Score: *raw.Score}, nil
}

// materialise returns a filesystem path for doc, spilling in-memory
// documents to a temporary file.
func materialise(doc evaluation.Document) (string, func(), error) {
	if doc.Path() != "" {
		return doc.Path(), func() {}, nil
	}
	if doc.IsZero() {
		return "", func() {}, nil
	}

	src, err := doc.Open()
	if err != nil {
		return "", nil, fmt.Errorf("open document: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "inkwell-*"+doc.Extension())
	if err != nil {
		return "", nil, fmt.Errorf("create temp document: %w", err)
	}
	cleanup := func() { _ = os.Remove(tmp.Name()) }
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("write temp document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("write temp document: %w", err)
	}
	return tmp.Name(), cleanup, nil
}

func determineShell(explicit string) (string, []string, error) {
	if explicit != "" {
		return explicit, []string{"-c"}, nil
	}

	if runtime.GOOS == "windows" {
		return "cmd", []string{"/C"}, nil
	}

	if path, err := exec.LookPath("bash"); err == nil {
		return path, []string{"-c"}, nil
	}

	if path, err := exec.LookPath("sh"); err == nil {
		return path, []string{"-c"}, nil
	}

	return "", nil, fmt.Errorf("no suitable shell found")
}

func buildEnv(custom map[string]string, doc evaluation.Document, path string, stage evaluation.Stage) []string {
	env := os.Environ()
	for k, v := range custom {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	env = append(env,
		"INKWELL_DOCUMENT="+path,
		"INKWELL_DOCUMENT_NAME="+doc.Name(),
		"INKWELL_STAGE_ID="+stage.ID,
		"INKWELL_STAGE_NAME="+stage.Name,
		"INKWELL_STAGE_DESCRIPTION="+stage.Description,
	)
	return env
}

var _ ports.Evaluator = (*Evaluator)(nil)
