package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/alexisbeaulieu97/inkwell/internal/domain/evaluation"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

// Loader turns paths on disk into document handles after applying a Policy.
type Loader struct {
	policy Policy
	logger ports.Logger
}

// NewLoader creates a loader enforcing policy.
func NewLoader(policy Policy, logger ports.Logger) *Loader {
	return &Loader{policy: policy, logger: logger}
}

// Policy returns the acceptance policy in force.
func (l *Loader) Policy() Policy {
	return l.policy
}

// Load stats path, checks it against the policy and returns a handle whose
// Open reads the file lazily.
func (l *Loader) Load(ctx context.Context, path string) (evaluation.Document, error) {
	if err := contextCheck(ctx); err != nil {
		return evaluation.Document{}, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return evaluation.Document{}, fmt.Errorf("resolve document path: %w", err)
	}

	l.logDebug(ctx, "loading document", map[string]interface{}{"path": abs})

	info, err := os.Stat(abs)
	if err != nil {
		l.logError(ctx, "document stat failed", err, map[string]interface{}{"path": abs})
		if errors.Is(err, os.ErrNotExist) {
			return evaluation.Document{}, inkerrors.NewValidationError("document", fmt.Sprintf("%s does not exist", path), err)
		}
		return evaluation.Document{}, fmt.Errorf("stat document: %w", err)
	}
	if info.IsDir() {
		return evaluation.Document{}, inkerrors.NewValidationError("document", fmt.Sprintf("%s is a directory", path), nil)
	}

	if err := l.policy.Check(info.Name(), info.Size()); err != nil {
		l.logError(ctx, "document rejected", err, map[string]interface{}{"path": abs, "size": info.Size()})
		return evaluation.Document{}, err
	}

	doc := evaluation.NewDocument(info.Name(), info.Size(), abs, func() (io.ReadCloser, error) {
		return os.Open(abs)
	})
	l.logInfo(ctx, "document loaded", map[string]interface{}{"document": doc.Name(), "size": FormatSize(doc.Size())})
	return doc, nil
}

func contextCheck(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("document load cancelled: %w", err)
	}
	return nil
}

func (l *Loader) logDebug(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Debug(ctx, msg, flattenFields(fields)...)
}

func (l *Loader) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Info(ctx, msg, flattenFields(fields)...)
}

func (l *Loader) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if l.logger == nil {
		return
	}
	payload := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	payload["error"] = err
	l.logger.Warn(ctx, msg, flattenFields(payload)...)
}

func flattenFields(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}
