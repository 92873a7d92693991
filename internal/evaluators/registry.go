// Package evaluators maps configured provider names to ports.Evaluator
// implementations.
package evaluators

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/alexisbeaulieu97/inkwell/internal/config"
	"github.com/alexisbeaulieu97/inkwell/internal/evaluators/command"
	"github.com/alexisbeaulieu97/inkwell/internal/evaluators/retry"
	"github.com/alexisbeaulieu97/inkwell/internal/evaluators/simulated"
	"github.com/alexisbeaulieu97/inkwell/internal/ports"
	inkerrors "github.com/alexisbeaulieu97/inkwell/pkg/errors"
)

// Provider names understood by DefaultRegistry.
const (
	ProviderSimulated = "simulated"
	ProviderCommand   = "command"
)

// Factory builds an evaluator from its configuration block.
type Factory func(cfg config.EvaluatorConfig, logger ports.Logger) (ports.Evaluator, error)

// Registry is an in-memory map of provider name to factory.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// DefaultRegistry returns a registry with the built-in providers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	_ = r.Register(ProviderSimulated, newSimulated)
	_ = r.Register(ProviderCommand, newCommand)
	return r
}

// Register stores a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" {
		return inkerrors.NewProviderError("", fmt.Errorf("provider name is required"))
	}
	if factory == nil {
		return inkerrors.NewProviderError(name, fmt.Errorf("factory is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return inkerrors.NewProviderError(name, fmt.Errorf("provider %q already registered", name))
	}
	r.factories[name] = factory
	return nil
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[name]
	if !ok {
		return nil, inkerrors.NewProviderError(name, fmt.Errorf("provider not registered; available: %v", r.providersLocked()))
	}
	return factory, nil
}

// Providers lists the registered provider names in sorted order.
func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providersLocked()
}

func (r *Registry) providersLocked() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build constructs the configured provider and wraps it with retries when
// cfg.Retries is positive.
func (r *Registry) Build(cfg config.EvaluatorConfig, logger ports.Logger) (ports.Evaluator, error) {
	factory, err := r.Get(cfg.Provider)
	if err != nil {
		return nil, err
	}
	evaluator, err := factory(cfg, logger)
	if err != nil {
		return nil, inkerrors.NewProviderError(cfg.Provider, err)
	}
	if evaluator == nil {
		return nil, inkerrors.NewProviderError(cfg.Provider, fmt.Errorf("factory returned nil"))
	}
	return retry.Wrap(evaluator, cfg.Retries, retry.WithLogger(logger)), nil
}

func newSimulated(cfg config.EvaluatorConfig, _ ports.Logger) (ports.Evaluator, error) {
	sim := cfg.Simulated
	return simulated.New(simulated.Options{
		MinDelay:    time.Duration(sim.MinDelayMS) * time.Millisecond,
		MaxDelay:    time.Duration(sim.MaxDelayMS) * time.Millisecond,
		MinScore:    sim.MinScore,
		MaxScore:    sim.MaxScore,
		FailureRate: sim.FailureRate,
		Seed:        sim.Seed,
	}), nil
}

func newCommand(cfg config.EvaluatorConfig, logger ports.Logger) (ports.Evaluator, error) {
	return command.New(command.Config{
		Run:     cfg.Command.Run,
		Shell:   cfg.Command.Shell,
		WorkDir: cfg.Command.WorkDir,
		Env:     cfg.Command.Env,
	}, logger)
}
