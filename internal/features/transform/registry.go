package transform

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go-syncbridge/pkg/utils"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"go.uber.org/zap"
)

const scriptTimeout = 2 * time.Second

// Registry holds named custom transform scripts. Scripts are validated by a
// trial compile when registered, so a broken script is rejected up front
// instead of failing mid-run.
type Registry struct {
	mu      sync.RWMutex
	scripts map[string]string
	logger  *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		scripts: make(map[string]string),
		logger:  logger,
	}
}

// Register stores a custom transform under the slugified name. The script
// receives the input as the global `value` and reports its result by
// assigning `out`; when `out` is never set the (possibly mutated) `value` is
// used instead.
func (r *Registry) Register(name, source string) error {
	name = utils.Slugify(name)
	if name == "" {
		return fmt.Errorf("transform name is required")
	}
	if source == "" {
		return fmt.Errorf("transform %q: script source is required", name)
	}

	script := tengo.NewScript([]byte(source))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times", "fmt"))
	if err := script.Add("value", nil); err != nil {
		return fmt.Errorf("transform %q: %w", name, err)
	}
	if _, err := script.Compile(); err != nil {
		return fmt.Errorf("transform %q: %w", name, err)
	}

	r.mu.Lock()
	r.scripts[name] = source
	r.mu.Unlock()
	return nil
}

// Names lists the registered custom transforms.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scripts))
	for name := range r.scripts {
		names = append(names, name)
	}
	return names
}

// Apply runs the pipeline over value in order. An empty pipeline is the
// identity. A custom step whose script fails at runtime logs a warning and
// passes the value through unchanged.
func (r *Registry) Apply(value any, specs []Spec) any {
	for _, spec := range specs {
		if spec.Type == TypeCustom {
			value = r.applyCustom(value, spec)
			continue
		}
		value = applyBuiltin(value, spec)
	}
	return value
}

func (r *Registry) applyCustom(value any, spec Spec) any {
	r.mu.RLock()
	source, ok := r.scripts[utils.Slugify(spec.Name)]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("unknown custom transform, passing value through",
			zap.String("name", spec.Name))
		return value
	}

	script := tengo.NewScript([]byte(source))
	script.SetImports(stdlib.GetModuleMap("text", "math", "times", "fmt"))
	if err := script.Add("value", value); err != nil {
		r.logger.Warn("custom transform input rejected",
			zap.String("name", spec.Name), zap.Error(err))
		return value
	}

	ctx, cancel := context.WithTimeout(context.Background(), scriptTimeout)
	defer cancel()
	compiled, err := script.RunContext(ctx)
	if err != nil {
		r.logger.Warn("custom transform failed, passing value through",
			zap.String("name", spec.Name), zap.Error(err))
		return value
	}

	if out := compiled.Get("out"); out != nil && !out.IsUndefined() {
		return out.Value()
	}
	if v := compiled.Get("value"); v != nil {
		return v.Value()
	}
	return value
}
