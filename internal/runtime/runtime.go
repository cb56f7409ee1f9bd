package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/object"
)

// Runtime embeds a Risor VM that turns statement scripts into SQL text.
// A script sees the statement parameter as the global params, a log
// object, and the placeholders helper; its final value must be a string.
type Runtime struct {
	logger *slog.Logger
}

// NewRuntime creates a Runtime whose scripts log through logger.
func NewRuntime(logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{logger: logger}
}

// Render evaluates src and returns the SQL text it produces. label names
// the script in errors and logs.
func (r *Runtime) Render(ctx context.Context, label, src string, params map[string]any) (string, error) {
	globals := r.buildGlobals(label, params)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	result, err := risor.Eval(ctx, src, opts...)
	if err != nil {
		return "", fmt.Errorf("runtime: script %s: %w", label, err)
	}
	s, ok := result.(*object.String)
	if !ok {
		return "", fmt.Errorf("runtime: script %s: must evaluate to a string, got %s", label, typeName(result))
	}
	r.logger.Debug("Rendered statement script.", "statement", label, "sql", s.Value())
	return s.Value(), nil
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(label string, params map[string]any) map[string]any {
	return map[string]any{
		"params":       toObject(params),
		"placeholders": makePlaceholdersFn(),
		"log":          mustProxy(&logObject{logger: r.logger.With("statement", label)}),
	}
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}

func typeName(obj object.Object) string {
	if obj == nil {
		return "nothing"
	}
	return string(obj.Type())
}
