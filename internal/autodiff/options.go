package autodiff

import (
	"log/slog"

	"github.com/born-ml/tracegrad/internal/backend/cpu"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// config holds the settings a traced Function is created with.
type config struct {
	dtype     tensor.DataType
	backend   tensor.Backend
	logger    *slog.Logger
	allocator func() identity.Allocator
}

func defaultConfig() config {
	return config{
		dtype:   tensor.Float32,
		backend: cpu.New(),
		logger:  slog.Default().With(slog.String("component", "autodiff")),
		allocator: func() identity.Allocator {
			return identity.NewFreeList()
		},
	}
}

// Option configures Trace.
type Option func(*config)

// WithDType sets the element type of every argument and result. Defaults to Float32.
func WithDType(dtype tensor.DataType) Option {
	return func(c *config) {
		c.dtype = dtype
	}
}

// WithBackend sets the numeric backend used by Eval. Defaults to the CPU backend.
func WithBackend(backend tensor.Backend) Option {
	return func(c *config) {
		c.backend = backend
	}
}

// WithLogger sets the logger for evaluation and differentiation records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithAllocator sets the identifier allocator factory for the traced graph.
func WithAllocator(newAllocator func() identity.Allocator) Option {
	return func(c *config) {
		c.allocator = newAllocator
	}
}
