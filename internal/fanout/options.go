package fanout

const defaultLevel = "fanout"

// Option configures a Run call.
type Option func(*options)

type options struct {
	limit   int
	level   string
	onError func(err error)
}

func newOptions(opts ...Option) *options {
	o := &options{level: defaultLevel}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLimit bounds the number of tasks in flight. Values <= 0 mean unbounded.
func WithLimit(n int) Option {
	return func(o *options) {
		o.limit = n
	}
}

// WithLevel names the fan-out level in metrics and errors.
func WithLevel(level string) Option {
	return func(o *options) {
		if level != "" {
			o.level = level
		}
	}
}

// WithOnError observes tasks dropped under BestEffort. The hook is called
// from the caller's goroutine after all tasks finished.
func WithOnError(fn func(err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}
