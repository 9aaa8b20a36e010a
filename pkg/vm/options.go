package vm

// Opts configures a Runtime. Construct with Options(...) and
// functional-option helpers, the same pattern AthenaCoreOpts uses.
type Opts struct {
	maxGas *uint32
}

// Option mutates an Opts during construction.
type Option func(*Opts)

// Options folds a list of Option values into an Opts, starting from
// the zero value (no gas limit).
func Options(opts ...Option) Opts {
	var o Opts
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// WithMaxGas bounds the total gas a Runtime may spend.
func WithMaxGas(value uint32) Option {
	return func(o *Opts) { o.maxGas = &value }
}

// MaxGas returns the configured gas budget, if any.
func (o Opts) MaxGas() *uint32 { return o.maxGas }
