package pedal

import (
	"time"

	"github.com/pipelined/pedal/effect"
)

// Option provides a way to set functional parameters to pipeline.
type Option func(p *Pipeline) error

// WithUnit sets the processing unit executable path.
func WithUnit(executable string) Option {
	return func(p *Pipeline) error {
		p.executable = executable
		return nil
	}
}

// WithSource sets the initial audio source.
func WithSource(s Source) Option {
	return func(p *Pipeline) error {
		p.source = s
		return nil
	}
}

// WithSink sets the opener used to acquire the playback sink on start.
func WithSink(open SinkOpener) Option {
	return func(p *Pipeline) error {
		p.openSink = open
		return nil
	}
}

// WithEffect selects the initial effect identity.
func WithEffect(name string) Option {
	return func(p *Pipeline) error {
		if _, ok := effect.Get(name); !ok {
			return ErrUnknownEffect
		}
		p.current = name
		return nil
	}
}

// WithNotify sets the state-change notification callback. It is invoked
// outside the pipeline lock, in the goroutine that caused the transition.
func WithNotify(notify func(Notification)) Option {
	return func(p *Pipeline) error {
		p.notify = notify
		return nil
	}
}

// WithLogger sets logger to Pipeline. If this option is not provided,
// silent logger is used.
func WithLogger(logger Logger) Option {
	return func(p *Pipeline) error {
		p.log = logger
		return nil
	}
}

// WithoutControl disables the live control channel: the unit is spawned
// without --control and parameter updates only take effect on restart.
func WithoutControl() Option {
	return func(p *Pipeline) error {
		p.live = false
		return nil
	}
}

// WithTerminateTimeout sets how long the pipeline waits for the unit to
// exit gracefully before force-killing it.
func WithTerminateTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		p.terminateTimeout = d
		return nil
	}
}
