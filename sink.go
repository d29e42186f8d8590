package pedal

import "time"

// tee duplicates every frame to a recorder next to the primary sink.
type tee struct {
	primary  Sink
	recorder Sink
}

// Tee returns a sink which writes every frame to primary and recorder.
// Latency is the primary's; a recorder write failure fails the whole
// write, a recorder close failure is dropped in favor of the primary's.
func Tee(primary, recorder Sink) Sink {
	return &tee{primary: primary, recorder: recorder}
}

func (t *tee) Write(frame []float64) error {
	if err := t.primary.Write(frame); err != nil {
		return err
	}
	return t.recorder.Write(frame)
}

func (t *tee) Latency() time.Duration {
	return t.primary.Latency()
}

func (t *tee) Close() error {
	err := t.primary.Close()
	if cerr := t.recorder.Close(); err == nil {
		err = cerr
	}
	return err
}
