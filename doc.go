/*
Package pedal implements a live guitar-pedal effect pipeline. The actual
DSP lives in an external processing unit: an executable which consumes raw
PCM on stdin, produces processed PCM on stdout and accepts live pot updates
over an inherited control descriptor. pedal owns everything around it: it
spawns and supervises the unit, feeds it audio, bridges its output to a
playback sink, keeps a waveform snapshot for display and pushes parameter
changes while the audio plays.

A Pipeline is built with functional options and driven with Start, Pause,
Stop, SetEffect and SetParameter:

	p, err := pedal.New(
		pedal.WithUnit("./convert"),
		pedal.WithSource(pedal.FileSource("input.raw")),
		pedal.WithSink(portaudio.Open),
		pedal.WithEffect("echo"),
	)

Changing the effect identity during playback restarts the unit, because the
control protocol only carries parameter updates. Pot changes while playing
are delivered over the control channel, best-effort: a unit that exits
between the update and the write simply never sees it.
*/
package pedal
