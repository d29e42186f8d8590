package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/pipelined/pedal"
	"github.com/pipelined/pedal/log"
	"github.com/pipelined/pedal/portaudio"
	"github.com/pipelined/pedal/wav"
)

// errDone ends the interactive session without reporting a failure.
var errDone = errors.New("done")

type playCommand struct {
	in     string
	effect string
}

func (cmd *playCommand) Name() string {
	return "play"
}

func (cmd *playCommand) Help() string {
	return "Play an audio file through the effect unit"
}

func (cmd *playCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input file, raw stream or wav (required)")
	fs.StringVar(&cmd.effect, "effect", "", "initial effect, overrides the settings")
}

func (cmd *playCommand) Run(cfg settings) error {
	if cmd.in == "" {
		return errors.New("the -in flag is required")
	}
	name := cfg.Effect
	if cmd.effect != "" {
		name = cmd.effect
	}

	var source pedal.Source
	if strings.HasSuffix(cmd.in, ".wav") {
		source = wav.Source(cmd.in)
	} else {
		source = pedal.FileSource(cmd.in)
	}

	open := pedal.SinkOpener(portaudio.Open)
	if cfg.Record != "" {
		open = func(sampleRate, numChannels, bufferSize int) (pedal.Sink, error) {
			primary, err := portaudio.Open(sampleRate, numChannels, bufferSize)
			if err != nil {
				return nil, err
			}
			recorder, err := wav.NewRecorder(cfg.Record, 16)
			if err != nil {
				primary.Close()
				return nil, err
			}
			return pedal.Tee(primary, recorder), nil
		}
	}

	notifications := make(chan pedal.Notification, 16)
	p, err := pedal.New(
		pedal.WithUnit(cfg.Unit),
		pedal.WithSource(source),
		pedal.WithSink(open),
		pedal.WithEffect(name),
		pedal.WithLogger(log.GetLogger()),
		pedal.WithNotify(func(n pedal.Notification) {
			select {
			case notifications <- n:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}
	if err := p.Start(); err != nil {
		return err
	}
	defer p.Stop()
	printSessionHelp()

	// the scanner goroutine is not part of the group: a read on stdin
	// cannot be canceled, the process exit reclaims it
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return errDone
				}
				if err := cmd.handle(p, strings.TrimSpace(line)); err != nil {
					return err
				}
			}
		}
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case n := <-notifications:
				if n.Err != nil {
					fmt.Printf("%v: %v\n", n.State, n.Err)
				} else {
					fmt.Printf("%v\n", n.State)
				}
				switch n.State {
				case pedal.Failed:
					return n.Err
				case pedal.Idle:
					return errDone
				}
			}
		}
	})

	if err := g.Wait(); err != nil && err != errDone {
		return err
	}
	return nil
}

// handle runs one session command. Command failures are reported and keep
// the session alive; only quitting ends it.
func (cmd *playCommand) handle(p *pedal.Pipeline, line string) error {
	switch {
	case line == "":
	case line == "q" || line == "quit":
		return errDone
	case line == "pause":
		p.Pause()
	case line == "resume":
		if err := p.Resume(); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case line == "status":
		fmt.Printf("%v effect %v pots %v played %v latency %v\n",
			p.State(), p.Effect(), p.Parameters(), p.Position(), p.Latency())
	case strings.HasPrefix(line, "effect "):
		if err := p.SetEffect(strings.TrimSpace(strings.TrimPrefix(line, "effect "))); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	case len(line) >= 3 && line[0] == 'p':
		index, ierr := strconv.Atoi(line[1:2])
		value, verr := strconv.Atoi(line[2:])
		if ierr != nil || verr != nil {
			fmt.Printf("unknown command: %v\n", line)
			return nil
		}
		p.SetParameter(index, value)
	default:
		fmt.Printf("unknown command: %v\n", line)
	}
	return nil
}

func printSessionHelp() {
	fmt.Println("Session commands:")
	fmt.Println("\tpXYY         set pot X of the active effect to YY (e.g. p180)")
	fmt.Println("\tpause        feed silence, keep the unit running")
	fmt.Println("\tresume       resume playback")
	fmt.Println("\teffect NAME  switch the effect (restarts the unit)")
	fmt.Println("\tstatus       show state, effect, pots and position")
	fmt.Println("\tq            quit")
}
