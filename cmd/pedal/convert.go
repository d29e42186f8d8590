package main

import (
	"context"
	"errors"
	"flag"

	"github.com/pipelined/pedal/convert"
)

type convertCommand struct {
	in  string
	out string
}

func (cmd *convertCommand) Name() string {
	return "convert"
}

func (cmd *convertCommand) Help() string {
	return "Convert an audio file to the raw stream format"
}

func (cmd *convertCommand) Register(fs *flag.FlagSet) {
	fs.StringVar(&cmd.in, "in", "", "input audio file (required)")
	fs.StringVar(&cmd.out, "out", "", "output raw file (required)")
}

func (cmd *convertCommand) Run(cfg settings) error {
	if cmd.in == "" || cmd.out == "" {
		return errors.New("both -in and -out flags are required")
	}
	return convert.New(cfg.Ffmpeg).File(context.Background(), cmd.in, cmd.out)
}
