package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/pipelined/pedal/effect"
)

type listCommand struct{}

func (cmd *listCommand) Name() string {
	return "list"
}

func (cmd *listCommand) Help() string {
	return "Show the catalogue of effects"
}

func (cmd *listCommand) Register(*flag.FlagSet) {}

func (cmd *listCommand) Run(settings) error {
	for _, e := range effect.List() {
		fmt.Printf("%-14v %-28v %v\n", e.Name, strings.Join(e.Labels[:], "/"), e.Defaults)
	}
	return nil
}
