package main

import (
	"flag"
	"fmt"
	"os"
)

type command interface {
	Name() string
	Help() string
	Register(*flag.FlagSet)
	Run(settings) error
}

var (
	successExitCode = 0
	errorExitCode   = 1
	commands        = []command{
		&listCommand{},
		&convertCommand{},
		&playCommand{},
	}
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	cmdName, cmdArgs := parseArgs(args)
	if cmdName == "" {
		printUsage()
		return errorExitCode
	}

	cfg, err := loadSettings()
	if err != nil {
		fmt.Printf("Invalid settings: %v\n", err)
		return errorExitCode
	}

	for _, cmd := range commands {
		if cmd.Name() == cmdName {
			flags := flag.NewFlagSet(cmdName, flag.ExitOnError)
			cmd.Register(flags)
			if err := flags.Parse(cmdArgs); err != nil {
				flags.PrintDefaults()
				return errorExitCode
			}
			if err := cmd.Run(cfg); err != nil {
				fmt.Printf("Command failed: %v\n", err)
				return errorExitCode
			}
			return successExitCode
		}
	}

	printUsage()
	return errorExitCode
}

func parseArgs(args []string) (string, []string) {
	if len(args) < 2 {
		return "", nil
	}
	return args[1], args[2:]
}

func printUsage() {
	fmt.Println("Pedal plays audio through an external effect unit")
	fmt.Println()
	fmt.Println("Usage: pedal <command>")
	fmt.Println()
	fmt.Println("Commands:")
	for _, cmd := range commands {
		fmt.Printf("\t%s\t%s\n", cmd.Name(), cmd.Help())
	}
}
