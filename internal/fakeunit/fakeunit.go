// Package fakeunit is a stand-in processing unit used by tests. Test
// binaries re-execute themselves as the unit: TestMain calls Run, which
// takes over the process when PEDAL_FAKE_UNIT is set in the environment
// and is a no-op otherwise.
package fakeunit

import (
	"bufio"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
)

// Env selects the fake behavior. Supported values:
//
//	copy         copy stdin to stdout, log control lines
//	control-echo copy the control descriptor to stdout
//	stubborn     ignore SIGTERM and hang until killed
const Env = "PEDAL_FAKE_UNIT"

// ArgvLog and ControlLog name files the fake appends its argv and received
// control lines to, when set.
const (
	ArgvLog    = "PEDAL_FAKE_ARGV_LOG"
	ControlLog = "PEDAL_FAKE_CONTROL_LOG"
)

// Run takes over the current process as a fake unit. It returns false when
// PEDAL_FAKE_UNIT is not set and the caller should proceed as a normal
// test binary.
func Run() (int, bool) {
	mode := os.Getenv(Env)
	if mode == "" {
		return 0, false
	}

	if path := os.Getenv(ArgvLog); path != "" {
		appendLine(path, strings.Join(os.Args[1:], " "))
	}

	var ctl *os.File
	if len(os.Args) > 1 && strings.HasPrefix(os.Args[1], "--control=") {
		// the spawner always places the control pipe on descriptor 3
		ctl = os.NewFile(3, "control")
	}

	switch mode {
	case "copy":
		if ctl != nil {
			go logControl(ctl)
		}
		if _, err := io.Copy(os.Stdout, os.Stdin); err != nil {
			return 1, true
		}
		return 0, true
	case "control-echo":
		if ctl == nil {
			return 1, true
		}
		if _, err := io.Copy(os.Stdout, ctl); err != nil {
			return 1, true
		}
		return 0, true
	case "stubborn":
		signal.Ignore(syscall.SIGTERM)
		select {}
	}
	return 1, true
}

func logControl(ctl *os.File) {
	path := os.Getenv(ControlLog)
	scanner := bufio.NewScanner(ctl)
	for scanner.Scan() {
		if path != "" {
			appendLine(path, scanner.Text())
		}
	}
}

func appendLine(path, line string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line + "\n")
}
