package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/mastercactapus/grblctl/machine"
)

const usage = `usage: grblctl [flags] <command> [args]

commands:
  clear-alarm        unlock and query status
  feed-hold          pause motion and query status
  flush-stop         stop, reset and restore modal state and tool offset
  cancel             stop, reset and restore modal state
  enable             power the steppers
  disable            unpower the steppers
  origin [X Y Z]     set the current position (default 0 0 0)
  mode abs|rel       switch distance mode
  speed N            set the default speed
  serve              run the http api
`

var errUsage = errors.New(usage)

func parseFloats(args []string) ([]float64, error) {
	res := make([]float64, len(args))
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", a, machine.ErrInvalidArgument)
		}
		res[i] = f
	}
	return res, nil
}

func parseMode(s string) (absolute bool, err error) {
	switch s {
	case "abs", "absolute", "G90":
		return true, nil
	case "rel", "relative", "G91":
		return false, nil
	}
	return false, fmt.Errorf("mode %q: %w", s, machine.ErrInvalidArgument)
}

// runCommand runs one CLI command against m and returns the device response.
func runCommand(m Machine, args []string) (string, error) {
	if len(args) == 0 {
		return "", errUsage
	}
	cmd, args := args[0], args[1:]
	switch cmd {
	case "clear-alarm":
		return m.ClearAlarm()
	case "feed-hold":
		return m.FeedHold()
	case "flush-stop":
		return m.FlushStop()
	case "cancel":
		return m.Cancel()
	case "enable":
		return m.EnableSteppers()
	case "disable":
		return m.DisableSteppers()
	case "origin":
		if len(args) != 0 && len(args) != 3 {
			return "", errUsage
		}
		p := make([]float64, 3)
		if len(args) == 3 {
			var err error
			p, err = parseFloats(args)
			if err != nil {
				return "", err
			}
		}
		return "", m.SetOrigin(p[0], p[1], p[2])
	case "mode":
		if len(args) != 1 {
			return "", errUsage
		}
		abs, err := parseMode(args[0])
		if err != nil {
			return "", err
		}
		return "", m.EnsureMovementMode(abs)
	case "speed":
		if len(args) != 1 {
			return "", errUsage
		}
		f, err := parseFloats(args)
		if err != nil {
			return "", err
		}
		return "", m.SetSpeed(f[0])
	}

	return "", errUsage
}
