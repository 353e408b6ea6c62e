package main

import (
	"fmt"

	"github.com/mastercactapus/grblctl/coord"
	"github.com/mastercactapus/grblctl/machine"
)

// fakeMachine records calls by name.
type fakeMachine struct {
	calls   []string
	resp    string
	err     error
	session machine.Session
}

func (f *fakeMachine) op(name string) (string, error) {
	f.calls = append(f.calls, name)
	if f.err != nil {
		return "", f.err
	}
	return f.resp, nil
}

func (f *fakeMachine) SetSpeed(speed float64) error {
	f.calls = append(f.calls, fmt.Sprintf("speed %v", speed))
	if speed <= 0 {
		return machine.ErrInvalidArgument
	}
	f.session.DefaultSpeed = speed
	return f.err
}
func (f *fakeMachine) SetOrigin(x, y, z float64) error {
	f.calls = append(f.calls, fmt.Sprintf("origin %v %v %v", x, y, z))
	if f.err == nil {
		f.session.Position = coord.Point{X: x, Y: y, Z: z}
	}
	return f.err
}
func (f *fakeMachine) ClearAlarm() (string, error)      { return f.op("clear-alarm") }
func (f *fakeMachine) FlushStop() (string, error)       { return f.op("flush-stop") }
func (f *fakeMachine) Cancel() (string, error)          { return f.op("cancel") }
func (f *fakeMachine) EnableSteppers() (string, error)  { return f.op("enable") }
func (f *fakeMachine) DisableSteppers() (string, error) { return f.op("disable") }
func (f *fakeMachine) FeedHold() (string, error)        { return f.op("feed-hold") }
func (f *fakeMachine) EnsureMovementMode(absolute bool) error {
	f.calls = append(f.calls, fmt.Sprintf("mode %t", absolute))
	if f.err == nil {
		f.session.Mode = machine.ModeRelative
		if absolute {
			f.session.Mode = machine.ModeAbsolute
		}
	}
	return f.err
}
func (f *fakeMachine) Session() machine.Session { return f.session }
