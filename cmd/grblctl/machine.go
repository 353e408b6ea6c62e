package main

import "github.com/mastercactapus/grblctl/machine"

// Machine is the set of device operations the CLI and api expose.
type Machine interface {
	SetSpeed(speed float64) error
	SetOrigin(x, y, z float64) error
	ClearAlarm() (string, error)
	FlushStop() (string, error)
	Cancel() (string, error)
	EnableSteppers() (string, error)
	DisableSteppers() (string, error)
	FeedHold() (string, error)
	EnsureMovementMode(absolute bool) error

	Session() machine.Session
}
