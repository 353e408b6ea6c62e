package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mastercactapus/grblctl/machine"
)

func TestRunCommand(t *testing.T) {
	tests := []struct {
		args []string
		call string
	}{
		{[]string{"clear-alarm"}, "clear-alarm"},
		{[]string{"feed-hold"}, "feed-hold"},
		{[]string{"flush-stop"}, "flush-stop"},
		{[]string{"cancel"}, "cancel"},
		{[]string{"enable"}, "enable"},
		{[]string{"disable"}, "disable"},
		{[]string{"origin"}, "origin 0 0 0"},
		{[]string{"origin", "1", "2.5", "-3"}, "origin 1 2.5 -3"},
		{[]string{"mode", "abs"}, "mode true"},
		{[]string{"mode", "rel"}, "mode false"},
		{[]string{"speed", "250"}, "speed 250"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			m := &fakeMachine{resp: "ok"}
			_, err := runCommand(m, tt.args)
			assert.NoError(t, err)
			assert.Equal(t, []string{tt.call}, m.calls)
		})
	}
}

func TestRunCommand_Response(t *testing.T) {
	m := &fakeMachine{resp: "ok, <Idle>"}
	resp, err := runCommand(m, []string{"feed-hold"})
	assert.NoError(t, err)
	assert.Equal(t, "ok, <Idle>", resp)
}

func TestRunCommand_Invalid(t *testing.T) {
	m := &fakeMachine{}

	_, err := runCommand(m, nil)
	assert.Equal(t, errUsage, err)
	_, err = runCommand(m, []string{"home"})
	assert.Equal(t, errUsage, err)
	_, err = runCommand(m, []string{"origin", "1"})
	assert.Equal(t, errUsage, err)

	_, err = runCommand(m, []string{"mode", "sideways"})
	assert.True(t, errors.Is(err, machine.ErrInvalidArgument))
	_, err = runCommand(m, []string{"speed", "fast"})
	assert.True(t, errors.Is(err, machine.ErrInvalidArgument))
	_, err = runCommand(m, []string{"speed", "-5"})
	assert.True(t, errors.Is(err, machine.ErrInvalidArgument))

	assert.Equal(t, []string{"speed -5"}, m.calls)
}
