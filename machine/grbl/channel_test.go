package grbl

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mastercactapus/grblctl/machine"
)

// scriptTransport replays lines and records writes.
type scriptTransport struct {
	written []string
	lines   []string
	readErr error
}

func (s *scriptTransport) Write(p []byte) error {
	s.written = append(s.written, string(p))
	return nil
}
func (s *scriptTransport) Flush() error { return nil }
func (s *scriptTransport) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		if s.readErr != nil {
			return "", s.readErr
		}
		return "", &machine.TransportError{Op: "read", Err: io.EOF}
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func TestChannel_Send(t *testing.T) {
	tr := &scriptTransport{lines: []string{"[MSG:Caution: Unlocked]\r", "ok\r", "<Idle|MPos:0,0,0>"}}
	ch := NewChannel(tr)

	resp, err := ch.Send("$X")
	require.NoError(t, err)
	assert.Equal(t, "[MSG:Caution: Unlocked]\nok", resp)
	assert.Equal(t, []string{"$X\n"}, tr.written)
	assert.Equal(t, []string{"<Idle|MPos:0,0,0>"}, tr.lines)
}

func TestChannel_Send_Terminated(t *testing.T) {
	tr := &scriptTransport{lines: []string{"ok"}}
	ch := NewChannel(tr)

	_, err := ch.Send("G92 x1 y2 z3\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"G92 x1 y2 z3\n"}, tr.written)
}

func TestChannel_Send_ErrorLine(t *testing.T) {
	tr := &scriptTransport{lines: []string{"", "error:9"}}
	ch := NewChannel(tr)

	resp, err := ch.Send("G0 X10")
	assert.NoError(t, err)
	assert.Equal(t, "error:9", resp)
}

func TestChannel_Send_Realtime(t *testing.T) {
	tr := &scriptTransport{lines: []string{"ok", "<Hold:0|MPos:1.000,2.000,3.000>"}}
	ch := NewChannel(tr)

	resp, err := ch.Send("!")
	require.NoError(t, err)
	assert.Empty(t, resp)

	resp, err = ch.Send("?")
	require.NoError(t, err)
	assert.Equal(t, "ok\n<Hold:0|MPos:1.000,2.000,3.000>", resp)

	_, err = ch.Send("\x18")
	require.NoError(t, err)

	assert.Equal(t, []string{"!", "?", "\x18"}, tr.written)
}

func TestChannel_Send_ReadError(t *testing.T) {
	tr := &scriptTransport{lines: []string{"[GC:G0 G54]"}, readErr: &machine.TransportError{Op: "read", Err: io.ErrClosedPipe}}
	ch := NewChannel(tr)

	_, err := ch.Send("$G")
	var cErr *machine.ChannelError
	require.True(t, errors.As(err, &cErr))
	assert.Equal(t, "$G", cErr.Command)

	var tErr *machine.TransportError
	require.True(t, errors.As(err, &tErr))
	assert.Equal(t, io.ErrClosedPipe, tErr.Err)
}

func TestChannel_Controller(t *testing.T) {
	tr := &scriptTransport{lines: []string{"ok", "<Idle|MPos:0.000,0.000,0.000|FS:0,0>"}}
	c := New(Config{Transport: tr, Channel: NewChannel(tr)})

	resp, err := c.ClearAlarm()
	require.NoError(t, err)
	assert.Equal(t, "ok, <Idle|MPos:0.000,0.000,0.000|FS:0,0>", resp)
	assert.Equal(t, []string{"$X\n", "?"}, tr.written)
}
