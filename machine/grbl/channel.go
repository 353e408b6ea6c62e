package grbl

import (
	"strings"

	"github.com/mastercactapus/grblctl/machine"
)

// Channel sends commands over a Transport and collects the reply lines.
type Channel struct {
	t machine.Transport
}

var _ machine.Channel = &Channel{}

// NewChannel creates a new Channel on top of t.
func NewChannel(t machine.Transport) *Channel {
	return &Channel{t: t}
}

// Send writes cmd and blocks until GRBL has answered it.
//
// Realtime commands are written as a single byte. A status query waits for
// the status report, other realtime commands have no reply and return
// immediately. Everything else is sent as a line and waits for `ok` or
// `error:N`. All lines read on the way, including any banner or alarm
// messages, are returned joined by newlines.
func (c *Channel) Send(cmd string) (string, error) {
	if len(cmd) == 1 && isRealtime(cmd[0]) {
		err := c.t.Write([]byte{cmd[0]})
		if err != nil {
			return "", &machine.ChannelError{Command: cmd, Err: err}
		}
		if cmd[0] != RealtimeStatus {
			return "", nil
		}
		return c.readUntil(cmd, isStatusReport)
	}

	line := strings.TrimRight(cmd, "\r\n") + "\n"
	err := c.t.Write([]byte(line))
	if err != nil {
		return "", &machine.ChannelError{Command: cmd, Err: err}
	}
	return c.readUntil(cmd, isAck)
}

func (c *Channel) readUntil(cmd string, done func(string) bool) (string, error) {
	var lines []string
	for {
		line, err := c.t.ReadLine()
		if err != nil {
			return "", &machine.ChannelError{Command: cmd, Err: err}
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if done(line) {
			return strings.Join(lines, "\n"), nil
		}
	}
}

func isAck(line string) bool {
	return line == "ok" || strings.HasPrefix(line, "error:")
}

func isStatusReport(line string) bool {
	return strings.HasPrefix(line, "<")
}
