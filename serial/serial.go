// Package serial provides a machine.Transport for a local serial port.
package serial

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	tarm "github.com/tarm/serial"
	bugst "go.bug.st/serial"

	"github.com/mastercactapus/grblctl/machine"
)

// Drivers accepted by Open.
const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"
)

// Config holds serial port configuration.
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Name string

	// Baud rate, GRBL 1.1 uses 115200
	Baud int

	// Read timeout (0 = blocking)
	ReadTimeout time.Duration

	// Driver is DriverBugst or DriverTarm. Empty means DriverBugst.
	Driver string
}

// Transport reads and writes GRBL lines on a byte stream.
type Transport struct {
	rw io.ReadWriter
	r  *bufio.Reader

	// partial holds a line cut short by a read timeout.
	partial string

	mx sync.Mutex
}

var _ machine.Transport = &Transport{}

// NewTransport creates a new Transport using rw for data.
//
// If rw has a `Drain() error` method, Flush uses it to wait for queued
// output to be sent.
func NewTransport(rw io.ReadWriter) *Transport {
	return newTransport(rw, false)
}

// newTransport creates a Transport. With timeouts set, an empty read that
// reports io.EOF is a read timeout instead of the end of the stream, which
// is how tarm reports an expired ReadTimeout.
func newTransport(rw io.ReadWriter, timeouts bool) *Transport {
	return &Transport{
		rw: rw,
		r:  bufio.NewReader(&timeoutReader{r: rw, eofTimeout: timeouts}),
	}
}

// timeoutReader turns an empty read into machine.ErrReadTimeout so
// bufio.Reader hands it back right away and stays usable.
type timeoutReader struct {
	r          io.Reader
	eofTimeout bool
}

func (r *timeoutReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n == 0 && len(p) > 0 && (err == nil || (err == io.EOF && r.eofTimeout)) {
		return 0, machine.ErrReadTimeout
	}
	return n, err
}

// Open opens the port described by cfg.
func Open(cfg Config) (*Transport, error) {
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	switch cfg.Driver {
	case "", DriverBugst:
		p, err := bugst.Open(cfg.Name, &bugst.Mode{BaudRate: cfg.Baud})
		if err != nil {
			return nil, err
		}
		if cfg.ReadTimeout > 0 {
			err = p.SetReadTimeout(cfg.ReadTimeout)
			if err != nil {
				p.Close()
				return nil, err
			}
		}
		return newTransport(p, cfg.ReadTimeout > 0), nil
	case DriverTarm:
		// tarm's Port.Flush discards queued output, so it is not exposed
		// as a Drain and Flush becomes a no-op.
		p, err := tarm.OpenPort(&tarm.Config{
			Name:        cfg.Name,
			Baud:        cfg.Baud,
			ReadTimeout: cfg.ReadTimeout,
		})
		if err != nil {
			return nil, err
		}
		return newTransport(p, cfg.ReadTimeout > 0), nil
	}
	return nil, errors.New("unknown serial driver: " + cfg.Driver)
}

// Write sends p as-is.
func (t *Transport) Write(p []byte) error {
	t.mx.Lock()
	_, err := t.rw.Write(p)
	t.mx.Unlock()
	if err != nil {
		return &machine.TransportError{Op: "write", Err: err}
	}
	return nil
}

// Flush blocks until written data has left the port.
func (t *Transport) Flush() error {
	d, ok := t.rw.(interface{ Drain() error })
	if !ok {
		return nil
	}
	t.mx.Lock()
	err := d.Drain()
	t.mx.Unlock()
	if err != nil {
		return &machine.TransportError{Op: "flush", Err: err}
	}
	return nil
}

// ReadLine returns the next line without its terminator.
//
// A read timeout returns a TransportError wrapping machine.ErrReadTimeout.
// Anything read before the timeout is kept and the next call continues
// the same line.
func (t *Transport) ReadLine() (string, error) {
	s, err := t.r.ReadString('\n')
	t.partial += s
	if err == io.EOF && t.partial != "" {
		// unterminated last line
		err = nil
	}
	if err != nil {
		return "", &machine.TransportError{Op: "read", Err: err}
	}
	line := strings.TrimRight(t.partial, "\r\n")
	t.partial = ""
	return line, nil
}

// Close will close the underlying ReadWriter, if it implements io.Closer.
func (t *Transport) Close() error {
	if closer, ok := t.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
