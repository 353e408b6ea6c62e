package spjs

import (
	"io"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/mastercactapus/grblctl/machine"
)

var lastID int64

func nextID() string {
	id := atomic.AddInt64(&lastID, 1)
	return "cmd_" + strconv.FormatInt(id, 36)
}

type client interface {
	Messages() chan interface{}
	SendJSON(JSON) error
	WriteString(string) error
}

// TransportConfig configures a Transport.
type TransportConfig struct {
	// Port is the name of the serial port on the SPJS host.
	Port string

	// Baud is used when the port has to be opened. Defaults to 115200.
	Baud int

	// ReadTimeout bounds ReadLine (0 = blocking).
	ReadTimeout time.Duration

	Logger zerolog.Logger
}

// Transport is a machine.Transport for a port hosted by SPJS.
//
// Lines go out through sendjson, single realtime bytes through
// sendnobuf so they skip the SPJS queue.
type Transport struct {
	c   client
	cfg TransportConfig
	log zerolog.Logger

	lines   chan string
	closeCh chan struct{}
}

var _ machine.Transport = &Transport{}

// NewTransport creates a new Transport for cfg.Port on c.
func NewTransport(c client, cfg TransportConfig) *Transport {
	if cfg.Baud == 0 {
		cfg.Baud = 115200
	}
	t := &Transport{
		c:       c,
		cfg:     cfg,
		log:     cfg.Logger.With().Str("port", cfg.Port).Logger(),
		lines:   make(chan string, 1000),
		closeCh: make(chan struct{}),
	}
	go t.loop()
	return t
}

func (t *Transport) loop() {
	for {
		var msg interface{}
		select {
		case <-t.closeCh:
			return
		case msg = <-t.c.Messages():
		}

		switch msg := msg.(type) {
		case *DataFrame:
			if msg.Port != t.cfg.Port {
				continue
			}
			for _, line := range strings.Split(msg.Data, "\n") {
				line = strings.TrimRight(line, "\r")
				if line == "" {
					continue
				}
				select {
				case t.lines <- line:
				case <-t.closeCh:
					return
				}
			}
		case *SerialPortList:
			for _, port := range msg.SerialPorts {
				if port.Name != t.cfg.Port || port.IsOpen {
					continue
				}
				t.log.Info().Int("baud", t.cfg.Baud).Msg("opening port")
				go t.open()
			}
		case *ErrorMessage:
			t.log.Error().Str("error", msg.Error).Msg("spjs")
		}
	}
}

func (t *Transport) open() {
	err := t.c.WriteString("open " + t.cfg.Port + " " + strconv.Itoa(t.cfg.Baud) + " grbl")
	if err != nil {
		t.log.Error().Err(err).Msg("open port")
	}
}

// Write sends p to the port.
func (t *Transport) Write(p []byte) error {
	var err error
	if len(p) == 1 {
		err = t.c.WriteString("sendnobuf " + t.cfg.Port + " " + string(p))
	} else {
		err = t.c.SendJSON(JSON{
			Port: t.cfg.Port,
			Data: []Data{{Data: string(p), ID: nextID()}},
		})
	}
	if err != nil {
		return &machine.TransportError{Op: "write", Err: err}
	}
	return nil
}

// Flush is a no-op, writes return once SPJS has the data.
func (t *Transport) Flush() error { return nil }

// ReadLine returns the next line received from the port.
func (t *Transport) ReadLine() (string, error) {
	var timeout <-chan time.Time
	if t.cfg.ReadTimeout > 0 {
		timer := time.NewTimer(t.cfg.ReadTimeout)
		defer timer.Stop()
		timeout = timer.C
	}
	select {
	case line := <-t.lines:
		return line, nil
	case <-timeout:
		return "", &machine.TransportError{Op: "read", Err: machine.ErrReadTimeout}
	case <-t.closeCh:
		return "", &machine.TransportError{Op: "read", Err: io.ErrClosedPipe}
	}
}

// Close stops reading from the client. It does not close the client.
func (t *Transport) Close() error {
	select {
	case <-t.closeCh:
	default:
		close(t.closeCh)
	}
	return nil
}
