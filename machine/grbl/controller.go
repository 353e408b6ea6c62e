package grbl

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mastercactapus/grblctl/coord"
	"github.com/mastercactapus/grblctl/machine"
)

// DefaultSettle is how long to wait between a soft stop and a soft reset.
const DefaultSettle = time.Second

// Config configures a Controller.
type Config struct {
	Transport machine.Transport
	Channel   machine.Channel

	// Settle is the wait between the soft stop and soft reset of a
	// recovery. Zero means DefaultSettle.
	Settle time.Duration

	// Sleep is used for the settle wait. Defaults to time.Sleep.
	Sleep func(time.Duration)

	Logger *zerolog.Logger
}

// Controller issues the fixed GRBL command sequences and tracks the
// session state that goes with them.
//
// A Controller is not safe for concurrent use. Callers sharing one must
// serialize access.
type Controller struct {
	t  machine.Transport
	ch machine.Channel

	settle time.Duration
	sleep  func(time.Duration)
	log    zerolog.Logger

	session machine.Session
}

// New creates a new Controller from cfg.
func New(cfg Config) *Controller {
	c := &Controller{
		t:      cfg.Transport,
		ch:     cfg.Channel,
		settle: cfg.Settle,
		sleep:  cfg.Sleep,
		log:    zerolog.Nop(),
	}
	if c.settle == 0 {
		c.settle = DefaultSettle
	}
	if c.sleep == nil {
		c.sleep = time.Sleep
	}
	if cfg.Logger != nil {
		c.log = cfg.Logger.With().Str("component", "grbl").Logger()
	}
	return c
}

// Session returns a copy of the current session state.
func (c *Controller) Session() machine.Session { return c.session }

// SetSpeed records the default speed. No commands are sent.
func (c *Controller) SetSpeed(speed float64) error {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return fmt.Errorf("speed %v: %w", speed, machine.ErrInvalidArgument)
	}
	c.session.DefaultSpeed = speed
	return nil
}

// SetOrigin sets the current position to (x, y, z) on the device.
//
// Position is only updated once the device has answered.
func (c *Controller) SetOrigin(x, y, z float64) error {
	p := coord.Point{X: x, Y: y, Z: z}
	s := c.sequence("set origin")
	s.send(setOriginCommand(p))
	if s.err != nil {
		return s.err
	}
	c.session.Position = p
	return nil
}

// ClearAlarm unlocks the device and queries status.
func (c *Controller) ClearAlarm() (string, error) {
	c.log.Info().Msg("clearing alarm")
	s := c.sequence("clear alarm")
	s.send(cmdUnlock)
	s.send(cmdStatus)
	return s.result()
}

// FlushStop aborts the current motion, resets the device and restores
// default modal state including the tool length offset.
func (c *Controller) FlushStop() (string, error) {
	return c.recoverDevice("flush stop", true)
}

// Cancel is FlushStop without the tool length offset restore.
func (c *Controller) Cancel() (string, error) {
	return c.recoverDevice("cancel", false)
}

func (c *Controller) recoverDevice(op string, toolOffset bool) (string, error) {
	s := c.sequence(op)
	s.write([]byte{RealtimeFeedHold})
	s.flush()
	s.wait(c.settle)
	s.write([]byte{RealtimeReset})
	if s.step >= 4 {
		// the reset may have reached the device, modal state is gone
		c.session.Mode = machine.ModeUnknown
	}

	s.send(cmdParameters)
	// not read back, the next send picks up whatever it produces
	s.write(rawParserState)

	s.send(cmdParserState)
	s.send(cmdUnlock)
	s.send(cmdModalDefault)
	if toolOffset {
		s.send(cmdToolOffset)
	}
	s.send(cmdParserState)
	s.send(cmdStatus)

	resp, err := s.result()
	if err != nil {
		return "", err
	}

	// cmdModalDefault includes G90
	c.session.Mode = machine.ModeAbsolute
	return resp, nil
}

// EnableSteppers powers the stepper motors.
func (c *Controller) EnableSteppers() (string, error) {
	s := c.sequence("enable steppers")
	s.send(cmdSteppersOn)
	s.send(cmdStatus)
	return s.result()
}

// DisableSteppers currently sends the same command as EnableSteppers.
//
// TODO: send a motor disable command once the target firmware's is confirmed.
func (c *Controller) DisableSteppers() (string, error) {
	s := c.sequence("disable steppers")
	s.send(cmdSteppersOn)
	s.send(cmdStatus)
	return s.result()
}

// FeedHold pauses motion and queries status.
func (c *Controller) FeedHold() (string, error) {
	s := c.sequence("feed hold")
	s.send(cmdFeedHold)
	s.send(cmdStatus)
	return s.result()
}

// EnsureMovementMode switches the device to absolute or relative distance
// mode. Nothing is written if the session is already in that mode.
func (c *Controller) EnsureMovementMode(absolute bool) error {
	want := machine.ModeRelative
	if absolute {
		want = machine.ModeAbsolute
	}
	if c.session.Mode == want {
		return nil
	}

	s := c.sequence("ensure movement mode")
	if absolute {
		s.write(rawAbsolute)
	} else {
		s.write(rawRelative)
	}
	if s.err != nil {
		return s.err
	}
	c.session.Mode = want

	if !absolute {
		s.readLine()
	}
	return s.err
}

// sequence runs steps in order, skipping everything after the first failure.
type sequence struct {
	c    *Controller
	op   string
	step int
	resp []string
	err  error
}

func (c *Controller) sequence(op string) *sequence {
	return &sequence{c: c, op: op}
}

func (s *sequence) begin(cmd string) bool {
	if s.err != nil {
		return false
	}
	s.step++
	s.c.log.Debug().Str("op", s.op).Int("step", s.step).Str("cmd", strings.TrimSpace(cmd)).Msg("step")
	return true
}

func (s *sequence) fail(cmd string, err error) {
	s.err = &machine.StepError{Op: s.op, Step: s.step, Command: cmd, Err: err}
	s.c.log.Debug().Err(err).Str("op", s.op).Int("step", s.step).Msg("step failed")
}

func (s *sequence) send(cmd string) {
	if !s.begin(cmd) {
		return
	}
	resp, err := s.c.ch.Send(cmd)
	if err != nil {
		s.fail(cmd, err)
		return
	}
	s.resp = append(s.resp, resp)
}

func (s *sequence) write(p []byte) {
	cmd := string(p)
	if !s.begin(cmd) {
		return
	}
	if err := s.c.t.Write(p); err != nil {
		s.fail(cmd, err)
	}
}

func (s *sequence) flush() {
	if !s.begin("flush") {
		return
	}
	if err := s.c.t.Flush(); err != nil {
		s.fail("flush", err)
	}
}

func (s *sequence) readLine() {
	if !s.begin("read") {
		return
	}
	if _, err := s.c.t.ReadLine(); err != nil {
		s.fail("read", err)
	}
}

func (s *sequence) wait(d time.Duration) {
	if !s.begin("settle " + d.String()) {
		return
	}
	s.c.sleep(d)
}

func (s *sequence) result() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return strings.Join(s.resp, ", "), nil
}
