package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/mastercactapus/grblctl/machine"
	"github.com/mastercactapus/grblctl/machine/grbl"
	"github.com/mastercactapus/grblctl/serial"
	"github.com/mastercactapus/grblctl/spjs"
)

func main() {
	os.Exit(run(os.Args[1:], openTransport, os.Stdout, os.Stderr))
}

type transportOpener func(cfg *config, logger zerolog.Logger) (machine.Transport, io.Closer, error)

// run executes the command line in args and returns the exit code. The
// transport is always closed before returning.
func run(args []string, open transportOpener, stdout, stderr io.Writer) int {
	cfg, args, err := loadConfig(args)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	logger := newLogger(cfg.LogLevel, stderr)

	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	t, closer, err := open(cfg, logger)
	if err != nil {
		logger.Error().Err(err).Str("port", cfg.Port).Msg("open transport")
		return 1
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Warn().Err(err).Msg("close transport")
		}
	}()

	ctrl := grbl.New(grbl.Config{
		Transport: t,
		Channel:   grbl.NewChannel(t),
		Settle:    cfg.Settle,
		Logger:    &logger,
	})

	if args[0] == "serve" {
		err = serve(ctrl, cfg.Addr, logger)
		if err != nil {
			logger.Error().Err(err).Msg("serve")
			return 1
		}
		return 0
	}

	resp, err := runCommand(ctrl, args)
	if errors.Is(err, errUsage) {
		fmt.Fprint(stderr, usage)
		return 2
	}
	if err != nil {
		logger.Error().Err(err).Str("command", args[0]).Msg("command failed")
		return 1
	}
	if resp != "" {
		fmt.Fprintln(stdout, resp)
	}
	if stat, err := grbl.ParseStatus(resp); err == nil {
		logger.Info().
			Str("state", stat.State).
			Stringer("mpos", stat.MPos).
			Stringer("wpos", stat.WPos()).
			Msg("status")
	}
	return 0
}

func openTransport(cfg *config, logger zerolog.Logger) (machine.Transport, io.Closer, error) {
	if cfg.SPJS != "" {
		sp := spjs.NewSPJS(cfg.SPJS, logger)
		t := spjs.NewTransport(sp, spjs.TransportConfig{
			Port:        cfg.Port,
			Baud:        cfg.Baud,
			ReadTimeout: cfg.ReadTimeout,
			Logger:      logger,
		})
		return t, closers{t, sp}, nil
	}

	t, err := serial.Open(serial.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Driver:      cfg.Driver,
	})
	if err != nil {
		return nil, nil, err
	}
	return t, t, nil
}

type closers []io.Closer

func (c closers) Close() error {
	var firstErr error
	for _, cl := range c {
		if err := cl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func serve(m Machine, addr string, logger zerolog.Logger) error {
	a := newAPI(m, logger)
	defer a.Close()

	logger.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		logger.Debug().Str("method", req.Method).Str("path", req.URL.Path).Str("remote", req.RemoteAddr).Msg("request")
		a.ServeHTTP(w, req)
	}))
}
