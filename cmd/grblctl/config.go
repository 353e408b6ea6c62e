package main

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type config struct {
	Port        string
	Baud        int
	Driver      string
	SPJS        string
	ReadTimeout time.Duration
	Settle      time.Duration
	Addr        string
	LogLevel    string
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("grblctl", pflag.ContinueOnError)
	fs.String("config", "", "Config file to use instead of searching for grblctl.{yaml,toml,json}.")
	fs.String("port", "/dev/ttyUSB0", "Port path (or name if using SPJS).")
	fs.Int("baud", 115200, "Baud rate.")
	fs.String("driver", "bugst", "Serial driver, 'bugst' or 'tarm'.")
	fs.String("spjs", "", "Websocket URL of the SPJS server to use, e.g. ws://cnc-bridge:8989/ws.")
	fs.Duration("read-timeout", 0, "Serial read timeout (0 blocks forever).")
	fs.Duration("settle", time.Second, "Wait between soft stop and soft reset when recovering.")
	fs.String("addr", ":9091", "Address to bind the api to when serving.")
	fs.String("log-level", "info", "Log level: trace, debug, info or warn.")
	return fs
}

// loadConfig resolves flags, GRBLCTL_* environment variables and an
// optional config file, in that order of precedence. It returns the
// remaining positional arguments.
func loadConfig(args []string) (*config, []string, error) {
	fs := newFlagSet()
	err := fs.Parse(args)
	if err != nil {
		return nil, nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("grblctl")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file, _ := fs.GetString("config"); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("grblctl")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/grblctl")
	}
	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return nil, nil, err
	}

	err = v.BindPFlags(fs)
	if err != nil {
		return nil, nil, err
	}

	cfg := &config{
		Port:        v.GetString("port"),
		Baud:        v.GetInt("baud"),
		Driver:      v.GetString("driver"),
		SPJS:        v.GetString("spjs"),
		ReadTimeout: v.GetDuration("read-timeout"),
		Settle:      v.GetDuration("settle"),
		Addr:        v.GetString("addr"),
		LogLevel:    v.GetString("log-level"),
	}
	return cfg, fs.Args(), nil
}

func newLogger(level string, w io.Writer) zerolog.Logger {
	var lvl zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "trace":
		lvl = zerolog.TraceLevel
	case "warn":
		lvl = zerolog.WarnLevel
	default:
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(
		zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339},
	).Level(lvl).With().Timestamp().Logger()
}
