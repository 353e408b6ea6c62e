package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/mastercactapus/grblctl/machine"
)

const responsesChannel = "/events/responses"

// api serves Machine operations over http. Calls are serialized, the
// Machine is never used from two requests at once.
type api struct {
	http.Handler

	mx  sync.Mutex
	m   Machine
	sse *sse.Server
	log zerolog.Logger
}

type opResult struct {
	Op       string `json:"op"`
	Response string `json:"response,omitempty"`
	Error    string `json:"error,omitempty"`
}

func newAPI(m Machine, logger zerolog.Logger) *api {
	r := mux.NewRouter()

	// go-sse logs every client and message, only keep that when debugging
	var sseLog io.Writer = io.Discard
	if logger.GetLevel() <= zerolog.DebugLevel {
		sseLog = logger.With().Str("component", "sse").Logger()
	}
	a := &api{
		Handler: r,
		m:       m,
		log:     logger,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(sseLog, "", 0),
		}),
	}

	ops := map[string]func() (string, error){
		"clear-alarm":      m.ClearAlarm,
		"feed-hold":        m.FeedHold,
		"flush-stop":       m.FlushStop,
		"cancel":           m.Cancel,
		"steppers/enable":  m.EnableSteppers,
		"steppers/disable": m.DisableSteppers,
	}
	for name, fn := range ops {
		r.HandleFunc("/api/"+name, a.call(name, fn)).Methods("POST")
	}
	r.HandleFunc("/api/origin", a.origin).Methods("POST")
	r.HandleFunc("/api/mode", a.mode).Methods("POST")
	r.HandleFunc("/api/speed", a.speed).Methods("POST")
	r.HandleFunc("/api/session", a.session).Methods("GET")
	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

func (a *api) Close() { a.sse.Shutdown() }

func (a *api) call(name string, fn func() (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		a.mx.Lock()
		resp, err := fn()
		a.mx.Unlock()

		a.publish(name, resp, err)
		if err != nil {
			a.fail(w, name, err)
			return
		}
		io.WriteString(w, resp)
	}
}

func (a *api) publish(name, resp string, err error) {
	res := opResult{Op: name, Response: resp}
	if err != nil {
		res.Error = err.Error()
	}
	data, err := json.Marshal(res)
	if err != nil {
		a.log.Error().Err(err).Msg("marshal json")
		return
	}
	a.sse.SendMessage(responsesChannel, sse.SimpleMessage(string(data)))
}

func (a *api) fail(w http.ResponseWriter, name string, err error) {
	code := http.StatusInternalServerError
	if errors.Is(err, machine.ErrInvalidArgument) {
		code = http.StatusBadRequest
	}
	a.log.Error().Err(err).Str("op", name).Msg("request failed")
	http.Error(w, err.Error(), code)
}

func (a *api) origin(w http.ResponseWriter, req *http.Request) {
	var p [3]float64
	for i, key := range []string{"x", "y", "z"} {
		val := req.FormValue(key)
		if val == "" {
			continue
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			a.fail(w, "origin", fmt.Errorf("%s=%q: %w", key, val, machine.ErrInvalidArgument))
			return
		}
		p[i] = f
	}
	a.call("origin", func() (string, error) {
		return "", a.m.SetOrigin(p[0], p[1], p[2])
	})(w, req)
}

func (a *api) mode(w http.ResponseWriter, req *http.Request) {
	abs, err := parseMode(req.FormValue("mode"))
	if err != nil {
		a.fail(w, "mode", err)
		return
	}
	a.call("mode", func() (string, error) {
		return "", a.m.EnsureMovementMode(abs)
	})(w, req)
}

func (a *api) speed(w http.ResponseWriter, req *http.Request) {
	val := req.FormValue("speed")
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		a.fail(w, "speed", fmt.Errorf("speed=%q: %w", val, machine.ErrInvalidArgument))
		return
	}
	a.call("speed", func() (string, error) {
		return "", a.m.SetSpeed(f)
	})(w, req)
}

func (a *api) session(w http.ResponseWriter, req *http.Request) {
	a.mx.Lock()
	s := a.m.Session()
	a.mx.Unlock()

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(s)
	if err != nil {
		a.log.Error().Err(err).Msg("encode")
	}
}
