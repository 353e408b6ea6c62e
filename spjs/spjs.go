package spjs

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SPJS is a client for serial-port-json-server over a websocket.
// It reconnects until closed.
type SPJS struct {
	url string
	log zerolog.Logger

	outgoing  chan message
	incomming chan interface{}

	closeCh   chan struct{}
	closeOnce sync.Once
}

type message struct {
	done    chan struct{}
	payload []byte
}

type DataFrame struct {
	Port string `json:"P"`
	Data string `json:"D"`
}
type CmdStatus struct {
	Cmd        string
	QueueCount int `json:"QCnt"`
	Type       []string
	ID         string `json:"Id"`
}

type ErrorMessage struct {
	Error string
}
type SerialPortList struct {
	SerialPorts []SerialPort
}
type SerialPort struct {
	Name            string
	Friendly        string
	SerialNumber    string
	IsOpen          bool
	IsPrimary       bool
	Baud            int
	BufferAlgorithm string
}

func NewSPJS(url string, log zerolog.Logger) *SPJS {
	sp := &SPJS{
		url:       url,
		log:       log.With().Str("component", "spjs").Logger(),
		outgoing:  make(chan message, 1000),
		incomming: make(chan interface{}, 1000),
		closeCh:   make(chan struct{}),
	}

	go sp.loop()

	return sp
}
func (sp *SPJS) Messages() chan interface{} {
	return sp.incomming
}

// Close stops reconnecting and fails any pending writes.
func (sp *SPJS) Close() error {
	sp.closeOnce.Do(func() { close(sp.closeCh) })
	return nil
}

func parseSPJSMessage(data []byte, msg map[string]json.RawMessage) (val interface{}, err error) {
	check := func(fieldName string, v interface{}) bool {
		if msg[fieldName] == nil {
			return false
		}
		val = v
		err = json.Unmarshal(data, val)
		return true
	}
	if check("Error", &ErrorMessage{}) {
		return
	}
	if check("SerialPorts", &SerialPortList{}) {
		return
	}
	if check("Cmd", &CmdStatus{}) {
		return
	}
	if check("D", &DataFrame{}) {
		return
	}

	return nil, errors.New("unknown message: " + string(data))
}
func (sp *SPJS) readLoop(ws *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			sp.log.Error().Err(err).Msg("read")
			return
		}
		if !bytes.HasPrefix(data, []byte("{")) {
			// ignore echo messages
			continue
		}
		var msg map[string]json.RawMessage
		err = json.Unmarshal(data, &msg)
		if err != nil {
			sp.log.Error().Err(err).Msg("read")
			continue
		}
		val, err := parseSPJSMessage(data, msg)
		if err != nil {
			sp.log.Debug().Err(err).Msg("parse")
			continue
		}
		select {
		case sp.incomming <- val:
		case <-sp.closeCh:
			return
		}
	}
}
func (sp *SPJS) loop() {
	var nextUp message

reconnect:
	for {
		select {
		case <-sp.closeCh:
			return
		default:
		}
		sp.log.Info().Str("url", sp.url).Msg("connecting")
		ws, _, err := websocket.DefaultDialer.Dial(sp.url, nil)
		if err != nil {
			sp.log.Error().Err(err).Msg("connect")
			select {
			case <-sp.closeCh:
				return
			case <-time.After(3 * time.Second):
			}
			continue
		}
		sp.log.Info().Msg("connected")
		ch := make(chan struct{})
		go sp.readLoop(ws, ch)
		go sp.WriteString("list") // refresh list on reconnect

		for {
			if nextUp.done != nil {
				err = ws.WriteMessage(websocket.TextMessage, nextUp.payload)
				if err != nil {
					sp.log.Error().Err(err).Msg("send")
					ws.Close()
					continue reconnect
				}
				close(nextUp.done)
				nextUp.done = nil
			}

			select {
			case <-sp.closeCh:
				ws.Close()
				return
			case <-ch:
				continue reconnect
			case nextUp = <-sp.outgoing:
			}
		}
	}
}

type JSON struct {
	Port string `json:"P"`
	Data []Data
}
type Data struct {
	Data string `json:"D"`
	ID   string `json:"Id"`
}

func (sp *SPJS) SendJSON(v JSON) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return sp.send(append([]byte("sendjson "), data...))
}
func (sp *SPJS) WriteString(data string) error {
	return sp.send([]byte(data))
}

// send blocks until payload is written to the websocket.
func (sp *SPJS) send(payload []byte) error {
	ch := make(chan struct{})
	select {
	case sp.outgoing <- message{done: ch, payload: payload}:
	case <-sp.closeCh:
		return io.ErrClosedPipe
	}
	select {
	case <-ch:
		return nil
	case <-sp.closeCh:
		return io.ErrClosedPipe
	}
}
