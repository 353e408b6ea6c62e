package machine

// A Transport is a raw byte stream to the device.
//
// Write must send p as-is, so single realtime bytes go out without a
// line terminator.
type Transport interface {
	Write(p []byte) error
	Flush() error
	ReadLine() (string, error)
}

// A Channel sends one command and waits for its response.
type Channel interface {
	Send(cmd string) (string, error)
}
