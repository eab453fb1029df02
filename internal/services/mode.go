package services

// Mode selects between canned data and real providers. It is decided once at
// startup and passed to every component that branches on it.
type Mode struct {
	mock bool
}

// NewMode returns the mode for the given flag.
func NewMode(useMock bool) Mode {
	return Mode{mock: useMock}
}

// IsMock reports whether external calls are replaced with canned data.
func (m Mode) IsMock() bool {
	return m.mock
}

func (m Mode) String() string {
	if m.mock {
		return "mock"
	}
	return "live"
}
