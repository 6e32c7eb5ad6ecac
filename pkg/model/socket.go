package model

// UnusedHandle marks a registry slot that holds no socket.
const UnusedHandle = -1

// Slot is one entry of the socket registry.
type Slot struct {
	Handle   int
	Domain   int
	Type     int
	Protocol int
}

// Open reports whether the slot holds a socket.
func (s Slot) Open() bool {
	return s.Handle != UnusedHandle
}

// SocketInfo holds information about a socket's state
type SocketInfo struct {
	Inode       uint64
	Port        int
	State       string // LISTEN, TIME_WAIT, CLOSE_WAIT, ESTABLISHED, etc.
	LocalAddr   string
	RemoteAddr  string
	Protocol    string
	Explanation string // Human-readable explanation of the state
	Workaround  string // Suggested workaround if applicable
}

// SlotReport is what the inspection pipeline gathers about one slot.
type SlotReport struct {
	Index       int         `json:"index"`
	Current     bool        `json:"current"`
	Handle      int         `json:"handle"`
	Domain      string      `json:"domain,omitempty"`
	Type        string      `json:"type,omitempty"`
	Protocol    int         `json:"protocol"`
	NonBlocking bool        `json:"nonblocking"`
	Async       bool        `json:"async"`
	LocalAddr   string      `json:"local_addr,omitempty"`
	Socket      *SocketInfo `json:"socket,omitempty"`
	Warnings    []string    `json:"warnings,omitempty"`
}
