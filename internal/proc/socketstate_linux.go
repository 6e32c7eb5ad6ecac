//go:build linux

package proc

import (
	"fmt"

	"github.com/pranshuparmar/socktest/pkg/model"
)

// mapTCPState maps Linux kernel TCP states (include/net/tcp_states.h) to strings
func mapTCPState(state int) string {
	switch state {
	case 1:
		return "ESTABLISHED"
	case 2:
		return "SYN_SENT"
	case 3:
		return "SYN_RECV"
	case 4:
		return "FIN_WAIT_1"
	case 5:
		return "FIN_WAIT_2"
	case 6:
		return "TIME_WAIT"
	case 7:
		return "CLOSE"
	case 8:
		return "CLOSE_WAIT"
	case 9:
		return "LAST_ACK"
	case 10:
		return "LISTEN"
	case 11:
		return "CLOSING"
	default:
		return fmt.Sprintf("UNKNOWN (%02X)", state)
	}
}

// Datagram and raw sockets reuse the TCP codes: 1 once connected, 7 otherwise.
func mapDatagramState(state int) string {
	switch state {
	case 1:
		return "CONNECTED"
	case 7:
		return "UNCONNECTED"
	default:
		return fmt.Sprintf("UNKNOWN (%02X)", state)
	}
}

func addStateExplanation(info *model.SocketInfo) {
	switch info.State {
	case "LISTEN":
		info.Explanation = "Listening; accept will not block once a connection is queued"
	case "TIME_WAIT":
		info.Explanation = "Connection closed, waiting for delayed packets"
		info.Workaround = "Wait for timeout (usually 60s) or setsockopt SO_REUSEADDR before bind"
	case "CLOSE_WAIT":
		info.Explanation = "Remote side closed connection, local side has not closed yet"
		info.Workaround = "read returns 0 bytes; close the socket"
	case "FIN_WAIT_1":
		info.Explanation = "Local side initiated close, waiting for acknowledgment"
	case "FIN_WAIT_2":
		info.Explanation = "Local close acknowledged, waiting for remote close"
	case "ESTABLISHED":
		info.Explanation = "Active connection"
	case "SYN_SENT":
		info.Explanation = "Connection request sent, waiting for response"
		info.Workaround = "A nonblocking connect completes once the socket is writable"
	case "SYN_RECV":
		info.Explanation = "Connection request received, sending acknowledgment"
	case "CLOSING":
		info.Explanation = "Both sides initiated close simultaneously"
	case "LAST_ACK":
		info.Explanation = "Waiting for final acknowledgment of close"
	case "CLOSE":
		info.Explanation = "Not bound or connected"
	default:
		info.Explanation = "Socket in " + info.State + " state"
	}
}
