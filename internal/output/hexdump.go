package output

import (
	"fmt"
	"strings"
)

// MaxDataDisplay is how many received bytes verbose mode shows.
const MaxDataDisplay = 64

// HexPrefix renders up to MaxDataDisplay bytes of data as space-separated
// two-digit hex values.
func HexPrefix(data []byte) (int, string) {
	n := len(data)
	if n > MaxDataDisplay {
		n = MaxDataDisplay
	}
	var b strings.Builder
	for _, c := range data[:n] {
		fmt.Fprintf(&b, "%02x ", c)
	}
	return n, b.String()
}
