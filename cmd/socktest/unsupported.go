//go:build !linux

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(
		os.Stderr,
		"socktest is only supported on Linux.\n\nIt relies on SIGIO ownership, SIOCATMARK and /proc/net socket tables, which other platforms do not provide in the same form.",
	)
	os.Exit(1)
}
