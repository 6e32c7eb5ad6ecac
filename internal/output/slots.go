package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pranshuparmar/socktest/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorBoldTree    = "\033[2m"
)

// ToJSON renders slot reports as indented JSON.
func ToJSON(reports []model.SlotReport) (string, error) {
	data, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// RenderSlots lists open slots, one per line, with their details nested
// underneath. The current slot is marked with '*'.
func RenderSlots(reports []model.SlotReport, colorEnabled bool) string {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorBold = colorBoldTree
	}

	var b strings.Builder
	open := 0
	for _, r := range reports {
		if r.Handle == model.UnusedHandle {
			continue
		}
		open++
		marker := " "
		nameColor := ""
		if r.Current {
			marker = "*"
			nameColor = colorGreen
		}
		fmt.Fprintf(&b, "%s %s%d%s %s/%s (%sfd %d%s)\n", marker, nameColor, r.Index, colorReset, r.Domain, r.Type, colorBold, r.Handle, colorReset)

		var details []string
		if r.LocalAddr != "" {
			details = append(details, "local "+r.LocalAddr)
		}
		if r.Socket != nil {
			line := r.Socket.State
			if r.Socket.RemoteAddr != "" {
				line += " remote " + r.Socket.RemoteAddr
			}
			details = append(details, line)
		}
		var flags []string
		if r.NonBlocking {
			flags = append(flags, "O_NONBLOCK")
		}
		if r.Async {
			flags = append(flags, "O_ASYNC")
		}
		if len(flags) > 0 {
			details = append(details, "flags "+strings.Join(flags, "|"))
		}
		details = append(details, r.Warnings...)

		for i, d := range details {
			connector := "├─ "
			if i == len(details)-1 {
				connector = "└─ "
			}
			fmt.Fprintf(&b, "    %s%s%s%s\n", colorMagenta, connector, colorReset, d)
		}
	}
	if open == 0 {
		return "No sockets open."
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderStatus summarizes one slot on a single line followed by the state
// explanation, if any.
func RenderStatus(r model.SlotReport, colorEnabled bool) string {
	arrow := " → "
	if colorEnabled {
		arrow = colorMagentaTree + arrow + colorResetTree
	}
	parts := []string{fmt.Sprintf("socket %d (fd %d)", r.Index, r.Handle), r.Domain + "/" + r.Type}
	if r.LocalAddr != "" {
		parts = append(parts, r.LocalAddr)
	}
	if r.Socket == nil {
		parts = append(parts, "no kernel socket-table entry")
		return strings.Join(parts, arrow)
	}
	state := r.Socket.State
	if colorEnabled {
		state = colorGreenTree + state + colorResetTree
	}
	parts = append(parts, state)
	if r.Socket.RemoteAddr != "" {
		parts = append(parts, r.Socket.RemoteAddr)
	}
	out := strings.Join(parts, arrow)
	if r.Socket.Explanation != "" {
		out += "\n  " + r.Socket.Explanation
	}
	if r.Socket.Workaround != "" {
		out += "\n  " + r.Socket.Workaround
	}
	return out
}
