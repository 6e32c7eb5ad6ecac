package pipeline

import (
	"fmt"

	"golang.org/x/sys/unix"

	procpkg "github.com/pranshuparmar/socktest/internal/proc"
	"github.com/pranshuparmar/socktest/internal/registry"
	"github.com/pranshuparmar/socktest/internal/target"
	"github.com/pranshuparmar/socktest/pkg/model"
)

// FlagReader reads a descriptor's file status flags.
type FlagReader interface {
	GetFlags(fd int) (int, error)
}

type AnalyzeConfig struct {
	Registry *registry.Registry
	Flags    FlagReader
	// Kernel adds the socket-table entry for each slot when set.
	Kernel bool
}

// AnalyzeSlots reports on every registry slot in index order.
func AnalyzeSlots(cfg AnalyzeConfig) []model.SlotReport {
	slots := cfg.Registry.Slots()
	current := cfg.Registry.Current()
	reports := make([]model.SlotReport, 0, len(slots))
	for i, s := range slots {
		reports = append(reports, analyze(cfg, i, i == current, s))
	}
	return reports
}

// AnalyzeCurrent reports on the current slot.
func AnalyzeCurrent(cfg AnalyzeConfig) (model.SlotReport, error) {
	s, err := cfg.Registry.CurrentSlot()
	if err != nil {
		return model.SlotReport{}, err
	}
	return analyze(cfg, cfg.Registry.Current(), true, s), nil
}

func analyze(cfg AnalyzeConfig, index int, current bool, s model.Slot) model.SlotReport {
	res := model.SlotReport{
		Index:   index,
		Current: current,
		Handle:  s.Handle,
	}
	if !s.Open() {
		return res
	}

	res.Domain = target.Domains.Name(s.Domain)
	res.Type = target.Types.Name(s.Type)
	res.Protocol = s.Protocol

	if flags, err := cfg.Flags.GetFlags(s.Handle); err == nil {
		res.NonBlocking = flags&unix.O_NONBLOCK != 0
		res.Async = flags&unix.O_ASYNC != 0
	} else {
		res.Warnings = append(res.Warnings, fmt.Sprintf("F_GETFL failed: %v", err))
	}

	if sa, err := unix.Getsockname(s.Handle); err == nil {
		res.LocalAddr = target.FormatSockaddr(sa)
	} else {
		res.Warnings = append(res.Warnings, fmt.Sprintf("getsockname failed: %v", err))
	}

	if res.Async {
		res.Warnings = append(res.Warnings, "O_ASYNC left set; SIGIO may arrive outside the signal model")
	}

	if cfg.Kernel {
		var st unix.Stat_t
		if err := unix.Fstat(s.Handle, &st); err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("fstat failed: %v", err))
		} else if info, err := procpkg.LookupInode(st.Ino); err == nil {
			res.Socket = info
		}
	}
	return res
}
