//go:build linux

package command

import (
	"context"

	"github.com/spf13/pflag"

	"github.com/pranshuparmar/socktest/internal/output"
	"github.com/pranshuparmar/socktest/internal/pipeline"
	"github.com/pranshuparmar/socktest/internal/registry"
	"github.com/pranshuparmar/socktest/internal/target"
	"github.com/pranshuparmar/socktest/pkg/model"
)

func doHelp(ctx context.Context, d *Dispatcher, inv *invocation) error {
	d.out.Printf("socktest understands these commands:")
	for _, line := range Usage() {
		d.out.Printf("  %s", line)
	}
	return nil
}

func doModel(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) > 1 {
		return usagef("")
	}
	name := ""
	if len(inv.args) == 1 {
		name = inv.args[0]
	}
	k, err := model.ParseKind(name)
	if err != nil {
		return failf("Unrecognized model %s", name)
	}
	if err := d.eng.SetModel(k); err != nil {
		return err
	}
	d.out.Verbosef("Using %s model.", k)
	return nil
}

func doUse(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) != 1 {
		return usagef("")
	}
	n, err := target.ParseInt(inv.args[0])
	if err != nil || n < 0 || n >= registry.Capacity {
		return failf("Invalid socket number.")
	}
	if err := d.reg.Select(n); err != nil {
		return failf("Socket number %d not open.", n)
	}
	return nil
}

func (d *Dispatcher) analyzeConfig(kernel bool) pipeline.AnalyzeConfig {
	return pipeline.AnalyzeConfig{Registry: d.reg, Flags: d.flags, Kernel: kernel}
}

func doSockets(ctx context.Context, d *Dispatcher, inv *invocation) error {
	var asJSON bool
	fs, err := parseFlags("sockets", inv.args, func(fs *pflag.FlagSet) {
		fs.BoolVarP(&asJSON, "json", "j", false, "")
	})
	if err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}

	reports := pipeline.AnalyzeSlots(d.analyzeConfig(true))
	if asJSON {
		text, err := output.ToJSON(reports)
		if err != nil {
			return err
		}
		d.out.Printf("%s", text)
		return nil
	}
	d.out.Printf("%s", output.RenderSlots(reports, d.color))
	return nil
}

func doStatus(ctx context.Context, d *Dispatcher, inv *invocation) error {
	if len(inv.args) > 0 {
		return usagef("Unexpected argument(s) at end of command.")
	}
	report, err := pipeline.AnalyzeCurrent(d.analyzeConfig(true))
	if err != nil {
		return err
	}
	d.out.Printf("%s", output.RenderStatus(report, d.color))
	for _, w := range report.Warnings {
		d.out.Warnf("%s", w)
	}
	return nil
}
