package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DymOK93/GWM-Harman-VCE/internal/bitfield"
	"github.com/DymOK93/GWM-Harman-VCE/internal/propmap"
	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

func newShowCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "show [PROPERTY ...]",
		Short: "Validate a config and print property values.",
		Long: `Validate a config against the property map and print the value of every
property (or only the named ones) in map order.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, opts, args)
		},
	}
}

func runShow(cmd *cobra.Command, opts *options, names []string) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	format, err := a.format()
	if err != nil {
		return err
	}
	src, _ := serial.DefaultPaths(format, a.opts.src, a.opts.dst)
	m, err := a.loadMap()
	if err != nil {
		return err
	}
	buf, err := a.readValidated(format, src, m)
	if err != nil {
		return err
	}

	selected := m.Entries
	if len(names) > 0 {
		selected = selected[:0:0]
		for _, name := range names {
			descriptor, ok := m.Lookup(name)
			if !ok {
				return fmt.Errorf("%w: %q", propmap.ErrUnknownProperty, name)
			}
			selected = append(selected, propmap.Entry{Name: name, Descriptor: descriptor})
		}
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROPERTY\tPOSITION\tBITS\tVALUE")
	for _, e := range selected {
		pos, err := bitfield.ParsePosition(e.Descriptor)
		if err != nil {
			return fmt.Errorf("property %s: %w", e.Name, err)
		}
		bits, err := bitfield.ReadBits(buf, pos)
		if err != nil {
			return fmt.Errorf("property %s: %w", e.Name, err)
		}
		n, err := bitfield.ReadNumber(buf, pos)
		if err != nil {
			return fmt.Errorf("property %s: %w", e.Name, err)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.Name, pos, bits, n)
	}
	return tw.Flush()
}
