package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

func newConvertCmd(opts *options) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "convert --to {binary|text}",
		Short: "Re-serialize a config in the other file format.",
		Long: `Read --src in the --type format, validate it, and write it to --dst in the
--to format. Binary output gets a freshly computed checksum trailer.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, to)
		},
	}
	cmd.Flags().StringVar(&to, "to", serial.TypeText, "output config type: binary or text")
	return cmd
}

func runConvert(cmd *cobra.Command, opts *options, to string) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	from, err := a.format()
	if err != nil {
		return err
	}
	target, err := serial.New(to)
	if err != nil {
		return err
	}
	src, _ := serial.DefaultPaths(from, a.opts.src, "")
	_, dst := serial.DefaultPaths(target, "", a.opts.dst)
	m, err := a.loadMap()
	if err != nil {
		return err
	}
	buf, err := a.readValidated(from, src, m)
	if err != nil {
		return err
	}
	a.log.Infof("Save %s config to %s", target.Name(), dst)
	if err := serial.Write(target, dst, buf); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
