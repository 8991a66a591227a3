package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/DymOK93/GWM-Harman-VCE/internal/checksum"
	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

var errChecksumMismatch = errors.New("checksum mismatch")

func newVerifyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "verify [FILE]",
		Short: "Check the checksum trailer of a binary config.",
		Long: `Recompute the checksum over a binary config and compare it with the stored
trailer byte. FILE defaults to --src (or VehicleConfig.bin).`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd, opts, args)
		},
	}
}

func runVerify(cmd *cobra.Command, opts *options, args []string) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	path, _ := serial.DefaultPaths(serial.Binary{}, a.opts.src, "")
	if len(args) == 1 {
		path = args[0]
	}
	body, stored, want, err := checksumFile(path)
	if err != nil {
		return err
	}
	if stored != want {
		return fmt.Errorf("%w: %s stores 0x%02X, computed 0x%02X over %d bytes", errChecksumMismatch, path, stored, want, body)
	}
	fmt.Fprintf(a.out, "%s: checksum 0x%02X OK (%d bytes)\n", path, want, body)
	return nil
}

// checksumFile streams path through the checksum, stopping before the
// trailer byte. It returns the body length, the stored trailer and the
// computed checksum.
func checksumFile(path string) (int64, byte, byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return 0, 0, 0, err
	}
	body := info.Size() - checksum.Size
	if body < 0 {
		return 0, 0, 0, fmt.Errorf("%s: %w", path, serial.ErrEmptyBlob)
	}
	h := checksum.New()
	if _, err := io.CopyN(h, f, body); err != nil {
		return 0, 0, 0, err
	}
	var trailer [checksum.Size]byte
	if _, err := io.ReadFull(f, trailer[:]); err != nil {
		return 0, 0, 0, err
	}
	return body, trailer[0], h.Sum8(), nil
}
