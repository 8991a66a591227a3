package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DymOK93/GWM-Harman-VCE/internal/bitfield"
	"github.com/DymOK93/GWM-Harman-VCE/internal/common"
	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

func newUndoCmd(opts *options) *cobra.Command {
	var session string
	cmd := &cobra.Command{
		Use:   "undo --audit FILE --src EDITED --dst RESTORED",
		Short: "Revert the changes recorded in an audit log.",
		Long: `Replay the entries of one session from an audit log in reverse order,
restoring every field to the value it had before the edit. The last session
in the log is used unless --session is given.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(cmd, opts, session)
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "session identifier to revert (default: last session in the log)")
	return cmd
}

func runUndo(cmd *cobra.Command, opts *options, session string) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.opts.auditPath == "" {
		return errors.New("required: --audit")
	}
	entries, err := common.ReadPatchLog(a.opts.auditPath, a.opts.auditFormat)
	if err != nil {
		return fmt.Errorf("read audit: %w", err)
	}
	if session == "" {
		session = common.LastSession(entries)
	}
	entries = common.FilterSession(entries, session)
	if len(entries) == 0 {
		return fmt.Errorf("audit log %s has no entries for session %q", a.opts.auditPath, session)
	}

	format, err := a.format()
	if err != nil {
		return err
	}
	src, dst := serial.DefaultPaths(format, a.opts.src, a.opts.dst)
	m, err := a.loadMap()
	if err != nil {
		return err
	}
	buf, err := a.readValidated(format, src, m)
	if err != nil {
		return err
	}

	mismatches := 0
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if entry.Property == a.opts.projectProperty {
			return fmt.Errorf("audit entry %d: property %s cannot be changed", i, entry.Property)
		}
		pos, err := bitfield.ParsePosition(entry.Position)
		if err != nil {
			return fmt.Errorf("audit entry %d (%s): %w", i, entry.Property, err)
		}
		current, err := bitfield.ReadBits(buf, pos)
		if err != nil {
			return fmt.Errorf("audit entry %d (%s): %w", i, entry.Property, err)
		}
		if current != entry.After {
			mismatches++
			a.log.Warnf("Property %s holds %s, audit recorded %s", entry.Property, current, entry.After)
		}
		if _, err := bitfield.WriteBits(buf, pos, entry.Before); err != nil {
			return fmt.Errorf("audit entry %d (%s): %w", i, entry.Property, err)
		}
		a.log.Infof("Restore property %s: %s -> %s", entry.Property, current, entry.Before)
	}

	a.log.Infof("Save restored config to %s", dst)
	if err := serial.Write(format, dst, buf); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Fprintf(a.out, "Restored %d change(s) of session %s to %s\n", len(entries), session, dst)
	if mismatches > 0 {
		fmt.Fprintf(a.out, "Warning: %d field(s) did not match the recorded values; previous values reapplied regardless.\n", mismatches)
	}
	return nil
}
