package main

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/DymOK93/GWM-Harman-VCE/internal/checksum"
	"github.com/DymOK93/GWM-Harman-VCE/internal/common"
	"github.com/DymOK93/GWM-Harman-VCE/internal/edit"
	"github.com/DymOK93/GWM-Harman-VCE/internal/propmap"
	"github.com/DymOK93/GWM-Harman-VCE/internal/report"
	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

// Version is filled in by the build; "go install" builds fall back to the
// module version.
var Version string

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "vcedit [flags] [PROPERTY:BITSTRING | PROPERTY=VALUE ...]",
		Short: "Edit vehicle configuration bit-fields.",
		Long: `Edit vehicle configuration bit-fields described by a JSON property map.

Each argument sets one property, either as a bit string of the field width
(PROPERTY:0101) or as a number (PROPERTY=5, PROPERTY=0x1F, PROPERTY=0o17).
The value is everything after the first ':' or '=', so PROPERTY:10:1 and
PROPERTY=1=2 are rejected instead of truncated. Decimal numbers must not have
leading zeros. Without arguments the source config is only validated and
nothing is written.`,
		Version:      version(),
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, opts, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "path to YAML settings file (default ./"+defaultSettingsFile+" when present)")
	pf.StringVar(&opts.mapPath, "map", "map.json", "path to JSON file with mapping of properties to config bits")
	pf.StringVar(&opts.typ, "type", serial.TypeBinary, "config file type: binary or text")
	pf.StringVar(&opts.src, "src", "", "path to source config file (default VehicleConfig.{bin|txt})")
	pf.StringVar(&opts.dst, "dst", "", "path to destination config file (default NewVehicleConfig.{bin|txt})")
	pf.StringVar(&opts.projectProperty, "project-property", propmap.DefaultProjectProperty, "property holding the project code")
	pf.StringVar(&opts.auditPath, "audit", "", "audit log of applied changes")
	pf.StringVar(&opts.auditFormat, "audit-format", "", "audit log encoding: jsonl or cbor (default from extension)")
	pf.StringVar(&opts.logFile, "log-file", "", "also write logs to this rotating file")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "increase logging verbosity")

	cmd.Flags().StringVar(&opts.reportJSON, "report", "", "write a JSON session report")
	cmd.Flags().StringVar(&opts.reportPDF, "report-pdf", "", "write a PDF session report")

	cmd.AddCommand(
		newShowCmd(opts),
		newVerifyCmd(opts),
		newUndoCmd(opts),
		newConvertCmd(opts),
	)
	return cmd
}

func version() string {
	if Version != "" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}
	return "(unknown version)"
}

func runEdit(cmd *cobra.Command, opts *options, args []string) error {
	a, err := newApp(cmd, opts)
	if err != nil {
		return err
	}
	defer a.Close()

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
	requests, err := edit.ParseAll(args)
	if err != nil {
		return err
	}

	session := &edit.Session{
		Map:             m,
		ProjectProperty: a.opts.projectProperty,
		Observer: edit.ObserverFunc(func(c edit.Change) error {
			a.log.Info(c.String())
			return nil
		}),
	}
	changes, err := session.Apply(buf, requests)
	if err != nil {
		return err
	}

	code, err := m.ProjectCode(buf, a.opts.projectProperty)
	if err != nil {
		return err
	}
	rep := report.Session{
		ID:          a.sessionID,
		CreatedAt:   time.Now().UTC(),
		MapPath:     a.opts.mapPath,
		Source:      src,
		Format:      format.Name(),
		ConfigSize:  m.ConfigSize,
		ProjectCode: int(code),
		Changes:     report.Rows(changes),
	}

	if len(changes) == 0 {
		a.log.Info("Config is valid; no properties to update")
	} else {
		a.log.Infof("Save updated config to %s", dst)
		if err := serial.Write(format, dst, buf); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		if err := a.appendAudit(changes, dst); err != nil {
			return err
		}
		sum, _, err := common.Sha256OfFile(dst)
		if err != nil {
			return err
		}
		rep.Destination = dst
		rep.Written = true
		rep.OutputSha256 = sum
		if format.IsBinary() {
			crc := int(checksum.Sum8(buf))
			rep.Checksum = &crc
		}
	}
	return a.writeReports(rep)
}

// appendAudit records the changes of a written session.
func (a *app) appendAudit(changes []edit.Change, target string) error {
	if a.opts.auditPath == "" {
		return nil
	}
	plog, err := common.NewPatchLog(a.opts.auditPath, a.opts.auditFormat)
	if err != nil {
		return err
	}
	ts := time.Now().UTC()
	for _, c := range changes {
		err := plog.Append(common.PatchEntry{
			Session:  a.sessionID,
			Property: c.Name,
			Position: c.Position.String(),
			Before:   c.Before,
			After:    c.After,
			Target:   target,
			Ts:       ts,
		})
		if err != nil {
			return fmt.Errorf("audit log: %w", err)
		}
	}
	a.log.Debugf("Audit log: %s (%d entries)", plog.Path(), len(changes))
	return nil
}

func (a *app) writeReports(rep report.Session) error {
	if a.opts.reportJSON != "" {
		if err := report.SaveSessionJSON(rep, a.opts.reportJSON); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		a.log.Debugf("Report: %s", a.opts.reportJSON)
	}
	if a.opts.reportPDF != "" {
		if err := report.SaveSessionPDF(rep, a.opts.reportPDF); err != nil {
			return fmt.Errorf("write pdf report: %w", err)
		}
		a.log.Debugf("PDF report: %s", a.opts.reportPDF)
	}
	return nil
}
