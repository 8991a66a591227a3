package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/DymOK93/GWM-Harman-VCE/internal/common"
	"github.com/DymOK93/GWM-Harman-VCE/internal/propmap"
	"github.com/DymOK93/GWM-Harman-VCE/internal/serial"
)

// options holds the flag values shared by every command.
type options struct {
	configPath      string
	mapPath         string
	typ             string
	src             string
	dst             string
	projectProperty string
	auditPath       string
	auditFormat     string
	reportJSON      string
	reportPDF       string
	logFile         string
	verbose         bool
}

// app is the per-invocation state built from flags and settings.
type app struct {
	opts      options
	sessionID string
	log       *logrus.Entry
	out       io.Writer
	closer    io.Closer
}

// newApp merges the settings file with flags (flags win when set) and
// prepares logging.
func newApp(cmd *cobra.Command, opts *options) (*app, error) {
	cfg, cfgPath, err := resolveSettings(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	merged := *opts
	flags := cmd.Flags()
	if !flags.Changed("map") {
		merged.mapPath = cfg.Map
	}
	if !flags.Changed("type") {
		merged.typ = cfg.Type
	}
	if !flags.Changed("project-property") {
		merged.projectProperty = cfg.ProjectProperty
	}
	if !flags.Changed("audit") {
		merged.auditPath = cfg.Audit.Path
		if !flags.Changed("audit-format") {
			merged.auditFormat = cfg.Audit.Format
		}
	}
	if !flags.Changed("report") {
		merged.reportJSON = cfg.Report.JSON
	}
	if !flags.Changed("report-pdf") {
		merged.reportPDF = cfg.Report.PDF
	}
	if !flags.Changed("log-file") {
		merged.logFile = cfg.Logs.File
	}

	// Resolved up front: nothing may be written when the encoding is bad.
	merged.auditFormat, err = common.AuditFormatFor(merged.auditPath, merged.auditFormat)
	if err != nil {
		return nil, err
	}

	closer, err := common.SetupLogging(cmd.ErrOrStderr(), common.LogConfig{
		File:       merged.logFile,
		MaxSizeMB:  cfg.Logs.MaxSizeMB,
		MaxAgeDays: cfg.Logs.MaxAgeDays,
		MaxBackups: cfg.Logs.MaxBackups,
		Compress:   cfg.Logs.Compress,
		Verbose:    merged.verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	a := &app{
		opts:      merged,
		sessionID: uuid.NewString(),
		out:       cmd.OutOrStdout(),
		closer:    closer,
	}
	a.log = common.WithSession(a.sessionID)
	if cfgPath != "" {
		a.log.Debugf("Loaded settings from %s", cfgPath)
	}
	return a, nil
}

func (a *app) Close() error {
	if a == nil || a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func (a *app) format() (serial.Format, error) {
	return serial.New(a.opts.typ)
}

func (a *app) loadMap() (*propmap.Map, error) {
	a.log.Infof("Read property map from %s", a.opts.mapPath)
	m, err := propmap.EnsureLoaded(a.opts.mapPath)
	if err != nil {
		return nil, fmt.Errorf("read property map: %w", err)
	}
	a.log.Debugf("Property map: %d entries, config size %d, project codes %v", m.Len(), m.ConfigSize, m.ProjectCodes)
	return m, nil
}

// readValidated loads src with f and validates it against m.
func (a *app) readValidated(f serial.Format, src string, m *propmap.Map) ([]byte, error) {
	a.log.Infof("Read config from %s", src)
	buf, err := serial.Read(f, src)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := m.Validate(buf, a.opts.projectProperty); err != nil {
		return nil, err
	}
	return buf, nil
}
