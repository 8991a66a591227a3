package common

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Audit log encodings.
const (
	AuditJSONL = "jsonl"
	AuditCBOR  = "cbor"
)

// PatchEntry captures a single field edit applied to a configuration.
type PatchEntry struct {
	Session  string    `json:"session" cbor:"1,keyasint"`
	Property string    `json:"property" cbor:"2,keyasint"`
	Position string    `json:"position" cbor:"3,keyasint"`
	Before   string    `json:"before" cbor:"4,keyasint"`
	After    string    `json:"after" cbor:"5,keyasint"`
	Target   string    `json:"target,omitempty" cbor:"6,keyasint,omitempty"`
	Ts       time.Time `json:"ts" cbor:"7,keyasint"`
}

var (
	auditEncMode cbor.EncMode
	auditDecMode cbor.DecMode
)

func init() {
	var err error
	auditEncMode, err = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("audit CBOR encoder mode: %v", err))
	}
	auditDecMode, err = cbor.DecOptions{
		DupMapKey: cbor.DupMapKeyQuiet,
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("audit CBOR decoder mode: %v", err))
	}
}

// AuditFormatFor picks the encoding from an explicit name or, when empty,
// from the file extension.
func AuditFormatFor(path, format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case AuditJSONL:
		return AuditJSONL, nil
	case AuditCBOR:
		return AuditCBOR, nil
	case "":
		if strings.EqualFold(filepath.Ext(path), ".cbor") {
			return AuditCBOR, nil
		}
		return AuditJSONL, nil
	default:
		return "", fmt.Errorf("unknown audit format %q", format)
	}
}

// PatchLog provides append-only access to an audit log.
type PatchLog struct {
	path   string
	format string
	mu     sync.Mutex
}

// NewPatchLog returns a PatchLog that writes to the provided path.
func NewPatchLog(path, format string) (*PatchLog, error) {
	f, err := AuditFormatFor(path, format)
	if err != nil {
		return nil, err
	}
	return &PatchLog{path: path, format: f}, nil
}

// Path returns the backing file path for the log.
func (p *PatchLog) Path() string {
	if p == nil {
		return ""
	}
	return p.path
}

func (p *PatchLog) Format() string {
	if p == nil {
		return ""
	}
	return p.format
}

// Append writes a new entry to the audit log. JSONL entries are one object
// per line; CBOR entries are concatenated data items.
func (p *PatchLog) Append(entry PatchEntry) error {
	if p == nil {
		return errors.New("nil patch log")
	}
	if entry.Property == "" {
		return errors.New("patch entry missing property")
	}
	if entry.Ts.IsZero() {
		entry.Ts = time.Now().UTC()
	}
	var data []byte
	var err error
	switch p.format {
	case AuditCBOR:
		data, err = auditEncMode.Marshal(entry)
	default:
		data, err = json.Marshal(entry)
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	dir := filepath.Dir(p.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(p.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// ReadPatchLog loads every entry from the supplied audit log.
func ReadPatchLog(path, format string) ([]PatchEntry, error) {
	format, err := AuditFormatFor(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if format == AuditCBOR {
		return readCBOR(f)
	}
	return readJSONL(f)
}

func readJSONL(r io.Reader) ([]PatchEntry, error) {
	scanner := bufio.NewScanner(r)
	var entries []PatchEntry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry PatchEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("decode patch entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func readCBOR(r io.Reader) ([]PatchEntry, error) {
	dec := auditDecMode.NewDecoder(r)
	var entries []PatchEntry
	for {
		var entry PatchEntry
		if err := dec.Decode(&entry); err != nil {
			if errors.Is(err, io.EOF) {
				return entries, nil
			}
			return nil, fmt.Errorf("decode patch entry: %w", err)
		}
		entries = append(entries, entry)
	}
}

// FilterSession returns the entries written by one session, in log order.
func FilterSession(entries []PatchEntry, session string) []PatchEntry {
	var out []PatchEntry
	for _, e := range entries {
		if e.Session == session {
			out = append(out, e)
		}
	}
	return out
}

// LastSession returns the session identifier of the final entry.
func LastSession(entries []PatchEntry) string {
	if len(entries) == 0 {
		return ""
	}
	return entries[len(entries)-1].Session
}
