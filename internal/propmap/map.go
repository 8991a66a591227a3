package propmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/DymOK93/GWM-Harman-VCE/internal/bitfield"
)

const (
	// TableKey names the object holding the property position table.
	TableKey = "ro.vehicle.config"
	// DefaultProjectProperty is the property carrying the project code.
	DefaultProjectProperty = "AAA"

	configSizeKey  = "config_size"
	projectCodeKey = "project_code"
)

var (
	ErrFormat             = errors.New("malformed property map")
	ErrSize               = errors.New("config size mismatch")
	ErrUnsupportedProject = errors.New("unsupported project code")
	ErrUnknownProperty    = errors.New("property not found in map")
)

// Entry is one row of the position table.
type Entry struct {
	Name       string
	Descriptor string
}

// Map is a loaded property map. Entries keep the order of the source
// document.
type Map struct {
	ConfigSize   int
	ProjectCodes []int
	Entries      []Entry

	index map[string]int
}

type jsonMeta struct {
	ConfigSize  *int  `json:"config_size"`
	ProjectCode []int `json:"project_code"`
}

// Parse decodes a JSON property map. config_size and project_code may sit
// either at the top level or inside the position table object.
func Parse(data []byte) (*Map, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	var meta jsonMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	rawTable, ok := top[TableKey]
	if !ok {
		return nil, fmt.Errorf("%w: missing %q", ErrFormat, TableKey)
	}
	m := &Map{index: make(map[string]int)}
	if err := m.decodeTable(rawTable, &meta); err != nil {
		return nil, err
	}
	if meta.ConfigSize == nil {
		return nil, fmt.Errorf("%w: missing %q", ErrFormat, configSizeKey)
	}
	if *meta.ConfigSize < 0 {
		return nil, fmt.Errorf("%w: negative %s %d", ErrFormat, configSizeKey, *meta.ConfigSize)
	}
	if meta.ProjectCode == nil {
		return nil, fmt.Errorf("%w: missing %q", ErrFormat, projectCodeKey)
	}
	m.ConfigSize = *meta.ConfigSize
	m.ProjectCodes = meta.ProjectCode
	return m, nil
}

// decodeTable walks the table object token by token so that entry order
// survives. Metadata keys found inside the table fill meta.
func (m *Map) decodeTable(raw json.RawMessage, meta *jsonMeta) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrFormat, TableKey, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: %s should be an object", ErrFormat, TableKey)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrFormat, TableKey, err)
		}
		name := tok.(string)
		switch name {
		case configSizeKey:
			var size int
			if err := dec.Decode(&size); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrFormat, TableKey, name, err)
			}
			meta.ConfigSize = &size
			continue
		case projectCodeKey:
			var codes []int
			if err := dec.Decode(&codes); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrFormat, TableKey, name, err)
			}
			meta.ProjectCode = codes
			continue
		}
		var descriptor string
		if err := dec.Decode(&descriptor); err != nil {
			return fmt.Errorf("%w: property %s: %v", ErrFormat, name, err)
		}
		m.add(name, strings.TrimSpace(descriptor))
	}
	return nil
}

// add appends an entry; a repeated name replaces the earlier descriptor in
// place.
func (m *Map) add(name, descriptor string) {
	if i, ok := m.index[name]; ok {
		m.Entries[i].Descriptor = descriptor
		return
	}
	m.index[name] = len(m.Entries)
	m.Entries = append(m.Entries, Entry{Name: name, Descriptor: descriptor})
}

// New builds a map programmatically.
func New(configSize int, projectCodes []int, entries ...Entry) *Map {
	m := &Map{ConfigSize: configSize, ProjectCodes: projectCodes, index: make(map[string]int)}
	for _, e := range entries {
		m.add(e.Name, e.Descriptor)
	}
	return m
}

// Lookup returns the raw descriptor of a property.
func (m *Map) Lookup(name string) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[name]
	if !ok {
		return "", false
	}
	return m.Entries[i].Descriptor, true
}

// Position resolves and parses the descriptor of a property.
func (m *Map) Position(name string) (bitfield.Position, error) {
	descriptor, ok := m.Lookup(name)
	if !ok {
		return bitfield.Position{}, fmt.Errorf("%w: %q", ErrUnknownProperty, name)
	}
	pos, err := bitfield.ParsePosition(descriptor)
	if err != nil {
		return bitfield.Position{}, fmt.Errorf("property %s: %w", name, err)
	}
	return pos, nil
}

// SupportsProject reports whether code is on the project allow-list.
func (m *Map) SupportsProject(code int) bool {
	if m == nil {
		return false
	}
	for _, c := range m.ProjectCodes {
		if c == code {
			return true
		}
	}
	return false
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}
