package propmap

import (
	"fmt"

	"github.com/DymOK93/GWM-Harman-VCE/internal/bitfield"
)

// Validate checks buf against the map: overall size, the project code held
// in projectProperty, and the byte index of every table entry. Any bad entry
// fails the whole buffer, whether or not it is going to be edited.
func (m *Map) Validate(buf []byte, projectProperty string) error {
	if len(buf) != m.ConfigSize {
		return fmt.Errorf("%w: config size %d should be %d", ErrSize, len(buf), m.ConfigSize)
	}
	pos, err := m.Position(projectProperty)
	if err != nil {
		return err
	}
	if err := pos.CheckBounds(len(buf)); err != nil {
		return fmt.Errorf("property %s: %w", projectProperty, err)
	}
	code, err := bitfield.ReadNumber(buf, pos)
	if err != nil {
		return err
	}
	if !m.SupportsProject(int(code)) {
		return fmt.Errorf("%w: %d (allowed %v)", ErrUnsupportedProject, code, m.ProjectCodes)
	}
	for _, e := range m.Entries {
		pos, err := bitfield.ParsePosition(e.Descriptor)
		if err != nil {
			return fmt.Errorf("property %s: %w", e.Name, err)
		}
		if err := pos.CheckBounds(len(buf)); err != nil {
			return fmt.Errorf("property %s has invalid index: %w", e.Name, err)
		}
	}
	return nil
}

// ProjectCode reads the project code from a buffer that passed Validate.
func (m *Map) ProjectCode(buf []byte, projectProperty string) (uint8, error) {
	pos, err := m.Position(projectProperty)
	if err != nil {
		return 0, err
	}
	return bitfield.ReadNumber(buf, pos)
}
