package edit

import (
	"fmt"

	"github.com/DymOK93/GWM-Harman-VCE/internal/propmap"
)

// Observer is notified of every change right after it is written.
type Observer interface {
	Applied(Change) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Change) error

func (f ObserverFunc) Applied(c Change) error { return f(c) }

// Session applies edit tokens against one configuration buffer.
type Session struct {
	Map             *propmap.Map
	ProjectProperty string
	Observer        Observer
}

// NewSession returns a session guarding the default project property.
func NewSession(m *propmap.Map, obs Observer) *Session {
	return &Session{Map: m, ProjectProperty: propmap.DefaultProjectProperty, Observer: obs}
}

// ParseAll parses every token before anything is applied.
func ParseAll(tokens []string) ([]Request, error) {
	reqs := make([]Request, 0, len(tokens))
	for _, tok := range tokens {
		r, err := Parse(tok)
		if err != nil {
			return nil, err
		}
		reqs = append(reqs, r)
	}
	return reqs, nil
}

// ApplyAll parses tokens and applies them to buf in order. Edits are not
// rolled back: when a request fails, the changes already written stay in buf
// and are returned alongside the error.
func (s *Session) ApplyAll(buf []byte, tokens []string) ([]Change, error) {
	reqs, err := ParseAll(tokens)
	if err != nil {
		return nil, err
	}
	return s.Apply(buf, reqs)
}

// Apply applies parsed requests to buf in order; see ApplyAll.
func (s *Session) Apply(buf []byte, reqs []Request) ([]Change, error) {
	var changes []Change
	for _, r := range reqs {
		c, err := s.applyOne(buf, r)
		if err != nil {
			return changes, err
		}
		changes = append(changes, c)
		if s.Observer != nil {
			if err := s.Observer.Applied(c); err != nil {
				return changes, err
			}
		}
	}
	return changes, nil
}

func (s *Session) applyOne(buf []byte, r Request) (Change, error) {
	if r.Name == s.ProjectProperty {
		return Change{}, fmt.Errorf("%w: %s holds the project code", ErrProtectedField, r.Name)
	}
	if _, ok := s.Map.Lookup(r.Name); !ok {
		return Change{}, fmt.Errorf("%w: %q", propmap.ErrUnknownProperty, r.Name)
	}
	pos, err := s.Map.Position(r.Name)
	if err != nil {
		return Change{}, err
	}
	return r.Apply(buf, pos)
}
