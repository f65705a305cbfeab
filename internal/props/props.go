// Package props reads system configuration properties for the lights
// stack. Values use the historic single-character (0/1/2, n/y/o) and
// word (no/yes/only, false/true, off/on, disable/enable) encodings.
package props

import "sync"

// Store is a read-only view of configuration properties.
type Store interface {
	// GetInt returns the integer value of key, or def when the key is
	// unset or empty.
	GetInt(key string, def int) int
	// GetBool returns the boolean value of key, or def when the key is
	// unset or empty.
	GetBool(key string, def bool) bool
}

// ParseValue decodes a raw property value. Empty input yields def.
// Unrecognized non-empty input yields 1, matching the permissive
// behavior devices have historically relied on.
func ParseValue(raw string, def int) int {
	if raw == "" {
		return def
	}

	if len(raw) == 1 {
		switch raw[0] {
		case '0', 'n':
			return 0
		case '1', 'y':
			return 1
		case '2', 'o':
			return 2
		default:
			return 1
		}
	}

	switch raw {
	case "no", "false", "off", "disable":
		return 0
	case "yes", "true", "on", "enable":
		return 1
	case "only":
		return 2
	default:
		return 1
	}
}

// Static is an in-memory Store backed by a plain map. It is the zero
// dependency choice for tests and for fixed deployments.
type Static struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewStatic copies values into a new Static store. A nil map is allowed.
func NewStatic(values map[string]string) *Static {
	copied := make(map[string]string, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Static{values: copied}
}

// Set stores or overwrites a property value.
func (s *Static) Set(key, value string) {
	s.mu.Lock()
	s.values[key] = value
	s.mu.Unlock()
}

func (s *Static) GetInt(key string, def int) int {
	s.mu.RLock()
	raw := s.values[key]
	s.mu.RUnlock()
	return ParseValue(raw, def)
}

func (s *Static) GetBool(key string, def bool) bool {
	d := 0
	if def {
		d = 1
	}
	return s.GetInt(key, d) != 0
}
