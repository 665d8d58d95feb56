package callcache

import (
	"strconv"
	"strings"
)

// Param is one rendered name=value pair of a cache key. Params are ordered;
// the order is part of the key contract.
type Param struct {
	Name  string
	Value string
}

// Key identifies one cache entry: the operation name plus every effective
// parameter of the call, defaults included.
type Key struct {
	Op     string
	Params []Param
}

// EntryName renders the key into a file-system-safe entry file name.
func (k Key) EntryName() string {
	parts := make([]string, len(k.Params))
	for i, p := range k.Params {
		parts[i] = p.Name + "=" + p.Value
	}
	name := k.Op
	if len(parts) > 0 {
		name += " " + strings.Join(parts, ", ")
	}
	return sanitize(name) + ".cbor"
}

// sanitize replaces characters that path components cannot carry.
func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', 0:
			return '_'
		}
		return r
	}, name)
}

// FloatParam renders a float parameter with the shortest exact
// representation, so 8.5e-3 and 0.0085 produce the same key.
func FloatParam(name string, value float64) Param {
	return Param{Name: name, Value: strconv.FormatFloat(value, 'g', -1, 64)}
}

// OptFloatParam renders an optional float parameter; nil renders as "none".
func OptFloatParam(name string, value *float64) Param {
	if value == nil {
		return Param{Name: name, Value: "none"}
	}
	return FloatParam(name, *value)
}

// IntParam renders an integer parameter.
func IntParam(name string, value int) Param {
	return Param{Name: name, Value: strconv.Itoa(value)}
}

// StringParam renders a string parameter.
func StringParam(name, value string) Param {
	return Param{Name: name, Value: value}
}
