package mathml

import (
	"errors"
	"fmt"
	"strings"
)

// Format selects the output notation of a math fragment.
type Format int

const (
	// Code is the stored prefix-notation source, unchanged.
	Code Format = iota
	// Web is presentation markup with Greek letters as named entities.
	Web
	// Jupyter is presentation markup with Greek letters as code points.
	Jupyter
	// LaTeX is typeset text.
	LaTeX
)

var (
	// ErrMalformedMath is returned when a fragment cannot be parsed.
	ErrMalformedMath = errors.New("malformed math")
	// ErrUnknownFormat is returned by ParseFormat for unrecognized names.
	ErrUnknownFormat = errors.New("unknown math format")
)

var formatNames = map[Format]string{
	Code:    "code",
	Web:     "web",
	Jupyter: "jupyter",
	LaTeX:   "latex",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// ParseFormat converts a case-insensitive format name.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for f, n := range formatNames {
		if n == name {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}
