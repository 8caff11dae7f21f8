// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mathml

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const mathNamespace = "http://www.w3.org/1998/Math/MathML"

// Transcoder converts a stored math fragment to the requested format.
// Implementations return an error wrapping ErrMalformedMath when the
// fragment cannot be parsed.
type Transcoder interface {
	Transcode(source string, format Format) (string, error)
}

// TranscoderFunc adapts a function to the Transcoder interface.
type TranscoderFunc func(source string, format Format) (string, error)

// Transcode calls f.
func (f TranscoderFunc) Transcode(source string, format Format) (string, error) {
	return f(source, format)
}

// Passthrough is a Transcoder that performs no notation conversion.
// Code requests return the source. Every other format returns the fragment
// wrapped in a math element, checked for well-formedness, with compound
// identifiers rewritten as subscripts for Web and Jupyter.
type Passthrough struct{}

var _ Transcoder = Passthrough{}

// Transcode implements Transcoder.
func (Passthrough) Transcode(source string, format Format) (string, error) {
	src := strings.TrimSpace(source)
	if src == "" {
		return "", fmt.Errorf("%w: empty fragment", ErrMalformedMath)
	}
	if format == Code {
		return source, nil
	}
	if !strings.HasPrefix(src, "<") {
		return "", fmt.Errorf("%w: not markup", ErrMalformedMath)
	}
	if !strings.HasPrefix(src, "<math") {
		src = `<math xmlns="` + mathNamespace + `">` + src + "</math>"
	}
	if err := wellFormed(src); err != nil {
		return "", err
	}
	switch format {
	case Web, Jupyter:
		return RewriteIdentifiers(src, format), nil
	default:
		return src, nil
	}
}

func wellFormed(markup string) error {
	d := newDecoder(markup)
	for {
		_, err := d.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrMalformedMath, err)
		}
	}
}
