package mathml

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strings"
	"unicode"
)

// NameSeparator joins the components of a compound variable name.
const NameSeparator = "_"

// SubscriptLaTeX renders a compound name as nested LaTeX subscripts.
// "i_Na_ss" becomes "{i_{Na_{ss}}}" and Greek components become commands,
// so "tau_m" becomes "{\tau_{m}}". Single component names are returned as is
// apart from Greek substitution.
func SubscriptLaTeX(name string) string {
	comps := strings.Split(name, NameSeparator)
	for i, c := range comps {
		if IsGreek(c) {
			comps[i] = latexGreek(c)
		}
	}
	if len(comps) == 1 {
		return comps[0]
	}
	out := "{" + comps[len(comps)-1] + "}"
	for i := len(comps) - 2; i >= 0; i-- {
		out = "{" + comps[i] + NameSeparator + out + "}"
	}
	return out
}

// SplitSubscript recovers the name components from SubscriptLaTeX output.
// Greek commands come back as their standard names.
func SplitSubscript(latex string) []string {
	stripped := strings.NewReplacer("{", "", "}", "").Replace(latex)
	comps := strings.Split(stripped, NameSeparator)
	for i, c := range comps {
		comps[i] = strings.TrimPrefix(c, `\`)
	}
	return comps
}

// SubscriptMarkup renders a compound name as nested presentation markup
// subscripts. Web output writes Greek components as named entities and
// Jupyter output as code points; other formats keep the names.
func SubscriptMarkup(name string, format Format) string {
	comps := strings.Split(name, NameSeparator)
	out := markupLeaf(comps[len(comps)-1], format)
	for i := len(comps) - 2; i >= 0; i-- {
		out = "<msub>" + markupLeaf(comps[i], format) + out + "</msub>"
	}
	return out
}

func markupLeaf(comp string, format Format) string {
	tag := "mi"
	if isNumeric(comp) {
		tag = "mn"
	}
	text := escape(comp)
	if IsGreek(comp) {
		switch format {
		case Web:
			text = entityGreek(comp)
		case Jupyter:
			text = string(greekNames[comp])
		}
	}
	return "<" + tag + ">" + text + "</" + tag + ">"
}

// SplitMarkup recovers the name components from SubscriptMarkup output,
// in document order. Greek letters come back as the names used in models.
func SplitMarkup(markup string) ([]string, error) {
	d := newDecoder(markup)
	var (
		comps []string
		text  strings.Builder
		leaf  bool
	)
	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedMath, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "mi" || t.Name.Local == "mn" {
				leaf = true
				text.Reset()
			}
		case xml.CharData:
			if leaf {
				text.Write(t)
			}
		case xml.EndElement:
			if leaf && (t.Name.Local == "mi" || t.Name.Local == "mn") {
				comps = append(comps, greekName(strings.TrimSpace(text.String())))
				leaf = false
			}
		}
	}
	if len(comps) == 0 {
		return nil, fmt.Errorf("%w: no identifiers", ErrMalformedMath)
	}
	return comps, nil
}

var identifierPattern = regexp.MustCompile(`<(?:mi|ci)(?:\s[^>]*)?>\s*([^<]*?)\s*</(?:mi|ci)>`)

// RewriteIdentifiers replaces every compound identifier element in markup
// with its nested subscript form.
func RewriteIdentifiers(markup string, format Format) string {
	return identifierPattern.ReplaceAllStringFunc(markup, func(el string) string {
		m := identifierPattern.FindStringSubmatch(el)
		name := html.UnescapeString(m[1])
		if !strings.Contains(name, NameSeparator) {
			return el
		}
		return SubscriptMarkup(name, format)
	})
}

func newDecoder(markup string) *xml.Decoder {
	d := xml.NewDecoder(strings.NewReader(markup))
	d.Entity = xml.HTMLEntity
	return d
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
