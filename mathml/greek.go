package mathml

// greekNames maps the Greek letter names used in model variable names to
// their code points. Source models spell lambda as "lamda".
var greekNames = map[string]rune{
	"Alpha": '\u0391', "Beta": '\u0392', "Gamma": '\u0393', "Delta": '\u0394',
	"Epsilon": '\u0395', "Zeta": '\u0396', "Eta": '\u0397', "Theta": '\u0398',
	"Iota": '\u0399', "Kappa": '\u039A', "Lamda": '\u039B', "Mu": '\u039C',
	"Nu": '\u039D', "Xi": '\u039E', "Omicron": '\u039F', "Pi": '\u03A0',
	"Rho": '\u03A1', "Sigma": '\u03A3', "Tau": '\u03A4', "Upsilon": '\u03A5',
	"Phi": '\u03A6', "Chi": '\u03A7', "Psi": '\u03A8', "Omega": '\u03A9',
	"alpha": '\u03B1', "beta": '\u03B2', "gamma": '\u03B3', "delta": '\u03B4',
	"epsilon": '\u03B5', "zeta": '\u03B6', "eta": '\u03B7', "theta": '\u03B8',
	"iota": '\u03B9', "kappa": '\u03BA', "lamda": '\u03BB', "mu": '\u03BC',
	"nu": '\u03BD', "xi": '\u03BE', "omicron": '\u03BF', "pi": '\u03C0',
	"rho": '\u03C1', "sigma": '\u03C3', "tau": '\u03C4', "upsilon": '\u03C5',
	"phi": '\u03C6', "chi": '\u03C7', "psi": '\u03C8', "omega": '\u03C9',
}

var greekRunes = func() map[rune]string {
	m := make(map[rune]string, len(greekNames))
	for name, r := range greekNames {
		m[r] = name
	}
	return m
}()

// IsGreek reports whether name is a Greek letter name.
func IsGreek(name string) bool {
	_, ok := greekNames[name]
	return ok
}

// standardName returns the spelling used by LaTeX commands and HTML entities.
func standardName(name string) string {
	switch name {
	case "lamda":
		return "lambda"
	case "Lamda":
		return "Lambda"
	}
	return name
}

// latexGreek renders a Greek letter name as a LaTeX command.
func latexGreek(name string) string {
	return `\` + standardName(name)
}

// entityGreek renders a Greek letter name as a named character reference.
func entityGreek(name string) string {
	return "&" + standardName(name) + ";"
}

// greekName returns the name for a Greek code point, or the input unchanged.
func greekName(s string) string {
	runes := []rune(s)
	if len(runes) == 1 {
		if name, ok := greekRunes[runes[0]]; ok {
			return name
		}
	}
	return s
}
