package rubric

import _ "embed"

// defaultYAML is the rubric compiled into the binary, used when no rubric
// file is supplied on the command line.
//
//go:embed default.yaml
var defaultYAML []byte

// Default returns the embedded rubric. It panics only if the embedded file
// is itself invalid, which is a build defect.
func Default() *Rubric {
	r, err := Parse(defaultYAML)
	if err != nil {
		panic("rubric: embedded default.yaml invalid: " + err.Error())
	}
	return r
}
