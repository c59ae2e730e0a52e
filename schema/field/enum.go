package field

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonWord   = regexp.MustCompile(`[^0-9A-Za-z_]+`)
	upperCase = cases.Upper(language.Und)
)

// EnumName returns the wire name of an enum choice: upper-cased with runs
// of non-word characters replaced by "_". Names that do not start with a
// letter or "_" are prefixed with "A_".
func EnumName(v string) string {
	name := nonWord.ReplaceAllString(upperCase.String(v), "_")
	if name == "" || (name[0] >= '0' && name[0] <= '9') {
		name = "A_" + name
	}
	return name
}

// EnumNames returns the wire names of the field choices, in declaration
// order. Clashing names get a numeric suffix.
func (d *Descriptor) EnumNames() []string {
	names := make([]string, 0, len(d.Enums))
	seen := make(map[string]bool, len(d.Enums))
	for _, v := range d.Enums {
		name := EnumName(v)
		for seen[name] {
			name += "_" + strconv.Itoa(len(names))
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// choice returns the stored choice matching s by value or wire name.
func (d *Descriptor) choice(s string) (string, bool) {
	for _, e := range d.Enums {
		if e == s {
			return e, true
		}
	}
	for i, name := range d.EnumNames() {
		if strings.EqualFold(name, s) {
			return d.Enums[i], true
		}
	}
	return "", false
}
