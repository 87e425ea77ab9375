package samplex

import (
	"regexp"
	"strconv"
)

// ssvToken matches the serialization version marker written at the top level
// of samplex JSON. Quoted and bare integers are both accepted.
var ssvToken = regexp.MustCompile(`"ssv"\s*:\s*"?(\d+)"?`)

// FindSSV scans text for the first serialization version token without
// parsing the JSON document.
func FindSSV(text string) (int, bool) {
	m := ssvToken.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}
