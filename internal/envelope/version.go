package envelope

import (
	"regexp"
	"strconv"
)

// apiVersionPattern finds an API version in a path:
//
//	/path/api/1/something => 1
//	/path/api/V2/something => 2
//	/api/v13/something => 13
//	/something/else/134/ => 0
//
// The leading .* is greedy, so the last /api/ segment in the path wins.
var apiVersionPattern = regexp.MustCompile(`.*/api/[vV]?(\d*)/?`)

// ExtractVersion returns the API version encoded in path, or 0 when the path
// has no /api/ segment, the segment carries no digits, or the digits do not
// fit in an int.
func ExtractVersion(path string) int {
	m := apiVersionPattern.FindStringSubmatch(path)
	if m == nil || m[1] == "" {
		return 0
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return v
}
