package options

import (
	"path"
	"strings"
)

// ProcessesDll reports whether routines in the named DLL pass the
// INCLUDE_DLLS/EXCLUDE_DLLS filters. Patterns may use the wildcards * and ?
// and match without regard to case.
func (c *Configuration) ProcessesDll(name string) bool {
	if len(c.includeDlls) > 0 {
		return matchAny(c.includeDlls, name)
	}
	return !matchAny(c.excludeDlls, name)
}

func matchAny(patterns []string, name string) bool {
	name = strings.ToLower(name)
	for _, p := range patterns {
		if matchDll(strings.ToLower(p), name) {
			return true
		}
	}
	return false
}

func matchDll(pattern, name string) bool {
	// brackets and backslashes are literal in DLL patterns
	if strings.ContainsAny(pattern, `[]\`) {
		return pattern == name
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
