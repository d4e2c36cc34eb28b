// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package interp

import "github.com/nsheridan/posh/pattern"

// caseMatch reports whether selector matches the glob pattern pat,
// grounded on the teacher's match.go but routed through this module's own
// pattern.Compile collaborator (spec.md §6's glob compiler/matcher pair)
// rather than a standalone translate-and-compile function.
func caseMatch(pat, selector string) (bool, error) {
	m, err := pattern.Compile(pat, pattern.Options{})
	if err != nil {
		return false, err
	}
	return m.Match(selector), nil
}
