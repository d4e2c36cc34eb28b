// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand

import "strings"

// splitFields applies IFS field splitting to a word-evaluation result, per
// spec.md §4.4: Zero stays Zero; Single becomes Split (or Zero if splitting
// removed everything); At/Star/Split each split their contained fields in
// order, keeping their original tag.
func (c *Context) splitFields(f Fields) Fields {
	if f.Kind() == Zero {
		return f
	}

	ifs := c.ifsOrDefault()
	var out []string
	for _, s := range f.observedValues() {
		out = append(out, splitIFS(s, ifs)...)
	}

	switch f.Kind() {
	case SingleKind:
		if len(out) == 0 {
			return Z()
		}
		return SplitFields(out)
	case AtKind:
		return AtFields(out)
	case StarKind:
		return StarFields(out)
	default: // SplitKind
		return SplitFields(out)
	}
}

// splitIFS splits s on the characters in ifs, following POSIX's distinction
// between IFS whitespace characters (space, tab, newline) and other IFS
// characters: runs of whitespace delimiters collapse and leading/trailing
// whitespace is trimmed, but any occurrence of a non-whitespace delimiter
// always introduces a field boundary, producing an empty field if two of
// them are adjacent or one directly follows a whitespace run. IFS
// whitespace right after a non-whitespace delimiter belongs to that same
// boundary.
func splitIFS(s, ifs string) []string {
	if ifs == "" {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	isWhitespace := func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' }
	isIFS := func(r rune) bool { return strings.ContainsRune(ifs, r) }

	allWhitespace := true
	for _, r := range ifs {
		if !isWhitespace(r) {
			allWhitespace = false
			break
		}
	}

	runes := []rune(s)
	n := len(runes)

	// Trim leading/trailing IFS-whitespace runs; non-whitespace
	// delimiters at the edges still produce boundaries and are handled
	// by the scan below.
	start := 0
	for start < n && isWhitespace(runes[start]) && isIFS(runes[start]) {
		start++
	}
	end := n
	for end > start && isWhitespace(runes[end-1]) && isIFS(runes[end-1]) {
		end--
	}
	runes = runes[start:end]
	n = len(runes)

	if n == 0 {
		if allWhitespace {
			return nil
		}
		return nil
	}

	var fields []string
	var cur strings.Builder
	i := 0
	for i < n {
		r := runes[i]
		if !isIFS(r) {
			cur.WriteRune(r)
			i++
			continue
		}
		fields = append(fields, cur.String())
		cur.Reset()
		if isWhitespace(r) {
			for i < n && isWhitespace(runes[i]) && isIFS(runes[i]) {
				i++
			}
		} else {
			i++
			// A non-whitespace delimiter may be immediately
			// followed by a run of IFS whitespace, which is part
			// of the same boundary rather than introducing
			// another empty field.
			for i < n && isWhitespace(runes[i]) && isIFS(runes[i]) {
				i++
			}
		}
	}
	fields = append(fields, cur.String())
	return fields
}
