// Copyright (c) 2017, Daniel Martí <mvdan@mvdan.cc>
// See LICENSE for licensing information

package expand_test

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/google/go-cmp/cmp"

	"github.com/nsheridan/posh/expand"
)

func TestFieldsZeroVsEmptySingle(t *testing.T) {
	c := qt.New(t)
	c.Assert(expand.Z().Kind(), qt.Equals, expand.Zero)
	c.Assert(expand.SingleField("").Kind(), qt.Equals, expand.SingleKind)
	c.Assert(expand.Z().IsNull(), qt.IsFalse)
	c.Assert(expand.SingleField("").IsNull(), qt.IsTrue)
}

func TestFieldsAtStarCollapseToZero(t *testing.T) {
	c := qt.New(t)
	c.Assert(expand.AtFields(nil).Kind(), qt.Equals, expand.Zero)
	c.Assert(expand.StarFields([]string{}).Kind(), qt.Equals, expand.Zero)
	c.Assert(expand.AtFields(nil).Slice(), qt.IsNil)
}

func TestFieldsFromStrings(t *testing.T) {
	c := qt.New(t)
	c.Assert(expand.FromStrings(nil).Kind(), qt.Equals, expand.Zero)
	c.Assert(expand.FromStrings([]string{"a"}).Kind(), qt.Equals, expand.SingleKind)
	c.Assert(expand.FromStrings([]string{"a", "b"}).Kind(), qt.Equals, expand.SplitKind)
}

func TestFieldsJoin(t *testing.T) {
	tests := []struct {
		name   string
		fields expand.Fields
		joiner string
		want   string
	}{
		{"zero", expand.Z(), " ", ""},
		{"single", expand.SingleField("a"), " ", "a"},
		{"split-space", expand.SplitFields([]string{"a", "b"}), " ", "a b"},
		{"at-space", expand.AtFields([]string{"a", "b"}), " ", "a b"},
		{"star-custom-joiner", expand.StarFields([]string{"a", "b"}), ":", "a:b"},
		{"star-empty-joiner", expand.StarFields([]string{"a", "b"}), "", "ab"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c := qt.New(t)
			c.Assert(tc.fields.Join(tc.joiner), qt.Equals, tc.want)
		})
	}
}

func TestFieldsSlice(t *testing.T) {
	c := qt.New(t)
	got := expand.SplitFields([]string{"a", "b", "c"}).Slice()
	c.Assert(cmp.Diff([]string{"a", "b", "c"}, got), qt.Equals, "")
}

func TestFieldsLen(t *testing.T) {
	c := qt.New(t)
	c.Assert(expand.Z().Len(), qt.Equals, 0)
	c.Assert(expand.SingleField("héllo").Len(), qt.Equals, 5)
	c.Assert(expand.AtFields([]string{"a", "b", "c"}).Len(), qt.Equals, 3)
}
