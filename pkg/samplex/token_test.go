package samplex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindSSV(t *testing.T) {
	for _, tc := range []struct {
		text string
		want int
		ok   bool
	}{
		{`{"ssv": 1, "nodes": []}`, 1, true},
		{`{"nodes":[],"ssv":2}`, 2, true},
		{`{"ssv" :  "12"}`, 12, true},
		{"{\n  \"ssv\":\n  3\n}", 3, true},
		{`{"ssv": 1, "inner": {"ssv": 2}}`, 1, true},
		{`{"version": 1}`, 0, false},
		{`{"ssv": "one"}`, 0, false},
		{`{"assv": }`, 0, false},
		{``, 0, false},
	} {
		got, ok := FindSSV(tc.text)
		assert.Equal(t, tc.ok, ok, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}
