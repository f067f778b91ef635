package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchGlob(t *testing.T) {
	tests := []struct {
		pattern string
		key     string
		want    bool
	}{
		{"*", "", true},
		{"*", "anything", true},
		{"booking:*", "booking:details:1", true},
		{"booking:*", "profile:PLANNER:1", false},
		{"booking:list:*:p1:*", "booking:list:professional:p1:all", true},
		{"booking:list:*:p1:*", "booking:list:professional:p10:all", false},
		{"h?llo", "hello", true},
		{"h?llo", "hllo", false},
		{"h[ae]llo", "hallo", true},
		{"h[ae]llo", "hillo", false},
		{"h[^e]llo", "hallo", true},
		{"h[^e]llo", "hello", false},
		{"h[a-c]llo", "hbllo", true},
		{"h[a-c]llo", "hdllo", false},
		{`h\*llo`, "h*llo", true},
		{`h\*llo`, "hello", false},
		{"h[llo", "h[llo", true},
		{"exact", "exact", true},
		{"exact", "exactly", false},
		{"**a", "bba", true},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"~"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, matchGlob(tt.pattern, tt.key))
		})
	}
}
