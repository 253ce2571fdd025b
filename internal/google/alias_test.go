package google

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAlias(t *testing.T) {
	tests := map[string]string{
		"Work":           "work",
		"  Personal  ":   "personal",
		"My Side Gig":    "my_side_gig",
		"already_normal": "already_normal",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeAlias(in), in)
	}
}

func TestValidateAlias(t *testing.T) {
	tests := []struct {
		alias   string
		wantErr bool
	}{
		{"work", false},
		{"my_side-gig.2", false},
		{"0day", false},
		{"", true},
		{"Work", true},
		{"../etc", true},
		{"a/b", true},
		{"_hidden", true},
		{"credentials", true},
		{strings.Repeat("a", 65), true},
	}
	for _, tt := range tests {
		err := ValidateAlias(tt.alias)
		assert.Equal(t, tt.wantErr, err != nil, "alias %q: %v", tt.alias, err)
	}
}
