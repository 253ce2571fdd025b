package google

import (
	"fmt"
	"regexp"
	"strings"
)

var aliasPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_.-]*$`)

// reservedAliases would collide with files that live next to credential
// records in the flat layout.
var reservedAliases = map[string]bool{
	"credentials": true,
	"config":      true,
}

// NormalizeAlias trims, lower-cases and replaces spaces with underscores.
func NormalizeAlias(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "_")
}

// ValidateAlias rejects aliases that cannot safely name a credential file.
func ValidateAlias(alias string) error {
	if alias == "" {
		return fmt.Errorf("account alias cannot be empty")
	}
	if len(alias) > 64 {
		return fmt.Errorf("account alias %q is too long (max 64 characters)", alias)
	}
	if !aliasPattern.MatchString(alias) {
		return fmt.Errorf("account alias %q may only contain lowercase letters, digits, '_', '.' and '-'", alias)
	}
	if reservedAliases[alias] {
		return fmt.Errorf("account alias %q is reserved", alias)
	}
	return nil
}
