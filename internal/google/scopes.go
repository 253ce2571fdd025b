package google

import (
	"fmt"
	"slices"
	"strings"
)

// Individual scope URIs requested for every account.
const (
	ScopeCalendar      = "https://www.googleapis.com/auth/calendar"
	ScopeGmailReadonly = "https://www.googleapis.com/auth/gmail.readonly"
	ScopeGmailCompose  = "https://www.googleapis.com/auth/gmail.compose"
	ScopeGmailModify   = "https://www.googleapis.com/auth/gmail.modify"
	ScopeTasks         = "https://www.googleapis.com/auth/tasks"
	ScopeKeep          = "https://www.googleapis.com/auth/keep"
)

// ScopeSet is the one list of scopes used by enrollment, credential loading and
// every service client. Do not declare scope lists anywhere else.
var ScopeSet = []string{
	ScopeCalendar,
	ScopeGmailReadonly,
	ScopeGmailCompose,
	ScopeGmailModify,
	ScopeTasks,
	ScopeKeep,
}

// Scopes returns a copy of ScopeSet.
func Scopes() []string {
	return slices.Clone(ScopeSet)
}

// MissingScopes returns the entries of required that granted does not contain.
func MissingScopes(granted, required []string) []string {
	var missing []string
	for _, s := range required {
		if !slices.Contains(granted, s) {
			missing = append(missing, s)
		}
	}
	return missing
}

// ValidateScopes checks that every scope required by the named services is part
// of ScopeSet. It is called once at startup with the requirements of each
// registered service.
func ValidateScopes(required map[string][]string) error {
	var problems []string
	services := make([]string, 0, len(required))
	for name := range required {
		services = append(services, name)
	}
	slices.Sort(services)

	for _, name := range services {
		if missing := MissingScopes(ScopeSet, required[name]); len(missing) > 0 {
			problems = append(problems, fmt.Sprintf("%s needs %s", name, strings.Join(missing, ", ")))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("scope set drift: %s", strings.Join(problems, "; "))
	}
	return nil
}
