// Package calendar_tools exposes the primary Google Calendar of each account
// alias as tools: search, get, create, update and delete events.
//
// Times are accepted as 'YYYY-MM-DD HH:MM:SS' (read in the configured
// timezone) or RFC3339. Update and delete are only registered when the
// caller allows destructive tools.
package calendar_tools
