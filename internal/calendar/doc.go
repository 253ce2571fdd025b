// Package calendar provides a client for the primary Google Calendar of one
// account alias.
//
// Every request goes through the credential resolver, so expired tokens are
// refreshed transparently, and through a google.Caller that applies the
// calendar rate limiter and records metrics.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, "work", resolver, caller, time.UTC)
//	if err != nil {
//	    return err
//	}
//	events, err := client.SearchEvents(ctx, calendar.SearchQuery{
//	    TimeMin: time.Now(),
//	    TimeMax: time.Now().AddDate(0, 0, 7),
//	})
package calendar
