// Package gmail provides a client for the Gmail API of one account alias.
//
// It covers what the assistant needs: searching with Gmail query syntax,
// reading a message's plain text body, sending and drafting plain text mail
// from the account's own address, and moving messages to the trash.
// Permanent deletion is deliberately not offered.
//
// Example usage:
//
//	client, err := gmail.NewClient(ctx, "personal", resolver, caller)
//	if err != nil {
//	    return err
//	}
//	hits, err := client.Search(ctx, "is:unread newer_than:2d", 10)
//	if err != nil {
//	    return err
//	}
//	id, err := client.SendEmail(ctx, &gmail.EmailMessage{
//	    To:      []string{"recipient@example.com"},
//	    Subject: "Hello",
//	    Body:    "This is a test email",
//	})
package gmail
