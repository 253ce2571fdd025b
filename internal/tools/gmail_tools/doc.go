// Package gmail_tools provides the Gmail tools of the assistant.
//
// Every tool takes an account_alias selecting the mailbox:
//   - search_gmail: search with Gmail query syntax and list sender, subject,
//     snippet and ID per hit
//   - get_gmail_message: read one message, preferring its plain text part
//   - send_gmail_message / create_gmail_draft: compose a plain text message
//     from the account's own address
//   - trash_gmail_message: move a message to the trash
//
// Sending and trashing are registered only when destructive tools are
// allowed.
package gmail_tools
