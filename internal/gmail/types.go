package gmail

// Defaults used when the caller leaves a field unset.
const (
	DefaultMaxResults = 10
	NoSubject         = "No Subject"
	UnknownSender     = "Unknown Sender"
)

// MessageSummary is one search hit with the headers needed to pick a message.
type MessageSummary struct {
	ID       string
	ThreadID string
	From     string
	Subject  string
	Snippet  string
}

// Message is a message read in full.
type Message struct {
	ID      string
	From    string
	To      string
	Subject string
	Date    string

	// Body is the first text/plain part, or empty when there is none.
	Body string

	// Attachments lists the filenames of attached parts.
	Attachments []string
}

// EmailMessage represents an email to be sent or drafted
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
}
