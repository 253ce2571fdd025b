// Package agent runs conversation turns against a language model that can
// call the registered tools.
//
// The model is told to answer either with plain text, which is the reply,
// or with a single JSON object naming a tool:
//
//	{"tool": "search_gmail", "input": {"account_alias": "work", "query": "is:unread"}}
//
// The tool's text result is fed back as an observation and the model is
// asked again, up to a fixed number of rounds per turn. Malformed calls are
// answered with a fixed correction and count as a round.
//
// Respond never fails. Errors are logged and turned into a short apology so
// that every delivery surface can send the reply as is.
package agent
