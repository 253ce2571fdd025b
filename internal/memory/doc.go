// Package memory stores conversation history per session.
//
// A session is one conversation: the REPL uses a random id per process and
// the webhook uses the sender's address. Stores keep at most a fixed number
// of messages per session and drop the oldest first.
//
// Two implementations are provided:
//   - InMemoryStore, for the interactive chat and tests
//   - BadgerStore, an embedded key-value store that survives restarts and is
//     safe for concurrent webhook senders
package memory
