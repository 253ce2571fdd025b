// Package server holds the state shared by every tool and the HTTP surfaces
// built on it.
//
// ServerContext resolves credentials through a google.TokenProvider and keeps
// one Calendar, Gmail and Tasks client per account alias, created on first
// use with a per-service rate limiter. It also owns the Keep session of the
// configured Keep account.
//
// Webhook serves the messaging endpoint. Each POST carries the message text
// and sender; turns from one sender are serialised and the reply is returned
// as TwiML. Twilio request signatures are checked when an auth token is
// configured. Health endpoints (/healthz, /readyz, /healthz/detailed) are
// served on the same router, and MetricsServer exposes Prometheus metrics on
// a separate listener.
package server
