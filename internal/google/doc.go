// Package google manages the OAuth2 credentials of every enrolled Google account.
//
// Each account is identified by a short alias and owns exactly one credential
// record in a Store. The Resolver loads that record, refreshes it through the
// token endpoint when it has expired, writes the refreshed record back under the
// same alias, and reports failures as typed errors (ErrNotFound, ErrInvalid)
// wrapped in a *CredentialError.
//
// All credentials are requested with the single process-wide ScopeSet. Service
// packages declare the scopes they rely on and ValidateScopes rejects any that
// the ScopeSet does not grant, so drift is caught at startup instead of at call
// time.
package google
