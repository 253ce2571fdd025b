// Package keep provides a client for Google Keep notes and the Session that
// owns it.
//
// Keep is used through a single configured account (KEEP_ACCOUNT), so tools
// do not take an account alias. The Keep API is only available to Google
// Workspace accounts; consumer accounts receive a 403.
package keep
