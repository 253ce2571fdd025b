// Package keep_tools provides the Google Keep tools: list_notes, get_note,
// create_note, delete_note and share_note.
//
// Keep tools take no account alias. They act on the notes of the account
// configured as the Keep account.
package keep_tools
