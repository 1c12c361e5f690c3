// Package tokenstore provides persistent storage backends for serialized
// OAuth credentials.
//
// Two backends are available: FileStore keeps the credential as a JSON
// document on disk with atomic writes and restrictive permissions, and
// KeyringStore uses the OS-native secret service (macOS Keychain, Windows
// Credential Manager, Linux Secret Service).
//
// Absence of a stored credential is reported as ErrNotFound so callers can
// distinguish "never authorized" from an actual storage failure.
package tokenstore
