// Package auth manages the OAuth2 credential lifecycle for the tool.
//
// A single-shot CLI cannot treat authentication as a one-shot login: tokens
// must survive across invocations, expire, get refreshed, and occasionally
// be re-granted by the user. The Store type owns that lifecycle. Its one
// operation, Acquire, returns a usable credential by doing the minimum
// necessary work: nothing when the stored access token is still fresh, a
// refresh exchange when it has expired, or the full browser-based
// authorization-code flow when no usable credential exists. Every change is
// persisted before the credential is handed to the caller.
//
// Failures carry a Kind so callers can distinguish a declined consent from
// an unreachable authorization server or a broken credential file.
package auth
