// Package calendar provides a client for the Google Calendar API.
//
// It offers the event operations the tool exposes (list, get, create,
// update, delete) plus calendar listing and free/busy queries for meeting
// scheduling. The client does not authenticate by itself: it consumes a
// token source handed in by the caller, presenting the access token as a
// bearer credential on each request.
package calendar
