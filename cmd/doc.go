// Package cmd implements the command-line interface for gcalctl.
//
// This package provides the following commands:
//   - list: List upcoming events
//   - create: Create a new event
//   - update: Update an existing event
//   - delete: Delete an event
//   - calendars: List the calendars accessible to the account
//   - slots: Propose meeting slots where all attendees are free
//   - auth: Manage Google authorization (login, status, revoke)
//
// Calendar commands acquire a credential before issuing any API call; the
// first run triggers browser-based authorization.
package cmd
