// Package mocks provides centralized mock implementations for testing.
//
// The store mocks are map-backed and honor the same semantics the Postgres
// implementations enforce: case-insensitive uniqueness on usernames, emails
// and nothing else, idempotent follow and favorite toggles, cascade deletes
// from articles to comments and favorites, and monotonically increasing
// comment IDs. Function fields on each mock allow individual methods to be
// overridden per test.
package mocks
