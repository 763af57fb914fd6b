// Package store provides persistence for rosterd's person, address, club,
// and membership records.
//
// # Storage Backend
//
// The production implementation is SQLiteStore (modernc.org/sqlite, pure Go).
// The schema is created automatically on startup with WAL mode and foreign
// keys enabled.
//
// # Cascade Semantics
//
// Referential integrity is enforced by the database:
//
//   - Deleting a person removes its addresses and club memberships.
//   - Deleting a club removes its memberships but leaves people untouched.
//
// # Error Handling
//
// Lookup misses return entity-specific errors (ErrPersonNotFound,
// ErrAddressNotFound, ErrClubNotFound) that wrap ErrNotFound. Integrity
// violations (duplicate club names, duplicate memberships, writes referencing
// missing rows) surface as ErrConstraint.
package store
