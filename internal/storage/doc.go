// Package storage persists the reminder set wholesale.
//
// The contract is deliberately small: Load() once at startup (an empty set
// when there is no prior state) and Save() after every mutation. Two drivers:
//   - "file": a single JSON document, written atomically
//   - "sqlite": a SQLite database file (optional build tag)
package storage
