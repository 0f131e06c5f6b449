// Package store provides the SQLite-backed deal journal.
//
// The journal is an append-only log with:
//   - Sessions: one row per play session
//   - Deals: generated layouts with karma verdicts and fingerprints
//   - Plays: attempted card placements, legal or not
//
// # Critical Patterns
//
// Content-Addressed Identity
//   - Deal and play ids are domain-separated SHA-256 over canonical
//     JSON (see ids.go), so a retried write carries the same id
//   - INSERT ... ON CONFLICT DO NOTHING makes every write idempotent
//
// Logical Time
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - Enables deterministic replay regardless of wall time
//
// Deterministic Query Results
//   - All list queries include: ORDER BY seq ASC, id ASC COLLATE BINARY
//   - Ensures identical results across replays
//
// Fingerprints
//   - Every deal row stores the layout fingerprint; replay re-derives
//     generation from (node_key, direction) and compares digests
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
