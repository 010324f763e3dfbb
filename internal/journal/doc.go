// Package journal provides SQLite-backed durable storage for container
// event streams.
//
// The container itself never persists anything. A Journal is a collaborator
// that subscribes to a container and appends every delivered event:
//   - Init, Get, Set, Update and Remove events become one row each
//   - A Transaction event becomes one row per child plus one row for the
//     transaction itself; children carry the transaction id
//
// # Critical Patterns
//
// Logical Identity and Time:
//   - All ordering uses seq INTEGER (logical clock), NEVER timestamps
//   - UNIQUE(container_id, seq) makes appends idempotent
//
// Deterministic Query Results:
//   - All queries MUST include: ORDER BY seq ASC, id ASC
//
// Values are stored as the ordered JSON encoding from package value, so a
// row decodes back to an equal value (big integers and blobs included).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package journal
