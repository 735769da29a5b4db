// Package store provides the durable key-value backends renalcare persists to.
//
// Every backend implements Backend: whole values are read, written and deleted
// by key. The registry and session stores sit on top and own the encoding.
//
// # Backends
//
//   - Store: SQLite (default). One kv table, WAL mode.
//   - RedisStore: Redis strings, optional key prefix.
//   - MemoryStore: in-process map, for tests and throwaway sessions.
//
// # Write Semantics
//
// A write replaces the previous value atomically. A failed write leaves the
// previously persisted value intact; callers never observe a partial value.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
