/*
Package ports defines the driven ports (interfaces) of the tether host.

These interfaces decouple invocation handling from storage and coordination
backends, so the same host can run as a single desktop process or behind a shared
Redis instance.

# Key Interfaces

  - HistoryStore: Keeps a bounded journal of invocation records.
  - Locker: Serializes invocations of exclusive commands.
*/
package ports
