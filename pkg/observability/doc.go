/*
Package observability provides monitoring for the tether host.

It exposes Prometheus metrics for command invocations and builds lifecycle
hooks that log each invocation and record it in those metrics.
*/
package observability
