// Package trace is the developer log of opcheck. Events are spans and
// points at four scopes: the whole run, one probe file, one case (or repl
// input) and one operator resolution.
//
//	opcheck check --trace=- --trace-level=debug probes/
//
// A stream tracer writes events as they happen; a ring tracer keeps the
// last N in memory and is dumped only when a run fails.
package trace
