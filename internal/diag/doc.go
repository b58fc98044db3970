// Package diag defines the diagnostic model shared by the probe parser, the
// operator resolution engine and the driver.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – compact numeric identifier with a stable textual ID such as
//     SEM3004 (codes.go).
//   - Message – short, actionable text. Operator diagnostics name the
//     operator symbol and both operand types exactly once.
//   - Primary – the span of the offending node.
//   - Notes – secondary spans; used only to point at a conflicting
//     declaration, never to repeat the primary message.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. ReportError/ReportWarning return a
// ReportBuilder that collects notes until Emit. BagReporter stores into a
// Bag, DedupReporter filters repeats and NopReporter discards everything.
// Reporters are not synchronised: each goroutine owns its sink.
//
// Package diag does no terminal formatting; see internal/diagfmt. The only
// renderer here is FormatShort, the stable one-line form used by tests and
// expectation checks.
package diag
