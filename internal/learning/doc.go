// Package learning owns the learning log: the append-only sequence of
// patterns produced by transformation operations, the worker roster, and
// the aggregate metrics derived from both.
//
// # Patterns
//
// Each recorded pattern carries an input and output payload. Its confidence
// is the output/input payload size ratio clamped to [0,1]:
//
//	input {a, b}       output {a}        confidence 0.5
//	input {}           output {x}        confidence 1.0
//	input {}           output {}         confidence 0.0
//
// Patterns build on each other. A pattern's learning depth counts earlier
// patterns of the same kind, and its recursive improvement count counts
// earlier patterns whose output keys feed its input keys.
//
// # Concurrency
//
// The Log is the only mutable shared state in the engine. All writes go
// through one mutex; View takes a consistent copy for snapshotting.
package learning
