// Package pipeline runs the per-page analysis and compiles the report.
//
// Each page moves through a Pipeline of Steps: render, extract, evaluate,
// score. A BatchProcessor runs one pipeline per page under an errgroup
// concurrency limit and returns results in input order. The Compiler wires
// these together, assigns unique page identifiers, resolves previous scores
// through an injected ScoreResolver and folds the entries into fleet
// statistics.
//
// One failing page never stops the report: render failures leave empty
// markup, resolver failures leave the previous score equal to the current
// one, and both are noted on the page entry.
package pipeline
