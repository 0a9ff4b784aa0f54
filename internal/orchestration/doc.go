// Package orchestration runs expression evaluations with the concerns the
// arithmetic core leaves out: deadlines, tracing, metrics, logging and
// history. It also evaluates batches of lines concurrently, and it defines
// the interfaces that decouple presentation from evaluation.
package orchestration
