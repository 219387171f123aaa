// Package tabular defines the rectangular raw-sample table handed to the
// engine and a CSV loader for it. The engine itself performs no I/O; callers
// load a Table up front and pass it in.
package tabular
