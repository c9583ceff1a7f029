// Package compile converts rule graphs to linear instruction programs and
// back. Compile and Decompile are pure, synchronous, and total: they re-run on
// every edit of an interactive editor, so malformed graphs (cycles, dangling
// edges, missing triggers) degrade to deterministic output instead of errors.
package compile
