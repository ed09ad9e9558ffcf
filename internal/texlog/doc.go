// Package texlog annotates raw autotex compilation transcripts for display.
//
// The annotator makes a single pass over the log: it discovers which TeX
// engines ran and how often, classifies each line against an ordered filter
// table, collects well-known failure signatures into an error summary, and
// derives an overall processing status from the compilation outcome plus what
// the final run contained. Output is an HTML fragment using a fixed set of
// tex-* span classes; every input line is escaped before any markup is added
// so log content can never inject markup of its own.
//
// An Annotator is immutable once built and safe for concurrent use; all
// per-call state lives in values owned by a single Annotate invocation.
package texlog
