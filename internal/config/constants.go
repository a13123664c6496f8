// Package config holds process-wide constants and mode switches shared by
// every stage of the compiler pipeline.
package config

// Version is the compiler version. Set at build time via -ldflags, the way
// the example corpus stamps its own CLI version.
var Version = "0.1.0"

const SourceFileExt = ".hs"

// SourceFileExtensions are all recognized source file extensions.
var SourceFileExtensions = []string{".hs", ".pico"}

// TrimSourceExt removes any recognized source extension from a filename.
// Returns the original string if no extension matches.
func TrimSourceExt(name string) string {
	for _, ext := range SourceFileExtensions {
		if len(name) >= len(ext) && name[len(name)-len(ext):] == ext {
			return name[:len(name)-len(ext)]
		}
	}
	return name
}

// HasSourceExt returns true if the path ends with any recognized source extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// IsTestMode indicates if the program is running in test mode. When set,
// fresh type and kind variables are printed as "t?" and "k?" in String()
// output (STG dot-names are not normalized) so golden tests stay stable across runs that allocate
// intermediates in a different but equally valid order.
var IsTestMode = false

// CaseErrorName is the reserved free variable STG default arms branch to
// when pattern matching is exhausted without a successful alternative. The
// runtime/emitter links it to a trap.
const CaseErrorName = "case_error"

// MainName is the reachability root and the program's top-level driver.
const MainName = "main"

// DotNamePrefix marks a synthesized intermediate name. User identifiers can
// never start with it, so dot-names are always disjoint from user names.
const DotNamePrefix = "."

// Built-in prelude type names fixed by the calling convention / tag table.
const (
	ListTypeName = "[]"
	ConsName     = ":"
	NilName      = "[]"
	BoolTypeName = "Bool"
	TrueName     = "True"
	FalseName    = "False"
	IntTypeName  = "Int"
	CharTypeName = "Char"
	ArrowName    = "(->)"
)
