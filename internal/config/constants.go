package config

// Version is the current interpreter version, set at build time via
// -ldflags or left at this default for local builds.
var Version = "0.1.0"

const SourceFileExt = ".d"

// SourceFileExtensions are all recognized source file extensions; .txt
// is accepted too since several of the spec's own sample programs ship
// that way.
var SourceFileExtensions = []string{".d", ".txt"}

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

// HasSourceExt returns true if the path ends with any recognized source
// extension.
func HasSourceExt(path string) bool {
	for _, ext := range SourceFileExtensions {
		if len(path) >= len(ext) && path[len(path)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// InputFuncName names the one built-in the language exposes at its top
// level (§4.4); kept as a constant since both the builtins registry and
// anything introspecting it should agree on the spelling.
const InputFuncName = "input"

// DefaultExcerptWidth bounds how much of an overlong source line the
// locator prints before truncating, so a --locators report never spills
// a multi-kilobyte line onto the terminal.
const DefaultExcerptWidth = 100

