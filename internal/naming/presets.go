package naming

// GoKeywords are the reserved words of Go.
var GoKeywords = []string{
	"break", "case", "chan", "const", "continue", "default", "defer",
	"else", "fallthrough", "for", "func", "go", "goto", "if", "import",
	"interface", "map", "package", "range", "return", "select", "struct",
	"switch", "type", "var",
}

// GoBuiltins are Go's predeclared types and functions.
var GoBuiltins = []string{
	"any", "bool", "byte", "comparable", "complex64", "complex128", "error",
	"float32", "float64", "int", "int8", "int16", "int32", "int64", "rune",
	"string", "uint", "uint8", "uint16", "uint32", "uint64", "uintptr",
	"append", "cap", "clear", "close", "complex", "copy", "delete", "imag",
	"len", "make", "max", "min", "new", "panic", "print", "println", "real",
	"recover",
}

// PythonKeywords are the reserved words of Python 3.
var PythonKeywords = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await",
	"break", "class", "continue", "def", "del", "elif", "else", "except",
	"finally", "for", "from", "global", "if", "import", "in", "is",
	"lambda", "nonlocal", "not", "or", "pass", "raise", "return", "try",
	"while", "with", "yield",
}

// PythonBuiltins are builtin names a generated attribute should not shadow.
var PythonBuiltins = []string{
	"abs", "all", "any", "bin", "bool", "bytearray", "bytes", "callable",
	"chr", "classmethod", "compile", "complex", "delattr", "dict", "dir",
	"divmod", "enumerate", "eval", "exec", "filter", "float", "format",
	"frozenset", "getattr", "globals", "hasattr", "hash", "help", "hex",
	"id", "input", "int", "isinstance", "issubclass", "iter", "len",
	"list", "locals", "map", "max", "memoryview", "min", "next", "object",
	"oct", "open", "ord", "pow", "print", "property", "range", "repr",
	"reversed", "round", "set", "setattr", "slice", "sorted",
	"staticmethod", "str", "sum", "super", "tuple", "type", "vars", "zip",
}

// Go returns a Sanitizer for Go identifiers.
func Go() *Sanitizer {
	return New(GoKeywords, GoBuiltins, "_")
}

// Python returns a Sanitizer for Python identifiers.
func Python() *Sanitizer {
	return New(PythonKeywords, PythonBuiltins, "_")
}
