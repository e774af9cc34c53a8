package jsonparser

// Settings selects which JSON-like dialect extensions Parse accepts. The
// zero value parses strict JSON.
type Settings struct {
	// UnquotedKeys allows barewords (a-z, A-Z, 0-9, _, -) as object keys:
	// {a: 10, b: 20}
	UnquotedKeys bool

	// CComments allows C (/* */) and C++ (//) style comments.
	CComments bool

	// ImplicitRootObject makes the outermost { } optional: a:10, b:20
	// parses as {"a":10,"b":20}.
	ImplicitRootObject bool

	// OptionalCommas makes commas between object members or array elements
	// optional: a:10 b:20 parses the same as a:10, b:20.
	OptionalCommas bool

	// EqualsForColon allows = in place of : between an object key and its
	// value: a=10 b=20.
	EqualsForColon bool

	// PythonMultilineStrings allows Python-style triple-quoted strings
	// ("""...""") that need no escaping except for the terminator itself.
	PythonMultilineStrings bool

	// SkipEscapeSequences disables backslash-escape processing inside
	// quoted strings, so a literal backslash is copied through as-is.
	SkipEscapeSequences bool

	// AllowControlCharacters allows literal control characters (bytes below
	// 0x20) inside quoted strings instead of rejecting them.
	AllowControlCharacters bool

	// AllowLatin1Input treats unescaped bytes at or above 0x80 inside a
	// double-quoted string as Windows-1252, transcoding them to UTF-8, instead
	// of copying them through verbatim. Triple-quoted strings and bareword
	// keys are always copied verbatim. Documents that are already valid
	// UTF-8 should leave this false; it exists for ingesting legacy
	// Windows-1252 configuration files without a separate conversion pass.
	AllowLatin1Input bool
}
