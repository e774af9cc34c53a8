package jsonparser

import "fmt"

// SyntaxError reports a parse failure at a specific line of the input.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d: %s", e.Line, e.Message)
}

// parseAbort is the panic value errorf raises to unwind out of the
// recursive-descent call stack in one step. It plays the role the C
// ancestor gives setjmp/longjmp: every parse* function can fail deep in a
// nested call without threading an error return through every frame above
// it. It is recovered exactly once, at the top of ParseWithSettings, and never
// observed outside this package.
type parseAbort struct {
	err *SyntaxError
}
