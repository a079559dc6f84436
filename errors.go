package promptml

import "fmt"

// UnresolvedVariableError reports a template expression that has no value
// in the render context. It is returned only under WithStrictVars; the
// default mode passes unresolved placeholders through verbatim.
type UnresolvedVariableError struct {
	Expr   string
	Offset int
}

func (e *UnresolvedVariableError) Error() string {
	return fmt.Sprintf("unresolved variable %q at offset %d", e.Expr, e.Offset)
}
