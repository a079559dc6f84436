package catalog

import "fmt"

// ErrCatalogParse is returned when a catalog file cannot be read or parsed
type ErrCatalogParse struct {
	Path string
	Err  error
}

func (e ErrCatalogParse) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("failed to parse catalog: %v", e.Err)
	}
	return fmt.Sprintf("failed to parse catalog at %s: %v", e.Path, e.Err)
}

func (e ErrCatalogParse) Unwrap() error { return e.Err }

// ErrInvalidComponent is returned when a catalog entry violates a
// structural constraint
type ErrInvalidComponent struct {
	Field  string
	Reason string
	Index  *int // Optional index into the components list
}

func (e ErrInvalidComponent) Error() string {
	if e.Index != nil {
		return fmt.Sprintf("invalid catalog: components[%d].%s: %s", *e.Index, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid catalog: %s: %s", e.Field, e.Reason)
}

// ErrDuplicateName is returned when two components claim the same name or
// alias
type ErrDuplicateName struct {
	Name   string
	First  string
	Second string
}

func (e ErrDuplicateName) Error() string {
	return fmt.Sprintf("duplicate catalog name %q: claimed by %s and %s", e.Name, e.First, e.Second)
}
