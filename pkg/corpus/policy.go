package corpus

import (
	"fmt"
	"log"
)

// DuplicatePolicy decides what happens when an import finds an entity that
// is already stored. The zero value is lenient and silent.
type DuplicatePolicy struct {
	// Strict turns every duplicate into an ErrDuplicate error.
	Strict bool
	// Logger receives "Warning: ..." lines in lenient mode. nil discards them.
	Logger *log.Logger
}

// Check is called once per duplicate found. In strict mode it returns an
// error wrapping ErrDuplicate built from strictMsg; otherwise it logs
// lenientMsg as a warning and returns nil.
func (p DuplicatePolicy) Check(strictMsg, lenientMsg string) error {
	if p.Strict {
		return fmt.Errorf("%w: %s", ErrDuplicate, strictMsg)
	}
	if p.Logger != nil {
		p.Logger.Printf("Warning: %s", lenientMsg)
	}
	return nil
}
