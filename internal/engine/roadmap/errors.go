package roadmap

import "errors"

var (
	// ErrNotFound is returned for lookups of entities that do not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a create would violate a uniqueness rule:
	// career title, skill name (case-insensitive) or milestone order in a career.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalidInput is returned for requests that cannot be scored or stored,
	// such as an empty required-skill set.
	ErrInvalidInput = errors.New("invalid input")
)
