package cmem

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned by constructors when geometry or codec
	// settings are rejected. Nothing has been allocated when it is returned.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrContract marks a programming error: a required buffer is missing, a
	// working buffer does not match the cache, or a stored block cannot be
	// decoded. The cache is left unchanged.
	ErrContract = errors.New("contract violation")

	// ErrOutOfRange is returned by accessors for a flat index outside the
	// cache. The returned value is zero and the cache is left unchanged.
	ErrOutOfRange = errors.New("index out of range")

	// ErrMemoryLimit is returned when at-rest storage would exceed the
	// configured memory limit.
	ErrMemoryLimit = errors.New("memory limit exceeded")

	// ErrClosed is returned when the cache has been closed.
	ErrClosed = errors.New("compressed memory closed")
)

// ConfigError describes a rejected configuration value.
//
// errors.Is(err, ErrInvalidConfig) reports true for every ConfigError.
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
	cause  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.cause == nil {
		return []error{ErrInvalidConfig}
	}
	return []error{ErrInvalidConfig, e.cause}
}

// ContractError reports a contract violation during an operation on a block.
// Block is -1 when the operation is not tied to a block.
type ContractError struct {
	Op    string
	Block int
	Err   error
}

func (e *ContractError) Error() string {
	if e.Block < 0 {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s block %d: %v", e.Op, e.Block, e.Err)
}

func (e *ContractError) Unwrap() []error { return []error{ErrContract, e.Err} }

// IndexError reports an access outside the cache.
type IndexError struct {
	Index  Index
	Block  int
	Offset int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d (block %d, offset %d) out of range", e.Index, e.Block, e.Offset)
}

func (e *IndexError) Unwrap() error { return ErrOutOfRange }

var (
	errGeometry   = errors.New("working buffer geometry does not match the cache")
	errBlockInUse = errors.New("working buffer still holds a block")
	errMissing    = errors.New("block marked written but has no storage")
)

func contractErr(op string, block int, err error) error {
	return &ContractError{Op: op, Block: block, Err: err}
}
