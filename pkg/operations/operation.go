// Package operations implements the packaging chains applied to an asset
// source file to produce a bundle artifact (e.g. "tar.gz").
package operations

import (
	"fmt"
	"io"
	"sort"
)

// Operation identifiers. Each fits in one byte of a packed chain.
const (
	// No operation - raw data
	OP_NONE = 0x00

	// Container operations (0x01-0x0F)
	OP_TAR = 0x01 // POSIX TAR archive

	// Compression operations (0x10-0x2F)
	OP_GZIP  = 0x10 // GZIP compression
	OP_BZIP2 = 0x13 // BZIP2 compression
	OP_XZ    = 0x16 // reserved, not implemented
	OP_ZSTD  = 0x1B // reserved, not implemented
)

// MaxChainLength is the number of operations a packed chain can hold.
const MaxChainLength = 8

// Operation is a single reversible transformation of bundle data.
type Operation interface {
	// ID returns the operation identifier (e.g., OP_GZIP)
	ID() uint8

	// Name returns the human-readable name
	Name() string

	// Apply transforms input data
	Apply(input []byte) ([]byte, error)

	// ApplyStream transforms a stream
	ApplyStream(input io.Reader, output io.Writer) error

	// Reverse undoes Apply
	Reverse(input []byte) ([]byte, error)

	// ReverseStream undoes ApplyStream
	ReverseStream(input io.Reader, output io.Writer) error

	// CanReverse returns true if the operation is reversible
	CanReverse() bool

	// EstimateSize estimates the output size given input size
	EstimateSize(inputSize int64) int64
}

// BaseOperation provides the identity half of an Operation.
type BaseOperation struct {
	OpID   uint8
	OpName string
}

func (o *BaseOperation) ID() uint8 {
	return o.OpID
}

func (o *BaseOperation) Name() string {
	return o.OpName
}

func (o *BaseOperation) CanReverse() bool {
	return true
}

func (o *BaseOperation) EstimateSize(inputSize int64) int64 {
	return inputSize
}

// Registry maps operation IDs to their default implementations.
// Implementations register themselves from their package init.
var Registry = make(map[uint8]Operation)

// Register registers an operation implementation
func Register(op Operation) {
	Registry[op.ID()] = op
}

// Get retrieves an operation by ID
func Get(id uint8) (Operation, error) {
	op, ok := Registry[id]
	if !ok {
		return nil, fmt.Errorf("unsupported operation: %s (0x%02x)", GetName(id), id)
	}
	return op, nil
}

// Registered returns the IDs of all registered operations in ascending order.
func Registered() []uint8 {
	ids := make([]uint8, 0, len(Registry))
	for id := range Registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GetName returns the name of an operation by ID
func GetName(id uint8) string {
	switch id {
	case OP_NONE:
		return "NONE"
	case OP_TAR:
		return "TAR"
	case OP_GZIP:
		return "GZIP"
	case OP_BZIP2:
		return "BZIP2"
	case OP_XZ:
		return "XZ"
	case OP_ZSTD:
		return "ZSTD"
	default:
		return fmt.Sprintf("UNKNOWN_%02x", id)
	}
}
