package operations

import (
	"fmt"
	"strings"
)

// PackOperations packs a chain into a 64-bit integer, first operation in
// the least significant byte.
func PackOperations(ops []uint8) (uint64, error) {
	if len(ops) > MaxChainLength {
		return 0, fmt.Errorf("maximum %d operations allowed, got %d", MaxChainLength, len(ops))
	}

	var packed uint64
	for i, op := range ops {
		if op == OP_NONE {
			return 0, fmt.Errorf("operation %d: NONE cannot appear inside a chain", i)
		}
		packed |= uint64(op) << (i * 8)
	}
	return packed, nil
}

// UnpackOperations is the inverse of PackOperations. OP_NONE ends the chain.
func UnpackOperations(packed uint64) []uint8 {
	ops := []uint8{}
	for i := 0; i < MaxChainLength; i++ {
		op := uint8((packed >> (i * 8)) & 0xFF)
		if op == OP_NONE {
			break
		}
		ops = append(ops, op)
	}
	return ops
}

// Common chain spellings, keyed by the dash-joined hex IDs.
var chainNames = map[string]string{
	"01-10": "tar.gz",
	"01-13": "tar.bz2",
	"10":    "gzip",
	"13":    "bzip2",
	"01":    "tar",
}

var namedChains = map[string][]uint8{
	"raw":     {},
	"tar":     {OP_TAR},
	"gzip":    {OP_GZIP},
	"gz":      {OP_GZIP},
	"bzip2":   {OP_BZIP2},
	"bz2":     {OP_BZIP2},
	"tar.gz":  {OP_TAR, OP_GZIP},
	"tgz":     {OP_TAR, OP_GZIP},
	"tar.bz2": {OP_TAR, OP_BZIP2},
	"tbz2":    {OP_TAR, OP_BZIP2},
}

var namedOperations = map[string]uint8{
	"TAR":   OP_TAR,
	"GZIP":  OP_GZIP,
	"BZIP2": OP_BZIP2,
	"XZ":    OP_XZ,
	"ZSTD":  OP_ZSTD,
}

// ParseChain turns a chain spelling ("tar.gz", "tar|bzip2", "raw") into
// operation IDs.
func ParseChain(spec string) ([]uint8, error) {
	spec = strings.ToLower(strings.TrimSpace(spec))
	if spec == "" {
		return []uint8{}, nil
	}

	if ops, ok := namedChains[spec]; ok {
		return append([]uint8{}, ops...), nil
	}

	if !strings.Contains(spec, "|") {
		return nil, fmt.Errorf("unknown operation chain: %s", spec)
	}

	var ops []uint8
	for _, part := range strings.Split(spec, "|") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		op, ok := namedOperations[part]
		if !ok {
			return nil, fmt.Errorf("unknown operation: %s", part)
		}
		ops = append(ops, op)
	}
	if len(ops) > MaxChainLength {
		return nil, fmt.Errorf("maximum %d operations allowed, got %d", MaxChainLength, len(ops))
	}
	return ops, nil
}

// StringToOperations parses a chain spelling into its packed form.
func StringToOperations(spec string) (uint64, error) {
	ops, err := ParseChain(spec)
	if err != nil {
		return 0, err
	}
	return PackOperations(ops)
}

// ChainString renders operation IDs using the common spelling when one
// exists, otherwise as a pipe-separated list.
func ChainString(ops []uint8) string {
	if len(ops) == 0 {
		return "raw"
	}

	keys := make([]string, len(ops))
	for i, op := range ops {
		keys[i] = fmt.Sprintf("%02x", op)
	}
	if name, ok := chainNames[strings.Join(keys, "-")]; ok {
		return name
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = strings.ToLower(GetName(op))
	}
	return strings.Join(names, "|")
}

// OperationsToString renders a packed chain.
func OperationsToString(packed uint64) string {
	return ChainString(UnpackOperations(packed))
}

// Lookup resolves IDs to their registered implementations.
func Lookup(ids []uint8) ([]Operation, error) {
	ops := make([]Operation, 0, len(ids))
	for _, id := range ids {
		op, err := Get(id)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Apply runs data through ops in order.
func Apply(data []byte, ops []Operation) ([]byte, error) {
	current := data
	for _, op := range ops {
		result, err := op.Apply(current)
		if err != nil {
			return nil, fmt.Errorf("applying %s: %w", op.Name(), err)
		}
		current = result
	}
	return current, nil
}

// Reverse undoes ops, last operation first.
func Reverse(data []byte, ops []Operation) ([]byte, error) {
	current := data
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i]
		if !op.CanReverse() {
			return nil, fmt.Errorf("operation %s is not reversible", op.Name())
		}
		result, err := op.Reverse(current)
		if err != nil {
			return nil, fmt.Errorf("reversing %s: %w", op.Name(), err)
		}
		current = result
	}
	return current, nil
}

// ApplyChain applies registered operations by ID.
func ApplyChain(data []byte, ids []uint8) ([]byte, error) {
	ops, err := Lookup(ids)
	if err != nil {
		return nil, err
	}
	return Apply(data, ops)
}

// ReverseChain reverses registered operations by ID.
func ReverseChain(data []byte, ids []uint8) ([]byte, error) {
	ops, err := Lookup(ids)
	if err != nil {
		return nil, err
	}
	return Reverse(data, ops)
}

// EstimateChainSize estimates the output size of a chain.
func EstimateChainSize(inputSize int64, ops []Operation) int64 {
	size := inputSize
	for _, op := range ops {
		size = op.EstimateSize(size)
	}
	return size
}
