package operations_test

import (
	"bytes"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/provide-io/animbundle/pkg/operations"
	"github.com/provide-io/animbundle/pkg/operations/archive"
	_ "github.com/provide-io/animbundle/pkg/operations/compress"
)

// TestOperationPacking tests packing chains into 64-bit integers
func TestOperationPacking(t *testing.T) {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "chain_test",
		Level: hclog.Trace,
	})

	testCases := []struct {
		name       string
		operations []uint8
		expected   uint64
	}{
		{name: "empty/raw", operations: []uint8{}, expected: 0x0},
		{name: "single GZIP", operations: []uint8{operations.OP_GZIP}, expected: 0x10},
		{name: "single TAR", operations: []uint8{operations.OP_TAR}, expected: 0x01},
		{name: "TAR + GZIP", operations: []uint8{operations.OP_TAR, operations.OP_GZIP}, expected: 0x1001},
		{name: "TAR + BZIP2", operations: []uint8{operations.OP_TAR, operations.OP_BZIP2}, expected: 0x1301},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			packed, err := operations.PackOperations(tc.operations)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			logger.Debug("📦 Packed operations",
				"input", tc.operations,
				"output", fmt.Sprintf("0x%016x", packed),
			)

			if packed != tc.expected {
				t.Errorf("PackOperations(%v) = 0x%016x, want 0x%016x", tc.operations, packed, tc.expected)
			}

			unpacked := operations.UnpackOperations(packed)
			if !reflect.DeepEqual(unpacked, tc.operations) {
				t.Errorf("UnpackOperations(0x%x) = %v, want %v", packed, unpacked, tc.operations)
			}
		})
	}
}

func TestPackOperationsLimits(t *testing.T) {
	if _, err := operations.PackOperations([]uint8{1, 2, 3, 4, 5, 6, 7, 8, 9}); err == nil {
		t.Error("PackOperations accepted 9 operations")
	}
	if _, err := operations.PackOperations([]uint8{operations.OP_TAR, operations.OP_NONE}); err == nil {
		t.Error("PackOperations accepted NONE inside a chain")
	}
}

func TestParseChain(t *testing.T) {
	testCases := []struct {
		input    string
		expected []uint8
		display  string
	}{
		{input: "", expected: []uint8{}, display: "raw"},
		{input: "raw", expected: []uint8{}, display: "raw"},
		{input: "tar.gz", expected: []uint8{operations.OP_TAR, operations.OP_GZIP}, display: "tar.gz"},
		{input: "TGZ", expected: []uint8{operations.OP_TAR, operations.OP_GZIP}, display: "tar.gz"},
		{input: "tar|bzip2", expected: []uint8{operations.OP_TAR, operations.OP_BZIP2}, display: "tar.bz2"},
		{input: "gzip|bzip2", expected: []uint8{operations.OP_GZIP, operations.OP_BZIP2}, display: "gzip|bzip2"},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			ops, err := operations.ParseChain(tc.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(ops, tc.expected) {
				t.Errorf("ParseChain(%q) = %v, want %v", tc.input, ops, tc.expected)
			}
			if got := operations.ChainString(ops); got != tc.display {
				t.Errorf("ChainString(%v) = %q, want %q", ops, got, tc.display)
			}
		})
	}

	for _, bad := range []string{"lz4", "tar|lz4", "xz"} {
		if _, err := operations.ParseChain(bad); err == nil {
			t.Errorf("ParseChain(%q) succeeded, want error", bad)
		}
	}
}

func TestUnimplementedOperation(t *testing.T) {
	ids, err := operations.ParseChain("tar|xz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := operations.Lookup(ids); err == nil {
		t.Error("Lookup resolved the reserved XZ operation")
	}
}

func TestChainRoundTrip(t *testing.T) {
	payload := bytes.Repeat([]byte("keyframe;"), 512)

	for _, spec := range []string{"raw", "tar", "gzip", "bzip2", "tar.gz", "tar.bz2"} {
		t.Run(spec, func(t *testing.T) {
			ids, err := operations.ParseChain(spec)
			if err != nil {
				t.Fatalf("ParseChain failed: %v", err)
			}

			packed, err := operations.ApplyChain(payload, ids)
			if err != nil {
				t.Fatalf("ApplyChain failed: %v", err)
			}

			again, err := operations.ApplyChain(payload, ids)
			if err != nil {
				t.Fatalf("second ApplyChain failed: %v", err)
			}
			if !bytes.Equal(packed, again) {
				t.Error("ApplyChain output is not reproducible")
			}

			restored, err := operations.ReverseChain(packed, ids)
			if err != nil {
				t.Fatalf("ReverseChain failed: %v", err)
			}
			if !bytes.Equal(restored, payload) {
				t.Error("round trip changed the payload")
			}
		})
	}
}

func TestTarEntryConfiguration(t *testing.T) {
	stamp := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	op := archive.NewTarOperation().WithEntry("Linux/walk.anim", stamp)

	out, err := op.Apply([]byte("clip"))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !bytes.Contains(out, []byte("Linux/walk.anim")) {
		t.Error("archive does not contain the configured entry name")
	}

	data, err := op.Reverse(out)
	if err != nil {
		t.Fatalf("Reverse failed: %v", err)
	}
	if string(data) != "clip" {
		t.Errorf("Reverse = %q, want %q", data, "clip")
	}

	if archive.NewTarOperation().EntryName != archive.DefaultEntryName {
		t.Error("WithEntry mutated the default operation")
	}
}
