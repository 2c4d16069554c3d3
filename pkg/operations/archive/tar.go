// Package archive provides the TAR container operation.
package archive

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/provide-io/animbundle/pkg/operations"
)

// DefaultEntryName is used when no entry name is configured.
const DefaultEntryName = "data"

// maxEntrySize bounds a single extracted entry.
const maxEntrySize = 1 << 30

func init() {
	operations.Register(NewTarOperation())
}

// TarOperation wraps its input in a single-entry TAR archive. The header
// carries a fixed modification time so identical input yields identical
// output.
type TarOperation struct {
	operations.BaseOperation
	EntryName string
	ModTime   time.Time
}

// NewTarOperation creates a TAR operation with a "data" entry stamped at
// the Unix epoch.
func NewTarOperation() *TarOperation {
	return &TarOperation{
		BaseOperation: operations.BaseOperation{
			OpID:   operations.OP_TAR,
			OpName: "TAR",
		},
		EntryName: DefaultEntryName,
		ModTime:   time.Unix(0, 0).UTC(),
	}
}

// WithEntry returns a copy that names the entry and stamps it with modTime.
func (o *TarOperation) WithEntry(name string, modTime time.Time) *TarOperation {
	c := *o
	c.EntryName = name
	c.ModTime = modTime.UTC()
	return &c
}

func (o *TarOperation) header(size int64) *tar.Header {
	name := o.EntryName
	if name == "" {
		name = DefaultEntryName
	}
	return &tar.Header{
		Name:     name,
		Mode:     0o644,
		Size:     size,
		ModTime:  o.ModTime,
		Typeflag: tar.TypeReg,
	}
}

// Apply creates a TAR archive holding input as its only entry.
func (o *TarOperation) Apply(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := o.write(&buf, input); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ApplyStream archives the whole input stream as one entry.
func (o *TarOperation) ApplyStream(input io.Reader, output io.Writer) error {
	data, err := io.ReadAll(input)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return o.write(output, data)
}

func (o *TarOperation) write(w io.Writer, data []byte) error {
	tw := tar.NewWriter(w)

	if err := tw.WriteHeader(o.header(int64(len(data)))); err != nil {
		return fmt.Errorf("writing tar header: %w", err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("writing tar data: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("closing tar writer: %w", err)
	}
	return nil
}

// Reverse returns the contents of the archive's first entry.
func (o *TarOperation) Reverse(input []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := o.ReverseStream(bytes.NewReader(input), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReverseStream copies the archive's first entry to output.
func (o *TarOperation) ReverseStream(input io.Reader, output io.Writer) error {
	tr := tar.NewReader(input)

	header, err := tr.Next()
	if err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty tar archive")
		}
		return fmt.Errorf("reading tar header: %w", err)
	}

	if header.Size < 0 || header.Size > maxEntrySize {
		return fmt.Errorf("invalid entry size: %d", header.Size)
	}

	if _, err := io.CopyN(output, tr, header.Size); err != nil {
		return fmt.Errorf("extracting tar data: %w", err)
	}
	return nil
}

// EstimateSize accounts for the 512-byte header, block padding and the two
// terminating zero blocks. PAX records are ignored.
func (o *TarOperation) EstimateSize(inputSize int64) int64 {
	padding := (512 - (inputSize % 512)) % 512
	return 512 + inputSize + padding + 1024
}
