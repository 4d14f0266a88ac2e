package npy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/npyio/internal/tensor"
)

// Write encodes the header for (shape, dtype) and writes it followed by the
// element payload to w. data must hold exactly NumElements * dtype.Size()
// bytes in row-major order.
func Write(w io.Writer, data []byte, shape tensor.Shape, dtype tensor.DataType) error {
	header, err := EncodeHeader(shape, dtype)
	if err != nil {
		return err
	}

	payloadSize := shape.NumElements() * dtype.Size()
	if len(data) != payloadSize {
		return fmt.Errorf("data is %d bytes, shape %v with dtype %s needs %d",
			len(data), []int(shape), dtype, payloadSize)
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	n, err := w.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	if n != payloadSize {
		return fmt.Errorf("%w: wrote %d of %d payload bytes", ErrShortWrite, n, payloadSize)
	}
	return nil
}

// Read decodes an .npy stream from r: header first, then exactly
// NumBytes() payload bytes into a freshly allocated Array.
func Read(r io.Reader) (*Array, error) {
	hdr, err := DecodeHeader(r)
	if err != nil {
		return nil, err
	}

	arr := NewArray(hdr.Shape, hdr.Code, hdr.WordSize, hdr.FortranOrder)
	if _, err := io.ReadFull(r, arr.Data()); err != nil {
		arr.Release()
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: want %d bytes", ErrTruncated, arr.NumBytes())
		}
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	return arr, nil
}

// Save writes data with the given shape and element type to path as an .npy
// file. The file handle is released on every exit path; on failure a
// partially written file may be left behind (callers that need atomicity
// should write to a temporary path and rename).
func Save(path string, data []byte, shape tensor.Shape, dtype tensor.DataType) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for array saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, data, shape, dtype); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	return file.Close()
}

// Load reads the .npy file at path into an Array. The file handle is
// released on every exit path, including parse failures.
func Load(path string) (*Array, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for array loading
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Read(file)
}

// SaveTensor writes a RawTensor to path as an .npy file.
func SaveTensor(path string, raw *tensor.RawTensor) error {
	return Save(path, raw.Data(), raw.Shape(), raw.DType())
}

// LoadTensor reads the .npy file at path into a RawTensor.
//
// The decoded (code, word size) pair must map to a host data type, and
// fortran-ordered files are rejected: RawTensor is row-major only. Use Load
// when the raw layout flag or unmapped types must be surfaced instead.
func LoadTensor(path string) (*tensor.RawTensor, error) {
	arr, err := Load(path)
	if err != nil {
		return nil, err
	}
	defer arr.Release()

	if arr.FortranOrder() {
		return nil, ErrFortranOrder
	}

	dtype, err := arr.DType()
	if err != nil {
		return nil, err
	}

	raw, err := tensor.NewRaw(arr.Shape(), dtype)
	if err != nil {
		return nil, fmt.Errorf("failed to create tensor: %w", err)
	}
	copy(raw.Data(), arr.Data())
	return raw, nil
}
