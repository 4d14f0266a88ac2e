// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package npyio provides the public API for reading and writing numpy .npy
// files without depending on numpy.
//
// The package exposes:
//   - Save/Load: whole-file array I/O over byte payloads
//   - SaveTensor/LoadTensor: I/O for the RawTensor handle
//   - Write/Read: the same codec over io.Writer/io.Reader
//   - Array: the decoded array buffer with typed views
//
// Example:
//
//	raw, _ := npyio.NewRaw(npyio.Shape{2, 3}, npyio.Float32)
//	copy(raw.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})
//	if err := npyio.SaveTensor("x.npy", raw); err != nil {
//	    log.Fatal(err)
//	}
//
//	loaded, err := npyio.LoadTensor("x.npy")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(loaded.Shape(), loaded.AsFloat32())
package npyio

import (
	"io"

	"github.com/born-ml/npyio/internal/npy"
	"github.com/born-ml/npyio/internal/tensor"
)

// Type aliases for public API

// DType is a constraint for supported element types.
// Supported types: float32, float64, int32, int64, uint8, uint16, bool.
type DType = tensor.DType

// DataType represents the element type of an array.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Int32   DataType = tensor.Int32
	Int64   DataType = tensor.Int64
	Uint8   DataType = tensor.Uint8
	Uint16  DataType = tensor.Uint16
	Bool    DataType = tensor.Bool
)

// Shape represents the dimension sizes of an array.
type Shape = tensor.Shape

// RawTensor is the row-major tensor handle produced by LoadTensor and
// consumed by SaveTensor. Clones share storage via reference counting.
type RawTensor = tensor.RawTensor

// NewRaw creates a zero-filled RawTensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype)
}

// Array owns the byte buffer and metadata decoded from an .npy file.
// See the As* accessors and npy.View for typed access.
type Array = npy.Array

// Header holds the metadata fields of an .npy header.
type Header = npy.Header

// Common errors.
var (
	ErrUnsupportedDType     = npy.ErrUnsupportedDType
	ErrUnsupportedNumpyType = npy.ErrUnsupportedNumpyType
	ErrMalformedHeader      = npy.ErrMalformedHeader
	ErrUnsupportedByteOrder = npy.ErrUnsupportedByteOrder
	ErrInvalidMagic         = npy.ErrInvalidMagic
	ErrUnsupportedVersion   = npy.ErrUnsupportedVersion
	ErrTruncated            = npy.ErrTruncated
	ErrShortWrite           = npy.ErrShortWrite
	ErrFortranOrder         = npy.ErrFortranOrder
)

// Save writes data with the given shape and element type to path as an .npy
// file. On failure a partially written file may be left behind.
func Save(path string, data []byte, shape Shape, dtype DataType) error {
	return npy.Save(path, data, shape, dtype)
}

// Load reads the .npy file at path into an Array.
func Load(path string) (*Array, error) {
	return npy.Load(path)
}

// SaveTensor writes a RawTensor to path as an .npy file.
func SaveTensor(path string, raw *RawTensor) error {
	return npy.SaveTensor(path, raw)
}

// LoadTensor reads the .npy file at path into a RawTensor. Fortran-ordered
// files and unmapped element types are rejected; use Load for those.
func LoadTensor(path string) (*RawTensor, error) {
	return npy.LoadTensor(path)
}

// Write encodes and writes an array to w.
func Write(w io.Writer, data []byte, shape Shape, dtype DataType) error {
	return npy.Write(w, data, shape, dtype)
}

// Read decodes an .npy stream from r.
func Read(r io.Reader) (*Array, error) {
	return npy.Read(r)
}

// DecodeHeader reads and parses just the .npy header from r, leaving the
// reader positioned at the first payload byte.
func DecodeHeader(r io.Reader) (Header, error) {
	return npy.DecodeHeader(r)
}

// EncodeHeader builds the full .npy header bytes for a shape and type.
func EncodeHeader(shape Shape, dtype DataType) ([]byte, error) {
	return npy.EncodeHeader(shape, dtype)
}
