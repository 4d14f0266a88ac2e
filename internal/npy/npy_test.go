package npy

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/npyio/internal/tensor"
)

// TestSaveLoadRoundTrip tests Save followed by Load for every supported
// element type and the spec'd shape set, comparing metadata and payload.
func TestSaveLoadRoundTrip(t *testing.T) {
	tempDir := t.TempDir()

	shapes := []tensor.Shape{{}, {5}, {2, 3}, {0}}
	dtypes := []tensor.DataType{
		tensor.Float32, tensor.Float64, tensor.Int32, tensor.Int64,
		tensor.Uint8, tensor.Uint16, tensor.Bool,
	}

	for _, shape := range shapes {
		for _, dtype := range dtypes {
			payload := make([]byte, shape.NumElements()*dtype.Size())
			for i := range payload {
				payload[i] = byte(i % 251)
			}

			path := filepath.Join(tempDir, "roundtrip.npy")
			require.NoError(t, Save(path, payload, shape, dtype),
				"save shape %v dtype %s", shape, dtype)

			arr, err := Load(path)
			require.NoError(t, err, "load shape %v dtype %s", shape, dtype)

			assert.True(t, shape.Equal(arr.Shape()), "shape %v dtype %s: got %v", shape, dtype, arr.Shape())
			assert.False(t, arr.FortranOrder())

			got, err := arr.DType()
			require.NoError(t, err)
			assert.Equal(t, dtype, got)

			assert.Equal(t, payload, append([]byte{}, arr.Data()...),
				"shape %v dtype %s: payload mismatch", shape, dtype)
			arr.Release()
		}
	}
}

// TestWriteReadStream tests the io.Writer/io.Reader forms.
func TestWriteReadStream(t *testing.T) {
	payload := []byte{1, 0, 0, 0, 2, 0, 0, 0, 3, 0, 0, 0}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, payload, tensor.Shape{3}, tensor.Int32))

	arr, err := Read(&buf)
	require.NoError(t, err)
	defer arr.Release()

	assert.Equal(t, []int32{1, 2, 3}, arr.AsInt32())
}

// TestWritePayloadSizeMismatch tests that Write validates the payload length
// against the shape and dtype.
func TestWritePayloadSizeMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := Write(&buf, make([]byte, 7), tensor.Shape{2}, tensor.Float32)
	assert.Error(t, err)
}

// TestLoadTruncated tests that a payload shorter than the header declares
// fails with ErrTruncated and never yields a partially filled array.
func TestLoadTruncated(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "truncated.npy")

	payload := make([]byte, 20) // (5,) float32
	require.NoError(t, Save(path, payload, tensor.Shape{5}, tensor.Float32))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-8))

	_, err = Load(path)
	assert.ErrorIs(t, err, ErrTruncated)
}

// TestReadTruncatedHeader tests truncation inside the header itself.
func TestReadTruncatedHeader(t *testing.T) {
	encoded, err := EncodeHeader(tensor.Shape{2}, tensor.Int64)
	require.NoError(t, err)

	_, err = Read(bytes.NewReader(encoded[:PreambleSize+4]))
	assert.ErrorIs(t, err, ErrMalformedHeader)
}

// TestReadHugeShapeDoesNotPanic tests that a hostile header declaring an
// unallocatable element count fails Read with an error rather than panicking
// in the buffer allocation.
func TestReadHugeShapeDoesNotPanic(t *testing.T) {
	dict := "{'descr': '<u1', 'fortran_order': False, 'shape': (9223372036854775807, 2), }\n"
	stream := append(rawHeader(dict), make([]byte, 64)...)

	assert.NotPanics(t, func() {
		_, err := Read(bytes.NewReader(stream))
		assert.ErrorIs(t, err, ErrMalformedHeader)
	})
}

// TestLoadMissingFile tests that open failures surface the os error.
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.npy"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// TestSaveUnsupportedDtype tests that encode failures abort before writing
// a payload.
func TestSaveUnsupportedDtype(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.npy")
	err := Save(path, nil, tensor.Shape{2}, tensor.DataType(42))
	assert.ErrorIs(t, err, ErrUnsupportedDType)
}

// TestSaveTensorLoadTensorRoundTrip tests the RawTensor glue.
func TestSaveTensorLoadTensorRoundTrip(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "tensor.npy")

	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32)
	require.NoError(t, err)
	want := []float32{1, 2, 3, 4.5, -5, 6}
	copy(raw.AsFloat32(), want)

	require.NoError(t, SaveTensor(path, raw))

	loaded, err := LoadTensor(path)
	require.NoError(t, err)

	assert.True(t, raw.Shape().Equal(loaded.Shape()))
	assert.Equal(t, tensor.Float32, loaded.DType())
	assert.Equal(t, want, loaded.AsFloat32())
}

// TestLoadTensorScalar tests the rank-0 case end to end.
func TestLoadTensorScalar(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scalar.npy")

	raw, err := tensor.NewRaw(tensor.Shape{}, tensor.Float64)
	require.NoError(t, err)
	raw.AsFloat64()[0] = 3.25

	require.NoError(t, SaveTensor(path, raw))

	loaded, err := LoadTensor(path)
	require.NoError(t, err)
	assert.Empty(t, loaded.Shape())
	assert.Equal(t, 3.25, loaded.AsFloat64()[0])
}

// TestLoadTensorRejectsFortranOrder tests that column-major files cannot be
// loaded as row-major tensors.
func TestLoadTensorRejectsFortranOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fortran.npy")

	dict := "{'descr': '<f4', 'fortran_order': True, 'shape': (2, 2), }\n"
	file := rawHeader(dict)
	file = append(file, make([]byte, 16)...)
	require.NoError(t, os.WriteFile(path, file, 0o600))

	// The raw form surfaces the flag.
	arr, err := Load(path)
	require.NoError(t, err)
	assert.True(t, arr.FortranOrder())
	arr.Release()

	// The tensor form rejects it.
	_, err = LoadTensor(path)
	assert.ErrorIs(t, err, ErrFortranOrder)
}

// TestLoadTensorUnmappedType tests that Load tolerates an unmapped descr but
// LoadTensor reports it.
func TestLoadTensorUnmappedType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f2.npy")

	dict := "{'descr': '<f2', 'fortran_order': False, 'shape': (3,), }\n"
	file := rawHeader(dict)
	file = append(file, make([]byte, 6)...)
	require.NoError(t, os.WriteFile(path, file, 0o600))

	arr, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, byte('f'), arr.TypeCode())
	assert.Equal(t, 2, arr.WordSize())
	arr.Release()

	_, err = LoadTensor(path)
	assert.ErrorIs(t, err, ErrUnsupportedNumpyType)
}

// TestSaveOverwritesExisting tests that Save truncates a previous file.
func TestSaveOverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overwrite.npy")

	big := make([]byte, 80)
	require.NoError(t, Save(path, big, tensor.Shape{10}, tensor.Float64))

	small := []byte{1, 2}
	require.NoError(t, Save(path, small, tensor.Shape{2}, tensor.Uint8))

	arr, err := Load(path)
	require.NoError(t, err)
	defer arr.Release()
	assert.Equal(t, small, arr.AsUint8())
}
