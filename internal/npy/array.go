package npy

import (
	"fmt"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/born-ml/npyio/internal/tensor"
)

// arrayBuffer is a reference-counted shared byte buffer backing an Array.
// The buffer is never resized after construction; a Clone is a new handle
// over the same storage.
type arrayBuffer struct {
	data     []byte
	refCount atomic.Int32
	mu       sync.Mutex // For safe deallocation
}

// newArrayBuffer creates a new reference-counted buffer with refCount = 1.
func newArrayBuffer(size int) *arrayBuffer {
	buf := &arrayBuffer{
		data: make([]byte, size),
	}
	buf.refCount.Store(1)
	return buf
}

func (ab *arrayBuffer) addRef() {
	ab.refCount.Add(1)
}

func (ab *arrayBuffer) release() {
	if ab.refCount.Add(-1) == 0 {
		ab.mu.Lock()
		defer ab.mu.Unlock()
		ab.data = nil
	}
}

// Array owns a contiguous byte buffer plus the shape/type/layout metadata
// decoded from (or destined for) an .npy header.
//
// The buffer may be shared across multiple Array handles: Clone aliases the
// storage, and mutation through one handle is visible through all of them.
// The storage is released when the last holder calls Release.
type Array struct {
	buffer       *arrayBuffer
	shape        tensor.Shape
	code         byte // numpy type code: 'f', 'i', 'u', or 'b'
	wordSize     int  // bytes per element
	fortranOrder bool
	numElements  int // cached product of shape
}

// NewArray creates an Array for the given metadata with a zero-filled buffer
// of NumElements * wordSize bytes.
func NewArray(shape tensor.Shape, code byte, wordSize int, fortranOrder bool) *Array {
	numElements := shape.NumElements()
	return &Array{
		buffer:       newArrayBuffer(numElements * wordSize),
		shape:        shape.Clone(),
		code:         code,
		wordSize:     wordSize,
		fortranOrder: fortranOrder,
		numElements:  numElements,
	}
}

// NewEmptyArray creates an Array with empty shape, zero word size, and an
// empty buffer.
func NewEmptyArray() *Array {
	return &Array{
		buffer:      newArrayBuffer(0),
		shape:       tensor.Shape{},
		numElements: 0,
	}
}

// Shape returns the array's shape.
func (a *Array) Shape() tensor.Shape {
	return a.shape
}

// TypeCode returns the numpy type code ('f', 'i', 'u', or 'b').
func (a *Array) TypeCode() byte {
	return a.code
}

// WordSize returns the declared bytes per element.
func (a *Array) WordSize() int {
	return a.wordSize
}

// FortranOrder reports whether the data is laid out column-major.
func (a *Array) FortranOrder() bool {
	return a.fortranOrder
}

// NumElements returns the total number of elements.
func (a *Array) NumElements() int {
	return a.numElements
}

// NumBytes returns the byte length of the buffer
// (always NumElements() * WordSize()).
func (a *Array) NumBytes() int {
	return len(a.buffer.data)
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (a *Array) Data() []byte {
	return a.buffer.data
}

// DType resolves the array's (code, word size) pair to a host data type.
// The mapping is lazy: an Array holding an unmapped pair is constructible
// (Load needs this), but resolving it fails with ErrUnsupportedNumpyType.
func (a *Array) DType() (tensor.DataType, error) {
	return numpyToDtype(a.code, a.wordSize)
}

// AsFloat32 interprets the data as []float32.
// Panics unless the array holds 'f' elements of word size 4.
func (a *Array) AsFloat32() []float32 {
	a.checkView('f', 4)
	return View[float32](a)
}

// AsFloat64 interprets the data as []float64.
// Panics unless the array holds 'f' elements of word size 8.
func (a *Array) AsFloat64() []float64 {
	a.checkView('f', 8)
	return View[float64](a)
}

// AsInt32 interprets the data as []int32.
// Panics unless the array holds 'i' elements of word size 4.
func (a *Array) AsInt32() []int32 {
	a.checkView('i', 4)
	return View[int32](a)
}

// AsInt64 interprets the data as []int64.
// Panics unless the array holds 'i' elements of word size 8.
func (a *Array) AsInt64() []int64 {
	a.checkView('i', 8)
	return View[int64](a)
}

// AsUint8 interprets the data as []uint8.
// Panics unless the array holds 'u' elements of word size 1.
func (a *Array) AsUint8() []uint8 {
	a.checkView('u', 1)
	return a.buffer.data // Already []byte = []uint8
}

// AsUint16 interprets the data as []uint16.
// Panics unless the array holds 'u' elements of word size 2.
func (a *Array) AsUint16() []uint16 {
	a.checkView('u', 2)
	return View[uint16](a)
}

// AsBool interprets the data as []bool.
// Panics unless the array holds 'b' elements.
func (a *Array) AsBool() []bool {
	if a.code != 'b' {
		panic(fmt.Sprintf("array type is %q word size %d, not bool", a.code, a.wordSize))
	}
	return View[bool](a)
}

func (a *Array) checkView(code byte, wordSize int) {
	if a.code != code || a.wordSize != wordSize {
		panic(fmt.Sprintf("array type is %q word size %d, want %q word size %d",
			a.code, a.wordSize, code, wordSize))
	}
}

// View reinterprets the array's buffer as a slice of T.
//
// This is an unchecked contract: the caller must ensure that the size of T
// equals the array's word size and that T's bit layout matches the type
// code. Use the As* accessors for the checked forms.
func View[T tensor.DType](a *Array) []T {
	if a.numElements == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy access, length bounded by the buffer
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buffer.data[0])), a.numElements)
}

// Clone creates a shallow copy of the Array: a new handle sharing the same
// storage via reference counting. Mutation through the clone is visible
// through the original.
func (a *Array) Clone() *Array {
	a.buffer.addRef()
	return &Array{
		buffer:       a.buffer, // Share the same buffer
		shape:        a.shape.Clone(),
		code:         a.code,
		wordSize:     a.wordSize,
		fortranOrder: a.fortranOrder,
		numElements:  a.numElements,
	}
}

// Release decrements the reference count and deallocates if it reaches 0.
// After the final release the handle is dangling: Data returns nil and
// NumBytes returns 0, while the shape metadata (and so NumElements) is
// retained. A released handle must not be used for data access.
func (a *Array) Release() {
	a.buffer.release()
}
