package npy

import (
	"encoding/binary"
	"fmt"

	"github.com/born-ml/npyio/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "\x93NUMPY" // 6-byte magic token (0x93 + "NUMPY")
	VersionMajor    = 0x01
	VersionMinor    = 0x00
	PreambleSize    = 10  // magic + version + 2-byte dict length
	HeaderAlignment = 16  // 10 + dict length must be a multiple of 16
	MaxHeaderLine   = 256 // Bound on the newline-terminated dict line
)

// Header holds the metadata decoded from (or encoded into) an .npy header:
// the element type code and word size from 'descr', the shape tuple, and the
// 'fortran_order' flag.
type Header struct {
	Code         byte         // numpy type code: 'f', 'i', 'u', or 'b'
	WordSize     int          // bytes per element as declared in 'descr'
	Shape        tensor.Shape // dimension sizes, in order
	FortranOrder bool         // column-major layout when true
}

// byteOrderMark is the endianness marker emitted in 'descr'. It is probed
// once at startup; the codec only guarantees correct payloads on
// little-endian hosts, so this is '<' everywhere the library is supported.
var byteOrderMark = hostByteOrderMark()

// hostByteOrderMark probes the host byte order.
func hostByteOrderMark() byte {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	if buf[0] == 1 {
		return '<'
	}
	return '>'
}

// dtypeToNumpy converts a tensor.DataType to its numpy (code, word size)
// pair. The mapping is closed: exactly the seven types below are encodable.
func dtypeToNumpy(dt tensor.DataType) (code byte, wordSize int, err error) {
	switch dt {
	case tensor.Float32:
		return 'f', 4, nil
	case tensor.Float64:
		return 'f', 8, nil
	case tensor.Int32:
		return 'i', 4, nil
	case tensor.Int64:
		return 'i', 8, nil
	case tensor.Uint8:
		return 'u', 1, nil
	case tensor.Uint16:
		return 'u', 2, nil
	case tensor.Bool:
		return 'b', 1, nil
	default:
		return 0, 0, fmt.Errorf("%w: %s", ErrUnsupportedDType, dt)
	}
}

// numpyToDtype converts a numpy (code, word size) pair back to the host
// tensor.DataType. For code 'b' the word size is ignored, matching numpy
// tooling behavior for single-byte bool arrays.
func numpyToDtype(code byte, wordSize int) (tensor.DataType, error) {
	switch {
	case code == 'f' && wordSize == 4:
		return tensor.Float32, nil
	case code == 'f' && wordSize == 8:
		return tensor.Float64, nil
	case code == 'i' && wordSize == 4:
		return tensor.Int32, nil
	case code == 'i' && wordSize == 8:
		return tensor.Int64, nil
	case code == 'u' && wordSize == 1:
		return tensor.Uint8, nil
	case code == 'u' && wordSize == 2:
		return tensor.Uint16, nil
	case code == 'b':
		return tensor.Bool, nil
	default:
		return 0, fmt.Errorf("%w: code %q word size %d", ErrUnsupportedNumpyType, code, wordSize)
	}
}
