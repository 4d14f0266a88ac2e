package npy

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/born-ml/npyio/internal/tensor"
)

// shapeText renders a shape as the python tuple literal numpy expects.
//
//	{}     -> "()"
//	{5}    -> "(5,)"
//	{2, 3} -> "(2, 3)"
func shapeText(shape tensor.Shape) string {
	switch len(shape) {
	case 0:
		return "()"
	case 1:
		return fmt.Sprintf("(%d,)", shape[0])
	default:
		var sb strings.Builder
		sb.WriteByte('(')
		for i, dim := range shape {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(strconv.Itoa(dim))
		}
		sb.WriteByte(')')
		return sb.String()
	}
}

// EncodeHeader builds the full .npy header for the given shape and element
// type: magic, version, dict length, and the space-padded header dict.
func EncodeHeader(shape tensor.Shape, dtype tensor.DataType) ([]byte, error) {
	code, wordSize, err := dtypeToNumpy(dtype)
	if err != nil {
		return nil, err
	}

	dict := fmt.Sprintf("{'descr': '%c%c%d', 'fortran_order': False, 'shape': %s, }",
		byteOrderMark, code, wordSize, shapeText(shape))

	// Pad with spaces so that preamble+dict is a multiple of 16 bytes.
	// The trailing '\n' counts toward the padded length.
	padding := HeaderAlignment - (PreambleSize+len(dict))%HeaderAlignment - 1
	dict += strings.Repeat(" ", padding) + "\n"

	if len(dict) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: dict is %d bytes", ErrHeaderTooLarge, len(dict))
	}

	header := make([]byte, 0, PreambleSize+len(dict))
	header = append(header, MagicBytes...)
	header = append(header, VersionMajor, VersionMinor)
	header = binary.LittleEndian.AppendUint16(header, uint16(len(dict)))
	header = append(header, dict...)
	return header, nil
}

// DecodeHeader reads and parses an .npy header from r, leaving the reader
// positioned at the first payload byte.
//
// The dict line is located by its '\n' terminator within a bounded buffer
// rather than by the declared length field, so a dict longer than
// MaxHeaderLine is a parsing failure.
func DecodeHeader(r io.Reader) (Header, error) {
	var preamble [PreambleSize]byte
	if _, err := io.ReadFull(r, preamble[:]); err != nil {
		return Header{}, fmt.Errorf("failed to read header preamble: %w", err)
	}
	if string(preamble[:len(MagicBytes)]) != MagicBytes {
		return Header{}, ErrInvalidMagic
	}
	if preamble[6] != VersionMajor {
		return Header{}, fmt.Errorf("%w: %d.%d", ErrUnsupportedVersion, preamble[6], preamble[7])
	}
	// The 2-byte dict length at offset 8 is not needed to locate the dict
	// terminator; the newline bounds the line read below.

	line, err := readHeaderLine(r)
	if err != nil {
		return Header{}, err
	}

	fields, err := parseHeaderDict(line)
	if err != nil {
		return Header{}, err
	}

	var hdr Header

	order, ok := fields["fortran_order"]
	if !ok {
		return Header{}, missingField("fortran_order")
	}
	hdr.FortranOrder = order == "True"

	shapeVal, ok := fields["shape"]
	if !ok {
		return Header{}, missingField("shape")
	}
	hdr.Shape, err = parseShapeTuple(shapeVal)
	if err != nil {
		return Header{}, err
	}

	descr, ok := fields["descr"]
	if !ok {
		return Header{}, missingField("descr")
	}
	hdr.Code, hdr.WordSize, err = parseDescr(descr)
	if err != nil {
		return Header{}, err
	}

	if _, err := shapeByteSize(hdr.Shape, hdr.WordSize); err != nil {
		return Header{}, err
	}

	return hdr, nil
}

// shapeByteSize computes product(shape) * wordSize with overflow detection.
// A crafted header can declare dimensions whose product wraps negative and
// would panic the buffer allocation; such headers are malformed.
func shapeByteSize(shape tensor.Shape, wordSize int) (int, error) {
	n := 1
	for _, dim := range shape {
		if dim != 0 && n > math.MaxInt/dim {
			return 0, fmt.Errorf("%w: shape %v element count overflows", ErrMalformedHeader, []int(shape))
		}
		n *= dim
	}
	if wordSize != 0 && n > math.MaxInt/wordSize {
		return 0, fmt.Errorf("%w: shape %v with word size %d overflows", ErrMalformedHeader, []int(shape), wordSize)
	}
	return n * wordSize, nil
}

// readHeaderLine reads the newline-terminated dict line one byte at a time,
// so the reader is left exactly at the start of the payload.
func readHeaderLine(r io.Reader) (string, error) {
	line := make([]byte, 0, 128)
	var b [1]byte
	for len(line) < MaxHeaderLine {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", fmt.Errorf("%w: header line not terminated by newline", ErrMalformedHeader)
		}
		if b[0] == '\n' {
			return string(line), nil
		}
		line = append(line, b[0])
	}
	return "", fmt.Errorf("%w: header line exceeds %d bytes", ErrMalformedHeader, MaxHeaderLine)
}

// parseHeaderDict tokenizes the header dict line into raw key/value strings.
//
// The grammar is the fixed python-literal form numpy writes:
//
//	{'key': value, 'key': value, }
//
// Values are kept verbatim (quotes included for strings); tuple values may
// contain commas, which are tracked via paren depth. Fields are extracted by
// name so whitespace variation does not break parsing.
func parseHeaderDict(line string) (map[string]string, error) {
	fields := make(map[string]string)
	i := 0

	skipSpace := func() {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t' || line[i] == '\r') {
			i++
		}
	}

	skipSpace()
	if i >= len(line) || line[i] != '{' {
		return nil, fmt.Errorf("%w: expected '{'", ErrMalformedHeader)
	}
	i++

	for {
		skipSpace()
		if i >= len(line) {
			return nil, fmt.Errorf("%w: unterminated dict", ErrMalformedHeader)
		}
		if line[i] == '}' {
			return fields, nil
		}
		if line[i] != '\'' {
			return nil, fmt.Errorf("%w: expected quoted key at offset %d", ErrMalformedHeader, i)
		}
		i++
		keyStart := i
		for i < len(line) && line[i] != '\'' {
			i++
		}
		if i >= len(line) {
			return nil, fmt.Errorf("%w: unterminated key", ErrMalformedHeader)
		}
		key := line[keyStart:i]
		i++

		skipSpace()
		if i >= len(line) || line[i] != ':' {
			return nil, fmt.Errorf("%w: expected ':' after key %q", ErrMalformedHeader, key)
		}
		i++
		skipSpace()

		valStart := i
		depth := 0
		quoted := false
	value:
		for i < len(line) {
			c := line[i]
			switch {
			case quoted:
				if c == '\'' {
					quoted = false
				}
			case c == '\'':
				quoted = true
			case c == '(':
				depth++
			case c == ')':
				depth--
			case (c == ',' || c == '}') && depth == 0:
				break value
			}
			i++
		}
		if i >= len(line) {
			return nil, fmt.Errorf("%w: unterminated value for key %q", ErrMalformedHeader, key)
		}
		fields[key] = strings.TrimSpace(line[valStart:i])
		if line[i] == ',' {
			i++
		}
	}
}

// parseShapeTuple extracts the shape dimensions from a tuple literal such as
// "(2, 3)". Every maximal run of decimal digits between the parens is taken
// as a dimension; separators are treated as non-digit noise.
func parseShapeTuple(val string) (tensor.Shape, error) {
	open := strings.IndexByte(val, '(')
	closing := strings.IndexByte(val, ')')
	if open < 0 || closing < 0 || closing < open {
		return nil, missingField("shape")
	}

	shape := tensor.Shape{}
	inner := val[open+1 : closing]
	for i := 0; i < len(inner); {
		if inner[i] < '0' || inner[i] > '9' {
			i++
			continue
		}
		j := i
		for j < len(inner) && inner[j] >= '0' && inner[j] <= '9' {
			j++
		}
		dim, err := strconv.Atoi(inner[i:j])
		if err != nil {
			return nil, fmt.Errorf("%w: bad shape dimension %q", ErrMalformedHeader, inner[i:j])
		}
		shape = append(shape, dim)
		i = j
	}
	return shape, nil
}

// parseDescr splits a descr literal such as "'<f4'" into its type code and
// word size. The leading marker must be '<' or '|'; '>' (big-endian) is
// rejected rather than silently misread.
func parseDescr(val string) (code byte, wordSize int, err error) {
	descr := strings.Trim(val, "'\"")
	if len(descr) < 2 {
		return 0, 0, fmt.Errorf("%w: descr %q too short", ErrMalformedHeader, descr)
	}
	marker := descr[0]
	if marker != '<' && marker != '|' {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnsupportedByteOrder, string(marker))
	}
	code = descr[1]
	if len(descr) > 2 {
		wordSize, err = strconv.Atoi(descr[2:])
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad word size in descr %q", ErrMalformedHeader, descr)
		}
	}
	return code, wordSize, nil
}
