package tiled

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Dtype is the microstructure of an array: how a single element is encoded,
// independent of shape. It is written as a NumPy array protocol type string
// (typestr). The format consists of 3 parts:
//   - One character describing the byteorder of the data:
//     "<": little-endian; ">": big-endian; "|": not-relevant
//   - One character code giving the basic type of the array:
//     "b": boolean, "i": integer, "u": unsigned integer, "f": floating point,
//     "c": complex floating point, "m": timedelta, "M": datetime,
//     "S": fixed-length bytes, "U": unicode, "V": other
//   - An integer specifying the number of bytes the type uses.
type Dtype struct {
	ByteOrder ByteOrder
	BasicType BasicType
	ByteSize  int
}

var (
	_ json.Unmarshaler = (*Dtype)(nil)
	_ json.Marshaler   = (*Dtype)(nil)
)

var (
	Uint8  = Dtype{ByteOrder: BONotRelevant, BasicType: BTUnsigned, ByteSize: 1}
	Uint16 = Dtype{ByteOrder: BOBigEndian, BasicType: BTUnsigned, ByteSize: 2}
)

func ParseDtype(s string) (dt Dtype, err error) {
	// some serializers HTML-escape the byte order character
	s = strings.Replace(s, "&lt;", "<", 1)
	s = strings.Replace(s, "&gt;", ">", 1)

	if len(s) < 3 {
		return dt, fmt.Errorf("invalid Dtype string. %q is too short", s)
	}

	boByte, s := s[0], s[1:]
	dt.ByteOrder, err = ParseByteOrder(rune(boByte))
	if err != nil {
		return dt, err
	}

	typeByte, s := s[0], s[1:]
	dt.BasicType, err = ParseBasicType(rune(typeByte))
	if err != nil {
		return dt, err
	}

	size, err := strconv.ParseInt(s, 10, 0)
	if err != nil {
		return dt, fmt.Errorf("invalid Dtype size %q: %w", s, err)
	}
	if size <= 0 {
		return dt, fmt.Errorf("invalid Dtype size %d", size)
	}
	dt.ByteSize = int(size)

	return dt, nil
}

func (dt Dtype) String() string {
	return fmt.Sprintf("%s%s%d", string(dt.ByteOrder), string(dt.BasicType), dt.ByteSize)
}

// Order returns the binary byte order elements are encoded in. Single byte
// types report big endian, which is as good as any.
func (dt Dtype) Order() binary.ByteOrder {
	if dt.ByteOrder == BOLittleEndian {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (dt Dtype) MarshalJSON() ([]byte, error) {
	return json.Marshal(dt.String())
}

func (dt *Dtype) UnmarshalJSON(d []byte) error {
	var s string
	if err := json.Unmarshal(d, &s); err != nil {
		return err
	}
	t, err := ParseDtype(s)
	if err != nil {
		return err
	}

	*dt = t
	return nil
}

type ByteOrder rune

func ParseByteOrder(r rune) (ByteOrder, error) {
	o := ByteOrder(r)
	if _, ok := byteOrders[o]; !ok {
		return o, fmt.Errorf("unsupported byte order format: %q", r)
	}
	return o, nil
}

const (
	BONotRelevant  ByteOrder = '|'
	BOLittleEndian ByteOrder = '<'
	BOBigEndian    ByteOrder = '>'
)

var byteOrders = map[ByteOrder]struct{}{
	BONotRelevant:  {},
	BOLittleEndian: {},
	BOBigEndian:    {},
}

type BasicType rune

func ParseBasicType(r rune) (BasicType, error) {
	t := BasicType(r)
	if _, ok := supportedBasicTypes[t]; !ok {
		return t, fmt.Errorf("unsupported basic type: %q", r)
	}
	return t, nil
}

func (bt BasicType) Human() string {
	return supportedBasicTypes[bt]
}

const (
	BTBoolean       BasicType = 'b'
	BTInteger       BasicType = 'i'
	BTUnsigned      BasicType = 'u'
	BTFloatingPoint BasicType = 'f'
	BTComplex       BasicType = 'c'
	BTTimedelta     BasicType = 'm'
	BTDatetime      BasicType = 'M'
	BTString        BasicType = 'S'
	BTUnicode       BasicType = 'U'
	BTOther         BasicType = 'V'
)

var supportedBasicTypes = map[BasicType]string{
	BTBoolean:       "bool",
	BTInteger:       "int",
	BTUnsigned:      "uint",
	BTFloatingPoint: "float",
	BTComplex:       "complex",
	BTTimedelta:     "timedelta",
	BTDatetime:      "datetime",
	BTString:        "bytes",
	BTUnicode:       "unicode",
	BTOther:         "other",
}
