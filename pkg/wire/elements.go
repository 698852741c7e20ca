package wire

import "encoding/binary"

// EncodeInt32s packs values into their wire representation, 4 bytes each,
// big-endian, ready to be used as a SEND buffer.
func EncodeInt32s(values []int32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.BigEndian.PutUint32(buf[i*4:], uint32(v))
	}
	return buf
}

// DecodeInt32s unpacks count values from their wire representation. Bytes
// beyond count*4 are ignored.
func DecodeInt32s(buf []byte, count int) []int32 {
	values := make([]int32, count)
	for i := range values {
		values[i] = int32(binary.BigEndian.Uint32(buf[i*4:]))
	}
	return values
}
