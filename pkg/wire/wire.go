// Package wire defines the datagram packet format shared between the
// coordinator and the remote node agents. The layout is an ABI: both sides
// must agree on field offsets, widths and byte order, so the header is
// encoded and decoded at fixed offsets rather than through struct layout.
//
// Header layout, all multi-byte fields big-endian:
//
//	offset  width  field
//	0       1      operation
//	1       1      result
//	2       2      rankId
//	4       2      datatype
//	6       2      datacount
//	8       2      coreId
//	10      2      coreCount
//
// The payload, when present, follows the header immediately.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Op identifies the request or response kind a packet carries.
type Op uint8

const (
	// OpExec instructs an agent to launch the worker command line carried in
	// the payload, bound to the core in the header.
	OpExec Op = iota
	// OpSend pushes typed data to an agent; the payload holds raw elements.
	OpSend
	// OpRecv is both the pull request issued by the coordinator (header
	// only) and the data response packets the agent answers with.
	OpRecv
	// OpTerminate asks an agent to stop its worker; the agent replies with
	// an OpTerminate packet carrying a result code.
	OpTerminate
)

// String returns the opcode mnemonic for logging.
func (o Op) String() string {
	switch o {
	case OpExec:
		return "EXEC"
	case OpSend:
		return "SEND"
	case OpRecv:
		return "RECV"
	case OpTerminate:
		return "TERMINATE"
	default:
		return fmt.Sprintf("OP(%d)", uint8(o))
	}
}

// Result is the closed result-code space carried in the header and exposed
// to callers. Responses carry 0 on success, a nonzero code otherwise.
type Result uint8

const (
	ResultSuccess Result = iota
	ResultErrArgument
	ResultErrIO
	ResultErrNoMem
	ResultErrRank
	ResultErrUnsupportedDatarep
)

// Datatype tags the element type of SEND/RECV payloads.
type Datatype uint16

const (
	// DatatypeInt32 is a 4-byte signed integer, big-endian on the wire.
	DatatypeInt32 Datatype = 1
	// DatatypeUint8 is a single unsigned byte.
	DatatypeUint8 Datatype = 2
)

// ElemSize returns the wire size of one element of the datatype, or
// ErrUnsupportedDatatype for any tag outside the supported set.
func (d Datatype) ElemSize() (int, error) {
	switch d {
	case DatatypeInt32:
		return 4, nil
	case DatatypeUint8:
		return 1, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedDatatype, d)
	}
}

const (
	// HeaderSize is the fixed encoded header length in bytes.
	HeaderSize = 12

	// MaxPacketSize bounds every datagram, header included. Shared with the
	// remote agent.
	MaxPacketSize = 1024

	// MaxPayloadSize is the room left for payload bytes after the header.
	MaxPayloadSize = MaxPacketSize - HeaderSize
)

var (
	ErrUnsupportedDatatype = errors.New("unsupported datatype")
	ErrPayloadTooLarge     = errors.New("payload exceeds maximum packet size")
	ErrShortHeader         = errors.New("datagram shorter than packet header")
)

// Header is the decoded form of the fixed packet prefix.
type Header struct {
	Operation Op
	Result    Result
	RankID    uint16
	Datatype  Datatype
	Datacount uint16
	CoreID    uint16
	CoreCount uint16
}

// EncodeHeader writes the header into the first HeaderSize bytes of dst.
func EncodeHeader(h Header, dst []byte) error {
	if len(dst) < HeaderSize {
		return fmt.Errorf("encode header: destination holds %d of %d bytes", len(dst), HeaderSize)
	}
	dst[0] = byte(h.Operation)
	dst[1] = byte(h.Result)
	binary.BigEndian.PutUint16(dst[2:4], h.RankID)
	binary.BigEndian.PutUint16(dst[4:6], uint16(h.Datatype))
	binary.BigEndian.PutUint16(dst[6:8], h.Datacount)
	binary.BigEndian.PutUint16(dst[8:10], h.CoreID)
	binary.BigEndian.PutUint16(dst[10:12], h.CoreCount)
	return nil
}

// DecodeHeader reads a header from the first HeaderSize bytes of src.
func DecodeHeader(src []byte) (Header, error) {
	if len(src) < HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes", ErrShortHeader, len(src))
	}
	return Header{
		Operation: Op(src[0]),
		Result:    Result(src[1]),
		RankID:    binary.BigEndian.Uint16(src[2:4]),
		Datatype:  Datatype(binary.BigEndian.Uint16(src[4:6])),
		Datacount: binary.BigEndian.Uint16(src[6:8]),
		CoreID:    binary.BigEndian.Uint16(src[8:10]),
		CoreCount: binary.BigEndian.Uint16(src[10:12]),
	}, nil
}

// NewPacket allocates a packet buffer holding the encoded header followed by
// payload, and enforces the MaxPacketSize bound before any send happens.
func NewPacket(h Header, payload []byte) ([]byte, error) {
	if HeaderSize+len(payload) > MaxPacketSize {
		return nil, fmt.Errorf("%w: %d payload bytes, maximum is %d",
			ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}
	packet := make([]byte, HeaderSize+len(payload))
	if err := EncodeHeader(h, packet); err != nil {
		return nil, err
	}
	copy(packet[HeaderSize:], payload)
	return packet, nil
}
