// Package wire implements the binary UDP protocol: framed packets with a
// fixed header, CRC-32 integrity trailer, and per-message-type payload
// codecs, including the replication snapshot's field-mask encoding.
package wire

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

const (
	magicHi = 0x52 // 'R'
	magicLo = 0x54 // 'T'

	// CurrentVersion is the only protocol version this codec accepts.
	CurrentVersion = 1

	// HeaderSize is the fixed width of PacketHeader on the wire.
	HeaderSize = 16
	// CRCSize is the width of the trailing CRC-32.
	CRCSize = 4

	// MaxUDPPayload is the MTU-derived safe UDP payload: 1500 (Ethernet MTU)
	// minus 20 (IPv4) minus 8 (UDP) minus the header minus the CRC trailer.
	MaxUDPPayload = 1500 - 20 - 8 - HeaderSize - CRCSize

	flagCompressed = 1 << 0
)

// PacketType distinguishes the direction a packet was framed for.
type PacketType uint8

const (
	ClientToServer PacketType = 0
	ServerToClient PacketType = 1
)

// Header is the wire-exact packet header, big-endian, fixed width.
type Header struct {
	Version      uint8
	PacketType   PacketType
	MessageType  MessageType
	SequenceID   uint16
	TickID       uint32
	PayloadSize  uint16
	OriginalSize uint16
	Flags        uint8
}

func (h Header) compressed() bool { return h.Flags&flagCompressed != 0 }

// ParseError is returned by Decode for any malformed input; callers are
// expected to drop the packet and bump a counter, never propagate it as a
// fatal condition (see the error taxonomy this codec implements).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "wire: parse error: " + e.Reason }

func newParseError(format string, args ...any) error {
	return &ParseError{Reason: fmt.Sprintf(format, args...)}
}

func putHeader(buf []byte, h Header) {
	buf[0] = magicHi
	buf[1] = magicLo
	buf[2] = h.Version
	buf[3] = byte(h.PacketType)
	buf[4] = byte(h.MessageType)
	binary.BigEndian.PutUint16(buf[5:7], h.SequenceID)
	binary.BigEndian.PutUint32(buf[7:11], h.TickID)
	binary.BigEndian.PutUint16(buf[11:13], h.PayloadSize)
	binary.BigEndian.PutUint16(buf[13:15], h.OriginalSize)
	buf[15] = h.Flags
}

func parseHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, newParseError("buffer too short for header: %d bytes", len(buf))
	}
	if buf[0] != magicHi || buf[1] != magicLo {
		return Header{}, newParseError("bad magic: %02x%02x", buf[0], buf[1])
	}
	version := buf[2]
	if version != CurrentVersion {
		return Header{}, newParseError("unsupported version: %d", version)
	}
	h := Header{
		Version:      version,
		PacketType:   PacketType(buf[3]),
		MessageType:  MessageType(buf[4]),
		SequenceID:   binary.BigEndian.Uint16(buf[5:7]),
		TickID:       binary.BigEndian.Uint32(buf[7:11]),
		PayloadSize:  binary.BigEndian.Uint16(buf[11:13]),
		OriginalSize: binary.BigEndian.Uint16(buf[13:15]),
		Flags:        buf[15],
	}
	if h.PacketType != ClientToServer && h.PacketType != ServerToClient {
		return Header{}, newParseError("bad packet type: %d", h.PacketType)
	}
	return h, nil
}

// crcTable is the reflected 0xEDB88320 polynomial (Ethernet/zlib), the
// stdlib hash/crc32.IEEE table — spec requires interoperability with that
// polynomial, so the stdlib table is used directly rather than hand-rolled.
var crcTable = crc32.IEEETable

func checksum(header, payload []byte) uint32 {
	c := crc32.Checksum(header, crcTable)
	return crc32.Update(c, crcTable, payload)
}
