package protocol

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"net"
)

// Conn wraps a net.Conn with the connection-scoped state the Minecraft
// wire protocol needs: a buffered reader (VarInt decoding reads one byte
// at a time) and the compression threshold, which mutates the framing of
// every inbound packet once a Set Compression packet has been observed.
//
// CompressionThreshold starts at -1 ("compression disabled"); installing a
// value here, rather than threading it through every read call, matches
// spec.md 4.1's framing of compression as connection state (see also
// DESIGN.md's note on 9's "mid-stream framing mutation").
type Conn struct {
	net.Conn
	r                    *bufio.Reader
	CompressionThreshold int
}

// NewConn wraps conn for protocol-level reads and writes.
func NewConn(conn net.Conn) *Conn {
	return &Conn{
		Conn:                 conn,
		r:                    bufio.NewReader(conn),
		CompressionThreshold: -1,
	}
}

// WritePacket frames payload (which must already begin with the encoded
// packet ID) as varint(length) || payload and writes it to the
// connection. Outbound packets from this probe are always sent before any
// Set Compression packet arrives, so no compressed write path is needed.
func (c *Conn) WritePacket(payload []byte) error {
	frame := VarInt(len(payload)).Encode(nil)
	frame = append(frame, payload...)
	_, err := c.Conn.Write(frame)
	return err
}

// ReadPacket reads one inbound packet and returns its inner packet ID and
// remaining field bytes, honoring the compression threshold installed on
// c. Per spec.md 4.1, a compressed frame whose uncompressed-data-length is
// 0 is raw passthrough and must not be run through zlib.
func (c *Conn) ReadPacket() (id VarInt, data []byte, err error) {
	length, err := DecodeVarInt(c.r)
	if err != nil {
		return 0, nil, err
	}
	if length < 0 {
		return 0, nil, fmt.Errorf("%w: negative packet length %d", ErrFraming, length)
	}

	raw := make([]byte, length)
	if _, err := io.ReadFull(c.r, raw); err != nil {
		return 0, nil, fmt.Errorf("%w: packet body: %v", ErrFraming, err)
	}

	body := raw
	if c.CompressionThreshold >= 0 {
		body, err = decompressFrame(raw)
		if err != nil {
			return 0, nil, err
		}
	}

	return decodePacketIDAndData(body)
}

// decompressFrame strips the inner varint(uncompressed_data_length) and,
// if nonzero, inflates the remaining zlib stream; dataLength == 0 means
// the body is already uncompressed passthrough.
func decompressFrame(raw []byte) ([]byte, error) {
	dataLength, n, err := DecodeVarIntFromBuffer(raw, 0)
	if err != nil {
		return nil, err
	}
	rest := raw[n:]

	if dataLength == 0 {
		return rest, nil
	}

	zr, err := zlib.NewReader(bytes.NewReader(rest))
	if err != nil {
		return nil, fmt.Errorf("%w: zlib header: %v", ErrDecompression, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(io.LimitReader(zr, int64(dataLength)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: inflate: %v", ErrDecompression, err)
	}
	if len(out) != int(dataLength) {
		return nil, fmt.Errorf("%w: declared length %d, got %d", ErrDecompression, dataLength, len(out))
	}

	return out, nil
}

// decodePacketIDAndData splits a decoded (possibly just decompressed)
// packet body into its leading VarInt packet ID and the remaining field
// bytes.
func decodePacketIDAndData(body []byte) (VarInt, []byte, error) {
	id, n, err := DecodeVarIntFromBuffer(body, 0)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: packet id: %v", ErrFraming, err)
	}
	return id, body[n:], nil
}
