package protocol

import (
	"fmt"
	"io"
)

// maxStringChars bounds string decoding against a hostile or buggy peer.
// The protocol itself allows up to 32767 characters for most strings;
// status JSON documents can run longer, so callers that need more room
// pass their own limit.
const maxStringChars = 1 << 20

// EncodeString appends a VarInt length prefix followed by the UTF-8 bytes
// of s to dst.
func EncodeString(dst []byte, s string) []byte {
	dst = VarInt(len(s)).Encode(dst)
	return append(dst, s...)
}

// DecodeString reads a length-prefixed UTF-8 string from r. maxChars is a
// limit in characters (0 uses maxStringChars); the declared byte length is
// rejected when it exceeds maxChars*4, the widest a UTF-8 string of that
// many characters can be.
func DecodeString(r interface {
	io.Reader
	io.ByteReader
}, maxChars int) (string, error) {
	length, err := DecodeVarInt(r)
	if err != nil {
		return "", fmt.Errorf("%w: string length: %v", ErrFraming, err)
	}
	if length < 0 {
		return "", fmt.Errorf("%w: negative string length %d", ErrFraming, length)
	}

	limit := maxChars
	if limit <= 0 {
		limit = maxStringChars
	}
	if int(length) > limit*4 {
		return "", fmt.Errorf("%w: string byte length %d exceeds limit %d", ErrFraming, length, limit*4)
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(r, data); err != nil {
		return "", fmt.Errorf("%w: string data: %v", ErrFraming, err)
	}

	return string(data), nil
}
