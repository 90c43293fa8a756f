// Package protocol implements the wire-level dialogue of the Minecraft
// Java-edition protocol: varints, length-prefixed strings, packet framing
// with a mid-stream compression transition, and the fixed set of
// client-to-server packets this probe emits.
package protocol

import "errors"

// Error kinds, wrapped with fmt.Errorf("%w: ...", ...) at call sites so
// errors.Is keeps working through layers of context.
var (
	// ErrFraming covers varint overflow, short reads, and malformed
	// length prefixes.
	ErrFraming = errors.New("protocol: framing error")

	// ErrDecompression covers a zlib payload that fails to inflate once
	// compression has been armed on the connection.
	ErrDecompression = errors.New("protocol: decompression error")

	// ErrUnsupportedProtocol covers a server-declared protocol below the
	// minimum this probe's login-start table understands.
	ErrUnsupportedProtocol = errors.New("protocol: unsupported protocol version")
)
