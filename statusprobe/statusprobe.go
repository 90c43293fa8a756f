// Package statusprobe drives the status-intent handshake (spec.md 4.3):
// connect, handshake with a high sentinel protocol, request status, and
// decode the single JSON document the server answers with.
package statusprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/go-mclib/mcprobe/protocol"
)

// DefaultStatusProtocolSentinel is the deliberately high protocol version
// sent in the status-intent handshake so the server discloses its own real
// version regardless of what we claim to speak (spec.md 4.3 step 2), used
// when a caller doesn't override it. The Rust original this spec distills
// from names the same constant MAX_PROTOCOL_VERSION = 800.
const DefaultStatusProtocolSentinel = 800

// Descriptor is the decoded status JSON document (spec.md 3's
// "ServerDescriptor"). Every field is optional; a server may omit any of
// them.
type Descriptor struct {
	Version *VersionInfo `json:"version"`
	Players *PlayersInfo `json:"players"`
	// Description is a chat component: a plain string, an object, or an
	// array. json.RawMessage defers decoding to protocol/chat.Flatten.
	Description json.RawMessage `json:"description"`
	Favicon     string          `json:"favicon"`
}

// VersionInfo is the status JSON "version" object.
type VersionInfo struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

// PlayersInfo is the status JSON "players" object.
type PlayersInfo struct {
	Max    int            `json:"max"`
	Online int            `json:"online"`
	Sample []PlayerSample `json:"sample"`
}

// PlayerSample is one entry of the status JSON "players.sample" array.
type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Dialer opens the TCP connection to an endpoint. Extracted so tests can
// substitute net.Pipe or another fake transport without touching a real
// socket.
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// Fetch performs the status dialogue against host:port and returns the
// decoded descriptor. connectTimeout bounds only the TCP dial (spec.md
// 5's per-connect deadline); ctx's own deadline, if any, becomes the
// connection's read/write deadline for the rest of the exchange, so a
// caller enforcing a wider per-scan timeout (spec.md 5) doesn't get cut
// short by the shorter connect budget. statusProtocolVersion is the
// protocol version claimed in the handshake (spec.md 6's overrideable
// status_protocol_sentinel); pass DefaultStatusProtocolSentinel absent a
// caller-configured value.
func Fetch(ctx context.Context, dial Dialer, host string, port uint16, connectTimeout time.Duration, statusProtocolVersion int) (*Descriptor, error) {
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	raw, err := dial(dialCtx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer raw.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = raw.SetDeadline(deadline)
	}

	conn := protocol.NewConn(raw)

	handshake := protocol.BuildHandshake(protocol.VarInt(statusProtocolVersion), host, port, protocol.IntentStatus)
	if err := conn.WritePacket(handshake); err != nil {
		return nil, fmt.Errorf("write handshake: %w", err)
	}
	if err := conn.WritePacket(protocol.StatusRequest); err != nil {
		return nil, fmt.Errorf("write status request: %w", err)
	}

	_, data, err := conn.ReadPacket()
	if err != nil {
		return nil, fmt.Errorf("read status response: %w", err)
	}

	jsonLen, n, err := protocol.DecodeVarIntFromBuffer(data, 0)
	if err != nil {
		return nil, fmt.Errorf("decode json length: %w", err)
	}
	if jsonLen < 0 || n+int(jsonLen) > len(data) {
		return nil, fmt.Errorf("%w: status json truncated", protocol.ErrFraming)
	}
	body := data[n : n+int(jsonLen)]

	var desc Descriptor
	if err := json.Unmarshal(body, &desc); err != nil {
		return nil, fmt.Errorf("decode status json: %w", err)
	}

	return &desc, nil
}
