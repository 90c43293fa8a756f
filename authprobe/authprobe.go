// Package authprobe drives the login-intent handshake (spec.md 4.5) and
// classifies a server's authentication posture from the first packet it
// sends back in response to a synthetic login attempt. The login is never
// completed: no encryption, no session authentication, no play-state
// entry (spec.md 1's Non-goals).
package authprobe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-mclib/mcprobe/protocol"
	"github.com/go-mclib/mcprobe/protocol/chat"
)

// AuthMode is the classified authentication posture of a server.
type AuthMode int

const (
	// Unknown means the probe could not classify the server: the auth
	// timeout elapsed, the connection closed before a classifiable packet
	// arrived, or the server kicked with a disconnect message that names
	// no whitelist. Never surfaced as a ScanResult
	// error: a server that answers status but declines a synthetic
	// login is still a successful scan (spec.md 7).
	Unknown AuthMode = -1
	// Cracked means the server accepted the login start outright
	// (Login Success with no encryption request).
	Cracked AuthMode = 0
	// Premium means the server demanded session encryption (only
	// Mojang-authenticated clients can complete that step).
	Premium AuthMode = 1
	// Whitelisted means the server kicked the connection with a
	// disconnect message naming a whitelist.
	Whitelisted AuthMode = 2
)

// placeholderUsername is the fixed username sent in the synthetic login
// start. Its value is arbitrary; no account needs to exist.
const placeholderUsername = "mcprobe_scan"

// Inbound login-state packet IDs this probe dispatches on (spec.md 4.5).
const (
	packetDisconnect     protocol.VarInt = 0x00
	packetEncryptionReq  protocol.VarInt = 0x01
	packetLoginSuccess   protocol.VarInt = 0x02
	packetSetCompression protocol.VarInt = 0x03
)

// Dialer opens the TCP connection to an endpoint.
type Dialer func(ctx context.Context, network, address string) (net.Conn, error)

// Probe drives the login-intent handshake against host:port, using
// protocolVersion as both the handshake's declared protocol and the
// login-start payload shape (spec.md 4.5's "critical" requirement: using
// the status sentinel here instead would get every connection kicked
// before it discloses anything). connectTimeout bounds the TCP dial;
// authTimeout bounds the classification loop separately, starting once
// the handshake and login start have been written, mirroring
// original_source/src/main.rs's get_auth_mode (a DEFAULT_TIMEOUT dial
// wrapped around connect, then a fresh AUTH_TIMEOUT window around the
// read loop). When authTimeout elapses the probe returns Unknown with a
// nil error, per spec.md 7's policy that auth-probe failures never
// populate ScanResult.error.
func Probe(ctx context.Context, dial Dialer, host string, port uint16, protocolVersion int, connectTimeout, authTimeout time.Duration) (AuthMode, error) {
	if protocolVersion < protocol.MinLoginProtocol {
		return Unknown, fmt.Errorf("%w: protocol %d", protocol.ErrUnsupportedProtocol, protocolVersion)
	}
	if dial == nil {
		dial = (&net.Dialer{}).DialContext
	}

	dialCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	raw, err := dial(dialCtx, "tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return Unknown, fmt.Errorf("connect: %w", err)
	}
	defer raw.Close()

	conn := protocol.NewConn(raw)

	handshake := protocol.BuildHandshake(protocol.VarInt(protocolVersion), host, port, protocol.IntentLogin)
	if err := conn.WritePacket(handshake); err != nil {
		return Unknown, fmt.Errorf("write handshake: %w", err)
	}

	loginStart, err := protocol.BuildLoginStart(placeholderUsername, protocol.NilUUID, protocolVersion)
	if err != nil {
		return Unknown, err
	}
	if err := conn.WritePacket(loginStart); err != nil {
		return Unknown, fmt.Errorf("write login start: %w", err)
	}

	_ = raw.SetReadDeadline(time.Now().Add(authTimeout))
	return classificationLoop(conn)
}

// classificationLoop reads packets until one dispatches to a terminal
// classification, the auth timeout (enforced via the connection's read
// deadline) elapses, or the connection closes. Both of the latter two
// conditions classify as Unknown without being treated as scan errors.
func classificationLoop(conn *protocol.Conn) (AuthMode, error) {
	for {
		id, data, err := conn.ReadPacket()
		if err != nil {
			// Timeout, reset, or clean EOF: the server never committed to
			// a classifiable packet. Spec.md 4.5 and 7: absorbed as Unknown.
			return Unknown, nil
		}

		switch id {
		case packetDisconnect:
			return classifyDisconnect(data), nil
		case packetEncryptionReq:
			return Premium, nil
		case packetLoginSuccess:
			return Cracked, nil
		case packetSetCompression:
			threshold, _, err := protocol.DecodeVarIntFromBuffer(data, 0)
			if err != nil {
				return Unknown, nil
			}
			conn.CompressionThreshold = int(threshold)
			// Compression armed; continue looping, honoring it on every
			// subsequent frame (spec.md 4.5's tie-break: 0x03 must be
			// honored before any classification).
		default:
			// Login Plugin Request or anything else: ignore, keep looping.
		}
	}
}

// classifyDisconnect inspects a Disconnect packet's length-prefixed JSON
// kick message. Per spec.md 9's Open Question, this module takes the
// sharper of the two documented policies (see SPEC_FULL.md 4.5.1):
// classify as Whitelisted only when the kick text actually mentions a
// whitelist; any other kick (banned, full, outdated client, generic
// pre-auth rejection) falls back to Unknown rather than asserting a
// specific mode it has no evidence for. A malformed or truncated payload
// never prevents this fallback — the packet ID alone would have sufficed
// for the lenient policy, but here it simply yields no match.
func classifyDisconnect(data []byte) AuthMode {
	length, n, err := protocol.DecodeVarIntFromBuffer(data, 0)
	if err != nil || length < 0 || n+int(length) > len(data) {
		return Unknown
	}

	raw := data[n : n+int(length)]
	text := chat.FlattenString(string(raw))

	if strings.Contains(strings.ToLower(text), "whitelist") {
		return Whitelisted
	}
	return Unknown
}
