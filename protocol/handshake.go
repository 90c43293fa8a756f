package protocol

// Handshake intents, the "next_state" field of the Handshake packet.
const (
	IntentStatus VarInt = 1
	IntentLogin  VarInt = 2
)

// HandshakePacketID is the packet ID of the Handshake packet. It is the
// only packet ID in the Handshake state, shared by the state-agnostic
// opening packet of every connection.
const HandshakePacketID VarInt = 0x00

// BuildHandshake builds the client-to-server Handshake packet:
//
//	varint(0x00) || varint(protocol) || string(host) || u16_be(port) || varint(intent)
//
// protocol is a deliberately high sentinel in status intent (so the
// server discloses its real version) and the server's own declared
// protocol in login intent (a mismatched protocol gets the connection
// kicked before it discloses anything useful).
func BuildHandshake(protocolVersion VarInt, host string, port uint16, intent VarInt) []byte {
	data := HandshakePacketID.Encode(nil)
	data = protocolVersion.Encode(data)
	data = EncodeString(data, host)
	data = append(data, byte(port>>8), byte(port))
	data = intent.Encode(data)
	return data
}
