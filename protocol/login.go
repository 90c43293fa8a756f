package protocol

// LoginStartPacketID is the packet ID of the "Login Start" packet
// (serverbound/login).
const LoginStartPacketID VarInt = 0x00

// MinLoginProtocol is the oldest protocol version this probe's
// login-start table understands (1.8). Below this, BuildLoginStart
// returns ErrUnsupportedProtocol.
const MinLoginProtocol = 47

// BuildLoginStart builds the client-to-server "Login Start" packet for the
// given server-declared protocol version. The payload tail after
// string(username) is version-dependent, per spec.md 4.2's table (itself
// grounded in original_source/src/main.rs's create_login_start, the Rust
// implementation this spec distills):
//
//	47..758   (1.8 - 1.18.2):   (nothing)
//	759       (1.19):           0x00 (has-signature = false)
//	760       (1.19.2):         0x00, 0x01, uuid[16]
//	761..763  (1.19.3-1.20.1):  0x01, uuid[16]
//	>=764     (1.20.2+):        uuid[16] (mandatory)
//
// A protocol below MinLoginProtocol is rejected outright; the caller
// should have already checked this (spec.md 4.5), but BuildLoginStart
// enforces it defensively so a malformed table lookup never silently
// builds a wrong-shaped packet.
func BuildLoginStart(username string, uuid UUID, protocolVersion int) ([]byte, error) {
	if protocolVersion < MinLoginProtocol {
		return nil, ErrUnsupportedProtocol
	}

	data := LoginStartPacketID.Encode(nil)
	data = EncodeString(data, username)

	switch {
	case protocolVersion <= 758:
		// 1.8 - 1.18.2: username only.
	case protocolVersion == 759:
		data = append(data, 0x00) // has-signature = false
	case protocolVersion == 760:
		data = append(data, 0x00, 0x01) // no sig, has uuid
		data = append(data, uuid[:]...)
	case protocolVersion <= 763:
		data = append(data, 0x01) // has uuid
		data = append(data, uuid[:]...)
	default:
		data = append(data, uuid[:]...) // mandatory uuid
	}

	return data, nil
}
