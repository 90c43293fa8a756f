package protocol

// StatusRequest is the client-to-server "Status Request" packet payload
// (packet ID 0x00, no fields), sent via Conn.WritePacket after a
// status-intent handshake. WritePacket adds the outer length prefix, so
// this holds only the encoded packet ID.
var StatusRequest = []byte{0x00}
