package statusprobe_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-mclib/mcprobe/protocol"
	"github.com/go-mclib/mcprobe/statusprobe"
)

func pipeDialer(server net.Conn) statusprobe.Dialer {
	return func(ctx context.Context, network, address string) (net.Conn, error) {
		return server, nil
	}
}

func TestFetchDecodesStatusResponse(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	body := `{"version":{"name":"1.20.1","protocol":763},"players":{"max":20,"online":3,"sample":[{"name":"Notch","id":"069a79f4-44e9-4726-a5be-fca90e38aaf5"}]},"description":{"text":"§6A §lTest Server"},"favicon":"data:image/png;base64,AAAA"}`

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn := protocol.NewConn(server)

		// handshake
		if _, _, err := conn.ReadPacket(); err != nil {
			t.Errorf("fake server: read handshake: %v", err)
			return
		}
		// status request
		if _, _, err := conn.ReadPacket(); err != nil {
			t.Errorf("fake server: read status request: %v", err)
			return
		}

		payload := protocol.VarInt(0x00).Encode(nil)
		payload = protocol.EncodeString(payload, body)
		_ = conn.WritePacket(payload)
	}()

	desc, err := statusprobe.Fetch(context.Background(), pipeDialer(client), "localhost", 25565, time.Second, statusprobe.DefaultStatusProtocolSentinel)
	<-done
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	if desc.Version == nil || desc.Version.Name != "1.20.1" || desc.Version.Protocol != 763 {
		t.Errorf("Version = %+v", desc.Version)
	}
	if desc.Players == nil || desc.Players.Max != 20 || desc.Players.Online != 3 {
		t.Errorf("Players = %+v", desc.Players)
	}
	if len(desc.Players.Sample) != 1 || desc.Players.Sample[0].Name != "Notch" {
		t.Errorf("Players.Sample = %+v", desc.Players.Sample)
	}
	if desc.Favicon == "" {
		t.Error("Favicon should be populated")
	}
}

func TestFetchConnectFailure(t *testing.T) {
	dial := func(ctx context.Context, network, address string) (net.Conn, error) {
		return nil, &net.OpError{Op: "dial", Err: errRefused{}}
	}

	if _, err := statusprobe.Fetch(context.Background(), dial, "localhost", 25565, time.Second, statusprobe.DefaultStatusProtocolSentinel); err == nil {
		t.Error("Fetch() should return an error when dial fails")
	}
}

type errRefused struct{}

func (errRefused) Error() string { return "connection refused" }
