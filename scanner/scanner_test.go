package scanner_test

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/go-mclib/mcprobe/protocol"
	"github.com/go-mclib/mcprobe/scanner"
)

func TestProbeStatusOnly(t *testing.T) {
	statusJSON := `{"version":{"name":"1.20.1","protocol":763},"players":{"max":20,"online":1},"description":{"text":"Hello"}}`

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		raw, err := ln.Accept()
		if err != nil {
			return
		}
		defer raw.Close()
		conn := protocol.NewConn(raw)
		if _, _, err := conn.ReadPacket(); err != nil { // handshake
			return
		}
		if _, _, err := conn.ReadPacket(); err != nil { // status request
			return
		}
		payload := protocol.VarInt(0x00).Encode(nil)
		payload = protocol.EncodeString(payload, statusJSON)
		_ = conn.WritePacket(payload)
	}()

	host, port, err := splitAddr(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	cfg := scanner.DefaultConfig()
	cfg.ScanTimeout = 2 * time.Second
	cfg.ConnectTimeout = time.Second

	result := scanner.Probe(context.Background(), scanner.Endpoint{Host: host, Port: port}, cfg)

	if result.Error != "" {
		t.Fatalf("result.Error = %q, want empty", result.Error)
	}
	if result.Version != "1.20.1" || result.Protocol != 763 {
		t.Errorf("Version/Protocol = %q/%d", result.Version, result.Protocol)
	}
	if result.MOTD != "Hello" {
		t.Errorf("MOTD = %q", result.MOTD)
	}
	if result.AuthMode != nil {
		t.Errorf("AuthMode = %v, want nil (CheckAuth disabled)", result.AuthMode)
	}
}

func TestProbeStatusAndAuth(t *testing.T) {
	statusJSON := `{"version":{"name":"1.20.1","protocol":763}}`

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for connNum := 0; ; connNum++ {
			raw, err := ln.Accept()
			if err != nil {
				return
			}
			go func(n int, raw net.Conn) {
				defer raw.Close()
				conn := protocol.NewConn(raw)
				if _, _, err := conn.ReadPacket(); err != nil { // handshake
					return
				}
				if _, _, err := conn.ReadPacket(); err != nil { // status request or login start
					return
				}
				if n == 0 {
					// First connection: status dialogue.
					payload := protocol.VarInt(0x00).Encode(nil)
					payload = protocol.EncodeString(payload, statusJSON)
					_ = conn.WritePacket(payload)
					return
				}
				// Second connection: auth dialogue, Login Success.
				_ = conn.WritePacket(append(protocol.VarInt(0x02).Encode(nil), []byte("ok")...))
			}(connNum, raw)
		}
	}()

	host, port, err := splitAddr(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	cfg := scanner.DefaultConfig()
	cfg.ScanTimeout = 2 * time.Second
	cfg.ConnectTimeout = time.Second
	cfg.AuthTimeout = time.Second
	cfg.CheckAuth = true

	result := scanner.Probe(context.Background(), scanner.Endpoint{Host: host, Port: port}, cfg)

	if result.Error != "" {
		t.Fatalf("result.Error = %q, want empty", result.Error)
	}
	if result.AuthMode == nil {
		t.Fatal("AuthMode should be populated when CheckAuth is true")
	}
	if *result.AuthMode != 0 {
		t.Errorf("AuthMode = %d, want 0 (Cracked)", *result.AuthMode)
	}
}

func TestProbeConnectFailureSetsError(t *testing.T) {
	// The OS-assigned port of a listener that is closed before the probe:
	// nothing is listening on this address, so the dial itself fails.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	host, port, err := splitAddr(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	ln.Close() // nothing will be listening by the time Probe dials

	cfg := scanner.DefaultConfig()
	cfg.ScanTimeout = time.Second
	cfg.ConnectTimeout = 200 * time.Millisecond

	result := scanner.Probe(context.Background(), scanner.Endpoint{Host: host, Port: port}, cfg)

	if result.Error == "" {
		t.Error("result.Error should be populated when the connection is refused")
	}
	if result.IP != host || result.Port != port {
		t.Errorf("IP/Port = %s/%d, want %s/%d", result.IP, result.Port, host, port)
	}
}

func TestRunBatchProducesOneResultPerEndpoint(t *testing.T) {
	statusJSON := `{"version":{"name":"1.20.1","protocol":763}}`

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			raw, err := ln.Accept()
			if err != nil {
				return
			}
			go func(raw net.Conn) {
				defer raw.Close()
				conn := protocol.NewConn(raw)
				if _, _, err := conn.ReadPacket(); err != nil {
					return
				}
				if _, _, err := conn.ReadPacket(); err != nil {
					return
				}
				payload := protocol.VarInt(0x00).Encode(nil)
				payload = protocol.EncodeString(payload, statusJSON)
				_ = conn.WritePacket(payload)
			}(raw)
		}
	}()

	host, port, err := splitAddr(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}

	endpoints := []scanner.Endpoint{
		{Host: host, Port: port},
		{Host: host, Port: port},
		{Host: host, Port: port},
	}

	cfg := scanner.DefaultConfig()
	cfg.ScanTimeout = 2 * time.Second
	cfg.ConnectTimeout = time.Second
	cfg.MaxConcurrent = 2

	results, err := scanner.RunBatch(context.Background(), endpoints, cfg, slog.Default())
	if err != nil {
		t.Fatalf("RunBatch() error = %v", err)
	}
	if len(results) != len(endpoints) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(endpoints))
	}
	for i, r := range results {
		if r.Error != "" {
			t.Errorf("results[%d].Error = %q", i, r.Error)
		}
	}
}

func splitAddr(addr string) (string, uint16, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return "", 0, err
	}
	return host, uint16(port), nil
}
