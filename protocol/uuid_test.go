package protocol_test

import (
	"testing"

	"github.com/go-mclib/mcprobe/protocol"
)

func TestParseUUIDHyphenated(t *testing.T) {
	got := protocol.ParseUUID("069a79f4-44e9-4726-a5be-fca90e38aaf5")
	want := "069a79f4-44e9-4726-a5be-fca90e38aaf5"
	if got.String() != want {
		t.Errorf("String() = %q, want %q", got.String(), want)
	}
}

func TestParseUUIDBare(t *testing.T) {
	got := protocol.ParseUUID("069a79f444e94726a5befca90e38aaf5")
	if got == protocol.NilUUID {
		t.Error("ParseUUID() of a valid bare hex string returned the nil UUID")
	}
}

func TestParseUUIDMalformedFallsBackToNil(t *testing.T) {
	tests := []string{"", "not-a-uuid", "069a79f4-44e9-4726-a5be"}
	for _, s := range tests {
		t.Run(s, func(t *testing.T) {
			if got := protocol.ParseUUID(s); got != protocol.NilUUID {
				t.Errorf("ParseUUID(%q) = %v, want NilUUID", s, got)
			}
		})
	}
}
