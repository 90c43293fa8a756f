// Package chat flattens a Minecraft chat-component JSON value (the
// "description" field of a status response, and the body of a disconnect
// packet) into plain text.
//
// The teacher repo's text_component_render.go flattens an NBT-decoded
// TextComponent tree the same recursive way; this package adapts that
// flatten-and-concatenate approach to the JSON-shaped tagged union the
// status/login protocol actually sends (spec.md 3's "Chat component").
package chat

import (
	"encoding/json"
	"strings"
)

// sigil is the canonical Minecraft formatting control character. The
// spec.md 9 warning about a mis-encoded literal in the source this spec
// was distilled from is moot here: Go source files are UTF-8, so the rune
// literal below is unambiguous.
const sigil = '§'

// maxDepth bounds component recursion. The protocol imposes no limit, but
// decoded JSON can't cycle, so this only guards against pathological
// nesting from a hostile or buggy server.
const maxDepth = 32

// component mirrors the shape a chat-component object node can take.
// Unknown fields are ignored; only Text and Extra feed the flattened
// MOTD, per spec.md 4.4.
type component struct {
	Text  string            `json:"text"`
	Extra []json.RawMessage `json:"extra"`
}

// Flatten decodes raw as a chat component (string, object, or array) and
// returns its plain-text rendering with color codes stripped.
func Flatten(raw json.RawMessage) string {
	var b strings.Builder
	flatten(raw, &b, 0)
	return b.String()
}

// FlattenString flattens a chat component given as a JSON-encoded string,
// tolerating a bare plain-text string (not valid JSON) by treating the
// whole input as a string node. Used for login-state disconnect payloads,
// which are length-prefixed JSON text but not guaranteed well-formed.
func FlattenString(s string) string {
	if !json.Valid([]byte(s)) {
		return StripColorCodes(s)
	}
	return Flatten(json.RawMessage(s))
}

func flatten(raw json.RawMessage, b *strings.Builder, depth int) {
	if depth > maxDepth || len(raw) == 0 {
		return
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			b.WriteString(StripColorCodes(s))
		}
	case '{':
		var c component
		if err := json.Unmarshal(raw, &c); err != nil {
			return
		}
		b.WriteString(StripColorCodes(c.Text))
		for _, child := range c.Extra {
			flatten(child, b, depth+1)
		}
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return
		}
		for _, child := range arr {
			flatten(child, b, depth+1)
		}
	}
}

// StripColorCodes removes every occurrence of the section-sign control
// character followed by exactly one further character, regardless of
// what that character is (spec.md 4.4). It is idempotent: a string with
// no section signs left is unaffected by a second pass.
func StripColorCodes(s string) string {
	if !strings.ContainsRune(s, sigil) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		if runes[i] == sigil {
			i++ // also skip the following character, if any
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
