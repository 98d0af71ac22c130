// Package packets encodes and decodes Engine.IO v3 and Socket.IO v3 text packets.
package packets

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrMalformed is returned for packets that cannot be decoded.
var ErrMalformed = errors.New("malformed packet")

// EngineType is an Engine.IO packet type.
type EngineType byte

// Engine.IO packet types.
const (
	EngineOpen    EngineType = 0
	EngineClose   EngineType = 1
	EnginePing    EngineType = 2
	EnginePong    EngineType = 3
	EngineMessage EngineType = 4
	EngineUpgrade EngineType = 5
	EngineNoop    EngineType = 6
)

var engineTypeNames = [...]string{"OPEN", "CLOSE", "PING", "PONG", "MESSAGE", "UPGRADE", "NOOP"}

func (t EngineType) String() string {
	if int(t) < len(engineTypeNames) {
		return engineTypeNames[t]
	}
	return fmt.Sprintf("EngineType(%d)", t)
}

// EnginePacket is one Engine.IO packet: a type digit followed by data.
type EnginePacket struct {
	Type EngineType
	Data string
}

// ParseEngine decodes a text frame.
func ParseEngine(s string) (EnginePacket, error) {
	if s == "" {
		return EnginePacket{}, fmt.Errorf("%w: empty engine packet", ErrMalformed)
	}
	t := EngineType(s[0] - '0')
	if s[0] < '0' || t > EngineNoop {
		return EnginePacket{}, fmt.Errorf("%w: engine packet type %q", ErrMalformed, s[0])
	}
	return EnginePacket{Type: t, Data: s[1:]}, nil
}

// Encode returns the text frame for p.
func (p EnginePacket) Encode() string {
	return string('0'+byte(p.Type)) + p.Data
}

func (p EnginePacket) String() string {
	if p.Data == "" {
		return p.Type.String()
	}
	return p.Type.String() + " " + p.Data
}

// Handshake is the payload of the OPEN packet.
type Handshake struct {
	SID          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"` // ms
	PingTimeout  int      `json:"pingTimeout"`  // ms
}

// ParseHandshake decodes the data of an OPEN packet.
func ParseHandshake(data string) (Handshake, error) {
	var h Handshake
	if err := json.Unmarshal([]byte(data), &h); err != nil {
		return Handshake{}, fmt.Errorf("%w: handshake: %v", ErrMalformed, err)
	}
	if h.SID == "" {
		return Handshake{}, fmt.Errorf("%w: handshake without sid", ErrMalformed)
	}
	return h, nil
}

// Interval returns the ping interval as a duration.
func (h Handshake) Interval() time.Duration {
	return time.Duration(h.PingInterval) * time.Millisecond
}

// Timeout returns the ping timeout as a duration.
func (h Handshake) Timeout() time.Duration {
	return time.Duration(h.PingTimeout) * time.Millisecond
}
