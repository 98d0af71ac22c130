package packets

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// SocketType is a Socket.IO packet type.
type SocketType byte

// Socket.IO packet types.
const (
	SocketConnect     SocketType = 0
	SocketDisconnect  SocketType = 1
	SocketEvent       SocketType = 2
	SocketAck         SocketType = 3
	SocketError       SocketType = 4
	SocketBinaryEvent SocketType = 5
	SocketBinaryAck   SocketType = 6
)

var socketTypeNames = [...]string{"CONNECT", "DISCONNECT", "EVENT", "ACK", "ERROR", "BINARY_EVENT", "BINARY_ACK"}

func (t SocketType) String() string {
	if int(t) < len(socketTypeNames) {
		return socketTypeNames[t]
	}
	return fmt.Sprintf("SocketType(%d)", t)
}

// DefaultNamespace is the namespace used when a packet names none.
const DefaultNamespace = "/"

// SocketPacket is a Socket.IO packet carried in an Engine.IO MESSAGE.
//
// Text layout: type digit, optional "<attachments>-", optional
// "<namespace>,", optional numeric id, optional JSON data.
type SocketPacket struct {
	Type        SocketType
	Attachments int
	Namespace   string
	ID          int // -1 when absent
	Data        json.RawMessage
}

// ParseSocket decodes the data of an Engine.IO MESSAGE.
func ParseSocket(s string) (SocketPacket, error) {
	if s == "" || s[0] < '0' || s[0] > '0'+byte(SocketBinaryAck) {
		return SocketPacket{}, fmt.Errorf("%w: socket packet %q", ErrMalformed, s)
	}
	p := SocketPacket{Type: SocketType(s[0] - '0'), Namespace: DefaultNamespace, ID: -1}
	rest := s[1:]

	if p.Type == SocketBinaryEvent || p.Type == SocketBinaryAck {
		dash := strings.IndexByte(rest, '-')
		if dash <= 0 {
			return SocketPacket{}, fmt.Errorf("%w: binary packet without attachment count", ErrMalformed)
		}
		n, err := strconv.Atoi(rest[:dash])
		if err != nil {
			return SocketPacket{}, fmt.Errorf("%w: attachment count: %v", ErrMalformed, err)
		}
		p.Attachments = n
		rest = rest[dash+1:]
	}

	if strings.HasPrefix(rest, "/") {
		comma := strings.IndexByte(rest, ',')
		if comma < 0 {
			p.Namespace, rest = rest, ""
		} else {
			p.Namespace, rest = rest[:comma], rest[comma+1:]
		}
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.Atoi(rest[:digits])
		if err != nil {
			return SocketPacket{}, fmt.Errorf("%w: packet id: %v", ErrMalformed, err)
		}
		p.ID = id
		rest = rest[digits:]
	}

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return SocketPacket{}, fmt.Errorf("%w: packet data is not JSON", ErrMalformed)
		}
		p.Data = json.RawMessage(rest)
	}
	return p, nil
}

// Encode returns the text form of p.
func (p SocketPacket) Encode() string {
	var b strings.Builder
	b.WriteByte('0' + byte(p.Type))
	if p.Type == SocketBinaryEvent || p.Type == SocketBinaryAck {
		b.WriteString(strconv.Itoa(p.Attachments))
		b.WriteByte('-')
	}
	if p.Namespace != "" && p.Namespace != DefaultNamespace {
		b.WriteString(p.Namespace)
		b.WriteByte(',')
	}
	if p.ID >= 0 {
		b.WriteString(strconv.Itoa(p.ID))
	}
	b.Write(p.Data)
	return b.String()
}

// NewEvent builds an EVENT packet for name with JSON-encodable args.
func NewEvent(name string, args ...any) (SocketPacket, error) {
	data, err := json.Marshal(append([]any{name}, args...))
	if err != nil {
		return SocketPacket{}, fmt.Errorf("encoding event %s: %w", name, err)
	}
	return SocketPacket{Type: SocketEvent, Namespace: DefaultNamespace, ID: -1, Data: data}, nil
}

// Event splits the data of an EVENT packet into its name and arguments.
func (p SocketPacket) Event() (string, []json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(p.Data, &items); err != nil {
		return "", nil, fmt.Errorf("%w: event data: %v", ErrMalformed, err)
	}
	if len(items) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", ErrMalformed)
	}
	var name string
	if err := json.Unmarshal(items[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", ErrMalformed, err)
	}
	return name, items[1:], nil
}

func (p SocketPacket) String() string {
	if len(p.Data) == 0 {
		return p.Type.String()
	}
	return p.Type.String() + " " + string(p.Data)
}
