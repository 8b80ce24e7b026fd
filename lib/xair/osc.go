package xair

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Message is one OSC packet. X-Air argument types are int32, float32,
// string, and blob.
type Message struct {
	Addr string
	Args []any
}

func pad(n int) int {
	return (4 - n%4) % 4
}

func appendPadded(buf []byte, s string) []byte {
	buf = append(buf, s...)
	buf = append(buf, 0)
	for range pad(len(s) + 1) {
		buf = append(buf, 0)
	}
	return buf
}

// Encode serializes the message as one OSC 1.0 datagram.
func (m Message) Encode() []byte {
	buf := appendPadded(nil, m.Addr)

	typetag := ","
	for _, arg := range m.Args {
		switch arg.(type) {
		case int32:
			typetag += "i"
		case float32:
			typetag += "f"
		case string:
			typetag += "s"
		case []byte:
			typetag += "b"
		}
	}
	buf = appendPadded(buf, typetag)

	for _, arg := range m.Args {
		switch v := arg.(type) {
		case int32:
			buf = binary.BigEndian.AppendUint32(buf, uint32(v))
		case float32:
			buf = binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
		case string:
			buf = appendPadded(buf, v)
		case []byte:
			buf = binary.BigEndian.AppendUint32(buf, uint32(len(v)))
			buf = append(buf, v...)
			for range pad(len(v)) {
				buf = append(buf, 0)
			}
		}
	}
	return buf
}

func readString(data []byte, pos int) (string, int, error) {
	end := pos
	for end < len(data) && data[end] != 0 {
		end++
	}
	if end >= len(data) {
		return "", 0, fmt.Errorf("osc: unterminated string")
	}
	s := data[pos:end]
	next := end + 1 + pad(end-pos+1)
	return string(s), next, nil
}

// Decode parses one OSC datagram.
func Decode(data []byte) (Message, error) {
	if len(data) < 4 {
		return Message{}, fmt.Errorf("osc: datagram too short")
	}

	addr, pos, err := readString(data, 0)
	if err != nil {
		return Message{}, err
	}
	msg := Message{Addr: addr}

	if pos >= len(data) || data[pos] != ',' {
		return msg, nil
	}
	typetag, pos, err := readString(data, pos)
	if err != nil {
		return Message{}, err
	}

	for _, t := range typetag[1:] {
		switch t {
		case 'i':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("osc: truncated int32")
			}
			msg.Args = append(msg.Args, int32(binary.BigEndian.Uint32(data[pos:])))
			pos += 4
		case 'f':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("osc: truncated float32")
			}
			msg.Args = append(msg.Args, math.Float32frombits(binary.BigEndian.Uint32(data[pos:])))
			pos += 4
		case 's':
			var s string
			s, pos, err = readString(data, pos)
			if err != nil {
				return msg, err
			}
			msg.Args = append(msg.Args, s)
		case 'b':
			if pos+4 > len(data) {
				return msg, fmt.Errorf("osc: truncated blob size")
			}
			size := int(binary.BigEndian.Uint32(data[pos:]))
			pos += 4
			if pos+size > len(data) {
				return msg, fmt.Errorf("osc: truncated blob")
			}
			b := make([]byte, size)
			copy(b, data[pos:pos+size])
			msg.Args = append(msg.Args, b)
			pos += size + pad(size)
		default:
			return msg, fmt.Errorf("osc: unsupported type tag %q", t)
		}
	}
	return msg, nil
}
