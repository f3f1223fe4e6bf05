// Package input turns raw terminal bytes into key and mouse events.
package input

import (
	"io"
	"unicode/utf8"
)

// EventType distinguishes keyboard from mouse events.
type EventType int

const (
	EventKey EventType = iota
	EventMouse
)

// Key identifies special keys. Printable input uses KeyRune.
type Key int

const (
	KeyRune Key = iota
	KeyEnter
	KeyEscape
	KeyCtrlC
	KeyBackspace
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// MouseButton represents mouse button identity.
type MouseButton uint8

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
)

// Event is a single decoded input.
type Event struct {
	Type EventType

	Key  Key
	Rune rune

	// Mouse fields; coordinates are 0-based terminal cells.
	MouseX int
	MouseY int
	Button MouseButton
	Press  bool // false for releases and motion
}

// Stream delivers decoded events from a reader via a channel.
type Stream struct {
	ch chan Event
}

// StartStream spawns a goroutine that reads from r and decodes events.
// The channel closes when r returns an error.
func StartStream(r io.Reader) *Stream {
	s := &Stream{ch: make(chan Event, 128)}
	go func() {
		defer close(s.ch)
		buf := make([]byte, 256)
		var pending []byte
		for {
			n, err := r.Read(buf)
			if n > 0 {
				var events []Event
				events, pending = Parse(append(pending, buf[:n]...))
				for _, ev := range events {
					s.ch <- ev
				}
			}
			if err != nil {
				return
			}
		}
	}()
	return s
}

// Events returns the event channel.
func (s *Stream) Events() <-chan Event {
	return s.ch
}

// maxSGRLength bounds the search for a mouse sequence terminator.
const maxSGRLength = 32

// Parse decodes as many complete events as data holds. Bytes of an escape
// sequence cut off at the end are returned as rest, to be prefixed to the next read.
func Parse(data []byte) (events []Event, rest []byte) {
	i := 0
	for i < len(data) {
		b := data[i]

		if b == '\x1b' {
			n, ev, ok := parseEscape(data[i:])
			if n == 0 {
				// Incomplete sequence; wait for more bytes.
				return events, append([]byte(nil), data[i:]...)
			}
			if ok {
				events = append(events, ev)
			}
			i += n
			continue
		}

		switch b {
		case '\r', '\n':
			events = append(events, Event{Type: EventKey, Key: KeyEnter})
			i++
		case 0x03:
			events = append(events, Event{Type: EventKey, Key: KeyCtrlC})
			i++
		case '\b', 0x7f:
			events = append(events, Event{Type: EventKey, Key: KeyBackspace})
			i++
		default:
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size == 1 && !utf8.FullRune(data[i:]) {
				return events, append([]byte(nil), data[i:]...)
			}
			events = append(events, Event{Type: EventKey, Key: KeyRune, Rune: r})
			i += size
		}
	}
	return events, nil
}

// parseEscape decodes a sequence starting with ESC. It returns the bytes
// consumed (0 when more input is needed) and whether ev is meaningful.
func parseEscape(data []byte) (int, Event, bool) {
	if len(data) < 2 {
		return 0, Event{}, false
	}
	if data[1] != '[' {
		return 1, Event{Type: EventKey, Key: KeyEscape}, true
	}
	if len(data) < 3 {
		return 0, Event{}, false
	}

	switch data[2] {
	case 'A':
		return 3, Event{Type: EventKey, Key: KeyUp}, true
	case 'B':
		return 3, Event{Type: EventKey, Key: KeyDown}, true
	case 'C':
		return 3, Event{Type: EventKey, Key: KeyRight}, true
	case 'D':
		return 3, Event{Type: EventKey, Key: KeyLeft}, true
	case '<':
		return parseSGRMouse(data)
	}
	return 3, Event{}, false
}

// parseSGRMouse parses ESC [ < Btn ; X ; Y M (press) or m (release).
func parseSGRMouse(data []byte) (int, Event, bool) {
	end := 3
	for end < len(data) && end < maxSGRLength {
		if data[end] == 'M' || data[end] == 'm' {
			break
		}
		end++
	}
	if end >= len(data) {
		if end >= maxSGRLength {
			return end, Event{}, false
		}
		return 0, Event{}, false
	}
	if data[end] != 'M' && data[end] != 'm' {
		return end, Event{}, false
	}

	btn, x, y, ok := parseSGRParams(data[3:end])
	if !ok {
		return end + 1, Event{}, false
	}

	ev := Event{Type: EventMouse, MouseX: x - 1, MouseY: y - 1}

	// Bits 0-1: button, bit 5: motion, bit 6: wheel
	buttonID := btn & 0x03
	motion := btn&32 != 0
	wheel := btn&64 != 0

	switch {
	case wheel && buttonID == 0:
		ev.Button = MouseWheelUp
		ev.Press = true
	case wheel:
		ev.Button = MouseWheelDown
		ev.Press = true
	default:
		switch buttonID {
		case 0:
			ev.Button = MouseLeft
		case 1:
			ev.Button = MouseMiddle
		case 2:
			ev.Button = MouseRight
		}
		ev.Press = data[end] == 'M' && !motion
	}
	return end + 1, ev, true
}

// parseSGRParams parses "btn;x;y" decimal fields.
func parseSGRParams(p []byte) (btn, x, y int, ok bool) {
	var vals [3]int
	field := 0
	digits := 0
	for _, c := range p {
		switch {
		case c >= '0' && c <= '9':
			vals[field] = vals[field]*10 + int(c-'0')
			digits++
		case c == ';':
			if digits == 0 || field == 2 {
				return 0, 0, 0, false
			}
			field++
			digits = 0
		default:
			return 0, 0, 0, false
		}
	}
	if field != 2 || digits == 0 {
		return 0, 0, 0, false
	}
	return vals[0], vals[1], vals[2], true
}
