package web

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Message types sent to the browser.
const (
	typeInit     = "init"
	typeSpawn    = "spawn"
	typeAdvance  = "advance"
	typeRemove   = "remove"
	typeScore    = "score"
	typeButton   = "button"
	typeSpeed    = "speed"
	typeShutdown = "shutdown"
	typeError    = "error"
)

// Message types received from the browser. "speed" is shared with the
// outgoing label update.
const (
	typeToggle = "toggle"
	typeClick  = "click"
)

type initMessage struct {
	Type       string `json:"type"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	MinSpeed   int    `json:"minSpeed"`
	MaxSpeed   int    `json:"maxSpeed"`
	Speed      int    `json:"speed"`
	Button     string `json:"button"`
	SpeedLabel string `json:"speedLabel"`
}

type spawnMessage struct {
	Type     string `json:"type"`
	ID       uint64 `json:"id"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Diameter int    `json:"diameter"`
}

// advanceMessage carries every dot moved by one motion tick.
type advanceMessage struct {
	Type string        `json:"type"`
	Dots []dotPosition `json:"dots"`
}

type dotPosition struct {
	ID uint64 `json:"id"`
	Y  int    `json:"y"`
}

type removeMessage struct {
	Type string `json:"type"`
	ID   uint64 `json:"id"`
}

type scoreMessage struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	Created bool   `json:"created"`
}

// textMessage carries button and speed labels.
type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type shutdownMessage struct {
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

var (
	errMissingLevel = errors.New("speed message without level")
	errMissingID    = errors.New("click message without id")
)

// clientMessage is any message the browser sends. Level is set for speed,
// ID for click.
type clientMessage struct {
	Type  string  `json:"type"`
	Level *int    `json:"level,omitempty"`
	ID    *uint64 `json:"id,omitempty"`
}

// decodeClientMessage parses and validates one browser message.
func decodeClientMessage(data []byte) (clientMessage, error) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, fmt.Errorf("decode message: %w", err)
	}
	switch msg.Type {
	case typeToggle:
	case typeSpeed:
		if msg.Level == nil {
			return msg, errMissingLevel
		}
	case typeClick:
		if msg.ID == nil {
			return msg, errMissingID
		}
	default:
		return msg, fmt.Errorf("unknown message type %q", msg.Type)
	}
	return msg, nil
}
