package msgtype

import (
	"fmt"

	"github.com/tidwall/gjson"
)

const (
	// Event is a constant variable for a frame carrying an event record
	Event = "event"

	// Replay is a constant variable for a frame requesting the records after a sequence
	Replay = "replay"

	// Error is a constant variable for a frame reporting a failed request
	Error = "error"
)

var placeHolder = `{"type": "%s", "text": "%d"}`

// BuildReplayMessage represents a function to build a message requesting the records after since.
func BuildReplayMessage(since uint64) string {
	return fmt.Sprintf(placeHolder, Replay, since)
}

// ParseMessageType represents a function to parse the type from a message.
func ParseMessageType(message string) string {
	return gjson.Get(message, "type").String()
}

// ParseReplaySince represents a function to parse the sequence of a replay message.
// It reports false if the message is not a valid replay request.
func ParseReplaySince(message string) (uint64, bool) {
	if !gjson.Valid(message) || ParseMessageType(message) != Replay {
		return 0, false
	}
	text := gjson.Get(message, "text")
	since := gjson.Parse(text.String())
	if since.Type != gjson.Number || since.Num < 0 {
		return 0, false
	}
	return since.Uint(), true
}

// ParseEventName represents a function to parse the event name from an event record.
func ParseEventName(record string) string {
	return gjson.Get(record, "event").String()
}
