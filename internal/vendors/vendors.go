package vendors

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

// Event is the canonical intermediate record a parser produces from one
// vendor payload entry. Missing optional fields are defaulted, never fatal:
// the pipeline must not drop an event because a vendor omitted a field.
type Event struct {
	VendorMessageID string
	Status          model.CanonicalStatus
	RawStatus       string
	Recipient       string
	Reason          string
	Timestamp       time.Time
	Content         string
	Raw             json.RawMessage
}

// Parser maps one vendor's raw payload object to an Event. Parsers are pure:
// no I/O, no shared state.
type Parser interface {
	Slug() string
	Parse(payload map[string]interface{}, channel string) Event
}

// Unknown is the placeholder used when a vendor omits an identity field.
const Unknown = "unknown"

// ForSlug selects the parser for a vendor slug. The set is closed at compile
// time; adding a vendor means adding a case here and a vocabulary table in
// normalize.go. Slug matching is case-insensitive with alias tolerance
// because different producers disagree on casing.
func ForSlug(slug string) (Parser, error) {
	switch strings.ToLower(strings.TrimSpace(slug)) {
	case "msg91":
		return msg91Parser{}, nil
	case "twilio":
		return twilioParser{}, nil
	case "gupshup":
		return gupshupParser{}, nil
	case "sendgrid", "twilio-sendgrid":
		return sendgridParser{}, nil
	case "plivo":
		return plivoParser{}, nil
	}
	return nil, fmt.Errorf("%w: %s", model.ErrUnsupportedVendor, slug)
}

// ParseBody decodes a raw webhook body for a vendor and yields one Event per
// payload entry. Some vendors (SendGrid) deliver arrays of discrete event
// objects per request; each entry keeps its own raw JSON verbatim.
func ParseBody(slug, channel string, body []byte) ([]Event, error) {
	parser, err := ForSlug(slug)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		var entries []json.RawMessage
		if err := json.Unmarshal(body, &entries); err != nil {
			return nil, fmt.Errorf("decode payload array: %w", err)
		}
		events := make([]Event, 0, len(entries))
		for _, entry := range entries {
			var payload map[string]interface{}
			if err := json.Unmarshal(entry, &payload); err != nil {
				return nil, fmt.Errorf("decode payload entry: %w", err)
			}
			ev := parser.Parse(payload, channel)
			ev.Raw = entry
			events = append(events, ev)
		}
		return events, nil
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	ev := parser.Parse(payload, channel)
	ev.Raw = json.RawMessage(body)
	return []Event{ev}, nil
}

// firstString returns the first present, non-empty string value among the
// candidate keys. Numeric values are rendered to their string form because
// some vendors send ids as numbers.
func firstString(payload map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		v, ok := payload[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if strings.TrimSpace(t) != "" {
				return strings.TrimSpace(t)
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case json.Number:
			return t.String()
		}
	}
	return ""
}

// nestedObject returns payload[key] when it is an object.
func nestedObject(payload map[string]interface{}, key string) map[string]interface{} {
	if v, ok := payload[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

// parseTimestamp tries the timestamp encodings seen across vendors:
// RFC3339, unix seconds, unix milliseconds, and a couple of date-time
// layouts. Zero time means the vendor provided nothing usable; the caller
// substitutes the receipt time.
func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		// Heuristic boundary between unix seconds and milliseconds.
		if n > 1_000_000_000_000 {
			return time.UnixMilli(n).UTC()
		}
		if n > 0 {
			return time.Unix(n, 0).UTC()
		}
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// RefCandidates is the ordered list of raw-payload field names that may hold
// the vendor's own reference id for a message, per vendor and channel. Used
// both at parse time and by the backfill job against historically stored
// payloads.
func RefCandidates(slug, channel string) []string {
	switch strings.ToLower(slug) {
	case "msg91":
		return []string{"requestId", "request_id", "msgId"}
	case "twilio":
		return []string{"MessageSid", "SmsSid", "MessageUUID"}
	case "gupshup":
		if channel == "whatsapp" {
			return []string{"gsId", "externalId", "id"}
		}
		return []string{"externalId", "id"}
	case "sendgrid", "twilio-sendgrid":
		return []string{"sg_message_id", "smtp-id", "sg_event_id"}
	case "plivo":
		return []string{"MessageUUID", "ParentMessageUUID"}
	}
	return nil
}

// ExtractRef applies the candidate list to a decoded payload, descending one
// level into a nested "payload" object when the top level misses, matching
// the envelope shape some vendors use.
func ExtractRef(slug, channel string, payload map[string]interface{}) string {
	candidates := RefCandidates(slug, channel)
	if len(candidates) == 0 {
		return ""
	}
	if ref := firstString(payload, candidates...); ref != "" {
		return ref
	}
	if inner := nestedObject(payload, "payload"); inner != nil {
		return firstString(inner, candidates...)
	}
	return ""
}
