package vendors

// gupshup wraps WhatsApp message-event callbacks in an envelope whose
// "payload" object holds the event fields; SMS callbacks are flat. The
// parser tries the top level first, then descends one level.
type gupshupParser struct{}

func (gupshupParser) Slug() string { return "gupshup" }

func (gupshupParser) Parse(payload map[string]interface{}, channel string) Event {
	inner := nestedObject(payload, "payload")

	pick := func(keys ...string) string {
		if v := firstString(payload, keys...); v != "" {
			return v
		}
		if inner != nil {
			return firstString(inner, keys...)
		}
		return ""
	}

	ev := Event{
		VendorMessageID: pick("gsId", "externalId", "id"),
		RawStatus:       pick("type", "status", "eventType"),
		Recipient:       pick("destination", "destAddr", "phone"),
		Reason:          pick("reason", "code"),
		Content:         pick("text", "message"),
		Timestamp:       parseTimestamp(pick("timestamp", "ts")),
	}
	if ev.VendorMessageID == "" {
		ev.VendorMessageID = Unknown
	}
	if ev.Recipient == "" {
		ev.Recipient = Unknown
	}
	ev.Status = Normalize("gupshup", ev.RawStatus)
	return ev
}
