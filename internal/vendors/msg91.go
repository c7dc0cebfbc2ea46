package vendors

// msg91 reports SMS and WhatsApp callbacks with inconsistent field naming
// across its own channel types (requestId vs request_id, number vs mobile).
type msg91Parser struct{}

func (msg91Parser) Slug() string { return "msg91" }

func (msg91Parser) Parse(payload map[string]interface{}, channel string) Event {
	ev := Event{
		VendorMessageID: firstString(payload, "requestId", "request_id", "msgId"),
		RawStatus:       firstString(payload, "eventName", "event", "status"),
		Recipient:       firstString(payload, "number", "mobile", "recipient", "to"),
		Reason:          firstString(payload, "failureReason", "reason", "description"),
		Content:         firstString(payload, "content", "message", "text"),
		Timestamp:       parseTimestamp(firstString(payload, "ts", "timestamp", "date")),
	}
	if ev.VendorMessageID == "" {
		ev.VendorMessageID = Unknown
	}
	if ev.Recipient == "" {
		ev.Recipient = Unknown
	}
	ev.Status = Normalize("msg91", ev.RawStatus)
	return ev
}
