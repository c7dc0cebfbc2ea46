package vendors

type plivoParser struct{}

func (plivoParser) Slug() string { return "plivo" }

func (plivoParser) Parse(payload map[string]interface{}, channel string) Event {
	ev := Event{
		VendorMessageID: firstString(payload, "MessageUUID", "ParentMessageUUID"),
		RawStatus:       firstString(payload, "Status", "status"),
		Recipient:       firstString(payload, "To", "to"),
		Reason:          firstString(payload, "ErrorCode"),
		Content:         firstString(payload, "Text"),
		Timestamp:       parseTimestamp(firstString(payload, "MessageTime", "timestamp")),
	}
	if ev.VendorMessageID == "" {
		ev.VendorMessageID = Unknown
	}
	if ev.Recipient == "" {
		ev.Recipient = Unknown
	}
	ev.Status = Normalize("plivo", ev.RawStatus)
	return ev
}
