package vendors

// twilio status callbacks use PascalCase fields; SMS and WhatsApp callbacks
// share the shape but WhatsApp prefixes recipients with "whatsapp:".
type twilioParser struct{}

func (twilioParser) Slug() string { return "twilio" }

func (twilioParser) Parse(payload map[string]interface{}, channel string) Event {
	ev := Event{
		VendorMessageID: firstString(payload, "MessageSid", "SmsSid", "MessageUUID"),
		RawStatus:       firstString(payload, "MessageStatus", "SmsStatus", "EventType"),
		Recipient:       firstString(payload, "To", "to"),
		Reason:          firstString(payload, "ErrorMessage", "ErrorCode"),
		Content:         firstString(payload, "Body"),
		Timestamp:       parseTimestamp(firstString(payload, "Timestamp", "DateUpdated", "DateSent")),
	}
	if ev.VendorMessageID == "" {
		ev.VendorMessageID = Unknown
	}
	if ev.Recipient == "" {
		ev.Recipient = Unknown
	}
	ev.Status = Normalize("twilio", ev.RawStatus)
	return ev
}
