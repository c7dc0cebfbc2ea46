package vendors

// sendgrid posts arrays of discrete email events per request; ParseBody
// splits the array and invokes this parser once per entry. Timestamps are
// unix seconds.
type sendgridParser struct{}

func (sendgridParser) Slug() string { return "sendgrid" }

func (sendgridParser) Parse(payload map[string]interface{}, channel string) Event {
	ev := Event{
		VendorMessageID: firstString(payload, "sg_message_id", "smtp-id", "sg_event_id"),
		RawStatus:       firstString(payload, "event", "status"),
		Recipient:       firstString(payload, "email", "to"),
		Reason:          firstString(payload, "reason", "response", "type"),
		Content:         firstString(payload, "subject", "category"),
		Timestamp:       parseTimestamp(firstString(payload, "timestamp")),
	}
	if ev.VendorMessageID == "" {
		ev.VendorMessageID = Unknown
	}
	if ev.Recipient == "" {
		ev.Recipient = Unknown
	}
	ev.Status = Normalize("sendgrid", ev.RawStatus)
	return ev
}
