package fixtures

import (
	"fmt"
	"time"

	"github.com/nimasrn/webhook-gateway/internal/model"
)

var (
	TestVendorMsg91 = model.Vendor{
		ID:     1,
		Slug:   "msg91",
		Name:   "MSG91",
		Active: true,
	}

	TestVendorTwilio = model.Vendor{
		ID:     2,
		Slug:   "twilio",
		Name:   "Twilio",
		Active: true,
	}

	TestVendorGupshup = model.Vendor{
		ID:     3,
		Slug:   "gupshup",
		Name:   "Gupshup",
		Active: true,
	}

	TestVendorInactive = model.Vendor{
		ID:     9,
		Slug:   "legacy",
		Name:   "Legacy Vendor",
		Active: false,
	}

	TestChannelSMS = model.Channel{
		ID:     1,
		Type:   "sms",
		Active: true,
	}

	TestChannelWhatsApp = model.Channel{
		ID:     2,
		Type:   "whatsapp",
		Active: true,
	}

	TestChannelEmail = model.Channel{
		ID:     3,
		Type:   "email",
		Active: true,
	}

	TestProject = model.Project{
		ID:     1,
		UserID: 1,
		Name:   "demo",
		Active: true,
	}
)

func NewTestBinding(projectID, vendorID, channelID int64, token, secret string) *model.Binding {
	return &model.Binding{
		UserID:     1,
		ProjectID:  projectID,
		VendorID:   vendorID,
		ChannelID:  channelID,
		WebhookURL: fmt.Sprintf("https://gw.example.com/webhook/demo?token=%s", token),
		Secret:     secret,
		Active:     true,
		CreatedAt:  time.Now(),
	}
}

func NewTestMessage(userID, projectID, vendorID, channelID int64, vendorMessageID, recipient string) *model.Message {
	return &model.Message{
		UserID:          userID,
		ProjectID:       projectID,
		VendorID:        vendorID,
		ChannelID:       channelID,
		VendorMessageID: vendorMessageID,
		Recipient:       recipient,
		CreatedAt:       time.Now(),
	}
}

func NewTestEvent(messageID int64, status model.CanonicalStatus, at time.Time) *model.MessageEvent {
	return &model.MessageEvent{
		MessageID:      messageID,
		Status:         status,
		EventTimestamp: at,
		RawPayload:     "{}",
		UserID:         1,
		ProjectID:      1,
		VendorID:       1,
		ChannelID:      1,
	}
}

var (
	ValidRecipients = []string{
		"+1234567890",
		"+9876543210",
		"+4412345678",
		"user@example.com",
	}

	Msg91DeliveredPayload = []byte(`{"requestId":"r-100","eventName":"delivered","number":"+15550001111","ts":1736900000}`)

	TwilioFailedPayload = []byte(`{"MessageSid":"SM100","MessageStatus":"undelivered","To":"+15550002222","ErrorCode":30005}`)

	GupshupReadPayload = []byte(`{"app":"demo","payload":{"gsId":"g-100","type":"read","destination":"+15550003333","ts":1736900000000}}`)

	SendgridBatchPayload = []byte(`[{"sg_message_id":"sg-1.f1","event":"delivered","email":"a@example.com","timestamp":1736900000},{"sg_message_id":"sg-2.f1","event":"open","email":"b@example.com","timestamp":1736900060}]`)
)

func MessageFilterByProject(projectID int64) model.MessageFilter {
	return model.MessageFilter{
		ProjectID: &projectID,
		Limit:     50,
		Offset:    0,
		Desc:      false,
	}
}

func MessageFilterWithPagination(projectID int64, limit, offset int) model.MessageFilter {
	return model.MessageFilter{
		ProjectID: &projectID,
		Limit:     limit,
		Offset:    offset,
		Desc:      false,
	}
}

func MessageFilterByRecipient(projectID int64, recipient string) model.MessageFilter {
	return model.MessageFilter{
		ProjectID: &projectID,
		Recipient: &recipient,
		Limit:     50,
		Offset:    0,
		Desc:      false,
	}
}

func MessageFilterByTimeRange(projectID int64, from, to time.Time) model.MessageFilter {
	return model.MessageFilter{
		ProjectID: &projectID,
		From:      &from,
		To:        &to,
		Limit:     50,
		Offset:    0,
		Desc:      false,
	}
}
