package vendors

import (
	"strings"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
	"github.com/nimasrn/webhook-gateway/pkg/prom"
)

// Per-vendor status vocabularies. Tables are deliberately independent:
// vendors disagree on what the same word means ("queued", "pending" and
// "enroute" all mean sent-not-yet-delivered), so there is no shared table.
// Keys are lower-cased.

var msg91Statuses = map[string]model.CanonicalStatus{
	"queued":    model.StatusSent,
	"pending":   model.StatusSent,
	"sent":      model.StatusSent,
	"submitted": model.StatusSent,
	"enroute":   model.StatusSent,
	"delivered": model.StatusDelivered,
	"read":      model.StatusRead,
	"failed":    model.StatusFailed,
	"rejected":  model.StatusFailed,
	"blocked":   model.StatusFailed,
	"ndnc":      model.StatusFailed,
	"expired":   model.StatusFailed,
}

var twilioStatuses = map[string]model.CanonicalStatus{
	"accepted":    model.StatusSent,
	"queued":      model.StatusSent,
	"sending":     model.StatusSent,
	"sent":        model.StatusSent,
	"delivered":   model.StatusDelivered,
	"read":        model.StatusRead,
	"failed":      model.StatusFailed,
	"undelivered": model.StatusFailed,
	"canceled":    model.StatusFailed,
}

var gupshupStatuses = map[string]model.CanonicalStatus{
	"enqueued":      model.StatusSent,
	"submitted":     model.StatusSent,
	"sent":          model.StatusSent,
	"delivered":     model.StatusDelivered,
	"read":          model.StatusRead,
	"failed":        model.StatusFailed,
	"undeliverable": model.StatusFailed,
}

var sendgridStatuses = map[string]model.CanonicalStatus{
	"processed":         model.StatusSent,
	"deferred":          model.StatusSent,
	"delivered":         model.StatusDelivered,
	"open":              model.StatusRead,
	"click":             model.StatusRead,
	"bounce":            model.StatusFailed,
	"dropped":           model.StatusFailed,
	"spamreport":        model.StatusFailed,
	"unsubscribe":       model.StatusFailed,
	"group_unsubscribe": model.StatusFailed,
}

var plivoStatuses = map[string]model.CanonicalStatus{
	"queued":      model.StatusSent,
	"sent":        model.StatusSent,
	"delivered":   model.StatusDelivered,
	"undelivered": model.StatusFailed,
	"failed":      model.StatusFailed,
	"rejected":    model.StatusFailed,
}

func vocabulary(slug string) map[string]model.CanonicalStatus {
	switch strings.ToLower(slug) {
	case "msg91":
		return msg91Statuses
	case "twilio":
		return twilioStatuses
	case "gupshup":
		return gupshupStatuses
	case "sendgrid", "twilio-sendgrid":
		return sendgridStatuses
	case "plivo":
		return plivoStatuses
	}
	return nil
}

// Normalize maps a vendor status string to a canonical state. Unrecognized
// strings default to sent rather than failing a webhook: availability wins
// over strict validation. The fallback is an explicit, observable branch —
// logged and counted — so vocabulary drift is visible to operators.
func Normalize(slug, raw string) model.CanonicalStatus {
	key := strings.ToLower(strings.TrimSpace(raw))
	if vocab := vocabulary(slug); vocab != nil {
		if status, ok := vocab[key]; ok {
			return status
		}
	}
	logger.Warn("unmapped vendor status, defaulting to sent", "vendor", slug, "status", raw)
	prom.IncStatusUnmapped(slug)
	return model.StatusSent
}
