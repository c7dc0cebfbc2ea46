package handlers

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fasthttp/router"
	"github.com/nimasrn/webhook-gateway/internal/dispatch"
	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/resolver"
	xhttp "github.com/nimasrn/webhook-gateway/pkg/http"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
)

type WebhookService interface {
	Accept(ctx context.Context, req resolver.Request) (*resolver.Identity, dispatch.Mode, error)
}

type WebhookHandler struct {
	svc WebhookService
}

func NewWebhookHandler(svc WebhookService) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func RegisterWebhookRoutes(r *router.Router, h *WebhookHandler) {
	r.POST("/webhook/{project}/{vendor}/{channel}", h.Receive)
}

type webhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Project string `json:"project"`
	Vendor  string `json:"vendor"`
	Channel string `json:"channel"`
}

// Receive handles one vendor status callback. Routing or auth failures are
// the only non-200 outcomes vendors normally see; queue-path processing
// failures never affect the response, and inline failures surface as 500.
func (h *WebhookHandler) Receive(ctx *xhttp.RequestCtx) {
	project := param(ctx, "project")
	vendor := param(ctx, "vendor")
	channel := param(ctx, "channel")
	if project == "" || vendor == "" || channel == "" {
		writeError(ctx, 400, "invalid webhook route")
		return
	}

	body := ctx.PostBody()
	if len(body) == 0 {
		writeError(ctx, 400, "empty payload")
		return
	}

	req := resolver.Request{
		ProjectKey:  project,
		VendorSlug:  vendor,
		ChannelType: channel,
		Token:       query(ctx, "token"),
		Signature:   signatureHeader(ctx),
		Body:        body,
	}

	identity, mode, err := h.svc.Accept(ctx, req)
	if err != nil {
		h.writeAcceptError(ctx, vendor, err)
		return
	}

	logger.Info("webhook accepted",
		"project", project, "vendor", identity.VendorSlug,
		"channel", identity.ChannelType, "mode", string(mode))

	writeJSON(ctx, 200, webhookResponse{
		Success: true,
		Message: "webhook received",
		Project: project,
		Vendor:  identity.VendorSlug,
		Channel: identity.ChannelType,
	})
}

func (h *WebhookHandler) writeAcceptError(ctx *xhttp.RequestCtx, vendor string, err error) {
	var nf *model.NotFoundError
	switch {
	case errors.As(err, &nf):
		writeError(ctx, 404, nf.Error())
	case errors.Is(err, model.ErrUnauthorized):
		writeError(ctx, 401, "unauthorized")
	default:
		// Inline processing failed after successful routing; queued jobs
		// never reach this branch.
		logger.Error("inline webhook processing failed", "vendor", vendor, "error", err)
		writeError(ctx, 500, "failed to process webhook")
	}
}

func signatureHeader(ctx *xhttp.RequestCtx) string {
	for _, name := range []string{"X-Webhook-Signature", "X-Gupshup-Signature"} {
		if v := ctx.Request.Header.Peek(name); len(v) > 0 {
			return string(v)
		}
	}
	return ""
}

func param(ctx *xhttp.RequestCtx, name string) string {
	if v, ok := ctx.UserValue(name).(string); ok {
		return v
	}
	return ""
}

func query(ctx *xhttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

func writeError(ctx *xhttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, map[string]string{"error": msg})
}
