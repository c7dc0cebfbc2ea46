package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/nimasrn/webhook-gateway/internal/pipeline"
	xhttp "github.com/nimasrn/webhook-gateway/pkg/http"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
)

type BackfillRunner interface {
	Run(ctx context.Context) (*pipeline.BackfillReport, error)
}

// BackfillHandler exposes the reference-id reconciliation job. Access
// control for the admin group is applied by the routing/auth layer in
// front of this service.
type BackfillHandler struct {
	job BackfillRunner
}

func NewBackfillHandler(job BackfillRunner) *BackfillHandler {
	return &BackfillHandler{job: job}
}

func RegisterBackfillRoutes(g *router.Group, h *BackfillHandler) {
	g.POST("/backfill/references", h.Run)
}

func (h *BackfillHandler) Run(ctx *xhttp.RequestCtx) {
	report, err := h.job.Run(ctx)
	if err != nil {
		logger.Error("backfill run failed", "error", err)
		writeError(ctx, 500, "backfill failed: "+err.Error())
		return
	}
	writeJSON(ctx, 200, report)
}
