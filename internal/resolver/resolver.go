package resolver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/nimasrn/webhook-gateway/internal/model"
	"github.com/nimasrn/webhook-gateway/internal/repository"
	"github.com/nimasrn/webhook-gateway/pkg/logger"
)

type ProjectRepository interface {
	FindByNameOrID(ctx context.Context, key string) (*model.Project, error)
}

type VendorRepository interface {
	FindActiveBySlug(ctx context.Context, slug string) (*model.Vendor, error)
}

type ChannelRepository interface {
	FindActiveByType(ctx context.Context, channelType string) (*model.Channel, error)
}

type BindingRepository interface {
	FindByTriple(ctx context.Context, projectID, vendorID, channelID int64) (*model.Binding, error)
}

// Request carries everything extracted from an inbound webhook call that
// identity resolution needs.
type Request struct {
	ProjectKey  string // numeric id or exact project name from the URL
	VendorSlug  string
	ChannelType string
	Token       string // ?token= query parameter, may be empty
	Signature   string // signature header, may be empty
	Body        []byte // raw body, needed for signature verification
}

// Identity is the resolved tenant binding for a webhook request.
type Identity struct {
	UserID      int64
	ProjectID   int64
	VendorID    int64
	ChannelID   int64
	VendorSlug  string
	ChannelType string
	Binding     *model.Binding
}

type Resolver struct {
	projects ProjectRepository
	vendors  VendorRepository
	channels ChannelRepository
	bindings BindingRepository
	cache    *BindingCache
}

func New(projects ProjectRepository, vendors VendorRepository, channels ChannelRepository, bindings BindingRepository, cache *BindingCache) *Resolver {
	return &Resolver{
		projects: projects,
		vendors:  vendors,
		channels: channels,
		bindings: bindings,
		cache:    cache,
	}
}

// Resolve walks project → vendor → channel → binding, then verifies the
// query token and, for signing vendors, the payload signature. Read-only;
// every miss is a distinct NotFoundError so vendors get a precise 404.
func (r *Resolver) Resolve(ctx context.Context, req Request) (*Identity, error) {
	project, err := r.projects.FindByNameOrID(ctx, req.ProjectKey)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFound(model.NotFoundProject, req.ProjectKey)
		}
		return nil, err
	}

	slug := strings.ToLower(strings.TrimSpace(req.VendorSlug))
	vendor, err := r.vendors.FindActiveBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFound(model.NotFoundVendor, req.VendorSlug)
		}
		return nil, err
	}

	channel, err := r.channels.FindActiveByType(ctx, strings.ToLower(req.ChannelType))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFound(model.NotFoundChannel, req.ChannelType)
		}
		return nil, err
	}

	binding, err := r.lookupBinding(ctx, project.ID, vendor.ID, channel.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewNotFound(model.NotFoundBinding, "")
		}
		return nil, err
	}

	if err := r.authorize(binding, vendor.Slug, req); err != nil {
		return nil, err
	}

	return &Identity{
		UserID:      binding.UserID,
		ProjectID:   project.ID,
		VendorID:    vendor.ID,
		ChannelID:   channel.ID,
		VendorSlug:  vendor.Slug,
		ChannelType: channel.Type,
		Binding:     binding,
	}, nil
}

func (r *Resolver) lookupBinding(ctx context.Context, projectID, vendorID, channelID int64) (*model.Binding, error) {
	if r.cache != nil {
		if binding, ok := r.cache.Get(projectID, vendorID, channelID); ok {
			return binding, nil
		}
	}

	binding, err := r.bindings.FindByTriple(ctx, projectID, vendorID, channelID)
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		r.cache.Put(binding)
	}
	return binding, nil
}

func (r *Resolver) authorize(binding *model.Binding, vendorSlug string, req Request) error {
	if expected := binding.Token(); expected != "" && req.Token != expected {
		return model.ErrUnauthorized
	}

	if !supportsSigning(vendorSlug) || binding.Secret == "" {
		return nil
	}

	if req.Signature == "" {
		// Configured secret without an enforced signature is tolerated
		// during migration periods.
		logger.Warn("signature missing on signed vendor webhook",
			"vendor", vendorSlug, "binding_id", binding.ID)
		return nil
	}

	if !verifySignature(binding.Secret, req.Body, req.Signature) {
		return model.ErrUnauthorized
	}
	return nil
}

// supportsSigning reports whether a vendor signs its webhook payloads.
// Currently only gupshup sends an HMAC-SHA256 over the raw JSON body.
func supportsSigning(slug string) bool {
	return strings.ToLower(slug) == "gupshup"
}

func verifySignature(secret string, body []byte, signature string) bool {
	given, err := hex.DecodeString(strings.TrimPrefix(signature, "sha256="))
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), given)
}
