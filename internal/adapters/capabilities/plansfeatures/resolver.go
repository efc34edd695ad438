package plansfeatures

import (
	"context"
	"errors"
	"strings"

	"caregiver-assistant/internal/ports/capabilities"
)

// Resolver implementa capabilities.CapabilitiesResolver contra plans-features.
type Resolver struct {
	client   *Client
	allowAll bool
}

// NewResolver: con allowAll (ALLOW_ALL_CAPABILITIES) todo devuelve true sin
// llamar upstream (modo dev).
func NewResolver(client *Client, allowAll bool) *Resolver {
	return &Resolver{
		client:   client,
		allowAll: allowAll,
	}
}

func (r *Resolver) HasFeature(ctx context.Context, in capabilities.CapabilityCheck) (bool, error) {
	feature := strings.TrimSpace(in.Feature)
	if feature == "" {
		return false, errors.New("capability required")
	}
	if r == nil {
		return false, ErrPlansNotConfigured
	}
	if r.allowAll {
		return true, nil
	}
	if !r.client.IsConfigured() {
		// sin plans-features preferimos negar
		return false, ErrPlansNotConfigured
	}

	resp, err := r.client.GetCapabilities(ctx, in.UserID)
	if err != nil {
		return false, err
	}
	return resp.Capabilities[feature] || resp.Capabilities["*"], nil
}
