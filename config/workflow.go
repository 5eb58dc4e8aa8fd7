package config

import (
	"os"
	"strconv"

	"github.com/ruteri/legal-document-registry/interfaces"
)

const EnvListingConcurrency = "LISTING_CONCURRENCY"

// WorkflowConfig tunes the publish and listing workflows.
type WorkflowConfig struct {
	// ListingConcurrency bounds the concurrent record fetches of a listing.
	ListingConcurrency int `toml:"listing_concurrency"`

	// MaxDrafts bounds the drafts the HTTP API keeps in memory.
	MaxDrafts int `toml:"max_drafts"`
}

// Finalize applies defaults, loads environment overrides, and validates the workflow configuration.
func (c *WorkflowConfig) Finalize() error {
	if c.ListingConcurrency == 0 {
		c.ListingConcurrency = 8
	}
	if c.MaxDrafts == 0 {
		c.MaxDrafts = 1024
	}
	if v, err := strconv.Atoi(os.Getenv(EnvListingConcurrency)); err == nil {
		c.ListingConcurrency = v
	}
	if c.ListingConcurrency < 1 {
		return interfaces.ConfigErrorf("listing_concurrency must be positive")
	}
	if c.MaxDrafts < 1 {
		return interfaces.ConfigErrorf("max_drafts must be positive")
	}
	return nil
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *WorkflowConfig) Merge(overlay *WorkflowConfig) {
	if overlay.ListingConcurrency != 0 {
		c.ListingConcurrency = overlay.ListingConcurrency
	}
	if overlay.MaxDrafts != 0 {
		c.MaxDrafts = overlay.MaxDrafts
	}
}
