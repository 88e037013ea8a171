package interfaces

import "github.com/stoa-lab/salescredit/pkg/domain/types"

// DefaultPageSize is used when no page size option is given
const DefaultPageSize = 20

// ListClaimOption is a functional option for filtering and paginating
// claim listings
type ListClaimOption func(*listClaimConfig)

type listClaimConfig struct {
	status   *types.ClaimStatus
	page     int
	pageSize int
}

// WithClaimStatus filters claims by status
func WithClaimStatus(status types.ClaimStatus) ListClaimOption {
	return func(c *listClaimConfig) {
		c.status = &status
	}
}

// WithPage selects a zero-based page of the given size
func WithPage(page, pageSize int) ListClaimOption {
	return func(c *listClaimConfig) {
		c.page = page
		c.pageSize = pageSize
	}
}

// BuildListClaimConfig builds a listClaimConfig from options
func BuildListClaimConfig(opts ...ListClaimOption) *listClaimConfig {
	cfg := &listClaimConfig{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.page < 0 {
		cfg.page = 0
	}
	if cfg.pageSize <= 0 {
		cfg.pageSize = DefaultPageSize
	}
	return cfg
}

// Status returns the status filter value, or nil if not set
func (c *listClaimConfig) Status() *types.ClaimStatus {
	return c.status
}

// Offset returns the number of records to skip
func (c *listClaimConfig) Offset() int {
	return c.page * c.pageSize
}

// Limit returns the page size
func (c *listClaimConfig) Limit() int {
	return c.pageSize
}
