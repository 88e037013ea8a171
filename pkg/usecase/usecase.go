package usecase

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model/config"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/service/credit"
	"github.com/stoa-lab/salescredit/pkg/service/decision"
)

// UseCases wires the claim pipeline together: ingestion, extraction,
// credit calculation, decision, review workflow, and the ledger.
type UseCases struct {
	repo       interfaces.Repository
	cfg        *config.CreditConfig
	calculator *credit.Calculator
	engine     *decision.Engine
	extractor  interfaces.Extractor
	notifier   interfaces.Notifier

	// dedup is the fast-path guard for the submission dedup window; the
	// fingerprint query against the repository is the canonical check.
	dedup *gocache.Cache

	// convLocks serializes turns within one conversation. Different
	// conversations and different members proceed fully in parallel.
	convLocks sync.Map // types.ConversationID -> *sync.Mutex

	now func() time.Time
}

type Option func(*UseCases)

// WithExtractor sets the extraction adapter
func WithExtractor(e interfaces.Extractor) Option {
	return func(uc *UseCases) {
		uc.extractor = e
	}
}

// WithNotifier sets the fire-and-forget decision event sink
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// New creates the use case layer over the given repository and credit
// configuration
func New(repo interfaces.Repository, cfg *config.CreditConfig, opts ...Option) *UseCases {
	if cfg == nil {
		cfg = config.Default()
	}

	uc := &UseCases{
		repo:       repo,
		cfg:        cfg,
		calculator: credit.NewCalculator(cfg),
		engine:     decision.NewEngine(cfg),
		dedup:      gocache.New(cfg.DedupWindow, 2*cfg.DedupWindow),
		now:        func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// lockConversation acquires the per-conversation mutex. The returned
// function releases it. A claim with no conversation needs no lock.
func (uc *UseCases) lockConversation(id types.ConversationID) func() {
	if id == "" {
		return func() {}
	}
	v, _ := uc.convLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
