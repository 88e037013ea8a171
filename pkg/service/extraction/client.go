package extraction

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/stoa-lab/salescredit/pkg/domain/interfaces"
	"github.com/stoa-lab/salescredit/pkg/domain/model"
	"github.com/stoa-lab/salescredit/pkg/domain/types"
	"github.com/stoa-lab/salescredit/pkg/utils/logging"
	"golang.org/x/sync/semaphore"
)

//go:embed prompt/extract_system.md
var extractSystemPrompt string

const (
	// DefaultTimeout bounds one extraction call; the provider is slow
	// and unreliable, and a claim must never hang on it
	DefaultTimeout = 15 * time.Second

	// DefaultMaxTurns is how many trailing conversation turns are kept
	// in the prompt
	DefaultMaxTurns = 10

	// DefaultMaxConcurrency bounds in-flight provider calls
	DefaultMaxConcurrency = 8
)

// Client is the gollem-backed extraction adapter. It is stateless
// between turns; conversation history is owned and bounded by the
// caller.
type Client struct {
	llmClient gollem.LLMClient
	timeout   time.Duration
	maxTurns  int
	sem       *semaphore.Weighted
}

var _ interfaces.Extractor = &Client{}

type Option func(*Client)

// WithTimeout overrides the per-call timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxTurns overrides how many trailing turns are kept
func WithMaxTurns(n int) Option {
	return func(c *Client) {
		c.maxTurns = n
	}
}

// New creates an extraction client over the given LLM client
func New(llmClient gollem.LLMClient, opts ...Option) *Client {
	c := &Client{
		llmClient: llmClient,
		timeout:   DefaultTimeout,
		maxTurns:  DefaultMaxTurns,
		sem:       semaphore.NewWeighted(DefaultMaxConcurrency),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Extract turns raw text plus bounded history into a structured result.
// It never fails past this boundary: any provider error or timeout
// yields the deterministic fallback result instead, and the claim
// pipeline proceeds.
func (c *Client) Extract(ctx context.Context, text string, turns []model.ConversationTurn) *model.ExtractionResult {
	result, err := c.extract(ctx, text, turns)
	if err != nil {
		logging.From(ctx).Warn("extraction provider failed, using fallback",
			"error", err.Error(),
		)
		return Fallback()
	}
	return result
}

func (c *Client) extract(ctx context.Context, text string, turns []model.ConversationTurn) (*model.ExtractionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, goerr.Wrap(err, "failed to acquire extraction slot")
	}
	defer c.sem.Release(1)

	session, err := c.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(buildResponseSchema()),
		gollem.WithSessionSystemPrompt(extractSystemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create LLM session")
	}

	userPrompt := buildUserPrompt(text, model.BoundTurns(turns, c.maxTurns))

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate extraction")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("empty extraction response")
	}

	var raw rawExtraction
	if err := json.Unmarshal([]byte(resp.Texts[0]), &raw); err != nil {
		return nil, goerr.Wrap(err, "failed to parse extraction response", goerr.V("response", resp.Texts[0]))
	}

	result, err := raw.toResult()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid extraction response")
	}

	return result, nil
}

func buildUserPrompt(text string, turns []model.ConversationTurn) string {
	var sb strings.Builder

	if len(turns) > 0 {
		sb.WriteString("## Recent conversation\n\n")
		for _, turn := range turns {
			fmt.Fprintf(&sb, "%s: %s\n", turn.Speaker, turn.Text)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Member's claim\n\n")
	sb.WriteString(text)
	sb.WriteString("\n")

	return sb.String()
}

// rawExtraction is the wire shape of the provider response
type rawExtraction struct {
	Category         string   `json:"category"`
	Confidence       float64  `json:"confidence"`
	NeedsFollowUp    bool     `json:"needs_follow_up"`
	FollowUpQuestion string   `json:"follow_up_question"`
	ReplyText        string   `json:"reply_text"`
	Products         []string `json:"products"`
	CustomerName     string   `json:"customer_name"`
	TimeHint         string   `json:"time_hint"`
	Task             string   `json:"task"`
	Topic            string   `json:"topic"`
	Problem          string   `json:"problem"`
	Resolution       string   `json:"resolution"`
}

func (r *rawExtraction) toResult() (*model.ExtractionResult, error) {
	category, err := types.ParseCategory(r.Category)
	if err != nil {
		return nil, goerr.Wrap(err, "provider returned unknown category", goerr.V("category", r.Category))
	}

	result := &model.ExtractionResult{
		Category:         category,
		Confidence:       types.Confidence(r.Confidence).Clamp(),
		NeedsFollowUp:    r.NeedsFollowUp,
		FollowUpQuestion: r.FollowUpQuestion,
		ReplyText:        r.ReplyText,
	}

	switch category {
	case types.CategoryRecommendation:
		result.Recommendation = &model.RecommendationDetail{
			Products:     r.Products,
			CustomerName: r.CustomerName,
			TimeHint:     r.TimeHint,
		}
	case types.CategoryAssistance:
		result.Assistance = &model.AssistanceDetail{
			Task:         r.Task,
			Products:     r.Products,
			CustomerName: r.CustomerName,
			TimeHint:     r.TimeHint,
		}
	case types.CategoryConsultation:
		result.Consultation = &model.ConsultationDetail{
			Topic:        r.Topic,
			Products:     r.Products,
			CustomerName: r.CustomerName,
			TimeHint:     r.TimeHint,
		}
	case types.CategoryProblemSolving:
		result.ProblemSolving = &model.ProblemSolvingDetail{
			Problem:      r.Problem,
			Resolution:   r.Resolution,
			CustomerName: r.CustomerName,
			TimeHint:     r.TimeHint,
		}
	}

	return result, nil
}

func buildResponseSchema() *gollem.Parameter {
	return &gollem.Parameter{
		Title:       "ClaimExtraction",
		Description: "Structured extraction of one sales-assistance claim",
		Type:        gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"category": {
				Type:        gollem.TypeString,
				Description: "One of: recommendation, assistance, consultation, problem-solving",
				Required:    true,
			},
			"confidence": {
				Type:        gollem.TypeNumber,
				Description: "How specific and verifiable the claim is, 0.0 to 1.0",
				Required:    true,
			},
			"needs_follow_up": {
				Type:        gollem.TypeBoolean,
				Description: "True when the claim is too vague to credit without one more answer",
				Required:    true,
			},
			"follow_up_question": {
				Type:        gollem.TypeString,
				Description: "One short question to ask the member, empty unless needs_follow_up",
			},
			"reply_text": {
				Type:        gollem.TypeString,
				Description: "One friendly sentence acknowledging the member",
				Required:    true,
			},
			"products": {
				Type:        gollem.TypeArray,
				Description: "Product names mentioned, if any",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
			},
			"customer_name": {
				Type:        gollem.TypeString,
				Description: "Customer name or description, if mentioned",
			},
			"time_hint": {
				Type:        gollem.TypeString,
				Description: "When the assistance happened, as stated by the member",
			},
			"task": {
				Type:        gollem.TypeString,
				Description: "What the member did, for assistance claims",
			},
			"topic": {
				Type:        gollem.TypeString,
				Description: "What the advice covered, for consultation claims",
			},
			"problem": {
				Type:        gollem.TypeString,
				Description: "The customer's problem, for problem-solving claims",
			},
			"resolution": {
				Type:        gollem.TypeString,
				Description: "How it was resolved, for problem-solving claims",
			},
		},
	}
}
