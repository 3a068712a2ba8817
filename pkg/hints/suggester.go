package hints

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ekaya-inc/join-advisor/pkg/config"
	"github.com/ekaya-inc/join-advisor/pkg/models"
)

const suggesterSystemPrompt = `You are a data analyst suggesting join keys between two tabular datasets. You see only column metadata, never row values. Respond with JSON only.`

// Hint is one suggested join-field pairing returned by the collaborator.
// Rationale is display text only; nothing downstream consumes it.
type Hint struct {
	LeftColumn  string `json:"left_column"`
	RightColumn string `json:"right_column"`
	Rationale   string `json:"rationale"`
}

// Suggester asks the hint provider for join-key suggestions based on column
// metadata. Suggestions are untrusted: callers must validate every returned
// pair against the snapshots before acting on it, and Suggest already drops
// pairs naming unknown columns.
type Suggester struct {
	client         Client
	maxSuggestions int
	temperature    float64
	logger         *zap.Logger
}

// NewSuggester creates a Suggester.
func NewSuggester(client Client, cfg config.HintsConfig, logger *zap.Logger) *Suggester {
	return &Suggester{
		client:         client,
		maxSuggestions: cfg.MaxSuggestions,
		temperature:    cfg.Temperature,
		logger:         logger.Named("suggester"),
	}
}

// Suggest returns up to MaxSuggestions validated field-pair hints.
// Only column metadata from the snapshots is sent to the provider.
func (s *Suggester) Suggest(ctx context.Context, left, right *models.TableSnapshot) ([]Hint, error) {
	prompt := s.buildPrompt(left, right)

	response, err := s.client.GenerateResponse(ctx, prompt, suggesterSystemPrompt, s.temperature)
	if err != nil {
		return nil, fmt.Errorf("generate hints: %w", err)
	}

	raw, err := ParseJSONResponse[[]Hint](response)
	if err != nil {
		return nil, fmt.Errorf("parse hints: %w", err)
	}

	hints := make([]Hint, 0, len(raw))
	for _, h := range raw {
		if _, ok := left.Column(h.LeftColumn); !ok {
			s.logger.Warn("hint references unknown left column", zap.String("column", h.LeftColumn))
			continue
		}
		if _, ok := right.Column(h.RightColumn); !ok {
			s.logger.Warn("hint references unknown right column", zap.String("column", h.RightColumn))
			continue
		}
		hints = append(hints, h)
		if len(hints) >= s.maxSuggestions {
			break
		}
	}

	s.logger.Info("hints generated",
		zap.Int("returned", len(raw)),
		zap.Int("accepted", len(hints)))

	return hints, nil
}

func (s *Suggester) buildPrompt(left, right *models.TableSnapshot) string {
	var b strings.Builder

	b.WriteString("Suggest join-key column pairings between these two datasets.\n\n")
	writeSnapshot(&b, "Dataset A (left)", left)
	writeSnapshot(&b, "Dataset B (right)", right)

	fmt.Fprintf(&b, `Return a JSON array of at most %d suggestions, best first:
[{"left_column": "<column from dataset A>", "right_column": "<column from dataset B>", "rationale": "<one sentence>"}]

Only pair columns of compatible types. Return [] if no pairing makes sense.`, s.maxSuggestions)

	return b.String()
}

func writeSnapshot(b *strings.Builder, title string, snap *models.TableSnapshot) {
	fmt.Fprintf(b, "%s: %q, %d rows\n", title, snap.SourceID, snap.RowCount)
	for _, col := range snap.Columns {
		fmt.Fprintf(b, "  - %s: type=%s distinct=%d null_rate=%.2f\n",
			col.Name, col.Type, col.DistinctCount, col.NullRate)
	}
	b.WriteString("\n")
}
