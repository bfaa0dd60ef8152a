// internal/matching/batch.go
package matching

import (
	"context"

	"golang.org/x/sync/errgroup"
)

const defaultBatchConcurrency = 8

// ScoreBatch scores every startup against one thesis in parallel. All
// candidates see the same existing snapshot, so results do not depend on
// scheduling order. Output order matches input order.
func (e *Engine) ScoreBatch(ctx context.Context, startups []StartupProfile, thesis InvestorThesis, existing []MatchRecord, concurrency int) ([]MatchResult, error) {
	if concurrency <= 0 {
		concurrency = defaultBatchConcurrency
	}

	results := make([]MatchResult, len(startups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i := range startups {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = e.ScoreMatch(startups[i], thesis, existing)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
