// Package repository loads startups, investor theses and prior matches for
// the matching workers.
package repository

import (
	"context"
	"database/sql"
	stderrors "errors"

	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/matching"
)

type StartupReader interface {
	GetStartup(ctx context.Context, id string) (*matching.StartupProfile, error)
}

type ThesisReader interface {
	GetThesis(ctx context.Context, id string) (*matching.InvestorThesis, error)
}

// MatchReader lists matches already produced for an investor, newest first.
type MatchReader interface {
	ListMatches(ctx context.Context, investorID string, limit int) ([]matching.MatchRecord, error)
}

type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, thesis matching.InvestorThesis, limit int) ([]matching.StartupProfile, error)
}

// queryError maps a database/sql failure onto the job error codes.
func queryError(ctx context.Context, queryType string, err error) error {
	switch {
	case stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded):
		return errors.NewQueryTimeoutError(queryType)
	case stderrors.Is(err, sql.ErrConnDone) || stderrors.Is(err, context.Canceled):
		return errors.NewDatabaseConnectionFailedError(err)
	default:
		return errors.NewQueryExecutionFailedError(queryType, err)
	}
}
