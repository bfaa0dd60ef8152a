// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/matching"

	"github.com/lib/pq"
)

const (
	getStartupQuery = `
		SELECT s.id, s.name, s.tagline, s.description, s.industry, s.stage,
		       s.funding_goal, s.current_funding, s.location,
		       s.website_url, s.logo_url, s.pitch_deck_url, s.created_at,
		       f.full_name, f.bio, f.company, f.linkedin_url, f.location
		FROM startups s
		LEFT JOIN founder_profiles f ON f.user_id = s.founder_id
		WHERE s.id = $1`

	getThesisQuery = `
		SELECT id, investor_id, min_funding_ask, max_funding_ask,
		       preferred_industries, preferred_stages, no_location_pref,
		       preferred_countries, keywords, exclude_keywords, weights
		FROM investor_theses
		WHERE id = $1`

	listMatchesQuery = `
		SELECT m.startup_id, m.overall_score, m.confidence_level,
		       s.name, s.industry, s.stage, s.location
		FROM matches m
		LEFT JOIN startups s ON s.id = m.startup_id
		WHERE m.investor_id = $1
		ORDER BY m.created_at DESC
		LIMIT $2`
)

// PostgresStore reads matching inputs from the primary database.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetStartup(ctx context.Context, id string) (*matching.StartupProfile, error) {
	var (
		p                                        matching.StartupProfile
		tagline, description, location           sql.NullString
		website, logo, deck                      sql.NullString
		goal, current                            sql.NullFloat64
		createdAt                                sql.NullTime
		fullName, bio, company, linkedIn, fLocal sql.NullString
	)

	err := s.db.QueryRowContext(ctx, getStartupQuery, id).Scan(
		&p.ID, &p.Name, &tagline, &description, &p.Industry, &p.Stage,
		&goal, &current, &location,
		&website, &logo, &deck, &createdAt,
		&fullName, &bio, &company, &linkedIn, &fLocal,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewStartupNotFoundError(id)
	}
	if err != nil {
		return nil, queryError(ctx, "get-startup", err)
	}

	p.Tagline = tagline.String
	p.Description = description.String
	p.Location = location.String
	p.WebsiteURL = website.String
	p.LogoURL = logo.String
	p.PitchDeckURL = deck.String
	p.FundingGoal = goal.Float64
	p.CurrentFunding = current.Float64
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time.UTC()
	}

	// The LEFT JOIN yields all-null founder columns when no profile exists.
	if fullName.Valid || bio.Valid || company.Valid || linkedIn.Valid || fLocal.Valid {
		p.Founder = &matching.FounderProfile{
			FullName:    fullName.String,
			Bio:         bio.String,
			Company:     company.String,
			LinkedInURL: linkedIn.String,
			Location:    fLocal.String,
		}
	}
	return &p, nil
}

func (s *PostgresStore) GetThesis(ctx context.Context, id string) (*matching.InvestorThesis, error) {
	var (
		t          matching.InvestorThesis
		investorID sql.NullString
		weights    []byte
	)

	err := s.db.QueryRowContext(ctx, getThesisQuery, id).Scan(
		&t.ID, &investorID, &t.MinFundingAsk, &t.MaxFundingAsk,
		pq.Array(&t.PreferredIndustries), pq.Array(&t.PreferredStages), &t.NoLocationPref,
		pq.Array(&t.PreferredCountries), pq.Array(&t.Keywords), pq.Array(&t.ExcludeKeywords),
		&weights,
	)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewThesisNotFoundError(id)
	}
	if err != nil {
		return nil, queryError(ctx, "get-thesis", err)
	}

	t.InvestorID = investorID.String
	if len(weights) > 0 {
		if err := json.Unmarshal(weights, &t.Weights); err != nil {
			return nil, errors.NewQueryExecutionFailedError("get-thesis",
				fmt.Errorf("decode weights for thesis %s: %w", id, err))
		}
	}
	return &t, nil
}

func (s *PostgresStore) ListMatches(ctx context.Context, investorID string, limit int) ([]matching.MatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, listMatchesQuery, investorID, limit)
	if err != nil {
		return nil, queryError(ctx, "list-matches", err)
	}
	defer rows.Close()

	records := []matching.MatchRecord{}
	for rows.Next() {
		var (
			r                               matching.MatchRecord
			confidence                      string
			name, industry, stage, location sql.NullString
		)
		if err := rows.Scan(&r.StartupID, &r.OverallScore, &confidence,
			&name, &industry, &stage, &location); err != nil {
			return nil, queryError(ctx, "list-matches", err)
		}
		r.ConfidenceLevel = matching.ConfidenceLevel(confidence)
		if name.Valid {
			r.Startup = &matching.StartupSummary{
				ID:       r.StartupID,
				Name:     name.String,
				Industry: industry.String,
				Stage:    stage.String,
				Location: location.String,
			}
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(ctx, "list-matches", err)
	}
	return records, nil
}
