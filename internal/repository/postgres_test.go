package repository

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/matching"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var startupColumns = []string{
	"id", "name", "tagline", "description", "industry", "stage",
	"funding_goal", "current_funding", "location",
	"website_url", "logo_url", "pitch_deck_url", "created_at",
	"full_name", "bio", "company", "linkedin_url", "location",
}

func setupMockDB(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestPostgresStore_GetStartup(t *testing.T) {
	store, mock := setupMockDB(t)
	created := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM startups s").
		WithArgs("startup-1").
		WillReturnRows(sqlmock.NewRows(startupColumns).AddRow(
			"startup-1", "HealthAI", "AI triage", "AI for clinics", "Healthcare", "Seed",
			500000.0, 150000.0, "Boston, USA",
			"https://healthai.example", nil, "https://deck.example", created,
			"Jane Doe", "Ex-Google", "HealthAI", nil, "Boston",
		))

	got, err := store.GetStartup(context.Background(), "startup-1")
	require.NoError(t, err)

	assert.Equal(t, "HealthAI", got.Name)
	assert.Equal(t, 500000.0, got.FundingGoal)
	assert.Equal(t, "", got.LogoURL)
	assert.Equal(t, created, got.CreatedAt)
	require.NotNil(t, got.Founder)
	assert.Equal(t, "Ex-Google", got.Founder.Bio)
	assert.Equal(t, "", got.Founder.LinkedInURL)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetStartup_NoFounder(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM startups s").
		WithArgs("startup-2").
		WillReturnRows(sqlmock.NewRows(startupColumns).AddRow(
			"startup-2", "Bare", nil, nil, "Fintech", "Pre-Seed",
			nil, nil, nil,
			nil, nil, nil, nil,
			nil, nil, nil, nil, nil,
		))

	got, err := store.GetStartup(context.Background(), "startup-2")
	require.NoError(t, err)
	assert.Nil(t, got.Founder)
	assert.True(t, got.CreatedAt.IsZero())
	assert.Zero(t, got.FundingGoal)
}

func TestPostgresStore_GetStartup_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code errors.ErrorCode
	}{
		{"not found", nil, errors.ErrCodeStartupNotFound},
		{"query failure", stderrors.New("relation does not exist"), errors.ErrCodeQueryExecutionFailed},
		{"timeout", context.DeadlineExceeded, errors.ErrCodeQueryTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := setupMockDB(t)
			q := mock.ExpectQuery("FROM startups s").WithArgs("missing")
			if tt.err == nil {
				q.WillReturnRows(sqlmock.NewRows(startupColumns))
			} else {
				q.WillReturnError(tt.err)
			}

			_, err := store.GetStartup(context.Background(), "missing")
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

var thesisColumns = []string{
	"id", "investor_id", "min_funding_ask", "max_funding_ask",
	"preferred_industries", "preferred_stages", "no_location_pref",
	"preferred_countries", "keywords", "exclude_keywords", "weights",
}

func TestPostgresStore_GetThesis(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM investor_theses").
		WithArgs("thesis-1").
		WillReturnRows(sqlmock.NewRows(thesisColumns).AddRow(
			"thesis-1", "investor-9", 250000.0, 1000000.0,
			"{Healthcare,Fintech}", "{Seed}", false,
			"{USA}", "{AI,healthcare}", "{crypto}",
			[]byte(`{"industry":0.3,"stage":0.2,"funding":0.2,"location":0.1,"traction":0.1,"team":0.1}`),
		))

	got, err := store.GetThesis(context.Background(), "thesis-1")
	require.NoError(t, err)

	assert.Equal(t, "investor-9", got.InvestorID)
	assert.Equal(t, []string{"Healthcare", "Fintech"}, got.PreferredIndustries)
	assert.Equal(t, []string{"crypto"}, got.ExcludeKeywords)
	assert.Equal(t, matching.FactorWeights{
		Industry: 0.3, Stage: 0.2, Funding: 0.2, Location: 0.1, Traction: 0.1, Team: 0.1,
	}, got.Weights)
}

func TestPostgresStore_GetThesis_Errors(t *testing.T) {
	store, mock := setupMockDB(t)
	mock.ExpectQuery("FROM investor_theses").WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(thesisColumns))

	_, err := store.GetThesis(context.Background(), "nope")
	assert.True(t, errors.HasCode(err, errors.ErrCodeThesisNotFound))

	mock.ExpectQuery("FROM investor_theses").WithArgs("bad-weights").
		WillReturnRows(sqlmock.NewRows(thesisColumns).AddRow(
			"bad-weights", nil, 0.0, 0.0, "{}", "{}", true, "{}", "{}", "{}", []byte(`not json`),
		))

	_, err = store.GetThesis(context.Background(), "bad-weights")
	assert.True(t, errors.HasCode(err, errors.ErrCodeQueryExecutionFailed))
}

func TestPostgresStore_ListMatches(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM matches m").
		WithArgs("investor-9", 100).
		WillReturnRows(sqlmock.NewRows([]string{
			"startup_id", "overall_score", "confidence_level", "name", "industry", "stage", "location",
		}).
			AddRow("startup-1", 91.0, "high", "HealthAI", "Healthcare", "Seed", "Boston").
			AddRow("startup-gone", 55.0, "low", nil, nil, nil, nil))

	got, err := store.ListMatches(context.Background(), "investor-9", 100)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, matching.ConfidenceHigh, got[0].ConfidenceLevel)
	assert.Equal(t, "Healthcare", got[0].Startup.Industry)
	assert.Nil(t, got[1].Startup)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListMatches_RowError(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery("FROM matches m").
		WithArgs("investor-9", 10).
		WillReturnRows(sqlmock.NewRows([]string{
			"startup_id", "overall_score", "confidence_level", "name", "industry", "stage", "location",
		}).
			AddRow("startup-1", 91.0, "high", "HealthAI", "Healthcare", "Seed", "Boston").
			RowError(0, stderrors.New("connection reset")))

	_, err := store.ListMatches(context.Background(), "investor-9", 10)
	assert.True(t, errors.HasCode(err, errors.ErrCodeQueryExecutionFailed))
}
