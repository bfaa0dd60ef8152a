package repository

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearcher(t *testing.T, status int, body string, capture *map[string]interface{}) *ElasticsearchSearcher {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if capture != nil {
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, capture)
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return NewElasticsearchSearcher(client, "startups")
}

func TestElasticsearchSearcher_SearchCandidates(t *testing.T) {
	var sent map[string]interface{}
	searcher := newSearcher(t, http.StatusOK, `{
		"hits": {"hits": [
			{"_id": "startup-1", "_source": {"id": "startup-1", "name": "HealthAI", "industry": "Healthcare", "stage": "Seed", "fundingGoal": 500000}},
			{"_id": "startup-2", "_source": {"name": "NoID", "industry": "Fintech"}}
		]}
	}`, &sent)

	thesis := matching.InvestorThesis{
		PreferredIndustries: []string{"Healthcare"},
		MinFundingAsk:       250000,
		MaxFundingAsk:       1000000,
	}
	got, err := searcher.SearchCandidates(context.Background(), thesis, 25)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 500000.0, got[0].FundingGoal)
	assert.Equal(t, "startup-2", got[1].ID)

	boolQuery := sent["query"].(map[string]interface{})["bool"].(map[string]interface{})
	assert.Len(t, boolQuery["should"], 1)
	assert.Len(t, boolQuery["filter"], 1)
}

func TestElasticsearchSearcher_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   errors.ErrorCode
	}{
		{"missing index", http.StatusNotFound, `{"error":{"type":"index_not_found_exception"},"status":404}`, errors.ErrCodeIndexNotFound},
		{"bad query", http.StatusBadRequest, `{"error":{"type":"parsing_exception"},"status":400}`, errors.ErrCodeSearchQueryFailed},
		{"garbage body", http.StatusOK, `not json`, errors.ErrCodeSearchQueryFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := newSearcher(t, tt.status, tt.body, nil)
			_, err := searcher.SearchCandidates(context.Background(), matching.InvestorThesis{}, 10)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestBuildCandidateQuery(t *testing.T) {
	t.Run("no preferences matches everything", func(t *testing.T) {
		q := buildCandidateQuery(matching.InvestorThesis{})
		boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
		assert.Contains(t, boolQuery, "must")
		assert.NotContains(t, boolQuery, "filter")
	})

	t.Run("keywords become multi_match clauses", func(t *testing.T) {
		q := buildCandidateQuery(matching.InvestorThesis{
			PreferredStages: []string{"Seed"},
			Keywords:        []string{"AI", " ", "clinics"},
		})
		boolQuery := q["query"].(map[string]interface{})["bool"].(map[string]interface{})
		assert.Len(t, boolQuery["should"], 3)
	})
}
