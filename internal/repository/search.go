// internal/repository/search.go
package repository

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	"dealflow-workers/internal/common/errors"
	"dealflow-workers/internal/matching"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticsearchSearcher finds candidate startups for a thesis. It only
// narrows the pool; the engine does the scoring.
type ElasticsearchSearcher struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchSearcher(client *elasticsearch.Client, index string) *ElasticsearchSearcher {
	return &ElasticsearchSearcher{client: client, index: index}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string                  `json:"_id"`
			Source matching.StartupProfile `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSearcher) SearchCandidates(ctx context.Context, thesis matching.InvestorThesis, limit int) ([]matching.StartupProfile, error) {
	body, err := json.Marshal(buildCandidateQuery(thesis))
	if err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("encode candidate query: %w", err))
	}

	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
		Size:  &limit,
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) || stderrors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, errors.NewSearchTimeoutError("candidate-search")
		}
		return nil, errors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, searchStatusError(s.index, res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError("candidate-search", fmt.Errorf("decode response: %w", err))
	}

	out := make([]matching.StartupProfile, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		p := hit.Source
		if p.ID == "" {
			p.ID = hit.ID
		}
		out = append(out, p)
	}
	return out, nil
}

// buildCandidateQuery prefers startups in the thesis's industries and
// stages and filters on funding goal when the thesis sets a range. With no
// preferences it falls back to newest first.
func buildCandidateQuery(thesis matching.InvestorThesis) map[string]interface{} {
	should := []interface{}{}
	if len(thesis.PreferredIndustries) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"industry": thesis.PreferredIndustries, "boost": 2},
		})
	}
	if len(thesis.PreferredStages) > 0 {
		should = append(should, map[string]interface{}{
			"terms": map[string]interface{}{"stage": thesis.PreferredStages},
		})
	}
	for _, kw := range thesis.Keywords {
		if kw = strings.TrimSpace(kw); kw == "" {
			continue
		}
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  kw,
				"fields": []string{"name^2", "tagline", "description"},
			},
		})
	}

	boolQuery := map[string]interface{}{}
	if len(should) > 0 {
		boolQuery["should"] = should
	} else {
		boolQuery["must"] = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}

	if thesis.MaxFundingAsk > 0 {
		// A loose band so near-misses still reach the funding scorer.
		boolQuery["filter"] = []interface{}{map[string]interface{}{
			"range": map[string]interface{}{
				"fundingGoal": map[string]interface{}{
					"gte": thesis.MinFundingAsk * 0.5,
					"lte": thesis.MaxFundingAsk * 2,
				},
			},
		}}
	}

	return map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}
}

func searchStatusError(index string, res *esapi.Response) error {
	raw, _ := io.ReadAll(res.Body)
	if res.StatusCode == 404 && bytes.Contains(raw, []byte("index_not_found_exception")) {
		return errors.NewIndexNotFoundError(index)
	}
	return errors.NewSearchQueryFailedError("candidate-search",
		fmt.Errorf("status %s: %s", res.Status(), strings.TrimSpace(string(raw))))
}
