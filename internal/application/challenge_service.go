package application

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/internal/domain/entity"
	"github.com/oksasatya/nutriquest/pkg/helpers"
)

// Catalog is the read-only source of challenge and meal definitions.
type Catalog interface {
	Challenges() []entity.Challenge
	Meals() []entity.Challenge
	All() []entity.Challenge
	Get(id string) (entity.Challenge, bool)
}

// ChallengeView is a catalog entry joined with the user's completion state.
type ChallengeView struct {
	entity.Challenge
	Completed bool `json:"completed"`
}

// Board partitions the catalog for the dashboard. A challenge is active while
// it has progress, available when untouched, completed once claimed.
type Board struct {
	Active    []ChallengeView `json:"active"`
	Available []ChallengeView `json:"available"`
	Completed []ChallengeView `json:"completed"`
}

type ChallengeService struct {
	Store   *ProfileStore
	Catalog Catalog
	Logger  *logrus.Logger

	ES      *elasticsearch.Client
	ESIndex string
}

func NewChallengeService(store *ProfileStore, catalog Catalog, logger *logrus.Logger, es *elasticsearch.Client, esIndex string) *ChallengeService {
	return &ChallengeService{Store: store, Catalog: catalog, Logger: logger, ES: es, ESIndex: esIndex}
}

func (s *ChallengeService) view(c entity.Challenge) ChallengeView {
	v := ChallengeView{Challenge: c, Completed: s.Store.IsCompleted(c.ID)}
	if v.Completed && v.Total > 0 {
		v.Progress = v.Total
	}
	return v
}

func (s *ChallengeService) Board() Board {
	b := Board{Active: []ChallengeView{}, Available: []ChallengeView{}, Completed: []ChallengeView{}}
	for _, c := range s.Catalog.Challenges() {
		v := s.view(c)
		switch {
		case v.Completed:
			b.Completed = append(b.Completed, v)
		case v.Progress > 0:
			b.Active = append(b.Active, v)
		default:
			b.Available = append(b.Available, v)
		}
	}
	return b
}

// CompletedViews lists every completed catalog entry, challenges and meals alike.
// Ids no longer in the catalog are skipped.
func (s *ChallengeService) CompletedViews() []ChallengeView {
	out := []ChallengeView{}
	for _, id := range s.Store.GetCompletedChallenges() {
		if c, ok := s.Catalog.Get(id); ok {
			out = append(out, s.view(c))
		}
	}
	return out
}

// Meals lists the meal plan; a logged meal is reported as completed.
func (s *ChallengeService) Meals() []ChallengeView {
	meals := s.Catalog.Meals()
	out := make([]ChallengeView, 0, len(meals))
	for _, m := range meals {
		out = append(out, s.view(m))
	}
	return out
}

// Complete claims the catalog reward for id.
func (s *ChallengeService) Complete(ctx context.Context, id string) (entity.Challenge, entity.CompletionResult, error) {
	c, ok := s.Catalog.Get(strings.TrimSpace(id))
	if !ok {
		return entity.Challenge{}, entity.CompletionResult{}, fmt.Errorf("%w: %q", ErrChallengeNotFound, id)
	}
	res, err := s.Store.ClaimReward(ctx, c.ID, c.Reward())
	if err != nil {
		return entity.Challenge{}, entity.CompletionResult{}, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"challenge_id": c.ID,
			"kind":         c.Kind,
			"duplicate":    res.AlreadyCompleted,
			"coins":        res.NewCoinBalance,
		}).Info("challenge completion")
	}
	return c, res, nil
}

// Search matches q against title, description and category. Elasticsearch is
// used when configured; otherwise, or when it fails, the catalog is scanned.
func (s *ChallengeService) Search(ctx context.Context, q string, size int) []ChallengeView {
	if size <= 0 || size > 50 {
		size = 10
	}
	q = strings.TrimSpace(q)
	if q == "" {
		return []ChallengeView{}
	}
	if s.ES != nil && s.ESIndex != "" {
		ids, err := s.searchIndex(ctx, q, size)
		if err == nil {
			out := make([]ChallengeView, 0, len(ids))
			for _, id := range ids {
				if c, ok := s.Catalog.Get(id); ok {
					out = append(out, s.view(c))
				}
			}
			return out
		}
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("q", q).Warn("es search failed, scanning catalog")
		}
	}
	return s.scan(q, size)
}

func (s *ChallengeService) scan(q string, size int) []ChallengeView {
	needle := strings.ToLower(q)
	out := []ChallengeView{}
	for _, c := range s.Catalog.All() {
		hay := strings.ToLower(c.Title + " " + c.Description + " " + c.Category)
		if strings.Contains(hay, needle) {
			out = append(out, s.view(c))
			if len(out) == size {
				break
			}
		}
	}
	return out
}

func (s *ChallengeService) searchIndex(ctx context.Context, q string, size int) ([]string, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"title^2", "description", "category"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

// ChallengesIndexMapping is the mapping used when the search index is created.
const ChallengesIndexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "description": {"type": "text"},
      "category":    {"type": "text"},
      "difficulty":  {"type": "keyword"},
      "kind":        {"type": "keyword"},
      "coins":       {"type": "integer"}
    }
  }
}`

// IndexCatalog creates the search index if needed and pushes every catalog
// entry into it. It returns the number of documents indexed.
func (s *ChallengeService) IndexCatalog(ctx context.Context) (int, error) {
	if s.ES == nil || s.ESIndex == "" {
		return 0, nil
	}
	if err := helpers.EnsureIndex(ctx, s.ES, s.ESIndex, ChallengesIndexMapping); err != nil {
		return 0, err
	}
	all := s.Catalog.All()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	n := 0
	for _, ch := range all {
		if err := s.indexChallenge(ctx, ch); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *ChallengeService) indexChallenge(ctx context.Context, ch entity.Challenge) error {
	doc := map[string]any{
		"id":          ch.ID,
		"title":       ch.Title,
		"description": ch.Description,
		"category":    ch.Category,
		"difficulty":  ch.Difficulty,
		"kind":        ch.Kind,
		"coins":       ch.Coins,
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESIndex, DocumentID: ch.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("challenge_id", ch.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("challenge_id", ch.ID).Warn("es index response error")
	}
	return nil
}
