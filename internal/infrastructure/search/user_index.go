package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/user-account-service/internal/application"
)

var ErrDisabled = errors.New("search not configured")

// UserDocument is the indexed form of a user projection.
type UserDocument struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	BirthDate string  `json:"birth_date"`
	Phone     *string `json:"phone"`
	Active    bool    `json:"active"`
	CreatedAt string  `json:"created_at"`
}

const usersMapping = `{
  "mappings": {
    "properties": {
      "id":         {"type": "long"},
      "name":       {"type": "text"},
      "email":      {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "birth_date": {"type": "date", "format": "yyyy-MM-dd"},
      "phone":      {"type": "keyword"},
      "active":     {"type": "boolean"},
      "created_at": {"type": "date"}
    }
  }
}`

// UserIndex keeps an Elasticsearch index of user projections and queries it.
type UserIndex struct {
	ES    *elasticsearch.Client
	Index string
}

func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	return &UserIndex{ES: es, Index: index}
}

func (x *UserIndex) enabled() bool {
	return x != nil && x.ES != nil && x.Index != ""
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (x *UserIndex) EnsureIndex(ctx context.Context) error {
	if !x.enabled() {
		return ErrDisabled
	}
	res, err := esapi.IndicesExistsRequest{Index: []string{x.Index}}.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("failed to check index: %w", err)
	}
	_ = res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}
	res, err = esapi.IndicesCreateRequest{Index: x.Index, Body: strings.NewReader(usersMapping)}.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("failed to create index: %s", res.Status())
	}
	return nil
}

// OnUserEvent indexes the latest projection of the changed user.
func (x *UserIndex) OnUserEvent(ctx context.Context, ev application.UserEvent) error {
	if !x.enabled() {
		return nil
	}
	u := ev.User
	doc := UserDocument{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		BirthDate: u.BirthDate.Format(time.DateOnly),
		Phone:     u.Phone,
		Active:    u.Active,
		CreatedAt: u.CreatedAt.Format(time.RFC3339Nano),
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.Index,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	res, err := req.Do(ctx, x.ES)
	if err != nil {
		return fmt.Errorf("failed to index user: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("failed to index user: %s", res.Status())
	}
	return nil
}

// Search performs a multi_match query on email and name.
func (x *UserIndex) Search(ctx context.Context, q string, size int) ([]UserDocument, error) {
	if !x.enabled() {
		return nil, ErrDisabled
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.Index), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.IsError() {
		return nil, fmt.Errorf("search failed: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source UserDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]UserDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

var _ application.UserObserver = (*UserIndex)(nil)
