package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"

	"sweetshop/internal/models"
)

// Service mirrors products into an elasticsearch index. It is optional:
// a nil Service turns every method into a no-op, and the catalog falls
// back to the repo's LIKE query for searching.
type Service struct {
	ES    *elasticsearch.Client
	Index string
}

func New(es *elasticsearch.Client, index string) *Service {
	return &Service{ES: es, Index: index}
}

func (s *Service) IndexProduct(ctx context.Context, p *models.Product) error {
	if s == nil {
		return nil
	}

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("es: json.Marshal failed: %w", err)
	}

	res, err := s.ES.Index(
		s.Index,
		bytes.NewReader(data),
		s.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
		s.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: index failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("es: index error: %s", res.Status())
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id uint) error {
	if s == nil {
		return nil
	}

	res, err := s.ES.Delete(
		s.Index,
		strconv.FormatUint(uint64(id), 10),
		s.ES.Delete.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("es: delete failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es: delete error: %s", res.Status())
	}
	return nil
}

func (s *Service) Search(ctx context.Context, query string) ([]models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description"},
				"fuzziness": "AUTO",
			},
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("es: encode query: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("es: search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("es: search error: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return prods, nil
}

// Enabled reports whether the service can answer queries at all; a blank
// query is answered by the repo so empty-query semantics stay LIKE-based.
func (s *Service) Enabled(query string) bool {
	return s != nil && strings.TrimSpace(query) != ""
}
