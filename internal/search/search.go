package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"

	"github.com/fieldserve/orders-api/internal/models"
)

const DefaultIndex = "service_orders"

// Index maintains a best-effort full-text index over orders. It is optional:
// a nil *Index is a no-op for every method.
type Index struct {
	ES   *elasticsearch.Client
	Name string
}

// OrderDoc is the indexed projection of an order. Parts are flattened to
// their names; the searchable fields are the text columns the list endpoint
// filters on exactly.
type OrderDoc struct {
	ID             uuid.UUID          `json:"id"`
	ServiceName    string             `json:"service_name"`
	Area           string             `json:"area"`
	TechnicianName string             `json:"technician_name"`
	Status         models.OrderStatus `json:"status"`
	PartNames      []string           `json:"part_names"`
	CreatedAt      time.Time          `json:"created_at"`
}

func NewClient(url, user, password string) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{url},
		Username:  user,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("search: new client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("search: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("search: info: %s: %s", res.Status(), body)
	}

	return client, nil
}

func toDoc(o *models.ServiceOrder) OrderDoc {
	names := make([]string, len(o.Parts))
	for i, p := range o.Parts {
		names[i] = p.PartName
	}
	return OrderDoc{
		ID:             o.ID,
		ServiceName:    o.ServiceName,
		Area:           o.Area,
		TechnicianName: o.TechnicianName,
		Status:         o.Status,
		PartNames:      names,
		CreatedAt:      o.CreatedAt,
	}
}

func (ix *Index) IndexOrder(ctx context.Context, o *models.ServiceOrder) error {
	if ix == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(toDoc(o)); err != nil {
		return fmt.Errorf("search: encode doc: %w", err)
	}

	res, err := ix.ES.Index(
		ix.Name,
		&buf,
		ix.ES.Index.WithDocumentID(o.ID.String()),
		ix.ES.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("search: index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("search: index: %s", res.Status())
	}
	return nil
}

func (ix *Index) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	if ix == nil {
		return nil
	}
	res, err := ix.ES.Delete(ix.Name, id.String(), ix.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("search: delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("search: delete: %s", res.Status())
	}
	return nil
}

// Search runs a fuzzy multi_match over the indexed orders.
func (ix *Index) Search(ctx context.Context, query string, from, size int) (int64, []OrderDoc, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"service_name^2", "technician_name", "area", "part_names"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("search: encode query: %w", err)
	}

	res, err := ix.ES.Search(
		ix.ES.Search.WithContext(ctx),
		ix.ES.Search.WithIndex(ix.Name),
		ix.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return 0, nil, fmt.Errorf("search: search: %s: %s", res.Status(), strings.TrimSpace(string(body)))
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source OrderDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, err
	}

	docs := make([]OrderDoc, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		docs[i] = hit.Source
	}
	return r.Hits.Total.Value, docs, nil
}
