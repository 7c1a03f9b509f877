package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/carsuggester/vehiclesearch/core"
)

// elasticMapping defines the vehicle index schema
const elasticMapping = `{
  "mappings": {
    "properties": {
      "make":         { "type": "keyword" },
      "model":        { "type": "keyword" },
      "year":         { "type": "integer" },
      "price":        { "type": "double" },
      "mileage":      { "type": "long" },
      "fuel_type":    { "type": "keyword" },
      "transmission": { "type": "keyword" },
      "location":     { "type": "text" },
      "created_at":   { "type": "date" }
    }
  }
}`

// ElasticStore implements vehicle storage backed by Elasticsearch
type ElasticStore struct {
	client *elasticsearch.Client
	index  string
}

// NewElasticStore creates an Elasticsearch-backed vehicle store over
// the given index
func NewElasticStore(client *elasticsearch.Client, index string) *ElasticStore {
	if index == "" {
		index = "vehicles"
	}
	return &ElasticStore{client: client, index: index}
}

// EnsureIndex creates the vehicle index if it does not already exist
func (e *ElasticStore) EnsureIndex(ctx context.Context) error {
	res, err := e.client.Indices.Exists([]string{e.index})
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(elasticMapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error creating index: %s", string(body))
	}
	return nil
}

// SaveVehicle indexes a vehicle record, replacing any previous version
func (e *ElasticStore) SaveVehicle(ctx context.Context, rec core.VehicleRecord) error {
	if err := core.ValidateVehicle(rec); err != nil {
		return fmt.Errorf("invalid vehicle: %w", err)
	}
	rec = core.NormalizeVehicle(rec)

	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal vehicle %s: %w", rec.ID, err)
	}

	req := esapi.IndexRequest{
		Index:      e.index,
		DocumentID: rec.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("failed to index vehicle %s: %w", rec.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing vehicle %s: %s", rec.ID, res.String())
	}
	return nil
}

// GetVehicle retrieves a vehicle by ID
func (e *ElasticStore) GetVehicle(ctx context.Context, id string) (core.VehicleRecord, error) {
	req := esapi.GetRequest{Index: e.index, DocumentID: id}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return core.VehicleRecord{}, fmt.Errorf("failed to get vehicle %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return core.VehicleRecord{}, core.ErrVehicleNotFound
	}
	if res.IsError() {
		return core.VehicleRecord{}, fmt.Errorf("error getting vehicle %s: %s", id, res.String())
	}

	var doc struct {
		Source core.VehicleRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return core.VehicleRecord{}, fmt.Errorf("failed to decode vehicle %s: %w", id, err)
	}
	return doc.Source, nil
}

// DeleteVehicle removes a vehicle by ID
func (e *ElasticStore) DeleteVehicle(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{Index: e.index, DocumentID: id, Refresh: "true"}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("failed to delete vehicle %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return core.ErrVehicleNotFound
	}
	if res.IsError() {
		return fmt.Errorf("error deleting vehicle %s: %s", id, res.String())
	}
	return nil
}

// ListVehicles returns all indexed vehicles
func (e *ElasticStore) ListVehicles(ctx context.Context) ([]core.VehicleRecord, error) {
	return e.search(ctx, map[string]interface{}{
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"size":  10000,
	})
}

// FetchCandidates queries the index with the advisory range filters
// pushed down to Elasticsearch
func (e *ElasticStore) FetchCandidates(ctx context.Context, filters core.FilterSet) ([]core.VehicleRecord, error) {
	filters = core.NormalizeFilters(filters)

	var must []map[string]interface{}
	addRange := func(field string, r core.Range) {
		if r.IsZero() {
			return
		}
		must = append(must, map[string]interface{}{
			"range": map[string]interface{}{
				field: map[string]interface{}{"gte": r.Min, "lte": r.Max},
			},
		})
	}
	addRange("price", filters.PriceRange)
	addRange("year", filters.YearRange)
	addRange("mileage", filters.MileageRange)

	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if len(must) > 0 {
		query = map[string]interface{}{
			"bool": map[string]interface{}{"filter": must},
		}
	}

	return e.search(ctx, map[string]interface{}{
		"query": query,
		"size":  10000,
	})
}

func (e *ElasticStore) search(ctx context.Context, body map[string]interface{}) ([]core.VehicleRecord, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("failed to encode search body: %w", err)
	}

	res, err := e.client.Search(
		e.client.Search.WithContext(ctx),
		e.client.Search.WithIndex(e.index),
		e.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source core.VehicleRecord `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	vehicles := make([]core.VehicleRecord, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		vehicles = append(vehicles, hit.Source)
	}
	return vehicles, nil
}

// Close is a no-op; the Elasticsearch client manages its own transport
func (e *ElasticStore) Close() error {
	return nil
}
