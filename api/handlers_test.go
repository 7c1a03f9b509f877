package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carsuggester/vehiclesearch/catalog"
	"github.com/carsuggester/vehiclesearch/core"
	"github.com/carsuggester/vehiclesearch/core/query"
	"github.com/carsuggester/vehiclesearch/core/rank"
	"github.com/carsuggester/vehiclesearch/core/suggest"
	"github.com/carsuggester/vehiclesearch/history"
)

func newTestServer(t *testing.T) (*Server, catalog.Store) {
	t.Helper()

	store := catalog.NewMemoryStore()
	ref := query.DefaultReferenceData()
	parser := query.NewParser(ref)
	ranker := rank.NewRanker(parser, rank.NewScorer(rank.DefaultScoringWeights()), rank.NewFilterEngine())
	index := suggest.NewIndex([]suggest.IndexEntry{
		{Brand: "BMW", Models: []string{"X3", "320i"}},
		{Brand: "Toyota", Models: []string{"Camry", "Corolla"}},
		{Brand: "Tesla", Models: []string{"Model 3"}},
	})
	generator := suggest.NewGenerator(index, ref)
	hist := history.NewMemoryHistory()
	trending := suggest.NewStaticTrending([]string{"electric cars", "family SUV"})

	server := NewServer(store, ranker, generator, hist, trending, DefaultServerConfig(), nil)
	return server, store
}

func seedVehicles(t *testing.T, store catalog.Store) {
	t.Helper()
	ctx := context.Background()

	vehicles := []core.VehicleRecord{
		{
			ID: "bmw-x3", Make: "BMW", Model: "X3", Year: 2021,
			Price: 38000, Mileage: 30000, FuelType: "petrol",
			Transmission: "automatic",
			CreatedAt:    time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "toyota-camry", Make: "Toyota", Model: "Camry", Year: 2022,
			Price: 24000, Mileage: 20000, FuelType: "hybrid",
			Transmission: "automatic",
			CreatedAt:    time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			ID: "tesla-model3", Make: "Tesla", Model: "Model 3", Year: 2023,
			Price: 42000, Mileage: 8000, FuelType: "electric",
			Transmission: "automatic",
			CreatedAt:    time.Date(2025, 4, 3, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, v := range vehicles {
		require.NoError(t, store.SaveVehicle(ctx, v))
	}
}

func TestHealthEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var response HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response.Status)
}

func TestSearchEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedVehicles(t, store)

	t.Run("BudgetQuery", func(t *testing.T) {
		body, _ := json.Marshal(SearchRequest{
			Query:  "Show me reliable cars under €25k",
			UserID: "user-1",
		})
		req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var response SearchResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))

		require.NotEmpty(t, response.Results)
		assert.Equal(t, "toyota-camry", response.Results[0].Record.ID,
			"the only car within budget should rank first")
		assert.True(t, response.Query.NaturalLanguage)
		require.NotNil(t, response.Query.BudgetMax)
		assert.Equal(t, 25000.0, *response.Query.BudgetMax)
		assert.NotEmpty(t, response.Diagnostics.QueryID)
		assert.Contains(t, response.Explanation, "matching cars")
	})

	t.Run("FilteredSearch", func(t *testing.T) {
		body, _ := json.Marshal(SearchRequest{
			Query: "electric",
			Filters: core.FilterSet{
				Categories: map[string][]string{
					core.CategoryFuelType: {"electric"},
				},
			},
		})
		req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var response SearchResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.Len(t, response.Results, 1)
		assert.Equal(t, "tesla-model3", response.Results[0].Record.ID)
	})

	t.Run("InvalidBody", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/search", bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("HistoryRecorded", func(t *testing.T) {
		recent, err := server.history.Recent(context.Background(), "user-1", 5)
		require.NoError(t, err)
		require.NotEmpty(t, recent)
		assert.Contains(t, recent[0], "under")
	})
}

func TestSuggestEndpoint(t *testing.T) {
	server, store := newTestServer(t)
	seedVehicles(t, store)

	t.Run("EmptyInputServesTrending", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/suggest?q=", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var response SuggestResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotEmpty(t, response.Suggestions)

		texts := make([]string, len(response.Suggestions))
		for i, s := range response.Suggestions {
			texts[i] = s.Text
		}
		assert.Contains(t, texts, "electric cars")
	})

	t.Run("PrefixMatch", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/suggest?q=BM", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var response SuggestResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		require.NotEmpty(t, response.Suggestions)
		assert.Contains(t, response.Suggestions[0].Text, "BMW")
		assert.LessOrEqual(t, len(response.Suggestions), 8)
	})
}

func TestVehicleEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := core.VehicleRecord{
		ID: "audi-a4", Make: "Audi", Model: "A4", Year: 2020,
		Price: 31000, Mileage: 55000, FuelType: "diesel",
		Transmission: "manual",
		CreatedAt:    time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	t.Run("Create", func(t *testing.T) {
		body, _ := json.Marshal(rec)
		req := httptest.NewRequest("POST", "/vehicles", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	})

	t.Run("CreateInvalid", func(t *testing.T) {
		body, _ := json.Marshal(core.VehicleRecord{Make: "Audi", Year: 2020})
		req := httptest.NewRequest("POST", "/vehicles", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Get", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vehicles/audi-a4", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var got core.VehicleRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, "Audi", got.Make)
	})

	t.Run("GetMissing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vehicles/no-such-car", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("Update", func(t *testing.T) {
		updated := rec
		updated.Price = 29500
		body, _ := json.Marshal(updated)
		req := httptest.NewRequest("PUT", "/vehicles/audi-a4", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var got core.VehicleRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 29500.0, got.Price)
	})

	t.Run("UpdateMissing", func(t *testing.T) {
		body, _ := json.Marshal(rec)
		req := httptest.NewRequest("PUT", "/vehicles/no-such-car", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("List", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vehicles", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var got []core.VehicleRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Len(t, got, 1)
	})

	t.Run("ListPriceFiltered", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/vehicles?price_min=50000&price_max=90000", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var got []core.VehicleRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Empty(t, got)
	})

	t.Run("Delete", func(t *testing.T) {
		req := httptest.NewRequest("DELETE", "/vehicles/audi-a4", nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		req = httptest.NewRequest("DELETE", "/vehicles/audi-a4", nil)
		rr = httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestListVehiclesPriceBounds(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	require.NoError(t, store.SaveVehicle(ctx, core.VehicleRecord{
		ID: "cheap", Make: "Fiat", Model: "Panda", Year: 2015,
		Price: 5000, Mileage: 90000, FuelType: "petrol",
		Transmission: "manual",
		CreatedAt:    time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, store.SaveVehicle(ctx, core.VehicleRecord{
		ID: "expensive", Make: "Porsche", Model: "Macan", Year: 2023,
		Price: 50000, Mileage: 12000, FuelType: "petrol",
		Transmission: "automatic",
		CreatedAt:    time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC),
	}))

	list := func(url string) []core.VehicleRecord {
		req := httptest.NewRequest("GET", url, nil)
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var got []core.VehicleRecord
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		return got
	}

	t.Run("MinOnly", func(t *testing.T) {
		got := list("/vehicles?price_min=10000")
		require.Len(t, got, 1)
		assert.Equal(t, "expensive", got[0].ID)
	})

	t.Run("MaxOnly", func(t *testing.T) {
		got := list("/vehicles?price_max=10000")
		require.Len(t, got, 1)
		assert.Equal(t, "cheap", got[0].ID)
	})

	t.Run("BothBounds", func(t *testing.T) {
		got := list("/vehicles?price_min=4000&price_max=60000")
		assert.Len(t, got, 2)
	})

	t.Run("NoBounds", func(t *testing.T) {
		got := list("/vehicles")
		assert.Len(t, got, 2)
	})
}

func TestSearchManyCandidatesStaysDeterministic(t *testing.T) {
	server, store := newTestServer(t)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, store.SaveVehicle(ctx, core.VehicleRecord{
			ID:           fmt.Sprintf("car-%02d", i),
			Make:         "Toyota",
			Model:        "Corolla",
			Year:         2015 + i%10,
			Price:        15000 + float64(i)*100,
			Mileage:      10000 * (i%8 + 1),
			FuelType:     "petrol",
			Transmission: "manual",
			CreatedAt:    time.Date(2025, 1, 1+i%28, 0, 0, 0, 0, time.UTC),
		}))
	}

	run := func() []string {
		body, _ := json.Marshal(SearchRequest{Query: "toyota under 20k"})
		req := httptest.NewRequest("POST", "/search", bytes.NewReader(body))
		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var response SearchResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		ids := make([]string, len(response.Results))
		for i, r := range response.Results {
			ids[i] = r.Record.ID
		}
		return ids
	}

	first := run()
	require.NotEmpty(t, first)
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, run())
	}
}
