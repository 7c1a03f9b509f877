// Command indexer bulk-loads vehicle records from a YAML file into a
// catalog backend. Useful for seeding local development databases and
// for rebuilding an Elasticsearch index from a fixture.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/carsuggester/vehiclesearch/catalog"
	"github.com/carsuggester/vehiclesearch/config"
	"github.com/carsuggester/vehiclesearch/core"
)

type fixture struct {
	Vehicles []core.VehicleRecord `yaml:"vehicles"`
}

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file (default: ~/.vehiclesearch.yml)")
		inputPath   = flag.String("input", "vehicles.yaml", "Path to the vehicle fixture file")
		catalogType = flag.String("catalog", "", "Catalog backend: memory, bolt, badger, elastic (overrides config)")
		catalogPath = flag.String("path", "", "Catalog database path (overrides config)")
	)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *catalogType != "" {
		cfg.Catalog.Type = catalog.StoreType(*catalogType)
	}
	if *catalogPath != "" {
		cfg.Catalog.Path = *catalogPath
	}

	data, err := os.ReadFile(*inputPath)
	if err != nil {
		log.Fatalf("Failed to read fixture %s: %v", *inputPath, err)
	}

	var fix fixture
	if err := yaml.Unmarshal(data, &fix); err != nil {
		log.Fatalf("Failed to parse fixture %s: %v", *inputPath, err)
	}
	if len(fix.Vehicles) == 0 {
		log.Fatalf("Fixture %s contains no vehicles", *inputPath)
	}

	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		log.Fatalf("Failed to create catalog store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if es, ok := store.(*catalog.ElasticStore); ok {
		if err := es.EnsureIndex(ctx); err != nil {
			log.Fatalf("Failed to prepare elasticsearch index: %v", err)
		}
	}

	loaded := 0
	for _, rec := range fix.Vehicles {
		if err := store.SaveVehicle(ctx, rec); err != nil {
			log.Printf("Skipping vehicle %q: %v", rec.ID, err)
			continue
		}
		loaded++
	}

	log.Printf("Loaded %d of %d vehicles into %s catalog", loaded, len(fix.Vehicles), cfg.Catalog.Type)
}
