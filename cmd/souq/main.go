// Copyright 2025 Soukdata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/soukdata/souq"
	"github.com/soukdata/souq/ai"
	"github.com/soukdata/souq/core"
	"github.com/soukdata/souq/export"
	"github.com/soukdata/souq/ingestion"
	"github.com/soukdata/souq/normalize"
	"github.com/soukdata/souq/reindex"
	"github.com/soukdata/souq/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "souq",
		Usage: "Retail catalog builder with semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Ingest scraped JSONL records into the catalog",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Path to JSONL file of scraped records",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "model-version",
						Usage: "Version tag stored with embeddings (defaults to the model name)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for the parallel stages (0 = number of CPUs / 2)",
					},
					&cli.StringFlag{
						Name:  "vocabulary",
						Usage: "Path to a YAML category vocabulary (defaults to the built-in one)",
					},
				},
			},
			{
				Name:   "search",
				Usage:  "Search the catalog by meaning",
				Action: searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"k"},
						Usage:   "Maximum number of results",
						Value:   5,
					},
					&cli.StringFlag{
						Name:  "category",
						Usage: "Only return products in this category",
					},
					&cli.Float64Flag{
						Name:  "min-price",
						Usage: "Only return products priced at or above this amount",
					},
					&cli.Float64Flag{
						Name:  "max-price",
						Usage: "Only return products priced at or below this amount",
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "embeddinggemma",
					},
					&cli.StringFlag{
						Name:  "model-version",
						Usage: "Version tag of the embeddings to search (defaults to the model name)",
					},
				},
			},
			{
				Name:   "export",
				Usage:  "Export the catalog as CSV or JSON",
				Action: exportCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output file path (defaults to stdout)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format: csv or json",
						Value: "csv",
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every product and rebuild the vector index",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "http://localhost:11434/v1",
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "model-version",
						Usage: "Version tag stored with the new embeddings (defaults to the model name)",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of products to encode in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N products",
						Value: 100,
					},
				},
			},
		},
	}
}

// aiConfigFromFlags builds the embedding configuration, keeping defaults for
// anything the command does not expose or the user did not set.
func aiConfigFromFlags(c *cli.Context) *ai.Config {
	config := ai.DefaultConfig()
	if host := c.String("embedding-host"); host != "" {
		config.EmbeddingHost = host
	}
	if model := c.String("embedding-model"); model != "" {
		config.EmbeddingModel = model
	}
	if version := c.String("model-version"); version != "" {
		config.ModelVersion = version
	}
	return config
}

func openCatalog(c *cli.Context) (*souq.Catalog, error) {
	aiConfig := aiConfigFromFlags(c)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []souq.CatalogOption{souq.WithAIConfig(aiConfig)}
	if path := c.String("vocabulary"); path != "" {
		vocab, err := normalize.LoadVocabulary(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load vocabulary: %w", err)
		}
		opts = append(opts, souq.WithVocabulary(vocab))
	}

	catalog, err := souq.Open(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return catalog, nil
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	records, malformed, err := ingestion.ReadRecordsFile(c.String("input"))
	if err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	var pipelineOpts []ingestion.Option
	if size := c.Int("pool-size"); size > 0 {
		pipelineOpts = append(pipelineOpts, ingestion.WithPoolSize(size))
	}

	pipeline, err := catalog.Pipeline(pipelineOpts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Input: %s (%d records, %d malformed lines skipped)\n",
		c.String("input"), len(records), malformed)
	fmt.Fprintf(os.Stderr, "Model version: %s\n", catalog.ModelVersion())
	fmt.Fprintln(os.Stderr)

	summary, err := pipeline.Run(ctx, records)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Ingested %d records into %d products in %v (%d rejected, %d not indexed)\n",
		summary.Received, summary.Upserted, summary.Duration, summary.Rejected,
		summary.Skipped+summary.IndexFailed)
	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	searcher, err := catalog.Searcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	filters := search.Filters{Category: c.String("category")}
	if c.IsSet("min-price") {
		minPrice := c.Float64("min-price")
		filters.MinPrice = &minPrice
	}
	if c.IsSet("max-price") {
		maxPrice := c.Float64("max-price")
		filters.MaxPrice = &maxPrice
	}

	results, err := searcher.Query(ctx, c.String("query"), c.Int("limit"), filters)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(results))
	for _, hit := range results {
		product := hit.Product
		price := "-"
		if product.Price != nil {
			price = fmt.Sprintf("%.2f DH", *product.Price)
		}
		fmt.Printf("%d: '%s' (%s) %s [%0.3f]\n", hit.Rank, product.Name, product.Category, price, hit.Score)
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	ctx := context.Background()

	format := c.String("format")
	if format != "csv" && format != "json" {
		return fmt.Errorf("unknown format %q: must be csv or json", format)
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	out := os.Stdout
	if path := c.String("out"); path != "" && path != "-" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	var count int
	switch format {
	case "csv":
		count, err = catalog.ExportCSV(ctx, out)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
	case "json":
		var products []*core.CanonicalProduct
		for product, err := range catalog.Products().AllProducts(ctx) {
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			products = append(products, product)
		}
		if err := export.WriteJSON(out, products); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		count = len(products)
	}

	fmt.Fprintf(os.Stderr, "Exported %d products\n", count)
	return nil
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	catalog, err := openCatalog(c)
	if err != nil {
		return err
	}
	defer catalog.Close()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintf(os.Stderr, "Model version: %s\n", catalog.ModelVersion())
	fmt.Fprintln(os.Stderr)

	if _, err := catalog.Reindexer(config, os.Stderr).Run(ctx); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
