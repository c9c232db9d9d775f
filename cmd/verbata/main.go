// Copyright 2025 Poiesic Systems
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
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/verbata"
	"github.com/poiesic/verbata/ai"
	"github.com/poiesic/verbata/ingestion"
	"github.com/poiesic/verbata/query"
	"github.com/poiesic/verbata/verbatim"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "verbata",
		Usage: "Document retrieval and verbatim quote extraction",
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
				Name:      "index",
				Usage:     "Index a document file or directory into the knowledge base",
				ArgsUsage: "<path>",
				Action:    indexCommand,
				Flags: append(commonFlags(),
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Target chunk size in characters",
						Value: 1000,
					},
					&cli.IntFlag{
						Name:  "chunk-overlap",
						Usage: "Overlap between consecutive chunks in characters",
						Value: 200,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed per batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent file workers (0 uses half the CPUs)",
					},
				),
			},
			{
				Name:      "query",
				Usage:     "Ask a question and generate an answer from indexed documents",
				ArgsUsage: "<question>",
				Action:    queryCommand,
				Flags: append(commonFlags(),
					retrievalFlags(
						&cli.BoolFlag{
							Name:  "save",
							Usage: "Save the answer and sources to the output directory",
						},
						&cli.BoolFlag{
							Name:  "json",
							Usage: "Save the result as JSON instead of text",
						},
						&cli.StringFlag{
							Name:  "output-dir",
							Usage: "Directory for saved results",
							Value: "results",
						},
					)...,
				),
			},
			{
				Name:      "retrieve",
				Usage:     "Retrieve the most similar document chunks for a query",
				ArgsUsage: "<query>",
				Action:    retrieveCommand,
				Flags:     append(commonFlags(), retrievalFlags()...),
			},
			{
				Name:      "verbatims",
				Usage:     "Extract speaker-attributed quotes relevant to a query",
				ArgsUsage: "<query>",
				Action:    verbatimsCommand,
				Flags: append(commonFlags(),
					retrievalFlags(
						&cli.IntFlag{
							Name:  "min-length",
							Usage: "Minimum cleaned quote length in characters",
							Value: 20,
						},
						&cli.IntFlag{
							Name:  "max-length",
							Usage: "Maximum cleaned quote length in characters",
							Value: 500,
						},
						&cli.BoolFlag{
							Name:  "include-moderator",
							Usage: "Keep quotes spoken by the session moderator",
						},
						&cli.StringFlag{
							Name:  "participant-filter",
							Usage: "Comma-separated demographic or location criteria (e.g. \"F, 25-34\")",
						},
						&cli.StringFlag{
							Name:  "format",
							Usage: "Output format (research, quotes_only, detailed, csv)",
							Value: "research",
						},
						&cli.StringFlag{
							Name:  "export-csv",
							Usage: "Write the verbatims to a CSV file at this path",
						},
						&cli.BoolFlag{
							Name:  "save",
							Usage: "Save the formatted verbatims to the output directory",
						},
						&cli.StringFlag{
							Name:  "output-dir",
							Usage: "Directory for saved results",
							Value: "results",
						},
					)...,
				),
			},
		},
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB database directory",
			Value:   "./verbata_db",
		},
		&cli.StringFlag{
			Name:  "host",
			Usage: "OpenAI-compatible service host URL for embeddings and chat",
			Value: "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name for answer generation",
			Value: "qwen2.5:3b",
		},
	}
}

func retrievalFlags(extra ...cli.Flag) []cli.Flag {
	flags := []cli.Flag{
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Number of chunks to retrieve",
			Value: 5,
		},
		&cli.Float64Flag{
			Name:  "min-score",
			Usage: "Minimum similarity score for retrieved chunks",
			Value: 0.1,
		},
	}
	return append(flags, extra...)
}

func openSystem(c *cli.Context) (*verbata.System, error) {
	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
	)
	sys, err := verbata.NewSystem(c.String("db"), verbata.WithAIConfig(aiConfig))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return sys, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("a file or directory path is required")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	opts := []ingestion.Option{
		ingestion.WithChunkSize(c.Int("chunk-size")),
		ingestion.WithChunkOverlap(c.Int("chunk-overlap")),
		ingestion.WithBatchSize(c.Int("batch-size")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}

	pipeline, err := sys.NewIngestionPipeline(opts...)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	stats, err := pipeline.IngestDirectory(ctx, path)
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %d chunks from %d files in %s\n",
		stats.ChunksIndexed, stats.FilesProcessed, stats.Duration.Round(10*time.Millisecond))
	if stats.FilesFailed > 0 {
		fmt.Printf("%d files failed, see the log for details\n", stats.FilesFailed)
	}
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if queryText == "" {
		return fmt.Errorf("a query is required")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	engine, err := sys.NewQueryEngine(
		query.WithTopK(c.Int("top-k")),
		query.WithMinScore(float32(c.Float64("min-score"))),
	)
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	result, err := engine.Answer(ctx, queryText)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	fmt.Println(result.Answer)
	if len(result.Sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, hit := range result.Sources {
			fmt.Printf("%d. %s (chunk %d/%d) [%.3f]\n",
				i+1, filepath.Base(hit.Chunk.SourceFile),
				hit.Chunk.ChunkIndex+1, hit.Chunk.TotalChunks, hit.Score)
		}
	}

	if c.Bool("save") {
		writer, err := sys.NewReportWriter(c.String("output-dir"))
		if err != nil {
			return fmt.Errorf("failed to create report writer: %w", err)
		}
		var path string
		if c.Bool("json") {
			path, err = writer.SaveJSON(result)
		} else {
			path, err = writer.SaveText(result)
		}
		if err != nil {
			return fmt.Errorf("failed to save result: %w", err)
		}
		fmt.Printf("\nSaved to %s\n", path)
	}
	return nil
}

func retrieveCommand(c *cli.Context) error {
	ctx := context.Background()

	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if queryText == "" {
		return fmt.Errorf("a query is required")
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	engine, err := sys.NewQueryEngine()
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	hits, err := engine.Retrieve(ctx, queryText, c.Int("top-k"), float32(c.Float64("min-score")))
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	fmt.Printf("Found %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("%d: %s (chunk %d/%d) [%.3f]\n%s\n\n",
			i+1, hit.Chunk.SourceFile,
			hit.Chunk.ChunkIndex+1, hit.Chunk.TotalChunks,
			hit.Score, hit.Chunk.Text)
	}
	return nil
}

func verbatimsCommand(c *cli.Context) error {
	ctx := context.Background()

	queryText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if queryText == "" {
		return fmt.Errorf("a query is required")
	}

	format, err := verbatim.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	sys, err := openSystem(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	engine, err := sys.NewQueryEngine(query.WithMinScore(float32(c.Float64("min-score"))))
	if err != nil {
		return fmt.Errorf("failed to create query engine: %w", err)
	}

	opts := verbatim.Options{
		MinLength:         c.Int("min-length"),
		MaxLength:         c.Int("max-length"),
		ExcludeModerator:  !c.Bool("include-moderator"),
		ParticipantFilter: c.String("participant-filter"),
	}

	verbatims, err := engine.ExtractVerbatims(ctx, queryText, c.Int("top-k"), opts)
	if err != nil {
		return fmt.Errorf("verbatim extraction failed: %w", err)
	}

	if len(verbatims) == 0 {
		fmt.Println("No verbatim quotes found for this query.")
		return nil
	}

	fmt.Printf("Found %d verbatim quotes\n\n", len(verbatims))
	for i, line := range verbatim.Render(verbatims, format) {
		fmt.Printf("%d. %s\n", i+1, line)
	}

	if c.Bool("save") || c.String("export-csv") != "" {
		writer, err := sys.NewReportWriter(c.String("output-dir"))
		if err != nil {
			return fmt.Errorf("failed to create report writer: %w", err)
		}
		if c.Bool("save") {
			path, err := writer.SaveVerbatims(queryText, verbatims, format)
			if err != nil {
				return fmt.Errorf("failed to save verbatims: %w", err)
			}
			fmt.Printf("\nSaved to %s\n", path)
		}
		if csvPath := c.String("export-csv"); csvPath != "" {
			path, err := writer.ExportCSV(verbatims, csvPath)
			if err != nil {
				return fmt.Errorf("failed to export CSV: %w", err)
			}
			fmt.Printf("\nExported CSV to %s\n", path)
		}
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
