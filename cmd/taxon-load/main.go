// Command taxon-load loads a taxonomy snapshot described by a YAML manifest,
// prints its aggregate statistics as JSON, and optionally runs a search
// against the loaded indices.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/cognicore/taxon/pkg/taxon"
	"github.com/cognicore/taxon/pkg/taxon/config"
	"github.com/cognicore/taxon/pkg/taxon/entity"
	"github.com/cognicore/taxon/pkg/taxon/search"
	"github.com/cognicore/taxon/pkg/taxon/stats"
	"github.com/cognicore/taxon/pkg/taxon/store"
	"github.com/cognicore/taxon/pkg/taxon/store/sqlite"
)

type report struct {
	Language string       `json:"language"`
	Stats    stats.Stats  `json:"stats"`
	Search   []resultJSON `json:"search,omitempty"`
}

type resultJSON struct {
	ID    string `json:"id,omitempty"`
	Code  string `json:"code,omitempty"`
	Label string `json:"label"`
	Kind  string `json:"kind"`
	Score int    `json:"score"`
}

func main() {
	var (
		manifestPath = flag.String("manifest", "", "Path to dataset manifest YAML (required)")
		query        = flag.String("search", "", "Optional: query to run after loading")
		corpus       = flag.String("corpus", string(search.CorpusSkills), "Search corpus: skills, seen-occupations, unseen-occupations")
		limit        = flag.Int("limit", 20, "Maximum search results")
		verbose      = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *manifestPath == "" {
		log.Fatal("--manifest required")
	}

	ctx := context.Background()

	manifest, err := config.Load(*manifestPath)
	if err != nil {
		log.Fatalf("load manifest: %v", err)
	}

	logger := zap.NewNop()
	if *verbose {
		logger, err = zap.NewDevelopment()
		if err != nil {
			log.Fatalf("logger: %v", err)
		}
		defer logger.Sync()
	}

	var st store.Store
	if manifest.Store == config.StoreSQLite {
		st, err = sqlite.Open(ctx)
		if err != nil {
			log.Fatalf("open store: %v", err)
		}
	}

	session, err := taxon.NewSession(taxon.Options{
		Store:           st,
		Logger:          logger,
		ChunkSize:       manifest.Chunk.Size,
		YieldBudget:     manifest.Chunk.Budget(),
		SearchCacheSize: manifest.SearchCacheSize,
	})
	if err != nil {
		log.Fatalf("session: %v", err)
	}
	defer session.Close()

	baseDir := filepath.Dir(*manifestPath)
	readers := make(map[entity.Dataset]io.Reader)
	var closers []io.Closer
	for ds, path := range manifest.DatasetPaths(baseDir) {
		f, err := os.Open(path)
		if err != nil {
			log.Fatalf("open %s: %v", ds, err)
		}
		readers[ds] = f
		closers = append(closers, f)
	}
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()

	err = session.Load(ctx, taxon.Sources{
		Language: manifest.Language,
		Readers:  readers,
	})
	if err != nil {
		log.Fatalf("load: %v", err)
	}

	snapshot, err := session.Snapshot()
	if err != nil {
		log.Fatalf("snapshot: %v", err)
	}
	out := report{Language: snapshot.Data.Language, Stats: snapshot.Stats}

	if *query != "" {
		results, _, err := session.Search(search.Corpus(*corpus), *query, *limit)
		if err != nil {
			log.Fatalf("search: %v", err)
		}
		for _, r := range results {
			out.Search = append(out.Search, resultJSON{
				ID:    r.ID,
				Code:  r.Code,
				Label: r.Label,
				Kind:  string(r.Kind),
				Score: r.Score,
			})
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
