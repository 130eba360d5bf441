// Command shopsearch runs the product search core from the command line:
// build the vector index from a catalog, run searches, classify messages.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/shopassist/shopsearch/internal/catalog"
	"github.com/shopassist/shopsearch/internal/embedder"
	"github.com/shopassist/shopsearch/internal/heuristics"
	"github.com/shopassist/shopsearch/internal/indexer"
	"github.com/shopassist/shopsearch/internal/intent"
	"github.com/shopassist/shopsearch/internal/search"
	"github.com/shopassist/shopsearch/internal/support"
	"github.com/shopassist/shopsearch/internal/vectorindex"
	"github.com/shopassist/shopsearch/pkg/types"
)

var version = "dev"

const usage = `Usage: shopsearch <command> [flags]

Commands:
  index    build the vector index from the catalog
  search   run a search query against the index
  intent   classify a user message
  stats    show index statistics

Environment:
  HF_API_KEY             embedding inference API key
  VECTOR_INDEX_URL       vector index endpoint (in-memory index if unset)
  VECTOR_INDEX_API_KEY   vector index API key
  LLM_PRIMARY_URL        primary intent classification endpoint
  LLM_SECONDARY_URL      secondary intent classification endpoint
`

type app struct {
	store    *catalog.Store
	embedder *embedder.Resilient
	index    vectorindex.Index
	heur     *heuristics.Provider
}

func main() {
	log.SetOutput(os.Stderr)

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("shopsearch: could not load .env: %v", err)
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if os.Args[1] == "--version" {
		fmt.Printf("shopsearch %s\n", version)
		return
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "index":
		err = runIndex(ctx, os.Args[2:])
	case "search":
		err = runSearch(ctx, os.Args[2:])
	case "intent":
		err = runIntent(ctx, os.Args[2:])
	case "stats":
		err = runStats(ctx, os.Args[2:])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("shopsearch: %v", err)
	}
}

func commonFlags(fs *flag.FlagSet) (catalogPath, dbPath, configPath *string) {
	catalogPath = fs.String("catalog", "products.json", "catalog JSON file")
	dbPath = fs.String("db", "", "SQLite catalog cache (optional)")
	configPath = fs.String("config", os.Getenv("SHOPSEARCH_HEURISTICS"), "heuristics config file")
	return
}

func newApp(ctx context.Context, catalogPath, dbPath, configPath string) (*app, error) {
	heur, err := heuristics.NewProvider(configPath)
	if err != nil {
		return nil, err
	}
	if err := heur.Watch(ctx.Done()); err != nil {
		log.Printf("shopsearch: config watch disabled: %v", err)
	}

	var loader catalog.Loader = catalog.NewFileLoader(catalogPath)
	if dbPath != "" {
		store, err := catalog.OpenSQLite(dbPath)
		if err != nil {
			return nil, err
		}
		loader = store
	}

	var idx vectorindex.Index
	if url := os.Getenv("VECTOR_INDEX_URL"); url != "" {
		idx = vectorindex.NewClient(url, os.Getenv("VECTOR_INDEX_API_KEY"))
	} else {
		log.Printf("shopsearch: VECTOR_INDEX_URL unset, using in-memory index")
		idx = vectorindex.NewMemory(embedder.Dimension)
	}

	var primary embedder.Embedder
	if key := os.Getenv("HF_API_KEY"); key != "" {
		primary = embedder.NewHFProvider(key, os.Getenv("HF_EMBED_MODEL"))
	} else {
		log.Printf("shopsearch: HF_API_KEY unset, embeddings run in degraded mode")
	}
	emb := embedder.NewResilient(primary, embedder.NewCache(10000))

	return &app{
		store:    catalog.NewStore(loader),
		embedder: emb,
		index:    idx,
		heur:     heur,
	}, nil
}

func runIndex(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("index", flag.ExitOnError)
	catalogPath, dbPath, configPath := commonFlags(fs)
	supportDocs := fs.String("support-docs", "", "extra support docs JSON file")
	clear := fs.Bool("clear", false, "clear the index before writing")
	workers := fs.Int("workers", indexer.DefaultWorkers, "concurrent embedding workers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, *catalogPath, *dbPath, *configPath)
	if err != nil {
		return err
	}

	snap, err := a.store.Ensure(ctx)
	if err != nil {
		return err
	}

	ix := indexer.New(a.embedder, a.index, *workers)

	var res indexer.Result
	if *clear {
		res, err = ix.ReindexProducts(ctx, snap.All())
	} else {
		res, err = ix.IndexProducts(ctx, snap.All())
	}
	if err != nil {
		return err
	}
	fmt.Printf("products: indexed %d, skipped %d\n", res.Indexed, res.Skipped)

	docs := assembleSupportDocs(snap, *supportDocs)
	sres, err := ix.IndexSupportDocs(ctx, docs)
	if err != nil {
		return err
	}
	fmt.Printf("support docs: indexed %d, skipped %d\n", sres.Indexed, sres.Skipped)
	return nil
}

func assembleSupportDocs(snap *catalog.Snapshot, extraPath string) []types.SupportDoc {
	sources := [][]types.SupportDoc{
		support.StaticFAQs(),
		support.FromProducts(snap.All()),
	}
	if extraPath != "" {
		extra, err := support.LoadFile(extraPath)
		if err != nil {
			log.Printf("shopsearch: skipping extra support docs: %v", err)
		} else {
			sources = append(sources, extra)
		}
	}
	return support.Assemble(sources...)
}

func runSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	catalogPath, dbPath, configPath := commonFlags(fs)
	limit := fs.Int("limit", search.DefaultLimit, "max results")
	brand := fs.String("brand", "", "brand filter")
	category := fs.String("category", "", "category filter")
	priceMax := fs.Float64("price-max", 0, "maximum price")
	priceMin := fs.Float64("price-min", 0, "minimum price")
	inStock := fs.Bool("in-stock", false, "only in-stock products")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("search: query argument required")
	}
	query := fs.Arg(0)

	a, err := newApp(ctx, *catalogPath, *dbPath, *configPath)
	if err != nil {
		return err
	}

	spec := &types.FilterSpec{Brand: *brand, Category: *category}
	if *priceMax > 0 {
		spec.PriceMax = priceMax
	}
	if *priceMin > 0 {
		spec.PriceMin = priceMin
	}
	if *inStock {
		spec.InStock = types.Bool(true)
	}

	svc := search.New(a.store, a.embedder, a.index, a.heur, search.WithQueryCache(256))
	results, err := svc.Search(ctx, query, spec, *limit)
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(results)
}

func runIntent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("intent", flag.ExitOnError)
	catalogPath, dbPath, configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("intent: message argument required")
	}
	message := fs.Arg(0)

	a, err := newApp(ctx, *catalogPath, *dbPath, *configPath)
	if err != nil {
		return err
	}
	if _, err := a.store.Ensure(ctx); err != nil {
		return err
	}

	var primary, secondary intent.Tier
	if url := os.Getenv("LLM_PRIMARY_URL"); url != "" {
		primary = intent.NewLLMTier(url, os.Getenv("LLM_PRIMARY_API_KEY"))
	}
	if url := os.Getenv("LLM_SECONDARY_URL"); url != "" {
		secondary = intent.NewLLMTier(url, os.Getenv("LLM_SECONDARY_API_KEY"))
	}

	classifier := intent.NewClassifier(primary, secondary, a.heur, a.store, nil)
	result := classifier.Classify(ctx, message, "cli")

	return json.NewEncoder(os.Stdout).Encode(result)
}

func runStats(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	catalogPath, dbPath, configPath := commonFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	a, err := newApp(ctx, *catalogPath, *dbPath, *configPath)
	if err != nil {
		return err
	}

	stats, err := a.index.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("vectors: %d\ndimension: %d\n", stats.VectorCount, stats.Dimension)
	return nil
}
