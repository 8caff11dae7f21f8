package main

import (
	"errors"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/poiesic/casbert/core"
	"github.com/poiesic/casbert/mathml"
	"github.com/poiesic/casbert/reindex"
	"github.com/poiesic/casbert/search"
	"github.com/urfave/cli/v2"
)

func writeJSON(c *cli.Context, v any) error {
	enc := gojson.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func singleArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", name)
	}
	return c.Args().First(), nil
}

func importCommand(c *cli.Context) error {
	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.Import(c.Context, c.String("bundle"))
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return writeJSON(c, counts)
}

// searchQuery builds the query from the configured defaults and the flags.
func searchQuery(c *cli.Context) (core.Query, error) {
	text := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(text) == "" {
		return core.Query{}, errors.New("search needs query text")
	}

	q := configOf(c).Query(text)
	if c.IsSet("top") {
		q.Top = c.Int("top")
	}
	if c.IsSet("min-sim") {
		q.MinSimilarity = float32(c.Float64("min-sim"))
	}
	if c.IsSet("variant") {
		v, err := core.ParseVariant(c.String("variant"))
		if err != nil {
			return core.Query{}, err
		}
		q.Variant = v
	}
	q.IncludeDependencies = c.Bool("deps")
	return q, core.ValidateQuery(q)
}

func newSearcher(c *cli.Context) (*search.Searcher, func(), error) {
	cfg := configOf(c)
	format, err := cfg.MathFormat()
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("format") {
		if format, err = mathml.ParseFormat(c.String("format")); err != nil {
			return nil, nil, err
		}
	}

	db, err := openDatabase(c, true)
	if err != nil {
		return nil, nil, err
	}
	s, err := db.NewSearcher(c.Context,
		search.WithMathFormat(format),
		search.WithServerURL(cfg.ServerURL),
		search.WithPoolSize(cfg.Search.PoolSize),
	)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return s, func() {
		s.Release()
		db.Close()
	}, nil
}

func searchCommand(c *cli.Context) error {
	q, err := searchQuery(c)
	if err != nil {
		return err
	}
	kind := strings.ToLower(c.String("type"))
	var entity core.EntityType
	if kind != "all" && kind != "plot" {
		if entity, err = core.ParseEntityType(kind); err != nil {
			return err
		}
	}

	s, release, err := newSearcher(c)
	if err != nil {
		return err
	}
	defer release()

	var result any
	switch {
	case kind == "all":
		result, err = s.SearchAll(c.Context, q)
	case kind == "plot":
		result, err = s.SearchPlots(c.Context, q)
	case entity == core.EntityVariable:
		result, err = s.SearchVariables(c.Context, q)
	case entity == core.EntityComponent:
		result, err = s.SearchComponents(c.Context, q)
	case entity == core.EntityCellml:
		result, err = s.SearchCellmls(c.Context, q)
	case entity == core.EntitySedml:
		result, err = s.SearchSedmls(c.Context, q)
	case entity == core.EntityImage:
		result, err = s.SearchImages(c.Context, q)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	return writeJSON(c, result)
}

func depsCommand(c *cli.Context) error {
	id, err := singleArg(c, "VARIABLE_ID")
	if err != nil {
		return err
	}
	s, release, err := newSearcher(c)
	if err != nil {
		return err
	}
	defer release()
	return writeJSON(c, s.DependencyMaths(id))
}

func similarCommand(c *cli.Context) error {
	id, err := singleArg(c, "VARIABLE_ID")
	if err != nil {
		return err
	}
	s, release, err := newSearcher(c)
	if err != nil {
		return err
	}
	defer release()
	return writeJSON(c, s.SimilarCellmls(id))
}

func imagesCommand(c *cli.Context) error {
	id, err := singleArg(c, "CELLML_ID")
	if err != nil {
		return err
	}
	s, release, err := newSearcher(c)
	if err != nil {
		return err
	}
	defer release()
	return writeJSON(c, s.EntityImages(c.Context, id))
}

func statsCommand(c *cli.Context) error {
	db, err := openDatabase(c, true)
	if err != nil {
		return err
	}
	defer db.Close()

	counts, err := db.Repository().Counts(c.Context)
	if err != nil {
		return err
	}
	return writeJSON(c, counts)
}

func reindexCommand(c *cli.Context) error {
	entity, err := core.ParseEntityType(c.String("entity"))
	if err != nil {
		return err
	}
	variant, err := core.ParseVariant(c.String("variant"))
	if err != nil {
		return err
	}

	rc := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if rc.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if rc.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if rc.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c, false)
	if err != nil {
		return err
	}
	defer db.Close()

	cfg := configOf(c)
	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(c.App.ErrWriter)

	if _, err := db.Reindex(c.Context, entity, variant, rc, c.App.ErrWriter); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	return nil
}
