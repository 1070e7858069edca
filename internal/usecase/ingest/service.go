package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/shoplens/shopsearch/internal/domain/product"
	"github.com/shoplens/shopsearch/internal/domain/search/filter"
)

// DefaultBatchSize is the number of products embedded per provider call.
const DefaultBatchSize = 64

// Report summarizes one ingestion run.
type Report struct {
	Imported   int
	Skipped    int
	Embedded   int
	TokensUsed int
}

// Progress is called after each stored batch with cumulative counts.
type Progress func(done, total int)

// Service loads products into the catalog: CSV import, built-in seed data,
// and re-embedding of the stored set.
type Service struct {
	catalog   Catalog
	embed     BatchEmbedder
	batchSize int
	logger    *zap.Logger
}

// New creates an ingest service.
func New(catalog Catalog, embed BatchEmbedder, logger *zap.Logger) *Service {
	return &Service{
		catalog:   catalog,
		embed:     embed,
		batchSize: DefaultBatchSize,
		logger:    logger,
	}
}

// WithBatchSize configures the embedding batch size.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// ImportCSV reads a header-mapped CSV stream and stores every valid row.
// Invalid rows are skipped and counted, never fatal. Rows that cannot be
// embedded are stored without a vector and stay reachable through
// non-semantic orderings.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader, progress Progress) (Report, error) {
	var report Report

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return report, fmt.Errorf("read csv header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, col := range []string{"id", "title", "description", "category"} {
		if _, ok := cols[col]; !ok {
			return report, fmt.Errorf("csv is missing the %s column", col)
		}
	}

	var products []product.Product
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			s.logger.Warn("Skipping malformed csv row", zap.Int("line", line), zap.Error(err))
			report.Skipped++
			continue
		}

		p, err := rowToProduct(record, cols)
		if err != nil {
			s.logger.Warn("Skipping invalid product row", zap.Int("line", line), zap.Error(err))
			report.Skipped++
			continue
		}
		products = append(products, p)
	}

	if err := s.embedAndStore(ctx, products, progress, &report); err != nil {
		return report, err
	}
	return report, nil
}

// Seed stores the built-in demo catalog.
func (s *Service) Seed(ctx context.Context, progress Progress) (Report, error) {
	var report Report
	if err := s.embedAndStore(ctx, seedProducts(), progress, &report); err != nil {
		return report, err
	}
	return report, nil
}

// Reembed regenerates embeddings for stored products: by default only the
// ones missing a vector, or the whole catalog when all is set. Unlike
// import, a provider failure here is fatal: a partial refresh would leave
// vectors from mixed model versions.
func (s *Service) Reembed(ctx context.Context, all bool, progress Progress) (Report, error) {
	var report Report

	products, err := s.catalog.FetchCandidates(ctx, filter.Filter{})
	if err != nil {
		return report, fmt.Errorf("fetch products: %w", err)
	}

	if !all {
		missing := products[:0]
		for _, p := range products {
			if _, err := s.catalog.GetEmbedding(ctx, p.ID()); err != nil {
				missing = append(missing, p)
			}
		}
		products = missing
	}

	total := len(products)
	for start := 0; start < total; start += s.batchSize {
		end := start + s.batchSize
		if end > total {
			end = total
		}
		chunk := products[start:end]

		texts := make([]string, len(chunk))
		for i := range chunk {
			texts[i] = chunk[i].EmbeddingText()
		}

		res, err := s.embed.BatchEmbed(ctx, texts)
		if err != nil {
			return report, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if len(res.Embeddings) != len(chunk) {
			return report, fmt.Errorf("embed batch at %d: got %d vectors for %d texts",
				start, len(res.Embeddings), len(chunk))
		}
		report.TokensUsed += res.TotalTokens

		for i := range chunk {
			if err := s.catalog.PutEmbedding(ctx, chunk[i].ID(), res.Embeddings[i]); err != nil {
				return report, fmt.Errorf("store embedding %s: %w", chunk[i].ID(), err)
			}
			report.Embedded++
		}

		if progress != nil {
			progress(end, total)
		}
	}
	return report, nil
}

// embedAndStore vectorizes products in batches and writes them with their
// embeddings. Provider failures degrade the affected batch to vectorless
// storage instead of aborting the run.
func (s *Service) embedAndStore(
	ctx context.Context, products []product.Product,
	progress Progress, report *Report,
) error {
	total := len(products)
	for start := 0; start < total; start += s.batchSize {
		end := start + s.batchSize
		if end > total {
			end = total
		}
		chunk := products[start:end]

		texts := make([]string, len(chunk))
		for i := range chunk {
			texts[i] = chunk[i].EmbeddingText()
		}

		entries := make([]product.Indexed, len(chunk))
		for i := range chunk {
			entries[i] = product.Indexed{Product: chunk[i]}
		}

		res, err := s.embed.BatchEmbed(ctx, texts)
		switch {
		case err != nil:
			s.logger.Warn("Batch embedding failed, storing products without vectors",
				zap.Int("batch_start", start), zap.Error(err))
		case len(res.Embeddings) != len(chunk):
			s.logger.Warn("Embedding count mismatch, storing batch without vectors",
				zap.Int("want", len(chunk)), zap.Int("got", len(res.Embeddings)))
		default:
			for i := range entries {
				entries[i].Vector = res.Embeddings[i]
			}
			report.Embedded += len(chunk)
			report.TokensUsed += res.TotalTokens
		}

		if err := s.catalog.UpsertBatch(ctx, entries); err != nil {
			return fmt.Errorf("store batch at %d: %w", start, err)
		}
		report.Imported += len(chunk)

		if progress != nil {
			progress(end, total)
		}
	}
	return nil
}

// rowToProduct maps one CSV record through the validating constructor.
func rowToProduct(record []string, cols map[string]int) (product.Product, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	getFloat := func(name string) (float64, error) {
		raw := cleanNumber(get(name))
		if raw == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("column %s: %q is not a number", name, raw)
		}
		return f, nil
	}

	// Description and category feed the embedding text; rows without them
	// would index on the title alone and rank poorly.
	if get("description") == "" {
		return product.Product{}, fmt.Errorf("missing description")
	}
	if get("category") == "" {
		return product.Product{}, fmt.Errorf("missing category")
	}

	price, err := getFloat("price")
	if err != nil {
		return product.Product{}, err
	}
	wasPrice, err := getFloat("was_price")
	if err != nil {
		return product.Product{}, err
	}
	discount, err := getFloat("discount")
	if err != nil {
		return product.Product{}, err
	}
	rating, err := getFloat("rating")
	if err != nil {
		return product.Product{}, err
	}

	var popularity int64
	if raw := get("popularity"); raw != "" {
		popularity, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return product.Product{}, fmt.Errorf("column popularity: %q is not an integer", raw)
		}
	}

	return product.New(
		get("id"), get("title"), get("description"), cleanTags(get("tags")),
		get("category"), get("brand"),
		price, wasPrice, discount, rating, popularity,
		get("image_url"), get("product_url"),
	)
}

// cleanNumber strips currency symbols and thousands separators, so price
// columns exported as "$1,299.00" parse.
func cleanNumber(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "$")
	return strings.ReplaceAll(raw, ",", "")
}

// cleanTags normalizes list-syntax tag exports ("['shoes', 'running']")
// to a plain comma-separated string.
func cleanTags(raw string) string {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "[")
	raw = strings.TrimSuffix(raw, "]")

	parts := strings.Split(raw, ",")
	tags := parts[:0]
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `'"`)
		if p != "" {
			tags = append(tags, p)
		}
	}
	return strings.Join(tags, ",")
}
