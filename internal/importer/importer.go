package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"pizzeria-storefront/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Kind is the type of CSV file being imported.
type Kind string

const (
	KindProducts   Kind = "products"
	KindCategories Kind = "categories"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type CategoryWriter interface {
	Upsert(ctx context.Context, category domain.Category) (*domain.Category, error)
}

// Options tunes an import run. Existing is the catalog already in the database; rows
// without a price_ref reuse the one stored under the same name.
type Options struct {
	Existing *domain.Catalog
	Currency string
	Logger   *zerolog.Logger
}

// CSVImporter reads menu CSV files and inserts/updates products or categories.
type CSVImporter struct {
	reader       *csv.Reader
	productRepo  ProductWriter
	categoryRepo CategoryWriter
	existing     *domain.Catalog
	currency     string
	validate     *validator.Validate
	logger       *zerolog.Logger
}

func NewCSVImporter(r io.Reader, products ProductWriter, categories CategoryWriter, opts Options) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true

	currency := strings.ToLower(strings.TrimSpace(opts.Currency))
	if currency == "" {
		currency = "eur"
	}
	logger := opts.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &CSVImporter{
		reader:       csvr,
		productRepo:  products,
		categoryRepo: categories,
		existing:     opts.Existing,
		currency:     currency,
		validate:     validator.New(),
		logger:       logger,
	}
}

type productRow struct {
	ID          string `validate:"required,max=64"`
	Name        string `validate:"required,max=120"`
	Description string
	Price       decimal.Decimal
	Currency    string `validate:"required,len=3"`
	Category    string
	Image       string
	Popular     bool
	Vegetarian  bool
	Spicy       bool
	Allergens   []string
	PriceRef    string `validate:"required"`
	ProductRef  string
	Mode        string `validate:"oneof=payment subscription"`
	Position    int
}

// Run parses CSV rows and upserts them. Category files are recognised by their
// header; see DetectKind.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	switch kindOf(index) {
	case KindCategories:
		return i.runCategories(ctx, index)
	default:
		return i.runProducts(ctx, index)
	}
}

func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	if i.productRepo == nil {
		return 0, errors.New("product writer is required")
	}
	var (
		imported   int
		line       = 1
		categories = map[string]bool{}
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line++

		row, err := i.parseProduct(record, index, imported)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		if row == nil {
			continue
		}

		if row.Category != "" && !categories[row.Category] {
			if err := i.saveCategory(ctx, domain.Category{
				ID:        row.Category,
				Name:      displayName(row.Category),
				SortOrder: len(categories),
			}); err != nil {
				return imported, err
			}
			categories[row.Category] = true
		}

		if err := i.save(ctx, row); err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		imported++
	}

	i.logger.Info().Int("products", imported).Int("categories", len(categories)).Msg("menu import finished")
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *productRow) error {
	if row.PriceRef == "" {
		if p, ok := i.existing.ByName(row.Name); ok {
			row.PriceRef = p.PriceRef
			if row.ProductRef == "" {
				row.ProductRef = p.ProductRef
			}
			i.logger.Debug().Str("product_id", row.ID).Str("price_ref", p.PriceRef).Msg("price ref taken from existing menu")
		}
	}
	if err := i.validate.Struct(row); err != nil {
		return fmt.Errorf("invalid product row %q: %w", row.ID, err)
	}
	if !row.Price.IsPositive() {
		return fmt.Errorf("invalid price for %q: %s", row.ID, row.Price)
	}

	p := domain.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Price:       row.Price,
		Currency:    row.Currency,
		PriceRef:    row.PriceRef,
		ProductRef:  row.ProductRef,
		Mode:        row.Mode,
		Image:       row.Image,
		CategoryID:  row.Category,
		Popular:     row.Popular,
		Vegetarian:  row.Vegetarian,
		Spicy:       row.Spicy,
		Allergens:   row.Allergens,
		Position:    row.Position,
	}

	if _, err := i.productRepo.Upsert(ctx, p); err != nil {
		return fmt.Errorf("upsert product %q: %w", row.ID, err)
	}
	return nil
}

func (i *CSVImporter) runCategories(ctx context.Context, index map[string]int) (int, error) {
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		id := pick(record, index, "id")
		if id == "" {
			continue
		}
		name := pick(record, index, "name")
		if name == "" {
			name = displayName(id)
		}
		order := imported
		if raw := pick(record, index, "sort_order"); raw != "" {
			order, err = strconv.Atoi(raw)
			if err != nil {
				return imported, fmt.Errorf("invalid sort_order for %q: %s", id, raw)
			}
		}

		if err := i.saveCategory(ctx, domain.Category{
			ID:          id,
			Name:        name,
			Description: pick(record, index, "description"),
			SortOrder:   order,
		}); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func (i *CSVImporter) saveCategory(ctx context.Context, c domain.Category) error {
	if i.categoryRepo == nil {
		return nil
	}
	if _, err := i.categoryRepo.Upsert(ctx, c); err != nil {
		return fmt.Errorf("upsert category %q: %w", c.ID, err)
	}
	return nil
}

// DetectKind peeks at the header row. Product files carry a price column.
func DetectKind(r io.Reader) (Kind, error) {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	headers, err := csvr.Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	return kindOf(headerIndex(headers)), nil
}

func kindOf(index map[string]int) Kind {
	if _, ok := index["price"]; ok {
		return KindProducts
	}
	if _, ok := index["sort_order"]; ok {
		return KindCategories
	}
	return KindProducts
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

// parseProduct returns nil for blank rows.
func (i *CSVImporter) parseProduct(record []string, index map[string]int, position int) (*productRow, error) {
	id := pick(record, index, "id")
	name := pick(record, index, "name")
	if id == "" && name == "" {
		return nil, nil
	}

	row := &productRow{
		ID:          id,
		Name:        name,
		Description: pick(record, index, "description"),
		Currency:    strings.ToLower(pick(record, index, "currency")),
		Category:    pick(record, index, "category"),
		Image:       pick(record, index, "image"),
		PriceRef:    pick(record, index, "price_ref"),
		ProductRef:  pick(record, index, "product_ref"),
		Mode:        strings.ToLower(pick(record, index, "mode")),
		Position:    position,
	}
	if row.Currency == "" {
		row.Currency = i.currency
	}
	if row.Mode == "" {
		row.Mode = domain.ModePayment
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("invalid price for %q: %w", id, err)
	}
	row.Price = price

	for _, flag := range []struct {
		column string
		dst    *bool
	}{
		{"popular", &row.Popular},
		{"vegetarian", &row.Vegetarian},
		{"spicy", &row.Spicy},
	} {
		v, err := parseBool(pick(record, index, flag.column))
		if err != nil {
			return nil, fmt.Errorf("invalid %s for %q: %w", flag.column, id, err)
		}
		*flag.dst = v
	}

	if raw := pick(record, index, "position"); raw != "" {
		pos, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid position for %q: %s", id, raw)
		}
		row.Position = pos
	}

	for _, a := range strings.Split(pick(record, index, "allergens"), ";") {
		if a = strings.TrimSpace(a); a != "" {
			row.Allergens = append(row.Allergens, a)
		}
	}
	return row, nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "", "no", "n":
		return false, nil
	case "yes", "y":
		return true, nil
	}
	return strconv.ParseBool(raw)
}

// displayName turns a slug like "gluten-free" into "Gluten free".
func displayName(slug string) string {
	s := strings.TrimSpace(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
