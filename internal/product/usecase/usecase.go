package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fekuna/omnipos-cartridge/internal/apperr"
	"github.com/fekuna/omnipos-cartridge/internal/clock"
	"github.com/fekuna/omnipos-cartridge/internal/model"
	"github.com/fekuna/omnipos-cartridge/internal/pricing"
	"github.com/fekuna/omnipos-cartridge/internal/product"
	"github.com/fekuna/omnipos-cartridge/internal/product/dto"
	"github.com/fekuna/omnipos-cartridge/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const indexName = "products"

// Indexer is satisfied by the search client. A nil Indexer disables indexing.
type Indexer interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc any) error
	Delete(ctx context.Context, index, id string) error
}

type productUseCase struct {
	repo        product.Repository
	optionTypes []model.OptionType
	es          Indexer
	clock       clock.Clock
	logger      logger.ZapLogger

	indexMu    sync.Mutex
	indexReady bool
}

// NewProductUseCase takes the configured option types in display order; only
// their ids and names are used, allowed values come from the repository.
func NewProductUseCase(repo product.Repository, optionTypes []model.OptionType, es Indexer, clk clock.Clock, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:        repo,
		optionTypes: optionTypes,
		es:          es,
		clock:       clk,
		logger:      log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("title", "is required")
	}
	now := uc.clock.Now()
	p := &model.Product{
		BaseModel:   model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Priced:      model.Priced{UnitPrice: input.UnitPrice},
		Title:       input.Title,
		Slug:        input.Slug,
		Published:   input.Published,
		Available:   input.Available,
		CategoryIDs: input.CategoryIDs,
		UpsellIDs:   input.UpsellIDs,
	}
	if p.Slug == "" {
		p.Slug = slugify(input.Title)
	}
	if input.Image != "" {
		img := input.Image
		p.Image = &img
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, err
	}

	// Every product starts with its "no options" variation carrying the
	// product's price.
	if err := uc.ManageEmpty(ctx, p.ID); err != nil {
		return nil, err
	}
	vs, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: p.ID})
	if err != nil {
		return nil, err
	}
	for i := range vs {
		vs[i].Priced = p.Priced
		vs[i].Image = p.Image
		if err := uc.repo.UpdateVariation(ctx, &vs[i]); err != nil {
			return nil, err
		}
	}
	return uc.CopyDefaultVariation(ctx, p.ID)
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	p.Variations, err = uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: id})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	vs, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: id})
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(vs))
	for _, v := range vs {
		ids = append(ids, v.ID)
	}
	if err := uc.repo.DeleteVariations(ctx, ids); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return err
	}

	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), indexName, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}
	return nil
}

func (uc *productUseCase) OptionTypes(ctx context.Context) ([]model.OptionType, error) {
	options, err := uc.repo.ListOptions(ctx)
	if err != nil {
		return nil, err
	}
	types := make([]model.OptionType, len(uc.optionTypes))
	index := make(map[int]int, len(uc.optionTypes))
	for i, t := range uc.optionTypes {
		types[i] = model.OptionType{ID: t.ID, Name: t.Name}
		index[t.ID] = i
	}
	for _, o := range options {
		if i, ok := index[o.Type]; ok && !types[i].Allows(o.Name) {
			types[i].Values = append(types[i].Values, o.Name)
		}
	}
	return types, nil
}

func (uc *productUseCase) AddOption(ctx context.Context, typeID int, name string) (*model.ProductOption, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	types, err := uc.OptionTypes(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range types {
		if t.ID != typeID {
			continue
		}
		if t.Allows(name) {
			return nil, apperr.Validation("name", "%q already exists for %s", name, t.Name)
		}
		o := &model.ProductOption{ID: uuid.New().String(), Type: typeID, Name: name}
		if err := uc.repo.CreateOption(ctx, o); err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, apperr.Validation("type", "unknown option type %d", typeID)
}

// CreateFromOptions creates a variation for every combination of the selected
// values that does not exist yet. Option types without selected values stay
// unspecified. Calling it again with the same selections creates nothing.
func (uc *productUseCase) CreateFromOptions(ctx context.Context, productID string, selections map[int][]string) ([]model.Variation, error) {
	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}

	types, err := uc.OptionTypes(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[int]model.OptionType, len(types))
	for _, t := range types {
		known[t.ID] = t
	}
	for typeID, values := range selections {
		t, ok := known[typeID]
		if !ok {
			return nil, apperr.Validation("options", "unknown option type %d", typeID)
		}
		for _, v := range values {
			if !t.Allows(v) {
				return nil, apperr.Validation("options", "%q is not a %s option", v, t.Name)
			}
		}
	}

	combinations := combine(types, selections)
	if len(combinations) == 0 {
		return nil, nil
	}

	existing, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: productID})
	if err != nil {
		return nil, err
	}

	var created []model.Variation
	for _, combo := range combinations {
		if hasOptions(existing, combo) {
			continue
		}
		v := uc.newVariation(productID, combo)
		if err := uc.repo.CreateVariation(ctx, v); err != nil {
			return nil, fmt.Errorf("failed to create variation: %w", err)
		}
		existing = append(existing, *v)
		created = append(created, *v)
	}

	if len(created) > 0 {
		uc.logger.Info("variations created", zap.String("product_id", productID), zap.Int("count", len(created)))
		if err := uc.ManageEmpty(ctx, productID); err != nil {
			return nil, err
		}
		if _, err := uc.CopyDefaultVariation(ctx, productID); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// ManageEmpty creates the "no options" variation for a product without
// variations, drops it once option bearing variations exist, and leaves
// exactly one default variation.
func (uc *productUseCase) ManageEmpty(ctx context.Context, productID string) error {
	vs, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: productID})
	if err != nil {
		return err
	}

	switch {
	case len(vs) == 0:
		v := uc.newVariation(productID, nil)
		v.IsDefault = true
		return uc.repo.CreateVariation(ctx, v)
	case len(vs) > 1:
		var empty []string
		var kept []model.Variation
		for _, v := range vs {
			if v.Options.IsEmpty() {
				empty = append(empty, v.ID)
			} else {
				kept = append(kept, v)
			}
		}
		if len(empty) > 0 && len(kept) > 0 {
			if err := uc.repo.DeleteVariations(ctx, empty); err != nil {
				return err
			}
			vs = kept
		}
	}

	return uc.ensureOneDefault(ctx, vs)
}

func (uc *productUseCase) ensureOneDefault(ctx context.Context, vs []model.Variation) error {
	if len(vs) == 0 {
		return nil
	}
	first := -1
	for i := range vs {
		if !vs[i].IsDefault {
			continue
		}
		if first == -1 {
			first = i
			continue
		}
		vs[i].IsDefault = false
		if err := uc.repo.UpdateVariation(ctx, &vs[i]); err != nil {
			return err
		}
	}
	if first == -1 {
		vs[0].IsDefault = true
		return uc.repo.UpdateVariation(ctx, &vs[0])
	}
	return nil
}

func (uc *productUseCase) UpdateVariation(ctx context.Context, input *dto.UpdateVariationInput) (*model.Variation, error) {
	vs, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{IDs: []string{input.ID}})
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return nil, apperr.ErrNotFound
	}
	v := &vs[0]

	if input.SKU != "" && input.SKU != v.SKU {
		other, err := uc.repo.FindVariationBySKU(ctx, input.SKU)
		if err != nil {
			return nil, err
		}
		if other != nil {
			return nil, apperr.Validation("sku", "%q already exists", input.SKU)
		}
		v.SKU = input.SKU
	}
	if input.StockCount != nil && *input.StockCount < 0 {
		return nil, apperr.Validation("stock_count", "must not be negative")
	}
	v.UnitPrice = input.UnitPrice
	v.StockCount = input.StockCount
	v.Image = input.Image
	v.UpdatedAt = uc.clock.Now()

	if input.IsDefault && !v.IsDefault {
		siblings, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: v.ProductID})
		if err != nil {
			return nil, err
		}
		for i := range siblings {
			if siblings[i].IsDefault && siblings[i].ID != v.ID {
				siblings[i].IsDefault = false
				if err := uc.repo.UpdateVariation(ctx, &siblings[i]); err != nil {
					return nil, err
				}
			}
		}
		v.IsDefault = true
	}
	if err := uc.repo.UpdateVariation(ctx, v); err != nil {
		return nil, err
	}

	if err := uc.ManageEmpty(ctx, v.ProductID); err != nil {
		return nil, err
	}
	if _, err := uc.CopyDefaultVariation(ctx, v.ProductID); err != nil {
		return nil, err
	}
	return v, nil
}

func (uc *productUseCase) ListVariations(ctx context.Context, productID string) ([]model.Variation, error) {
	return uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: productID})
}

func (uc *productUseCase) FindVariationBySKU(ctx context.Context, sku string) (*model.Variation, error) {
	return uc.repo.FindVariationBySKU(ctx, sku)
}

// CopyDefaultVariation mirrors the default variation's price, sku, stock and
// image onto its product.
func (uc *productUseCase) CopyDefaultVariation(ctx context.Context, productID string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.ErrNotFound
	}
	vs, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: productID})
	if err != nil {
		return nil, err
	}
	var def *model.Variation
	for i := range vs {
		if vs[i].IsDefault {
			def = &vs[i]
			break
		}
	}
	if def == nil {
		return nil, fmt.Errorf("product %s has no default variation", productID)
	}

	p.Priced = def.Priced
	sku := def.SKU
	p.SKU = &sku
	p.StockCount = def.StockCount
	if def.Image != nil {
		p.Image = def.Image
	}
	p.UpdatedAt = uc.clock.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	p.Variations = vs

	go uc.syncToElastic(context.Background(), *p)

	return p, nil
}

func (uc *productUseCase) AddedToCart(ctx context.Context, productID string) error {
	return uc.repo.RecordAction(ctx, productID, dayOrdinal(uc.clock.Now()), model.ActionAddedToCart)
}

func (uc *productUseCase) Purchased(ctx context.Context, productID string) error {
	return uc.repo.RecordAction(ctx, productID, dayOrdinal(uc.clock.Now()), model.ActionPurchased)
}

func (uc *productUseCase) Reindex(ctx context.Context, productIDs []string) {
	if uc.es == nil || len(productIDs) == 0 {
		return
	}
	products, err := uc.repo.FindAll(ctx, &dto.ProductFilters{IDs: productIDs})
	if err != nil {
		uc.logger.Error("failed to load products for reindex", zap.Error(err))
		return
	}
	for _, p := range products {
		vs, err := uc.repo.FindVariations(ctx, &dto.VariationFilters{ProductID: p.ID})
		if err != nil {
			uc.logger.Error("failed to load variations for reindex", zap.String("product_id", p.ID), zap.Error(err))
			continue
		}
		p.Variations = vs
		uc.syncToElastic(ctx, p)
	}
}

type productDocument struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SKUs      []string  `json:"skus"`
	Price     string    `json:"price"`
	OnSale    bool      `json:"on_sale"`
	Published bool      `json:"published"`
	UpdatedAt time.Time `json:"updated_at"`
}

const productMapping = `{
	"mappings": {
		"properties": {
			"title": { "type": "text" },
			"skus": { "type": "keyword" },
			"price": { "type": "scaled_float", "scaling_factor": 100 },
			"on_sale": { "type": "boolean" },
			"published": { "type": "boolean" },
			"updated_at": { "type": "date" }
		}
	}
}`

// ensureIndex creates the products index on first use. A failed attempt is
// retried by the next sync.
func (uc *productUseCase) ensureIndex(ctx context.Context) error {
	uc.indexMu.Lock()
	defer uc.indexMu.Unlock()
	if uc.indexReady {
		return nil
	}
	if err := uc.es.CreateIndex(ctx, indexName, productMapping); err != nil {
		return err
	}
	uc.indexReady = true
	return nil
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p model.Product) {
	if uc.es == nil {
		return
	}
	if err := uc.ensureIndex(ctx); err != nil {
		uc.logger.Warn("failed to create search index", zap.String("index", indexName), zap.Error(err))
	}

	now := uc.clock.Now()
	doc := productDocument{
		ID:        p.ID,
		Title:     p.Title,
		Price:     pricing.Price(p.Priced, now).StringFixed(2),
		OnSale:    pricing.OnSale(p.Priced, now),
		Published: p.Published,
		UpdatedAt: p.UpdatedAt,
	}
	for _, v := range p.Variations {
		doc.SKUs = append(doc.SKUs, v.SKU)
	}
	if err := uc.es.Index(ctx, indexName, p.ID, doc); err != nil {
		uc.logger.Error("failed to index product", zap.String("product_id", p.ID), zap.Error(err))
	}
}

func (uc *productUseCase) newVariation(productID string, options model.OptionValues) *model.Variation {
	now := uc.clock.Now()
	id := uuid.New().String()
	return &model.Variation{
		BaseModel: model.BaseModel{ID: id, CreatedAt: now, UpdatedAt: now},
		ProductID: productID,
		SKU:       id,
		Options:   options,
	}
}

// combine builds the cartesian product of the selected values, walking option
// types in configured order.
func combine(types []model.OptionType, selections map[int][]string) []model.OptionValues {
	combos := []model.OptionValues{{}}
	used := false
	for _, t := range types {
		values := dedupe(selections[t.ID])
		if len(values) == 0 {
			continue
		}
		used = true
		next := make([]model.OptionValues, 0, len(combos)*len(values))
		for _, c := range combos {
			for _, v := range values {
				combo := make(model.OptionValues, len(c)+1)
				for k, cv := range c {
					combo[k] = cv
				}
				combo[t.ID] = v
				next = append(next, combo)
			}
		}
		combos = next
	}
	if !used {
		return nil
	}
	return combos
}

func hasOptions(vs []model.Variation, combo model.OptionValues) bool {
	for _, v := range vs {
		if v.Options.Equal(combo) {
			return true
		}
	}
	return false
}

func dedupe(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	dash := false
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
		} else if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// unixEpochOrdinal is the proleptic Gregorian ordinal of 1970-01-01, where
// 0001-01-01 is day 1.
const unixEpochOrdinal = 719163

// dayOrdinal buckets actions per calendar day.
func dayOrdinal(t time.Time) int {
	y, m, d := t.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return unixEpochOrdinal + int(day.Unix()/86400)
}
