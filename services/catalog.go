package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"cherlygood/models"
)

// CatalogService reads products, upsells and their cross-references
type CatalogService struct {
	products *mongo.Collection
	upsells  *mongo.Collection
	log      zerolog.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(client *mongo.Client, db string, log zerolog.Logger) *CatalogService {
	return &CatalogService{
		products: client.Database(db).Collection("products"),
		upsells:  client.Database(db).Collection("upsells"),
		log:      log,
	}
}

// ProductQuery selects which products to fetch and which fields to return.
// IDs takes precedence over the Visibility/Category filters.
type ProductQuery struct {
	IDs        []string
	Fields     []string
	Visibility string
	Category   string
}

// ProductResult is a product plus, when the "upsell" field was requested, the
// resolved upsell document it references.
type ProductResult struct {
	models.Product `bson:",inline"`
	ResolvedUpsell *models.Upsell `bson:"-" json:"upsellDetails,omitempty"`
}

// UpsellQuery selects which upsells to fetch
type UpsellQuery struct {
	IDs             []string
	Fields          []string
	IncludeProducts bool
}

var titleCaser = cases.Title(language.English)

// GetProducts fetches products by ids (batched, missing ids silently dropped)
// or by visibility/category filter (sorted by updated_at descending).
func (cs *CatalogService) GetProducts(ctx context.Context, q ProductQuery) ([]ProductResult, error) {
	proj := projectionFor(q.Fields, "created_at", "updated_at")

	var products []models.Product
	var err error
	if len(q.IDs) > 0 {
		products, err = fetchInChunks(ctx, q.IDs, func(ctx context.Context, chunk []string) ([]models.Product, error) {
			return cs.findProducts(ctx, bson.M{"_id": bson.M{"$in": chunk}}, proj, nil)
		})
	} else {
		filter := bson.M{}
		if q.Visibility != "" {
			filter["visibility"] = q.Visibility
		}
		if q.Category != "" {
			filter["category"] = titleCaser.String(strings.ToLower(q.Category))
		}
		products, err = cs.findProducts(ctx, filter, proj, bson.D{{Key: "updated_at", Value: -1}})
	}
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "products").Msg("product query failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	results := make([]ProductResult, len(products))
	for i, p := range products {
		results[i] = ProductResult{Product: p}
	}

	if hasField(q.Fields, "upsell") {
		var upsellIDs []string
		for _, p := range products {
			if p.Upsell != "" {
				upsellIDs = append(upsellIDs, p.Upsell)
			}
		}
		resolved, err := cs.resolveUpsells(ctx, upsellIDs, nil)
		if err != nil {
			return nil, err
		}
		for i := range results {
			if id := results[i].Product.Upsell; id != "" {
				results[i].ResolvedUpsell = resolved[id]
			}
		}
	}

	return results, nil
}

// GetUpsells fetches upsells by ids or all of them, optionally resolving the
// embedded product references.
func (cs *CatalogService) GetUpsells(ctx context.Context, q UpsellQuery) ([]models.Upsell, error) {
	proj := projectionFor(q.Fields, "created_at", "updated_at")

	var upsells []models.Upsell
	var err error
	if len(q.IDs) > 0 {
		upsells, err = fetchInChunks(ctx, q.IDs, func(ctx context.Context, chunk []string) ([]models.Upsell, error) {
			return cs.findUpsells(ctx, bson.M{"_id": bson.M{"$in": chunk}}, proj, nil)
		})
	} else {
		upsells, err = cs.findUpsells(ctx, bson.M{}, proj, bson.D{{Key: "updated_at", Value: -1}})
	}
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "upsells").Msg("upsell query failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if q.IncludeProducts {
		if err := cs.resolveUpsellProducts(ctx, upsellPtrs(upsells)); err != nil {
			return nil, err
		}
	}

	return upsells, nil
}

// ExistingProductIDs reports which of the given product ids exist. Lookups
// are id-only and batched.
func (cs *CatalogService) ExistingProductIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	return cs.existingIDs(ctx, cs.products, ids)
}

// ExistingUpsellIDs reports which of the given upsell ids exist.
func (cs *CatalogService) ExistingUpsellIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	return cs.existingIDs(ctx, cs.upsells, ids)
}

// CreateProduct inserts a new product (admin only)
func (cs *CatalogService) CreateProduct(ctx context.Context, p *models.Product) error {
	if p.Name == "" || p.Slug == "" {
		return fmt.Errorf("%w: product name and slug are required", ErrValidation)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Visibility == "" {
		p.Visibility = models.VisibilityDraft
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := cs.products.InsertOne(ctx, p); err != nil {
		cs.log.Error().Err(err).Str("collection", "products").Msg("product insert failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// UpdateProduct applies a partial update to a product (admin only)
func (cs *CatalogService) UpdateProduct(ctx context.Context, id string, fields bson.M) error {
	delete(fields, "_id")
	delete(fields, "created_at")
	fields["updated_at"] = time.Now()

	result, err := cs.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "products").Msg("product update failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}

// DeleteProduct removes a product (admin only)
func (cs *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	result, err := cs.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "products").Msg("product delete failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}

// resolveUpsells batch-fetches the given upsell ids and resolves their
// embedded product references. Returns the upsells keyed by id.
func (cs *CatalogService) resolveUpsells(ctx context.Context, ids []string, proj bson.D) (map[string]*models.Upsell, error) {
	upsells, err := fetchInChunks(ctx, ids, func(ctx context.Context, chunk []string) ([]models.Upsell, error) {
		return cs.findUpsells(ctx, bson.M{"_id": bson.M{"$in": chunk}}, proj, nil)
	})
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "upsells").Msg("upsell fetch failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	ptrs := upsellPtrs(upsells)
	if err := cs.resolveUpsellProducts(ctx, ptrs); err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Upsell, len(ptrs))
	for _, u := range ptrs {
		byID[u.ID] = u
	}
	return byID, nil
}

// resolveUpsellProducts merges each embedded product reference over the live
// product it points at, minimal projection, then sorts refs by index.
func (cs *CatalogService) resolveUpsellProducts(ctx context.Context, upsells []*models.Upsell) error {
	var productIDs []string
	for _, u := range upsells {
		for _, ref := range u.Products {
			productIDs = append(productIDs, ref.ID)
		}
	}

	proj := bson.D{
		{Key: "slug", Value: 1},
		{Key: "name", Value: 1},
		{Key: "pricing", Value: 1},
		{Key: "images", Value: 1},
		{Key: "options", Value: 1},
	}
	products, err := fetchInChunks(ctx, productIDs, func(ctx context.Context, chunk []string) ([]models.Product, error) {
		return cs.findProducts(ctx, bson.M{"_id": bson.M{"$in": chunk}}, proj, nil)
	})
	if err != nil {
		cs.log.Error().Err(err).Str("collection", "products").Msg("upsell product resolution failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, u := range upsells {
		for i, ref := range u.Products {
			u.Products[i] = mergeUpsellProduct(ref, byID[ref.ID])
		}
		sort.SliceStable(u.Products, func(a, b int) bool {
			return u.Products[a].Index < u.Products[b].Index
		})
	}
	return nil
}

func (cs *CatalogService) existingIDs(ctx context.Context, coll *mongo.Collection, ids []string) (map[string]bool, error) {
	type keyOnly struct {
		ID string `bson:"_id"`
	}
	proj := bson.D{{Key: "_id", Value: 1}}
	found, err := fetchInChunks(ctx, ids, func(ctx context.Context, chunk []string) ([]keyOnly, error) {
		cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": chunk}}, options.Find().SetProjection(proj))
		if err != nil {
			return nil, err
		}
		var docs []keyOnly
		if err := cur.All(ctx, &docs); err != nil {
			return nil, err
		}
		return docs, nil
	})
	if err != nil {
		cs.log.Error().Err(err).Str("collection", coll.Name()).Msg("existence check failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	existing := make(map[string]bool, len(found))
	for _, doc := range found {
		existing[doc.ID] = true
	}
	return existing, nil
}

func (cs *CatalogService) findProducts(ctx context.Context, filter bson.M, proj bson.D, sortSpec bson.D) ([]models.Product, error) {
	opts := options.Find()
	if proj != nil {
		opts.SetProjection(proj)
	}
	if sortSpec != nil {
		opts.SetSort(sortSpec)
	}
	cur, err := cs.products.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (cs *CatalogService) findUpsells(ctx context.Context, filter bson.M, proj bson.D, sortSpec bson.D) ([]models.Upsell, error) {
	opts := options.Find()
	if proj != nil {
		opts.SetProjection(proj)
	}
	if sortSpec != nil {
		opts.SetSort(sortSpec)
	}
	cur, err := cs.upsells.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var upsells []models.Upsell
	if err := cur.All(ctx, &upsells); err != nil {
		return nil, err
	}
	return upsells, nil
}

// projectionFor builds the field projection for a query. An empty field list
// means the full document. The id and the always fields are kept regardless
// of what the caller asked for.
func projectionFor(fields []string, always ...string) bson.D {
	if len(fields) == 0 {
		return nil
	}
	included := map[string]bool{"_id": true}
	proj := bson.D{{Key: "_id", Value: 1}}
	for _, f := range append(fields, always...) {
		if f == "" || included[f] {
			continue
		}
		included[f] = true
		proj = append(proj, bson.E{Key: f, Value: 1})
	}
	return proj
}

func hasField(fields []string, name string) bool {
	for _, f := range fields {
		if f == name {
			return true
		}
	}
	return false
}

// mergeUpsellProduct overlays the embedded reference's override fields on the
// resolved product snapshot. A reference whose product no longer exists is
// returned as stored.
func mergeUpsellProduct(ref models.UpsellProductRef, p *models.Product) models.UpsellProductRef {
	if p == nil {
		return ref
	}
	out := models.UpsellProductRef{
		Index:     ref.Index,
		ID:        ref.ID,
		Slug:      p.Slug,
		Name:      p.Name,
		BasePrice: p.Pricing.BasePrice,
		Images:    p.Images,
		Options:   p.Options,
	}
	if ref.Slug != "" {
		out.Slug = ref.Slug
	}
	if ref.Name != "" {
		out.Name = ref.Name
	}
	if ref.BasePrice != 0 {
		out.BasePrice = ref.BasePrice
	}
	if ref.Images.Main != "" || len(ref.Images.Gallery) > 0 {
		out.Images = ref.Images
	}
	if len(ref.Options.Colors) > 0 || len(ref.Options.Sizes.Rows) > 0 {
		out.Options = ref.Options
	}
	return out
}

func upsellPtrs(upsells []models.Upsell) []*models.Upsell {
	ptrs := make([]*models.Upsell, len(upsells))
	for i := range upsells {
		ptrs[i] = &upsells[i]
	}
	return ptrs
}
