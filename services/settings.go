package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cherlygood/models"
)

// Singleton settings document keys.
const (
	categoriesDocID        = "categories"
	pageHeroDocID          = "page_hero"
	discoveryProductsDocID = "discovery_products"
)

// defaultCategories is the fixed category list every store starts from.
// Custom categories may be added alongside; these eight are reconciled on
// every read.
var defaultCategories = []models.Category{
	{Index: 0, Name: "Dresses", Image: "dresses.png", Visibility: models.VisibilityHidden},
	{Index: 1, Name: "Tops", Image: "tops.png", Visibility: models.VisibilityHidden},
	{Index: 2, Name: "Bottoms", Image: "bottoms.png", Visibility: models.VisibilityHidden},
	{Index: 3, Name: "Outerwear", Image: "outerwear.png", Visibility: models.VisibilityHidden},
	{Index: 4, Name: "Shoes", Image: "shoes.png", Visibility: models.VisibilityHidden},
	{Index: 5, Name: "Bags", Image: "bags.png", Visibility: models.VisibilityHidden},
	{Index: 6, Name: "Accessories", Image: "accessories.png", Visibility: models.VisibilityHidden},
	{Index: 7, Name: "Jewelry", Image: "jewelry.png", Visibility: models.VisibilityHidden},
}

// SettingsService reads and seeds the small singleton settings documents
type SettingsService struct {
	settings *mongo.Collection
	log      zerolog.Logger
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(client *mongo.Client, db string, log zerolog.Logger) *SettingsService {
	return &SettingsService{
		settings: client.Database(db).Collection("settings"),
		log:      log,
	}
}

// GetCategories returns the category list, seeding the defaults on first
// read. Every read reconciles the stored list against the defaults. Missing
// defaults are added back and drifted index or image values are repaired,
// while custom categories pass through untouched. The list is persisted only
// when something changed and is returned sorted by index.
func (ss *SettingsService) GetCategories(ctx context.Context) ([]models.Category, error) {
	var doc models.CategorySettings
	err := ss.settings.FindOne(ctx, bson.M{"_id": categoriesDocID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		doc = models.CategorySettings{
			ID:         categoriesDocID,
			Categories: defaultCategories,
			UpdatedAt:  time.Now(),
		}
		if _, err := ss.settings.InsertOne(ctx, doc); err != nil {
			ss.log.Error().Err(err).Str("collection", "settings").Msg("category seed failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return sortedByIndex(doc.Categories), nil
	}
	if err != nil {
		ss.log.Error().Err(err).Str("collection", "settings").Msg("category read failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	reconciled, changed := reconcileCategories(doc.Categories)
	if changed {
		update := bson.M{"$set": bson.M{"categories": reconciled, "updated_at": time.Now()}}
		if _, err := ss.settings.UpdateOne(ctx, bson.M{"_id": categoriesDocID}, update); err != nil {
			ss.log.Error().Err(err).Str("collection", "settings").Msg("category reconcile failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
	}
	return reconciled, nil
}

// UpdateCategories replaces the stored category list (admin only)
func (ss *SettingsService) UpdateCategories(ctx context.Context, categories []models.Category) error {
	doc := models.CategorySettings{
		ID:         categoriesDocID,
		Categories: sortedByIndex(categories),
		UpdatedAt:  time.Now(),
	}
	return ss.replaceDoc(ctx, categoriesDocID, doc)
}

// GetPageHero returns the homepage hero, seeding a hidden default on first
// read.
func (ss *SettingsService) GetPageHero(ctx context.Context) (*models.PageHero, error) {
	var hero models.PageHero
	err := ss.settings.FindOne(ctx, bson.M{"_id": pageHeroDocID}).Decode(&hero)
	if errors.Is(err, mongo.ErrNoDocuments) {
		hero = models.PageHero{
			ID:         pageHeroDocID,
			Visibility: models.VisibilityHidden,
			UpdatedAt:  time.Now(),
		}
		if _, err := ss.settings.InsertOne(ctx, hero); err != nil {
			ss.log.Error().Err(err).Str("collection", "settings").Msg("page hero seed failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return &hero, nil
	}
	if err != nil {
		ss.log.Error().Err(err).Str("collection", "settings").Msg("page hero read failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &hero, nil
}

// UpdatePageHero replaces the hero document (admin only)
func (ss *SettingsService) UpdatePageHero(ctx context.Context, hero models.PageHero) error {
	hero.ID = pageHeroDocID
	hero.UpdatedAt = time.Now()
	return ss.replaceDoc(ctx, pageHeroDocID, hero)
}

// GetDiscoveryProducts returns the discovery-products visibility settings,
// seeding an all-hidden default on first read.
func (ss *SettingsService) GetDiscoveryProducts(ctx context.Context) (*models.DiscoveryProductsSettings, error) {
	var settings models.DiscoveryProductsSettings
	err := ss.settings.FindOne(ctx, bson.M{"_id": discoveryProductsDocID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		settings = models.DiscoveryProductsSettings{
			ID: discoveryProductsDocID,
			VisibleOnPages: map[string]bool{
				"cart":     false,
				"checkout": false,
				"home":     false,
			},
			UpdatedAt: time.Now(),
		}
		if _, err := ss.settings.InsertOne(ctx, settings); err != nil {
			ss.log.Error().Err(err).Str("collection", "settings").Msg("discovery settings seed failed")
			return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		return &settings, nil
	}
	if err != nil {
		ss.log.Error().Err(err).Str("collection", "settings").Msg("discovery settings read failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return &settings, nil
}

// UpdateDiscoveryProducts replaces the discovery-products settings (admin
// only)
func (ss *SettingsService) UpdateDiscoveryProducts(ctx context.Context, settings models.DiscoveryProductsSettings) error {
	settings.ID = discoveryProductsDocID
	settings.UpdatedAt = time.Now()
	return ss.replaceDoc(ctx, discoveryProductsDocID, settings)
}

func (ss *SettingsService) replaceDoc(ctx context.Context, id string, doc interface{}) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := ss.settings.ReplaceOne(ctx, bson.M{"_id": id}, doc, opts); err != nil {
		ss.log.Error().Err(err).Str("collection", "settings").Str("doc", id).Msg("settings write failed")
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return nil
}

// reconcileCategories folds the fixed defaults into the stored list: missing
// defaults are added, defaults whose index or image drifted are repaired
// (visibility is the merchant's and stays untouched), custom categories pass
// through. The result is sorted by index.
func reconcileCategories(stored []models.Category) ([]models.Category, bool) {
	byName := make(map[string]int, len(stored))
	out := make([]models.Category, len(stored))
	copy(out, stored)
	for i, c := range out {
		byName[c.Name] = i
	}

	changed := false
	for _, def := range defaultCategories {
		i, ok := byName[def.Name]
		if !ok {
			out = append(out, def)
			changed = true
			continue
		}
		if out[i].Index != def.Index || out[i].Image != def.Image {
			out[i].Index = def.Index
			out[i].Image = def.Image
			changed = true
		}
	}

	return sortedByIndex(out), changed
}

func sortedByIndex(categories []models.Category) []models.Category {
	sort.SliceStable(categories, func(a, b int) bool {
		return categories[a].Index < categories[b].Index
	})
	return categories
}
