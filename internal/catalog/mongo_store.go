package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/noah-isme/toko-checkout/internal/obs"
)

// CollectionName is the Mongo collection holding published catalog items.
const CollectionName = "Catalog"

// MongoStore reads published catalog items from MongoDB.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore constructs a MongoStore over the catalog collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{collection: db.Collection(CollectionName)}
}

// FindVisibleProducts implements Lookup.
func (s *MongoStore) FindVisibleProducts(ctx context.Context, productIDs []string) ([]Product, error) {
	ids := DistinctIDs(productIDs)
	if len(ids) == 0 {
		return []Product{}, nil
	}
	cursor, err := s.collection.Find(ctx, visibleProductsFilter(ids))
	if err != nil {
		obs.ObserveCatalogLookup("mongo", err)
		return nil, fmt.Errorf("find catalog items: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var docs []catalogItemDoc
	if err := cursor.All(ctx, &docs); err != nil {
		obs.ObserveCatalogLookup("mongo", err)
		return nil, fmt.Errorf("decode catalog items: %w", err)
	}
	products := make([]Product, 0, len(docs))
	for _, doc := range docs {
		products = append(products, doc.Product.toProduct())
	}
	obs.ObserveCatalogLookup("mongo", nil)
	return products, nil
}

// Ping checks connectivity to the catalog database.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, nil)
}

func visibleProductsFilter(ids []string) bson.M {
	return bson.M{
		"product.productId": bson.M{"$in": ids},
		"product.isVisible": true,
		"product.isDeleted": bson.M{"$ne": true},
		"isDeleted":         bson.M{"$ne": true},
	}
}

type catalogItemDoc struct {
	IsDeleted bool       `bson:"isDeleted"`
	Product   productDoc `bson:"product"`
}

type productDoc struct {
	ProductID string       `bson:"productId"`
	Title     string       `bson:"title"`
	IsVisible bool         `bson:"isVisible"`
	IsDeleted bool         `bson:"isDeleted"`
	Variants  []variantDoc `bson:"variants"`
	Media     []mediaDoc   `bson:"media"`
}

type variantDoc struct {
	VariantID     string              `bson:"variantId"`
	Title         string              `bson:"title"`
	Pricing       map[string]priceDoc `bson:"pricing"`
	Quantity      int                 `bson:"quantity"`
	IsBackorder   bool                `bson:"isBackorder"`
	IsLowQuantity bool                `bson:"isLowQuantity"`
	IsSoldOut     bool                `bson:"isSoldOut"`
	Options       []variantDoc        `bson:"options"`
}

type priceDoc struct {
	Price          float64  `bson:"price"`
	CompareAtPrice *float64 `bson:"compareAtPrice"`
}

type mediaDoc struct {
	VariantID string  `bson:"variantId"`
	URLs      urlsDoc `bson:"URLs"`
}

type urlsDoc struct {
	Large     string `bson:"large"`
	Medium    string `bson:"medium"`
	Original  string `bson:"original"`
	Small     string `bson:"small"`
	Thumbnail string `bson:"thumbnail"`
}

func (d productDoc) toProduct() Product {
	p := Product{
		ProductID: d.ProductID,
		Title:     d.Title,
		IsVisible: d.IsVisible,
		IsDeleted: d.IsDeleted,
		Variants:  toVariants(d.Variants),
	}
	if len(d.Media) > 0 {
		p.Media = make([]MediaItem, 0, len(d.Media))
		for _, m := range d.Media {
			p.Media = append(p.Media, MediaItem{
				VariantID: m.VariantID,
				URLs: ImageURLs{
					Large:     m.URLs.Large,
					Medium:    m.URLs.Medium,
					Original:  m.URLs.Original,
					Small:     m.URLs.Small,
					Thumbnail: m.URLs.Thumbnail,
				},
			})
		}
	}
	return p
}

func toVariants(docs []variantDoc) []Variant {
	if len(docs) == 0 {
		return nil
	}
	out := make([]Variant, 0, len(docs))
	for _, d := range docs {
		v := Variant{
			VariantID:     d.VariantID,
			Title:         d.Title,
			Quantity:      d.Quantity,
			IsBackorder:   d.IsBackorder,
			IsLowQuantity: d.IsLowQuantity,
			IsSoldOut:     d.IsSoldOut,
			Options:       toVariants(d.Options),
		}
		if len(d.Pricing) > 0 {
			v.Pricing = make(map[string]VariantPrice, len(d.Pricing))
			for currency, price := range d.Pricing {
				vp := VariantPrice{Price: decimal.NewFromFloat(price.Price)}
				if price.CompareAtPrice != nil {
					vp.CompareAtPrice = decimal.NewNullDecimal(decimal.NewFromFloat(*price.CompareAtPrice))
				}
				v.Pricing[currency] = vp
			}
		}
		out = append(out, v)
	}
	return out
}
