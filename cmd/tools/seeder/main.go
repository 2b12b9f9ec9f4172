package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/toko-checkout/internal/cart"
	"github.com/noah-isme/toko-checkout/internal/catalog"
	"github.com/noah-isme/toko-checkout/internal/opaqueid"
	"github.com/noah-isme/toko-checkout/internal/pricing"
)

const currency = "IDR"

// seedNamespace keeps generated variant ids stable across runs.
var seedNamespace = uuid.MustParse("6f1c2f0e-4d0b-4f0e-9a52-7c3b7a0e5d11")

type seedProduct struct {
	Slug    string
	Title   string
	Price   int64
	Image   string
	Stock   int
	Sizes   []string
	Visible bool
}

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	products := seedCatalog(db)
	seedCart(db, products)
	invalidateCache(products)

	log.Println("Seeding completed successfully!")
}

func seedCatalog(db *sql.DB) map[string]catalog.Product {
	items := []seedProduct{
		{"macbook-pro-14-m3", "MacBook Pro 14 M3", 25000000, "https://images.unsplash.com/photo-1517336714731-489689fd1ca8?w=800", 50, nil, true},
		{"iphone-15-pro", "iPhone 15 Pro", 20000000, "https://images.unsplash.com/photo-1695048133142-1a20484d2569?w=800", 100, nil, true},
		{"sony-wh-1000xm5", "Sony WH-1000XM5", 5000000, "https://images.unsplash.com/photo-1618366712010-f4ae9c647dcb?w=800", 150, nil, true},
		{"nike-air-force-1", "Nike Air Force 1", 1500000, "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=800", 200, []string{"40", "41", "42"}, true},
		{"adidas-ultraboost", "Adidas Ultraboost", 2000000, "https://images.unsplash.com/photo-1608231387042-66d1773070a5?w=800", 3, []string{"41", "43"}, true},
		{"kaos-hitam-polos", "Kaos Hitam Polos", 100000, "https://images.unsplash.com/photo-1583743814966-8936f5b7be1a?w=800", 500, []string{"S", "M", "L"}, true},
		{"sony-ps5", "Sony PlayStation 5", 9000000, "https://images.unsplash.com/photo-1606813907291-d86efa9b94db?w=800", 0, nil, false},
	}

	fmt.Println("Seeding Catalog...")
	out := make(map[string]catalog.Product, len(items))
	for _, it := range items {
		p := buildProduct(it)
		doc, err := json.Marshal(p)
		if err != nil {
			log.Printf("Failed to encode product %s: %v", it.Slug, err)
			continue
		}
		_, err = db.Exec(`
			INSERT INTO catalog (product_id, is_visible, is_deleted, doc)
			VALUES ($1, $2, FALSE, $3)
			ON CONFLICT (product_id) DO UPDATE
			SET is_visible = EXCLUDED.is_visible, is_deleted = FALSE, doc = EXCLUDED.doc, updated_at = NOW();
		`, p.ProductID, p.IsVisible, doc)
		if err != nil {
			log.Printf("Failed to upsert product %s: %v", it.Slug, err)
			continue
		}
		out[p.ProductID] = p
	}
	return out
}

func buildProduct(it seedProduct) catalog.Product {
	price := decimal.NewFromInt(it.Price)
	variant := catalog.Variant{
		VariantID:     variantID(it.Slug, ""),
		Title:         it.Title,
		Pricing:       map[string]catalog.VariantPrice{currency: {Price: price}},
		Quantity:      it.Stock,
		IsLowQuantity: it.Stock > 0 && it.Stock < 5,
		IsSoldOut:     it.Stock == 0,
	}
	for _, size := range it.Sizes {
		variant.Options = append(variant.Options, catalog.Variant{
			VariantID: variantID(it.Slug, size),
			Title:     size,
			Pricing: map[string]catalog.VariantPrice{currency: {
				Price:          price,
				CompareAtPrice: decimal.NewNullDecimal(price.Mul(decimal.RequireFromString("1.2"))),
			}},
			Quantity:  it.Stock / len(it.Sizes),
			IsSoldOut: it.Stock == 0,
		})
	}
	return catalog.Product{
		ProductID: it.Slug,
		Title:     it.Title,
		IsVisible: it.Visible,
		Variants:  []catalog.Variant{variant},
		Media: []catalog.MediaItem{{
			URLs: catalog.ImageURLs{Large: it.Image, Medium: it.Image + "&q=60", Original: it.Image, Small: it.Image + "&w=400", Thumbnail: it.Image + "&w=120"},
		}},
	}
}

func variantID(slug, option string) string {
	return uuid.NewSHA1(seedNamespace, []byte(slug+"/"+option)).String()
}

func seedCart(db *sql.DB, products map[string]catalog.Product) {
	fmt.Println("Seeding Cart...")
	addr := &cart.Address{
		FullName: "Budi Santoso",
		Address1: "Jl. Merdeka No. 10",
		City:     "Bandung",
		Region:   "Jawa Barat",
		Postal:   "40111",
		Country:  "ID",
		Phone:    "+628123456789",
	}
	shoe := products["nike-air-force-1"]
	tee := products["kaos-hitam-polos"]
	if shoe.ProductID == "" || tee.ProductID == "" {
		log.Println("Skipping cart seed: sample products missing")
		return
	}

	c := cart.Cart{
		ID:           "sample-cart",
		CurrencyCode: currency,
		Tax:          decimal.NewNullDecimal(decimal.RequireFromString("0.11")),
		Discount:     decimal.NewNullDecimal(decimal.NewFromInt(50000)),
		Items: []cart.Item{
			{
				ID:             uuid.NewString(),
				ProductID:      shoe.ProductID,
				VariantID:      shoe.Variants[0].Options[1].VariantID,
				Quantity:       1,
				PriceWhenAdded: pricing.NewMoney(decimal.NewFromInt(1500000), currency),
				Title:          shoe.Title,
				OptionTitle:    "41",
			},
			{
				ID:             uuid.NewString(),
				ProductID:      tee.ProductID,
				VariantID:      tee.Variants[0].Options[1].VariantID,
				Quantity:       3,
				PriceWhenAdded: pricing.NewMoney(decimal.NewFromInt(90000), currency),
				Title:          tee.Title,
				OptionTitle:    "M",
			},
		},
		Shipping: []cart.FulfillmentGroup{{
			ID:      uuid.NewString(),
			Address: addr,
			ShipmentMethod: &cart.ShipmentMethod{
				ID:       uuid.NewString(),
				Carrier:  "JNE",
				Name:     "reg",
				Label:    "JNE Reguler",
				Group:    "Ground",
				Rate:     decimal.NewFromInt(18000),
				Handling: decimal.NewFromInt(2000),
			},
		}},
		Billing: []cart.Payment{{ID: uuid.NewString(), Address: addr}},
	}

	doc, err := json.Marshal(c)
	if err != nil {
		log.Fatalf("Failed to encode cart: %v", err)
	}
	_, err = db.Exec(`
		INSERT INTO carts (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW();
	`, c.ID, doc)
	if err != nil {
		log.Fatalf("Failed to upsert cart: %v", err)
	}
	log.Printf("Sample cart ready: GET /api/v1/carts/%s/checkout", url.PathEscape(opaqueid.Encode(opaqueid.Cart, c.ID)))
}

// invalidateCache drops cached copies of the reseeded products so a running
// API picks up the new documents before their TTL expires.
func invalidateCache(products map[string]catalog.Product) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" || len(products) == 0 {
		return
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Printf("Skipping cache invalidation: %v", err)
		return
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()

	ids := make([]string, 0, len(products))
	for id := range products {
		ids = append(ids, id)
	}
	cache := catalog.NewCachedLookup(nil, rdb, 0, zerolog.Nop())
	if err := cache.Invalidate(context.Background(), ids...); err != nil {
		log.Printf("Failed to invalidate catalog cache: %v", err)
		return
	}
	log.Printf("Invalidated %d cached products", len(ids))
}
