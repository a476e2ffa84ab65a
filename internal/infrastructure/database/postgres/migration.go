// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/coupon"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db *gorm.DB
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB) *Migration {
	return &Migration{
		db: db,
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	log.Println("Running database auto-migrations...")

	// Models in dependency order
	models := []interface{}{
		// User domain
		&user.User{},
		&user.Address{},

		// Product domain
		&product.Category{},
		&product.Product{},

		// Pricing domain
		&pricing.PricingConfig{},
		&pricing.ShippingFee{},
		&pricing.TaxTier{},
		&pricing.PaymentFee{},

		// Coupon domain
		&coupon.Coupon{},

		// Cart domain
		&cart.CartItem{},

		// Order domain
		&order.Order{},
		&order.OrderItem{},
		&order.Payment{},
		&order.OrderStatusHistory{},
	}

	for _, model := range models {
		log.Printf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	log.Println("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	log.Println("Creating additional database indexes...")

	indexes := []string{
		// User indexes
		"CREATE INDEX IF NOT EXISTS idx_users_email_active ON users(email, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_users_loyalty_tier ON users(loyalty_tier)",

		// Product indexes
		"CREATE INDEX IF NOT EXISTS idx_products_category_active ON products(category_id, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_sku ON products(sku)",
		"CREATE INDEX IF NOT EXISTS idx_products_slug ON products(slug)",

		// Category indexes
		"CREATE INDEX IF NOT EXISTS idx_categories_slug ON categories(slug)",
		"CREATE INDEX IF NOT EXISTS idx_categories_sort_order ON categories(sort_order)",

		// Pricing indexes
		"CREATE INDEX IF NOT EXISTS idx_pricing_configs_location_active ON pricing_configs(location_key, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_shipping_fees_config_method ON shipping_fees(pricing_config_id, method)",
		"CREATE INDEX IF NOT EXISTS idx_tax_tiers_config_min ON tax_tiers(pricing_config_id, min_amount)",
		"CREATE INDEX IF NOT EXISTS idx_payment_fees_config_method ON payment_fees(pricing_config_id, method)",

		// Coupon indexes
		"CREATE INDEX IF NOT EXISTS idx_coupons_code_active ON coupons(code, is_active)",
		"CREATE INDEX IF NOT EXISTS idx_coupons_window ON coupons(starts_at, ends_at)",

		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_product ON cart_items(user_id, product_id)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_created_at ON cart_items(created_at DESC)",

		// Order indexes
		"CREATE INDEX IF NOT EXISTS idx_orders_user_status ON orders(user_id, status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_status_created ON orders(status, created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_orders_payment_status ON orders(payment_status)",
		"CREATE INDEX IF NOT EXISTS idx_orders_order_number ON orders(order_number)",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at DESC)",

		// Order items indexes
		"CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)",

		// Payment indexes, checkout_request_id drives webhook reconciliation
		"CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_checkout_request ON payments(checkout_request_id)",
		"CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_method_status ON payments(method, status)",
		"CREATE INDEX IF NOT EXISTS idx_payments_created_at ON payments(created_at DESC)",

		// Order status history indexes
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)",
		"CREATE INDEX IF NOT EXISTS idx_order_status_history_status ON order_status_history(status)",

		// Address indexes
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_type ON addresses(user_id, type)",
		"CREATE INDEX IF NOT EXISTS idx_addresses_user_default ON addresses(user_id, is_default)",
	}

	successCount := 0
	failCount := 0

	for _, indexSQL := range indexes {
		if err := m.db.Exec(indexSQL).Error; err != nil {
			log.Printf("Failed to create index: %v", err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("Created %d indexes (%d failed)", successCount, failCount)
	return nil
}

// SeedInitialData inserts initial data into the database
func (m *Migration) SeedInitialData() error {
	log.Println("Seeding initial data...")

	if err := m.seedCategories(); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}

	if err := m.seedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := m.seedTestUser(); err != nil {
		return fmt.Errorf("failed to seed test user: %w", err)
	}

	if err := m.seedTestProducts(); err != nil {
		return fmt.Errorf("failed to seed test products: %w", err)
	}

	if err := m.seedPricingConfigs(); err != nil {
		return fmt.Errorf("failed to seed pricing configs: %w", err)
	}

	if err := m.seedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	log.Println("Initial data seeded")
	return nil
}

// seedCategories creates default product categories
func (m *Migration) seedCategories() error {
	categories := []product.Category{
		{
			Name:        "Electronics",
			Slug:        "electronics",
			Description: "Electronic devices, gadgets, and accessories",
			SortOrder:   1,
			IsActive:    true,
		},
		{
			Name:        "Clothing",
			Slug:        "clothing",
			Description: "Fashion, apparel, and accessories",
			SortOrder:   2,
			IsActive:    true,
		},
		{
			Name:        "Home & Kitchen",
			Slug:        "home-kitchen",
			Description: "Home improvement, furniture, and kitchen supplies",
			SortOrder:   3,
			IsActive:    true,
		},
		{
			Name:        "Books",
			Slug:        "books",
			Description: "Books and educational materials",
			SortOrder:   4,
			IsActive:    true,
		},
	}

	for _, category := range categories {
		var existing product.Category
		result := m.db.Where("slug = ?", category.Slug).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&category).Error; err != nil {
				return err
			}
			log.Printf("Created category: %s", category.Name)
		}
	}

	return nil
}

func (m *Migration) seedAdminUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "admin@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Admin123!"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	adminUser := user.User{
		Email:         "admin@example.com",
		Password:      string(hashedPassword),
		FirstName:     "Admin",
		LastName:      "User",
		IsActive:      true,
		IsAdmin:       true,
		EmailVerified: true,
	}

	if err := m.db.Create(&adminUser).Error; err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	log.Println("Created admin user: admin@example.com")
	return nil
}

func (m *Migration) seedTestUser() error {
	var existing user.User
	result := m.db.Where("email = ?", "test1@example.com").First(&existing)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("Test1234"), 10)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	testUser := user.User{
		Email:         "test1@example.com",
		Password:      string(hashedPassword),
		FirstName:     "Test",
		LastName:      "User",
		Phone:         "+254712345678",
		IsActive:      true,
		IsAdmin:       false,
		EmailVerified: true,
	}

	if err := m.db.Create(&testUser).Error; err != nil {
		return err
	}

	log.Println("Created test user: test1@example.com")
	return nil
}

// seedTestProducts creates sample products for checkout testing
func (m *Migration) seedTestProducts() error {
	var productCount int64
	m.db.Model(&product.Product{}).Count(&productCount)
	if productCount >= 3 {
		return nil
	}

	salePrice := int64(149900)

	testProducts := []product.Product{
		{
			SKU:               "ELEC-LAPTOP-001",
			Name:              "Premium Gaming Laptop",
			Slug:              "premium-gaming-laptop",
			Description:       "High-performance gaming laptop with a dedicated GPU, fast NVMe storage, and a 165Hz display.",
			ShortDesc:         "High-performance gaming laptop with dedicated graphics",
			Price:             199900, // KES 1,999.00
			SalePrice:         &salePrice,
			CategoryID:        1, // Electronics
			IsActive:          true,
			Quantity:          25,
			LowStockThreshold: 5,
		},
		{
			SKU:               "ELEC-MOUSE-002",
			Name:              "Wireless Gaming Mouse",
			Slug:              "wireless-gaming-mouse",
			Description:       "Ergonomic wireless gaming mouse with a high-precision sensor and customizable buttons.",
			ShortDesc:         "Wireless gaming mouse with precision sensor",
			Price:             7900, // KES 79.00
			CategoryID:        1,    // Electronics
			IsActive:          true,
			Quantity:          50,
			LowStockThreshold: 10,
		},
		{
			SKU:               "ELEC-HEADSET-003",
			Name:              "Bluetooth Noise-Cancelling Headphones",
			Slug:              "bluetooth-noise-cancelling-headphones",
			Description:       "Wireless headphones with active noise cancellation and all-day battery life.",
			ShortDesc:         "Wireless headphones with active noise cancellation",
			Price:             15900, // KES 159.00
			CategoryID:        1,     // Electronics
			IsActive:          true,
			Quantity:          30,
			LowStockThreshold: 8,
		},
	}

	for _, prod := range testProducts {
		var existing product.Product
		result := m.db.Where("sku = ?", prod.SKU).First(&existing)
		if result.Error != nil {
			if err := m.db.Create(&prod).Error; err != nil {
				log.Printf("Failed to create test product %s: %v", prod.SKU, err)
			} else {
				log.Printf("Created test product: %s", prod.Name)
			}
		}
	}

	return nil
}

// seedPricingConfigs creates the default per-location pricing rules. Tax
// tiers are brackets over the discounted subtotal; payment fees are flat
// surcharges per payment method.
func (m *Migration) seedPricingConfigs() error {
	var configCount int64
	m.db.Model(&pricing.PricingConfig{}).Count(&configCount)
	if configCount > 0 {
		return nil
	}

	tier1Max := int64(100000)
	tier2Max := int64(500000)

	configs := []pricing.PricingConfig{
		{
			LocationKey:           "nairobi",
			FreeShippingThreshold: 500000, // KES 5,000.00
			IsActive:              true,
			ShippingFees: []pricing.ShippingFee{
				{Method: "Standard Shipping", Fee: 30000, EstimatedDays: 3},
				{Method: "Express Shipping", Fee: 60000, EstimatedDays: 1},
				{Method: "Free Shipping", Fee: 30000, EstimatedDays: 5},
			},
			TaxTiers: []pricing.TaxTier{
				{MinAmount: 0, MaxAmount: &tier1Max, Rate: decimal.NewFromFloat(0.05)},
				{MinAmount: 100001, MaxAmount: &tier2Max, Rate: decimal.NewFromFloat(0.08)},
				{MinAmount: 500001, MaxAmount: nil, Rate: decimal.NewFromFloat(0.16)},
			},
			PaymentFees: []pricing.PaymentFee{
				{Method: "cod", Fee: 5000},
				{Method: "mpesa", Fee: 0},
			},
		},
		{
			LocationKey:           "mombasa",
			FreeShippingThreshold: 800000, // KES 8,000.00
			IsActive:              true,
			ShippingFees: []pricing.ShippingFee{
				{Method: "Standard Shipping", Fee: 45000, EstimatedDays: 5},
				{Method: "Express Shipping", Fee: 90000, EstimatedDays: 2},
				{Method: "Free Shipping", Fee: 45000, EstimatedDays: 7},
			},
			TaxTiers: []pricing.TaxTier{
				{MinAmount: 0, MaxAmount: &tier2Max, Rate: decimal.NewFromFloat(0.08)},
				{MinAmount: 500001, MaxAmount: nil, Rate: decimal.NewFromFloat(0.16)},
			},
			PaymentFees: []pricing.PaymentFee{
				{Method: "cod", Fee: 10000},
				{Method: "mpesa", Fee: 0},
			},
		},
	}

	for _, cfg := range configs {
		if err := m.db.Create(&cfg).Error; err != nil {
			return err
		}
		log.Printf("Created pricing config: %s", cfg.LocationKey)
	}

	return nil
}

// seedCoupons creates sample coupons for development
func (m *Migration) seedCoupons() error {
	var couponCount int64
	m.db.Model(&coupon.Coupon{}).Count(&couponCount)
	if couponCount > 0 {
		return nil
	}

	maxDiscount := int64(100000)
	maxUses := 1000
	now := time.Now()

	coupons := []coupon.Coupon{
		{
			Code:          "WELCOME10",
			Description:   "10% off your first order",
			DiscountType:  coupon.DiscountTypePercentage,
			DiscountValue: 10,
			MinAmount:     50000, // KES 500.00
			MaxDiscount:   &maxDiscount,
			IsActive:      true,
			StartsAt:      now,
			EndsAt:        now.AddDate(1, 0, 0),
			MaxUses:       &maxUses,
		},
		{
			Code:          "SAVE200",
			Description:   "KES 200 off orders above KES 2,000",
			DiscountType:  coupon.DiscountTypeFixed,
			DiscountValue: 20000,
			MinAmount:     200000,
			IsActive:      true,
			StartsAt:      now,
			EndsAt:        now.AddDate(0, 6, 0),
		},
	}

	for _, c := range coupons {
		if err := m.db.Create(&c).Error; err != nil {
			return err
		}
		log.Printf("Created coupon: %s", c.Code)
	}

	return nil
}

// DropAllTables drops all tables (use with extreme caution)
func (m *Migration) DropAllTables() error {
	log.Println("WARNING: dropping all database tables...")

	// Reverse dependency order
	tables := []string{
		"order_status_history",
		"payments",
		"order_items",
		"orders",
		"cart_items",
		"coupons",
		"payment_fees",
		"tax_tiers",
		"shipping_fees",
		"pricing_configs",
		"products",
		"categories",
		"addresses",
		"users",
	}

	for _, table := range tables {
		if err := m.db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s CASCADE", table)).Error; err != nil {
			log.Printf("Failed to drop table %s: %v", table, err)
		}
	}

	log.Println("All tables dropped")
	return nil
}

// GetTableInfo logs row counts for every table in the public schema
func (m *Migration) GetTableInfo() error {
	var tables []string

	if err := m.db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public' ORDER BY tablename").Scan(&tables).Error; err != nil {
		return err
	}

	totalRecords := int64(0)
	for _, table := range tables {
		var count int64
		m.db.Table(table).Count(&count)
		totalRecords += count
		log.Printf("%-25s | %d records", table, count)
	}

	log.Printf("Total records across %d tables: %d", len(tables), totalRecords)
	return nil
}
