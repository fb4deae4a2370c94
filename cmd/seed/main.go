package main

import (
	"fmt"

	"github.com/storelane/storelane/internal/config"
	"github.com/storelane/storelane/internal/logger"
	"github.com/storelane/storelane/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加分类
	categories := []models.Category{
		{
			Slug:        "electronics",
			Name:        "Electronics",
			Description: "Audio gear, wearables and other gadgets",
			SortOrder:   100,
		},
		{
			Slug:        "lifestyle",
			Name:        "Lifestyle",
			Description: "Everyday essentials for home and travel",
			SortOrder:   90,
		},
		{
			Slug:        "accessories",
			Name:        "Accessories",
			Description: "Chargers, cables and carry gear",
			SortOrder:   80,
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"electronics", "lifestyle", "accessories"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	electronicsID := categoryIDs["electronics"]
	lifestyleID := categoryIDs["lifestyle"]
	accessoriesID := categoryIDs["accessories"]

	discounted := models.NewMoneyFromDecimal(decimal.NewFromFloat(159.99))

	// 添加商品
	products := []models.Product{
		{
			Slug:        "wireless-earphones",
			Name:        "Wireless Bluetooth Earphones",
			Description: "High quality sound, long battery life, comfortable to wear",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(99.99)),
			CategoryID:  electronicsID,
			Stock:       25,
			InStock:     true,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1590658268037-6bf12165a8df?w=800",
			}),
			Tags:      models.StringArray([]string{"audio", "bluetooth"}),
			IsActive:  true,
			SortOrder: 100,
		},
		{
			Slug:          "smart-watch",
			Name:          "Smart Watch",
			Description:   "Health monitoring, fitness tracking, message notifications",
			PriceAmount:   models.NewMoneyFromDecimal(decimal.NewFromFloat(199.99)),
			DiscountPrice: &discounted,
			CategoryID:    electronicsID,
			Stock:         12,
			InStock:       true,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1579586337278-3befd40fd17a?w=800",
			}),
			Tags:      models.StringArray([]string{"wearable", "fitness"}),
			IsActive:  true,
			SortOrder: 90,
		},
		{
			Slug:        "power-bank",
			Name:        "Portable Power Bank",
			Description: "High capacity, fast charging, multi-device compatible",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(49.99)),
			CategoryID:  accessoriesID,
			Stock:       40,
			InStock:     true,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1609091839311-d5365f9ff1c5?w=800",
			}),
			IsActive:  true,
			SortOrder: 80,
		},
		{
			Slug:        "backpack",
			Name:        "Multi-function Backpack",
			Description: "Large capacity, waterproof and anti-theft, USB charging port",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(79.99)),
			CategoryID:  lifestyleID,
			Stock:       18,
			InStock:     true,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=800",
			}),
			IsActive:  true,
			SortOrder: 70,
		},
		{
			Slug:        "usb-c-cable",
			Name:        "USB-C Charging Cable",
			Description: "Braided 2m cable, 100W fast charge",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.50)),
			CategoryID:  accessoriesID,
			Stock:       3,
			InStock:     true,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1583863788434-e58a36330cf0?w=800",
			}),
			IsActive:  true,
			SortOrder: 60,
		},
		{
			Slug:        "desk-lamp",
			Name:        "LED Desk Lamp",
			Description: "Adjustable color temperature, touch dimming",
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(34.00)),
			CategoryID:  lifestyleID,
			Stock:       0,
			InStock:     false,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1507473885765-e6ed057f782c?w=800",
			}),
			IsActive:  true,
			SortOrder: 50,
		},
	}

	for _, product := range products {
		var existing models.Product
		if err := models.DB.Where("slug = ?", product.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&product).Error; err != nil {
				stdLog.Printf("Failed to create product %s: %v", product.Slug, err)
			} else {
				stdLog.Printf("Created product: %s", product.Slug)
			}
		} else {
			stdLog.Printf("Product already exists: %s", product.Slug)
		}
	}

	// 添加演示用户
	passwordHash, err := bcrypt.GenerateFromPassword([]byte("demo123456"), bcrypt.DefaultCost)
	if err != nil {
		stdLog.Fatalf("Failed to hash demo password: %v", err)
	}
	demoUser := models.User{
		Email:        "demo@example.com",
		PasswordHash: string(passwordHash),
		DisplayName:  "Demo User",
		Status:       "active",
	}
	var existingUser models.User
	if err := models.DB.Where("email = ?", demoUser.Email).First(&existingUser).Error; err != nil {
		if err := models.DB.Create(&demoUser).Error; err != nil {
			stdLog.Printf("Failed to create demo user: %v", err)
		} else {
			stdLog.Printf("Created demo user: %s", demoUser.Email)
		}
	} else {
		stdLog.Printf("Demo user already exists: %s", demoUser.Email)
	}

	// 初始化默认管理员
	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("Failed to init default admin: %v", err)
	}

	fmt.Println("\nSeed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 3 Categories")
	fmt.Println("- 6 Products (incl. low-stock and out-of-stock demos)")
	fmt.Println("- 1 Demo user (demo@example.com / demo123456)")
}
