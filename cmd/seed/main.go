package main

import (
	"time"

	"github.com/Eric920418/shoe-sub000/internal/config"
	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// 开发环境种子数据：默认会员等级、示例鞋款与尺码库存。
// 所有写入都先按唯一键判重，重复执行不会产生脏数据。
func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("数据库初始化失败: %v", err)
	}
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("数据库迁移失败: %v", err)
	}

	if err := models.InitDefaultAdmin("", ""); err != nil {
		stdLog.Printf("警告: 初始化默认管理员失败: %v", err)
	}

	seedTiers(stdLog.Printf)
	seedProducts(stdLog.Printf)
	seedDemoUser(stdLog.Printf)

	stdLog.Printf("种子数据初始化完成")
}

func money(raw string) models.Money {
	m, err := models.NewMoneyFromString(raw)
	if err != nil {
		panic(err)
	}
	return m
}

func moneyPtr(raw string) *models.Money {
	m := money(raw)
	return &m
}

func dec(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		panic(err)
	}
	return d
}

func seedTiers(logf func(string, ...interface{})) {
	tiers := []models.MembershipTier{
		{
			Name:             "普通会员",
			MinSpent:         money("0"),
			MaxSpent:         moneyPtr("10000"),
			Discount:         dec("1"),
			PointsMultiplier: dec("1"),
			SortOrder:        1,
			IsActive:         true,
		},
		{
			Name:                  "银卡会员",
			MinSpent:              money("10000"),
			MaxSpent:              moneyPtr("50000"),
			Discount:              dec("0.95"),
			PointsMultiplier:      dec("1.2"),
			FreeShippingThreshold: moneyPtr("1000"),
			SortOrder:             2,
			IsActive:              true,
		},
		{
			Name:                  "金卡会员",
			MinSpent:              money("50000"),
			Discount:              dec("0.9"),
			PointsMultiplier:      dec("1.5"),
			FreeShippingThreshold: moneyPtr("0"),
			BirthdayGift:          "生日当月双倍积分",
			SortOrder:             3,
			IsActive:              true,
		},
	}

	for _, tier := range tiers {
		var count int64
		models.DB.Model(&models.MembershipTier{}).Where("name = ?", tier.Name).Count(&count)
		if count > 0 {
			logf("会员等级已存在，跳过: %s", tier.Name)
			continue
		}
		if err := models.DB.Create(&tier).Error; err != nil {
			logf("警告: 创建会员等级失败 %s: %v", tier.Name, err)
			continue
		}
		logf("已创建会员等级: %s", tier.Name)
	}
}

func seedDemoUser(logf func(string, ...interface{})) {
	const email = "demo@example.com"
	var count int64
	models.DB.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		logf("演示用户已存在，跳过: %s", email)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Demo1234"), bcrypt.DefaultCost)
	if err != nil {
		logf("警告: 演示用户密码哈希失败: %v", err)
		return
	}
	user := models.User{
		Email:        email,
		PasswordHash: string(hashed),
		DisplayName:  "演示用户",
		Status:       constants.UserStatusActive,
	}
	if err := models.DB.Create(&user).Error; err != nil {
		logf("警告: 创建演示用户失败: %v", err)
		return
	}

	now := time.Now()
	grant := models.CreditGrant{
		UserID:     user.ID,
		Amount:     money("500"),
		Balance:    money("500"),
		Source:     constants.CreditSourceCampaign,
		ValidFrom:  now,
		ValidUntil: now.AddDate(0, 3, 0),
		IsActive:   true,
		Remark:     "开业活动赠送",
	}
	if err := models.DB.Create(&grant).Error; err != nil {
		logf("警告: 创建演示购物金失败: %v", err)
		return
	}
	logf("已创建演示用户: %s（含 500 购物金）", email)
}

type seedProduct struct {
	product models.Product
	sizes   map[string]int
}

func seedProducts(logf func(string, ...interface{})) {
	items := []seedProduct{
		{
			product: models.Product{
				Slug:        "cloudrunner-5",
				Name:        "CloudRunner 5 缓震跑鞋",
				Description: "轻量网面缓震跑鞋，适合日常路跑与通勤。",
				Brand:       "CloudRunner",
				Price:       money("2680"),
				Images:      models.StringArray{"/images/cloudrunner-5/main.jpg"},
				Tags:        models.StringArray{"running", "new"},
				IsActive:    true,
				SortOrder:   1,
				Variants: []models.ProductVariant{
					{Name: "曜石黑", SKU: "CR5-BLK", PriceAdjustment: money("0"), Stock: 60, IsActive: true},
					{Name: "云雾白", SKU: "CR5-WHT", PriceAdjustment: money("100"), Stock: 40, IsActive: true},
				},
			},
			sizes: map[string]int{"US8": 30, "US9": 40, "US10": 30},
		},
		{
			product: models.Product{
				Slug:        "courtmaster-pro",
				Name:        "CourtMaster Pro 篮球鞋",
				Description: "高帮支撑篮球鞋，前掌抓地强化。",
				Brand:       "CourtMaster",
				Price:       money("3980"),
				Images:      models.StringArray{"/images/courtmaster-pro/main.jpg"},
				Tags:        models.StringArray{"basketball"},
				IsActive:    true,
				SortOrder:   2,
				Variants: []models.ProductVariant{
					{Name: "骑士蓝", SKU: "CMP-BLU", PriceAdjustment: money("0"), Stock: 25, IsActive: true},
				},
			},
			sizes: map[string]int{"US9": 10, "US10": 10, "US11": 5},
		},
		{
			product: models.Product{
				Slug:        "heritage-canvas",
				Name:        "Heritage 帆布休闲鞋",
				Description: "经典硫化帆布鞋，四色可选。",
				Brand:       "Heritage",
				Price:       money("1280"),
				Images:      models.StringArray{"/images/heritage-canvas/main.jpg"},
				Tags:        models.StringArray{"casual", "sale"},
				IsActive:    true,
				SortOrder:   3,
			},
			sizes: map[string]int{"US7": 20, "US8": 20, "US9": 20},
		},
	}

	for _, item := range items {
		var count int64
		models.DB.Model(&models.Product{}).Where("slug = ?", item.product.Slug).Count(&count)
		if count > 0 {
			logf("商品已存在，跳过: %s", item.product.Slug)
			continue
		}

		total := 0
		for size, stock := range item.sizes {
			item.product.SizeChart = append(item.product.SizeChart, models.SizeChartRow{
				Size:  size,
				Stock: stock,
			})
			total += stock
		}
		item.product.Stock = total

		if err := models.DB.Create(&item.product).Error; err != nil {
			logf("警告: 创建商品失败 %s: %v", item.product.Slug, err)
			continue
		}
		logf("已创建商品: %s", item.product.Slug)
	}
}
