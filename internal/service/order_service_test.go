package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/config"
	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupOrderServiceTest(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:order_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MembershipTier{},
		&models.PointTransaction{},
		&models.Product{},
		&models.ProductVariant{},
		&models.SizeChartRow{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Coupon{},
		&models.CouponUsage{},
		&models.CreditGrant{},
		&models.CreditUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	cartRepo := repository.NewCartRepository(db)
	userRepo := repository.NewUserRepository(db)
	creditSvc := NewCreditService(repository.NewCreditRepository(db), userRepo)
	couponSvc := NewCouponService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db))
	membershipSvc := NewMembershipService(repository.NewTierRepository(db), userRepo, repository.NewPointRepository(db))
	cfg := &config.OrderConfig{ShippingFee: "0", AutoCompleteDays: 7}
	svc := NewOrderService(orderRepo, productRepo, cartRepo, userRepo, creditSvc, couponSvc, membershipSvc, NewLogReferralNotifier(), nil, cfg)
	return svc, db
}

func seedOrderTestCatalog(t *testing.T, db *gorm.DB) (models.Product, models.ProductVariant) {
	t.Helper()
	product := models.Product{
		Slug: "cloudrunner-5", Name: "CloudRunner 5", Brand: "CloudRunner",
		Price: mustMoney(t, "900"), Stock: 100, IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	variant := models.ProductVariant{
		ProductID: product.ID, Name: "曜石黑", SKU: "CR5-BLK",
		PriceAdjustment: mustMoney(t, "100"), Stock: 50, IsActive: true,
	}
	if err := db.Create(&variant).Error; err != nil {
		t.Fatalf("create variant failed: %v", err)
	}
	sizeRow := models.SizeChartRow{ProductID: product.ID, Size: "US9", Stock: 30}
	if err := db.Create(&sizeRow).Error; err != nil {
		t.Fatalf("create size row failed: %v", err)
	}
	return product, variant
}

func createOrderTestUser(t *testing.T, db *gorm.DB, id uint, totalSpent string) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("order_user_%d@example.com", id),
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
		TotalSpent:   mustMoney(t, totalSpent),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func TestCreateOrderWithCreditAllocation(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, variant := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "9000")

	now := time.Now()
	grant := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "500"), Balance: mustMoney(t, "500"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour),
		MaxUsagePerOrder: moneyPtrOf(t, "300"), MinOrderAmount: moneyPtrOf(t, "1000"), IsActive: true,
	}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("create grant failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items: []OrderItemInput{
			{ProductID: product.ID, VariantID: &variant.ID, Size: "US9", Quantity: 2},
		},
		CreditsToUse: "300",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 单价 900 + 款式加价 100，两双小计 2000，抵扣 300 后实付 1700
	if !order.Subtotal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected subtotal 2000, got %s", order.Subtotal.String())
	}
	if !order.CreditDiscount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected credit discount 300, got %s", order.CreditDiscount.String())
	}
	if !order.TotalAmount.Equal(decimal.NewFromInt(1700)) {
		t.Fatalf("expected total 1700, got %s", order.TotalAmount.String())
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("unexpected initial status: %s/%s", order.Status, order.PaymentStatus)
	}
	if len(order.OrderNo) != 22 || order.OrderNo[:2] != "SS" {
		t.Fatalf("unexpected order no format: %s", order.OrderNo)
	}

	// 三级库存同时扣减
	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloadedProduct.Stock != 98 {
		t.Fatalf("expected product stock 98, got %d", reloadedProduct.Stock)
	}
	var reloadedVariant models.ProductVariant
	if err := db.First(&reloadedVariant, variant.ID).Error; err != nil {
		t.Fatalf("reload variant failed: %v", err)
	}
	if reloadedVariant.Stock != 48 {
		t.Fatalf("expected variant stock 48, got %d", reloadedVariant.Stock)
	}
	var sizeRow models.SizeChartRow
	if err := db.Where("product_id = ? AND size = ?", product.ID, "US9").First(&sizeRow).Error; err != nil {
		t.Fatalf("reload size row failed: %v", err)
	}
	if sizeRow.Stock != 28 {
		t.Fatalf("expected size stock 28, got %d", sizeRow.Stock)
	}

	var usedGrant models.CreditGrant
	if err := db.First(&usedGrant, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !usedGrant.Balance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected grant balance 200, got %s", usedGrant.Balance.String())
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, variant := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "0")

	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 1}); !errors.Is(err, ErrOrderEmpty) {
		t.Fatalf("expected ErrOrderEmpty, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{UserID: 1, FromCart: true}); !errors.Is(err, ErrCartEmpty) {
		t.Fatalf("expected ErrCartEmpty, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, Size: "US9", Quantity: 0}},
	}); !errors.Is(err, ErrOrderQuantityInvalid) {
		t.Fatalf("expected ErrOrderQuantityInvalid, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, Size: "US13", Quantity: 1}},
	}); !errors.Is(err, ErrSizeNotFound) {
		t.Fatalf("expected ErrSizeNotFound, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, VariantID: &variant.ID, Size: "US9", Quantity: 60}},
	}); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got: %v", err)
	}

	// 库存不足的失败下单不残留扣减
	var reloaded models.Product
	if err := db.First(&reloaded, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloaded.Stock != 100 {
		t.Fatalf("expected untouched stock 100, got %d", reloaded.Stock)
	}
}

func TestCreateGuestOrderRules(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, _ := seedOrderTestCatalog(t, db)

	items := []OrderItemInput{{ProductID: product.ID, Size: "US9", Quantity: 1}}

	if _, err := svc.CreateOrder(CreateOrderInput{Items: items}); !errors.Is(err, ErrGuestEmailRequired) {
		t.Fatalf("expected ErrGuestEmailRequired, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{GuestEmail: "guest@example.com", FromCart: true}); !errors.Is(err, ErrGuestOrderNeedsItems) {
		t.Fatalf("expected ErrGuestOrderNeedsItems, got: %v", err)
	}
	if _, err := svc.CreateOrder(CreateOrderInput{
		GuestEmail: "guest@example.com", Items: items, CreditsToUse: "100",
	}); !errors.Is(err, ErrGuestCreditNotAllowed) {
		t.Fatalf("expected ErrGuestCreditNotAllowed, got: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		GuestEmail:    "Guest@Example.com",
		GuestPassword: "lookup-pass",
		Items:         items,
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if order.GuestEmail != "guest@example.com" {
		t.Fatalf("expected normalized guest email, got %s", order.GuestEmail)
	}
	if !order.IsGuest() {
		t.Fatalf("expected guest order")
	}

	// 游客凭订单号+邮箱+密码查询
	found, err := svc.GetGuestOrder(order.OrderNo, "GUEST@example.com", "lookup-pass")
	if err != nil {
		t.Fatalf("GetGuestOrder error: %v", err)
	}
	if found.ID != order.ID {
		t.Fatalf("expected order %d, got %d", order.ID, found.ID)
	}
	if _, err := svc.GetGuestOrder(order.OrderNo, "guest@example.com", "wrong"); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("expected ErrOrderAccessDenied for wrong password, got: %v", err)
	}
	if _, err := svc.GetGuestOrder(order.OrderNo, "other@example.com", "lookup-pass"); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound for wrong email, got: %v", err)
	}
}

func TestCancelOrderRestoresStockAndCredits(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, variant := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "0")

	now := time.Now()
	grant := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "200"), Balance: mustMoney(t, "200"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour), IsActive: true,
	}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("create grant failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID:       1,
		Items:        []OrderItemInput{{ProductID: product.ID, VariantID: &variant.ID, Size: "US9", Quantity: 1}},
		CreditsToUse: "200",
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	if _, err := svc.CancelOrder(2, order.ID); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("expected ErrOrderAccessDenied for other user, got: %v", err)
	}

	cancelled, err := svc.CancelOrder(1, order.ID)
	if err != nil {
		t.Fatalf("CancelOrder error: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("expected cancelled order, got %s", cancelled.Status)
	}

	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloadedProduct.Stock != 100 {
		t.Fatalf("expected restored product stock 100, got %d", reloadedProduct.Stock)
	}
	var reloadedGrant models.CreditGrant
	if err := db.First(&reloadedGrant, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !reloadedGrant.Balance.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected restored grant balance 200, got %s", reloadedGrant.Balance.String())
	}

	// 已取消订单不可再取消
	if _, err := svc.CancelOrder(1, order.ID); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid, got: %v", err)
	}
}

func TestMarkPaidAndStatusFlow(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, _ := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "9000")

	order, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, Size: "US9", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	paid, err := svc.MarkPaid(order.ID, "bank_transfer")
	if err != nil {
		t.Fatalf("MarkPaid error: %v", err)
	}
	if paid.PaymentStatus != constants.PaymentStatusPaid || paid.Status != constants.OrderStatusConfirmed {
		t.Fatalf("unexpected status after payment: %s/%s", paid.Status, paid.PaymentStatus)
	}
	if paid.PaymentMethod != "bank_transfer" || paid.PaidAt == nil {
		t.Fatalf("payment metadata not recorded: %+v", paid)
	}

	// 重复标记已支付是幂等的
	again, err := svc.MarkPaid(order.ID, "")
	if err != nil {
		t.Fatalf("second MarkPaid error: %v", err)
	}
	if again.PaymentMethod != "bank_transfer" {
		t.Fatalf("expected payment method preserved, got %s", again.PaymentMethod)
	}

	// 非法流转被拒绝
	if _, err := svc.UpdateOrderStatus(order.ID, constants.OrderStatusDelivered); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("expected ErrOrderStatusInvalid for confirmed->delivered, got: %v", err)
	}

	for _, status := range []string{
		constants.OrderStatusProcessing,
		constants.OrderStatusShipped,
		constants.OrderStatusDelivered,
	} {
		if _, err := svc.UpdateOrderStatus(order.ID, status); err != nil {
			t.Fatalf("UpdateOrderStatus(%s) error: %v", status, err)
		}
	}

	// 确认收货触发会员结算：9000 + 1800 = 10800 升入银卡
	if err := svc.CompleteOrder(order.ID); err != nil {
		t.Fatalf("CompleteOrder error: %v", err)
	}
	var user models.User
	if err := db.First(&user, 1).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if !user.TotalSpent.Equal(decimal.NewFromInt(10800)) {
		t.Fatalf("expected total spent 10800, got %s", user.TotalSpent.String())
	}
	// floor(1800 * 1.2) + 升级奖励 100
	if user.MembershipPoints != 2160+constants.TierUpgradeBonusPoints {
		t.Fatalf("expected %d points, got %d", 2160+constants.TierUpgradeBonusPoints, user.MembershipPoints)
	}

	// 非送达状态重复确认收货静默跳过
	if err := svc.CompleteOrder(order.ID); err != nil {
		t.Fatalf("repeat CompleteOrder error: %v", err)
	}
	if err := db.First(&user, 1).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if user.TotalOrders != 1 {
		t.Fatalf("expected single completed order, got %d", user.TotalOrders)
	}
}

func TestCreateOrderFromCartClearsCart(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, _ := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "0")

	line := models.CartItem{UserID: 1, ProductID: product.ID, Size: "US9", Quantity: 2}
	if err := db.Create(&line).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	order, err := svc.CreateOrder(CreateOrderInput{UserID: 1, FromCart: true})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
	if !order.Subtotal.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("expected subtotal 1800, got %s", order.Subtotal.String())
	}

	var remaining int64
	db.Model(&models.CartItem{}).Where("user_id = ?", 1).Count(&remaining)
	if remaining != 0 {
		t.Fatalf("expected cart cleared, %d lines remain", remaining)
	}
}

func TestShippingFeeFreeThreshold(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	svc.cfg = &config.OrderConfig{ShippingFee: "60", AutoCompleteDays: 7}

	threshold := mustMoney(t, "1000")
	tier := models.MembershipTier{
		Name: "免运等级", MinSpent: mustMoney(t, "0"),
		Discount: decimal.NewFromInt(1), PointsMultiplier: decimal.NewFromInt(1),
		FreeShippingThreshold: &threshold, IsActive: true,
	}
	if err := db.Create(&tier).Error; err != nil {
		t.Fatalf("create tier failed: %v", err)
	}
	user := &models.User{ID: 1, TotalSpent: mustMoney(t, "0")}

	fee, err := svc.shippingFee(user, mustMoney(t, "999.99"))
	if err != nil {
		t.Fatalf("shippingFee error: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected fee 60 below threshold, got %s", fee.String())
	}

	fee, err = svc.shippingFee(user, mustMoney(t, "1000"))
	if err != nil {
		t.Fatalf("shippingFee error: %v", err)
	}
	if !fee.Equal(decimal.Zero) {
		t.Fatalf("expected free shipping at threshold, got %s", fee.String())
	}

	// 游客无等级，始终收基础运费
	fee, err = svc.shippingFee(nil, mustMoney(t, "5000"))
	if err != nil {
		t.Fatalf("shippingFee error: %v", err)
	}
	if !fee.Equal(decimal.NewFromInt(60)) {
		t.Fatalf("expected guest fee 60, got %s", fee.String())
	}
}

func TestPreviewOrderQuote(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, variant := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "0")

	now := time.Now()
	grant := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "500"), Balance: mustMoney(t, "500"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour),
		IsActive: true,
	}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("create grant failed: %v", err)
	}
	coupon := models.Coupon{
		Code: "PREVIEW100", Type: constants.CouponTypeFixed,
		Value: mustMoney(t, "100"), IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	quote, err := svc.PreviewOrder(CreateOrderInput{
		UserID: 1,
		Items: []OrderItemInput{
			{ProductID: product.ID, VariantID: &variant.ID, Size: "US9", Quantity: 2},
		},
		CreditsToUse: "300",
		CouponCode:   "PREVIEW100",
	})
	if err != nil {
		t.Fatalf("PreviewOrder error: %v", err)
	}
	if !quote.Subtotal.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected subtotal 2000, got %s", quote.Subtotal.String())
	}
	if !quote.CouponDiscount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected coupon discount 100, got %s", quote.CouponDiscount.String())
	}
	if !quote.CreditDiscount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected credit discount 300, got %s", quote.CreditDiscount.String())
	}
	if !quote.TotalAmount.Equal(decimal.NewFromInt(1600)) {
		t.Fatalf("expected total 1600, got %s", quote.TotalAmount.String())
	}
	if len(quote.CreditPlan) != 1 || quote.CreditPlan[0].GrantID != grant.ID {
		t.Fatalf("unexpected credit plan: %+v", quote.CreditPlan)
	}

	// 试算不落库：库存、余额、优惠券计数均不变
	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloadedProduct.Stock != 100 {
		t.Fatalf("expected product stock unchanged 100, got %d", reloadedProduct.Stock)
	}
	var reloadedGrant models.CreditGrant
	if err := db.First(&reloadedGrant, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !reloadedGrant.Balance.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected grant balance unchanged 500, got %s", reloadedGrant.Balance.String())
	}
	var reloadedCoupon models.Coupon
	if err := db.First(&reloadedCoupon, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloadedCoupon.UsedCount != 0 {
		t.Fatalf("expected coupon used count 0, got %d", reloadedCoupon.UsedCount)
	}

	// 库存不足时试算同样失败
	if _, err := svc.PreviewOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, Size: "US9", Quantity: 31}},
	}); !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got: %v", err)
	}
}

// recordingReferralNotifier 记录每次通知参数，供测试断言
type recordingReferralNotifier struct {
	orderIDs []uint
	userIDs  []uint
	amounts  []string
}

func (n *recordingReferralNotifier) NotifyOrderCompleted(userID, orderID uint, amount models.Money) error {
	n.userIDs = append(n.userIDs, userID)
	n.orderIDs = append(n.orderIDs, orderID)
	n.amounts = append(n.amounts, amount.String())
	return nil
}

func TestReferralNotifiedOnEveryCompletion(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, _ := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "0")

	notifier := &recordingReferralNotifier{}
	svc.referral = notifier

	completeFlow := func(orderID uint) {
		t.Helper()
		if _, err := svc.MarkPaid(orderID, "bank_transfer"); err != nil {
			t.Fatalf("MarkPaid error: %v", err)
		}
		for _, status := range []string{
			constants.OrderStatusProcessing,
			constants.OrderStatusShipped,
			constants.OrderStatusDelivered,
		} {
			if _, err := svc.UpdateOrderStatus(orderID, status); err != nil {
				t.Fatalf("UpdateOrderStatus(%s) error: %v", status, err)
			}
		}
		if err := svc.CompleteOrder(orderID); err != nil {
			t.Fatalf("CompleteOrder error: %v", err)
		}
	}

	items := []OrderItemInput{{ProductID: product.ID, Size: "US9", Quantity: 1}}
	first, err := svc.CreateOrder(CreateOrderInput{UserID: 1, Items: items})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	second, err := svc.CreateOrder(CreateOrderInput{UserID: 1, Items: items})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}

	// 每笔会员订单完成都触发通知，而不只是首单
	completeFlow(first.ID)
	completeFlow(second.ID)
	if len(notifier.orderIDs) != 2 || notifier.orderIDs[0] != first.ID || notifier.orderIDs[1] != second.ID {
		t.Fatalf("expected notifications for orders %d,%d, got %v", first.ID, second.ID, notifier.orderIDs)
	}
	if notifier.userIDs[0] != 1 || notifier.userIDs[1] != 1 {
		t.Fatalf("unexpected user ids: %v", notifier.userIDs)
	}
	if notifier.amounts[0] != first.TotalAmount.String() {
		t.Fatalf("expected amount %s, got %s", first.TotalAmount.String(), notifier.amounts[0])
	}

	// 重复确认收货不再重复通知
	if err := svc.CompleteOrder(first.ID); err != nil {
		t.Fatalf("repeat CompleteOrder error: %v", err)
	}
	if len(notifier.orderIDs) != 2 {
		t.Fatalf("expected no duplicate notification, got %v", notifier.orderIDs)
	}

	// 游客订单不触发推荐通知
	guest, err := svc.CreateOrder(CreateOrderInput{GuestEmail: "guest@example.com", Items: items})
	if err != nil {
		t.Fatalf("CreateOrder error: %v", err)
	}
	completeFlow(guest.ID)
	if len(notifier.orderIDs) != 2 {
		t.Fatalf("expected guest completion to skip referral, got %v", notifier.orderIDs)
	}
}

func TestStockErrorNamesItem(t *testing.T) {
	svc, db := setupOrderServiceTest(t)
	seedDefaultTiers(t, db)
	product, variant := seedOrderTestCatalog(t, db)
	createOrderTestUser(t, db, 1, "0")

	// 尺码库存不足的报错指明商品与尺码
	_, err := svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, Size: "US9", Quantity: 31}},
	})
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got: %v", err)
	}
	if !strings.Contains(err.Error(), "CloudRunner 5") || !strings.Contains(err.Error(), "US9") {
		t.Fatalf("expected error to name product and size, got: %v", err)
	}

	// 款式库存不足的报错指明款式名
	_, err = svc.CreateOrder(CreateOrderInput{
		UserID: 1,
		Items:  []OrderItemInput{{ProductID: product.ID, VariantID: &variant.ID, Size: "US9", Quantity: 51}},
	})
	if !errors.Is(err, ErrStockInsufficient) {
		t.Fatalf("expected ErrStockInsufficient, got: %v", err)
	}
	if !strings.Contains(err.Error(), variant.Name) {
		t.Fatalf("expected error to name variant, got: %v", err)
	}
}
