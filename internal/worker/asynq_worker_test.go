package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/config"
	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/provider"
	"github.com/Eric920418/shoe-sub000/internal/queue"
	"github.com/Eric920418/shoe-sub000/internal/repository"
	"github.com/Eric920418/shoe-sub000/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerTest(t *testing.T) (*Consumer, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
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
		&models.CreditGrant{},
		&models.CreditUsage{},
		&models.Coupon{},
		&models.CouponUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	userRepo := repository.NewUserRepository(db)
	creditSvc := service.NewCreditService(repository.NewCreditRepository(db), userRepo)
	couponSvc := service.NewCouponService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db))
	membershipSvc := service.NewMembershipService(repository.NewTierRepository(db), userRepo, repository.NewPointRepository(db))
	orderSvc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		userRepo,
		creditSvc,
		couponSvc,
		membershipSvc,
		service.NewLogReferralNotifier(),
		nil,
		&config.OrderConfig{ShippingFee: "0", AutoCompleteDays: 7},
	)
	return NewConsumer(&provider.Container{OrderService: orderSvc}), db
}

func autoCompleteTask(t *testing.T, orderID uint) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(queue.OrderAutoCompletePayload{OrderID: orderID})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	return asynq.NewTask(queue.TaskOrderAutoComplete, raw)
}

func TestHandleOrderAutoCompleteDeliveredOrder(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	order := models.Order{
		OrderNo: "SS20260901000000000042", GuestEmail: "guest@example.com",
		Status: constants.OrderStatusDelivered, PaymentStatus: constants.PaymentStatusPaid,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := consumer.handleOrderAutoComplete(context.Background(), autoCompleteTask(t, order.ID)); err != nil {
		t.Fatalf("handleOrderAutoComplete error: %v", err)
	}

	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusCompleted || reloaded.CompletedAt == nil {
		t.Fatalf("expected completed order, got %s", reloaded.Status)
	}

	// 重复投递幂等
	if err := consumer.handleOrderAutoComplete(context.Background(), autoCompleteTask(t, order.ID)); err != nil {
		t.Fatalf("second delivery should be idempotent: %v", err)
	}
}

func TestHandleOrderAutoCompleteSkipsNonDelivered(t *testing.T) {
	consumer, db := setupWorkerTest(t)

	order := models.Order{
		OrderNo: "SS20260901000000000043", GuestEmail: "guest@example.com",
		Status: constants.OrderStatusShipped, PaymentStatus: constants.PaymentStatusPaid,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := consumer.handleOrderAutoComplete(context.Background(), autoCompleteTask(t, order.ID)); err != nil {
		t.Fatalf("handleOrderAutoComplete error: %v", err)
	}
	var reloaded models.Order
	if err := db.First(&reloaded, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloaded.Status != constants.OrderStatusShipped {
		t.Fatalf("expected shipped order untouched, got %s", reloaded.Status)
	}
}

func TestHandleOrderAutoCompleteInvalidPayload(t *testing.T) {
	consumer, _ := setupWorkerTest(t)

	task := asynq.NewTask(queue.TaskOrderAutoComplete, []byte("not-json"))
	if err := consumer.handleOrderAutoComplete(context.Background(), task); err == nil {
		t.Fatalf("expected error for invalid payload")
	}

	// 零订单号直接跳过
	if err := consumer.handleOrderAutoComplete(context.Background(), autoCompleteTask(t, 0)); err != nil {
		t.Fatalf("zero order id should be skipped: %v", err)
	}
}
