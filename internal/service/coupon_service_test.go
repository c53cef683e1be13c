package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupCouponServiceTest(t *testing.T) (*CouponService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:coupon_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Coupon{}, &models.CouponUsage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewCouponService(repository.NewCouponRepository(db), repository.NewCouponUsageRepository(db)), db
}

func TestApplyCouponFixedAndPercent(t *testing.T) {
	svc, db := setupCouponServiceTest(t)

	fixed := models.Coupon{
		Code: "FIX100", Type: constants.CouponTypeFixed,
		Value: mustMoney(t, "100"), MinAmount: mustMoney(t, "500"), IsActive: true,
	}
	percent := models.Coupon{
		Code: "PCT10", Type: constants.CouponTypePercent,
		Value: mustMoney(t, "10"), MaxDiscount: mustMoney(t, "150"), IsActive: true,
	}
	for _, c := range []*models.Coupon{&fixed, &percent} {
		if err := db.Create(c).Error; err != nil {
			t.Fatalf("create coupon failed: %v", err)
		}
	}

	quote, err := svc.ApplyCoupon("FIX100", 1, mustMoney(t, "800"))
	if err != nil {
		t.Fatalf("ApplyCoupon error: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected fixed discount 100, got %s", quote.Discount.String())
	}

	// 未达门槛
	if _, err := svc.ApplyCoupon("FIX100", 1, mustMoney(t, "499.99")); !errors.Is(err, ErrCouponMinAmount) {
		t.Fatalf("expected ErrCouponMinAmount, got: %v", err)
	}

	// 百分比券 10%，2000 * 10% = 200 超出最大优惠 150
	quote, err = svc.ApplyCoupon("PCT10", 1, mustMoney(t, "2000"))
	if err != nil {
		t.Fatalf("ApplyCoupon error: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("expected capped discount 150, got %s", quote.Discount.String())
	}

	// 固定金额超过小计时按小计封顶
	quote, err = svc.ApplyCoupon("FIX100", 1, mustMoney(t, "560"))
	if err != nil {
		t.Fatalf("ApplyCoupon error: %v", err)
	}
	if !quote.Discount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected discount 100, got %s", quote.Discount.String())
	}

	if _, err := svc.ApplyCoupon("NOPE", 1, mustMoney(t, "800")); !errors.Is(err, ErrCouponNotFound) {
		t.Fatalf("expected ErrCouponNotFound, got: %v", err)
	}
}

func TestApplyCouponTimeWindowAndLimits(t *testing.T) {
	svc, db := setupCouponServiceTest(t)
	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	coupons := []models.Coupon{
		{Code: "INACTIVE", Type: constants.CouponTypeFixed, Value: mustMoney(t, "10"), IsActive: false},
		{Code: "NOTYET", Type: constants.CouponTypeFixed, Value: mustMoney(t, "10"), StartsAt: &future, IsActive: true},
		{Code: "EXPIRED", Type: constants.CouponTypeFixed, Value: mustMoney(t, "10"), EndsAt: &past, IsActive: true},
		{Code: "USEDUP", Type: constants.CouponTypeFixed, Value: mustMoney(t, "10"), UsageLimit: 5, UsedCount: 5, IsActive: true},
	}
	for i := range coupons {
		if err := db.Create(&coupons[i]).Error; err != nil {
			t.Fatalf("create coupon failed: %v", err)
		}
	}

	cases := []struct {
		code string
		want error
	}{
		{"INACTIVE", ErrCouponInactive},
		{"NOTYET", ErrCouponNotStarted},
		{"EXPIRED", ErrCouponExpired},
		{"USEDUP", ErrCouponUsageLimit},
	}
	for _, tc := range cases {
		if _, err := svc.ApplyCoupon(tc.code, 1, mustMoney(t, "100")); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got: %v", tc.code, tc.want, err)
		}
	}
}

func TestRecordUsageTxEnforcesPerUserLimit(t *testing.T) {
	svc, db := setupCouponServiceTest(t)

	coupon := models.Coupon{
		Code: "ONCE", Type: constants.CouponTypeFixed,
		Value: mustMoney(t, "50"), PerUserLimit: 1, IsActive: true,
	}
	if err := db.Create(&coupon).Error; err != nil {
		t.Fatalf("create coupon failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, discount, err := svc.RecordUsageTx(tx, "ONCE", 1, 100, mustMoney(t, "500"))
		if err != nil {
			return err
		}
		if !discount.Equal(decimal.NewFromInt(50)) {
			t.Fatalf("expected discount 50, got %s", discount.String())
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RecordUsageTx error: %v", err)
	}

	var reloaded models.Coupon
	if err := db.First(&reloaded, coupon.ID).Error; err != nil {
		t.Fatalf("reload coupon failed: %v", err)
	}
	if reloaded.UsedCount != 1 {
		t.Fatalf("expected used count 1, got %d", reloaded.UsedCount)
	}

	// 同一用户第二次核销被拒
	err = db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.RecordUsageTx(tx, "ONCE", 1, 101, mustMoney(t, "500"))
		return err
	})
	if !errors.Is(err, ErrCouponPerUserLimit) {
		t.Fatalf("expected ErrCouponPerUserLimit, got: %v", err)
	}

	// 游客不受每人上限约束（无法按账号累计）
	err = db.Transaction(func(tx *gorm.DB) error {
		_, _, err := svc.RecordUsageTx(tx, "ONCE", 0, 102, mustMoney(t, "500"))
		return err
	})
	if err != nil {
		t.Fatalf("guest RecordUsageTx error: %v", err)
	}
}

func TestCreateCouponValidation(t *testing.T) {
	svc, _ := setupCouponServiceTest(t)

	if _, err := svc.CreateCoupon(CouponInput{Code: "", Type: constants.CouponTypeFixed, Value: "10"}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for empty code, got: %v", err)
	}
	if _, err := svc.CreateCoupon(CouponInput{Code: "BAD", Type: "unknown", Value: "10"}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for unknown type, got: %v", err)
	}
	if _, err := svc.CreateCoupon(CouponInput{Code: "NEG", Type: constants.CouponTypeFixed, Value: "-5"}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for negative value, got: %v", err)
	}

	created, err := svc.CreateCoupon(CouponInput{Code: " welcome10 ", Type: constants.CouponTypeFixed, Value: "10"})
	if err != nil {
		t.Fatalf("CreateCoupon error: %v", err)
	}
	if created.Code != "WELCOME10" {
		t.Fatalf("expected normalized code WELCOME10, got %s", created.Code)
	}

	// 重复 code 拒绝
	if _, err := svc.CreateCoupon(CouponInput{Code: "WELCOME10", Type: constants.CouponTypeFixed, Value: "20"}); !errors.Is(err, ErrCouponInvalid) {
		t.Fatalf("expected ErrCouponInvalid for duplicate code, got: %v", err)
	}
}
