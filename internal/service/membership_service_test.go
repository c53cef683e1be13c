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

func setupMembershipServiceTest(t *testing.T) (*MembershipService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:membership_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.MembershipTier{},
		&models.PointTransaction{},
		&models.Order{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	return NewMembershipService(
		repository.NewTierRepository(db),
		repository.NewUserRepository(db),
		repository.NewPointRepository(db),
	), db
}

func seedDefaultTiers(t *testing.T, db *gorm.DB) []models.MembershipTier {
	t.Helper()
	tiers := []models.MembershipTier{
		{
			Name: "普通会员", MinSpent: mustMoney(t, "0"), MaxSpent: moneyPtrOf(t, "10000"),
			Discount: decimal.NewFromInt(1), PointsMultiplier: decimal.NewFromInt(1), SortOrder: 1, IsActive: true,
		},
		{
			Name: "银卡会员", MinSpent: mustMoney(t, "10000"), MaxSpent: moneyPtrOf(t, "50000"),
			Discount: decimal.RequireFromString("0.95"), PointsMultiplier: decimal.RequireFromString("1.2"), SortOrder: 2, IsActive: true,
		},
		{
			Name: "金卡会员", MinSpent: mustMoney(t, "50000"),
			Discount: decimal.RequireFromString("0.9"), PointsMultiplier: decimal.RequireFromString("1.5"), SortOrder: 3, IsActive: true,
		},
	}
	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("create tier failed: %v", err)
		}
	}
	return tiers
}

func TestResolveTierBoundaries(t *testing.T) {
	svc, db := setupMembershipServiceTest(t)
	tiers := seedDefaultTiers(t, db)

	cases := []struct {
		spent string
		want  uint
	}{
		{"0", tiers[0].ID},
		{"9999.99", tiers[0].ID},
		{"10000", tiers[1].ID},
		{"49999.99", tiers[1].ID},
		{"50000", tiers[2].ID},
		{"120000", tiers[2].ID},
	}
	for _, tc := range cases {
		tier, err := svc.ResolveTier(mustMoney(t, tc.spent))
		if err != nil {
			t.Fatalf("ResolveTier(%s) error: %v", tc.spent, err)
		}
		if tier.ID != tc.want {
			t.Fatalf("ResolveTier(%s): expected tier %d, got %d (%s)", tc.spent, tc.want, tier.ID, tier.Name)
		}
	}
}

func TestPointsEarnedFloor(t *testing.T) {
	svc, _ := setupMembershipServiceTest(t)
	tier := &models.MembershipTier{PointsMultiplier: decimal.RequireFromString("1.2")}

	if got := svc.PointsEarned(mustMoney(t, "1700"), tier); got != 2040 {
		t.Fatalf("expected 2040 points, got %d", got)
	}
	// 1234.56 * 1.2 = 1481.472，向下取整
	if got := svc.PointsEarned(mustMoney(t, "1234.56"), tier); got != 1481 {
		t.Fatalf("expected 1481 points, got %d", got)
	}
	if got := svc.PointsEarned(mustMoney(t, "0"), tier); got != 0 {
		t.Fatalf("expected 0 points for zero total, got %d", got)
	}
	if got := svc.PointsEarned(mustMoney(t, "100"), nil); got != 0 {
		t.Fatalf("expected 0 points for nil tier, got %d", got)
	}
}

func TestSettleOrderCompletion(t *testing.T) {
	svc, db := setupMembershipServiceTest(t)
	tiers := seedDefaultTiers(t, db)

	user := models.User{
		ID: 1, Email: "member@example.com", PasswordHash: "hash",
		Status: constants.UserStatusActive, TotalSpent: mustMoney(t, "9000"),
		MembershipTierID: &tiers[0].ID, IsFirstTimeBuyer: true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := models.Order{
		ID: 10, OrderNo: "SS20260901000000000001", UserID: 1,
		Status: constants.OrderStatusCompleted, PaymentStatus: constants.PaymentStatusPaid,
		TotalAmount: mustMoney(t, "2000"),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	result, err := svc.SettleOrderCompletion(&order)
	if err != nil {
		t.Fatalf("SettleOrderCompletion error: %v", err)
	}
	// 9000 + 2000 = 11000 落入银卡区间，积分按 1.2 倍率
	if result.Tier == nil || result.Tier.ID != tiers[1].ID {
		t.Fatalf("expected silver tier, got %+v", result.Tier)
	}
	if !result.TierChanged {
		t.Fatalf("expected tier change")
	}
	if result.PointsEarned != 2400 {
		t.Fatalf("expected 2400 points, got %d", result.PointsEarned)
	}
	if result.BonusPoints != constants.TierUpgradeBonusPoints {
		t.Fatalf("expected upgrade bonus %d, got %d", constants.TierUpgradeBonusPoints, result.BonusPoints)
	}

	var reloaded models.User
	if err := db.First(&reloaded, 1).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if !reloaded.TotalSpent.Equal(decimal.NewFromInt(11000)) {
		t.Fatalf("expected total spent 11000, got %s", reloaded.TotalSpent.String())
	}
	if reloaded.TotalOrders != 1 {
		t.Fatalf("expected 1 completed order, got %d", reloaded.TotalOrders)
	}
	if reloaded.MembershipPoints != 2400+constants.TierUpgradeBonusPoints {
		t.Fatalf("expected %d points balance, got %d", 2400+constants.TierUpgradeBonusPoints, reloaded.MembershipPoints)
	}
	if reloaded.MembershipTierID == nil || *reloaded.MembershipTierID != tiers[1].ID {
		t.Fatalf("expected tier id %d, got %v", tiers[1].ID, reloaded.MembershipTierID)
	}
	if reloaded.IsFirstTimeBuyer || reloaded.FirstPurchaseAt == nil {
		t.Fatalf("expected first purchase recorded")
	}

	// 幂等：同一订单重复结算不再累计
	again, err := svc.SettleOrderCompletion(&order)
	if err != nil {
		t.Fatalf("second SettleOrderCompletion error: %v", err)
	}
	if !again.AlreadyDone {
		t.Fatalf("expected AlreadyDone on repeat settlement")
	}
	if err := db.First(&reloaded, 1).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.MembershipPoints != 2400+constants.TierUpgradeBonusPoints {
		t.Fatalf("points changed on repeat settlement: %d", reloaded.MembershipPoints)
	}

	var txns int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", 1).Count(&txns)
	if txns != 2 {
		t.Fatalf("expected 2 point transactions (reward + bonus), got %d", txns)
	}
}

func TestSettleOrderCompletionFirstSettlementNoBonusInSameTier(t *testing.T) {
	svc, db := setupMembershipServiceTest(t)
	tiers := seedDefaultTiers(t, db)

	// 注册后从未结算过的用户没有等级记录，首单仍落在底层等级时不发升级奖励
	user := models.User{
		ID: 1, Email: "fresh@example.com", PasswordHash: "hash",
		Status: constants.UserStatusActive, TotalSpent: mustMoney(t, "0"),
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	order := models.Order{
		ID: 20, OrderNo: "SS20260901000000000020", UserID: 1,
		Status: constants.OrderStatusCompleted, TotalAmount: mustMoney(t, "500"),
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	result, err := svc.SettleOrderCompletion(&order)
	if err != nil {
		t.Fatalf("SettleOrderCompletion error: %v", err)
	}
	if result.TierChanged || result.BonusPoints != 0 {
		t.Fatalf("expected no upgrade bonus for bottom tier, got %+v", result)
	}
	if result.PointsEarned != 500 {
		t.Fatalf("expected 500 points, got %d", result.PointsEarned)
	}

	var reloaded models.User
	if err := db.First(&reloaded, 1).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.MembershipTierID == nil || *reloaded.MembershipTierID != tiers[0].ID {
		t.Fatalf("expected bottom tier id %d, got %v", tiers[0].ID, reloaded.MembershipTierID)
	}
	var txns int64
	db.Model(&models.PointTransaction{}).Where("user_id = ?", 1).Count(&txns)
	if txns != 1 {
		t.Fatalf("expected single reward transaction, got %d", txns)
	}

	// 首单直接跨级时仍发升级奖励
	rich := models.User{
		ID: 2, Email: "fresh_rich@example.com", PasswordHash: "hash",
		Status: constants.UserStatusActive, TotalSpent: mustMoney(t, "0"),
	}
	if err := db.Create(&rich).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	bigOrder := models.Order{
		ID: 21, OrderNo: "SS20260901000000000021", UserID: 2,
		Status: constants.OrderStatusCompleted, TotalAmount: mustMoney(t, "12000"),
	}
	if err := db.Create(&bigOrder).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	result, err = svc.SettleOrderCompletion(&bigOrder)
	if err != nil {
		t.Fatalf("SettleOrderCompletion error: %v", err)
	}
	if !result.TierChanged || result.BonusPoints != constants.TierUpgradeBonusPoints {
		t.Fatalf("expected upgrade bonus when first order crosses tiers, got %+v", result)
	}
}

func TestSettleOrderCompletionGuestSkipped(t *testing.T) {
	svc, db := setupMembershipServiceTest(t)
	seedDefaultTiers(t, db)

	order := models.Order{
		ID: 11, OrderNo: "SS20260901000000000002", UserID: 0,
		GuestEmail: "guest@example.com", Status: constants.OrderStatusCompleted,
		TotalAmount: mustMoney(t, "500"),
	}
	result, err := svc.SettleOrderCompletion(&order)
	if err != nil {
		t.Fatalf("SettleOrderCompletion error: %v", err)
	}
	if result.PointsEarned != 0 || result.TierChanged {
		t.Fatalf("expected no-op settlement for guest order, got %+v", result)
	}
}

func TestCreateTierRejectsOverlap(t *testing.T) {
	svc, db := setupMembershipServiceTest(t)
	seedDefaultTiers(t, db)

	_, err := svc.CreateTier(TierInput{
		Name:             "重叠等级",
		MinSpent:         mustMoney(t, "8000"),
		MaxSpent:         moneyPtrOf(t, "20000"),
		Discount:         decimal.NewFromInt(1),
		PointsMultiplier: decimal.NewFromInt(1),
	})
	if !errors.Is(err, ErrTierRangeOverlap) {
		t.Fatalf("expected ErrTierRangeOverlap, got: %v", err)
	}

	// 停用等级不参与重叠校验
	inactive := false
	if _, err := svc.CreateTier(TierInput{
		Name:             "停用等级",
		MinSpent:         mustMoney(t, "8000"),
		MaxSpent:         moneyPtrOf(t, "20000"),
		Discount:         decimal.NewFromInt(1),
		PointsMultiplier: decimal.NewFromInt(1),
		IsActive:         &inactive,
	}); err != nil {
		t.Fatalf("expected inactive overlapping tier allowed, got: %v", err)
	}
}

func TestTierInputValidation(t *testing.T) {
	svc, _ := setupMembershipServiceTest(t)

	cases := []TierInput{
		{Name: "", MinSpent: mustMoney(t, "0"), Discount: decimal.NewFromInt(1), PointsMultiplier: decimal.NewFromInt(1)},
		{Name: "负区间", MinSpent: mustMoney(t, "-1"), Discount: decimal.NewFromInt(1), PointsMultiplier: decimal.NewFromInt(1)},
		{Name: "上界不大于下界", MinSpent: mustMoney(t, "100"), MaxSpent: moneyPtrOf(t, "100"), Discount: decimal.NewFromInt(1), PointsMultiplier: decimal.NewFromInt(1)},
		{Name: "折扣超界", MinSpent: mustMoney(t, "0"), Discount: decimal.RequireFromString("1.2"), PointsMultiplier: decimal.NewFromInt(1)},
		{Name: "倍率非正", MinSpent: mustMoney(t, "0"), Discount: decimal.NewFromInt(1), PointsMultiplier: decimal.Zero},
	}
	for i, input := range cases {
		if _, err := svc.CreateTier(input); !errors.Is(err, ErrTierInvalid) {
			t.Fatalf("case %d: expected ErrTierInvalid, got: %v", i, err)
		}
	}
}

func TestAdminAdjustPoints(t *testing.T) {
	svc, db := setupMembershipServiceTest(t)
	user := models.User{ID: 1, Email: "adjust@example.com", PasswordHash: "hash", Status: constants.UserStatusActive, MembershipPoints: 100}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	if err := svc.AdminAdjustPoints(1, -30, "客服补偿冲销"); err != nil {
		t.Fatalf("AdminAdjustPoints error: %v", err)
	}
	var reloaded models.User
	if err := db.First(&reloaded, 1).Error; err != nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if reloaded.MembershipPoints != 70 {
		t.Fatalf("expected 70 points, got %d", reloaded.MembershipPoints)
	}

	var txn models.PointTransaction
	if err := db.Where("user_id = ?", 1).First(&txn).Error; err != nil {
		t.Fatalf("load point transaction failed: %v", err)
	}
	if txn.Type != constants.PointTxnTypeAdminAdjust || txn.Points != -30 {
		t.Fatalf("unexpected transaction: %+v", txn)
	}

	if err := svc.AdminAdjustPoints(999, 10, ""); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got: %v", err)
	}
}
