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

func setupCreditServiceTest(t *testing.T) (*CreditService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:credit_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.CreditGrant{},
		&models.CreditUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	creditRepo := repository.NewCreditRepository(db)
	userRepo := repository.NewUserRepository(db)
	return NewCreditService(creditRepo, userRepo), db
}

func createCreditTestUser(t *testing.T, db *gorm.DB, id uint) {
	t.Helper()
	user := models.User{
		ID:           id,
		Email:        fmt.Sprintf("credit_user_%d@example.com", id),
		PasswordHash: "hash",
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
}

func mustMoney(t *testing.T, raw string) models.Money {
	t.Helper()
	m, err := models.NewMoneyFromString(raw)
	if err != nil {
		t.Fatalf("parse money %q failed: %v", raw, err)
	}
	return m
}

func moneyPtrOf(t *testing.T, raw string) *models.Money {
	t.Helper()
	m := mustMoney(t, raw)
	return &m
}

func TestIssueGrantValidation(t *testing.T) {
	svc, db := setupCreditServiceTest(t)
	createCreditTestUser(t, db, 1)

	if _, err := svc.IssueGrant(IssueCreditInput{UserID: 1, Amount: mustMoney(t, "0")}); !errors.Is(err, ErrCreditInvalidAmount) {
		t.Fatalf("expected ErrCreditInvalidAmount for zero amount, got: %v", err)
	}
	if _, err := svc.IssueGrant(IssueCreditInput{UserID: 1, Amount: mustMoney(t, "100")}); !errors.Is(err, ErrCreditInvalidAmount) {
		t.Fatalf("expected ErrCreditInvalidAmount for missing valid_until, got: %v", err)
	}
	if _, err := svc.IssueGrant(IssueCreditInput{
		UserID:     999,
		Amount:     mustMoney(t, "100"),
		ValidUntil: time.Now().Add(24 * time.Hour),
	}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound for unknown user, got: %v", err)
	}

	grant, err := svc.IssueGrant(IssueCreditInput{
		UserID:     1,
		Amount:     mustMoney(t, "100.005"),
		ValidUntil: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("IssueGrant error: %v", err)
	}
	if !grant.Amount.Equal(decimal.RequireFromString("100.01")) {
		t.Fatalf("expected amount rounded to 100.01, got %s", grant.Amount.String())
	}
	if grant.Source != constants.CreditSourceAdminGrant {
		t.Fatalf("expected default source admin_grant, got %s", grant.Source)
	}
	if !grant.Balance.Equal(grant.Amount.Decimal) {
		t.Fatalf("expected balance == amount, got %s", grant.Balance.String())
	}
}

func TestPlanAllocationOrderAndCaps(t *testing.T) {
	svc, db := setupCreditServiceTest(t)
	createCreditTestUser(t, db, 1)
	now := time.Now()

	// 三笔授予：晚到期不设限、早到期但单笔限 300、门槛 5000 不满足
	late := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "400"), Balance: mustMoney(t, "400"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(48 * time.Hour), IsActive: true,
	}
	early := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "500"), Balance: mustMoney(t, "500"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour),
		MaxUsagePerOrder: moneyPtrOf(t, "300"), IsActive: true,
	}
	gated := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "200"), Balance: mustMoney(t, "200"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(12 * time.Hour),
		MinOrderAmount: moneyPtrOf(t, "5000"), IsActive: true,
	}
	for _, grant := range []*models.CreditGrant{&late, &early, &gated} {
		if err := db.Create(grant).Error; err != nil {
			t.Fatalf("create grant failed: %v", err)
		}
	}

	plan, err := svc.PlanAllocation(1, mustMoney(t, "500"), mustMoney(t, "2000"), now)
	if err != nil {
		t.Fatalf("PlanAllocation error: %v", err)
	}
	if len(plan) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(plan))
	}
	// 最早到期且可用的 early 先消耗，受单笔上限 300 约束
	if plan[0].GrantID != early.ID || !plan[0].Amount.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected first allocation: %+v", plan[0])
	}
	if plan[1].GrantID != late.ID || !plan[1].Amount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("unexpected second allocation: %+v", plan[1])
	}

	// 门槛授予在小计达标时参与
	plan, err = svc.PlanAllocation(1, mustMoney(t, "900"), mustMoney(t, "6000"), now)
	if err != nil {
		t.Fatalf("PlanAllocation error: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected 3 allocations when threshold met, got %d", len(plan))
	}
	if plan[0].GrantID != gated.ID {
		t.Fatalf("expected earliest-expiring gated grant first, got %+v", plan[0])
	}

	if _, err := svc.PlanAllocation(1, mustMoney(t, "10000"), mustMoney(t, "2000"), now); !errors.Is(err, ErrCreditInsufficient) {
		t.Fatalf("expected ErrCreditInsufficient, got: %v", err)
	}
	if _, err := svc.PlanAllocation(0, mustMoney(t, "100"), mustMoney(t, "2000"), now); !errors.Is(err, ErrGuestCreditNotAllowed) {
		t.Fatalf("expected ErrGuestCreditNotAllowed for guest, got: %v", err)
	}
}

func TestAllocateForOrderTxAllOrNothing(t *testing.T) {
	svc, db := setupCreditServiceTest(t)
	createCreditTestUser(t, db, 1)
	now := time.Now()

	grant := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "100"), Balance: mustMoney(t, "100"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour), IsActive: true,
	}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("create grant failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.AllocateForOrderTx(tx, 1, mustMoney(t, "300"), mustMoney(t, "2000"), 77, now)
		return err
	})
	if !errors.Is(err, ErrCreditInsufficient) {
		t.Fatalf("expected ErrCreditInsufficient, got: %v", err)
	}

	var reloaded models.CreditGrant
	if err := db.First(&reloaded, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !reloaded.Balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected untouched balance 100, got %s", reloaded.Balance.String())
	}
	var usages int64
	db.Model(&models.CreditUsage{}).Count(&usages)
	if usages != 0 {
		t.Fatalf("expected no usages written, got %d", usages)
	}
}

func TestAllocateAndReleaseForOrder(t *testing.T) {
	svc, db := setupCreditServiceTest(t)
	createCreditTestUser(t, db, 1)
	now := time.Now()

	grant := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "300"), Balance: mustMoney(t, "300"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(24 * time.Hour), IsActive: true,
	}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("create grant failed: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		plan, err := svc.AllocateForOrderTx(tx, 1, mustMoney(t, "300"), mustMoney(t, "2000"), 42, now)
		if err != nil {
			return err
		}
		if len(plan) != 1 || !plan[0].Amount.Equal(decimal.NewFromInt(300)) {
			t.Fatalf("unexpected allocation plan: %+v", plan)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("AllocateForOrderTx error: %v", err)
	}

	var used models.CreditGrant
	if err := db.First(&used, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !used.Balance.Equal(decimal.Zero) || !used.IsUsed {
		t.Fatalf("expected exhausted grant, balance=%s is_used=%v", used.Balance.String(), used.IsUsed)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.ReleaseForOrderTx(tx, 42, now)
	})
	if err != nil {
		t.Fatalf("ReleaseForOrderTx error: %v", err)
	}

	var released models.CreditGrant
	if err := db.First(&released, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !released.Balance.Equal(decimal.NewFromInt(300)) || released.IsUsed {
		t.Fatalf("expected restored grant, balance=%s is_used=%v", released.Balance.String(), released.IsUsed)
	}

	var usage models.CreditUsage
	if err := db.Where("order_id = ?", 42).First(&usage).Error; err != nil {
		t.Fatalf("load usage failed: %v", err)
	}
	if !usage.IsReleased {
		t.Fatalf("expected usage marked released")
	}

	// 重复回补是幂等的
	err = db.Transaction(func(tx *gorm.DB) error {
		return svc.ReleaseForOrderTx(tx, 42, now)
	})
	if err != nil {
		t.Fatalf("second ReleaseForOrderTx error: %v", err)
	}
	if err := db.First(&released, grant.ID).Error; err != nil {
		t.Fatalf("reload grant failed: %v", err)
	}
	if !released.Balance.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected balance unchanged after repeat release, got %s", released.Balance.String())
	}
}

func TestUsableBalanceSkipsUnusableGrants(t *testing.T) {
	svc, db := setupCreditServiceTest(t)
	createCreditTestUser(t, db, 1)
	now := time.Now()

	grants := []models.CreditGrant{
		{UserID: 1, Amount: mustMoney(t, "100"), Balance: mustMoney(t, "100"), Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour), IsActive: true},
		{UserID: 1, Amount: mustMoney(t, "50"), Balance: mustMoney(t, "50"), Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-2 * time.Hour), ValidUntil: now.Add(-time.Hour), IsActive: true},
		{UserID: 1, Amount: mustMoney(t, "80"), Balance: mustMoney(t, "80"), Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour), IsActive: false},
		{UserID: 1, Amount: mustMoney(t, "60"), Balance: mustMoney(t, "0"), Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour), IsActive: true, IsUsed: true},
		{UserID: 1, Amount: mustMoney(t, "40"), Balance: mustMoney(t, "40"), Source: constants.CreditSourceCampaign, ValidFrom: now.Add(time.Hour), ValidUntil: now.Add(2 * time.Hour), IsActive: true},
	}
	for i := range grants {
		if err := db.Create(&grants[i]).Error; err != nil {
			t.Fatalf("create grant failed: %v", err)
		}
	}

	balance, err := svc.UsableBalance(1, now)
	if err != nil {
		t.Fatalf("UsableBalance error: %v", err)
	}
	if !balance.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected usable balance 100, got %s", balance.String())
	}
}

func TestDeactivateGrant(t *testing.T) {
	svc, db := setupCreditServiceTest(t)
	createCreditTestUser(t, db, 1)
	now := time.Now()

	grant := models.CreditGrant{
		UserID: 1, Amount: mustMoney(t, "100"), Balance: mustMoney(t, "100"),
		Source: constants.CreditSourceCampaign, ValidFrom: now.Add(-time.Hour), ValidUntil: now.Add(time.Hour), IsActive: true,
	}
	if err := db.Create(&grant).Error; err != nil {
		t.Fatalf("create grant failed: %v", err)
	}

	updated, err := svc.Deactivate(grant.ID)
	if err != nil {
		t.Fatalf("Deactivate error: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected grant deactivated")
	}

	balance, err := svc.UsableBalance(1, now)
	if err != nil {
		t.Fatalf("UsableBalance error: %v", err)
	}
	if !balance.Equal(decimal.Zero) {
		t.Fatalf("expected zero balance after deactivation, got %s", balance.String())
	}

	if _, err := svc.Deactivate(999); !errors.Is(err, ErrCreditGrantNotFound) {
		t.Fatalf("expected ErrCreditGrantNotFound, got: %v", err)
	}
}
