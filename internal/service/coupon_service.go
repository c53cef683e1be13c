package service

import (
	"strings"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CouponService 优惠券服务（按订单小计抵扣）
type CouponService struct {
	couponRepo repository.CouponRepository
	usageRepo  repository.CouponUsageRepository
}

// NewCouponService 创建优惠券服务
func NewCouponService(couponRepo repository.CouponRepository, usageRepo repository.CouponUsageRepository) *CouponService {
	return &CouponService{couponRepo: couponRepo, usageRepo: usageRepo}
}

// CouponQuote 优惠券试算结果
type CouponQuote struct {
	Coupon   *models.Coupon `json:"coupon"`
	Discount models.Money   `json:"discount"`
}

// ApplyCoupon 校验优惠券并按订单小计试算抵扣金额（只读，不写使用记录）
func (s *CouponService) ApplyCoupon(code string, userID uint, subtotal models.Money) (*CouponQuote, error) {
	coupon, err := s.couponRepo.GetByCode(strings.TrimSpace(code))
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	if err := s.validateCoupon(coupon, userID, subtotal, time.Now()); err != nil {
		return nil, err
	}
	return &CouponQuote{
		Coupon:   coupon,
		Discount: s.calcDiscount(coupon, subtotal),
	}, nil
}

// RecordUsageTx 在事务内核销优惠券：加锁复核后累计次数并写入使用记录
func (s *CouponService) RecordUsageTx(tx *gorm.DB, code string, userID, orderID uint, subtotal models.Money) (*models.Coupon, models.Money, error) {
	couponRepo := s.couponRepo.WithTx(tx)
	usageRepo := s.usageRepo.WithTx(tx)

	coupon, err := couponRepo.GetByCodeForUpdate(strings.TrimSpace(code))
	if err != nil {
		return nil, models.ZeroMoney(), err
	}
	if coupon == nil {
		return nil, models.ZeroMoney(), ErrCouponNotFound
	}
	if err := s.validateCoupon(coupon, userID, subtotal, time.Now()); err != nil {
		return nil, models.ZeroMoney(), err
	}

	discount := s.calcDiscount(coupon, subtotal)
	coupon.UsedCount++
	if err := couponRepo.Update(coupon); err != nil {
		return nil, models.ZeroMoney(), err
	}
	if err := usageRepo.Create(&models.CouponUsage{
		CouponID:       coupon.ID,
		UserID:         userID,
		OrderID:        orderID,
		DiscountAmount: discount,
	}); err != nil {
		return nil, models.ZeroMoney(), err
	}

	logger.Infow("coupon_redeemed",
		"coupon_id", coupon.ID,
		"code", coupon.Code,
		"user_id", userID,
		"order_id", orderID,
		"discount", discount.String(),
	)
	return coupon, discount, nil
}

func (s *CouponService) validateCoupon(coupon *models.Coupon, userID uint, subtotal models.Money, now time.Time) error {
	if !coupon.IsActive {
		return ErrCouponInactive
	}
	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return ErrCouponNotStarted
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return ErrCouponExpired
	}
	if coupon.UsageLimit > 0 && coupon.UsedCount >= coupon.UsageLimit {
		return ErrCouponUsageLimit
	}
	if coupon.PerUserLimit > 0 && userID != 0 {
		used, err := s.usageRepo.CountByCouponAndUser(coupon.ID, userID)
		if err != nil {
			return err
		}
		if used >= int64(coupon.PerUserLimit) {
			return ErrCouponPerUserLimit
		}
	}
	if coupon.MinAmount.GreaterThan(subtotal.Decimal) {
		return ErrCouponMinAmount
	}
	return nil
}

// calcDiscount 计算抵扣金额，百分比券受最大优惠约束，最终不超过小计
func (s *CouponService) calcDiscount(coupon *models.Coupon, subtotal models.Money) models.Money {
	var discount decimal.Decimal
	switch coupon.Type {
	case constants.CouponTypePercent:
		discount = subtotal.Decimal.Mul(coupon.Value.Decimal).Div(decimal.NewFromInt(100))
		if coupon.MaxDiscount.IsPositive() && discount.GreaterThan(coupon.MaxDiscount.Decimal) {
			discount = coupon.MaxDiscount.Decimal
		}
	default:
		discount = coupon.Value.Decimal
	}
	if discount.GreaterThan(subtotal.Decimal) {
		discount = subtotal.Decimal
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	return models.NewMoneyFromDecimal(discount)
}

// CouponInput 优惠券创建/更新入参
type CouponInput struct {
	Code         string     `json:"code"`
	Type         string     `json:"type"`
	Value        string     `json:"value"`
	MinAmount    string     `json:"min_amount"`
	MaxDiscount  string     `json:"max_discount"`
	UsageLimit   int        `json:"usage_limit"`
	PerUserLimit int        `json:"per_user_limit"`
	StartsAt     *time.Time `json:"starts_at"`
	EndsAt       *time.Time `json:"ends_at"`
	IsActive     *bool      `json:"is_active"`
}

// CreateCoupon 创建优惠券
func (s *CouponService) CreateCoupon(input CouponInput) (*models.Coupon, error) {
	coupon, err := s.buildCoupon(input)
	if err != nil {
		return nil, err
	}
	existing, err := s.couponRepo.GetByCode(coupon.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrCouponInvalid
	}
	if err := s.couponRepo.Create(coupon); err != nil {
		return nil, err
	}
	logger.Infow("coupon_created", "coupon_id", coupon.ID, "code", coupon.Code)
	return coupon, nil
}

// UpdateCoupon 更新优惠券
func (s *CouponService) UpdateCoupon(id uint, input CouponInput) (*models.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	updated, err := s.buildCoupon(input)
	if err != nil {
		return nil, err
	}
	if updated.Code != coupon.Code {
		existing, err := s.couponRepo.GetByCode(updated.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.ID != coupon.ID {
			return nil, ErrCouponInvalid
		}
	}
	coupon.Code = updated.Code
	coupon.Type = updated.Type
	coupon.Value = updated.Value
	coupon.MinAmount = updated.MinAmount
	coupon.MaxDiscount = updated.MaxDiscount
	coupon.UsageLimit = updated.UsageLimit
	coupon.PerUserLimit = updated.PerUserLimit
	coupon.StartsAt = updated.StartsAt
	coupon.EndsAt = updated.EndsAt
	coupon.IsActive = updated.IsActive
	if err := s.couponRepo.Update(coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// DeleteCoupon 删除优惠券
func (s *CouponService) DeleteCoupon(id uint) error {
	coupon, err := s.couponRepo.GetByID(id)
	if err != nil {
		return err
	}
	if coupon == nil {
		return ErrCouponNotFound
	}
	return s.couponRepo.Delete(id)
}

// ListCoupons 分页查询优惠券
func (s *CouponService) ListCoupons(filter repository.CouponListFilter) ([]models.Coupon, int64, error) {
	return s.couponRepo.List(filter)
}

// ListUsages 分页查询使用记录
func (s *CouponService) ListUsages(filter repository.CouponUsageListFilter) ([]models.CouponUsage, int64, error) {
	return s.usageRepo.List(filter)
}

func (s *CouponService) buildCoupon(input CouponInput) (*models.Coupon, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, ErrCouponInvalid
	}
	couponType := normalizeStatus(input.Type)
	if couponType != constants.CouponTypeFixed && couponType != constants.CouponTypePercent {
		return nil, ErrCouponInvalid
	}
	value, err := models.NewMoneyFromString(strings.TrimSpace(input.Value))
	if err != nil || !value.IsPositive() {
		return nil, ErrCouponInvalid
	}
	if couponType == constants.CouponTypePercent && value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrCouponInvalid
	}
	minAmount := models.ZeroMoney()
	if strings.TrimSpace(input.MinAmount) != "" {
		minAmount, err = models.NewMoneyFromString(strings.TrimSpace(input.MinAmount))
		if err != nil || minAmount.IsNegative() {
			return nil, ErrCouponInvalid
		}
	}
	maxDiscount := models.ZeroMoney()
	if strings.TrimSpace(input.MaxDiscount) != "" {
		maxDiscount, err = models.NewMoneyFromString(strings.TrimSpace(input.MaxDiscount))
		if err != nil || maxDiscount.IsNegative() {
			return nil, ErrCouponInvalid
		}
	}
	if input.UsageLimit < 0 || input.PerUserLimit < 0 {
		return nil, ErrCouponInvalid
	}
	if input.StartsAt != nil && input.EndsAt != nil && input.EndsAt.Before(*input.StartsAt) {
		return nil, ErrCouponInvalid
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	return &models.Coupon{
		Code:         code,
		Type:         couponType,
		Value:        value,
		MinAmount:    minAmount,
		MaxDiscount:  maxDiscount,
		UsageLimit:   input.UsageLimit,
		PerUserLimit: input.PerUserLimit,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		IsActive:     isActive,
	}, nil
}
