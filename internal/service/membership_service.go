package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/cache"
	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	tierCacheKey      = "membership:tiers"
	tierCacheTTL      = 5 * time.Minute
	tierLocalCacheTTL = 30 * time.Second
)

// MembershipService 会员等级与积分服务
type MembershipService struct {
	tierRepo  repository.TierRepository
	userRepo  repository.UserRepository
	pointRepo repository.PointRepository

	mu          sync.RWMutex
	cachedTiers []models.MembershipTier
	cachedAt    time.Time
}

// NewMembershipService 创建会员服务
func NewMembershipService(
	tierRepo repository.TierRepository,
	userRepo repository.UserRepository,
	pointRepo repository.PointRepository,
) *MembershipService {
	return &MembershipService{
		tierRepo:  tierRepo,
		userRepo:  userRepo,
		pointRepo: pointRepo,
	}
}

// TierInput 等级创建/更新输入
type TierInput struct {
	Name                  string
	MinSpent              models.Money
	MaxSpent              *models.Money
	Discount              decimal.Decimal
	PointsMultiplier      decimal.Decimal
	FreeShippingThreshold *models.Money
	BirthdayGift          string
	SortOrder             int
	IsActive              *bool
}

// SettlementResult 完成订单的会员结算结果
type SettlementResult struct {
	PointsEarned int64                  `json:"points_earned"`
	BonusPoints  int64                  `json:"bonus_points"`
	TierChanged  bool                   `json:"tier_changed"`
	Tier         *models.MembershipTier `json:"tier,omitempty"`
	AlreadyDone  bool                   `json:"already_done"`
}

// activeTiers 获取启用的等级表（本地缓存 + Redis 镜像，写操作时失效）
func (s *MembershipService) activeTiers() ([]models.MembershipTier, error) {
	now := time.Now()
	s.mu.RLock()
	if !s.cachedAt.IsZero() && now.Sub(s.cachedAt) <= tierLocalCacheTTL {
		tiers := s.cachedTiers
		s.mu.RUnlock()
		return tiers, nil
	}
	s.mu.RUnlock()

	var tiers []models.MembershipTier
	hit, err := cache.GetJSON(context.Background(), tierCacheKey, &tiers)
	if err != nil {
		logger.Warnw("membership_tier_cache_read_failed", "error", err)
	}
	if !hit {
		tiers, err = s.tierRepo.ListActive()
		if err != nil {
			return nil, err
		}
		if cacheErr := cache.SetJSON(context.Background(), tierCacheKey, tiers, tierCacheTTL); cacheErr != nil {
			logger.Warnw("membership_tier_cache_write_failed", "error", cacheErr)
		}
	}

	s.mu.Lock()
	s.cachedTiers = tiers
	s.cachedAt = now
	s.mu.Unlock()
	return tiers, nil
}

// invalidateTierCache 等级表写操作后失效缓存
func (s *MembershipService) invalidateTierCache() {
	s.mu.Lock()
	s.cachedAt = time.Time{}
	s.cachedTiers = nil
	s.mu.Unlock()
	if err := cache.Del(context.Background(), tierCacheKey); err != nil {
		logger.Warnw("membership_tier_cache_del_failed", "error", err)
	}
}

// ResolveTier 按历史累计消费解析会员等级。
// 等级区间由管理端保证互不重叠，任何非负消费额都应落在唯一等级内。
func (s *MembershipService) ResolveTier(totalSpent models.Money) (*models.MembershipTier, error) {
	tiers, err := s.activeTiers()
	if err != nil {
		return nil, err
	}
	for i := range tiers {
		if tiers[i].Contains(totalSpent) {
			return &tiers[i], nil
		}
	}
	logger.Errorw("membership_tier_unresolved", "total_spent", totalSpent.String(), "tiers", len(tiers))
	return nil, ErrTierNotResolved
}

// PointsEarned 计算订单实付金额的积分（向下取整，不足 1 积分部分舍弃）
func (s *MembershipService) PointsEarned(total models.Money, tier *models.MembershipTier) int64 {
	if tier == nil || total.Decimal.LessThanOrEqual(decimal.Zero) {
		return 0
	}
	earned := total.Decimal.
		Mul(tier.PointsMultiplier).
		Mul(decimal.NewFromInt(constants.PointBaseRate))
	return earned.Floor().IntPart()
}

// SettleOrderCompletion 订单完成后的会员结算：累计消费、积分、等级与升级奖励。
// 以积分流水的唯一 Reference 实现幂等，重复调用不产生二次累计。
// 调用方（订单状态流转）将本方法视为尽力而为的副作用，失败只记录日志。
func (s *MembershipService) SettleOrderCompletion(order *models.Order) (*SettlementResult, error) {
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.IsGuest() {
		// 游客订单不参与会员体系
		return &SettlementResult{}, nil
	}

	reference := fmt.Sprintf("order:%d:order_reward", order.ID)
	result := &SettlementResult{}
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		pointRepo := s.pointRepo.WithTx(tx)
		existing, err := pointRepo.GetTransactionByReference(reference)
		if err != nil {
			return err
		}
		if existing != nil {
			result.AlreadyDone = true
			return nil
		}

		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(order.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}

		now := time.Now()
		prevSpent := user.TotalSpent
		user.TotalSpent = models.NewMoneyFromDecimal(user.TotalSpent.Decimal.Add(order.TotalAmount.Decimal))
		user.TotalOrders++
		if user.IsFirstTimeBuyer {
			user.IsFirstTimeBuyer = false
			user.FirstPurchaseAt = &now
		}

		tier, err := s.ResolveTier(user.TotalSpent)
		if err != nil {
			return err
		}
		result.Tier = tier
		if user.MembershipTierID != nil {
			result.TierChanged = *user.MembershipTierID != tier.ID
		} else {
			// 从未结算过的用户按结算前消费额推导原等级，落在同一等级不算升级
			prevTier, err := s.ResolveTier(prevSpent)
			if err != nil {
				return err
			}
			result.TierChanged = prevTier.ID != tier.ID
		}
		user.MembershipTierID = &tier.ID

		points := s.PointsEarned(order.TotalAmount, tier)
		result.PointsEarned = points
		user.MembershipPoints += points
		txn := &models.PointTransaction{
			UserID:    user.ID,
			OrderID:   &order.ID,
			Type:      constants.PointTxnTypeOrderReward,
			Points:    points,
			Reference: reference,
			Remark:    fmt.Sprintf("订单 %s 完成", order.OrderNo),
			CreatedAt: now,
		}
		if err := pointRepo.CreateTransaction(txn); err != nil {
			return err
		}

		// 等级变化时发放一次性升级奖励，以独立 Reference 防重
		if result.TierChanged {
			bonusRef := fmt.Sprintf("order:%d:tier_bonus", order.ID)
			bonusExisting, err := pointRepo.GetTransactionByReference(bonusRef)
			if err != nil {
				return err
			}
			if bonusExisting == nil {
				result.BonusPoints = constants.TierUpgradeBonusPoints
				user.MembershipPoints += constants.TierUpgradeBonusPoints
				bonus := &models.PointTransaction{
					UserID:    user.ID,
					OrderID:   &order.ID,
					Type:      constants.PointTxnTypeCampaignReward,
					Points:    constants.TierUpgradeBonusPoints,
					Reference: bonusRef,
					Remark:    fmt.Sprintf("升级至 %s", tier.Name),
					CreatedAt: now,
				}
				if err := pointRepo.CreateTransaction(bonus); err != nil {
					return err
				}
			}
		}

		user.UpdatedAt = now
		return userRepo.Update(user)
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyDone {
		logger.Infow("membership_order_settled",
			"user_id", order.UserID,
			"order_id", order.ID,
			"points", result.PointsEarned,
			"bonus_points", result.BonusPoints,
			"tier_changed", result.TierChanged,
		)
	}
	return result, nil
}

// GetUserMembership 获取用户会员概览
func (s *MembershipService) GetUserMembership(userID uint) (*models.User, *models.MembershipTier, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, ErrUserNotFound
	}
	tier, err := s.ResolveTier(user.TotalSpent)
	if err != nil {
		return user, nil, err
	}
	return user, tier, nil
}

// ListPointTransactions 查询积分流水
func (s *MembershipService) ListPointTransactions(filter repository.PointTransactionListFilter) ([]models.PointTransaction, int64, error) {
	return s.pointRepo.ListTransactions(filter)
}

// AdminAdjustPoints 管理员调整积分
func (s *MembershipService) AdminAdjustPoints(userID uint, points int64, remark string) error {
	if points == 0 {
		return nil
	}
	return models.DB.Transaction(func(tx *gorm.DB) error {
		userRepo := s.userRepo.WithTx(tx)
		user, err := userRepo.GetByIDForUpdate(userID)
		if err != nil {
			return err
		}
		if user == nil {
			return ErrUserNotFound
		}
		now := time.Now()
		user.MembershipPoints += points
		user.UpdatedAt = now
		if err := userRepo.Update(user); err != nil {
			return err
		}
		txn := &models.PointTransaction{
			UserID:    userID,
			Type:      constants.PointTxnTypeAdminAdjust,
			Points:    points,
			Reference: fmt.Sprintf("admin_adjust:%d:%d", userID, now.UnixNano()),
			Remark:    remark,
			CreatedAt: now,
		}
		return s.pointRepo.WithTx(tx).CreateTransaction(txn)
	})
}

// ListTiers 获取全部等级（管理端）
func (s *MembershipService) ListTiers() ([]models.MembershipTier, error) {
	return s.tierRepo.ListAll()
}

// ListActiveTiers 获取启用等级（店面展示）
func (s *MembershipService) ListActiveTiers() ([]models.MembershipTier, error) {
	return s.activeTiers()
}

// CreateTier 创建等级（拒绝与现有启用等级区间重叠）
func (s *MembershipService) CreateTier(input TierInput) (*models.MembershipTier, error) {
	tier, err := buildTier(input)
	if err != nil {
		return nil, err
	}
	if err := s.checkTierOverlap(tier, 0); err != nil {
		return nil, err
	}
	if err := s.tierRepo.Create(tier); err != nil {
		return nil, err
	}
	s.invalidateTierCache()
	logger.Infow("membership_tier_created", "tier_id", tier.ID, "name", tier.Name)
	return tier, nil
}

// UpdateTier 更新等级
func (s *MembershipService) UpdateTier(tierID uint, input TierInput) (*models.MembershipTier, error) {
	existing, err := s.tierRepo.GetByID(tierID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrTierNotFound
	}
	updated, err := buildTier(input)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt
	if err := s.checkTierOverlap(updated, existing.ID); err != nil {
		return nil, err
	}
	if err := s.tierRepo.Update(updated); err != nil {
		return nil, err
	}
	s.invalidateTierCache()
	logger.Infow("membership_tier_updated", "tier_id", updated.ID, "name", updated.Name)
	return updated, nil
}

// DeleteTier 删除等级（软删除）
func (s *MembershipService) DeleteTier(tierID uint) error {
	existing, err := s.tierRepo.GetByID(tierID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrTierNotFound
	}
	if err := s.tierRepo.Delete(tierID); err != nil {
		return err
	}
	s.invalidateTierCache()
	logger.Infow("membership_tier_deleted", "tier_id", tierID)
	return nil
}

// checkTierOverlap 校验等级区间与其他启用等级不重叠
func (s *MembershipService) checkTierOverlap(candidate *models.MembershipTier, excludeID uint) error {
	if !candidate.IsActive {
		return nil
	}
	tiers, err := s.tierRepo.ListActive()
	if err != nil {
		return err
	}
	for _, other := range tiers {
		if other.ID == excludeID {
			continue
		}
		if tierRangesOverlap(candidate, &other) {
			return ErrTierRangeOverlap
		}
	}
	return nil
}

// tierRangesOverlap 判断两个半开区间 [min, max) 是否相交
func tierRangesOverlap(a, b *models.MembershipTier) bool {
	aEndsBeforeB := a.MaxSpent != nil && a.MaxSpent.Decimal.LessThanOrEqual(b.MinSpent.Decimal)
	bEndsBeforeA := b.MaxSpent != nil && b.MaxSpent.Decimal.LessThanOrEqual(a.MinSpent.Decimal)
	return !aEndsBeforeB && !bEndsBeforeA
}

func buildTier(input TierInput) (*models.MembershipTier, error) {
	if input.Name == "" {
		return nil, ErrTierInvalid
	}
	if input.MinSpent.Decimal.IsNegative() {
		return nil, ErrTierInvalid
	}
	if input.MaxSpent != nil && input.MaxSpent.Decimal.LessThanOrEqual(input.MinSpent.Decimal) {
		return nil, ErrTierInvalid
	}
	multiplier := input.PointsMultiplier
	if multiplier.LessThanOrEqual(decimal.Zero) {
		return nil, ErrTierInvalid
	}
	discount := input.Discount
	if discount.LessThanOrEqual(decimal.Zero) || discount.GreaterThan(decimal.NewFromInt(1)) {
		return nil, ErrTierInvalid
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	now := time.Now()
	return &models.MembershipTier{
		Name:                  input.Name,
		MinSpent:              input.MinSpent,
		MaxSpent:              input.MaxSpent,
		Discount:              discount,
		PointsMultiplier:      multiplier,
		FreeShippingThreshold: input.FreeShippingThreshold,
		BirthdayGift:          input.BirthdayGift,
		SortOrder:             input.SortOrder,
		IsActive:              isActive,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}
