package service

import (
	"fmt"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditService 购物金服务
type CreditService struct {
	creditRepo repository.CreditRepository
	userRepo   repository.UserRepository
}

// NewCreditService 创建购物金服务
func NewCreditService(creditRepo repository.CreditRepository, userRepo repository.UserRepository) *CreditService {
	return &CreditService{
		creditRepo: creditRepo,
		userRepo:   userRepo,
	}
}

// CreditAllocation 单笔授予的抵扣计划
type CreditAllocation struct {
	GrantID uint         `json:"grant_id"`
	Amount  models.Money `json:"amount"`
}

// IssueCreditInput 授予购物金输入
type IssueCreditInput struct {
	UserID           uint
	Amount           models.Money
	Source           string
	SourceOrderID    *uint
	ValidFrom        time.Time
	ValidUntil       time.Time
	MaxUsagePerOrder *models.Money
	MinOrderAmount   *models.Money
	Remark           string
}

// AllocateForOrderTx 在订单事务内分配购物金抵扣。
// 全有或全无：先对锁定的可用授予做完整计划，计划凑不齐请求金额时不产生任何扣减。
// 消耗顺序为到期时间升序（同到期时间按 ID 升序），保证确定性。
func (s *CreditService) AllocateForOrderTx(tx *gorm.DB, userID uint, requested models.Money, orderSubtotal models.Money, orderID uint, now time.Time) ([]CreditAllocation, error) {
	amount := requested.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		// 未请求抵扣视为成功的空分配
		return []CreditAllocation{}, nil
	}
	if userID == 0 {
		return nil, ErrGuestCreditNotAllowed
	}

	repo := s.creditRepo.WithTx(tx)
	grants, err := repo.ListUsableGrantsForUpdate(userID, now)
	if err != nil {
		return nil, err
	}

	// 先计划后落账：遍历一遍得出完整抵扣计划，不足则直接失败且无任何写入
	plan := make([]CreditAllocation, 0, len(grants))
	planned := make([]decimal.Decimal, 0, len(grants))
	remaining := amount
	for i := range grants {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		grant := &grants[i]
		// 订单小计未达该授予的使用门槛时整笔跳过
		if grant.MinOrderAmount != nil && orderSubtotal.Decimal.LessThan(grant.MinOrderAmount.Decimal) {
			continue
		}
		usable := grant.Balance.Decimal
		if grant.MaxUsagePerOrder != nil && usable.GreaterThan(grant.MaxUsagePerOrder.Decimal) {
			usable = grant.MaxUsagePerOrder.Decimal
		}
		if usable.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := usable
		if take.GreaterThan(remaining) {
			take = remaining
		}
		plan = append(plan, CreditAllocation{GrantID: grant.ID, Amount: models.NewMoneyFromDecimal(take)})
		planned = append(planned, take)
		remaining = remaining.Sub(take)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, ErrCreditInsufficient
	}

	// 落账：扣减余额、写核销记录；余额归零的授予标记耗尽
	grantByID := make(map[uint]*models.CreditGrant, len(grants))
	for i := range grants {
		grantByID[grants[i].ID] = &grants[i]
	}
	for i, allocation := range plan {
		grant := grantByID[allocation.GrantID]
		newBalance := grant.Balance.Decimal.Sub(planned[i]).Round(2)
		grant.Balance = models.NewMoneyFromDecimal(newBalance)
		if newBalance.LessThanOrEqual(decimal.Zero) {
			grant.IsUsed = true
		}
		grant.UpdatedAt = now
		if err := repo.UpdateGrant(grant); err != nil {
			return nil, err
		}
		usage := &models.CreditUsage{
			GrantID:   grant.ID,
			UserID:    userID,
			OrderID:   orderID,
			Amount:    allocation.Amount,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := repo.CreateUsage(usage); err != nil {
			return nil, err
		}
	}

	logger.Infow("credit_allocated",
		"user_id", userID,
		"order_id", orderID,
		"requested", amount.StringFixed(2),
		"grants_used", len(plan),
	)
	return plan, nil
}

// PlanAllocation 只读试算抵扣计划（下单预览），不加锁不写入。
func (s *CreditService) PlanAllocation(userID uint, requested models.Money, orderSubtotal models.Money, now time.Time) ([]CreditAllocation, error) {
	amount := requested.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return []CreditAllocation{}, nil
	}
	if userID == 0 {
		return nil, ErrGuestCreditNotAllowed
	}
	grants, err := s.creditRepo.ListUsableGrants(userID, now)
	if err != nil {
		return nil, err
	}
	plan := make([]CreditAllocation, 0, len(grants))
	remaining := amount
	for i := range grants {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}
		grant := &grants[i]
		if grant.MinOrderAmount != nil && orderSubtotal.Decimal.LessThan(grant.MinOrderAmount.Decimal) {
			continue
		}
		usable := grant.Balance.Decimal
		if grant.MaxUsagePerOrder != nil && usable.GreaterThan(grant.MaxUsagePerOrder.Decimal) {
			usable = grant.MaxUsagePerOrder.Decimal
		}
		if usable.LessThanOrEqual(decimal.Zero) {
			continue
		}
		take := usable
		if take.GreaterThan(remaining) {
			take = remaining
		}
		plan = append(plan, CreditAllocation{GrantID: grant.ID, Amount: models.NewMoneyFromDecimal(take)})
		remaining = remaining.Sub(take)
	}
	if remaining.GreaterThan(decimal.Zero) {
		return nil, ErrCreditInsufficient
	}
	return plan, nil
}

// ReleaseForOrderTx 订单取消时回补购物金。
// 将订单上未回补的核销记录按原授予逐笔加回余额，并恢复耗尽标记。
func (s *CreditService) ReleaseForOrderTx(tx *gorm.DB, orderID uint, now time.Time) error {
	if orderID == 0 {
		return nil
	}
	repo := s.creditRepo.WithTx(tx)
	usages, err := repo.ListUsagesByOrder(orderID)
	if err != nil {
		return err
	}
	for i := range usages {
		usage := &usages[i]
		if usage.IsReleased {
			continue
		}
		grant, err := repo.GetGrantByID(usage.GrantID)
		if err != nil {
			return err
		}
		if grant == nil {
			return ErrCreditGrantNotFound
		}
		grant.Balance = models.NewMoneyFromDecimal(grant.Balance.Decimal.Add(usage.Amount.Decimal))
		grant.IsUsed = false
		grant.UpdatedAt = now
		if err := repo.UpdateGrant(grant); err != nil {
			return err
		}
		usage.IsReleased = true
		usage.UpdatedAt = now
		if err := repo.UpdateUsage(usage); err != nil {
			return err
		}
	}
	logger.Infow("credit_released", "order_id", orderID, "usages", len(usages))
	return nil
}

// IssueGrant 授予购物金（管理端）
func (s *CreditService) IssueGrant(input IssueCreditInput) (*models.CreditGrant, error) {
	grant, err := buildCreditGrant(input)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(input.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if err := s.creditRepo.CreateGrant(grant); err != nil {
		return nil, err
	}
	logger.Infow("credit_grant_issued",
		"user_id", grant.UserID,
		"amount", grant.Amount.String(),
		"source", grant.Source,
		"valid_until", grant.ValidUntil,
	)
	return grant, nil
}

// BatchIssueGrants 批量授予购物金（营销活动）
func (s *CreditService) BatchIssueGrants(userIDs []uint, template IssueCreditInput) ([]models.CreditGrant, error) {
	issued := make([]models.CreditGrant, 0, len(userIDs))
	for _, userID := range userIDs {
		input := template
		input.UserID = userID
		grant, err := s.IssueGrant(input)
		if err != nil {
			return issued, err
		}
		issued = append(issued, *grant)
	}
	return issued, nil
}

// IssueRefundGrantTx 在退货完成事务内发放退款购物金（有效期 6 个月）
func (s *CreditService) IssueRefundGrantTx(tx *gorm.DB, userID uint, amount models.Money, orderID uint, now time.Time) (*models.CreditGrant, error) {
	if userID == 0 {
		// 游客订单没有账户可挂购物金，由调用方决定跳过
		return nil, ErrGuestCreditNotAllowed
	}
	if amount.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCreditInvalidAmount
	}
	grant := &models.CreditGrant{
		UserID:        userID,
		Amount:        amount,
		Balance:       amount,
		Source:        constants.CreditSourceRefund,
		SourceOrderID: &orderID,
		ValidFrom:     now,
		ValidUntil:    now.AddDate(0, constants.RefundCreditValidMonths, 0),
		IsActive:      true,
		Remark:        fmt.Sprintf("订单 %d 退款", orderID),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.creditRepo.WithTx(tx).CreateGrant(grant); err != nil {
		return nil, err
	}
	logger.Infow("credit_refund_grant_issued",
		"user_id", userID,
		"order_id", orderID,
		"amount", amount.String(),
		"valid_until", grant.ValidUntil,
	)
	return grant, nil
}

// Deactivate 停用购物金授予（不删除记录，保留历史）
func (s *CreditService) Deactivate(grantID uint) (*models.CreditGrant, error) {
	grant, err := s.creditRepo.GetGrantByID(grantID)
	if err != nil {
		return nil, err
	}
	if grant == nil {
		return nil, ErrCreditGrantNotFound
	}
	grant.IsActive = false
	grant.UpdatedAt = time.Now()
	if err := s.creditRepo.UpdateGrant(grant); err != nil {
		return nil, err
	}
	logger.Infow("credit_grant_deactivated", "grant_id", grantID, "user_id", grant.UserID)
	return grant, nil
}

// ListGrants 查询购物金授予记录
func (s *CreditService) ListGrants(filter repository.CreditGrantListFilter) ([]models.CreditGrant, int64, error) {
	return s.creditRepo.ListGrants(filter)
}

// UsableBalance 计算用户当前可用购物金总额（店面展示口径，不含门槛约束）
func (s *CreditService) UsableBalance(userID uint, now time.Time) (models.Money, error) {
	grants, err := s.creditRepo.ListUsableGrants(userID, now)
	if err != nil {
		return models.Money{}, err
	}
	total := decimal.Zero
	for _, grant := range grants {
		total = total.Add(grant.Balance.Decimal)
	}
	return models.NewMoneyFromDecimal(total), nil
}

func buildCreditGrant(input IssueCreditInput) (*models.CreditGrant, error) {
	if input.UserID == 0 {
		return nil, ErrUserNotFound
	}
	amount := input.Amount.Decimal.Round(2)
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCreditInvalidAmount
	}
	if input.MaxUsagePerOrder != nil && input.MaxUsagePerOrder.Decimal.LessThanOrEqual(decimal.Zero) {
		return nil, ErrCreditInvalidAmount
	}
	if input.MinOrderAmount != nil && input.MinOrderAmount.Decimal.IsNegative() {
		return nil, ErrCreditInvalidAmount
	}
	now := time.Now()
	validFrom := input.ValidFrom
	if validFrom.IsZero() {
		validFrom = now
	}
	validUntil := input.ValidUntil
	if validUntil.IsZero() || !validUntil.After(validFrom) {
		return nil, ErrCreditInvalidAmount
	}
	source := input.Source
	if source == "" {
		source = constants.CreditSourceAdminGrant
	}
	money := models.NewMoneyFromDecimal(amount)
	return &models.CreditGrant{
		UserID:           input.UserID,
		Amount:           money,
		Balance:          money,
		Source:           source,
		SourceOrderID:    input.SourceOrderID,
		ValidFrom:        validFrom,
		ValidUntil:       validUntil,
		MaxUsagePerOrder: input.MaxUsagePerOrder,
		MinOrderAmount:   input.MinOrderAmount,
		IsActive:         true,
		Remark:           input.Remark,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}
