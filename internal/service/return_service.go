package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnService 退货退款服务
type ReturnService struct {
	returnRepo  repository.ReturnRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	creditSvc   *CreditService
}

// NewReturnService 创建退货退款服务
func NewReturnService(
	returnRepo repository.ReturnRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	creditSvc *CreditService,
) *ReturnService {
	return &ReturnService{
		returnRepo:  returnRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		creditSvc:   creditSvc,
	}
}

// ReturnItemInput 退货明细入参
type ReturnItemInput struct {
	OrderItemID uint `json:"order_item_id"`
	Quantity    int  `json:"quantity"`
}

// CreateReturnInput 退货申请入参
type CreateReturnInput struct {
	UserID  uint              `json:"-"`
	OrderID uint              `json:"order_id"`
	Reason  string            `json:"reason"`
	Items   []ReturnItemInput `json:"items"`
}

// CreateReturn 创建退货申请。送达或已完成订单可退，同一订单只允许一张未完结退货单。
func (s *ReturnService) CreateReturn(input CreateReturnInput) (*models.Return, error) {
	if len(input.Items) == 0 {
		return nil, ErrReturnEmpty
	}
	for _, item := range input.Items {
		if item.OrderItemID == 0 || item.Quantity <= 0 {
			return nil, ErrReturnEmpty
		}
	}

	var created *models.Return
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		returnRepo := s.returnRepo.WithTx(tx)

		order, err := orderRepo.GetByIDForUpdate(input.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.UserID != input.UserID {
			return ErrOrderAccessDenied
		}
		if order.Status != constants.OrderStatusDelivered && order.Status != constants.OrderStatusCompleted {
			return ErrReturnOrderState
		}

		open, err := returnRepo.CountOpenByOrder(order.ID)
		if err != nil {
			return err
		}
		if open > 0 {
			return ErrReturnOpenExists
		}

		orderItems, err := orderRepo.ListItemsByOrder(order.ID)
		if err != nil {
			return err
		}
		itemsByID := make(map[uint]models.OrderItem, len(orderItems))
		for _, item := range orderItems {
			itemsByID[item.ID] = item
		}

		// 已退数量累计（此前已完成的退货单）
		returned, err := s.completedReturnQuantities(returnRepo, order.ID)
		if err != nil {
			return err
		}

		refund := decimal.Zero
		returnItems := make([]models.ReturnItem, 0, len(input.Items))
		seen := make(map[uint]bool, len(input.Items))
		for _, item := range input.Items {
			orderItem, ok := itemsByID[item.OrderItemID]
			if !ok || seen[item.OrderItemID] {
				return ErrReturnEmpty
			}
			seen[item.OrderItemID] = true
			if item.Quantity+returned[item.OrderItemID] > orderItem.Quantity {
				return ErrReturnQuantityExceeded
			}
			refund = refund.Add(orderItem.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
			returnItems = append(returnItems, models.ReturnItem{
				OrderItemID: item.OrderItemID,
				Quantity:    item.Quantity,
			})
		}

		ret := &models.Return{
			ReturnNo:     generateReturnNo(),
			OrderID:      order.ID,
			UserID:       order.UserID,
			Status:       constants.ReturnStatusRequested,
			Reason:       strings.TrimSpace(input.Reason),
			RefundAmount: models.NewMoneyFromDecimal(refund),
			Items:        returnItems,
		}
		if err := returnRepo.Create(ret); err != nil {
			return err
		}
		created = ret
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("return_requested",
		"return_id", created.ID,
		"return_no", created.ReturnNo,
		"order_id", created.OrderID,
		"user_id", created.UserID,
		"refund_amount", created.RefundAmount.String(),
	)
	return created, nil
}

// completedReturnQuantities 统计订单上已完成退货的各订单项数量
func (s *ReturnService) completedReturnQuantities(returnRepo *repository.GormReturnRepository, orderID uint) (map[uint]int, error) {
	rets, _, err := returnRepo.List(repository.ReturnListFilter{
		OrderID: orderID,
		Status:  constants.ReturnStatusCompleted,
	})
	if err != nil {
		return nil, err
	}
	quantities := make(map[uint]int)
	for _, ret := range rets {
		for _, item := range ret.Items {
			quantities[item.OrderItemID] += item.Quantity
		}
	}
	return quantities, nil
}

// UpdateStatusInput 退货单状态推进入参
type UpdateStatusInput struct {
	ReturnID     uint          `json:"-"`
	Status       string        `json:"status"`
	AdminRemark  string        `json:"admin_remark"`
	RefundAmount *models.Money `json:"refund_amount"` // 仅 completed 时生效，覆盖创建时计算的退款金额
}

// UpdateStatus 管理端推进退货单状态；completed 由 Complete 驱动，不允许直接设置
func (s *ReturnService) UpdateStatus(input UpdateStatusInput) (*models.Return, error) {
	newStatus := normalizeStatus(input.Status)
	if newStatus == constants.ReturnStatusCompleted {
		return s.Complete(input.ReturnID, input.AdminRemark, input.RefundAmount)
	}

	var updated *models.Return
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		returnRepo := s.returnRepo.WithTx(tx)
		ret, err := returnRepo.GetByIDForUpdate(input.ReturnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return ErrReturnNotFound
		}
		if !canTransitionReturn(ret.Status, newStatus) {
			return fmt.Errorf("%w: %s -> %s", ErrReturnTransitionInvalid, ret.Status, newStatus)
		}
		prev := ret.Status
		ret.Status = newStatus
		if strings.TrimSpace(input.AdminRemark) != "" {
			ret.AdminRemark = strings.TrimSpace(input.AdminRemark)
		}
		if err := returnRepo.Update(ret); err != nil {
			return err
		}
		logger.Infow("return_status_changed",
			"return_id", ret.ID,
			"return_no", ret.ReturnNo,
			"from", prev,
			"to", newStatus,
		)
		updated = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelReturn 用户撤销自己的退货单（未完结状态）
func (s *ReturnService) CancelReturn(userID, returnID uint) (*models.Return, error) {
	var updated *models.Return
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		returnRepo := s.returnRepo.WithTx(tx)
		ret, err := returnRepo.GetByIDForUpdate(returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return ErrReturnNotFound
		}
		if ret.UserID != userID {
			return ErrOrderAccessDenied
		}
		if !canTransitionReturn(ret.Status, constants.ReturnStatusCancelled) {
			return fmt.Errorf("%w: %s -> %s", ErrReturnTransitionInvalid, ret.Status, constants.ReturnStatusCancelled)
		}
		prev := ret.Status
		ret.Status = constants.ReturnStatusCancelled
		if err := returnRepo.Update(ret); err != nil {
			return err
		}
		logger.Infow("return_status_changed",
			"return_id", ret.ID,
			"return_no", ret.ReturnNo,
			"from", prev,
			"to", constants.ReturnStatusCancelled,
		)
		updated = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Complete 完成退货：回补三级库存、签发退款购物金、订单落入退款态，一个事务完成。
// overrideAmount 允许管理员在完成时覆盖退款金额（验货折损等场景），空则用创建时计算值。
func (s *ReturnService) Complete(returnID uint, adminRemark string, overrideAmount *models.Money) (*models.Return, error) {
	if overrideAmount != nil && overrideAmount.Decimal.IsNegative() {
		return nil, ErrReturnRefundInvalid
	}
	now := time.Now()
	var completed *models.Return

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		returnRepo := s.returnRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		ret, err := returnRepo.GetByIDForUpdate(returnID)
		if err != nil {
			return err
		}
		if ret == nil {
			return ErrReturnNotFound
		}
		if !canTransitionReturn(ret.Status, constants.ReturnStatusCompleted) {
			return fmt.Errorf("%w: %s -> %s", ErrReturnTransitionInvalid, ret.Status, constants.ReturnStatusCompleted)
		}

		order, err := orderRepo.GetByIDForUpdate(ret.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}

		// 按退货明细回补库存
		restoreItems := make([]models.OrderItem, 0, len(ret.Items))
		for _, item := range ret.Items {
			orderItem, err := orderRepo.GetItemByID(item.OrderItemID)
			if err != nil {
				return err
			}
			if orderItem == nil {
				return ErrReturnEmpty
			}
			restoreItems = append(restoreItems, models.OrderItem{
				ProductID: orderItem.ProductID,
				VariantID: orderItem.VariantID,
				Size:      orderItem.Size,
				Quantity:  item.Quantity,
			})
		}
		if err := restoreStockForItems(tx, s.productRepo, restoreItems); err != nil {
			return err
		}

		if overrideAmount != nil {
			ret.RefundAmount = models.NewMoneyFromDecimal(overrideAmount.Decimal)
		}

		// 游客订单无购物金账户，跳过签发
		if order.IsGuest() {
			logger.Infow("return_refund_grant_skipped",
				"return_id", ret.ID,
				"order_id", order.ID,
				"reason", "guest_order",
			)
		} else if ret.RefundAmount.IsPositive() {
			if _, err := s.creditSvc.IssueRefundGrantTx(tx, order.UserID, ret.RefundAmount, order.ID, now); err != nil {
				return err
			}
		}

		prev := ret.Status
		ret.Status = constants.ReturnStatusCompleted
		ret.RefundedAt = &now
		if strings.TrimSpace(adminRemark) != "" {
			ret.AdminRemark = strings.TrimSpace(adminRemark)
		}
		if err := returnRepo.Update(ret); err != nil {
			return err
		}

		// 退货完成无条件把订单落入退款态（送达或已完成订单都可能在退）
		order.Status = constants.OrderStatusRefunded
		order.PaymentStatus = constants.PaymentStatusRefunded
		order.RefundedAt = &now
		if err := orderRepo.Update(order); err != nil {
			return err
		}

		logger.Infow("return_completed",
			"return_id", ret.ID,
			"return_no", ret.ReturnNo,
			"order_id", order.ID,
			"from", prev,
			"refund_amount", ret.RefundAmount.String(),
		)
		completed = ret
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// GetReturn 获取用户自己的退货单
func (s *ReturnService) GetReturn(userID, returnID uint) (*models.Return, error) {
	ret, err := s.returnRepo.GetByID(returnID)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, ErrReturnNotFound
	}
	if ret.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return ret, nil
}

// GetReturnAdmin 管理端获取退货单
func (s *ReturnService) GetReturnAdmin(returnID uint) (*models.Return, error) {
	ret, err := s.returnRepo.GetByID(returnID)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, ErrReturnNotFound
	}
	return ret, nil
}

// ListMyReturns 用户退货单列表
func (s *ReturnService) ListMyReturns(userID uint, filter repository.ReturnListFilter) ([]models.Return, int64, error) {
	filter.UserID = userID
	return s.returnRepo.List(filter)
}

// ListReturns 管理端退货单列表
func (s *ReturnService) ListReturns(filter repository.ReturnListFilter) ([]models.Return, int64, error) {
	return s.returnRepo.List(filter)
}

// generateReturnNo 生成退货单编号：SR + 时间戳 + 6 位随机数字
func generateReturnNo() string {
	return "SR" + time.Now().Format("20060102150405") + randNumeric(6)
}
