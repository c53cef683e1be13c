package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/config"
	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/logger"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/queue"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	productRepo   repository.ProductRepository
	cartRepo      repository.CartRepository
	userRepo      repository.UserRepository
	creditSvc     *CreditService
	couponSvc     *CouponService
	membershipSvc *MembershipService
	referral      ReferralNotifier
	queueClient   *queue.Client
	cfg           *config.OrderConfig
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	userRepo repository.UserRepository,
	creditSvc *CreditService,
	couponSvc *CouponService,
	membershipSvc *MembershipService,
	referral ReferralNotifier,
	queueClient *queue.Client,
	cfg *config.OrderConfig,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		productRepo:   productRepo,
		cartRepo:      cartRepo,
		userRepo:      userRepo,
		creditSvc:     creditSvc,
		couponSvc:     couponSvc,
		membershipSvc: membershipSvc,
		referral:      referral,
		queueClient:   queueClient,
		cfg:           cfg,
	}
}

// OrderItemInput 下单商品行
type OrderItemInput struct {
	ProductID uint   `json:"product_id"`
	VariantID *uint  `json:"variant_id"`
	Size      string `json:"size"`
	Quantity  int    `json:"quantity"`
}

// CreateOrderInput 下单入参。会员可从购物车结算或显式传商品行，游客只能显式传行。
type CreateOrderInput struct {
	UserID        uint             `json:"-"`
	Items         []OrderItemInput `json:"items"`
	FromCart      bool             `json:"from_cart"`
	CreditsToUse  string           `json:"credits_to_use"`
	CouponCode    string           `json:"coupon_code"`
	ShippingInfo  models.JSON      `json:"shipping_info"`
	PaymentMethod string           `json:"payment_method"`
	GuestEmail    string           `json:"guest_email"`
	GuestPassword string           `json:"guest_password"`
	GuestLocale   string           `json:"guest_locale"`
	ClientIP      string           `json:"-"`
}

// CreateOrder 创建订单：锁定三级库存、计算金额、核销优惠券与购物金，全部在一个事务内完成
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	isGuest := input.UserID == 0
	creditsToUse := models.ZeroMoney()
	if strings.TrimSpace(input.CreditsToUse) != "" {
		parsed, err := models.NewMoneyFromString(strings.TrimSpace(input.CreditsToUse))
		if err != nil {
			return nil, ErrCreditInvalidAmount
		}
		creditsToUse = parsed
	}

	if isGuest {
		if strings.TrimSpace(input.GuestEmail) == "" {
			return nil, ErrGuestEmailRequired
		}
		if input.FromCart || len(input.Items) == 0 {
			return nil, ErrGuestOrderNeedsItems
		}
		if creditsToUse.IsPositive() {
			return nil, ErrGuestCreditNotAllowed
		}
	}

	items := input.Items
	if !isGuest && input.FromCart {
		cartItems, err := s.cartRepo.ListByUser(input.UserID)
		if err != nil {
			return nil, err
		}
		if len(cartItems) == 0 {
			return nil, ErrCartEmpty
		}
		items = make([]OrderItemInput, 0, len(cartItems))
		for _, line := range cartItems {
			items = append(items, OrderItemInput{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Quantity:  line.Quantity,
			})
		}
	}
	if len(items) == 0 {
		return nil, ErrOrderEmpty
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, ErrOrderQuantityInvalid
		}
		if strings.TrimSpace(item.Size) == "" {
			return nil, ErrSizeNotFound
		}
	}

	var user *models.User
	if !isGuest {
		var err error
		user, err = s.userRepo.GetByID(input.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}

	guestPassword := ""
	if isGuest && strings.TrimSpace(input.GuestPassword) != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(input.GuestPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		guestPassword = string(hashed)
	}

	now := time.Now()
	var created *models.Order

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)

		// 锁定并扣减库存，生成快照行
		orderItems, subtotal, err := s.reserveStockTx(tx, items)
		if err != nil {
			return err
		}

		shippingFee, err := s.shippingFee(user, subtotal)
		if err != nil {
			return err
		}

		order := &models.Order{
			OrderNo:       generateOrderNo(),
			UserID:        input.UserID,
			GuestEmail:    strings.TrimSpace(strings.ToLower(input.GuestEmail)),
			GuestPassword: guestPassword,
			GuestLocale:   strings.TrimSpace(input.GuestLocale),
			Status:        constants.OrderStatusPending,
			PaymentStatus: constants.PaymentStatusPending,
			PaymentMethod: strings.TrimSpace(input.PaymentMethod),
			Subtotal:      subtotal,
			ShippingFee:   shippingFee,
			ShippingJSON:  input.ShippingInfo,
			ClientIP:      input.ClientIP,
		}
		if err := orderRepo.Create(order); err != nil {
			return err
		}

		for i := range orderItems {
			orderItems[i].OrderID = order.ID
		}
		if err := orderRepo.CreateItems(orderItems); err != nil {
			return err
		}

		couponDiscount := models.ZeroMoney()
		if strings.TrimSpace(input.CouponCode) != "" {
			coupon, discount, err := s.couponSvc.RecordUsageTx(tx, input.CouponCode, input.UserID, order.ID, subtotal)
			if err != nil {
				return err
			}
			couponDiscount = discount
			order.CouponID = &coupon.ID
		}

		creditDiscount := models.ZeroMoney()
		if creditsToUse.IsPositive() {
			if _, err := s.creditSvc.AllocateForOrderTx(tx, input.UserID, creditsToUse, subtotal, order.ID, now); err != nil {
				return err
			}
			creditDiscount = creditsToUse
		}

		discountAmount := models.NewMoneyFromDecimal(couponDiscount.Add(creditDiscount.Decimal))
		total := subtotal.Add(shippingFee.Decimal).Sub(discountAmount.Decimal)
		if total.IsNegative() {
			total = decimal.Zero
		}
		order.CouponDiscount = couponDiscount
		order.CreditDiscount = creditDiscount
		order.DiscountAmount = discountAmount
		order.TotalAmount = models.NewMoneyFromDecimal(total)
		if err := orderRepo.Update(order); err != nil {
			return err
		}

		if !isGuest && input.FromCart {
			if err := s.cartRepo.WithTx(tx).ClearByUser(input.UserID); err != nil {
				return err
			}
		}

		order.Items = orderItems
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infow("order_created",
		"order_id", created.ID,
		"order_no", created.OrderNo,
		"user_id", created.UserID,
		"is_guest", created.IsGuest(),
		"subtotal", created.Subtotal.String(),
		"total_amount", created.TotalAmount.String(),
	)
	return created, nil
}

// OrderQuote 下单前试算结果
type OrderQuote struct {
	Items          []models.OrderItem `json:"items"`
	Subtotal       models.Money       `json:"subtotal"`
	ShippingFee    models.Money       `json:"shipping_fee"`
	CouponDiscount models.Money       `json:"coupon_discount"`
	CreditDiscount models.Money       `json:"credit_discount"`
	DiscountAmount models.Money       `json:"discount_amount"`
	TotalAmount    models.Money       `json:"total_amount"`
	CreditPlan     []CreditAllocation `json:"credit_plan,omitempty"`
}

// PreviewOrder 只读试算：校验商品与库存、计算运费和优惠抵扣，不加锁不落库
func (s *OrderService) PreviewOrder(input CreateOrderInput) (*OrderQuote, error) {
	isGuest := input.UserID == 0
	creditsToUse := models.ZeroMoney()
	if strings.TrimSpace(input.CreditsToUse) != "" {
		parsed, err := models.NewMoneyFromString(strings.TrimSpace(input.CreditsToUse))
		if err != nil {
			return nil, ErrCreditInvalidAmount
		}
		creditsToUse = parsed
	}
	if isGuest && creditsToUse.IsPositive() {
		return nil, ErrGuestCreditNotAllowed
	}

	items := input.Items
	if !isGuest && input.FromCart {
		cartItems, err := s.cartRepo.ListByUser(input.UserID)
		if err != nil {
			return nil, err
		}
		if len(cartItems) == 0 {
			return nil, ErrCartEmpty
		}
		items = make([]OrderItemInput, 0, len(cartItems))
		for _, line := range cartItems {
			items = append(items, OrderItemInput{
				ProductID: line.ProductID,
				VariantID: line.VariantID,
				Size:      line.Size,
				Quantity:  line.Quantity,
			})
		}
	}
	if len(items) == 0 {
		return nil, ErrOrderEmpty
	}

	quoteItems, subtotal, err := s.priceItems(items)
	if err != nil {
		return nil, err
	}

	var user *models.User
	if !isGuest {
		user, err = s.userRepo.GetByID(input.UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
	}
	shippingFee, err := s.shippingFee(user, subtotal)
	if err != nil {
		return nil, err
	}

	couponDiscount := models.ZeroMoney()
	if strings.TrimSpace(input.CouponCode) != "" {
		couponQuote, err := s.couponSvc.ApplyCoupon(input.CouponCode, input.UserID, subtotal)
		if err != nil {
			return nil, err
		}
		couponDiscount = couponQuote.Discount
	}

	var creditPlan []CreditAllocation
	creditDiscount := models.ZeroMoney()
	if creditsToUse.IsPositive() {
		creditPlan, err = s.creditSvc.PlanAllocation(input.UserID, creditsToUse, subtotal, time.Now())
		if err != nil {
			return nil, err
		}
		creditDiscount = creditsToUse
	}

	discountAmount := models.NewMoneyFromDecimal(couponDiscount.Add(creditDiscount.Decimal))
	total := subtotal.Add(shippingFee.Decimal).Sub(discountAmount.Decimal)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &OrderQuote{
		Items:          quoteItems,
		Subtotal:       subtotal,
		ShippingFee:    shippingFee,
		CouponDiscount: couponDiscount,
		CreditDiscount: creditDiscount,
		DiscountAmount: discountAmount,
		TotalAmount:    models.NewMoneyFromDecimal(total),
		CreditPlan:     creditPlan,
	}, nil
}

// priceItems 只读定价：校验商品、款式、尺码并生成快照行，不扣库存
func (s *OrderService) priceItems(items []OrderItemInput) ([]models.OrderItem, models.Money, error) {
	orderItems := make([]models.OrderItem, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, models.ZeroMoney(), ErrOrderQuantityInvalid
		}
		if strings.TrimSpace(item.Size) == "" {
			return nil, models.ZeroMoney(), ErrSizeNotFound
		}
		product, err := s.productRepo.GetByID(item.ProductID)
		if err != nil {
			return nil, models.ZeroMoney(), err
		}
		if product == nil {
			return nil, models.ZeroMoney(), ErrProductNotFound
		}
		if !product.IsActive {
			return nil, models.ZeroMoney(), ErrProductInactive
		}
		if product.Stock < item.Quantity {
			return nil, models.ZeroMoney(), fmt.Errorf("%w: %s", ErrStockInsufficient, product.Name)
		}

		unitPrice := product.Price.Decimal
		variantName := ""
		if item.VariantID != nil {
			variant, err := s.productRepo.GetVariantByID(*item.VariantID)
			if err != nil {
				return nil, models.ZeroMoney(), err
			}
			if variant == nil || variant.ProductID != product.ID {
				return nil, models.ZeroMoney(), ErrVariantNotFound
			}
			if !variant.IsActive {
				return nil, models.ZeroMoney(), ErrVariantInactive
			}
			if variant.Stock < item.Quantity {
				return nil, models.ZeroMoney(), fmt.Errorf("%w: %s %s", ErrStockInsufficient, product.Name, variant.Name)
			}
			unitPrice = unitPrice.Add(variant.PriceAdjustment.Decimal)
			variantName = variant.Name
		}

		sizeRow, err := s.productRepo.GetSizeRow(product.ID, item.Size)
		if err != nil {
			return nil, models.ZeroMoney(), err
		}
		if sizeRow == nil {
			return nil, models.ZeroMoney(), ErrSizeNotFound
		}
		if sizeRow.Stock < item.Quantity {
			return nil, models.ZeroMoney(), fmt.Errorf("%w: %s %s", ErrStockInsufficient, product.Name, item.Size)
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			VariantID:   item.VariantID,
			ProductName: product.Name,
			VariantName: variantName,
			Size:        item.Size,
			UnitPrice:   models.NewMoneyFromDecimal(unitPrice),
			Quantity:    item.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		})
	}
	return orderItems, models.NewMoneyFromDecimal(subtotal), nil
}

// reserveStockTx 逐行锁定商品、款式、尺码三级库存并扣减，返回订单项快照与小计
func (s *OrderService) reserveStockTx(tx *gorm.DB, items []OrderItemInput) ([]models.OrderItem, models.Money, error) {
	productRepo := s.productRepo.WithTx(tx)
	orderItems := make([]models.OrderItem, 0, len(items))
	subtotal := decimal.Zero

	for _, item := range items {
		product, err := productRepo.GetByIDForUpdate(item.ProductID)
		if err != nil {
			return nil, models.ZeroMoney(), err
		}
		if product == nil {
			return nil, models.ZeroMoney(), ErrProductNotFound
		}
		if !product.IsActive {
			return nil, models.ZeroMoney(), ErrProductInactive
		}
		if product.Stock < item.Quantity {
			return nil, models.ZeroMoney(), fmt.Errorf("%w: %s", ErrStockInsufficient, product.Name)
		}

		unitPrice := product.Price.Decimal
		variantName := ""
		var variant *models.ProductVariant
		if item.VariantID != nil {
			variant, err = productRepo.GetVariantByIDForUpdate(*item.VariantID)
			if err != nil {
				return nil, models.ZeroMoney(), err
			}
			if variant == nil || variant.ProductID != product.ID {
				return nil, models.ZeroMoney(), ErrVariantNotFound
			}
			if !variant.IsActive {
				return nil, models.ZeroMoney(), ErrVariantInactive
			}
			if variant.Stock < item.Quantity {
				return nil, models.ZeroMoney(), fmt.Errorf("%w: %s %s", ErrStockInsufficient, product.Name, variant.Name)
			}
			unitPrice = unitPrice.Add(variant.PriceAdjustment.Decimal)
			variantName = variant.Name
		}

		sizeRow, err := productRepo.GetSizeRowForUpdate(product.ID, item.Size)
		if err != nil {
			return nil, models.ZeroMoney(), err
		}
		if sizeRow == nil {
			return nil, models.ZeroMoney(), ErrSizeNotFound
		}
		if sizeRow.Stock < item.Quantity {
			return nil, models.ZeroMoney(), fmt.Errorf("%w: %s %s", ErrStockInsufficient, product.Name, item.Size)
		}

		product.Stock -= item.Quantity
		if err := productRepo.Update(product); err != nil {
			return nil, models.ZeroMoney(), err
		}
		if variant != nil {
			variant.Stock -= item.Quantity
			if err := productRepo.UpdateVariant(variant); err != nil {
				return nil, models.ZeroMoney(), err
			}
		}
		sizeRow.Stock -= item.Quantity
		if err := productRepo.UpdateSizeRow(sizeRow); err != nil {
			return nil, models.ZeroMoney(), err
		}

		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			VariantID:   item.VariantID,
			ProductName: product.Name,
			VariantName: variantName,
			Size:        item.Size,
			UnitPrice:   models.NewMoneyFromDecimal(unitPrice),
			Quantity:    item.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
		})
	}
	return orderItems, models.NewMoneyFromDecimal(subtotal), nil
}

// shippingFee 计算运费，会员等级满足免运门槛时免运
func (s *OrderService) shippingFee(user *models.User, subtotal models.Money) (models.Money, error) {
	fee := models.ZeroMoney()
	if s.cfg != nil && strings.TrimSpace(s.cfg.ShippingFee) != "" {
		parsed, err := models.NewMoneyFromString(strings.TrimSpace(s.cfg.ShippingFee))
		if err != nil {
			return models.ZeroMoney(), err
		}
		fee = parsed
	}
	if user == nil || !fee.IsPositive() {
		return fee, nil
	}
	tier, err := s.membershipSvc.ResolveTier(user.TotalSpent)
	if err != nil {
		return models.ZeroMoney(), err
	}
	if tier.FreeShippingThreshold != nil && !subtotal.LessThan(tier.FreeShippingThreshold.Decimal) {
		return models.ZeroMoney(), nil
	}
	return fee, nil
}

// restoreStockTx 回补三级库存（取消、退货共用）
func (s *OrderService) restoreStockTx(tx *gorm.DB, items []models.OrderItem) error {
	return restoreStockForItems(tx, s.productRepo, items)
}

func restoreStockForItems(tx *gorm.DB, repo repository.ProductRepository, items []models.OrderItem) error {
	productRepo := repo.WithTx(tx)
	for _, item := range items {
		product, err := productRepo.GetByIDForUpdate(item.ProductID)
		if err != nil {
			return err
		}
		if product != nil {
			product.Stock += item.Quantity
			if err := productRepo.Update(product); err != nil {
				return err
			}
		}
		if item.VariantID != nil {
			variant, err := productRepo.GetVariantByIDForUpdate(*item.VariantID)
			if err != nil {
				return err
			}
			if variant != nil {
				variant.Stock += item.Quantity
				if err := productRepo.UpdateVariant(variant); err != nil {
					return err
				}
			}
		}
		sizeRow, err := productRepo.GetSizeRowForUpdate(item.ProductID, item.Size)
		if err != nil {
			return err
		}
		if sizeRow != nil {
			sizeRow.Stock += item.Quantity
			if err := productRepo.UpdateSizeRow(sizeRow); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateOrderStatus 管理端推进订单状态
func (s *OrderService) UpdateOrderStatus(orderID uint, newStatus string) (*models.Order, error) {
	newStatus = normalizeStatus(newStatus)
	var updated *models.Order

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if !canTransitionOrder(order.Status, newStatus) {
			return ErrOrderStatusInvalid
		}
		if err := s.applyStatusTx(tx, orderRepo, order, newStatus); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterStatusChange(updated, newStatus)
	return updated, nil
}

// applyStatusTx 在事务内落库状态变更及其附带动作
func (s *OrderService) applyStatusTx(tx *gorm.DB, orderRepo *repository.GormOrderRepository, order *models.Order, newStatus string) error {
	now := time.Now()
	switch newStatus {
	case constants.OrderStatusCancelled:
		items, err := orderRepo.ListItemsByOrder(order.ID)
		if err != nil {
			return err
		}
		if err := s.restoreStockTx(tx, items); err != nil {
			return err
		}
		if err := s.creditSvc.ReleaseForOrderTx(tx, order.ID, now); err != nil {
			return err
		}
		order.CancelledAt = &now
	case constants.OrderStatusDelivered:
		order.DeliveredAt = &now
	case constants.OrderStatusCompleted:
		order.CompletedAt = &now
	case constants.OrderStatusRefunded:
		order.RefundedAt = &now
	}
	prev := order.Status
	order.Status = newStatus
	if err := orderRepo.Update(order); err != nil {
		return err
	}
	logger.Infow("order_status_changed",
		"order_id", order.ID,
		"order_no", order.OrderNo,
		"from", prev,
		"to", newStatus,
	)
	return nil
}

// afterStatusChange 提交后的尽力而为动作：入队自动收货、完成结算
func (s *OrderService) afterStatusChange(order *models.Order, newStatus string) {
	switch newStatus {
	case constants.OrderStatusDelivered:
		days := 7
		if s.cfg != nil && s.cfg.AutoCompleteDays > 0 {
			days = s.cfg.AutoCompleteDays
		}
		delay := time.Duration(days) * 24 * time.Hour
		if err := s.queueClient.EnqueueOrderAutoComplete(queue.OrderAutoCompletePayload{OrderID: order.ID}, delay); err != nil {
			logger.Warnw("order_auto_complete_enqueue_failed", "order_id", order.ID, "error", err)
		}
	case constants.OrderStatusCompleted:
		s.handleOrderCompleted(order)
	}
}

// handleOrderCompleted 订单完成后的会员结算与推荐通知，失败只记日志
func (s *OrderService) handleOrderCompleted(order *models.Order) {
	if order.IsGuest() {
		return
	}

	result, err := s.membershipSvc.SettleOrderCompletion(order)
	if err != nil {
		logger.Warnw("order_completion_settlement_failed",
			"order_id", order.ID,
			"user_id", order.UserID,
			"error", err,
		)
		return
	}
	if result.AlreadyDone {
		return
	}

	if s.referral != nil {
		if err := s.referral.NotifyOrderCompleted(order.UserID, order.ID, order.TotalAmount); err != nil {
			logger.Warnw("referral_notify_failed", "order_id", order.ID, "error", err)
		}
	}
}

// CancelOrder 用户取消自己的订单（发货前）
func (s *OrderService) CancelOrder(userID, orderID uint) (*models.Order, error) {
	var updated *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.UserID != userID {
			return ErrOrderAccessDenied
		}
		if order.Status != constants.OrderStatusPending && order.Status != constants.OrderStatusConfirmed {
			return ErrOrderStatusInvalid
		}
		if err := s.applyStatusTx(tx, orderRepo, order, constants.OrderStatusCancelled); err != nil {
			return err
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// MarkPaid 标记订单已支付（收单结果由外部系统回传）
func (s *OrderService) MarkPaid(orderID uint, paymentMethod string) (*models.Order, error) {
	var updated *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		if order.PaymentStatus == constants.PaymentStatusPaid {
			updated = order
			return nil
		}
		if order.PaymentStatus != constants.PaymentStatusPending {
			return ErrOrderStatusInvalid
		}
		now := time.Now()
		order.PaymentStatus = constants.PaymentStatusPaid
		order.PaidAt = &now
		if strings.TrimSpace(paymentMethod) != "" {
			order.PaymentMethod = strings.TrimSpace(paymentMethod)
		}
		if order.Status == constants.OrderStatusPending {
			order.Status = constants.OrderStatusConfirmed
		}
		if err := orderRepo.Update(order); err != nil {
			return err
		}
		logger.Infow("order_marked_paid", "order_id", order.ID, "order_no", order.OrderNo)
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// CompleteOrder 确认收货（用户或自动任务触发），非送达状态时静默跳过
func (s *OrderService) CompleteOrder(orderID uint) error {
	var completed *models.Order
	err := models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		order, err := orderRepo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if order == nil {
			return nil
		}
		if order.Status != constants.OrderStatusDelivered {
			return nil
		}
		if err := s.applyStatusTx(tx, orderRepo, order, constants.OrderStatusCompleted); err != nil {
			return err
		}
		completed = order
		return nil
	})
	if err != nil {
		return err
	}
	if completed != nil {
		s.handleOrderCompleted(completed)
	}
	return nil
}

// GetOrder 获取用户自己的订单
func (s *OrderService) GetOrder(userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != userID {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

// GetOrderAdmin 管理端获取订单
func (s *OrderService) GetOrderAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetMyOrders 用户订单列表
func (s *OrderService) GetMyOrders(userID uint, filter repository.OrderListFilter) ([]models.Order, int64, error) {
	filter.UserID = userID
	return s.orderRepo.List(filter)
}

// ListOrders 管理端订单列表
func (s *OrderService) ListOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// GetGuestOrder 游客按订单号+邮箱（+查询密码）查询订单
func (s *OrderService) GetGuestOrder(orderNo, guestEmail, password string) (*models.Order, error) {
	order, err := s.orderRepo.GetGuestOrder(strings.TrimSpace(orderNo), strings.TrimSpace(strings.ToLower(guestEmail)))
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.GuestPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(order.GuestPassword), []byte(password)) != nil {
			return nil, ErrOrderAccessDenied
		}
	}
	return order, nil
}

// generateOrderNo 生成订单编号：SS + 时间戳 + 6 位随机数字
func generateOrderNo() string {
	return "SS" + time.Now().Format("20060102150405") + randNumeric(6)
}

// randNumeric 生成 n 位随机数字字符串
func randNumeric(n int) string {
	const digits = "0123456789"
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			b[i] = digits[time.Now().Nanosecond()%len(digits)]
			continue
		}
		b[i] = digits[idx.Int64()]
	}
	return string(b)
}
