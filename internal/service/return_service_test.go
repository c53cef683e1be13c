package service

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Eric920418/shoe-sub000/internal/constants"
	"github.com/Eric920418/shoe-sub000/internal/models"
	"github.com/Eric920418/shoe-sub000/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupReturnServiceTest(t *testing.T) (*ReturnService, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:return_service_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.ProductVariant{},
		&models.SizeChartRow{},
		&models.Order{},
		&models.OrderItem{},
		&models.Return{},
		&models.ReturnItem{},
		&models.CreditGrant{},
		&models.CreditUsage{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	userRepo := repository.NewUserRepository(db)
	creditSvc := NewCreditService(repository.NewCreditRepository(db), userRepo)
	svc := NewReturnService(
		repository.NewReturnRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		creditSvc,
	)
	return svc, db
}

// seedCompletedOrder 造一张已完成订单：两双 US9，单价 1000
func seedCompletedOrder(t *testing.T, db *gorm.DB, userID uint) (models.Order, models.OrderItem, models.Product) {
	t.Helper()
	if userID != 0 {
		user := models.User{
			ID: userID, Email: fmt.Sprintf("return_user_%d@example.com", userID),
			PasswordHash: "hash", Status: constants.UserStatusActive,
		}
		if err := db.Create(&user).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	product := models.Product{
		Slug: fmt.Sprintf("return-shoe-%d", userID), Name: "Return Shoe",
		Price: mustMoney(t, "1000"), Stock: 98, IsActive: true,
	}
	if err := db.Create(&product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	sizeRow := models.SizeChartRow{ProductID: product.ID, Size: "US9", Stock: 28}
	if err := db.Create(&sizeRow).Error; err != nil {
		t.Fatalf("create size row failed: %v", err)
	}

	order := models.Order{
		OrderNo: fmt.Sprintf("SS2026090100000000%04d", userID), UserID: userID,
		Status: constants.OrderStatusCompleted, PaymentStatus: constants.PaymentStatusPaid,
		Subtotal: mustMoney(t, "2000"), TotalAmount: mustMoney(t, "2000"),
	}
	if userID == 0 {
		order.GuestEmail = "guest@example.com"
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := models.OrderItem{
		OrderID: order.ID, ProductID: product.ID, ProductName: product.Name,
		Size: "US9", UnitPrice: mustMoney(t, "1000"), Quantity: 2, TotalPrice: mustMoney(t, "2000"),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	return order, item, product
}

func TestCreateReturnValidation(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 1)

	if _, err := svc.CreateReturn(CreateReturnInput{UserID: 1, OrderID: order.ID}); !errors.Is(err, ErrReturnEmpty) {
		t.Fatalf("expected ErrReturnEmpty, got: %v", err)
	}
	if _, err := svc.CreateReturn(CreateReturnInput{
		UserID: 2, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	}); !errors.Is(err, ErrOrderAccessDenied) {
		t.Fatalf("expected ErrOrderAccessDenied, got: %v", err)
	}
	if _, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 3}},
	}); !errors.Is(err, ErrReturnQuantityExceeded) {
		t.Fatalf("expected ErrReturnQuantityExceeded, got: %v", err)
	}

	// 未完成订单不可退
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusShipped).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	if _, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	}); !errors.Is(err, ErrReturnOrderState) {
		t.Fatalf("expected ErrReturnOrderState, got: %v", err)
	}
}

func TestCreateReturnRejectsSecondOpenReturn(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 1)

	first, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID, Reason: "尺码不合",
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateReturn error: %v", err)
	}
	if first.Status != constants.ReturnStatusRequested {
		t.Fatalf("expected requested status, got %s", first.Status)
	}
	if !first.RefundAmount.Equal(decimal.NewFromInt(1000)) {
		t.Fatalf("expected refund amount 1000, got %s", first.RefundAmount.String())
	}
	if len(first.ReturnNo) != 22 || first.ReturnNo[:2] != "SR" {
		t.Fatalf("unexpected return no format: %s", first.ReturnNo)
	}

	if _, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	}); !errors.Is(err, ErrReturnOpenExists) {
		t.Fatalf("expected ErrReturnOpenExists, got: %v", err)
	}

	// 撤销后可以重新申请
	if _, err := svc.CancelReturn(1, first.ID); err != nil {
		t.Fatalf("CancelReturn error: %v", err)
	}
	if _, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 2}},
	}); err != nil {
		t.Fatalf("expected new return allowed after cancel, got: %v", err)
	}
}

func TestReturnStatusTransitions(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 1)

	ret, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateReturn error: %v", err)
	}

	// requested 不能直接 completed，报错指明流转方向
	_, err = svc.UpdateStatus(UpdateStatusInput{ReturnID: ret.ID, Status: constants.ReturnStatusCompleted})
	if !errors.Is(err, ErrReturnTransitionInvalid) {
		t.Fatalf("expected ErrReturnTransitionInvalid, got: %v", err)
	}
	if !strings.Contains(err.Error(), "requested -> completed") {
		t.Fatalf("expected transition pair in error, got: %v", err)
	}

	for _, status := range []string{
		constants.ReturnStatusApproved,
		constants.ReturnStatusReceived,
		constants.ReturnStatusProcessing,
	} {
		if _, err := svc.UpdateStatus(UpdateStatusInput{ReturnID: ret.ID, Status: status}); err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", status, err)
		}
	}

	// rejected 是终态
	other, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrReturnOpenExists) {
		// processing 中的退货单仍算进行中
		t.Fatalf("expected ErrReturnOpenExists while processing, got: %v (ret=%+v)", err, other)
	}
}

func TestCompleteReturnRestocksAndRefunds(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, product := seedCompletedOrder(t, db, 1)

	ret, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID, Reason: "瑕疵",
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateReturn error: %v", err)
	}
	for _, status := range []string{
		constants.ReturnStatusApproved,
		constants.ReturnStatusReceived,
		constants.ReturnStatusProcessing,
	} {
		if _, err := svc.UpdateStatus(UpdateStatusInput{ReturnID: ret.ID, Status: status}); err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", status, err)
		}
	}

	completed, err := svc.UpdateStatus(UpdateStatusInput{ReturnID: ret.ID, Status: constants.ReturnStatusCompleted, AdminRemark: "验货通过"})
	if err != nil {
		t.Fatalf("complete return error: %v", err)
	}
	if completed.Status != constants.ReturnStatusCompleted || completed.RefundedAt == nil {
		t.Fatalf("expected completed return, got %+v", completed)
	}
	if completed.AdminRemark != "验货通过" {
		t.Fatalf("expected admin remark recorded, got %q", completed.AdminRemark)
	}

	// 库存回补
	var reloadedProduct models.Product
	if err := db.First(&reloadedProduct, product.ID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	if reloadedProduct.Stock != 100 {
		t.Fatalf("expected product stock 100, got %d", reloadedProduct.Stock)
	}
	var sizeRow models.SizeChartRow
	if err := db.Where("product_id = ? AND size = ?", product.ID, "US9").First(&sizeRow).Error; err != nil {
		t.Fatalf("reload size row failed: %v", err)
	}
	if sizeRow.Stock != 30 {
		t.Fatalf("expected size stock 30, got %d", sizeRow.Stock)
	}

	// 退款以购物金形式发放，有效期 6 个月
	var grant models.CreditGrant
	if err := db.Where("user_id = ? AND source = ?", 1, constants.CreditSourceRefund).First(&grant).Error; err != nil {
		t.Fatalf("load refund grant failed: %v", err)
	}
	if !grant.Amount.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("expected refund grant 2000, got %s", grant.Amount.String())
	}
	if grant.SourceOrderID == nil || *grant.SourceOrderID != order.ID {
		t.Fatalf("expected source order %d, got %v", order.ID, grant.SourceOrderID)
	}

	// 订单落入退款态
	var reloadedOrder models.Order
	if err := db.First(&reloadedOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if reloadedOrder.Status != constants.OrderStatusRefunded || reloadedOrder.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("expected refunded order, got %s/%s", reloadedOrder.Status, reloadedOrder.PaymentStatus)
	}
}

func TestCreateReturnOnDeliveredOrder(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 1)

	// 已送达未完成的订单同样可以发起退货
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusDelivered).Error; err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	ret, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID, Reason: "不合脚",
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateReturn on delivered order error: %v", err)
	}
	if ret.Status != constants.ReturnStatusRequested {
		t.Fatalf("expected requested status, got %s", ret.Status)
	}
}

func TestCompleteReturnRefundOverride(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 1)

	ret, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateReturn error: %v", err)
	}
	for _, status := range []string{
		constants.ReturnStatusApproved,
		constants.ReturnStatusReceived,
		constants.ReturnStatusProcessing,
	} {
		if _, err := svc.UpdateStatus(UpdateStatusInput{ReturnID: ret.ID, Status: status}); err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", status, err)
		}
	}

	// 负数覆盖金额被拒
	if _, err := svc.UpdateStatus(UpdateStatusInput{
		ReturnID: ret.ID, Status: constants.ReturnStatusCompleted,
		RefundAmount: moneyPtrOf(t, "-1"),
	}); !errors.Is(err, ErrReturnRefundInvalid) {
		t.Fatalf("expected ErrReturnRefundInvalid, got: %v", err)
	}

	// 管理员扣除部分金额后完成，退款授予按覆盖值签发
	completed, err := svc.UpdateStatus(UpdateStatusInput{
		ReturnID: ret.ID, Status: constants.ReturnStatusCompleted,
		AdminRemark:  "鞋盒缺失，扣除 200",
		RefundAmount: moneyPtrOf(t, "1800"),
	})
	if err != nil {
		t.Fatalf("complete with override error: %v", err)
	}
	if !completed.RefundAmount.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("expected overridden refund 1800, got %s", completed.RefundAmount.String())
	}

	var grant models.CreditGrant
	if err := db.Where("user_id = ? AND source = ?", 1, constants.CreditSourceRefund).First(&grant).Error; err != nil {
		t.Fatalf("load refund grant failed: %v", err)
	}
	if !grant.Amount.Equal(decimal.NewFromInt(1800)) {
		t.Fatalf("expected refund grant 1800, got %s", grant.Amount.String())
	}
}

func TestCompleteGuestReturnSkipsRefundGrant(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 0)

	ret := models.Return{
		ReturnNo: "SR20260901000000000001", OrderID: order.ID, UserID: 0,
		Status: constants.ReturnStatusProcessing, RefundAmount: mustMoney(t, "1000"),
		Items: []models.ReturnItem{{OrderItemID: item.ID, Quantity: 1}},
	}
	if err := db.Create(&ret).Error; err != nil {
		t.Fatalf("create return failed: %v", err)
	}

	completed, err := svc.Complete(ret.ID, "", nil)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if completed.Status != constants.ReturnStatusCompleted {
		t.Fatalf("expected completed return, got %s", completed.Status)
	}

	// 游客无购物金账户，不应产生退款授予
	var grants int64
	db.Model(&models.CreditGrant{}).Count(&grants)
	if grants != 0 {
		t.Fatalf("expected no refund grant for guest order, got %d", grants)
	}
}

func TestPartialReturnQuantityAccumulates(t *testing.T) {
	svc, db := setupReturnServiceTest(t)
	order, item, _ := seedCompletedOrder(t, db, 1)

	first, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("CreateReturn error: %v", err)
	}
	for _, status := range []string{
		constants.ReturnStatusApproved,
		constants.ReturnStatusReceived,
		constants.ReturnStatusProcessing,
		constants.ReturnStatusCompleted,
	} {
		if _, err := svc.UpdateStatus(UpdateStatusInput{ReturnID: first.ID, Status: status}); err != nil {
			t.Fatalf("UpdateStatus(%s) error: %v", status, err)
		}
	}

	// 首次退货完成后订单进入 refunded，第二张退货单不可再开
	if _, err := svc.CreateReturn(CreateReturnInput{
		UserID: 1, OrderID: order.ID,
		Items: []ReturnItemInput{{OrderItemID: item.ID, Quantity: 2}},
	}); !errors.Is(err, ErrReturnOrderState) {
		t.Fatalf("expected ErrReturnOrderState after refund, got: %v", err)
	}
}
