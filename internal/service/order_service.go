package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/logger"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/queue"
	"github.com/storelane/storelane/internal/repository"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, productRepo repository.ProductRepository, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		queueClient: queueClient,
	}
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	UserID          uint
	PaymentMethod   string
	ShippingAddress models.JSON
	ClientIP        string
}

type checkoutLine struct {
	product  *models.Product
	quantity int
}

func validPaymentMethod(method string) bool {
	switch method {
	case constants.PaymentMethodCard, constants.PaymentMethodPaypal, constants.PaymentMethodCOD:
		return true
	}
	return false
}

// CreateOrder 将当前购物车整体结算为订单。
// 扣减库存、分配订单号、写入订单与快照在同一事务内完成，任一行库存不足则整体回滚。
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrCartNotFound
	}
	if !validPaymentMethod(input.PaymentMethod) {
		return nil, ErrPaymentMethodInvalid
	}
	if len(input.ShippingAddress) == 0 {
		return nil, ErrShippingAddressRequired
	}

	cart, err := s.cartRepo.GetByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if cart == nil {
		return nil, ErrCartNotFound
	}
	cartItems, err := s.cartRepo.ListItems(cart.ID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	// 下单前重新校验商品与库存，事务内的条件扣减仍是最终裁决
	lines := make([]checkoutLine, 0, len(cartItems))
	for _, item := range cartItems {
		product, err := s.productRepo.GetByID(strconv.FormatUint(uint64(item.ProductID), 10))
		if err != nil {
			return nil, err
		}
		if product == nil || !product.IsActive {
			return nil, ErrProductNotFound
		}
		if item.Quantity > product.Stock {
			return nil, &StockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Available:   product.Stock,
				Requested:   item.Quantity,
			}
		}
		lines = append(lines, checkoutLine{product: product, quantity: item.Quantity})
	}

	pricingLines := make([]PricingLine, 0, len(lines))
	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		unitPrice := line.product.EffectivePrice()
		pricingLines = append(pricingLines, PricingLine{UnitPrice: unitPrice, Quantity: line.quantity})
		productID := line.product.ID
		orderItems = append(orderItems, models.OrderItem{
			ProductID:    &productID,
			ProductName:  line.product.Name,
			ProductImage: line.product.MainImage(),
			UnitPrice:    unitPrice,
			Quantity:     line.quantity,
			TotalPrice:   models.NewMoneyFromDecimal(unitPrice.Decimal.Mul(decimal.NewFromInt(int64(line.quantity)))),
		})
	}
	pricing := ComputePricing(pricingLines)

	now := time.Now()
	order := &models.Order{
		UserID:          input.UserID,
		Status:          constants.OrderStatusPending,
		Currency:        constants.SiteCurrencyDefault,
		PaymentMethod:   input.PaymentMethod,
		SubtotalAmount:  pricing.Subtotal,
		TaxAmount:       pricing.Tax,
		ShippingAmount:  pricing.Shipping,
		TotalAmount:     pricing.Total,
		ShippingAddress: input.ShippingAddress,
		ClientIP:        strings.TrimSpace(input.ClientIP),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)

		day := now.Format("20060102")
		seq, err := orderRepo.NextDailySequence(day)
		if err != nil {
			return err
		}
		order.OrderNo = fmt.Sprintf("%s-%s-%06d", constants.OrderNumberPrefix, day, seq)

		for _, line := range lines {
			affected, err := productRepo.TryDecrementStock(line.product.ID, line.quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				fresh, err := productRepo.GetByID(strconv.FormatUint(uint64(line.product.ID), 10))
				if err != nil {
					return err
				}
				available := 0
				if fresh != nil {
					available = fresh.Stock
				}
				return &StockError{
					ProductID:   line.product.ID,
					ProductName: line.product.Name,
					Available:   available,
					Requested:   line.quantity,
				}
			}
		}

		if err := orderRepo.Create(order, orderItems); err != nil {
			return err
		}
		return cartRepo.ClearItems(cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.enqueueStatusEmail(order.ID, order.Status)
	s.alertLowStock(lines)

	created, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrOrderFetchFailed
	}
	return created, nil
}

// GetUserOrder 获取用户订单详情
func (s *OrderService) GetUserOrder(userID, orderID uint) (*models.Order, error) {
	if userID == 0 || orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// GetUserOrderByNo 按订单号获取用户订单详情
func (s *OrderService) GetUserOrderByNo(userID uint, orderNo string) (*models.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	if userID == 0 || orderNo == "" {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByOrderNoAndUser(orderNo, userID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListUserOrders 分页查询用户订单
func (s *OrderService) ListUserOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrOrderNotFound
	}
	return s.orderRepo.ListByUser(filter)
}

// ListAdminOrders 后台分页查询订单
func (s *OrderService) ListAdminOrders(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// AdminOrderStats 后台订单统计，筛选条件与列表一致
func (s *OrderService) AdminOrderStats(filter repository.OrderListFilter) (*repository.AdminOrderStats, error) {
	return s.orderRepo.StatsAdmin(filter)
}

// GetOrder 后台获取订单详情
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	if orderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func (s *OrderService) enqueueStatusEmail(orderID uint, status string) {
	if s.queueClient == nil {
		return
	}
	if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{OrderID: orderID, Status: status}); err != nil {
		logger.Warnw("order_enqueue_status_email_failed",
			"order_id", orderID,
			"status", status,
			"error", err,
		)
	}
}

// alertLowStock 下单成功后检查剩余库存并推送预警
func (s *OrderService) alertLowStock(lines []checkoutLine) {
	if s.queueClient == nil {
		return
	}
	for _, line := range lines {
		fresh, err := s.productRepo.GetByID(strconv.FormatUint(uint64(line.product.ID), 10))
		if err != nil || fresh == nil {
			continue
		}
		if fresh.Stock > constants.LowStockThreshold {
			continue
		}
		if err := s.queueClient.EnqueueLowStockAlert(queue.LowStockAlertPayload{
			ProductID:   fresh.ID,
			ProductName: fresh.Name,
			Stock:       fresh.Stock,
		}); err != nil {
			logger.Warnw("order_enqueue_low_stock_alert_failed",
				"product_id", fresh.ID,
				"error", err,
			)
		}
	}
}
