package service

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/logger"
	"github.com/storelane/storelane/internal/models"
	"github.com/storelane/storelane/internal/queue"
	"github.com/storelane/storelane/internal/repository"
)

// allowedTransitions 订单状态机。delivered 与 cancelled 为终态，不接受任何流转。
var allowedTransitions = map[string]map[string]bool{
	constants.OrderStatusPending: {
		constants.OrderStatusProcessing: true,
		constants.OrderStatusCancelled:  true,
	},
	constants.OrderStatusProcessing: {
		constants.OrderStatusShipped:   true,
		constants.OrderStatusCancelled: true,
	},
	constants.OrderStatusShipped: {
		constants.OrderStatusDelivered: true,
	},
	constants.OrderStatusDelivered: {},
	constants.OrderStatusCancelled: {},
}

func isTransitionAllowed(current, target string) bool {
	targets, ok := allowedTransitions[current]
	if !ok {
		return false
	}
	return targets[target]
}

// TransitionOrderInput 订单状态流转输入
type TransitionOrderInput struct {
	OrderID        uint
	TargetStatus   string
	TrackingNumber string
}

// OrderStatusService 订单状态流转服务
type OrderStatusService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
}

// NewOrderStatusService 创建订单状态流转服务
func NewOrderStatusService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, queueClient *queue.Client) *OrderStatusService {
	return &OrderStatusService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		queueClient: queueClient,
	}
}

// Transition 将订单推进到目标状态。
// delivered_at 仅在首次送达时写入；tracking_number 与目标状态无关，有值即存；
// 从 pending/processing 取消时回补各行库存，与状态写入同事务；
// 状态写入以读取到的当前状态为条件，未命中按非法流转处理。
func (s *OrderStatusService) Transition(input TransitionOrderInput) (*models.Order, error) {
	target := strings.ToLower(strings.TrimSpace(input.TargetStatus))
	if input.OrderID == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orderRepo.GetByID(input.OrderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if _, known := allowedTransitions[target]; !known {
		return nil, &TransitionError{From: order.Status, To: input.TargetStatus}
	}
	if !isTransitionAllowed(order.Status, target) {
		return nil, &TransitionError{From: order.Status, To: target}
	}

	now := time.Now()
	updates := map[string]interface{}{
		"updated_at": now,
	}
	if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
		updates["tracking_number"] = tracking
	}
	if target == constants.OrderStatusDelivered && order.DeliveredAt == nil {
		updates["delivered_at"] = now
	}
	if target == constants.OrderStatusCancelled {
		updates["cancelled_at"] = now
	}

	restock := target == constants.OrderStatusCancelled &&
		(order.Status == constants.OrderStatusPending || order.Status == constants.OrderStatusProcessing)

	err = s.productRepo.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		affected, err := orderRepo.UpdateStatus(order.ID, order.Status, target, updates)
		if err != nil {
			return err
		}
		// 状态在读取后被并发修改，条件写未命中
		if affected == 0 {
			return &TransitionError{From: order.Status, To: target}
		}
		if restock {
			for _, item := range order.Items {
				if item.ProductID == nil || item.Quantity <= 0 {
					continue
				}
				if _, err := productRepo.IncreaseStock(*item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrOrderFetchFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{OrderID: updated.ID, Status: updated.Status}); err != nil {
			logger.Warnw("order_enqueue_status_email_failed",
				"order_id", updated.ID,
				"status", updated.Status,
				"error", err,
			)
		}
	}
	return updated, nil
}
