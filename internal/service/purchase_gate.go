package service

import (
	"github.com/storelane/storelane/internal/repository"
)

// PurchaseGateService 评价资格校验
type PurchaseGateService struct {
	orderRepo repository.OrderRepository
}

// NewPurchaseGateService 创建评价资格校验服务
func NewPurchaseGateService(orderRepo repository.OrderRepository) *PurchaseGateService {
	return &PurchaseGateService{orderRepo: orderRepo}
}

// CanReview 判断用户是否可评价商品：仅当其名下存在已送达订单包含该商品
func (s *PurchaseGateService) CanReview(userID, productID uint) (bool, error) {
	if userID == 0 || productID == 0 {
		return false, nil
	}
	return s.orderRepo.HasDeliveredItem(userID, productID)
}
