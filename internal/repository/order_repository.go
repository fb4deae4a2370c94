package repository

import (
	"errors"
	"time"

	"github.com/storelane/storelane/internal/constants"
	"github.com/storelane/storelane/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	StatsAdmin(filter OrderListFilter) (*AdminOrderStats, error)
	UpdateStatus(id uint, fromStatus, status string, updates map[string]interface{}) (int64, error)
	NextDailySequence(day string) (uint64, error)
	HasDeliveredItem(userID, productID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	if len(items) > 0 {
		if err := r.db.Create(&items).Error; err != nil {
			return err
		}
	}
	return nil
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByIDAndUser 获取用户订单详情
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("id = ? AND user_id = ?", id, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// GetByOrderNoAndUser 获取用户订单详情（按订单号）
func (r *GormOrderRepository) GetByOrderNoAndUser(orderNo string, userID uint) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").Where("order_no = ? AND user_id = ?", orderNo, userID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListByUser 获取用户订单列表
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListAdmin 管理端订单列表
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	query := r.db.Model(&models.Order{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	if err := query.Preload("Items").Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// AdminOrderStats 管理端订单统计结果
type AdminOrderStats struct {
	TotalOrders int64        `json:"total_orders"`
	Revenue     models.Money `json:"revenue"`
}

// StatsAdmin 按列表筛选条件统计订单数与营收。
// 未指定状态时已取消订单不计入。
func (r *GormOrderRepository) StatsAdmin(filter OrderListFilter) (*AdminOrderStats, error) {
	query := r.db.Model(&models.Order{})

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	} else {
		query = query.Where("status <> ?", constants.OrderStatusCancelled)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var stats AdminOrderStats
	err := query.
		Select("COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS revenue").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// UpdateStatus 条件更新订单状态，仅当前状态仍为 fromStatus 时生效，
// 返回受影响行数。并发流转由这条单语句裁决。
func (r *GormOrderRepository) UpdateStatus(id uint, fromStatus, status string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// NextDailySequence 分配当日订单号序列
// 先对当日计数行原子自增；无行时插入初始行，与并发插入冲突则重试自增。
// 调用方需在事务内使用，保证分配的序列号与订单落库一致。
func (r *GormOrderRepository) NextDailySequence(day string) (uint64, error) {
	if day == "" {
		return 0, errors.New("invalid counter day")
	}
	result := r.db.Model(&models.OrderCounter{}).
		Where("day = ?", day).
		Updates(map[string]interface{}{
			"sequence":   gorm.Expr("sequence + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		counter := models.OrderCounter{Day: day, Sequence: 1}
		if err := r.db.Create(&counter).Error; err != nil {
			// 并发插入唯一键冲突，回退到自增路径
			retry := r.db.Model(&models.OrderCounter{}).
				Where("day = ?", day).
				Updates(map[string]interface{}{
					"sequence":   gorm.Expr("sequence + 1"),
					"updated_at": time.Now(),
				})
			if retry.Error != nil {
				return 0, retry.Error
			}
			if retry.RowsAffected == 0 {
				return 0, err
			}
		} else {
			return counter.Sequence, nil
		}
	}

	var row models.OrderCounter
	if err := r.db.Where("day = ?", day).Take(&row).Error; err != nil {
		return 0, err
	}
	return row.Sequence, nil
}

// HasDeliveredItem 用户是否存在包含该商品的已送达订单
func (r *GormOrderRepository) HasDeliveredItem(userID, productID uint) (bool, error) {
	if userID == 0 || productID == 0 {
		return false, nil
	}
	var count int64
	err := r.db.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.status = ? AND orders.deleted_at IS NULL", userID, constants.OrderStatusDelivered).
		Where("order_items.product_id = ?", productID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
