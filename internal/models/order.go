package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                          // 主键
	OrderNo         string         `gorm:"uniqueIndex;not null" json:"order_no"`                          // 订单编号（ORD-YYYYMMDD-000001）
	UserID          uint           `gorm:"index;not null" json:"user_id"`                                 // 用户ID
	Status          string         `gorm:"index;not null" json:"status"`                                  // 订单状态
	Currency        string         `gorm:"not null" json:"currency"`                                      // 币种
	PaymentMethod   string         `gorm:"type:varchar(20);not null" json:"payment_method"`               // 支付方式（card/paypal/cod）
	SubtotalAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal_amount"`  // 商品小计
	TaxAmount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`       // 税费
	ShippingAmount  Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"`  // 运费
	TotalAmount     Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`     // 实付金额
	ShippingAddress JSON           `gorm:"type:json;not null" json:"shipping_address"`                    // 收货地址快照
	TrackingNumber  string         `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`            // 物流单号
	ClientIP        string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                   // 下单客户端IP
	DeliveredAt     *time.Time     `gorm:"index" json:"delivered_at"`                                     // 送达时间（仅首次送达写入）
	CancelledAt     *time.Time     `gorm:"index" json:"cancelled_at"`                                     // 取消时间
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                       // 创建时间
	UpdatedAt       time.Time      `gorm:"index" json:"updated_at"`                                       // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
