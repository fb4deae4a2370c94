package models

import "time"

// OrderCounter 订单号日序列表
// 说明：每个自然日一行，订单号在事务内通过原子自增分配，保证同日不重号。
type OrderCounter struct {
	ID        uint      `gorm:"primarykey" json:"id"`            // 主键
	Day       string    `gorm:"uniqueIndex;not null" json:"day"` // 日期（YYYYMMDD）
	Sequence  uint64    `gorm:"not null;default:0" json:"sequence"`
	UpdatedAt time.Time `json:"updated_at"` // 更新时间
}

// TableName 指定表名
func (OrderCounter) TableName() string {
	return "order_counters"
}
