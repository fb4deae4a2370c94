package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storelane/storelane/internal/constants"
)

const idempotencyPending = "pending"

func idempotencyKey(userID uint, key string) string {
	return fmt.Sprintf("idem:order:%d:%s", userID, key)
}

func idempotencyTTL() time.Duration {
	return time.Duration(constants.IdempotencyKeyTTLHours) * time.Hour
}

// ReserveIdempotencyKey 以 SETNX 抢占幂等键。
// 返回 true 表示首次请求，可以执行创建；false 表示键已存在。
// Redis 未启用时直接放行，幂等保护降级为无操作。
func ReserveIdempotencyKey(ctx context.Context, userID uint, key string) (bool, error) {
	if !Enabled() || userID == 0 || key == "" {
		return true, nil
	}
	return redisClient.SetNX(ctx, buildKey(idempotencyKey(userID, key)), idempotencyPending, idempotencyTTL()).Result()
}

// StoreIdempotentOrder 记录幂等键对应的订单ID
func StoreIdempotentOrder(ctx context.Context, userID uint, key string, orderID uint) error {
	if !Enabled() || userID == 0 || key == "" {
		return nil
	}
	return redisClient.Set(ctx, buildKey(idempotencyKey(userID, key)), strconv.FormatUint(uint64(orderID), 10), idempotencyTTL()).Err()
}

// ReleaseIdempotencyKey 创建失败时释放幂等键，允许重试
func ReleaseIdempotencyKey(ctx context.Context, userID uint, key string) error {
	if !Enabled() || userID == 0 || key == "" {
		return nil
	}
	return Del(ctx, idempotencyKey(userID, key))
}

// GetIdempotentOrder 查询幂等键对应的订单ID。
// 第二个返回值表示键是否存在；键存在但创建尚未完成时订单ID为 0。
func GetIdempotentOrder(ctx context.Context, userID uint, key string) (uint, bool, error) {
	if !Enabled() || userID == 0 || key == "" {
		return 0, false, nil
	}
	val, err := redisClient.Get(ctx, buildKey(idempotencyKey(userID, key))).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if val == idempotencyPending {
		return 0, true, nil
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, true, nil
	}
	return uint(id), true, nil
}
