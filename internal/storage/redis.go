package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/constants"
	"resume-extractor/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired 锁已被其他请求持有
var ErrLockNotAcquired = errors.New("未能获取锁")

// Redis 提取结果缓存，键为原始文件的MD5
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并挂上OpenTelemetry钩子
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
		MaxRetries:   cfg.MaxRetries,
	})

	// 所有命令都会生成 span
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("failed to instrument Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close closes the Redis client connection
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// ResultCacheTTL 结果缓存的过期时间
func (r *Redis) ResultCacheTTL() time.Duration {
	if r.config == nil || r.config.ResultCacheTTLHours <= 0 {
		return constants.DefaultResultCacheDuration
	}
	return time.Duration(r.config.ResultCacheTTLHours) * time.Hour
}

// GetCachedResult 未命中时返回 (nil, nil)
func (r *Redis) GetCachedResult(ctx context.Context, fileMD5 string) (*types.StoredResult, error) {
	val, err := r.Client.Get(ctx, fmt.Sprintf(constants.KeyResultByMD5, fileMD5)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("读取结果缓存失败: %w", err)
	}

	var stored types.StoredResult
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		// 缓存内容损坏时当作未命中，交给调用方重新提取
		r.Client.Del(ctx, fmt.Sprintf(constants.KeyResultByMD5, fileMD5))
		return nil, nil
	}
	return &stored, nil
}

// CacheResult 只缓存提取成功的结果
func (r *Redis) CacheResult(ctx context.Context, fileMD5 string, stored *types.StoredResult) error {
	if stored == nil || stored.Status != types.StatusExtracted {
		return nil
	}
	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("序列化结果缓存失败: %w", err)
	}
	return r.Client.Set(ctx, fmt.Sprintf(constants.KeyResultByMD5, fileMD5), data, r.ResultCacheTTL()).Err()
}

// AcquireLock 尝试获取一个分布式锁，成功时返回锁的值，用于释放
func (r *Redis) AcquireLock(ctx context.Context, fileMD5 string, expiration time.Duration) (string, error) {
	lockValue, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("生成锁值失败: %w", err)
	}
	ok, err := r.Client.SetNX(ctx, fmt.Sprintf(constants.KeyExtractLock, fileMD5), lockValue.String(), expiration).Result()
	if err != nil {
		return "", fmt.Errorf("获取锁失败: %w", err)
	}
	if !ok {
		return "", ErrLockNotAcquired
	}
	return lockValue.String(), nil
}

// 只删除自己持有的锁
var releaseLockScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`)

// ReleaseLock 释放锁，锁已过期或被他人持有时返回 false
func (r *Redis) ReleaseLock(ctx context.Context, fileMD5, lockValue string) (bool, error) {
	res, err := releaseLockScript.Run(ctx, r.Client, []string{fmt.Sprintf(constants.KeyExtractLock, fileMD5)}, lockValue).Int()
	if err != nil {
		return false, fmt.Errorf("释放锁失败: %w", err)
	}
	return res == 1, nil
}
