package constants

import "time"

const (
	// ExtractorVersion 写入存储记录，规则变化时递增
	ExtractorVersion = "1.0"

	// DefaultResultCacheDuration Redis 结果缓存的默认过期时间
	DefaultResultCacheDuration = 7 * 24 * time.Hour

	// ExtractLockDuration 提取锁的过期时间
	ExtractLockDuration = 2 * time.Minute

	// DefaultListLimit / MaxListLimit 结果列表的默认和最大条数
	DefaultListLimit = 50
	MaxListLimit     = 1000

	// ContentTypePDF 上传原件的 Content-Type
	ContentTypePDF = "application/pdf"

	// ConsumerStartAttempts 启动队列消费者的最大尝试次数
	ConsumerStartAttempts = 3
	// DefaultConsumerRetryInterval rabbitmq.retry_interval 缺失或非法时的重试间隔
	DefaultConsumerRetryInterval = 5 * time.Second
)
