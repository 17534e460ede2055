package storage

import (
	"context"
	"fmt"
	"strings"

	"resume-extractor/internal/config"
	"resume-extractor/internal/logger"
)

// Storage 存储管理器，聚合所有存储相关依赖
// 每个组件都是可选的，未配置或初始化失败时为 nil
type Storage struct {
	// 对象存储，保存上传的原件
	MinIO *MinIO

	// 消息队列，异步提取
	RabbitMQ *RabbitMQ

	// 关系型数据库
	MySQL *MySQL

	// 键值存储，按MD5缓存结果
	Redis *Redis

	// 本地结果日志
	Bolt *BoltResultLog
}

// NewStorage 按配置初始化各存储组件
// 外部组件初始化失败只记录警告；结果存储 (MySQL 或 Bolt) 至少要有一个
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	s := &Storage{}
	var err error
	var initErrors []string

	if cfg.MinIO.Endpoint != "" {
		s.MinIO, err = NewMinIO(ctx, &cfg.MinIO)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
		}
	}

	if cfg.RabbitMQ.URL != "" {
		s.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err == nil {
			err = s.RabbitMQ.SetupExtractionTopology()
		}
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		}
	}

	if cfg.MySQL.Host != "" {
		s.MySQL, err = NewMySQL(&cfg.MySQL)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		}
	}

	if cfg.Redis.Address != "" {
		s.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	}

	// 没有可用的 MySQL 时退回本地结果日志
	if s.MySQL == nil && cfg.Results.BoltPath != "" {
		s.Bolt, err = OpenBoltResultLog(cfg.Results.BoltPath)
		if err != nil {
			initErrors = append(initErrors, fmt.Sprintf("Bolt: %v", err))
		}
	}

	if len(initErrors) > 0 {
		logger.Warn().Str("errors", strings.Join(initErrors, "; ")).Msg("部分存储组件初始化失败")
	}

	if s.ResultStore() == nil {
		s.Close()
		return nil, fmt.Errorf("没有可用的结果存储 (mysql 或 results.bolt_path): %s", strings.Join(initErrors, "; "))
	}
	return s, nil
}

// ResultStore 优先 MySQL，其次本地日志
func (s *Storage) ResultStore() ResultStore {
	if s.MySQL != nil {
		return s.MySQL
	}
	if s.Bolt != nil {
		return s.Bolt
	}
	return nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭MySQL连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭Redis连接失败")
		}
	}
	if s.Bolt != nil {
		if err := s.Bolt.Close(); err != nil {
			logger.Error().Err(err).Msg("关闭结果日志失败")
		}
	}
}
