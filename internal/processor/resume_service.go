package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/constants"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/storage"
	"resume-extractor/internal/tracing"
	"resume-extractor/internal/types"

	"github.com/gofrs/uuid/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("processor")

// Extractor 对一份文档运行字段提取，*extractor.Orchestrator 实现了它
type Extractor interface {
	ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (*types.ExtractedResume, error)
}

// ResultCache 按原件MD5缓存提取结果
type ResultCache interface {
	// GetCachedResult 未命中时返回 (nil, nil)
	GetCachedResult(ctx context.Context, fileMD5 string) (*types.StoredResult, error)
	CacheResult(ctx context.Context, fileMD5 string, stored *types.StoredResult) error
}

// ExtractLocker 同一文件并发提取时的互斥
type ExtractLocker interface {
	AcquireLock(ctx context.Context, fileMD5 string, expiration time.Duration) (string, error)
	ReleaseLock(ctx context.Context, fileMD5, lockValue string) (bool, error)
}

// Publisher 发布上传事件
type Publisher interface {
	PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error
}

// QueueConsumer 从队列消费上传事件
type QueueConsumer interface {
	StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler func(context.Context, []byte) bool) (<-chan struct{}, error)
}

// ResumeService 简历提取服务：同步提取、异步提交、队列消费和结果查询
type ResumeService struct {
	extractor Extractor
	results   storage.ResultStore
	cache     ResultCache
	locker    ExtractLocker
	objects   storage.ObjectStorage
	publisher Publisher
	consumer  QueueConsumer

	config *config.Config
	logger zerolog.Logger

	now          func() time.Time
	newUUID      func() (string, error)
	lockWait     time.Duration
	lockPollStep time.Duration
}

// Option 服务选项
type Option func(*ResumeService)

// WithResultCache 设置结果缓存
func WithResultCache(c ResultCache) Option {
	return func(s *ResumeService) { s.cache = c }
}

// WithExtractLocker 设置提取锁
func WithExtractLocker(l ExtractLocker) Option {
	return func(s *ResumeService) { s.locker = l }
}

// WithObjectStorage 设置原件存储
func WithObjectStorage(o storage.ObjectStorage) Option {
	return func(s *ResumeService) { s.objects = o }
}

// WithPublisher 设置消息发布者
func WithPublisher(p Publisher) Option {
	return func(s *ResumeService) { s.publisher = p }
}

// WithQueueConsumer 设置队列消费者
func WithQueueConsumer(c QueueConsumer) Option {
	return func(s *ResumeService) { s.consumer = c }
}

// WithLogger 设置日志记录器
func WithLogger(l zerolog.Logger) Option {
	return func(s *ResumeService) { s.logger = l }
}

// NewResumeService 创建服务，extractor 和 results 必须提供，其余组件按需注入
func NewResumeService(cfg *config.Config, extractor Extractor, results storage.ResultStore, opts ...Option) (*ResumeService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}
	if extractor == nil {
		return nil, fmt.Errorf("提取器不能为空")
	}
	if results == nil {
		return nil, NewStorageUnavailableError("init", "result store")
	}

	s := &ResumeService{
		extractor:    extractor,
		results:      results,
		config:       cfg,
		logger:       logger.Logger.With().Str("component", "resume_service").Logger(),
		now:          time.Now,
		newUUID:      newSubmissionUUID,
		lockWait:     constants.ExtractLockDuration,
		lockPollStep: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewResumeServiceFromStorage 用存储管理器中已初始化的组件组装服务
func NewResumeServiceFromStorage(cfg *config.Config, extractor Extractor, s *storage.Storage, opts ...Option) (*ResumeService, error) {
	if s == nil {
		return nil, NewStorageUnavailableError("init", "storage")
	}

	// nil 指针不能直接塞进接口，否则判空会失效
	var base []Option
	if s.Redis != nil {
		base = append(base, WithResultCache(s.Redis), WithExtractLocker(s.Redis))
	}
	if s.MinIO != nil {
		base = append(base, WithObjectStorage(s.MinIO))
	}
	if s.RabbitMQ != nil {
		base = append(base, WithPublisher(s.RabbitMQ), WithQueueConsumer(s.RabbitMQ))
	}
	return NewResumeService(cfg, extractor, s.ResultStore(), append(base, opts...)...)
}

func newSubmissionUUID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("生成提交UUID失败: %w", err)
	}
	return id.String(), nil
}

// fileMD5 原件内容的MD5，用作缓存和锁的键
func fileMD5(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Components 各可选组件是否可用
func (s *ResumeService) Components() map[string]bool {
	return map[string]bool{
		"result_store":   s.results != nil,
		"result_cache":   s.cache != nil,
		"object_storage": s.objects != nil,
		"queue":          s.publisher != nil && s.consumer != nil,
	}
}

// AsyncEnabled 是否支持异步提交
func (s *ResumeService) AsyncEnabled() bool {
	return s.objects != nil && s.publisher != nil
}

// ExtractUpload 同步提取一份上传的简历
// 相同内容命中缓存时直接返回缓存的记录；提取失败时落一条 FAILED 记录并返回原始错误
func (s *ResumeService) ExtractUpload(ctx context.Context, filename string, data []byte) (*types.StoredResult, error) {
	ctx, span := tracer.Start(ctx, "ExtractUpload", trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	md5Hex := fileMD5(data)
	span.SetAttributes(
		attribute.String("filename", tracing.SafeFilename(filename)),
		attribute.Int("file_size_bytes", len(data)),
		attribute.String("file_md5", md5Hex),
	)
	log := s.logger.With().Str("filename", filename).Str("md5", md5Hex).Logger()

	if cached := s.lookupCache(ctx, md5Hex); cached != nil {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		log.Info().Str("submission_uuid", cached.SubmissionUUID).Msg("命中结果缓存")
		return cached, nil
	}

	if s.locker != nil {
		lockValue, err := s.locker.AcquireLock(ctx, md5Hex, constants.ExtractLockDuration)
		switch {
		case err == nil:
			defer s.releaseLock(md5Hex, lockValue)
		case errors.Is(err, storage.ErrLockNotAcquired):
			// 另一个请求正在提取同一文件，等它写入缓存
			if cached := s.waitForCache(ctx, md5Hex); cached != nil {
				span.SetAttributes(attribute.Bool("cache_hit", true))
				return cached, nil
			}
			log.Debug().Msg("等待并发提取结果超时，自行提取")
		default:
			log.Warn().Err(err).Msg("获取提取锁失败，继续处理")
		}
	}

	submissionUUID, err := s.newUUID()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}
	span.SetAttributes(attribute.String("submission_uuid", submissionUUID))

	stored := &types.StoredResult{
		SubmissionUUID:   submissionUUID,
		OriginalFilename: filename,
		FileMD5:          md5Hex,
		CreatedAt:        s.now(),
	}

	rec, err := s.extract(ctx, data, filename)
	if err != nil {
		recordExtractError(span, err)
		s.markFailed(ctx, stored, err)
		return nil, fmt.Errorf("提取简历 %s 失败: %w", submissionUUID, err)
	}

	stored.Status = types.StatusExtracted
	stored.Result = rec
	if err := s.results.SaveResult(ctx, stored); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, NewSaveResultError(submissionUUID, err.Error())
	}
	s.storeCache(ctx, md5Hex, stored)

	span.SetStatus(codes.Ok, "提取成功")
	log.Info().Str("submission_uuid", submissionUUID).Msg("简历提取完成")
	return stored, nil
}

// SubmitUpload 保存原件、写入 PENDING 记录并发布上传事件，由消费者异步提取
func (s *ResumeService) SubmitUpload(ctx context.Context, filename string, data []byte) (*types.StoredResult, error) {
	ctx, span := tracer.Start(ctx, "SubmitUpload", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	if !s.AsyncEnabled() {
		err := NewStorageUnavailableError("submit", "minio and rabbitmq are required")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	submissionUUID, err := s.newUUID()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeInternal)
		return nil, err
	}
	md5Hex := fileMD5(data)
	span.SetAttributes(
		attribute.String("submission_uuid", submissionUUID),
		attribute.String("filename", tracing.SafeFilename(filename)),
		attribute.Int("file_size_bytes", len(data)),
	)
	log := s.logger.With().Str("submission_uuid", submissionUUID).Logger()

	objectKey, err := s.objects.UploadResumeFile(ctx, submissionUUID, filepath.Ext(filename), bytes.NewReader(data), int64(len(data)))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return nil, NewStoreOriginalError(submissionUUID, err.Error())
	}

	stored := &types.StoredResult{
		SubmissionUUID:    submissionUUID,
		OriginalFilename:  filename,
		OriginalObjectKey: objectKey,
		FileMD5:           md5Hex,
		Status:            types.StatusPending,
		CreatedAt:         s.now(),
	}
	if err := s.results.SaveResult(ctx, stored); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, NewSaveResultError(submissionUUID, err.Error())
	}

	msg := storage.ResumeUploadMessage{
		SubmissionUUID:      submissionUUID,
		SubmissionTimestamp: stored.CreatedAt,
		OriginalFilename:    filename,
		OriginalFilePathOSS: objectKey,
		RawFileMD5:          md5Hex,
	}
	rmq := s.config.RabbitMQ
	if err := s.publisher.PublishJSON(ctx, rmq.ResumeEventsExchange, rmq.UploadedRoutingKey, msg, true); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeRabbitMQ)
		s.markFailed(ctx, stored, fmt.Errorf("发布上传事件失败: %w", err))
		return nil, NewPublishError(submissionUUID, err.Error())
	}

	span.SetStatus(codes.Ok, "已入队")
	log.Info().Str("object_key", objectKey).Msg("简历已提交，等待异步提取")
	return stored, nil
}

// HandleUploadMessage 消费一条上传事件
// 文档或模型错误记为 FAILED 后返回 nil (重试也不会成功)；下载、存储失败时返回错误
func (s *ResumeService) HandleUploadMessage(ctx context.Context, msg storage.ResumeUploadMessage) error {
	ctx, span := tracer.Start(ctx, "HandleUploadMessage", trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	span.SetAttributes(
		attribute.String("submission_uuid", msg.SubmissionUUID),
		attribute.String("object_key", msg.OriginalFilePathOSS),
	)
	log := s.logger.With().Str("submission_uuid", msg.SubmissionUUID).Logger()

	if msg.SubmissionUUID == "" {
		err := fmt.Errorf("消息缺少 submission_uuid")
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return err
	}
	if s.objects == nil {
		err := NewStorageUnavailableError("consume", "minio")
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		return err
	}

	stored := &types.StoredResult{
		SubmissionUUID:    msg.SubmissionUUID,
		OriginalFilename:  msg.OriginalFilename,
		OriginalObjectKey: msg.OriginalFilePathOSS,
		FileMD5:           msg.RawFileMD5,
		CreatedAt:         msg.SubmissionTimestamp,
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = s.now()
	}

	if msg.RawFileMD5 != "" {
		if cached := s.lookupCache(ctx, msg.RawFileMD5); cached != nil {
			span.SetAttributes(attribute.Bool("cache_hit", true))
			stored.Status = types.StatusExtracted
			stored.Result = cached.Result
			if err := s.results.SaveResult(ctx, stored); err != nil {
				tracing.RecordError(span, err, tracing.ErrorTypeDB)
				return NewSaveResultError(msg.SubmissionUUID, err.Error())
			}
			log.Info().Msg("命中结果缓存，复用已有提取结果")
			return nil
		}
	}

	data, err := s.objects.GetResumeFile(ctx, msg.OriginalFilePathOSS)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStorage)
		log.Error().Err(err).Msg("下载简历原件失败")
		return NewDownloadError(msg.SubmissionUUID, err.Error())
	}
	if stored.FileMD5 == "" {
		stored.FileMD5 = fileMD5(data)
	}

	rec, err := s.extract(ctx, data, msg.OriginalFilename)
	if err != nil {
		recordExtractError(span, err)
		if saveErr := s.markFailed(ctx, stored, err); saveErr != nil {
			return NewSaveResultError(msg.SubmissionUUID, saveErr.Error())
		}
		log.Warn().Err(err).Str("error_kind", types.ErrorKind(err)).Msg("简历提取失败，已记录")
		return nil
	}

	stored.Status = types.StatusExtracted
	stored.Result = rec
	if err := s.results.SaveResult(ctx, stored); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return NewSaveResultError(msg.SubmissionUUID, err.Error())
	}
	s.storeCache(ctx, stored.FileMD5, stored)

	span.SetStatus(codes.Ok, "提取成功")
	log.Info().Msg("异步提取完成")
	return nil
}

// handleDelivery 队列消息回调，返回 true 表示 Ack
func (s *ResumeService) handleDelivery(ctx context.Context, body []byte) bool {
	var msg storage.ResumeUploadMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		s.logger.Error().Err(err).Msg("无法解析上传事件，丢弃")
		return false
	}
	if err := s.HandleUploadMessage(ctx, msg); err != nil {
		s.logger.Error().Err(err).Str("submission_uuid", msg.SubmissionUUID).Msg("处理上传事件失败")
		return false
	}
	return true
}

// StartConsumer 启动提取队列的消费者，ctx 取消后停止，返回的 channel 在全部 worker 退出后关闭
// 启动失败时按 rabbitmq.retry_interval 间隔重试
func (s *ResumeService) StartConsumer(ctx context.Context) (<-chan struct{}, error) {
	if s.consumer == nil {
		return nil, NewStorageUnavailableError("consume", "rabbitmq")
	}
	rmq := s.config.RabbitMQ
	interval := config.GetDuration(rmq.RetryInterval, constants.DefaultConsumerRetryInterval)

	var lastErr error
	for attempt := 1; attempt <= constants.ConsumerStartAttempts; attempt++ {
		done, err := s.consumer.StartConsumer(ctx, rmq.ExtractionQueue, rmq.PrefetchCount, rmq.ConsumerWorkers, s.handleDelivery)
		if err == nil {
			return done, nil
		}
		lastErr = err
		if attempt == constants.ConsumerStartAttempts {
			break
		}
		s.logger.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", interval).Msg("启动队列消费者失败，稍后重试")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(interval):
		}
	}
	return nil, fmt.Errorf("启动队列消费者失败(已尝试 %d 次): %w", constants.ConsumerStartAttempts, lastErr)
}

// GetResult 查询单条提交
func (s *ResumeService) GetResult(ctx context.Context, submissionUUID string) (*types.StoredResult, error) {
	stored, err := s.results.GetResult(ctx, submissionUUID)
	if err != nil {
		if errors.Is(err, storage.ErrResultNotFound) {
			return nil, NewNotFoundError(submissionUUID)
		}
		return nil, fmt.Errorf("查询提交 %s 失败: %w", submissionUUID, err)
	}
	return stored, nil
}

// ListResults 最近的提交，limit<=0 时取默认值，超过上限时截断
func (s *ResumeService) ListResults(ctx context.Context, limit int) ([]*types.StoredResult, error) {
	return s.results.ListResults(ctx, clampLimit(limit))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return constants.DefaultListLimit
	}
	if limit > constants.MaxListLimit {
		return constants.MaxListLimit
	}
	return limit
}

func (s *ResumeService) extract(ctx context.Context, data []byte, filename string) (*types.ExtractedResume, error) {
	ctx, span := tracer.Start(ctx, "ExtractFields")
	defer span.End()

	rec, err := s.extractor.ExtractFromReader(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("提取结果不符合输出结构: %w", err)
	}
	span.SetAttributes(
		attribute.Int("skills", len(rec.Skills)),
		attribute.Int("certifications", len(rec.Certifications)),
		attribute.Bool("empty", rec.IsEmpty()),
	)
	if rec.Name != nil {
		span.SetAttributes(attribute.String("candidate.name", tracing.SafeAttributeValue("candidate.name", *rec.Name, tracing.DefaultMaxLength)))
	}
	if rec.Email != nil {
		span.SetAttributes(attribute.String("candidate.email", tracing.SafeAttributeValue("candidate.email", *rec.Email, tracing.DefaultMaxLength)))
	}
	if rec.Experience != nil {
		span.SetAttributes(attribute.String("candidate.experience", tracing.SafeAttributeValue("candidate.experience", *rec.Experience, tracing.DefaultMaxLength)))
	}
	return rec, nil
}

// markFailed 写入 FAILED 记录，写入失败只记日志并返回
func (s *ResumeService) markFailed(ctx context.Context, stored *types.StoredResult, cause error) error {
	stored.Status = types.StatusFailed
	stored.ErrorKind = types.ErrorKind(cause)
	stored.ErrorMessage = cause.Error()
	stored.Result = nil
	if err := s.results.SaveResult(ctx, stored); err != nil {
		s.logger.Error().Err(err).Str("submission_uuid", stored.SubmissionUUID).Msg("记录失败状态时出错")
		return err
	}
	return nil
}

func (s *ResumeService) lookupCache(ctx context.Context, md5Hex string) *types.StoredResult {
	if s.cache == nil {
		return nil
	}
	cached, err := s.cache.GetCachedResult(ctx, md5Hex)
	if err != nil {
		s.logger.Warn().Err(err).Str("md5", md5Hex).Msg("读取结果缓存失败，继续提取")
		return nil
	}
	if cached == nil || cached.Status != types.StatusExtracted || cached.Result == nil {
		return nil
	}
	return cached
}

func (s *ResumeService) storeCache(ctx context.Context, md5Hex string, stored *types.StoredResult) {
	if s.cache == nil {
		return
	}
	if err := s.cache.CacheResult(ctx, md5Hex, stored); err != nil {
		s.logger.Warn().Err(err).Str("md5", md5Hex).Msg("写入结果缓存失败")
	}
}

// waitForCache 轮询缓存直到出现结果、ctx 结束或等待超时
func (s *ResumeService) waitForCache(ctx context.Context, md5Hex string) *types.StoredResult {
	deadline := time.NewTimer(s.lockWait)
	defer deadline.Stop()
	ticker := time.NewTicker(s.lockPollStep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-deadline.C:
			return nil
		case <-ticker.C:
			if cached := s.lookupCache(ctx, md5Hex); cached != nil {
				return cached
			}
		}
	}
}

func (s *ResumeService) releaseLock(md5Hex, lockValue string) {
	// 请求 ctx 可能已取消，锁仍要释放
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	released, err := s.locker.ReleaseLock(ctx, md5Hex, lockValue)
	if err != nil {
		s.logger.Warn().Err(err).Str("md5", md5Hex).Msg("释放提取锁失败")
		return
	}
	if !released {
		s.logger.Debug().Str("md5", md5Hex).Msg("提取锁已过期")
	}
}

func recordExtractError(span trace.Span, err error) {
	kind := attribute.String("error.kind", types.ErrorKind(err))
	switch {
	case errors.Is(err, types.ErrDocumentOpen):
		tracing.RecordError(span, err, tracing.ErrorTypeDocument, kind)
	case errors.Is(err, types.ErrModelUnavailable):
		tracing.RecordError(span, err, tracing.ErrorTypeModel, kind)
	default:
		tracing.RecordError(span, err, tracing.ErrorTypeInternal, kind)
	}
}
