package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/constants"
	"resume-extractor/internal/storage"
	"resume-extractor/internal/types"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtractor 返回预设结果并记录调用
type fakeExtractor struct {
	mu    sync.Mutex
	rec   *types.ExtractedResume
	err   error
	calls int
	uris  []string
	sizes []int
}

func (f *fakeExtractor) ExtractFromReader(ctx context.Context, reader io.Reader, uri string) (*types.ExtractedResume, error) {
	data, _ := io.ReadAll(reader)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.uris = append(f.uris, uri)
	f.sizes = append(f.sizes, len(data))
	if f.err != nil {
		return nil, f.err
	}
	return f.rec, nil
}

// memResultStore 内存结果存储，保留每次写入的状态序列
type memResultStore struct {
	mu      sync.Mutex
	rows    map[string]types.StoredResult
	history []types.ProcessingStatus
	saveErr error
}

func newMemResultStore() *memResultStore {
	return &memResultStore{rows: make(map[string]types.StoredResult)}
}

func (m *memResultStore) SaveResult(ctx context.Context, result *types.StoredResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.rows[result.SubmissionUUID] = *result
	m.history = append(m.history, result.Status)
	return nil
}

func (m *memResultStore) GetResult(ctx context.Context, submissionUUID string) (*types.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[submissionUUID]
	if !ok {
		return nil, storage.ErrResultNotFound
	}
	return &row, nil
}

func (m *memResultStore) ListResults(ctx context.Context, limit int) ([]*types.StoredResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.StoredResult, 0, len(m.rows))
	for _, row := range m.rows {
		row := row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memResultStore) Close() error { return nil }

// fakeCache 第 hitAfter 次读取之后才返回 entry
type fakeCache struct {
	mu       sync.Mutex
	entries  map[string]*types.StoredResult
	gets     int
	hitAfter int
	getErr   error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*types.StoredResult)}
}

func (c *fakeCache) GetCachedResult(ctx context.Context, fileMD5 string) (*types.StoredResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	if c.getErr != nil {
		return nil, c.getErr
	}
	if c.gets <= c.hitAfter {
		return nil, nil
	}
	return c.entries[fileMD5], nil
}

func (c *fakeCache) CacheResult(ctx context.Context, fileMD5 string, stored *types.StoredResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[fileMD5] = stored
	return nil
}

type fakeLocker struct {
	acquireErr error
	released   []string
}

func (l *fakeLocker) AcquireLock(ctx context.Context, fileMD5 string, expiration time.Duration) (string, error) {
	if l.acquireErr != nil {
		return "", l.acquireErr
	}
	return "lock-" + fileMD5, nil
}

func (l *fakeLocker) ReleaseLock(ctx context.Context, fileMD5, lockValue string) (bool, error) {
	l.released = append(l.released, lockValue)
	return true, nil
}

type fakeObjects struct {
	objects   map[string][]byte
	uploadErr error
	getErr    error
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: make(map[string][]byte)}
}

func (o *fakeObjects) UploadResumeFile(ctx context.Context, submissionUUID, fileExt string, reader io.Reader, fileSize int64) (string, error) {
	if o.uploadErr != nil {
		return "", o.uploadErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("resume/%s/original%s", submissionUUID, fileExt)
	o.objects[key] = data
	return key, nil
}

func (o *fakeObjects) GetResumeFile(ctx context.Context, objectKey string) ([]byte, error) {
	if o.getErr != nil {
		return nil, o.getErr
	}
	data, ok := o.objects[objectKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectKey)
	}
	return data, nil
}

type publishedMessage struct {
	exchange   string
	routingKey string
	body       []byte
	persistent bool
}

type fakePublisher struct {
	messages []publishedMessage
	err      error
}

func (p *fakePublisher) PublishJSON(ctx context.Context, exchangeName, routingKey string, data interface{}, persistent bool) error {
	if p.err != nil {
		return p.err
	}
	body, err := json.Marshal(data)
	if err != nil {
		return err
	}
	p.messages = append(p.messages, publishedMessage{exchangeName, routingKey, body, persistent})
	return nil
}

type fakeConsumer struct {
	queue    string
	prefetch int
	workers  int
	handler  func(context.Context, []byte) bool

	failures int
	attempts int
}

func (c *fakeConsumer) StartConsumer(ctx context.Context, queueName string, prefetchCount, workers int, handler func(context.Context, []byte) bool) (<-chan struct{}, error) {
	c.attempts++
	if c.attempts <= c.failures {
		return nil, errors.New("channel not ready")
	}
	c.queue, c.prefetch, c.workers, c.handler = queueName, prefetchCount, workers, handler
	done := make(chan struct{})
	close(done)
	return done, nil
}

func str(s string) *string { return &s }

func sampleRecord() *types.ExtractedResume {
	return &types.ExtractedResume{
		Name:           str("John Smith"),
		Email:          str("john.smith@example.com"),
		Phone:          str("+1 555-123-4567"),
		Skills:         []string{"Python", "SQL"},
		Experience:     str("5 years"),
		Certifications: []string{"AWS Certified Solutions Architect"},
	}
}

type testEnv struct {
	svc       *ResumeService
	extractor *fakeExtractor
	store     *memResultStore
	cache     *fakeCache
	objects   *fakeObjects
	publisher *fakePublisher
	consumer  *fakeConsumer
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	env := &testEnv{
		extractor: &fakeExtractor{rec: sampleRecord()},
		store:     newMemResultStore(),
		cache:     newFakeCache(),
		objects:   newFakeObjects(),
		publisher: &fakePublisher{},
		consumer:  &fakeConsumer{},
	}
	base := []Option{
		WithResultCache(env.cache),
		WithObjectStorage(env.objects),
		WithPublisher(env.publisher),
		WithQueueConsumer(env.consumer),
		WithLogger(zerolog.Nop()),
	}
	svc, err := NewResumeService(config.DefaultConfig(), env.extractor, env.store, append(base, opts...)...)
	require.NoError(t, err)

	seq := 0
	svc.newUUID = func() (string, error) {
		seq++
		return fmt.Sprintf("0190a000-0000-7000-8000-%012d", seq), nil
	}
	base0 := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		return base0.Add(time.Duration(seq) * time.Minute)
	}
	env.svc = svc
	return env
}

func TestNewResumeServiceRequiresDependencies(t *testing.T) {
	cfg := config.DefaultConfig()
	_, err := NewResumeService(nil, &fakeExtractor{}, newMemResultStore())
	assert.Error(t, err)

	_, err = NewResumeService(cfg, nil, newMemResultStore())
	assert.Error(t, err)

	_, err = NewResumeService(cfg, &fakeExtractor{}, nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)

	_, err = NewResumeServiceFromStorage(cfg, &fakeExtractor{}, nil)
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestNewResumeServiceFromStorageBoltOnly(t *testing.T) {
	bolt, err := storage.OpenBoltResultLog(t.TempDir() + "/results.db")
	require.NoError(t, err)
	defer bolt.Close()

	svc, err := NewResumeServiceFromStorage(config.DefaultConfig(), &fakeExtractor{}, &storage.Storage{Bolt: bolt})
	require.NoError(t, err)

	components := svc.Components()
	assert.True(t, components["result_store"])
	assert.False(t, components["result_cache"], "未配置的 Redis 不能变成非 nil 接口")
	assert.False(t, components["object_storage"])
	assert.False(t, svc.AsyncEnabled())
}

func TestExtractUploadSuccess(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("%PDF-1.4 fake")

	stored, err := env.svc.ExtractUpload(context.Background(), "john.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, "0190a000-0000-7000-8000-000000000001", stored.SubmissionUUID)
	assert.Equal(t, types.StatusExtracted, stored.Status)
	assert.Equal(t, fileMD5(data), stored.FileMD5)
	assert.Equal(t, "john.pdf", stored.OriginalFilename)
	assert.Equal(t, sampleRecord(), stored.Result)

	assert.Equal(t, []string{"john.pdf"}, env.extractor.uris)
	assert.Equal(t, []int{len(data)}, env.extractor.sizes)

	saved, err := env.store.GetResult(context.Background(), stored.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusExtracted, saved.Status)

	assert.Same(t, stored, env.cache.entries[fileMD5(data)], "提取成功的结果应写入缓存")
}

func TestExtractUploadCacheHit(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("same bytes")

	first, err := env.svc.ExtractUpload(context.Background(), "a.pdf", data)
	require.NoError(t, err)
	second, err := env.svc.ExtractUpload(context.Background(), "b.pdf", data)
	require.NoError(t, err)

	assert.Equal(t, first.SubmissionUUID, second.SubmissionUUID)
	assert.Equal(t, 1, env.extractor.calls, "相同内容只提取一次")
	assert.Len(t, env.store.rows, 1)
}

func TestExtractUploadCacheErrorFallsThrough(t *testing.T) {
	env := newTestEnv(t)
	env.cache.getErr = errors.New("redis down")

	stored, err := env.svc.ExtractUpload(context.Background(), "a.pdf", []byte("x"))
	require.NoError(t, err)
	assert.Equal(t, types.StatusExtracted, stored.Status)
	assert.Equal(t, 1, env.extractor.calls)
}

func TestExtractUploadFailureKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantKind string
		target   error
	}{
		{"文档无法打开", types.NewDocumentOpenError("bad.pdf", errors.New("not a pdf")), "document_open", types.ErrDocumentOpen},
		{"模型不可用", types.NewModelUnavailableError("/models", errors.New("missing")), "model_unavailable", types.ErrModelUnavailable},
		{"其他错误", errors.New("boom"), "internal", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.extractor.err = tt.err

			stored, err := env.svc.ExtractUpload(context.Background(), "bad.pdf", []byte("garbage"))
			require.Error(t, err)
			assert.Nil(t, stored, "失败时不返回部分结果")
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Equal(t, tt.wantKind, types.ErrorKind(err))

			// 失败记录已落库，但不进缓存
			require.Len(t, env.store.rows, 1)
			for _, row := range env.store.rows {
				assert.Equal(t, types.StatusFailed, row.Status)
				assert.Equal(t, tt.wantKind, row.ErrorKind)
				assert.NotEmpty(t, row.ErrorMessage)
				assert.Nil(t, row.Result)
			}
			assert.Empty(t, env.cache.entries)
		})
	}
}

func TestExtractUploadSchemaViolation(t *testing.T) {
	env := newTestEnv(t)
	rec := sampleRecord()
	rec.Experience = str("five years")
	env.extractor.rec = rec

	_, err := env.svc.ExtractUpload(context.Background(), "a.pdf", []byte("x"))
	require.Error(t, err)
	assert.Equal(t, "internal", types.ErrorKind(err))
}

func TestExtractUploadSaveFailure(t *testing.T) {
	env := newTestEnv(t)
	env.store.saveErr = errors.New("disk full")

	_, err := env.svc.ExtractUpload(context.Background(), "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrSaveResultFailed)
	assert.Empty(t, env.cache.entries)
}

func TestExtractUploadLockReleased(t *testing.T) {
	locker := &fakeLocker{}
	env := newTestEnv(t, WithExtractLocker(locker))
	data := []byte("locked")

	_, err := env.svc.ExtractUpload(context.Background(), "a.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, []string{"lock-" + fileMD5(data)}, locker.released)
}

func TestExtractUploadWaitsForConcurrentExtraction(t *testing.T) {
	locker := &fakeLocker{acquireErr: storage.ErrLockNotAcquired}
	env := newTestEnv(t, WithExtractLocker(locker))
	env.svc.lockWait = time.Second
	env.svc.lockPollStep = 5 * time.Millisecond

	data := []byte("in flight")
	other := &types.StoredResult{SubmissionUUID: "other", Status: types.StatusExtracted, Result: sampleRecord()}
	env.cache.entries[fileMD5(data)] = other
	env.cache.hitAfter = 2 // 第一次查缓存未命中，轮询到第二次之后才出现

	stored, err := env.svc.ExtractUpload(context.Background(), "a.pdf", data)
	require.NoError(t, err)
	assert.Equal(t, "other", stored.SubmissionUUID)
	assert.Zero(t, env.extractor.calls)
}

func TestExtractUploadLockWaitTimeout(t *testing.T) {
	locker := &fakeLocker{acquireErr: storage.ErrLockNotAcquired}
	env := newTestEnv(t, WithExtractLocker(locker))
	env.svc.lockWait = 20 * time.Millisecond
	env.svc.lockPollStep = 5 * time.Millisecond

	stored, err := env.svc.ExtractUpload(context.Background(), "a.pdf", []byte("slow"))
	require.NoError(t, err)
	assert.Equal(t, types.StatusExtracted, stored.Status)
	assert.Equal(t, 1, env.extractor.calls)
	assert.Empty(t, locker.released, "没拿到锁就不释放")
}

func TestSubmitUpload(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("%PDF-1.4 async")

	stored, err := env.svc.SubmitUpload(context.Background(), "Resume.PDF", data)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, stored.Status)
	assert.Equal(t, "resume/"+stored.SubmissionUUID+"/original.PDF", stored.OriginalObjectKey)
	assert.Equal(t, data, env.objects.objects[stored.OriginalObjectKey])

	require.Len(t, env.publisher.messages, 1)
	published := env.publisher.messages[0]
	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.RabbitMQ.ResumeEventsExchange, published.exchange)
	assert.Equal(t, cfg.RabbitMQ.UploadedRoutingKey, published.routingKey)
	assert.True(t, published.persistent)

	var msg storage.ResumeUploadMessage
	require.NoError(t, json.Unmarshal(published.body, &msg))
	assert.Equal(t, stored.SubmissionUUID, msg.SubmissionUUID)
	assert.Equal(t, stored.OriginalObjectKey, msg.OriginalFilePathOSS)
	assert.Equal(t, fileMD5(data), msg.RawFileMD5)

	assert.Zero(t, env.extractor.calls, "提交时不做提取")
}

func TestSubmitUploadRequiresAsyncComponents(t *testing.T) {
	svc, err := NewResumeService(config.DefaultConfig(), &fakeExtractor{}, newMemResultStore(), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	_, err = svc.SubmitUpload(context.Background(), "a.pdf", []byte("x"))
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestSubmitUploadFailures(t *testing.T) {
	t.Run("原件上传失败", func(t *testing.T) {
		env := newTestEnv(t)
		env.objects.uploadErr = errors.New("minio down")
		_, err := env.svc.SubmitUpload(context.Background(), "a.pdf", []byte("x"))
		assert.ErrorIs(t, err, ErrStoreOriginalFailed)
		assert.Empty(t, env.store.rows)
		assert.Empty(t, env.publisher.messages)
	})

	t.Run("发布失败标记为FAILED", func(t *testing.T) {
		env := newTestEnv(t)
		env.publisher.err = errors.New("channel closed")
		_, err := env.svc.SubmitUpload(context.Background(), "a.pdf", []byte("x"))
		assert.ErrorIs(t, err, ErrPublishMessageFailed)

		var procErr *ResumeProcessError
		require.ErrorAs(t, err, &procErr)
		assert.Equal(t, "publish", procErr.Op)

		assert.Equal(t, []types.ProcessingStatus{types.StatusPending, types.StatusFailed}, env.store.history)
	})
}

func TestHandleUploadMessage(t *testing.T) {
	env := newTestEnv(t)
	data := []byte("%PDF-1.4 queued")
	submitted, err := env.svc.SubmitUpload(context.Background(), "queued.pdf", data)
	require.NoError(t, err)

	var msg storage.ResumeUploadMessage
	require.NoError(t, json.Unmarshal(env.publisher.messages[0].body, &msg))

	require.NoError(t, env.svc.HandleUploadMessage(context.Background(), msg))

	got, err := env.svc.GetResult(context.Background(), submitted.SubmissionUUID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusExtracted, got.Status)
	assert.Equal(t, sampleRecord(), got.Result)
	assert.Equal(t, submitted.OriginalObjectKey, got.OriginalObjectKey)
	assert.Equal(t, []string{"queued.pdf"}, env.extractor.uris)
	assert.NotNil(t, env.cache.entries[fileMD5(data)])
}

func TestHandleUploadMessageCacheHit(t *testing.T) {
	env := newTestEnv(t)
	env.cache.entries["abc"] = &types.StoredResult{SubmissionUUID: "earlier", Status: types.StatusExtracted, Result: sampleRecord()}

	msg := storage.ResumeUploadMessage{SubmissionUUID: "new-one", OriginalFilename: "dup.pdf", RawFileMD5: "abc"}
	require.NoError(t, env.svc.HandleUploadMessage(context.Background(), msg))

	got, err := env.svc.GetResult(context.Background(), "new-one")
	require.NoError(t, err)
	assert.Equal(t, types.StatusExtracted, got.Status)
	assert.Equal(t, sampleRecord(), got.Result)
	assert.Zero(t, env.extractor.calls)
}

func TestHandleUploadMessageDocumentError(t *testing.T) {
	env := newTestEnv(t)
	env.objects.objects["resume/u1/original.pdf"] = []byte("not a pdf")
	env.extractor.err = types.NewDocumentOpenError("u1.pdf", errors.New("bad header"))

	msg := storage.ResumeUploadMessage{SubmissionUUID: "u1", OriginalFilePathOSS: "resume/u1/original.pdf"}
	require.NoError(t, env.svc.HandleUploadMessage(context.Background(), msg), "文档错误已记录，不需要重投")

	got, err := env.svc.GetResult(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusFailed, got.Status)
	assert.Equal(t, "document_open", got.ErrorKind)
	assert.Equal(t, fileMD5([]byte("not a pdf")), got.FileMD5)
}

func TestHandleUploadMessageInfraErrors(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.HandleUploadMessage(context.Background(), storage.ResumeUploadMessage{})
	assert.Error(t, err)

	env.objects.getErr = errors.New("timeout")
	err = env.svc.HandleUploadMessage(context.Background(), storage.ResumeUploadMessage{SubmissionUUID: "u2", OriginalFilePathOSS: "k"})
	assert.ErrorIs(t, err, ErrResumeDownloadFailed)
}

func TestStartConsumerHandlesDeliveries(t *testing.T) {
	env := newTestEnv(t)
	done, err := env.svc.StartConsumer(context.Background())
	require.NoError(t, err)
	<-done

	cfg := config.DefaultConfig()
	assert.Equal(t, cfg.RabbitMQ.ExtractionQueue, env.consumer.queue)
	assert.Equal(t, cfg.RabbitMQ.PrefetchCount, env.consumer.prefetch)
	assert.Equal(t, cfg.RabbitMQ.ConsumerWorkers, env.consumer.workers)
	require.NotNil(t, env.consumer.handler)

	assert.False(t, env.consumer.handler(context.Background(), []byte("{not json")), "无法解析的消息应 Nack")

	env.objects.objects["resume/u3/original.pdf"] = []byte("%PDF")
	body, err := json.Marshal(storage.ResumeUploadMessage{SubmissionUUID: "u3", OriginalFilePathOSS: "resume/u3/original.pdf"})
	require.NoError(t, err)
	assert.True(t, env.consumer.handler(context.Background(), body))
}

func TestStartConsumerRetries(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RabbitMQ.RetryInterval = "1ms"

	consumer := &fakeConsumer{failures: 2}
	svc, err := NewResumeService(cfg, &fakeExtractor{}, newMemResultStore(), WithQueueConsumer(consumer), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	done, err := svc.StartConsumer(context.Background())
	require.NoError(t, err)
	<-done
	assert.Equal(t, 3, consumer.attempts)
}

func TestStartConsumerGivesUp(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RabbitMQ.RetryInterval = "1ms"

	consumer := &fakeConsumer{failures: 10}
	svc, err := NewResumeService(cfg, &fakeExtractor{}, newMemResultStore(), WithQueueConsumer(consumer), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	_, err = svc.StartConsumer(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel not ready")
	assert.Equal(t, constants.ConsumerStartAttempts, consumer.attempts)
}

func TestStartConsumerRetryCancelled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.RabbitMQ.RetryInterval = "1h"

	consumer := &fakeConsumer{failures: 10}
	svc, err := NewResumeService(cfg, &fakeExtractor{}, newMemResultStore(), WithQueueConsumer(consumer), WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.StartConsumer(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, consumer.attempts)
}

func TestStartConsumerWithoutQueue(t *testing.T) {
	svc, err := NewResumeService(config.DefaultConfig(), &fakeExtractor{}, newMemResultStore(), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	_, err = svc.StartConsumer(context.Background())
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

func TestGetResultNotFound(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.GetResult(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrResultNotFound)
	assert.ErrorIs(t, err, storage.ErrResultNotFound)
}

func TestListResults(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 3; i++ {
		_, err := env.svc.ExtractUpload(context.Background(), fmt.Sprintf("%d.pdf", i), []byte{byte(i)})
		require.NoError(t, err)
	}

	results, err := env.svc.ListResults(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "2.pdf", results[0].OriginalFilename, "最新的在前")

	all, err := env.svc.ListResults(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, constants.DefaultListLimit, clampLimit(0))
	assert.Equal(t, constants.DefaultListLimit, clampLimit(-3))
	assert.Equal(t, 7, clampLimit(7))
	assert.Equal(t, constants.MaxListLimit, clampLimit(constants.MaxListLimit+1))
}

func TestResumeProcessErrorFormat(t *testing.T) {
	err := NewSaveResultError("u1", "disk full")
	assert.Contains(t, err.Error(), "save_result")
	assert.Contains(t, err.Error(), "u1")
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, errors.Is(err, ErrSaveResultFailed))
	assert.False(t, errors.Is(err, ErrPublishMessageFailed))

	notFound := NewNotFoundError("u2")
	assert.Contains(t, notFound.Error(), "get_result")
	assert.ErrorIs(t, notFound, storage.ErrResultNotFound)
}
