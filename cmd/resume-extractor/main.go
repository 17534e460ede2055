package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-extractor/internal/api/handler"
	"resume-extractor/internal/api/router"
	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/nlp"
	"resume-extractor/internal/parser"
	"resume-extractor/internal/processor"
	"resume-extractor/internal/storage"
	"resume-extractor/internal/tracing"

	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {
	var configPath, initConfig string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file (默认在常见位置查找 config.yaml)")
	pflag.StringVar(&initConfig, "init-config", "", "Write a sample config file to this path and exit")
	pflag.Parse()

	if initConfig != "" {
		if err := config.CreateSampleConfig(initConfig); err != nil {
			logger.Fatal().Err(err).Msg("生成示例配置失败")
		}
		logger.Info().Str("path", initConfig).Msg("示例配置已生成")
		return
	}

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("配置校验失败")
	}

	if err := logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
		File:         cfg.Logger.File,
	}); err != nil {
		logger.Fatal().Err(err).Msg("初始化日志失败")
	}
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}

	// 模型在启动时加载一次，之后所有请求共享
	models := nlp.NewModelProvider(cfg.NLP.ModelDir)
	recognizer, err := models.Recognizer()
	if err != nil {
		logger.Fatal().Err(err).Str("model_dir", cfg.NLP.ModelDir).Msg("加载实体识别模型失败")
	}
	glog.Info("实体识别模型加载成功")

	reader, err := parser.BuildTextReader(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("创建文档读取器失败")
	}
	glog.Infof("使用 %s PDF解析器", cfg.Parser.Type)

	orchestrator := extractor.NewOrchestrator(reader, recognizer,
		extractor.WithSkillsVocabulary(cfg.Extraction.SkillsVocabulary),
		extractor.WithCertificationKeywords(cfg.Extraction.CertificationKeywords),
	)

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	service, err := processor.NewResumeServiceFromStorage(cfg, orchestrator, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化提取服务失败")
	}

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	var consumerDone <-chan struct{}
	if storageManager.RabbitMQ != nil && storageManager.MinIO != nil {
		consumerDone, err = service.StartConsumer(consumerCtx)
		if err != nil {
			logger.Fatal().Err(err).Msg("启动提取队列消费者失败")
		}
	} else {
		glog.Warn("未配置 RabbitMQ 或 MinIO，异步提交不可用")
	}

	h := router.NewServer(cfg)
	router.RegisterRoutes(h, handler.NewResumeHandler(cfg, service), cfg.Server)
	glog.Info("HTTP路由注册成功")

	go func() {
		glog.Infof("HTTP 服务器启动中，监听地址: %s", cfg.Server.Address)
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}

	stopConsumer()
	if consumerDone != nil {
		select {
		case <-consumerDone:
		case <-shutdownCtx.Done():
			glog.Warn("等待消费者退出超时")
		}
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		glog.Errorf("关闭链路追踪失败: %v", err)
	}
	glog.Info("优雅退出完成")
}
