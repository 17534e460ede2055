package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-extractor/internal/config"
	"resume-extractor/internal/extractor"
	"resume-extractor/internal/logger"
	"resume-extractor/internal/nlp"
	"resume-extractor/internal/parser"
	"resume-extractor/internal/report"
	"resume-extractor/internal/storage"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const defaultResultLog = "data/results.db"

func main() {
	os.Exit(run())
}

// run 返回进程退出码：0 全部成功，1 有文档失败或运行出错，2 用法错误
func run() int {
	var (
		configPath  string
		summary     bool
		store       bool
		xlsxPath    string
		ensureModel bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.BoolVar(&summary, "summary", false, "Print a plain-text summary per document instead of JSON")
	pflag.BoolVar(&store, "store", false, "Append results to the local result log")
	pflag.StringVar(&xlsxPath, "xlsx", "", "Also write results to an Excel workbook")
	pflag.BoolVar(&ensureModel, "ensure-model", false, "Load the entity recognition model and exit")
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] file.pdf...\n", os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	// 标准输出留给结果，日志写到 stderr
	logger.InitWithWriter(logger.Config{
		Level:      cfg.Logger.Level,
		TimeFormat: cfg.Logger.TimeFormat,
	}, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	log := logger.Logger.With().Str("component", "extract-cli").Logger()

	models := nlp.NewModelProvider(cfg.NLP.ModelDir)
	if ensureModel {
		if _, err := models.EnsureModel(); err != nil {
			log.Error().Err(err).Msg("加载实体识别模型失败")
			return 1
		}
		log.Info().Msg("实体识别模型可用")
		return 0
	}

	paths := pflag.Args()
	if len(paths) == 0 {
		pflag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	recognizer, err := models.Recognizer()
	if err != nil {
		log.Error().Err(err).Msg("加载实体识别模型失败")
		return 1
	}
	reader, err := parser.BuildTextReader(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("创建文档读取器失败")
		return 1
	}
	orchestrator := extractor.NewOrchestrator(reader, recognizer,
		extractor.WithSkillsVocabulary(cfg.Extraction.SkillsVocabulary),
		extractor.WithCertificationKeywords(cfg.Extraction.CertificationKeywords),
		extractor.WithLogger(log),
	)

	var saver resultSaver
	if store {
		path := cfg.Results.BoltPath
		if path == "" {
			path = defaultResultLog
		}
		resultLog, err := storage.OpenBoltResultLog(path)
		if err != nil {
			log.Error().Err(err).Msg("打开结果日志失败")
			return 1
		}
		defer resultLog.Close()
		saver = resultLog
		log.Info().Str("path", path).Msg("结果将写入本地日志")
	}

	records, failed, err := newBatchRunner(orchestrator, saver, log).run(ctx, paths)
	if err != nil {
		log.Error().Err(err).Msg("批量提取中断")
		failed++
	}

	if summary {
		fmt.Print(summaries(records))
	} else {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			log.Error().Err(err).Msg("输出结果失败")
			failed++
		}
	}

	if xlsxPath != "" {
		data, err := report.ExportXLSX(records)
		if err == nil {
			err = os.WriteFile(xlsxPath, data, 0644)
		}
		if err != nil {
			log.Error().Err(err).Str("path", xlsxPath).Msg("写入 Excel 失败")
			failed++
		} else {
			log.Info().Str("path", xlsxPath).Int("rows", len(records)).Msg("Excel 已生成")
		}
	}

	if failed > 0 {
		return 1
	}
	return 0
}

// loadConfig 读取并校验配置，非法配置在加载模型和读取文档之前就失败
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}
	return cfg, nil
}
