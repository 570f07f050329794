package logger

import (
	"code4u_backend/internal/config"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 未初始化时丢弃日志
var Log = zap.NewNop()

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "time",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// resolveLevel 未配置 log.level 时 debug 模式输出 Debug，其余为 Info
func resolveLevel(cfg config.LogConfig, mode string) (zapcore.Level, error) {
	if cfg.Level != "" {
		lvl, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return zapcore.InfoLevel, fmt.Errorf("log.level: %w", err)
		}
		return lvl, nil
	}
	if mode == "debug" {
		return zapcore.DebugLevel, nil
	}
	return zapcore.InfoLevel, nil
}

// NewLogger 控制台输出文本格式，配置了 log.file 时另写一份按大小滚动的 JSON 文件
func NewLogger(cfg config.LogConfig, mode string, console zapcore.WriteSyncer) (*zap.Logger, error) {
	level, err := resolveLevel(cfg, mode)
	if err != nil {
		return nil, err
	}

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), console, level),
	}
	if cfg.File != "" {
		fileWriter := zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), fileWriter, level))
	}

	return zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.Fields(zap.String("service", "code4u-backend")),
	), nil
}

func InitLogger(cfg *config.Config) error {
	l, err := NewLogger(cfg.Log, cfg.Server.Mode, zapcore.AddSync(os.Stdout))
	if err != nil {
		return err
	}
	Log = l
	return nil
}
