package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOption 日志初始化参数
type LogOption struct {
	Format   string // "console" 或 "json"
	LogDir   string // 日志目录，为空时只输出到 stdout
	Level    string // debug / info / warn / error
	Compress bool   // 是否压缩旧日志文件
}

const (
	logFileName   = "processor.log"
	maxSizeMB     = 200
	maxBackups    = 20
	maxAgeDays    = 7
	defaultFormat = "console"
)

var (
	mu     sync.RWMutex
	sugar  = zap.NewNop().Sugar()
	closer func() error
)

// Init 根据配置初始化全局日志，可重复调用，后一次覆盖前一次
func Init(opt LogOption) error {
	level, err := parseLevel(opt.Level)
	if err != nil {
		return err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	switch strings.ToLower(opt.Format) {
	case "json":
		encoder = zapcore.NewJSONEncoder(encCfg)
	case "", defaultFormat:
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		return fmt.Errorf("unsupported log format %q", opt.Format)
	}

	sinks := []zapcore.WriteSyncer{zapcore.AddSync(os.Stdout)}
	var rotator *lumberjack.Logger
	if opt.LogDir != "" {
		if err := os.MkdirAll(opt.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir %s: %w", opt.LogDir, err)
		}
		rotator = &lumberjack.Logger{
			Filename:   filepath.Join(opt.LogDir, logFileName),
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   opt.Compress,
			LocalTime:  true,
		}
		sinks = append(sinks, zapcore.AddSync(rotator))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(sinks...), level)
	l := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))

	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	if closer != nil {
		_ = closer()
	}
	sugar = l.Sugar()
	closer = nil
	if rotator != nil {
		closer = rotator.Close
	}
	return nil
}

// Sync 刷新缓冲并关闭日志文件，进程退出前调用
func Sync() {
	mu.Lock()
	defer mu.Unlock()
	_ = sugar.Sync()
	if closer != nil {
		_ = closer()
		closer = nil
	}
}

func parseLevel(s string) (zapcore.Level, error) {
	if s == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func current() *zap.SugaredLogger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Debugf(template string, args ...interface{}) {
	current().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	current().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	current().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	current().Errorf(template, args...)
}
