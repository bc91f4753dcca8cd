package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger оборачивает zap и сохраняет key/value API, которым пользуются все слои
type Logger struct {
	sugar *zap.SugaredLogger
	level Level
}

type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

// Options описывает вывод логгера
type Options struct {
	Level  string
	Format string // "console" или "json"

	// FilePath включает дублирование в файл с ротацией
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int

	// Sinks дополнительные получатели JSON записей (например, CloudWatch Logs)
	Sinks []zapcore.WriteSyncer
}

// New создает консольный логгер с указанным уровнем
func New(level string) *Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions создает логгер по настройкам (консоль + опционально файл)
func NewWithOptions(opts Options) *Logger {
	level := parseLevel(opts.Level)

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if opts.Format == "json" {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	enabler := zap.NewAtomicLevelAt(toZapLevel(level))
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), enabler),
	}

	if opts.FilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   opts.FilePath,
			MaxSize:    defaultInt(opts.MaxSizeMB, 100),
			MaxBackups: defaultInt(opts.MaxBackups, 5),
			MaxAge:     defaultInt(opts.MaxAgeDays, 30),
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(rotator),
			enabler,
		))
	}

	for _, sink := range opts.Sinks {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			sink,
			enabler,
		))
	}

	return &Logger{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
		level: level,
	}
}

// NewWithCore строит логгер поверх готового zapcore.Core (используется в тестах)
func NewWithCore(core zapcore.Core) *Logger {
	level := DEBUG
	switch {
	case core.Enabled(zapcore.DebugLevel):
		level = DEBUG
	case core.Enabled(zapcore.InfoLevel):
		level = INFO
	case core.Enabled(zapcore.WarnLevel):
		level = WARN
	default:
		level = ERROR
	}

	return &Logger{
		sugar: zap.New(core).Sugar(),
		level: level,
	}
}

func parseLevel(level string) Level {
	switch level {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "warn":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// With возвращает логгер с постоянными полями (например, component)
func (l *Logger) With(args ...interface{}) *Logger {
	return &Logger{
		sugar: l.sugar.With(args...),
		level: l.level,
	}
}

func (l *Logger) Debug(msg string, args ...interface{}) {
	if l.level <= DEBUG {
		l.sugar.Debugw(msg, args...)
	}
}

func (l *Logger) Info(msg string, args ...interface{}) {
	if l.level <= INFO {
		l.sugar.Infow(msg, args...)
	}
}

func (l *Logger) Warn(msg string, args ...interface{}) {
	if l.level <= WARN {
		l.sugar.Warnw(msg, args...)
	}
}

func (l *Logger) Error(msg string, err error, args ...interface{}) {
	if l.level <= ERROR {
		if err != nil {
			args = append(args, "error", err.Error())
		}
		l.sugar.Errorw(msg, args...)
	}
}

// Sync сбрасывает буферы (вызывается при shutdown)
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func defaultInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
