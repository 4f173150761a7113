package common

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LogLevel 日志级别
type LogLevel string

// 支持的日志级别
const (
	Debug LogLevel = "debug"
	Info  LogLevel = "info"
	Warn  LogLevel = "warn"
	Error LogLevel = "error"
)

// 日志输出格式
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// 运行环境
const (
	EnvProduction  = "production"
	EnvDevelopment = "development"
)

func (p LogLevel) zapLevel() (zapcore.Level, bool) {
	switch LogLevel(strings.ToLower(string(p))) {
	case Debug:
		return zapcore.DebugLevel, true
	case Info:
		return zapcore.InfoLevel, true
	case Warn:
		return zapcore.WarnLevel, true
	case Error:
		return zapcore.ErrorLevel, true
	}
	return zapcore.InfoLevel, false
}

// Logger 日志接口
type Logger interface {
	Debugf(format string, params ...interface{})
	Infof(format string, params ...interface{})
	Warnf(format string, params ...interface{})
	Errorf(format string, params ...interface{})

	DebugEnabled() bool
	InfoEnabled() bool
	WarnEnabled() bool
	ErrorEnabled() bool

	SetLevel(level LogLevel)
	Sync()
}

var (
	loggerLock sync.RWMutex
	// 默认输出到stderr,info级别
	logger Logger = NewZapLogger(&LogConfig{Env: EnvProduction, NoCaller: true})
)

func currentLogger() Logger {
	loggerLock.RLock()
	defer loggerLock.RUnlock()
	return logger
}

// SetLogger 替换全局的Logger
func SetLogger(l Logger) {
	if l == nil {
		return
	}
	loggerLock.Lock()
	old := logger
	logger = l
	loggerLock.Unlock()
	old.Sync()
}

func initLogger(conf *LogConfig) error {
	if conf == nil {
		return nil
	}
	if conf.Env != "" && conf.Env != EnvProduction && conf.Env != EnvDevelopment {
		return fmt.Errorf("invalid log env %q", conf.Env)
	}
	if conf.Level != "" {
		if _, ok := LogLevel(conf.Level).zapLevel(); !ok {
			return fmt.Errorf("invalid log level %q", conf.Level)
		}
	}
	if conf.Format != "" && conf.Format != LogFormatConsole && conf.Format != LogFormatJSON {
		return fmt.Errorf("invalid log format %q", conf.Format)
	}
	if conf.FileName != "" {
		fmt.Fprintln(os.Stderr, "Use "+conf.FileName+" as log file")
	}
	SetLogger(NewZapLogger(conf))
	return nil
}

// Debugf debug
func Debugf(format string, params ...interface{}) {
	currentLogger().Debugf(format, params...)
}

// Infof info
func Infof(format string, params ...interface{}) {
	currentLogger().Infof(format, params...)
}

// Warnf warn
func Warnf(format string, params ...interface{}) {
	currentLogger().Warnf(format, params...)
}

// Errorf error
func Errorf(format string, params ...interface{}) {
	currentLogger().Errorf(format, params...)
}

// Logf 按照指定的级别记录日志
func Logf(level LogLevel, format string, params ...interface{}) {
	l := currentLogger()
	switch level {
	case Debug:
		l.Debugf(format, params...)
	case Warn:
		l.Warnf(format, params...)
	case Error:
		l.Errorf(format, params...)
	default:
		l.Infof(format, params...)
	}
}

// DebugEnabled 是否启用了debug
func DebugEnabled() bool {
	return currentLogger().DebugEnabled()
}

// InfoEnabled 是否启用了info
func InfoEnabled() bool {
	return currentLogger().InfoEnabled()
}

// WarnEnabled 是否启用了warn
func WarnEnabled() bool {
	return currentLogger().WarnEnabled()
}

// ErrorEnabled 是否启用了error
func ErrorEnabled() bool {
	return currentLogger().ErrorEnabled()
}

// SetLogLevel 设置日志级别,无效的级别被忽略
func SetLogLevel(level LogLevel) {
	currentLogger().SetLevel(level)
}

// SyncLog 刷新日志缓冲
func SyncLog() {
	currentLogger().Sync()
}
