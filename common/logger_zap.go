package common

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ZapLogger 基于zap SugaredLogger的Logger,级别可以在运行期调整
type ZapLogger struct {
	level  zap.AtomicLevel
	logger *zap.SugaredLogger
}

// Debugf debug
func (l *ZapLogger) Debugf(format string, params ...interface{}) {
	l.logger.Debugf(format, params...)
}

// Infof info
func (l *ZapLogger) Infof(format string, params ...interface{}) {
	l.logger.Infof(format, params...)
}

// Warnf warn
func (l *ZapLogger) Warnf(format string, params ...interface{}) {
	l.logger.Warnf(format, params...)
}

// Errorf error
func (l *ZapLogger) Errorf(format string, params ...interface{}) {
	l.logger.Errorf(format, params...)
}

func (l *ZapLogger) DebugEnabled() bool { return l.level.Enabled(zapcore.DebugLevel) }
func (l *ZapLogger) InfoEnabled() bool  { return l.level.Enabled(zapcore.InfoLevel) }
func (l *ZapLogger) WarnEnabled() bool  { return l.level.Enabled(zapcore.WarnLevel) }
func (l *ZapLogger) ErrorEnabled() bool { return l.level.Enabled(zapcore.ErrorLevel) }

// Sync 刷新缓冲的日志,服务停止前调用
func (l *ZapLogger) Sync() {
	_ = l.logger.Sync()
}

// SetLevel 调整日志级别,无效的级别被忽略
func (l *ZapLogger) SetLevel(level LogLevel) {
	if zapl, ok := level.zapLevel(); ok {
		l.level.SetLevel(zapl)
	}
}

// NewZapLogger 按照logConfig创建ZapLogger.development环境默认debug级别,其他环境默认info级别并使用ISO8601时间;
// 配置了FileName时写入文件并由lumberjack滚动,否则写到stderr
func NewZapLogger(logConfig *LogConfig) *ZapLogger {
	return newZapLogger(logConfig, nil)
}

func newZapLogger(logConfig *LogConfig, out io.Writer) *ZapLogger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if logConfig.Env == EnvDevelopment {
		level.SetLevel(zapcore.DebugLevel)
	}
	if zapl, ok := LogLevel(logConfig.Level).zapLevel(); ok && logConfig.Level != "" {
		level.SetLevel(zapl)
	}

	if out == nil {
		out = logWriter(logConfig)
	}
	core := zapcore.NewCore(logEncoder(logConfig), zapcore.AddSync(out), level)
	logger := zap.New(core)
	if !logConfig.NoCaller {
		logger = logger.WithOptions(zap.AddCaller(), zap.AddCallerSkip(2))
	}
	if logConfig.App != "" {
		logger = logger.With(zap.String("app", logConfig.App))
	}
	return &ZapLogger{logger: logger.Sugar(), level: level}
}

func logEncoder(logConfig *LogConfig) zapcore.Encoder {
	var config zapcore.EncoderConfig
	if logConfig.Env == EnvDevelopment {
		config = zap.NewDevelopmentEncoderConfig()
	} else {
		config = zap.NewProductionEncoderConfig()
		config.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	if logConfig.Format == LogFormatJSON {
		return zapcore.NewJSONEncoder(config)
	}
	return zapcore.NewConsoleEncoder(config)
}

func logWriter(logConfig *LogConfig) io.Writer {
	if logConfig.FileName == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   logConfig.FileName,
		MaxSize:    logConfig.MaxSize,
		MaxBackups: logConfig.MaxBackups,
		MaxAge:     logConfig.MaxAge,
		Compress:   logConfig.Compress,
		LocalTime:  true,
	}
}
