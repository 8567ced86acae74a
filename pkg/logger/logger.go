// Package logger 提供基于 zap 的日志器构建
package logger

import (
	"os"

	"github.com/astralvault/page-sync-service/pkg/fileurl"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config 日志配置
type Config struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string
	// File 日志文件路径，为空则只输出到 stderr
	File string
	// Production 是否使用 JSON 编码输出
	Production bool
}

// NewLogger 根据配置构建 zap 日志器
func NewLogger(c Config) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if c.Level != "" {
		var err error
		level, err = zapcore.ParseLevel(c.Level)
		if err != nil {
			return nil, errors.Wrap(err, "parse log level failed")
		}
	}

	var encoder zapcore.Encoder
	if c.Production {
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	} else {
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	}

	syncers := []zapcore.WriteSyncer{zapcore.Lock(os.Stderr)}

	if c.File != "" {
		if !fileurl.IsExist(c.File) {
			if err := fileurl.CreatePath(c.File, os.ModePerm); err != nil {
				return nil, errors.Wrap(err, "create log path failed")
			}
		}
		file, err := os.OpenFile(c.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
		if err != nil {
			return nil, errors.Wrap(err, "open log file failed")
		}
		syncers = append(syncers, zapcore.Lock(file))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)
	return zap.New(core, zap.AddCaller()), nil
}
