package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	AccessLogger = zap.NewNop()
	DBLogger     = zap.NewNop()
	ChainLogger  = zap.NewNop()
)

func newFileLogger(path string) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{
		path,
	}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return config.Build()
}

func InitLoggers() error {
	var err error
	AccessLogger, err = newFileLogger("access.log")
	if err != nil {
		return err
	}

	DBLogger, err = newFileLogger("db.log")
	if err != nil {
		return err
	}

	// chain.log also carries reconciliation debt entries
	ChainLogger, err = newFileLogger("chain.log")
	if err != nil {
		return err
	}

	return nil
}

func SyncLoggers() error {
	for _, l := range []*zap.Logger{AccessLogger, DBLogger, ChainLogger} {
		if err := l.Sync(); err != nil {
			return err
		}
	}
	return nil
}
