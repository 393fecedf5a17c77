package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-mem-bank/internal/config"
)

// SetupLogging 建立 JSON 格式的 logger。
// 設定了 File 時以 append 模式寫入檔案，讓互動式畫面保持乾淨；File 為空時寫到 stderr。
//
// 回傳值:
//
//	*logrus.Logger: 設定完成的 logger
//	io.Closer: 結束時關閉 log 檔
//	error: 等級無法解析或檔案無法開啟
func SetupLogging(cfg config.LogConfig) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("logging: %w", err)
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("logging: open %s: %w", cfg.File, err)
		}
		out = f
		closer = f
	}

	logger := &logrus.Logger{
		Formatter: &logrus.JSONFormatter{
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyLevel: "loglevel",
			},
		},
		Out:      out,
		Hooks:    make(logrus.LevelHooks),
		Level:    level,
		ExitFunc: os.Exit,
	}
	return logger, closer, nil
}

// WithSession 為這次執行產生一個 session id，之後的每筆 log 都會帶上
func WithSession(logger logrus.FieldLogger) *logrus.Entry {
	return logger.WithField("session", uuid.NewString())
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
