package textfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/recordfile"
)

// Store 以文字檔保存帳本，一行一個帳戶
//
// 結構:
//
//	path: 資料檔路徑
//	strict: 遇到無法解析的行時回傳 ErrMalformedRecord，而不是靜默停止讀取
//	log: logrus logger
type Store struct {
	path   string
	strict bool
	log    logrus.FieldLogger
}

// Option 設定 Store 的選項
type Option func(*Store)

// WithStrict 開啟嚴格模式
func WithStrict(strict bool) Option {
	return func(s *Store) {
		s.strict = strict
	}
}

// WithLogger 指定 logger
func WithLogger(logger logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// NewStore 建立文字檔 Store
func NewStore(path string, opts ...Option) *Store {
	s := &Store{
		path: path,
		log:  logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path 回傳資料檔路徑
func (s *Store) Path() string {
	return s.path
}

// Load 讀取資料檔
//
// 檔案不存在視為第一次執行，回傳空集合。
// 空白行會略過；第一個無法解析 (或帳號重複、內容不合法) 的行視為資料結尾，
// 回傳在它之前讀到的帳戶。strict 模式下改為回傳 ErrMalformedRecord。
//
// 回傳:
//
//	[]*domain.Account: 依檔案順序的帳戶
//	error: ErrStorage / ErrMalformedRecord
func (s *Store) Load(_ context.Context) ([]*domain.Account, error) {
	f, err := recordfile.Open(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.log.WithField("path", s.path).Info("TextStore.Load.NoFile")
		return make([]*domain.Account, 0), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrStorage, s.path, err)
	}
	defer f.Close()

	accounts := make([]*domain.Account, 0)
	seen := make(map[int64]struct{})
	err = f.ReadLines(func(lineNo int, line string) error {
		if strings.TrimSpace(line) == "" {
			return nil
		}
		acc, decodeErr := DecodeRecord(line)
		if decodeErr == nil {
			if _, dup := seen[acc.Number]; dup {
				decodeErr = fmt.Errorf("%w: duplicate account number %d", errBadRecord, acc.Number)
			}
		}
		if decodeErr != nil {
			if s.strict {
				return fmt.Errorf("%w: %s line %d: %w", domain.ErrMalformedRecord, s.path, lineNo, decodeErr)
			}
			s.log.WithFields(logrus.Fields{
				"path":   s.path,
				"line":   lineNo,
				"loaded": len(accounts),
			}).WithError(decodeErr).Warn("TextStore.Load.Truncated")
			return recordfile.ErrStop
		}
		seen[acc.Number] = struct{}{}
		accounts = append(accounts, acc)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrStorage) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrStorage, s.path, err)
	}
	return accounts, nil
}

// Save 以整檔覆寫的方式寫入所有帳戶 (不保留舊檔、不做附加)。
// 任何一筆帳戶無法寫成可讀回的紀錄時，不會動到既有的資料檔。
func (s *Store) Save(_ context.Context, accounts []domain.Account) error {
	for _, acc := range accounts {
		if _, err := domain.RestoreAccount(acc.Name, acc.Number, acc.Balance, acc.PinDigest); err != nil {
			return fmt.Errorf("%w: account %d cannot be saved: %w", domain.ErrStorage, acc.Number, err)
		}
	}

	f, err := recordfile.Create(s.path, recordfile.FileModePrivate)
	if err != nil {
		return fmt.Errorf("%w: cannot open %s for saving: %w", domain.ErrStorage, s.path, err)
	}
	for _, acc := range accounts {
		if err := f.WriteLine(EncodeRecord(acc)); err != nil {
			_ = f.Close()
			return fmt.Errorf("%w: write %s: %w", domain.ErrStorage, s.path, err)
		}
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: sync %s: %w", domain.ErrStorage, s.path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", domain.ErrStorage, s.path, err)
	}
	s.log.WithFields(logrus.Fields{"path": s.path, "accounts": len(accounts)}).Info("TextStore.Save.Complete")
	return nil
}

var _ usecase.Store = (*Store)(nil)
