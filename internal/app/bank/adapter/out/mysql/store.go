package mysql

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
	"github.com/JoeShih716/go-mem-bank/internal/app/bank/usecase"
	"github.com/JoeShih716/go-mem-bank/pkg/mysql"
)

const (
	// balance 欄位為 DECIMAL(38,10)
	balancePrecision = 38
	balanceScale     = 10
)

// maxBalance 是 DECIMAL(38,10) 能保存的最大值 (整數部分 28 位)
var maxBalance = decimal.New(1, balancePrecision-balanceScale)

// sqlAccount 對應資料庫的 bank_accounts 表
type sqlAccount struct {
	AccountNumber int64           `gorm:"primaryKey;autoIncrement:false"`
	Position      int             `gorm:"index;not null"` // 帳本中的順序
	Name          string          `gorm:"size:255;not null"`
	Balance       decimal.Decimal `gorm:"type:decimal(38,10);not null"`
	PinDigest     uint64          `gorm:"not null"`
	UpdatedAt     int64           `gorm:"autoUpdateTime:milli"` // 自動更新時間
}

func (*sqlAccount) TableName() string {
	return "bank_accounts"
}

// Store 以 MySQL 資料表保存帳本快照 (與文字檔相同的整批覆寫語意)
type Store struct {
	client *mysql.Client
	log    logrus.FieldLogger
}

func NewStore(client *mysql.Client, log logrus.FieldLogger) *Store {
	return &Store{
		client: client,
		log:    log,
	}
}

// Migrate 建立或更新 bank_accounts 表
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.client.DB().WithContext(ctx).AutoMigrate(&sqlAccount{}); err != nil {
		return fmt.Errorf("%w: migrate bank_accounts: %w", domain.ErrStorage, err)
	}
	return nil
}

// Load 依 position 順序讀出所有帳戶。資料表沒有資料時回傳空集合。
func (s *Store) Load(ctx context.Context) ([]*domain.Account, error) {
	var rows []sqlAccount
	if err := s.client.DB().WithContext(ctx).Order("position ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("%w: select bank_accounts: %w", domain.ErrStorage, err)
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for i := range rows {
		acc, err := fromRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("%w: account %d: %w", domain.ErrMalformedRecord, rows[i].AccountNumber, err)
		}
		accounts = append(accounts, acc)
	}
	s.log.WithField("accounts", len(accounts)).Info("MySQLStore.Load.Complete")
	return accounts, nil
}

// Save 在同一個 Transaction 內清空資料表並寫入所有帳戶。
// 有任何餘額無法以 DECIMAL(38,10) 原值保存時整批拒絕，資料表不變。
func (s *Store) Save(ctx context.Context, accounts []domain.Account) error {
	rows, err := toRows(accounts)
	if err != nil {
		return fmt.Errorf("%w: save bank_accounts: %w", domain.ErrStorage, err)
	}
	err = s.client.DB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&sqlAccount{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return fmt.Errorf("%w: save bank_accounts: %w", domain.ErrStorage, err)
	}
	s.log.WithField("accounts", len(rows)).Info("MySQLStore.Save.Complete")
	return nil
}

func toRows(accounts []domain.Account) ([]sqlAccount, error) {
	rows := make([]sqlAccount, len(accounts))
	for i, acc := range accounts {
		if !fitsBalanceColumn(acc.Balance) {
			return nil, fmt.Errorf("%w: account %d balance %s does not fit DECIMAL(%d,%d)",
				domain.ErrValidation, acc.Number, acc.Balance, balancePrecision, balanceScale)
		}
		rows[i] = sqlAccount{
			AccountNumber: acc.Number,
			Position:      i,
			Name:          acc.Name,
			Balance:       acc.Balance,
			PinDigest:     uint64(acc.PinDigest),
		}
	}
	return rows, nil
}

// fitsBalanceColumn 判斷餘額寫入資料表後能否原值讀回 (不會被四捨五入或溢位)
func fitsBalanceColumn(balance decimal.Decimal) bool {
	return balance.Round(balanceScale).Equal(balance) && balance.Abs().LessThan(maxBalance)
}

func fromRow(row *sqlAccount) (*domain.Account, error) {
	return domain.RestoreAccount(row.Name, row.AccountNumber, row.Balance, domain.PinDigest(row.PinDigest))
}

var _ usecase.Store = (*Store)(nil)
