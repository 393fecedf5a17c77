package textfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

// errBadRecord 單行紀錄無法解析
var errBadRecord = errors.New("bad record")

// EncodeRecord 將帳戶編碼成一行：
//
//	<帳號> <餘額> <PIN 摘要> "<名稱>"
//
// 名稱中的 " 與 \ 會以 \ 跳脫。餘額使用精確的十進位表示，讀回時不會有誤差。
func EncodeRecord(acc domain.Account) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(acc.Number, 10))
	sb.WriteByte(' ')
	sb.WriteString(acc.Balance.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.FormatUint(uint64(acc.PinDigest), 10))
	sb.WriteByte(' ')
	writeQuoted(&sb, acc.Name)
	return sb.String()
}

// DecodeRecord 解析 EncodeRecord 產生的一行 (欄位間可為任意空白)，
// 並以 domain.RestoreAccount 檢查帳戶是否合法。
func DecodeRecord(line string) (*domain.Account, error) {
	rest := line
	var fields [3]string
	for i := range fields {
		var ok bool
		fields[i], rest, ok = nextToken(rest)
		if !ok {
			return nil, fmt.Errorf("%w: expected 4 fields", errBadRecord)
		}
	}

	number, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: account number %q", errBadRecord, fields[0])
	}
	balance, err := decimal.NewFromString(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: balance %q", errBadRecord, fields[1])
	}
	digest, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: pin digest %q", errBadRecord, fields[2])
	}
	name, err := readQuoted(strings.TrimLeft(rest, " \t"))
	if err != nil {
		return nil, err
	}

	acc, err := domain.RestoreAccount(name, number, balance, domain.PinDigest(digest))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRecord, err)
	}
	return acc, nil
}

// nextToken 取出下一個以空白分隔的欄位
func nextToken(s string) (token, rest string, ok bool) {
	s = strings.TrimLeft(s, " \t")
	if s == "" {
		return "", "", false
	}
	end := strings.IndexAny(s, " \t")
	if end < 0 {
		return s, "", true
	}
	return s[:end], s[end:], true
}

func writeQuoted(sb *strings.Builder, s string) {
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '"' || s[i] == '\\' {
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	sb.WriteByte('"')
}

// readQuoted 解析 "..." 字串：\x 一律還原成 x；結尾引號後只允許空白
func readQuoted(s string) (string, error) {
	if s == "" || s[0] != '"' {
		return "", fmt.Errorf("%w: name must be quoted", errBadRecord)
	}
	var sb strings.Builder
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
			if i == len(s) {
				return "", fmt.Errorf("%w: dangling escape in name", errBadRecord)
			}
			sb.WriteByte(s[i])
		case '"':
			if strings.TrimSpace(s[i+1:]) != "" {
				return "", fmt.Errorf("%w: trailing data after name", errBadRecord)
			}
			return sb.String(), nil
		default:
			sb.WriteByte(s[i])
		}
	}
	return "", fmt.Errorf("%w: unterminated name", errBadRecord)
}
