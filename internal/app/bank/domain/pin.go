package domain

import (
	"crypto/subtle"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"golang.org/x/crypto/blake2b"
)

// PinLength PIN 固定為四位數字
const PinLength = 4

// PinDigest 是 PIN 經過單向雜湊後的固定長度摘要，原始 PIN 不會被保存
type PinDigest uint64

// PinVerifier 封裝 PIN 的雜湊方式，讓帳本邏輯不必知道實際使用哪種演算法。
//
// 之後若要換成加鹽或加密鑰的摘要，只需提供新的實作。
type PinVerifier interface {
	// Digest 計算 PIN 的摘要
	Digest(pin string) PinDigest
	// Verify 重新計算 candidate 的摘要並與 digest 比對
	Verify(digest PinDigest, candidate string) bool
}

// ValidPin 檢查 PIN 是否剛好為四個 ASCII 數字
func ValidPin(pin string) bool {
	if len(pin) != PinLength {
		return false
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return false
		}
	}
	return true
}

// FNVVerifier 使用未加鹽的 64-bit FNV-1a 雜湊。
// 這只是一道弱門檻，不提供真正的安全性。
type FNVVerifier struct{}

// NewFNVVerifier 建立預設的 FNVVerifier
func NewFNVVerifier() FNVVerifier {
	return FNVVerifier{}
}

func (FNVVerifier) Digest(pin string) PinDigest {
	h := fnv.New64a()
	_, _ = h.Write([]byte(pin))
	return PinDigest(h.Sum64())
}

func (v FNVVerifier) Verify(digest PinDigest, candidate string) bool {
	return equalDigest(digest, v.Digest(candidate))
}

// KeyedVerifier 使用帶密鑰的 BLAKE2b (輸出 8 bytes)，
// 沒有密鑰就無法離線暴力還原四位數 PIN。
type KeyedVerifier struct {
	key []byte
}

// NewKeyedVerifier 建立 KeyedVerifier
//
// 參數:
//
//	key: 密鑰，長度需介於 1 到 64 bytes
//
// 回傳:
//
//	*KeyedVerifier: 實例
//	error: 密鑰長度不合法
func NewKeyedVerifier(key []byte) (*KeyedVerifier, error) {
	if len(key) == 0 || len(key) > blake2b.Size {
		return nil, fmt.Errorf("%w: pin key must be 1-%d bytes, got %d", ErrValidation, blake2b.Size, len(key))
	}
	k := make([]byte, len(key))
	copy(k, key)
	return &KeyedVerifier{key: k}, nil
}

func (v *KeyedVerifier) Digest(pin string) PinDigest {
	// key 長度已在建構時檢查過，這裡不會失敗
	h, err := blake2b.New(8, v.key)
	if err != nil {
		panic(err)
	}
	_, _ = h.Write([]byte(pin))
	return PinDigest(binary.BigEndian.Uint64(h.Sum(nil)))
}

func (v *KeyedVerifier) Verify(digest PinDigest, candidate string) bool {
	return equalDigest(digest, v.Digest(candidate))
}

// equalDigest 以固定時間比較兩個摘要
func equalDigest(a, b PinDigest) bool {
	var x, y [8]byte
	binary.BigEndian.PutUint64(x[:], uint64(a))
	binary.BigEndian.PutUint64(y[:], uint64(b))
	return subtle.ConstantTimeCompare(x[:], y[:]) == 1
}

var (
	_ PinVerifier = FNVVerifier{}
	_ PinVerifier = (*KeyedVerifier)(nil)
)
