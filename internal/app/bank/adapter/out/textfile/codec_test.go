package textfile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

func TestEncodeRecord_Format(t *testing.T) {
	acc := domain.Account{
		Name:      `Al "The Pal" \ Smith`,
		Number:    1001,
		Balance:   decimal.RequireFromString("70.50"),
		PinDigest: 18446744073709551615,
	}

	line := EncodeRecord(acc)

	assert.Equal(t, `1001 70.5 18446744073709551615 "Al \"The Pal\" \\ Smith"`, line)
}

func TestDecodeRecord_EscapedName(t *testing.T) {
	acc, err := DecodeRecord(`1001 70.5 42 "Al \"The Pal\" \\ Smith"`)

	require.NoError(t, err)
	assert.Equal(t, `Al "The Pal" \ Smith`, acc.Name)
	assert.Equal(t, int64(1001), acc.Number)
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("70.5")))
	assert.Equal(t, domain.PinDigest(42), acc.PinDigest)
}

func TestDecodeRecord_FloatNotations(t *testing.T) {
	cases := map[string]string{
		`1 100 7 "a"`:      "100",
		`1 0.25 7 "a"`:     "0.25",
		`1 1e+06 7 "a"`:    "1000000",
		`1 1.5E2 7 "a"`:    "150",
		`1 .5 7 "a"`:       "0.5",
		"1\t12.75\t7\t\"a\"": "12.75",
	}
	for line, want := range cases {
		acc, err := DecodeRecord(line)
		require.NoError(t, err, line)
		assert.True(t, acc.Balance.Equal(decimal.RequireFromString(want)), "%s -> %s", line, acc.Balance)
	}
}

func TestDecodeRecord_NameWithSpacesAndUnicode(t *testing.T) {
	acc, err := DecodeRecord(`5 1 9 "王 小明  Jr."`)

	require.NoError(t, err)
	assert.Equal(t, "王 小明  Jr.", acc.Name)
}

func TestDecodeRecord_Malformed(t *testing.T) {
	lines := []string{
		``,
		`1001`,
		`1001 10 42`,
		`abc 10 42 "a"`,
		`1001 ten 42 "a"`,
		`1001 10 -42 "a"`,
		`1001 10 42 a`,
		`1001 10 42 "unterminated`,
		`1001 10 42 "dangling\`,
		`1001 10 42 "a" trailing`,
		`1001 -10 42 "negative"`,
		`0 10 42 "zero number"`,
		`1001 10 42 ""`,
		`1001 NaN 42 "a"`,
	}
	for _, line := range lines {
		acc, err := DecodeRecord(line)
		assert.ErrorIs(t, err, errBadRecord, "line %q", line)
		assert.Nil(t, acc)
	}
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	names := []string{"Alice", `quote"inside`, `back\slash`, `\"`, "trailing space ", " leading"}
	for i, name := range names {
		orig := domain.Account{
			Name:      name,
			Number:    int64(i + 1),
			Balance:   decimal.RequireFromString("1234567.891"),
			PinDigest: domain.NewFNVVerifier().Digest("1234"),
		}

		acc, err := DecodeRecord(EncodeRecord(orig))

		require.NoError(t, err, name)
		assert.Equal(t, orig.Name, acc.Name)
		assert.Equal(t, orig.Number, acc.Number)
		assert.True(t, orig.Balance.Equal(acc.Balance))
		assert.Equal(t, orig.PinDigest, acc.PinDigest)
	}
}
