package textfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JoeShih716/go-mem-bank/internal/app/bank/domain"
)

func newTestStore(t *testing.T, path string, strict bool) (*Store, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	return NewStore(path, WithStrict(strict), WithLogger(logger)), hook
}

func sampleAccounts() []domain.Account {
	v := domain.NewFNVVerifier()
	return []domain.Account{
		{Name: "Alice", Number: 1001, Balance: decimal.RequireFromString("70"), PinDigest: v.Digest("1234")},
		{Name: `Bob "B" \ Jones`, Number: 1002, Balance: decimal.RequireFromString("80.125"), PinDigest: v.Digest("5678")},
		{Name: "Zero", Number: 7, Balance: decimal.Zero, PinDigest: v.Digest("0000")},
	}
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// -- Save / Load round trip --

func TestStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	store, _ := newTestStore(t, path, false)
	orig := sampleAccounts()

	require.NoError(t, store.Save(context.Background(), orig))
	loaded, err := NewStore(path).Load(context.Background())

	require.NoError(t, err)
	require.Len(t, loaded, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].Name, loaded[i].Name)
		assert.Equal(t, orig[i].Number, loaded[i].Number)
		assert.True(t, orig[i].Balance.Equal(loaded[i].Balance))
		assert.Equal(t, orig[i].PinDigest, loaded[i].PinDigest)
	}
}

func TestStore_RoundTripSkipsNamesWithLineBreaks(t *testing.T) {
	v := domain.NewFNVVerifier()
	accounts := make([]domain.Account, 0, 3)
	for _, in := range []struct {
		name   string
		number int64
	}{{"Alice", 1}, {"Bob\nSmith", 2}, {"Carol", 3}} {
		acc, err := domain.NewAccount(in.name, in.number, decimal.NewFromInt(in.number), "1234", v)
		if err != nil {
			assert.ErrorIs(t, err, domain.ErrValidation)
			continue
		}
		accounts = append(accounts, *acc)
	}
	require.Len(t, accounts, 2)

	path := filepath.Join(t.TempDir(), "accounts.txt")
	store, _ := newTestStore(t, path, true)
	require.NoError(t, store.Save(context.Background(), accounts))
	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Alice", loaded[0].Name)
	assert.Equal(t, "Carol", loaded[1].Name)
}

func TestStore_SaveRejectsUnencodableNameAndKeepsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.txt")
	store, _ := newTestStore(t, path, false)
	require.NoError(t, store.Save(context.Background(), sampleAccounts()))
	before, err := os.ReadFile(path)
	require.NoError(t, err)

	accounts := []domain.Account{
		{Name: "Alice", Number: 1, Balance: decimal.NewFromInt(1)},
		{Name: "Bob\nSmith", Number: 2, Balance: decimal.NewFromInt(2)},
		{Name: "Carol", Number: 3, Balance: decimal.NewFromInt(3)},
	}
	err = store.Save(context.Background(), accounts)

	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorIs(t, err, domain.ErrValidation)
	after, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, before, after)
}

func TestStore_SaveOverwrites(t *testing.T) {
	path := writeFile(t, "1 1 1 \"old\"\n2 2 2 \"old\"\n3 3 3 \"old\"\n")
	store, _ := newTestStore(t, path, false)

	require.NoError(t, store.Save(context.Background(), sampleAccounts()[:1]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, EncodeRecord(sampleAccounts()[0])+"\n", string(data))
}

func TestStore_SaveEmpty(t *testing.T) {
	path := writeFile(t, "1 1 1 \"old\"\n")
	store, _ := newTestStore(t, path, false)

	require.NoError(t, store.Save(context.Background(), nil))

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestStore_SaveUnwritablePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "no-such-dir", "accounts.txt")
	store, _ := newTestStore(t, path, false)

	err := store.Save(context.Background(), sampleAccounts())

	assert.ErrorIs(t, err, domain.ErrStorage)
}

// -- Load behaviour --

func TestStore_LoadMissingFile(t *testing.T) {
	store, hook := newTestStore(t, filepath.Join(t.TempDir(), "missing.txt"), true)

	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
	assert.Equal(t, "TextStore.Load.NoFile", hook.LastEntry().Message)
}

func TestStore_LoadStopsAtMalformedLine(t *testing.T) {
	path := writeFile(t, "1001 100 1 \"Alice\"\n1002 50 2 \"Bob\"\ngarbage here\n1003 10 3 \"Carol\"\n")
	store, hook := newTestStore(t, path, false)

	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, loaded, 2)
	assert.Equal(t, "Alice", loaded[0].Name)
	assert.Equal(t, "Bob", loaded[1].Name)
	entry := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "TextStore.Load.Truncated", entry.Message)
	assert.Equal(t, 3, entry.Data["line"])
}

func TestStore_LoadStopsAtDuplicate(t *testing.T) {
	path := writeFile(t, "1 1 1 \"a\"\n1 2 2 \"b\"\n2 3 3 \"c\"\n")
	store, _ := newTestStore(t, path, false)

	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "a", loaded[0].Name)
}

func TestStore_LoadSkipsBlankLines(t *testing.T) {
	path := writeFile(t, "\n1 1 1 \"a\"\n   \n2 2 2 \"b\"\n\n")
	store, _ := newTestStore(t, path, true)

	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	assert.Len(t, loaded, 2)
}

func TestStore_LoadExponentBalances(t *testing.T) {
	// 舊版程式以 %g 格式輸出餘額
	path := writeFile(t, "1001 1.23457e+06 11400714819323198485 \"Alice \\\"A\\\"\"\n")
	store, _ := newTestStore(t, path, true)

	loaded, err := store.Load(context.Background())

	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, `Alice "A"`, loaded[0].Name)
	assert.True(t, loaded[0].Balance.Equal(decimal.RequireFromString("1234570")))
	assert.Equal(t, domain.PinDigest(11400714819323198485), loaded[0].PinDigest)
}

func TestStore_StrictModeRejectsMalformed(t *testing.T) {
	path := writeFile(t, "1 1 1 \"a\"\n2 oops 2 \"b\"\n")
	store, _ := newTestStore(t, path, true)

	loaded, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrMalformedRecord)
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.ErrorContains(t, err, "line 2")
	assert.Nil(t, loaded)
}

func TestStore_LoadDirectoryIsStorageError(t *testing.T) {
	store, _ := newTestStore(t, t.TempDir(), false)

	_, err := store.Load(context.Background())

	assert.ErrorIs(t, err, domain.ErrStorage)
}
