package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/xoso-linebot-go/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerators(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"cang with prefixes", []string{"cang", "--prefix", "1 3", "12 34 567"}, "112, 134, 1567, 312, 334, 3567\n"},
		{"cang default prefix 3d", []string{"cang", "--mode", "3d", "12 345"}, "012\n"},
		{"cang 4d", []string{"cang", "-m", "4d", "-p", "5", "12", "345"}, "5345\n"},
		{"dao repeated digit", []string{"dao", "112"}, "112, 121, 211\n"},
		{"xien 3", []string{"xien", "-n", "3", "11 22 33"}, "11&22&33\n"},
		{"xien default size", []string{"xien", "11", "22", "33"}, "11&22, 11&33, 22&33\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := run(t, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerators_Errors(t *testing.T) {
	t.Parallel()

	_, err := run(t, "dao", "1")
	assert.ErrorIs(t, err, errNoResult)

	_, err = run(t, "xien", "-n", "5", "11 22 33 44 55")
	assert.ErrorContains(t, err, "xiên size must be 2-4")

	_, err = run(t, "cang", "--mode", "5d", "12")
	assert.ErrorContains(t, err, "unknown mode")

	_, err = run(t, "cang")
	assert.Error(t, err)
}

func TestPhongThuy(t *testing.T) {
	t.Parallel()

	got, err := run(t, "phongthuy", "Giáp", "Tý")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, "🔮 Phong thủy can chi Giáp Tý\n"), got)

	_, err = run(t, "phongthuy", "khong phai can chi")
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "xsmb.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("date,DB,G1\n2024-07-25,1234,56789\n2024-07-24,98765,11111\n"), 0o600))

	got, err := run(t, "import", "--data-dir", dir, csvPath)
	require.NoError(t, err)
	assert.Contains(t, got, "Imported 2 results")

	db, err := storage.New(context.Background(), filepath.Join(dir, "xoso.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	n, err := db.CountResults(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
