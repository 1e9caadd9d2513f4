package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"powerbox/internal/dataset"
	pberrors "powerbox/internal/errors"
)

func newDataset(t *testing.T, columns ...string) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.New(columns, nil)
	require.NoError(t, err)
	return ds
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schema.csv")
	require.NoError(t, os.WriteFile(path, []byte(" A ,B,C\nignored,row,values\n"), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, s.Columns)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "gone.csv"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		expected    []string
		actual      []string
		wantMissing []string
		wantExtra   []string
	}{
		{
			name:     "exact match",
			expected: []string{"A", "B", "C"},
			actual:   []string{"A", "B", "C"},
		},
		{
			name:     "order does not matter",
			expected: []string{"A", "B"},
			actual:   []string{"B", "A"},
		},
		{
			name:        "missing and extra",
			expected:    []string{"A", "B", "C"},
			actual:      []string{"A", "B", "D"},
			wantMissing: []string{"C"},
			wantExtra:   []string{"D"},
		},
		{
			name:        "only missing",
			expected:    []string{"A", "B"},
			actual:      []string{"A"},
			wantMissing: []string{"B"},
		},
		{
			name:      "only extra",
			expected:  []string{"A"},
			actual:    []string{"A", "Z"},
			wantExtra: []string{"Z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Schema{Columns: tt.expected}
			err := s.Validate(newDataset(t, tt.actual...), nil)

			if len(tt.wantMissing) == 0 && len(tt.wantExtra) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			require.True(t, pberrors.IsKind(err, pberrors.KindSchemaMismatch))

			var pe *pberrors.Error
			require.ErrorAs(t, err, &pe)
			if len(tt.wantMissing) > 0 {
				assert.Equal(t, tt.wantMissing, pe.Detail["missing"])
			}
			if len(tt.wantExtra) > 0 {
				assert.Equal(t, tt.wantExtra, pe.Detail["extra"])
			}
		})
	}
}
