// SPDX-License-Identifier: AGPL-3.0-only

package emit

import (
	"context"
	"testing"

	"github.com/go-kit/log"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileEmitter_CreatesDirectoryAndWrites(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := NewFileEmitter(fs, "out/json-dashboards", log.NewNopLogger())

	doc := Document{Name: "cpu-usage", FileName: "cpu_usage_dashboard.json", Body: []byte("{}\n")}
	require.NoError(t, e.Emit(context.Background(), doc))

	assert.Equal(t, "out/json-dashboards/cpu_usage_dashboard.json", e.Path(doc))
	got, err := afero.ReadFile(fs, e.Path(doc))
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(got))
}

func TestFileEmitter_ReplacesExistingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/a.json", []byte("previous version, much longer than the new one"), 0o644))

	e := NewFileEmitter(fs, "out", log.NewNopLogger())
	require.NoError(t, e.Emit(context.Background(), Document{Name: "a", FileName: "a.json", Body: []byte(`{"v":2}`)}))

	got, err := afero.ReadFile(fs, "out/a.json")
	require.NoError(t, err)
	assert.Equal(t, `{"v":2}`, string(got))

	// No temporary files are left behind.
	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.json", entries[0].Name())
}

func TestFileEmitter_Errors(t *testing.T) {
	tests := map[string]struct {
		fs       afero.Fs
		ctx      func() context.Context
		fileName string
	}{
		"read-only filesystem": {
			fs:       afero.NewReadOnlyFs(afero.NewMemMapFs()),
			ctx:      context.Background,
			fileName: "a.json",
		},
		"file name with directory": {
			fs:       afero.NewMemMapFs(),
			ctx:      context.Background,
			fileName: "../a.json",
		},
		"empty file name": {
			fs:  afero.NewMemMapFs(),
			ctx: context.Background,
		},
		"canceled context": {
			fs: afero.NewMemMapFs(),
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			fileName: "a.json",
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			e := NewFileEmitter(tc.fs, "out", log.NewNopLogger())
			err := e.Emit(tc.ctx(), Document{Name: "a", FileName: tc.fileName, Body: []byte("{}")})
			require.Error(t, err)

			var ioErr *IOError
			require.True(t, errors.As(err, &ioErr))
			assert.Equal(t, e.Path(Document{FileName: tc.fileName}), ioErr.Path)
		})
	}
}

func TestIOError(t *testing.T) {
	err := &IOError{Path: "out/a.json", Err: context.Canceled}
	assert.EqualError(t, err, "writing out/a.json: context canceled")
	assert.True(t, errors.Is(err, context.Canceled))
}
