package project

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Iron-Ham/muxer/internal/errors"
)

func newTestSource(t *testing.T, files map[string]string) *Source {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}
	return &Source{
		Fs:        fs,
		Dir:       "/cfg/projects",
		LocalFile: ".muxer.yml",
		WorkDir:   "/work",
	}
}

func TestSource_Read(t *testing.T) {
	src := newTestSource(t, map[string]string{
		"/cfg/projects/dev.yml":      "name: dev\n",
		"/cfg/projects/blog.yaml":    "name: blog\n",
		"/cfg/projects/work/api.yml": "name: api\n",
		"/work/.muxer.yml":           "name: local\n",
	})

	tests := []struct {
		name     string
		project  string
		local    bool
		wantPath string
		wantData string
	}{
		{"yml", "dev", false, "/cfg/projects/dev.yml", "name: dev\n"},
		{"yaml fallback", "blog", false, "/cfg/projects/blog.yaml", "name: blog\n"},
		{"nested", "work/api", false, "/cfg/projects/work/api.yml", "name: api\n"},
		{"local ignores name", "dev", true, "/work/.muxer.yml", "name: local\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := src.Read(tt.project, tt.local)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.wantPath), def.Path)
			assert.Equal(t, tt.wantData, string(def.Data))
		})
	}
}

func TestSource_Read_NotFound(t *testing.T) {
	src := newTestSource(t, map[string]string{
		"/cfg/secret.yml": "name: secret\n",
	})

	tests := []struct {
		name    string
		project string
		local   bool
	}{
		{"missing", "nope", false},
		{"empty name", "", false},
		{"parent traversal", "../secret", false},
		{"absolute", "/cfg/secret", false},
		{"missing local", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := src.Read(tt.project, tt.local)
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrProjectNotFound)

			var nf *errors.NotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, "project", nf.ResourceType)
		})
	}
}

func TestSource_Path(t *testing.T) {
	src := newTestSource(t, map[string]string{
		"/cfg/projects/blog.yaml": "name: blog\n",
	})

	path, err := src.Path("blog")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/cfg/projects/blog.yaml"), path)

	path, err = src.Path("fresh")
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/cfg/projects/fresh.yml"), path)

	_, err = src.Path("../escape")
	assert.ErrorIs(t, err, errors.ErrProjectNotFound)
}

func TestSource_Exists(t *testing.T) {
	src := newTestSource(t, map[string]string{
		"/cfg/projects/dev.yml": "name: dev\n",
	})

	assert.True(t, src.Exists("dev"))
	assert.False(t, src.Exists("other"))
	assert.False(t, src.Exists("../projects/dev"))
}

func TestSource_List(t *testing.T) {
	src := newTestSource(t, map[string]string{
		"/cfg/projects/zeta.yml":     "",
		"/cfg/projects/alpha.yaml":   "",
		"/cfg/projects/alpha.yml":    "",
		"/cfg/projects/work/api.yml": "",
		"/cfg/projects/notes.txt":    "",
	})

	names, err := src.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "work/api", "zeta"}, names)
}

func TestSource_List_MissingDir(t *testing.T) {
	src := newTestSource(t, nil)

	names, err := src.List()
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.NotNil(t, names)
}
