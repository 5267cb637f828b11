package project

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/Iron-Ham/muxer/internal/errors"
)

// Extensions are the file extensions recognized for project files, in
// lookup order.
var Extensions = []string{".yml", ".yaml"}

// Definition is the raw content of a project file and where it came from.
type Definition struct {
	Path string
	Data []byte
}

// Source locates project files. It performs no parsing or validation.
type Source struct {
	// Fs is the filesystem project files are read from.
	Fs afero.Fs
	// Dir holds named projects as <name>.yml or <name>.yaml.
	Dir string
	// LocalFile is the project file name looked up in WorkDir for local projects.
	LocalFile string
	// WorkDir is the directory searched for LocalFile.
	WorkDir string
}

// NewSource returns a Source backed by the OS filesystem.
func NewSource(dir, localFile, workDir string) *Source {
	return &Source{
		Fs:        afero.NewOsFs(),
		Dir:       dir,
		LocalFile: localFile,
		WorkDir:   workDir,
	}
}

// Read returns the project file for name, or the local project file when
// local is set. A missing file is reported as *errors.NotFoundError.
func (s *Source) Read(name string, local bool) (*Definition, error) {
	if local {
		path := filepath.Join(s.WorkDir, s.LocalFile)
		data, err := afero.ReadFile(s.Fs, path)
		if err != nil {
			return nil, errors.NewNotFoundError("project", s.LocalFile).WithPath(path).WithCause(err)
		}
		return &Definition{Path: path, Data: data}, nil
	}

	if err := checkName(name); err != nil {
		return nil, err
	}

	var tried []string
	for _, ext := range Extensions {
		path := filepath.Join(s.Dir, name+ext)
		data, err := afero.ReadFile(s.Fs, path)
		if err == nil {
			return &Definition{Path: path, Data: data}, nil
		}
		tried = append(tried, path)
	}
	return nil, errors.NewNotFoundError("project", name).WithPath(strings.Join(tried, ", "))
}

// Path returns the file a named project lives in. If no file exists yet the
// .yml path is returned.
func (s *Source) Path(name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	for _, ext := range Extensions {
		path := filepath.Join(s.Dir, name+ext)
		if ok, _ := afero.Exists(s.Fs, path); ok {
			return path, nil
		}
	}
	return filepath.Join(s.Dir, name+Extensions[0]), nil
}

// Exists reports whether a named project file exists.
func (s *Source) Exists(name string) bool {
	if checkName(name) != nil {
		return false
	}
	for _, ext := range Extensions {
		if ok, _ := afero.Exists(s.Fs, filepath.Join(s.Dir, name+ext)); ok {
			return true
		}
	}
	return false
}

// List returns the sorted names of all projects under Dir, including those
// in nested folders ("work/api").
func (s *Source) List() ([]string, error) {
	if ok, err := afero.DirExists(s.Fs, s.Dir); err != nil || !ok {
		return []string{}, nil
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(s.Fs, s.Dir))
	matches, err := doublestar.Glob(fsys, "**/*.{yml,yaml}", doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Wrapf(err, "listing projects in %s", s.Dir)
	}

	names := make([]string, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(m, filepath.Ext(m))
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names, nil
}

// checkName rejects names that would resolve outside Dir.
func checkName(name string) error {
	if name == "" {
		return errors.NewNotFoundError("project", name)
	}
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return errors.NewNotFoundError("project", name)
	}
	for _, seg := range strings.Split(filepath.ToSlash(name), "/") {
		if seg == ".." || seg == "" {
			return errors.NewNotFoundError("project", name)
		}
	}
	return nil
}
