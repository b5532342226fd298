package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/scientificLibs/PDFxTMD/pdf"
	"github.com/scientificLibs/PDFxTMD/pdf/info"
	"github.com/scientificLibs/PDFxTMD/pdf/reader"
)

// PathEnv lists extra data directories, separated like PATH.
const PathEnv = "PDFxTMD_PATH"

// Locator resolves set names to files under a list of data directories.
// A set lives in <dir>/<set>/ with <set>.info and one <set>_NNNN.dat per member.
type Locator struct {
	Paths []string
}

// NewLocator searches paths first, then the PDFxTMD_PATH directories, then
// the working directory.
func NewLocator(paths ...string) *Locator {
	all := append([]string(nil), paths...)
	if env := os.Getenv(PathEnv); env != "" {
		for _, p := range filepath.SplitList(env) {
			if p = strings.TrimSpace(p); p != "" {
				all = append(all, p)
			}
		}
	}
	all = append(all, ".")
	return &Locator{Paths: all}
}

// SetDir returns the first directory that holds set's info file.
func (l *Locator) SetDir(set string) (string, error) {
	if set == "" || strings.ContainsAny(set, `/\`) || set == "." || set == ".." {
		return "", pdf.Errorf(pdf.KindInvalidInput, "invalid set name %q", set)
	}
	for _, p := range l.Paths {
		dir := filepath.Join(p, set)
		if st, err := os.Stat(filepath.Join(dir, set+".info")); err == nil && !st.IsDir() {
			return dir, nil
		}
	}
	return "", pdf.Errorf(pdf.KindFileLoad, "set %q not found in %v", set, l.Paths)
}

// InfoPath returns the path of set's info file.
func (l *Locator) InfoPath(set string) (string, error) {
	dir, err := l.SetDir(set)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, set+".info"), nil
}

// MemberPath returns the data file of one member.
func (l *Locator) MemberPath(set string, member int) (string, error) {
	dir, err := l.SetDir(set)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, MemberFile(set, member))
	if _, err := os.Stat(path); err != nil {
		return "", pdf.Errorf(pdf.KindFileLoad, "member %d of %q: %w", member, set, err)
	}
	return path, nil
}

// MemberFile is the file name of a member inside its set directory.
func MemberFile(set string, member int) string {
	return fmt.Sprintf("%s_%04d.dat", set, member)
}

// Info loads and validates set's info file.
func (l *Locator) Info(set string) (*info.Info, error) {
	path, err := l.InfoPath(set)
	if err != nil {
		return nil, err
	}
	return info.Load(path)
}

// Load is the default Loader: info file, member check, reader selection, grid.
func (l *Locator) Load(ctx context.Context, key Key) (*pdf.Grid, *info.Info, error) {
	in, err := l.Info(key.Set)
	if err != nil {
		return nil, nil, err
	}
	if key.Member < 0 || key.Member >= in.NumMembers {
		return nil, nil, pdf.Errorf(pdf.KindInvalidInput, "member %d of %q outside [0, %d)", key.Member, key.Set, in.NumMembers)
	}
	rd, err := reader.ForInfo(in)
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	path, err := l.MemberPath(key.Set, key.Member)
	if err != nil {
		return nil, nil, err
	}
	g, err := reader.ReadFile(rd, path, in, key.Member)
	if err != nil {
		return nil, nil, err
	}
	return g, in, nil
}
