package fs

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
)

var (
	fileWithCounter   = regexp.MustCompile(`^(.+)\.(\d+)\.([\p{L}\p{N}_]+)$`)
	fileWithExtension = regexp.MustCompile(`^(.+)\.([\p{L}\p{N}_]+)$`)
)

// NextFreeName returns name if nothing exists at dir/name, otherwise the
// first free collision-avoiding variant. Files keep their extension and
// get a counter before it (report.txt, report.1.txt, report.2.txt); an
// existing counter is replaced rather than stacked. Directories and
// names without an extension get the counter appended (docs, docs.1).
func NextFreeName(dir, name string, isDir bool) (string, error) {
	taken, err := exists(filepath.Join(dir, name))
	if err != nil || !taken {
		return name, err
	}

	base, ext := splitName(name, isDir)
	for n := 1; ; n++ {
		candidate := base + "." + strconv.Itoa(n) + ext
		taken, err := exists(filepath.Join(dir, candidate))
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

func splitName(name string, isDir bool) (base, ext string) {
	if isDir {
		return name, ""
	}
	if m := fileWithCounter.FindStringSubmatch(name); m != nil {
		return m[1], "." + m[3]
	}
	if m := fileWithExtension.FindStringSubmatch(name); m != nil {
		return m[1], "." + m[2]
	}
	return name, ""
}

func exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
