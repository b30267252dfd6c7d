package cookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// tempPrefix names the scratch directories used for database copies.
const tempPrefix = "syc-cookies-*"

// SafeCopy copies a SQLite cookie database and its -wal and -shm companions
// into a new temporary directory, so the browser holding the original
// cannot lock us out. It returns the path of the copy and a cleanup
// function that removes the directory; the caller must call it.
func SafeCopy(srcPath string) (copied string, cleanup func(), err error) {
	if err := checkSource(srcPath); err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp("", tempPrefix)
	if err != nil {
		return "", nil, fmt.Errorf("error: cannot create temp directory: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	copied = filepath.Join(dir, filepath.Base(srcPath))
	if err := copyFile(srcPath, copied); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(srcPath + suffix); err == nil {
			_ = copyFile(srcPath+suffix, copied+suffix)
		}
	}
	return copied, cleanup, nil
}

// checkSource rejects missing, directory and empty cookie files.
func checkSource(path string) error {
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return fmt.Errorf("error: cookie file not found: %s", path)
	case info.IsDir():
		return fmt.Errorf("error: %s is a directory, expected a cookie file path or 'auto'", path)
	case info.Size() == 0:
		return fmt.Errorf("error: cookie file at %s is empty or corrupted", path)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error: cannot open source file %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error: cannot create destination file %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("error: cannot copy file: %w", err)
	}
	return out.Close()
}
