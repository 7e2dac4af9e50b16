// Package fileutil holds small filesystem helpers shared by CLI commands.
package fileutil

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// BackupSuffix is appended to a file name by Backup.
const BackupSuffix = ".bak"

// Backup copies path to path+BackupSuffix, keeping its permissions, and
// returns the backup path. A missing source returns ("", nil).
func Backup(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%s is not a regular file", path)
	}
	dst := path + BackupSuffix
	if err := CopyFileMode(path, dst, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("back up %s: %w", path, err)
	}
	return dst, nil
}

// CopyFileMode streams src to dst, setting the given file mode on dst.
func CopyFileMode(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
