package fileutil

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"
)

// MoveFile moves a file into destDir and returns its new path.
// A name already taken in destDir gets a counter (e.g., clip_1.mp4).
func MoveFile(src, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destDir, err)
	}

	destName := findUniqueName(filepath.Base(src), func(name string) bool {
		_, err := os.Lstat(filepath.Join(destDir, name))
		return errors.Is(err, os.ErrNotExist)
	})

	dest := filepath.Join(destDir, destName)
	if err := moveAcrossFS(src, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// findUniqueName returns filename, or filename with a counter before the
// extension, whichever isAvailable accepts first
func findUniqueName(filename string, isAvailable func(string) bool) string {
	if isAvailable(filename) {
		return filename
	}

	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", name, counter, ext)
		if isAvailable(candidate) {
			return candidate
		}
	}
}

// moveAcrossFS renames src to dest, copying and removing when they live
// on different filesystems
func moveAcrossFS(src, dest string) error {
	err := os.Rename(src, dest)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if !errors.As(err, &linkErr) || !errors.Is(linkErr.Err, syscall.EXDEV) {
		return err
	}

	if err := copyFile(src, dest); err != nil {
		return err
	}
	return os.Remove(src)
}

// copyFile copies src to dest, keeping mode and modification time
func copyFile(src, dest string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}

	destFile, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, srcInfo.Mode())
	if err != nil {
		return err
	}

	if _, err := io.Copy(destFile, srcFile); err != nil {
		destFile.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := destFile.Close(); err != nil {
		os.Remove(dest)
		return err
	}

	return os.Chtimes(dest, srcInfo.ModTime(), srcInfo.ModTime())
}

// MoveToTrash moves a file to the system trash.
// - Linux: freedesktop.org trash under ~/.local/share/Trash
// - macOS: ~/.Trash
// - Windows: Recycle Bin
func MoveToTrash(src string) error {
	switch runtime.GOOS {
	case "windows":
		return moveToRecycleBin(src)
	case "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		return moveToFreedesktopTrash(src, filepath.Join(home, ".local", "share", "Trash"))
	default:
		trashDir, err := trashDir()
		if err != nil {
			return err
		}
		_, err = MoveFile(src, trashDir)
		return err
	}
}

// trashDir returns the per-user trash folder of platforms without a
// structured trash
func trashDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	if runtime.GOOS == "darwin" {
		return filepath.Join(home, ".Trash"), nil
	}
	return filepath.Join(home, ".mediadupfinder", "trash"), nil
}

// moveToFreedesktopTrash moves a file into trashRoot/files and writes the
// matching .trashinfo record so file managers can restore it
func moveToFreedesktopTrash(src, trashRoot string) error {
	filesDir := filepath.Join(trashRoot, "files")
	infoDir := filepath.Join(trashRoot, "info")
	for _, dir := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create trash directory: %w", err)
		}
	}

	absPath, err := filepath.Abs(src)
	if err != nil {
		return err
	}

	// The name must be free in both files/ and info/.
	destName := findUniqueName(filepath.Base(src), func(name string) bool {
		_, err1 := os.Lstat(filepath.Join(filesDir, name))
		_, err2 := os.Lstat(filepath.Join(infoDir, name+".trashinfo"))
		return errors.Is(err1, os.ErrNotExist) && errors.Is(err2, os.ErrNotExist)
	})

	infoPath := filepath.Join(infoDir, destName+".trashinfo")
	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		trashInfoPath(absPath),
		time.Now().Format("2006-01-02T15:04:05"))
	if err := os.WriteFile(infoPath, []byte(info), 0600); err != nil {
		return fmt.Errorf("failed to write trash info: %w", err)
	}

	if err := moveAcrossFS(src, filepath.Join(filesDir, destName)); err != nil {
		os.Remove(infoPath)
		return err
	}
	return nil
}

// trashInfoPath escapes every segment of an absolute path the way the
// Path key of a .trashinfo file expects
func trashInfoPath(absPath string) string {
	segments := strings.Split(filepath.ToSlash(absPath), "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return strings.Join(segments, "/")
}
