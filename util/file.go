// Package util holds file system helpers shared by the layout, runtime and plugins.
package util

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gruntwork-io/fpack/internal/errors"
	"github.com/mattn/go-zglob"
	homedir "github.com/mitchellh/go-homedir"
)

const (
	DefaultDirPerm  = 0o755
	DefaultFilePerm = 0o644
)

// Return true if the given file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Return true if the given file does not exist
func FileNotExists(path string) bool {
	_, err := os.Stat(path)
	return os.IsNotExist(err)
}

// IsDir returns true if the path points to a directory.
func IsDir(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.IsDir()
}

// IsFile returns true if the path points to a file.
func IsFile(path string) bool {
	fileInfo, err := os.Stat(path)
	return err == nil && fileInfo.Mode().IsRegular()
}

// EnsureDirectory creates a directory at this path if it does not exist, or error if the path exists and is a file.
func EnsureDirectory(path string) error {
	if FileExists(path) && IsFile(path) {
		return errors.New(PathIsNotDirectory{path})
	} else if !FileExists(path) {
		return errors.New(os.MkdirAll(path, DefaultDirPerm))
	}

	return nil
}

// ExpandHome expands a leading `~` to the home directory of the current user.
func ExpandHome(path string) (string, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return "", errors.New(err)
	}

	return expanded, nil
}

// GetPathRelativeTo returns the slash separated path of path relative to basePath.
func GetPathRelativeTo(path string, basePath string) (string, error) {
	if path == "" {
		path = "."
	}

	if basePath == "" {
		basePath = "."
	}

	inputFolderAbs, err := filepath.Abs(basePath)
	if err != nil {
		return "", errors.New(err)
	}

	fileAbs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.New(err)
	}

	relPath, err := filepath.Rel(inputFolderAbs, fileAbs)
	if err != nil {
		return "", errors.New(err)
	}

	return filepath.ToSlash(relPath), nil
}

// Glob returns the sorted paths matching pattern, `**` matches any number of directories.
func Glob(pattern string) ([]string, error) {
	matches, err := zglob.Glob(pattern)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, errors.New(err)
	}

	sort.Strings(matches)

	return matches, nil
}

// CopyFolderContents copies the files and folders within the source folder into the destination
// folder, replacing existing files.
func CopyFolderContents(source, destination string) error {
	return CopyFolderContentsWithFilter(source, destination, func(string) bool { return true })
}

// Copy the files and folders within the source folder into the destination folder. Pass each file and folder through
// the given filter function, with its slash separated path relative to source, and only copy it if the filter returns true.
func CopyFolderContentsWithFilter(source, destination string, filter func(relativePath string) bool) error {
	return copyFolderContents(source, source, destination, filter)
}

func copyFolderContents(root, source, destination string, filter func(relativePath string) bool) error {
	if err := os.MkdirAll(destination, DefaultDirPerm); err != nil {
		return errors.New(err)
	}

	entries, err := os.ReadDir(source)
	if err != nil {
		return errors.New(err)
	}

	for _, entry := range entries {
		file := filepath.Join(source, entry.Name())

		relativePath, err := GetPathRelativeTo(file, root)
		if err != nil {
			return err
		}

		if !filter(relativePath) {
			continue
		}

		dest := filepath.Join(destination, entry.Name())

		if IsDir(file) {
			if err := copyFolderContents(root, file, dest, filter); err != nil {
				return err
			}

			continue
		}

		if err := CopyFile(file, dest); err != nil {
			return err
		}
	}

	return nil
}

// Copy a file from source to destination
func CopyFile(source string, destination string) error {
	contents, err := os.ReadFile(source)
	if err != nil {
		return errors.New(err)
	}

	if err := os.MkdirAll(filepath.Dir(destination), DefaultDirPerm); err != nil {
		return errors.New(err)
	}

	return WriteFileWithSamePermissions(source, destination, contents)
}

// Write a file to the given destination with the given contents using the same permissions as the file at source
func WriteFileWithSamePermissions(source string, destination string, contents []byte) error {
	fileInfo, err := os.Stat(source)
	if err != nil {
		return errors.New(err)
	}

	return errors.New(os.WriteFile(destination, contents, fileInfo.Mode()))
}

// IsDirectoryEmpty - returns true if the given path exists and is a empty directory.
func IsDirectoryEmpty(dirPath string) (bool, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return false, errors.New(err)
	}

	return len(entries) == 0, nil
}

// Custom errors

// PathIsNotDirectory is returned when the given path is unexpectedly not a directory.
type PathIsNotDirectory struct {
	path string
}

func (err PathIsNotDirectory) Error() string {
	return fmt.Sprintf("%s is not a directory", err.path)
}
