package cliutil

import (
	"os"
	"path/filepath"
)

// FindWDFile attempts to find a named file relative to the current working
// directory, checking every parent directory until one is found.
// It returns stat info and an absolute path, or a nil info and empty path if
// no such file exists.
func FindWDFile(name string) (os.FileInfo, string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, "", err
	}
	return FindFileUp(wd, name)
}

// FindFileUp is like FindWDFile, but starts from dir rather than the current
// working directory.
func FindFileUp(dir, name string) (os.FileInfo, string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, "", err
	}
	for {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil {
			return info, path, nil
		}
		if !os.IsNotExist(err) {
			return nil, "", err
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}
