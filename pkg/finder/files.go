package finder

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// TableFileExt is the extension of table files in an input directory
const TableFileExt = ".csv"

// FindTableFiles walks the input directory and returns all table files,
// skipping hidden directories such as .git.
func FindTableFiles(root string) ([]string, error) {
	var tableFiles []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if IsTableFile(path) {
			tableFiles = append(tableFiles, path)
		}

		return nil
	})

	return tableFiles, err
}

// IsTableFile reports whether path names a table file
func IsTableFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), TableFileExt)
}
