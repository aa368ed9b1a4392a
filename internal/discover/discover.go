// Package discover walks a project tree and produces the ordered candidate
// file records that feed the rest of the assembly pipeline.
package discover

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ctxpack/ctxpack/internal/ignore"
	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	errorPathMissingFormat  = "path '%s' does not exist"
	errorNotDirectoryError  = "path '%s' is not a directory"
	errorWalkFormat         = "walking '%s': %w"
	warningAccessFormat     = "skipping %s: %v"
	warningFileInfoFormat   = "skipping %s: cannot stat: %v"
	rootRelativePath        = "."
)

// Options configures one discovery pass. A nil RuleSet disables rule
// evaluation entirely; an empty IncludeExtensions keeps every file.
type Options struct {
	RuleSet           *ignore.RuleSet
	IncludeExtensions []string
}

// Discover walks the tree rooted at rootPath depth-first in lexicographic
// order and returns one record per surviving file. Directories with an
// excluding verdict are pruned before descent, so nothing beneath them is ever
// statted or opened. File contents are not read here; every returned record
// starts with Included set, leaving the interactive stage free to flip it.
// Per-entry access failures become warnings; only an unusable root is fatal.
func Discover(rootPath string, options Options) ([]types.FileRecord, []string, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)

	rootInformation, rootStatError := os.Stat(cleanedRootPath)
	if rootStatError != nil {
		if os.IsNotExist(rootStatError) {
			return nil, nil, fmt.Errorf(errorPathMissingFormat, rootPath)
		}
		return nil, nil, rootStatError
	}
	if !rootInformation.IsDir() {
		return nil, nil, fmt.Errorf(errorNotDirectoryError, rootPath)
	}

	var records []types.FileRecord
	var warnings []string

	directoryWalkError := filepath.WalkDir(cleanedRootPath, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		if accessError != nil {
			if walkedPath == cleanedRootPath {
				return accessError
			}
			warnings = append(warnings, fmt.Sprintf(warningAccessFormat, walkedPath, accessError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relativePath := utils.RelativePathOrSelf(walkedPath, cleanedRootPath)
		if relativePath == rootRelativePath {
			return nil
		}

		if directoryEntry.IsDir() {
			if directoryEntry.Name() == utils.GitDirectoryName {
				return filepath.SkipDir
			}
			if options.RuleSet.Excluded(relativePath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if options.RuleSet.Excluded(relativePath, false) {
			return nil
		}
		if !utils.MatchesExtension(directoryEntry.Name(), options.IncludeExtensions) {
			return nil
		}

		fileInformation, informationError := directoryEntry.Info()
		if informationError != nil {
			warnings = append(warnings, fmt.Sprintf(warningFileInfoFormat, walkedPath, informationError))
			return nil
		}

		records = append(records, types.FileRecord{
			AbsolutePath: walkedPath,
			RelativePath: relativePath,
			Extension:    filepath.Ext(directoryEntry.Name()),
			SizeBytes:    fileInformation.Size(),
			Included:     true,
		})
		return nil
	})
	if directoryWalkError != nil {
		return nil, warnings, fmt.Errorf(errorWalkFormat, rootPath, directoryWalkError)
	}

	return records, warnings, nil
}
