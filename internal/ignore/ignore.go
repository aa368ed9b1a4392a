// Package ignore compiles layered path-exclusion rules and evaluates them with
// gitignore semantics. Layers are ordered default → gitignore → contextignore →
// user excludes; the last matching rule across all layers decides a path's fate.
package ignore

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	commentLinePrefix       = "#"
	warningUnreadableFormat = "skipping unreadable ignore file %s: %v"
	warningWalkEntryFormat  = "skipping %s while collecting ignore files: %v"
	errorRootInaccessible   = "cannot access root %s: %w"
	rootRelativeDirectory   = "."
	pathSegmentSeparator    = "/"
)

// LayerOrigin identifies the source of one rule layer.
type LayerOrigin string

const (
	LayerDefault       LayerOrigin = "default"
	LayerGitignore     LayerOrigin = "gitignore"
	LayerContextIgnore LayerOrigin = "contextignore"
	LayerUserExclude   LayerOrigin = "user-exclude"
)

// DefaultExcludePatterns is the built-in earliest layer. It keeps dependency
// trees, editor state, and secret-bearing env files out of assembled context
// unless a later layer explicitly re-includes them.
var DefaultExcludePatterns = []string{
	".git/",
	"node_modules/",
	"vendor/",
	"__pycache__/",
	".venv/",
	"package-lock.json",
	"storage/",
	"public/build/",
	".idea/",
	".vscode/",
	".env",
	".env.*",
	"*.pyc",
	"*.log",
}

// BuildOptions controls which layers contribute rules beyond the defaults.
type BuildOptions struct {
	UseGitignore     bool
	UseContextIgnore bool
	ExtraExcludes    []string
}

type ruleLayer struct {
	origin   LayerOrigin
	patterns []gitignore.Pattern
}

// RuleSet holds the compiled rule layers for one project root. Immutable once
// built.
type RuleSet struct {
	layers []ruleLayer
}

// Build compiles the rule layers for the tree rooted at rootPath. Gitignore
// files are collected at the root and every reachable subdirectory, each
// pattern scoped to the directory that declared it, so nearer rules override
// ancestor rules exactly as git evaluates them. Directories already excluded by
// earlier rules are not descended into and contribute no rules. Unreadable
// ignore files are reported as warnings and skipped; only an inaccessible root
// is fatal.
func Build(rootPath string, options BuildOptions) (*RuleSet, []string, error) {
	if _, statError := os.Stat(rootPath); statError != nil {
		return nil, nil, fmt.Errorf(errorRootInaccessible, rootPath, statError)
	}

	var warnings []string
	defaultLayer := ruleLayer{origin: LayerDefault, patterns: compilePatternLines(DefaultExcludePatterns, nil)}
	layers := []ruleLayer{defaultLayer}

	if options.UseGitignore {
		gitignorePatterns, gitignoreWarnings, collectError := collectGitignorePatterns(rootPath, defaultLayer)
		warnings = append(warnings, gitignoreWarnings...)
		if collectError != nil {
			return nil, warnings, collectError
		}
		layers = append(layers, ruleLayer{origin: LayerGitignore, patterns: gitignorePatterns})
	}

	if options.UseContextIgnore {
		contextIgnorePath := filepath.Join(rootPath, utils.ContextIgnoreFileName)
		contextPatterns, loadWarning := loadPatternFile(contextIgnorePath, nil)
		if loadWarning != "" {
			warnings = append(warnings, loadWarning)
		}
		layers = append(layers, ruleLayer{origin: LayerContextIgnore, patterns: contextPatterns})
	}

	userPatterns := compilePatternLines(utils.DeduplicatePatterns(options.ExtraExcludes), nil)
	layers = append(layers, ruleLayer{origin: LayerUserExclude, patterns: userPatterns})

	return &RuleSet{layers: layers}, warnings, nil
}

// Excluded reports the final verdict for a slash-separated path relative to the
// build root. Layers are consulted from last to first and, within a layer, from
// the last declared pattern to the first; the first decisive match wins, which
// realizes last-opinion-wins over the forward declaration order. A path no rule
// matches is included.
func (ruleSet *RuleSet) Excluded(relativePath string, isDirectory bool) bool {
	if ruleSet == nil || relativePath == "" || relativePath == rootRelativeDirectory {
		return false
	}
	pathSegments := strings.Split(filepath.ToSlash(relativePath), pathSegmentSeparator)

	for layerIndex := len(ruleSet.layers) - 1; layerIndex >= 0; layerIndex-- {
		layerPatterns := ruleSet.layers[layerIndex].patterns
		for patternIndex := len(layerPatterns) - 1; patternIndex >= 0; patternIndex-- {
			switch layerPatterns[patternIndex].Match(pathSegments, isDirectory) {
			case gitignore.Exclude:
				return true
			case gitignore.Include:
				return false
			}
		}
	}
	return false
}

// collectGitignorePatterns walks the directory tree and loads every .gitignore
// in pre-order, so ancestor patterns always precede descendant patterns within
// the layer. A probe rule set tracking the defaults plus the patterns collected
// so far prunes the walk: gitignore files inside already-excluded directories
// are never read, matching git's own behavior.
func collectGitignorePatterns(rootPath string, defaultLayer ruleLayer) ([]gitignore.Pattern, []string, error) {
	var warnings []string
	probe := &RuleSet{layers: []ruleLayer{defaultLayer, {origin: LayerGitignore}}}

	walkError := filepath.WalkDir(rootPath, func(currentPath string, entry fs.DirEntry, entryError error) error {
		if entryError != nil {
			if currentPath == rootPath {
				return fmt.Errorf(errorRootInaccessible, rootPath, entryError)
			}
			warnings = append(warnings, fmt.Sprintf(warningWalkEntryFormat, currentPath, entryError))
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}

		relativeDirectory := utils.RelativePathOrSelf(currentPath, rootPath)
		if relativeDirectory != rootRelativeDirectory {
			if entry.Name() == utils.GitDirectoryName {
				return filepath.SkipDir
			}
			if probe.Excluded(relativeDirectory, true) {
				return filepath.SkipDir
			}
		}

		directoryPatterns, loadWarning := loadPatternFile(filepath.Join(currentPath, utils.GitIgnoreFileName), domainForDirectory(relativeDirectory))
		if loadWarning != "" {
			warnings = append(warnings, loadWarning)
		}
		probe.layers[1].patterns = append(probe.layers[1].patterns, directoryPatterns...)
		return nil
	})
	if walkError != nil {
		return nil, warnings, walkError
	}
	return probe.layers[1].patterns, warnings, nil
}

// loadPatternFile reads one gitignore-syntax file. A missing file contributes
// nothing; any other failure produces a warning string instead of an error so a
// single unreadable file cannot stop the run.
func loadPatternFile(filePath string, domain []string) ([]gitignore.Pattern, string) {
	fileHandle, openError := os.Open(filePath)
	if openError != nil {
		if os.IsNotExist(openError) {
			return nil, ""
		}
		return nil, fmt.Sprintf(warningUnreadableFormat, filePath, openError)
	}
	defer fileHandle.Close()

	var lines []string
	lineScanner := bufio.NewScanner(fileHandle)
	for lineScanner.Scan() {
		lines = append(lines, lineScanner.Text())
	}
	if scanError := lineScanner.Err(); scanError != nil {
		return nil, fmt.Sprintf(warningUnreadableFormat, filePath, scanError)
	}
	return compilePatternLines(lines, domain), ""
}

// compilePatternLines turns raw lines into compiled patterns, skipping blank
// lines and comments. Pattern compilation itself is total, so a malformed line
// degrades to a pattern that never matches instead of failing the run.
func compilePatternLines(lines []string, domain []string) []gitignore.Pattern {
	patterns := make([]gitignore.Pattern, 0, len(lines))
	for _, rawLine := range lines {
		trimmedLine := strings.TrimRight(rawLine, " \t\r")
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, commentLinePrefix) {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(trimmedLine, domain))
	}
	return patterns
}

// domainForDirectory converts a root-relative directory into the pattern domain
// go-git expects: nil for the root, path segments otherwise.
func domainForDirectory(relativeDirectory string) []string {
	if relativeDirectory == rootRelativeDirectory {
		return nil
	}
	return strings.Split(relativeDirectory, pathSegmentSeparator)
}
