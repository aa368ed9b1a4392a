// Package utils contains general helper functions used across the ctxpack tool.
package utils

import (
	"path/filepath"
)

// Ignore file constants used across the project.
const (
	// GitIgnoreFileName is the name of the Git ignore file.
	GitIgnoreFileName = ".gitignore"
	// ContextIgnoreFileName is the name of the supplementary ignore file.
	ContextIgnoreFileName = ".contextignore"
	// GitDirectoryName is the name of the Git repository directory.
	GitDirectoryName = ".git"
)

// Configuration file locations.
const (
	// ConfigFileName is the per-project configuration file name.
	ConfigFileName = ".ctxpack.yaml"
	// GlobalConfigDirectoryName is the per-user configuration directory under the home directory.
	GlobalConfigDirectoryName = ".config/ctxpack"
	// GlobalConfigFileName is the configuration file name inside the global directory.
	GlobalConfigFileName = "config.yaml"
)

// Messages shared with the command entry point.
const (
	// LoggerInitializationFailedMessageFormat reports a failed logger construction.
	LoggerInitializationFailedMessageFormat = "failed to initialize logger: %w"
	// ApplicationExecutionFailedMessage prefixes a fatal application error.
	ApplicationExecutionFailedMessage = "application failed"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RelativePathOrSelf calculates the relative path from root to fullPath.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// MatchesExtension reports whether a file name matches one of the provided
// suffixes. Suffix matching keeps extensionless entries such as "Dockerfile"
// and multi-dot entries such as ".env.example" usable as filters. An empty
// suffix list matches every name.
func MatchesExtension(fileName string, extensionSuffixes []string) bool {
	if len(extensionSuffixes) == 0 {
		return true
	}
	for _, suffix := range extensionSuffixes {
		if suffix == "" {
			continue
		}
		if len(fileName) >= len(suffix) && fileName[len(fileName)-len(suffix):] == suffix {
			return true
		}
	}
	return false
}
