// Package config loads the layered application configuration: the global file
// under the user's home directory first, then the project-local file, with
// later layers overriding earlier ones leaf by leaf. Command-line flags stay
// out of this package; the CLI overlays them last.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ctxpack/ctxpack/internal/utils"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds command-specific configuration defaults.
type ApplicationConfiguration struct {
	Pack PackCommandConfiguration `mapstructure:"pack"`
	Tree TreeCommandConfiguration `mapstructure:"tree"`
}

// PackCommandConfiguration defines persistent defaults for the pack command.
// Pointer leaves distinguish "not configured" from an explicit false or zero.
type PackCommandConfiguration struct {
	Format      string             `mapstructure:"format"`
	Header      *bool              `mapstructure:"header"`
	Tree        *bool              `mapstructure:"tree"`
	Interactive *bool              `mapstructure:"interactive"`
	Output      string             `mapstructure:"output"`
	Clipboard   *bool              `mapstructure:"clipboard"`
	ScanSecrets *bool              `mapstructure:"scan_secrets"`
	Tokens      TokenConfiguration `mapstructure:"tokens"`
	Limits      LimitConfiguration `mapstructure:"limits"`
	Paths       PathConfiguration  `mapstructure:"paths"`
}

// TreeCommandConfiguration defines persistent defaults for the tree command.
type TreeCommandConfiguration struct {
	Paths PathConfiguration `mapstructure:"paths"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled       *bool  `mapstructure:"enabled"`
	Model         string `mapstructure:"model"`
	TokenizerFile string `mapstructure:"tokenizer_file"`
}

// LimitConfiguration controls part splitting and warning thresholds.
type LimitConfiguration struct {
	MaxTokens  *int `mapstructure:"max_tokens"`
	WarnTokens *int `mapstructure:"warn_tokens"`
}

// PathConfiguration configures inclusion and exclusion rules for discovery.
type PathConfiguration struct {
	Exclude          []string `mapstructure:"exclude"`
	Extensions       []string `mapstructure:"extensions"`
	UseGitignore     *bool    `mapstructure:"use_gitignore"`
	UseContextIgnore *bool    `mapstructure:"use_contextignore"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	merged.Pack.Paths.Exclude = utils.DeduplicatePatterns(merged.Pack.Paths.Exclude)
	merged.Tree.Paths.Exclude = utils.DeduplicatePatterns(merged.Tree.Paths.Exclude)

	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.ConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Pack = result.Pack.merge(override.Pack)
	result.Tree = result.Tree.merge(override.Tree)
	return result
}

func (config PackCommandConfiguration) merge(override PackCommandConfiguration) PackCommandConfiguration {
	result := config
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Header != nil {
		result.Header = cloneBool(override.Header)
	}
	if override.Tree != nil {
		result.Tree = cloneBool(override.Tree)
	}
	if override.Interactive != nil {
		result.Interactive = cloneBool(override.Interactive)
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	if override.ScanSecrets != nil {
		result.ScanSecrets = cloneBool(override.ScanSecrets)
	}
	result.Tokens = result.Tokens.merge(override.Tokens)
	result.Limits = result.Limits.merge(override.Limits)
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TreeCommandConfiguration) merge(override TreeCommandConfiguration) TreeCommandConfiguration {
	result := config
	result.Paths = result.Paths.merge(override.Paths)
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	if override.TokenizerFile != "" {
		result.TokenizerFile = override.TokenizerFile
	}
	return result
}

func (config LimitConfiguration) merge(override LimitConfiguration) LimitConfiguration {
	result := config
	if override.MaxTokens != nil {
		result.MaxTokens = cloneInt(override.MaxTokens)
	}
	if override.WarnTokens != nil {
		result.WarnTokens = cloneInt(override.WarnTokens)
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if len(override.Exclude) > 0 {
		result.Exclude = append([]string{}, utils.DeduplicatePatterns(override.Exclude)...)
	}
	if len(override.Extensions) > 0 {
		result.Extensions = append([]string{}, override.Extensions...)
	}
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseContextIgnore != nil {
		result.UseContextIgnore = cloneBool(override.UseContextIgnore)
	}
	return result
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
