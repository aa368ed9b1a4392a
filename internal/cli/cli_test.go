package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/types"
)

func boolPointer(value bool) *bool {
	return &value
}

func intPointer(value int) *int {
	return &value
}

func parsePackFlags(t *testing.T, arguments []string) (packFlagValues, *cobra.Command) {
	t.Helper()
	var flagValues packFlagValues
	packCommand := &cobra.Command{Use: "pack"}
	registerPackFlags(packCommand, &flagValues)
	normalizedArguments := normalizeFlagArguments(packCommand, arguments)
	if parseError := packCommand.Flags().Parse(normalizedArguments); parseError != nil {
		t.Fatalf("unexpected parse error: %v", parseError)
	}
	return flagValues, packCommand
}

func TestResolvePackSettingsPrecedence(t *testing.T) {
	testCases := []struct {
		name          string
		arguments     []string
		configuration config.PackCommandConfiguration
		verify        func(*testing.T, packSettings)
	}{
		{
			name:          "built_in_defaults",
			arguments:     nil,
			configuration: config.PackCommandConfiguration{},
			verify: func(t *testing.T, settings packSettings) {
				if settings.outputFormat != types.FormatText {
					t.Fatalf("expected default format %q, got %q", types.FormatText, settings.outputFormat)
				}
				if !settings.includeHeader || !settings.includeTree {
					t.Fatalf("expected header and tree enabled by default")
				}
				if !settings.useGitignore || !settings.useContextIgnore {
					t.Fatalf("expected ignore layers enabled by default")
				}
				if settings.tokenizerModel != defaultTokenizerModelName {
					t.Fatalf("expected default model %q, got %q", defaultTokenizerModelName, settings.tokenizerModel)
				}
				if settings.maxTokensPerPart != 0 || settings.warnTokensPerPart != 0 {
					t.Fatalf("expected zero token limits by default")
				}
				if settings.tokensEnabled || settings.scanSecrets || settings.interactive || settings.copyToClipboard {
					t.Fatalf("expected optional stages disabled by default")
				}
			},
		},
		{
			name:      "configuration_applies_when_flags_unset",
			arguments: nil,
			configuration: config.PackCommandConfiguration{
				Format:      types.FormatJSON,
				Header:      boolPointer(false),
				ScanSecrets: boolPointer(true),
				Tokens: config.TokenConfiguration{
					Enabled: boolPointer(true),
					Model:   "gpt-4",
				},
				Limits: config.LimitConfiguration{
					MaxTokens:  intPointer(512),
					WarnTokens: intPointer(400),
				},
				Paths: config.PathConfiguration{
					Extensions:   []string{".go"},
					UseGitignore: boolPointer(false),
				},
			},
			verify: func(t *testing.T, settings packSettings) {
				if settings.outputFormat != types.FormatJSON {
					t.Fatalf("expected configured format, got %q", settings.outputFormat)
				}
				if settings.includeHeader {
					t.Fatalf("expected configured header disable")
				}
				if !settings.scanSecrets || !settings.tokensEnabled {
					t.Fatalf("expected configured scanning and counting")
				}
				if settings.tokenizerModel != "gpt-4" {
					t.Fatalf("expected configured model, got %q", settings.tokenizerModel)
				}
				if settings.maxTokensPerPart != 512 || settings.warnTokensPerPart != 400 {
					t.Fatalf("expected configured limits, got %d and %d", settings.maxTokensPerPart, settings.warnTokensPerPart)
				}
				if !reflect.DeepEqual(settings.includeExtensions, []string{".go"}) {
					t.Fatalf("expected configured extensions, got %v", settings.includeExtensions)
				}
				if settings.useGitignore {
					t.Fatalf("expected configured gitignore disable")
				}
			},
		},
		{
			name:      "flags_override_configuration",
			arguments: []string{"--format", "text", "--no-header=false", "--max-tokens", "100", "--ext", ".md", "--model", "o200k"},
			configuration: config.PackCommandConfiguration{
				Format: types.FormatJSON,
				Header: boolPointer(false),
				Tokens: config.TokenConfiguration{Model: "gpt-4"},
				Limits: config.LimitConfiguration{MaxTokens: intPointer(512)},
				Paths:  config.PathConfiguration{Extensions: []string{".go"}},
			},
			verify: func(t *testing.T, settings packSettings) {
				if settings.outputFormat != types.FormatText {
					t.Fatalf("expected flag format to win, got %q", settings.outputFormat)
				}
				if !settings.includeHeader {
					t.Fatalf("expected explicit --no-header=false to re-enable the header")
				}
				if settings.maxTokensPerPart != 100 {
					t.Fatalf("expected flag limit to win, got %d", settings.maxTokensPerPart)
				}
				if !reflect.DeepEqual(settings.includeExtensions, []string{".md"}) {
					t.Fatalf("expected flag extensions to replace configured ones, got %v", settings.includeExtensions)
				}
				if settings.tokenizerModel != "o200k" {
					t.Fatalf("expected flag model to win, got %q", settings.tokenizerModel)
				}
			},
		},
		{
			name:      "exclude_patterns_merge_and_deduplicate",
			arguments: []string{"-e", "vendor", "-e", "dist"},
			configuration: config.PackCommandConfiguration{
				Paths: config.PathConfiguration{Exclude: []string{"dist", "coverage"}},
			},
			verify: func(t *testing.T, settings packSettings) {
				expected := []string{"dist", "coverage", "vendor"}
				if !reflect.DeepEqual(settings.excludePatterns, expected) {
					t.Fatalf("expected merged excludes %v, got %v", expected, settings.excludePatterns)
				}
			},
		},
		{
			name:          "no_tree_flag_disables_tree",
			arguments:     []string{"--no-tree"},
			configuration: config.PackCommandConfiguration{Tree: boolPointer(true)},
			verify: func(t *testing.T, settings packSettings) {
				if settings.includeTree {
					t.Fatalf("expected --no-tree to disable the tree")
				}
			},
		},
		{
			name:          "max_tokens_budget_enables_counting",
			arguments:     []string{"--max-tokens", "2048"},
			configuration: config.PackCommandConfiguration{},
			verify: func(t *testing.T, settings packSettings) {
				if !settings.tokensEnabled {
					t.Fatalf("expected a token budget to enable counting")
				}
			},
		},
		{
			name:      "configured_warn_budget_enables_counting",
			arguments: nil,
			configuration: config.PackCommandConfiguration{
				Limits: config.LimitConfiguration{WarnTokens: intPointer(300)},
			},
			verify: func(t *testing.T, settings packSettings) {
				if !settings.tokensEnabled {
					t.Fatalf("expected a configured warn threshold to enable counting")
				}
			},
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			flagValues, packCommand := parsePackFlags(t, testCase.arguments)
			settings := resolvePackSettings(flagValues, packCommand.Flags(), testCase.configuration)
			testCase.verify(t, settings)
		})
	}
}

func TestResolveTreeSettingsHonorsConfigurationAndFlags(t *testing.T) {
	var flagValues treeFlagValues
	treeCommand := &cobra.Command{Use: "tree"}
	registerTreeFlags(treeCommand, &flagValues)
	if parseError := treeCommand.Flags().Parse([]string{"--no-gitignore", "-e", "vendor"}); parseError != nil {
		t.Fatalf("unexpected parse error: %v", parseError)
	}

	configuration := config.TreeCommandConfiguration{
		Paths: config.PathConfiguration{
			Exclude:          []string{"dist"},
			Extensions:       []string{".go"},
			UseGitignore:     boolPointer(true),
			UseContextIgnore: boolPointer(false),
		},
	}
	settings := resolveTreeSettings(flagValues, treeCommand.Flags(), configuration)

	if settings.useGitignore {
		t.Fatalf("expected --no-gitignore to win over configuration")
	}
	if settings.useContextIgnore {
		t.Fatalf("expected configured contextignore disable to apply")
	}
	if !reflect.DeepEqual(settings.excludePatterns, []string{"dist", "vendor"}) {
		t.Fatalf("expected merged excludes, got %v", settings.excludePatterns)
	}
	if !reflect.DeepEqual(settings.includeExtensions, []string{".go"}) {
		t.Fatalf("expected configured extensions, got %v", settings.includeExtensions)
	}
}

func TestPartFileName(t *testing.T) {
	testCases := []struct {
		name       string
		outputPath string
		partNumber int
		totalParts int
		expected   string
	}{
		{
			name:       "single_part_keeps_plain_name",
			outputPath: "context.txt",
			partNumber: 1,
			totalParts: 1,
			expected:   "context.txt",
		},
		{
			name:       "multi_part_inserts_number_before_extension",
			outputPath: "context.txt",
			partNumber: 2,
			totalParts: 3,
			expected:   "context-part-2.txt",
		},
		{
			name:       "multi_part_without_extension_appends_number",
			outputPath: "snapshot",
			partNumber: 1,
			totalParts: 2,
			expected:   "snapshot-part-1",
		},
		{
			name:       "nested_path_keeps_directory",
			outputPath: filepath.Join("out", "context.json"),
			partNumber: 3,
			totalParts: 3,
			expected:   filepath.Join("out", "context-part-3.json"),
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			resolved := partFileName(testCase.outputPath, testCase.partNumber, testCase.totalParts)
			if resolved != testCase.expected {
				t.Fatalf("expected %q, got %q", testCase.expected, resolved)
			}
		})
	}
}

func TestResolveRootDirectory(t *testing.T) {
	temporaryDirectory := t.TempDir()
	filePath := filepath.Join(temporaryDirectory, "plain.txt")
	if writeError := os.WriteFile(filePath, []byte("content"), 0o644); writeError != nil {
		t.Fatalf("unexpected write error: %v", writeError)
	}

	resolvedPath, resolveError := resolveRootDirectory(temporaryDirectory)
	if resolveError != nil {
		t.Fatalf("unexpected error for existing directory: %v", resolveError)
	}
	if !filepath.IsAbs(resolvedPath) {
		t.Fatalf("expected absolute path, got %q", resolvedPath)
	}

	_, missingError := resolveRootDirectory(filepath.Join(temporaryDirectory, "absent"))
	if missingError == nil || !strings.Contains(missingError.Error(), "does not exist") {
		t.Fatalf("expected missing path error, got %v", missingError)
	}

	_, fileError := resolveRootDirectory(filePath)
	if fileError == nil || !strings.Contains(fileError.Error(), "is not a directory") {
		t.Fatalf("expected directory error, got %v", fileError)
	}
}

func TestIsSupportedFormat(t *testing.T) {
	testCases := []struct {
		format   string
		expected bool
	}{
		{format: types.FormatText, expected: true},
		{format: types.FormatJSON, expected: true},
		{format: "xml", expected: false},
		{format: "", expected: false},
	}

	for _, testCase := range testCases {
		if isSupportedFormat(testCase.format) != testCase.expected {
			t.Fatalf("expected isSupportedFormat(%q) to be %t", testCase.format, testCase.expected)
		}
	}
}

func TestCreateRootCommandRegistersSubcommands(t *testing.T) {
	rootCommand := createRootCommand(zap.NewNop())

	expectedNames := []string{"pack", "tree", "init"}
	for _, expectedName := range expectedNames {
		found := false
		for _, childCommand := range rootCommand.Commands() {
			if childCommand.Name() == expectedName {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected root command to register %q", expectedName)
		}
	}
}
