// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ctxpack/ctxpack/internal/aggregate"
	"github.com/ctxpack/ctxpack/internal/config"
	"github.com/ctxpack/ctxpack/internal/discover"
	"github.com/ctxpack/ctxpack/internal/ignore"
	"github.com/ctxpack/ctxpack/internal/pack"
	"github.com/ctxpack/ctxpack/internal/render"
	"github.com/ctxpack/ctxpack/internal/report"
	"github.com/ctxpack/ctxpack/internal/secrets"
	"github.com/ctxpack/ctxpack/internal/selector"
	"github.com/ctxpack/ctxpack/internal/services/clipboard"
	"github.com/ctxpack/ctxpack/internal/tokenizer"
	"github.com/ctxpack/ctxpack/internal/types"
	"github.com/ctxpack/ctxpack/internal/utils"
)

const (
	excludeFlagName          = "exclude"
	excludeFlagShorthand     = "e"
	extensionFlagName        = "ext"
	formatFlagName           = "format"
	maxTokensFlagName        = "max-tokens"
	warnTokensFlagName       = "warn-tokens"
	tokensFlagName           = "tokens"
	modelFlagName            = "model"
	tokenizerFileFlagName    = "tokenizer-file"
	scanSecretsFlagName      = "scan-secrets"
	noGitignoreFlagName      = "no-gitignore"
	noContextIgnoreFlagName  = "no-contextignore"
	interactiveFlagName      = "interactive"
	interactiveFlagShorthand = "i"
	treeFlagName             = "tree"
	noTreeFlagName           = "no-tree"
	noHeaderFlagName         = "no-header"
	outputFlagName           = "output"
	outputFlagShorthand      = "o"
	copyFlagName             = "copy"
	configFlagName           = "config"
	globalFlagName           = "global"
	forceFlagName            = "force"
	versionFlagName          = "version"
	versionTemplate          = "ctxpack version: %s\n"
	defaultPath              = "."
	rootUse                  = "ctxpack"
	rootShortDescription     = "ctxpack command line interface"
	rootLongDescription      = `ctxpack assembles a filtered snapshot of a project for language model prompts.
It discovers files under layered ignore rules, estimates token costs, warns about
likely secrets, and packs the survivors into token-bounded parts rendered as text
or JSON. Use --version to print the application version.`
	versionFlagDescription = "display application version"
	packUse                = "pack [path]"
	treeUse                = "tree [path]"
	initUse                = "init"
	packAlias              = "p"
	treeAlias              = "t"
	packShortDescription   = "assemble a context snapshot (" + packAlias + ")"
	treeShortDescription   = "list the files discovery would include (" + treeAlias + ")"
	initShortDescription   = "write a starter configuration file"

	// packLongDescription provides detailed help for the pack command.
	packLongDescription = `Assemble the files under a directory into a context snapshot.
Discovery honors .gitignore and .contextignore layers plus --exclude patterns.
Use --max-tokens to split the snapshot into parts and --format to select text or json.`
	// packUsageExample demonstrates pack command usage.
	packUsageExample = `  # Pack the current directory to stdout with token counts
  ctxpack pack --tokens .

  # Write a JSON snapshot of Go sources, splitting at 100000 tokens
  ctxpack pack --ext .go --format json --max-tokens 100000 -o context.json .

  # Pick files interactively and copy the first part to the clipboard
  ctxpack pack -i --copy .`

	// treeLongDescription provides detailed help for the tree command.
	treeLongDescription = `List the files a pack run would include, rendered as a connector tree.
No file content is read; the same ignore and extension options as pack apply.`
	// treeUsageExample demonstrates tree command usage.
	treeUsageExample = `  # Show what pack would include
  ctxpack tree .

  # Restrict the listing to Go sources
  ctxpack tree --ext .go .`

	// initLongDescription provides detailed help for the init command.
	initLongDescription = `Write a starter configuration file with the built-in defaults.
The local target is ` + utils.ConfigFileName + ` in the working directory; --global writes
the file under ~/` + utils.GlobalConfigDirectoryName + ` instead. An existing file is kept
unless --force is set.`

	defaultTokenizerModelName      = "gpt-4o"
	excludeFlagDescription         = "exclude path pattern (repeatable)"
	extensionFlagDescription       = "include only files with this extension (repeatable)"
	formatFlagDescription          = "output format: text or json"
	maxTokensFlagDescription       = "split output into parts of at most this many tokens"
	warnTokensFlagDescription      = "warn when a part exceeds this many tokens"
	tokensFlagDescription          = "include token counts"
	modelFlagDescription           = "tokenizer model to use for token counting"
	tokenizerFileFlagDescription   = "tokenizer.json file for token counting with local models"
	scanSecretsFlagDescription     = "scan file contents for likely secrets"
	noGitignoreFlagDescription     = "do not use .gitignore"
	noContextIgnoreFlagDescription = "do not use .contextignore"
	interactiveFlagDescription     = "select files interactively before packing"
	treeFlagDescription            = "include the project tree"
	noTreeFlagDescription          = "omit the project tree"
	noHeaderFlagDescription        = "omit the meta prompt header"
	outputFlagDescription          = "write output to this file instead of stdout"
	copyFlagDescription            = "copy the first rendered part to the clipboard"
	configFlagDescription          = "configuration file to use instead of " + utils.ConfigFileName
	globalFlagDescription          = "write the global configuration file"
	forceFlagDescription           = "overwrite an existing configuration file"
	invalidFormatMessage           = "Invalid format value '%s'"
	workingDirectoryErrorFormat    = "unable to determine working directory: %w"
	// errorAbsolutePathFormat reports failure to resolve an absolute path.
	errorAbsolutePathFormat = "abs failed for '%s': %w"
	// errorPathMissingFormat reports a missing root path.
	errorPathMissingFormat = "path '%s' does not exist"
	// errorStatFormat reports failure to retrieve file statistics.
	errorStatFormat = "stat failed for '%s': %w"
	// errorNotADirectoryFormat reports a root path that is not a directory.
	errorNotADirectoryFormat    = "path '%s' is not a directory"
	outputWriteErrorFormat      = "unable to write %s: %w"
	noFilesFoundMessage         = "No files found for the specified criteria."
	selectionCancelledMessage   = "selection cancelled; no output produced"
	configurationWrittenFormat  = "configuration written to %s\n"
	clipboardSkippedPartsFormat = "copied part 1 of %d to the clipboard; later parts were not copied\n"
	clipboardCopyFailedFormat   = "clipboard copy failed: %v\n"
	clipboardJSONIgnoredMessage = "--" + copyFlagName + " is ignored for json output"
	partFileNameFormat          = "%s-part-%d%s"
	outputWrittenFormat         = "wrote %s\n"
	outputFileMode              = 0o644
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatText, types.FormatJSON:
		return true
	default:
		return false
	}
}

// Execute runs the ctxpack application.
func Execute(applicationLogger *zap.Logger) error {
	rootCommand := createRootCommand(applicationLogger)
	rootCommand.SetArgs(normalizeFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand(applicationLogger *zap.Logger) *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createPackCommand(applicationLogger),
		createTreeCommand(applicationLogger),
		createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// packFlagValues stores raw pack command flag values before configuration overlay.
type packFlagValues struct {
	excludePatterns      []string
	includeExtensions    []string
	outputFormat         string
	maxTokensPerPart     int
	warnTokensPerPart    int
	tokensEnabled        bool
	tokenizerModel       string
	tokenizerFile        string
	scanSecrets          bool
	disableGitignore     bool
	disableContextIgnore bool
	interactive          bool
	includeTree          bool
	disableTree          bool
	disableHeader        bool
	outputPath           string
	copyToClipboard      bool
	configFilePath       string
}

// treeFlagValues stores raw tree command flag values before configuration overlay.
type treeFlagValues struct {
	excludePatterns      []string
	includeExtensions    []string
	disableGitignore     bool
	disableContextIgnore bool
	configFilePath       string
}

// packSettings holds the effective pack configuration after built-in defaults,
// configuration files, and command line flags are merged.
type packSettings struct {
	rootPath          string
	outputFormat      string
	includeHeader     bool
	includeTree       bool
	interactive       bool
	outputPath        string
	copyToClipboard   bool
	scanSecrets       bool
	tokensEnabled     bool
	tokenizerModel    string
	tokenizerFile     string
	maxTokensPerPart  int
	warnTokensPerPart int
	excludePatterns   []string
	includeExtensions []string
	useGitignore      bool
	useContextIgnore  bool
}

// treeSettings holds the effective tree configuration after merging.
type treeSettings struct {
	excludePatterns   []string
	includeExtensions []string
	useGitignore      bool
	useContextIgnore  bool
}

// createPackCommand returns the pack subcommand.
func createPackCommand(applicationLogger *zap.Logger) *cobra.Command {
	var flagValues packFlagValues

	packCommand := &cobra.Command{
		Use:     packUse,
		Aliases: []string{packAlias},
		Short:   packShortDescription,
		Long:    packLongDescription,
		Example: packUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runPack(applicationLogger, command.Flags(), flagValues, rootPath)
		},
	}

	registerPackFlags(packCommand, &flagValues)
	return packCommand
}

// registerPackFlags registers every pack command flag on the command.
func registerPackFlags(packCommand *cobra.Command, flagValues *packFlagValues) {
	packCommand.Flags().StringArrayVarP(&flagValues.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	packCommand.Flags().StringArrayVar(&flagValues.includeExtensions, extensionFlagName, nil, extensionFlagDescription)
	packCommand.Flags().StringVar(&flagValues.outputFormat, formatFlagName, types.FormatText, formatFlagDescription)
	packCommand.Flags().IntVar(&flagValues.maxTokensPerPart, maxTokensFlagName, 0, maxTokensFlagDescription)
	packCommand.Flags().IntVar(&flagValues.warnTokensPerPart, warnTokensFlagName, 0, warnTokensFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.tokensEnabled, tokensFlagName, false, tokensFlagDescription)
	packCommand.Flags().StringVar(&flagValues.tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	packCommand.Flags().StringVar(&flagValues.tokenizerFile, tokenizerFileFlagName, "", tokenizerFileFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.scanSecrets, scanSecretsFlagName, false, scanSecretsFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.disableContextIgnore, noContextIgnoreFlagName, false, noContextIgnoreFlagDescription)
	packCommand.Flags().BoolVarP(&flagValues.interactive, interactiveFlagName, interactiveFlagShorthand, false, interactiveFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.includeTree, treeFlagName, true, treeFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.disableTree, noTreeFlagName, false, noTreeFlagDescription)
	packCommand.Flags().BoolVar(&flagValues.disableHeader, noHeaderFlagName, false, noHeaderFlagDescription)
	packCommand.Flags().StringVarP(&flagValues.outputPath, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	packCommand.Flags().StringVar(&flagValues.configFilePath, configFlagName, "", configFlagDescription)
	registerCopyFlag(packCommand.Flags(), &flagValues.copyToClipboard)
}

// createTreeCommand returns the tree subcommand.
func createTreeCommand(applicationLogger *zap.Logger) *cobra.Command {
	var flagValues treeFlagValues

	treeCommand := &cobra.Command{
		Use:     treeUse,
		Aliases: []string{treeAlias},
		Short:   treeShortDescription,
		Long:    treeLongDescription,
		Example: treeUsageExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			rootPath := defaultPath
			if len(arguments) > 0 {
				rootPath = arguments[0]
			}
			return runTree(applicationLogger, command.Flags(), flagValues, rootPath)
		},
	}

	registerTreeFlags(treeCommand, &flagValues)
	return treeCommand
}

// registerTreeFlags registers every tree command flag on the command.
func registerTreeFlags(treeCommand *cobra.Command, flagValues *treeFlagValues) {
	treeCommand.Flags().StringArrayVarP(&flagValues.excludePatterns, excludeFlagName, excludeFlagShorthand, nil, excludeFlagDescription)
	treeCommand.Flags().StringArrayVar(&flagValues.includeExtensions, extensionFlagName, nil, extensionFlagDescription)
	treeCommand.Flags().BoolVar(&flagValues.disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	treeCommand.Flags().BoolVar(&flagValues.disableContextIgnore, noContextIgnoreFlagName, false, noContextIgnoreFlagDescription)
	treeCommand.Flags().StringVar(&flagValues.configFilePath, configFlagName, "", configFlagDescription)
}

// createInitCommand returns the init subcommand.
func createInitCommand() *cobra.Command {
	var writeGlobal bool
	var forceOverwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			workingDirectory, workingDirectoryError := os.Getwd()
			if workingDirectoryError != nil {
				return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
			}
			initTarget := config.InitTargetLocal
			if writeGlobal {
				initTarget = config.InitTargetGlobal
			}
			writtenPath, initializationError := config.InitializeConfiguration(config.InitOptions{
				Target:           initTarget,
				Force:            forceOverwrite,
				WorkingDirectory: workingDirectory,
			})
			if initializationError != nil {
				return initializationError
			}
			fmt.Printf(configurationWrittenFormat, writtenPath)
			return nil
		},
	}

	initCommand.Flags().BoolVar(&writeGlobal, globalFlagName, false, globalFlagDescription)
	initCommand.Flags().BoolVar(&forceOverwrite, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// resolvePackSettings merges configuration file values into the built-in
// defaults and applies command line flags on top. A flag changed on the
// command line always wins; an unset flag defers to the configured value.
// A max-tokens or warn-tokens budget enables token counting, since neither
// limit is meaningful without counts.
func resolvePackSettings(flagValues packFlagValues, flagSet *pflag.FlagSet, configuration config.PackCommandConfiguration) packSettings {
	settings := packSettings{
		outputFormat:     types.FormatText,
		includeHeader:    true,
		includeTree:      true,
		tokenizerModel:   defaultTokenizerModelName,
		useGitignore:     true,
		useContextIgnore: true,
	}

	if configuration.Format != "" {
		settings.outputFormat = configuration.Format
	}
	if configuration.Header != nil {
		settings.includeHeader = *configuration.Header
	}
	if configuration.Tree != nil {
		settings.includeTree = *configuration.Tree
	}
	if configuration.Interactive != nil {
		settings.interactive = *configuration.Interactive
	}
	if configuration.Output != "" {
		settings.outputPath = configuration.Output
	}
	if configuration.Clipboard != nil {
		settings.copyToClipboard = *configuration.Clipboard
	}
	if configuration.ScanSecrets != nil {
		settings.scanSecrets = *configuration.ScanSecrets
	}
	if configuration.Tokens.Enabled != nil {
		settings.tokensEnabled = *configuration.Tokens.Enabled
	}
	if configuration.Tokens.Model != "" {
		settings.tokenizerModel = configuration.Tokens.Model
	}
	if configuration.Tokens.TokenizerFile != "" {
		settings.tokenizerFile = configuration.Tokens.TokenizerFile
	}
	if configuration.Limits.MaxTokens != nil {
		settings.maxTokensPerPart = *configuration.Limits.MaxTokens
	}
	if configuration.Limits.WarnTokens != nil {
		settings.warnTokensPerPart = *configuration.Limits.WarnTokens
	}
	settings.includeExtensions = configuration.Paths.Extensions
	if configuration.Paths.UseGitignore != nil {
		settings.useGitignore = *configuration.Paths.UseGitignore
	}
	if configuration.Paths.UseContextIgnore != nil {
		settings.useContextIgnore = *configuration.Paths.UseContextIgnore
	}

	if flagSet.Changed(formatFlagName) {
		settings.outputFormat = flagValues.outputFormat
	}
	if flagSet.Changed(treeFlagName) {
		settings.includeTree = flagValues.includeTree
	}
	if flagSet.Changed(noTreeFlagName) {
		settings.includeTree = !flagValues.disableTree
	}
	if flagSet.Changed(noHeaderFlagName) {
		settings.includeHeader = !flagValues.disableHeader
	}
	if flagSet.Changed(interactiveFlagName) {
		settings.interactive = flagValues.interactive
	}
	if flagSet.Changed(outputFlagName) {
		settings.outputPath = flagValues.outputPath
	}
	if flagSet.Changed(copyFlagName) {
		settings.copyToClipboard = flagValues.copyToClipboard
	}
	if flagSet.Changed(scanSecretsFlagName) {
		settings.scanSecrets = flagValues.scanSecrets
	}
	if flagSet.Changed(tokensFlagName) {
		settings.tokensEnabled = flagValues.tokensEnabled
	}
	if flagSet.Changed(modelFlagName) {
		settings.tokenizerModel = flagValues.tokenizerModel
	}
	if flagSet.Changed(tokenizerFileFlagName) {
		settings.tokenizerFile = flagValues.tokenizerFile
	}
	if flagSet.Changed(maxTokensFlagName) {
		settings.maxTokensPerPart = flagValues.maxTokensPerPart
	}
	if flagSet.Changed(warnTokensFlagName) {
		settings.warnTokensPerPart = flagValues.warnTokensPerPart
	}
	if flagSet.Changed(extensionFlagName) {
		settings.includeExtensions = flagValues.includeExtensions
	}
	if flagSet.Changed(noGitignoreFlagName) {
		settings.useGitignore = !flagValues.disableGitignore
	}
	if flagSet.Changed(noContextIgnoreFlagName) {
		settings.useContextIgnore = !flagValues.disableContextIgnore
	}

	if settings.maxTokensPerPart > 0 || settings.warnTokensPerPart > 0 {
		settings.tokensEnabled = true
	}

	settings.excludePatterns = utils.DeduplicatePatterns(append(append([]string{}, configuration.Paths.Exclude...), flagValues.excludePatterns...))
	return settings
}

// resolveTreeSettings merges tree configuration values with command line flags.
func resolveTreeSettings(flagValues treeFlagValues, flagSet *pflag.FlagSet, configuration config.TreeCommandConfiguration) treeSettings {
	settings := treeSettings{
		useGitignore:     true,
		useContextIgnore: true,
	}

	settings.includeExtensions = configuration.Paths.Extensions
	if configuration.Paths.UseGitignore != nil {
		settings.useGitignore = *configuration.Paths.UseGitignore
	}
	if configuration.Paths.UseContextIgnore != nil {
		settings.useContextIgnore = *configuration.Paths.UseContextIgnore
	}

	if flagSet.Changed(extensionFlagName) {
		settings.includeExtensions = flagValues.includeExtensions
	}
	if flagSet.Changed(noGitignoreFlagName) {
		settings.useGitignore = !flagValues.disableGitignore
	}
	if flagSet.Changed(noContextIgnoreFlagName) {
		settings.useContextIgnore = !flagValues.disableContextIgnore
	}

	settings.excludePatterns = utils.DeduplicatePatterns(append(append([]string{}, configuration.Paths.Exclude...), flagValues.excludePatterns...))
	return settings
}

// runPack executes the full pack pipeline for one root directory.
func runPack(applicationLogger *zap.Logger, flagSet *pflag.FlagSet, flagValues packFlagValues, rootPath string) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flagValues.configFilePath,
	})
	if configurationError != nil {
		return configurationError
	}

	settings := resolvePackSettings(flagValues, flagSet, applicationConfiguration.Pack)
	settings.outputFormat = strings.ToLower(settings.outputFormat)
	if !isSupportedFormat(settings.outputFormat) {
		return fmt.Errorf(invalidFormatMessage, settings.outputFormat)
	}

	validatedRootPath, rootPathError := resolveRootDirectory(rootPath)
	if rootPathError != nil {
		return rootPathError
	}
	settings.rootPath = validatedRootPath

	ruleSet, ignoreWarnings, ignoreError := ignore.Build(settings.rootPath, ignore.BuildOptions{
		UseGitignore:     settings.useGitignore,
		UseContextIgnore: settings.useContextIgnore,
		ExtraExcludes:    settings.excludePatterns,
	})
	if ignoreError != nil {
		return ignoreError
	}

	records, discoveryWarnings, discoveryError := discover.Discover(settings.rootPath, discover.Options{
		RuleSet:           ruleSet,
		IncludeExtensions: settings.includeExtensions,
	})
	if discoveryError != nil {
		return discoveryError
	}

	runWarnings := append(append([]string{}, ignoreWarnings...), discoveryWarnings...)

	if settings.interactive {
		selectedRecords, selectionState, selectionError := selector.Run(records)
		if selectionError != nil {
			return selectionError
		}
		if selectionState == selector.StateCancelled {
			fmt.Fprintln(os.Stderr, selectionCancelledMessage)
			return nil
		}
		records = selectedRecords
	}

	if len(records) == 0 {
		logWarnings(applicationLogger, runWarnings)
		fmt.Fprintln(os.Stderr, noFilesFoundMessage)
		return nil
	}

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if settings.tokensEnabled {
		createdCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{
			Model:         settings.tokenizerModel,
			TokenizerFile: settings.tokenizerFile,
		})
		if counterError != nil {
			return counterError
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	var secretScanner secrets.Scanner
	if settings.scanSecrets {
		secretScanner = secrets.NewRuleScanner()
	}

	enrichedRecords, enrichmentWarnings := aggregate.EnrichAll(records, aggregate.Options{
		TokenCounter:  tokenCounter,
		SecretScanner: secretScanner,
	})
	runWarnings = append(runWarnings, enrichmentWarnings...)
	runWarnings = append(runWarnings, report.SecretFindingWarnings(enrichedRecords)...)

	outputParts := pack.Pack(enrichedRecords, settings.maxTokensPerPart)
	runWarnings = append(runWarnings, report.OversizedPartWarnings(outputParts, settings.warnTokensPerPart)...)

	projectName := filepath.Base(settings.rootPath)
	renderOptions := render.Options{
		ProjectName:   projectName,
		RootPath:      settings.rootPath,
		IncludeHeader: settings.includeHeader,
		Model:         tokenModel,
		GeneratedAt:   utils.FormatTimestamp(time.Now()),
		Warnings:      runWarnings,
	}
	if settings.includeTree {
		relativePaths := make([]string, 0, len(enrichedRecords))
		for _, enrichedRecord := range enrichedRecords {
			relativePaths = append(relativePaths, enrichedRecord.RelativePath)
		}
		renderOptions.Tree = render.BuildTree(projectName, relativePaths)
	}

	if writeError := writePackOutput(settings, outputParts, renderOptions); writeError != nil {
		return writeError
	}

	logWarnings(applicationLogger, runWarnings)
	if settings.tokensEnabled {
		for _, reportLine := range report.TokenReportLines(outputParts) {
			fmt.Fprintln(os.Stderr, reportLine)
		}
	}
	return nil
}

// runTree lists discovered files as a connector tree without reading content.
func runTree(applicationLogger *zap.Logger, flagSet *pflag.FlagSet, flagValues treeFlagValues, rootPath string) error {
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}

	applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: flagValues.configFilePath,
	})
	if configurationError != nil {
		return configurationError
	}

	settings := resolveTreeSettings(flagValues, flagSet, applicationConfiguration.Tree)

	validatedRootPath, rootPathError := resolveRootDirectory(rootPath)
	if rootPathError != nil {
		return rootPathError
	}

	ruleSet, ignoreWarnings, ignoreError := ignore.Build(validatedRootPath, ignore.BuildOptions{
		UseGitignore:     settings.useGitignore,
		UseContextIgnore: settings.useContextIgnore,
		ExtraExcludes:    settings.excludePatterns,
	})
	if ignoreError != nil {
		return ignoreError
	}

	records, discoveryWarnings, discoveryError := discover.Discover(validatedRootPath, discover.Options{
		RuleSet:           ruleSet,
		IncludeExtensions: settings.includeExtensions,
	})
	if discoveryError != nil {
		return discoveryError
	}

	runWarnings := append(append([]string{}, ignoreWarnings...), discoveryWarnings...)
	if len(records) == 0 {
		logWarnings(applicationLogger, runWarnings)
		fmt.Fprintln(os.Stderr, noFilesFoundMessage)
		return nil
	}

	relativePaths := make([]string, 0, len(records))
	for _, record := range records {
		relativePaths = append(relativePaths, record.RelativePath)
	}
	fmt.Println(render.BuildTree(filepath.Base(validatedRootPath), relativePaths))
	logWarnings(applicationLogger, runWarnings)
	return nil
}

// writePackOutput renders the parts and delivers them to stdout or to files.
// Multi-part file naming is handled here; the renderer never sees file paths.
func writePackOutput(settings packSettings, outputParts []types.OutputPart, renderOptions render.Options) error {
	if settings.outputFormat == types.FormatJSON {
		renderedDocument, renderError := render.RenderJSONDocument(outputParts, renderOptions)
		if renderError != nil {
			return renderError
		}
		if settings.copyToClipboard {
			fmt.Fprintln(os.Stderr, clipboardJSONIgnoredMessage)
		}
		if settings.outputPath == "" {
			fmt.Println(renderedDocument)
			return nil
		}
		if writeError := writeOutputFile(settings.outputPath, renderedDocument+"\n"); writeError != nil {
			return writeError
		}
		fmt.Fprintf(os.Stderr, outputWrittenFormat, settings.outputPath)
		return nil
	}

	renderedParts := render.RenderTextParts(outputParts, renderOptions)
	if settings.copyToClipboard {
		remainingParts, copyError := clipboard.CopyFirstPart(clipboard.NewService(), renderedParts)
		if copyError != nil {
			fmt.Fprintf(os.Stderr, clipboardCopyFailedFormat, copyError)
		} else if remainingParts > 0 {
			fmt.Fprintf(os.Stderr, clipboardSkippedPartsFormat, len(renderedParts))
		}
	}
	if settings.outputPath == "" {
		for _, renderedPart := range renderedParts {
			fmt.Print(renderedPart)
		}
		return nil
	}
	for partIndex, renderedPart := range renderedParts {
		partPath := partFileName(settings.outputPath, partIndex+1, len(renderedParts))
		if writeError := writeOutputFile(partPath, renderedPart); writeError != nil {
			return writeError
		}
		fmt.Fprintf(os.Stderr, outputWrittenFormat, partPath)
	}
	return nil
}

// partFileName returns the output path for one part. Multi-part runs insert
// -part-N before the extension; a single part keeps the plain name.
func partFileName(outputPath string, partNumber int, totalParts int) string {
	if totalParts <= 1 {
		return outputPath
	}
	extension := filepath.Ext(outputPath)
	baseName := strings.TrimSuffix(outputPath, extension)
	return fmt.Sprintf(partFileNameFormat, baseName, partNumber, extension)
}

func writeOutputFile(outputPath string, content string) error {
	if writeError := os.WriteFile(outputPath, []byte(content), outputFileMode); writeError != nil {
		return fmt.Errorf(outputWriteErrorFormat, outputPath, writeError)
	}
	return nil
}

// resolveRootDirectory resolves the root argument to an absolute directory path.
func resolveRootDirectory(rootPath string) (string, error) {
	absolutePath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return "", fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	absolutePath = filepath.Clean(absolutePath)
	pathInformation, statError := os.Stat(absolutePath)
	if statError != nil {
		if os.IsNotExist(statError) {
			return "", fmt.Errorf(errorPathMissingFormat, rootPath)
		}
		return "", fmt.Errorf(errorStatFormat, rootPath, statError)
	}
	if !pathInformation.IsDir() {
		return "", fmt.Errorf(errorNotADirectoryFormat, rootPath)
	}
	return absolutePath, nil
}

// logWarnings emits every collected warning once, at the end of the run.
func logWarnings(applicationLogger *zap.Logger, warnings []string) {
	if applicationLogger == nil {
		return
	}
	for _, warning := range warnings {
		applicationLogger.Warn(warning)
	}
}
