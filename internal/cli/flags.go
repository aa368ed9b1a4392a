package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName         = "bool"
	copyFlagTypeName            = "copy"
	invalidCopyFlagValueMessage = "invalid copy flag value '%s'"
)

// booleanFlagLiterals maps the word forms accepted as boolean flag values.
var booleanFlagLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// interpretBooleanFlagLiteral parses one literal; the second result reports
// whether the literal was recognized. An empty literal stands for a flag
// given without a value and counts as true.
func interpretBooleanFlagLiteral(input string) (bool, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return true, true
	}
	parsedValue, known := booleanFlagLiterals[normalized]
	return parsedValue, known
}

// copyFlagValue implements the optional-value --copy flag.
type copyFlagValue struct {
	target *bool
}

var _ pflag.Value = (*copyFlagValue)(nil)

func (value *copyFlagValue) Set(input string) error {
	if value == nil || value.target == nil {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	parsedValue, known := interpretBooleanFlagLiteral(input)
	if !known {
		return fmt.Errorf(invalidCopyFlagValueMessage, input)
	}
	*value.target = parsedValue
	return nil
}

func (value *copyFlagValue) String() string {
	if value == nil || value.target == nil {
		return "false"
	}
	return strconv.FormatBool(*value.target)
}

func (value *copyFlagValue) Type() string {
	return copyFlagTypeName
}

// registerCopyFlag registers --copy so that the bare flag means true while an
// attached literal still selects an explicit value.
func registerCopyFlag(flagSet *pflag.FlagSet, target *bool) {
	if flagSet == nil || target == nil {
		return
	}
	*target = false
	flagSet.Var(&copyFlagValue{target: target}, copyFlagName, copyFlagDescription)
	if lookup := flagSet.Lookup(copyFlagName); lookup != nil {
		lookup.NoOptDefVal = strconv.FormatBool(true)
	}
}

// normalizeFlagArguments folds "--flag literal" into "--flag=value" for every
// boolean-styled flag registered on the command tree. Boolean flags never
// consume a separate following argument on their own, so a word literal would
// otherwise be taken for a positional path. Arguments after a bare "--" stay
// untouched, as does any value that is not a recognized boolean literal.
func normalizeFlagArguments(command *cobra.Command, arguments []string) []string {
	if command == nil || len(arguments) == 0 {
		return arguments
	}
	booleanFlagNames := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlagNames)
	if len(booleanFlagNames) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	index := 0
	for index < len(arguments) {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		if strings.HasPrefix(currentArgument, "--") && !strings.Contains(currentArgument, "=") {
			flagName := strings.TrimPrefix(currentArgument, "--")
			if _, isBoolean := booleanFlagNames[flagName]; isBoolean && index+1 < len(arguments) {
				nextArgument := arguments[index+1]
				if !strings.HasPrefix(nextArgument, "-") && nextArgument != "" {
					if parsedValue, known := interpretBooleanFlagLiteral(nextArgument); known {
						normalized = append(normalized, fmt.Sprintf("--%s=%t", flagName, parsedValue))
						index += 2
						continue
					}
				}
			}
		}
		normalized = append(normalized, currentArgument)
		index++
	}
	return normalized
}

// collectBooleanFlagNames gathers the names of bool-typed and copy-typed flags
// across the command and its descendants.
func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil || target == nil {
		return
	}
	visit := func(flagSet *pflag.FlagSet) {
		if flagSet == nil {
			return
		}
		flagSet.VisitAll(func(flag *pflag.Flag) {
			if flag == nil || flag.Value == nil {
				return
			}
			switch flag.Value.Type() {
			case booleanFlagTypeName, copyFlagTypeName:
				target[flag.Name] = struct{}{}
			}
		})
	}
	visit(command.PersistentFlags())
	visit(command.Flags())
	for _, childCommand := range command.Commands() {
		collectBooleanFlagNames(childCommand, target)
	}
}
