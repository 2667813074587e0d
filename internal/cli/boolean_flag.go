package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName               = "bool"
	booleanFlagTrueLiteral            = "true"
	booleanFlagAcceptedValuesListing  = "true, false, yes, no, on, off, 1, 0"
	booleanFlagInvalidValueErrorLabel = "invalid boolean value"
)

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

// optionalBooleanFlag leaves its target nil until the flag is given so that
// configuration file values survive when the flag is absent.
type optionalBooleanFlag struct {
	target  **bool
	flagKey string
}

func (value *optionalBooleanFlag) Set(input string) error {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		normalized = booleanFlagTrueLiteral
	}
	parsed, ok := booleanFlagLiterals[normalized]
	if !ok {
		return fmt.Errorf("%s %q for --%s; accepted values: %s", booleanFlagInvalidValueErrorLabel, input, value.flagKey, booleanFlagAcceptedValuesListing)
	}
	*value.target = &parsed
	return nil
}

func (value *optionalBooleanFlag) String() string {
	if value == nil || value.target == nil || *value.target == nil {
		return "false"
	}
	return strconv.FormatBool(**value.target)
}

func (value *optionalBooleanFlag) Type() string {
	return booleanFlagTypeName
}

func registerOptionalBooleanFlag(flagSet *pflag.FlagSet, target **bool, name, usage string) {
	flagSet.Var(&optionalBooleanFlag{target: target, flagKey: name}, name, usage)
	if lookup := flagSet.Lookup(name); lookup != nil {
		lookup.DefValue = "false"
		lookup.NoOptDefVal = booleanFlagTrueLiteral
	}
}

// normalizeBooleanFlagArguments rewrites "--flag value" into "--flag=value"
// for boolean flags when value is a boolean literal, since pflag only binds
// a separate value to flags without NoOptDefVal.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}
	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		currentArgument := arguments[index]
		if currentArgument == "--" {
			normalized = append(normalized, arguments[index:]...)
			break
		}
		flagName, isLongFlag := strings.CutPrefix(currentArgument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isBoolean := booleanFlags[flagName]; isBoolean {
				nextArgument := arguments[index+1]
				if _, isLiteral := booleanFlagLiterals[strings.ToLower(strings.TrimSpace(nextArgument))]; isLiteral {
					normalized = append(normalized, fmt.Sprintf("--%s=%s", flagName, nextArgument))
					index++
					continue
				}
			}
		}
		normalized = append(normalized, currentArgument)
	}
	return normalized
}

func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	if command == nil {
		return
	}
	visit := func(flag *pflag.Flag) {
		if flag.Value != nil && flag.Value.Type() == booleanFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(visit)
	command.Flags().VisitAll(visit)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
