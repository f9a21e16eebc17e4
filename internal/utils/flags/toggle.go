package flags

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/pflag"
)

const (
	toggleEnabledCanonicalConstant     = "true"
	toggleDisabledCanonicalConstant    = "false"
	toggleValueTypeNameConstant        = "bool"
	toggleInvalidValueTemplateConstant = "invalid toggle value %q"
	toggleEnabledPlaceholderConstant   = "<YES|no>"
	toggleDisabledPlaceholderConstant  = "<yes|NO>"
	togglePlaceholderOnlyTemplate      = "`%s`"
	togglePlaceholderUsageTemplate     = "`%s` %s"
	longFlagPrefixConstant             = "--"
	shortFlagPrefixConstant            = "-"
	flagValueSeparatorConstant         = "="
)

// toggleLiteralValues maps every accepted spelling to its boolean meaning.
var toggleLiteralValues = map[string]bool{
	"true": true, "yes": true, "on": true, "1": true, "t": true, "y": true,
	"false": false, "no": false, "off": false, "0": false, "f": false, "n": false,
}

// AddToggleFlag registers a boolean flag that accepts yes/no style values.
// A bare --name enables the toggle; NormalizeToggleArguments lets callers
// supply the value as a separate argument.
func AddToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, shorthand string, defaultValue bool, usage string) {
	if flagSet == nil || len(name) == 0 {
		return
	}

	state := newToggleState(defaultValue, target)
	if len(shorthand) > 0 {
		flagSet.VarP(state, name, shorthand, usage)
	} else {
		flagSet.Var(state, name, usage)
	}

	registeredFlag := flagSet.Lookup(name)
	if registeredFlag == nil {
		return
	}
	registeredFlag.NoOptDefVal = toggleEnabledCanonicalConstant
	registeredFlag.Usage = toggleUsage(usage, defaultValue)

	registeredToggles.record(name, shorthand)
}

// NormalizeToggleArguments rewrites "--flag value" into "--flag=value" for
// registered toggle flags so optional-value parsing consumes the value.
// Arguments after a bare "--" pass through untouched.
func NormalizeToggleArguments(arguments []string) []string {
	if len(arguments) == 0 {
		return nil
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		current := arguments[index]
		if current == longFlagPrefixConstant {
			normalized = append(normalized, arguments[index:]...)
			break
		}

		joinable := registeredToggles.recognizes(current) &&
			!strings.Contains(current, flagValueSeparatorConstant) &&
			index+1 < len(arguments) &&
			!strings.HasPrefix(arguments[index+1], shortFlagPrefixConstant)
		if !joinable {
			normalized = append(normalized, current)
			continue
		}

		normalized = append(normalized, current+flagValueSeparatorConstant+arguments[index+1])
		index++
	}

	return normalized
}

func toggleUsage(description string, defaultValue bool) string {
	placeholder := toggleDisabledPlaceholderConstant
	if defaultValue {
		placeholder = toggleEnabledPlaceholderConstant
	}
	trimmedDescription := strings.TrimSpace(description)
	if len(trimmedDescription) == 0 {
		return fmt.Sprintf(togglePlaceholderOnlyTemplate, placeholder)
	}
	return fmt.Sprintf(togglePlaceholderUsageTemplate, placeholder, trimmedDescription)
}

// toggleState backs a registered toggle flag and mirrors parsed values into
// the caller's target variable.
type toggleState struct {
	enabled bool
	target  *bool
}

func newToggleState(defaultValue bool, target *bool) *toggleState {
	if target != nil {
		*target = defaultValue
	}
	return &toggleState{enabled: defaultValue, target: target}
}

func (state *toggleState) Set(rawValue string) error {
	parsedValue, parseError := parseToggleLiteral(rawValue)
	if parseError != nil {
		return parseError
	}

	state.enabled = parsedValue
	if state.target != nil {
		*state.target = parsedValue
	}
	return nil
}

func (state *toggleState) String() string {
	if state == nil || !state.enabled {
		return toggleDisabledCanonicalConstant
	}
	return toggleEnabledCanonicalConstant
}

func (state *toggleState) Type() string {
	return toggleValueTypeNameConstant
}

// parseToggleLiteral resolves a raw flag value to a boolean. An empty value
// means the flag was given without an argument and counts as enabled.
func parseToggleLiteral(rawValue string) (bool, error) {
	normalizedValue := strings.ToLower(strings.TrimSpace(rawValue))
	if len(normalizedValue) == 0 {
		return true, nil
	}

	parsedValue, recognized := toggleLiteralValues[normalizedValue]
	if !recognized {
		return false, fmt.Errorf(toggleInvalidValueTemplateConstant, rawValue)
	}
	return parsedValue, nil
}

// toggleFlagRegistry records registered toggle names and shorthands so that
// NormalizeToggleArguments can pick them out of raw argument lists.
type toggleFlagRegistry struct {
	mutex      sync.RWMutex
	names      map[string]struct{}
	shorthands map[string]struct{}
}

var registeredToggles = &toggleFlagRegistry{
	names:      map[string]struct{}{},
	shorthands: map[string]struct{}{},
}

func (registry *toggleFlagRegistry) record(name string, shorthand string) {
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	registry.names[name] = struct{}{}
	if len(shorthand) > 0 {
		registry.shorthands[shorthand] = struct{}{}
	}
}

// recognizes reports whether the argument names a registered toggle flag in
// either long or shorthand form, with or without an attached value.
func (registry *toggleFlagRegistry) recognizes(argument string) bool {
	flagToken, isShorthand, wellFormed := splitFlagToken(argument)
	if !wellFormed {
		return false
	}

	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	if isShorthand {
		_, exists := registry.shorthands[flagToken]
		return exists
	}
	_, exists := registry.names[flagToken]
	return exists
}

// splitFlagToken extracts the flag name from arguments such as "--name",
// "--name=value", or "-n". The second result reports shorthand form.
func splitFlagToken(argument string) (string, bool, bool) {
	if strings.HasPrefix(argument, longFlagPrefixConstant) {
		name := strings.TrimPrefix(argument, longFlagPrefixConstant)
		if separatorIndex := strings.Index(name, flagValueSeparatorConstant); separatorIndex >= 0 {
			name = name[:separatorIndex]
		}
		return name, false, len(name) > 0
	}
	if strings.HasPrefix(argument, shortFlagPrefixConstant) {
		shorthand := strings.TrimPrefix(argument, shortFlagPrefixConstant)
		if separatorIndex := strings.Index(shorthand, flagValueSeparatorConstant); separatorIndex >= 0 {
			shorthand = shorthand[:separatorIndex]
		}
		return shorthand, true, len(shorthand) == 1
	}
	return "", false, false
}
