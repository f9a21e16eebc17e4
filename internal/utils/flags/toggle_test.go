package flags

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func TestAddToggleFlagParsesValues(t *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		expectedValue   bool
		expectedChanged bool
	}{
		{name: "DefaultUnset", arguments: nil, expectedValue: false, expectedChanged: false},
		{name: "BareFlagEnables", arguments: []string{"--dry-run"}, expectedValue: true, expectedChanged: true},
		{name: "SeparateYes", arguments: []string{"--dry-run", "yes"}, expectedValue: true, expectedChanged: true},
		{name: "SeparateNo", arguments: []string{"--dry-run", "no"}, expectedValue: false, expectedChanged: true},
		{name: "AttachedOn", arguments: []string{"--dry-run=on"}, expectedValue: true, expectedChanged: true},
		{name: "UppercaseFalse", arguments: []string{"--dry-run", "FALSE"}, expectedValue: false, expectedChanged: true},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			command := &cobra.Command{}

			var dryRunValue bool
			AddToggleFlag(command.Flags(), &dryRunValue, "dry-run", "", false, "Preview planned actions.")

			parseError := command.ParseFlags(NormalizeToggleArguments(testCase.arguments))
			require.NoError(t, parseError)
			require.Equal(t, testCase.expectedValue, dryRunValue)

			registeredFlag := command.Flags().Lookup("dry-run")
			require.NotNil(t, registeredFlag)
			require.Equal(t, testCase.expectedChanged, registeredFlag.Changed)
		})
	}
}

func TestAddToggleFlagRejectsUnknownLiteral(t *testing.T) {
	command := &cobra.Command{}

	var dryRunValue bool
	AddToggleFlag(command.Flags(), &dryRunValue, "dry-run", "", false, "Preview planned actions.")

	parseError := command.ParseFlags(NormalizeToggleArguments([]string{"--dry-run", "perhaps"}))
	require.Error(t, parseError)
	require.ErrorContains(t, parseError, `invalid toggle value "perhaps"`)
	require.False(t, dryRunValue)

	registeredFlag := command.Flags().Lookup("dry-run")
	require.NotNil(t, registeredFlag)
	require.False(t, registeredFlag.Changed)
}

func TestNormalizeToggleArgumentsJoinsShorthandValues(t *testing.T) {
	command := &cobra.Command{}

	var dryRunValue bool
	AddToggleFlag(command.Flags(), &dryRunValue, "dry-run", "p", false, "Preview planned actions.")

	normalizedArguments := NormalizeToggleArguments([]string{"-p", "no"})
	require.Equal(t, []string{"-p=no"}, normalizedArguments)

	parseError := command.ParseFlags(normalizedArguments)
	require.NoError(t, parseError)
	require.False(t, dryRunValue)

	registeredFlag := command.Flags().Lookup("dry-run")
	require.NotNil(t, registeredFlag)
	require.True(t, registeredFlag.Changed)
}

func TestNormalizeToggleArgumentsLeavesOtherArgumentsAlone(t *testing.T) {
	command := &cobra.Command{}

	var dryRunValue bool
	AddToggleFlag(command.Flags(), &dryRunValue, "dry-run", "", false, "Preview planned actions.")

	arguments := []string{"sync", "--only", "trunk", "--dry-run", "--", "--dry-run", "no"}
	require.Equal(t, arguments, NormalizeToggleArguments(arguments))
}
