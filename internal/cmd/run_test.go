package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresIDOrAll(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"neither id nor --all", []string{"run"}, "exactly one of"},
		{"both id and --all", []string{"run", "7", "--all"}, "exactly one of"},
		{"non-numeric id", []string{"run", "seven"}, "must be numeric"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// flag values persist across Execute calls on the same command
			require.NoError(t, runCmd.Flags().Set("all", "false"))
			rootCmd.SetArgs(tt.args)
			err := rootCmd.Execute()
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
