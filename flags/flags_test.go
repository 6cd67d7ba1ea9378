package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestUniqueFlagNames ensures no two flags collide on a name or alias.
func TestUniqueFlagNames(t *testing.T) {
	seen := make(map[string]struct{})
	for _, flag := range Flags {
		for _, name := range flag.Names() {
			_, exists := seen[name]
			assert.False(t, exists, "flag name %q declared twice", name)
			seen[name] = struct{}{}
		}
	}
}

func TestEnvVarsPrefixed(t *testing.T) {
	for _, flag := range Flags {
		values := envVarsOf(t, flag)
		for _, v := range values {
			assert.True(t, strings.HasPrefix(v, EnvVarPrefix+"_"),
				"env var %q must carry the %s prefix", v, EnvVarPrefix)
		}
	}
}

func TestHasDocumentation(t *testing.T) {
	for _, flag := range Flags {
		df, ok := flag.(cli.DocGenerationFlag)
		require.True(t, ok)
		assert.NotEmpty(t, df.GetUsage(), "flag %v needs usage text", flag.Names())
	}
}

func envVarsOf(t *testing.T, flag cli.Flag) []string {
	t.Helper()
	switch f := flag.(type) {
	case *cli.StringFlag:
		return f.EnvVars
	case *cli.BoolFlag:
		return f.EnvVars
	case *cli.DurationFlag:
		return f.EnvVars
	default:
		t.Fatalf("unhandled flag type %T", flag)
		return nil
	}
}
