// Package config centralizes the CLI's tunables: the oracle to attack, how
// patient to be with it, and the cipher's block size. Values come from
// flags or environment variables (PADORACLE_*), flags taking precedence,
// via viper. No config file is read.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config holds the resolved settings for one solve/encrypt run.
type Config struct {
	OracleEndpoint string
	OracleTimeout  time.Duration
	PluginPath     string
	BlockSize      int
	Verbose        bool
}

// RegisterFlags attaches the shared set of flags to cmd and binds each one
// into v under the same name, so viper sees flags and PADORACLE_*
// environment variables uniformly.
func RegisterFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("oracle-endpoint", "http://127.0.0.1:8000/validate", "URL of the remote padding-validation endpoint")
	flags.Duration("oracle-timeout", 10*time.Second, "per-request timeout when querying the oracle")
	flags.String("plugin", "", "path to a Go plugin (.so) exporting SubmitGuess, used instead of --oracle-endpoint")
	flags.Int("block-size", 16, "cipher block size in bytes")
	flags.BoolP("verbose", "v", false, "enable debug-level logging")

	for _, name := range []string{"oracle-endpoint", "oracle-timeout", "plugin", "block-size", "verbose"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("config: binding flag %s: %w", name, err)
		}
	}
	return nil
}

// Load resolves a Config from v after flags have been parsed.
func Load(v *viper.Viper) Config {
	return Config{
		OracleEndpoint: v.GetString("oracle-endpoint"),
		OracleTimeout:  v.GetDuration("oracle-timeout"),
		PluginPath:     v.GetString("plugin"),
		BlockSize:      v.GetInt("block-size"),
		Verbose:        v.GetBool("verbose"),
	}
}

// NewViper builds a viper instance that also reads PADORACLE_*
// environment variables, e.g. PADORACLE_ORACLE_ENDPOINT.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("padoracle")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}
