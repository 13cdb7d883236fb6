package util

import (
	"strings"
	"time"

	"github.com/ValentinKolb/kvkit/lib/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// InitConfig loads .env files and makes viper read KVKIT_* environment variables
func InitConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("kvkit")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's local and inherited flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.InheritedFlags()); err != nil {
		return err
	}
	return viper.BindPFlags(cmd.Flags())
}

// splitList splits a comma separated list and drops empty elements
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetBenchConfig reads the bench configuration from viper.
// targets are the positional arguments of the command; none means all.
func GetBenchConfig(targets []string) *common.BenchConfig {
	if len(targets) == 0 {
		targets = []string{"ttl", "cache", "segmap", "seq"}
	}
	return &common.BenchConfig{
		Targets:     targets,
		Skip:        splitList(viper.GetString("skip")),
		Threads:     viper.GetInt("threads"),
		Keys:        viper.GetInt("keys"),
		Lifetime:    viper.GetDuration("lifetime"),
		RenewOnRead: viper.GetBool("renew-on-read"),
		CSVPath:     viper.GetString("csv"),
		Metrics:     viper.GetBool("metrics"),
		LogLevel:    viper.GetString("log-level"),
	}
}

// DurationFlag is a shorthand to register a duration flag with wrapped help text
func DurationFlag(flags *pflag.FlagSet, key string, def time.Duration, help string) {
	flags.Duration(key, def, WrapString(help))
}
