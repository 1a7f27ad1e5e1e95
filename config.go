package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind         string
	dataDir      string
	ghostMax     int
	ghostMin     int
	port         int
	prefix       string
	profile      bool
	questionURL  string
	revealAt     string
	roundSeconds int
	startTime    string
	testMode     bool
	tlsCert      string
	tlsKey       string
	verbose      bool
	version      bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.ghostMin < 0 || c.ghostMax < c.ghostMin {
		return fmt.Errorf("invalid ghost range: %d-%d", c.ghostMin, c.ghostMax)
	}
	if c.roundSeconds < 1 {
		return fmt.Errorf("invalid round length: %d", c.roundSeconds)
	}
	if _, _, err := parseClock(c.startTime); err != nil {
		return fmt.Errorf("invalid --start-time: %w", err)
	}
	if _, _, err := parseClock(c.revealAt); err != nil {
		return fmt.Errorf("invalid --reveal-at: %w", err)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// parseClock parses an "HH:MM" wall-clock string.
func parseClock(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// revealOpen reports whether the reveal window is open at t, i.e. whether
// clients may see the true waiting count.
func (c *Config) revealOpen(t time.Time) bool {
	hour, minute, err := parseClock(c.revealAt)
	if err != nil {
		return true
	}
	gate := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
	return !t.Before(gate)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("QUIZROYALE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "quiz-royale",
		Short:         "A daily multiplayer elimination quiz, last survivor wins.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: QUIZROYALE_BIND)")
	fs.StringVar(&cfg.dataDir, "data-dir", ".", "directory for the play ledger and question cache (env: QUIZROYALE_DATA_DIR)")
	fs.IntVar(&cfg.ghostMax, "ghost-max", 17500, "upper bound of the simulated crowd (env: QUIZROYALE_GHOST_MAX)")
	fs.IntVar(&cfg.ghostMin, "ghost-min", 12500, "lower bound of the simulated crowd (env: QUIZROYALE_GHOST_MIN)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: QUIZROYALE_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: QUIZROYALE_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: QUIZROYALE_PROFILE)")
	fs.StringVar(&cfg.questionURL, "question-url", "https://opentdb.com/api.php?amount=30&type=multiple", "remote source for daily questions (env: QUIZROYALE_QUESTION_URL)")
	fs.StringVar(&cfg.revealAt, "reveal-at", "19:45", "local time after which the true waiting count is shown (env: QUIZROYALE_REVEAL_AT)")
	fs.IntVar(&cfg.roundSeconds, "round-seconds", 15, "answer window per question, in seconds (env: QUIZROYALE_ROUND_SECONDS)")
	fs.StringVar(&cfg.startTime, "start-time", "20:00", "local time of the daily scheduled game (env: QUIZROYALE_START_TIME)")
	fs.BoolVar(&cfg.testMode, "test-mode", false, "allow clients to start games manually (env: QUIZROYALE_TEST_MODE)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: QUIZROYALE_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: QUIZROYALE_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: QUIZROYALE_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: QUIZROYALE_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("quiz-royale v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
