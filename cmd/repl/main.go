// REPL binary for interactively building KSQL statements and rendering
// them for KSQL or executing them against a SQL database.
//
// Configuration (flags take precedence over env vars):
//
//	--engine / KSQLTREE_ENGINE=ksql|postgres|mysql|sqlite  (prompted if absent)
//	--dsn / DATABASE_URL=<dsn>                            (auto-connects if set)
//	--defaults=<file.yaml>                                (enables the defaults plugin)
//
// Usage:
//
//	go run ./cmd/repl -v --engine ksql
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"
	"github.com/spf13/cobra"
)

const defaultEngine = "ksql"

// rootOptions holds the command-line flags.
type rootOptions struct {
	Verbose  bool
	Engine   string
	DSN      string
	Defaults string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "ksqltree",
		Short: "Interactive KSQL statement builder",
		Long: `Build KSQL statements one clause at a time, inspect their AST,
and render them for KSQL or for PostgreSQL, MySQL and SQLite.

Example:
  ksqltree --engine ksql
  ksqltree --engine sqlite --dsn ./orders.db --defaults ksql-defaults.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Engine != "" && !isValidEngine(strings.ToLower(opts.Engine)) {
				return fmt.Errorf("invalid engine %q: must be one of %v", opts.Engine, engineNames)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts)
		},
	}
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().StringVar(&opts.Engine, "engine", "", "target engine (ksql|postgres|mysql|sqlite)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "database DSN to connect to on start")
	cmd.Flags().StringVar(&opts.Defaults, "defaults", "", "YAML file of default WITH properties")
	return cmd
}

func runREPL(opts *rootOptions) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	rl, err := readline.NewFromConfig(&readline.Config{
		Prompt:          "[Config] ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline init: %w", err)
	}
	defer func() { _ = rl.Close() }()

	engine := loadEngine(rl, opts.Engine)
	sess := NewSession(engine, rl)
	slog.Debug("session started", "engine", sess.engine)

	comp := &replCompleter{sess: sess}
	_ = rl.SetConfig(&readline.Config{
		Prompt:          "ksqltree> ",
		HistoryFile:     historyPath(),
		HistoryLimit:    500,
		AutoComplete:    comp,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})

	if opts.Defaults != "" {
		if err := sess.Execute("plugin defaults " + opts.Defaults); err != nil {
			return err
		}
	}

	dsn := opts.DSN
	if dsn == "" {
		dsn = os.Getenv("DATABASE_URL")
	}
	switch {
	case engine == defaultEngine:
		if dsn != "" {
			slog.Warn("ignoring DSN for the ksql engine")
		}
	case dsn != "":
		fmt.Println("[Config] Connecting...")
		if err := sess.Execute("connect " + dsn); err != nil {
			slog.Warn("connect failed", "dsn", redactDSN(dsn), "err", err)
		}
	default:
		loadConnection(rl, sess)
	}

	fmt.Println()
	fmt.Println("ksqltree REPL: type 'help' for commands, 'exit' to quit")
	fmt.Println()

	rl.SetPrompt("ksqltree> ")
	for {
		line, err := rl.ReadLine()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(line))
		if lower == "exit" || lower == "quit" {
			break
		}
		if err := sess.Execute(line); err != nil {
			fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		}
	}
	if sess.conn != nil {
		_ = sess.conn.close()
	}
	fmt.Println()
	return nil
}

// loadEngine resolves the engine from the flag, KSQLTREE_ENGINE, or a prompt.
func loadEngine(rl *readline.Instance, flag string) string {
	if flag != "" {
		return strings.ToLower(flag)
	}
	engine := strings.TrimSpace(strings.ToLower(os.Getenv("KSQLTREE_ENGINE")))
	if engine != "" {
		if !isValidEngine(engine) {
			slog.Warn("invalid KSQLTREE_ENGINE, using default", "value", engine, "default", defaultEngine)
			return defaultEngine
		}
		fmt.Printf("[Config] Engine: %s (from KSQLTREE_ENGINE)\n", engine)
		return engine
	}

	choice := prompt(rl, "Select engine ("+strings.Join(engineNames, ", ")+")", defaultEngine)
	choice = strings.TrimSpace(strings.ToLower(choice))
	if !isValidEngine(choice) {
		slog.Warn("unknown engine, using default", "value", choice, "default", defaultEngine)
		return defaultEngine
	}
	fmt.Printf("[Config] Engine: %s\n", choice)
	return choice
}

func loadConnection(rl *readline.Instance, sess *Session) {
	answer := prompt(rl, "Connect to a database? (y/N)", "")
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Println("[Config] Skipped, use 'connect <dsn>' later to connect")
		return
	}

	var dsn string
	switch sess.engine {
	case "sqlite":
		dsn = buildSQLiteDSN(rl)
	case "mysql":
		dsn = buildMySQLDSN(rl)
	default:
		dsn = buildPostgresDSN(rl)
	}

	if dsn == "" {
		fmt.Println("[Config] No connection configured, use 'connect <dsn>' later")
		return
	}

	fmt.Printf("[Config] DSN: %s\n", redactDSN(dsn))
	if err := sess.Execute("connect " + dsn); err != nil {
		fmt.Fprintf(os.Stderr, "  Warning: connect failed: %v\n", err)
		fmt.Println("[Config] Use 'connect <dsn>' later to retry")
	}
}

// prompt prints a label with an optional default and returns the user's input
// (or the default if they press enter).
func prompt(rl *readline.Instance, label, defaultVal string) string {
	if rl == nil {
		return defaultVal
	}
	if defaultVal != "" {
		rl.SetPrompt(fmt.Sprintf("[Config]   %s [%s]: ", label, defaultVal))
	} else {
		rl.SetPrompt(fmt.Sprintf("[Config]   %s: ", label))
	}
	defer rl.SetPrompt("ksqltree> ")
	line, err := rl.ReadLine()
	if err != nil {
		return defaultVal
	}
	val := strings.TrimSpace(line)
	if val == "" {
		return defaultVal
	}
	return val
}

func buildSQLiteDSN(rl *readline.Instance) string {
	fmt.Println("[Config] SQLite connection setup:")
	path := prompt(rl, "Database path", ":memory:")
	return path
}

func buildPostgresDSN(rl *readline.Instance) string {
	fmt.Println("[Config] PostgreSQL connection setup:")

	defaultUser := "postgres"
	if u, err := user.Current(); err == nil && u.Username != "" {
		defaultUser = u.Username
	}

	dbUser := prompt(rl, "User", defaultUser)
	dbPass := prompt(rl, "Password", "")
	host := prompt(rl, "Host", "localhost")
	port := prompt(rl, "Port", "5432")
	dbName := prompt(rl, "Database", dbUser)
	sslMode := prompt(rl, "SSL mode (disable/require/verify-full)", "disable")

	var userInfo *url.Userinfo
	if dbPass != "" {
		userInfo = url.UserPassword(dbUser, dbPass)
	} else {
		userInfo = url.User(dbUser)
	}
	u := &url.URL{
		Scheme:   "postgres",
		User:     userInfo,
		Host:     host + ":" + port,
		Path:     "/" + dbName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}

func buildMySQLDSN(rl *readline.Instance) string {
	fmt.Println("[Config] MySQL connection setup:")

	dbUser := prompt(rl, "User", "root")
	dbPass := prompt(rl, "Password", "")
	host := prompt(rl, "Host", "localhost")
	port := prompt(rl, "Port", "3306")
	dbName := prompt(rl, "Database", "")

	if dbName == "" {
		return ""
	}

	// Format: user:pass@tcp(host:port)/dbname
	var auth string
	if dbPass != "" {
		auth = dbUser + ":" + dbPass
	} else {
		auth = dbUser
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s", auth, host, port, dbName)
}

func isValidEngine(engine string) bool {
	return contains(engineNames, engine)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ksqltree_history")
}
