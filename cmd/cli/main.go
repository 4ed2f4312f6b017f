package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/mkessler/sqlrun"
	"github.com/mkessler/sqlrun/config"
	"github.com/mkessler/sqlrun/db"
	"github.com/mkessler/sqlrun/script"
	"github.com/mkessler/sqlrun/security"
)

const (
	PromptColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

// Options are the command-line flags.
type Options struct {
	Connection      string `short:"c" long:"connection" description:"Database URL (sqlite://, duckdb://, postgres://, mysql://)"`
	File            string `short:"f" long:"file" description:"SQL script file to execute"`
	Pattern         string `short:"p" long:"pattern" description:"Glob pattern of SQL script files to execute"`
	ConfigPath      string `long:"config" description:"Path to a JSON configuration file"`
	StopOnError     bool   `long:"stop-on-error" description:"Roll back the whole script on the first failure"`
	DisableSecurity bool   `long:"disable-security" description:"Skip SQL and path validation"`
	JSON            bool   `long:"json" description:"Emit results as JSON instead of tables"`
	Verbose         bool   `short:"v" long:"verbose" description:"Enable debug logging"`
	ShowVersion     bool   `long:"version" description:"Print the version and exit"`
}

// CLI holds the interactive session state.
type CLI struct {
	instance    *sqlrun.Instance
	options     *Options
	history     []string
	historyFile string
}

func main() {
	options := &Options{}
	parser := flags.NewParser(options, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(2)
	}

	if options.ShowVersion {
		fmt.Printf("sqlrun v%s\n", Version)
		return
	}

	cfg, err := config.Load(options.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(2)
	}
	if options.Connection != "" {
		cfg.Database.URL = options.Connection
	}
	if options.Verbose {
		cfg.Logging.Level = "debug"
	}
	if options.DisableSecurity {
		fmt.Fprintf(os.Stderr, "%sWarning: security validation disabled%s\n", ErrorColor, ResetColor)
		cfg.Security = openSecurity(cfg.Security)
	}
	for _, note := range cfg.Notes {
		fmt.Fprintf(os.Stderr, "%sConfig: %s%s\n", ErrorColor, note, ResetColor)
	}

	instance, err := sqlrun.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		os.Exit(2)
	}
	defer instance.Close()

	if options.File != "" || options.Pattern != "" {
		if !runScripts(instance, options) {
			os.Exit(1)
		}
		return
	}

	cli := &CLI{
		instance:    instance,
		options:     options,
		historyFile: historyPath(),
	}
	cli.loadHistory()
	cli.run()
}

// openSecurity clears every limit and pattern list.
func openSecurity(cfg security.Config) security.Config {
	cfg.DangerousSQLPatterns = nil
	cfg.DangerousPathPatterns = nil
	cfg.AllowedExtensions = nil
	cfg.MaxFileSizeMB = 0
	cfg.MaxStatements = 0
	cfg.MaxStatementLength = 0
	return cfg
}

// runScripts executes the -f file or every -p match and reports whether all
// statements in all scripts succeeded.
func runScripts(instance *sqlrun.Instance, options *Options) bool {
	pattern := options.File
	if pattern == "" {
		pattern = options.Pattern
	}

	paths, err := script.Expand(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
		return false
	}

	clean := true
	for _, path := range paths {
		if !options.JSON {
			fmt.Printf("%s%s==> %s%s\n", BoldColor, PromptColor, path, ResetColor)
		}

		batch, err := instance.RunFile(context.Background(), path, options.StopOnError)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%sError: %v%s\n", ErrorColor, err, ResetColor)
			clean = false
			continue
		}

		displayBatch(batch, options.JSON)
		if batch.Failed > 0 {
			clean = false
		}
	}
	return clean
}

// batchRecord is the JSON output shape for one statement.
type batchRecord struct {
	Statement string   `json:"statement"`
	Type      string   `json:"statement_type"`
	RowCount  int      `json:"row_count,omitempty"`
	Rows      []db.Row `json:"rows,omitempty"`
	Affected  *int64   `json:"rows_affected,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func batchRecords(batch *db.BatchResult) []batchRecord {
	records := make([]batchRecord, 0, len(batch.Results))
	for _, result := range batch.Results {
		record := batchRecord{
			Statement: result.Statement,
			Type:      result.Kind.String(),
			Error:     result.Err,
		}
		if result.Rows != nil {
			record.Rows = result.Rows.Rows
			record.RowCount = result.RowCount
		}
		if result.OK() && result.Rows == nil {
			affected := result.Affected
			record.Affected = &affected
		}
		records = append(records, record)
	}
	return records
}

func displayBatch(batch *db.BatchResult, asJSON bool) {
	if asJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		encoder.Encode(map[string]any{
			"id":         batch.ID,
			"attempted":  batch.Attempted,
			"succeeded":  batch.Succeeded,
			"failed":     batch.Failed,
			"elapsed":    batch.ExecutionTime(),
			"statements": batchRecords(batch),
		})
		return
	}

	for _, result := range batch.Results {
		if !result.OK() {
			fmt.Printf("%s%s%s\n", ErrorColor, truncateStatement(result.Statement), ResetColor)
		}
		result.Display()
	}
	color := SuccessColor
	if batch.Failed > 0 {
		color = ErrorColor
	}
	fmt.Printf("%s", color)
	batch.Display()
	fmt.Printf("%s", ResetColor)
}

// truncateStatement keeps error echoes to one short line.
func truncateStatement(statement string) string {
	statement = strings.Join(strings.Fields(statement), " ")
	if len(statement) > 72 {
		return statement[:69] + "..."
	}
	return statement
}

func printBanner() {
	fmt.Println()
	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s║           sqlrun v%-8s            ║%s\n", BoldColor, PromptColor, Version, ResetColor)
	fmt.Printf("%s%s║   SQL Script Batch Runner             ║%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, PromptColor, ResetColor)
	fmt.Println()
	fmt.Println("Type .help for commands, .quit to exit")
	fmt.Println()
}

func (cli *CLI) run() {
	printBanner()
	fmt.Printf("%sConnected: %s%s\n\n", SuccessColor, cli.instance.Engine.URL(), ResetColor)

	reader := bufio.NewReader(os.Stdin)
	var buffer strings.Builder

	for {
		if buffer.Len() == 0 {
			fmt.Printf("%ssql> %s", PromptColor, ResetColor)
		} else {
			fmt.Printf("%s...> %s", PromptColor, ResetColor)
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			cli.saveHistory()
			return
		}
		line = strings.TrimSpace(line)

		if buffer.Len() == 0 {
			if line == "" {
				continue
			}
			if strings.HasPrefix(line, ".") {
				if !cli.command(line) {
					cli.saveHistory()
					return
				}
				continue
			}
		}

		buffer.WriteString(line)
		buffer.WriteString("\n")
		if !strings.HasSuffix(line, ";") {
			continue
		}

		input := buffer.String()
		buffer.Reset()
		cli.history = append(cli.history, strings.TrimSpace(input))
		cli.execute(input)
	}
}

// command handles dot-commands and reports whether the session continues.
func (cli *CLI) command(line string) bool {
	switch line {
	case ".quit", ".exit":
		return false

	case ".help":
		fmt.Println("  .help      show this help")
		fmt.Println("  .metrics   show execution counters")
		fmt.Println("  .history   show statement history")
		fmt.Println("  .quit      exit")
		fmt.Println()
		fmt.Println("End statements with ; to execute. Multi-line input is supported.")

	case ".metrics":
		snapshot := cli.instance.Engine.Metrics().Snapshot()
		fmt.Printf("statements: %d  fetches: %d  executes: %d  errors: %d\n",
			snapshot.Statements, snapshot.Fetches, snapshot.Executes, snapshot.Errors)

	case ".history":
		for i, entry := range cli.history {
			fmt.Printf("%3d  %s\n", i+1, entry)
		}

	default:
		fmt.Printf("%sUnknown command: %s%s\n", ErrorColor, line, ResetColor)
	}
	return true
}

func (cli *CLI) execute(input string) {
	batch, err := cli.instance.RunScript(context.Background(), input, cli.options.StopOnError)
	if err != nil {
		fmt.Printf("%sError: %v%s\n", ErrorColor, err, ResetColor)
		return
	}
	displayBatch(batch, cli.options.JSON)
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sqlrun_history"
	}
	return filepath.Join(home, ".sqlrun_history")
}

func (cli *CLI) loadHistory() {
	data, err := os.ReadFile(cli.historyFile)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			cli.history = append(cli.history, line)
		}
	}
}

func (cli *CLI) saveHistory() {
	if len(cli.history) == 0 {
		return
	}
	// Keep only the most recent entries.
	start := 0
	if len(cli.history) > 500 {
		start = len(cli.history) - 500
	}
	content := strings.Join(cli.history[start:], "\n") + "\n"
	os.WriteFile(cli.historyFile, []byte(content), 0o600)
}
