package security

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/mkessler/sqlrun/sqltext"
)

// ValidationError reports content that failed a security check. It aborts
// the whole call before any execution occurs.
type ValidationError struct {
	Subject string // "sql", "path", or "url"
	Reason  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s validation failed: %s", e.Subject, e.Reason)
}

// Config holds the security limits and pattern lists. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// DangerousSQLPatterns are rejected on a case-insensitive substring
	// match against the whole script.
	DangerousSQLPatterns []string `json:"dangerous_sql_patterns"`

	// DangerousPathPatterns are rejected on a case-insensitive substring
	// match against script file paths.
	DangerousPathPatterns []string `json:"dangerous_path_patterns"`

	// AllowedExtensions restricts which script files may be loaded.
	AllowedExtensions []string `json:"allowed_extensions"`

	// MaxFileSizeMB caps the size of a script file.
	MaxFileSizeMB int `json:"max_file_size_mb"`

	// MaxStatements caps the number of statements per script.
	MaxStatements int `json:"max_statements"`

	// MaxStatementLength caps the length of a single statement.
	MaxStatementLength int `json:"max_statement_length"`
}

// DefaultConfig returns the stock limits and pattern lists.
func DefaultConfig() Config {
	return Config{
		DangerousSQLPatterns: []string{
			"DROP DATABASE",
			"TRUNCATE DATABASE",
			"DELETE FROM INFORMATION_SCHEMA",
			"DELETE FROM SYS.",
			"EXEC ",
			"EXECUTE ",
			"XP_",
			"SP_",
			"OPENROWSET",
			"OPENDATASOURCE",
			"BACKUP DATABASE",
			"RESTORE DATABASE",
			"SHUTDOWN",
			"RECONFIGURE",
		},
		DangerousPathPatterns: []string{
			"..",
			"~",
			"/etc",
			"/var",
			"/usr",
			"/bin",
			"/sbin",
			"/dev",
			`\windows\system32`,
			`\windows\syswow64`,
			`\program files`,
		},
		AllowedExtensions:  []string{".sql"},
		MaxFileSizeMB:      10,
		MaxStatements:      100,
		MaxStatementLength: 10000,
	}
}

// Validator applies the configured checks.
type Validator struct {
	config Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(config Config) *Validator {
	return &Validator{config: config}
}

// ValidateSQL checks a whole SQL blob against the dangerous-pattern list,
// the statement count limit, and the per-statement length limit.
func (v *Validator) ValidateSQL(content string) error {
	if content == "" {
		return nil
	}

	upper := strings.ToUpper(content)
	for _, pattern := range v.config.DangerousSQLPatterns {
		if strings.Contains(upper, strings.ToUpper(pattern)) {
			return &ValidationError{
				Subject: "sql",
				Reason:  fmt.Sprintf("content contains disallowed pattern %q", pattern),
			}
		}
	}

	statements := sqltext.Split(content, true)
	if v.config.MaxStatements > 0 && len(statements) > v.config.MaxStatements {
		return &ValidationError{
			Subject: "sql",
			Reason:  fmt.Sprintf("too many statements (%d > %d)", len(statements), v.config.MaxStatements),
		}
	}
	if v.config.MaxStatementLength > 0 {
		for i, statement := range statements {
			if len(statement) > v.config.MaxStatementLength {
				return &ValidationError{
					Subject: "sql",
					Reason: fmt.Sprintf("statement %d is too long (%d > %d characters)",
						i+1, len(statement), v.config.MaxStatementLength),
				}
			}
		}
	}

	return nil
}

// ValidateScriptPath checks a script file path against the dangerous-path
// patterns, the allowed extensions, and - when the file exists - the size
// limit. Remote URLs (s3://, http://) skip the local-path checks and are
// validated as URLs instead.
func (v *Validator) ValidateScriptPath(path string) error {
	if path == "" {
		return &ValidationError{Subject: "path", Reason: "path is empty"}
	}

	lower := strings.ToLower(path)
	if strings.Contains(lower, "://") {
		return v.ValidateURL(path)
	}

	for _, pattern := range v.config.DangerousPathPatterns {
		if strings.Contains(lower, strings.ToLower(pattern)) {
			return &ValidationError{
				Subject: "path",
				Reason:  fmt.Sprintf("path contains disallowed pattern %q", pattern),
			}
		}
	}

	if len(v.config.AllowedExtensions) > 0 {
		allowed := false
		for _, ext := range v.config.AllowedExtensions {
			if strings.HasSuffix(lower, strings.ToLower(ext)) {
				allowed = true
				break
			}
		}
		if !allowed {
			return &ValidationError{
				Subject: "path",
				Reason:  fmt.Sprintf("only %s files are allowed", strings.Join(v.config.AllowedExtensions, ", ")),
			}
		}
	}

	if v.config.MaxFileSizeMB > 0 {
		if info, err := os.Stat(path); err == nil {
			sizeMB := float64(info.Size()) / (1024 * 1024)
			if sizeMB > float64(v.config.MaxFileSizeMB) {
				return &ValidationError{
					Subject: "path",
					Reason: fmt.Sprintf("file size %.1fMB exceeds the %dMB limit",
						sizeMB, v.config.MaxFileSizeMB),
				}
			}
		}
		// A stat failure is not a validation failure; loading will surface it.
	}

	return nil
}

// ValidateURL checks that a URL parses and has a scheme.
func (v *Validator) ValidateURL(raw string) error {
	if raw == "" {
		return &ValidationError{Subject: "url", Reason: "url is empty"}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return &ValidationError{Subject: "url", Reason: fmt.Sprintf("invalid url: %v", err)}
	}
	if parsed.Scheme == "" {
		return &ValidationError{Subject: "url", Reason: "url must include a scheme"}
	}
	return nil
}

// IsSafeSQL reports whether content passes ValidateSQL.
func (v *Validator) IsSafeSQL(content string) bool {
	return v.ValidateSQL(content) == nil
}

// IsSafeScriptPath reports whether path passes ValidateScriptPath.
func (v *Validator) IsSafeScriptPath(path string) bool {
	return v.ValidateScriptPath(path) == nil
}
