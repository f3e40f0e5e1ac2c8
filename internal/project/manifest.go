// Package project loads the volt.toml manifest and turns it into session
// policy for the driver. Манифест необязателен: без него действует
// DefaultConfig, а флаги CLI перекрывают значения манифеста в любом случае.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/BurntSushi/toml"

	"volt/internal/diag"
)

// ManifestName is the file name that marks a project root.
const ManifestName = "volt.toml"

// Manifest is a parsed volt.toml together with its location.
type Manifest struct {
	Path   string // абсолютный путь к volt.toml
	Root   string // каталог, в котором он лежит
	Config Config
}

// Config mirrors the manifest document.
type Config struct {
	Project     ProjectConfig     `toml:"project"`
	Diagnostics DiagnosticsConfig `toml:"diagnostics"`
}

// ProjectConfig is the [project] section.
type ProjectConfig struct {
	Name string `toml:"name"`
}

// DiagnosticsConfig is the [diagnostics] section: session-wide diagnostic
// policy. Keys absent from the document keep their DefaultConfig values.
type DiagnosticsConfig struct {
	Warnings           bool     `toml:"warnings"`
	WarningsAsErrors   bool     `toml:"warnings-as-errors"`
	MaxDiagnostics     int      `toml:"max-diagnostics"`
	ContinueAfterError bool     `toml:"continue-after-error"`
	TreatErrAsBug      int      `toml:"treat-err-as-bug"`
	Deny               []string `toml:"deny"`
}

// DefaultConfig returns the configuration used when no manifest exists.
func DefaultConfig() Config {
	return Config{
		Diagnostics: DiagnosticsConfig{
			Warnings:           true,
			ContinueAfterError: true,
		},
	}
}

// Find walks up from startDir to locate volt.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// FindRoot returns the directory containing volt.toml, if any.
func FindRoot(startDir string) (root string, ok bool, err error) {
	manifestPath, ok, err := Find(startDir)
	if err != nil || !ok {
		return "", ok, err
	}
	return filepath.Dir(manifestPath), true, nil
}

// Load parses and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if err := validate(path, &cfg, meta); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Manifest{
		Path:   abs,
		Root:   filepath.Dir(abs),
		Config: cfg,
	}, nil
}

// LoadFromDir finds volt.toml upward of startDir and loads it. ok=false
// without error means there is no manifest; callers fall back to
// DefaultConfig.
func LoadFromDir(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

func validate(path string, cfg *Config, meta toml.MetaData) error {
	if !meta.IsDefined("project") {
		return fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return fmt.Errorf("%s: missing [project].name", path)
	}
	if !IsValidProjectName(cfg.Project.Name) {
		return fmt.Errorf("%s: invalid [project].name %q", path, cfg.Project.Name)
	}
	if cfg.Diagnostics.MaxDiagnostics < 0 {
		return fmt.Errorf("%s: [diagnostics].max-diagnostics must not be negative", path)
	}
	if cfg.Diagnostics.TreatErrAsBug < 0 {
		return fmt.Errorf("%s: [diagnostics].treat-err-as-bug must not be negative", path)
	}
	for _, id := range cfg.Diagnostics.Deny {
		if _, ok := diag.ParseCode(id); !ok {
			return fmt.Errorf("%s: [diagnostics].deny lists unknown code %q", path, id)
		}
	}
	return nil
}

// DiagFlags converts the section into session policy for diag.Handler.
func (c *DiagnosticsConfig) DiagFlags() diag.Flags {
	flags := diag.Flags{
		CanEmitWarnings:    c.Warnings,
		WarningsAsErrors:   c.WarningsAsErrors,
		ContinueAfterError: c.ContinueAfterError,
		TreatErrAsBug:      c.TreatErrAsBug,
	}
	// Список deny проверен при загрузке, нераспознанные коды сюда не
	// попадают.
	for _, id := range c.Deny {
		if code, ok := diag.ParseCode(id); ok {
			flags.Deny(code)
		}
	}
	return flags
}

// IsValidProjectName reports whether name can serve as a project name:
// an ASCII identifier, with dashes allowed after the first character.
func IsValidProjectName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r > unicode.MaxASCII {
			return false
		}
		if i == 0 && r != '_' && !unicode.IsLetter(r) {
			return false
		}
		if i > 0 && r != '_' && r != '-' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
