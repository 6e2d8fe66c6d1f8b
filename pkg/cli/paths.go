package cli

import (
	"os"
	"path/filepath"
)

// Paths resolves the torfl directory layout under the user's home.
type Paths struct {
	// HomeDir is the user's home directory.
	HomeDir string
}

// NewPaths creates a new Paths instance.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns the base directory (~/.torfl).
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns the config file path (~/.torfl/config.yaml).
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// DataDir returns the settings database directory (~/.torfl/data).
func (p *Paths) DataDir() string {
	return filepath.Join(p.BaseDir(), "data")
}

// LogDir returns the log directory (~/.torfl/logs).
func (p *Paths) LogDir() string {
	return filepath.Join(p.BaseDir(), "logs")
}

// VocabDir returns the vocabulary unit directory
// (~/.torfl/content/vocab).
func (p *Paths) VocabDir() string {
	return filepath.Join(p.BaseDir(), "content", "vocab")
}

// ExamDir returns the exam set directory (~/.torfl/content/exams).
func (p *Paths) ExamDir() string {
	return filepath.Join(p.BaseDir(), "content", "exams")
}

// EnsureBaseDir creates the base directory if it doesn't exist.
func (p *Paths) EnsureBaseDir() error {
	return os.MkdirAll(p.BaseDir(), 0755)
}

// EnsureDataDir creates the data directory if it doesn't exist.
func (p *Paths) EnsureDataDir() error {
	return os.MkdirAll(p.DataDir(), 0755)
}

// EnsureLogDir creates the log directory if it doesn't exist.
func (p *Paths) EnsureLogDir() error {
	return os.MkdirAll(p.LogDir(), 0755)
}

// EnsureContentDirs creates the vocabulary and exam directories.
func (p *Paths) EnsureContentDirs() error {
	if err := os.MkdirAll(p.VocabDir(), 0755); err != nil {
		return err
	}
	return os.MkdirAll(p.ExamDir(), 0755)
}

// LogPath returns a path within the log directory.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogDir(), name)
}
