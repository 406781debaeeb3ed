package program

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/naoina/toml"
)

// ConfigFile is looked up in the project root.
const ConfigFile = "sharpen.toml"

// Config is the project configuration:
//
//	extensions = [".ssc"]
//	exclude = ["generated/*", "*.Designer.ssc"]
//	jobs = 4
//	unsafe = false
type Config struct {
	// Extensions selects source files by suffix.
	Extensions []string
	// Exclude holds slash-separated glob patterns matched against paths
	// relative to the root and against base names.
	Exclude []string
	// Jobs bounds the number of units parsed concurrently. Zero means one
	// per CPU.
	Jobs int
	// Unsafe parses every unit as if it were inside an unsafe context.
	Unsafe bool
}

func DefaultConfig() Config {
	return Config{Extensions: []string{".ssc", ".cs"}}
}

var tomlSettings = toml.Config{
	NormFieldName: toml.DefaultConfig.NormFieldName,
	FieldToKey:    toml.DefaultConfig.FieldToKey,
	MissingField: func(rt reflect.Type, field string) error {
		return fmt.Errorf("field '%s' is not defined in %s", field, ConfigFile)
	},
}

// LoadConfig reads ConfigFile from dir. A missing file yields the defaults.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	file := filepath.Join(dir, ConfigFile)
	f, err := os.Open(file)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(&cfg); err != nil {
		if _, ok := err.(*toml.LineError); ok {
			return cfg, fmt.Errorf("%s, %w", file, err)
		}
		return cfg, fmt.Errorf("decode %s: %w", file, err)
	}
	return cfg, nil
}

// Includes reports whether the slash-separated relative path names a
// source file.
func (c Config) Includes(rel string) bool {
	if c.excluded(rel) {
		return false
	}
	for _, ext := range c.Extensions {
		if strings.HasSuffix(rel, ext) {
			return true
		}
	}
	return false
}

// SkipDir reports whether a directory is left out of scans: hidden
// directories and excluded ones.
func (c Config) SkipDir(rel, name string) bool {
	return strings.HasPrefix(name, ".") || c.excluded(rel)
}

func (c Config) excluded(rel string) bool {
	base := path.Base(rel)
	for _, pattern := range c.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
		if dir, ok := strings.CutSuffix(pattern, "/*"); ok && (rel == dir || strings.HasPrefix(rel, dir+"/")) {
			return true
		}
	}
	return false
}

func (c Config) jobs() int {
	if c.Jobs > 0 {
		return c.Jobs
	}
	return runtime.NumCPU()
}
