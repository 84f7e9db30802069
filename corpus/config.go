package corpus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/gobwas/glob"
	"github.com/spf13/viper"
)

// DefaultConfigName is looked up in the source root when no config path is
// given.
const DefaultConfigName = "config.json"

var (
	// ErrInvalidConfig wraps every configuration problem.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the options read from config.json and CONCLUDE_* variables.
type Config struct {
	// Include, when non-empty, keeps only files ending in one of these.
	Include []string `mapstructure:"include"`
	// Exclude drops files ending in one of these. Ignored when Include is set.
	Exclude []string `mapstructure:"exclude"`
	// Ignore holds glob patterns matched against slash separated relative
	// paths, e.g. "vendor/**".
	Ignore        []string              `mapstructure:"ignore"`
	MaxFileSize   int64                 `mapstructure:"max_file_size"`
	Workers       int                   `mapstructure:"workers"`
	MinConfidence int                   `mapstructure:"min_confidence"`
	SkipVendored  bool                  `mapstructure:"skip_vendored"`
	Rules         map[string]RuleConfig `mapstructure:"rules"`

	// ConfigFile is the file the config was read from, if any.
	ConfigFile string `mapstructure:"-"`
}

// RuleConfig overrides or adds a language rule. The map key is the snake case
// syntax name ("python", "c#", "java_script") unless Syntax is given. A
// configured rule replaces the built in one as a whole.
type RuleConfig struct {
	Syntax            string `mapstructure:"syntax"`
	SingleComment     string `mapstructure:"single_comment"`
	MultiCommentStart string `mapstructure:"multi_comment_start"`
	MultiCommentEnd   string `mapstructure:"multi_comment_end"`
	PrintFunc         string `mapstructure:"print_func"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() *Config {
	return &Config{
		MaxFileSize:   8 << 20,
		Workers:       runtime.NumCPU(),
		MinConfidence: 10,
	}
}

// LoadConfig reads configuration. When path is empty, config.json in
// sourceRoot is used if present.
func LoadConfig(path string, sourceRoot string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		// only config.json belongs to us; config.yaml and friends in the
		// tree are project files
		candidate := filepath.Join(sourceRoot, DefaultConfigName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			path = candidate
		}
	}
	if path != "" {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CONCLUDE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("include", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("ignore", []string{})
	v.SetDefault("max_file_size", defaults.MaxFileSize)
	v.SetDefault("workers", defaults.Workers)
	v.SetDefault("min_confidence", defaults.MinConfidence)
	v.SetDefault("skip_vendored", defaults.SkipVendored)

	if path != "" {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every problem found in cfg.
func (cfg *Config) Validate() error {
	var errs []error

	for _, s := range append(append([]string{}, cfg.Include...), cfg.Exclude...) {
		if s == "" {
			errs = append(errs, errors.New("empty include/exclude suffix"))
		}
	}
	for _, p := range cfg.Ignore {
		if _, err := glob.Compile(p, '/'); err != nil {
			errs = append(errs, fmt.Errorf("ignore pattern '%s': %w", p, err))
		}
	}
	if cfg.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("max_file_size must not be negative, got %d", cfg.MaxFileSize))
	}
	if cfg.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", cfg.Workers))
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 100 {
		errs = append(errs, fmt.Errorf("min_confidence must be between 0 and 100, got %d", cfg.MinConfidence))
	}
	if _, err := cfg.RuleTable(DefaultRules); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// RuleTable returns base with the configured rules applied.
func (cfg *Config) RuleTable(base *RuleTable) (*RuleTable, error) {
	if len(cfg.Rules) == 0 {
		return base, nil
	}
	keys := make([]string, 0, len(cfg.Rules))
	for k := range cfg.Rules {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var rules []LanguageRule
	var errs []error
	for _, k := range keys {
		rc := cfg.Rules[k]
		syntax := rc.Syntax
		if syntax == "" {
			var ok bool
			if syntax, ok = base.SyntaxForKey(k); !ok {
				errs = append(errs, fmt.Errorf("%w: unknown syntax '%s' (set \"syntax\" to add a new one)", ErrInvalidRule, k))
				continue
			}
		}
		rules = append(rules, LanguageRule{
			Syntax:            syntax,
			SingleComment:     rc.SingleComment,
			MultiCommentStart: rc.MultiCommentStart,
			MultiCommentEnd:   rc.MultiCommentEnd,
			PrintMarker:       rc.PrintFunc,
		})
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return base.With(rules...)
}

// CacheFingerprint identifies everything that shapes an extraction result:
// the rule table and the settings that change how bytes are decoded.
func (cfg *Config) CacheFingerprint(rules *RuleTable) uint64 {
	var buf [16]byte
	binary.LittleEndian.PutUint64(buf[:8], rules.Fingerprint())
	binary.LittleEndian.PutUint64(buf[8:], uint64(cfg.MinConfidence))
	return xxhash.Sum64(buf[:])
}

// WorkerCount is the effective size of the worker pool.
func (cfg *Config) WorkerCount() int {
	if cfg.Workers <= 0 {
		return runtime.NumCPU()
	}
	return cfg.Workers
}
