// Package config holds the run configuration for surveywalk. Values come
// from defaults, an optional config file, SURVEYWALK_* environment variables
// and CLI flags, merged through viper in that order.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// TargetConfig identifies the survey instrument under test.
type TargetConfig struct {
	URL         string `mapstructure:"url"`
	CustomerID  string `mapstructure:"customer_id"`
	StudyID     string `mapstructure:"study_id"`
	PackageName string `mapstructure:"package_name"`
	Language    string `mapstructure:"language"`
	Version     string `mapstructure:"version"`
}

// BrowserConfig controls the rod session.
type BrowserConfig struct {
	Headless   bool   `mapstructure:"headless"`
	Width      int    `mapstructure:"width"`
	Height     int    `mapstructure:"height"`
	ProfileDir string `mapstructure:"profile_dir"`
}

// DOMConfig captures the structural conventions of the survey platform.
// The traversal only knows the page through these markers.
type DOMConfig struct {
	// RootSelector locates the survey root container, the subtree holding
	// the current page's questions.
	RootSelector string `mapstructure:"root_selector"`
	// QuestionSelector is the question-card convention, one match per
	// question container under the root.
	QuestionSelector string `mapstructure:"question_selector"`
	// RequiredMarker is the trailing marker on required question text.
	RequiredMarker string `mapstructure:"required_marker"`
	// SliderTrackSelector marks a VAS slider track inside a container.
	SliderTrackSelector string `mapstructure:"slider_track_selector"`
	// ContainerDataAttr is an identifying data attribute question
	// containers may carry, preferred over positional selectors.
	ContainerDataAttr string `mapstructure:"container_data_attr"`
}

// TimingConfig holds the explicit waits standing in for DOM settling.
type TimingConfig struct {
	SettleDelay       time.Duration `mapstructure:"settle_delay"`
	NavDebounce       time.Duration `mapstructure:"nav_debounce"`
	TransitionPoll    time.Duration `mapstructure:"transition_poll"`
	TransitionRetries int           `mapstructure:"transition_retries"`
	NavTimeout        time.Duration `mapstructure:"nav_timeout"`
}

// TraversalConfig bounds the page loop.
type TraversalConfig struct {
	MaxPages        int `mapstructure:"max_pages"`
	MaxRevealRounds int `mapstructure:"max_reveal_rounds"`
}

// ScreenshotConfig bounds the viewport-growing capture procedure.
type ScreenshotConfig struct {
	MaxViewportHeight int           `mapstructure:"max_viewport_height"`
	FallbackHeight    int           `mapstructure:"fallback_height"`
	ReflowDelay       time.Duration `mapstructure:"reflow_delay"`
}

// SynthConfig selects the test value synthesizer.
type SynthConfig struct {
	Provider string `mapstructure:"provider"` // heuristic, claude, openai
	Model    string `mapstructure:"model"`
}

// OutputConfig controls report persistence.
type OutputConfig struct {
	Dir        string `mapstructure:"dir"`
	TraceGIF   bool   `mapstructure:"trace_gif"`
	Thumbnails bool   `mapstructure:"thumbnails"`
}

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // console or json
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// Config is the full surveywalk configuration.
type Config struct {
	Target     TargetConfig     `mapstructure:"target"`
	Browser    BrowserConfig    `mapstructure:"browser"`
	DOM        DOMConfig        `mapstructure:"dom"`
	Timing     TimingConfig     `mapstructure:"timing"`
	Traversal  TraversalConfig  `mapstructure:"traversal"`
	Screenshot ScreenshotConfig `mapstructure:"screenshot"`
	Synth      SynthConfig      `mapstructure:"synth"`
	Output     OutputConfig     `mapstructure:"output"`
	Logger     LoggerConfig     `mapstructure:"logger"`
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.width", 1280)
	v.SetDefault("browser.height", 900)

	v.SetDefault("dom.root_selector", ".survey-container")
	v.SetDefault("dom.question_selector", ".question-card")
	v.SetDefault("dom.required_marker", "*")
	v.SetDefault("dom.slider_track_selector", ".slider-track, .vas-track")
	v.SetDefault("dom.container_data_attr", "data-question-id")

	v.SetDefault("timing.settle_delay", 600*time.Millisecond)
	v.SetDefault("timing.nav_debounce", 400*time.Millisecond)
	v.SetDefault("timing.transition_poll", 500*time.Millisecond)
	v.SetDefault("timing.transition_retries", 10)
	v.SetDefault("timing.nav_timeout", 15*time.Second)

	v.SetDefault("traversal.max_pages", 100)
	v.SetDefault("traversal.max_reveal_rounds", 10)

	v.SetDefault("screenshot.max_viewport_height", 8000)
	v.SetDefault("screenshot.fallback_height", 2400)
	v.SetDefault("screenshot.reflow_delay", 250*time.Millisecond)

	v.SetDefault("synth.provider", "heuristic")

	v.SetDefault("output.dir", "surveywalk-out")
	v.SetDefault("output.trace_gif", false)
	v.SetDefault("output.thumbnails", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
}

// Load builds a Config from defaults, an optional file and the environment.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("SURVEYWALK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the traversal cannot run with.
func (c *Config) Validate() error {
	if c.DOM.RootSelector == "" || c.DOM.QuestionSelector == "" {
		return fmt.Errorf("dom.root_selector and dom.question_selector must not be empty")
	}
	if c.Traversal.MaxPages < 1 {
		return fmt.Errorf("traversal.max_pages must be at least 1, got %d", c.Traversal.MaxPages)
	}
	if c.Traversal.MaxRevealRounds < 1 {
		return fmt.Errorf("traversal.max_reveal_rounds must be at least 1, got %d", c.Traversal.MaxRevealRounds)
	}
	if c.Screenshot.MaxViewportHeight < c.Screenshot.FallbackHeight {
		return fmt.Errorf("screenshot.max_viewport_height (%d) below fallback height (%d)",
			c.Screenshot.MaxViewportHeight, c.Screenshot.FallbackHeight)
	}
	switch c.Synth.Provider {
	case "heuristic", "claude", "openai":
	default:
		return fmt.Errorf("unknown synth.provider %q (supported: heuristic, claude, openai)", c.Synth.Provider)
	}
	return nil
}
