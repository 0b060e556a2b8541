package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

const (
	configPathEnvVar  = "FRETSIGHT_CONFIG"
	analysisURLEnvVar = "FRETSIGHT_ANALYSIS_URL"
	listenAddrEnvVar  = "FRETSIGHT_LISTEN_ADDR"

	configDirName  = ".fretsight"
	configFileName = "config.yaml"
)

type settings struct {
	fadeDuration  time.Duration
	sweepInterval time.Duration
	frameInterval time.Duration
	manualFret    int
	tuning        tuning
	analysisURL   string
	listenAddr    string
}

func defaultSettings() settings {
	return settings{
		fadeDuration:  defaultFadeDuration,
		sweepInterval: defaultSweepInterval,
		frameInterval: 30 * time.Millisecond,
		manualFret:    defaultManualFret,
		tuning:        standardTuning,
		analysisURL:   "http://localhost:8000",
		listenAddr:    ":8080",
	}
}

// configFile mirrors config.yaml. Every key is optional.
type configFile struct {
	FadeDuration  string `yaml:"fade_duration,omitempty"`
	SweepInterval string `yaml:"sweep_interval,omitempty"`
	FrameInterval string `yaml:"frame_interval,omitempty"`
	ManualFret    *int   `yaml:"manual_fret,omitempty"`
	Tuning        []int  `yaml:"tuning,omitempty"`
	AnalysisURL   string `yaml:"analysis_url,omitempty"`
	ListenAddr    string `yaml:"listen_addr,omitempty"`
}

func defaultConfigPath() (string, error) {
	if p := os.Getenv(configPathEnvVar); p != "" {
		return p, nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configDirName, configFileName), nil
}

// loadSettings reads configPath (or the default location when empty) on top
// of the defaults. A missing file is not an error.
func loadSettings(configPath string) (settings, error) {
	stngs := defaultSettings()

	explicit := configPath != ""
	if !explicit {
		var err error
		configPath, err = defaultConfigPath()
		if err != nil {
			return stngs, err
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return stngs.withEnv(), nil
		}
		return stngs, errors.Wrap(err, "failed to read config")
	}

	stngs, err = parseSettings(data, stngs)
	if err != nil {
		return stngs, errors.Wrapf(err, "invalid config %s", configPath)
	}
	return stngs.withEnv(), nil
}

func parseSettings(data []byte, base settings) (settings, error) {
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return base, err
	}
	return cf.apply(base)
}

func (cf configFile) apply(s settings) (settings, error) {
	durations := []struct {
		name   string
		value  string
		target *time.Duration
	}{
		{"fade_duration", cf.FadeDuration, &s.fadeDuration},
		{"sweep_interval", cf.SweepInterval, &s.sweepInterval},
		{"frame_interval", cf.FrameInterval, &s.frameInterval},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return s, errors.Wrap(err, d.name)
		}
		if parsed <= 0 {
			return s, errors.Errorf("%s must be positive, got %s", d.name, d.value)
		}
		*d.target = parsed
	}

	if cf.ManualFret != nil {
		s.manualFret = clampInt(*cf.ManualFret, 0, maxManualFret)
	}

	if cf.Tuning != nil {
		if len(cf.Tuning) != numStrings {
			return s, errors.Errorf("tuning needs %d strings, got %d", numStrings, len(cf.Tuning))
		}
		copy(s.tuning[:], cf.Tuning)
	}

	if cf.AnalysisURL != "" {
		s.analysisURL = cf.AnalysisURL
	}
	if cf.ListenAddr != "" {
		s.listenAddr = cf.ListenAddr
	}
	return s, nil
}

func (s settings) withEnv() settings {
	if v := os.Getenv(analysisURLEnvVar); v != "" {
		s.analysisURL = v
	}
	if v := os.Getenv(listenAddrEnvVar); v != "" {
		s.listenAddr = v
	}
	return s
}
