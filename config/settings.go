package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"reelhouse/internal/jsonfile"
)

// Environment variables that override the stored upstream credentials.
const (
	EnvConfigPath = "REELHOUSE_CONFIG"
	EnvTMDBAPIKey = "TMDB_API_KEY"
	EnvOMDBAPIKey = "OMDB_API_KEY"
)

// DefaultConfigPath is used when EnvConfigPath is unset.
var DefaultConfigPath = filepath.Join("cache", "settings.json")

var ErrConfigPathNotSet = errors.New("config path not set")

type ServerSettings struct {
	Host string `json:"host"`
	Port int    `json:"port"`
	// AllowedOrigins are trusted for CORS on top of local network origins.
	AllowedOrigins []string `json:"allowedOrigins"`
}

type MetadataSettings struct {
	TMDBAPIKey  string `json:"tmdbApiKey"`
	OMDBAPIKey  string `json:"omdbApiKey"`
	TMDBBaseURL string `json:"tmdbBaseUrl,omitempty"`
	OMDBBaseURL string `json:"omdbBaseUrl,omitempty"`
	Language    string `json:"language"`
	// RequestsPerSecond paces calls to the upstream providers; 0 disables pacing.
	RequestsPerSecond float64 `json:"requestsPerSecond"`
	Burst             int     `json:"burst"`
}

type CacheSettings struct {
	Directory string `json:"directory"`
}

type DatabaseSettings struct {
	Path string `json:"path"`
}

type SessionSettings struct {
	DurationHours int `json:"durationHours"`
	// LoginPerMinute bounds signup and login attempts per client IP.
	LoginPerMinute int `json:"loginPerMinute"`
}

// LogConfig controls the rotating log file. An empty File logs to stdout only.
type LogConfig struct {
	File       string `json:"file"`
	MaxSize    int    `json:"maxSize"`
	MaxAge     int    `json:"maxAge"`
	MaxBackups int    `json:"maxBackups"`
	Compress   bool   `json:"compress"`
}

type Settings struct {
	Server   ServerSettings   `json:"server"`
	Metadata MetadataSettings `json:"metadata"`
	Cache    CacheSettings    `json:"cache"`
	Database DatabaseSettings `json:"database"`
	Sessions SessionSettings  `json:"sessions"`
	Log      LogConfig        `json:"log"`
}

func DefaultSettings() Settings {
	return Settings{
		Server:   ServerSettings{Host: "0.0.0.0", Port: 7777, AllowedOrigins: []string{}},
		Metadata: MetadataSettings{Language: "en-US", RequestsPerSecond: 20, Burst: 20},
		Cache:    CacheSettings{Directory: "cache"},
		Database: DatabaseSettings{Path: filepath.Join("cache", "reelhouse.db")},
		Sessions: SessionSettings{DurationHours: 24 * 7, LoginPerMinute: 5},
		Log: LogConfig{
			File:       filepath.Join("cache", "logs", "reelhouse.log"),
			MaxSize:    10,
			MaxAge:     14,
			MaxBackups: 5,
			Compress:   true,
		},
	}
}

// Manager loads and saves settings.json.
type Manager struct {
	fs     afero.Fs
	path   string
	getenv func(string) string
}

func NewManager(configPath string) *Manager {
	return NewManagerFs(afero.NewOsFs(), configPath)
}

// NewManagerFs is NewManager on an explicit filesystem.
func NewManagerFs(fs afero.Fs, configPath string) *Manager {
	return &Manager{fs: fs, path: configPath, getenv: os.Getenv}
}

// PathFromEnv returns EnvConfigPath or DefaultConfigPath.
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultConfigPath
}

func (m *Manager) Path() string { return m.path }

// Load reads settings.json, creating it with defaults if missing. Zero
// values are backfilled from defaults and API keys from the environment
// win over the file.
func (m *Manager) Load() (Settings, error) {
	if m.path == "" {
		return Settings{}, ErrConfigPathNotSet
	}

	var s Settings
	ok, err := jsonfile.Read(m.fs, m.path, &s)
	if err != nil {
		return Settings{}, err
	}
	if !ok {
		s = DefaultSettings()
		if err := m.Save(s); err != nil {
			return Settings{}, err
		}
	}

	s.applyDefaults()
	m.applyEnv(&s)
	return s, nil
}

// Save writes the provided settings to disk atomically.
func (m *Manager) Save(s Settings) error {
	if m.path == "" {
		return ErrConfigPathNotSet
	}
	if dir := filepath.Dir(m.path); dir != "." && dir != "" {
		if err := m.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return jsonfile.Write(m.fs, m.path, s)
}

func (s *Settings) applyDefaults() {
	d := DefaultSettings()
	if strings.TrimSpace(s.Server.Host) == "" {
		s.Server.Host = d.Server.Host
	}
	if s.Server.Port <= 0 {
		s.Server.Port = d.Server.Port
	}
	if strings.TrimSpace(s.Metadata.Language) == "" {
		s.Metadata.Language = d.Metadata.Language
	}
	if s.Metadata.Burst <= 0 {
		s.Metadata.Burst = d.Metadata.Burst
	}
	if strings.TrimSpace(s.Cache.Directory) == "" {
		s.Cache.Directory = d.Cache.Directory
	}
	if strings.TrimSpace(s.Database.Path) == "" {
		s.Database.Path = filepath.Join(s.Cache.Directory, "reelhouse.db")
	}
	if s.Sessions.DurationHours <= 0 {
		s.Sessions.DurationHours = d.Sessions.DurationHours
	}
	if s.Sessions.LoginPerMinute <= 0 {
		s.Sessions.LoginPerMinute = d.Sessions.LoginPerMinute
	}
}

func (m *Manager) applyEnv(s *Settings) {
	if v := strings.TrimSpace(m.getenv(EnvTMDBAPIKey)); v != "" {
		s.Metadata.TMDBAPIKey = v
	}
	if v := strings.TrimSpace(m.getenv(EnvOMDBAPIKey)); v != "" {
		s.Metadata.OMDBAPIKey = v
	}
}
