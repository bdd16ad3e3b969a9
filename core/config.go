package core

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName string
		Env     string // DEV (default), TEST, QA, PROD
		Debug   bool
		Build   string
		WorkDir string

		// default course used when a command does not specify one
		CourseID string

		// root directory for downloaded submissions
		DownloadDir string

		Google GoogleConfig

		RollbarToken string
	}

	GoogleConfig struct {
		ClientID     string
		ClientSecret string
		RedirectPort int
		Scopes       []string

		// service account key; OAuth is used when the file is absent
		ServiceAccountFile string
		TokenFile          string

		RequestTimeout time.Duration
	}
)

var defaultScopes = []string{
	"https://www.googleapis.com/auth/classroom.courses",
	"https://www.googleapis.com/auth/classroom.rosters",
	"https://www.googleapis.com/auth/classroom.coursework.students",
	"https://www.googleapis.com/auth/classroom.coursework.me",
	"https://www.googleapis.com/auth/drive.readonly",
}

// NewConfig loads the configuration from defaults, an optional .env file
// and environment variables (prefixed with the current ENV).
func NewConfig(build string) *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Darasa")
	conf.SetDefault("courseId", "")
	conf.SetDefault("downloadDir", "downloads")
	conf.SetDefault("googleClientId", "")
	conf.SetDefault("googleClientSecret", "")
	conf.SetDefault("googleRedirectPort", 8080)
	conf.SetDefault("googleScopes", strings.Join(defaultScopes, ","))
	conf.SetDefault("googleServiceAccountFile", "credentials.json")
	conf.SetDefault("googleTokenFile", "token.json")
	conf.SetDefault("googleRequestTimeout", 60*time.Second)

	env := os.Getenv("ENV")
	if env == "" {
		env = "DEV"
	}
	conf.SetEnvPrefix(env)

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, ".env")
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:      conf.GetString("appName"),
		Env:          env,
		Debug:        conf.GetBool("debug"),
		Build:        build,
		WorkDir:      wd,
		CourseID:     conf.GetString("courseId"),
		DownloadDir:  conf.GetString("downloadDir"),
		RollbarToken: conf.GetString("rollbarToken"),
		Google: GoogleConfig{
			ClientID:           conf.GetString("googleClientId"),
			ClientSecret:       conf.GetString("googleClientSecret"),
			RedirectPort:       conf.GetInt("googleRedirectPort"),
			Scopes:             splitScopes(conf.GetString("googleScopes")),
			ServiceAccountFile: filepath.Join(wd, conf.GetString("googleServiceAccountFile")),
			TokenFile:          filepath.Join(wd, conf.GetString("googleTokenFile")),
			RequestTimeout:     conf.GetDuration("googleRequestTimeout"),
		},
	}
}

func (c *Config) IsTest() bool { return c.Env == "TEST" }

func splitScopes(s string) []string {
	var scopes []string
	for _, scope := range strings.Split(s, ",") {
		if scope = strings.TrimSpace(scope); scope != "" {
			scopes = append(scopes, scope)
		}
	}
	return scopes
}

// Getwd returns the current working directory; config and token files are
// resolved relative to it.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	return wd
}
