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
		Debug    bool
		TestMode bool
		Env      string // DEV (default), TEST, QA, PROD
		AppName  string
		Build    string

		Server   ServerConfig
		Database DatabaseConfig
		Auth     AuthConfig
		Upload   UploadConfig

		RollbarToken string
	}

	ServerConfig struct {
		Host            string
		Address         string
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		URI  string
		Name string
	}

	AuthConfig struct {
		AccessSecret       string
		RefreshSecret      string
		AccessTokenExpiry  time.Duration
		RefreshTokenExpiry time.Duration
	}

	UploadConfig struct {
		Dir              string
		MaxFileSize      int64
		AllowedMimeTypes []string
	}
)

// NewConfig loads the app configuration from defaults, an optional
// config/.env.<env> file and environment variables (prefixed with the env name).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "AlmajiriSurvey")
	conf.SetDefault("build", "dev")
	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("shutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseUri", "mongodb://localhost:27017")
	conf.SetDefault("databaseName", "almajiri_survey")
	conf.SetDefault("accessSecret", "w3lp$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	conf.SetDefault("refreshSecret", "q0u9r&an!c-sch00ls=sup3r+s3cr3t(r3fr3sh)k3y")
	conf.SetDefault("accessTokenExpiry", 24*time.Hour)
	conf.SetDefault("refreshTokenExpiry", 7*24*time.Hour)
	conf.SetDefault("uploadDir", "./uploads")
	conf.SetDefault("maxFileSize", 10<<20)
	conf.SetDefault("allowedMimeTypes", []string{
		"image/jpeg",
		"image/png",
		"image/webp",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
		"text/csv",
	})
	conf.SetDefault("rollbarToken", "")

	env := os.Getenv("ENV")
	var testMode bool
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		testMode = true
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err = godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		Debug:    conf.GetBool("debug"),
		TestMode: testMode,
		Env:      env,
		AppName:  conf.GetString("appName"),
		Build:    conf.GetString("build"),
		Server: ServerConfig{
			Host:            conf.GetString("serverHost"),
			Address:         conf.GetString("serverAddress"),
			ShutdownTimeout: conf.GetDuration("shutdownTimeout"),
		},
		Database: DatabaseConfig{
			URI:  conf.GetString("databaseUri"),
			Name: conf.GetString("databaseName"),
		},
		Auth: AuthConfig{
			AccessSecret:       conf.GetString("accessSecret"),
			RefreshSecret:      conf.GetString("refreshSecret"),
			AccessTokenExpiry:  conf.GetDuration("accessTokenExpiry"),
			RefreshTokenExpiry: conf.GetDuration("refreshTokenExpiry"),
		},
		Upload: UploadConfig{
			Dir:              conf.GetString("uploadDir"),
			MaxFileSize:      conf.GetInt64("maxFileSize"),
			AllowedMimeTypes: conf.GetStringSlice("allowedMimeTypes"),
		},
		RollbarToken: conf.GetString("rollbarToken"),
	}
}
