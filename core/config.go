package core

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
		MaxUploadSize   int64 // bytes
		DisableReqLogs  bool
	}

	JWTConfig struct {
		AccessLifetime  time.Duration
		RefreshLifetime time.Duration
	}

	DatabaseConfig struct {
		Driver        string // postgres (lib/pq) | pgx
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		MaxOpenConns  int
	}

	MediaConfig struct {
		Root string
		URL  string
	}

	LogConfig struct {
		Level string
		File  string
	}

	Config struct {
		Env          string // DEV (local; default), TEST, QA, PROD
		Debug        bool
		TestMode     bool
		AppName      string
		Build        string
		SecretKey    string
		WorkDir      string
		RollbarToken string
		SentryDSN    string

		Server   ServerConfig
		JWT      JWTConfig
		Database DatabaseConfig
		Media    MediaConfig
		Log      LogConfig
	}
)

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the configuration from the environment (and an optional config/.env.<env> file).
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Campus")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k2v^-c1l(s3q$7dmz=a0g+o!x#8w@u5rfp*yh&e9t4jnb6i_")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sentryDSN", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 10*time.Second)
	v.SetDefault("server.maxUploadSize", int64(5<<20))
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("jwt.accessLifetime", 5*time.Minute)
	v.SetDefault("jwt.refreshLifetime", 24*time.Hour)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "campus")
	v.SetDefault("database.user", "campus")
	v.SetDefault("database.password", "campus")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.maxOpenConns", 20)

	v.SetDefault("media.root", "media")
	v.SetDefault("media.url", "/media/")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	conf := &Config{
		Env:          env,
		Debug:        v.GetBool("debug"),
		TestMode:     v.GetBool("testMode"),
		AppName:      v.GetString("appName"),
		Build:        v.GetString("build"),
		SecretKey:    v.GetString("secretKey"),
		WorkDir:      wd,
		RollbarToken: v.GetString("rollbarToken"),
		SentryDSN:    v.GetString("sentryDSN"),
		Server: ServerConfig{
			Address:         v.GetString("server.address"),
			DebugAddress:    v.GetString("server.debugAddress"),
			ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
			MaxUploadSize:   v.GetInt64("server.maxUploadSize"),
			DisableReqLogs:  v.GetBool("server.disableReqLogs"),
		},
		JWT: JWTConfig{
			AccessLifetime:  v.GetDuration("jwt.accessLifetime"),
			RefreshLifetime: v.GetDuration("jwt.refreshLifetime"),
		},
		Database: DatabaseConfig{
			Driver:        v.GetString("database.driver"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			MaxOpenConns:  v.GetInt("database.maxOpenConns"),
		},
		Media: MediaConfig{
			Root: v.GetString("media.root"),
			URL:  v.GetString("media.url"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
			File:  v.GetString("log.file"),
		},
	}
	if !filepath.IsAbs(conf.Media.Root) {
		conf.Media.Root = filepath.Join(wd, conf.Media.Root)
	}
	return conf
}

// NewTestConfig returns the configuration used by tests: TEST mode, no request logs, media under dir.
func NewTestConfig(mediaRoot string) *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.Debug = false
	conf.TestMode = true
	conf.Server.DisableReqLogs = true
	conf.Media.Root = mediaRoot
	return conf
}

func (c *Config) String() string {
	return fmt.Sprintf("%s[%s] env=%s db=%s/%s", c.AppName, c.Build, c.Env, c.Database.Address(), c.Database.Name)
}
