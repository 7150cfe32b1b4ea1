package main

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/iliyamo/ndc-feature-tracker/internal/config"
	"github.com/iliyamo/ndc-feature-tracker/internal/database"
	"github.com/iliyamo/ndc-feature-tracker/internal/logger"
)

// settings reads flags, environment variables and an optional config file
// through one viper instance.  Keys match the server's variable names
// lowercased, so DB_HOST and --db-host set the same value.
type settings struct {
	v *viper.Viper
}

func newSettings() *settings {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "3306")
	v.SetDefault("db_user", "root")
	v.SetDefault("db_name", "ndc_tracker")
	v.SetDefault("log_level", "warn")
	return &settings{v: v}
}

func (s *settings) logger() *zap.Logger {
	return logger.New(s.v.GetString("log_level"), "console")
}

func (s *settings) openDB() (*sql.DB, error) {
	db, err := database.Open(
		s.v.GetString("db_user"),
		s.v.GetString("db_pass"),
		s.v.GetString("db_host"),
		s.v.GetString("db_port"),
		s.v.GetString("db_name"),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// aiConfig starts from the server's environment defaults and applies the
// CLI overrides.
func (s *settings) aiConfig() config.AIConfig {
	cfg := config.LoadAIConfig()
	if k := s.v.GetString("anthropic_api_key"); k != "" {
		cfg.APIKey = k
	}
	if m := s.v.GetString("ai_model"); m != "" {
		cfg.Model = m
	}
	if d := s.v.GetDuration("chat_timeout"); d > 0 {
		cfg.ChatTimeout = d
	}
	return cfg
}

func newRootCmd() *cobra.Command {
	s := newSettings()
	var cfgFile string

	root := &cobra.Command{
		Use:           "ndcctl",
		Short:         "Manage the NDC feature catalog and test chat questions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cfgFile == "" {
				return nil
			}
			s.v.SetConfigFile(cfgFile)
			if err := s.v.ReadInConfig(); err != nil {
				return fmt.Errorf("read config %s: %w", cfgFile, err)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML config file with the same keys as the environment (db_host, ...)")
	pf.String("db-host", "", "database host (DB_HOST)")
	pf.String("db-port", "", "database port (DB_PORT)")
	pf.String("db-user", "", "database user (DB_USER)")
	pf.String("db-pass", "", "database password (DB_PASS)")
	pf.String("db-name", "", "database name (DB_NAME)")
	pf.String("log-level", "", "debug, info, warn or error (LOG_LEVEL)")
	pf.String("aliases", "", "YAML alias tables replacing the built-in ones (ALIASES_FILE)")
	for _, name := range []string{"db-host", "db-port", "db-user", "db-pass", "db-name", "log-level", "aliases"} {
		key := strings.ReplaceAll(name, "-", "_")
		if name == "aliases" {
			key = "aliases_file"
		}
		_ = s.v.BindPFlag(key, pf.Lookup(name))
	}

	root.AddCommand(
		newMigrateCmd(s),
		newSeedCmd(s),
		newClassifyCmd(s),
		newContextCmd(s),
		newAskCmd(s),
	)
	return root
}

const cliTimeout = 30 * time.Second
