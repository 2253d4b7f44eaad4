package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/frahmantamala/star-supla/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	configPath   string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:           "supla",
	Short:         "Star Supla admin client",
	Long:          `For managing users, roles, pages, products and reservations of a Star Supla project.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, describeError(err))
		os.Exit(1)
	}
}

func describeError(err error) string {
	if appErr, ok := internal.IsAppError(err); ok {
		return fmt.Sprintf("%s: %s", appErr.Type, appErr.GetDetailedMessage())
	}
	return err.Error()
}

func loadConfig(path string) (*internal.Config, error) {
	// Docker deployments carry everything in SUPLA_* variables
	if os.Getenv("APP_ENV") == "production" || os.Getenv("DOCKER_ENV") == "true" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}
	v.SetEnvPrefix("SUPLA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("error validating config: %w", err)
	}

	return &cfg, nil
}

// setDefaults registers every key so AutomaticEnv can fill it without a
// config file.
func setDefaults(v *viper.Viper) {
	def := internal.DefaultConfig()

	v.SetDefault("env", def.Env)
	v.SetDefault("api.base_url", def.API.BaseURL)
	v.SetDefault("api.project_id", def.API.ProjectID)
	v.SetDefault("api.timeout", def.API.Timeout)
	v.SetDefault("session.driver", def.Session.Driver)
	v.SetDefault("session.path", def.Session.Path)
	v.SetDefault("session.secret", def.Session.Secret)
	v.SetDefault("redis.addr", def.Redis.Addr)
	v.SetDefault("redis.password", def.Redis.Password)
	v.SetDefault("redis.db", def.Redis.DB)
	v.SetDefault("redis.prefix", def.Redis.Prefix)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default ./config.yml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", outputTable, "output format: table or json")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwdCmd)
	rootCmd.AddCommand(canCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(rolesCmd)
	rootCmd.AddCommand(pagesCmd)
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(reservationsCmd)
	rootCmd.AddCommand(doctypesCmd)
	rootCmd.AddCommand(statsCmd)
}
