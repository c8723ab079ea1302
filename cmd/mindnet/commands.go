package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/terraincognita07/mindnet/internal/cli"
	"github.com/terraincognita07/mindnet/internal/config"
	"github.com/terraincognita07/mindnet/internal/db"
	"github.com/terraincognita07/mindnet/internal/logging"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "mindnet",
		Short:         "Mental Health Net: CBT journaling with crisis alerts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a mindnet.yaml config file")

	root.AddCommand(newServeCommand(&configPath), newResetPasswordCommand(&configPath))
	return root
}

func newServeCommand(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg)
		},
	}
}

func newResetPasswordCommand(configPath *string) *cobra.Command {
	request := cli.ResetRequest{}
	var prompt bool

	command := &cobra.Command{
		Use:   "reset-password",
		Short: "Replace the password of a patient or therapist account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if prompt {
				request.Password, err = cli.PromptNewPassword(os.Stdin, cmd.OutOrStdout())
				if err != nil {
					return err
				}
			}

			database, err := db.Open(databaseSettings(cfg), zap.NewNop())
			if err != nil {
				return err
			}
			if sqlDB, err := database.DB(); err == nil {
				defer sqlDB.Close()
			}
			return cli.RunResetPassword(cmd.Context(), database, request, cmd.OutOrStdout())
		},
	}
	command.Flags().StringVar(&request.Username, "username", "", "account username")
	command.Flags().BoolVar(&request.Therapist, "therapist", false, "reset a therapist account instead of a patient")
	command.Flags().BoolVar(&prompt, "prompt", false, "read the new password from the terminal instead of generating one")
	_ = command.MarkFlagRequired("username")
	return command
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func databaseSettings(cfg config.Config) db.Settings {
	return db.Settings{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
}
