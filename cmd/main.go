package main

import (
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"

	"university-form-agent/internal/builder"
)

var environment string

var rootCmd = &cobra.Command{
	Use:   "form-agent",
	Short: "University form assistant",
	Long: `form-agent talks with a user about the university form they need,
asks follow-up questions through an LLM, and generates the form as JSON.

Configuration is read from the environment, optionally seeded from .env.<env>.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := builder.Build(environment)
		if err != nil {
			return err
		}
		return app.Run()
	},
}

var lambdaCmd = &cobra.Command{
	Use:   "lambda",
	Short: "Run as an AWS Lambda behind API Gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, logger, err := builder.BuildLambda(environment)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		lambda.Start(h.Handle)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&environment, "env", "local", "Environment to run (local, prod, or custom)")
	rootCmd.AddCommand(serveCmd, lambdaCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
