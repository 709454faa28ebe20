// Package inferctl implements the operational CLI for a running inferd
// instance: one-shot generation, status inspection, and readiness waiting.
package inferctl

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// BuildRootCmd constructs the Cobra command tree.
func BuildRootCmd() *cobra.Command {
	var addr string
	root := &cobra.Command{
		Use:           "inferctl",
		Short:         "Client for the inferd generation gateway",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defaultAddr := "http://127.0.0.1:8001"
	if v := os.Getenv("INFERD_URL"); v != "" {
		defaultAddr = v
	}
	root.PersistentFlags().StringVar(&addr, "addr", defaultAddr, "Base URL of the inferd server (defaults INFERD_URL)")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Print gateway status as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := newClient(addr).status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}

	var (
		temperature float64
		topP        float64
		maxTokens   int
	)
	generateCmd := &cobra.Command{
		Use:     "generate [prompt]...",
		Short:   "Run one generation request and print the outputs",
		Example: "  inferctl generate \"Write a haiku about the ocean.\"",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := map[string]any{}
			if cmd.Flags().Changed("temperature") {
				params["temperature"] = temperature
			}
			if cmd.Flags().Changed("top-p") {
				params["top_p"] = topP
			}
			if cmd.Flags().Changed("max-tokens") {
				params["max_tokens"] = maxTokens
			}
			out, err := newClient(addr).generate(cmd.Context(), args, params)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	generateCmd.Flags().Float64Var(&temperature, "temperature", 0.8, "Sampling temperature")
	generateCmd.Flags().Float64Var(&topP, "top-p", 0.95, "Nucleus sampling probability")
	generateCmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Maximum new tokens per prompt")

	var timeout time.Duration
	waitReadyCmd := &cobra.Command{
		Use:   "wait-ready",
		Short: "Block until the gateway reports ready",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return newClient(addr).waitReady(cmd.Context(), timeout)
		},
	}
	waitReadyCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")

	root.AddCommand(statusCmd, generateCmd, waitReadyCmd)
	return root
}
