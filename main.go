package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/tanpawarit/goal-pipeline/agent/agents/orchestrator"
	"github.com/tanpawarit/goal-pipeline/agent/agents/specialist"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	configx "github.com/tanpawarit/goal-pipeline/pkg/config"
	"github.com/tanpawarit/goal-pipeline/pkg/httpserver"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string
	root := &cobra.Command{
		Use:           "goal-pipeline",
		Short:         "Plan, run and validate agent pipelines for free-text goals",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			configx.SetEnvFile(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default ./.env when present)")

	root.AddCommand(newRunCmd(), newAgentCmd(), newAgentsCmd(), newServeCmd())
	return root
}

func newRunCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "run [goal...]",
		Short: "Run one goal through the pipeline (reads the goal from stdin when omitted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.TrimSpace(strings.Join(args, " "))
			if goal == "" {
				var err error
				if goal, err = promptGoal(cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			res, runErr := a.orchestrator.Run(cmd.Context(), goal)
			if asJSON {
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				return runErr
			}
			printResult(cmd.OutOrStdout(), res, runErr)
			return runErr
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}

func newAgentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agent <name> [goal...]",
		Short: "Run a single agent against a fresh context",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			out, err := a.orchestrator.RunAgent(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
}

func newAgentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "agents",
		Short: "List registered agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			agentCfg, err := loadAgentConfig()
			if err != nil {
				return err
			}
			registry, err := specialist.NewRegistry(agentCfg)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, info := range registry.Catalog() {
				fmt.Fprintf(w, "%s  %s\n", color.CyanString("%-18s", info.Name), info.Description)
			}
			return nil
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context())
			if err != nil {
				return err
			}
			serverCfg, err := configx.New[httpserver.Config]("SERVER")
			if err != nil {
				return err
			}
			srv, err := httpserver.New(*serverCfg, a.orchestrator,
				httpserver.WithLogger(a.logger),
				httpserver.WithGatherer(a.metrics),
			)
			if err != nil {
				return err
			}
			return srv.Start(cmd.Context())
		},
	}
}

func promptGoal(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, color.CyanString("Enter goal: "))
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	goal := strings.TrimSpace(line)
	if goal == "" {
		return "", fmt.Errorf("%w: goal is empty", contractx.ErrValidation)
	}
	return goal, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, res *orchestrator.Result, runErr error) {
	if res == nil {
		return
	}
	bold := color.New(color.Bold)

	source := string(res.Plan.Source)
	if res.Plan.IsFallback() {
		source = color.YellowString(source)
	}
	fmt.Fprintf(w, "%s %s (%s)\n", bold.Sprint("Plan:"), strings.Join(res.Plan.Sequence, " -> "), source)

	if runErr != nil {
		if res.FailedStep != nil {
			fmt.Fprintf(w, "%s step %d (%s): %v\n", color.RedString("Aborted at"), res.FailedStep.Index, res.FailedStep.Agent, res.FailedStep.Err)
		}
		fmt.Fprintln(w, bold.Sprint("Partial result:"))
		_ = printJSON(w, res.Context)
		return
	}

	if summary, ok := res.Context[contractx.KeySummary].(string); ok {
		fmt.Fprintf(w, "%s %s\n", bold.Sprint("Summary:"), color.GreenString(summary))
	}
	v := res.Validation.Result
	verdict := color.GreenString("achieved")
	if !v.GoalAchieved {
		verdict = color.RedString("not achieved")
	}
	fmt.Fprintf(w, "%s %s, confidence %d, quality %d (%s)\n", bold.Sprint("Validation:"), verdict, v.Confidence, v.QualityScore, res.Validation.Source)
	if len(v.MissingData) > 0 {
		fmt.Fprintf(w, "  missing: %s\n", strings.Join(v.MissingData, ", "))
	}
	for _, s := range v.SuggestedImprovements {
		fmt.Fprintf(w, "  suggestion: %s\n", s)
	}
	fmt.Fprintf(w, "%s %s in %s\n", bold.Sprint("Run:"), res.RunID, res.Duration.Round(time.Millisecond))
}
