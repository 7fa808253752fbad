package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/tanpawarit/goal-pipeline/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	"github.com/tanpawarit/goal-pipeline/agent/pipeline"
)

func init() {
	color.NoColor = true
}

func TestPromptGoal(t *testing.T) {
	var out bytes.Buffer
	goal, err := promptGoal(strings.NewReader("  next launch weather \n"), &out)
	if err != nil {
		t.Fatalf("promptGoal() error = %v", err)
	}
	if goal != "next launch weather" {
		t.Fatalf("goal = %q", goal)
	}
	if !strings.Contains(out.String(), "Enter goal:") {
		t.Fatalf("prompt = %q", out.String())
	}

	if _, err := promptGoal(strings.NewReader(""), &out); !errors.Is(err, contractx.ErrValidation) {
		t.Fatalf("promptGoal(empty) error = %v, want ErrValidation", err)
	}
}

func TestPrintResultCompleted(t *testing.T) {
	res := &orchestrator.Result{
		RunID:      "run-1",
		Plan:       contractx.Fallback(contractx.AgentSequence{"spacex_agent", "summary_agent"}, "rules"),
		Validation: contractx.FallbackVerdict("no backend"),
		Context:    contractx.Context{contractx.KeyGoal: "launch", contractx.KeySummary: "Launch is likely to proceed as planned."},
	}
	var out bytes.Buffer
	printResult(&out, res, nil)

	got := out.String()
	for _, want := range []string{"spacex_agent -> summary_agent", "fallback", "Launch is likely", "confidence 80", "run-1"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestPrintResultAborted(t *testing.T) {
	stepErr := &pipeline.StepError{Index: 1, Agent: "ghost_agent", Err: contractx.ErrUnknownAgent}
	res := &orchestrator.Result{
		Plan:       contractx.Planned(contractx.AgentSequence{"spacex_agent", "ghost_agent"}),
		Context:    contractx.Context{contractx.KeyGoal: "g"},
		FailedStep: stepErr,
	}
	var out bytes.Buffer
	printResult(&out, res, stepErr)

	got := out.String()
	if !strings.Contains(got, "step 1 (ghost_agent)") || !strings.Contains(got, "Partial result:") {
		t.Fatalf("output = %s", got)
	}
	if strings.Contains(got, "Summary:") {
		t.Fatalf("aborted output printed a summary:\n%s", got)
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"run", "agent", "agents", "serve"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
	if root.PersistentFlags().Lookup("env") == nil {
		t.Fatalf("--env flag not registered")
	}
}
