package orchestratornode

import (
	"context"
	"errors"
	"testing"
	"time"

	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
)

type stubPlanner struct {
	outcome contractx.PlannerOutcome
	goal    string
}

func (s *stubPlanner) Plan(ctx context.Context, goal string) contractx.PlannerOutcome {
	s.goal = goal
	return s.outcome
}

type stubExecutor struct {
	out contractx.Context
	err error
	seq contractx.AgentSequence
}

func (s *stubExecutor) Execute(ctx context.Context, seq contractx.AgentSequence, in contractx.Context) (contractx.Context, error) {
	s.seq = seq
	if s.out == nil {
		return in, s.err
	}
	return s.out, s.err
}

type stubValidator struct {
	outcome contractx.ValidationOutcome
	panics  bool
}

func (s stubValidator) Validate(ctx context.Context, goal string, c contractx.Context) contractx.ValidationOutcome {
	if s.panics {
		panic("validator exploded")
	}
	return s.outcome
}

func TestValidateRequestRequiresRunID(t *testing.T) {
	t.Parallel()

	_, err := ValidateRequest(&GraphState{Goal: "hi"}, time.Now)
	if !errors.Is(err, contractx.ErrValidation) || !errors.Is(err, ErrNoRunID) {
		t.Fatalf("ValidateRequest() error = %v, want ErrValidation and ErrNoRunID", err)
	}

	if _, err := ValidateRequest(nil, time.Now); !errors.Is(err, ErrNilState) {
		t.Fatalf("ValidateRequest(nil) error = %v, want ErrNilState", err)
	}
}

func TestValidateRequestStampsStartTimeAndAllowsEmptyGoal(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out, err := ValidateRequest(&GraphState{RunID: "run-1"}, func() time.Time { return fixed })
	if err != nil {
		t.Fatalf("ValidateRequest() error = %v", err)
	}
	if !out.StartedAt.Equal(fixed) {
		t.Fatalf("StartedAt = %v, want %v", out.StartedAt, fixed)
	}
}

func TestPlanGoalCopiesSequence(t *testing.T) {
	t.Parallel()

	seq := contractx.AgentSequence{"a", "b"}
	p := &stubPlanner{outcome: contractx.Planned(seq)}
	out, err := PlanGoal(context.Background(), &GraphState{RunID: "r", Goal: "do it"}, p)
	if err != nil {
		t.Fatalf("PlanGoal() error = %v", err)
	}
	if p.goal != "do it" {
		t.Fatalf("planner goal = %q, want %q", p.goal, "do it")
	}
	seq[0] = "mutated"
	if out.Outcome.Sequence[0] != "a" {
		t.Fatalf("sequence aliased planner slice: %v", out.Outcome.Sequence)
	}
}

func TestSeedContextHoldsOnlyGoal(t *testing.T) {
	t.Parallel()

	out, err := SeedContext(&GraphState{Goal: "weather"})
	if err != nil {
		t.Fatalf("SeedContext() error = %v", err)
	}
	if len(out.Context) != 1 || out.Context.Goal() != "weather" {
		t.Fatalf("seed context = %v, want only goal", out.Context)
	}
}

func TestExecutePlanRecordsPartialContextOnFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	partial := contractx.Context{contractx.KeyGoal: "g", "spacex": map[string]any{"name": "x"}}
	exec := &stubExecutor{out: partial, err: boom}
	st := &GraphState{
		Goal:    "g",
		Outcome: contractx.Planned(contractx.AgentSequence{"spacex_agent", "bad"}),
		Context: contractx.NewContext("g"),
	}

	out, err := ExecutePlan(context.Background(), st, exec)
	if !errors.Is(err, boom) {
		t.Fatalf("ExecutePlan() error = %v, want boom", err)
	}
	if out != nil {
		t.Fatalf("ExecutePlan() state = %v, want nil on failure", out)
	}
	if !errors.Is(st.Err, boom) {
		t.Fatalf("state Err = %v, want boom", st.Err)
	}
	if _, ok := st.Context["spacex"]; !ok {
		t.Fatalf("partial context lost: %v", st.Context)
	}
	if len(exec.seq) != 2 {
		t.Fatalf("executor sequence = %v", exec.seq)
	}
}

func TestValidateGoalStoresVerdict(t *testing.T) {
	t.Parallel()

	verdict := contractx.ValidationResult{
		GoalAchieved:          false,
		Confidence:            40,
		MissingData:           []string{"weather"},
		SuggestedImprovements: []string{},
		QualityScore:          30,
	}
	st := &GraphState{Goal: "g", Context: contractx.NewContext("g")}
	out, err := ValidateGoal(context.Background(), st, stubValidator{outcome: contractx.Validated(verdict)})
	if err != nil {
		t.Fatalf("ValidateGoal() error = %v", err)
	}
	got, ok := out.Context[contractx.KeyValidation].(contractx.ValidationResult)
	if !ok {
		t.Fatalf("validation key type = %T", out.Context[contractx.KeyValidation])
	}
	if got.Confidence != 40 || out.Validation.Source != contractx.ValidationSourceValidated {
		t.Fatalf("verdict = %+v source = %s", got, out.Validation.Source)
	}
}

func TestValidateGoalFallsBackWithoutValidatorOrOnPanic(t *testing.T) {
	t.Parallel()

	cases := map[string]contractx.Validator{
		"nil":   nil,
		"panic": stubValidator{panics: true},
	}
	for name, v := range cases {
		v := v
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			st := &GraphState{Goal: "g", Context: contractx.NewContext("g")}
			out, err := ValidateGoal(context.Background(), st, v)
			if err != nil {
				t.Fatalf("ValidateGoal() error = %v", err)
			}
			if out.Validation.Source != contractx.ValidationSourceFallback {
				t.Fatalf("source = %s, want fallback", out.Validation.Source)
			}
			got := out.Context[contractx.KeyValidation].(contractx.ValidationResult)
			if !got.GoalAchieved || got.Confidence != 80 || got.QualityScore != 80 {
				t.Fatalf("fallback verdict = %+v", got)
			}
		})
	}
}

func TestFinalizeResultAddsPlaceholderSummary(t *testing.T) {
	t.Parallel()

	st := &GraphState{Context: contractx.NewContext("g")}
	out, err := FinalizeResult(st)
	if err != nil {
		t.Fatalf("FinalizeResult() error = %v", err)
	}
	if out.Context[contractx.KeySummary] != NoSummary {
		t.Fatalf("summary = %v, want %q", out.Context[contractx.KeySummary], NoSummary)
	}

	st = &GraphState{Context: contractx.Context{contractx.KeyGoal: "g", contractx.KeySummary: "Launch looks good."}}
	out, _ = FinalizeResult(st)
	if out.Context[contractx.KeySummary] != "Launch looks good." {
		t.Fatalf("summary overwritten: %v", out.Context[contractx.KeySummary])
	}
}
