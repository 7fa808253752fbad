package pipeline

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	contractx "github.com/tanpawarit/goal-pipeline/agent/contract"
	"github.com/tanpawarit/goal-pipeline/agent/registry"
)

type funcAgent struct {
	name  string
	run   func(ctx context.Context, in contractx.Context) (contractx.Context, error)
	calls int
}

func (f *funcAgent) Name() string        { return f.name }
func (f *funcAgent) Description() string { return "test agent " + f.name }

func (f *funcAgent) Run(ctx context.Context, in contractx.Context) (contractx.Context, error) {
	f.calls++
	return f.run(ctx, in)
}

func setter(name, key string, value any) *funcAgent {
	return &funcAgent{name: name, run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		out := in.Clone()
		out[key] = value
		return out, nil
	}}
}

type stepRecord struct {
	agent  string
	status string
}

type fakeObserver struct {
	mu    sync.Mutex
	steps []stepRecord
}

func (f *fakeObserver) ObserveStep(agent string, status string, elapsed time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.steps = append(f.steps, stepRecord{agent: agent, status: status})
}

func newTestExecutor(t *testing.T, obs StepObserver, agents ...contractx.Agent) *Executor {
	t.Helper()
	e, err := New(registry.MustNew(agents...), WithLogger(zerolog.Nop()), WithObserver(obs))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func TestExecuteEmptySequenceIsIdentity(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, nil, setter("a", "k", 1))
	in := contractx.Context{"goal": "x"}

	out, err := e.Execute(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !reflect.DeepEqual(out, contractx.Context{"goal": "x"}) {
		t.Fatalf("Execute() = %v, want identity", out)
	}
}

func TestExecuteThreadsContextInOrder(t *testing.T) {
	t.Parallel()

	a := setter("a", "k1", "from-a")
	b := &funcAgent{name: "b", run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		out := in.Clone()
		v, _ := in["k1"].(string)
		out["k2"] = strings.ToUpper(v)
		return out, nil
	}}
	e := newTestExecutor(t, nil, a, b)

	out, err := e.Execute(context.Background(), contractx.AgentSequence{"a", "b"}, contractx.NewContext("g"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out["k1"] != "from-a" {
		t.Fatalf("k1 = %v, want from-a", out["k1"])
	}
	if out["k2"] != "FROM-A" {
		t.Fatalf("k2 = %v, want FROM-A", out["k2"])
	}
	if out.Goal() != "g" {
		t.Fatalf("goal = %q", out.Goal())
	}
}

func TestExecuteReversedOrderChangesOutput(t *testing.T) {
	t.Parallel()

	a := setter("a", "k1", "from-a")
	b := &funcAgent{name: "b", run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		out := in.Clone()
		_, seen := in["k1"]
		out["b_saw_k1"] = seen
		return out, nil
	}}
	e := newTestExecutor(t, nil, a, b)

	out, err := e.Execute(context.Background(), contractx.AgentSequence{"b", "a"}, contractx.NewContext("g"))
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if out["b_saw_k1"] != false {
		t.Fatalf("b ran before a and should not see k1, got %v", out["b_saw_k1"])
	}
}

func TestExecuteUnknownAgentAborts(t *testing.T) {
	t.Parallel()

	a := setter("a", "k1", 1)
	c := setter("c", "k3", 3)
	obs := &fakeObserver{}
	e := newTestExecutor(t, obs, a, c)

	out, err := e.Execute(context.Background(), contractx.AgentSequence{"a", "ghost", "c"}, contractx.NewContext("g"))
	if !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("Execute() error = %v, want ErrUnknownAgent", err)
	}
	var stepErr *StepError
	if !errors.As(err, &stepErr) {
		t.Fatalf("expected *StepError, got %T", err)
	}
	if stepErr.Agent != "ghost" || stepErr.Index != 1 {
		t.Fatalf("unexpected step error: %+v", stepErr)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Fatalf("error does not reference identifier: %v", err)
	}
	if c.calls != 0 {
		t.Fatalf("agent after unknown identifier ran %d times", c.calls)
	}
	if out["k1"] != 1 {
		t.Fatalf("partial context lost output of step 0: %v", out)
	}
	if _, ok := out["k3"]; ok {
		t.Fatal("partial context contains output of a skipped step")
	}
	want := []stepRecord{{agent: "a", status: StepStatusOK}, {agent: "ghost", status: StepStatusUnknown}}
	if !reflect.DeepEqual(obs.steps, want) {
		t.Fatalf("observed steps = %v, want %v", obs.steps, want)
	}
}

func TestExecuteAgentErrorAborts(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream exploded")
	a := setter("a", "k1", 1)
	failing := &funcAgent{name: "bad", run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		return nil, boom
	}}
	c := setter("c", "k3", 3)
	e := newTestExecutor(t, nil, a, failing, c)

	out, err := e.Execute(context.Background(), contractx.AgentSequence{"a", "bad", "c"}, contractx.NewContext("g"))
	if !errors.Is(err, contractx.ErrAgentExecution) {
		t.Fatalf("Execute() error = %v, want ErrAgentExecution", err)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("Execute() error = %v, want wrapped cause", err)
	}
	if c.calls != 0 {
		t.Fatal("agent after failure should not run")
	}
	if out["k1"] != 1 {
		t.Fatalf("unexpected partial context: %v", out)
	}
}

func TestExecuteRecoversPanic(t *testing.T) {
	t.Parallel()

	panicking := &funcAgent{name: "p", run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		var m map[string]int
		m["x"] = 1
		return in, nil
	}}
	e := newTestExecutor(t, nil, panicking)

	out, err := e.Execute(context.Background(), contractx.AgentSequence{"p"}, contractx.NewContext("g"))
	if !errors.Is(err, contractx.ErrAgentExecution) {
		t.Fatalf("Execute() error = %v, want ErrAgentExecution", err)
	}
	if out.Goal() != "g" {
		t.Fatalf("partial context lost goal: %v", out)
	}
}

func TestExecuteRejectsGoalRemoval(t *testing.T) {
	t.Parallel()

	dropper := &funcAgent{name: "drop", run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		out := in.Clone()
		delete(out, contractx.KeyGoal)
		return out, nil
	}}
	e := newTestExecutor(t, nil, dropper)

	_, err := e.Execute(context.Background(), contractx.AgentSequence{"drop"}, contractx.NewContext("g"))
	if !errors.Is(err, contractx.ErrGoalRemoved) {
		t.Fatalf("Execute() error = %v, want ErrGoalRemoved", err)
	}
}

func TestExecuteRejectsNilContext(t *testing.T) {
	t.Parallel()

	nilAgent := &funcAgent{name: "nil", run: func(ctx context.Context, in contractx.Context) (contractx.Context, error) {
		return nil, nil
	}}
	e := newTestExecutor(t, nil, nilAgent)

	_, err := e.Execute(context.Background(), contractx.AgentSequence{"nil"}, contractx.NewContext("g"))
	if !errors.Is(err, contractx.ErrAgentExecution) {
		t.Fatalf("Execute() error = %v, want ErrAgentExecution", err)
	}
}

func TestExecuteStopsBetweenStepsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	first := &funcAgent{name: "first", run: func(_ context.Context, in contractx.Context) (contractx.Context, error) {
		cancel()
		out := in.Clone()
		out["first"] = true
		return out, nil
	}}
	second := setter("second", "second", true)
	e := newTestExecutor(t, nil, first, second)

	out, err := e.Execute(ctx, contractx.AgentSequence{"first", "second"}, contractx.NewContext("g"))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Execute() error = %v, want context.Canceled", err)
	}
	if second.calls != 0 {
		t.Fatal("second agent should not run after cancellation")
	}
	if out["first"] != true {
		t.Fatalf("partial context lost first step: %v", out)
	}
}

func TestExecuteLogsThroughContextLogger(t *testing.T) {
	t.Parallel()

	e := newTestExecutor(t, nil, setter("a", "k1", 7))
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).With().Str("run_id", "r1").Logger().WithContext(context.Background())

	_, err := e.Execute(ctx, contractx.AgentSequence{"a", "zzz"}, contractx.Context{"goal": "x"})
	if !errors.Is(err, contractx.ErrUnknownAgent) {
		t.Fatalf("Execute() error = %v, want ErrUnknownAgent", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2:\n%s", len(lines), buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"run_id":"r1"`) {
			t.Fatalf("step line without run id: %s", line)
		}
	}
	if !strings.Contains(lines[1], `"agent":"zzz"`) || !strings.Contains(lines[1], `"step":1`) {
		t.Fatalf("unknown agent line = %s", lines[1])
	}
}

func TestNewRequiresRegistry(t *testing.T) {
	t.Parallel()

	if _, err := New(nil); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
