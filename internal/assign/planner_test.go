package assign

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mgallego/crewplan/internal/config"
	"github.com/mgallego/crewplan/internal/db"
	"github.com/mgallego/crewplan/internal/llm"
	"github.com/mgallego/crewplan/internal/roster"
	"github.com/mgallego/crewplan/internal/task"
)

// scriptedClient returns canned JSON responses in order.
type scriptedClient struct {
	responses []string
	calls     int
}

func (c *scriptedClient) Chat(ctx context.Context, messages []llm.Message) (string, error) {
	resp := c.responses[c.calls]
	if c.calls < len(c.responses)-1 {
		c.calls++
	}
	return resp, nil
}

func (c *scriptedClient) ChatJSON(ctx context.Context, messages []llm.Message, result any) error {
	resp, err := c.Chat(ctx, messages)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(resp), result)
}

func testPlanner(t *testing.T, client llm.Client) (*Planner, *db.SQLite, *task.Employee) {
	t.Helper()
	repo, err := db.New(filepath.Join(t.TempDir(), "assign-test.db"))
	if err != nil {
		t.Fatalf("db.New() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })

	emp, err := task.NewEmployee("Ana")
	if err != nil {
		t.Fatalf("NewEmployee() error = %v", err)
	}
	if err := repo.CreateEmployee(context.Background(), emp); err != nil {
		t.Fatalf("CreateEmployee() error = %v", err)
	}

	cfg := config.Default()
	return New(client, cfg, repo), repo, emp
}

func planJSON(t *testing.T, assignments ...llm.ProposedAssignment) string {
	t.Helper()
	data, err := json.Marshal(llm.PlanResponse{Assignments: assignments})
	if err != nil {
		t.Fatalf("marshaling plan: %v", err)
	}
	return string(data)
}

func futureWorkday(t *testing.T) string {
	t.Helper()
	// Far enough out to never be in the past, fixed to a Wednesday.
	return "2027-06-09"
}

func TestPlanWithRetry_AcceptsValidPlan(t *testing.T) {
	date := futureWorkday(t)
	client := &scriptedClient{responses: []string{
		planJSON(t, llm.ProposedAssignment{Title: "drywall", Employee: "Ana", Date: date, Period: "am", Hours: 2}),
	}}
	p, _, _ := testPlanner(t, client)

	result, err := p.PlanWithRetry(context.Background(), "two hours of drywall for Ana", 1)
	if err != nil {
		t.Fatalf("PlanWithRetry() error = %v", err)
	}
	if result.HasValidationErrors() {
		t.Fatalf("validation errors = %+v", result.ValidationErrors)
	}
	if len(result.Proposals) != 1 || result.Proposals[0].Title != "drywall" {
		t.Errorf("proposals = %+v", result.Proposals)
	}
}

func TestPlanWithRetry_FeedsErrorsBackOnce(t *testing.T) {
	date := futureWorkday(t)
	client := &scriptedClient{responses: []string{
		planJSON(t, llm.ProposedAssignment{Title: "drywall", Employee: "Nobody", Date: date, Period: "am", Hours: 2}),
		planJSON(t, llm.ProposedAssignment{Title: "drywall", Employee: "Ana", Date: date, Period: "am", Hours: 2}),
	}}
	p, _, _ := testPlanner(t, client)

	result, err := p.PlanWithRetry(context.Background(), "two hours of drywall", 1)
	if err != nil {
		t.Fatalf("PlanWithRetry() error = %v", err)
	}
	if result.HasValidationErrors() {
		t.Fatalf("validation errors after retry = %+v", result.ValidationErrors)
	}
	if client.calls != 1 {
		t.Errorf("LLM called %d extra times, want exactly one retry", client.calls)
	}
	if result.Proposals[0].Employee != "Ana" {
		t.Errorf("employee = %s, want Ana from corrected plan", result.Proposals[0].Employee)
	}
}

func TestPlanWithRetry_ExhaustedKeepsErrors(t *testing.T) {
	date := futureWorkday(t)
	client := &scriptedClient{responses: []string{
		planJSON(t, llm.ProposedAssignment{Title: "drywall", Employee: "Nobody", Date: date, Period: "am", Hours: 2}),
	}}
	p, _, _ := testPlanner(t, client)

	result, err := p.PlanWithRetry(context.Background(), "two hours of drywall", 1)
	if err != nil {
		t.Fatalf("PlanWithRetry() error = %v", err)
	}
	if !result.HasValidationErrors() {
		t.Fatal("expected validation errors to survive exhausted retries")
	}
}

func TestSave_PlacesProposalsThroughRoster(t *testing.T) {
	date := futureWorkday(t)
	client := &scriptedClient{responses: []string{
		planJSON(t,
			llm.ProposedAssignment{Title: "drywall", Employee: "Ana", Date: date, Period: "am", Hours: 2},
			llm.ProposedAssignment{Title: "cleanup", Employee: "Ana", Date: date, Period: "am", Hours: 1},
		),
	}}
	p, repo, emp := testPlanner(t, client)

	result, err := p.PlanWithRetry(context.Background(), "drywall then cleanup", 1)
	if err != nil {
		t.Fatalf("PlanWithRetry() error = %v", err)
	}

	r := roster.New(repo, config.Default().Schedule.Workdays)
	created, err := p.Save(context.Background(), r, result)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created %d tasks, want 2", len(created))
	}
	for _, tk := range created {
		if tk.EmployeeID != emp.ID || !tk.HasColumn() {
			t.Errorf("task %+v not placed for Ana", tk)
		}
	}
}

func TestSave_RefusesInvalidResult(t *testing.T) {
	p, repo, _ := testPlanner(t, &scriptedClient{responses: []string{"{}"}})
	r := roster.New(repo, config.Default().Schedule.Workdays)

	result := &PlanResult{ValidationErrors: []ValidationError{{Index: 0, Field: "employee", Message: "bad"}}}
	if _, err := p.Save(context.Background(), r, result); err == nil {
		t.Fatal("Save() accepted result with validation errors")
	}
}
