package assign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mgallego/crewplan/internal/config"
	"github.com/mgallego/crewplan/internal/dateutil"
	"github.com/mgallego/crewplan/internal/llm"
	"github.com/mgallego/crewplan/internal/roster"
	"github.com/mgallego/crewplan/internal/slot"
	"github.com/mgallego/crewplan/internal/task"
)

// contextHorizonDays is how far ahead slot availability is described to the LLM.
const contextHorizonDays = 7

// Planner orchestrates assignment planning using the LLM, the slot
// engine, and the repository.
type Planner struct {
	llmClient llm.Client
	repo      task.Repository
	config    *config.Config

	// Conversation state for interactive planning
	messages     []llm.Message
	lastResponse *llm.PlanResponse
	board        *boardState
}

// boardState is the snapshot the validator checks proposals against.
type boardState struct {
	employees []*task.Employee
	blocked   map[string]bool
	occupied  map[string][]slot.Placement
}

func useCompactPrompt(provider string) bool {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case llm.ProviderOllama, llm.ProviderLMStudio, "lm-studio", "llmstudio":
		return true
	default:
		return false
	}
}

// New creates a new Planner with the given dependencies.
func New(client llm.Client, cfg *config.Config, repo task.Repository) *Planner {
	return &Planner{
		llmClient: client,
		repo:      repo,
		config:    cfg,
	}
}

// PlanResult contains the outcome of a planning operation.
type PlanResult struct {
	Proposals   []llm.ProposedAssignment
	Warnings    []string
	Suggestions []string

	// Populated when retries are exhausted.
	ValidationErrors []ValidationError
}

// HasValidationErrors returns true if there are unresolved validation errors.
func (r *PlanResult) HasValidationErrors() bool {
	return len(r.ValidationErrors) > 0
}

// PlanWithRetry converts natural language input into proposed
// assignments, validating each LLM response against the board and
// feeding errors back for correction. When maxRetries is exhausted the
// last proposal is returned with ValidationErrors populated.
func (p *Planner) PlanWithRetry(ctx context.Context, input string, maxRetries int) (*PlanResult, error) {
	now := time.Now()

	board, err := p.loadBoard(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("loading board state: %w", err)
	}
	p.board = board

	llmReq := llm.PlanRequest{
		Input:            input,
		Date:             now,
		Workdays:         p.config.Schedule.Workdays,
		Employees:        p.employeeContexts(now, board),
		ExistingTasks:    p.existingAssignments(ctx, now, board),
		UseCompactPrompt: useCompactPrompt(p.config.LLM.Provider),
	}

	llmPlanner := llm.NewPlanner(p.llmClient)
	p.messages = llmPlanner.BuildInitialMessages(llmReq)
	p.messages = append(p.messages, llm.Message{Role: "user", Content: input})

	return p.converge(ctx, llmPlanner, now, maxRetries)
}

// ContinuePlanning adds user feedback to the conversation and replans.
func (p *Planner) ContinuePlanning(ctx context.Context, additionalContext string, maxRetries int) (*PlanResult, error) {
	if len(p.messages) == 0 || p.board == nil {
		return nil, errors.New("no active planning session")
	}

	if p.lastResponse != nil {
		respJSON, _ := json.Marshal(p.lastResponse)
		p.messages = append(p.messages, llm.Message{Role: "assistant", Content: string(respJSON)})
	}
	p.messages = append(p.messages, llm.Message{Role: "user", Content: additionalContext})

	return p.converge(ctx, llm.NewPlanner(p.llmClient), time.Now(), maxRetries)
}

// converge runs the plan/validate/feedback loop until the proposals
// pass or retries run out.
func (p *Planner) converge(ctx context.Context, llmPlanner *llm.Planner, now time.Time, maxRetries int) (*PlanResult, error) {
	var lastValidation ValidationResult
	for attempt := 0; attempt <= maxRetries; attempt++ {
		resp, err := llmPlanner.PlanWithMessages(ctx, p.messages)
		if err != nil {
			return nil, fmt.Errorf("LLM planning (attempt %d): %w", attempt+1, err)
		}
		p.lastResponse = resp

		validator := NewValidator(now, p.board.employees, p.board.blocked, p.board.occupied)
		lastValidation = validator.Validate(resp.Assignments)

		if lastValidation.Valid {
			return buildResult(resp, nil), nil
		}

		if attempt < maxRetries {
			respJSON, _ := json.Marshal(resp)
			p.messages = append(p.messages, llm.Message{Role: "assistant", Content: string(respJSON)})
			p.messages = append(p.messages, llm.Message{Role: "user", Content: lastValidation.FormatErrors()})
		}
	}

	return buildResult(p.lastResponse, lastValidation.Errors), nil
}

func buildResult(resp *llm.PlanResponse, errs []ValidationError) *PlanResult {
	if resp == nil {
		return &PlanResult{ValidationErrors: errs}
	}
	return &PlanResult{
		Proposals:        resp.Assignments,
		Warnings:         resp.Warnings,
		Suggestions:      resp.Suggestions,
		ValidationErrors: errs,
	}
}

// Save places every proposal on the board through the roster.
func (p *Planner) Save(ctx context.Context, r *roster.Roster, result *PlanResult) ([]*task.Task, error) {
	if result.HasValidationErrors() {
		return nil, errors.New("cannot save: result has validation errors")
	}
	if p.board == nil {
		return nil, errors.New("no active planning session")
	}

	byName := make(map[string]int64, len(p.board.employees))
	for _, e := range p.board.employees {
		byName[strings.ToLower(e.Name)] = e.ID
	}

	var created []*task.Task
	for _, proposal := range result.Proposals {
		employeeID, ok := byName[strings.ToLower(strings.TrimSpace(proposal.Employee))]
		if !ok {
			return created, fmt.Errorf("%w: %s", task.ErrEmployeeNotFound, proposal.Employee)
		}
		date, err := dateutil.ParseDate(proposal.Date)
		if err != nil {
			return created, fmt.Errorf("parsing proposal date: %w", err)
		}
		t, err := r.Add(ctx, employeeID, proposal.Title, date, task.Period(proposal.Period), proposal.Hours)
		if err != nil {
			return created, fmt.Errorf("placing %q: %w", proposal.Title, err)
		}
		created = append(created, t)
	}
	return created, nil
}

// loadBoard snapshots employees, leaves, and slot occupancy for the
// context horizon.
func (p *Planner) loadBoard(ctx context.Context, now time.Time) (*boardState, error) {
	start := dateutil.TruncateToDay(now)
	end := start.AddDate(0, 0, contextHorizonDays-1)

	employees, err := p.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := p.repo.ListTasksByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	leaves, err := p.repo.ListLeaves(ctx, start, end)
	if err != nil {
		return nil, err
	}

	board := &boardState{
		employees: employees,
		blocked:   make(map[string]bool),
		occupied:  make(map[string][]slot.Placement),
	}

	bySlot := make(map[string][]*task.Task)
	for _, t := range tasks {
		key := SlotKey(t.EmployeeID, dateutil.FormatDate(t.Date), string(t.Period))
		bySlot[key] = append(bySlot[key], t)
	}
	for key, slotTasks := range bySlot {
		board.occupied[key] = slot.Normalize(task.Items(slotTasks))
	}

	for _, l := range leaves {
		date := dateutil.FormatDate(l.Date)
		if l.Period == "" {
			board.blocked[SlotKey(l.EmployeeID, date, string(task.PeriodMorning))] = true
			board.blocked[SlotKey(l.EmployeeID, date, string(task.PeriodAfternoon))] = true
		} else {
			board.blocked[SlotKey(l.EmployeeID, date, string(l.Period))] = true
		}
	}

	return board, nil
}

// employeeContexts renders each employee's remaining capacity over the
// horizon for the LLM prompt. Non-workdays are omitted.
func (p *Planner) employeeContexts(now time.Time, board *boardState) []llm.EmployeeContext {
	start := dateutil.TruncateToDay(now)

	contexts := make([]llm.EmployeeContext, 0, len(board.employees))
	for _, e := range board.employees {
		ec := llm.EmployeeContext{Name: e.Name}
		for i := 0; i < contextHorizonDays; i++ {
			day := start.AddDate(0, 0, i)
			if !p.config.IsWorkday(day.Weekday().String()) {
				continue
			}
			date := dateutil.FormatDate(day)
			for _, period := range []task.Period{task.PeriodMorning, task.PeriodAfternoon} {
				key := SlotKey(e.ID, date, string(period))
				load := llm.SlotLoad{Date: date, Period: string(period)}
				if board.blocked[key] {
					load.OnLeave = true
				} else {
					used := 0
					for _, placement := range board.occupied[key] {
						used += placement.Span
					}
					load.FreeHours = slot.Columns - used
				}
				ec.Slots = append(ec.Slots, load)
			}
		}
		contexts = append(contexts, ec)
	}
	return contexts
}

func (p *Planner) existingAssignments(ctx context.Context, now time.Time, board *boardState) []llm.ExistingAssignment {
	start := dateutil.TruncateToDay(now)
	end := start.AddDate(0, 0, contextHorizonDays-1)

	tasks, err := p.repo.ListTasksByDateRange(ctx, start, end)
	if err != nil {
		return nil
	}

	names := make(map[int64]string, len(board.employees))
	for _, e := range board.employees {
		names[e.ID] = e.Name
	}

	out := make([]llm.ExistingAssignment, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, llm.ExistingAssignment{
			Employee: names[t.EmployeeID],
			Date:     dateutil.FormatDate(t.Date),
			Period:   string(t.Period),
			Title:    t.Title,
			Hours:    t.Hours,
		})
	}
	return out
}
