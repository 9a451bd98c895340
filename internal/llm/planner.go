package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const systemPromptWithContext = `You are a crew scheduling assistant for a small construction company.
Each employee works two half-day slots per day (morning "am" and afternoon "pm"),
and each slot holds at most 4 hours of tasks and at most 4 tasks.

Context:
- Current date: %s (%s)
- Configured workdays: %s

%s

%s

User request: "%s"

Rules:
1. Resolve ALL dates to YYYY-MM-DD format in "date".
2. "period" must be "am" or "pm".
3. "hours" must be an integer from 1 to 4.
4. Never assign to an employee not listed above.
5. Never exceed a slot's remaining hours listed above.
6. Never assign into a slot marked "on leave".
7. Prefer spreading work across employees with the most free hours.
8. Only assign on configured workdays unless the user names a date explicitly.
9. Add a warning when a requested assignment cannot fit anywhere.

Respond ONLY with valid JSON (no markdown, no explanation):
{
  "assignments": [
    {
      "title": "string",
      "employee": "string",
      "date": "YYYY-MM-DD",
      "period": "am" or "pm",
      "hours": 1
    }
  ],
  "warnings": ["string"],
  "suggestions": ["string"]
}`

const systemPromptCompact = `You are a crew scheduling assistant. Use the context and return JSON only.

Today: %s (%s)
Workdays: %s

%s

User request: "%s"

Rules:
- Return JSON only (no markdown).
- "date" is YYYY-MM-DD, "period" is "am" or "pm", "hours" is 1-4.
- Only use employees listed above and do not exceed their remaining slot hours.
- Skip slots marked "on leave".

JSON schema:
{
  "assignments": [
    {"title": "string", "employee": "string", "date": "YYYY-MM-DD", "period": "am" or "pm", "hours": 1}
  ],
  "warnings": ["string"],
  "suggestions": ["string"]
}`

// SlotLoad describes one half-day slot's remaining capacity for LLM context.
type SlotLoad struct {
	Date      string // YYYY-MM-DD
	Period    string // "am" or "pm"
	FreeHours int
	OnLeave   bool
}

// EmployeeContext summarizes one employee's availability for the LLM.
type EmployeeContext struct {
	Name  string
	Slots []SlotLoad
}

// ExistingAssignment represents a task already on the board for LLM context.
type ExistingAssignment struct {
	Employee string
	Date     string // YYYY-MM-DD
	Period   string // "am" or "pm"
	Title    string
	Hours    int
}

// PlanRequest contains the input for the planner.
type PlanRequest struct {
	Input            string
	Date             time.Time
	Workdays         []string
	Employees        []EmployeeContext
	ExistingTasks    []ExistingAssignment
	UseCompactPrompt bool // Use a shorter prompt for local models
}

// PlanResponse contains the parsed LLM response.
type PlanResponse struct {
	Assignments []ProposedAssignment `json:"assignments"`
	Warnings    []string             `json:"warnings"`
	Suggestions []string             `json:"suggestions"`
}

// ProposedAssignment represents one task assignment planned by the LLM.
type ProposedAssignment struct {
	Title    string `json:"title"`
	Employee string `json:"employee"`
	Date     string `json:"date"` // YYYY-MM-DD format
	Period   string `json:"period"`
	Hours    int    `json:"hours"`
}

// Planner uses an LLM to plan task assignments from natural language input.
type Planner struct {
	client Client
}

// NewPlanner creates a new Planner with the given LLM client.
func NewPlanner(client Client) *Planner {
	return &Planner{client: client}
}

// Plan converts natural language input into proposed assignments.
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*PlanResponse, error) {
	return p.PlanWithMessages(ctx, p.BuildInitialMessages(req))
}

// PlanWithMessages allows planning with a pre-built message history.
// This is used for retry logic where we need to append error feedback.
func (p *Planner) PlanWithMessages(ctx context.Context, messages []Message) (*PlanResponse, error) {
	var resp PlanResponse
	if err := p.client.ChatJSON(ctx, messages, &resp); err != nil {
		return nil, fmt.Errorf("planning assignments: %w", err)
	}
	return &resp, nil
}

// BuildInitialMessages creates the initial message list for a planning request.
// Exported so the validator can build and extend messages for retries.
func (p *Planner) BuildInitialMessages(req PlanRequest) []Message {
	dayOfWeek := req.Date.Format("Monday")
	currentDate := req.Date.Format("2006-01-02")
	workdays := strings.Join(req.Workdays, ", ")
	if workdays == "" {
		workdays = "monday, tuesday, wednesday, thursday, friday"
	}

	employeeSection := formatEmployees(req.Employees)
	existingSection := formatExistingAssignments(req.ExistingTasks)

	var prompt string
	if req.UseCompactPrompt {
		prompt = fmt.Sprintf(systemPromptCompact,
			currentDate,
			dayOfWeek,
			workdays,
			employeeSection,
			req.Input,
		)
	} else {
		prompt = fmt.Sprintf(systemPromptWithContext,
			currentDate,
			dayOfWeek,
			workdays,
			employeeSection,
			existingSection,
			req.Input,
		)
	}

	return []Message{
		{Role: "system", Content: prompt},
	}
}

func formatEmployees(employees []EmployeeContext) string {
	if len(employees) == 0 {
		return "Employees: None"
	}

	var sb strings.Builder
	sb.WriteString("Employees and remaining slot hours:\n")
	for _, e := range employees {
		sb.WriteString(fmt.Sprintf("- %s:\n", e.Name))
		for _, s := range e.Slots {
			if s.OnLeave {
				sb.WriteString(fmt.Sprintf("  %s %s: on leave\n", s.Date, s.Period))
				continue
			}
			sb.WriteString(fmt.Sprintf("  %s %s: %dh free\n", s.Date, s.Period, s.FreeHours))
		}
	}
	return sb.String()
}

func formatExistingAssignments(tasks []ExistingAssignment) string {
	if len(tasks) == 0 {
		return "Existing assignments: None"
	}

	var sb strings.Builder
	sb.WriteString("Existing assignments:\n")
	for _, t := range tasks {
		sb.WriteString(fmt.Sprintf("- %s %s %s: %s (%dh)\n",
			t.Date, t.Period, t.Employee, t.Title, t.Hours))
	}
	return sb.String()
}
