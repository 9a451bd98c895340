package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mgallego/crewplan/internal/task"
	"github.com/mgallego/crewplan/internal/tui/commands"
)

// undoRecord restores the board to its state before one mutation.
// For a cross-slot move the phases must run in order: the source
// slot's siblings reclaim their original columns first, then the
// subject moves back, then the destination siblings are restored.
type undoRecord struct {
	desc string

	// preRestore holds the source slot's sibling placements. Applied
	// before moveBack so the subject's original column is free again.
	preRestore []task.PlacementUpdate

	// moveBack relocates the subject. Nil for mutations that never
	// left the slot.
	moveBack *moveBack

	// restore holds the remaining pre-mutation placements.
	restore []task.PlacementUpdate
}

type moveBack struct {
	taskID     int64
	employeeID int64
	date       time.Time
	period     task.Period
	column     int
	hours      int
}

type undoStack struct {
	records []undoRecord
}

const maxUndoDepth = 50

func (s *undoStack) push(r undoRecord) {
	s.records = append(s.records, r)
	if len(s.records) > maxUndoDepth {
		s.records = s.records[1:]
	}
}

func (s *undoStack) pop() (undoRecord, bool) {
	if len(s.records) == 0 {
		return undoRecord{}, false
	}
	r := s.records[len(s.records)-1]
	s.records = s.records[:len(s.records)-1]
	return r, true
}

// snapshotSlot captures the current placements of a slot for undo.
func snapshotSlot(b *Board, employeeID int64, date time.Time, period task.Period) []task.PlacementUpdate {
	var updates []task.PlacementUpdate
	for _, p := range b.Placements(employeeID, date, period) {
		updates = append(updates, task.PlacementUpdate{
			TaskID: p.TaskID,
			Column: p.Start,
			Hours:  p.Span,
		})
	}
	return updates
}

// apply replays the record against the repository.
func (r undoRecord) apply(ctx context.Context, repo task.Repository) error {
	if err := repo.BatchUpdatePlacements(ctx, r.preRestore); err != nil {
		return fmt.Errorf("restoring source slot: %w", err)
	}
	if mb := r.moveBack; mb != nil {
		if err := repo.MoveTask(ctx, mb.taskID, mb.employeeID, mb.date, mb.period, mb.column, mb.hours); err != nil {
			return fmt.Errorf("restoring task position: %w", err)
		}
	}
	if err := repo.BatchUpdatePlacements(ctx, r.restore); err != nil {
		return fmt.Errorf("restoring placements: %w", err)
	}
	return nil
}

// undoCmd replays the most recent undo record.
func (m Model) undoCmd(rec undoRecord) tea.Cmd {
	return func() tea.Msg {
		if err := rec.apply(context.Background(), m.repo); err != nil {
			return commands.ErrMsg{Err: err}
		}
		return commands.MutationDoneMsg{Status: "Undid " + rec.desc}
	}
}
