// Package mission – columns.go projects task domain state onto the five
// fixed mission columns shown on the board. The projection is derived on
// every read and never stored.
package mission

// MissionColumn is one of the five fixed Kanban stages.
type MissionColumn string

const (
	ColumnInbox      MissionColumn = "inbox"
	ColumnAssigned   MissionColumn = "assigned"
	ColumnInProgress MissionColumn = "in_progress"
	ColumnReview     MissionColumn = "review"
	ColumnDone       MissionColumn = "done"
)

// Columns lists the mission columns in board order.
var Columns = []MissionColumn{
	ColumnInbox, ColumnAssigned, ColumnInProgress, ColumnReview, ColumnDone,
}

// MapToColumn maps a task onto exactly one mission column. Rules are
// evaluated in fixed priority order, first match wins:
//
//  1. status completed                     → done
//  2. board done                           → done
//  3. board review                         → review
//  4. board in_progress                    → in_progress
//  5. board todo                           → assigned
//  6. board backlog                        → assigned if assigned, else inbox
//  7. board assigned/inbox (legacy)        → itself
//  8. no board column                      → assigned if assigned, else inbox
//
// Status is authoritative only for terminal completion; the board column is
// authoritative for intermediate workflow position; assignment presence is
// the tie-break for the earliest stage. This tolerates backend states where
// status and board column have not yet synchronized.
func MapToColumn(t Task) MissionColumn {
	if t.Status == TaskCompleted {
		return ColumnDone
	}

	switch t.BoardColumn {
	case BoardDone:
		return ColumnDone
	case BoardReview:
		return ColumnReview
	case BoardInProgress:
		return ColumnInProgress
	case BoardTodo:
		return ColumnAssigned
	case BoardBacklog:
		if t.AssignedAgentRoleID != "" {
			return ColumnAssigned
		}
		return ColumnInbox
	case BoardAssigned:
		return ColumnAssigned
	case BoardInbox:
		return ColumnInbox
	}

	if t.AssignedAgentRoleID != "" {
		return ColumnAssigned
	}
	return ColumnInbox
}

// columnToBoard picks one canonical board column per mission column. The
// projection the other way is lossy, so a drag into a column always lands on
// the same board value.
var columnToBoard = map[MissionColumn]BoardColumn{
	ColumnInbox:      BoardBacklog,
	ColumnAssigned:   BoardTodo,
	ColumnInProgress: BoardInProgress,
	ColumnReview:     BoardReview,
	ColumnDone:       BoardDone,
}

// ColumnToBoardColumn returns the canonical board column for a mission
// column (used when the user drags a task into a column).
func ColumnToBoardColumn(c MissionColumn) BoardColumn {
	if bc, ok := columnToBoard[c]; ok {
		return bc
	}
	return BoardBacklog
}
