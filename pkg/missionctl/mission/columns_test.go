package mission

import (
	"testing"
)

var allStatuses = []TaskStatus{
	TaskPending, TaskQueued, TaskPlanning, TaskExecuting, TaskBlocked,
	TaskPaused, TaskCompleted, TaskFailed, TaskCancelled,
}

var allBoardColumns = []BoardColumn{
	"", BoardBacklog, BoardTodo, BoardInProgress, BoardReview, BoardDone,
	BoardAssigned, BoardInbox,
}

func TestMapToColumn_Totality(t *testing.T) {
	t.Parallel()

	valid := map[MissionColumn]bool{
		ColumnInbox: true, ColumnAssigned: true, ColumnInProgress: true,
		ColumnReview: true, ColumnDone: true,
	}

	for _, status := range allStatuses {
		for _, board := range allBoardColumns {
			for _, assignee := range []string{"", "agent-1"} {
				task := Task{ID: "t", Status: status, BoardColumn: board, AssignedAgentRoleID: assignee}
				col := MapToColumn(task)
				if !valid[col] {
					t.Errorf("MapToColumn(%s/%s/assigned=%v) = %q, not a mission column",
						status, board, assignee != "", col)
				}
				// Pure: repeated calls identical.
				if again := MapToColumn(task); again != col {
					t.Errorf("MapToColumn not deterministic for %s/%s: %q then %q",
						status, board, col, again)
				}
			}
		}
	}
}

func TestMapToColumn_CompletionPrecedence(t *testing.T) {
	t.Parallel()

	for _, board := range allBoardColumns {
		task := Task{ID: "t", Status: TaskCompleted, BoardColumn: board}
		if col := MapToColumn(task); col != ColumnDone {
			t.Errorf("completed task with board %q mapped to %q, want done", board, col)
		}
	}
}

func TestMapToColumn_Rules(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		task Task
		want MissionColumn
	}{
		{"board done wins over executing", Task{Status: TaskExecuting, BoardColumn: BoardDone}, ColumnDone},
		{"board review", Task{Status: TaskExecuting, BoardColumn: BoardReview}, ColumnReview},
		{"board in_progress", Task{Status: TaskQueued, BoardColumn: BoardInProgress}, ColumnInProgress},
		{"board todo", Task{Status: TaskPending, BoardColumn: BoardTodo}, ColumnAssigned},
		{"backlog assigned", Task{Status: TaskExecuting, BoardColumn: BoardBacklog, AssignedAgentRoleID: "A1"}, ColumnAssigned},
		{"backlog unassigned", Task{Status: TaskExecuting, BoardColumn: BoardBacklog}, ColumnInbox},
		{"legacy assigned", Task{Status: TaskPending, BoardColumn: BoardAssigned}, ColumnAssigned},
		{"legacy inbox", Task{Status: TaskPending, BoardColumn: BoardInbox, AssignedAgentRoleID: "A1"}, ColumnInbox},
		{"no board assigned", Task{Status: TaskPlanning, AssignedAgentRoleID: "A1"}, ColumnAssigned},
		{"no board unassigned", Task{Status: TaskPlanning}, ColumnInbox},
	}

	for _, tc := range cases {
		if got := MapToColumn(tc.task); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestColumnToBoardColumn(t *testing.T) {
	t.Parallel()

	want := map[MissionColumn]BoardColumn{
		ColumnInbox:      BoardBacklog,
		ColumnAssigned:   BoardTodo,
		ColumnInProgress: BoardInProgress,
		ColumnReview:     BoardReview,
		ColumnDone:       BoardDone,
	}
	for col, board := range want {
		if got := ColumnToBoardColumn(col); got != board {
			t.Errorf("ColumnToBoardColumn(%q) = %q, want %q", col, got, board)
		}
	}

	// Unknown column falls back to backlog rather than inventing a value.
	if got := ColumnToBoardColumn(MissionColumn("bogus")); got != BoardBacklog {
		t.Errorf("unknown column = %q, want backlog", got)
	}
}
