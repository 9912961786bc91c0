package mission

import (
	"context"
	"testing"
)

func TestSession_StartLoadsAndSubscribes(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{
		tasks:  []Task{{ID: "t1", WorkspaceID: "W1", Status: TaskExecuting, BoardColumn: BoardInProgress}},
		agents: []AgentRole{{ID: "A1", Name: "Researcher"}},
	}
	sess := NewSession(b, "W1", nil)
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sess.Stop()

	if got := b.subscriptions.Load(); got != 5 {
		t.Errorf("subscriptions = %d, want 5", got)
	}

	board := sess.Board()
	if len(board[ColumnInProgress]) != 1 {
		t.Errorf("board in_progress = %v", board[ColumnInProgress])
	}
}

func TestSession_FeedResolvesAgentNames(t *testing.T) {
	t.Parallel()

	b := &fakeBackend{
		agents: []AgentRole{{ID: "A1", Name: "Researcher"}},
		activities: []Activity{
			{ID: "a1", WorkspaceID: "W1", AgentRoleID: "A1", ActivityType: "comment", Title: "hi", CreatedAt: testTime(1)},
		},
	}
	sess := NewSession(b, "W1", nil)
	if err := sess.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer sess.Stop()

	feed := sess.Feed(FeedAll, "")
	if len(feed) != 1 {
		t.Fatalf("feed = %d items, want 1", len(feed))
	}
	if feed[0].AgentName != "Researcher" {
		t.Errorf("agent name = %q, want Researcher", feed[0].AgentName)
	}
}
