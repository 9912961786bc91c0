package mission

import (
	"fmt"
	"testing"
)

func TestComposeFeed_BoundAndOrder(t *testing.T) {
	t.Parallel()

	var activities []Activity
	for i := 0; i < 40; i++ {
		activities = append(activities, Activity{
			ID:           fmt.Sprintf("a%d", i),
			WorkspaceID:  "W1",
			AgentRoleID:  "A1",
			ActivityType: "comment",
			Title:        "c",
			CreatedAt:    testTime(i),
		})
	}
	var heartbeats []HeartbeatEvent
	for i := 0; i < 30; i++ {
		heartbeats = append(heartbeats, HeartbeatEvent{
			Type:        HeartbeatCompleted,
			AgentRoleID: "A2",
			Timestamp:   testTime(100 + i),
		})
	}

	feed := ComposeFeed(activities, heartbeats, FeedAll, "")
	if len(feed) != FeedLimit {
		t.Fatalf("feed length = %d, want %d", len(feed), FeedLimit)
	}
	for i := 1; i < len(feed); i++ {
		if feed[i].Timestamp.After(feed[i-1].Timestamp) {
			t.Fatalf("feed not sorted non-increasing at %d: %v after %v",
				i, feed[i].Timestamp, feed[i-1].Timestamp)
		}
	}
}

func TestComposeFeed_TieBreak(t *testing.T) {
	t.Parallel()

	ts := testTime(7)
	activities := []Activity{
		{ID: "act", WorkspaceID: "W1", AgentRoleID: "A1", ActivityType: "status_change", Title: "a", CreatedAt: ts},
	}
	heartbeats := []HeartbeatEvent{
		{Type: HeartbeatCompleted, AgentRoleID: "A1", Timestamp: ts},
	}

	feed := ComposeFeed(activities, heartbeats, FeedAll, "")
	if len(feed) != 2 {
		t.Fatalf("feed length = %d, want 2", len(feed))
	}
	// Stable-sort order of concatenation: heartbeat before activity on
	// equal timestamps.
	if feed[0].ID == "act" {
		t.Error("activity sorted before heartbeat on equal timestamp")
	}
}

func TestComposeFeed_TypeFilter(t *testing.T) {
	t.Parallel()

	activities := []Activity{
		{ID: "a1", AgentRoleID: "A1", ActivityType: "comment", Title: "c", CreatedAt: testTime(1)},
		{ID: "a2", AgentRoleID: "A1", ActivityType: "task_completed", Title: "t", CreatedAt: testTime(2)},
		{ID: "a3", AgentRoleID: "A1", ActivityType: "status_change", Title: "s", CreatedAt: testTime(3)},
	}
	heartbeats := []HeartbeatEvent{
		{Type: HeartbeatNoWork, AgentRoleID: "A1", Timestamp: testTime(4)},
	}

	comments := ComposeFeed(activities, heartbeats, FeedComments, "")
	if len(comments) != 1 || comments[0].ID != "a1" {
		t.Errorf("comments filter = %v", comments)
	}

	tasks := ComposeFeed(activities, heartbeats, FeedTasks, "")
	if len(tasks) != 1 || tasks[0].ID != "a2" {
		t.Errorf("tasks filter = %v", tasks)
	}

	// Heartbeat events always bucket as status.
	status := ComposeFeed(activities, heartbeats, FeedStatus, "")
	if len(status) != 2 {
		t.Errorf("status filter returned %d items, want 2 (activity + heartbeat)", len(status))
	}
}

func TestComposeFeed_AgentFilter(t *testing.T) {
	t.Parallel()

	activities := []Activity{
		{ID: "a1", AgentRoleID: "A1", ActivityType: "comment", Title: "c", CreatedAt: testTime(1)},
		{ID: "a2", AgentRoleID: "A2", ActivityType: "comment", Title: "c", CreatedAt: testTime(2)},
		{ID: "a3", ActivityType: "comment", Title: "no agent", CreatedAt: testTime(3)},
	}

	feed := ComposeFeed(activities, nil, FeedAll, "A1")
	if len(feed) != 1 || feed[0].ID != "a1" {
		t.Errorf("agent filter = %v, want only a1", feed)
	}
	// Items lacking an agent id are excluded under an active filter.
	for _, it := range feed {
		if it.AgentID == "" {
			t.Error("agent-less item survived active agent filter")
		}
	}
}

func TestComposeFeed_Pure(t *testing.T) {
	t.Parallel()

	activities := []Activity{
		{ID: "a1", AgentRoleID: "A1", ActivityType: "comment", Title: "c", CreatedAt: testTime(1)},
	}
	heartbeats := []HeartbeatEvent{
		{Type: HeartbeatStarted, AgentRoleID: "A1", Timestamp: testTime(2)},
	}

	first := ComposeFeed(activities, heartbeats, FeedAll, "")
	second := ComposeFeed(activities, heartbeats, FeedAll, "")
	if len(first) != len(second) {
		t.Fatalf("recompute differs: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("item %d differs between recomputes", i)
		}
	}
	// Inputs untouched.
	if activities[0].ID != "a1" || heartbeats[0].AgentRoleID != "A1" {
		t.Error("ComposeFeed mutated its inputs")
	}
}
