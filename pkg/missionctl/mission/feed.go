// Package mission – feed.go composes the unified activity timeline from two
// unrelated sources: activity records and recent heartbeat events. The feed
// is derived on every read and never stored; both inputs are bounded, so the
// recompute is cheap.
package mission

import (
	"sort"
	"time"
)

// FeedLimit caps the composed feed at the most recent entries.
const FeedLimit = 50

// FeedType buckets feed items for filtering.
type FeedType string

const (
	FeedAll      FeedType = "all"
	FeedComments FeedType = "comments"
	FeedTasks    FeedType = "tasks"
	FeedStatus   FeedType = "status"
)

// FeedItem is the common shape both sources map onto.
type FeedItem struct {
	ID        string    `json:"id"`
	Type      FeedType  `json:"type"`
	AgentID   string    `json:"agent_id,omitempty"`
	AgentName string    `json:"agent_name"`
	Content   string    `json:"content"`
	TaskID    string    `json:"task_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// activityFeedType buckets an activity type into a feed type.
func activityFeedType(activityType string) FeedType {
	switch activityType {
	case "comment", "message", "reply":
		return FeedComments
	case "task_created", "task_updated", "task_completed", "task_assigned", "task_moved":
		return FeedTasks
	default:
		return FeedStatus
	}
}

// ComposeFeed merges activities and heartbeat events into one chronological
// feed, newest first, truncated to FeedLimit.
//
// filter narrows by feed type (FeedAll keeps everything). agentFilter, when
// non-empty, keeps only items attributed to that agent; items lacking an
// agent id are excluded under an active filter.
//
// Tie-break for equal timestamps is the stable-sort order of concatenation:
// heartbeat items come before activity items.
func ComposeFeed(activities []Activity, heartbeats []HeartbeatEvent, filter FeedType, agentFilter string) []FeedItem {
	items := make([]FeedItem, 0, len(activities)+len(heartbeats))

	for _, hb := range heartbeats {
		content := hb.Message
		if content == "" {
			content = "heartbeat " + string(hb.Type)
		}
		items = append(items, FeedItem{
			ID:        "hb-" + hb.AgentRoleID + "-" + hb.Timestamp.UTC().Format(time.RFC3339Nano),
			Type:      FeedStatus,
			AgentID:   hb.AgentRoleID,
			AgentName: hb.AgentName,
			Content:   content,
			Timestamp: hb.Timestamp,
		})
	}

	for _, a := range activities {
		content := a.Title
		if a.Description != "" {
			content = a.Title + ": " + a.Description
		}
		items = append(items, FeedItem{
			ID:        a.ID,
			Type:      activityFeedType(a.ActivityType),
			AgentID:   a.AgentRoleID,
			AgentName: a.AgentRoleID,
			Content:   content,
			TaskID:    a.TaskID,
			Timestamp: a.CreatedAt,
		})
	}

	filtered := items[:0]
	for _, it := range items {
		if filter != "" && filter != FeedAll && it.Type != filter {
			continue
		}
		if agentFilter != "" && it.AgentID != agentFilter {
			continue
		}
		filtered = append(filtered, it)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Timestamp.After(filtered[j].Timestamp)
	})

	if len(filtered) > FeedLimit {
		filtered = filtered[:FeedLimit]
	}
	return filtered
}
