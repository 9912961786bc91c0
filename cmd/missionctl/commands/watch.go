// Package commands – watch.go connects to a gateway and streams the
// composed feed and board summary to the terminal.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/missionctl/pkg/missionctl/gateway"
	"github.com/jholhewres/missionctl/pkg/missionctl/mission"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream the live feed and board state",
		RunE:  runWatch,
	}

	cmd.Flags().String("workspace", "", "workspace id (overrides config)")
	cmd.Flags().String("filter", "", "feed filter: all, comments, tasks, status")
	cmd.Flags().String("agent", "", "only show feed items for this agent role")
	cmd.Flags().Duration("interval", 2*time.Second, "feed refresh interval")
	return cmd
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	workspace, _ := cmd.Flags().GetString("workspace")
	if workspace == "" {
		workspace = cfg.Workspace.ID
	}
	filter, _ := cmd.Flags().GetString("filter")
	if filter == "" {
		filter = cfg.Feed.Filter
	}
	agent, _ := cmd.Flags().GetString("agent")
	if agent == "" {
		agent = cfg.Feed.Agent
	}
	interval, _ := cmd.Flags().GetDuration("interval")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("connecting to gateway", "url", cfg.Gateway.URL, "workspace", workspace)
	client, err := gateway.Dial(ctx, cfg.Gateway.URL, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	sess := mission.NewSession(client, workspace, logger)
	if err := sess.Start(ctx); err != nil {
		return err
	}
	defer sess.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastTop string
	printBoard(sess)

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return nil
		case <-ticker.C:
			feed := sess.Feed(mission.FeedType(filter), agent)
			if len(feed) == 0 || feed[0].ID == lastTop {
				continue
			}
			// Print only items newer than the last printed head.
			fresh := feed
			for i, item := range feed {
				if item.ID == lastTop {
					fresh = feed[:i]
					break
				}
			}
			for i := len(fresh) - 1; i >= 0; i-- {
				printFeedItem(fresh[i])
			}
			lastTop = feed[0].ID
		}
	}
}

func printFeedItem(item mission.FeedItem) {
	name := item.AgentName
	if name == "" {
		name = "system"
	}
	fmt.Printf("%s  %-8s %-12s %s\n",
		item.Timestamp.Format("15:04:05"), item.Type, name, item.Content)
}

func printBoard(sess *mission.Session) {
	board := sess.Board()
	fmt.Println("board:")
	for _, col := range mission.Columns {
		fmt.Printf("  %-12s %d\n", col, len(board[col]))
	}
}
