package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os/signal"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-mirror/pkg/web"
)

func NewWatchCmd(deps *Dependencies) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream snapshots from a running mirror",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = fmt.Sprintf("localhost:%d", deps.Config.Server.Port)
			}
			u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/snapshot"}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
			if err != nil {
				return fmt.Errorf("connect %s: %w", u.String(), err)
			}
			defer conn.Close()

			go func() {
				<-ctx.Done()
				conn.Close()
			}()

			out := cmd.OutOrStdout()
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return fmt.Errorf("read: %w", err)
				}
				var msg web.SnapshotMessage
				if err := json.Unmarshal(data, &msg); err != nil {
					fmt.Fprintf(out, "undecodable message: %v\n", err)
					continue
				}
				fmt.Fprintln(out, formatSnapshot(msg))
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "host:port of the mirror (default localhost:<server.port>)")
	return cmd
}

func formatSnapshot(msg web.SnapshotMessage) string {
	s := msg.Snapshot
	line := fmt.Sprintf("#%d %-18s mode=%-8s faces=%d", s.Seq, msg.Overlay.Status, s.Mode, len(s.Faces))
	if s.Filter != "" {
		line += " filter=" + string(s.Filter)
	}
	if s.Error != "" {
		line += " error=" + s.Error
	}
	return line
}
