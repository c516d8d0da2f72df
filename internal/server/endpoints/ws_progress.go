package endpoints

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

const wsCloseWriteTimeout = 2 * time.Second

// upgrader accepts WebSocket connections from any origin; the CLI and web
// clients this API serves are not third-party browser pages, so there is
// no cross-site request to defend against here.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ProgressWSEndpoint handles WS /ws/jobs/{job_id} (§4.11): streams progress
// frames until a terminal frame, then closes.
type ProgressWSEndpoint struct{}

func (e *ProgressWSEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/ws/jobs/{job_id}", e.handler
}

func (e *ProgressWSEndpoint) RequiresInit() bool { return true }

func (e *ProgressWSEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	bus := svcctx.BusFrom(r.Context())
	logger := svcctx.LoggerFrom(r.Context())

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to upgrade websocket", "job_id", jobID, "error", err)
		}
		return
	}
	defer conn.Close()

	sub := bus.Subscribe(jobID)
	defer sub.Close()

	for frame := range sub.Frames {
		if err := conn.WriteJSON(frame); err != nil {
			if logger != nil {
				logger.Warn("failed to write progress frame", "job_id", jobID, "error", err)
			}
			_ = conn.Close()
			return
		}
		if frame.Type == model.FrameFinal {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "comparison complete"), time.Now().Add(wsCloseWriteTimeout))
			return
		}
		if frame.Type == model.FrameError {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseInternalServerErr, frame.ErrorMessage), time.Now().Add(wsCloseWriteTimeout))
			return
		}
	}
}

func (e *ProgressWSEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:    "watch [job_id]",
		Hidden: true,
		Short:  "Stream a job's progress frames (not supported over plain HTTP)",
		Args:   cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.Println("Connect a WebSocket client to " + getServerURL() + "/ws/jobs/" + args[0])
			return nil
		},
	}
}
