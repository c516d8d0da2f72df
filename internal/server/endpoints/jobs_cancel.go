package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

// CancelJobEndpoint handles POST /jobs/{job_id}/cancel: cooperative
// cancellation request (§5, §7).
type CancelJobEndpoint struct{}

// CancelResponse is the wire shape for a cancel request's outcome.
type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}

func (e *CancelJobEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/jobs/{job_id}/cancel", e.handler
}

func (e *CancelJobEndpoint) RequiresInit() bool { return true }

func (e *CancelJobEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	orch := svcctx.OrchestratorFrom(r.Context())

	if orch.Cancel(jobID) {
		writeJSON(w, http.StatusOK, CancelResponse{Cancelled: true, Message: "cancellation requested"})
		return
	}
	writeJSON(w, http.StatusOK, CancelResponse{Cancelled: false, Message: "job is not currently running"})
}

func (e *CancelJobEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [job_id]",
		Short: "Request cancellation of a running job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var resp CancelResponse
			path := "/jobs/" + strings.TrimSpace(args[0]) + "/cancel"
			if err := client.Post(cmd.Context(), path, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
}
