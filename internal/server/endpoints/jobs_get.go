package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/store"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

// GetJobEndpoint handles GET /jobs/{job_id}: the current Job record.
type GetJobEndpoint struct{}

func (e *GetJobEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/jobs/{job_id}", e.handler
}

func (e *GetJobEndpoint) RequiresInit() bool { return true }

func (e *GetJobEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	jobs := svcctx.JobsFrom(r.Context())

	job, err := jobs.Get(r.Context(), jobID)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (e *GetJobEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "get [job_id]",
		Short: "Get a job's current record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var job map[string]any
			path := "/jobs/" + strings.TrimSpace(args[0])
			if err := client.Get(cmd.Context(), path, &job); err != nil {
				return err
			}
			return api.Output(job)
		},
	}
}
