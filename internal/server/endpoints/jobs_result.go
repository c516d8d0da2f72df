package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/store"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

// GetJobResultEndpoint handles GET /jobs/{job_id}/result (§6): the
// ComparisonResult if COMPLETED, 202 with the current Job if still
// running, 410 if the job was purged or never existed.
type GetJobResultEndpoint struct{}

func (e *GetJobResultEndpoint) Route() (string, string, http.HandlerFunc) {
	return "GET", "/jobs/{job_id}/result", e.handler
}

func (e *GetJobResultEndpoint) RequiresInit() bool { return true }

func (e *GetJobResultEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("job_id")
	jobs := svcctx.JobsFrom(r.Context())

	job, err := jobs.Get(r.Context(), jobID)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusGone, "job not found or purged")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}

	if job.Status != model.JobCompleted {
		writeJSON(w, http.StatusAccepted, job)
		return
	}

	result, err := jobs.GetResult(r.Context(), jobID)
	if err != nil {
		if err == store.ErrNotFound {
			writeError(w, http.StatusGone, "result no longer available")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load result")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (e *GetJobResultEndpoint) Command(getServerURL func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "result [job_id]",
		Short: "Fetch a job's comparison result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := api.NewClient(getServerURL())
			var result map[string]any
			path := "/jobs/" + strings.TrimSpace(args[0]) + "/result"
			if err := client.Get(cmd.Context(), path, &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
}
