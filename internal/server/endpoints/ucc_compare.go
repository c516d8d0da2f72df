package endpoints

import (
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

// CompareEndpoint handles POST /ucc/compare (§6): a synchronous clause
// comparison that blocks until the job reaches a terminal state (bounded
// by the Orchestrator's own job hard timeout) and renders the result
// inline instead of returning a job_id.
type CompareEndpoint struct{}

func (e *CompareEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/ucc/compare", e.handler
}

func (e *CompareEndpoint) RequiresInit() bool { return true }

func (e *CompareEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	bytesA, nameA, err := readFilePart(r, "file_a")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bytesB, nameB, err := readFilePart(r, "file_b")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	wireOpts, err := parseOptionsPart(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	opts, err := wireOpts.toOrchestratorOptions()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	docA := model.NewDocument(nameA, bytesA)
	docB := model.NewDocument(nameB, bytesB)

	orch := svcctx.OrchestratorFrom(r.Context())
	bus := svcctx.BusFrom(r.Context())
	jobs := svcctx.JobsFrom(r.Context())

	jobID, err := orch.Submit(r.Context(), docA, docB, nameA, nameB, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to start comparison: "+err.Error())
		return
	}

	sub := bus.Subscribe(jobID)
	defer sub.Close()

waitForTerminal:
	for {
		select {
		case frame, ok := <-sub.Frames:
			if !ok {
				break waitForTerminal
			}
			if frame.Type == model.FrameFinal || frame.Type == model.FrameError {
				break waitForTerminal
			}
		case <-r.Context().Done():
			writeError(w, http.StatusGatewayTimeout, "client disconnected before comparison finished")
			return
		}
	}

	job, err := jobs.Get(r.Context(), jobID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load job after completion")
		return
	}

	switch job.Status {
	case model.JobCompleted:
		result, err := jobs.GetResult(r.Context(), jobID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to load comparison result")
			return
		}
		writeJSON(w, http.StatusOK, result)
	case model.JobFailed:
		if strings.Contains(strings.ToLower(job.ErrorMessage), "timeout") {
			writeError(w, http.StatusGatewayTimeout, job.ErrorMessage)
			return
		}
		writeError(w, http.StatusInternalServerError, job.ErrorMessage)
	case model.JobCancelled:
		writeError(w, http.StatusInternalServerError, "comparison was cancelled")
	default:
		writeError(w, http.StatusInternalServerError, "comparison ended in an unexpected state: "+string(job.Status))
	}
}

func (e *CompareEndpoint) Command(getServerURL func() string) *cobra.Command {
	var fileA, fileB string
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Synchronously compare two PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileA == "" || fileB == "" {
				return errMissingFilePair
			}
			client := api.NewClient(getServerURL())
			files := map[string]string{"file_a": fileA, "file_b": fileB}
			var result map[string]any
			if err := client.PostMultipart(cmd.Context(), "/ucc/compare", files, nil, &result); err != nil {
				return err
			}
			return api.Output(result)
		},
	}
	cmd.Flags().StringVar(&fileA, "file-a", "", "Path to the first PDF")
	cmd.Flags().StringVar(&fileB, "file-b", "", "Path to the second PDF")
	return cmd
}
