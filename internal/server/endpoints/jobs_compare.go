package endpoints

import (
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/svcctx"
)

var (
	errMissingFilePair = errors.New("both --file-a and --file-b are required")
	errMissingFile     = errors.New("--file is required")
)

// SubmitCompareJobEndpoint handles POST /jobs/compare (§6): submit an
// async comparison job, returning immediately with the new job_id.
type SubmitCompareJobEndpoint struct{}

// SubmitCompareResponse is the wire shape for a successful submission.
type SubmitCompareResponse struct {
	JobID  string          `json:"job_id"`
	Status model.JobStatus `json:"status"`
}

func (e *SubmitCompareJobEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/jobs/compare", e.handler
}

func (e *SubmitCompareJobEndpoint) RequiresInit() bool { return true }

func (e *SubmitCompareJobEndpoint) handler(w http.ResponseWriter, r *http.Request) {
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
	jobID, err := orch.Submit(r.Context(), docA, docB, nameA, nameB, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to submit job: "+err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, SubmitCompareResponse{JobID: jobID, Status: model.JobQueued})
}

func (e *SubmitCompareJobEndpoint) Command(getServerURL func() string) *cobra.Command {
	var fileA, fileB string
	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit an async comparison job for two PDFs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if fileA == "" || fileB == "" {
				return errMissingFilePair
			}
			client := api.NewClient(getServerURL())
			files := map[string]string{"file_a": fileA, "file_b": fileB}
			var resp SubmitCompareResponse
			if err := client.PostMultipart(cmd.Context(), "/jobs/compare", files, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&fileA, "file-a", "", "Path to the first PDF")
	cmd.Flags().StringVar(&fileB, "file-b", "", "Path to the second PDF")
	return cmd
}
