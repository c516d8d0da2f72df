package endpoints

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/jordigilh/uccompare/internal/api"
	"github.com/jordigilh/uccompare/internal/model"
	"github.com/jordigilh/uccompare/internal/pdfx"
	"github.com/jordigilh/uccompare/internal/svcctx"
	"github.com/jordigilh/uccompare/internal/uccerr"
)

// PreprocessEndpoint handles POST /ucc/preprocess (§6): parse a single PDF
// and return its Document with Blocks and summary metadata, bypassing the
// job orchestrator entirely since this is a single-segment operation.
type PreprocessEndpoint struct{}

// PreprocessResponse is the wire shape for a preprocessed document.
type PreprocessResponse struct {
	DocID      string        `json:"doc_id"`
	FileName   string        `json:"file_name"`
	BlockCount int           `json:"block_count"`
	PageCount  int           `json:"page_count"`
	Blocks     []model.Block `json:"blocks"`
}

func (e *PreprocessEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/ucc/preprocess", e.handler
}

func (e *PreprocessEndpoint) RequiresInit() bool { return false }

func (e *PreprocessEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	data, fileName, err := readFilePart(r, "file")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := model.NewDocument(fileName, data)
	extractor := pdfx.New(svcctx.LoggerFrom(r.Context()))
	blocks, err := extractor.Extract(doc.DocID, data)
	if err != nil {
		if uccerr.KindOf(err) == uccerr.KindParseError {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	pages := 0
	for _, b := range blocks {
		if b.PageEnd > pages {
			pages = b.PageEnd
		}
	}

	writeJSON(w, http.StatusOK, PreprocessResponse{
		DocID:      doc.DocID,
		FileName:   fileName,
		BlockCount: len(blocks),
		PageCount:  pages,
		Blocks:     blocks,
	})
}

func (e *PreprocessEndpoint) Command(getServerURL func() string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "preprocess",
		Short: "Parse a single PDF into Blocks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return errMissingFile
			}
			client := api.NewClient(getServerURL())
			var resp PreprocessResponse
			if err := client.PostMultipart(cmd.Context(), "/ucc/preprocess", map[string]string{"file": file}, nil, &resp); err != nil {
				return err
			}
			return api.Output(resp)
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Path to the PDF")
	return cmd
}
