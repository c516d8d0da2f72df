package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jordigilh/uccompare/internal/model"
)

// TestServer_SyncCompareEndpoint exercises POST /ucc/compare end to end: it
// blocks until the submitted job reaches a terminal state and renders the
// outcome inline instead of a job_id.
func TestServer_SyncCompareEndpoint(t *testing.T) {
	_, cfg := startTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, field := range []string{"file_a", "file_b"} {
		part, _ := mw.CreateFormFile(field, field+".pdf")
		part.Write([]byte("not a real pdf"))
	}
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, cfg.URL()+"/ucc/compare", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("sync compare failed: %v", err)
	}
	defer resp.Body.Close()

	// Invalid PDF bytes fail the job during layout extraction, which the
	// synchronous endpoint reports as 500 (not a timeout).
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
}

// TestServer_ProgressWebSocket submits a job and streams its progress over
// the WS endpoint until the connection closes, verifying a terminal frame
// (error, given invalid PDF bytes) was observed before close.
func TestServer_ProgressWebSocket(t *testing.T) {
	_, cfg := startTestServer(t)

	jobID := submitInvalidPDFJob(t, cfg.URL())

	wsURL := "ws://" + cfg.Host + ":" + cfg.Port + "/ws/jobs/" + jobID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	sawTerminal := false
	for {
		var frame model.ProgressFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}
		if frame.JobID != jobID {
			t.Errorf("frame.JobID = %q, want %q", frame.JobID, jobID)
		}
		if frame.Type == model.FrameFinal || frame.Type == model.FrameError {
			sawTerminal = true
		}
	}

	if !sawTerminal {
		t.Error("expected to observe a terminal progress frame before the connection closed")
	}
}

// TestServer_CancelRunningJob submits a job, cancels it mid-flight, and
// verifies the subsequent Job record reflects the cancellation request
// (§8): either the job is already terminal by the time cancel lands (the
// fixed pipeline over invalid PDF bytes fails almost instantly), or it
// transitions to CANCELLED.
func TestServer_CancelRunningJob(t *testing.T) {
	_, cfg := startTestServer(t)

	jobID := submitInvalidPDFJob(t, cfg.URL())

	resp, err := http.Post(cfg.URL()+"/jobs/"+jobID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("cancel request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	job := waitForTerminalJob(t, cfg.URL(), jobID, 3*time.Second)
	if job.Status != model.JobFailed && job.Status != model.JobCancelled {
		t.Errorf("job.Status = %q, want FAILED or CANCELLED", job.Status)
	}
}

// TestServer_OptionsValidation verifies an out-of-range option on
// POST /jobs/compare is rejected with 400 before a job is ever submitted.
func TestServer_OptionsValidation(t *testing.T) {
	_, cfg := startTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, field := range []string{"file_a", "file_b"} {
		part, _ := mw.CreateFormFile(field, field+".pdf")
		part.Write([]byte("x"))
	}
	optsJSON, _ := json.Marshal(map[string]any{"similarity_threshold": 2.0})
	mw.WriteField("options", string(optsJSON))
	mw.Close()

	req, _ := http.NewRequest(http.MethodPost, cfg.URL()+"/jobs/compare", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	body := struct {
		Error string `json:"error"`
	}{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		if !strings.Contains(body.Error, "similarity_threshold") {
			t.Errorf("error message = %q, want it to mention similarity_threshold", body.Error)
		}
	}
}
