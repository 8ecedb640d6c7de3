package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"tripform/internal/domain"
	"tripform/internal/http/middleware"
	"tripform/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

const (
	msgDriveRelayFailed = "Erro ao fazer proxy para o Apps Script"
	msgPDFRelayFailed   = "Erro ao enviar para o Apps Script"
)

const uploadSchema = `{
  "type": "object",
  "required": ["pdfBase64", "fileName", "folderName"],
  "properties": {
    "pdfBase64":  {"type": "string", "minLength": 1},
    "fileName":   {"type": "string", "minLength": 1},
    "folderName": {"type": "string"}
  }
}`

var compileUploadSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("upload.json", strings.NewReader(uploadSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	return compiler.Compile("upload.json")
})

// Relay forwards upload payloads to the storage scripts so the browser only
// ever talks to its own origin.
type Relay struct {
	DriveURL string
	PDFURL   string
	Client   *http.Client
}

func (h Relay) client() *http.Client {
	if h.Client != nil {
		return h.Client
	}
	return &http.Client{Timeout: 60 * time.Second}
}

// GoogleDrive forwards the JSON body unchanged.
func (h Relay) GoogleDrive(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		relayFailure(c, "google-drive", msgDriveRelayFailed, err)
		return
	}
	h.forward(c, "google-drive", h.DriveURL, body, msgDriveRelayFailed)
}

// EnviarPDF checks the body shape and forwards only pdfBase64, fileName and
// folderName.
func (h Relay) EnviarPDF(c *gin.Context) {
	body, err := readJSONBody(c)
	if err != nil {
		relayFailure(c, "enviar-pdf", msgPDFRelayFailed, err)
		return
	}
	schema, err := compileUploadSchema()
	if err != nil {
		relayFailure(c, "enviar-pdf", msgPDFRelayFailed, err)
		return
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		relayFailure(c, "enviar-pdf", msgPDFRelayFailed, err)
		return
	}
	if err := schema.Validate(doc); err != nil {
		relayFailure(c, "enviar-pdf", msgPDFRelayFailed, domain.ValidationError{Msg: "json does not match schema", Err: err})
		return
	}

	var req domain.UploadRequest
	if err := json.Unmarshal(body, &req); err != nil {
		relayFailure(c, "enviar-pdf", msgPDFRelayFailed, err)
		return
	}
	out, err := json.Marshal(req)
	if err != nil {
		relayFailure(c, "enviar-pdf", msgPDFRelayFailed, err)
		return
	}
	h.forward(c, "enviar-pdf", h.PDFURL, out, msgPDFRelayFailed)
}

func (h Relay) forward(c *gin.Context, name, target string, body []byte, failMsg string) {
	reply, status, err := h.post(c.Request.Context(), middleware.GetRequestID(c), target, body)
	if err != nil {
		relayFailure(c, name, failMsg, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "relay", name, "relayed",
		zap.Int("upstream_status", status), zap.Int("bytes", len(body)))
	c.Data(http.StatusOK, "application/json; charset=utf-8", reply)
}

// post sends body to target and returns the reply when it is JSON.
func (h Relay) post(ctx context.Context, requestID, target string, body []byte) ([]byte, int, error) {
	if strings.TrimSpace(target) == "" {
		return nil, 0, errors.New("relay target not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	resp, err := h.client().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	reply, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read reply: %w", err)
	}
	if !json.Valid(reply) {
		return nil, resp.StatusCode, fmt.Errorf("upstream replied %d with non-JSON body", resp.StatusCode)
	}
	return reply, resp.StatusCode, nil
}

func readJSONBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, errors.New("empty body")
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, errors.New("body is not valid JSON")
	}
	return body, nil
}

func relayFailure(c *gin.Context, name, message string, err error) {
	utils.LogFailure(middleware.GetRequestID(c), "relay", name, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": message, "details": err.Error()})
}
