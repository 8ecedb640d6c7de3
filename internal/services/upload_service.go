package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"tripform/internal/domain"
	"tripform/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

const (
	// DrivePath is the same-origin relay the uploader posts documents to.
	DrivePath = "/relay/google-drive"

	msgUploadNoLink = "Link do Google Drive não recebido ou falha no script."
	maxErrorBody    = 2048
)

type UploadResult struct {
	Status string `json:"status"`
	URL    string `json:"url"`
}

// Uploader stores a rendered document and returns its public link.
type Uploader interface {
	Upload(ctx context.Context, doc []byte, fileName, folderName string) (UploadResult, error)
}

// RelayUploader sends the document through the relay endpoint to the
// storage script.
type RelayUploader struct {
	BaseURL   string
	Client    *http.Client
	RequestID string
}

func (u RelayUploader) client() *http.Client {
	if u.Client != nil {
		return u.Client
	}
	return http.DefaultClient
}

func (u RelayUploader) Upload(ctx context.Context, doc []byte, fileName, folderName string) (UploadResult, error) {
	payload, err := json.Marshal(domain.UploadRequest{
		PDFBase64:  base64.StdEncoding.EncodeToString(doc),
		FileName:   fileName,
		FolderName: folderName,
	})
	if err != nil {
		return UploadResult{}, domain.UploadError{Msg: "falha ao montar o envio do PDF", Err: err}
	}

	endpoint := strings.TrimRight(u.BaseURL, "/") + DrivePath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return UploadResult{}, domain.UploadError{Msg: "falha ao montar o envio do PDF", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	if u.RequestID != "" {
		req.Header.Set("X-Request-ID", u.RequestID)
	}

	utils.LogEvent(u.RequestID, "upload", "relay_post", "sending document",
		zap.String("file_name", fileName), zap.String("folder", folderName), zap.Int("bytes", len(doc)))

	resp, err := u.client().Do(req)
	if err != nil {
		return UploadResult{}, domain.UploadError{
			Msg:     fmt.Sprintf("Falha de rede ao enviar o PDF: %v", err),
			Network: true,
			Err:     err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return UploadResult{}, domain.UploadError{
			Msg: fmt.Sprintf("Falha ao enviar para o Google Drive: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	var out domain.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return UploadResult{}, domain.UploadError{Msg: "Resposta inválida do serviço de upload.", Err: err}
	}
	if strings.TrimSpace(out.URL) == "" || out.Status != "success" {
		msg := strings.TrimSpace(out.Message)
		if msg == "" {
			msg = msgUploadNoLink
		}
		return UploadResult{}, domain.UploadError{Msg: msg}
	}
	return UploadResult{Status: out.Status, URL: out.URL}, nil
}

// S3PutAPI is the subset of *s3.Client the uploader uses.
type S3PutAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3PresignAPI is the subset of *s3.PresignClient the uploader uses.
type S3PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Uploader writes the document straight to a bucket and shares a
// presigned download link.
type S3Uploader struct {
	Bucket    string
	Client    S3PutAPI
	Presigner S3PresignAPI
	LinkTTL   time.Duration
	RequestID string
}

// NewS3Uploader loads the default AWS configuration. When S3_LOCAL_ENDPOINT
// is set it targets that endpoint (e.g. LocalStack) with static test keys.
func NewS3Uploader(ctx context.Context, bucket string) (*S3Uploader, error) {
	var (
		cfg  aws.Config
		err  error
		opts []func(*s3.Options)
	)
	if endpoint := strings.TrimSpace(os.Getenv("S3_LOCAL_ENDPOINT")); endpoint != "" {
		cfg, err = config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
		opts = append(opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	} else {
		cfg, err = config.LoadDefaultConfig(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS SDK config: %w", err)
	}

	client := s3.NewFromConfig(cfg, opts...)
	return &S3Uploader{
		Bucket:    bucket,
		Client:    client,
		Presigner: s3.NewPresignClient(client),
		LinkTTL:   7 * 24 * time.Hour,
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, doc []byte, fileName, folderName string) (UploadResult, error) {
	key := objectKey(folderName, fileName)
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(doc),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return UploadResult{}, domain.UploadError{Msg: fmt.Sprintf("Falha ao enviar para o S3: %v", err), Err: err}
	}

	ttl := u.LinkTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	signed, err := u.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(u.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return UploadResult{}, domain.UploadError{Msg: "Falha ao gerar o link do arquivo.", Err: err}
	}
	if signed == nil || signed.URL == "" {
		return UploadResult{}, domain.UploadError{Msg: msgUploadNoLink}
	}

	utils.LogEvent(u.RequestID, "upload", "s3_put", "document stored",
		zap.String("bucket", u.Bucket), zap.String("key", key), zap.Int("bytes", len(doc)))
	return UploadResult{Status: "success", URL: signed.URL}, nil
}

func objectKey(folder, file string) string {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	file = utils.SafeFilenamePart(path.Base(file))
	if folder == "" {
		return file
	}
	return folder + "/" + file
}
