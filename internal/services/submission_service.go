package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tripform/internal/domain"
	"tripform/internal/utils"

	"go.uber.org/zap"
)

// State is a step of the submission workflow.
type State string

const (
	StateIdle           State = "idle"
	StateValidating     State = "validating"
	StateAwaitingSerial State = "awaiting_serial"
	StateRendering      State = "rendering"
	StateUploading      State = "uploading"
	StateComposingLink  State = "composing_link"
	StateSucceeded      State = "succeeded"
	StateFailed         State = "failed"
)

const DefaultFolderName = "Travel Information"

type SerialIssuer interface {
	Increment(ctx context.Context) (int64, error)
}

type DocumentRenderer interface {
	Render(ctx context.Context, r domain.TripRecord, serial int64) ([]byte, error)
}

// LinkOpener hands the share link to whoever can open it (the browser, a
// terminal, a test).
type LinkOpener interface {
	Open(ctx context.Context, url string) error
}

type LinkOpenerFunc func(ctx context.Context, url string) error

func (f LinkOpenerFunc) Open(ctx context.Context, url string) error { return f(ctx, url) }

// Outcome is everything the form needs after one submit.
type Outcome struct {
	State        State             `json:"state"`
	Trail        []State           `json:"trail"`
	Serial       int64             `json:"serial,omitempty"`
	FileName     string            `json:"fileName,omitempty"`
	Link         string            `json:"link,omitempty"`
	ShareURL     string            `json:"shareUrl,omitempty"`
	Notification Notification      `json:"notification"`
	ErrorKind    domain.ErrorKind  `json:"errorKind,omitempty"`
	FieldErrors  map[string]string `json:"fieldErrors,omitempty"`
	Form         domain.TripRecord `json:"form"`
	Err          error             `json:"-"`
}

// SubmissionService runs validate -> serial -> render -> upload -> share.
// Each step completes before the next starts; any failure ends the attempt.
type SubmissionService struct {
	Serials        SerialIssuer
	Renderer       DocumentRenderer
	Uploader       Uploader
	Opener         LinkOpener
	FolderName     string
	WhatsAppNumber string
	Now            func() time.Time
	RequestID      string
}

func (s SubmissionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s SubmissionService) folder() string {
	if s.FolderName != "" {
		return s.FolderName
	}
	return DefaultFolderName
}

type submissionRun struct {
	out *Outcome
	log *zap.Logger
}

func (r submissionRun) to(st State) {
	r.out.State = st
	r.out.Trail = append(r.out.Trail, st)
	r.log.Debug("submission state", zap.String("state", string(st)))
}

// Submit never returns an error: failures are reported in the Outcome, with
// the form left as submitted.
func (s SubmissionService) Submit(ctx context.Context, rec domain.TripRecord, userAgent string) Outcome {
	out := Outcome{State: StateIdle, Trail: []State{StateIdle}, Form: rec}
	run := submissionRun{out: &out, log: utils.Logger().With(zap.String("request_id", s.RequestID))}

	fail := func(err error) Outcome {
		run.to(StateFailed)
		out.Err = err
		out.ErrorKind = domain.Kind(err)
		out.Notification = FailureNotification(err)
		out.FieldErrors = fieldErrors(err)
		out.Form = rec
		utils.LogFailure(s.RequestID, "submission", string(out.Trail[len(out.Trail)-2]), err,
			zap.String("kind", string(out.ErrorKind)))
		return out
	}

	run.to(StateValidating)
	if err := ValidateSignature(rec.SignatureImage); err != nil {
		return fail(err)
	}
	if err := ValidateTripRecord(rec, s.now()); err != nil {
		return fail(err)
	}

	run.to(StateAwaitingSerial)
	if s.Serials == nil {
		return fail(domain.StorageError{Op: "increment", Err: errors.New("serial issuer not configured")})
	}
	// Checked before the increment so a misconfigured service burns no serial.
	if s.Renderer == nil {
		return fail(domain.InternalError{Msg: "document renderer not configured"})
	}
	if s.Uploader == nil {
		return fail(domain.InternalError{Msg: "uploader not configured"})
	}
	serial, err := s.Serials.Increment(ctx)
	if err != nil {
		return fail(asStorage(err))
	}
	out.Serial = serial

	run.to(StateRendering)
	doc, err := s.Renderer.Render(ctx, rec, serial)
	if err != nil {
		return fail(asRender(err))
	}

	run.to(StateUploading)
	out.FileName = DocumentFileName(rec.DriverName, s.now())
	res, err := s.Uploader.Upload(ctx, doc, out.FileName, s.folder())
	if err != nil {
		return fail(asUpload(err))
	}
	out.Link = res.URL

	run.to(StateComposingLink)
	out.ShareURL = ShareURL(s.WhatsAppNumber, ShareMessage(rec.DriverName, res.URL), IsMobileUserAgent(userAgent))
	if s.Opener != nil {
		if err := s.Opener.Open(ctx, out.ShareURL); err != nil {
			return fail(fmt.Errorf("open share link: %w", err))
		}
	}

	run.to(StateSucceeded)
	out.Notification = SuccessNotification(res.URL)
	out.Form = domain.NewTripRecord(s.now())
	utils.LogEvent(s.RequestID, "submission", "submit", "submission completed",
		zap.Int64("serial", serial), zap.String("file_name", out.FileName))
	return out
}

// DocumentFileName is viagem_<driver slug>_<timestamp>.pdf.
func DocumentFileName(driverName string, at time.Time) string {
	slug := utils.FileSlug(driverName)
	if slug == "" {
		slug = "usuario"
	}
	return fmt.Sprintf("viagem_%s_%s.pdf", slug, utils.FileTimestamp(at))
}

func fieldErrors(err error) map[string]string {
	var many domain.ValidationErrors
	if errors.As(err, &many) {
		return many.Fields()
	}
	var one domain.ValidationError
	if errors.As(err, &one) && one.Field != "" {
		return map[string]string{one.Field: one.Msg}
	}
	return nil
}

// Collaborators may return plain errors; the step they failed in decides the kind.
func asStorage(err error) error {
	if domain.Kind(err) != domain.KindUnknown {
		return err
	}
	return domain.StorageError{Op: "increment", Err: err}
}

func asRender(err error) error {
	if domain.Kind(err) != domain.KindUnknown {
		return err
	}
	return domain.RenderError{Err: err}
}

func asUpload(err error) error {
	if domain.Kind(err) != domain.KindUnknown {
		return err
	}
	return domain.UploadError{Msg: err.Error(), Err: err}
}
