package services

import (
	"errors"
	"strings"
	"testing"
	"time"

	"tripform/internal/domain"
)

var validationNow = time.Date(2024, 5, 10, 15, 0, 0, 0, time.Local)

func TestValidateSignature_EmptyCanvasRejected(t *testing.T) {
	for _, sig := range []string{"", "   ", domain.EmptyCanvas, "data:image/png;base64,%%%"} {
		err := ValidateSignature(sig)
		if err == nil {
			t.Fatalf("expected error for %q", sig)
		}
		var ve domain.ValidationError
		if !errors.As(err, &ve) || ve.Field != "signatureImage" {
			t.Fatalf("expected signatureImage validation error, got %v", err)
		}
	}
}

func TestValidateSignature_TransparentPadRejected(t *testing.T) {
	if err := ValidateSignature(blankPNG(t)); err == nil {
		t.Fatalf("blank pad should be rejected")
	}
}

func TestValidateSignature_DrawnPadAccepted(t *testing.T) {
	if err := ValidateSignature(signaturePNG(t, 60, 20)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateTripRecord_Valid(t *testing.T) {
	if err := ValidateTripRecord(sampleRecord(t), validationNow); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateTripRecord_CommaDecimalsAccepted(t *testing.T) {
	rec := sampleRecord(t)
	rec.TollCost = "12,5"
	rec.StoppedHours = "0,25"
	if err := ValidateTripRecord(rec, validationNow); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestValidateTripRecord_CollectsEveryField(t *testing.T) {
	rec := domain.TripRecord{}
	err := ValidateTripRecord(rec, validationNow)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	var many domain.ValidationErrors
	if !errors.As(err, &many) {
		t.Fatalf("expected ValidationErrors, got %T", err)
	}
	fields := many.Fields()
	for _, f := range []string{"company", "driverName", "route", "departureTime", "arrivalTime",
		"distanceKm", "stoppedHours", "tollCost", "parkingCost", "signatureDate"} {
		if _, ok := fields[f]; !ok {
			t.Fatalf("missing error for %s in %v", f, fields)
		}
	}
	if fields["company"] != "Empresa é obrigatória." {
		t.Fatalf("unexpected company message %q", fields["company"])
	}
}

func TestValidateTripRecord_DriverNameTooLong(t *testing.T) {
	rec := sampleRecord(t)
	rec.DriverName = strings.Repeat("a", 51)
	err := ValidateTripRecord(rec, validationNow)
	var many domain.ValidationErrors
	if !errors.As(err, &many) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if got := many.Fields()["driverName"]; got != msgDriverTooLong {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestValidateTripRecord_BadClockAndNumber(t *testing.T) {
	rec := sampleRecord(t)
	rec.DepartureTime = "25:00"
	rec.DistanceKm = "muito"
	err := ValidateTripRecord(rec, validationNow)
	var many domain.ValidationErrors
	if !errors.As(err, &many) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	fields := many.Fields()
	if fields["departureTime"] != msgClockInvalid {
		t.Fatalf("unexpected departure message %q", fields["departureTime"])
	}
	if fields["distanceKm"] != "KM deve ser um número." {
		t.Fatalf("unexpected distance message %q", fields["distanceKm"])
	}
}

func TestValidateTripRecord_SignatureDateBounds(t *testing.T) {
	rec := sampleRecord(t)

	rec.SignatureDate = validationNow.AddDate(0, 0, 1)
	err := ValidateTripRecord(rec, validationNow)
	var many domain.ValidationErrors
	if !errors.As(err, &many) || many.Fields()["signatureDate"] != msgDateInFuture {
		t.Fatalf("expected future date error, got %v", err)
	}

	rec.SignatureDate = time.Date(1899, 12, 31, 0, 0, 0, 0, time.Local)
	err = ValidateTripRecord(rec, validationNow)
	many = nil
	if !errors.As(err, &many) || many.Fields()["signatureDate"] != msgDateTooOld {
		t.Fatalf("expected old date error, got %v", err)
	}

	// later today is still today
	rec.SignatureDate = time.Date(2024, 5, 10, 23, 0, 0, 0, time.Local)
	if err := ValidateTripRecord(rec, validationNow); err != nil {
		t.Fatalf("same day should pass, got %v", err)
	}
}

func TestValidateTripRecord_UnparsableDate(t *testing.T) {
	rec := sampleRecord(t)
	rec.SignatureDate = time.Time{}
	rec.SignatureDateInput = "17/10/2026"

	err := ValidateTripRecord(rec, validationNow)
	var many domain.ValidationErrors
	if !errors.As(err, &many) {
		t.Fatalf("expected ValidationErrors, got %v", err)
	}
	if got := many.Fields()["signatureDate"]; got != msgDateInvalid {
		t.Fatalf("unexpected message %q", got)
	}
}
