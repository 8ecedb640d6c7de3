package services

import (
	"bytes"
	"errors"
	"image/png"
	"reflect"
	"strings"
	"sync"
	"time"

	"tripform/internal/domain"
	"tripform/internal/utils"

	"github.com/go-playground/validator/v10"
)

// Field messages shown next to each input.
var fieldMessages = map[string]string{
	"company":       "Empresa é obrigatória.",
	"driverName":    "Nome do Motorista é obrigatório.",
	"route":         "Trajeto é obrigatório.",
	"departureTime": "Horário de saída é obrigatório.",
	"arrivalTime":   "Horário de chegada é obrigatório.",
	"distanceKm":    "KM deve ser um número.",
	"stoppedHours":  "Hora Parada deve ser um número.",
	"tollCost":      "Ped R$ deve ser um número.",
	"parkingCost":   "Est R$ deve ser um número.",
	"signatureDate": "Data da assinatura é obrigatória.",
}

const (
	msgDriverTooLong    = "Nome do Motorista não pode exceder 50 caracteres."
	msgSignatureMissing = "Assinatura é obrigatória."
	msgDateInFuture     = "Data da assinatura não pode ser futura."
	msgDateTooOld       = "Data da assinatura não pode ser anterior a 01/01/1900."
	msgDateInvalid      = "Data da assinatura inválida."
	msgClockInvalid     = "Horário inválido (use HH:MM)."
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func tripValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		_ = v.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			return utils.IsClock(fl.Field().String())
		})
		// accepts "12.5" and "12,5"
		_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
			return utils.IsDecimal(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// ValidateSignature is the first check of every submission: the pad must
// hold a drawn image, not an empty canvas.
func ValidateSignature(sig string) error {
	if signatureIsEmpty(sig) {
		return domain.ValidationError{Field: "signatureImage", Msg: msgSignatureMissing}
	}
	return nil
}

func signatureIsEmpty(sig string) bool {
	sig = strings.TrimSpace(sig)
	if sig == "" || sig == domain.EmptyCanvas {
		return true
	}
	raw, _, err := decodeDataURL(sig)
	if err != nil || len(raw) == 0 {
		return true
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		// non-PNG payloads are checked by the renderer
		return false
	}
	b := img.Bounds()
	if b.Empty() {
		return true
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0 {
				return false
			}
		}
	}
	return true
}

// ValidateTripRecord checks every field and returns all failures at once as
// domain.ValidationErrors. now bounds the signature date.
func ValidateTripRecord(r domain.TripRecord, now time.Time) error {
	var out domain.ValidationErrors

	if err := tripValidator().Struct(r); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.ValidationError{Msg: "dados inválidos", Err: err}
		}
		for _, fe := range verrs {
			msg := messageFor(fe)
			if fe.Field() == "signatureDate" && r.SignatureDateInput != "" {
				msg = msgDateInvalid
			}
			out = append(out, domain.ValidationError{Field: fe.Field(), Msg: msg})
		}
	}

	if !r.SignatureDate.IsZero() {
		switch {
		case !utils.SameOrBeforeDay(r.SignatureDate, now):
			out = append(out, domain.ValidationError{Field: "signatureDate", Msg: msgDateInFuture})
		case r.SignatureDate.Before(utils.MinSignatureDate):
			out = append(out, domain.ValidationError{Field: "signatureDate", Msg: msgDateTooOld})
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch {
	case fe.Tag() == "max" && fe.Field() == "driverName":
		return msgDriverTooLong
	case fe.Tag() == "clock":
		return msgClockInvalid
	}
	if msg, ok := fieldMessages[fe.Field()]; ok {
		return msg
	}
	return "valor inválido"
}
