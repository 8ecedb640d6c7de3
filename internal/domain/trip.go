package domain

import (
	"encoding/json"
	"strings"
	"time"

	"tripform/internal/utils"
)

// EmptyCanvas is what a blank signature pad exports.
const EmptyCanvas = "data:,"

// TripRecord is one trip report as filled in by the driver.
type TripRecord struct {
	Company        string    `json:"company" validate:"required"`
	DriverName     string    `json:"driverName" validate:"required,max=50"`
	Route          string    `json:"route" validate:"required"`
	DepartureTime  string    `json:"departureTime" validate:"required,clock"`
	ArrivalTime    string    `json:"arrivalTime" validate:"required,clock"`
	DistanceKm     string    `json:"distanceKm" validate:"required,decimal"`
	StoppedHours   string    `json:"stoppedHours" validate:"required,decimal"`
	TollCost       string    `json:"tollCost" validate:"required,decimal"`
	ParkingCost    string    `json:"parkingCost" validate:"required,decimal"`
	SignatureImage string    `json:"signatureImage"`
	SignatureDate  time.Time `json:"signatureDate" validate:"required"`

	// SignatureDateInput holds the submitted date text when it could not be
	// parsed; SignatureDate is zero then.
	SignatureDateInput string `json:"-"`
}

// NewTripRecord returns the form defaults: every field empty and the
// signature dated today.
func NewTripRecord(now time.Time) TripRecord {
	y, m, d := now.Date()
	return TripRecord{SignatureDate: time.Date(y, m, d, 0, 0, 0, 0, now.Location())}
}

// UploadRequest is the relay payload for one generated document.
type UploadRequest struct {
	PDFBase64  string `json:"pdfBase64"`
	FileName   string `json:"fileName"`
	FolderName string `json:"folderName"`
}

// UploadResponse is what the storage script answers.
type UploadResponse struct {
	Status  string `json:"status"`
	URL     string `json:"url,omitempty"`
	Message string `json:"message,omitempty"`
}

const dateLayout = "2006-01-02"

type tripRecordJSON struct {
	Company        string `json:"company"`
	DriverName     string `json:"driverName"`
	Route          string `json:"route"`
	DepartureTime  string `json:"departureTime"`
	ArrivalTime    string `json:"arrivalTime"`
	DistanceKm     string `json:"distanceKm"`
	StoppedHours   string `json:"stoppedHours"`
	TollCost       string `json:"tollCost"`
	ParkingCost    string `json:"parkingCost"`
	SignatureImage string `json:"signatureImage"`
	SignatureDate  string `json:"signatureDate"`
}

// MarshalJSON writes the signature date as YYYY-MM-DD, the way the date picker sends it.
func (r TripRecord) MarshalJSON() ([]byte, error) {
	out := tripRecordJSON{
		Company:        r.Company,
		DriverName:     r.DriverName,
		Route:          r.Route,
		DepartureTime:  r.DepartureTime,
		ArrivalTime:    r.ArrivalTime,
		DistanceKm:     r.DistanceKm,
		StoppedHours:   r.StoppedHours,
		TollCost:       r.TollCost,
		ParkingCost:    r.ParkingCost,
		SignatureImage: r.SignatureImage,
	}
	switch {
	case !r.SignatureDate.IsZero():
		out.SignatureDate = r.SignatureDate.Format(dateLayout)
	case r.SignatureDateInput != "":
		out.SignatureDate = r.SignatureDateInput
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts the signature date as YYYY-MM-DD or RFC 3339. Any
// other text is kept in SignatureDateInput for validation to report.
func (r *TripRecord) UnmarshalJSON(b []byte) error {
	var in tripRecordJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	var (
		date time.Time
		raw  string
	)
	if s := strings.TrimSpace(in.SignatureDate); s != "" {
		var err error
		date, err = utils.ParseDate(s)
		if err != nil {
			date, err = time.Parse(time.RFC3339, s)
		}
		if err != nil {
			date, raw = time.Time{}, s
		}
	}
	*r = TripRecord{
		Company:        in.Company,
		DriverName:     in.DriverName,
		Route:          in.Route,
		DepartureTime:  in.DepartureTime,
		ArrivalTime:    in.ArrivalTime,
		DistanceKm:     in.DistanceKm,
		StoppedHours:   in.StoppedHours,
		TollCost:       in.TollCost,
		ParkingCost:    in.ParkingCost,
		SignatureImage: in.SignatureImage,
		SignatureDate:  date,

		SignatureDateInput: raw,
	}
	return nil
}
