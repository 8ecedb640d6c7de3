package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	"image/png"
	"math"
	"strings"
	"sync/atomic"

	"tripform/internal/domain"
	"tripform/internal/utils"

	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

const (
	pageWidthMM    = 210.0
	pageHeightMM   = 297.0
	pageMargin     = 7.0
	lineHeight     = 6.0
	sectionGap     = 5.0
	signatureWidth = 48.0
	footerGap      = 42.0
)

// DocsService renders a trip record into the PDF sent to the driver's
// manager.
type DocsService struct {
	RequestID string
	// PageHeight in mm; zero means A4.
	PageHeight float64
	// FooterLines are centered under the signature block.
	FooterLines []string
	// Uncompressed disables stream compression so the output is greppable.
	Uncompressed bool
}

// activeSurfaces counts render surfaces not yet released.
var activeSurfaces atomic.Int64

type renderSurface struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (s DocsService) acquireSurface(pageH float64) *renderSurface {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: pageWidthMM, Ht: pageH},
	})
	pdf.SetCompression(!s.Uncompressed)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	activeSurfaces.Add(1)
	return &renderSurface{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}
}

func (r *renderSurface) release() {
	if r.pdf == nil {
		return
	}
	r.pdf = nil
	r.tr = nil
	activeSurfaces.Add(-1)
}

// Render draws the record on one continuous canvas and cuts it into as many
// pages as its height needs. Every page carries a vertical slice of the same
// canvas; fields are never re-flowed across pages.
func (s DocsService) Render(ctx context.Context, r domain.TripRecord, serial int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.RenderError{Msg: "cancelled", Err: err}
	}
	pageH := s.PageHeight
	if pageH <= 0 {
		pageH = pageHeightMM
	}

	surface := s.acquireSurface(pageH)
	defer surface.release()
	pdf := surface.pdf

	pdf.SetTitle(surface.tr("Formulário de Transporte"), false)
	pdf.SetCreator("tripform", false)

	sig, err := registerSignature(pdf, r.SignatureImage)
	if err != nil {
		return nil, err
	}

	layout := buildTripLayout(r, serial, sig, s.FooterLines)
	pages := int(math.Ceil(layout.height / pageH))
	if pages < 1 {
		pages = 1
	}
	for k := 0; k < pages; k++ {
		pdf.AddPage()
		dy := -float64(k) * pageH
		for _, op := range layout.ops {
			op(pdf, surface.tr, dy)
		}
	}

	if err := pdf.Error(); err != nil {
		return nil, domain.RenderError{Msg: "layout", Err: err}
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, domain.RenderError{Msg: "output", Err: err}
	}

	utils.LogEvent(s.RequestID, "docs", "render", "document rendered",
		zap.Int64("serial", serial), zap.Int("pages", pages), zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

type signatureImage struct {
	name string
	w, h float64
}

// registerSignature normalizes the signature to an 8-bit PNG and registers it
// with the surface.
func registerSignature(pdf *gofpdf.Fpdf, dataURL string) (*signatureImage, error) {
	raw, _, err := decodeDataURL(dataURL)
	if err != nil {
		return nil, domain.RenderError{Msg: "signature encoding", Err: err}
	}
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, domain.RenderError{Msg: "signature image", Err: err}
	}
	b := src.Bounds()
	if b.Empty() {
		return nil, domain.RenderError{Msg: "signature image is empty"}
	}
	rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), src, b.Min, draw.Src)

	var normalized bytes.Buffer
	if err := png.Encode(&normalized, rgba); err != nil {
		return nil, domain.RenderError{Msg: "signature image", Err: err}
	}

	const name = "signature"
	info := pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: "PNG"}, &normalized)
	if err := pdf.Error(); err != nil || info == nil {
		return nil, domain.RenderError{Msg: "signature image", Err: err}
	}
	w := signatureWidth
	h := w * float64(b.Dy()) / float64(b.Dx())
	return &signatureImage{name: name, w: w, h: h}, nil
}

// decodeDataURL accepts "data:<mime>;base64,<payload>" or bare base64.
func decodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	mime := ""
	if strings.HasPrefix(s, "data:") {
		comma := strings.IndexByte(s, ',')
		if comma < 0 {
			return nil, "", fmt.Errorf("malformed data url")
		}
		meta := s[len("data:"):comma]
		s = s[comma+1:]
		if !strings.HasSuffix(meta, ";base64") {
			return nil, "", fmt.Errorf("data url is not base64")
		}
		mime = strings.TrimSuffix(meta, ";base64")
	}
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, "", err
	}
	return raw, mime, nil
}

type drawOp func(pdf *gofpdf.Fpdf, tr func(string) string, dy float64)

type tripLayout struct {
	ops    []drawOp
	height float64
}

func (l *tripLayout) add(op drawOp) { l.ops = append(l.ops, op) }

func (l *tripLayout) text(x, y float64, style string, size float64, gray int, s string) {
	l.add(func(pdf *gofpdf.Fpdf, tr func(string) string, dy float64) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetTextColor(gray, gray, gray)
		pdf.Text(x, y+dy, tr(s))
	})
}

func (l *tripLayout) centered(y float64, style string, size float64, s string) {
	l.add(func(pdf *gofpdf.Fpdf, tr func(string) string, dy float64) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetTextColor(51, 51, 51)
		t := tr(s)
		pdf.Text((pageWidthMM-pdf.GetStringWidth(t))/2, y+dy, t)
	})
}

func (l *tripLayout) labelValue(x, y float64, label, value string) {
	l.add(func(pdf *gofpdf.Fpdf, tr func(string) string, dy float64) {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 9)
		lbl := tr(label + ": ")
		pdf.Text(x, y+dy, lbl)
		w := pdf.GetStringWidth(lbl)
		pdf.SetFont("Helvetica", "", 9)
		pdf.Text(x+w, y+dy, tr(value))
	})
}

func (l *tripLayout) box(y, h float64) {
	l.add(func(pdf *gofpdf.Fpdf, _ func(string) string, dy float64) {
		pdf.SetDrawColor(238, 238, 238)
		pdf.SetFillColor(249, 249, 249)
		pdf.Rect(pageMargin, y+dy, pageWidthMM-2*pageMargin, h, "FD")
	})
}

func (l *tripLayout) sectionTitle(y float64, title string) {
	l.text(pageMargin+3, y, "B", 12, 85, title)
	l.add(func(pdf *gofpdf.Fpdf, _ func(string) string, dy float64) {
		pdf.SetDrawColor(221, 221, 221)
		pdf.Line(pageMargin+3, y+2+dy, pageWidthMM-pageMargin-3, y+2+dy)
	})
}

// section lays out a boxed block and returns the y below it.
func (l *tripLayout) section(top float64, title string, rows [][2]string, extraH float64, extra func(y float64)) float64 {
	h := 4 + 7 + 2 + float64(len(rows))*lineHeight + extraH + 3
	l.box(top, h)
	y := top + 4 + 5
	l.sectionTitle(y, title)
	y += 4
	for _, row := range rows {
		y += lineHeight
		l.labelValue(pageMargin+3, y, row[0], row[1])
	}
	if extra != nil {
		extra(y)
	}
	return top + h
}

func buildTripLayout(r domain.TripRecord, serial int64, sig *signatureImage, footer []string) tripLayout {
	var l tripLayout

	l.text(pageMargin, 10, "", 10, 136, fmt.Sprintf("N*%d", serial))
	l.centered(20, "B", 15, "Formulário de Transporte")

	y := 26.0
	y = l.section(y, "Dados Gerais", [][2]string{
		{"Empresa", r.Company},
		{"Nome do Motorista", r.DriverName},
		{"Trajeto", r.Route},
		{"Saída", r.DepartureTime},
		{"Chegada", r.ArrivalTime},
	}, 0, nil)

	y += sectionGap
	y = l.section(y, "Custos (R$)", [][2]string{
		{"KM", utils.FormatDecimalBR(r.DistanceKm)},
		{"Hora Parada", utils.FormatDecimalBR(r.StoppedHours)},
		{"Ped R$", utils.FormatDecimalBR(r.TollCost)},
		{"Est R$", utils.FormatDecimalBR(r.ParkingCost)},
	}, 0, nil)

	y += sectionGap
	sigH := 2 + lineHeight
	if sig != nil {
		sigH += sig.h
	}
	y = l.section(y, "Assinatura e Data", [][2]string{
		{"Data", utils.FormatDateBR(r.SignatureDate)},
	}, sigH, func(rowY float64) {
		labelY := rowY + 2 + lineHeight
		l.text(pageMargin+3, labelY, "B", 9, 0, "Assinatura:")
		if sig == nil {
			l.text(pageMargin+25, labelY, "", 9, 0, "Não fornecida")
			return
		}
		imgY := labelY + 2
		l.add(func(pdf *gofpdf.Fpdf, _ func(string) string, dy float64) {
			pdf.SetDrawColor(204, 204, 204)
			pdf.SetFillColor(255, 255, 255)
			pdf.Rect(pageMargin+3, imgY+dy, sig.w, sig.h, "FD")
			pdf.ImageOptions(sig.name, pageMargin+3, imgY+dy, sig.w, sig.h, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
		})
	})

	if len(footer) > 0 {
		y += footerGap
		for _, line := range footer {
			y += lineHeight
			l.centered(y, "B", 10, line)
		}
	}

	l.height = y + pageMargin
	return l
}
