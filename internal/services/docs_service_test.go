package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"tripform/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// signaturePNG returns a data URL with a w x h image holding one dark stroke.
func signaturePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.NRGBA{A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func blankPNG(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 20, 10))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func sampleRecord(t *testing.T) domain.TripRecord {
	t.Helper()
	return domain.TripRecord{
		Company:        "RS Transporte",
		DriverName:     "João da Silva",
		Route:          "São Paulo - Campinas",
		DepartureTime:  "08:00",
		ArrivalTime:    "10:30",
		DistanceKm:     "98",
		StoppedHours:   "1.5",
		TollCost:       "12.5",
		ParkingCost:    "0",
		SignatureImage: signaturePNG(t, 120, 40),
		SignatureDate:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local),
	}
}

func pageCount(pdf []byte) int {
	s := string(pdf)
	return strings.Count(s, "/Type /Page") - strings.Count(s, "/Type /Pages")
}

func TestDocsServiceRenderSinglePage(t *testing.T) {
	svc := DocsService{Uncompressed: true, FooterLines: []string{"Cnpj: 30.735.162/0001-39"}}

	out, err := svc.Render(context.Background(), sampleRecord(t), 42)
	require.NoError(t, err)
	require.NotEmpty(t, out)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "%PDF-"))
	assert.Contains(t, s, "(N*42)")
	assert.Contains(t, s, "(12,50)")
	assert.Contains(t, s, "(1,50)")
	assert.Contains(t, s, "(0,00)")
	assert.Contains(t, s, "(01/05/2024)")
	assert.Equal(t, 1, pageCount(out))
	assert.Equal(t, int64(0), activeSurfaces.Load())
}

func TestDocsServiceRenderOverflowSlicesPages(t *testing.T) {
	svc := DocsService{Uncompressed: true, PageHeight: 80}

	out, err := svc.Render(context.Background(), sampleRecord(t), 7)
	require.NoError(t, err)

	pages := pageCount(out)
	assert.Greater(t, pages, 1)
	// every page repeats the whole canvas shifted up, so the stamp is drawn once per page
	assert.Equal(t, pages, strings.Count(string(out), "(N*7)"))
	assert.Equal(t, int64(0), activeSurfaces.Load())
}

func TestDocsServiceRenderTallSignatureAddsPages(t *testing.T) {
	rec := sampleRecord(t)
	rec.SignatureImage = signaturePNG(t, 20, 400)

	out, err := DocsService{}.Render(context.Background(), rec, 1)
	require.NoError(t, err)
	assert.Greater(t, pageCount(out), 1)
}

func TestDocsServiceRenderBadSignatureReleasesSurface(t *testing.T) {
	rec := sampleRecord(t)
	rec.SignatureImage = "data:image/png;base64,bm90IGFuIGltYWdl"

	_, err := DocsService{}.Render(context.Background(), rec, 3)
	require.Error(t, err)
	assert.True(t, domain.IsRender(err))
	assert.Equal(t, domain.KindRender, domain.Kind(err))
	assert.Equal(t, int64(0), activeSurfaces.Load())
}

func TestDecodeDataURL(t *testing.T) {
	raw, mime, err := decodeDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", mime)
	assert.Equal(t, "hello", string(raw))

	raw, _, err = decodeDataURL("aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(raw))

	_, _, err = decodeDataURL("data:text/plain,hello")
	assert.Error(t, err)
}
