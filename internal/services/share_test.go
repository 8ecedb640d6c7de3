package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMobileUserAgent(t *testing.T) {
	mobile := []string{
		"Mozilla/5.0 (Linux; Android 13; SM-A135M) AppleWebKit/537.36",
		"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)",
		"Opera/9.80 (J2ME/MIDP; Opera Mini/9.80)",
	}
	for _, ua := range mobile {
		assert.True(t, IsMobileUserAgent(ua), ua)
	}
	assert.False(t, IsMobileUserAgent("Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/120.0"))
	assert.False(t, IsMobileUserAgent(""))
}

func TestShareURL(t *testing.T) {
	msg := ShareMessage("Ana Souza", "https://drive.example/f?id=1&x=2")
	assert.Equal(t, "Olá, segue o formulário do Motorista Ana Souza. Link para o PDF: https://drive.example/f?id=1&x=2", msg)

	mobile := ShareURL("5511999990000", msg, true)
	desktop := ShareURL("5511999990000", msg, false)

	assert.Equal(t, "https://wa.me/5511999990000?text=Ol%C3%A1%2C%20segue%20o%20formul%C3%A1rio%20do%20Motorista%20Ana%20Souza.%20Link%20para%20o%20PDF%3A%20https%3A%2F%2Fdrive.example%2Ff%3Fid%3D1%26x%3D2", mobile)
	assert.Equal(t, "https://web.whatsapp.com/send?phone=5511999990000&text=Ol%C3%A1%2C%20segue%20o%20formul%C3%A1rio%20do%20Motorista%20Ana%20Souza.%20Link%20para%20o%20PDF%3A%20https%3A%2F%2Fdrive.example%2Ff%3Fid%3D1%26x%3D2", desktop)
}

func TestEncodeURIComponent(t *testing.T) {
	cases := map[string]string{
		"D'Ávila (SP)!":     "D'%C3%81vila%20(SP)!",
		"a-b_c.d~e*f":       "a-b_c.d~e*f",
		"50% + 10/2 = ?":    "50%25%20%2B%2010%2F2%20%3D%20%3F",
		"#tag@host;x,y$[z]": "%23tag%40host%3Bx%2Cy%24%5Bz%5D",
		"":                  "",
	}
	for in, want := range cases {
		assert.Equal(t, want, encodeURIComponent(in), in)
	}
}
