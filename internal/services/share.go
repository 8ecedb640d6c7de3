package services

import (
	"fmt"
	"regexp"
	"strings"
)

var mobileAgent = regexp.MustCompile(`(?i)Android|iPhone|iPad|iPod|Opera Mini|IEMobile|WPDesktop`)

// IsMobileUserAgent reports whether the browser should get the app deep link.
func IsMobileUserAgent(ua string) bool {
	return mobileAgent.MatchString(ua)
}

// ShareMessage is the text pre-filled in the chat.
func ShareMessage(driverName, link string) string {
	return fmt.Sprintf("Olá, segue o formulário do Motorista %s. Link para o PDF: %s", driverName, link)
}

// ShareURL builds the WhatsApp link: wa.me on mobile, WhatsApp Web otherwise.
func ShareURL(number, message string, mobile bool) string {
	text := encodeURIComponent(message)
	if mobile {
		return fmt.Sprintf("https://wa.me/%s?text=%s", number, text)
	}
	return fmt.Sprintf("https://web.whatsapp.com/send?phone=%s&text=%s", number, text)
}

// encodeURIComponent percent-encodes every byte except A-Z a-z 0-9 and -_.!~*'().
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if uriUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0F])
	}
	return b.String()
}

func uriUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
