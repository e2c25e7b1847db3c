package email

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAmount(t *testing.T) {
	tests := map[int]string{
		500:     "$500",
		1500:    "$1,500",
		1250000: "$1,250,000",
	}
	for in, want := range tests {
		assert.Equal(t, want, FormatAmount(in))
	}
}

func TestRenderOwnerNotification(t *testing.T) {
	html, err := RenderOwnerNotification(OfferEmailProps{
		DomainName:  "Example.com",
		FullName:    "Jane Doe",
		Email:       "jane@x.com",
		OfferAmount: 750,
		Message:     "interested\nplease call",
		SubmittedAt: time.Date(2026, 10, 19, 14, 30, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "New Domain Offer Received")
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "mailto:jane@x.com")
	assert.Contains(t, html, "$750")
	assert.Contains(t, html, "interested<br>please call")
	assert.Contains(t, html, "October 19, 2026 at 2:30 PM UTC")
}

func TestRenderEscapesUserInput(t *testing.T) {
	props := OfferEmailProps{
		DomainName:  "Example.com",
		FullName:    `<script>alert("x")</script>`,
		Email:       "evil@x.com",
		OfferAmount: 900,
		Message:     `<img src=x onerror=alert(1)> & "quoted"`,
		SubmittedAt: time.Now(),
	}

	for name, render := range map[string]func(OfferEmailProps) (string, error){
		"owner":     RenderOwnerNotification,
		"submitter": RenderSubmitterThankYou,
	} {
		t.Run(name, func(t *testing.T) {
			html, err := render(props)
			require.NoError(t, err)

			assert.NotContains(t, html, "<script>")
			assert.NotContains(t, html, "<img")
			assert.Contains(t, html, "&lt;script&gt;")
			assert.Contains(t, html, "&lt;img src=x onerror=alert(1)&gt; &amp; &#34;quoted&#34;")
		})
	}
}

func TestRenderSubmitterThankYou_NoMessage(t *testing.T) {
	html, err := RenderSubmitterThankYou(OfferEmailProps{
		DomainName:  "Example.com",
		FullName:    "Jane Doe",
		Email:       "jane@x.com",
		OfferAmount: 1500,
		SubmittedAt: time.Now(),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Thank You for Your Offer")
	assert.Contains(t, html, "Hi Jane Doe,")
	assert.Contains(t, html, "$1,500")
	assert.NotContains(t, html, "message-box\">")
	assert.Equal(t, "Thank you for your offer on Example.com", SubmitterSubject("Example.com"))
}
