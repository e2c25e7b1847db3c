package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// OfferSubject is the subject of the owner notification.
const OfferSubject = "Domain Selling: Offer"

// OfferEmailProps is the data rendered into both offer emails.
type OfferEmailProps struct {
	DomainName  string
	FullName    string
	Email       string
	OfferAmount int
	Message     string
	SubmittedAt time.Time
}

type offerView struct {
	OfferEmailProps
	Amount       string
	Submitted    string
	MessageLines []string
}

var amountPrinter = message.NewPrinter(language.English)

// FormatAmount renders an offer as US dollars with thousands separators.
func FormatAmount(amount int) string {
	return amountPrinter.Sprintf("$%d", amount)
}

func newOfferView(p OfferEmailProps) offerView {
	v := offerView{
		OfferEmailProps: p,
		Amount:          FormatAmount(p.OfferAmount),
		Submitted:       p.SubmittedAt.UTC().Format("January 2, 2006 at 3:04 PM MST"),
	}
	if msg := strings.TrimSpace(p.Message); msg != "" {
		v.MessageLines = strings.Split(strings.ReplaceAll(msg, "\r\n", "\n"), "\n")
	}
	return v
}

// layout wraps a content block; {{template "content" .}} is defined per email.
const layout = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>{{template "title" .}}</title>
  <style>
    body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; line-height: 1.6; color: #333333; background-color: #f4f4f4; margin: 0; padding: 0; }
    .container { max-width: 600px; margin: 20px auto; background-color: #ffffff; border-radius: 8px; overflow: hidden; }
    .header { background-color: #1D546C; color: #F4F4F4; padding: 24px; text-align: center; }
    .header h1 { margin: 0; font-size: 24px; font-weight: 600; }
    .content { padding: 32px 24px; }
    table { width: 100%; border-collapse: collapse; margin: 24px 0; }
    th { background-color: #0C2B4E; color: #F4F4F4; text-align: left; padding: 12px 16px; font-size: 14px; }
    td { padding: 12px 16px; border-bottom: 1px solid #e5e5e5; font-size: 14px; }
    .offer-amount { font-size: 20px; font-weight: 700; color: #1D546C; }
    .message-box { background-color: #f8f9fa; border-left: 4px solid #1D546C; padding: 16px; margin: 16px 0; border-radius: 4px; }
    .footer { background-color: #f8f9fa; padding: 16px 24px; text-align: center; font-size: 12px; color: #888888; border-top: 1px solid #e5e5e5; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header"><h1>{{template "title" .}}</h1></div>
    <div class="content">{{template "content" .}}</div>
    <div class="footer"><p>{{template "footer" .}}</p></div>
  </div>
</body>
</html>`

const messageBlock = `{{define "message"}}{{if .MessageLines}}
      <div>
        <strong>Message:</strong>
        <div class="message-box">{{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
      </div>{{end}}{{end}}`

const ownerContent = `{{define "title"}}New Domain Offer Received{{end}}
{{define "content"}}
      <p>You have received a new offer for {{.DomainName}}. Here are the details:</p>
      <table>
        <tr><th colspan="2">Offer Details</th></tr>
        <tr><td><strong>Full Name</strong></td><td>{{.FullName}}</td></tr>
        <tr><td><strong>Email</strong></td><td><a href="mailto:{{.Email}}">{{.Email}}</a></td></tr>
        <tr><td><strong>Offer Amount</strong></td><td class="offer-amount">{{.Amount}}</td></tr>
        <tr><td><strong>Submitted</strong></td><td>{{.Submitted}}</td></tr>
      </table>
      {{template "message" .}}
      <p>You can reply directly to this email to respond to <strong>{{.FullName}}</strong>.</p>
{{end}}
{{define "footer"}}This email was sent from your domain sale contact form.{{end}}`

const submitterContent = `{{define "title"}}Thank You for Your Offer{{end}}
{{define "content"}}
      <p>Hi {{.FullName}},</p>
      <p>Thank you for your interest in <strong>{{.DomainName}}</strong>. We received your offer and will get back to you within 24-48 hours.</p>
      <table>
        <tr><th colspan="2">Your Offer</th></tr>
        <tr><td><strong>Domain</strong></td><td>{{.DomainName}}</td></tr>
        <tr><td><strong>Offer Amount</strong></td><td class="offer-amount">{{.Amount}}</td></tr>
        <tr><td><strong>Submitted</strong></td><td>{{.Submitted}}</td></tr>
      </table>
      {{template "message" .}}
{{end}}
{{define "footer"}}You are receiving this email because an offer was submitted with this address.{{end}}`

var (
	ownerTemplate     = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(messageBlock + ownerContent))
	submitterTemplate = template.Must(template.Must(template.New("layout").Parse(layout)).Parse(messageBlock + submitterContent))
)

// RenderOwnerNotification renders the email sent to the site owner.
func RenderOwnerNotification(p OfferEmailProps) (string, error) {
	return render(ownerTemplate, p)
}

// RenderSubmitterThankYou renders the confirmation sent to the person who made the offer.
func RenderSubmitterThankYou(p OfferEmailProps) (string, error) {
	return render(submitterTemplate, p)
}

// SubmitterSubject is the subject of the confirmation email.
func SubmitterSubject(domainName string) string {
	return "Thank you for your offer on " + domainName
}

func render(t *template.Template, p OfferEmailProps) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, newOfferView(p)); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
