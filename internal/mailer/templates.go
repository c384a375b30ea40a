package mailer

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"net/url"
	"strings"
	texttemplate "text/template"
	"time"
)

// Submission holds the sanitized contact form fields.
type Submission struct {
	Name    string
	Email   string
	Company string
	Service string
	Message string
}

// Envelope carries the sender identity and the notification recipients.
type Envelope struct {
	FromName    string
	FromAddress string
	Recipients  []string
}

func (e Envelope) from() string {
	return FormatAddress(e.FromName, e.FromAddress)
}

const notificationHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>New Contact Form Submission</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #f8f9fa; padding: 30px; border-radius: 8px; margin-bottom: 30px; border-left: 4px solid #28a745;">
    <h1 style="margin: 0 0 10px 0; color: #28a745; font-size: 24px;">New Contact Form Submission</h1>
    <p style="margin: 0; color: #666; font-size: 14px;">Received on {{.ReceivedOn}}</p>
  </div>

  <div style="margin-bottom: 30px;">
    <h2 style="color: #333; font-size: 18px; margin-bottom: 15px; border-bottom: 2px solid #eee; padding-bottom: 5px;">Contact Information</h2>
    <table style="width: 100%; border-collapse: collapse;">
      <tr>
        <td style="padding: 8px 0; font-weight: 600; width: 100px; vertical-align: top;">Name:</td>
        <td style="padding: 8px 0;">{{.Sub.Name}}</td>
      </tr>
      <tr>
        <td style="padding: 8px 0; font-weight: 600; vertical-align: top;">Email:</td>
        <td style="padding: 8px 0;"><a href="mailto:{{.Sub.Email}}" style="color: #28a745; text-decoration: none;">{{.Sub.Email}}</a></td>
      </tr>
      {{- if .Sub.Company}}
      <tr>
        <td style="padding: 8px 0; font-weight: 600; vertical-align: top;">Company:</td>
        <td style="padding: 8px 0;">{{.Sub.Company}}</td>
      </tr>
      {{- end}}
      {{- if .Sub.Service}}
      <tr>
        <td style="padding: 8px 0; font-weight: 600; vertical-align: top;">Service:</td>
        <td style="padding: 8px 0;"><span style="background: #cfeed6; color: #28a745; padding: 4px 8px; border-radius: 4px; font-size: 12px;">{{.Sub.Service}}</span></td>
      </tr>
      {{- end}}
    </table>
  </div>

  <div style="margin-bottom: 30px;">
    <h2 style="color: #333; font-size: 18px; margin-bottom: 15px; border-bottom: 2px solid #eee; padding-bottom: 5px;">Message</h2>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 6px; border-left: 3px solid #28a745;">
      {{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}
    </div>
  </div>

  <div style="background: #fff3cd; padding: 20px; border-radius: 6px; border: 1px solid #ffeaa7; margin-bottom: 20px;">
    <h3 style="margin: 0 0 10px 0; color: #856404; font-size: 16px;">Quick Actions</h3>
    <a href="{{.ReplyLink}}" style="display: inline-block; background: #28a745; color: white; padding: 10px 20px; border-radius: 5px; text-decoration: none; font-weight: 500; margin-right: 10px;">Reply to {{.Sub.Name}}</a>
  </div>

  <div style="border-top: 1px solid #eee; padding-top: 20px; color: #666; font-size: 12px;">
    <p style="margin: 0;">This message was sent from your MiraVision website contact form.</p>
    <p style="margin: 5px 0 0 0;">IP Address: {{.ClientID}}</p>
  </div>
</body>
</html>
`

const notificationText = `NEW CONTACT FORM SUBMISSION - {{.ReceivedDate}}

CONTACT INFORMATION
Name: {{.Sub.Name}}
Email: {{.Sub.Email}}
{{- if .Sub.Company}}
Company: {{.Sub.Company}}
{{- end}}
{{- if .Sub.Service}}
Service: {{.Sub.Service}}
{{- end}}

MESSAGE
{{.Sub.Message}}

REPLY TO: {{.Sub.Email}}
SOURCE: MiraVision Website Contact Form
IP: {{.ClientID}}
TIMESTAMP: {{.Timestamp}}
`

const autoReplyHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Thank you for contacting us</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="background: #e8f5e8; padding: 30px; border-radius: 8px; text-align: center; margin-bottom: 30px;">
    <h1 style="margin: 0 0 10px 0; color: #28a745; font-size: 24px;">Thank You!</h1>
    <p style="margin: 0; color: #666;">We received your message and will get back to you soon.</p>
  </div>

  <div style="margin-bottom: 30px;">
    <p style="font-size: 16px; margin-bottom: 20px;">Hi {{.Sub.Name}},</p>
    <p>Thank you for reaching out to MiraVision! We appreciate you taking the time to contact us{{if .Sub.Service}} about our {{.Sub.Service}} services{{end}}.</p>
    <p>We've received your message and our team will review it carefully. You can expect to hear back from us within 24 hours.</p>
    <div style="background: #f8f9fa; padding: 20px; border-radius: 6px; border-left: 3px solid #28a745; margin: 20px 0;">
      <h3 style="margin: 0 0 10px 0; color: #28a745; font-size: 16px;">What happens next?</h3>
      <p style="margin: 0;">Our team will review your inquiry and prepare a personalized response with next steps for your project.</p>
    </div>
    <p>If you have any urgent questions in the meantime, feel free to reply to this email.</p>
    <p>Best regards,<br>The MiraVision Team</p>
  </div>

  <div style="border-top: 1px solid #eee; padding-top: 20px; color: #666; font-size: 12px; text-align: center;">
    <p style="margin: 0;">This is an automated response to confirm we received your message.</p>
  </div>
</body>
</html>
`

const autoReplyText = `Hi {{.Sub.Name}},

Thank you for reaching out to MiraVision! We appreciate you taking the time to contact us{{if .Sub.Service}} about our {{.Sub.Service}} services{{end}}.

We've received your message and our team will review it carefully. You can expect to hear back from us within 24 hours.

What happens next?
Our team will review your inquiry and prepare a personalized response with next steps for your project.

If you have any urgent questions in the meantime, feel free to reply to this email.

Best regards,
The MiraVision Team

---
This is an automated response to confirm we received your message.
`

var (
	notificationHTMLTmpl = htmltemplate.Must(htmltemplate.New("notification.html").Parse(notificationHTML))
	notificationTextTmpl = texttemplate.Must(texttemplate.New("notification.txt").Parse(notificationText))
	autoReplyHTMLTmpl    = htmltemplate.Must(htmltemplate.New("autoreply.html").Parse(autoReplyHTML))
	autoReplyTextTmpl    = texttemplate.Must(texttemplate.New("autoreply.txt").Parse(autoReplyText))
)

type notificationData struct {
	Sub          Submission
	Lines        []string
	ClientID     string
	ReceivedOn   string
	ReceivedDate string
	Timestamp    string
	ReplyLink    htmltemplate.URL
}

type autoReplyData struct {
	Sub Submission
}

// replyLink builds the prefilled mailto for the quick action button.
func replyLink(sub Submission) htmltemplate.URL {
	body := fmt.Sprintf("Hi %s,\r\n\r\nThank you for contacting MiraVision! I'd love to learn more about your project.\r\n\r\nBest regards,\r\nThe MiraVision Team", sub.Name)
	q := url.Values{}
	q.Set("subject", "Re: Your inquiry to MiraVision")
	q.Set("body", body)
	return htmltemplate.URL("mailto:" + url.PathEscape(sub.Email) + "?" + strings.ReplaceAll(q.Encode(), "+", "%20"))
}

// NewNotification builds the message sent to the studio inbox.
func NewNotification(sub Submission, env Envelope, clientID string, receivedAt time.Time) (*Message, error) {
	receivedAt = receivedAt.UTC()
	data := notificationData{
		Sub:          sub,
		Lines:        strings.Split(sub.Message, "\n"),
		ClientID:     clientID,
		ReceivedOn:   receivedAt.Format("Monday, January 2, 2006 at 03:04 PM MST"),
		ReceivedDate: receivedAt.Format("1/2/2006"),
		Timestamp:    receivedAt.Format("2006-01-02T15:04:05.000Z07:00"),
		ReplyLink:    replyLink(sub),
	}

	var html, text bytes.Buffer
	if err := notificationHTMLTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render notification html: %w", err)
	}
	if err := notificationTextTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render notification text: %w", err)
	}

	return &Message{
		From:    env.from(),
		To:      env.Recipients,
		ReplyTo: sub.Email,
		Subject: "New Contact Form Submission from " + sub.Name,
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}

// NewAutoReply builds the confirmation sent back to the submitter.
func NewAutoReply(sub Submission, env Envelope) (*Message, error) {
	data := autoReplyData{Sub: sub}

	var html, text bytes.Buffer
	if err := autoReplyHTMLTmpl.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render auto-reply html: %w", err)
	}
	if err := autoReplyTextTmpl.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render auto-reply text: %w", err)
	}

	return &Message{
		From:    env.from(),
		To:      []string{sub.Email},
		Subject: fmt.Sprintf("Thank you for contacting MiraVision, %s!", sub.Name),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
