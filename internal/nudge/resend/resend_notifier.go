// Package resend delivers nudges by e-mail through the Resend API.
package resend

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"

	"github.com/resend/resend-go/v2"
)

const DefaultFrom = "habitledger <onboarding@resend.dev>"

var nudgeTemplate = template.Must(template.New("email").Parse(`
<p>Your streak ends at midnight, {{.Hours}} hours from now. Still open today:</p>
<ul>
{{range .Habits}}  <li>{{.}}</li>
{{end}}</ul>
`))

type ResendNotifier struct {
	ApiKey string
	Email  string
	From   string
	// BaseURL overrides the Resend endpoint. Empty uses the client default.
	BaseURL string
}

func render(habits []string, hours int) (string, error) {
	data := struct {
		Habits []string
		Hours  int
	}{Habits: habits, Hours: hours}

	var buf bytes.Buffer
	if err := nudgeTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (r *ResendNotifier) SendNudge(ctx context.Context, habits []string, hoursTillExpiry int) error {
	if r.ApiKey == "" || r.Email == "" {
		return fmt.Errorf("resend: api key and recipient are required")
	}
	body, err := render(habits, hoursTillExpiry)
	if err != nil {
		return fmt.Errorf("resend: render: %w", err)
	}

	client := resend.NewClient(r.ApiKey)
	if r.BaseURL != "" {
		u, err := url.Parse(r.BaseURL)
		if err != nil {
			return fmt.Errorf("resend: base url: %w", err)
		}
		client.BaseURL = u
	}

	from := r.From
	if from == "" {
		from = DefaultFrom
	}
	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{r.Email},
		Subject: "Your streak is about to expire",
		Html:    body,
	}
	if _, err := client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("resend: send: %w", err)
	}
	return nil
}
