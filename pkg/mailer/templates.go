package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money": FormatAmount,
}).Parse(`
{{define "welcome"}}<!doctype html>
<html><body style="font-family:sans-serif">
<h1>Welcome to Nemesis, {{.Name}}</h1>
<p>Your account is ready. Browse artworks, follow artists and get tickets for upcoming events.</p>
{{if .ClientURL}}<p><a href="{{.ClientURL}}">Open Nemesis</a></p>{{end}}
</body></html>{{end}}

{{define "order_confirmation"}}<!doctype html>
<html><body style="font-family:sans-serif">
<h1>Thank you for your order, {{.Name}}</h1>
<p>Order #{{.OrderID}} was paid on {{.PaidAt.Format "2 Jan 2006 15:04 MST"}}.</p>
<table cellpadding="4">
{{range .Lines}}<tr><td>{{.Title}}</td><td>x{{.Quantity}}</td><td>{{money .UnitPrice $.Currency}}</td></tr>
{{end}}</table>
<p><strong>Total: {{money .Total .Currency}}</strong></p>
</body></html>{{end}}

{{define "account_suspended"}}<!doctype html>
<html><body style="font-family:sans-serif">
<h1>Your account has been suspended</h1>
<p>Hello {{.Name}}, an administrator suspended your account.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
</body></html>{{end}}
`))

// WelcomeData feeds the welcome template.
type WelcomeData struct {
	Name      string
	ClientURL string
}

// OrderLine is one purchased item in a confirmation.
type OrderLine struct {
	Title     string
	Quantity  int
	UnitPrice int64
}

// OrderConfirmationData feeds the order confirmation template.
type OrderConfirmationData struct {
	Name     string
	OrderID  uint
	PaidAt   time.Time
	Currency string
	Total    int64
	Lines    []OrderLine
}

// SuspensionData feeds the suspension notice template.
type SuspensionData struct {
	Name   string
	Reason string
}

// Welcome renders the welcome email.
func Welcome(to string, data WelcomeData) (Message, error) {
	return render(to, "Welcome to Nemesis", "welcome", data)
}

// OrderConfirmation renders the paid order email.
func OrderConfirmation(to string, data OrderConfirmationData) (Message, error) {
	return render(to, fmt.Sprintf("Your Nemesis order #%d", data.OrderID), "order_confirmation", data)
}

// AccountSuspended renders the suspension notice.
func AccountSuspended(to string, data SuspensionData) (Message, error) {
	return render(to, "Your Nemesis account was suspended", "account_suspended", data)
}

// FormatAmount renders minor currency units, e.g. 1250 eur as "12.50 EUR".
func FormatAmount(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

func render(to, subject, name string, data interface{}) (Message, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s email: %w", name, err)
	}
	return Message{To: []string{to}, Subject: subject, HTML: buf.String()}, nil
}
