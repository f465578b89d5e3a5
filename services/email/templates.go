package email

import (
	"fmt"
	"html"
	"net/mail"
	"strings"
)

func layout(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
		.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; }
		.header { background-color: #1E1B4B; padding: 30px; text-align: center; }
		.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
		.content { padding: 40px 30px; color: #1E1B4B; line-height: 1.6; }
		.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; }
		.info-box { background: #EEF2FF; padding: 15px; border-radius: 4px; border-left: 4px solid #6366F1; margin: 20px 0; }
		.btn { display: inline-block; padding: 12px 24px; background-color: #6366F1; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header"><h1>BRAINIX</h1></div>
		<div class="content">
			<h2>%s</h2>
			%s
		</div>
		<div class="footer">&copy; BrainiX. Keep learning.</div>
	</div>
</body>
</html>`, html.EscapeString(title), body)
}

func recipient(name, address string) []mail.Address {
	return []mail.Address{{Name: name, Address: address}}
}

// FormatCents renders an amount in minor units as "12.34 USD"
func FormatCents(amount int64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amount/100, amount%100, strings.ToUpper(currency))
}

// OrderConfirmation is sent once an order is fulfilled
func OrderConfirmation(name, address, orderNumber string, total int64, currency string, courseTitles []string, learnURL string) Message {
	var items strings.Builder
	for _, title := range courseTitles {
		items.WriteString("<li>" + html.EscapeString(title) + "</li>")
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Thank you for your purchase. Order <strong>%s</strong> is complete and you are now enrolled in:</p>
		<ul>%s</ul>
		<div class="info-box"><strong>Total paid:</strong> %s</div>
		<a href="%s" class="btn">Start Learning</a>
	`, html.EscapeString(name), html.EscapeString(orderNumber), items.String(), FormatCents(total, currency), learnURL)

	return Message{
		To:       recipient(name, address),
		Subject:  "Order Confirmed: " + orderNumber,
		HTML:     layout("Enrollment Successful!", body),
		Text:     fmt.Sprintf("Order %s is complete. Total paid: %s", orderNumber, FormatCents(total, currency)),
		Category: "order",
	}
}

// PaymentFailed is sent when the payment provider declines an order
func PaymentFailed(name, address, orderNumber string) Message {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We could not process the payment for order <strong>%s</strong>.</p>
		<p>Your cart has been kept so you can try again with another payment method.</p>
	`, html.EscapeString(name), html.EscapeString(orderNumber))

	return Message{
		To:       recipient(name, address),
		Subject:  "Payment Failed: " + orderNumber,
		HTML:     layout("Payment Failed", body),
		Category: "order",
	}
}

// CourseCompleted is sent when an enrollment reaches 100%
func CourseCompleted(name, address, courseTitle, certificateNumber, verifyURL string) Message {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Congratulations on completing <strong>%s</strong>!</p>
		<div class="info-box">Your certificate number is <strong>%s</strong>.</div>
		<a href="%s" class="btn">View Certificate</a>
	`, html.EscapeString(name), html.EscapeString(courseTitle), html.EscapeString(certificateNumber), verifyURL)

	return Message{
		To:       recipient(name, address),
		Subject:  "Course Completed: " + courseTitle,
		HTML:     layout("Certificate of Completion", body),
		Category: "certificate",
	}
}

// Welcome is sent when the identity provider reports a new account
func Welcome(name, address string) Message {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Welcome to <strong>BrainiX</strong>! Your account is ready.</p>
		<p>Browse the catalog and start your first course today.</p>
	`, html.EscapeString(name))

	return Message{
		To:       recipient(name, address),
		Subject:  "Welcome to BrainiX",
		HTML:     layout("Welcome Onboard!", body),
		Category: "account",
	}
}

// RoleChanged is sent when a user's role is changed
func RoleChanged(name, address, role string) Message {
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your BrainiX account role is now <strong>%s</strong>.</p>
	`, html.EscapeString(name), html.EscapeString(role))

	return Message{
		To:       recipient(name, address),
		Subject:  "Your role has been updated",
		HTML:     layout("Account Updated", body),
		Category: "account",
	}
}
