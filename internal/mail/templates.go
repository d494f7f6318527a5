package mail

import "fmt"

// Inline HTML bodies for the transactional messages the backend sends.

func WelcomeBody(firstName string) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>Your cabinet account has been created. You can now sign in with your email address.</p>`, firstName)
}

func TwoFactorBody(firstName string, code string) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>Your verification code is <strong>%s</strong>.</p>
<p>The code expires in a few minutes. If you did not try to sign in, contact an administrator.</p>`, firstName, code)
}

func PasswordResetBody(firstName string, resetLink string) string {
	return fmt.Sprintf(`<p>Hello %s,</p>
<p>A password reset was requested for your account. Follow the link below to choose a new password:</p>
<p><a href="%s">%s</a></p>
<p>The link expires shortly. If you did not request this, you can ignore this message.</p>`, firstName, resetLink, resetLink)
}

func BroadcastBody(firstName string, title string, message string, link string) string {
	body := fmt.Sprintf(`<p>Hello %s,</p>
<h3>%s</h3>
<p>%s</p>`, firstName, title, message)
	if link != "" {
		body += fmt.Sprintf(`<p><a href="%s">View details</a></p>`, link)
	}
	return body
}
