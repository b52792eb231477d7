package mailer

import "fmt"

// Email content is intentionally plain; the dashboard frontend owns the
// branded templates.

func OnboardingAdmin(resetLink string) (subject, body string) {
	subject = "Your dashboard admin account"
	body = fmt.Sprintf(
		`<p>An administrator account has been created for you.</p>
<p><a href="%s">Set your password</a> to activate it. The link is valid for 24 hours.</p>`,
		resetLink)
	return subject, body
}

func ResetPasswordAdmin(resetLink string) (subject, body string) {
	subject = "Reset your dashboard password"
	body = fmt.Sprintf(
		`<p>A password reset was requested for your admin account.</p>
<p><a href="%s">Choose a new password</a>. The link is valid for 24 hours.</p>
<p>If you did not request this, you can ignore this message.</p>`,
		resetLink)
	return subject, body
}

func OnboardingUser(firstName, resetLink string) (subject, body string) {
	subject = "Welcome!"
	body = fmt.Sprintf(
		`<p>Hi %s,</p>
<p>Your account is ready. <a href="%s">Set your password</a> to get started.</p>`,
		firstName, resetLink)
	return subject, body
}

func ResetPasswordUser(firstName, resetLink string) (subject, body string) {
	subject = "Reset your password"
	body = fmt.Sprintf(
		`<p>Hi %s,</p>
<p><a href="%s">Click here</a> to choose a new password.</p>`,
		firstName, resetLink)
	return subject, body
}
