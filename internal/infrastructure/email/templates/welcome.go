package templates

import "fmt"

// WelcomeEmailProps carries the values for the registration welcome email.
type WelcomeEmailProps struct {
	Username string
}

// GetWelcomeEmailContent renders the welcome email body. The username is
// user-supplied, so it only ever passes through the sanitizing builders.
func GetWelcomeEmailContent(props WelcomeEmailProps) string {
	name := props.Username
	if name == "" {
		name = "there"
	}

	content := GetParagraphWithHTML(fmt.Sprintf("Hi <strong>%s</strong>,", name))
	content += GetParagraph("Welcome to Luminor. Your account is ready: scan a logo with your camera, look a brand up by voice, and keep your favorites in one place.")
	content += GetParagraph("Every scan lands in your history (you can switch that off in preferences), and the live dashboard shows what the community is scanning right now.")
	content += GetButton(ButtonProps{
		Text: "Start scanning",
		URL:  "https://luminor.app",
	})
	content += GetParagraph("If you did not create this account, you can safely ignore this email.")
	return content
}
