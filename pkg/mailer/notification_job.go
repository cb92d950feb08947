package mailer

// NotificationJob is the JSON payload put on the RabbitMQ queue for a profile event.
// Template names an embedded template set; Subject/Text/HTML override rendering when set.
type NotificationJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // "profile_updated", "challenge_completed"
	Data     map[string]any `json:"data,omitempty"`
}
