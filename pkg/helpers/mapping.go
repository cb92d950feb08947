package helpers

import (
	"fmt"

	"github.com/oksasatya/nutriquest/pkg/mailer"
)

// EnsureRecipientAndEmail fills the Email/RecipientEmail template fields from job.To when missing.
func EnsureRecipientAndEmail(job *mailer.NotificationJob) {
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	if v, ok := job.Data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["Email"] = job.To
	}
	if v, ok := job.Data["RecipientEmail"]; !ok || fmt.Sprintf("%v", v) == "" {
		job.Data["RecipientEmail"] = job.To
	}
}
