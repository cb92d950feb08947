package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/nutriquest/config"
	"github.com/oksasatya/nutriquest/internal/domain/entity"
	"github.com/oksasatya/nutriquest/pkg/mailer"
	mailtpl "github.com/oksasatya/nutriquest/pkg/mailer/templates"
)

// Publisher enqueues a JSON message. helpers.RabbitPublisher satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// NotificationPreferences reports the user's opt-ins. SettingsService satisfies it.
type NotificationPreferences interface {
	NotificationSettings(ctx context.Context) entity.NotificationSettings
}

// Notifier turns store changes into notification jobs for the worker.
type Notifier struct {
	Pub     Publisher
	Catalog Catalog
	Prefs   NotificationPreferences // nil means everything is on
	Cfg     *config.Config
	Logger  *logrus.Logger
}

func NewNotifier(pub Publisher, catalog Catalog, prefs NotificationPreferences, cfg *config.Config, logger *logrus.Logger) *Notifier {
	return &Notifier{Pub: pub, Catalog: catalog, Prefs: prefs, Cfg: cfg, Logger: logger}
}

// Handle is registered with ProfileStore.Subscribe. Publishing never blocks
// the caller for more than a few seconds and errors are only logged.
// MAIL_SEND_ENABLED gates every email; the user's email toggle gates all of
// theirs and the achievements toggle gates challenge completions.
func (n *Notifier) Handle(c Change) {
	if n.Pub == nil || n.Cfg == nil || !n.Cfg.MailSendEnabled {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if !n.wanted(ctx, c.Kind) {
		return
	}
	job, ok := n.jobFor(c)
	if !ok {
		return
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Warn("publish notification failed")
	}
}

func (n *Notifier) wanted(ctx context.Context, kind ChangeKind) bool {
	if n.Prefs == nil {
		return true
	}
	prefs := n.Prefs.NotificationSettings(ctx)
	if !prefs.Email {
		return false
	}
	return kind != ChangeChallengeCompleted || prefs.Achievements
}

func (n *Notifier) jobFor(c Change) (mailer.NotificationJob, bool) {
	p := c.Profile
	if p.Email == "" {
		return mailer.NotificationJob{}, false
	}
	opts := []mailtpl.Option{mailtpl.WithTime(c.At), mailtpl.WithBalance(p.Coins, p.Level, p.XPProgress)}

	job := mailer.NotificationJob{To: p.Email}
	switch c.Kind {
	case ChangeProfileUpdated:
		job.Template = mailtpl.ProfileUpdated
		job.Data = mailtpl.NewProfileUpdatedData(n.Cfg, p.Name, p.Email, c.Fields, opts...)
	case ChangeChallengeCompleted:
		title := c.ChallengeID
		if n.Catalog != nil {
			if ch, ok := n.Catalog.Get(c.ChallengeID); ok {
				title = ch.Title
			}
		}
		opts = append(opts, mailtpl.WithChallenge(c.ChallengeID, title, c.Reward.Coins, c.Reward.XP))
		job.Template = mailtpl.ChallengeCompleted
		job.Data = mailtpl.NewChallengeCompletedData(n.Cfg, p.Name, p.Email, opts...)
	default:
		// reset wipes the email, so there is nobody to notify
		return mailer.NotificationJob{}, false
	}
	return job, true
}
