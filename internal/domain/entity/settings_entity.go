package entity

// NotificationSettings are the user's notification preferences.
// Push is stored for the client; the server has no push channel.
type NotificationSettings struct {
	Push         bool `json:"push"`
	Email        bool `json:"email"`
	Achievements bool `json:"achievements"`
}

// DefaultNotificationSettings has every channel switched on.
func DefaultNotificationSettings() NotificationSettings {
	return NotificationSettings{Push: true, Email: true, Achievements: true}
}

type NotificationSettingsPatch struct {
	Push         *bool `json:"push,omitempty"`
	Email        *bool `json:"email,omitempty"`
	Achievements *bool `json:"achievements,omitempty"`
}

func (s NotificationSettings) Apply(p NotificationSettingsPatch) NotificationSettings {
	if p.Push != nil {
		s.Push = *p.Push
	}
	if p.Email != nil {
		s.Email = *p.Email
	}
	if p.Achievements != nil {
		s.Achievements = *p.Achievements
	}
	return s
}
