package entity

// Kinds of catalog entries
const (
	KindChallenge = "challenge"
	KindMeal      = "meal"
)

// Challenge is a static catalog entry. Completion is tracked only by ID
// in the profile store; everything else here is configuration.
type Challenge struct {
	ID          string `json:"id" yaml:"id"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Difficulty  string `json:"difficulty,omitempty" yaml:"difficulty"` // easy, medium, hard
	Category    string `json:"category,omitempty" yaml:"category"`
	Kind        string `json:"kind" yaml:"kind"`
	Coins       int    `json:"coins" yaml:"coins"`
	XP          int    `json:"xp" yaml:"xp"`
	Progress    int    `json:"progress" yaml:"progress"`
	Total       int    `json:"total" yaml:"total"`
	DaysLeft    int    `json:"days_left,omitempty" yaml:"days_left"`
	Time        string `json:"time,omitempty" yaml:"time"` // meals only, e.g. "8:00 AM"
	ImageURL    string `json:"image_url,omitempty" yaml:"image_url"`
}

// Reward returns the coins and XP granted on completion.
func (c Challenge) Reward() Reward {
	return Reward{Coins: c.Coins, XP: c.XP}
}
