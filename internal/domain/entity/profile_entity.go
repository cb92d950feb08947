package entity

// UserProfile is the aggregate root for the dashboard user.
// JSON keys match the persisted userInfo layout.
type UserProfile struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Bio        string  `json:"bio"`
	Phone      string  `json:"phone"`
	Avatar     string  `json:"avatar"`
	Coins      int     `json:"coins"`
	Level      int     `json:"level"`
	XPProgress float64 `json:"xpProgress"`
}

// DefaultProfile is the profile seeded on first load.
func DefaultProfile() UserProfile {
	return UserProfile{
		Name:       "New User",
		Coins:      0,
		Level:      1,
		XPProgress: 0,
	}
}

// ProfilePatch is a partial profile; nil fields are left unchanged on merge.
type ProfilePatch struct {
	Name       *string  `json:"name,omitempty"`
	Email      *string  `json:"email,omitempty"`
	Bio        *string  `json:"bio,omitempty"`
	Phone      *string  `json:"phone,omitempty"`
	Avatar     *string  `json:"avatar,omitempty"`
	Coins      *int     `json:"coins,omitempty"`
	Level      *int     `json:"level,omitempty"`
	XPProgress *float64 `json:"xpProgress,omitempty"`
}

// Apply returns p with every non-nil field of patch copied over.
func (p UserProfile) Apply(patch ProfilePatch) UserProfile {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Email != nil {
		p.Email = *patch.Email
	}
	if patch.Bio != nil {
		p.Bio = *patch.Bio
	}
	if patch.Phone != nil {
		p.Phone = *patch.Phone
	}
	if patch.Avatar != nil {
		p.Avatar = *patch.Avatar
	}
	if patch.Coins != nil {
		p.Coins = *patch.Coins
	}
	if patch.Level != nil {
		p.Level = *patch.Level
	}
	if patch.XPProgress != nil {
		p.XPProgress = *patch.XPProgress
	}
	return p
}

// Changes lists the fields a patch touches, keyed by JSON name. Used for notifications.
func (patch ProfilePatch) Changes() []string {
	var out []string
	if patch.Name != nil {
		out = append(out, "name")
	}
	if patch.Email != nil {
		out = append(out, "email")
	}
	if patch.Bio != nil {
		out = append(out, "bio")
	}
	if patch.Phone != nil {
		out = append(out, "phone")
	}
	if patch.Avatar != nil {
		out = append(out, "avatar")
	}
	if patch.Coins != nil {
		out = append(out, "coins")
	}
	if patch.Level != nil {
		out = append(out, "level")
	}
	if patch.XPProgress != nil {
		out = append(out, "xpProgress")
	}
	return out
}

// MaxRewardXP caps the XP a single reward may grant.
const MaxRewardXP = 1_000_000

// Reward is what completing a challenge grants.
type Reward struct {
	Coins int
	XP    int
}

// CompletionResult reports the outcome of completing a challenge.
type CompletionResult struct {
	AlreadyCompleted bool    `json:"alreadyCompleted"`
	NewCoinBalance   int     `json:"newCoinBalance"`
	Level            int     `json:"level"`
	XPProgress       float64 `json:"xpProgress"`
}
