package camera

// Names of the constraint tiers, most specific first.
const (
	Tier1080pFront = "1080p-front"
	Tier720pFront  = "720p-front"
	TierFront      = "front"
	TierAny        = "any"
)

// Tier is one rung of the acquisition ladder.
type Tier struct {
	Name        string      `json:"name"`
	Constraints Constraints `json:"constraints"`
}

// Ladder returns the acquisition tiers in the order they are tried.
func Ladder() []Tier {
	return []Tier{
		{Name: Tier1080pFront, Constraints: Constraints{Width: 1920, Height: 1080, Facing: FacingUser}},
		{Name: Tier720pFront, Constraints: Constraints{Width: 1280, Height: 720, Facing: FacingUser}},
		{Name: TierFront, Constraints: Constraints{Facing: FacingUser}},
		{Name: TierAny, Constraints: Constraints{}},
	}
}

// TierNames returns the ladder's tier names in order.
func TierNames() []string {
	ladder := Ladder()
	names := make([]string, len(ladder))
	for i, t := range ladder {
		names[i] = t.Name
	}
	return names
}

// GetTier returns a tier by name, or nil if not found.
func GetTier(name string) *Tier {
	for _, t := range Ladder() {
		if t.Name == name {
			return &t
		}
	}
	return nil
}
