package game

import (
	"maps"
	"slices"

	"bosplit/dispatch"
	"bosplit/settings"
)

// Tracked collection names
const (
	EntityBosses  = "Bosses"
	EntityDarumas = "Darumas"
)

// CategoryAnyPercent is the only preset
const CategoryAnyPercent = "any_percent"

type split struct {
	key     string
	field   string
	enabled bool
}

var questSplits = []split{
	{"asahi_staff_start", "AsahiStaffStarted", false},
	{"asahi_staff_end", "AsahiStaffCompleted", true},
	{"asahi_eye_of_beast_start", "AsahiEyeOfBeastStarted", false},
	{"asahi_eye_of_beast_end", "AsahiEyeOfBeastCompleted", true},
	{"defeated_pua_boss", "DefeatedPUA", true},
	{"defeat_hashihime_boss", "DefeatedHashihime", true},
	{"vermilion_stranger_quest_end", "VermilionStrangerCompleted", true},
	{"defeat_kaboto_boss", "DefeatedYokozuna", true},
	{"defeat_jorogumo_boss", "DefeatedJorogumo", true},
	{"fox_wedding_groom", "FoxWeddingGroomSaved", false},
	{"fox_wedding_end", "FoxWeddingCompleted", true},
	{"rozus_requiem_end", "RozusRequiemCompleted", false},
	{"defeat_tengu_boss", "TenguTrialCompleted", true},
	{"west_feather_in_keyhole", "FirstFeatherKeyEntered", true},
	{"east_feather_in_keyhole", "SecondFeatherKeyEntered", true},
	{"defeat_gash_boss", "DefeatedGasha", true},
	{"defeat_asahi_boss", "DefeatedAsahi", true},
	{"defeat_sakura_boss", "DefeatedShogun", true},
	{"credits_roll", "PostGame", false},
}

var abilitySplits = []split{
	{"can_attack", "CanAttack", true},
	{"can_bat", "CanBat", true},
	{"can_dash", "CanDash", true},
	{"can_hover", "CanHover", true},
	{"can_idash", "CanIDash", true},
	{"can_grapple", "CanGrapple", true},
	{"can_hammer_dash", "CanHammerDash", true},
	{"can_wall_jump", "CanWallJump", true},
}

// Rules returns the full split table. Boss and daruma rules come from the
// kind enums, one per kind that has a split key.
func Rules() []dispatch.Rule {
	var rules []dispatch.Rule

	for _, s := range questSplits {
		rules = append(rules, dispatch.Rule{Key: s.key, Entity: ClassQuestManager, Field: s.field, When: dispatch.BecameTrue()})
	}
	rules = append(rules, dispatch.Rule{
		Key:    "shimeji_quest_end",
		Entity: ClassQuestManager,
		Field:  "ShimejiArmapillosCollected",
		When:   dispatch.Crossed(3, 4),
	})

	for _, s := range abilitySplits {
		r := dispatch.Rule{Key: s.key, Entity: ClassAbilityManager, Field: s.field, When: dispatch.BecameTrue()}
		if s.key == "can_bat" {
			// the bat is KiriKiri Bozu's reward
			r.Settings = []string{"can_bat", "defeated_kirikiri_boss"}
		}
		rules = append(rules, r)
	}

	rules = append(rules,
		dispatch.Rule{Key: "first_feather_key", Entity: ClassInventoryContainer, Field: "FeatherKeys", When: dispatch.Crossed(0, 1)},
		dispatch.Rule{Key: "second_feather_key", Entity: ClassInventoryContainer, Field: "FeatherKeys", When: dispatch.Crossed(1, 2)},
	)

	for k := BossPlaceholder; k <= BossAmaterasu; k++ {
		key, ok := k.SplitKey()
		if !ok {
			continue
		}
		rules = append(rules, dispatch.Rule{Key: key, Entity: EntityBosses, Slot: k.String(), Field: "Defeated", When: dispatch.BecameTrue()})
	}

	for d := DarumaBite; d <= DarumaBoomerang; d++ {
		key, ok := d.SplitKey()
		if !ok {
			continue
		}
		rules = append(rules, dispatch.Rule{Key: key, Entity: EntityDarumas, Slot: d.String(), Field: "Available", When: dispatch.BecameTrue()})
	}

	return rules
}

// Defaults returns the enabled state of every split setting
func Defaults() map[string]bool {
	defaults := make(map[string]bool)
	for _, s := range questSplits {
		defaults[s.key] = s.enabled
	}
	for _, s := range abilitySplits {
		defaults[s.key] = s.enabled
	}
	defaults["shimeji_quest_end"] = true
	defaults["first_feather_key"] = true
	defaults["second_feather_key"] = true

	for _, r := range Rules() {
		if _, ok := defaults[r.Key]; !ok {
			defaults[r.Key] = false
		}
	}
	return defaults
}

// Presets maps a category to the splits it turns on
func Presets() map[string][]string {
	return map[string][]string{
		CategoryAnyPercent: {
			"asahi_staff_end",
			"asahi_eye_of_beast_end",
			"defeated_kirikiri_boss",
			"defeated_pua_boss",
			"defeat_hashihime_boss",
			"defeat_kaboto_boss",
			"defeat_jorogumo_boss",
			"defeat_tengu_boss",
			"defeat_gash_boss",
			"defeat_asahi_boss",
			"defeat_sakura_boss",
			"can_bat",
			"can_dash",
			"can_grapple",
			"can_hammer_dash",
			"can_wall_jump",
		},
	}
}

// NewSettings builds a settings source with the game's defaults, presets and
// boss aliases.
func NewSettings(path string) *settings.Source {
	return settings.NewSource(path, Defaults(), Presets(), BossAliases())
}

// SettingKeys returns every split setting in order
func SettingKeys() []string {
	return slices.Sorted(maps.Keys(Defaults()))
}
