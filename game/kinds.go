package game

import (
	"fmt"
)

// BossKind is the boss enum stored in BossData
type BossKind uint32

const (
	BossPlaceholder BossKind = iota
	BossKiriKiriBozu
	BossPUA
	BossHashihime
	BossYuki
	BossYokozuna
	BossJorogumo
	BossKarasuTengu
	BossDaiTengu
	BossGasha
	BossAsahi
	BossShogun
	BossAmaterasu
)

var bossNames = [...]string{
	BossPlaceholder:  "Placeholder",
	BossKiriKiriBozu: "KiriKiriBozu",
	BossPUA:          "PUA",
	BossHashihime:    "Hashihime",
	BossYuki:         "Yuki",
	BossYokozuna:     "Yokozuna",
	BossJorogumo:     "Jorogumo",
	BossKarasuTengu:  "KarasuTengu",
	BossDaiTengu:     "DaiTengu",
	BossGasha:        "Gasha",
	BossAsahi:        "Asahi",
	BossShogun:       "Shogun",
	BossAmaterasu:    "Amaterasu",
}

func (k BossKind) String() string {
	if int(k) < len(bossNames) {
		return bossNames[k]
	}
	return fmt.Sprintf("BossKind(%d)", uint32(k))
}

// SplitKey returns the setting for defeating this boss as read from the
// boss list. Most bosses are split from QuestManager flags instead.
func (k BossKind) SplitKey() (string, bool) {
	switch k {
	case BossKiriKiriBozu:
		return "defeated_kirikiri_boss", true
	case BossYuki:
		return "defeated_yuki_boss", true
	case BossDaiTengu:
		return "defeated_dai_tengu_boss", true
	case BossAmaterasu:
		return "defeated_amaterasu_boss", true
	case BossPlaceholder, BossPUA, BossHashihime, BossYokozuna, BossJorogumo,
		BossKarasuTengu, BossGasha, BossAsahi, BossShogun:
		return "", false
	}
	return "", false
}

// DarumaType is the daruma enum stored in Daruma
type DarumaType uint32

const (
	DarumaBite DarumaType = iota
	DarumaParry
	DarumaThorns
	DarumaSpirits
	DarumaBomb
	DarumaSpinAttack
	DarumaDeprecated1
	DarumaFireWall
	DarumaIce
	DarumaBoomerang
)

var darumaNames = [...]string{
	DarumaBite:        "Bite",
	DarumaParry:       "Parry",
	DarumaThorns:      "Thorns",
	DarumaSpirits:     "Spirits",
	DarumaBomb:        "Bomb",
	DarumaSpinAttack:  "SpinAttack",
	DarumaDeprecated1: "Deprecated1",
	DarumaFireWall:    "FireWall",
	DarumaIce:         "Ice",
	DarumaBoomerang:   "Boomerang",
}

func (d DarumaType) String() string {
	if int(d) < len(darumaNames) {
		return darumaNames[d]
	}
	return fmt.Sprintf("DarumaType(%d)", uint32(d))
}

// SplitKey returns the setting for unlocking this daruma
func (d DarumaType) SplitKey() (string, bool) {
	switch d {
	case DarumaBite:
		return "daruma_chomper", true
	case DarumaParry:
		return "daruma_mamori", true
	case DarumaThorns:
		return "daruma_toge_chan", true
	case DarumaSpirits:
		return "daruma_jingu", true
	case DarumaBomb:
		return "daruma_kaboomaru", true
	case DarumaFireWall:
		return "daruma_pyro_kun", true
	case DarumaIce:
		return "daruma_yuki", true
	case DarumaBoomerang:
		return "daruma_ken", true
	case DarumaSpinAttack, DarumaDeprecated1:
		return "", false
	}
	return "", false
}
