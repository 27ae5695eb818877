// Package game describes Bo's managed objects and which of their changes
// count as splits.
package game

import (
	"bosplit/process"
)

// Class names as they appear in the layout file
const (
	ClassGameManager           = "GameManager"
	ClassQuestManager          = "QuestManager"
	ClassAbilityManager        = "AbilityManager"
	ClassInventoryContainer    = "InventoryContainer"
	ClassBetaPlayerDataManager = "BetaPlayerDataManager"
	ClassEnemiesManager        = "EnemiesManager"
	ClassBossData              = "BossData"
	ClassDarumaManager         = "DarumaManager"
	ClassDaruma                = "Daruma"
)

// GameManager is the root singleton. Its pointer fields own every other
// tracked object.
type GameManager struct {
	FromMainMenu         bool                         `field:"<FromMainMenu>k__BackingField"`
	ElevatorEntranceUp   bool                         `field:"<ElevatorEntranceUp>k__BackingField"`
	ElevatorFloor1Up     bool                         `field:"<ElevatorFloor1Up>k__BackingField"`
	ElevatorFloor1Down   bool                         `field:"<ElevatorFloor1Down>k__BackingField"`
	ElevatorFloor2Up     bool                         `field:"<ElevatorFloor2Up>k__BackingField"`
	ElevatorFloor2Down   bool                         `field:"<ElevatorFloor2Down>k__BackingField"`
	ElevatorFloor3Up     bool                         `field:"<ElevatorFloor3Up>k__BackingField"`
	ElevatorFloor3Down   bool                         `field:"<ElevatorFloor3Down>k__BackingField"`
	VerticalChaseStarted bool                         `field:"<VerticalChaseStarted>k__BackingField"`
	LoadGame             bool                         `field:"<loadGame>k__BackingField"`
	FromInGame           bool                         `field:"<fromInGame>k__BackingField"`
	IsQuittingGame       bool                         `field:"<isQuittingGame>k__BackingField"`
	BossPercentage       float32                      `field:"<BossPercentage>k__BackingField"`
	QuestManager         process.ProcessMemoryAddress `field:"<QuestManager>k__BackingField"`
	AbilityManager       process.ProcessMemoryAddress `field:"abilityManager"`
	BetaDataManager      process.ProcessMemoryAddress `field:"betaDataManager"`
	InventoryContainer   process.ProcessMemoryAddress `field:"inventoryContainer"`
	EnemiesManager       process.ProcessMemoryAddress `field:"enemiesManager"`
	DarumaManager        process.ProcessMemoryAddress `field:"darumaManager"`
	IsQABuild            bool                         `field:"<IsQABuild>k__BackingField"`
	SavingShrinePos      [2]float32                   `field:"<savingShrinePos>k__BackingField"`
}

type QuestManager struct {
	AsahiStaffStarted          bool  `field:"<AsahiBambooStaffQuestStarted>k__BackingField"`
	AsahiStaffCompleted        bool  `field:"<AsahiBambooStaffQuestCompleted>k__BackingField"`
	AsahiEyeOfBeastStarted     bool  `field:"<AsahiEyeOfTheBeastQuestStarted>k__BackingField"`
	AsahiEyeOfBeastCompleted   bool  `field:"<AsahiEyeOfTheBeastQuestCompleted>k__BackingField"`
	AsahiAfterArmapilloBoss    bool  `field:"<AsahiAfterArmapilloBoss>k__BackingField"`
	ToriBumpProphecyTold       bool  `field:"<ToriBumpProphecyTold>k__BackingField"`
	ToriBumpProphecyFulfilled  bool  `field:"<ToriFulfilledBumpProphecy>k__BackingField"`
	ToriBatProphecyTold        bool  `field:"<ToriBatProphecyTold>k__BackingField"`
	ToriBatProphecyFulfilled   bool  `field:"<ToriFulfilledBatProphecy>k__BackingField"`
	ToriDashProphecyTold       bool  `field:"<ToriDashProphecyTold>k__BackingField"`
	ToriDashProphecyFulfilled  bool  `field:"<ToriFulfilledDashProphecy>k__BackingField"`
	ShimejiArmapillosCollected int32 `field:"<ShimejiArmapillosCollected>k__BackingField"`
	ShimejiQuestStarted        bool  `field:"<ShimejiQuestStarted>k__BackingField"`
	ShimejiQuestCompleted      bool  `field:"<ShimejiQuestCompleted>k__BackingField"`
	RozusRequiemStarted        bool  `field:"<RozusRequiemQuestStarted>k__BackingField"`
	RozusRequiemCompleted      bool  `field:"<RozusRequiemQuestCompleted>k__BackingField"`
	FoxWeddingStarted          bool  `field:"<KitsuneKifudaQuestStarted>k__BackingField"`
	FoxWeddingGroomSaved       bool  `field:"<GroomAscentCompleted>k__BackingField"`
	FoxWeddingCompleted        bool  `field:"<KitsuneKifudaQuestCompleted>k__BackingField"`
	VermilionStrangerStarted   bool  `field:"<VermillionStrangerQuestStarted>k__BackingField"`
	VermilionStrangerCompleted bool  `field:"<VSQuestCompleted>k__BackingField"`
	FirstFeatherKeyEntered     bool  `field:"<FirstFeatherKeyEntered>k__BackingField"`
	SecondFeatherKeyEntered    bool  `field:"<SecondFeatherKeyEntered>k__BackingField"`
	DefeatedPUA                bool  `field:"<DefeatedPUABoss>k__BackingField"`
	DefeatedHashihime          bool  `field:"<HashihimeDefeated>k__BackingField"`
	DefeatedYokozuna           bool  `field:"<YokozumaCompleted>k__BackingField"`
	DefeatedJorogumo           bool  `field:"<DefeatedJorogumo>k__BackingField"`
	TenguTrialCompleted        bool  `field:"<TenguTrialQuestCompleted>k__BackingField"`
	DefeatedGasha              bool  `field:"<GashaDefeated>k__BackingField"`
	DefeatedAsahi              bool  `field:"<AsahiDefeated>k__BackingField"`
	DefeatedShogun             bool  `field:"<ShogunDefeated>k__BackingField"`
	PostGame                   bool  `field:"<PostGame>k__BackingField"`
}

type AbilityManager struct {
	CanAttack     bool `field:"<CanAttack>k__BackingField"`
	CanBat        bool `field:"<CanBat>k__BackingField"`
	CanDash       bool `field:"<CanDash>k__BackingField"`
	CanHover      bool `field:"<CanHover>k__BackingField"`
	CanIDash      bool `field:"<CanIDash>k__BackingField"`
	CanGrapple    bool `field:"<CanGrapple>k__BackingField"`
	CanHammerDash bool `field:"<CanHammerDash>k__BackingField"`
	CanWallJump   bool `field:"<CanWallJump>k__BackingField"`
}

type InventoryContainer struct {
	FeatherKeys      int32   `field:"<FeatherKeys>k__BackingField"`
	MusicSheets      int32   `field:"<MusicSheet>k__BackingField"`
	OmamoriStraps    int32   `field:"<OmamoriStraps>k__BackingField"`
	HasFragileEgg    bool    `field:"<HasFragileEgg>k__BackingField"`
	ResetForNewGame  bool    `field:"<ResetForNewGame>k__BackingField"`
	HasKitsuneKifuda bool    `field:"<HasKitsuneKifuda>k__BackingField"`
	BaseDamage       float32 `field:"<BaseDamage>k__BackingField"`
	TabletFragments  int32   `field:"<InscrutableTableFragment>k__BackingField"`
}

// BetaPlayerDataManager holds the in-game clock. TimePlayed stops advancing
// during loads.
type BetaPlayerDataManager struct {
	TimePlayed float32 `field:"<TimePlayed>k__BackingField"`
}

type EnemiesManager struct {
	CurrentStaffDamage float32                      `field:"<CurrentStaffDamage>k__BackingField"`
	Bosses             process.ProcessMemoryAddress `field:"bosses"`
}

type BossData struct {
	Boss               BossKind `field:"<Boss>k__BackingField"`
	Defeated           bool     `field:"<Defeated>k__BackingField"`
	InProgress         bool     `field:"<InProgress>k__BackingField"`
	TotalHealth        float32  `field:"<TotalHealth>k__BackingField"`
	OverrideInProgress bool     `field:"<OverrideInProgress>k__BackingField"`
}

type DarumaManager struct {
	BoostDamageIncrease float32                      `field:"<DarumaBoostDamageIncrease>k__BackingField"`
	AllDarumas          process.ProcessMemoryAddress `field:"allDarumas"`
}

type Daruma struct {
	Type            DarumaType `field:"<Type>k__BackingField"`
	Available       bool       `field:"<Available>k__BackingField"`
	IsActive        bool       `field:"<isActive>k__BackingField"`
	TwoEyes         bool       `field:"<TwoEyes>k__BackingField"`
	Stage1TeaCost   int32      `field:"<Stage1TeaCost>k__BackingField"`
	Stage2TeaCost   int32      `field:"<Stage2TeaCost>k__BackingField"`
	Stage3TeaCost   int32      `field:"<Stage3TeaCost>k__BackingField"`
	Stage1Damage    float32    `field:"<Stage1Damage>k__BackingField"`
	Stage2Damage    float32    `field:"<Stage2Damage>k__BackingField"`
	Stage3Damage    float32    `field:"<Stage3Damage>k__BackingField"`
	Stage1Duration  float32    `field:"<Stage1Duration>k__BackingField"`
	Stage2Duration  float32    `field:"<Stage2Duration>k__BackingField"`
	Stage3Duration  float32    `field:"<Stage3Duration>k__BackingField"`
	TimeBetweenHits float32    `field:"<TimeBetweenHits>k__BackingField"`
}
