package game

import (
	"cmp"
	"fmt"

	"bosplit/binder"
	"bosplit/process"
	"bosplit/remote_array"
	"bosplit/settings"
	"bosplit/tracker"
)

// BossAliases returns the built-in boss aliases. None are needed for the
// current game version; the settings file can add some.
func BossAliases() []settings.BossAlias {
	return nil
}

// BossKeyer names boss list slots. A boss matching an alias by kind and
// total health is keyed by the alias, every other boss by its kind.
type BossKeyer struct {
	aliases []settings.BossAlias
}

func NewBossKeyer(aliases []settings.BossAlias) *BossKeyer {
	return &BossKeyer{aliases: aliases}
}

// SetAliases replaces the aliases used from the next poll on
func (k *BossKeyer) SetAliases(aliases []settings.BossAlias) {
	k.aliases = aliases
}

func (k *BossKeyer) Key(b BossData) string {
	name := b.Boss.String()
	for _, a := range k.aliases {
		if a.Kind == name && a.TotalHealth == b.TotalHealth {
			return a.Alias
		}
	}
	return name
}

// BossTieBreak orders bosses sharing a key by total health
func BossTieBreak(a, b BossData) int {
	return cmp.Compare(a.TotalHealth, b.TotalHealth)
}

func darumaKey(d Daruma) string {
	return d.Type.String()
}

// Classes holds a bound reader per tracked class
type Classes struct {
	GameManager           *binder.Class[GameManager]
	QuestManager          *binder.Class[QuestManager]
	AbilityManager        *binder.Class[AbilityManager]
	InventoryContainer    *binder.Class[InventoryContainer]
	BetaPlayerDataManager *binder.Class[BetaPlayerDataManager]
	EnemiesManager        *binder.Class[EnemiesManager]
	BossData              *binder.Class[BossData]
	DarumaManager         *binder.Class[DarumaManager]
	Daruma                *binder.Class[Daruma]
}

// Bind resolves every record type against the layout. Any missing class or
// field is a bind failure.
func Bind(layout *binder.Layout) (*Classes, error) {
	var (
		c   Classes
		err error
	)

	if c.GameManager, err = binder.Bind[GameManager](layout, ClassGameManager); err != nil {
		return nil, err
	}
	if c.QuestManager, err = binder.Bind[QuestManager](layout, ClassQuestManager); err != nil {
		return nil, err
	}
	if c.AbilityManager, err = binder.Bind[AbilityManager](layout, ClassAbilityManager); err != nil {
		return nil, err
	}
	if c.InventoryContainer, err = binder.Bind[InventoryContainer](layout, ClassInventoryContainer); err != nil {
		return nil, err
	}
	if c.BetaPlayerDataManager, err = binder.Bind[BetaPlayerDataManager](layout, ClassBetaPlayerDataManager); err != nil {
		return nil, err
	}
	if c.EnemiesManager, err = binder.Bind[EnemiesManager](layout, ClassEnemiesManager); err != nil {
		return nil, err
	}
	if c.BossData, err = binder.Bind[BossData](layout, ClassBossData); err != nil {
		return nil, err
	}
	if c.DarumaManager, err = binder.Bind[DarumaManager](layout, ClassDarumaManager); err != nil {
		return nil, err
	}
	if c.Daruma, err = binder.Bind[Daruma](layout, ClassDaruma); err != nil {
		return nil, err
	}

	return &c, nil
}

// ReadBosses reads the boss list of an array of BossData pointers at addr
func (c *Classes) ReadBosses(proc process.ProcessRead, addr process.ProcessMemoryAddress) ([]BossData, error) {
	return remote_array.ReadClass[BossData](proc, remote_array.New[process.ProcessMemoryAddress](addr), c.BossData.Read)
}

// ReadDarumas reads the daruma list of an array of Daruma pointers at addr
func (c *Classes) ReadDarumas(proc process.ProcessRead, addr process.ProcessMemoryAddress) ([]Daruma, error) {
	return remote_array.ReadClass[Daruma](proc, remote_array.New[process.ProcessMemoryAddress](addr), c.Daruma.Read)
}

// Nodes are the tracked objects of one session
type Nodes struct {
	GameManager *tracker.Entity[GameManager]
	PlayerData  *tracker.Entity[BetaPlayerDataManager]
	Bosses      *tracker.Collection[BossData]
	Darumas     *tracker.Collection[Daruma]
}

// Track registers the object graph with engine. GameManager is the only
// root; every manager hangs off one of its pointer fields and the lists
// hang off their managers.
func Track(engine *tracker.Engine, c *Classes, keyer *BossKeyer) (*Nodes, error) {
	gm := tracker.NewEntity[GameManager](ClassGameManager, c.GameManager.Read)
	quests := tracker.NewEntity[QuestManager](ClassQuestManager, c.QuestManager.Read)
	abilities := tracker.NewEntity[AbilityManager](ClassAbilityManager, c.AbilityManager.Read)
	inventory := tracker.NewEntity[InventoryContainer](ClassInventoryContainer, c.InventoryContainer.Read)
	player := tracker.NewEntity[BetaPlayerDataManager](ClassBetaPlayerDataManager, c.BetaPlayerDataManager.Read)
	enemies := tracker.NewEntity[EnemiesManager](ClassEnemiesManager, c.EnemiesManager.Read)
	darumaManager := tracker.NewEntity[DarumaManager](ClassDarumaManager, c.DarumaManager.Read)
	bosses := tracker.NewCollection[BossData](EntityBosses, c.ReadBosses, keyer.Key, BossTieBreak)
	darumas := tracker.NewCollection[Daruma](EntityDarumas, c.ReadDarumas, darumaKey, nil)

	steps := []func() error{
		func() error { return engine.Register(gm) },
		func() error {
			return engine.RegisterDependent(quests, ClassGameManager, tracker.LinkField(gm, func(g GameManager) process.ProcessMemoryAddress { return g.QuestManager }))
		},
		func() error {
			return engine.RegisterDependent(abilities, ClassGameManager, tracker.LinkField(gm, func(g GameManager) process.ProcessMemoryAddress { return g.AbilityManager }))
		},
		func() error {
			return engine.RegisterDependent(inventory, ClassGameManager, tracker.LinkField(gm, func(g GameManager) process.ProcessMemoryAddress { return g.InventoryContainer }))
		},
		func() error {
			return engine.RegisterDependent(player, ClassGameManager, tracker.LinkField(gm, func(g GameManager) process.ProcessMemoryAddress { return g.BetaDataManager }))
		},
		func() error {
			return engine.RegisterDependent(enemies, ClassGameManager, tracker.LinkField(gm, func(g GameManager) process.ProcessMemoryAddress { return g.EnemiesManager }))
		},
		func() error {
			return engine.RegisterDependent(bosses, ClassEnemiesManager, tracker.LinkField(enemies, func(e EnemiesManager) process.ProcessMemoryAddress { return e.Bosses }))
		},
		func() error {
			return engine.RegisterDependent(darumaManager, ClassGameManager, tracker.LinkField(gm, func(g GameManager) process.ProcessMemoryAddress { return g.DarumaManager }))
		},
		func() error {
			return engine.RegisterDependent(darumas, ClassDarumaManager, tracker.LinkField(darumaManager, func(d DarumaManager) process.ProcessMemoryAddress { return d.AllDarumas }))
		},
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, fmt.Errorf("track: %w", err)
		}
	}

	return &Nodes{GameManager: gm, PlayerData: player, Bosses: bosses, Darumas: darumas}, nil
}
