package constants

import "time"

// Frequency is how often a habit must be completed
type Frequency string

// Stage is a tree growth milestone
type Stage string

// Rarity is the drop tier of a catalog item
type Rarity string

// Category is the kind of catalog item
type Category string

// GrowthKind labels a growth log entry
type GrowthKind string

const (
	AppName            = "tandrum"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/tandrum/tandrum.db"
	Version            = "v0.3.0"

	// KeyringConfigValue tells the CLI to read the connection string from the OS keyring
	KeyringConfigValue = "keyring"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "tandrum-"
	BackupFileSuffix = ".db"

	// SQLite connection tuning
	SQLiteBusyTimeout = 5 * time.Second

	// Habit title bounds (in characters, after trimming)
	HabitTitleMin = 3
	HabitTitleMax = 50

	// Frequency constants
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"

	// Stage constants, in growth order
	StageSapling Stage = "tree-1"
	StageSprout  Stage = "tree-1.5"
	StageYoung   Stage = "tree-2"
	StageMature  Stage = "tree-3"
	StageElder   Stage = "tree-4"

	// Rarity constants, most common first
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"

	// Category constants
	CategoryLeaf  Category = "leaf"
	CategoryFruit Category = "fruit"

	// Growth log kinds
	GrowthCheckin    GrowthKind = "checkin"
	GrowthReward     GrowthKind = "reward"
	GrowthStage      GrowthKind = "stage"
	GrowthDecoration GrowthKind = "decoration"
	GrowthAdmin      GrowthKind = "admin"
)

// Stages lists every stage in growth order.
var Stages = []Stage{StageSapling, StageSprout, StageYoung, StageMature, StageElder}

// Rarities lists every rarity from most to least common.
var Rarities = []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}

// Valid reports whether f is a known frequency
func (f Frequency) Valid() bool {
	return f == FrequencyDaily || f == FrequencyWeekly
}

// Index returns the position of the stage in growth order, or -1 if unknown
func (s Stage) Index() int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a known rarity
func (r Rarity) Valid() bool {
	for _, known := range Rarities {
		if known == r {
			return true
		}
	}
	return false
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return c == CategoryLeaf || c == CategoryFruit
}
