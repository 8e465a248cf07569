package models

import "gorm.io/gorm"

type CardRarity string

const (
	RarityC   CardRarity = "C"
	RarityR   CardRarity = "R"
	RaritySR  CardRarity = "SR"
	RaritySSR CardRarity = "SSR"
	RarityUR  CardRarity = "UR"
	RarityLR  CardRarity = "LR"
	RarityEX  CardRarity = "EX"
)

var rarityValues = map[CardRarity]int{
	RarityC:   1,
	RarityR:   2,
	RaritySR:  3,
	RaritySSR: 4,
	RarityUR:  5,
	RarityLR:  6,
	RarityEX:  7,
}

// Value returns the rarity's position on the ladder C < R < SR < SSR < UR < LR < EX.
// Unknown rarities sort below C.
func (r CardRarity) Value() int {
	return rarityValues[r]
}

// AtLeastSSR reports whether the rarity qualifies as a high-rarity hit
// for pity accounting.
func (r CardRarity) AtLeastSSR() bool {
	return r.Value() >= RaritySSR.Value()
}

type Card struct {
	gorm.Model
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"index; size:100"`
	Description string
	ImageURL    string
	Rarity      CardRarity `gorm:"size:8; index"`
	Attack      *int
	Defense     *int
	Price       int64
}
