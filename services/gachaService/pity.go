package gachaService

import (
	"errors"

	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

// PityStatus reports a player's progress toward the pity guarantee.
type PityStatus struct {
	PoolID   uint
	PoolName string
	Current  int
	Max      int
}

// PityCount returns the pity counter for a (player, pool), creating the
// row at zero on first access.
func PityCount(db *gorm.DB, playerID, poolID uint) (*PityStatus, error) {
	var pool models.CardPool
	if err := db.First(&pool, poolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("pool %d", poolID)
		}
		return nil, err
	}

	var pity models.GachaPity
	result := db.FirstOrCreate(&pity, models.GachaPity{PlayerID: playerID, PoolID: poolID})
	if result.Error != nil {
		return nil, result.Error
	}

	return &PityStatus{
		PoolID:   poolID,
		PoolName: pool.Name,
		Current:  pity.PityCount,
		Max:      MaxPity,
	}, nil
}
