package rankService

import (
	"errors"
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

// Engine maintains weekly leaderboards, score transfer, fee and bet
// schedules. The clock is injected so day and week boundaries are
// testable; all boundaries use the fixed UTC+8 offset.
type Engine struct {
	clock common.Clock
}

func New(clock common.Clock) *Engine {
	return &Engine{clock: clock}
}

// CurrentWeek is the Monday-anchored UTC+8 week index.
func (e *Engine) CurrentWeek() int {
	return common.CurrentWeek(e.clock())
}

// PlayerRank returns the rank row for (player, week), creating it lazily
// with 50 points on first access.
func (e *Engine) PlayerRank(db *gorm.DB, playerID uint, week int) (*models.PvPRank, error) {
	var rank models.PvPRank
	err := db.Where("player_id = ? AND week = ?", playerID, week).First(&rank).Error
	if err == nil {
		return &rank, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	rank = models.PvPRank{
		PlayerID:       playerID,
		Week:           week,
		Points:         50,
		ScoreUpdatedAt: e.clock(),
	}
	if err := db.Create(&rank).Error; err != nil {
		return nil, err
	}
	return &rank, nil
}

func (e *Engine) lockPlayerRank(tx *gorm.DB, playerID uint, week int) (*models.PvPRank, error) {
	if _, err := e.PlayerRank(tx, playerID, week); err != nil {
		return nil, err
	}
	var rank models.PvPRank
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("player_id = ? AND week = ?", playerID, week).
		First(&rank).Error
	if err != nil {
		return nil, err
	}
	return &rank, nil
}

// LeaderboardEntry is one row of the weekly standings.
type LeaderboardEntry struct {
	Rank     int
	PlayerID uint
	Points   int
}

// Leaderboard returns up to limit entries for a week, ordered by points
// descending with earlier score_updated_at breaking ties.
func (e *Engine) Leaderboard(db *gorm.DB, week, limit int) ([]LeaderboardEntry, error) {
	var ranks []models.PvPRank
	err := db.Where("week = ?", week).
		Order("points DESC, score_updated_at ASC").
		Limit(limit).
		Find(&ranks).Error
	if err != nil {
		return nil, err
	}
	entries := make([]LeaderboardEntry, len(ranks))
	for i, rank := range ranks {
		entries[i] = LeaderboardEntry{Rank: i + 1, PlayerID: rank.PlayerID, Points: rank.Points}
	}
	return entries, nil
}

// LeaderboardRank returns a player's 1-indexed standing: 1 plus the count
// of players with strictly more points, or equal points scored earlier.
func (e *Engine) LeaderboardRank(db *gorm.DB, playerID uint, week int) (int, error) {
	rank, err := e.PlayerRank(db, playerID, week)
	if err != nil {
		return 0, err
	}
	var higher int64
	err = db.Model(&models.PvPRank{}).
		Where("week = ? AND (points > ? OR (points = ? AND score_updated_at < ?))",
			week, rank.Points, rank.Points, rank.ScoreUpdatedAt).
		Count(&higher).Error
	if err != nil {
		return 0, err
	}
	return int(higher) + 1, nil
}

// ScoreChange computes the points the winner takes from the loser, from
// their 1-indexed ranks before the battle. Capped by the loser's points.
func ScoreChange(winnerRank, loserRank, loserPoints int) int {
	rankDiff := loserRank - winnerRank

	var change int
	switch {
	case rankDiff > 50:
		// Beating someone far below you is worth almost nothing.
		change = 1
	case rankDiff > 0:
		change = rankDiff
		if change > 50 {
			change = 50
		}
	default:
		abs := -rankDiff
		change = int(math.Ceil(float64(50-abs) / 2))
	}

	if change > loserPoints {
		change = loserPoints
	}
	return change
}

// Stakes previews what each side of a ranked battle stands to win.
type Stakes struct {
	ChallengerID        uint
	OpponentID          uint
	ChallengerRank      int
	OpponentRank        int
	ChallengerPoints    int
	OpponentPoints      int
	ChallengerWinsStake int
	OpponentWinsStake   int
	ChallengerCanAfford bool
	OpponentCanAfford   bool
}

// CalculateStakes computes both outcomes of a prospective ranked battle.
func (e *Engine) CalculateStakes(db *gorm.DB, challengerID, opponentID uint) (*Stakes, error) {
	week := e.CurrentWeek()

	challenger, err := e.PlayerRank(db, challengerID, week)
	if err != nil {
		return nil, err
	}
	opponent, err := e.PlayerRank(db, opponentID, week)
	if err != nil {
		return nil, err
	}
	challengerRank, err := e.LeaderboardRank(db, challengerID, week)
	if err != nil {
		return nil, err
	}
	opponentRank, err := e.LeaderboardRank(db, opponentID, week)
	if err != nil {
		return nil, err
	}

	challengerStake := ScoreChange(challengerRank, opponentRank, opponent.Points)
	opponentStake := ScoreChange(opponentRank, challengerRank, challenger.Points)

	return &Stakes{
		ChallengerID:        challengerID,
		OpponentID:          opponentID,
		ChallengerRank:      challengerRank,
		OpponentRank:        opponentRank,
		ChallengerPoints:    challenger.Points,
		OpponentPoints:      opponent.Points,
		ChallengerWinsStake: challengerStake,
		OpponentWinsStake:   opponentStake,
		ChallengerCanAfford: challenger.Points >= opponentStake,
		OpponentCanAfford:   opponent.Points >= challengerStake,
	}, nil
}
