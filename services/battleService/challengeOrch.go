package battleService

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
	"gachaCardBot/services/ledgerService"
	"gachaCardBot/services/rankService"
)

// Orch runs the challenge lifecycle: PENDING on creation, ONGOING while
// the external judge deliberates, then COMPLETED together with the
// battle's ledger effects in one transaction. The judge call never runs
// inside an open transaction.
type Orch struct {
	judge   Judge
	ranks   *rankService.Engine
	timeout time.Duration
}

func NewOrch(judge Judge, ranks *rankService.Engine) *Orch {
	return &Orch{judge: judge, ranks: ranks, timeout: 60 * time.Second}
}

// CreateChallenge records a new challenge. Duels validate the
// challenger's wager up front; fees and the opponent's wager are checked
// at acceptance.
func (o *Orch) CreateChallenge(db *gorm.DB, challengerID, opponentID uint, mode models.PvPMode, bet int64) (*models.PvPChallenge, error) {
	if challengerID == opponentID {
		return nil, common.Validationf("cannot challenge yourself")
	}
	if mode != models.ModeDuel && bet != 0 {
		return nil, common.Validationf("only duels carry a bet")
	}
	if _, err := ledgerService.GetPlayer(db, challengerID); err != nil {
		return nil, err
	}
	if _, err := ledgerService.GetPlayer(db, opponentID); err != nil {
		return nil, err
	}
	if mode == models.ModeDuel {
		if err := o.ranks.ValidateBet(db, challengerID, bet); err != nil {
			return nil, err
		}
	}

	challenge := models.PvPChallenge{
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Bet:          bet,
		Status:       models.ChallengePending,
		Mode:         mode,
	}
	if err := db.Create(&challenge).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

// AcceptChallenge admits the battle: ranked players pay their daily fee
// and consume a play, duelists lock in their wagers. The charges and the
// PENDING to ONGOING flip commit together, under the challenge row lock,
// so a concurrent accept cannot charge twice.
func (o *Orch) AcceptChallenge(db *gorm.DB, challengeID, actorID uint) (*models.PvPChallenge, error) {
	var challenge models.PvPChallenge
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := lockChallenge(tx, challengeID, &challenge); err != nil {
			return err
		}
		if err := requireStatus(&challenge, models.ChallengePending); err != nil {
			return err
		}
		if challenge.OpponentID != actorID {
			return common.Validationf("player %d is not the opponent of challenge %d", actorID, challengeID)
		}

		switch challenge.Mode {
		case models.ModeRanked:
			for _, playerID := range []uint{challenge.ChallengerID, challenge.OpponentID} {
				fee, err := o.ranks.CheckDailyFee(tx, playerID)
				if err != nil {
					return err
				}
				if err := o.ranks.ChargeFee(tx, playerID, fee); err != nil {
					return err
				}
				if err := o.ranks.IncrementDailyPlays(tx, playerID); err != nil {
					return err
				}
			}
		case models.ModeDuel:
			for _, playerID := range []uint{challenge.ChallengerID, challenge.OpponentID} {
				if err := o.ranks.ValidateBet(tx, playerID, challenge.Bet); err != nil {
					return err
				}
			}
			for _, playerID := range []uint{challenge.ChallengerID, challenge.OpponentID} {
				if err := o.ranks.RecordBet(tx, playerID, challenge.Bet); err != nil {
					return err
				}
			}
		}

		challenge.Status = models.ChallengeOngoing
		return tx.Save(&challenge).Error
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// ResolveChallenge gathers rosters, asks the judge with a bounded
// deadline, then applies the outcome. A failed or malformed judgement
// defaults the winner to the challenger with an empty narrative, so a
// battle always resolves. The judge runs outside any transaction; the
// ledger effects and the COMPLETED flip then commit together under the
// challenge row lock, after re-verifying the row is still ONGOING, so a
// concurrent or retried resolution cannot pay out twice.
func (o *Orch) ResolveChallenge(ctx context.Context, db *gorm.DB, challengeID uint) (*models.PvPChallenge, error) {
	var challenge models.PvPChallenge
	if err := db.First(&challenge, challengeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("challenge %d", challengeID)
		}
		return nil, err
	}
	if err := requireStatus(&challenge, models.ChallengeOngoing); err != nil {
		return nil, err
	}

	challengerRoster, err := o.roster(db, challenge.ChallengerID)
	if err != nil {
		return nil, err
	}
	opponentRoster, err := o.roster(db, challenge.OpponentID)
	if err != nil {
		return nil, err
	}

	judgeCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	verdict, err := o.judge.Judge(judgeCtx, challengerRoster, opponentRoster)
	if err != nil {
		common.LogError(db, "battleService.ResolveChallenge", err)
		verdict = &Verdict{WinnerID: challenge.ChallengerID, Narrative: ""}
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockChallenge(tx, challengeID, &challenge); err != nil {
			return err
		}
		if err := requireStatus(&challenge, models.ChallengeOngoing); err != nil {
			return err
		}

		loserID := challenge.OpponentID
		if verdict.WinnerID != challenge.ChallengerID {
			loserID = challenge.ChallengerID
		}

		switch challenge.Mode {
		case models.ModeRanked:
			if _, err := o.ranks.ResolveRankedBattle(tx, verdict.WinnerID, loserID); err != nil {
				return err
			}
		case models.ModeDuel:
			if err := o.ranks.ResolveDuel(tx, verdict.WinnerID, loserID, challenge.Bet); err != nil {
				return err
			}
		}

		winnerID := verdict.WinnerID
		challenge.WinnerID = &winnerID
		challenge.Narrative = verdict.Narrative
		challenge.Status = models.ChallengeCompleted
		return tx.Save(&challenge).Error
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

// CancelChallenge aborts a challenge that has not completed. This is the
// administrative escape hatch for rows stuck ONGOING; nothing cancels
// them automatically.
func (o *Orch) CancelChallenge(db *gorm.DB, challengeID, actorID uint) (*models.PvPChallenge, error) {
	actor, err := ledgerService.GetPlayer(db, actorID)
	if err != nil {
		return nil, err
	}

	var challenge models.PvPChallenge
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := lockChallenge(tx, challengeID, &challenge); err != nil {
			return err
		}
		if challenge.Status == models.ChallengeCompleted || challenge.Status == models.ChallengeCancelled {
			return common.Preconditionf("challenge %d is already %s", challengeID, challenge.Status)
		}
		participant := actorID == challenge.ChallengerID || actorID == challenge.OpponentID
		if challenge.Status == models.ChallengeOngoing && !actor.IsAdmin {
			return common.Validationf("only an admin can cancel an ongoing challenge")
		}
		if !participant && !actor.IsAdmin {
			return common.Validationf("player %d is not part of challenge %d", actorID, challengeID)
		}
		challenge.Status = models.ChallengeCancelled
		return tx.Save(&challenge).Error
	})
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (o *Orch) roster(db *gorm.DB, playerID uint) (Roster, error) {
	deck, err := ledgerService.PlayerDeck(db, playerID)
	if err != nil {
		return Roster{}, err
	}
	roster := Roster{PlayerID: playerID}
	for _, slot := range deck {
		roster.Cards = append(roster.Cards, rosterCard(slot.Card))
	}
	return roster, nil
}

func requireStatus(challenge *models.PvPChallenge, want models.PvPStatus) error {
	if challenge.Status != want {
		return common.Preconditionf("challenge %d is %s, not %s", challenge.ID, challenge.Status, want)
	}
	return nil
}

func lockChallenge(tx *gorm.DB, challengeID uint, challenge *models.PvPChallenge) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(challenge, challengeID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.NotFoundf("challenge %d", challengeID)
	}
	return err
}
