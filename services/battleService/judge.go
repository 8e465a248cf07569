package battleService

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"gachaCardBot/models"
	"gachaCardBot/services/common"
)

// RosterCard is the minimal card view sent to the judge.
type RosterCard struct {
	Name    string `json:"name"`
	Rarity  string `json:"rarity"`
	Attack  int    `json:"attack"`
	Defense int    `json:"defense"`
	Ability string `json:"ability"`
}

// Roster is one side of a battle.
type Roster struct {
	PlayerID uint         `json:"player_id"`
	Cards    []RosterCard `json:"cards"`
}

// Verdict is a judge's decision.
type Verdict struct {
	WinnerID  uint
	Narrative string
}

// Judge decides a battle between two rosters. Implementations may be slow
// and may return malformed output; callers bound the call with a context
// deadline and fall back deterministically.
type Judge interface {
	Judge(ctx context.Context, challenger, opponent Roster) (*Verdict, error)
}

// AIJudge calls an external AI endpoint to narrate and decide battles.
type AIJudge struct {
	URL    string
	APIKey string
	Client *http.Client
}

func NewAIJudge(url, apiKey string) *AIJudge {
	return &AIJudge{
		URL:    url,
		APIKey: apiKey,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

type judgeRequest struct {
	Prompt string `json:"prompt"`
}

type judgeResponse struct {
	Winner    string `json:"winner"`
	Narrative string `json:"narrative"`
}

// Judge posts the compact battle prompt and parses the winner. Any
// transport failure or unparseable body is an external-service error; the
// orchestrator degrades to a challenger win so a battle always resolves.
func (j *AIJudge) Judge(ctx context.Context, challenger, opponent Roster) (*Verdict, error) {
	payload, err := json.Marshal(judgeRequest{Prompt: buildPrompt(challenger, opponent)})
	if err != nil {
		return nil, common.Externalf("judge request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, common.Externalf("judge request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if j.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+j.APIKey)
	}

	resp, err := j.Client.Do(req)
	if err != nil {
		return nil, common.Externalf("judge call: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, common.Externalf("judge returned status %d", resp.StatusCode)
	}

	var decoded judgeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, common.Externalf("judge response: %v", err)
	}

	winnerID, ok := matchWinner(decoded.Winner, challenger.PlayerID, opponent.PlayerID)
	if !ok {
		return nil, common.Externalf("judge response names no recognizable winner: %q", decoded.Winner)
	}

	return &Verdict{WinnerID: winnerID, Narrative: decoded.Narrative}, nil
}

// matchWinner maps the judge's free-form winner field onto a player.
// "A"/attacker/challenger means the challenger, "B"/defender/opponent the
// opponent; a bare player ID is accepted too.
func matchWinner(winner string, challengerID, opponentID uint) (uint, bool) {
	w := strings.ToLower(strings.TrimSpace(winner))
	switch {
	case w == "a" || strings.Contains(w, "attacker") || strings.Contains(w, "challenger"):
		return challengerID, true
	case w == "b" || strings.Contains(w, "defender") || strings.Contains(w, "opponent"):
		return opponentID, true
	case w == fmt.Sprint(challengerID):
		return challengerID, true
	case w == fmt.Sprint(opponentID):
		return opponentID, true
	}
	return 0, false
}

func buildPrompt(challenger, opponent Roster) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Battle request.\nAttacker (A) ID:%d\n%s\n", challenger.PlayerID, formatCards(challenger))
	fmt.Fprintf(&b, "\nDefender (B) ID:%d\n%s\n", opponent.PlayerID, formatCards(opponent))
	b.WriteString("\nDecide the winner by the rules and respond as JSON: ")
	b.WriteString(`{"winner": "A or B", "narrative": "battle narration with the math"}`)
	return b.String()
}

func formatCards(roster Roster) string {
	lines := make([]string, len(roster.Cards))
	for i, card := range roster.Cards {
		lines[i] = fmt.Sprintf("- %s|%s|ATK:%d|DEF:%d|%s",
			card.Name, card.Rarity, card.Attack, card.Defense, card.Ability)
	}
	return strings.Join(lines, "\n")
}

// rosterCard converts a deck entry. Rarity rides along both as the ladder
// symbol and inside the numeric stats the judge weighs.
func rosterCard(card models.Card) RosterCard {
	attack, defense := 0, 0
	if card.Attack != nil {
		attack = *card.Attack
	}
	if card.Defense != nil {
		defense = *card.Defense
	}
	return RosterCard{
		Name:    card.Name,
		Rarity:  string(card.Rarity),
		Attack:  attack,
		Defense: defense,
		Ability: card.Description,
	}
}
