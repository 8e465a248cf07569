package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"gorm.io/gorm"

	"gachaCardBot/models"
	"gachaCardBot/services/battleService"
	"gachaCardBot/services/common"
	"gachaCardBot/services/gachaService"
	"gachaCardBot/services/ledgerService"
	"gachaCardBot/services/rankService"
	"gachaCardBot/services/shopService"
	"gachaCardBot/services/tradeService"
)

// Orch is the slash-command boundary. It resolves Discord users to ledger
// players and delegates to the engines; all game rules live below it.
type Orch struct {
	Gacha   *gachaService.Engine
	Ranks   *rankService.Engine
	Battles *battleService.Orch
}

func (o *Orch) HandleSlashCommand(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	switch i.ApplicationCommandData().Name {
	case "balance":
		o.showBalance(s, i, db)
	case "gacha":
		o.pullGacha(s, i, db)
	case "pity":
		o.showPity(s, i, db)
	case "collection":
		o.showCollection(s, i, db)
	case "deck":
		o.showDeck(s, i, db)
	case "deck-set":
		o.setDeckSlot(s, i, db)
	case "deck-remove":
		o.removeDeckSlot(s, i, db)
	case "trade":
		o.createTrade(s, i, db)
	case "trades":
		o.listTrades(s, i, db)
	case "trade-accept":
		o.actOnTrade(s, i, db, tradeService.Accept)
	case "trade-reject":
		o.actOnTrade(s, i, db, tradeService.Reject)
	case "trade-cancel":
		o.actOnTrade(s, i, db, tradeService.Cancel)
	case "pvp-rank":
		o.showLeaderboard(s, i, db)
	case "pvp-stakes":
		o.showStakes(s, i, db)
	case "pvp-challenge":
		o.createChallenge(s, i, db)
	case "pvp-accept":
		o.acceptChallenge(s, i, db)
	case "shop":
		o.showShop(s, i, db)
	case "buy":
		o.buyItem(s, i, db)
	}
}

func (o *Orch) showBalance(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("You have **%d** currency.", player.Currency), true)
}

func (o *Orch) pullGacha(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	poolID := uint(options[0].IntValue())
	count := 1
	if len(options) > 1 {
		count = int(options[1].IntValue())
	}

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	results, remaining, err := o.Gacha.Pull(db, player.ID, poolID, count)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	var lines []string
	for _, result := range results {
		line := fmt.Sprintf("**%s** (%s)", result.CardName, result.Rarity)
		if result.WasPity {
			line += " ✨ guaranteed"
		}
		lines = append(lines, line)
	}
	respond(s, i, fmt.Sprintf("%s\nRemaining currency: **%d**", strings.Join(lines, "\n"), remaining), false)
}

func (o *Orch) showPity(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	poolID := uint(options[0].IntValue())

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	status, err := gachaService.PityCount(db, player.ID, poolID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("%s: **%d** / %d pulls toward the guarantee.",
		status.PoolName, status.Current, status.Max), true)
}

func (o *Orch) showCollection(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	rows, err := ledgerService.PlayerInventory(db, player.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	if len(rows) == 0 {
		respond(s, i, "Your collection is empty. Try `/gacha`!", true)
		return
	}

	var lines []string
	for _, row := range rows {
		switch row.Kind {
		case models.InventoryCard:
			var card models.Card
			if err := db.First(&card, *row.CardID).Error; err != nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("`#%d` **%s** (%s) ×%d", card.ID, card.Name, card.Rarity, row.Quantity))
		case models.InventoryItem:
			var item models.ShopItem
			if err := db.First(&item, *row.ItemID).Error; err != nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("`#%d` %s ×%d", item.ID, item.Name, row.Quantity))
		}
	}
	respond(s, i, "**Your collection**\n"+strings.Join(lines, "\n"), true)
}

func (o *Orch) showDeck(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	deck, err := ledgerService.PlayerDeck(db, player.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	filled := make(map[int]models.DeckCard, len(deck))
	for _, slot := range deck {
		filled[slot.Position] = slot
	}
	var lines []string
	for pos := 1; pos <= models.DeckSize; pos++ {
		if slot, ok := filled[pos]; ok {
			lines = append(lines, fmt.Sprintf("%d. **%s** (%s)", pos, slot.Card.Name, slot.Card.Rarity))
		} else {
			lines = append(lines, fmt.Sprintf("%d. _empty_", pos))
		}
	}
	respond(s, i, "**Your deck**\n"+strings.Join(lines, "\n"), true)
}

func (o *Orch) setDeckSlot(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	cardID := uint(options[0].IntValue())
	position := int(options[1].IntValue())

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		_, err := ledgerService.SetDeckSlot(tx, player.ID, cardID, position)
		return err
	})
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("Card `#%d` equipped in slot %d.", cardID, position), true)
}

func (o *Orch) removeDeckSlot(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	position := int(options[0].IntValue())

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	var removed bool
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		removed, err = ledgerService.RemoveDeckSlot(tx, player.ID, position)
		return err
	})
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	if !removed {
		respond(s, i, fmt.Sprintf("Slot %d was already empty.", position), true)
		return
	}
	respond(s, i, fmt.Sprintf("Slot %d cleared.", position), true)
}

func (o *Orch) createTrade(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	targetUser := options[0].UserValue(s)
	offeredCardID := uint(options[1].IntValue())

	req := tradeService.CreateRequest{OfferedCardID: offeredCardID}
	for _, option := range options[2:] {
		switch option.Name {
		case "for-card":
			id := uint(option.IntValue())
			req.RequestedCardID = &id
		case "for-price":
			price := option.IntValue()
			req.Price = &price
		}
	}

	proposer, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	receiver, err := ledgerService.GetOrCreatePlayer(db, targetUser.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	req.ProposerID = proposer.ID
	req.ReceiverID = receiver.ID

	trade, err := tradeService.Create(db, req)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("Trade **#%d** proposed to <@%s>.", trade.ID, targetUser.ID), false)
}

func (o *Orch) actOnTrade(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB, act func(*gorm.DB, uint, uint) (*models.Trade, error)) {
	options := i.ApplicationCommandData().Options
	tradeID := uint(options[0].IntValue())

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	trade, err := act(db, tradeID, player.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("Trade **#%d** is now %s.", trade.ID, trade.Status), false)
}

func (o *Orch) listTrades(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	pending := models.TradePending
	trades, err := tradeService.ListPlayerTrades(db, player.ID, &pending)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	if len(trades) == 0 {
		respond(s, i, "No open trades.", true)
		return
	}

	var lines []string
	for _, trade := range trades {
		direction := "outgoing"
		if trade.ReceiverID == player.ID {
			direction = "incoming"
		}
		var terms string
		if trade.RequestedCardID != nil {
			terms = fmt.Sprintf("card `#%d` for card `#%d`", trade.OfferedCardID, *trade.RequestedCardID)
		} else {
			terms = fmt.Sprintf("card `#%d` for %d currency", trade.OfferedCardID, *trade.Price)
		}
		lines = append(lines, fmt.Sprintf("`#%d` (%s) %s", trade.ID, direction, terms))
	}
	respond(s, i, "**Open trades**\n"+strings.Join(lines, "\n"), true)
}

func (o *Orch) showStakes(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	targetUser := options[0].UserValue(s)

	challenger, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	opponent, err := ledgerService.GetOrCreatePlayer(db, targetUser.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	stakes, err := o.Ranks.CalculateStakes(db, challenger.ID, opponent.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf(
		"You are rank %d (%d pts), <@%s> is rank %d (%d pts).\nYou win: **+%d** pts. They win: **-%d** pts.",
		stakes.ChallengerRank, stakes.ChallengerPoints, targetUser.ID,
		stakes.OpponentRank, stakes.OpponentPoints,
		stakes.ChallengerWinsStake, stakes.OpponentWinsStake), true)
}

func (o *Orch) showLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	entries, err := o.Ranks.Leaderboard(db, o.Ranks.CurrentWeek(), 10)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	if len(entries) == 0 {
		respond(s, i, "No ranked battles this week yet.", true)
		return
	}

	var lines []string
	for _, entry := range entries {
		var player models.Player
		name := fmt.Sprintf("player %d", entry.PlayerID)
		if err := db.First(&player, entry.PlayerID).Error; err == nil {
			name = fmt.Sprintf("<@%s>", player.DiscordID)
		}
		lines = append(lines, fmt.Sprintf("%d. %s — %d pts", entry.Rank, name, entry.Points))
	}
	respond(s, i, "**PvP Leaderboard**\n"+strings.Join(lines, "\n"), false)
}

func (o *Orch) createChallenge(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	targetUser := options[0].UserValue(s)
	mode := models.PvPMode(strings.ToUpper(options[1].StringValue()))
	var bet int64
	if len(options) > 2 {
		bet = options[2].IntValue()
	}

	challenger, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	opponent, err := ledgerService.GetOrCreatePlayer(db, targetUser.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	challenge, err := o.Battles.CreateChallenge(db, challenger.ID, opponent.ID, mode, bet)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("<@%s> you have a new %s challenge (**#%d**) from <@%s>!",
		targetUser.ID, challenge.Mode, challenge.ID, i.Member.User.ID), false)
}

func (o *Orch) acceptChallenge(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	challengeID := uint(options[0].IntValue())

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	if _, err := o.Battles.AcceptChallenge(db, challengeID, player.ID); err != nil {
		sendError(s, i, err, db)
		return
	}

	challenge, err := o.Battles.ResolveChallenge(context.Background(), db, challengeID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	var winner models.Player
	winnerText := "the challenger"
	if challenge.WinnerID != nil {
		if err := db.First(&winner, *challenge.WinnerID).Error; err == nil {
			winnerText = fmt.Sprintf("<@%s>", winner.DiscordID)
		}
	}
	message := fmt.Sprintf("Battle **#%d** resolved — winner: %s", challenge.ID, winnerText)
	if challenge.Narrative != "" {
		message += "\n" + challenge.Narrative
	}
	respond(s, i, message, false)
}

func (o *Orch) showShop(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	items, err := shopService.DynamicItems(db, player.ID, common.Now())
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	if len(items) == 0 {
		respond(s, i, "The shop is empty today.", true)
		return
	}

	var lines []string
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("`#%d` **%s** — %d", item.ID, item.Name, item.Price))
	}
	respond(s, i, "**Today's shop**\n"+strings.Join(lines, "\n"), true)
}

func (o *Orch) buyItem(s *discordgo.Session, i *discordgo.InteractionCreate, db *gorm.DB) {
	options := i.ApplicationCommandData().Options
	itemID := uint(options[0].IntValue())

	player, err := ledgerService.GetOrCreatePlayer(db, i.Member.User.ID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}

	item, err := shopService.Purchase(db, player.ID, itemID)
	if err != nil {
		sendError(s, i, err, db)
		return
	}
	respond(s, i, fmt.Sprintf("Purchased **%s** for %d.", item.Name, item.Price), false)
}

func respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	var flags discordgo.MessageFlags
	if ephemeral {
		flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   flags,
		},
	})
	if err != nil {
		fmt.Println(err)
	}
}

// sendError reports engine failures back to the user. Validation-class
// errors read as the player's fault; everything else is logged too.
func sendError(s *discordgo.Session, i *discordgo.InteractionCreate, err error, db *gorm.DB) {
	userFacing := errors.Is(err, common.ErrValidation) ||
		errors.Is(err, common.ErrNotFound) ||
		errors.Is(err, common.ErrPrecondition) ||
		errors.Is(err, common.ErrConflict)
	if !userFacing {
		common.LogError(db, "commandsOrch", err)
	}
	respond(s, i, fmt.Sprintf("⚠ %v", err), true)
}
