package services

import "github.com/bwmarrin/discordgo"

func RegisterCommands(s *discordgo.Session) error {
	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "balance",
			Description: "Show your currency balance",
		},
		{
			Name:        "gacha",
			Description: "Draw cards from a pool (1 draw = 100, 10 draws = 1000)",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "pool",
					Description: "Card pool ID",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "count",
					Description: "Number of draws (1 or 10, default 1)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
				},
			},
		},
		{
			Name:        "pity",
			Description: "Show your pity progress for a pool",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "pool",
					Description: "Card pool ID",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
		{
			Name:        "collection",
			Description: "Show your cards and items",
		},
		{
			Name:        "deck",
			Description: "Show your battle deck",
		},
		{
			Name:        "deck-set",
			Description: "Equip a card into a deck slot",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "card",
					Description: "Card ID to equip",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "position",
					Description: "Deck slot (1-6)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
		{
			Name:        "deck-remove",
			Description: "Clear a deck slot",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "position",
					Description: "Deck slot (1-6)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
		{
			Name:        "trade",
			Description: "Offer a card to another player, for a card or for currency",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "player",
					Description: "Player to trade with",
					Type:        discordgo.ApplicationCommandOptionUser,
					Required:    true,
				},
				{
					Name:        "card",
					Description: "Card ID you are offering",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
				{
					Name:        "for-card",
					Description: "Card ID you want in return",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
				},
				{
					Name:        "for-price",
					Description: "Currency you want in return",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
				},
			},
		},
		{
			Name:        "trades",
			Description: "List your open trades",
		},
		{
			Name:        "trade-accept",
			Description: "Accept a pending trade",
			Options:     []*discordgo.ApplicationCommandOption{tradeIDOption()},
		},
		{
			Name:        "trade-reject",
			Description: "Reject a pending trade",
			Options:     []*discordgo.ApplicationCommandOption{tradeIDOption()},
		},
		{
			Name:        "trade-cancel",
			Description: "Cancel a trade you proposed",
			Options:     []*discordgo.ApplicationCommandOption{tradeIDOption()},
		},
		{
			Name:        "pvp-rank",
			Description: "Show this week's PvP leaderboard",
		},
		{
			Name:        "pvp-stakes",
			Description: "Preview the points at stake against another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "player",
					Description: "Prospective opponent",
					Type:        discordgo.ApplicationCommandOptionUser,
					Required:    true,
				},
			},
		},
		{
			Name:        "pvp-challenge",
			Description: "Challenge another player",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "player",
					Description: "Player to challenge",
					Type:        discordgo.ApplicationCommandOptionUser,
					Required:    true,
				},
				{
					Name:        "mode",
					Description: "Battle mode",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Friendly", Value: "friendly"},
						{Name: "Ranked", Value: "ranked"},
						{Name: "Duel", Value: "duel"},
					},
				},
				{
					Name:        "bet",
					Description: "Wager (duels only, 1-100,000)",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    false,
				},
			},
		},
		{
			Name:        "pvp-accept",
			Description: "Accept a challenge and fight",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "challenge",
					Description: "Challenge ID",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
		{
			Name:        "shop",
			Description: "Show today's shop",
		},
		{
			Name:        "buy",
			Description: "Buy a shop item",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "item",
					Description: "Shop item ID",
					Type:        discordgo.ApplicationCommandOptionInteger,
					Required:    true,
				},
			},
		},
	}

	for _, command := range commands {
		_, err := s.ApplicationCommandCreate(s.State.User.ID, "", command)
		if err != nil {
			return err
		}
	}
	return nil
}

func tradeIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Name:        "trade",
		Description: "Trade ID",
		Type:        discordgo.ApplicationCommandOptionInteger,
		Required:    true,
	}
}
