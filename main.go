package main

import (
	"log"
	"os"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/xo/dburl"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gachaCardBot/models"
	"gachaCardBot/scheduler"
	"gachaCardBot/services"
	"gachaCardBot/services/battleService"
	"gachaCardBot/services/common"
	"gachaCardBot/services/gachaService"
	"gachaCardBot/services/ledgerService"
	"gachaCardBot/services/rankService"
)

var db *gorm.DB
var orch *services.Orch

func init() {
	err := godotenv.Load()
	if err != nil {
		log.Fatalf("Error loading .env file")
	}

	connString := os.Getenv("MYSQL_URL")
	if connString == "" {
		log.Fatalf("MYSQL_URL not set in environment variables")
	}

	u, err := dburl.Parse(connString)
	if err != nil {
		log.Fatalf("Error parsing MYSQL_URL: %v", err)
	}

	db, err = gorm.Open(mysql.Open(u.DSN+"?charset=utf8mb4&parseTime=True&loc=Local"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Player{},
		&models.Card{},
		&models.CardPool{},
		&models.CardPoolCard{},
		&models.GachaPity{},
		&models.GachaPull{},
		&models.Inventory{},
		&models.DeckCard{},
		&models.Trade{},
		&models.PvPRank{},
		&models.PvPChallenge{},
		&models.ShopItem{},
		&models.EventLog{},
		&models.ErrorLog{},
	)
	if err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	judge := battleService.NewAIJudge(os.Getenv("JUDGE_API_URL"), os.Getenv("JUDGE_API_KEY"))
	ranks := rankService.New(common.Now)
	orch = &services.Orch{
		Gacha:   gachaService.New(common.NewRNG(time.Now().UnixNano())),
		Ranks:   ranks,
		Battles: battleService.NewOrch(judge, ranks),
	}
}

func main() {
	token := os.Getenv("DISCORD_BOT_TOKEN")
	if token == "" {
		log.Fatalf("DISCORD_BOT_TOKEN not set in environment variables")
	}

	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		log.Fatalf("Error creating Discord session: %v", err)
	}

	dg.AddHandler(interactionCreate)
	dg.AddHandler(messageCreate)
	dg.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		err := s.UpdateGameStatus(0, "Collecting Cards!")
		if err != nil {
			return
		}
	})

	dg.Identify.Intents = discordgo.IntentsGuildMembers | discordgo.IntentsGuildMessages

	err = dg.Open()
	if err != nil {
		log.Fatalf("Error opening Discord session: %v", err)
	}
	defer func(dg *discordgo.Session) {
		err := dg.Close()
		if err != nil {

		}
	}(dg)

	err = services.RegisterCommands(dg)
	if err != nil {
		log.Fatalf("Error registering commands: %v", err)
	}

	cronService := scheduler.SetupCron(db, orch.Ranks)
	defer cronService.Stop()

	log.Println("Bot is running. Press CTRL+C to exit.")
	select {}
}

// messageCreate grants one currency per chat message, the passive earn
// that funds draws for players who never win anything.
func messageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author.Bot {
		return
	}

	player, err := ledgerService.GetOrCreatePlayer(db, m.Author.ID)
	if err != nil {
		log.Printf("Error fetching or creating player: %v", err)
		return
	}

	player.Currency += 1
	db.Save(player)
}

func interactionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		orch.HandleSlashCommand(s, i, db)
	}
}
