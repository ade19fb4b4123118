package bot

import (
	"context"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	tele "gopkg.in/telebot.v3"
	"log"
	"net/http"
	"sleep-schedule-bot/db"
	"sleep-schedule-bot/mutex"
	"sleep-schedule-bot/templates"
	"sleep-schedule-bot/timezone"
	"time"
)

const (
	defaultDBAddress    = ":5432"
	defaultDBUser       = "bot"
	defaultDBName       = "bot"
	defaultRedisAddress = ":6379"
	defaultHTTPAddress  = ":8080"
)

type Config struct {
	TelegramBotToken string
	TimezoneDBToken  string
	DBAddress        string
	DBUser           string
	DBPassword       string
	DBName           string
	RedisAddress     string
	HTTPAddress      string
	Debug            bool
}

func Start(ctx context.Context, config Config, confirm chan<- struct{}) error {
	applyDefaults(&config)

	dbService := db.New(config.DBAddress, config.DBUser, config.DBPassword, config.DBName)
	if config.Debug {
		dbService.EnableDebug()
	}
	mutexBuilder := mutex.NewBuilder(config.RedisAddress)
	tzService := timezone.NewService(config.TimezoneDBToken)

	s := tele.Settings{
		Token: config.TelegramBotToken,
		Poller: &tele.LongPoller{
			Timeout: time.Second * 10,
		},
	}
	bot, err := tele.NewBot(s)
	if err != nil {
		return errors.Wrap(err, "error during creation of a new bot")
	}

	botService := NewService(dbService, mutexBuilder, tzService, bot)

	bot.Handle("/start", botService.Hello)
	bot.Handle("/help", func(context tele.Context) error {
		return context.Send(templates.Help)
	})
	bot.Handle("/init", botService.InitGroup)
	bot.Handle("/settings", botService.ShowSettings)
	bot.Handle("/set", botService.SetPlan)
	bot.Handle("/plan", botService.ShowPlan)
	bot.Handle("/remove", botService.RemovePlan)
	bot.Handle("/leave", botService.TakeLeaveDay)
	bot.Handle("/habit", botService.StartHabitSetup)
	bot.Handle("/cancel", botService.CancelHabitSetup)
	bot.Handle("/breakhabit", botService.BreakHabit)
	bot.Handle("/allowbreak", botService.AllowBreak)
	bot.Handle(tele.OnLocation, botService.OnLocation)
	bot.Handle(tele.OnText, botService.OnText)
	bot.Handle(tele.OnCallback, func(context tele.Context) error {
		defer func() {
			err := context.Respond()
			if err != nil {
				log.Print(err)
			}
		}()
		return botService.ProcessCallback(context)
	})

	bot.OnError = func(err error, context tele.Context) {
		log.Print(err.Error())
		err = context.Send(templates.UnexpectedError)
		if err != nil {
			log.Print(err)
		}
	}

	go func() {
		<-ctx.Done()
		bot.Stop()
		confirm <- struct{}{}
	}()

	router := mux.NewRouter()
	router.Methods(http.MethodGet).Path("/healthz").HandlerFunc(
		func(writer http.ResponseWriter, _ *http.Request) {
			writer.WriteHeader(http.StatusOK)
		},
	)
	go func() {
		// The bot keeps running without the health endpoint.
		err := http.ListenAndServe(config.HTTPAddress, router)
		if err != nil {
			log.Printf("health server error: %v", err.Error())
		}
	}()

	botService.StartEnforcer(ctx)
	log.Println("Started schedule enforcement")

	// Blocks until stop
	bot.Start()
	return nil
}

func applyDefaults(config *Config) {
	if config.DBAddress == "" {
		config.DBAddress = defaultDBAddress
	}
	if config.DBUser == "" {
		config.DBUser = defaultDBUser
	}
	if config.DBName == "" {
		config.DBName = defaultDBName
	}
	if config.RedisAddress == "" {
		config.RedisAddress = defaultRedisAddress
	}
	if config.HTTPAddress == "" {
		config.HTTPAddress = defaultHTTPAddress
	}
}
