package main

import (
	"context"
	"fitness_assistant_bot/internal/app"
	"fitness_assistant_bot/internal/app/scenarios"
	"fitness_assistant_bot/internal/domain/activity"
	"fitness_assistant_bot/internal/domain/fit"
	"fitness_assistant_bot/internal/domain/goal"
	"fitness_assistant_bot/internal/domain/meal"
	"fitness_assistant_bot/internal/domain/notification"
	"fitness_assistant_bot/internal/domain/scenario"
	"fitness_assistant_bot/internal/domain/user"
	"fitness_assistant_bot/internal/infra/config"
	idb "fitness_assistant_bot/internal/infra/database"
	"fitness_assistant_bot/internal/infra/googlefit"
	"fitness_assistant_bot/internal/infra/logger"
	"fitness_assistant_bot/internal/infra/memory"
	iredis "fitness_assistant_bot/internal/infra/redis"
	"fitness_assistant_bot/internal/infra/scheduler"
	"fitness_assistant_bot/internal/infra/telegram"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type repositories struct {
	users         user.Repository
	activities    activity.Repository
	meals         meal.Repository
	goals         goal.Repository
	notifications notification.Repository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Could not load application configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg)
	log := logger.Component("main")
	log.WithFields(logrus.Fields{"environment": cfg.Environment, "database_driver": cfg.DatabaseDriver}).Info("Fitness assistant bot starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, closeDB, err := openRepositories(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize storage")
	}
	defer closeDB()

	store, closeStore, err := openScenarioStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Could not initialize scenario store")
	}
	defer closeStore()

	bot, err := telebot.NewBot(telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telegram handler error")
		},
	})
	if err != nil {
		log.WithError(err).Fatal("Could not create Telegram bot")
	}
	tgClient := telegram.NewTelebotAdapter(bot)

	var provider fit.Provider
	if cfg.GoogleFitEnabled() {
		provider = googlefit.NewClient(googlefit.Config{
			ClientID:     cfg.GoogleFitClientID,
			ClientSecret: cfg.GoogleFitClientSecret,
			RedirectURL:  cfg.GoogleFitRedirectURL,
		}, nil)
	} else {
		log.Warn("Google Fit credentials are not configured, fit sync is disabled")
	}

	engine, err := app.NewScenarioEngine(store, logger.Component("scenario"), scenarios.All(scenarios.Deps{
		Users:          repos.users,
		Meals:          repos.meals,
		Goals:          repos.goals,
		Fit:            provider,
		TelegramClient: tgClient,
		Logger:         logger.Component("scenario"),
	})...)
	if err != nil {
		log.WithError(err).Fatal("Could not build scenario engine")
	}
	telegram.NewCommands(engine, repos.users, logger.Component("telegram")).Register(ctx, bot)

	ledger := app.NewNotificationLedger(repos.notifications, logger.Component("ledger"))
	jobLogger := logger.Component("jobs")

	runner := scheduler.NewJobRunner(logger.Component("job_runner"), cfg.JobFailureCooldown)
	jobs := []scheduler.Job{
		app.NewActivityReminderJob(repos.users, repos.activities, repos.meals, repos.goals, ledger, jobLogger, nil),
		app.NewDailyGoalCheckJob(repos.users, repos.activities, repos.meals, repos.goals, ledger, jobLogger, nil),
		app.NewNotificationDispatchJob(ledger, repos.users, tgClient, jobLogger, nil),
	}
	if provider != nil {
		jobs = append(jobs, app.NewExternalFitSyncJob(repos.users, repos.activities, provider, jobLogger, nil))
	}
	for _, job := range jobs {
		if err := runner.Add(job); err != nil {
			log.WithError(err).Fatalf("Could not register job %s", job.Name())
		}
	}

	trigger := scheduler.NewCronTrigger(logger.Component("cron"))
	if err := trigger.Register(cfg.CronSpecMealReminder, app.NewMealReminderJob(repos.users, repos.meals, ledger, jobLogger, nil)); err != nil {
		log.WithError(err).Fatal("Could not schedule meal reminders")
	}

	if err := runner.Start(ctx); err != nil {
		log.WithError(err).Fatal("Could not start job runner")
	}
	trigger.Start(ctx)
	go bot.Start()
	log.Info("Application setup complete, bot and jobs are running")

	<-ctx.Done()
	log.Info("Shutting down application...")

	bot.Stop()
	trigger.Stop()
	if err := runner.Stop(cfg.ShutdownTimeout); err != nil {
		log.WithError(err).Warn("Jobs did not stop in time")
	}
	log.Info("Application shut down gracefully")
}

func openRepositories(ctx context.Context, cfg *config.AppConfig) (*repositories, func(), error) {
	if cfg.DatabaseDriver == config.DriverMemory {
		return &repositories{
			users:         memory.NewUserRepository(),
			activities:    memory.NewActivityRepository(),
			meals:         memory.NewMealRepository(),
			goals:         memory.NewGoalRepository(),
			notifications: memory.NewNotificationRepository(),
		}, func() {}, nil
	}

	driver := idb.DriverPostgres
	if cfg.DatabaseDriver == config.DriverSQLite {
		driver = idb.DriverSQLite
	}
	db, err := idb.Open(ctx, driver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return sqlRepositories(db), func() { db.Close() }, nil
}

func sqlRepositories(db *sqlx.DB) *repositories {
	return &repositories{
		users:         idb.NewUserRepository(db),
		activities:    idb.NewActivityRepository(db),
		meals:         idb.NewMealRepository(db),
		goals:         idb.NewGoalRepository(db),
		notifications: idb.NewNotificationRepository(db),
	}
}

func openScenarioStore(ctx context.Context, cfg *config.AppConfig) (scenario.Store, func(), error) {
	if cfg.RedisAddr == "" {
		return memory.NewScenarioStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	store, err := iredis.NewScenarioStore(ctx, client, cfg.ScenarioTTL)
	if err != nil {
		client.Close()
		return nil, nil, err
	}
	return store, func() { client.Close() }, nil
}
