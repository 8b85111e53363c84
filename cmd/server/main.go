package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/classregister/auth-server/auth"
	"github.com/classregister/auth-server/auth/sessions"
	fakesessionrepo "github.com/classregister/auth-server/auth/sessions/repofakes"
	"github.com/classregister/auth-server/internal/config"
	"github.com/classregister/auth-server/internal/utils"
	"github.com/classregister/auth-server/server"
	"github.com/classregister/auth-server/store/postgres"
	"github.com/classregister/auth-server/token"
	"github.com/classregister/auth-server/users"
	fakeuserrepo "github.com/classregister/auth-server/users/repofake"
)

const sweepInterval = time.Hour

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	c := config.New()
	displayAppname(c.GetAppName())

	// Mandatory configuration, no silent fallbacks for secrets.
	if err := config.Validate(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	registry, err := auth.NewSystemAdminRegistry(adminAccounts(c))
	if err != nil {
		return fmt.Errorf("system admin registry: %w", err)
	}

	issuer := token.NewIssuer(token.NewHMACSigner(c.GetSigningSecret()), c.GetSessionTTL())

	userRepo, sessionRepo, closeStore, err := openStores(c)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	if closeStore != nil {
		defer func() { _ = closeStore() }()
	}

	authService, err := auth.NewService(
		auth.Repos{Users: userRepo, Sessions: sessionRepo},
		registry,
		issuer,
		auth.WithBcryptCost(c.GetBcryptCost()),
	)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if count, err := authService.SweepExpiredSessions(ctx); err != nil {
		log.Warn().Err(err).Msg("startup session sweep failed")
	} else if count > 0 {
		log.Info().Int("deleted", count).Msg("swept expired sessions at startup")
	}
	go authService.RunSweeper(ctx, sweepInterval)

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, authService, userRepo)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func adminAccounts(c config.Config) []auth.AdminAccount {
	admins := c.GetSystemAdmins()
	accounts := make([]auth.AdminAccount, 0, len(admins))
	for _, a := range admins {
		accounts = append(accounts, auth.AdminAccount{Username: a.Username, Password: a.Password})
	}
	return accounts
}

func openStores(c config.Config) (users.Repo, sessions.Repo, func() error, error) {
	if connStr := c.GetDatabaseURL(); connStr != "" {
		db, err := postgres.Open(connStr)
		if err != nil {
			return nil, nil, nil, err
		}
		return db.UserRepo(), db.SessionRepo(), db.Close, nil
	}

	log.Warn().Msg("DATABASE_URL not set, using in-memory stores")
	userRepo := fakeuserrepo.NewFakeUserRepo()
	if c.GetEnv() == "DEV" {
		if err := seedUsers(userRepo, c.GetBcryptCost()); err != nil {
			return nil, nil, nil, err
		}
	}
	return userRepo, fakesessionrepo.NewFakeSessionRepo(), nil, nil
}

// seedUsers loads the development fixtures into an empty in-memory store.
func seedUsers(repo users.Repo, cost int) error {
	type fixture struct {
		user     users.User
		password string
	}

	fixtures := []fixture{
		{users.User{Identifier: "21101", FirstName: "Ivan", LastName: "Ivanov", Role: users.RoleAdmin, CourseNumber: utils.Ptr("21101"), AverageGrade: utils.Ptr(5.25)}, "admin123"},
		{users.User{Identifier: "21103", FirstName: "Georgi", LastName: "Dimitrov", Role: users.RoleStudent, CourseNumber: utils.Ptr("21103"), AverageGrade: utils.Ptr(4.80)}, "student21103"},
		{users.User{Identifier: "21104", FirstName: "Anna", LastName: "Stoyanova", Role: users.RoleStudent, CourseNumber: utils.Ptr("21104"), AverageGrade: utils.Ptr(5.50)}, "student21104"},
		{users.User{Identifier: "21105", FirstName: "Dimitar", LastName: "Georgiev", Role: users.RoleStudent, CourseNumber: utils.Ptr("21105"), AverageGrade: utils.Ptr(4.95)}, "student21105"},
		{users.User{Identifier: "21106", FirstName: "Elena", LastName: "Nikolova", Role: users.RoleStudent, CourseNumber: utils.Ptr("21106"), AverageGrade: utils.Ptr(5.10)}, "student21106"},
		{users.User{Identifier: "T001", FirstName: "Maria", LastName: "Petrova", Role: users.RoleTeacher, TeacherID: utils.Ptr("T001"), Subject: utils.Ptr("Mathematics")}, "teacherT001"},
		{users.User{Identifier: "T002", FirstName: "Nikola", LastName: "Zhelev", Role: users.RoleTeacher, TeacherID: utils.Ptr("T002"), Subject: utils.Ptr("Physics")}, "teacherT002"},
		{users.User{Identifier: "T003", FirstName: "Elisaveta", LastName: "Doncheva", Role: users.RoleTeacher, TeacherID: utils.Ptr("T003"), Subject: utils.Ptr("Bulgarian")}, "teacherT003"},
	}

	ctx := context.Background()
	for _, f := range fixtures {
		hash, err := users.HashPassword(f.password, cost)
		if err != nil {
			return err
		}
		f.user.PasswordHash = hash
		if err := repo.Create(ctx, &f.user); err != nil {
			return err
		}
	}
	log.Info().Int("users", len(fixtures)).Msg("seeded development fixtures")
	return nil
}

func listenAndServe(httpServer *http.Server) {
	log.Info().Str("addr", httpServer.Addr).Msg("server listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(httpServer *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
