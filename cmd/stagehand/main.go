// Package main is the stagehand CLI: the planner server plus the
// scheduled check, calendar sync, and dev token commands.
package main

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/stagehandhq/stagehand/internal/auth/session"
	"github.com/stagehandhq/stagehand/internal/calendar"
	"github.com/stagehandhq/stagehand/internal/calendar/caldav"
	"github.com/stagehandhq/stagehand/internal/calendar/googlecal"
	"github.com/stagehandhq/stagehand/internal/planner/app"
	"github.com/stagehandhq/stagehand/internal/planner/service"
	"github.com/stagehandhq/stagehand/internal/planner/storage/sqlite"
	entrypoint "github.com/stagehandhq/stagehand/internal/platform/cmd"
	"github.com/stagehandhq/stagehand/internal/platform/config"
)

func main() {
	config.LoadDotEnv()

	cliApp := &cli.App{
		Name:  "stagehand",
		Usage: "Event planning workflow server and tooling.",
		Commands: []*cli.Command{
			serveCommand(),
			checkCommand(),
			syncCommand(),
			tokenCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		config.Exitf("stagehand: %v", err)
	}
}

// serverEnv holds the planner server environment configuration.
type serverEnv struct {
	HTTPAddr string `env:"STAGEHAND_HTTP_ADDR" envDefault:":8080"`
	DBPath   string `env:"STAGEHAND_DB_PATH"   envDefault:"stagehand.db"`
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the planner HTTP server.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "http-addr", Usage: "HTTP listen address (overrides STAGEHAND_HTTP_ADDR)"},
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides STAGEHAND_DB_PATH)"},
		},
		Action: func(c *cli.Context) error {
			var env serverEnv
			if err := entrypoint.ParseConfig(&env); err != nil {
				return err
			}
			if addr := c.String("http-addr"); addr != "" {
				env.HTTPAddr = addr
			}
			if db := c.String("db"); db != "" {
				env.DBPath = db
			}

			sessionCfg, err := session.LoadConfigFromEnv(time.Now)
			if err != nil {
				return fmt.Errorf("load session config: %w", err)
			}

			log.SetPrefix("[PLANNER] ")
			return entrypoint.RunWithTelemetry(c.Context, entrypoint.ServicePlanner, func(ctx context.Context) error {
				return app.Run(ctx, app.Config{
					HTTPAddr: env.HTTPAddr,
					DBPath:   env.DBPath,
					Session:  sessionCfg,
				})
			})
		},
	}
}

func checkCommand() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Run the overdue, blocked, and deadline notification scans once.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides STAGEHAND_DB_PATH)"},
		},
		Action: func(c *cli.Context) error {
			var env serverEnv
			if err := entrypoint.ParseConfig(&env); err != nil {
				return err
			}
			if db := c.String("db"); db != "" {
				env.DBPath = db
			}

			return entrypoint.RunWithTelemetry(c.Context, entrypoint.ServiceChecker, func(ctx context.Context) error {
				store, err := sqlite.Open(env.DBPath)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer store.Close()

				report, err := service.New(store).RunChecks(ctx)
				if err != nil {
					return fmt.Errorf("run checks: %w", err)
				}
				fmt.Printf("overdue=%d blocked=%d deadline=%d skipped=%d\n",
					report.OverdueRaised, report.BlockedRaised, report.DeadlineRaised, report.Skipped)
				return nil
			})
		},
	}
}

// calendarEnv holds provider settings for the sync command. A provider is
// enabled when its required settings are present.
type calendarEnv struct {
	GoogleClientID     string `env:"STAGEHAND_GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"STAGEHAND_GOOGLE_CLIENT_SECRET"`
	GoogleTokenFile    string `env:"STAGEHAND_GOOGLE_TOKEN_FILE"`
	GoogleCalendarID   string `env:"STAGEHAND_GOOGLE_CALENDAR_ID"`

	CalDAVEndpoint string `env:"STAGEHAND_CALDAV_ENDPOINT"`
	CalDAVUsername string `env:"STAGEHAND_CALDAV_USERNAME"`
	CalDAVPassword string `env:"STAGEHAND_CALDAV_PASSWORD"`
	CalDAVCalendar string `env:"STAGEHAND_CALDAV_CALENDAR"`

	LogLevel string `env:"STAGEHAND_LOG_LEVEL" envDefault:"info"`
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Push scheduled events to configured external calendars.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "db", Usage: "SQLite database path (overrides STAGEHAND_DB_PATH)"},
		},
		Action: func(c *cli.Context) error {
			var env serverEnv
			if err := entrypoint.ParseConfig(&env); err != nil {
				return err
			}
			if db := c.String("db"); db != "" {
				env.DBPath = db
			}
			var calEnv calendarEnv
			if err := entrypoint.ParseConfig(&calEnv); err != nil {
				return err
			}
			logger := setupLogger(calEnv.LogLevel)

			return entrypoint.RunWithTelemetry(c.Context, entrypoint.ServiceSyncer, func(ctx context.Context) error {
				providers, err := buildProviders(ctx, calEnv, logger)
				if err != nil {
					return err
				}
				if len(providers) == 0 {
					return fmt.Errorf("no calendar providers configured")
				}

				store, err := sqlite.Open(env.DBPath)
				if err != nil {
					return fmt.Errorf("open store: %w", err)
				}
				defer store.Close()

				syncer := calendar.NewSyncer(store, store, providers, logger)
				report, err := syncer.Sync(ctx)
				if err != nil {
					return fmt.Errorf("sync calendars: %w", err)
				}
				fmt.Printf("pushed=%d updated=%d failed=%d skipped=%d\n",
					report.Pushed, report.Updated, report.Failed, report.Skipped)
				return nil
			})
		},
	}
}

func buildProviders(ctx context.Context, env calendarEnv, logger *slog.Logger) ([]calendar.Provider, error) {
	var providers []calendar.Provider

	if env.GoogleTokenFile != "" {
		provider, err := googlecal.New(ctx, googlecal.Config{
			ClientID:     env.GoogleClientID,
			ClientSecret: env.GoogleClientSecret,
			TokenFile:    env.GoogleTokenFile,
			CalendarID:   env.GoogleCalendarID,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("configure google calendar: %w", err)
		}
		providers = append(providers, provider)
	}

	if env.CalDAVEndpoint != "" {
		provider, err := caldav.New(ctx, caldav.Config{
			Endpoint:     env.CalDAVEndpoint,
			Username:     env.CalDAVUsername,
			Password:     env.CalDAVPassword,
			CalendarName: env.CalDAVCalendar,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("configure caldav: %w", err)
		}
		providers = append(providers, provider)
	}

	return providers, nil
}

// tokenEnv holds the signing inputs for minting local dev tokens.
type tokenEnv struct {
	Issuer     string `env:"STAGEHAND_SESSION_ISSUER"`
	Audience   string `env:"STAGEHAND_SESSION_AUDIENCE"`
	PrivateKey string `env:"STAGEHAND_SESSION_PRIVATE_KEY"`
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Mint a local development session token.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Required: true, Usage: "user ID for the token subject"},
			&cli.StringFlag{Name: "role", Value: string(session.RoleOrganizer), Usage: "ORGANIZER, CORE_MEMBER, or VOLUNTEER"},
			&cli.DurationFlag{Name: "ttl", Value: 24 * time.Hour, Usage: "token lifetime"},
		},
		Action: func(c *cli.Context) error {
			var env tokenEnv
			if err := entrypoint.ParseConfig(&env); err != nil {
				return err
			}
			key, err := decodePrivateKey(env.PrivateKey)
			if err != nil {
				return err
			}

			token, err := session.Mint(c.String("user"), session.Role(c.String("role")), session.MintConfig{
				Issuer:   env.Issuer,
				Audience: env.Audience,
				Key:      key,
				TTL:      c.Duration("ttl"),
			})
			if err != nil {
				return fmt.Errorf("mint token: %w", err)
			}
			fmt.Println(token)
			return nil
		},
	}
}

func decodePrivateKey(encoded string) (ed25519.PrivateKey, error) {
	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		return nil, fmt.Errorf("STAGEHAND_SESSION_PRIVATE_KEY is required")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(encoded)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(encoded)
	}
	if err != nil {
		return nil, fmt.Errorf("decode session private key: %w", err)
	}
	if len(decoded) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("session private key must be %d bytes", ed25519.PrivateKeySize)
	}
	return ed25519.PrivateKey(decoded), nil
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
