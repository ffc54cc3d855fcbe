package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"trade_pilot/internal/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Config struct {
	App      App
	Pilot    Pilot
	Motion   Motion
	OCR      OCR
	Ledger   Ledger
	Postgres Postgres
	Redis    Redis
	Bot      Bot
	HTTP     HTTP
}

type App struct {
	Name     string `env:"APP_NAME" envDefault:"trade_pilot"`
	Version  string `env:"APP_VERSION" envDefault:"dev"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info" validate:"oneof=debug info warn warning error"`
}

// Load reads .env (if present) and the environment, then validates.
func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Validate checks tag constraints and cross-field rules. Every failure is
// reported, wrapped in domain.ErrInvalidConfig.
func (c Config) Validate() error {
	var errs []error

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = append(errs, fmt.Errorf("%s: failed %q (%s)", fe.Namespace(), fe.Tag(), fe.Param()))
			}
		} else {
			errs = append(errs, err)
		}
	}

	if c.Pilot.MinReserve > c.Pilot.Budget {
		errs = append(errs, fmt.Errorf("Config.Pilot.MinReserve: %d exceeds budget %d", c.Pilot.MinReserve, c.Pilot.Budget))
	}
	if c.Motion.KeystrokeMax < c.Motion.KeystrokeMin {
		errs = append(errs, fmt.Errorf("Config.Motion.KeystrokeMax: %s is below KeystrokeMin %s", c.Motion.KeystrokeMax, c.Motion.KeystrokeMin))
	}
	if c.Ledger.Driver == LedgerPostgres && c.Postgres.DSN == "" {
		errs = append(errs, errors.New("Config.Postgres.DSN: required for the postgres ledger"))
	}
	if c.Bot.Token != "" && c.Bot.AdminID == 0 && c.Bot.ChatID == 0 {
		errs = append(errs, errors.New("Config.Bot: BOT_ADMIN_ID or BOT_CHAT_ID is required with BOT_TOKEN"))
	}

	if len(errs) == 0 {
		return nil
	}

	return domain.Reasonf(domain.ErrInvalidConfig, "%v", errors.Join(errs...))
}
