package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

type Config struct {
	Environment string `env:"ENV" envDefault:"development"`
	HTTP        struct {
		Port            int           `env:"HTTP_PORT" envDefault:"8080"`
		ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`
		WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"30s"`
		IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`
		ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	}
	Logging struct {
		Level  string `env:"LOG_LEVEL" envDefault:"info"`
		Format string `env:"LOG_FORMAT" envDefault:"json"`
		Output string `env:"LOG_OUTPUT" envDefault:"stderr"`
	}
	Simulation struct {
		Trials       int    `env:"SIM_TRIALS" envDefault:"10000"`
		Workers      int    `env:"SIM_WORKERS" envDefault:"8"`
		Seed         uint64 `env:"SIM_SEED" envDefault:"0"`
		MaxRounds    int    `env:"SIM_MAX_ROUNDS" envDefault:"10000"`
		MaxTrials    int    `env:"SIM_MAX_TRIALS" envDefault:"1000000"`
		ScenarioFile string `env:"SIM_SCENARIO_FILE"`
	}
	Sessions struct {
		MaxActive int `env:"SESSION_MAX_ACTIVE" envDefault:"256"`
	}

	// Scenario is loaded from Simulation.ScenarioFile, or the built-in one.
	Scenario *Scenario
}

func Load() (*Config, error) {
	cfg := &Config{}

	// Parse environment variables
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	// Set default logging level based on environment
	if cfg.Environment == "development" && cfg.Logging.Level == "" {
		cfg.Logging.Level = "debug"
	}

	if cfg.Simulation.ScenarioFile != "" {
		sc, err := LoadScenario(cfg.Simulation.ScenarioFile)
		if err != nil {
			return nil, err
		}
		cfg.Scenario = sc
	} else {
		cfg.Scenario = DefaultScenario()
	}

	return cfg, nil
}
