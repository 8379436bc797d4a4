package cmd

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/clinicsim/clinicsim/sim"
)

// envPrefix scopes every environment override, e.g. CLINICSIM_SEED.
const envPrefix = "clinicsim"

// envOverrides are the settings read from CLINICSIM_* variables. Nil means
// the variable was not set.
type envOverrides struct {
	Seed     *int64 `envconfig:"SEED"`
	Ticks    *int64 `envconfig:"TICKS"`
	LogLevel string `envconfig:"LOG_LEVEL"`
}

// loadEnv loads path into the process environment if it exists, then reads
// the overrides. A missing dotenv file is not an error.
func loadEnv(path string) (envOverrides, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return envOverrides{}, err
		}
	}
	var env envOverrides
	if err := envconfig.Process(envPrefix, &env); err != nil {
		return envOverrides{}, err
	}
	return env, nil
}

// apply writes the set overrides into cfg.
func (e envOverrides) apply(cfg *sim.Config) {
	if e.Seed != nil {
		cfg.Seed = *e.Seed
	}
	if e.Ticks != nil {
		cfg.Ticks = *e.Ticks
	}
}
