package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	v "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/clinicsim/clinicsim/sim/fuzzy"
	"github.com/clinicsim/clinicsim/sim/trace"
)

// Config is the full description of one clinic run, loadable from YAML.
// Nil pointer fields mean "not set": a nil resource count leaves the resource
// untracked, a nil drug map disables the pharmacy.
type Config struct {
	Seed  int64 `yaml:"seed"`
	Ticks int64 `yaml:"ticks"`

	Resources ResourceConfig  `yaml:"resources"`
	Drugs     map[string]int  `yaml:"drugs"`
	Stages    StageConfig     `yaml:"stages"`
	Fuzzy     FuzzyConfig     `yaml:"fuzzy"`
	Planning  PlanningConfig  `yaml:"planning"`
	Lifecycle LifecycleConfig `yaml:"lifecycle"`
	Intake    IntakeConfig    `yaml:"intake"`
	Trace     string          `yaml:"trace"`
}

// ResourceConfig holds slot counts.
type ResourceConfig struct {
	Doctors *int `yaml:"doctors"`
	Beds    *int `yaml:"beds"`
	Rooms   *int `yaml:"rooms"`
}

// StageConfig toggles the optional collections of the queue network and sets
// how many consultation desks contend for doctors.
type StageConfig struct {
	LabOrders         *bool `yaml:"lab_orders"`
	Prescriptions     *bool `yaml:"prescriptions"`
	Records           *bool `yaml:"records"`
	Satisfaction      *bool `yaml:"satisfaction"`
	PlanningLog       *bool `yaml:"planning_log"`
	SecurityChecks    *bool `yaml:"security_checks"`
	ConsultationDesks int   `yaml:"consultation_desks"`
}

// FuzzyConfig configures the satisfaction engine.
type FuzzyConfig struct {
	Resolution      string `yaml:"resolution"`
	OutputScale     int    `yaml:"output_scale"`
	AssumeUnitScale *bool  `yaml:"assume_unit_scale"`
}

// PlanningConfig configures the capacity-planning stage.
type PlanningConfig struct {
	QueueThreshold int `yaml:"queue_threshold"` // 0 means DefaultPlanningThreshold
}

// LifecycleConfig configures the per-tick patient unit update.
type LifecycleConfig struct {
	AbandonProbability float64 `yaml:"abandon_probability"`
}

// IntakeConfig configures the arrival generator. Rate (patients per tick) and
// CV drive the stochastic processes; Interval drives "fixed".
type IntakeConfig struct {
	Process                 string   `yaml:"process"`
	Rate                    float64  `yaml:"rate"`
	Interval                int64    `yaml:"interval"`
	CV                      *float64 `yaml:"cv"`
	SatisfactionProbability float64  `yaml:"satisfaction_probability"`
}

// ValidArrivalProcesses is the set of recognized arrival process names. Empty means poisson.
var ValidArrivalProcesses = map[string]bool{"": true, "poisson": true, "gamma": true, "weibull": true, "fixed": true}

// ValidOutputScales is the set of recognized satisfaction score scales. 0 means default.
var ValidOutputScales = map[int]bool{0: true, 1: true, 10: true}

// DefaultConfig returns the configuration used when no file is given: a small
// clinic with every stage enabled and a modest stock of both drugs.
func DefaultConfig() Config {
	return Config{
		Seed:  42,
		Ticks: 100,
		Resources: ResourceConfig{
			Doctors: intPtr(3),
			Beds:    intPtr(5),
			Rooms:   intPtr(4),
		},
		Drugs:    map[string]int{DrugA: 50, DrugB: 50},
		Stages:   StageConfig{ConsultationDesks: 1},
		Fuzzy:    FuzzyConfig{Resolution: string(fuzzy.ResolutionBase), OutputScale: 10},
		Planning: PlanningConfig{QueueThreshold: DefaultPlanningThreshold},
		Intake:   IntakeConfig{Process: "poisson", Rate: 0.5, SatisfactionProbability: 0.5},
		Trace:    string(trace.TraceLevelEvents),
	}
}

// LoadConfig reads a YAML configuration file. Keys absent from the file keep
// their DefaultConfig value, except drugs: a file without a drugs section runs
// with no pharmacy inventory. Unknown keys are an error.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading clinic config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates YAML configuration bytes.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Drugs = nil
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing clinic config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clinic config: %w", err)
	}
	return &cfg, nil
}

// Validate checks parameter ranges and names.
func (c *Config) Validate() error {
	err := v.ValidateStruct(c,
		v.Field(&c.Ticks, v.Min(int64(0))),
		v.Field(&c.Resources),
		v.Field(&c.Drugs, v.Each(v.Min(0))),
		v.Field(&c.Stages),
		v.Field(&c.Fuzzy),
		v.Field(&c.Planning),
		v.Field(&c.Lifecycle),
		v.Field(&c.Intake),
		v.Field(&c.Trace, v.By(func(any) error {
			if !trace.IsValidTraceLevel(c.Trace) {
				return fmt.Errorf("unknown trace level %q", c.Trace)
			}
			return nil
		})),
	)
	if err != nil {
		return err
	}
	for drug := range c.Drugs {
		if drug == "" {
			return errors.New("drugs: empty drug name")
		}
	}
	return nil
}

func (r ResourceConfig) Validate() error {
	return v.ValidateStruct(&r,
		v.Field(&r.Doctors, v.Min(0)),
		v.Field(&r.Beds, v.Min(0)),
		v.Field(&r.Rooms, v.Min(0)),
	)
}

func (s StageConfig) Validate() error {
	return v.ValidateStruct(&s,
		v.Field(&s.ConsultationDesks, v.Min(0)),
	)
}

func (f FuzzyConfig) Validate() error {
	return v.ValidateStruct(&f,
		v.Field(&f.Resolution, v.By(func(any) error {
			if !fuzzy.ValidResolutions[f.Resolution] {
				return fmt.Errorf("unknown resolution %q", f.Resolution)
			}
			return nil
		})),
		v.Field(&f.OutputScale, v.By(func(any) error {
			if !ValidOutputScales[f.OutputScale] {
				return fmt.Errorf("output scale must be 1 or 10, got %d", f.OutputScale)
			}
			return nil
		})),
	)
}

func (p PlanningConfig) Validate() error {
	return v.ValidateStruct(&p,
		v.Field(&p.QueueThreshold, v.Min(0)),
	)
}

func (l LifecycleConfig) Validate() error {
	return v.ValidateStruct(&l,
		v.Field(&l.AbandonProbability, v.Min(0.0), v.Max(1.0)),
	)
}

func (i IntakeConfig) Validate() error {
	return v.ValidateStruct(&i,
		v.Field(&i.Process, v.By(func(any) error {
			if !ValidArrivalProcesses[i.Process] {
				return fmt.Errorf("unknown arrival process %q", i.Process)
			}
			return nil
		})),
		v.Field(&i.Rate, v.Min(0.0)),
		v.Field(&i.Interval, v.Min(int64(0))),
		v.Field(&i.CV, v.Min(0.0)),
		v.Field(&i.SatisfactionProbability, v.Min(0.0), v.Max(1.0)),
	)
}

// NetworkOptions maps the stage toggles onto network collections. An unset
// toggle means enabled.
func (s StageConfig) NetworkOptions() NetworkOptions {
	on := func(b *bool) bool { return b == nil || *b }
	return NetworkOptions{
		LabOrders:      on(s.LabOrders),
		Prescriptions:  on(s.Prescriptions),
		Records:        on(s.Records),
		Satisfaction:   on(s.Satisfaction),
		PlanningLog:    on(s.PlanningLog),
		SecurityChecks: on(s.SecurityChecks),
	}
}

// EngineOptions maps the fuzzy section onto engine options.
func (f FuzzyConfig) EngineOptions() fuzzy.Options {
	return fuzzy.Options{
		Resolution:         fuzzy.Resolution(f.Resolution),
		OutputScale:        f.OutputScale,
		DisableUnitRescale: f.AssumeUnitScale != nil && !*f.AssumeUnitScale,
	}
}

func intPtr(n int) *int { return &n }
