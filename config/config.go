// Package config holds the tunable values of sizing and control runs,
// their reference defaults and their validation.
//
// Validation is eager: every value is range-checked before any solver call,
// and every failure wraps ErrOutOfRange.
package config

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/logging"
	"github.com/katalvlaran/heatnet/network"
)

// ErrOutOfRange marks configuration values that violate basic sanity.
var ErrOutOfRange = errors.New("config: value out of range")

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// Config is the full configuration surface.
type Config struct {
	Network NetworkConfig  `yaml:"network"`
	Route   RouteConfig    `yaml:"route"`
	Sizing  SizingConfig   `yaml:"sizing"`
	Control Control        `yaml:"control"`
	Logging logging.Config `yaml:"logging"`
}

// NetworkConfig holds element defaults for network construction and the
// ambient conditions of the reference solver.
type NetworkConfig struct {
	PipeMode         string  `yaml:"pipe_mode" validate:"oneof=diameter type"`
	InitialDiameterM float64 `yaml:"initial_diameter_m" validate:"gt=0"`
	InitialType      string  `yaml:"initial_type" validate:"required_if=PipeMode type"`
	RoughnessMM      float64 `yaml:"roughness_mm" validate:"gte=0"`
	AlphaWPerM2K     float64 `yaml:"alpha_w_per_m2k" validate:"gte=0"`

	JunctionPressureBar  float64 `yaml:"junction_pressure_bar" validate:"gt=0"`
	JunctionTemperatureC float64 `yaml:"junction_temperature_c" validate:"gt=-273.15"`

	HeatExchangerDiameterM float64 `yaml:"heat_exchanger_diameter_m" validate:"gt=0"`
	LossCoefficient        float64 `yaml:"loss_coefficient" validate:"gte=0"`
	QextW                  float64 `yaml:"qext_w" validate:"gte=0"`
	ReturnTemperatureC     float64 `yaml:"return_temperature_c" validate:"gt=0"`
	DesignDeltaTK          float64 `yaml:"design_delta_t_k" validate:"gt=0"`

	PumpFlowBar         float64 `yaml:"pump_flow_bar" validate:"gt=0"`
	PumpLiftBar         float64 `yaml:"pump_lift_bar" validate:"gt=0,ltefield=PumpFlowBar"`
	SupplyTemperatureC  float64 `yaml:"supply_temperature_c" validate:"gt=0,gtfield=ReturnTemperatureC"`
	AmbientTemperatureC float64 `yaml:"ambient_temperature_c" validate:"gt=-273.15"`
}

// RouteConfig positions the return line relative to the forward line and
// picks the trunk spanning tree algorithm.
type RouteConfig struct {
	ReturnOffsetM  float64 `yaml:"return_offset_m" validate:"gt=0"`
	ReturnAngleDeg float64 `yaml:"return_angle_deg" validate:"gte=-360,lte=360"`
	Method         string  `yaml:"method" validate:"omitempty,oneof=kruskal prim"`
}

// SizingConfig drives the diameter and type optimizer.
type SizingConfig struct {
	Enabled           bool    `yaml:"enabled"`
	VMaxPipe          float64 `yaml:"v_max_pipe" validate:"gt=0"`
	VMaxHeatExchanger float64 `yaml:"v_max_heat_exchanger" validate:"gt=0"`
	StepM             float64 `yaml:"step_m" validate:"gt=0"`
	MaterialFilter    string  `yaml:"material_filter"`
	InsulationFilter  string  `yaml:"insulation_filter"`
	MaxSweeps         int     `yaml:"max_sweeps" validate:"min=1"`
}

// Control holds the controller and outer-loop parameters.
type Control struct {
	TargetDpMinBar float64 `yaml:"target_dp_min_bar" validate:"gt=0"`
	DpToleranceBar float64 `yaml:"dp_tolerance_bar" validate:"gt=0"`
	PressureGain   float64 `yaml:"pressure_gain" validate:"gt=0,lte=1"`

	TemperatureToleranceK  float64 `yaml:"temperature_tolerance_k" validate:"gt=0"`
	LowFlowGain            float64 `yaml:"low_flow_gain" validate:"gt=0"`
	HighFlowGain           float64 `yaml:"high_flow_gain" validate:"gt=0"`
	LowFlowThresholdKgPerS float64 `yaml:"low_flow_threshold_kg_per_s" validate:"gte=0"`
	MinVelocity            float64 `yaml:"min_velocity" validate:"gte=0"`
	MaxVelocity            float64 `yaml:"max_velocity" validate:"gtfield=MinVelocity"`

	QextActivityThresholdW float64 `yaml:"qext_activity_threshold_w" validate:"gte=0"`
	MaxIterations          int     `yaml:"max_iterations" validate:"min=1"`
}

// Default returns the reference configuration.
func Default() Config {
	return Config{
		Network: NetworkConfig{
			PipeMode:               string(network.ModeDiameter),
			InitialDiameterM:       0.1,
			InitialType:            "KMR 100/225-2v",
			RoughnessMM:            0.1,
			AlphaWPerM2K:           10,
			JunctionPressureBar:    1.05,
			JunctionTemperatureC:   20,
			HeatExchangerDiameterM: 0.02,
			LossCoefficient:        100,
			QextW:                  60000,
			ReturnTemperatureC:     60,
			DesignDeltaTK:          25,
			PumpFlowBar:            4,
			PumpLiftBar:            1.5,
			SupplyTemperatureC:     90,
			AmbientTemperatureC:    10,
		},
		Route: RouteConfig{ReturnOffsetM: 1},
		Sizing: SizingConfig{
			Enabled:           true,
			VMaxPipe:          1.0,
			VMaxHeatExchanger: 2.0,
			StepM:             0.001,
			MaterialFilter:    "KMR",
			InsulationFilter:  "2v",
			MaxSweeps:         500,
		},
		Control: DefaultControl(),
		Logging: logging.Config{Level: "info", Format: logging.FormatText},
	}
}

// DefaultControl returns the reference controller parameters.
func DefaultControl() Control {
	return Control{
		TargetDpMinBar:         1,
		DpToleranceBar:         0.2,
		PressureGain:           0.2,
		TemperatureToleranceK:  2,
		LowFlowGain:            0.0005,
		HighFlowGain:           0.003,
		LowFlowThresholdKgPerS: 0.05,
		MinVelocity:            0.005,
		MaxVelocity:            2,
		QextActivityThresholdW: 250,
		MaxIterations:          100,
	}
}

// Load decodes YAML from r over the defaults and validates the result.
// Unknown keys are rejected.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	return check(c)
}

// Validate checks the controller parameters alone.
func (c Control) Validate() error {
	return check(c)
}

func check(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := e.Namespace()
		if i := strings.IndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		switch e.Tag() {
		case "gtfield", "ltefield":
			msgs = append(msgs, fmt.Sprintf("%s = %v must be %s %s", field, e.Value(), relation(e.Tag()), e.Param()))
		case "required_if":
			msgs = append(msgs, fmt.Sprintf("%s is required when %s", field, e.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s = %v violates %s=%s", field, e.Value(), e.Tag(), e.Param()))
		}
	}

	return fmt.Errorf("%w: %s", ErrOutOfRange, strings.Join(msgs, "; "))
}

func relation(tag string) string {
	if tag == "ltefield" {
		return "<="
	}
	return ">"
}

// NetworkOptions converts the configuration into network construction options.
// cat is only consulted in type mode.
func (c Config) NetworkOptions(cat *catalog.Catalog) network.Options {
	n := c.Network
	return network.Options{
		PipeMode:               network.PipeMode(n.PipeMode),
		InitialDiameterM:       n.InitialDiameterM,
		InitialType:            n.InitialType,
		Catalog:                cat,
		RoughnessMM:            n.RoughnessMM,
		AlphaWPerM2K:           n.AlphaWPerM2K,
		JunctionPressureBar:    n.JunctionPressureBar,
		JunctionTemperatureK:   n.JunctionTemperatureC + network.KelvinOffset,
		HeatExchangerDiameterM: n.HeatExchangerDiameterM,
		LossCoefficient:        n.LossCoefficient,
		DefaultReturnTempC:     n.ReturnTemperatureC,
		MinVelocity:            c.Control.MinVelocity,
		MaxVelocity:            c.Control.MaxVelocity,
		DesignDeltaTK:          n.DesignDeltaTK,
		PumpFlowBar:            n.PumpFlowBar,
		PumpLiftBar:            n.PumpLiftBar,
		SupplyTempC:            n.SupplyTemperatureC,
	}
}
