package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/heatnet/config"
	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/orchestrator"
	"github.com/katalvlaran/heatnet/prim_kruskal"
	"github.com/katalvlaran/heatnet/route"
)

// errScenario marks scenario files that cannot be turned into a network.
var errScenario = errors.New("heatnet: invalid scenario")

// Scenario is the YAML input of both commands.
type Scenario struct {
	Name      string          `yaml:"name"`
	Producer  geometry.Point  `yaml:"producer"`
	Streets   []geometry.Line `yaml:"streets"`
	Consumers []ScenarioLoad  `yaml:"consumers"`

	// SupplyTemperatureC is an optional flow temperature series, one per step.
	SupplyTemperatureC []float64 `yaml:"supply_temperature_c"`
}

// ScenarioLoad is one consumer. QextW is a demand series; a single value
// holds for every step, and an empty series uses the configured default.
type ScenarioLoad struct {
	Name               string         `yaml:"name"`
	Point              geometry.Point `yaml:"point"`
	QextW              []float64      `yaml:"qext_w"`
	ReturnTemperatureC float64        `yaml:"return_temperature_c"`
}

func loadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Scenario
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", errScenario, path, err)
	}
	if len(s.Consumers) == 0 {
		return nil, fmt.Errorf("%w: %s: no consumers", errScenario, path)
	}
	if s.Name == "" {
		s.Name = path
	}

	return &s, nil
}

// steps is the length of the longest demand or supply series, at least 1.
func (s *Scenario) steps() int {
	n := max(1, len(s.SupplyTemperatureC))
	for _, c := range s.Consumers {
		n = max(n, len(c.QextW))
	}

	return n
}

// plan routes forward and return lines along the streets.
func (s *Scenario) plan(rc config.RouteConfig) (*route.Plan, error) {
	pts := make([]geometry.Point, len(s.Consumers))
	for i, c := range s.Consumers {
		pts[i] = c.Point
	}

	return route.BuildPlan(route.PlanRequest{
		Consumers: pts,
		Producers: []geometry.Point{s.Producer},
		Streets:   s.Streets,
		Return:    route.Offset{Distance: rc.ReturnOffsetM, AngleDeg: rc.ReturnAngleDeg},
		Method:    prim_kruskal.Method(rc.Method),
	})
}

// layout turns a routed plan into network layout input, with the first
// demand of every consumer.
func (s *Scenario) layout(p *route.Plan, nc config.NetworkConfig) network.Layout {
	l := network.Layout{Forward: p.Forward, Return: p.Return, Producers: p.Producers}
	for i, c := range s.Consumers {
		q := nc.QextW
		if len(c.QextW) > 0 {
			q = c.QextW[0]
		}
		l.Consumers = append(l.Consumers, network.ConsumerSpec{
			Name:              c.Name,
			Line:              p.Consumers[i],
			QextW:             q,
			TargetReturnTempC: c.ReturnTemperatureC,
		})
	}

	return l
}

// profile expands the demand series to one row per step. Series of length
// one are held constant; other lengths must match the step count.
func (s *Scenario) profile(nc config.NetworkConfig) (orchestrator.Profile, error) {
	n := s.steps()
	p := orchestrator.Profile{Qext: make([][]float64, n)}
	for t := range p.Qext {
		p.Qext[t] = make([]float64, len(s.Consumers))
	}
	for i, c := range s.Consumers {
		switch len(c.QextW) {
		case 0:
			for t := range p.Qext {
				p.Qext[t][i] = nc.QextW
			}
		case 1:
			for t := range p.Qext {
				p.Qext[t][i] = c.QextW[0]
			}
		case n:
			for t := range p.Qext {
				p.Qext[t][i] = c.QextW[t]
			}
		default:
			return p, fmt.Errorf("%w: consumer %q has %d demand values for %d steps", errScenario, c.Name, len(c.QextW), n)
		}
	}

	switch len(s.SupplyTemperatureC) {
	case 0:
	case 1:
		p.SupplyTempC = make([]float64, n)
		for t := range p.SupplyTempC {
			p.SupplyTempC[t] = s.SupplyTemperatureC[0]
		}
	case n:
		p.SupplyTempC = s.SupplyTemperatureC
	default:
		return p, fmt.Errorf("%w: %d supply temperatures for %d steps", errScenario, len(s.SupplyTemperatureC), n)
	}

	return p, nil
}
