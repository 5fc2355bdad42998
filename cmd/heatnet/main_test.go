package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/heatnet/config"
)

const twoConsumers = `name: two-houses
producer: {x: 80, y: 10}
streets:
  - [{x: 0, y: 0}, {x: 100, y: 0}]
consumers:
  - name: house-a
    point: {x: 20, y: 10}
    qext_w: [60000, 30000]
    return_temperature_c: 60
  - name: house-b
    point: {x: 50, y: 10}
    qext_w: [45000]
    return_temperature_c: 55
`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()

	return out.String(), err
}

func TestRouteCommand(t *testing.T) {
	out, err := execute(t, "route", writeFile(t, "s.yaml", twoConsumers))
	require.NoError(t, err)

	var plan struct {
		Forward   [][]map[string]float64 `yaml:"forward"`
		Return    [][]map[string]float64 `yaml:"return"`
		Consumers [][]map[string]float64 `yaml:"consumers"`
		Producers [][]map[string]float64 `yaml:"producers"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &plan))
	assert.Len(t, plan.Consumers, 2)
	assert.Len(t, plan.Producers, 1)
	assert.Len(t, plan.Forward, len(plan.Return))
}

func TestSimulateCommand(t *testing.T) {
	metricsOut := filepath.Join(t.TempDir(), "metrics.prom")
	a := writeFile(t, "a.yaml", twoConsumers)
	b := writeFile(t, "b.yaml", strings.Replace(twoConsumers, "two-houses", "second", 1))

	out, err := execute(t, "simulate", "--parallel", "2", "--metrics-out", metricsOut, a, b)
	require.NoError(t, err)

	// reports are printed in argument order
	first := strings.Index(out, "# two-houses")
	second := strings.Index(out, "# second")
	require.GreaterOrEqual(t, first, 0)
	require.Greater(t, second, first)
	assert.Equal(t, 4, strings.Count(out, "\nstep "))
	assert.Contains(t, out, "# sizing: pipes")

	prom, err := os.ReadFile(metricsOut)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "heatnet_solves_total")
	assert.Contains(t, string(prom), "heatnet_steps_total")
}

func TestSimulateCommand_SizingDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.Sizing.Enabled = false
	body, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	out, err := execute(t, "simulate", "--config", writeFile(t, "c.yaml", string(body)),
		writeFile(t, "s.yaml", twoConsumers))
	require.NoError(t, err)
	assert.NotContains(t, out, "# sizing")
	assert.Equal(t, 2, strings.Count(out, "\nstep "))
}

func TestScenario_Profile(t *testing.T) {
	s, err := loadScenario(writeFile(t, "s.yaml", twoConsumers))
	require.NoError(t, err)

	p, err := s.profile(config.Default().Network)
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{60000, 45000}, {30000, 45000}}, p.Qext)
	assert.Nil(t, p.SupplyTempC)

	s.SupplyTemperatureC = []float64{90, 85, 80}
	_, err = s.profile(config.Default().Network)
	assert.ErrorIs(t, err, errScenario)
}

func TestLoadScenario_Errors(t *testing.T) {
	_, err := loadScenario(writeFile(t, "s.yaml", "name: x\nconsumers: []\n"))
	assert.ErrorIs(t, err, errScenario)

	_, err = loadScenario(writeFile(t, "s.yaml", "name: x\nunknown: 1\n"))
	assert.ErrorIs(t, err, errScenario)

	_, err = execute(t, "simulate", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
