// Package heatnet sizes and controls district heating networks: it routes
// supply and return lines along streets, builds a hydraulic network from
// them, picks pipe diameters or catalog types against velocity limits and
// then runs the pump and consumer controllers over a demand time series.
//
// 🚀 What is heatnet?
//
//	A steady-state design and control toolkit that brings together:
//		• Route synthesis: street projection + minimum spanning trunk
//		• Network model: junctions, pipes, heat exchangers, flow controls, pumps
//		• Pipe catalog: standard types by material, insulation and diameter
//		• Sizing: continuous diameter steps or catalog types per velocity limit
//		• Control: worst-point pressure and per-consumer return temperature loops
//		• Orchestration: one converged operating point per time step
//
// Packages:
//
//	geometry/     points, lines, projection onto streets
//	route/        forward/return/connector line synthesis
//	core/         thread-safe graph primitives behind network topology
//	bfs/          traversal used for connectivity and flow-path ordering
//	prim_kruskal/ spanning trees for the route trunk
//	catalog/      standard pipe types
//	network/      element tables, layout builder, test fixtures
//	solver/       Solver interface, results, tracing/metrics decorator
//	solver/lumped reference steady-state solver for trees
//	sizing/       flow direction correction and velocity-driven sizing
//	worstpoint/   consumer with the lowest differential pressure
//	control/      pressure and return temperature controllers
//	orchestrator/ per-step control loop and time series runs
//	config/       YAML configuration with validation
//	logging/      slog setup
//	metrics/      Prometheus collectors
//	cmd/heatnet   CLI: route, simulate
//
// Quick ASCII example:
//
//	  P═══╦═══════╦═══════╗      ═ forward line
//	      ║       ║       ║      ║ consumer connector (HX + flow control)
//	  ────╨───────╨───────╜      ─ return line
//
//	one producer, three consumers on a single street.
//
//	go install github.com/katalvlaran/heatnet/cmd/heatnet@latest
package heatnet
