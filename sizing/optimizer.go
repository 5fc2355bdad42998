package sizing

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

// proposal is a reversible change to one element.
type proposal struct {
	apply    func() error
	rollback func() error
}

// stepper moves one element kind up or down its size range.
type stepper interface {
	kind() network.Kind
	// grow enlarges element i; false means it is already at its largest size.
	grow(i int) (bool, error)
	// shrink returns the change to the next smaller size, or nil at the smallest.
	shrink(i int) (*proposal, error)
}

// Continuous sizes every element of kind k (pipe, heat exchanger or flow
// control) by changing its diameter in steps of s.Step. Resized pipes lose
// their catalog type.
func (o *Optimizer) Continuous(ctx context.Context, net *network.Network, k network.Kind, s ContinuousSettings) (Report, error) {
	if !(s.VMax > 0) || !(s.Step > 0) || s.MinDiameter < 0 || s.MaxDiameter < 0 ||
		(s.MaxDiameter > 0 && s.MaxDiameter < s.MinDiameter) {
		return Report{}, fmt.Errorf("%w: %+v", ErrInvalidSettings, s)
	}
	if k == network.KindPump {
		return Report{}, fmt.Errorf("%w: pumps have no diameter", ErrInvalidSettings)
	}
	if s.MinDiameter == 0 {
		s.MinDiameter = s.Step
	}

	return o.run(ctx, net, &continuousStepper{net: net, k: k, s: s}, s.VMax, Report{Kind: k})
}

// Catalog sizes every pipe along the entries of cat matching the material
// and insulation filter. Pipes whose type is not among those entries are
// first snapped to the smallest entry at least as wide as their diameter.
func (o *Optimizer) Catalog(ctx context.Context, net *network.Network, cat *catalog.Catalog, s CatalogSettings) (Report, error) {
	if !(s.VMax > 0) {
		return Report{}, fmt.Errorf("%w: %+v", ErrInvalidSettings, s)
	}
	filtered := cat.Filter(s.Material, s.Insulation)
	if filtered.Len() == 0 {
		return Report{}, fmt.Errorf("%w: material %q, insulation %q", ErrEmptyCatalog, s.Material, s.Insulation)
	}

	rep := Report{Kind: network.KindPipe}
	for i := 0; i < net.NumPipes(); i++ {
		if filtered.Index(net.Pipe(i).StdType) >= 0 {
			continue
		}
		e, _ := filtered.Fitting(net.Pipe(i).DiameterM)
		if err := net.ApplyPipeType(i, e); err != nil {
			return rep, err
		}
		rep.Snapped++
	}

	return o.run(ctx, net, &catalogStepper{net: net, cat: filtered}, s.VMax, rep)
}

// run is the sweep loop shared by both strategies.
//
// Steps:
//  1. Solve.
//  2. For each element: above vmax → grow; below vmax → propose a shrink,
//     re-solve, commit if the element stays within vmax, otherwise roll back
//     and re-solve.
//  3. If anything was committed, re-solve and sweep again.
//  4. Stop at a sweep without commits or at the sweep cap; list elements
//     still above vmax that could not grow.
func (o *Optimizer) run(ctx context.Context, net *network.Network, st stepper, vmax float64, rep Report) (Report, error) {
	k := st.kind()
	ref := func(i int) network.Ref { return network.Ref{Kind: k, Index: i} }

	res, err := o.solve(ctx, net, &rep)
	if err != nil {
		return rep, err
	}

	for rep.Sweeps < o.maxSweeps {
		rep.Sweeps++
		changed := false
		for i := 0; i < net.Count(k); i++ {
			v, err := res.Velocity(ref(i))
			if err != nil {
				return rep, err
			}
			v = math.Abs(v)

			switch {
			case v > vmax:
				grew, err := st.grow(i)
				if err != nil {
					return rep, err
				}
				if grew {
					rep.Grown++
					changed = true
					o.metrics.RecordResize(k.String(), ActionGrow)
				}

			case v < vmax:
				p, err := st.shrink(i)
				if err != nil {
					return rep, err
				}
				if p == nil {
					continue
				}
				next, committed, err := o.try(ctx, net, p, ref(i), vmax, &rep)
				if err != nil {
					return rep, err
				}
				res = next
				if committed {
					rep.Shrunk++
					changed = true
					o.metrics.RecordResize(k.String(), ActionShrink)
				} else {
					rep.Reverted++
					o.metrics.RecordResize(k.String(), ActionRevert)
				}
			}
		}
		o.log.Debug("sizing sweep", "kind", k.String(), "sweep", rep.Sweeps,
			"grown", rep.Grown, "shrunk", rep.Shrunk, "reverted", rep.Reverted)

		if !changed {
			rep.FixedPoint = true
			break
		}
		if res, err = o.solve(ctx, net, &rep); err != nil {
			return rep, err
		}
	}

	for i := 0; i < net.Count(k); i++ {
		if v, _ := res.Velocity(ref(i)); math.Abs(v) > vmax {
			rep.AtLimit = append(rep.AtLimit, i)
		}
	}
	o.metrics.RecordSizing(k.String(), rep.Sweeps)
	if !rep.FixedPoint {
		o.log.Warn("sizing stopped at sweep cap", "kind", k.String(), "sweeps", rep.Sweeps)
	}
	if len(rep.AtLimit) > 0 {
		o.log.Warn("elements above velocity limit", "kind", k.String(), "count", len(rep.AtLimit), "v_max", vmax)
	}
	o.log.Info("sizing finished", "kind", k.String(), "sweeps", rep.Sweeps, "solves", rep.Solves,
		"grown", rep.Grown, "shrunk", rep.Shrunk, "reverted", rep.Reverted, "fixed_point", rep.FixedPoint)

	return rep, nil
}

// try applies p, re-solves and keeps p only when the element stays within
// vmax. On rollback the network is solved again so the returned results
// always describe the committed state. A failed solve rolls p back before
// the error is returned.
func (o *Optimizer) try(ctx context.Context, net *network.Network, p *proposal, ref network.Ref, vmax float64, rep *Report) (*solver.Results, bool, error) {
	if err := p.apply(); err != nil {
		return nil, false, err
	}
	res, err := o.solve(ctx, net, rep)
	if err != nil {
		if rbErr := p.rollback(); rbErr != nil {
			return nil, false, rbErr
		}
		return nil, false, err
	}
	v, err := res.Velocity(ref)
	if err != nil {
		return nil, false, err
	}
	if math.Abs(v) <= vmax {
		return res, true, nil
	}

	if err := p.rollback(); err != nil {
		return nil, false, err
	}
	res, err = o.solve(ctx, net, rep)
	if err != nil {
		return nil, false, err
	}

	return res, false, nil
}

func (o *Optimizer) solve(ctx context.Context, net *network.Network, rep *Report) (*solver.Results, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("sizing: %w", context.Cause(ctx))
	}
	rep.Solves++
	res, err := o.solver.Solve(ctx, net)
	if err != nil {
		return nil, fmt.Errorf("sizing: %w", err)
	}

	return res, nil
}

type continuousStepper struct {
	net *network.Network
	k   network.Kind
	s   ContinuousSettings
}

func (c *continuousStepper) kind() network.Kind { return c.k }

func (c *continuousStepper) grow(i int) (bool, error) {
	ref := network.Ref{Kind: c.k, Index: i}
	d, err := c.net.Diameter(ref)
	if err != nil {
		return false, err
	}
	next := d + c.s.Step
	if c.s.MaxDiameter > 0 && next > c.s.MaxDiameter+c.s.Step*1e-9 {
		return false, nil
	}

	return true, c.net.SetDiameter(ref, next)
}

func (c *continuousStepper) shrink(i int) (*proposal, error) {
	ref := network.Ref{Kind: c.k, Index: i}
	d, err := c.net.Diameter(ref)
	if err != nil {
		return nil, err
	}
	next := d - c.s.Step
	// tolerate rounding drift from repeated steps
	if next < c.s.MinDiameter-c.s.Step*1e-9 {
		return nil, nil
	}

	return &proposal{
		apply:    func() error { return c.net.SetDiameter(ref, next) },
		rollback: func() error { return c.net.SetDiameter(ref, d) },
	}, nil
}

type catalogStepper struct {
	net *network.Network
	cat *catalog.Catalog
}

func (c *catalogStepper) kind() network.Kind { return network.KindPipe }

func (c *catalogStepper) grow(i int) (bool, error) {
	e, ok := c.cat.Larger(c.net.Pipe(i).StdType)
	if !ok {
		return false, nil
	}

	return true, c.net.ApplyPipeType(i, e)
}

func (c *catalogStepper) shrink(i int) (*proposal, error) {
	current, err := c.cat.Lookup(c.net.Pipe(i).StdType)
	if err != nil {
		return nil, err
	}
	smaller, ok := c.cat.Smaller(current.Name)
	if !ok {
		return nil, nil
	}

	return &proposal{
		apply:    func() error { return c.net.ApplyPipeType(i, smaller) },
		rollback: func() error { return c.net.ApplyPipeType(i, current) },
	}, nil
}
