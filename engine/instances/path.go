package instances

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/dream/engine/core"
	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

const splineDegree = 3

/**
 * @brief Moves its scene object along a spline generated from the control
 * points of a path definition. The spline is sampled every 1/(n*stepScalar)
 * of the parameter range, n being the number of control points.
 */
type PathInstance struct {
	instanceBase
	wrap       bool
	splineType definition.SplineType
	stepScalar float32
	controls   []math.Vec3

	points   []math.Vec3
	tangents []math.Vec3
	length   float32
	velocity float32
	current  int
	position math.Vec3
}

func NewPathInstance(def *definition.AssetDefinition, transform *math.Transform) *PathInstance {
	p := &PathInstance{
		instanceBase: newInstanceBase(def, transform),
		splineType:   definition.SplineTypeClamped,
		stepScalar:   1,
		velocity:     1,
	}
	p.loadExtraAttributes()
	return p
}

func (p *PathInstance) loadExtraAttributes() {
	attrs := p.def.Path()
	if attrs == nil {
		return
	}
	p.wrap = attrs.Wrap
	p.splineType = attrs.SplineType
	if attrs.StepScalar > 0 {
		p.stepScalar = attrs.StepScalar
	}
	for _, cp := range attrs.OrderedControlPoints() {
		p.controls = append(p.controls, cp.Position)
	}
}

func (p *PathInstance) Load(projectDir string) bool {
	points := generateSpline(p.splineType, p.controls, p.stepScalar)
	if len(p.controls) < 2 {
		core.LogWarn("path %s has %d control points, nothing to follow", p.name, len(p.controls))
	}

	return p.publish(func() {
		p.points = points
		p.tangents = tangents(points)
		p.length = pathLength(points)
		p.current = 0
		if len(points) > 0 {
			p.position = points[0]
		}
	})
}

// generateSpline samples the spline through controls. Fewer than two control
// points produce no spline.
func generateSpline(kind definition.SplineType, controls []math.Vec3, stepScalar float32) []math.Vec3 {
	n := len(controls)
	if n < 2 {
		return nil
	}
	if stepScalar <= 0 {
		stepScalar = 1
	}
	step := 1 / (float32(n) * stepScalar)
	samples := int(math32.Ceil(1/step)) + 1

	var eval func(u float32) math.Vec3
	switch kind {
	case definition.SplineTypeBezier:
		eval = func(u float32) math.Vec3 { return deCasteljau(controls, u) }
	case definition.SplineTypeOpen:
		degree := min(splineDegree, n-1)
		knots := uniformKnots(n, degree)
		lo, hi := knots[degree], knots[n]
		eval = func(u float32) math.Vec3 { return deBoor(controls, knots, degree, lo+(hi-lo)*u) }
	default:
		degree := min(splineDegree, n-1)
		knots := clampedKnots(n, degree)
		eval = func(u float32) math.Vec3 { return deBoor(controls, knots, degree, u) }
	}

	out := make([]math.Vec3, 0, samples)
	for i := 0; i < samples; i++ {
		u := math32.Min(float32(i)*step, 1)
		out = append(out, eval(u))
		if u == 1 {
			break
		}
	}
	return out
}

func clampedKnots(n, degree int) []float32 {
	knots := make([]float32, n+degree+1)
	interior := n - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float32(i-degree) / float32(interior)
		}
	}
	return knots
}

func uniformKnots(n, degree int) []float32 {
	count := n + degree + 1
	knots := make([]float32, count)
	for i := range knots {
		knots[i] = float32(i) / float32(count-1)
	}
	return knots
}

func deBoor(controls []math.Vec3, knots []float32, degree int, u float32) math.Vec3 {
	n := len(controls)
	k := degree
	for k < n-1 && u >= knots[k+1] {
		k++
	}

	d := make([]math.Vec3, degree+1)
	for j := 0; j <= degree; j++ {
		d[j] = controls[j+k-degree]
	}
	for r := 1; r <= degree; r++ {
		for j := degree; j >= r; j-- {
			lo := knots[j+k-degree]
			denom := knots[j+1+k-r] - lo
			var alpha float32
			if denom != 0 {
				alpha = (u - lo) / denom
			}
			d[j] = d[j-1].Lerp(d[j], alpha)
		}
	}
	return d[degree]
}

func deCasteljau(controls []math.Vec3, u float32) math.Vec3 {
	work := make([]math.Vec3, len(controls))
	copy(work, controls)
	for r := len(work) - 1; r > 0; r-- {
		for i := 0; i < r; i++ {
			work[i] = work[i].Lerp(work[i+1], u)
		}
	}
	return work[0]
}

func pathLength(points []math.Vec3) float32 {
	var l float32
	for i := 1; i < len(points); i++ {
		l += points[i].Distance(points[i-1])
	}
	return l
}

func tangents(points []math.Vec3) []math.Vec3 {
	out := make([]math.Vec3, len(points))
	for i := range points {
		switch {
		case len(points) < 2:
		case i == len(points)-1:
			out[i] = points[i].Sub(points[i-1]).Normalized()
		default:
			out[i] = points[i+1].Sub(points[i]).Normalized()
		}
	}
	return out
}

// SplinePoints returns the sampled spline.
func (p *PathInstance) SplinePoints() []math.Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]math.Vec3, len(p.points))
	copy(out, p.points)
	return out
}

func (p *PathInstance) Tangents() []math.Vec3 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]math.Vec3, len(p.tangents))
	copy(out, p.tangents)
	return out
}

func (p *PathInstance) Wrap() bool { return p.wrap }

// Velocity is the speed along the path in units per second.
func (p *PathInstance) Velocity() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.velocity
}

func (p *PathInstance) SetVelocity(v float32) {
	p.mu.Lock()
	p.velocity = v
	p.mu.Unlock()
}

func (p *PathInstance) CurrentIndex() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// StepAlongPath advances by velocity*delta along the spline and moves the
// owner transform there. Without wrapping the object stops at the last point.
func (p *PathInstance) StepAlongPath(delta float32) math.Vec3 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.points) == 0 || p.length == 0 {
		return p.transform.Translation
	}

	distance := p.velocity * delta
	if p.wrap && distance > p.length {
		distance = math32.Mod(distance, p.length)
	}
	last := len(p.points) - 1
	for distance > 0 {
		if p.current == last {
			if !p.wrap {
				break
			}
			p.current = 0
			p.position = p.points[0]
			continue
		}
		next := p.points[p.current+1]
		gap := p.position.Distance(next)
		if distance < gap {
			p.position = p.position.Add(next.Sub(p.position).Normalized().MulScalar(distance))
			break
		}
		distance -= gap
		p.position = next
		p.current++
	}
	p.transform.SetTranslation(p.position)
	return p.position
}
