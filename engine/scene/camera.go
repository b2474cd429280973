package scene

import (
	"github.com/chewxy/math32"

	"github.com/spaghettifunk/dream/engine/definition"
	"github.com/spaghettifunk/dream/engine/math"
)

// pitchLimit is 89 degrees, keeping the camera out of gimbal lock.
const pitchLimit float32 = 1.55334306

/**
 * @brief The free flying camera of a scene runtime. Pitch and yaw are in
 * radians; with both at zero the camera looks down -Z.
 */
type Camera struct {
	Translation   math.Vec3
	Pitch         float32
	Yaw           float32
	MovementSpeed float32
}

func NewCamera() *Camera {
	return &Camera{MovementSpeed: definition.DefaultCameraMovementSpeed}
}

// UseDefinition copies the stored camera pose of a scene definition.
func (c *Camera) UseDefinition(def *definition.SceneDefinition) {
	ct := def.Camera()
	c.Translation = ct.Translation
	c.Yaw = ct.Yaw
	c.SetPitch(ct.Pitch)
	c.MovementSpeed = def.CameraMovementSpeed()
}

func (c *Camera) Forward() math.Vec3 {
	cp := math32.Cos(c.Pitch)
	return math.NewVec3(-math32.Sin(c.Yaw)*cp, math32.Sin(c.Pitch), -math32.Cos(c.Yaw)*cp)
}

func (c *Camera) Right() math.Vec3 {
	return math.NewVec3(math32.Cos(c.Yaw), 0, -math32.Sin(c.Yaw))
}

func (c *Camera) MoveForward(amount float32) {
	c.Translation = c.Translation.Add(c.Forward().MulScalar(amount))
}

func (c *Camera) MoveBackward(amount float32) {
	c.MoveForward(-amount)
}

func (c *Camera) MoveRight(amount float32) {
	c.Translation = c.Translation.Add(c.Right().MulScalar(amount))
}

func (c *Camera) MoveLeft(amount float32) {
	c.MoveRight(-amount)
}

func (c *Camera) MoveUp(amount float32) {
	c.Translation = c.Translation.Add(math.NewVec3Up().MulScalar(amount))
}

func (c *Camera) MoveDown(amount float32) {
	c.MoveUp(-amount)
}

func (c *Camera) AddYaw(amount float32) {
	c.Yaw += amount
}

func (c *Camera) AddPitch(amount float32) {
	c.SetPitch(c.Pitch + amount)
}

func (c *Camera) SetPitch(pitch float32) {
	c.Pitch = math.Clamp(pitch, -pitchLimit, pitchLimit)
}

// Transform returns the camera pose as a definition camera transform.
func (c *Camera) Transform() definition.CameraTransform {
	return definition.CameraTransform{
		Translation: c.Translation,
		Pitch:       c.Pitch,
		Yaw:         c.Yaw,
	}
}

// CanSee reports whether point lies within maxDistance of the camera.
func (c *Camera) CanSee(point math.Vec3, maxDistance float32) bool {
	if maxDistance <= 0 {
		return true
	}
	return c.Translation.Distance(point) <= maxDistance
}
