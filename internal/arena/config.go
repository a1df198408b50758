package arena

import (
	"fmt"
	"time"
)

// Default world dimensions and body parameters, in meters and radians.
const (
	DefaultWidth   = 1.0
	DefaultDepth   = 1.0
	DefaultBoxSize = 0.1

	WheelRadius   = 0.0205
	AxleLength    = 0.052
	BodyRadius    = 0.037
	MotorMaxSpeed = 6.28
)

// DefaultBasicTimeStep is the world's physics step as reported to controllers.
const DefaultBasicTimeStep = 32 * time.Millisecond

// Config describes the arena layout. The arena is centered on the origin;
// X spans Width and Z spans Depth.
type Config struct {
	Width        float64       `json:"width" mapstructure:"width" validate:"gt=0"`
	Depth        float64       `json:"depth" mapstructure:"depth" validate:"gt=0"`
	MaxTicks     uint64        `json:"maxTicks" mapstructure:"maxTicks"`
	Robot        RobotConfig   `json:"robot" mapstructure:"robot"`
	Boxes        []BoxConfig   `json:"boxes" mapstructure:"boxes" validate:"dive"`
	Disturbances []Disturbance `json:"disturbances" mapstructure:"disturbances" validate:"dive"`
}

// RobotConfig is the starting pose. Heading 0 faces +X.
type RobotConfig struct {
	X       float64 `json:"x" mapstructure:"x"`
	Z       float64 `json:"z" mapstructure:"z"`
	Heading float64 `json:"heading" mapstructure:"heading"`
}

// BoxConfig places a square box by its DEF name and center.
type BoxConfig struct {
	Name string  `json:"name" mapstructure:"name" validate:"required"`
	X    float64 `json:"x" mapstructure:"x"`
	Z    float64 `json:"z" mapstructure:"z"`
	Size float64 `json:"size" mapstructure:"size" validate:"gte=0"`
}

// Disturbance displaces or removes a box after the given tick's physics,
// standing in for a person interfering with the arena.
type Disturbance struct {
	Tick   uint64  `json:"tick" mapstructure:"tick" validate:"gt=0"`
	Box    string  `json:"box" mapstructure:"box" validate:"required"`
	DX     float64 `json:"dx" mapstructure:"dx"`
	DZ     float64 `json:"dz" mapstructure:"dz"`
	Remove bool    `json:"remove" mapstructure:"remove"`
}

// DefaultConfig is a 1x1 m arena with three boxes and the robot at the center.
func DefaultConfig() Config {
	return Config{
		Width: DefaultWidth,
		Depth: DefaultDepth,
		Boxes: []BoxConfig{
			{Name: "CAIXA01", X: 0.3, Z: 0.3, Size: DefaultBoxSize},
			{Name: "CAIXA02", X: -0.3, Z: 0.25, Size: DefaultBoxSize},
			{Name: "CAIXA03", X: 0.05, Z: -0.3, Size: DefaultBoxSize},
		},
	}
}

func (c Config) check() error {
	if c.Width <= 0 || c.Depth <= 0 {
		return fmt.Errorf("arena dimensions must be positive, got %gx%g", c.Width, c.Depth)
	}
	seen := make(map[string]bool, len(c.Boxes))
	for _, b := range c.Boxes {
		if b.Name == "" {
			return fmt.Errorf("box at (%g, %g) has no name", b.X, b.Z)
		}
		if seen[b.Name] {
			return fmt.Errorf("duplicate box %q", b.Name)
		}
		seen[b.Name] = true
	}
	for _, d := range c.Disturbances {
		if !seen[d.Box] {
			return fmt.Errorf("disturbance at tick %d targets unknown box %q", d.Tick, d.Box)
		}
	}
	return nil
}
