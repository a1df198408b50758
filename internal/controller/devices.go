package controller

import (
	"fmt"
	"math"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/simhost"
)

// Device names on the e-puck body.
const (
	LeftMotorName  = "left wheel motor"
	RightMotorName = "right wheel motor"
	IndicatorCount = 8
)

// IndicatorName returns the name of the i-th LED.
func IndicatorName(i int) string {
	return fmt.Sprintf("led%d", i)
}

// Devices are the resolved actuators and sensors the loop drives.
type Devices struct {
	LeftMotor  simhost.Motor
	RightMotor simhost.Motor
	Sensors    [core.ActiveSensors]simhost.DistanceSensor
	Indicators [IndicatorCount]simhost.LED
}

// ResolveDevices looks up every device, puts both motors in velocity mode
// at rest and enables the sensors. Any missing device is fatal.
func ResolveDevices(r simhost.Robot, timestep time.Duration) (*Devices, error) {
	d := &Devices{}
	var err error

	if d.LeftMotor, err = r.Motor(LeftMotorName); err != nil {
		return nil, fmt.Errorf("resolving %q: %w", LeftMotorName, err)
	}
	if d.RightMotor, err = r.Motor(RightMotorName); err != nil {
		return nil, fmt.Errorf("resolving %q: %w", RightMotorName, err)
	}
	for _, m := range []simhost.Motor{d.LeftMotor, d.RightMotor} {
		m.SetPosition(math.Inf(1))
		m.SetVelocity(0)
	}

	for i := range d.Indicators {
		name := IndicatorName(i)
		if d.Indicators[i], err = r.LED(name); err != nil {
			return nil, fmt.Errorf("resolving %q: %w", name, err)
		}
	}

	for i, name := range core.SensorNames {
		if d.Sensors[i], err = r.DistanceSensor(name); err != nil {
			return nil, fmt.Errorf("resolving %q: %w", name, err)
		}
		d.Sensors[i].Enable(timestep)
	}

	return d, nil
}

// ReadSensors samples all active sensors.
func (d *Devices) ReadSensors() core.SensorReading {
	var s core.SensorReading
	for i, sensor := range d.Sensors {
		s[i] = sensor.Value()
	}
	return s
}

// Drive sends a wheel command.
func (d *Devices) Drive(v core.VelocityPair) {
	d.LeftMotor.SetVelocity(v.Left)
	d.RightMotor.SetVelocity(v.Right)
}

// SetIndicators applies c to every LED.
func (d *Devices) SetIndicators(c core.Color) {
	for _, led := range d.Indicators {
		led.Set(c)
	}
}
