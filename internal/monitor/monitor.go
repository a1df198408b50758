// Package monitor detects external disturbance of tracked scene objects.
// It keeps a baseline planar pose per object and reports when any object
// has drifted from it by at least DisplacementTolerance on x or z.
package monitor

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/simhost"
)

// DisplacementTolerance is an absolute threshold in scene units.
const DisplacementTolerance = 0.0005

// ErrTrackedObjectNotFound is returned when a tracked object can no longer be read.
var ErrTrackedObjectNotFound = errors.New("tracked object not found")

// TrackedObject pairs a DEF name with its resolved node.
type TrackedObject struct {
	Name string
	Node simhost.Node
}

// PollResult describes the first object found displaced, if any.
type PollResult struct {
	Moved  bool
	Object string
	DX     float64
	DZ     float64
}

// Monitor owns the baseline poses of a fixed set of tracked objects.
type Monitor struct {
	order     []string
	nodes     map[string]simhost.Node
	baselines map[string]core.Pose2D
	logger    *slog.Logger
}

// New snapshots the current pose of every object as the initial baseline.
func New(objects []TrackedObject, logger *slog.Logger) (*Monitor, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m := &Monitor{
		order:     make([]string, 0, len(objects)),
		nodes:     make(map[string]simhost.Node, len(objects)),
		baselines: make(map[string]core.Pose2D, len(objects)),
		logger:    logger,
	}

	for _, obj := range objects {
		if _, dup := m.nodes[obj.Name]; dup {
			return nil, fmt.Errorf("duplicate tracked object %q", obj.Name)
		}
		pose, err := readPose(obj.Name, obj.Node)
		if err != nil {
			return nil, err
		}
		m.order = append(m.order, obj.Name)
		m.nodes[obj.Name] = obj.Node
		m.baselines[obj.Name] = pose
	}

	return m, nil
}

func readPose(name string, node simhost.Node) (core.Pose2D, error) {
	if node == nil {
		return core.Pose2D{}, fmt.Errorf("%w: %s", ErrTrackedObjectNotFound, name)
	}
	v, err := node.Translation()
	if err != nil {
		return core.Pose2D{}, fmt.Errorf("%w: %s: %w", ErrTrackedObjectNotFound, name, err)
	}
	return core.PoseFromVec3(v), nil
}

// Poll compares every object against its baseline and stops at the first
// one displaced beyond tolerance. It never modifies the baseline.
func (m *Monitor) Poll() (PollResult, error) {
	for _, name := range m.order {
		pose, err := readPose(name, m.nodes[name])
		if err != nil {
			return PollResult{}, err
		}
		last := m.baselines[name]
		dx := pose.X - last.X
		dz := pose.Z - last.Z

		if math.Abs(dx) >= DisplacementTolerance || math.Abs(dz) >= DisplacementTolerance {
			return PollResult{Moved: true, Object: name, DX: dx, DZ: dz}, nil
		}
		m.logger.Debug("Tracked object delta", "object", name, "dx", dx, "dz", dz)
	}
	return PollResult{}, nil
}

// Commit overwrites every baseline with the current pose. Either all
// baselines change or none do.
func (m *Monitor) Commit() error {
	current := make([]core.Pose2D, len(m.order))
	for i, name := range m.order {
		pose, err := readPose(name, m.nodes[name])
		if err != nil {
			return err
		}
		current[i] = pose
	}
	for i, name := range m.order {
		m.baselines[name] = current[i]
	}
	return nil
}

// Len returns the number of tracked objects.
func (m *Monitor) Len() int {
	return len(m.order)
}

// Names returns tracked object names in discovery order.
func (m *Monitor) Names() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

// Baseline returns the recorded pose for name.
func (m *Monitor) Baseline(name string) (core.Pose2D, bool) {
	p, ok := m.baselines[name]
	return p, ok
}
