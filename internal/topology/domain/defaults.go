package domain

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Placeholder telemetry ranges used when a field is absent.
const (
	MaxDefaultLatency     = 200
	MaxDefaultNodeTraffic = 50
	MaxDefaultEdgeTraffic = 50
	MaxDefaultRPS         = 1000
	CoordinateBound       = 400
	NodeIDPrefix          = "service"
	EdgeIDPrefix          = "edge"
)

// IDFunc returns a fresh id with the given prefix.
type IDFunc func(prefix string) string

// NewTimestampID builds ids of the form "<prefix>-<unix ms>-<8 hex chars>".
func NewTimestampID(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), suffix)
}

// Synthesizer fills absent fields of partial inputs. It is not safe for
// concurrent use; the graph service calls it under its write lock.
type Synthesizer struct {
	rng   *rand.Rand
	newID IDFunc
}

// NewSynthesizer returns a Synthesizer. A nil rng seeds one from the clock,
// a nil newID uses NewTimestampID.
func NewSynthesizer(rng *rand.Rand, newID IDFunc) *Synthesizer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if newID == nil {
		newID = NewTimestampID
	}
	return &Synthesizer{rng: rng, newID: newID}
}

// NewSeededSynthesizer is deterministic for a given seed.
func NewSeededSynthesizer(seed uint64, newID IDFunc) *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewPCG(seed, seed)), newID)
}

func (s *Synthesizer) NodeID() string { return s.newID(NodeIDPrefix) }

func (s *Synthesizer) EdgeID() string { return s.newID(EdgeIDPrefix) }

// Node builds a complete node from in. An absent or blank id is generated.
func (s *Synthesizer) Node(in NodeInput) Node {
	n := Node{}
	if in.ID != nil && strings.TrimSpace(*in.ID) != "" {
		n.ID = *in.ID
	} else {
		n.ID = s.NodeID()
	}
	if in.Name != nil && *in.Name != "" {
		n.Name = *in.Name
	} else {
		n.Name = fmt.Sprintf("Service %d", s.rng.IntN(1000))
	}
	if in.Type != nil && *in.Type != "" {
		n.Type = *in.Type
	} else {
		n.Type = DefaultNodeTypes[s.rng.IntN(len(DefaultNodeTypes))]
	}
	n.Latency = valueOr(in.Latency, func() float64 { return float64(s.rng.IntN(MaxDefaultLatency)) })
	n.ErrorRate = valueOr(in.ErrorRate, s.errorRate)
	n.Traffic = valueOr(in.Traffic, func() float64 { return float64(s.rng.IntN(MaxDefaultNodeTraffic)) })
	n.X = valueOr(in.X, s.coordinate)
	n.Y = valueOr(in.Y, s.coordinate)
	return n
}

// Edge builds a complete edge from in. Source and target are copied as given.
func (s *Synthesizer) Edge(in EdgeInput) Edge {
	e := Edge{Source: in.Source, Target: in.Target}
	if in.ID != nil && strings.TrimSpace(*in.ID) != "" {
		e.ID = *in.ID
	} else {
		e.ID = s.EdgeID()
	}
	if in.Protocol != nil && *in.Protocol != "" {
		e.Protocol = *in.Protocol
	} else {
		e.Protocol = DefaultProtocol
	}
	e.Traffic = valueOr(in.Traffic, func() float64 { return float64(s.rng.IntN(MaxDefaultEdgeTraffic) + 1) })
	e.ErrorRate = valueOr(in.ErrorRate, s.errorRate)
	e.RPS = valueOr(in.RPS, func() float64 { return float64(s.rng.IntN(MaxDefaultRPS)) })
	return e
}

// errorRate is in [0,1] with two decimals.
func (s *Synthesizer) errorRate() float64 {
	return math.Round(s.rng.Float64()*100) / 100
}

func (s *Synthesizer) coordinate() float64 {
	return s.rng.Float64()*2*CoordinateBound - CoordinateBound
}

func valueOr(v *float64, gen func() float64) float64 {
	if v != nil {
		return *v
	}
	return gen()
}
