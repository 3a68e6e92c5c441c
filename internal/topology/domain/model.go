package domain

// Node is a service in the topology.
type Node struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Type      string  `json:"type"`
	Latency   float64 `json:"latency"`
	ErrorRate float64 `json:"errorRate"`
	Traffic   float64 `json:"traffic"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID        string  `json:"id"`
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Protocol  string  `json:"protocol"`
	Traffic   float64 `json:"traffic"`
	ErrorRate float64 `json:"errorRate"`
	RPS       float64 `json:"rps"`
}

// NodeInput is a partially specified node. Nil fields are absent.
type NodeInput struct {
	ID        *string  `json:"id,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Type      *string  `json:"type,omitempty"`
	Latency   *float64 `json:"latency,omitempty"`
	ErrorRate *float64 `json:"errorRate,omitempty"`
	Traffic   *float64 `json:"traffic,omitempty"`
	X         *float64 `json:"x,omitempty"`
	Y         *float64 `json:"y,omitempty"`
}

// EdgeInput is a partially specified edge. Source and Target are required.
type EdgeInput struct {
	ID        *string  `json:"id,omitempty"`
	Source    string   `json:"source"`
	Target    string   `json:"target"`
	Protocol  *string  `json:"protocol,omitempty"`
	Traffic   *float64 `json:"traffic,omitempty"`
	ErrorRate *float64 `json:"errorRate,omitempty"`
	RPS       *float64 `json:"rps,omitempty"`
}

// Node type categories used when a caller does not supply one. Other
// values are accepted as-is.
const (
	TypeBackend  = "backend"
	TypeFrontend = "frontend"
	TypeDatabase = "database"
	TypeGateway  = "gateway"
)

var DefaultNodeTypes = []string{TypeBackend, TypeFrontend, TypeDatabase, TypeGateway}

const DefaultProtocol = "HTTP"

// Health is the result of a liveness probe against the snapshot store.
type Health struct {
	Status      string  `json:"status"`
	Timestamp   string  `json:"timestamp"`
	Uptime      float64 `json:"uptime"`
	UptimeHuman string  `json:"uptimeHuman,omitempty"`
	Nodes       int     `json:"nodes"`
	Edges       int     `json:"edges"`
	Error       string  `json:"error,omitempty"`
}

const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
)
