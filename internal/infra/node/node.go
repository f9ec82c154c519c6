package node

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// Node describes this client process. It identifies requests and telemetry.
type Node struct {
	ID         string
	Hostname   string
	Version    string
	CommitHash string
}

// set at build time with -ldflags "-X dronefleet/internal/infra/node.Version=..."
var Version = "development"
var CommitHash = "unknown"

const applicationName = "fleetctl"

var (
	nodeID       string
	nodeIDOnce   sync.Once
	hostname     string
	hostnameOnce sync.Once
)

// GetNodeInfo returns the current node information
func GetNodeInfo() *Node {
	return &Node{
		ID:         getNodeID(),
		Hostname:   getHostname(),
		Version:    Version,
		CommitHash: CommitHash,
	}
}

// UserAgent is the User-Agent sent to the fleet API.
func (n *Node) UserAgent() string {
	return fmt.Sprintf("%s/%s (%s; %s/%s)", applicationName, n.Version, n.CommitHash, runtime.GOOS, runtime.GOARCH)
}

func (n *Node) ServiceName() string {
	return applicationName
}

func getNodeID() string {
	nodeIDOnce.Do(func() {
		nodeID = uuid.New().String()
	})
	return nodeID
}

func getHostname() string {
	hostnameOnce.Do(func() {
		name, err := os.Hostname()
		if err != nil || name == "" {
			name = "localhost"
		}
		hostname = name
	})
	return hostname
}
