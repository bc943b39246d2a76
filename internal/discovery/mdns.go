// ABOUTME: mDNS advertisement and browsing for the remote control
// ABOUTME: Players announce _musics._tcp so controllers can find them on the LAN
package discovery

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hashicorp/mdns"
	log "github.com/sirupsen/logrus"
)

// ServiceType is the advertised mDNS service
const ServiceType = "_musics._tcp"

// Config holds discovery configuration
type Config struct {
	ServiceName string
	Port        int

	// BrowseTimeout bounds each query round (default: 3s)
	BrowseTimeout time.Duration
}

// Manager handles mDNS operations
type Manager struct {
	config  Config
	ctx     context.Context
	cancel  context.CancelFunc
	remotes chan *RemoteInfo
}

// RemoteInfo describes a discovered player remote
type RemoteInfo struct {
	Name string
	Host string
	Port int
}

// Addr returns host:port
func (r *RemoteInfo) Addr() string {
	return net.JoinHostPort(r.Host, strconv.Itoa(r.Port))
}

// NewManager creates a discovery manager
func NewManager(config Config) *Manager {
	if config.BrowseTimeout == 0 {
		config.BrowseTimeout = 3 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())

	return &Manager{
		config:  config,
		ctx:     ctx,
		cancel:  cancel,
		remotes: make(chan *RemoteInfo, 10),
	}
}

// Advertise announces the remote control until Stop
func (m *Manager) Advertise() error {
	ips, err := getLocalIPs()
	if err != nil {
		return fmt.Errorf("failed to get local IPs: %w", err)
	}

	service, err := mdns.NewMDNSService(
		m.config.ServiceName,
		ServiceType,
		"",
		"",
		m.config.Port,
		ips,
		txtRecords(),
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("failed to create mdns server: %w", err)
	}

	log.Infof("Advertising mDNS service: %s on port %d (type: %s)", m.config.ServiceName, m.config.Port, ServiceType)

	go func() {
		<-m.ctx.Done()
		server.Shutdown()
	}()

	return nil
}

func txtRecords() []string {
	return []string{"status=/status", "ws=/ws"}
}

// Browse searches for other players until Stop
func (m *Manager) Browse() {
	go m.browseLoop()
}

func (m *Manager) browseLoop() {
	for {
		select {
		case <-m.ctx.Done():
			close(m.remotes)
			return
		default:
		}

		entries := make(chan *mdns.ServiceEntry, 10)
		forwarded := make(chan struct{})

		go func() {
			defer close(forwarded)
			for entry := range entries {
				remote := toRemote(entry)
				if remote == nil {
					continue
				}
				log.Debugf("Discovered remote: %s at %s", remote.Name, remote.Addr())

				select {
				case m.remotes <- remote:
				case <-m.ctx.Done():
				}
			}
		}()

		params := &mdns.QueryParam{
			Service: ServiceType,
			Domain:  "local",
			Timeout: m.config.BrowseTimeout,
			Entries: entries,
		}
		if err := mdns.Query(params); err != nil {
			log.Debugf("mDNS query failed: %v", err)
		}
		close(entries)
		<-forwarded
	}
}

func toRemote(entry *mdns.ServiceEntry) *RemoteInfo {
	if entry == nil || entry.AddrV4 == nil {
		return nil
	}
	return &RemoteInfo{
		Name: entry.Name,
		Host: entry.AddrV4.String(),
		Port: entry.Port,
	}
}

// Remotes returns the channel of discovered remotes. It closes after Stop.
func (m *Manager) Remotes() <-chan *RemoteInfo {
	return m.remotes
}

// Stop ends advertisement and browsing
func (m *Manager) Stop() {
	m.cancel()
}

// getLocalIPs returns non-loopback IPv4 addresses of interfaces that are up
func getLocalIPs() ([]net.IP, error) {
	var ips []net.IP

	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			if ipnet, ok := addr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
				if ipnet.IP.To4() != nil {
					ips = append(ips, ipnet.IP)
				}
			}
		}
	}

	return ips, nil
}
