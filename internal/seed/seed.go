// Package seed loads an inventory snapshot from YAML and creates it through the service layer.
package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/tnqbao/gau-inventory-service/service"
)

// Seed entries reference each other by name (hostname for servers, username for users).
type Seed struct {
	DataCenters []DataCenter `yaml:"data_centers"`
	Servers     []Server     `yaml:"servers"`
	Clusters    []Cluster    `yaml:"clusters"`
	Machines    []Machine    `yaml:"machines"`
	Systems     []System     `yaml:"systems"`
	Roles       []Role       `yaml:"roles"`
	Users       []User       `yaml:"users"`
}

type DataCenter struct {
	Name        string `yaml:"name"`
	Location    string `yaml:"location"`
	Description string `yaml:"description"`
}

type Server struct {
	Hostname     string `yaml:"hostname"`
	SerialNumber string `yaml:"serial_number"`
	Brand        string `yaml:"brand"`
	Model        string `yaml:"model"`
	CPUCores     int    `yaml:"cpu_cores"`
	MemoryGB     int    `yaml:"memory_gb"`
	StorageGB    int    `yaml:"storage_gb"`
	IPAddress    string `yaml:"ip_address"`
	Status       string `yaml:"status"`
	Rack         string `yaml:"rack"`
	DataCenter   string `yaml:"data_center"`
}

type Cluster struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	DataCenter  string `yaml:"data_center"`
}

type Machine struct {
	Name            string `yaml:"name"`
	Hostname        string `yaml:"hostname"`
	IPAddress       string `yaml:"ip_address"`
	Type            string `yaml:"type"`
	OperatingSystem string `yaml:"operating_system"`
	CPUCores        int    `yaml:"cpu_cores"`
	MemoryGB        int    `yaml:"memory_gb"`
	StorageGB       int    `yaml:"storage_gb"`
	Status          string `yaml:"status"`
	Cluster         string `yaml:"cluster"`
	// Server, when set, opens an active assignment of the machine to that server.
	Server string `yaml:"server"`
}

type System struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Area        string      `yaml:"area"`
	Criticality string      `yaml:"criticality"`
	Status      string      `yaml:"status"`
	Components  []Component `yaml:"components"`
}

type Component struct {
	Name          string       `yaml:"name"`
	Type          string       `yaml:"type"`
	Technology    string       `yaml:"technology"`
	Version       string       `yaml:"version"`
	RepositoryURL string       `yaml:"repository_url"`
	Deployments   []Deployment `yaml:"deployments"`
}

type Deployment struct {
	Machine     string     `yaml:"machine"`
	Environment string     `yaml:"environment"`
	Version     string     `yaml:"version"`
	DeployedAt  *time.Time `yaml:"deployed_at"`
	DeployedBy  string     `yaml:"deployed_by"`
	Status      string     `yaml:"status"`
	Notes       string     `yaml:"notes"`
}

type Role struct {
	Name        string `yaml:"name"`
	Scope       string `yaml:"scope"`
	Description string `yaml:"description"`
}

type User struct {
	Username string  `yaml:"username"`
	FullName string  `yaml:"full_name"`
	Email    string  `yaml:"email"`
	Active   *bool   `yaml:"active"`
	Grants   []Grant `yaml:"roles"`
}

type Grant struct {
	Role    string `yaml:"role"`
	Machine string `yaml:"machine"`
	System  string `yaml:"system"`
}

// Summary counts the records created per kind.
type Summary struct {
	DataCenters int
	Servers     int
	Clusters    int
	Machines    int
	Assignments int
	Systems     int
	Components  int
	Deployments int
	Roles       int
	Users       int
	Grants      int
}

func Load(r io.Reader) (*Seed, error) {
	var s Seed
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil {
		if err == io.EOF {
			return &s, nil
		}
		return nil, fmt.Errorf("failed to parse seed: %w", err)
	}
	return &s, nil
}

type refs map[string]uuid.UUID

func (r refs) optional(kind, name string) (*uuid.UUID, error) {
	if name == "" {
		return nil, nil
	}
	id, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unknown %s %q", kind, name)
	}
	return &id, nil
}

func (r refs) required(kind, name string) (uuid.UUID, error) {
	id, err := r.optional(kind, name)
	if err != nil {
		return uuid.Nil, err
	}
	if id == nil {
		return uuid.Nil, fmt.Errorf("%s is required", kind)
	}
	return *id, nil
}

// Apply creates the seed in dependency order. It stops at the first failure;
// records created before it are kept.
func Apply(ctx context.Context, svc *service.Service, s *Seed) (Summary, error) {
	var sum Summary
	dataCenters, servers, clusters, machines := refs{}, refs{}, refs{}, refs{}
	systems, roles, users := refs{}, refs{}, refs{}

	for _, dc := range s.DataCenters {
		created, err := svc.CreateDataCenter(ctx, service.DataCenterInput{
			Name:        dc.Name,
			Location:    dc.Location,
			Description: dc.Description,
		})
		if err != nil {
			return sum, fmt.Errorf("data center %q: %w", dc.Name, err)
		}
		dataCenters[dc.Name] = created.ID
		sum.DataCenters++
	}

	for _, srv := range s.Servers {
		dcID, err := dataCenters.optional("data center", srv.DataCenter)
		if err != nil {
			return sum, fmt.Errorf("server %q: %w", srv.Hostname, err)
		}
		created, err := svc.CreateServer(ctx, service.ServerInput{
			Hostname:     srv.Hostname,
			SerialNumber: srv.SerialNumber,
			Brand:        srv.Brand,
			Model:        srv.Model,
			CPUCores:     srv.CPUCores,
			MemoryGB:     srv.MemoryGB,
			StorageGB:    srv.StorageGB,
			IPAddress:    srv.IPAddress,
			Status:       srv.Status,
			Rack:         srv.Rack,
			DataCenterID: dcID,
		})
		if err != nil {
			return sum, fmt.Errorf("server %q: %w", srv.Hostname, err)
		}
		servers[srv.Hostname] = created.ID
		sum.Servers++
	}

	for _, cl := range s.Clusters {
		dcID, err := dataCenters.optional("data center", cl.DataCenter)
		if err != nil {
			return sum, fmt.Errorf("cluster %q: %w", cl.Name, err)
		}
		created, err := svc.CreateCluster(ctx, service.ClusterInput{
			Name:         cl.Name,
			Type:         cl.Type,
			Description:  cl.Description,
			DataCenterID: dcID,
		})
		if err != nil {
			return sum, fmt.Errorf("cluster %q: %w", cl.Name, err)
		}
		clusters[cl.Name] = created.ID
		sum.Clusters++
	}

	for _, m := range s.Machines {
		clusterID, err := clusters.optional("cluster", m.Cluster)
		if err != nil {
			return sum, fmt.Errorf("machine %q: %w", m.Name, err)
		}
		serverID, err := servers.optional("server", m.Server)
		if err != nil {
			return sum, fmt.Errorf("machine %q: %w", m.Name, err)
		}
		created, err := svc.CreateMachine(ctx, service.MachineInput{
			Name:            m.Name,
			Hostname:        m.Hostname,
			IPAddress:       m.IPAddress,
			Type:            m.Type,
			OperatingSystem: m.OperatingSystem,
			CPUCores:        m.CPUCores,
			MemoryGB:        m.MemoryGB,
			StorageGB:       m.StorageGB,
			Status:          m.Status,
			ClusterID:       clusterID,
		})
		if err != nil {
			return sum, fmt.Errorf("machine %q: %w", m.Name, err)
		}
		machines[m.Name] = created.ID
		sum.Machines++

		if serverID != nil {
			if _, err := svc.AssignMachine(ctx, service.AssignmentInput{ServerID: *serverID, MachineID: created.ID}); err != nil {
				return sum, fmt.Errorf("machine %q on server %q: %w", m.Name, m.Server, err)
			}
			sum.Assignments++
		}
	}

	for _, r := range s.Roles {
		created, err := svc.CreateRole(ctx, service.RoleInput{Name: r.Name, Scope: r.Scope, Description: r.Description})
		if err != nil {
			return sum, fmt.Errorf("role %q: %w", r.Name, err)
		}
		roles[r.Name] = created.ID
		sum.Roles++
	}

	for _, u := range s.Users {
		created, err := svc.CreateUser(ctx, service.UserInput{
			Username: u.Username,
			FullName: u.FullName,
			Email:    u.Email,
			Active:   u.Active,
		})
		if err != nil {
			return sum, fmt.Errorf("user %q: %w", u.Username, err)
		}
		users[u.Username] = created.ID
		sum.Users++
	}

	for _, sys := range s.Systems {
		created, err := svc.CreateSystem(ctx, service.SystemInput{
			Name:        sys.Name,
			Description: sys.Description,
			Area:        sys.Area,
			Criticality: sys.Criticality,
			Status:      sys.Status,
		})
		if err != nil {
			return sum, fmt.Errorf("system %q: %w", sys.Name, err)
		}
		systems[sys.Name] = created.ID
		sum.Systems++

		for _, c := range sys.Components {
			component, err := svc.CreateComponent(ctx, service.ComponentInput{
				SystemID:      created.ID,
				Name:          c.Name,
				Type:          c.Type,
				Technology:    c.Technology,
				Version:       c.Version,
				RepositoryURL: c.RepositoryURL,
			})
			if err != nil {
				return sum, fmt.Errorf("component %q of %q: %w", c.Name, sys.Name, err)
			}
			sum.Components++

			for _, d := range c.Deployments {
				machineID, err := machines.required("machine", d.Machine)
				if err != nil {
					return sum, fmt.Errorf("deployment of %q: %w", c.Name, err)
				}
				deployedBy, err := users.optional("user", d.DeployedBy)
				if err != nil {
					return sum, fmt.Errorf("deployment of %q: %w", c.Name, err)
				}
				if _, err := svc.CreateDeployment(ctx, service.DeploymentInput{
					ComponentID:  component.ID,
					MachineID:    machineID,
					Environment:  d.Environment,
					Version:      d.Version,
					DeployedAt:   d.DeployedAt,
					DeployedByID: deployedBy,
					Status:       d.Status,
					Notes:        d.Notes,
				}); err != nil {
					return sum, fmt.Errorf("deployment of %q on %q: %w", c.Name, d.Machine, err)
				}
				sum.Deployments++
			}
		}
	}

	for _, u := range s.Users {
		for _, g := range u.Grants {
			roleID, err := roles.required("role", g.Role)
			if err != nil {
				return sum, fmt.Errorf("grant for %q: %w", u.Username, err)
			}
			machineID, err := machines.optional("machine", g.Machine)
			if err != nil {
				return sum, fmt.Errorf("grant for %q: %w", u.Username, err)
			}
			systemID, err := systems.optional("system", g.System)
			if err != nil {
				return sum, fmt.Errorf("grant for %q: %w", u.Username, err)
			}
			if _, err := svc.AssignRole(ctx, service.UserRoleInput{
				UserID:    users[u.Username],
				RoleID:    roleID,
				MachineID: machineID,
				SystemID:  systemID,
			}); err != nil {
				return sum, fmt.Errorf("grant %q for %q: %w", g.Role, u.Username, err)
			}
			sum.Grants++
		}
	}

	return sum, nil
}
