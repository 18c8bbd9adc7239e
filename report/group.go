package report

import (
	"sort"

	"github.com/tnqbao/gau-inventory-service/entity"
)

// EnvironmentGroup holds the deployments of one environment, newest first.
type EnvironmentGroup struct {
	Environment string              `json:"environment"`
	Label       string              `json:"label"`
	Deployments []entity.Deployment `json:"deployments"`
}

// GroupDeploymentsByEnvironment buckets deployments by environment. Known
// environments come first in entity.EnvironmentOrder, unknown ones follow in
// name order, and empty groups are left out.
func GroupDeploymentsByEnvironment(deployments []entity.Deployment) []EnvironmentGroup {
	buckets := make(map[string][]entity.Deployment)
	for _, d := range deployments {
		buckets[d.Environment] = append(buckets[d.Environment], d)
	}

	known := make(map[string]bool, len(entity.EnvironmentOrder))
	order := make([]string, 0, len(buckets))
	for _, env := range entity.EnvironmentOrder {
		known[env] = true
		order = append(order, env)
	}
	var unknown []string
	for env := range buckets {
		if !known[env] {
			unknown = append(unknown, env)
		}
	}
	sort.Strings(unknown)
	order = append(order, unknown...)

	groups := make([]EnvironmentGroup, 0, len(buckets))
	for _, env := range order {
		items := buckets[env]
		if len(items) == 0 {
			continue
		}
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].DeployedAt.After(items[j].DeployedAt)
		})
		groups = append(groups, EnvironmentGroup{
			Environment: env,
			Label:       entity.Label(entity.KindEnvironment, env),
			Deployments: items,
		})
	}
	return groups
}
