package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/infra"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

const (
	optionLimit      = 50
	optionsKeyPrefix = "inventory:options:"
)

// Option is one entry of a form dropdown.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FilterOptions keeps the options whose label contains search, ignoring case,
// sorted by label and capped at limit.
func FilterOptions(options []Option, search string, limit int) []Option {
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]Option, 0, len(options))
	for _, o := range options {
		if needle == "" || strings.Contains(strings.ToLower(o.Label), needle) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Label) < strings.ToLower(out[j].Label)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *Service) SystemOptions(ctx context.Context, search string) ([]Option, error) {
	return s.options(ctx, entity.TargetSystem, search, func(repo *repository.Repository) ([]Option, error) {
		systems, err := repo.SystemRepo.List("")
		if err != nil {
			return nil, err
		}
		out := make([]Option, 0, len(systems))
		for _, sys := range systems {
			out = append(out, Option{Value: sys.ID.String(), Label: sys.Name})
		}
		return out, nil
	})
}

// UserOptions lists active users only.
func (s *Service) UserOptions(ctx context.Context, search string) ([]Option, error) {
	return s.options(ctx, "user", search, func(repo *repository.Repository) ([]Option, error) {
		active := true
		users, err := repo.UserRepo.List(repository.UserFilter{Active: &active})
		if err != nil {
			return nil, err
		}
		out := make([]Option, 0, len(users))
		for _, u := range users {
			label := u.Username
			if u.FullName != "" {
				label = fmt.Sprintf("%s (%s)", u.FullName, u.Username)
			}
			out = append(out, Option{Value: u.ID.String(), Label: label})
		}
		return out, nil
	})
}

// InfraOptions lists the candidates of an affected-infra target type.
func (s *Service) InfraOptions(ctx context.Context, targetType string, search string) ([]Option, error) {
	switch targetType {
	case entity.TargetSystem:
		return s.SystemOptions(ctx, search)
	case entity.TargetServer:
		return s.options(ctx, targetType, search, func(repo *repository.Repository) ([]Option, error) {
			servers, err := repo.ServerRepo.List("")
			if err != nil {
				return nil, err
			}
			out := make([]Option, 0, len(servers))
			for _, srv := range servers {
				out = append(out, Option{Value: srv.ID.String(), Label: srv.Hostname})
			}
			return out, nil
		})
	case entity.TargetMachine:
		return s.options(ctx, targetType, search, func(repo *repository.Repository) ([]Option, error) {
			machines, err := repo.MachineRepo.List(repository.MachineFilter{})
			if err != nil {
				return nil, err
			}
			out := make([]Option, 0, len(machines))
			for _, m := range machines {
				out = append(out, Option{Value: m.ID.String(), Label: m.Name})
			}
			return out, nil
		})
	case entity.TargetCluster:
		return s.options(ctx, targetType, search, func(repo *repository.Repository) ([]Option, error) {
			clusters, err := repo.ClusterRepo.List("")
			if err != nil {
				return nil, err
			}
			out := make([]Option, 0, len(clusters))
			for _, c := range clusters {
				out = append(out, Option{Value: c.ID.String(), Label: c.Name})
			}
			return out, nil
		})
	}
	return nil, utils.NewValidationError("target_type", "must be one of server machine cluster system")
}

func (s *Service) options(ctx context.Context, kind string, search string, load func(*repository.Repository) ([]Option, error)) ([]Option, error) {
	key := optionsKeyPrefix + kind

	var all []Option
	if s.cache != nil {
		err := s.cache.Get(ctx, key, &all)
		if err == nil {
			return FilterOptions(all, search, optionLimit), nil
		}
		if !errors.Is(err, infra.ErrCacheMiss) {
			s.logger.WarningWithContextf(ctx, "[Options] Cache read failed for %s: %v", key, err)
		}
	}

	all, err := load(s.db(ctx))
	if err != nil {
		return nil, s.wrapError(ctx, err, kind)
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, all, s.cacheTTL); err != nil {
			s.logger.WarningWithContextf(ctx, "[Options] Cache write failed for %s: %v", key, err)
		}
	}
	return FilterOptions(all, search, optionLimit), nil
}

var optionKinds = map[string][]string{
	"server":  {entity.TargetServer},
	"machine": {entity.TargetMachine},
	"cluster": {entity.TargetCluster},
	"system":  {entity.TargetSystem},
	"user":    {"user"},
}

func (s *Service) invalidateOptions(ctx context.Context, entityName string) {
	kinds, ok := optionKinds[entityName]
	if !ok || s.cache == nil {
		return
	}
	keys := make([]string, 0, len(kinds))
	for _, k := range kinds {
		keys = append(keys, optionsKeyPrefix+k)
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.WarningWithContextf(ctx, "[Options] Cache invalidation failed for %v: %v", keys, err)
	}
}
