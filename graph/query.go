package graph

import (
	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/utils"
)

func idArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(UUID)},
	}
}

func searchArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"search": &graphql.ArgumentConfig{Type: graphql.String},
	}
}

func argID(p graphql.ResolveParams, name string) (uuid.UUID, error) {
	id, ok := p.Args[name].(uuid.UUID)
	if !ok {
		return uuid.Nil, utils.NewValidationError(name, "must be a UUID")
	}
	return id, nil
}

func argString(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

// byID builds a single-entity lookup field.
func byID[T any](t graphql.Output, get func(p graphql.ResolveParams, id uuid.UUID) (*T, error)) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Args: idArgs(),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := argID(p, "id")
			if err != nil {
				return nil, err
			}
			return get(p, id)
		},
	}
}

// filtered decodes every argument of the field into a filter struct.
func filtered[F any, R any](t graphql.Output, args graphql.FieldConfigArgument, list func(p graphql.ResolveParams, filter F) (R, error)) *graphql.Field {
	return &graphql.Field{
		Type: t,
		Args: args,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			var filter F
			if err := utils.DecodeArgs(p.Args, &filter); err != nil {
				return nil, utils.NewValidationError("filter", err.Error())
			}
			return list(p, filter)
		},
	}
}

func (b *builder) query() *graphql.Object {
	svc := b.svc
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"dataCenter": byID(b.dataCenter, func(p graphql.ResolveParams, id uuid.UUID) (*entity.DataCenter, error) {
				return svc.GetDataCenter(p.Context, id)
			}),
			"dataCenters": &graphql.Field{
				Type: graphql.NewList(b.dataCenter),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListDataCenters(p.Context)
				},
			},
			"servidor": byID(b.server, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Server, error) {
				return svc.GetServer(p.Context, id)
			}),
			"servidores": &graphql.Field{
				Type: graphql.NewList(b.server),
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListServers(p.Context, argString(p, "search"))
				},
			},
			"cluster": byID(b.cluster, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Cluster, error) {
				return svc.GetCluster(p.Context, id)
			}),
			"clusters": &graphql.Field{
				Type: graphql.NewList(b.cluster),
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListClusters(p.Context, argString(p, "search"))
				},
			},
			"maquina": byID(b.machine, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Machine, error) {
				return svc.GetMachine(p.Context, id)
			}),
			"maquinas": filtered(graphql.NewList(b.machine), graphql.FieldConfigArgument{
				"cluster_id": &graphql.ArgumentConfig{Type: UUID},
				"type":       &graphql.ArgumentConfig{Type: graphql.String},
				"status":     &graphql.ArgumentConfig{Type: graphql.String},
				"search":     &graphql.ArgumentConfig{Type: graphql.String},
			}, func(p graphql.ResolveParams, f repository.MachineFilter) ([]entity.Machine, error) {
				return svc.ListMachines(p.Context, f)
			}),
			"maquinasDisponibles": &graphql.Field{
				Type: graphql.NewList(b.machine),
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListAvailableMachines(p.Context, argString(p, "search"))
				},
			},
			"asignacionServidorMaquina": byID(b.assignment, func(p graphql.ResolveParams, id uuid.UUID) (*entity.ServerMachineAssignment, error) {
				return svc.GetAssignment(p.Context, id)
			}),
			"asignacionesServidorMaquina": filtered(graphql.NewList(b.assignment), graphql.FieldConfigArgument{
				"server_id":   &graphql.ArgumentConfig{Type: UUID},
				"machine_id":  &graphql.ArgumentConfig{Type: UUID},
				"active_only": &graphql.ArgumentConfig{Type: graphql.Boolean},
			}, func(p graphql.ResolveParams, f repository.AssignmentFilter) ([]entity.ServerMachineAssignment, error) {
				return svc.ListAssignments(p.Context, f)
			}),
			"sistema": byID(b.system, func(p graphql.ResolveParams, id uuid.UUID) (*entity.System, error) {
				return svc.GetSystem(p.Context, id)
			}),
			"sistemas": &graphql.Field{
				Type: graphql.NewList(b.system),
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListSystems(p.Context, argString(p, "search"))
				},
			},
			"componente": byID(b.component, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Component, error) {
				return svc.GetComponent(p.Context, id)
			}),
			"componentes": &graphql.Field{
				Type: graphql.NewList(b.component),
				Args: graphql.FieldConfigArgument{
					"sistema_id": &graphql.ArgumentConfig{Type: UUID},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					var systemID *uuid.UUID
					if id, ok := p.Args["sistema_id"].(uuid.UUID); ok {
						systemID = &id
					}
					return svc.ListComponents(p.Context, systemID)
				},
			},
			"despliegue": byID(b.deployment, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Deployment, error) {
				return svc.GetDeployment(p.Context, id)
			}),
			"despliegues": filtered(graphql.NewList(b.deployment), graphql.FieldConfigArgument{
				"component_id": &graphql.ArgumentConfig{Type: UUID},
				"machine_id":   &graphql.ArgumentConfig{Type: UUID},
				"system_id":    &graphql.ArgumentConfig{Type: UUID},
				"environment":  &graphql.ArgumentConfig{Type: graphql.String},
				"status":       &graphql.ArgumentConfig{Type: graphql.String},
			}, func(p graphql.ResolveParams, f repository.DeploymentFilter) ([]entity.Deployment, error) {
				return svc.ListDeployments(p.Context, f)
			}),
			"usuario": byID(b.user, func(p graphql.ResolveParams, id uuid.UUID) (*entity.User, error) {
				return svc.GetUser(p.Context, id)
			}),
			"usuarios": filtered(graphql.NewList(b.user), graphql.FieldConfigArgument{
				"active": &graphql.ArgumentConfig{Type: graphql.Boolean},
				"search": &graphql.ArgumentConfig{Type: graphql.String},
			}, func(p graphql.ResolveParams, f repository.UserFilter) ([]entity.User, error) {
				return svc.ListUsers(p.Context, f)
			}),
			"rol": byID(b.role, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Role, error) {
				return svc.GetRole(p.Context, id)
			}),
			"roles": &graphql.Field{
				Type: graphql.NewList(b.role),
				Args: graphql.FieldConfigArgument{
					"scope": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.ListRoles(p.Context, argString(p, "scope"))
				},
			},
			"rolFormSections": &graphql.Field{
				Type: b.formSections,
				Args: graphql.FieldConfigArgument{
					"role_id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(UUID)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id, err := argID(p, "role_id")
					if err != nil {
						return nil, err
					}
					return svc.RoleFormSections(p.Context, id)
				},
			},
			"evento": byID(b.event, func(p graphql.ResolveParams, id uuid.UUID) (*entity.Event, error) {
				return svc.GetEvent(p.Context, id)
			}),
			"eventos": filtered(graphql.NewList(b.event), graphql.FieldConfigArgument{
				"type":     &graphql.ArgumentConfig{Type: graphql.String},
				"severity": &graphql.ArgumentConfig{Type: graphql.String},
				"status":   &graphql.ArgumentConfig{Type: graphql.String},
				"search":   &graphql.ArgumentConfig{Type: graphql.String},
			}, func(p graphql.ResolveParams, f repository.EventFilter) ([]entity.Event, error) {
				return svc.ListEvents(p.Context, f)
			}),
			"opcionesSistema": &graphql.Field{
				Type: graphql.NewList(b.option),
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.SystemOptions(p.Context, argString(p, "search"))
				},
			},
			"opcionesUsuario": &graphql.Field{
				Type: graphql.NewList(b.option),
				Args: searchArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.UserOptions(p.Context, argString(p, "search"))
				},
			},
			"opcionesInfraAfectada": &graphql.Field{
				Type: graphql.NewList(b.option),
				Args: graphql.FieldConfigArgument{
					"target_type": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"search":      &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.InfraOptions(p.Context, argString(p, "target_type"), argString(p, "search"))
				},
			},
			"dashboard": &graphql.Field{
				Type: b.dashboard,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return svc.Dashboard(p.Context)
				},
			},
		},
	})
}
