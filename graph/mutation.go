package graph

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/graphql-go/graphql"

	"github.com/tnqbao/gau-inventory-service/service"
	"github.com/tnqbao/gau-inventory-service/utils"
)

type permissionKey struct{}

// WithPermission records the caller's permission claim for mutation checks.
func WithPermission(ctx context.Context, permission string) context.Context {
	return context.WithValue(ctx, permissionKey{}, permission)
}

func canWrite(ctx context.Context) bool {
	switch ctx.Value(permissionKey{}) {
	case "admin", "editor":
		return true
	}
	return false
}

func guard(resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		if !canWrite(p.Context) {
			return nil, utils.NewForbiddenError("admin or editor permission required")
		}
		return resolve(p)
	}
}

func input(name string, fields graphql.InputObjectConfigFieldMap) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{Name: name, Fields: fields})
}

func in(t graphql.Input) *graphql.InputObjectFieldConfig {
	return &graphql.InputObjectFieldConfig{Type: t}
}

var (
	requiredString = graphql.NewNonNull(graphql.String)
	requiredUUID   = graphql.NewNonNull(UUID)
)

var (
	dataCenterInput = input("DataCenterInput", graphql.InputObjectConfigFieldMap{
		"name":        in(requiredString),
		"location":    in(graphql.String),
		"description": in(graphql.String),
	})
	serverInput = input("ServidorInput", graphql.InputObjectConfigFieldMap{
		"hostname":       in(requiredString),
		"serial_number":  in(graphql.String),
		"brand":          in(graphql.String),
		"model":          in(graphql.String),
		"cpu_cores":      in(graphql.Int),
		"memory_gb":      in(graphql.Int),
		"storage_gb":     in(graphql.Int),
		"ip_address":     in(graphql.String),
		"status":         in(graphql.String),
		"data_center_id": in(UUID),
		"rack":           in(graphql.String),
	})
	clusterInput = input("ClusterInput", graphql.InputObjectConfigFieldMap{
		"name":           in(requiredString),
		"type":           in(requiredString),
		"description":    in(graphql.String),
		"data_center_id": in(UUID),
	})
	machineInput = input("MaquinaInput", graphql.InputObjectConfigFieldMap{
		"name":             in(requiredString),
		"hostname":         in(graphql.String),
		"ip_address":       in(graphql.String),
		"type":             in(requiredString),
		"operating_system": in(graphql.String),
		"cpu_cores":        in(graphql.Int),
		"memory_gb":        in(graphql.Int),
		"storage_gb":       in(graphql.Int),
		"status":           in(graphql.String),
		"cluster_id":       in(UUID),
	})
	assignmentInput = input("AsignacionServidorMaquinaInput", graphql.InputObjectConfigFieldMap{
		"server_id":   in(requiredUUID),
		"machine_id":  in(requiredUUID),
		"assigned_at": in(DateTime),
		"released_at": in(DateTime),
		"notes":       in(graphql.String),
	})
	systemInput = input("SistemaInput", graphql.InputObjectConfigFieldMap{
		"name":        in(requiredString),
		"description": in(graphql.String),
		"area":        in(graphql.String),
		"criticality": in(graphql.String),
		"status":      in(graphql.String),
	})
	componentInput = input("ComponenteInput", graphql.InputObjectConfigFieldMap{
		"system_id":      in(requiredUUID),
		"name":           in(requiredString),
		"type":           in(requiredString),
		"technology":     in(graphql.String),
		"version":        in(graphql.String),
		"repository_url": in(graphql.String),
	})
	deploymentInput = input("DespliegueInput", graphql.InputObjectConfigFieldMap{
		"component_id":   in(requiredUUID),
		"machine_id":     in(requiredUUID),
		"environment":    in(requiredString),
		"version":        in(requiredString),
		"deployed_at":    in(DateTime),
		"deployed_by_id": in(UUID),
		"status":         in(graphql.String),
		"notes":          in(graphql.String),
	})
	userInput = input("UsuarioInput", graphql.InputObjectConfigFieldMap{
		"username":  in(requiredString),
		"full_name": in(graphql.String),
		"email":     in(requiredString),
		"active":    in(graphql.Boolean),
	})
	roleInput = input("RolInput", graphql.InputObjectConfigFieldMap{
		"name":        in(requiredString),
		"scope":       in(requiredString),
		"description": in(graphql.String),
	})
	userRoleInput = input("UsuarioRolInput", graphql.InputObjectConfigFieldMap{
		"user_id":    in(requiredUUID),
		"role_id":    in(requiredUUID),
		"machine_id": in(UUID),
		"system_id":  in(UUID),
	})
	affectedInfraInput = input("InfraAfectadaInput", graphql.InputObjectConfigFieldMap{
		"target_type": in(requiredString),
		"target_id":   in(requiredUUID),
		"impact":      in(graphql.String),
	})
	eventInput = input("EventoInput", graphql.InputObjectConfigFieldMap{
		"title":          in(requiredString),
		"description":    in(graphql.String),
		"type":           in(requiredString),
		"severity":       in(requiredString),
		"status":         in(graphql.String),
		"started_at":     in(DateTime),
		"ended_at":       in(DateTime),
		"reported_by_id": in(UUID),
		"metadata":       in(JSON),
		"infra_afectada": in(graphql.NewList(graphql.NewNonNull(affectedInfraInput))),
	})
)

func decodeInput(p graphql.ResolveParams, out interface{}) error {
	raw, _ := p.Args["input"].(map[string]interface{})
	if err := utils.DecodeArgs(raw, out); err != nil {
		return utils.NewValidationError("input", err.Error())
	}
	return nil
}

// crud adds the create, update and delete mutations of one entity.
func crud[I any, T any](
	fields graphql.Fields,
	name string,
	t graphql.Output,
	inputType *graphql.InputObject,
	create func(ctx context.Context, in I) (*T, error),
	update func(ctx context.Context, id uuid.UUID, in I) (*T, error),
	remove func(ctx context.Context, id uuid.UUID) error,
) {
	inputArgs := graphql.FieldConfigArgument{
		"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputType)},
	}
	fields["create"+name+"Mutation"] = &graphql.Field{
		Type: t,
		Args: inputArgs,
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			var data I
			if err := decodeInput(p, &data); err != nil {
				return nil, err
			}
			return create(p.Context, data)
		}),
	}
	fields["update"+name+"Mutation"] = &graphql.Field{
		Type: t,
		Args: graphql.FieldConfigArgument{
			"id":    &graphql.ArgumentConfig{Type: requiredUUID},
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(inputType)},
		},
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			id, err := argID(p, "id")
			if err != nil {
				return nil, err
			}
			var data I
			if err := decodeInput(p, &data); err != nil {
				return nil, err
			}
			return update(p.Context, id, data)
		}),
	}
	fields["delete"+name+"Mutation"] = deleteField(remove)
}

// deleteField returns the id of the removed row.
func deleteField(remove func(ctx context.Context, id uuid.UUID) error) *graphql.Field {
	return &graphql.Field{
		Type: UUID,
		Args: idArgs(),
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			id, err := argID(p, "id")
			if err != nil {
				return nil, err
			}
			if err := remove(p.Context, id); err != nil {
				return nil, err
			}
			return id, nil
		}),
	}
}

func (b *builder) mutation() *graphql.Object {
	svc := b.svc
	fields := graphql.Fields{}

	crud(fields, "DataCenter", b.dataCenter, dataCenterInput, svc.CreateDataCenter, svc.UpdateDataCenter, svc.DeleteDataCenter)
	crud(fields, "Servidor", b.server, serverInput, svc.CreateServer, svc.UpdateServer, svc.DeleteServer)
	crud(fields, "Cluster", b.cluster, clusterInput, svc.CreateCluster, svc.UpdateCluster, svc.DeleteCluster)
	crud(fields, "Maquina", b.machine, machineInput, svc.CreateMachine, svc.UpdateMachine, svc.DeleteMachine)
	crud(fields, "Sistema", b.system, systemInput, svc.CreateSystem, svc.UpdateSystem, svc.DeleteSystem)
	crud(fields, "Componente", b.component, componentInput, svc.CreateComponent, svc.UpdateComponent, svc.DeleteComponent)
	crud(fields, "Despliegue", b.deployment, deploymentInput, svc.CreateDeployment, svc.UpdateDeployment, svc.DeleteDeployment)
	crud(fields, "Usuario", b.user, userInput, svc.CreateUser, svc.UpdateUser, svc.DeleteUser)
	crud(fields, "Rol", b.role, roleInput, svc.CreateRole, svc.UpdateRole, svc.DeleteRole)
	crud(fields, "Evento", b.event, eventInput, svc.CreateEvent, svc.UpdateEvent, svc.DeleteEvent)
	crud(fields, "AsignacionServidorMaquina", b.assignment, assignmentInput, svc.AssignMachine, svc.UpdateAssignment, svc.DeleteAssignment)

	fields["assignMaquinaMutation"] = &graphql.Field{
		Type: b.assignment,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(assignmentInput)},
		},
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			var data service.AssignmentInput
			if err := decodeInput(p, &data); err != nil {
				return nil, err
			}
			return svc.AssignMachine(p.Context, data)
		}),
	}
	fields["releaseAsignacionMutation"] = &graphql.Field{
		Type: b.assignment,
		Args: graphql.FieldConfigArgument{
			"id":          &graphql.ArgumentConfig{Type: requiredUUID},
			"released_at": &graphql.ArgumentConfig{Type: DateTime},
		},
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			id, err := argID(p, "id")
			if err != nil {
				return nil, err
			}
			var releasedAt *time.Time
			if t, ok := p.Args["released_at"].(time.Time); ok {
				releasedAt = &t
			}
			return svc.ReleaseAssignment(p.Context, id, releasedAt)
		}),
	}
	fields["assignRolMutation"] = &graphql.Field{
		Type: b.userRole,
		Args: graphql.FieldConfigArgument{
			"input": &graphql.ArgumentConfig{Type: graphql.NewNonNull(userRoleInput)},
		},
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			var data service.UserRoleInput
			if err := decodeInput(p, &data); err != nil {
				return nil, err
			}
			return svc.AssignRole(p.Context, data)
		}),
	}
	fields["removeUsuarioRolMutation"] = deleteField(svc.RemoveUserRole)
	fields["addInfraAfectadaMutation"] = &graphql.Field{
		Type: b.affectedInfra,
		Args: graphql.FieldConfigArgument{
			"evento_id": &graphql.ArgumentConfig{Type: requiredUUID},
			"input":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(affectedInfraInput)},
		},
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			eventID, err := argID(p, "evento_id")
			if err != nil {
				return nil, err
			}
			var data service.AffectedInfraInput
			if err := decodeInput(p, &data); err != nil {
				return nil, err
			}
			return svc.AddAffectedInfra(p.Context, eventID, data)
		}),
	}
	fields["removeInfraAfectadaMutation"] = deleteField(svc.RemoveAffectedInfra)
	fields["exportSistemaReportMutation"] = &graphql.Field{
		Type: b.report,
		Args: idArgs(),
		Resolve: guard(func(p graphql.ResolveParams) (interface{}, error) {
			id, err := argID(p, "id")
			if err != nil {
				return nil, err
			}
			rec, err := svc.ExportSystemReport(p.Context, id)
			if err != nil {
				return nil, err
			}
			return service.ReportView{
				ID:          rec.ID,
				SystemID:    rec.SystemID,
				Status:      rec.Status,
				Error:       rec.Error,
				RequestedBy: rec.RequestedBy,
				CreatedAt:   rec.CreatedAt,
			}, nil
		}),
	}

	return graphql.NewObject(graphql.ObjectConfig{Name: "Mutation", Fields: fields})
}
