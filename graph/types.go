package graph

import (
	"context"

	"github.com/graphql-go/graphql"

	"github.com/tnqbao/gau-inventory-service/entity"
	"github.com/tnqbao/gau-inventory-service/repository"
	"github.com/tnqbao/gau-inventory-service/service"
)

// builder owns the object types; relation fields resolve through svc.
type builder struct {
	svc *service.Service

	dataCenter    *graphql.Object
	server        *graphql.Object
	cluster       *graphql.Object
	machine       *graphql.Object
	assignment    *graphql.Object
	system        *graphql.Object
	component     *graphql.Object
	deployment    *graphql.Object
	envGroup      *graphql.Object
	user          *graphql.Object
	role          *graphql.Object
	userRole      *graphql.Object
	formSections  *graphql.Object
	event         *graphql.Object
	affectedInfra *graphql.Object
	report        *graphql.Object
	countByKey    *graphql.Object
	dashboard     *graphql.Object
	option        *graphql.Object
}

// source returns the resolved parent as *T whether it was stored by value or pointer.
func source[T any](p graphql.ResolveParams) *T {
	switch v := p.Source.(type) {
	case *T:
		return v
	case T:
		return &v
	}
	return nil
}

func nested[T any](fn func(ctx context.Context, src *T) (interface{}, error)) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		src := source[T](p)
		if src == nil {
			return nil, nil
		}
		return fn(p.Context, src)
	}
}

// label exposes the display label of an enum-valued field.
func label(field string, kind entity.LabelKind) *graphql.Field {
	return &graphql.Field{
		Type: graphql.String,
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			p.Info.FieldName = field
			v, err := graphql.DefaultResolveFn(p)
			if err != nil {
				return nil, err
			}
			s, _ := v.(string)
			return entity.Label(kind, s), nil
		},
	}
}

func field(t graphql.Output) *graphql.Field {
	return &graphql.Field{Type: t}
}

func timestamps(fields graphql.Fields) graphql.Fields {
	fields["id"] = field(graphql.NewNonNull(UUID))
	fields["created_at"] = field(DateTime)
	if _, ok := fields["updated_at"]; !ok {
		fields["updated_at"] = field(DateTime)
	}
	return fields
}

func newBuilder(svc *service.Service) *builder {
	b := &builder{svc: svc}

	b.option = graphql.NewObject(graphql.ObjectConfig{
		Name: "Opcion",
		Fields: graphql.Fields{
			"value": field(graphql.NewNonNull(graphql.String)),
			"label": field(graphql.NewNonNull(graphql.String)),
		},
	})

	b.countByKey = graphql.NewObject(graphql.ObjectConfig{
		Name: "ConteoPorClave",
		Fields: graphql.Fields{
			"key":   field(graphql.NewNonNull(graphql.String)),
			"label": field(graphql.NewNonNull(graphql.String)),
			"count": field(graphql.NewNonNull(graphql.Int)),
		},
	})

	b.dataCenter = graphql.NewObject(graphql.ObjectConfig{
		Name: "DataCenter",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"name":        field(graphql.String),
				"location":    field(graphql.String),
				"description": field(graphql.String),
				"servidores": &graphql.Field{
					Type: graphql.NewList(b.server),
					Resolve: nested(func(ctx context.Context, dc *entity.DataCenter) (interface{}, error) {
						return b.svc.ServersByDataCenter(ctx, dc.ID)
					}),
				},
				"clusters": &graphql.Field{
					Type: graphql.NewList(b.cluster),
					Resolve: nested(func(ctx context.Context, dc *entity.DataCenter) (interface{}, error) {
						return b.svc.ClustersByDataCenter(ctx, dc.ID)
					}),
				},
			})
		}),
	})

	b.server = graphql.NewObject(graphql.ObjectConfig{
		Name: "Servidor",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"hostname":       field(graphql.String),
				"serial_number":  field(graphql.String),
				"brand":          field(graphql.String),
				"model":          field(graphql.String),
				"cpu_cores":      field(graphql.Int),
				"memory_gb":      field(graphql.Int),
				"storage_gb":     field(graphql.Int),
				"ip_address":     field(graphql.String),
				"status":         field(graphql.String),
				"status_label":   label("status", entity.KindServerStatus),
				"data_center_id": field(UUID),
				"rack":           field(graphql.String),
				"data_center": &graphql.Field{
					Type: b.dataCenter,
					Resolve: nested(func(ctx context.Context, s *entity.Server) (interface{}, error) {
						if s.DataCenter != nil || s.DataCenterID == nil {
							return s.DataCenter, nil
						}
						return b.svc.GetDataCenter(ctx, *s.DataCenterID)
					}),
				},
				"asignaciones": &graphql.Field{
					Type: graphql.NewList(b.assignment),
					Resolve: nested(func(ctx context.Context, s *entity.Server) (interface{}, error) {
						return b.svc.ListAssignments(ctx, repository.AssignmentFilter{ServerID: &s.ID})
					}),
				},
				"maquinas": &graphql.Field{
					Type: graphql.NewList(b.machine),
					Resolve: nested(func(ctx context.Context, s *entity.Server) (interface{}, error) {
						return b.svc.MachinesOnServer(ctx, s.ID)
					}),
				},
				"eventos": &graphql.Field{
					Type: graphql.NewList(b.event),
					Resolve: nested(func(ctx context.Context, s *entity.Server) (interface{}, error) {
						return b.svc.EventsForTarget(ctx, entity.TargetServer, s.ID)
					}),
				},
			})
		}),
	})

	b.cluster = graphql.NewObject(graphql.ObjectConfig{
		Name: "Cluster",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"name":           field(graphql.String),
				"type":           field(graphql.String),
				"type_label":     label("type", entity.KindClusterType),
				"description":    field(graphql.String),
				"data_center_id": field(UUID),
				"data_center": &graphql.Field{
					Type: b.dataCenter,
					Resolve: nested(func(ctx context.Context, c *entity.Cluster) (interface{}, error) {
						if c.DataCenter != nil || c.DataCenterID == nil {
							return c.DataCenter, nil
						}
						return b.svc.GetDataCenter(ctx, *c.DataCenterID)
					}),
				},
				"maquinas": &graphql.Field{
					Type: graphql.NewList(b.machine),
					Resolve: nested(func(ctx context.Context, c *entity.Cluster) (interface{}, error) {
						return b.svc.MachinesByCluster(ctx, c.ID)
					}),
				},
				"eventos": &graphql.Field{
					Type: graphql.NewList(b.event),
					Resolve: nested(func(ctx context.Context, c *entity.Cluster) (interface{}, error) {
						return b.svc.EventsForTarget(ctx, entity.TargetCluster, c.ID)
					}),
				},
			})
		}),
	})

	b.machine = graphql.NewObject(graphql.ObjectConfig{
		Name: "Maquina",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"name":             field(graphql.String),
				"hostname":         field(graphql.String),
				"ip_address":       field(graphql.String),
				"type":             field(graphql.String),
				"type_label":       label("type", entity.KindMachineType),
				"operating_system": field(graphql.String),
				"cpu_cores":        field(graphql.Int),
				"memory_gb":        field(graphql.Int),
				"storage_gb":       field(graphql.Int),
				"status":           field(graphql.String),
				"status_label":     label("status", entity.KindMachineStatus),
				"cluster_id":       field(UUID),
				"cluster": &graphql.Field{
					Type: b.cluster,
					Resolve: nested(func(ctx context.Context, m *entity.Machine) (interface{}, error) {
						if m.Cluster != nil || m.ClusterID == nil {
							return m.Cluster, nil
						}
						return b.svc.GetCluster(ctx, *m.ClusterID)
					}),
				},
				"servidor": &graphql.Field{
					Type: b.server,
					Resolve: nested(func(ctx context.Context, m *entity.Machine) (interface{}, error) {
						return b.svc.CurrentServer(ctx, m.ID)
					}),
				},
				"asignaciones": &graphql.Field{
					Type: graphql.NewList(b.assignment),
					Resolve: nested(func(ctx context.Context, m *entity.Machine) (interface{}, error) {
						return b.svc.ListAssignments(ctx, repository.AssignmentFilter{MachineID: &m.ID})
					}),
				},
				"despliegues": &graphql.Field{
					Type: graphql.NewList(b.deployment),
					Resolve: nested(func(ctx context.Context, m *entity.Machine) (interface{}, error) {
						return b.svc.ListDeployments(ctx, repository.DeploymentFilter{MachineID: &m.ID})
					}),
				},
				"usuarios": &graphql.Field{
					Type: graphql.NewList(b.user),
					Resolve: nested(func(ctx context.Context, m *entity.Machine) (interface{}, error) {
						return b.svc.UsersByMachine(ctx, m.ID)
					}),
				},
				"eventos": &graphql.Field{
					Type: graphql.NewList(b.event),
					Resolve: nested(func(ctx context.Context, m *entity.Machine) (interface{}, error) {
						return b.svc.EventsForTarget(ctx, entity.TargetMachine, m.ID)
					}),
				},
			})
		}),
	})

	b.assignment = graphql.NewObject(graphql.ObjectConfig{
		Name: "AsignacionServidorMaquina",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"server_id":   field(UUID),
				"machine_id":  field(UUID),
				"assigned_at": field(DateTime),
				"released_at": field(DateTime),
				"notes":       field(graphql.String),
				"active": &graphql.Field{
					Type: graphql.Boolean,
					Resolve: nested(func(_ context.Context, a *entity.ServerMachineAssignment) (interface{}, error) {
						return a.Active(), nil
					}),
				},
				"servidor": &graphql.Field{
					Type: b.server,
					Resolve: nested(func(ctx context.Context, a *entity.ServerMachineAssignment) (interface{}, error) {
						if a.Server != nil {
							return a.Server, nil
						}
						return b.svc.GetServer(ctx, a.ServerID)
					}),
				},
				"maquina": &graphql.Field{
					Type: b.machine,
					Resolve: nested(func(ctx context.Context, a *entity.ServerMachineAssignment) (interface{}, error) {
						if a.Machine != nil {
							return a.Machine, nil
						}
						return b.svc.GetMachine(ctx, a.MachineID)
					}),
				},
			})
		}),
	})

	b.system = graphql.NewObject(graphql.ObjectConfig{
		Name: "Sistema",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"name":              field(graphql.String),
				"description":       field(graphql.String),
				"area":              field(graphql.String),
				"criticality":       field(graphql.String),
				"criticality_label": label("criticality", entity.KindCriticality),
				"status":            field(graphql.String),
				"status_label":      label("status", entity.KindSystemStatus),
				"componentes": &graphql.Field{
					Type: graphql.NewList(b.component),
					Resolve: nested(func(ctx context.Context, s *entity.System) (interface{}, error) {
						return b.svc.ComponentsBySystem(ctx, s.ID)
					}),
				},
				"despliegues": &graphql.Field{
					Type: graphql.NewList(b.deployment),
					Resolve: nested(func(ctx context.Context, s *entity.System) (interface{}, error) {
						return b.svc.DeploymentsBySystem(ctx, s.ID)
					}),
				},
				"despliegues_por_ambiente": &graphql.Field{
					Type: graphql.NewList(b.envGroup),
					Resolve: nested(func(ctx context.Context, s *entity.System) (interface{}, error) {
						return b.svc.DeploymentsByEnvironment(ctx, s.ID)
					}),
				},
				"usuarios": &graphql.Field{
					Type: graphql.NewList(b.user),
					Resolve: nested(func(ctx context.Context, s *entity.System) (interface{}, error) {
						return b.svc.UsersBySystem(ctx, s.ID)
					}),
				},
				"eventos": &graphql.Field{
					Type: graphql.NewList(b.event),
					Resolve: nested(func(ctx context.Context, s *entity.System) (interface{}, error) {
						return b.svc.EventsForTarget(ctx, entity.TargetSystem, s.ID)
					}),
				},
				"reportes": &graphql.Field{
					Type: graphql.NewList(b.report),
					Resolve: nested(func(ctx context.Context, s *entity.System) (interface{}, error) {
						return b.svc.ReportsBySystem(ctx, s.ID)
					}),
				},
			})
		}),
	})

	b.component = graphql.NewObject(graphql.ObjectConfig{
		Name: "Componente",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"system_id":      field(UUID),
				"name":           field(graphql.String),
				"type":           field(graphql.String),
				"type_label":     label("type", entity.KindComponentType),
				"technology":     field(graphql.String),
				"version":        field(graphql.String),
				"repository_url": field(graphql.String),
				"sistema": &graphql.Field{
					Type: b.system,
					Resolve: nested(func(ctx context.Context, c *entity.Component) (interface{}, error) {
						if c.System != nil {
							return c.System, nil
						}
						return b.svc.GetSystem(ctx, c.SystemID)
					}),
				},
				"despliegues": &graphql.Field{
					Type: graphql.NewList(b.deployment),
					Resolve: nested(func(ctx context.Context, c *entity.Component) (interface{}, error) {
						return b.svc.ListDeployments(ctx, repository.DeploymentFilter{ComponentID: &c.ID})
					}),
				},
			})
		}),
	})

	b.deployment = graphql.NewObject(graphql.ObjectConfig{
		Name: "Despliegue",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"component_id":      field(UUID),
				"machine_id":        field(UUID),
				"environment":       field(graphql.String),
				"environment_label": label("environment", entity.KindEnvironment),
				"version":           field(graphql.String),
				"deployed_at":       field(DateTime),
				"deployed_by_id":    field(UUID),
				"status":            field(graphql.String),
				"status_label":      label("status", entity.KindDeploymentStatus),
				"notes":             field(graphql.String),
				"componente": &graphql.Field{
					Type: b.component,
					Resolve: nested(func(ctx context.Context, d *entity.Deployment) (interface{}, error) {
						if d.Component != nil {
							return d.Component, nil
						}
						return b.svc.GetComponent(ctx, d.ComponentID)
					}),
				},
				"sistema": &graphql.Field{
					Type: b.system,
					Resolve: nested(func(ctx context.Context, d *entity.Deployment) (interface{}, error) {
						if d.Component != nil && d.Component.System != nil {
							return d.Component.System, nil
						}
						component, err := b.svc.GetComponent(ctx, d.ComponentID)
						if err != nil {
							return nil, err
						}
						return b.svc.GetSystem(ctx, component.SystemID)
					}),
				},
				"maquina": &graphql.Field{
					Type: b.machine,
					Resolve: nested(func(ctx context.Context, d *entity.Deployment) (interface{}, error) {
						if d.Machine != nil {
							return d.Machine, nil
						}
						return b.svc.GetMachine(ctx, d.MachineID)
					}),
				},
				"deployed_by": &graphql.Field{
					Type: b.user,
					Resolve: nested(func(ctx context.Context, d *entity.Deployment) (interface{}, error) {
						if d.DeployedByID == nil {
							return nil, nil
						}
						return b.svc.GetUser(ctx, *d.DeployedByID)
					}),
				},
			})
		}),
	})

	b.envGroup = graphql.NewObject(graphql.ObjectConfig{
		Name: "GrupoAmbiente",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"environment": field(graphql.NewNonNull(graphql.String)),
				"label":       field(graphql.NewNonNull(graphql.String)),
				"deployments": field(graphql.NewList(b.deployment)),
			}
		}),
	})

	b.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "Usuario",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"username":  field(graphql.String),
				"full_name": field(graphql.String),
				"email":     field(graphql.String),
				"active":    field(graphql.Boolean),
				"roles": &graphql.Field{
					Type: graphql.NewList(b.userRole),
					Resolve: nested(func(ctx context.Context, u *entity.User) (interface{}, error) {
						return b.svc.UserRoles(ctx, u.ID)
					}),
				},
				"maquinas": &graphql.Field{
					Type: graphql.NewList(b.machine),
					Resolve: nested(func(ctx context.Context, u *entity.User) (interface{}, error) {
						return b.svc.MachinesByUser(ctx, u.ID)
					}),
				},
				"sistemas": &graphql.Field{
					Type: graphql.NewList(b.system),
					Resolve: nested(func(ctx context.Context, u *entity.User) (interface{}, error) {
						return b.svc.SystemsByUser(ctx, u.ID)
					}),
				},
			})
		}),
	})

	b.role = graphql.NewObject(graphql.ObjectConfig{
		Name: "Rol",
		Fields: timestamps(graphql.Fields{
			"name":        field(graphql.String),
			"scope":       field(graphql.String),
			"scope_label": label("scope", entity.KindRoleScope),
			"description": field(graphql.String),
		}),
	})

	b.userRole = graphql.NewObject(graphql.ObjectConfig{
		Name: "UsuarioRol",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":         field(graphql.NewNonNull(UUID)),
				"user_id":    field(UUID),
				"role_id":    field(UUID),
				"machine_id": field(UUID),
				"system_id":  field(UUID),
				"created_at": field(DateTime),
				"usuario": &graphql.Field{
					Type: b.user,
					Resolve: nested(func(ctx context.Context, ur *entity.UserRole) (interface{}, error) {
						if ur.User != nil {
							return ur.User, nil
						}
						return b.svc.GetUser(ctx, ur.UserID)
					}),
				},
				"rol": &graphql.Field{
					Type: b.role,
					Resolve: nested(func(ctx context.Context, ur *entity.UserRole) (interface{}, error) {
						if ur.Role != nil {
							return ur.Role, nil
						}
						return b.svc.GetRole(ctx, ur.RoleID)
					}),
				},
				"maquina": &graphql.Field{
					Type: b.machine,
					Resolve: nested(func(ctx context.Context, ur *entity.UserRole) (interface{}, error) {
						if ur.Machine != nil || ur.MachineID == nil {
							return ur.Machine, nil
						}
						return b.svc.GetMachine(ctx, *ur.MachineID)
					}),
				},
				"sistema": &graphql.Field{
					Type: b.system,
					Resolve: nested(func(ctx context.Context, ur *entity.UserRole) (interface{}, error) {
						if ur.System != nil || ur.SystemID == nil {
							return ur.System, nil
						}
						return b.svc.GetSystem(ctx, *ur.SystemID)
					}),
				},
			}
		}),
	})

	b.formSections = graphql.NewObject(graphql.ObjectConfig{
		Name: "RolFormSections",
		Fields: graphql.Fields{
			"role":    field(b.role),
			"machine": field(graphql.NewNonNull(graphql.Boolean)),
			"system":  field(graphql.NewNonNull(graphql.Boolean)),
		},
	})

	b.affectedInfra = graphql.NewObject(graphql.ObjectConfig{
		Name: "InfraAfectada",
		Fields: graphql.Fields{
			"id":                field(graphql.NewNonNull(UUID)),
			"event_id":          field(UUID),
			"target_type":       field(graphql.String),
			"target_type_label": label("target_type", entity.KindTargetType),
			"target_id":         field(UUID),
			"target_label":      field(graphql.String),
			"impact":            field(graphql.String),
			"created_at":        field(DateTime),
		},
	})

	b.event = graphql.NewObject(graphql.ObjectConfig{
		Name: "Evento",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return timestamps(graphql.Fields{
				"title":          field(graphql.String),
				"description":    field(graphql.String),
				"type":           field(graphql.String),
				"type_label":     label("type", entity.KindEventType),
				"severity":       field(graphql.String),
				"severity_label": label("severity", entity.KindSeverity),
				"status":         field(graphql.String),
				"status_label":   label("status", entity.KindEventStatus),
				"started_at":     field(DateTime),
				"ended_at":       field(DateTime),
				"reported_by_id": field(UUID),
				"metadata":       field(JSON),
				"infra_afectada": &graphql.Field{
					Type: graphql.NewList(b.affectedInfra),
					Resolve: nested(func(ctx context.Context, e *entity.Event) (interface{}, error) {
						return b.svc.AffectedInfraByEvent(ctx, e.ID)
					}),
				},
				"reported_by": &graphql.Field{
					Type: b.user,
					Resolve: nested(func(ctx context.Context, e *entity.Event) (interface{}, error) {
						if e.ReportedByID == nil {
							return nil, nil
						}
						return b.svc.GetUser(ctx, *e.ReportedByID)
					}),
				},
			})
		}),
	})

	b.report = graphql.NewObject(graphql.ObjectConfig{
		Name: "ReporteSistema",
		Fields: graphql.Fields{
			"id":           field(graphql.NewNonNull(UUID)),
			"system_id":    field(UUID),
			"status":       field(graphql.String),
			"status_label": label("status", entity.KindReportStatus),
			"size":         field(graphql.Int),
			"error":        field(graphql.String),
			"requested_by": field(graphql.String),
			"created_at":   field(DateTime),
			"completed_at": field(DateTime),
			"download_url": field(graphql.String),
		},
	})

	b.dashboard = graphql.NewObject(graphql.ObjectConfig{
		Name: "Dashboard",
		Fields: graphql.Fields{
			"data_centers":               field(graphql.Int),
			"servers":                    field(graphql.Int),
			"clusters":                   field(graphql.Int),
			"machines":                   field(graphql.Int),
			"systems":                    field(graphql.Int),
			"components":                 field(graphql.Int),
			"users":                      field(graphql.Int),
			"events":                     field(graphql.Int),
			"active_assignments":         field(graphql.Int),
			"machines_by_type":           field(graphql.NewList(b.countByKey)),
			"machines_by_status":         field(graphql.NewList(b.countByKey)),
			"open_events_by_severity":    field(graphql.NewList(b.countByKey)),
			"deployments_by_environment": field(graphql.NewList(b.countByKey)),
			"recent_events":              field(graphql.NewList(b.event)),
			"generated_at":               field(DateTime),
		},
	})

	return b
}
