package entity

// LabelKind names the enum a raw value belongs to. The same raw value can
// mean different things in different enums ("maintenance" is both a server
// status and an event type).
type LabelKind string

const (
	KindServerStatus     LabelKind = "server_status"
	KindClusterType      LabelKind = "cluster_type"
	KindMachineType      LabelKind = "machine_type"
	KindMachineStatus    LabelKind = "machine_status"
	KindCriticality      LabelKind = "criticality"
	KindSystemStatus     LabelKind = "system_status"
	KindComponentType    LabelKind = "component_type"
	KindEnvironment      LabelKind = "environment"
	KindDeploymentStatus LabelKind = "deployment_status"
	KindRoleScope        LabelKind = "role_scope"
	KindEventType        LabelKind = "event_type"
	KindSeverity         LabelKind = "severity"
	KindEventStatus      LabelKind = "event_status"
	KindTargetType       LabelKind = "target_type"
	KindReportStatus     LabelKind = "report_status"
)

// labels holds the Spanish display text for every enum value shown to users.
var labels = map[LabelKind]map[string]string{
	KindServerStatus: {
		ServerStatusActive:      "Activo",
		ServerStatusMaintenance: "En mantenimiento",
		ServerStatusRetired:     "Retirado",
	},
	KindClusterType: {
		ClusterTypeKubernetes: "Kubernetes",
		ClusterTypeVMware:     "VMware",
		ClusterTypeProxmox:    "Proxmox",
		ClusterTypeHyperV:     "Hyper-V",
		ClusterTypeOther:      "Otro",
	},
	KindMachineType: {
		MachineTypeVirtual:  "Virtual",
		MachineTypePhysical: "Física",
	},
	KindMachineStatus: {
		MachineStatusRunning:        "Encendida",
		MachineStatusStopped:        "Detenida",
		MachineStatusDecommissioned: "Dada de baja",
	},
	KindCriticality: {
		CriticalityLow:      "Baja",
		CriticalityMedium:   "Media",
		CriticalityHigh:     "Alta",
		CriticalityCritical: "Crítica",
	},
	KindSystemStatus: {
		SystemStatusActive:   "Activo",
		SystemStatusInactive: "Inactivo",
		SystemStatusRetired:  "Retirado",
	},
	KindComponentType: {
		ComponentTypeFrontend: "Frontend",
		ComponentTypeBackend:  "Backend",
		ComponentTypeDatabase: "Base de datos",
		ComponentTypeService:  "Servicio",
		ComponentTypeBatch:    "Proceso batch",
		ComponentTypeOther:    "Otro",
	},
	KindEnvironment: {
		EnvironmentDevelopment: "Desarrollo",
		EnvironmentTesting:     "Pruebas",
		EnvironmentStaging:     "Preproducción",
		EnvironmentProduction:  "Producción",
	},
	KindDeploymentStatus: {
		DeploymentStatusSuccess:    "Exitoso",
		DeploymentStatusFailed:     "Fallido",
		DeploymentStatusRolledBack: "Revertido",
	},
	KindRoleScope: {
		RoleScopeGlobal:  "Global",
		RoleScopeMachine: "Por máquina",
		RoleScopeSystem:  "Por sistema",
	},
	KindEventType: {
		EventTypeIncident:    "Incidente",
		EventTypeMaintenance: "Mantenimiento",
		EventTypeChange:      "Cambio",
		EventTypeOutage:      "Caída de servicio",
	},
	KindSeverity: {
		SeverityLow:      "Baja",
		SeverityMedium:   "Media",
		SeverityHigh:     "Alta",
		SeverityCritical: "Crítica",
	},
	KindEventStatus: {
		EventStatusOpen:       "Abierto",
		EventStatusInProgress: "En progreso",
		EventStatusResolved:   "Resuelto",
	},
	KindTargetType: {
		TargetServer:  "Servidor",
		TargetMachine: "Máquina",
		TargetCluster: "Cluster",
		TargetSystem:  "Sistema",
	},
	KindReportStatus: {
		ReportStatusPending:   "Pendiente",
		ReportStatusCompleted: "Completado",
		ReportStatusFailed:    "Fallido",
	},
}

// Label returns the display text of an enum value of the given kind, or the
// value itself when there is none.
func Label(kind LabelKind, value string) string {
	if l, ok := labels[kind][value]; ok {
		return l
	}
	return value
}
