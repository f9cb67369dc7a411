package domain

// Role is the capability an actor presents with a workflow request.
type Role string

const (
	RoleIntegrador    Role = "Integrador"
	RoleGestor        Role = "Gestor"
	RoleRevisor       Role = "Revisor"
	RoleAprobador     Role = "Aprobador"
	RoleAdministrador Role = "Administrador"
	RoleSeguimiento   Role = "Seguimiento"
)

// Roles lists every known role.
var Roles = []Role{
	RoleIntegrador,
	RoleGestor,
	RoleRevisor,
	RoleAprobador,
	RoleAdministrador,
	RoleSeguimiento,
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	for _, candidate := range Roles {
		if candidate == r {
			return true
		}
	}
	return false
}
