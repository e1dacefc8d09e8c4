package entity

// Roles válidos en el token JWT.
const (
	RoleAdmin      = "admin"
	RoleAuditor    = "auditor"
	RoleCapturista = "capturista"
	RoleBodeguero  = "bodeguero"
)
