package auth

// Claims del caregiver autenticado. UserID es el caregiverID con el que se
// filtran todos los registros.
type Claims struct {
	UserID      string
	Email       string
	DisplayName string
}
