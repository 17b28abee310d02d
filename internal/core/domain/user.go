package domain

// Roles carried in the identity service JWT
const (
	RoleAdmin   = "ADMIN"   // Clinician with read access to every patient
	RolePatient = "PATIENT" // Expecting mother, owns their data
)
