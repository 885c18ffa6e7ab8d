package subnetstate

const (

	// Active is const for a subnet accepting peer and relation changes
	Active = "active"

	// Inactive is const for a subnet deactivated by its admin
	Inactive = "inactive"

	// Deleted is const for a subnet deleted through the subnet manager
	Deleted = "deleted"
)

// Of returns the state of a subnet from its flags. A deleted subnet is Deleted whatever its active flag.
func Of(active, deleted bool) string {
	switch {
	case deleted:
		return Deleted
	case active:
		return Active
	default:
		return Inactive
	}
}
