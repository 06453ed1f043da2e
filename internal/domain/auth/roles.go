package auth

// Role hierarchy is fixed reference data seeded once. Rank ordering is
// what RequireMinRole compares against.
const (
	RoleEmployee = "Employee"
	RoleLead     = "Lead"
	RoleManager  = "Manager"
	RoleCEO      = "CEO"
	RoleAdmin    = "Admin"
)

const (
	RankEmployee = 1
	RankLead     = 2
	RankManager  = 3
	RankCEO      = 4
	RankAdmin    = 5
)

var RoleRanks = map[string]int{
	RoleEmployee: RankEmployee,
	RoleLead:     RankLead,
	RoleManager:  RankManager,
	RoleCEO:      RankCEO,
	RoleAdmin:    RankAdmin,
}

func RankOf(roleName string) int {
	return RoleRanks[roleName]
}
