package employee

import "fmt"

// CheckManagerCycle walks the reporting chain upward from the proposed
// manager and fails when it reaches the employee being assigned, which
// would close a cycle. parentOf maps employee id to reporting manager id
// ("" for none). The walk is bounded so pre-existing bad data cannot loop
// it forever.
func CheckManagerCycle(employeeID, managerID string, parentOf map[string]string) error {
	if managerID == "" {
		return nil
	}
	if managerID == employeeID {
		return fmt.Errorf("%w: employee %s cannot report to themselves", ErrReportingCycle, employeeID)
	}

	current := managerID
	for steps := 0; steps <= len(parentOf); steps++ {
		next, ok := parentOf[current]
		if !ok || next == "" {
			return nil
		}
		if next == employeeID {
			return fmt.Errorf("%w: assigning manager %s to %s closes the chain", ErrReportingCycle, managerID, employeeID)
		}
		current = next
	}
	return fmt.Errorf("reporting chain above %s does not terminate", managerID)
}
