package appraisal

// ValidateWeightage checks a single goal weightage percentage.
func ValidateWeightage(weightage int) error {
	if weightage <= 0 || weightage > 100 {
		return NewValidationError(KindInvalidWeightage,
			"weightage must be between 1 and 100 percent, got %d", weightage)
	}
	return nil
}

// ValidateWeightageSum enforces that the goals attached to one appraisal
// carry weightages summing to exactly 100 percent.
func ValidateWeightageSum(goals []AppraisalGoal) error {
	sum := 0
	for _, goal := range goals {
		if err := ValidateWeightage(goal.Goal.Weightage); err != nil {
			return err
		}
		sum += goal.Goal.Weightage
	}
	if sum != 100 {
		return NewValidationError(KindWeightageMismatch,
			"goal weightages must sum to 100 percent, got %d", sum)
	}
	return nil
}
