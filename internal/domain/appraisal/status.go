package appraisal

import (
	"encoding/json"
	"fmt"
)

// Status is the appraisal workflow stage. The ordinal values define the
// strict forward progression; transitions advance by exactly one stage.
type Status int

const (
	StatusDraft Status = iota + 1
	StatusSubmitted
	StatusSelfAssessment
	StatusAppraiserEvaluation
	StatusReviewerEvaluation
	StatusComplete
)

// Wire values are part of the API contract and must not change.
var statusNames = map[Status]string{
	StatusDraft:               "Draft",
	StatusSubmitted:           "Submitted",
	StatusSelfAssessment:      "Appraisee Self Assessment",
	StatusAppraiserEvaluation: "Appraiser Evaluation",
	StatusReviewerEvaluation:  "Reviewer Evaluation",
	StatusComplete:            "Complete",
}

var statusValues = func() map[string]Status {
	m := make(map[string]Status, len(statusNames))
	for status, name := range statusNames {
		m[name] = status
	}
	return m
}()

func (s Status) Valid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Next returns the following stage. Complete has no successor.
func (s Status) Next() (Status, bool) {
	if !s.Valid() || s == StatusComplete {
		return 0, false
	}
	return s + 1, true
}

func ParseStatus(value string) (Status, error) {
	if status, ok := statusValues[value]; ok {
		return status, nil
	}
	return 0, fmt.Errorf("unknown appraisal status %q", value)
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid status %d", int(s))
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
