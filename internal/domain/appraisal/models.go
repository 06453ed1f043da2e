package appraisal

import "time"

type AppraisalType struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	HasRange bool   `json:"hasRange"`
}

type AppraisalRange struct {
	ID              int    `json:"id"`
	AppraisalTypeID int    `json:"appraisalTypeId"`
	Name            string `json:"name"`
	StartMonth      int    `json:"startMonth"`
	EndMonth        int    `json:"endMonth"`
}

type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type GoalTemplate struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Description       string `json:"description"`
	PerformanceFactor string `json:"performanceFactor"`
	Importance        string `json:"importance"`
	Weightage         int    `json:"weightage"`
}

type Goal struct {
	ID                string    `json:"id"`
	TemplateID        string    `json:"templateId,omitempty"`
	CategoryID        int       `json:"categoryId,omitempty"`
	CategoryName      string    `json:"categoryName,omitempty"`
	Title             string    `json:"title"`
	Description       string    `json:"description"`
	PerformanceFactor string    `json:"performanceFactor"`
	Importance        string    `json:"importance"`
	Weightage         int       `json:"weightage"`
	CreatedAt         time.Time `json:"createdAt"`
}

// AppraisalGoal joins one Goal to one Appraisal and carries the per-goal
// evaluation fields written during the self and appraiser stages.
type AppraisalGoal struct {
	ID               string `json:"id"`
	AppraisalID      string `json:"appraisalId"`
	GoalID           string `json:"goalId"`
	Goal             Goal   `json:"goal"`
	SelfComment      string `json:"selfComment,omitempty"`
	SelfRating       *int   `json:"selfRating,omitempty"`
	AppraiserComment string `json:"appraiserComment,omitempty"`
	AppraiserRating  *int   `json:"appraiserRating,omitempty"`
}

type Appraisal struct {
	ID               string          `json:"id"`
	AppraiseeID      string          `json:"appraiseeId"`
	AppraiserID      string          `json:"appraiserId"`
	ReviewerID       string          `json:"reviewerId"`
	AppraisalTypeID  int             `json:"appraisalTypeId"`
	RangeID          *int            `json:"rangeId,omitempty"`
	StartDate        time.Time       `json:"startDate"`
	EndDate          time.Time       `json:"endDate"`
	Status           Status          `json:"status"`
	AppraiserComment string          `json:"appraiserComment,omitempty"`
	AppraiserRating  *int            `json:"appraiserRating,omitempty"`
	ReviewerComment  string          `json:"reviewerComment,omitempty"`
	ReviewerRating   *int            `json:"reviewerRating,omitempty"`
	Goals            []AppraisalGoal `json:"goals,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// GoalEvaluation is one entry of a partial stage update, keyed by goal id.
type GoalEvaluation struct {
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}

// OverallEvaluation carries the stage-level comment and rating written by
// the appraiser or reviewer.
type OverallEvaluation struct {
	Comment *string `json:"comment"`
	Rating  *int    `json:"rating"`
}
