package model

import (
	"time"
)

// Activity is one entry of the audit trail shown on the dashboard feed.
type Activity struct {
	ID           int       `json:"id"`
	ActivityType string    `json:"activityType"`
	ResourceName string    `json:"resourceName"`
	ResourceType string    `json:"resourceType"`
	Status       string    `json:"status"`
	UserName     string    `json:"userName"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (a *Activity) Validate() error {
	var errs ValidationErrors
	errs.required("activityType", a.ActivityType)
	errs.required("resourceName", a.ResourceName)
	errs.required("resourceType", a.ResourceType)
	errs.required("status", a.Status)
	errs.required("userName", a.UserName)
	return errs.orNil()
}
