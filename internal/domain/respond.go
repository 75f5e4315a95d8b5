package domain

// StatusTransition moves an application, feedback, report or chat message to a
// new status and optionally records the administrator's response.
type StatusTransition struct {
	Status        string  `json:"status"`
	AdminResponse *string `json:"admin_response,omitempty"`
}
