package types

// AddAppRequest is the HTTP body of an add request
type AddAppRequest struct {
	AbsolutePath    string `json:"absolute_path" binding:"required"`
	SafeDriveAccess bool   `json:"safe_drive_access"`
}

// ModifyAppRequest is the HTTP body of a settings change
type ModifyAppRequest struct {
	Name            *string `json:"name,omitempty"`
	LocalPath       *string `json:"local_path,omitempty"`
	SafeDriveAccess *bool   `json:"safe_drive_access,omitempty"`
}

// RemoveAppResponse reports the outcome of a remove
type RemoveAppResponse struct {
	ID      AppIdentity `json:"id"`
	Present bool        `json:"present"`
	App     *ManagedApp `json:"app,omitempty"`
}

// ListAppsResponse is returned by the list endpoint
type ListAppsResponse struct {
	Apps  []ManagedApp `json:"apps"`
	Count int          `json:"count"`
}

// WSMessage is a control message sent over the observer stream
type WSMessage struct {
	Type       string     `json:"type"`
	Message    string     `json:"message,omitempty"`
	Categories []Category `json:"categories,omitempty"`
	Event      *Event     `json:"event,omitempty"`
}
