package types

import "time"

// AppIdentity identifies an app consistently across every machine of an account.
// Whether two adds name the same app is decided by the network directory.
type AppIdentity string

func (id AppIdentity) String() string { return string(id) }

// ManagedApp is the registry record for one app
type ManagedApp struct {
	ID   AppIdentity `json:"id" yaml:"id" toml:"id"`
	Name string      `json:"name" yaml:"name" toml:"name"`
	// LocalPath is nil when the app was added on another machine but not on this one
	LocalPath       *string `json:"local_path,omitempty" yaml:"local_path,omitempty" toml:"local_path,omitempty"`
	ReferenceCount  uint32  `json:"reference_count" yaml:"reference_count" toml:"reference_count"`
	SafeDriveAccess bool    `json:"safe_drive_access" yaml:"safe_drive_access" toml:"safe_drive_access"`
}

// Clone returns a deep copy so callers never share LocalPath with the registry
func (a ManagedApp) Clone() ManagedApp {
	if a.LocalPath != nil {
		path := *a.LocalPath
		a.LocalPath = &path
	}
	return a
}

// AppDetail is the input of an add request. It is never stored.
type AppDetail struct {
	AbsolutePath    string `json:"absolute_path"`
	SafeDriveAccess bool   `json:"safe_drive_access"`
}

// ModifyAppSettings is a partial update; nil fields are left unchanged
type ModifyAppSettings struct {
	ID              AppIdentity `json:"id"`
	Name            *string     `json:"name,omitempty"`
	LocalPath       *string     `json:"local_path,omitempty"`
	SafeDriveAccess *bool       `json:"safe_drive_access,omitempty"`
}

// IsEmpty reports whether no field is set
func (m ModifyAppSettings) IsEmpty() bool {
	return m.Name == nil && m.LocalPath == nil && m.SafeDriveAccess == nil
}

// Category selects which observers receive an event
type Category string

const (
	CategoryAdded     Category = "added"
	CategoryRemoved   Category = "removed"
	CategoryActivated Category = "activated"
	CategoryModified  Category = "modified"
)

// Categories lists every category in a stable order
func Categories() []Category {
	return []Category{CategoryAdded, CategoryRemoved, CategoryActivated, CategoryModified}
}

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryAdded, CategoryRemoved, CategoryActivated, CategoryModified:
		return true
	}
	return false
}

// Event is delivered to observers after a committed mutation
type Event struct {
	Seq      uint64      `json:"seq"`
	Category Category    `json:"category"`
	AppID    AppIdentity `json:"app_id"`
	// App is the record after the mutation, nil when a remove deleted the entry
	App       *ManagedApp `json:"app,omitempty"`
	Present   bool        `json:"present"`
	Timestamp time.Time   `json:"timestamp"`
}

// Stats summarizes controller state
type Stats struct {
	ManagedApps       int              `json:"managed_apps"`
	Observers         map[Category]int `json:"observers"`
	CommandsProcessed uint64           `json:"commands_processed"`
	Running           bool             `json:"running"`
}
