package rpc

import "fmt"

// Status is the outcome of a host-initiated request.
type Status int32

const (
	StatusFailure   Status = 0
	StatusSuccess   Status = 1
	StatusCancelled Status = 2
)

func (s Status) String() string {
	switch s {
	case StatusFailure:
		return "Failure"
	case StatusSuccess:
		return "Success"
	case StatusCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("Status(%d)", int32(s))
	}
}

// Direction is the data direction of a binding.
type Direction int32

const (
	DirectionIn    Direction = 0
	DirectionOut   Direction = 1
	DirectionInOut Direction = 2
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "inout"
	default:
		return fmt.Sprintf("Direction(%d)", int32(d))
	}
}

// DataType is the declared shape of a binding's data.
type DataType int32

const (
	DataTypeUndefined DataType = 0
	DataTypeString    DataType = 1
	DataTypeBinary    DataType = 2
	DataTypeStream    DataType = 3
)

func (t DataType) String() string {
	switch t {
	case DataTypeUndefined:
		return "undefined"
	case DataTypeString:
		return "string"
	case DataTypeBinary:
		return "binary"
	case DataTypeStream:
		return "stream"
	default:
		return fmt.Sprintf("DataType(%d)", int32(t))
	}
}

// Level grades log entries. The numeric values match the host's logger
// semantics, with [LevelNone] suppressing a category entirely.
type Level int32

const (
	LevelTrace       Level = 0
	LevelDebug       Level = 1
	LevelInformation Level = 2
	LevelWarning     Level = 3
	LevelError       Level = 4
	LevelCritical    Level = 5
	LevelNone        Level = 6
)

func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "Trace"
	case LevelDebug:
		return "Debug"
	case LevelInformation:
		return "Information"
	case LevelWarning:
		return "Warning"
	case LevelError:
		return "Error"
	case LevelCritical:
		return "Critical"
	case LevelNone:
		return "None"
	default:
		return fmt.Sprintf("Level(%d)", int32(l))
	}
}

// FileChangeType describes a file system event. The values form a bitmask in
// the host schema; [FileChangeAll] covers every kind.
type FileChangeType int32

const (
	FileChangeUnknown FileChangeType = 0
	FileChangeCreated FileChangeType = 1
	FileChangeDeleted FileChangeType = 2
	FileChangeChanged FileChangeType = 4
	FileChangeRenamed FileChangeType = 8
	FileChangeAll     FileChangeType = 15
)

func (t FileChangeType) String() string {
	switch t {
	case FileChangeUnknown:
		return "Unknown"
	case FileChangeCreated:
		return "Created"
	case FileChangeDeleted:
		return "Deleted"
	case FileChangeChanged:
		return "Changed"
	case FileChangeRenamed:
		return "Renamed"
	case FileChangeAll:
		return "All"
	default:
		return fmt.Sprintf("FileChangeType(%d)", int32(t))
	}
}

// WorkerAction is an action the worker asks the host to take on its behalf.
type WorkerAction int32

const (
	WorkerActionRestart WorkerAction = 0
	WorkerActionReload  WorkerAction = 1
)

func (a WorkerAction) String() string {
	switch a {
	case WorkerActionRestart:
		return "Restart"
	case WorkerActionReload:
		return "Reload"
	default:
		return fmt.Sprintf("WorkerAction(%d)", int32(a))
	}
}

// SameSite is the cross-site policy of an HTTP cookie.
type SameSite int32

const (
	SameSiteNone   SameSite = 0
	SameSiteLax    SameSite = 1
	SameSiteStrict SameSite = 2
)

func (s SameSite) String() string {
	switch s {
	case SameSiteNone:
		return "None"
	case SameSiteLax:
		return "Lax"
	case SameSiteStrict:
		return "Strict"
	default:
		return fmt.Sprintf("SameSite(%d)", int32(s))
	}
}
