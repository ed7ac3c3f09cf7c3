package grpcapi

import (
	"tracker/internal/models"
	"tracker/internal/services"
)

// IssueStatus is the wire form of an issue status. Zero means unset.
type IssueStatus int32

const (
	IssueStatusUnspecified IssueStatus = iota
	IssueStatusOpen
	IssueStatusInProgress
	IssueStatusResolved
	IssueStatusClosed
)

// Priority is the wire form of an issue priority. Zero means unset.
type Priority int32

const (
	PriorityUnspecified Priority = iota
	PriorityLow
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

var (
	statusNames = map[IssueStatus]string{
		IssueStatusOpen:       models.IssueStatusOpen,
		IssueStatusInProgress: models.IssueStatusInProgress,
		IssueStatusResolved:   models.IssueStatusResolved,
		IssueStatusClosed:     models.IssueStatusClosed,
	}
	priorityNames = map[Priority]string{
		PriorityLow:      models.PriorityLow,
		PriorityMedium:   models.PriorityMedium,
		PriorityHigh:     models.PriorityHigh,
		PriorityCritical: models.PriorityCritical,
	}
)

func (s IssueStatus) String() string {
	return statusNames[s]
}

func (p Priority) String() string {
	return priorityNames[p]
}

// statusValue turns a wire status into the stored name; zero maps to "".
func statusValue(s IssueStatus) (string, error) {
	if s == IssueStatusUnspecified {
		return "", nil
	}
	name, ok := statusNames[s]
	if !ok {
		return "", &services.Error{Kind: services.KindInvalidInput, Message: "status must be one of 1 (open), 2 (in_progress), 3 (resolved), 4 (closed)"}
	}
	return name, nil
}

func priorityValue(p Priority) (string, error) {
	if p == PriorityUnspecified {
		return "", nil
	}
	name, ok := priorityNames[p]
	if !ok {
		return "", &services.Error{Kind: services.KindInvalidInput, Message: "priority must be one of 1 (low), 2 (medium), 3 (high), 4 (critical)"}
	}
	return name, nil
}

func statusOf(name string) IssueStatus {
	for k, v := range statusNames {
		if v == name {
			return k
		}
	}
	return IssueStatusUnspecified
}

func priorityOf(name string) Priority {
	for k, v := range priorityNames {
		if v == name {
			return k
		}
	}
	return PriorityUnspecified
}
