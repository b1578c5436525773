package domain

import (
	"time"

	"github.com/Harsh-BH/dispatch/internal/geo"
)

// JobStatus represents the lifecycle state of a service job.
type JobStatus string

const (
	JobRequested  JobStatus = "Requested"
	JobAccepted   JobStatus = "Accepted"
	JobInProgress JobStatus = "InProgress"
	JobCompleted  JobStatus = "Completed"
	JobCancelled  JobStatus = "Cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s JobStatus) IsTerminal() bool {
	return s == JobCompleted || s == JobCancelled
}

// WhenASAP is the timing token for jobs that should start immediately.
const WhenASAP = "ASAP"

// Job is a unit of work waiting for, or assigned to, a provider.
type Job struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Lat                float64    `json:"lat"`
	Lng                float64    `json:"lng"`
	When               string     `json:"when"`
	Price              int64      `json:"price"`
	Status             JobStatus  `json:"status"`
	AssignedContactKey string     `json:"assignedContactKey,omitempty"`
	RequestedBy        string     `json:"requestedBy,omitempty"`
	CreatedAt          time.Time  `json:"createdAt"`
	AcceptedAt         *time.Time `json:"acceptedAt,omitempty"`
}

// Location returns the job's target coordinates.
func (j *Job) Location() geo.Point {
	return geo.Point{Lat: j.Lat, Lng: j.Lng}
}

// IsAvailable reports whether the job can still be claimed.
func (j *Job) IsAvailable() bool {
	return j.Status == JobRequested && j.AssignedContactKey == ""
}

// Clone returns a copy safe to hand out of a store.
func (j *Job) Clone() *Job {
	c := *j
	if j.AcceptedAt != nil {
		at := *j.AcceptedAt
		c.AcceptedAt = &at
	}
	return &c
}

// JobView is a job annotated with its distance from a query point.
type JobView struct {
	*Job
	Km      *float64 `json:"km,omitempty"`
	EtaMins *int     `json:"etaMins,omitempty"`
}

// NearQuery restricts a listing to jobs within RadiusKm of Point.
type NearQuery struct {
	Point    geo.Point
	RadiusKm float64
}

// CreateJobRequest is the body of POST /jobs.
type CreateJobRequest struct {
	Title       string   `json:"title" binding:"required,max=200"`
	Description string   `json:"description" binding:"max=2000"`
	Lat         *float64 `json:"lat" binding:"required,latitude"`
	Lng         *float64 `json:"lng" binding:"required,longitude"`
	When        string   `json:"when" binding:"omitempty,when"`
	Price       int64    `json:"price" binding:"gte=0"`
}

// ClaimJobRequest is the body of POST /jobs/claim.
type ClaimJobRequest struct {
	ID string `json:"id" binding:"required"`
}

// ValidWhen reports whether s is an accepted timing token: ASAP, an RFC3339
// timestamp, or a same-day HH:MM slot.
func ValidWhen(s string) bool {
	if s == WhenASAP {
		return true
	}
	if _, err := time.Parse(time.RFC3339, s); err == nil {
		return true
	}
	_, err := time.Parse("15:04", s)
	return err == nil
}
