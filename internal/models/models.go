package models

import (
	"encoding/json"
	"time"
)

// Person is a citizen account. Credentials are stored only as a bcrypt digest.
type Person struct {
	ID             int64  `json:"id" db:"id"`
	AadhaarNo      string `json:"aadhaarNo" db:"aadhaar_no"`
	Name           string `json:"name" db:"name"`
	CredentialHash string `json:"-" db:"credential_hash"`
	Updated        int64  `json:"updated" db:"updated"`
}

// Admin is a grievance officer scoped to one service location.
type Admin struct {
	ID             int64  `json:"id" db:"id"`
	Email          string `json:"email" db:"email"`
	CredentialHash string `json:"-" db:"credential_hash"`
	Location       string `json:"location" db:"location"`
	Updated        int64  `json:"updated" db:"updated"`
}

// Complaint keeps the field names the citizen front end already submits.
type Complaint struct {
	ID                  int64           `json:"id" db:"id"`
	FullName            string          `json:"Full_Name" db:"full_name"`
	ContactNumber       string          `json:"Contact_Number" db:"contact_number"`
	EmailAddress        string          `json:"Email_Address" db:"email_address"`
	Category            string          `json:"Category" db:"category"`
	Address             string          `json:"Address" db:"address"`
	ComplaintTitle      string          `json:"Complaint_Title" db:"complaint_title"`
	IncidentLocation    string          `json:"Incident_Location" db:"incident_location"`
	DetailedDescription string          `json:"Detailed_Description" db:"detailed_description"`
	Status              ComplaintStatus `json:"status" db:"status"`
	Location            string          `json:"Location" db:"location"`
	SubmittedBy         string          `json:"submittedBy,omitempty" db:"submitted_by"`
	Created             int64           `json:"created" db:"created"`
	Updated             int64           `json:"updated" db:"updated"`
}

// ComplaintStatus is the lifecycle state of a complaint.
type ComplaintStatus string

const (
	StatusPending  ComplaintStatus = "pending"
	StatusInReview ComplaintStatus = "in_review"
	StatusResolved ComplaintStatus = "resolved"
	StatusRejected ComplaintStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s ComplaintStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// ComplaintEvent records one accepted status transition.
type ComplaintEvent struct {
	ID          int64           `json:"id" db:"id"`
	ComplaintID int64           `json:"complaintId" db:"complaint_id"`
	From        ComplaintStatus `json:"from" db:"from_status"`
	To          ComplaintStatus `json:"to" db:"to_status"`
	Actor       string          `json:"actor" db:"actor"`
	Created     int64           `json:"created" db:"created"`
}

// WorkApplication is a senior citizen's application to a marketplace opportunity.
type WorkApplication struct {
	ID               int64    `json:"id" db:"id"`
	Reference        string   `json:"reference" db:"reference"`
	OpportunityID    string   `json:"opportunityId" db:"opportunity_id"`
	FullName         string   `json:"fullName" db:"full_name"`
	Age              string   `json:"age" db:"age"`
	Phone            string   `json:"phone" db:"phone"`
	Email            string   `json:"email" db:"email"`
	Address          string   `json:"address" db:"address"`
	Experience       string   `json:"experience" db:"experience"`
	Availability     []string `json:"availability" db:"availability"`
	WhyInterested    string   `json:"whyInterested" db:"why_interested"`
	AdditionalSkills string   `json:"additionalSkills,omitempty" db:"additional_skills"`
	References       string   `json:"references,omitempty" db:"refs"`
	SubmittedBy      string   `json:"submittedBy,omitempty" db:"submitted_by"`
	Created          int64    `json:"created" db:"created"`
}

// BackgroundJob is a persisted unit of asynchronous work.
type BackgroundJob struct {
	ID          int64           `json:"id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	ScheduledAt time.Time       `json:"scheduled_at"`
	NextTryAt   *time.Time      `json:"next_try_at,omitempty"`
	LastError   string          `json:"last_error,omitempty"`
	Created     time.Time       `json:"created"`
	Updated     time.Time       `json:"updated"`
}
