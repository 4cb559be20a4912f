// Package ticket holds the support ticket model shared by the local store and the report sheets
package ticket

import "time"

// Canonical column names. Local tickets are stored under these names and
// report sheet headers are renamed onto them.
const (
	ColDate          = "Date"
	ColSalonName     = "Salon_Name"
	ColPhone         = "Phone"
	ColIssueCategory = "Issue_Category"
	ColNote          = "Note"
	ColStatus        = "Status"
	ColCreatedAt     = "Created_At"
	ColCID           = "CID"
	ColContact       = "Contact"
	ColCard16Digits  = "Card_16_Digits"
	ColTrainingNote  = "Training_Note"
	ColDemoNote      = "Demo_Note"
	ColAgentName     = "Agent_Name"
	ColSupportTime   = "Support_Time"
	ColCallerInfo    = "Caller_Info"
)

// Columns lists every canonical column in storage order
var Columns = []string{
	ColDate, ColSalonName, ColPhone, ColIssueCategory, ColNote, ColStatus, ColCreatedAt,
	ColCID, ColContact, ColCard16Digits, ColTrainingNote, ColDemoNote, ColAgentName,
	ColSupportTime, ColCallerInfo,
}

// SearchColumns are shown in the search results table
var SearchColumns = []string{
	ColDate, ColAgentName, ColSupportTime, ColCID, ColSalonName, ColPhone, ColCallerInfo, ColNote, ColStatus,
}

// Source tells where a ticket row came from
type Source string

const (
	SourceLocal Source = "local"
	SourceSheet Source = "sheet"
)

// Origin locates a sheet-backed ticket so edits can be written back
type Origin struct {
	Sheet   string         `json:"sheet"`
	Tab     string         `json:"tab"`
	Row     int            `json:"row"`     // 1-based sheet row
	Columns map[string]int `json:"columns"` // canonical name -> 0-based column index
}

// Ticket is one support call, either logged locally or read from a report sheet
type Ticket struct {
	ID            int64  `json:"id,omitempty" db:"id"`
	Date          string `json:"date" db:"Date"`
	SalonName     string `json:"salon_name" db:"Salon_Name"`
	Phone         string `json:"phone" db:"Phone"`
	IssueCategory string `json:"issue_category" db:"Issue_Category"`
	Note          string `json:"note" db:"Note"`
	Status        string `json:"status" db:"Status"`
	CreatedAt     string `json:"created_at,omitempty" db:"Created_At"`
	CID           string `json:"cid" db:"CID"`
	Contact       string `json:"contact" db:"Contact"`
	Card16Digits  string `json:"card_16_digits" db:"Card_16_Digits"`
	TrainingNote  string `json:"training_note" db:"Training_Note"`
	DemoNote      string `json:"demo_note" db:"Demo_Note"`
	AgentName     string `json:"agent_name" db:"Agent_Name"`
	SupportTime   string `json:"support_time" db:"Support_Time"`
	CallerInfo    string `json:"caller_info" db:"Caller_Info"`

	Source Source  `json:"source" db:"-"`
	Origin *Origin `json:"origin,omitempty" db:"-"`

	// Extra keeps sheet columns that have no canonical name
	Extra map[string]string `json:"extra,omitempty" db:"-"`

	InTraining  bool `json:"in_training" db:"-"`
	Has16Digits bool `json:"has_16_digits" db:"-"`
}

// EffectiveTime is the instant a ticket is filed under: Created_At when it parses, else Date
func (t Ticket) EffectiveTime() (time.Time, bool) {
	if t.CreatedAt != "" {
		if ts, ok := ParseDate(t.CreatedAt); ok {
			return ts, true
		}
	}
	return ParseDate(t.Date)
}

// Ref returns the reference used to address the ticket for edits
func (t Ticket) Ref() Ref {
	if t.Source == SourceSheet && t.Origin != nil {
		return Ref{Sheet: t.Origin.Sheet, Tab: t.Origin.Tab, Row: t.Origin.Row}
	}
	return Ref{ID: t.ID}
}

// SearchKind narrows search results to rows carrying a training or demo note
type SearchKind string

const (
	KindAll      SearchKind = ""
	KindTraining SearchKind = "Training"
	KindDemo     SearchKind = "Demo"
)

// ParseSearchKind maps a form value onto a kind, anything unknown is KindAll
func ParseSearchKind(s string) SearchKind {
	switch SearchKind(s) {
	case KindTraining:
		return KindTraining
	case KindDemo:
		return KindDemo
	default:
		return KindAll
	}
}

// Filter holds the manager dashboard filters
type Filter struct {
	From    *time.Time
	To      *time.Time
	Keyword string
	Agent   string // "All" or empty means no filter
	Status  string
}
