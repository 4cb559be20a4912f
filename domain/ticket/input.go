package ticket

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"salondesk/internal/errors"
)

// NewTicketInput is what an agent fills in on the New Ticket form
type NewTicketInput struct {
	Date       time.Time `json:"date"`
	SalonName  string    `json:"salon_name"`
	CID        string    `json:"cid"`
	Phone      string    `json:"phone"`
	CallerInfo string    `json:"caller_info"`
	Issue      string    `json:"issue"`
	Training   string    `json:"training"`
	Demo       string    `json:"demo"`
	Status     string    `json:"status"`
	AgentName  string    `json:"agent_name"`
}

// Validate requires salon, phone, issue and agent
func (in NewTicketInput) Validate() error {
	var missing []string
	if strings.TrimSpace(in.SalonName) == "" {
		missing = append(missing, ColSalonName)
	}
	if strings.TrimSpace(in.Phone) == "" {
		missing = append(missing, ColPhone)
	}
	if strings.TrimSpace(in.Issue) == "" {
		missing = append(missing, "Issue")
	}
	if strings.TrimSpace(in.AgentName) == "" {
		missing = append(missing, ColAgentName)
	}
	if len(missing) > 0 {
		return errors.MissingFields(missing...)
	}
	return nil
}

// Ticket builds the row to insert. The issue text fills both Note and Issue_Category.
func (in NewTicketInput) Ticket(now time.Time) Ticket {
	when := in.Date
	if when.IsZero() {
		when = now
	}
	return Ticket{
		Date:          when.Format(DisplayLayout),
		SalonName:     strings.TrimSpace(in.SalonName),
		Phone:         strings.TrimSpace(in.Phone),
		IssueCategory: in.Issue,
		Note:          in.Issue,
		Status:        string(NormalizeStatus(in.Status)),
		CreatedAt:     now.Format(CreatedAtLayout),
		CID:           strings.TrimSpace(in.CID),
		TrainingNote:  in.Training,
		DemoNote:      in.Demo,
		AgentName:     in.AgentName,
		SupportTime:   when.Format("15:04:05"),
		CallerInfo:    in.CallerInfo,
		Source:        SourceLocal,
	}
}

// UpdateInput carries the fields the edit dialog can change
type UpdateInput struct {
	Status       string `json:"status"`
	Note         string `json:"note"`
	SalonName    string `json:"salon_name"`
	Phone        string `json:"phone"`
	CID          string `json:"cid"`
	CallerInfo   string `json:"caller_info"`
	TrainingNote string `json:"training_note"`
	DemoNote     string `json:"demo_note"`
}

// Values returns the update keyed by canonical column, status normalized
func (in UpdateInput) Values() map[string]string {
	return map[string]string{
		ColStatus:       string(NormalizeStatus(in.Status)),
		ColNote:         in.Note,
		ColSalonName:    in.SalonName,
		ColPhone:        in.Phone,
		ColCID:          in.CID,
		ColCallerInfo:   in.CallerInfo,
		ColTrainingNote: in.TrainingNote,
		ColDemoNote:     in.DemoNote,
	}
}

// KeepsRequired rejects an update that would blank a required field the ticket already has
func (in UpdateInput) KeepsRequired(current Ticket) error {
	var missing []string
	if strings.TrimSpace(in.SalonName) == "" && strings.TrimSpace(current.SalonName) != "" {
		missing = append(missing, ColSalonName)
	}
	if strings.TrimSpace(in.Phone) == "" && strings.TrimSpace(current.Phone) != "" {
		missing = append(missing, ColPhone)
	}
	if len(missing) > 0 {
		return errors.MissingFields(missing...)
	}
	return nil
}

// UpdateInputFrom prefills the edit dialog from an existing ticket
func UpdateInputFrom(t Ticket) UpdateInput {
	return UpdateInput{
		Status:       string(NormalizeStatus(t.Status)),
		Note:         t.Note,
		SalonName:    t.SalonName,
		Phone:        t.Phone,
		CID:          t.CID,
		CallerInfo:   t.CallerInfo,
		TrainingNote: t.TrainingNote,
		DemoNote:     t.DemoNote,
	}
}

// Ref addresses a ticket for editing: a local row id or a sheet location
type Ref struct {
	ID    int64
	Sheet string
	Tab   string
	Row   int
}

// IsSheet reports whether the ref points into a report sheet
func (r Ref) IsSheet() bool {
	return r.Sheet != ""
}

const sheetRefPrefix = "s-"

// String encodes the ref so it survives a URL path segment
func (r Ref) String() string {
	if !r.IsSheet() {
		return strconv.FormatInt(r.ID, 10)
	}
	raw := strings.Join([]string{r.Sheet, r.Tab, strconv.Itoa(r.Row)}, "\x1f")
	return sheetRefPrefix + base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// ParseRef decodes Ref.String
func ParseRef(s string) (Ref, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, sheetRefPrefix) {
		raw, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(s, sheetRefPrefix))
		if err != nil {
			return Ref{}, errors.InvalidInput(fmt.Sprintf("malformed ticket reference %q", s))
		}
		parts := strings.Split(string(raw), "\x1f")
		if len(parts) != 3 || parts[0] == "" {
			return Ref{}, errors.InvalidInput(fmt.Sprintf("malformed ticket reference %q", s))
		}
		row, err := strconv.Atoi(parts[2])
		if err != nil || row < 1 {
			return Ref{}, errors.InvalidInput(fmt.Sprintf("malformed ticket reference %q", s))
		}
		return Ref{Sheet: parts[0], Tab: parts[1], Row: row}, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return Ref{}, errors.InvalidInput(fmt.Sprintf("malformed ticket reference %q", s))
	}
	return Ref{ID: id}, nil
}
