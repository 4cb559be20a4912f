package ticket

// Field returns a value by canonical column name. Unknown names fall back to Extra.
func (t *Ticket) Field(name string) string {
	if p := t.fieldPtr(name); p != nil {
		return *p
	}
	return t.Extra[name]
}

// SetField assigns a value by canonical column name. Unknown names land in Extra.
func (t *Ticket) SetField(name, value string) {
	if p := t.fieldPtr(name); p != nil {
		*p = value
		return
	}
	if t.Extra == nil {
		t.Extra = make(map[string]string)
	}
	t.Extra[name] = value
}

// IsCanonical reports whether name is one of the canonical columns
func IsCanonical(name string) bool {
	var t Ticket
	return t.fieldPtr(name) != nil
}

func (t *Ticket) fieldPtr(name string) *string {
	switch name {
	case ColDate:
		return &t.Date
	case ColSalonName:
		return &t.SalonName
	case ColPhone:
		return &t.Phone
	case ColIssueCategory:
		return &t.IssueCategory
	case ColNote:
		return &t.Note
	case ColStatus:
		return &t.Status
	case ColCreatedAt:
		return &t.CreatedAt
	case ColCID:
		return &t.CID
	case ColContact:
		return &t.Contact
	case ColCard16Digits:
		return &t.Card16Digits
	case ColTrainingNote:
		return &t.TrainingNote
	case ColDemoNote:
		return &t.DemoNote
	case ColAgentName:
		return &t.AgentName
	case ColSupportTime:
		return &t.SupportTime
	case ColCallerInfo:
		return &t.CallerInfo
	}
	return nil
}

// Rows renders tickets as a grid in the given column order
func Rows(tickets []Ticket, columns []string) [][]string {
	rows := make([][]string, len(tickets))
	for i := range tickets {
		row := make([]string, len(columns))
		for j, c := range columns {
			row[j] = tickets[i].Field(c)
		}
		rows[i] = row
	}
	return rows
}
