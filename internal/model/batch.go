package model

import "time"

// Batch is the hand-off between the scan and process phases. Each inner
// slice holds the rows of one registry results page.
type Batch struct {
	DeadPeopleList         [][]DeceasedRecord `json:"deadPeopleList"`
	NumberOfNamesExtracted int                `json:"numberOfNamesExtracted"`
}

// Records flattens the batch, skipping rows without a person.
func (b Batch) Records() []DeceasedRecord {
	var out []DeceasedRecord
	for _, page := range b.DeadPeopleList {
		for _, rec := range page {
			if rec.Person == "" {
				continue
			}
			out = append(out, rec)
		}
	}
	return out
}

// Counters are the five run metrics. Concurrent tasks each return their own
// Counters and the caller folds them with Add.
type Counters struct {
	HomesFound      int `json:"homes_found"`
	LeadsExtracted  int `json:"leads_extracted"`
	TextsSent       int `json:"texts_sent"`
	ContactsCreated int `json:"contacts_created"`
	DealsCreated    int `json:"deals_created"`
}

// Add returns the field-wise sum of c and o.
func (c Counters) Add(o Counters) Counters {
	return Counters{
		HomesFound:      c.HomesFound + o.HomesFound,
		LeadsExtracted:  c.LeadsExtracted + o.LeadsExtracted,
		TextsSent:       c.TextsSent + o.TextsSent,
		ContactsCreated: c.ContactsCreated + o.ContactsCreated,
		DealsCreated:    c.DealsCreated + o.DealsCreated,
	}
}

// Named returns the counters keyed by their metric names.
func (c Counters) Named() map[string]int {
	return map[string]int{
		"HomesFound":      c.HomesFound,
		"LeadsExtracted":  c.LeadsExtracted,
		"TextsSent":       c.TextsSent,
		"ContactsCreated": c.ContactsCreated,
		"DealsCreated":    c.DealsCreated,
	}
}

// RunStatus represents the current state of a processing run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusMatching   RunStatus = "matching"
	RunStatusEnriching  RunStatus = "enriching"
	RunStatusPublishing RunStatus = "publishing"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// Run is one execution of the process phase over a batch.
type Run struct {
	ID             string    `json:"id"`
	Status         RunStatus `json:"status"`
	NamesExtracted int       `json:"names_extracted"`
	Counters       Counters  `json:"counters"`
	Error          string    `json:"error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// RunReport is what the pipeline returns for a finished run.
type RunReport struct {
	RunID    string         `json:"run_id"`
	Counters Counters       `json:"counters"`
	Leads    []EnrichedLead `json:"leads"`
	Elapsed  time.Duration  `json:"elapsed"`
}
