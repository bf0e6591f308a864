package usecase

import (
	"github.com/phenrril/reconcell/internal/domain"
)

type CandidateState string

const (
	CandidatePending  CandidateState = "pending"
	CandidateApproved CandidateState = "approved"
	CandidateRejected CandidateState = "rejected"
)

// MappingCandidate is one heuristic match awaiting a human decision.
// Approved: the import SKU is merged under Proposed and the alias is
// learned. Rejected: the import SKU becomes its own catalog entry.
type MappingCandidate struct {
	ImportSKU string         `json:"importSku"`
	Proposed  string         `json:"proposed"`
	Rows      int            `json:"rows"`
	State     CandidateState `json:"state"`
}

// reviewSet holds the candidates of one import between the detect and
// aggregate phases. Aggregation is blocked while any candidate is pending.
type reviewSet struct {
	byImportSKU map[string]*MappingCandidate
	order       []string
}

func newReviewSet() *reviewSet {
	return &reviewSet{byImportSKU: map[string]*MappingCandidate{}}
}

func (rs *reviewSet) add(importSKU, proposed string, rows int) {
	if c, ok := rs.byImportSKU[importSKU]; ok {
		c.Rows += rows
		return
	}
	rs.byImportSKU[importSKU] = &MappingCandidate{
		ImportSKU: importSKU,
		Proposed:  proposed,
		Rows:      rows,
		State:     CandidatePending,
	}
	rs.order = append(rs.order, importSKU)
}

func (rs *reviewSet) candidates() []MappingCandidate {
	out := make([]MappingCandidate, 0, len(rs.order))
	for _, k := range rs.order {
		out = append(out, *rs.byImportSKU[k])
	}
	return out
}

func (rs *reviewSet) pendingCount() int {
	n := 0
	for _, c := range rs.byImportSKU {
		if c.State == CandidatePending {
			n++
		}
	}
	return n
}

func (rs *reviewSet) decide(importSKU string, approve bool) error {
	c, ok := rs.byImportSKU[importSKU]
	if !ok {
		return domain.ErrNotFound
	}
	if approve {
		c.State = CandidateApproved
	} else {
		c.State = CandidateRejected
	}
	return nil
}

// canonical returns the SKU an import identifier aggregates under after the
// review: the proposed master when approved, itself when rejected.
func (rs *reviewSet) canonical(importSKU string) (string, bool) {
	c, ok := rs.byImportSKU[importSKU]
	if !ok {
		return "", false
	}
	if c.State == CandidateApproved {
		return c.Proposed, true
	}
	return c.ImportSKU, true
}

func (rs *reviewSet) approved() []MappingCandidate {
	out := []MappingCandidate{}
	for _, k := range rs.order {
		if c := rs.byImportSKU[k]; c.State == CandidateApproved {
			out = append(out, *c)
		}
	}
	return out
}
