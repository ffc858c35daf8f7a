package profiling

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// DeploymentOperation is the operation under which the gas used to deploy a contract is recorded.
const DeploymentOperation = "deployment"

// ErrReportFrozen is returned when adding an operation to a frozen GasReport.
var ErrReportFrozen = errors.New("the gas report is final and cannot be extended")

// GasReportEntry describes the gas used by a single operation.
type GasReportEntry struct {
	// Operation describes the name of the operation.
	Operation string

	// GasUsed describes the gas the operation's transaction consumed.
	GasUsed uint64
}

// GasReport is an ordered mapping of operation names to the gas used by each, kept in the order the operations
// completed. GasReport is a value: With returns a new report and never modifies the receiver.
type GasReport struct {
	// entries describes the operations in completion order.
	entries []GasReportEntry

	// index maps an operation name to its position in entries.
	index map[string]int

	// frozen indicates the report is final.
	frozen bool
}

// NewGasReport returns an empty GasReport.
func NewGasReport() GasReport {
	return GasReport{}
}

// With returns a new report equal to this one with the provided operation appended. Returns a
// DuplicateOperationError if the operation was already recorded, or ErrReportFrozen if the report is final.
func (r GasReport) With(operation string, gasUsed uint64) (GasReport, error) {
	if r.frozen {
		return GasReport{}, errors.WithStack(ErrReportFrozen)
	}
	if _, exists := r.index[operation]; exists {
		return GasReport{}, &DuplicateOperationError{Operation: operation}
	}

	index := maps.Clone(r.index)
	if index == nil {
		index = make(map[string]int)
	}
	index[operation] = len(r.entries)

	return GasReport{
		entries: append(slices.Clone(r.entries), GasReportEntry{Operation: operation, GasUsed: gasUsed}),
		index:   index,
	}, nil
}

// Freeze returns a copy of the report which refuses further additions.
func (r GasReport) Freeze() GasReport {
	r.frozen = true
	return r
}

// IsFrozen indicates whether the report is final.
func (r GasReport) IsFrozen() bool {
	return r.frozen
}

// Get returns the gas used by the operation and whether it was recorded.
func (r GasReport) Get(operation string) (uint64, bool) {
	i, ok := r.index[operation]
	if !ok {
		return 0, false
	}
	return r.entries[i].GasUsed, true
}

// Len returns the number of recorded operations.
func (r GasReport) Len() int {
	return len(r.entries)
}

// Entries returns the recorded operations in completion order.
func (r GasReport) Entries() []GasReportEntry {
	return slices.Clone(r.entries)
}

// Operations returns the recorded operation names in completion order.
func (r GasReport) Operations() []string {
	operations := make([]string, len(r.entries))
	for i, entry := range r.entries {
		operations[i] = entry.Operation
	}
	return operations
}

// SortedOperations returns the recorded operation names in lexical order.
func (r GasReport) SortedOperations() []string {
	operations := r.Operations()
	sort.Strings(operations)
	return operations
}

// ToMap returns the report as an unordered map.
func (r GasReport) ToMap() map[string]uint64 {
	m := make(map[string]uint64, len(r.entries))
	for _, entry := range r.entries {
		m[entry.Operation] = entry.GasUsed
	}
	return m
}

// MarshalJSON encodes the report as a JSON object whose keys keep their completion order.
func (r GasReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range r.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Operation)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := json.Marshal(entry.GasUsed)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object into the report, keeping the order of its keys. The decoded report is frozen.
func (r *GasReport) UnmarshalJSON(b []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(b))
	token, err := decoder.Token()
	if err != nil {
		return errors.WithStack(err)
	}
	if delim, ok := token.(json.Delim); !ok || delim != '{' {
		return errors.New("a gas report must be a JSON object")
	}

	report := NewGasReport()
	for decoder.More() {
		token, err = decoder.Token()
		if err != nil {
			return errors.WithStack(err)
		}
		operation := token.(string)

		var gasUsed uint64
		if err = decoder.Decode(&gasUsed); err != nil {
			return errors.Wrapf(err, "invalid gas amount for %s", operation)
		}
		if report, err = report.With(operation, gasUsed); err != nil {
			return err
		}
	}
	*r = report.Freeze()
	return nil
}
