package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/crytic/tokengas/profiling"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// GasTableHeader is the header of the first column of a gas table.
const GasTableHeader = "Gas spent per contract method"

// missingValue is rendered for operations a contract's report does not hold.
const missingValue = "-"

// ContractReport pairs the gas report of a contract with the selector it was profiled from.
type ContractReport struct {
	// Selector identifies the profiled contract.
	Selector string

	// Report describes the gas used by each operation.
	Report profiling.GasReport
}

// NewContractReports pairs each spec with the report at the same index.
func NewContractReports(specs []profiling.ContractSpec, reports []profiling.GasReport) ([]ContractReport, error) {
	if len(specs) != len(reports) {
		return nil, errors.Errorf("%d contracts were profiled but %d reports were provided", len(specs), len(reports))
	}
	contractReports := make([]ContractReport, len(specs))
	for i, spec := range specs {
		contractReports[i] = ContractReport{Selector: spec.Selector, Report: reports[i]}
	}
	return contractReports, nil
}

// columns returns the operations rendered as table columns: the sorted operations of the first report.
func columns(reports []ContractReport) []string {
	if len(reports) == 0 {
		return nil
	}
	return reports[0].Report.SortedOperations()
}

// writeTable renders one row per report, with format converting the gas used by an operation into a cell.
func writeTable(w io.Writer, header string, reports []ContractReport, format func(gasUsed uint64) string) {
	operations := columns(reports)

	table := tablewriter.NewWriter(w)
	table.SetHeader(append([]string{header}, operations...))
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, contractReport := range reports {
		row := make([]string, 0, len(operations)+1)
		row = append(row, contractReport.Selector)
		for _, operation := range operations {
			if gasUsed, ok := contractReport.Report.Get(operation); ok {
				row = append(row, format(gasUsed))
			} else {
				row = append(row, missingValue)
			}
		}
		table.Append(row)
	}
	table.Render()
}

// WriteTable renders the gas used by each contract as a table with one row per contract and one column per operation
// of the first report, in lexical order.
func WriteTable(w io.Writer, reports []ContractReport) {
	writeTable(w, GasTableHeader, reports, func(gasUsed uint64) string {
		return strconv.FormatUint(gasUsed, 10)
	})
}

// WriteCostTable renders the cost in ether of each operation at the provided gas price, expressed in gwei.
func WriteCostTable(w io.Writer, reports []ContractReport, gasPriceGwei decimal.Decimal) {
	header := fmt.Sprintf("Cost in ether at %s gwei", gasPriceGwei.String())
	writeTable(w, header, reports, func(gasUsed uint64) string {
		return GasCost(gasUsed, gasPriceGwei).String()
	})
}

// GasCost returns the cost in ether of the gas at the provided price in gwei.
func GasCost(gasUsed uint64, gasPriceGwei decimal.Decimal) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(gasUsed), 0).Mul(gasPriceGwei).Shift(-9)
}

// WriteJSON renders the reports as a single line JSON object mapping each selector to its report. Selectors keep the
// order of the reports; a repeated selector keeps its first position and its last report.
func WriteJSON(w io.Writer, reports []ContractReport) error {
	var selectors []string
	bySelector := make(map[string]profiling.GasReport, len(reports))
	for _, contractReport := range reports {
		if _, exists := bySelector[contractReport.Selector]; !exists {
			selectors = append(selectors, contractReport.Selector)
		}
		bySelector[contractReport.Selector] = contractReport.Report
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, selector := range selectors {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(selector)
		if err != nil {
			return errors.WithStack(err)
		}
		value, err := json.Marshal(bySelector[selector])
		if err != nil {
			return errors.WithStack(err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteString("}\n")

	_, err := w.Write(buf.Bytes())
	return errors.WithStack(err)
}
