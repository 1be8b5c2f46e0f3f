package engine

import (
	"go.uber.org/zap"

	"github.com/high-focus/sourcing-cli/internal/model"
)

// Engine runs the column-role inference pipeline over a workbook. It holds
// no state between invocations; concurrent Parse calls are safe.
type Engine struct {
	th Thresholds
}

// New creates an Engine with the given thresholds.
func New(th Thresholds) *Engine {
	return &Engine{th: th}
}

// Parse runs the full pipeline independently on every worksheet and returns
// the best-performing sheet's result. A sheet wins by surviving more rows;
// surviving-row ties go to the sheet with more raw data rows. Per-sheet
// classification failures are swallowed unless no sheet produced usable
// output, in which case the most recent one is raised. A workbook with zero
// worksheets fails immediately with ErrEmptyWorkbook.
func (e *Engine) Parse(wb Workbook) (model.ParseResult, error) {
	names := wb.SheetNames()
	if len(names) == 0 {
		return model.ParseResult{}, ErrEmptyWorkbook
	}

	var best *model.ParseResult
	var lastClassErr, lastUnexpectedErr error

	for i, name := range names {
		result, err := e.parseSheet(wb, i)
		if err != nil {
			if IsClassificationErr(err) {
				lastClassErr = err
			} else {
				lastUnexpectedErr = err
			}
			zap.L().Debug("engine: sheet failed",
				zap.String("sheet", name),
				zap.Error(err),
			)
			continue
		}

		zap.L().Debug("engine: sheet parsed",
			zap.String("sheet", name),
			zap.Int("rows", len(result.Rows)),
			zap.Int("row_count", result.RowCount),
		)

		if best == nil ||
			len(result.Rows) > len(best.Rows) ||
			(len(result.Rows) == len(best.Rows) && result.RowCount > best.RowCount) {
			best = &result
		}
	}

	if best != nil && (len(best.Rows) > 0 || best.RowCount > 0) {
		return *best, nil
	}
	if lastClassErr != nil {
		return model.ParseResult{}, lastClassErr
	}
	if lastUnexpectedErr != nil {
		return model.ParseResult{}, lastUnexpectedErr
	}
	return model.ParseResult{}, nil
}

// parseSheet runs header location, role classification and row assembly on
// one worksheet. The token classifier goes first; the statistical classifier
// fills in whatever it could not resolve.
func (e *Engine) parseSheet(wb Workbook, idx int) (model.ParseResult, error) {
	grid, err := wb.Grid(idx)
	if err != nil {
		return model.ParseResult{}, err
	}
	if len(grid) == 0 {
		return model.ParseResult{}, nil
	}

	headerIdx := locateHeaderRow(grid, e.th)
	labels := buildHeaderTable(grid[headerIdx])

	asg, err := classifyByTokens(labels)
	if err != nil {
		asg, err = classifyByStats(grid, headerIdx, labels, asg, e.th)
		if err != nil {
			return model.ParseResult{}, err
		}
	}

	return assembleRows(grid, headerIdx, asg), nil
}
